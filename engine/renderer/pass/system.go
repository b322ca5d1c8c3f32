package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

/** @brief Stable index of a pass inside the pass system registry. */
type Handle uint32

const InvalidHandle Handle = ^Handle(0)

func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

/**
 * @brief The registry every pass talks to. A pass never reaches for a global:
 * it is handed its System on construction.
 */
type System interface {
	/** @brief Resolves a handle. Returns nil for free or invalid handles. */
	Pass(h Handle) *Pass
	RegisterPass(p *Pass) (Handle, error)
	UnregisterPass(p *Pass)
	QueueForBuildAttachments(p *Pass)
	QueueForRemoval(p *Pass)
	/** @brief True while queued passes are being reset and built. */
	IsBuilding() bool
	GetPassTemplate(name string) (*metadata.PassTemplate, error)
	/** @brief Instantiates a pass (of the template's class) from a request. */
	CreatePassFromRequest(request *metadata.PassRequest) (*Pass, error)
	/** @brief Source of imported attachment resources. May return nil. */
	AssetLoader() AssetLoader
	ValidationEnabled() bool
	MessageLogLimit() int
}

/** @brief Resolves asset ids into resource instances. */
type AssetLoader interface {
	LoadImage(assetID string) (*resources.AttachmentImage, error)
	LoadBuffer(assetID string) (*resources.Buffer, error)
}

/** @brief The per-frame attachment registry passes declare their attachments in. */
type AttachmentDatabase interface {
	CreateTransientImage(id string, desc metadata.ImageDescriptor) error
	CreateTransientBuffer(id string, desc metadata.BufferDescriptor) error
	ImportImage(id string, image *resources.AttachmentImage) error
	ImportBuffer(id string, buffer *resources.Buffer) error
	IsAttachmentValid(id string) bool
}

/** @brief Receives the scopes recorded by passes during FrameBegin. */
type ScopeRecorder interface {
	AddScope(scope framegraph.Scope) error
}

type FramePrepareParams struct {
	AttachmentDatabase AttachmentDatabase
	/** @brief Optional. Scopes are not recorded when nil. */
	Scopes ScopeRecorder
}

/** @brief The render pipeline owning a pass hierarchy. */
type Pipeline interface {
	Name() string
	RenderSettings() metadata.PipelineRenderSettings
}
