package resources

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Attachment image resource type. */
	ResourceTypeImage ResourceType = iota
	/** @brief Buffer resource type. */
	ResourceTypeBuffer
)

func (t ResourceType) String() string {
	if t == ResourceTypeBuffer {
		return "Buffer"
	}
	return "Image"
}

/**
 * @brief A resource instance that can be imported into the frame graph.
 * Instances are owned by the asset catalog; passes only reference them.
 */
type Resource interface {
	/** @brief The id the frame graph knows the resource by. */
	AttachmentID() string
	ResourceType() ResourceType
}

/**
 * @brief An image living outside of the pass graph (swap chain image,
 * render-to-texture target, image asset).
 */
type AttachmentImage struct {
	/** @brief The id of the asset this instance was created from. */
	AssetID uuid.UUID
	/** @brief The name of the image, also used as attachment id. */
	Name       string
	Descriptor metadata.ImageDescriptor
}

func (i *AttachmentImage) AttachmentID() string {
	return i.Name
}

func (i *AttachmentImage) ResourceType() ResourceType {
	return ResourceTypeImage
}

/** @brief A buffer living outside of the pass graph. */
type Buffer struct {
	AssetID    uuid.UUID
	Name       string
	Descriptor metadata.BufferDescriptor
}

func (b *Buffer) AttachmentID() string {
	return b.Name
}

func (b *Buffer) ResourceType() ResourceType {
	return ResourceTypeBuffer
}
