package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

type attachmentSettings struct {
	sizeFromPipeline        bool
	formatFromPipeline      bool
	multisampleFromPipeline bool
}

/**
 * @brief A GPU resource (image or buffer) used by one or more passes.
 * Exactly one pass owns it; every other pass only reads the pointer.
 */
type Attachment struct {
	/** @brief Local name, as declared by the template or the slot. */
	Name string
	/** @brief Unique id inside the frame graph. */
	Path       string
	Lifetime   metadata.Lifetime
	Descriptor metadata.UnifiedAttachmentDescriptor
	/** @brief The wrapped resource of imported attachments. Never released by the pass graph. */
	ImportedResource resources.Resource

	sizeSource        *Binding
	formatSource      *Binding
	multisampleSource *Binding
	arraySizeSource   *Binding
	sizeMultipliers   metadata.SizeMultipliers

	pipeline Pipeline
	settings attachmentSettings

	owner Handle
}

func newAttachment(name string, lifetime metadata.Lifetime, desc metadata.UnifiedAttachmentDescriptor) *Attachment {
	return &Attachment{
		Name:       name,
		Path:       name,
		Lifetime:   lifetime,
		Descriptor: desc,
		owner:      InvalidHandle,
	}
}

func (a *Attachment) AttachmentID() string {
	return a.Path
}

func (a *Attachment) AttachmentType() metadata.AttachmentType {
	return a.Descriptor.Type
}

// Owner is the handle of the pass owning the attachment.
func (a *Attachment) Owner() Handle {
	return a.owner
}

// ComputePathName gives transient attachments a frame graph id unique to
// their owner. Imported attachments keep the id of the wrapped resource.
func (a *Attachment) ComputePathName(ownerPath string) {
	if a.Lifetime == metadata.LifetimeTransient {
		a.Path = ownerPath + "." + a.Name
	}
}

// Update recomputes the properties sourced from other bindings or from the
// pipeline. It recomputes from scratch so it can run every frame.
func (a *Attachment) Update() {
	if a.Lifetime != metadata.LifetimeTransient {
		return
	}
	switch a.Descriptor.Type {
	case metadata.AttachmentTypeImage:
		a.updateImage()
	case metadata.AttachmentTypeBuffer:
		if src := sourceAttachment(a.sizeSource, metadata.AttachmentTypeBuffer); src != nil {
			a.Descriptor.Buffer.ByteCount = src.Descriptor.Buffer.ByteCount
		}
	}
}

func (a *Attachment) updateImage() {
	img := &a.Descriptor.Image

	var settings *metadata.PipelineRenderSettings
	if a.pipeline != nil {
		s := a.pipeline.RenderSettings()
		settings = &s
	}

	if a.settings.formatFromPipeline {
		if settings != nil {
			img.Format = settings.Format
		}
	} else if src := sourceAttachment(a.formatSource, metadata.AttachmentTypeImage); src != nil {
		img.Format = src.Descriptor.Image.Format
	}

	if a.settings.multisampleFromPipeline {
		if settings != nil {
			img.MultisampleState = settings.MultisampleState
		}
	} else if src := sourceAttachment(a.multisampleSource, metadata.AttachmentTypeImage); src != nil {
		img.MultisampleState = src.Descriptor.Image.MultisampleState
	}

	if src := sourceAttachment(a.arraySizeSource, metadata.AttachmentTypeImage); src != nil {
		img.ArraySize = src.Descriptor.Image.ArraySize
	}

	if a.settings.sizeFromPipeline {
		if settings != nil {
			img.Size = a.sizeMultipliers.ApplyModifiers(settings.Size)
		}
	} else if src := sourceAttachment(a.sizeSource, metadata.AttachmentTypeImage); src != nil {
		img.Size = a.sizeMultipliers.ApplyModifiers(src.Descriptor.Image.Size)
	}
}

func sourceAttachment(b *Binding, t metadata.AttachmentType) *Attachment {
	if b == nil || b.Attachment == nil || b.Attachment.Descriptor.Type != t {
		return nil
	}
	return b.Attachment
}

// Clone returns a copy sharing the same sources. The wrapped resource is not
// carried over.
func (a *Attachment) Clone() *Attachment {
	c := *a
	c.ImportedResource = nil
	return &c
}
