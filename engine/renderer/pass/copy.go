package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

type CopyItemType uint8

const (
	CopyItemTypeInvalid CopyItemType = iota
	CopyItemTypeBuffer
	CopyItemTypeImage
	CopyItemTypeBufferToImage
	CopyItemTypeImageToBuffer
)

func (t CopyItemType) String() string {
	switch t {
	case CopyItemTypeBuffer:
		return "Buffer"
	case CopyItemTypeImage:
		return "Image"
	case CopyItemTypeBufferToImage:
		return "BufferToImage"
	case CopyItemTypeImageToBuffer:
		return "ImageToBuffer"
	}
	return "Invalid"
}

/**
 * @brief Copies its single input into its single output. With CloneInput
 * the output attachment is created as a transient copy of the input.
 */
type CopyPass struct {
	*Pass

	cloneInput bool
}

func NewCopyPass(system System, desc metadata.PassDescriptor) (*CopyPass, error) {
	p, err := newPass(system, desc)
	if err != nil {
		return nil, err
	}
	cp := &CopyPass{Pass: p}
	if data := p.passData(); data != nil {
		cp.cloneInput = data.CloneInput
	}
	if err := p.register(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// CopyItemType infers the copy from the attachment types of the input and
// the output.
func (cp *CopyPass) CopyItemType() CopyItemType {
	if cp.InputCount() != 1 || cp.OutputCount() != 1 {
		return CopyItemTypeInvalid
	}
	in, out := cp.InputBinding(0).Attachment, cp.OutputBinding(0).Attachment
	if in == nil || out == nil {
		return CopyItemTypeInvalid
	}
	switch {
	case in.AttachmentType() == metadata.AttachmentTypeBuffer && out.AttachmentType() == metadata.AttachmentTypeBuffer:
		return CopyItemTypeBuffer
	case in.AttachmentType() == metadata.AttachmentTypeImage && out.AttachmentType() == metadata.AttachmentTypeImage:
		return CopyItemTypeImage
	case in.AttachmentType() == metadata.AttachmentTypeBuffer && out.AttachmentType() == metadata.AttachmentTypeImage:
		return CopyItemTypeBufferToImage
	case in.AttachmentType() == metadata.AttachmentTypeImage && out.AttachmentType() == metadata.AttachmentTypeBuffer:
		return CopyItemTypeImageToBuffer
	}
	return CopyItemTypeInvalid
}

func (cp *CopyPass) BuildAttachmentsInternal() {
	if cp.InputCount() != 1 || cp.OutputCount() != 1 || len(cp.bindings) != 2 {
		cp.LogError("CopyPass %s has %d inputs and %d outputs. It should have exactly one of each",
			cp.path, cp.InputCount(), cp.OutputCount())
		return
	}
	if !cp.cloneInput {
		return
	}

	source := cp.InputBinding(0).Attachment
	if source == nil {
		cp.LogError("CopyPass %s: input %s has no attachment to clone", cp.path, cp.InputBinding(0).Name)
		return
	}
	output := cp.OutputBinding(0)

	dest := source.Clone()
	dest.Name = output.Name
	dest.Lifetime = metadata.LifetimeTransient
	dest.owner = cp.handle
	switch dest.Descriptor.Type {
	case metadata.AttachmentTypeImage:
		dest.Descriptor.Image.BindFlags = metadata.ImageBindFlagsCopyWrite
	case metadata.AttachmentTypeBuffer:
		dest.Descriptor.Buffer.BindFlags = metadata.BufferBindFlagsCopyWrite
	}
	dest.ComputePathName(cp.path)
	cp.ownedAttachments = append(cp.ownedAttachments, dest)

	output.SetAttachment(dest)
	output.OriginalAttachment = dest
}

func (cp *CopyPass) FrameBeginInternal(params FramePrepareParams) {
	copyType := cp.CopyItemType()
	if copyType == CopyItemTypeInvalid {
		cp.LogError("CopyPass %s: can't infer the copy type of its attachments", cp.path)
		return
	}
	scope := cp.BuildScope(framegraph.ScopeKindCopy, func(*Binding) metadata.ScopeAttachmentUsage {
		return metadata.ScopeAttachmentUsageCopy
	})
	scope.Details = "copy=" + copyType.String()
	cp.recordScope(params, scope)
}
