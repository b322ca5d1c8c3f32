package pass

import (
	"fmt"

	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/**
 * @brief A pass drawing the items of a draw list into its render targets.
 */
type RasterPass struct {
	*Pass

	drawListTag     string
	pipelineViewTag string
}

func NewRasterPass(system System, desc metadata.PassDescriptor) (*RasterPass, error) {
	p, err := newPass(system, desc)
	if err != nil {
		return nil, err
	}
	rp := &RasterPass{Pass: p}
	rp.loadTags()
	if err := p.register(rp); err != nil {
		return nil, err
	}
	return rp, nil
}

func (rp *RasterPass) loadTags() {
	rp.drawListTag, rp.pipelineViewTag = "", ""
	if data := rp.passData(); data != nil {
		rp.drawListTag = data.DrawListTag
		rp.pipelineViewTag = data.PipelineViewTag
	}
	rp.flags.hasDrawListTag = rp.drawListTag != ""
	rp.flags.hasPipelineViewTag = rp.pipelineViewTag != ""
}

// BuildAttachmentsInternal picks up tag changes of an updated template.
func (rp *RasterPass) BuildAttachmentsInternal() {
	rp.loadTags()
}

func (rp *RasterPass) DrawListTagInternal() string {
	return rp.drawListTag
}

func (rp *RasterPass) PipelineViewTagInternal() string {
	return rp.pipelineViewTag
}

func (rp *RasterPass) FrameBeginInternal(params FramePrepareParams) {
	scope := rp.BuildScope(framegraph.ScopeKindRaster, rasterUsage)
	if rp.drawListTag != "" {
		scope.Details = fmt.Sprintf("drawlist=%s", rp.drawListTag)
		if rp.pipelineViewTag != "" {
			scope.Details += fmt.Sprintf(" view=%s", rp.pipelineViewTag)
		}
	}
	rp.recordScope(params, scope)
}

// Outputs are render targets (depth formats bind as depth stencil), inputs
// are read by shaders.
func rasterUsage(b *Binding) metadata.ScopeAttachmentUsage {
	if b.SlotType == metadata.SlotTypeInput || b.Attachment.Descriptor.Type != metadata.AttachmentTypeImage {
		return metadata.ScopeAttachmentUsageShader
	}
	if b.Attachment.Descriptor.Image.Format.IsDepth() {
		return metadata.ScopeAttachmentUsageDepthStencil
	}
	return metadata.ScopeAttachmentUsageRenderTarget
}
