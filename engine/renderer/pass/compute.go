package pass

import (
	"fmt"

	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/** @brief Dispatch size of a compute pass, in threads. */
type DispatchArgs struct {
	ThreadCountX uint32
	ThreadCountY uint32
	ThreadCountZ uint32
}

/** @brief A pass dispatching a compute shader over its attachments. */
type ComputePass struct {
	*Pass

	shaderName string
	dispatch   DispatchArgs
}

func NewComputePass(system System, desc metadata.PassDescriptor) (*ComputePass, error) {
	p, err := newPass(system, desc)
	if err != nil {
		return nil, err
	}
	cp := &ComputePass{Pass: p}
	if err := p.register(cp); err != nil {
		return nil, err
	}

	if !cp.loadPassData() {
		cp.LogError("ComputePass %s: trying to construct without valid compute pass data", p.path)
	}
	return cp, nil
}

func (cp *ComputePass) loadPassData() bool {
	data := cp.passData()
	if data == nil || data.ShaderName == "" {
		return false
	}
	cp.shaderName = data.ShaderName
	cp.dispatch = DispatchArgs{
		ThreadCountX: max(data.ThreadCountX, 1),
		ThreadCountY: max(data.ThreadCountY, 1),
		ThreadCountZ: max(data.ThreadCountZ, 1),
	}
	return true
}

// BuildAttachmentsInternal picks up shader changes of an updated template.
// Invalid data keeps the previous shader.
func (cp *ComputePass) BuildAttachmentsInternal() {
	cp.loadPassData()
}

func (cp *ComputePass) ShaderName() string {
	return cp.shaderName
}

func (cp *ComputePass) Dispatch() DispatchArgs {
	return cp.dispatch
}

func (cp *ComputePass) FrameBeginInternal(params FramePrepareParams) {
	scope := cp.BuildScope(framegraph.ScopeKindCompute, func(*Binding) metadata.ScopeAttachmentUsage {
		return metadata.ScopeAttachmentUsageShader
	})
	scope.Details = fmt.Sprintf("shader=%s dispatch=%dx%dx%d", cp.shaderName,
		cp.dispatch.ThreadCountX, cp.dispatch.ThreadCountY, cp.dispatch.ThreadCountZ)
	cp.recordScope(params, scope)
}
