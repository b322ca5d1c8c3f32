package pass

import (
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/**
 * @brief A pass made of child passes. Children are created from the
 * template's pass requests and follow the parent through every phase.
 */
type ParentPass struct {
	*Pass

	children        []Handle
	childrenCreated bool
}

func NewParentPass(system System, desc metadata.PassDescriptor) (*ParentPass, error) {
	p, err := newPass(system, desc)
	if err != nil {
		return nil, err
	}
	pp := &ParentPass{Pass: p}
	if err := p.register(pp); err != nil {
		return nil, err
	}
	return pp, nil
}

// Children returns the live children in execution order.
func (pp *ParentPass) Children() []*Pass {
	return pp.resolveHandles(pp.children)
}

func (pp *ParentPass) FindChildPass(name string) *Pass {
	for _, h := range pp.children {
		if child := pp.system.Pass(h); child != nil && child.name == name {
			return child
		}
	}
	return nil
}

// AddChild appends a child. A pass already attached elsewhere is moved.
func (pp *ParentPass) AddChild(child *Pass) {
	if child == nil || child == pp.Pass {
		return
	}
	if old := child.Parent(); old != nil {
		old.RemoveChild(child)
	}
	pp.children = append(pp.children, child.handle)
	child.parent = pp.handle
	if child.pipeline == nil {
		child.pipeline = pp.pipeline
	}
	child.OnHierarchyChange()
	pp.QueueForBuildAttachments()
}

func (pp *ParentPass) RemoveChild(child *Pass) {
	i := slices.Index(pp.children, child.handle)
	if i < 0 {
		return
	}
	pp.children = slices.Delete(pp.children, i, i+1)
	child.OnOrphan()
	pp.QueueForBuildAttachments()
}

// RecreateChildren queues the current children for removal. New ones are
// created from the template on the next build.
func (pp *ParentPass) RecreateChildren() {
	for _, child := range pp.Children() {
		child.QueueForRemoval()
	}
	pp.childrenCreated = false
	pp.QueueForBuildAttachments()
}

// CreateChildPasses instantiates the template's pass requests. It only runs
// once; later template changes go through RecreateChildren.
func (pp *ParentPass) CreateChildPasses() {
	if pp.childrenCreated || pp.template == nil {
		return
	}
	pp.childrenCreated = true
	for i := range pp.template.PassRequests {
		child, err := pp.system.CreatePassFromRequest(&pp.template.PassRequests[i])
		if err != nil {
			pp.LogError("failed to create child pass %s: %s", pp.template.PassRequests[i].PassName, err)
			continue
		}
		pp.AddChild(child)
	}
}

func (pp *ParentPass) ResetInternal() {
	for _, child := range pp.Children() {
		child.Reset()
	}
}

func (pp *ParentPass) BuildAttachmentsInternal() {
	pp.CreateChildPasses()
	for _, child := range pp.Children() {
		child.BuildAttachments()
	}
}

func (pp *ParentPass) OnBuildAttachmentsFinishedInternal() {
	for _, child := range pp.Children() {
		child.OnBuildAttachmentsFinished()
	}
}

func (pp *ParentPass) FrameBeginInternal(params FramePrepareParams) {
	for _, child := range pp.Children() {
		child.FrameBegin(params)
	}
}

func (pp *ParentPass) FrameEndInternal() {
	for _, child := range pp.Children() {
		child.FrameEnd()
	}
}

func (pp *ParentPass) TimestampResultInternal() TimestampResult {
	var total TimestampResult
	for _, child := range pp.Children() {
		total = total.Add(child.GetTimestampResult())
	}
	return total
}

func (pp *ParentPass) PipelineStatisticsResultInternal() PipelineStatisticsResult {
	var total PipelineStatisticsResult
	for _, child := range pp.Children() {
		total = total.Add(child.GetPipelineStatisticsResult())
	}
	return total
}

// SetTimestampQueryEnabled applies to the whole subtree.
func (pp *ParentPass) SetTimestampQueryEnabled(enable bool) {
	pp.Pass.SetTimestampQueryEnabled(enable)
	for _, child := range pp.Children() {
		if cp := child.AsParent(); cp != nil {
			cp.SetTimestampQueryEnabled(enable)
		} else {
			child.SetTimestampQueryEnabled(enable)
		}
	}
}

// SetPipelineStatisticsQueryEnabled applies to the whole subtree.
func (pp *ParentPass) SetPipelineStatisticsQueryEnabled(enable bool) {
	pp.Pass.SetPipelineStatisticsQueryEnabled(enable)
	for _, child := range pp.Children() {
		if cp := child.AsParent(); cp != nil {
			cp.SetPipelineStatisticsQueryEnabled(enable)
		} else {
			child.SetPipelineStatisticsQueryEnabled(enable)
		}
	}
}
