package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

// usageResolver picks the scope usage of a binding whose slot declares none.
type usageResolver func(b *Binding) metadata.ScopeAttachmentUsage

// BuildScope turns the resolved bindings of the pass into a frame graph
// scope. Bindings without attachment are left out.
func (p *Pass) BuildScope(kind framegraph.ScopeKind, defaultUsage usageResolver) framegraph.Scope {
	scope := framegraph.Scope{
		ID:   p.path,
		Kind: kind,
	}
	for _, other := range p.ExecuteAfterPasses() {
		scope.ExecuteAfter = append(scope.ExecuteAfter, other.path)
	}
	for _, other := range p.ExecuteBeforePasses() {
		scope.ExecuteBefore = append(scope.ExecuteBefore, other.path)
	}
	for _, b := range p.bindings {
		if b.Attachment == nil {
			continue
		}
		usage := b.Usage
		if usage == metadata.ScopeAttachmentUsageUninitialized && defaultUsage != nil {
			usage = defaultUsage(b)
		}
		scope.Attachments = append(scope.Attachments, framegraph.ScopeAttachment{
			ID:         b.Attachment.AttachmentID(),
			SlotName:   b.Name,
			Usage:      usage,
			Access:     b.Access(),
			UsageIndex: b.AttachmentUsageIndex,
		})
	}
	return scope
}

// recordScope submits the scope and updates the statistics of the pass.
func (p *Pass) recordScope(params FramePrepareParams, scope framegraph.Scope) {
	p.statistics = PipelineStatisticsResult{}
	if params.Scopes == nil {
		return
	}
	if err := params.Scopes.AddScope(scope); err != nil {
		p.LogError("failed to record scope: %s", err)
		return
	}
	p.statistics = PipelineStatisticsResult{
		ScopeCount:      1,
		AttachmentCount: uint64(len(scope.Attachments)),
	}
}
