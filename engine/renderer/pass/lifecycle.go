package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

// QueueForBuildAttachments asks the pass system to rebuild the pass. Requests
// made while the system or the pass is building are dropped, and a pass is
// queued once.
func (p *Pass) QueueForBuildAttachments() {
	if p.system.IsBuilding() || p.state == StateQueued || p.state == StateBuilding {
		return
	}
	p.system.QueueForBuildAttachments(p)
	p.state = StateQueued
}

// CancelBuild returns a queued pass to idle when the pass system drops it
// from the build queue.
func (p *Pass) CancelBuild() {
	if p.state == StateQueued {
		p.state = StateIdle
	}
}

func (p *Pass) QueueForRemoval() {
	p.system.QueueForRemoval(p)
}

// SetupInputsFromRequest processes the input connections of the request the
// pass was created from.
func (p *Pass) SetupInputsFromRequest() {
	if !p.flags.createdByRequest {
		return
	}
	for _, c := range p.request.InputConnections {
		p.ProcessConnection(c)
	}
}

// SetupPassDependencies resolves the request's execute-after/before passes
// and inherits the parent's.
func (p *Pass) SetupPassDependencies() {
	if p.flags.createdByRequest {
		for _, name := range p.request.ExecuteAfterPasses {
			if other := p.FindAdjacentPass(name); other != nil {
				p.executeAfterPasses = append(p.executeAfterPasses, other.handle)
			}
		}
		for _, name := range p.request.ExecuteBeforePasses {
			if other := p.FindAdjacentPass(name); other != nil {
				p.executeBeforePasses = append(p.executeBeforePasses, other.handle)
			}
		}
	}
	if parent := p.Parent(); parent != nil {
		p.executeAfterPasses = append(p.executeAfterPasses, parent.executeAfterPasses...)
		p.executeBeforePasses = append(p.executeBeforePasses, parent.executeBeforePasses...)
	}
}

// SetupOutputsFromTemplate processes the template's output connections, then
// its fallback connections.
func (p *Pass) SetupOutputsFromTemplate() {
	if p.template == nil {
		return
	}
	for _, c := range p.template.OutputConnections {
		p.ProcessConnection(c)
	}
	for _, c := range p.template.FallbackConnections {
		p.ProcessFallbackConnection(c)
	}
}

// StoreImportedAttachmentReferences keeps imported attachments alive while
// the owned attachment list is rebuilt.
func (p *Pass) StoreImportedAttachmentReferences() {
	p.importedAttachmentStore = p.importedAttachmentStore[:0]
	for _, a := range p.ownedAttachments {
		if a.Lifetime == metadata.LifetimeImported {
			p.importedAttachmentStore = append(p.importedAttachmentStore, a)
		}
	}
}

// Reset clears bindings, owned attachments and dependencies. It runs at most
// once per build cycle.
func (p *Pass) Reset() {
	switch p.state {
	case StateReset, StateBuilding, StateBuilt:
		return
	}
	p.state = StateReset

	p.StoreImportedAttachmentReferences()

	p.inputBindingIndices = p.inputBindingIndices[:0]
	p.inputOutputBindingIndices = p.inputOutputBindingIndices[:0]
	p.outputBindingIndices = p.outputBindingIndices[:0]
	p.bindings = nil
	p.ownedAttachments = nil
	p.executeAfterPasses = p.executeAfterPasses[:0]
	p.executeBeforePasses = p.executeBeforePasses[:0]

	if h, ok := p.variant.(ResetHook); ok {
		h.ResetInternal()
	}
}

// BuildAttachments creates the bindings and owned attachments of the pass and
// resolves its connections. It runs at most once per build cycle.
func (p *Pass) BuildAttachments() {
	switch p.state {
	case StateBuilding, StateBuilt:
		return
	}
	p.state = StateBuilding

	p.CreateSlotsFromTemplate()
	p.SetupInputsFromRequest()
	p.SetupPassDependencies()
	p.CreateAttachmentsFromTemplate()
	if h, ok := p.variant.(BuildHook); ok {
		h.BuildAttachmentsInternal()
	}
	p.SetupOutputsFromTemplate()
	p.UpdateConnectedBindings()
	p.UpdateOwnedAttachments()
	p.UpdateAttachmentUsageIndices()

	p.state = StateBuilt
}

// OnBuildAttachmentsFinished closes the build cycle so the next structural
// change can build the pass again.
func (p *Pass) OnBuildAttachmentsFinished() {
	p.state = StateIdle
	p.importedAttachmentStore = p.importedAttachmentStore[:0]
	if h, ok := p.variant.(BuildFinishedHook); ok {
		h.OnBuildAttachmentsFinishedInternal()
	}
}

// CreateTransientAttachments declares the owned transient attachments in the
// attachment database.
func (p *Pass) CreateTransientAttachments(db AttachmentDatabase) {
	for _, a := range p.ownedAttachments {
		if a.Lifetime != metadata.LifetimeTransient {
			continue
		}
		var err error
		switch a.Descriptor.Type {
		case metadata.AttachmentTypeImage:
			err = db.CreateTransientImage(a.AttachmentID(), a.Descriptor.Image)
		case metadata.AttachmentTypeBuffer:
			err = db.CreateTransientBuffer(a.AttachmentID(), a.Descriptor.Buffer)
		default:
			p.LogError("transient attachment %s has an unsupported attachment type", a.Name)
			continue
		}
		if err != nil {
			p.LogError("failed to create transient attachment %s: %s", a.AttachmentID(), err)
		}
	}
}

// ImportAttachments imports the owned imported attachments, once per frame.
// Attachments without a resource are skipped.
func (p *Pass) ImportAttachments(db AttachmentDatabase) {
	for _, a := range p.ownedAttachments {
		if a.Lifetime != metadata.LifetimeImported || a.ImportedResource == nil {
			continue
		}
		id := a.AttachmentID()
		if db.IsAttachmentValid(id) {
			continue
		}
		var err error
		switch r := a.ImportedResource.(type) {
		case *resources.AttachmentImage:
			err = db.ImportImage(id, r)
		case *resources.Buffer:
			err = db.ImportBuffer(id, r)
		default:
			p.LogError("can't import attachment %s: unsupported attachment type", id)
			continue
		}
		if err != nil {
			p.LogError("failed to import attachment %s: %s", id, err)
		}
	}
}

// FrameBegin refreshes the bindings and registers the pass attachments for
// the frame. Disabled passes only refresh their bindings so pass-through
// outputs stay valid for the passes reading them.
func (p *Pass) FrameBegin(params FramePrepareParams) {
	if !p.IsEnabled() {
		p.UpdateConnectedBindings()
		return
	}
	p.flags.rendering = true
	if p.flags.timestampQueryEnabled {
		p.clock.Start()
	}

	p.UpdateConnectedBindings()
	p.UpdateOwnedAttachments()

	if params.AttachmentDatabase != nil {
		p.CreateTransientAttachments(params.AttachmentDatabase)
		p.ImportAttachments(params.AttachmentDatabase)
	}

	if h, ok := p.variant.(FrameBeginHook); ok {
		h.FrameBeginInternal(params)
	}
}

// FrameEnd only reaches the hook when FrameBegin ran for this frame.
func (p *Pass) FrameEnd() {
	if !p.flags.rendering {
		return
	}
	if h, ok := p.variant.(FrameEndHook); ok {
		h.FrameEndInternal()
	}
	if p.clock.Running() {
		p.clock.Update()
		p.timestamp = TimestampResult{Duration: p.clock.ElapsedDuration()}
		p.clock.Stop()
	}
	p.flags.rendering = false
}
