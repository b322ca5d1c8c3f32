package pass

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

// CreateSlotsFromTemplate adds one binding per template slot, in declaration order.
func (p *Pass) CreateSlotsFromTemplate() {
	if p.template == nil {
		return
	}
	for i := range p.template.Slots {
		p.AddAttachmentBinding(newBinding(&p.template.Slots[i], p.handle))
	}
}

// ProcessConnection resolves a connection of a local slot to a binding of
// this pass, its parent, a sibling or a child. Failures are logged on the
// pass and leave the local binding unconnected.
func (p *Pass) ProcessConnection(connection metadata.PassConnection) {
	local := p.FindAttachmentBinding(connection.LocalSlot)
	if local == nil {
		p.LogError("ProcessConnection - pass %s failed to find slot %s", p.path, connection.LocalSlot)
		return
	}

	connectedPassName := connection.AttachmentRef.Pass
	connectedSlotName := connection.AttachmentRef.Attachment
	var connected *Binding
	foundPass := false

	if connectedPassName == metadata.PassNameThis {
		attachment := p.FindOwnedAttachment(connectedSlotName)
		if attachment == nil {
			p.LogError("ProcessConnection - pass %s doesn't own an attachment named %s", p.path, connectedSlotName)
		}
		local.SetAttachment(attachment)
		local.OriginalAttachment = attachment
		return
	}

	if parent := p.Parent(); parent != nil {
		if connectedPassName == metadata.PassNameParent || connectedPassName == parent.name {
			foundPass = true
			connected = parent.FindAttachmentBinding(connectedSlotName)
			if connected != nil && hierarchySlotMismatch(local, connected) {
				p.LogError("ProcessConnection - when connecting to a parent slot, both slots must be of the same type (or one must be InputOutput)")
				connected = nil
			}
		} else if sibling := parent.FindChildPass(connectedPassName); sibling != nil {
			foundPass = true
			connected = sibling.FindAttachmentBinding(connectedSlotName)
			if connected != nil && siblingSlotMismatch(local, connected) {
				p.LogError("ProcessConnection - when connecting to a sibling slot, both slots must be of different types (or be InputOutputs)")
				connected = nil
			}
		}
	}

	if pp := p.AsParent(); !foundPass && pp != nil {
		if child := pp.FindChildPass(connectedPassName); child != nil {
			foundPass = true
			connected = child.FindAttachmentBinding(connectedSlotName)
			if connected != nil && hierarchySlotMismatch(local, connected) {
				p.LogError("ProcessConnection - when connecting to a child slot, both slots must be of the same type (or one must be InputOutput)")
				connected = nil
			}
		}
	}

	if connected == nil {
		switch {
		case !p.flags.partOfHierarchy:
			// Passes being torn down lose their neighbors before they are removed.
			p.LogWarning("ProcessConnection - pass [%s] is no longer part of the hierarchy and about to be removed", p.path)
		case foundPass:
			p.LogError("ProcessConnection - pass [%s] couldn't find a valid binding [%s] on pass [%s]", p.path, connectedSlotName, connectedPassName)
		default:
			p.LogError("ProcessConnection - pass [%s] is trying to connect to but could not find neighbor or child pass named [%s]", p.path, connectedPassName)
		}
		return
	}

	local.ConnectedBinding = connected
	p.UpdateConnectedBinding(local)
}

// Parent and child slots forward data, so their types must match.
func hierarchySlotMismatch(local, connected *Binding) bool {
	return connected.SlotType != local.SlotType &&
		connected.SlotType != metadata.SlotTypeInputOutput &&
		local.SlotType != metadata.SlotTypeInputOutput
}

// Sibling slots hand data over, so their types must differ.
func siblingSlotMismatch(local, connected *Binding) bool {
	return connected.SlotType == local.SlotType &&
		connected.SlotType != metadata.SlotTypeInputOutput
}

// ProcessFallbackConnection sets up the pass-through used when the pass is
// disabled. The input must be a strict Input and the output a strict Output.
func (p *Pass) ProcessFallbackConnection(connection metadata.PassFallbackConnection) {
	input := p.FindAttachmentBinding(connection.InputSlotName)
	output := p.FindAttachmentBinding(connection.OutputSlotName)

	if input == nil || output == nil {
		if input == nil {
			p.LogError("ProcessFallbackConnection - pass %s failed to find input slot %s", p.path, connection.InputSlotName)
		}
		if output == nil {
			p.LogError("ProcessFallbackConnection - pass %s failed to find output slot %s", p.path, connection.OutputSlotName)
		}
		return
	}

	if input.SlotType != metadata.SlotTypeInput || output.SlotType != metadata.SlotTypeOutput {
		if input.SlotType != metadata.SlotTypeInput {
			p.LogError("ProcessFallbackConnection - pass %s specifies fallback connection input %s, which is not an input", p.path, connection.InputSlotName)
		}
		if output.SlotType != metadata.SlotTypeOutput {
			p.LogError("ProcessFallbackConnection - pass %s specifies fallback connection output %s, which is not an output", p.path, connection.OutputSlotName)
		}
		return
	}

	output.FallbackBinding = input
	p.UpdateConnectedBinding(output)
}

// UpdateConnectedBinding refreshes the attachment of a binding. Priority:
// fallback (disabled pass, output slot, not building), connected binding,
// original attachment. Attachments rejected by the slot's filters are
// dropped.
func (p *Pass) UpdateConnectedBinding(b *Binding) {
	var target *Attachment
	switch {
	case p.state != StateBuilding && !p.IsEnabled() && b.SlotType == metadata.SlotTypeOutput && b.FallbackBinding != nil:
		target = b.FallbackBinding.Attachment
	case b.ConnectedBinding != nil:
		target = b.ConnectedBinding.Attachment
	case b.OriginalAttachment != nil:
		target = b.OriginalAttachment
	}

	if target == nil {
		return
	}

	if p.template != nil && !p.template.AttachmentFitsSlot(target.Descriptor, b.Name) {
		p.LogError("UpdateConnectedBinding - attachment %s did not match the filters of slot %s on pass %s", target.Name, b.Name, p.path)
		b.SetAttachment(nil)
		return
	}

	b.SetAttachment(target)
}

func (p *Pass) UpdateConnectedBindings() {
	for _, b := range p.bindings {
		p.UpdateConnectedBinding(b)
	}
}

// UpdateOwnedAttachments recomputes the sourced properties of every owned attachment.
func (p *Pass) UpdateOwnedAttachments() {
	for _, a := range p.ownedAttachments {
		a.Update()
	}
}

// UpdateAttachmentUsageIndices numbers repeated uses of the same attachment
// (same connected binding or same attachment) inside the pass.
func (p *Pass) UpdateAttachmentUsageIndices() {
	for i, first := range p.bindings {
		if first.AttachmentUsageIndex != 0 {
			continue
		}
		var duplicates uint8
		for _, other := range p.bindings[i+1:] {
			sameConnection := first.ConnectedBinding != nil && first.ConnectedBinding == other.ConnectedBinding
			sameAttachment := first.Attachment != nil && first.Attachment == other.Attachment
			if sameConnection || sameAttachment {
				duplicates++
				other.AttachmentUsageIndex = duplicates
			}
		}
	}
}

// --- Attachment creation ---

type attachmentSources struct {
	size        metadata.SizeSource
	format      metadata.PassAttachmentRef
	multisample metadata.PassAttachmentRef
	arraySize   metadata.PassAttachmentRef
}

func (p *Pass) createImageAttachment(desc *metadata.PassImageAttachmentDesc) *Attachment {
	a := newAttachment(desc.Name, desc.Lifetime, metadata.NewImageAttachmentDescriptor(desc.ImageDescriptor.Normalized()))
	if desc.Lifetime == metadata.LifetimeImported {
		p.loadImportedImage(a, desc.AssetRef)
	} else {
		a.ComputePathName(p.path)
	}
	p.setupAttachmentSources(a, attachmentSources{
		size:        desc.SizeSource,
		format:      desc.FormatSource,
		multisample: desc.MultisampleSource,
		arraySize:   desc.ArraySizeSource,
	})
	return a
}

func (p *Pass) createBufferAttachment(desc *metadata.PassBufferAttachmentDesc) *Attachment {
	a := newAttachment(desc.Name, desc.Lifetime, metadata.NewBufferAttachmentDescriptor(desc.BufferDescriptor))
	if desc.Lifetime == metadata.LifetimeImported {
		p.loadImportedBuffer(a, desc.AssetRef)
	} else {
		a.ComputePathName(p.path)
	}
	p.setupAttachmentSources(a, attachmentSources{size: desc.SizeSource})
	return a
}

func (p *Pass) loadImportedImage(a *Attachment, ref metadata.AssetRef) {
	loader := p.system.AssetLoader()
	if ref.AssetID == "" || loader == nil {
		return
	}
	image, err := loader.LoadImage(ref.AssetID)
	if err != nil {
		p.LogError("imported attachment %s: %s", a.Name, err)
		return
	}
	a.Path = image.AttachmentID()
	a.Descriptor.Image = image.Descriptor.Normalized()
	a.ImportedResource = image
}

func (p *Pass) loadImportedBuffer(a *Attachment, ref metadata.AssetRef) {
	loader := p.system.AssetLoader()
	if ref.AssetID == "" || loader == nil {
		return
	}
	buffer, err := loader.LoadBuffer(ref.AssetID)
	if err != nil {
		p.LogError("imported attachment %s: %s", a.Name, err)
		return
	}
	a.Path = buffer.AttachmentID()
	a.Descriptor.Buffer = buffer.Descriptor
	a.ImportedResource = buffer
}

func (p *Pass) setupAttachmentSources(a *Attachment, src attachmentSources) {
	a.owner = p.handle

	if src.size.Source.IsPipeline() {
		a.pipeline = p.pipeline
		a.settings.sizeFromPipeline = true
		a.sizeMultipliers = src.size.Multipliers
	} else if b := p.findSourceBinding(a, src.size.Source); b != nil {
		a.sizeSource = b
		a.sizeMultipliers = src.size.Multipliers
	}

	if src.format.IsPipeline() {
		a.pipeline = p.pipeline
		a.settings.formatFromPipeline = true
	} else if b := p.findSourceBinding(a, src.format); b != nil {
		a.formatSource = b
	}

	if src.multisample.IsPipeline() {
		a.pipeline = p.pipeline
		a.settings.multisampleFromPipeline = true
	} else if b := p.findSourceBinding(a, src.multisample); b != nil {
		a.multisampleSource = b
	}

	if b := p.findSourceBinding(a, src.arraySize); b != nil {
		a.arraySizeSource = b
	}

	if a.settings != (attachmentSettings{}) && p.pipeline == nil {
		p.LogWarning("attachment %s sources properties from the pipeline but the pass has no render pipeline", a.Name)
	}
}

func (p *Pass) findSourceBinding(a *Attachment, ref metadata.PassAttachmentRef) *Binding {
	if ref.IsEmpty() {
		return nil
	}
	b := p.FindAdjacentBinding(ref)
	if b == nil {
		p.LogError("attachment %s could not find source binding %s on pass %s", a.Name, ref.Attachment, ref.Pass)
	}
	return b
}

// CreateAttachmentsFromTemplate creates the owned image attachments, then
// the owned buffer attachments.
func (p *Pass) CreateAttachmentsFromTemplate() {
	if p.template == nil {
		return
	}
	for i := range p.template.ImageAttachments {
		p.ownedAttachments = append(p.ownedAttachments, p.createImageAttachment(&p.template.ImageAttachments[i]))
	}
	for i := range p.template.BufferAttachments {
		p.ownedAttachments = append(p.ownedAttachments, p.createBufferAttachment(&p.template.BufferAttachments[i]))
	}
}

// AttachImageToSlot binds an externally owned image to an empty slot. Images
// without an attachment id get an attachment with a generated one.
func (p *Pass) AttachImageToSlot(slot string, image *resources.AttachmentImage) {
	local := p.attachableBinding("AttachImageToSlot", slot)
	if local == nil || image == nil {
		return
	}
	a := newAttachment(attachmentIDOrNew(image), metadata.LifetimeImported, metadata.NewImageAttachmentDescriptor(image.Descriptor.Normalized()))
	p.setupAttachmentSources(a, attachmentSources{})
	a.ImportedResource = image
	p.ownedAttachments = append(p.ownedAttachments, a)

	local.SetAttachment(a)
	local.OriginalAttachment = a
}

// AttachBufferToSlot binds an externally owned buffer to an empty slot.
func (p *Pass) AttachBufferToSlot(slot string, buffer *resources.Buffer) {
	local := p.attachableBinding("AttachBufferToSlot", slot)
	if local == nil || buffer == nil {
		return
	}
	a := newAttachment(attachmentIDOrNew(buffer), metadata.LifetimeImported, metadata.NewBufferAttachmentDescriptor(buffer.Descriptor))
	p.setupAttachmentSources(a, attachmentSources{})
	a.ImportedResource = buffer
	p.ownedAttachments = append(p.ownedAttachments, a)

	local.SetAttachment(a)
	local.OriginalAttachment = a
}

// attachmentIDOrNew generates an id for resources without one. The resource
// itself is left untouched.
func attachmentIDOrNew(r resources.Resource) string {
	if id := r.AttachmentID(); id != "" {
		return id
	}
	return uuid.NewString()
}

func (p *Pass) attachableBinding(op, slot string) *Binding {
	local := p.FindAttachmentBinding(slot)
	if local == nil {
		p.LogError("%s - pass %s failed to find slot %s", op, p.path, slot)
		return nil
	}
	// Replacing an attachment would also require fixing up the connected bindings.
	if local.Attachment != nil {
		p.LogError("%s - slot %s already has attachment %s", op, slot, local.Attachment.Name)
		return nil
	}
	return local
}
