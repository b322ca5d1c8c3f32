package pass

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

const indentUnit = "   "

func writeIndent(sb *strings.Builder, indent uint32) {
	for i := uint32(0); i < indent; i++ {
		sb.WriteString(indentUnit)
	}
}

func (p *Pass) writePassName(sb *strings.Builder, indent uint32) {
	sb.WriteString("\n")
	writeIndent(sb, indent)
	sb.WriteString("- ")
	sb.WriteString(p.name)
	sb.WriteString("\n")
}

func (p *Pass) messagesString(messages []string) string {
	var sb strings.Builder
	p.writePassName(&sb, 0)
	for _, m := range messages {
		writeIndent(&sb, 1)
		sb.WriteString(m)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (p *Pass) PrintErrors() {
	if p.system.ValidationEnabled() {
		core.LogInfo("%s", p.messagesString(p.errorMessages))
	}
}

func (p *Pass) PrintWarnings() {
	if p.system.ValidationEnabled() {
		core.LogInfo("%s", p.messagesString(p.warningMessages))
	}
}

func (p *Pass) bindingsWithoutAttachmentsString(mask metadata.SlotMask) string {
	var sb strings.Builder
	p.writePassName(&sb, 0)
	for _, b := range p.bindings {
		if b.SlotType.Mask()&mask != 0 && b.Attachment == nil {
			writeIndent(&sb, 1)
			sb.WriteString(b.Name)
			sb.WriteString(" has no valid attachment\n")
		}
	}
	return sb.String()
}

// PrintBindingsWithoutAttachments logs the bindings matching the slot mask
// that have no attachment.
func (p *Pass) PrintBindingsWithoutAttachments(mask metadata.SlotMask) {
	if p.system.ValidationEnabled() {
		core.LogInfo("%s", p.bindingsWithoutAttachmentsString(mask))
	}
}

// BindingString describes a binding, e.g. "Color (Image, 1920, 1080, MSAA_4x)"
// or "Lights (Buffer, 4096 bytes)".
func BindingString(b *Binding) string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	if b.Attachment == nil {
		return sb.String()
	}
	sb.WriteString(" (")
	switch b.Attachment.Descriptor.Type {
	case metadata.AttachmentTypeImage:
		desc := b.Attachment.Descriptor.Image
		sb.WriteString("Image")
		dims := int(desc.Dimension)
		if dims == 0 {
			dims = int(metadata.ImageDimension2D)
		}
		for i := 0; i < dims; i++ {
			fmt.Fprintf(&sb, ", %d", desc.Size.Component(i))
		}
		if ms := desc.MultisampleState; ms.Samples > 1 {
			if ms.CustomPositionsCount > 0 {
				sb.WriteString(", Custom_MSAA_")
			} else {
				sb.WriteString(", MSAA_")
			}
			fmt.Fprintf(&sb, "%dx", ms.Samples)
		}
	case metadata.AttachmentTypeBuffer:
		fmt.Fprintf(&sb, "Buffer, %d bytes", b.Attachment.Descriptor.Buffer.ByteCount)
	}
	sb.WriteString(")")
	return sb.String()
}

func (p *Pass) writeBindingAndConnection(sb *strings.Builder, b *Binding) {
	writeIndent(sb, p.treeDepth+2)
	sb.WriteString(BindingString(b))
	if b.ConnectedBinding != nil {
		sb.WriteString(" connected to ")
		sb.WriteString(BindingString(b.ConnectedBinding))
	}
	sb.WriteString("\n")
}

func (p *Pass) writeBindingGroup(sb *strings.Builder, title string, indices []int) {
	if len(indices) == 0 {
		return
	}
	writeIndent(sb, p.treeDepth+1)
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, idx := range indices {
		p.writeBindingAndConnection(sb, p.bindings[idx])
	}
}

// DebugString renders the pass, its bindings and, for parents, the subtree.
func (p *Pass) DebugString() string {
	var sb strings.Builder
	p.writePassName(&sb, p.treeDepth)
	p.writeBindingGroup(&sb, "Inputs:", p.inputBindingIndices)
	p.writeBindingGroup(&sb, "Input/Outputs:", p.inputOutputBindingIndices)
	p.writeBindingGroup(&sb, "Outputs:", p.outputBindingIndices)
	if pp := p.AsParent(); pp != nil {
		for _, child := range pp.Children() {
			sb.WriteString(child.DebugString())
		}
	}
	return sb.String()
}

func (p *Pass) DebugPrint() {
	if p.system.ValidationEnabled() {
		core.LogInfo("%s", p.DebugString())
	}
}
