package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

// ConcatPassName joins a parent path and a pass name.
func ConcatPassName(parentPath, name string) string {
	return parentPath + "." + name
}

// Parent returns the parent pass, or nil for roots and orphans.
func (p *Pass) Parent() *ParentPass {
	if !p.parent.IsValid() {
		return nil
	}
	if parent := p.system.Pass(p.parent); parent != nil {
		return parent.AsParent()
	}
	return nil
}

// AsParent returns the ParentPass variant of this pass, if it is one.
func (p *Pass) AsParent() *ParentPass {
	pp, _ := p.variant.(*ParentPass)
	return pp
}

// OnHierarchyChange recomputes depth, path and hierarchy membership from the
// parent, then does the same for the whole subtree.
func (p *Pass) OnHierarchyChange() {
	if parent := p.Parent(); parent != nil {
		p.treeDepth = parent.treeDepth + 1
		p.path = ConcatPassName(parent.path, p.name)
		p.flags.partOfHierarchy = parent.flags.partOfHierarchy
	}
	if pp := p.AsParent(); pp != nil {
		for _, child := range pp.Children() {
			child.OnHierarchyChange()
		}
	}
}

// SetAsRoot makes the pass the root of a hierarchy.
func (p *Pass) SetAsRoot() {
	p.parent = InvalidHandle
	p.treeDepth = 0
	p.path = p.name
	p.flags.partOfHierarchy = true
	p.OnHierarchyChange()
}

func (p *Pass) RemoveFromParent() {
	parent := p.Parent()
	if parent == nil {
		p.LogWarning("trying to remove pass from parent but the pass has no parent")
		return
	}
	parent.RemoveChild(p)
}

// OnOrphan detaches the pass from its parent. The subtree leaves the
// hierarchy with it.
func (p *Pass) OnOrphan() {
	p.parent = InvalidHandle
	p.flags.partOfHierarchy = false
	p.treeDepth = 0
	p.path = p.name
	if pp := p.AsParent(); pp != nil {
		for _, child := range pp.Children() {
			child.OnHierarchyChange()
		}
	}
}

// FindAdjacentPass resolves a pass name as seen from this pass: "This",
// then "Parent" (or the parent's name), then siblings, then children.
func (p *Pass) FindAdjacentPass(name string) *Pass {
	if name == metadata.PassNameThis {
		return p
	}
	parent := p.Parent()
	if parent == nil {
		return nil
	}
	if name == metadata.PassNameParent || name == parent.name {
		return parent.Pass
	}
	found := parent.FindChildPass(name)
	if found == nil {
		if pp := p.AsParent(); pp != nil {
			found = pp.FindChildPass(name)
		}
	}
	return found
}

func (p *Pass) FindAttachmentBinding(slotName string) *Binding {
	for _, b := range p.bindings {
		if b.Name == slotName {
			return b
		}
	}
	return nil
}

func (p *Pass) FindOwnedAttachment(name string) *Attachment {
	for _, a := range p.ownedAttachments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindAttachment returns the attachment of the named binding, or else the
// owned attachment with that name.
func (p *Pass) FindAttachment(slotName string) *Attachment {
	if b := p.FindAttachmentBinding(slotName); b != nil {
		return b.Attachment
	}
	return p.FindOwnedAttachment(slotName)
}

// FindAdjacentBinding resolves a pass/attachment reference to a binding.
func (p *Pass) FindAdjacentBinding(ref metadata.PassAttachmentRef) *Binding {
	if ref.IsEmpty() {
		return nil
	}
	if other := p.FindAdjacentPass(ref.Pass); other != nil {
		return other.FindAttachmentBinding(ref.Attachment)
	}
	return nil
}
