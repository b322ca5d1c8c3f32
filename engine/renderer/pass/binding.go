package pass

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/**
 * @brief A named slot of a pass and the attachment currently resolved for it.
 */
type Binding struct {
	Name     string
	SlotType metadata.SlotType
	Usage    metadata.ScopeAttachmentUsage

	/** @brief The resolved attachment. Nil until resolution succeeds. */
	Attachment *Attachment
	/** @brief The attachment owned by, or explicitly given to, this binding. */
	OriginalAttachment *Attachment
	/** @brief Binding of another pass supplying the attachment. */
	ConnectedBinding *Binding
	/** @brief Input binding used instead when the owning pass is disabled. Outputs only. */
	FallbackBinding *Binding
	/** @brief 0 for the first use of an attachment inside a pass, then 1, 2, ... */
	AttachmentUsageIndex uint8

	owner Handle
}

func newBinding(slot *metadata.PassSlot, owner Handle) *Binding {
	return &Binding{
		Name:     slot.Name,
		SlotType: slot.SlotType,
		Usage:    slot.Usage,
		owner:    owner,
	}
}

func (b *Binding) SetAttachment(a *Attachment) {
	b.Attachment = a
}

// Owner is the handle of the pass declaring the binding.
func (b *Binding) Owner() Handle {
	return b.owner
}

func (b *Binding) Access() metadata.ScopeAttachmentAccess {
	return metadata.AccessForSlot(b.SlotType)
}
