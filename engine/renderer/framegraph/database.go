package framegraph

import (
	"fmt"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

/** @brief An attachment registered in the database for the current frame. */
type AttachmentEntry struct {
	ID       string
	Lifetime metadata.Lifetime
	/** @brief Descriptor of transient attachments, or of the imported resource. */
	Descriptor metadata.UnifiedAttachmentDescriptor
	/** @brief The imported resource. Nil for transient attachments. */
	Resource resources.Resource
}

/**
 * @brief In-memory registry of every attachment used by the frame being
 * prepared. Transient attachments are only described here; an allocator
 * backing them would read Transient() after the scopes are recorded.
 */
type AttachmentDatabase struct {
	entries map[string]*AttachmentEntry
	order   []string
}

func NewAttachmentDatabase() *AttachmentDatabase {
	return &AttachmentDatabase{
		entries: make(map[string]*AttachmentEntry),
	}
}

func (db *AttachmentDatabase) add(entry *AttachmentEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("attachment database: attachment id is required")
	}
	if _, ok := db.entries[entry.ID]; ok {
		return fmt.Errorf("attachment '%s': %w", entry.ID, core.ErrAttachmentExists)
	}
	db.entries[entry.ID] = entry
	db.order = append(db.order, entry.ID)
	return nil
}

func (db *AttachmentDatabase) CreateTransientImage(id string, desc metadata.ImageDescriptor) error {
	return db.add(&AttachmentEntry{
		ID:         id,
		Lifetime:   metadata.LifetimeTransient,
		Descriptor: metadata.NewImageAttachmentDescriptor(desc.Normalized()),
	})
}

func (db *AttachmentDatabase) CreateTransientBuffer(id string, desc metadata.BufferDescriptor) error {
	return db.add(&AttachmentEntry{
		ID:         id,
		Lifetime:   metadata.LifetimeTransient,
		Descriptor: metadata.NewBufferAttachmentDescriptor(desc),
	})
}

func (db *AttachmentDatabase) ImportImage(id string, image *resources.AttachmentImage) error {
	if image == nil {
		return fmt.Errorf("attachment '%s': cannot import a nil image", id)
	}
	return db.add(&AttachmentEntry{
		ID:         id,
		Lifetime:   metadata.LifetimeImported,
		Descriptor: metadata.NewImageAttachmentDescriptor(image.Descriptor),
		Resource:   image,
	})
}

func (db *AttachmentDatabase) ImportBuffer(id string, buffer *resources.Buffer) error {
	if buffer == nil {
		return fmt.Errorf("attachment '%s': cannot import a nil buffer", id)
	}
	return db.add(&AttachmentEntry{
		ID:         id,
		Lifetime:   metadata.LifetimeImported,
		Descriptor: metadata.NewBufferAttachmentDescriptor(buffer.Descriptor),
		Resource:   buffer,
	})
}

func (db *AttachmentDatabase) IsAttachmentValid(id string) bool {
	_, ok := db.entries[id]
	return ok
}

// Attachments returns the registered ids in registration order.
func (db *AttachmentDatabase) Attachments() []string {
	out := make([]string, len(db.order))
	copy(out, db.order)
	return out
}

func (db *AttachmentDatabase) Get(id string) (*AttachmentEntry, bool) {
	e, ok := db.entries[id]
	return e, ok
}

// Transient returns the transient attachments in registration order.
func (db *AttachmentDatabase) Transient() []*AttachmentEntry {
	return db.filter(metadata.LifetimeTransient)
}

// Imported returns the imported attachments in registration order.
func (db *AttachmentDatabase) Imported() []*AttachmentEntry {
	return db.filter(metadata.LifetimeImported)
}

func (db *AttachmentDatabase) filter(l metadata.Lifetime) []*AttachmentEntry {
	var out []*AttachmentEntry
	for _, id := range db.order {
		if e := db.entries[id]; e.Lifetime == l {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets every attachment. Imported resources stay owned by whoever
// registered them.
func (db *AttachmentDatabase) Reset() {
	clear(db.entries)
	db.order = db.order[:0]
}
