package framegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

func TestAttachmentDatabaseRejectsDuplicates(t *testing.T) {
	db := NewAttachmentDatabase()
	desc := metadata.ImageDescriptor{Size: metadata.Size{Width: 64, Height: 64}, Format: metadata.FormatR8G8B8A8Unorm}

	require.NoError(t, db.CreateTransientImage("Root.Forward.Color", desc))
	err := db.CreateTransientImage("Root.Forward.Color", desc)
	assert.ErrorIs(t, err, core.ErrAttachmentExists)

	assert.Error(t, db.CreateTransientBuffer("", metadata.BufferDescriptor{ByteCount: 16}))
}

func TestAttachmentDatabaseOrderAndLifetimes(t *testing.T) {
	db := NewAttachmentDatabase()
	image := &resources.AttachmentImage{Name: "SwapChain", Descriptor: metadata.ImageDescriptor{Format: metadata.FormatB8G8R8A8Unorm}}

	require.NoError(t, db.CreateTransientBuffer("Root.Lights", metadata.BufferDescriptor{ByteCount: 4096}))
	require.NoError(t, db.ImportImage(image.AttachmentID(), image))
	require.NoError(t, db.CreateTransientImage("Root.Depth", metadata.ImageDescriptor{Format: metadata.FormatD32Float}))

	assert.Equal(t, []string{"Root.Lights", "SwapChain", "Root.Depth"}, db.Attachments())
	assert.Len(t, db.Transient(), 2)
	imported := db.Imported()
	require.Len(t, imported, 1)
	assert.Same(t, image, imported[0].Resource)

	depth, ok := db.Get("Root.Depth")
	require.True(t, ok)
	assert.Equal(t, uint16(1), depth.Descriptor.Image.MipLevels)
	assert.Equal(t, metadata.ImageDimension2D, depth.Descriptor.Image.Dimension)

	assert.True(t, db.IsAttachmentValid("SwapChain"))
	db.Reset()
	assert.False(t, db.IsAttachmentValid("SwapChain"))
	assert.Empty(t, db.Attachments())
	assert.Error(t, db.ImportBuffer("Nil", nil))
}

func TestBuilderScopes(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddScope(Scope{ID: "Root.Forward", Kind: ScopeKindRaster}))
	require.NoError(t, b.AddScope(Scope{ID: "Root.Bloom", Kind: ScopeKindCompute, ExecuteAfter: []string{"Root.Forward"}}))
	assert.Error(t, b.AddScope(Scope{ID: "Root.Forward"}))

	s, ok := b.Scope("Root.Bloom")
	require.True(t, ok)
	assert.Equal(t, ScopeKindCompute, s.Kind)
	assert.Len(t, b.Scopes(), 2)

	require.NoError(t, b.AttachmentDatabase().CreateTransientBuffer("Root.X", metadata.BufferDescriptor{ByteCount: 4}))
	b.Reset()
	assert.Empty(t, b.Scopes())
	assert.Empty(t, b.AttachmentDatabase().Attachments())
	_, ok = b.Scope("Root.Bloom")
	assert.False(t, ok)
}

func TestScopeString(t *testing.T) {
	s := Scope{
		ID:   "Root.Copy",
		Kind: ScopeKindCopy,
		Attachments: []ScopeAttachment{
			{ID: "A", SlotName: "Input", Usage: metadata.ScopeAttachmentUsageCopy, Access: metadata.ScopeAttachmentAccessRead},
			{ID: "A", SlotName: "Output", Usage: metadata.ScopeAttachmentUsageCopy, Access: metadata.ScopeAttachmentAccessWrite, UsageIndex: 1},
		},
	}
	assert.Equal(t, "Root.Copy [Copy]\n   Input -> A (Copy, Read)\n   Output -> A (Copy, Write, use 1)", s.String())
}
