package systems_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/passgraph/engine/assets"
	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/renderer/pass"
	"github.com/spaghettifunk/passgraph/engine/systems"
)

func newPassSystem(t *testing.T, mutate func(c *systems.PassSystemConfig)) *systems.PassSystem {
	t.Helper()
	config := systems.DefaultPassSystemConfig()
	if mutate != nil {
		mutate(&config)
	}
	ps, err := systems.NewPassSystem(config, assets.NewCatalog())
	require.NoError(t, err)
	return ps
}

func leafTemplate() *metadata.PassTemplate {
	return &metadata.PassTemplate{
		Name:  "Leaf",
		Slots: []metadata.PassSlot{{Name: "Output", SlotType: metadata.SlotTypeOutput}},
	}
}

func frameTemplate(children ...string) *metadata.PassTemplate {
	t := &metadata.PassTemplate{Name: "Frame", PassClass: systems.PassClassParentPass}
	for _, name := range children {
		t.PassRequests = append(t.PassRequests, metadata.PassRequest{PassName: name, TemplateName: "Leaf"})
	}
	return t
}

func buildFrame(t *testing.T, ps *systems.PassSystem, children ...string) *pass.Pass {
	t.Helper()
	require.NoError(t, ps.AddPassTemplate(leafTemplate()))
	require.NoError(t, ps.AddPassTemplate(frameTemplate(children...)))
	root, err := ps.CreatePassFromTemplate("Frame", "Frame")
	require.NoError(t, err)
	require.NoError(t, ps.AddRootPass(root))
	ps.ProcessQueuedChanges()
	return root
}

func TestNewPassSystemRejectsInvalidConfig(t *testing.T) {
	config := systems.DefaultPassSystemConfig()
	config.MaxPassCount = 0
	_, err := systems.NewPassSystem(config, nil)
	assert.Error(t, err)

	config = systems.DefaultPassSystemConfig()
	config.QueueCapacity = 0
	_, err = systems.NewPassSystem(config, nil)
	assert.Error(t, err)

	config = systems.DefaultPassSystemConfig()
	config.MessageLogLimit = 0
	_, err = systems.NewPassSystem(config, nil)
	assert.Error(t, err)
}

func TestRegistryFull(t *testing.T) {
	ps := newPassSystem(t, func(c *systems.PassSystemConfig) { c.MaxPassCount = 2 })
	require.NoError(t, ps.AddPassTemplate(leafTemplate()))

	_, err := ps.CreatePassFromTemplate("A", "Leaf")
	require.NoError(t, err)
	_, err = ps.CreatePassFromTemplate("B", "Leaf")
	require.NoError(t, err)
	_, err = ps.CreatePassFromTemplate("C", "Leaf")
	assert.ErrorIs(t, err, core.ErrRegistryFull)
	assert.Equal(t, uint32(2), ps.PassCount())

	// passes outside a hierarchy are never built
	assert.Zero(t, ps.ProcessQueuedChanges())
	require.NoError(t, ps.Shutdown())
	assert.Zero(t, ps.PassCount())
}

func TestPassTemplates(t *testing.T) {
	ps := newPassSystem(t, nil)
	leaf := leafTemplate()
	require.NoError(t, ps.AddPassTemplate(leaf))
	assert.ErrorIs(t, ps.AddPassTemplate(leafTemplate()), core.ErrTemplateExists)
	require.NoError(t, ps.AddPassTemplate(frameTemplate()))

	// the library keeps its own copy
	leaf.Slots[0].Name = "Changed"
	stored, err := ps.GetPassTemplate("Leaf")
	require.NoError(t, err)
	assert.Equal(t, "Output", stored.Slots[0].Name)

	_, err = ps.GetPassTemplate("Missing")
	assert.ErrorIs(t, err, core.ErrTemplateNotFound)
	assert.ErrorIs(t, ps.UpdatePassTemplate(&metadata.PassTemplate{Name: "Missing"}), core.ErrTemplateNotFound)
	assert.Error(t, ps.AddPassTemplate(&metadata.PassTemplate{}))

	assert.Equal(t, []string{"Frame", "Leaf"}, ps.TemplateNames())
}

func TestPassClasses(t *testing.T) {
	ps := newPassSystem(t, nil)
	require.NoError(t, ps.AddPassTemplate(&metadata.PassTemplate{Name: "Custom", PassClass: "CustomPass"}))

	_, err := ps.CreatePassFromTemplate("A", "Custom")
	assert.ErrorIs(t, err, core.ErrUnknownPassClass)
	_, err = ps.CreatePassFromTemplate("A", "Missing")
	assert.ErrorIs(t, err, core.ErrTemplateNotFound)

	created := 0
	assert.Error(t, ps.RegisterPassClass("CustomPass", nil))
	require.NoError(t, ps.RegisterPassClass("CustomPass", func(system pass.System, desc metadata.PassDescriptor) (*pass.Pass, error) {
		created++
		return pass.NewPass(system, desc)
	}))
	assert.True(t, ps.HasPassClass("CustomPass"))
	assert.True(t, ps.HasPassClass(systems.PassClassCopyPass))

	p, err := ps.CreatePassFromTemplate("A", "Custom")
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, "A", p.Name())
	assert.Same(t, p, ps.Pass(p.Handle()))
}

func TestProcessQueuedChangesBuildsHierarchy(t *testing.T) {
	ps := newPassSystem(t, nil)
	root := buildFrame(t, ps, "A", "B")

	assert.Len(t, ps.RootPasses(), 1)
	assert.Equal(t, uint32(3), ps.PassCount())
	a, err := ps.FindPassByPath("Frame.A")
	require.NoError(t, err)
	assert.Same(t, root.AsParent(), a.Parent())
	assert.Equal(t, pass.StateIdle, a.State())

	_, err = ps.FindPassByPath("Frame.C")
	assert.ErrorIs(t, err, core.ErrPassNotFound)

	// nothing is queued once the hierarchy is built
	assert.Zero(t, ps.ProcessQueuedChanges())
}

func TestQueueForRemoval(t *testing.T) {
	ps := newPassSystem(t, nil)
	root := buildFrame(t, ps, "A", "B")

	a, err := ps.FindPassByPath("Frame.A")
	require.NoError(t, err)
	a.QueueForRemoval()
	ps.ProcessQueuedChanges()

	_, err = ps.FindPassByPath("Frame.A")
	assert.ErrorIs(t, err, core.ErrPassNotFound)
	assert.Equal(t, uint32(2), ps.PassCount())
	require.Len(t, root.AsParent().Children(), 1)
	assert.Equal(t, "B", root.AsParent().Children()[0].Name())
}

func TestUpdatePassTemplateRecreatesChildren(t *testing.T) {
	ps := newPassSystem(t, nil)
	root := buildFrame(t, ps, "A")
	oldA, err := ps.FindPassByPath("Frame.A")
	require.NoError(t, err)

	require.NoError(t, ps.UpdatePassTemplate(frameTemplate("A", "B")))
	assert.Equal(t, pass.StateQueued, root.State())
	ps.ProcessQueuedChanges()

	children := root.AsParent().Children()
	require.Len(t, children, 2)
	assert.Equal(t, "A", children[0].Name())
	assert.Equal(t, "B", children[1].Name())
	assert.NotSame(t, oldA, children[0])
	assert.Equal(t, uint32(3), ps.PassCount())
}

func TestUpdateLeafTemplateRebuildsRoot(t *testing.T) {
	ps := newPassSystem(t, nil)
	root := buildFrame(t, ps, "A")

	updated := leafTemplate()
	updated.Slots = append(updated.Slots, metadata.PassSlot{Name: "Input", SlotType: metadata.SlotTypeInput})
	require.NoError(t, ps.UpdatePassTemplate(updated))
	assert.Equal(t, pass.StateQueued, root.State())
	ps.ProcessQueuedChanges()

	a, err := ps.FindPassByPath("Frame.A")
	require.NoError(t, err)
	assert.Equal(t, 1, a.InputCount())
	assert.Equal(t, 1, a.OutputCount())
}

const leafLibrary = `
[[templates]]
name = "Leaf"

[[templates.slots]]
name = "Output"
type = "Output"

[[templates.image_attachments]]
name = "Color"
lifetime = "Transient"

[templates.image_attachments.image]
format = "R8G8B8A8_UNORM"
size = { width = 16, height = 16 }

[[templates.connections]]
local_slot = "Output"
attachment_ref = { pass = "This", attachment = "Color" }
`

const frameLibrary = `
templates:
  - name: Frame
    pass_class: ParentPass
    pass_requests:
      - name: A
        template: Leaf
`

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "frames"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaf.toml"), []byte(leafLibrary), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frames", "frame.yaml"), []byte(frameLibrary), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a library"), 0o644))

	ps := newPassSystem(t, nil)
	require.NoError(t, ps.LoadLibrary(dir))
	assert.Equal(t, []string{"Frame", "Leaf"}, ps.TemplateNames())

	root, err := ps.CreatePassFromTemplate("Frame", "Frame")
	require.NoError(t, err)
	require.NoError(t, ps.AddRootPass(root))
	ps.ProcessQueuedChanges()

	a, err := ps.FindPassByPath("Frame.A")
	require.NoError(t, err)
	require.NotNil(t, a.OutputBinding(0).Attachment)
	assert.Equal(t, "Frame.A.Color", a.OutputBinding(0).Attachment.AttachmentID())
	assert.True(t, ps.Validate().IsValid())

	// loading the same file again updates the templates in place
	require.NoError(t, ps.LoadLibraryFile(filepath.Join(dir, "leaf.toml")))
	assert.Equal(t, pass.StateQueued, root.State())
}

func TestLoadLibraryRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("[[templates]]\nname = 3\n"), 0o644))

	ps := newPassSystem(t, nil)
	assert.Error(t, ps.LoadLibrary(dir))
	assert.Error(t, ps.LoadLibraryFile(filepath.Join(dir, "missing.toml")))
}

func TestShutdown(t *testing.T) {
	ps := newPassSystem(t, nil)
	buildFrame(t, ps, "A", "B")
	_, err := ps.CreatePassFromTemplate("Orphan", "Leaf")
	require.NoError(t, err)

	require.NoError(t, ps.Shutdown())
	assert.Zero(t, ps.PassCount())
	assert.Empty(t, ps.RootPasses())
}
