package pass_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/passgraph/engine/assets"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/renderer/pass"
	"github.com/spaghettifunk/passgraph/engine/systems"
)

type testPipeline struct {
	settings metadata.PipelineRenderSettings
}

func (tp *testPipeline) Name() string { return "TestPipeline" }

func (tp *testPipeline) RenderSettings() metadata.PipelineRenderSettings {
	return tp.settings
}

func newSystem(t *testing.T, validation bool) (*systems.PassSystem, *assets.Catalog) {
	t.Helper()
	catalog := assets.NewCatalog()
	config := systems.DefaultPassSystemConfig()
	config.ValidationEnabled = validation
	ps, err := systems.NewPassSystem(config, catalog)
	require.NoError(t, err)
	return ps, catalog
}

func slot(name string, slotType metadata.SlotType) metadata.PassSlot {
	return metadata.PassSlot{Name: name, SlotType: slotType}
}

func connect(local, passName, attachment string) metadata.PassConnection {
	return metadata.PassConnection{
		LocalSlot:     local,
		AttachmentRef: metadata.PassAttachmentRef{Pass: passName, Attachment: attachment},
	}
}

func image(name string, width, height uint32) metadata.PassImageAttachmentDesc {
	return metadata.PassImageAttachmentDesc{
		Name:     name,
		Lifetime: metadata.LifetimeTransient,
		ImageDescriptor: metadata.ImageDescriptor{
			Size:   metadata.Size{Width: width, Height: height},
			Format: metadata.FormatR8G8B8A8Unorm,
		},
	}
}

func request(name, template string, connections ...metadata.PassConnection) metadata.PassRequest {
	return metadata.PassRequest{PassName: name, TemplateName: template, InputConnections: connections}
}

// Templates shared by the tests:
//
//	Producer  raster pass writing its own 64x32 Color image to Output
//	Consumer  compute pass reading Input, writing its own Result to Output,
//	          falling back to Input when disabled
//	InOut     a single InputOutput slot
//	Sink      a single Input slot
func baseTemplates() []*metadata.PassTemplate {
	return []*metadata.PassTemplate{
		{
			Name:              "Producer",
			PassClass:         systems.PassClassRasterPass,
			Slots:             []metadata.PassSlot{slot("Output", metadata.SlotTypeOutput)},
			ImageAttachments:  []metadata.PassImageAttachmentDesc{image("Color", 64, 32)},
			OutputConnections: []metadata.PassConnection{connect("Output", metadata.PassNameThis, "Color")},
			PassData:          &metadata.PassData{DrawListTag: "forward"},
		},
		{
			Name:      "Consumer",
			PassClass: systems.PassClassComputePass,
			Slots: []metadata.PassSlot{
				slot("Input", metadata.SlotTypeInput),
				slot("Output", metadata.SlotTypeOutput),
			},
			ImageAttachments:    []metadata.PassImageAttachmentDesc{image("Result", 64, 32)},
			OutputConnections:   []metadata.PassConnection{connect("Output", metadata.PassNameThis, "Result")},
			FallbackConnections: []metadata.PassFallbackConnection{{InputSlotName: "Input", OutputSlotName: "Output"}},
			PassData:            &metadata.PassData{ShaderName: "blur", ThreadCountX: 8, ThreadCountY: 8},
		},
		{
			Name:  "InOut",
			Slots: []metadata.PassSlot{slot("InOut", metadata.SlotTypeInputOutput)},
		},
		{
			Name:  "Sink",
			Slots: []metadata.PassSlot{slot("Input", metadata.SlotTypeInput)},
		},
	}
}

// buildHierarchy registers the base templates plus a "Frame" parent template
// made of the given requests, and builds a root pass named "Frame" from it.
func buildHierarchy(t *testing.T, ps *systems.PassSystem, requests ...metadata.PassRequest) *pass.ParentPass {
	t.Helper()
	for _, template := range baseTemplates() {
		if !ps.HasTemplate(template.Name) {
			require.NoError(t, ps.AddPassTemplate(template))
		}
	}
	require.NoError(t, ps.AddPassTemplate(&metadata.PassTemplate{
		Name:         "Frame",
		PassClass:    systems.PassClassParentPass,
		PassRequests: requests,
	}))
	root, err := ps.CreatePassFromTemplate("Frame", "Frame")
	require.NoError(t, err)
	require.NoError(t, ps.AddRootPass(root))
	ps.ProcessQueuedChanges()

	parent := root.AsParent()
	require.NotNil(t, parent)
	return parent
}

func child(t *testing.T, parent *pass.ParentPass, name string) *pass.Pass {
	t.Helper()
	p := parent.FindChildPass(name)
	require.NotNil(t, p, "child %s", name)
	return p
}
