package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

const tomlLibrary = `
[[templates]]
name = "Forward"
pass_class = "RasterPass"

[[templates.slots]]
name = "ColorOutput"
type = "Output"
usage = "RenderTarget"
format_filter = ["R8G8B8A8_UNORM"]

[[templates.image_attachments]]
name = "Color"
lifetime = "Transient"

[templates.image_attachments.image]
format = "R8G8B8A8_UNORM"

[templates.image_attachments.size_source]
source = { pass = "Pipeline" }
multipliers = { width = 0.5, height = 0.5 }

[[templates.connections]]
local_slot = "ColorOutput"
attachment_ref = { pass = "This", attachment = "Color" }

[templates.pass_data]
draw_list_tag = "forward"

[[templates]]
name = "Frame"
pass_class = "ParentPass"

[[templates.pass_requests]]
name = "Forward"
template = "Forward"
execute_after = ["Shadow"]
enabled = false
`

const yamlLibrary = `
templates:
  - name: Forward
    pass_class: RasterPass
    slots:
      - name: ColorOutput
        type: Output
        usage: RenderTarget
        format_filter: [R8G8B8A8_UNORM]
    image_attachments:
      - name: Color
        lifetime: Transient
        image:
          format: R8G8B8A8_UNORM
        size_source:
          source: {pass: Pipeline}
          multipliers: {width: 0.5, height: 0.5}
    connections:
      - local_slot: ColorOutput
        attachment_ref: {pass: This, attachment: Color}
    pass_data:
      draw_list_tag: forward
  - name: Frame
    pass_class: ParentPass
    pass_requests:
      - name: Forward
        template: Forward
        execute_after: [Shadow]
        enabled: false
`

const hclLibrary = `
template "Forward" {
  pass_class = "RasterPass"

  slot "ColorOutput" {
    type          = "Output"
    usage         = "RenderTarget"
    format_filter = ["R8G8B8A8_UNORM"]
  }

  image_attachment "Color" {
    lifetime = "Transient"
    format   = "R8G8B8A8_UNORM"
    size_source {
      pass              = "Pipeline"
      width_multiplier  = 0.5
      height_multiplier = 0.5
    }
  }

  connection "ColorOutput" {
    pass       = "This"
    attachment = "Color"
  }

  pass_data {
    draw_list_tag = "forward"
  }
}

template "Frame" {
  pass_class = "ParentPass"

  pass_request "Forward" {
    template      = "Forward"
    execute_after = ["Shadow"]
    enabled       = false
  }
}
`

func expectedLibrary() []metadata.PassTemplate {
	disabled := false
	return []metadata.PassTemplate{
		{
			Name:      "Forward",
			PassClass: "RasterPass",
			Slots: []metadata.PassSlot{{
				Name:         "ColorOutput",
				SlotType:     metadata.SlotTypeOutput,
				Usage:        metadata.ScopeAttachmentUsageRenderTarget,
				FormatFilter: []metadata.Format{metadata.FormatR8G8B8A8Unorm},
			}},
			ImageAttachments: []metadata.PassImageAttachmentDesc{{
				Name:            "Color",
				Lifetime:        metadata.LifetimeTransient,
				ImageDescriptor: metadata.ImageDescriptor{Format: metadata.FormatR8G8B8A8Unorm},
				SizeSource: metadata.SizeSource{
					Source:      metadata.PassAttachmentRef{Pass: metadata.PipelineKeyword},
					Multipliers: metadata.SizeMultipliers{Width: 0.5, Height: 0.5},
				},
			}},
			OutputConnections: []metadata.PassConnection{{
				LocalSlot:     "ColorOutput",
				AttachmentRef: metadata.PassAttachmentRef{Pass: metadata.PassNameThis, Attachment: "Color"},
			}},
			PassData: &metadata.PassData{DrawListTag: "forward"},
		},
		{
			Name:      "Frame",
			PassClass: "ParentPass",
			PassRequests: []metadata.PassRequest{{
				PassName:           "Forward",
				TemplateName:       "Forward",
				ExecuteAfterPasses: []string{"Shadow"},
				Enabled:            &disabled,
			}},
		},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLibraryFormats(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"library.toml", tomlLibrary},
		{"library.yaml", yamlLibrary},
		{"library.hcl", hclLibrary},
	}
	for _, tt := range tests {
		t.Run(filepath.Ext(tt.file), func(t *testing.T) {
			library, err := LoadLibrary(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			if diff := cmp.Diff(expectedLibrary(), library.Templates); diff != "" {
				t.Errorf("library mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadLibraryRejectsInvalidContent(t *testing.T) {
	_, err := LoadLibrary(writeFile(t, "library.json", "{}"))
	assert.Error(t, err)

	_, err = LoadLibrary(writeFile(t, "unknown.toml", "[[templates]]\nname = \"A\"\ncolour = \"red\"\n"))
	assert.Error(t, err)

	duplicate := `
templates:
  - name: A
    slots:
      - {name: X, type: Input}
      - {name: X, type: Output}
`
	_, err = LoadLibrary(writeFile(t, "duplicate.yaml", duplicate))
	assert.ErrorContains(t, err, "declares slot 'X' twice")

	badFormat := `
template "A" {
  image_attachment "Color" {
    format = "R9G9B9"
  }
}
`
	_, err = LoadLibrary(writeFile(t, "format.hcl", badFormat))
	assert.Error(t, err)
}

func TestEmptyYAMLLibrary(t *testing.T) {
	library, err := LoadLibrary(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, library.Templates)
}

func TestIsLibraryFile(t *testing.T) {
	assert.True(t, IsLibraryFile("passes/forward.TOML"))
	assert.True(t, IsLibraryFile("passes/forward.yml"))
	assert.True(t, IsLibraryFile("passes/forward.hcl"))
	assert.False(t, IsLibraryFile("passes/forward.json"))
}
