package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

const forwardLibrary = `
[[templates]]
name = "Forward"
pass_class = "RasterPass"

[[templates.slots]]
name = "ColorOutput"
type = "Output"

[[templates.image_attachments]]
name = "Color"
size_source = { source = { pass = "Pipeline" } }
format_source = { pass = "Pipeline" }

[[templates.connections]]
local_slot = "ColorOutput"
attachment_ref = { pass = "This", attachment = "Color" }

[templates.pass_data]
draw_list_tag = "forward"
`

const pipelineLibrary = `
templates:
  - name: Present
    pass_class: CopyPass
    slots:
      - {name: Input, type: Input}
      - {name: Output, type: Output}
    image_attachments:
      - name: Target
        lifetime: Imported
        asset: {asset_id: Target}
    connections:
      - local_slot: Output
        attachment_ref: {pass: This, attachment: Target}
  - name: MainPipeline
    pass_class: ParentPass
    pass_requests:
      - name: Forward
        template: Forward
      - name: Present
        template: Present
        connections:
          - local_slot: Input
            attachment_ref: {pass: Forward, attachment: ColorOutput}
`

func writeLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forward.toml"), []byte(forwardLibrary), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.yaml"), []byte(pipelineLibrary), 0o644))
	return dir
}

func testConfig(libraryDir string) *Config {
	config := DefaultConfig()
	config.Name = "EngineTest"
	config.LibraryDir = libraryDir
	config.Render.Size = metadata.Size{Width: 320, Height: 240, Depth: 1}
	config.Assets = []AssetConfig{{
		Name:  "Target",
		Type:  AssetTypeImage,
		Image: metadata.ImageDescriptor{Size: metadata.Size{Width: 320, Height: 240}, Format: metadata.FormatB8G8R8A8Unorm},
	}}
	return &config
}

func newTestEngine(t *testing.T, g *Game) *Engine {
	t.Helper()
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() {
		if e.Stage() != EngineStageShuttingDown {
			_ = e.Shutdown()
		}
	})
	return e
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Game{})
	assert.Error(t, err)

	config := testConfig("")
	config.Name = ""
	_, err = New(&Game{Config: config})
	assert.Error(t, err)
}

func TestEngineRunsFrames(t *testing.T) {
	config := testConfig(writeLibrary(t))
	config.FrameCount = 3

	initialized := false
	renders := 0
	var scopes []string
	g := &Game{
		Config: config,
		FnInitialize: func(e *Engine) error {
			initialized = true
			assert.True(t, e.PassSystem().HasTemplate("MainPipeline"))
			return nil
		},
		FnRender: func(plan *framegraph.Builder, deltaTime float64) error {
			renders++
			scopes = scopes[:0]
			for _, s := range plan.Scopes() {
				scopes = append(scopes, s.ID)
			}
			return nil
		},
	}
	e := newTestEngine(t, g)
	assert.True(t, initialized)
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, uint32(3), e.PassSystem().PassCount())
	assert.True(t, e.PassSystem().Validate().IsValid())

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(3), e.FrameCount())
	assert.Equal(t, 3, renders)
	assert.Equal(t, []string{"MainPipeline.Forward", "MainPipeline.Present"}, scopes)
	assert.Equal(t, uint64(3), e.Metrics().TotalFrames)
	assert.Equal(t, EngineStageInitialized, e.Stage())

	db := e.FrameGraph().AttachmentDatabase()
	target, ok := db.Get("Target")
	require.True(t, ok)
	assert.Equal(t, metadata.LifetimeImported, target.Lifetime)

	require.NoError(t, e.Shutdown())
	assert.Zero(t, e.PassSystem().PassCount())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestRunStopsOnCancel(t *testing.T) {
	config := testConfig(writeLibrary(t))
	config.TargetFrameRate = 1000
	e := newTestEngine(t, &Game{Config: config})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Positive(t, e.FrameCount())

	require.NoError(t, e.Shutdown())
	assert.Error(t, e.Run(context.Background()))
}

func TestInitializeFailsOnUnknownRoot(t *testing.T) {
	config := testConfig(writeLibrary(t))
	config.RootTemplate = "Missing"
	e, err := New(&Game{Config: config})
	require.NoError(t, err)
	assert.Error(t, e.Initialize())
}

func TestResizeFollowsPipeline(t *testing.T) {
	resized := false
	g := &Game{
		Config: testConfig(writeLibrary(t)),
		FnOnResize: func(width, height uint32) error {
			resized = true
			return nil
		},
	}
	e := newTestEngine(t, g)

	require.NoError(t, e.Resize(800, 600))
	assert.True(t, resized)
	require.NoError(t, e.Frame())
	color, ok := e.FrameGraph().AttachmentDatabase().Get("MainPipeline.Forward.Color")
	require.True(t, ok)
	assert.Equal(t, metadata.Size{Width: 800, Height: 600, Depth: 1}, color.Descriptor.Image.Size)
	assert.Equal(t, metadata.FormatR8G8B8A8Unorm, color.Descriptor.Image.Format)

	require.NoError(t, e.Resize(0, 0))
	assert.True(t, e.IsSuspended())
	frames := e.FrameCount()
	require.NoError(t, e.Frame())
	assert.Equal(t, frames, e.FrameCount())

	require.NoError(t, e.Resize(1024, 768))
	assert.False(t, e.IsSuspended())
	require.NoError(t, e.Frame())
	assert.Equal(t, frames+1, e.FrameCount())
}

func TestLibraryChangesAreReloaded(t *testing.T) {
	dir := writeLibrary(t)
	config := testConfig(dir)
	config.Watch = true
	config.WatchDebounceMS = 10
	e := newTestEngine(t, &Game{Config: config})

	updated := []byte(forwardLibrary[:len(forwardLibrary)-len("draw_list_tag = \"forward\"\n")] + "draw_list_tag = \"transparent\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forward.toml"), updated, 0o644))

	assert.Eventually(t, func() bool {
		if err := e.Frame(); err != nil {
			return false
		}
		template, err := e.PassSystem().GetPassTemplate("Forward")
		return err == nil && template.PassData.DrawListTag == "transparent"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, e.Frame())
	forward, err := e.PassSystem().FindPassByPath("MainPipeline.Forward")
	require.NoError(t, err)
	assert.Equal(t, "transparent", forward.DrawListTag())
}
