package testbed

import (
	"github.com/spaghettifunk/passgraph/engine"
	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

// SwapChainAsset is the imported image the Present pass copies into.
const SwapChainAsset = "SwapChain"

const reportInterval = 60

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine *engine.Engine

	queriesEnabled bool
	frames         uint64
	scopeCount     int
}

func NewTestGame(config *engine.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogInfo("initializing testbed...")
	g.state().engine = e
	g.registerSwapChain(e.Pipeline().RenderSettings())
	return nil
}

// registerSwapChain (re)declares the presentation image with the pipeline
// size and format.
func (g *TestGame) registerSwapChain(settings metadata.PipelineRenderSettings) {
	id := g.state().engine.Catalog().RegisterImage(SwapChainAsset, metadata.ImageDescriptor{
		Size:   settings.Size,
		Format: metadata.FormatB8G8R8A8Unorm,
	})
	core.LogDebug("swap chain asset %s: %dx%d", id, settings.Size.Width, settings.Size.Height)
}

func (g *TestGame) Update(deltaTime float64) error {
	s := g.state()
	if !s.queriesEnabled {
		if root := s.engine.Root().AsParent(); root != nil {
			root.SetTimestampQueryEnabled(true)
			root.SetPipelineStatisticsQueryEnabled(true)
		}
		s.queriesEnabled = true
	}
	return nil
}

func (g *TestGame) Render(plan *framegraph.Builder, deltaTime float64) error {
	s := g.state()
	s.frames++
	s.scopeCount = len(plan.Scopes())
	if s.frames%reportInterval != 1 {
		return nil
	}
	for _, scope := range plan.Scopes() {
		core.LogDebug("%s", scope.String())
	}
	root := s.engine.Root()
	stats := root.GetPipelineStatisticsResult()
	fps, frameMS := s.engine.Metrics().Frame()
	core.LogInfo("frame %d: %d scopes, %d attachment uses, %d attachments, pass time %s, %.0f fps (%.3f ms)",
		s.frames, stats.ScopeCount, stats.AttachmentCount, len(plan.AttachmentDatabase().Attachments()),
		root.GetTimestampResult().Duration, fps, frameMS)
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogInfo("testbed resized to %dx%d", width, height)
	g.registerSwapChain(g.state().engine.Pipeline().RenderSettings())
	// the imported swap chain instance changed
	g.state().engine.Root().QueueForBuildAttachments()
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed after %d frames", g.state().frames)
	return nil
}
