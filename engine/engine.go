package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/passgraph/engine/assets"
	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
	"github.com/spaghettifunk/passgraph/engine/renderer/pass"
	"github.com/spaghettifunk/passgraph/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "Uninitialized"
	case EngineStageInitializing:
		return "Initializing"
	case EngineStageInitialized:
		return "Initialized"
	case EngineStageRunning:
		return "Running"
	case EngineStageShuttingDown:
		return "ShuttingDown"
	}
	return "Unknown"
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       Config
	isSuspended  bool

	catalog    *assets.Catalog
	passSystem *systems.PassSystem
	frameGraph *framegraph.Builder
	pipeline   *RenderPipeline
	watcher    *assets.LibraryWatcher
	root       *pass.Pass

	clock    *core.Clock
	metrics  *core.FrameMetrics
	frames   uint64
	lastTime time.Time
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.Config == nil {
		return nil, fmt.Errorf("engine.New: a game with a config is required")
	}
	config := *g.Config
	if err := config.Validate(); err != nil {
		return nil, err
	}
	level, _ := core.ParseLogLevel(config.LogLevel)
	core.SetLogLevel(level)

	catalog := assets.NewCatalog()
	ps, err := systems.NewPassSystem(config.PassSystem, catalog)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		catalog:      catalog,
		passSystem:   ps,
		frameGraph:   framegraph.NewBuilder(),
		pipeline:     NewRenderPipeline(config.Name, config.Render),
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized (stage %s)", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	for _, a := range e.config.Assets {
		switch a.Type {
		case AssetTypeImage:
			e.catalog.RegisterImage(a.Name, a.Image)
		case AssetTypeBuffer:
			e.catalog.RegisterBuffer(a.Name, a.Buffer)
		}
	}

	if e.config.LibraryDir != "" {
		if err := e.passSystem.LoadLibrary(e.config.LibraryDir); err != nil {
			return err
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	e.passSystem.SetPipeline(e.pipeline)
	root, err := e.passSystem.CreatePassFromTemplate(e.config.RootTemplate, e.config.RootTemplate)
	if err != nil {
		return err
	}
	if err := e.passSystem.AddRootPass(root); err != nil {
		return err
	}
	e.root = root

	built := e.passSystem.ProcessQueuedChanges()
	core.LogInfo("pass hierarchy '%s' built: %d passes registered, %d built", root.Name(), e.passSystem.PassCount(), built)
	if results := e.passSystem.Validate(); !results.IsValid() {
		results.PrintValidationIfError()
	}
	e.passSystem.DebugPrint()

	if e.config.Watch && e.config.LibraryDir != "" {
		w, err := assets.NewLibraryWatcher(e.config.LibraryDir, e.config.watchDebounce())
		if err != nil {
			return err
		}
		e.watcher = w
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run renders frames until the context is cancelled or the configured frame
// count is reached.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run from stage %s", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	var tick <-chan time.Time
	if interval := e.config.frameInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	e.lastTime = time.Now()
	for {
		select {
		case <-ctx.Done():
			core.LogInfo("engine stopped after %d frames", e.frames)
			return nil
		default:
		}

		if err := e.Frame(); err != nil {
			return err
		}
		if e.config.FrameCount > 0 && e.frames >= e.config.FrameCount {
			core.LogInfo("rendered %d frames", e.frames)
			return nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				core.LogInfo("engine stopped after %d frames", e.frames)
				return nil
			case <-tick:
			}
		}
	}
}

// Frame applies pending library changes, rebuilds the queued passes and
// records one frame plan.
func (e *Engine) Frame() error {
	if e.root == nil {
		return fmt.Errorf("engine not initialized")
	}
	now := time.Now()
	if e.lastTime.IsZero() {
		e.lastTime = now
	}
	delta := now.Sub(e.lastTime).Seconds()
	e.lastTime = now

	e.applyLibraryChanges()

	if e.isSuspended {
		return nil
	}
	e.clock.Start()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("game update failed")
			return err
		}
	}

	if built := e.passSystem.ProcessQueuedChanges(); built > 0 {
		core.LogDebug("frame %d: rebuilt %d passes", e.frames, built)
	}

	e.frameGraph.Reset()
	e.passSystem.FrameBegin(pass.FramePrepareParams{
		AttachmentDatabase: e.frameGraph.AttachmentDatabase(),
		Scopes:             e.frameGraph,
	})
	var renderErr error
	if e.gameInstance.FnRender != nil {
		renderErr = e.gameInstance.FnRender(e.frameGraph, delta)
	}
	e.passSystem.FrameEnd()
	if renderErr != nil {
		core.LogError("game render failed")
		return renderErr
	}

	e.clock.Update()
	e.metrics.Update(e.clock.ElapsedDuration().Seconds())
	e.clock.Stop()
	e.frames++
	return nil
}

// applyLibraryChanges reloads the library files the watcher reported since
// the last frame. Templates of removed files stay registered.
func (e *Engine) applyLibraryChanges() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-e.watcher.Changes():
			if !ok {
				return
			}
			if change.Removed() {
				core.LogWarn("pass library file %s removed, its templates stay registered", change.Path)
				continue
			}
			if err := e.passSystem.LoadLibraryFile(change.Path); err != nil {
				core.LogError("failed to reload pass library %s: %s", change.Path, err)
				continue
			}
			core.LogInfo("pass library %s reloaded", change.Path)
		default:
			return
		}
	}
}

// Resize updates the pipeline output size. A zero size suspends rendering
// until the next non-zero resize.
func (e *Engine) Resize(width, height uint32) error {
	settings := e.pipeline.RenderSettings()
	if width == settings.Size.Width && height == settings.Size.Height && !e.isSuspended {
		return nil
	}
	core.LogDebug("pipeline resize: %d, %d", width, height)
	if width == 0 || height == 0 {
		core.LogInfo("pipeline minimized, suspending rendering.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("pipeline restored, resuming rendering.")
		e.isSuspended = false
	}
	e.pipeline.Resize(width, height)
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		e.watcher = nil
	}
	if err := e.passSystem.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.root = nil
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage                    { return e.currentStage }
func (e *Engine) Config() Config                  { return e.config }
func (e *Engine) Catalog() *assets.Catalog        { return e.catalog }
func (e *Engine) PassSystem() *systems.PassSystem { return e.passSystem }
func (e *Engine) FrameGraph() *framegraph.Builder { return e.frameGraph }
func (e *Engine) Pipeline() *RenderPipeline       { return e.pipeline }
func (e *Engine) Root() *pass.Pass                { return e.root }
func (e *Engine) Metrics() *core.FrameMetrics     { return e.metrics }
func (e *Engine) FrameCount() uint64              { return e.frames }
func (e *Engine) IsSuspended() bool               { return e.isSuspended }
