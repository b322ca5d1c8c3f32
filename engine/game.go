package engine

import (
	"github.com/spaghettifunk/passgraph/engine/renderer/framegraph"
)

type Game struct {
	Config *Config
	State  interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

// Initialize runs once the library and the configured assets are loaded,
// before the root pass is created.
type Initialize func(e *Engine) error
type Update func(deltaTime float64) error

// Render receives the frame plan recorded by the passes.
type Render func(plan *framegraph.Builder, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
