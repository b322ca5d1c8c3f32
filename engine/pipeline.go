package engine

import (
	"sync"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/**
 * @brief The render pipeline owning the root pass. Attachments sized or
 * formatted from "Pipeline" read its settings every frame.
 */
type RenderPipeline struct {
	name string

	mutex    sync.RWMutex
	settings metadata.PipelineRenderSettings
}

func NewRenderPipeline(name string, settings metadata.PipelineRenderSettings) *RenderPipeline {
	return &RenderPipeline{name: name, settings: settings}
}

func (rp *RenderPipeline) Name() string {
	return rp.name
}

func (rp *RenderPipeline) RenderSettings() metadata.PipelineRenderSettings {
	rp.mutex.RLock()
	defer rp.mutex.RUnlock()
	return rp.settings
}

func (rp *RenderPipeline) SetRenderSettings(settings metadata.PipelineRenderSettings) {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()
	rp.settings = settings
}

// Resize changes the output size and keeps the format and multisample state.
func (rp *RenderPipeline) Resize(width, height uint32) {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()
	rp.settings.Size.Width = width
	rp.settings.Size.Height = height
}
