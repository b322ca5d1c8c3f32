package engine

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/systems"
)

const (
	AssetTypeImage  = "image"
	AssetTypeBuffer = "buffer"
)

/** @brief An asset registered in the catalog at startup. */
type AssetConfig struct {
	Name   string                    `toml:"name"`
	Type   string                    `toml:"type"`
	Image  metadata.ImageDescriptor  `toml:"image"`
	Buffer metadata.BufferDescriptor `toml:"buffer"`
}

type Config struct {
	// The application name, also used as the render pipeline name.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Directory scanned for pass library files. Optional.
	LibraryDir string `toml:"library_dir"`
	// Template the root pass is created from.
	RootTemplate string `toml:"root_template"`
	// Number of frames Run renders before returning, 0 runs until cancelled.
	FrameCount uint64 `toml:"frame_count"`
	// 0 renders as fast as possible.
	TargetFrameRate uint32 `toml:"target_frame_rate"`
	// Reload library files when they change on disk.
	Watch           bool   `toml:"watch"`
	WatchDebounceMS uint32 `toml:"watch_debounce_ms"`

	Render     metadata.PipelineRenderSettings `toml:"render"`
	PassSystem systems.PassSystemConfig        `toml:"pass_system"`
	Assets     []AssetConfig                   `toml:"assets"`
}

func DefaultConfig() Config {
	return Config{
		Name:            "Passgraph",
		LogLevel:        "info",
		RootTemplate:    "MainPipeline",
		WatchDebounceMS: 100,
		Render: metadata.PipelineRenderSettings{
			Size:             metadata.Size{Width: 1280, Height: 720, Depth: 1},
			Format:           metadata.FormatR8G8B8A8Unorm,
			MultisampleState: metadata.MultisampleState{Samples: 1},
		},
		PassSystem: systems.DefaultPassSystemConfig(),
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	if c.RootTemplate == "" {
		return fmt.Errorf("config: root_template is required")
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Render.Size.Width == 0 || c.Render.Size.Height == 0 {
		return fmt.Errorf("config: render size must be greater than zero, got %dx%d", c.Render.Size.Width, c.Render.Size.Height)
	}
	if c.PassSystem.MaxPassCount == 0 || c.PassSystem.QueueCapacity <= 0 {
		return fmt.Errorf("config: pass_system max_pass_count and queue_capacity must be greater than zero")
	}
	if c.PassSystem.MessageLogLimit < 1 {
		return fmt.Errorf("config: pass_system message_log_limit must be at least 1, got %d", c.PassSystem.MessageLogLimit)
	}
	seen := make(map[string]struct{}, len(c.Assets))
	for _, a := range c.Assets {
		if a.Name == "" {
			return fmt.Errorf("config: asset without a name")
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("config: asset '%s' declared twice", a.Name)
		}
		seen[a.Name] = struct{}{}
		switch a.Type {
		case AssetTypeImage, AssetTypeBuffer:
		default:
			return fmt.Errorf("config: asset '%s' has unknown type '%s'", a.Name, a.Type)
		}
	}
	return nil
}

func (c *Config) watchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func (c *Config) frameInterval() time.Duration {
	if c.TargetFrameRate == 0 {
		return 0
	}
	return time.Second / time.Duration(c.TargetFrameRate)
}
