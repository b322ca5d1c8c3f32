package metadata

import (
	"github.com/spaghettifunk/passgraph/engine/math"
)

/** @brief Width, height and depth of an image in texels. */
type Size struct {
	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
	Depth  uint32 `toml:"depth" yaml:"depth"`
}

// Component returns the size along axis i (0 = width, 1 = height, 2 = depth).
func (s Size) Component(i int) uint32 {
	switch i {
	case 0:
		return s.Width
	case 1:
		return s.Height
	case 2:
		return s.Depth
	}
	return 0
}

type MultisampleState struct {
	Samples              uint16 `toml:"samples" yaml:"samples"`
	CustomPositionsCount uint8  `toml:"custom_positions_count" yaml:"custom_positions_count"`
}

type ImageBindFlags uint32

const (
	ImageBindFlagsNone         ImageBindFlags = 0x0
	ImageBindFlagsColor        ImageBindFlags = 0x1
	ImageBindFlagsDepthStencil ImageBindFlags = 0x2
	ImageBindFlagsShaderRead   ImageBindFlags = 0x4
	ImageBindFlagsShaderWrite  ImageBindFlags = 0x8
	ImageBindFlagsCopyRead     ImageBindFlags = 0x10
	ImageBindFlagsCopyWrite    ImageBindFlags = 0x20
)

type BufferBindFlags uint32

const (
	BufferBindFlagsNone        BufferBindFlags = 0x0
	BufferBindFlagsShaderRead  BufferBindFlags = 0x1
	BufferBindFlagsShaderWrite BufferBindFlags = 0x2
	BufferBindFlagsCopyRead    BufferBindFlags = 0x4
	BufferBindFlagsCopyWrite   BufferBindFlags = 0x8
)

/** @brief Describes an image resource. */
type ImageDescriptor struct {
	Dimension        ImageDimension   `toml:"dimension" yaml:"dimension"`
	Size             Size             `toml:"size" yaml:"size"`
	ArraySize        uint16           `toml:"array_size" yaml:"array_size"`
	MipLevels        uint16           `toml:"mip_levels" yaml:"mip_levels"`
	Format           Format           `toml:"format" yaml:"format"`
	MultisampleState MultisampleState `toml:"multisample" yaml:"multisample"`
	BindFlags        ImageBindFlags   `toml:"bind_flags" yaml:"bind_flags"`
}

// Normalized fills in the implicit defaults (2D, depth 1, one array slice,
// one mip, one sample).
func (d ImageDescriptor) Normalized() ImageDescriptor {
	if d.Dimension == 0 {
		d.Dimension = ImageDimension2D
	}
	if d.Size.Depth == 0 {
		d.Size.Depth = 1
	}
	if d.ArraySize == 0 {
		d.ArraySize = 1
	}
	if d.MipLevels == 0 {
		d.MipLevels = 1
	}
	if d.MultisampleState.Samples == 0 {
		d.MultisampleState.Samples = 1
	}
	return d
}

/** @brief Describes a buffer resource. */
type BufferDescriptor struct {
	ByteCount uint64          `toml:"byte_count" yaml:"byte_count"`
	BindFlags BufferBindFlags `toml:"bind_flags" yaml:"bind_flags"`
}

/** @brief Either an image or a buffer descriptor, discriminated by Type. */
type UnifiedAttachmentDescriptor struct {
	Type   AttachmentType
	Image  ImageDescriptor
	Buffer BufferDescriptor
}

func NewImageAttachmentDescriptor(desc ImageDescriptor) UnifiedAttachmentDescriptor {
	return UnifiedAttachmentDescriptor{Type: AttachmentTypeImage, Image: desc}
}

func NewBufferAttachmentDescriptor(desc BufferDescriptor) UnifiedAttachmentDescriptor {
	return UnifiedAttachmentDescriptor{Type: AttachmentTypeBuffer, Buffer: desc}
}

/** @brief Identifies a binding (or owned attachment) on an adjacent pass. */
type PassAttachmentRef struct {
	Pass       string `toml:"pass" yaml:"pass"`
	Attachment string `toml:"attachment" yaml:"attachment"`
}

// IsEmpty reports whether either side of the reference is missing.
func (r PassAttachmentRef) IsEmpty() bool {
	return r.Pass == "" || r.Attachment == ""
}

// IsPipeline reports whether the reference names the owning pipeline.
func (r PassAttachmentRef) IsPipeline() bool {
	return r.Pass == PipelineKeyword
}

type SizeMultipliers struct {
	Width  float32 `toml:"width" yaml:"width"`
	Height float32 `toml:"height" yaml:"height"`
	Depth  float32 `toml:"depth" yaml:"depth"`
}

// ApplyModifiers scales a size. Zero multipliers count as 1 and no axis
// shrinks below one texel.
func (m SizeMultipliers) ApplyModifiers(s Size) Size {
	scale := func(v uint32, f float32) uint32 {
		if f == 0 {
			f = 1
		}
		return math.ScaleFloor(v, f, 1)
	}
	return Size{
		Width:  scale(s.Width, m.Width),
		Height: scale(s.Height, m.Height),
		Depth:  scale(s.Depth, m.Depth),
	}
}

/** @brief Source of an attachment's size plus the multipliers applied to it. */
type SizeSource struct {
	Source      PassAttachmentRef `toml:"source" yaml:"source"`
	Multipliers SizeMultipliers   `toml:"multipliers" yaml:"multipliers"`
}

/** @brief Reference to an asset providing the resource of an imported attachment. */
type AssetRef struct {
	AssetID string `toml:"asset_id" yaml:"asset_id"`
}

/** @brief Template description of an image attachment owned by a pass. */
type PassImageAttachmentDesc struct {
	Name              string            `toml:"name" yaml:"name"`
	Lifetime          Lifetime          `toml:"lifetime" yaml:"lifetime"`
	ImageDescriptor   ImageDescriptor   `toml:"image" yaml:"image"`
	SizeSource        SizeSource        `toml:"size_source" yaml:"size_source"`
	FormatSource      PassAttachmentRef `toml:"format_source" yaml:"format_source"`
	MultisampleSource PassAttachmentRef `toml:"multisample_source" yaml:"multisample_source"`
	ArraySizeSource   PassAttachmentRef `toml:"array_size_source" yaml:"array_size_source"`
	AssetRef          AssetRef          `toml:"asset" yaml:"asset"`
}

/** @brief Template description of a buffer attachment owned by a pass. */
type PassBufferAttachmentDesc struct {
	Name             string           `toml:"name" yaml:"name"`
	Lifetime         Lifetime         `toml:"lifetime" yaml:"lifetime"`
	BufferDescriptor BufferDescriptor `toml:"buffer" yaml:"buffer"`
	SizeSource       SizeSource       `toml:"size_source" yaml:"size_source"`
	AssetRef         AssetRef         `toml:"asset" yaml:"asset"`
}

/** @brief Render settings a pipeline exposes to attachments sourcing from "Pipeline". */
type PipelineRenderSettings struct {
	Size             Size             `toml:"size" yaml:"size"`
	Format           Format           `toml:"format" yaml:"format"`
	MultisampleState MultisampleState `toml:"multisample" yaml:"multisample"`
}
