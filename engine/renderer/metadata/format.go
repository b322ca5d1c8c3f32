package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/passgraph/engine/core"
)

/** @brief Pixel format of an image attachment. */
type Format uint32

const (
	FormatUnknown Format = iota
	FormatR8G8B8A8Unorm
	FormatB8G8R8A8Unorm
	FormatR8Unorm
	FormatR16G16Float
	FormatR16G16B16A16Float
	FormatR11G11B10Float
	FormatR32Float
	FormatR32G32B32A32Float
	FormatD32Float
	FormatD32FloatS8X24Uint
	FormatD24UnormS8Uint
)

var formatNames = map[Format]string{
	FormatUnknown:           "Unknown",
	FormatR8G8B8A8Unorm:     "R8G8B8A8_UNORM",
	FormatB8G8R8A8Unorm:     "B8G8R8A8_UNORM",
	FormatR8Unorm:           "R8_UNORM",
	FormatR16G16Float:       "R16G16_FLOAT",
	FormatR16G16B16A16Float: "R16G16B16A16_FLOAT",
	FormatR11G11B10Float:    "R11G11B10_FLOAT",
	FormatR32Float:          "R32_FLOAT",
	FormatR32G32B32A32Float: "R32G32B32A32_FLOAT",
	FormatD32Float:          "D32_FLOAT",
	FormatD32FloatS8X24Uint: "D32_FLOAT_S8X24_UINT",
	FormatD24UnormS8Uint:    "D24_UNORM_S8_UINT",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// IsDepth reports whether the format carries depth (and possibly stencil) data.
func (f Format) IsDepth() bool {
	switch f {
	case FormatD32Float, FormatD32FloatS8X24Uint, FormatD24UnormS8Uint:
		return true
	}
	return false
}

func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(name, s) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("format '%s': %w", s, core.ErrUnknownFormat)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

/** @brief Dimensionality of an image attachment. */
type ImageDimension uint32

const (
	ImageDimension1D ImageDimension = 1
	ImageDimension2D ImageDimension = 2
	ImageDimension3D ImageDimension = 3
)

func (d ImageDimension) String() string {
	switch d {
	case ImageDimension1D:
		return "1D"
	case ImageDimension2D:
		return "2D"
	case ImageDimension3D:
		return "3D"
	}
	return fmt.Sprintf("ImageDimension(%d)", uint32(d))
}

func ParseImageDimension(s string) (ImageDimension, error) {
	switch strings.ToUpper(s) {
	case "1D":
		return ImageDimension1D, nil
	case "2D", "":
		return ImageDimension2D, nil
	case "3D":
		return ImageDimension3D, nil
	}
	return ImageDimension2D, fmt.Errorf("unknown image dimension '%s'", s)
}

func (d ImageDimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *ImageDimension) UnmarshalText(text []byte) error {
	v, err := ParseImageDimension(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

/** @brief The kind of resource an attachment describes. */
type AttachmentType uint32

const (
	AttachmentTypeUnknown AttachmentType = iota
	AttachmentTypeImage
	AttachmentTypeBuffer
)

func (t AttachmentType) String() string {
	switch t {
	case AttachmentTypeImage:
		return "Image"
	case AttachmentTypeBuffer:
		return "Buffer"
	}
	return "Unknown"
}

/** @brief Who owns the memory of an attachment. */
type Lifetime uint32

const (
	/** @brief Allocated from a pool every frame and released at the end of it. */
	LifetimeTransient Lifetime = iota
	/** @brief Wraps a resource owned elsewhere. Never created nor destroyed by the pass graph. */
	LifetimeImported
)

func (l Lifetime) String() string {
	if l == LifetimeImported {
		return "Imported"
	}
	return "Transient"
}

func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(s) {
	case "transient", "":
		return LifetimeTransient, nil
	case "imported":
		return LifetimeImported, nil
	}
	return LifetimeTransient, fmt.Errorf("unknown attachment lifetime '%s'", s)
}

func (l Lifetime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Lifetime) UnmarshalText(text []byte) error {
	v, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
