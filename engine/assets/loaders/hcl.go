package loaders

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

// The HCL library mirrors the TOML/YAML layout with blocks:
//
//	template "Forward" {
//	  pass_class = "RasterPass"
//	  slot "Output" {
//	    type = "Output"
//	  }
//	  image_attachment "Color" {
//	    format_source { pass = "Pipeline" }
//	  }
//	  connection "Output" {
//	    pass       = "This"
//	    attachment = "Color"
//	  }
//	}
//
// Enumerations are written as strings and parsed with the metadata parsers.

type hclLibraryFile struct {
	Templates []*hclTemplate `hcl:"template,block"`
}

type hclTemplate struct {
	Name                string                   `hcl:"name,label"`
	PassClass           string                   `hcl:"pass_class,optional"`
	Slots               []*hclSlot               `hcl:"slot,block"`
	ImageAttachments    []*hclImageAttachment    `hcl:"image_attachment,block"`
	BufferAttachments   []*hclBufferAttachment   `hcl:"buffer_attachment,block"`
	Connections         []*hclConnection         `hcl:"connection,block"`
	FallbackConnections []*hclFallbackConnection `hcl:"fallback_connection,block"`
	PassRequests        []*hclPassRequest        `hcl:"pass_request,block"`
	PassData            *hclPassData             `hcl:"pass_data,block"`
}

type hclSlot struct {
	Name            string   `hcl:"name,label"`
	Type            string   `hcl:"type"`
	Usage           string   `hcl:"usage,optional"`
	FormatFilter    []string `hcl:"format_filter,optional"`
	DimensionFilter []string `hcl:"dimension_filter,optional"`
}

type hclRef struct {
	Pass       string `hcl:"pass"`
	Attachment string `hcl:"attachment,optional"`
}

type hclSizeSource struct {
	Pass             string  `hcl:"pass"`
	Attachment       string  `hcl:"attachment,optional"`
	WidthMultiplier  float32 `hcl:"width_multiplier,optional"`
	HeightMultiplier float32 `hcl:"height_multiplier,optional"`
	DepthMultiplier  float32 `hcl:"depth_multiplier,optional"`
}

type hclImageAttachment struct {
	Name              string         `hcl:"name,label"`
	Lifetime          string         `hcl:"lifetime,optional"`
	Dimension         string         `hcl:"dimension,optional"`
	Format            string         `hcl:"format,optional"`
	Width             uint32         `hcl:"width,optional"`
	Height            uint32         `hcl:"height,optional"`
	Depth             uint32         `hcl:"depth,optional"`
	ArraySize         uint16         `hcl:"array_size,optional"`
	MipLevels         uint16         `hcl:"mip_levels,optional"`
	Samples           uint16         `hcl:"samples,optional"`
	AssetID           string         `hcl:"asset_id,optional"`
	SizeSource        *hclSizeSource `hcl:"size_source,block"`
	FormatSource      *hclRef        `hcl:"format_source,block"`
	MultisampleSource *hclRef        `hcl:"multisample_source,block"`
	ArraySizeSource   *hclRef        `hcl:"array_size_source,block"`
}

type hclBufferAttachment struct {
	Name       string         `hcl:"name,label"`
	Lifetime   string         `hcl:"lifetime,optional"`
	ByteCount  uint64         `hcl:"byte_count,optional"`
	AssetID    string         `hcl:"asset_id,optional"`
	SizeSource *hclSizeSource `hcl:"size_source,block"`
}

type hclConnection struct {
	LocalSlot  string `hcl:"local_slot,label"`
	Pass       string `hcl:"pass"`
	Attachment string `hcl:"attachment"`
}

type hclFallbackConnection struct {
	Input  string `hcl:"input"`
	Output string `hcl:"output"`
}

type hclPassRequest struct {
	Name          string           `hcl:"name,label"`
	Template      string           `hcl:"template"`
	ExecuteAfter  []string         `hcl:"execute_after,optional"`
	ExecuteBefore []string         `hcl:"execute_before,optional"`
	Enabled       *bool            `hcl:"enabled,optional"`
	Connections   []*hclConnection `hcl:"connection,block"`
	PassData      *hclPassData     `hcl:"pass_data,block"`
}

type hclPassData struct {
	CloneInput      bool   `hcl:"clone_input,optional"`
	Shader          string `hcl:"shader,optional"`
	ThreadCountX    uint32 `hcl:"thread_count_x,optional"`
	ThreadCountY    uint32 `hcl:"thread_count_y,optional"`
	ThreadCountZ    uint32 `hcl:"thread_count_z,optional"`
	DrawListTag     string `hcl:"draw_list_tag,optional"`
	PipelineViewTag string `hcl:"pipeline_view_tag,optional"`
}

type HCLLoader struct{}

func (l *HCLLoader) Load(path string) (*metadata.PassLibrary, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	var parsed hclLibraryFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	library := &metadata.PassLibrary{Templates: make([]metadata.PassTemplate, 0, len(parsed.Templates))}
	for _, t := range parsed.Templates {
		template, err := t.toTemplate()
		if err != nil {
			return nil, fmt.Errorf("template '%s': %w", t.Name, err)
		}
		library.Templates = append(library.Templates, *template)
	}
	return library, nil
}

func (t *hclTemplate) toTemplate() (*metadata.PassTemplate, error) {
	template := &metadata.PassTemplate{
		Name:      t.Name,
		PassClass: t.PassClass,
		PassData:  t.PassData.toPassData(),
	}
	for _, s := range t.Slots {
		slot, err := s.toSlot()
		if err != nil {
			return nil, err
		}
		template.Slots = append(template.Slots, slot)
	}
	for _, a := range t.ImageAttachments {
		desc, err := a.toDesc()
		if err != nil {
			return nil, err
		}
		template.ImageAttachments = append(template.ImageAttachments, desc)
	}
	for _, a := range t.BufferAttachments {
		desc, err := a.toDesc()
		if err != nil {
			return nil, err
		}
		template.BufferAttachments = append(template.BufferAttachments, desc)
	}
	for _, c := range t.Connections {
		template.OutputConnections = append(template.OutputConnections, c.toConnection())
	}
	for _, f := range t.FallbackConnections {
		template.FallbackConnections = append(template.FallbackConnections, metadata.PassFallbackConnection{
			InputSlotName:  f.Input,
			OutputSlotName: f.Output,
		})
	}
	for _, r := range t.PassRequests {
		template.PassRequests = append(template.PassRequests, r.toRequest())
	}
	return template, nil
}

func (s *hclSlot) toSlot() (metadata.PassSlot, error) {
	slot := metadata.PassSlot{Name: s.Name}
	var err error
	if slot.SlotType, err = metadata.ParseSlotType(s.Type); err != nil {
		return slot, fmt.Errorf("slot '%s': %w", s.Name, err)
	}
	if s.Usage != "" {
		if err := slot.Usage.UnmarshalText([]byte(s.Usage)); err != nil {
			return slot, fmt.Errorf("slot '%s': %w", s.Name, err)
		}
	}
	for _, name := range s.FormatFilter {
		f, err := metadata.ParseFormat(name)
		if err != nil {
			return slot, fmt.Errorf("slot '%s': %w", s.Name, err)
		}
		slot.FormatFilter = append(slot.FormatFilter, f)
	}
	for _, name := range s.DimensionFilter {
		d, err := metadata.ParseImageDimension(name)
		if err != nil {
			return slot, fmt.Errorf("slot '%s': %w", s.Name, err)
		}
		slot.DimensionFilter = append(slot.DimensionFilter, d)
	}
	return slot, nil
}

func (r *hclRef) toRef() metadata.PassAttachmentRef {
	if r == nil {
		return metadata.PassAttachmentRef{}
	}
	return metadata.PassAttachmentRef{Pass: r.Pass, Attachment: r.Attachment}
}

func (s *hclSizeSource) toSizeSource() metadata.SizeSource {
	if s == nil {
		return metadata.SizeSource{}
	}
	return metadata.SizeSource{
		Source: metadata.PassAttachmentRef{Pass: s.Pass, Attachment: s.Attachment},
		Multipliers: metadata.SizeMultipliers{
			Width:  s.WidthMultiplier,
			Height: s.HeightMultiplier,
			Depth:  s.DepthMultiplier,
		},
	}
}

func (a *hclImageAttachment) toDesc() (metadata.PassImageAttachmentDesc, error) {
	desc := metadata.PassImageAttachmentDesc{
		Name: a.Name,
		ImageDescriptor: metadata.ImageDescriptor{
			Size:             metadata.Size{Width: a.Width, Height: a.Height, Depth: a.Depth},
			ArraySize:        a.ArraySize,
			MipLevels:        a.MipLevels,
			MultisampleState: metadata.MultisampleState{Samples: a.Samples},
		},
		SizeSource:        a.SizeSource.toSizeSource(),
		FormatSource:      a.FormatSource.toRef(),
		MultisampleSource: a.MultisampleSource.toRef(),
		ArraySizeSource:   a.ArraySizeSource.toRef(),
		AssetRef:          metadata.AssetRef{AssetID: a.AssetID},
	}
	var err error
	if desc.Lifetime, err = metadata.ParseLifetime(a.Lifetime); err != nil {
		return desc, fmt.Errorf("image attachment '%s': %w", a.Name, err)
	}
	if a.Dimension != "" {
		if desc.ImageDescriptor.Dimension, err = metadata.ParseImageDimension(a.Dimension); err != nil {
			return desc, fmt.Errorf("image attachment '%s': %w", a.Name, err)
		}
	}
	if a.Format != "" {
		if desc.ImageDescriptor.Format, err = metadata.ParseFormat(a.Format); err != nil {
			return desc, fmt.Errorf("image attachment '%s': %w", a.Name, err)
		}
	}
	return desc, nil
}

func (a *hclBufferAttachment) toDesc() (metadata.PassBufferAttachmentDesc, error) {
	desc := metadata.PassBufferAttachmentDesc{
		Name:             a.Name,
		BufferDescriptor: metadata.BufferDescriptor{ByteCount: a.ByteCount},
		SizeSource:       a.SizeSource.toSizeSource(),
		AssetRef:         metadata.AssetRef{AssetID: a.AssetID},
	}
	var err error
	if desc.Lifetime, err = metadata.ParseLifetime(a.Lifetime); err != nil {
		return desc, fmt.Errorf("buffer attachment '%s': %w", a.Name, err)
	}
	return desc, nil
}

func (c *hclConnection) toConnection() metadata.PassConnection {
	return metadata.PassConnection{
		LocalSlot:     c.LocalSlot,
		AttachmentRef: metadata.PassAttachmentRef{Pass: c.Pass, Attachment: c.Attachment},
	}
}

func (r *hclPassRequest) toRequest() metadata.PassRequest {
	request := metadata.PassRequest{
		PassName:            r.Name,
		TemplateName:        r.Template,
		ExecuteAfterPasses:  r.ExecuteAfter,
		ExecuteBeforePasses: r.ExecuteBefore,
		PassData:            r.PassData.toPassData(),
		Enabled:             r.Enabled,
	}
	for _, c := range r.Connections {
		request.AddInputConnection(c.toConnection())
	}
	return request
}

func (d *hclPassData) toPassData() *metadata.PassData {
	if d == nil {
		return nil
	}
	return &metadata.PassData{
		CloneInput:      d.CloneInput,
		ShaderName:      d.Shader,
		ThreadCountX:    d.ThreadCountX,
		ThreadCountY:    d.ThreadCountY,
		ThreadCountZ:    d.ThreadCountZ,
		DrawListTag:     d.DrawListTag,
		PipelineViewTag: d.PipelineViewTag,
	}
}
