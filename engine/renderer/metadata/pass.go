package metadata

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	/** @brief Connection keyword resolving to the pass itself. */
	PassNameThis = "This"
	/** @brief Connection keyword resolving to the parent pass. */
	PassNameParent = "Parent"
	/** @brief Attachment source keyword resolving to the owning render pipeline. */
	PipelineKeyword = "Pipeline"
)

/** @brief Direction of a pass slot. */
type SlotType uint32

const (
	SlotTypeUninitialized SlotType = iota
	SlotTypeInput
	SlotTypeOutput
	SlotTypeInputOutput
)

func (t SlotType) String() string {
	switch t {
	case SlotTypeInput:
		return "Input"
	case SlotTypeOutput:
		return "Output"
	case SlotTypeInputOutput:
		return "InputOutput"
	}
	return "Uninitialized"
}

// Mask returns the bit of this slot type inside a SlotMask.
func (t SlotType) Mask() SlotMask {
	return SlotMask(1 << uint32(t))
}

func ParseSlotType(s string) (SlotType, error) {
	switch strings.ToLower(s) {
	case "input":
		return SlotTypeInput, nil
	case "output":
		return SlotTypeOutput, nil
	case "inputoutput", "input_output":
		return SlotTypeInputOutput, nil
	}
	return SlotTypeUninitialized, fmt.Errorf("unknown slot type '%s'", s)
}

func (t SlotType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SlotType) UnmarshalText(text []byte) error {
	v, err := ParseSlotType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type SlotMask uint32

const (
	SlotMaskInput       = SlotMask(1 << uint32(SlotTypeInput))
	SlotMaskOutput      = SlotMask(1 << uint32(SlotTypeOutput))
	SlotMaskInputOutput = SlotMask(1 << uint32(SlotTypeInputOutput))
	SlotMaskAll         = SlotMaskInput | SlotMaskOutput | SlotMaskInputOutput
)

/** @brief How a scope uses an attachment. */
type ScopeAttachmentUsage uint32

const (
	ScopeAttachmentUsageUninitialized ScopeAttachmentUsage = iota
	ScopeAttachmentUsageRenderTarget
	ScopeAttachmentUsageDepthStencil
	ScopeAttachmentUsageShader
	ScopeAttachmentUsageCopy
	ScopeAttachmentUsageResolve
)

var usageNames = []string{"Uninitialized", "RenderTarget", "DepthStencil", "Shader", "Copy", "Resolve"}

func (u ScopeAttachmentUsage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return fmt.Sprintf("ScopeAttachmentUsage(%d)", uint32(u))
}

func (u ScopeAttachmentUsage) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *ScopeAttachmentUsage) UnmarshalText(text []byte) error {
	for i, n := range usageNames {
		if strings.EqualFold(n, string(text)) {
			*u = ScopeAttachmentUsage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown scope attachment usage '%s'", string(text))
}

/** @brief Read/write access of a scope attachment, derived from the slot type. */
type ScopeAttachmentAccess uint32

const (
	ScopeAttachmentAccessRead ScopeAttachmentAccess = iota
	ScopeAttachmentAccessWrite
	ScopeAttachmentAccessReadWrite
)

func (a ScopeAttachmentAccess) String() string {
	switch a {
	case ScopeAttachmentAccessWrite:
		return "Write"
	case ScopeAttachmentAccessReadWrite:
		return "ReadWrite"
	}
	return "Read"
}

// AccessForSlot maps a slot direction onto a scope access.
func AccessForSlot(t SlotType) ScopeAttachmentAccess {
	switch t {
	case SlotTypeOutput:
		return ScopeAttachmentAccessWrite
	case SlotTypeInputOutput:
		return ScopeAttachmentAccessReadWrite
	}
	return ScopeAttachmentAccessRead
}

/** @brief A named slot declared by a pass template. */
type PassSlot struct {
	Name     string               `toml:"name" yaml:"name"`
	SlotType SlotType             `toml:"type" yaml:"type"`
	Usage    ScopeAttachmentUsage `toml:"usage" yaml:"usage"`
	/** @brief Formats accepted by the slot. Empty accepts every format. */
	FormatFilter []Format `toml:"format_filter" yaml:"format_filter"`
	/** @brief Image dimensions accepted by the slot. Empty accepts every dimension. */
	DimensionFilter []ImageDimension `toml:"dimension_filter" yaml:"dimension_filter"`
}

func (s *PassSlot) AcceptsFormat(desc UnifiedAttachmentDescriptor) bool {
	if len(s.FormatFilter) == 0 || desc.Type != AttachmentTypeImage {
		return true
	}
	return slices.Contains(s.FormatFilter, desc.Image.Format)
}

func (s *PassSlot) AcceptsDimension(desc UnifiedAttachmentDescriptor) bool {
	if len(s.DimensionFilter) == 0 || desc.Type != AttachmentTypeImage {
		return true
	}
	dim := desc.Image.Dimension
	if dim == 0 {
		dim = ImageDimension2D
	}
	return slices.Contains(s.DimensionFilter, dim)
}

/** @brief Connects a local slot to a binding (or owned attachment) of another pass. */
type PassConnection struct {
	LocalSlot     string            `toml:"local_slot" yaml:"local_slot"`
	AttachmentRef PassAttachmentRef `toml:"attachment_ref" yaml:"attachment_ref"`
}

/** @brief Output slot that passes an input through while the pass is disabled. */
type PassFallbackConnection struct {
	InputSlotName  string `toml:"input" yaml:"input"`
	OutputSlotName string `toml:"output" yaml:"output"`
}

/** @brief Pass class specific settings. */
type PassData struct {
	/** @brief CopyPass: create the output attachment as a clone of the input. */
	CloneInput bool `toml:"clone_input" yaml:"clone_input"`
	/** @brief ComputePass: name of the dispatched shader. */
	ShaderName string `toml:"shader" yaml:"shader"`
	/** @brief ComputePass: dispatch group counts. */
	ThreadCountX uint32 `toml:"thread_count_x" yaml:"thread_count_x"`
	ThreadCountY uint32 `toml:"thread_count_y" yaml:"thread_count_y"`
	ThreadCountZ uint32 `toml:"thread_count_z" yaml:"thread_count_z"`
	/** @brief RasterPass: draw list gathered by the pass. */
	DrawListTag string `toml:"draw_list_tag" yaml:"draw_list_tag"`
	/** @brief RasterPass: the pipeline view providing the draw list. */
	PipelineViewTag string `toml:"pipeline_view_tag" yaml:"pipeline_view_tag"`
}

/**
 * @brief The declarative description a pass is instantiated from.
 * Owned by the pass library, shared by every pass built from it.
 */
type PassTemplate struct {
	Name                string                     `toml:"name" yaml:"name"`
	PassClass           string                     `toml:"pass_class" yaml:"pass_class"`
	Slots               []PassSlot                 `toml:"slots" yaml:"slots"`
	ImageAttachments    []PassImageAttachmentDesc  `toml:"image_attachments" yaml:"image_attachments"`
	BufferAttachments   []PassBufferAttachmentDesc `toml:"buffer_attachments" yaml:"buffer_attachments"`
	OutputConnections   []PassConnection           `toml:"connections" yaml:"connections"`
	FallbackConnections []PassFallbackConnection   `toml:"fallback_connections" yaml:"fallback_connections"`
	/** @brief Children instantiated by a ParentPass. */
	PassRequests []PassRequest `toml:"pass_requests" yaml:"pass_requests"`
	PassData     *PassData     `toml:"pass_data" yaml:"pass_data"`
}

func (t *PassTemplate) FindSlot(name string) *PassSlot {
	for i := range t.Slots {
		if t.Slots[i].Name == name {
			return &t.Slots[i]
		}
	}
	return nil
}

// AttachmentFitsSlot checks an attachment descriptor against the filters of
// the named slot. Unknown slots reject everything.
func (t *PassTemplate) AttachmentFitsSlot(desc UnifiedAttachmentDescriptor, slotName string) bool {
	slot := t.FindSlot(slotName)
	if slot == nil {
		return false
	}
	return slot.AcceptsFormat(desc) && slot.AcceptsDimension(desc)
}

// Clone returns a deep copy of the template.
func (t *PassTemplate) Clone() *PassTemplate {
	c := *t
	c.Slots = make([]PassSlot, len(t.Slots))
	for i, s := range t.Slots {
		s.FormatFilter = slices.Clone(s.FormatFilter)
		s.DimensionFilter = slices.Clone(s.DimensionFilter)
		c.Slots[i] = s
	}
	c.ImageAttachments = slices.Clone(t.ImageAttachments)
	c.BufferAttachments = slices.Clone(t.BufferAttachments)
	c.OutputConnections = slices.Clone(t.OutputConnections)
	c.FallbackConnections = slices.Clone(t.FallbackConnections)
	c.PassRequests = make([]PassRequest, len(t.PassRequests))
	for i := range t.PassRequests {
		c.PassRequests[i] = t.PassRequests[i].Clone()
	}
	if t.PassData != nil {
		d := *t.PassData
		c.PassData = &d
	}
	return &c
}

// Validate checks the structural rules every loader enforces.
func (t *PassTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("pass template name is required")
	}
	seen := make(map[string]struct{}, len(t.Slots))
	for _, s := range t.Slots {
		if s.Name == "" {
			return fmt.Errorf("pass template '%s' has a slot without a name", t.Name)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("pass template '%s' declares slot '%s' twice", t.Name, s.Name)
		}
		if s.SlotType == SlotTypeUninitialized {
			return fmt.Errorf("pass template '%s' slot '%s' has no type", t.Name, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	for _, r := range t.PassRequests {
		if r.PassName == "" || r.TemplateName == "" {
			return fmt.Errorf("pass template '%s' has a child request without pass or template name", t.Name)
		}
	}
	return nil
}

/** @brief A request to instantiate a pass from a template, plus its inputs. */
type PassRequest struct {
	PassName            string           `toml:"name" yaml:"name"`
	TemplateName        string           `toml:"template" yaml:"template"`
	ExecuteAfterPasses  []string         `toml:"execute_after" yaml:"execute_after"`
	ExecuteBeforePasses []string         `toml:"execute_before" yaml:"execute_before"`
	InputConnections    []PassConnection `toml:"connections" yaml:"connections"`
	PassData            *PassData        `toml:"pass_data" yaml:"pass_data"`
	/** @brief Initial enabled state. Defaults to true when nil. */
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

// PassEnabled is the initial enabled state of the requested pass.
func (r *PassRequest) PassEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

func (r *PassRequest) SetPassEnabled(enabled bool) {
	r.Enabled = &enabled
}

func (r *PassRequest) AddInputConnection(c PassConnection) {
	r.InputConnections = append(r.InputConnections, c)
}

func (r PassRequest) Clone() PassRequest {
	c := r
	c.ExecuteAfterPasses = slices.Clone(r.ExecuteAfterPasses)
	c.ExecuteBeforePasses = slices.Clone(r.ExecuteBeforePasses)
	c.InputConnections = slices.Clone(r.InputConnections)
	if r.PassData != nil {
		d := *r.PassData
		c.PassData = &d
	}
	if r.Enabled != nil {
		e := *r.Enabled
		c.Enabled = &e
	}
	return c
}

/** @brief Everything needed to construct a pass. */
type PassDescriptor struct {
	PassName     string
	PassTemplate *PassTemplate
	PassRequest  *PassRequest
}

/** @brief The content of one pass library file. */
type PassLibrary struct {
	Templates []PassTemplate `toml:"templates" yaml:"templates"`
}

func (l *PassLibrary) Validate() error {
	seen := make(map[string]struct{}, len(l.Templates))
	for i := range l.Templates {
		if err := l.Templates[i].Validate(); err != nil {
			return err
		}
		if _, ok := seen[l.Templates[i].Name]; ok {
			return fmt.Errorf("pass template '%s' declared twice", l.Templates[i].Name)
		}
		seen[l.Templates[i].Name] = struct{}{}
	}
	return nil
}
