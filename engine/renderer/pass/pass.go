package pass

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/** @brief Where a pass is in its build cycle. */
type State uint8

const (
	/** @brief Built (or never built) and not waiting for anything. */
	StateIdle State = iota
	/** @brief Waiting in the pass system's build queue. */
	StateQueued
	/** @brief Bindings and owned attachments were cleared this cycle. */
	StateReset
	/** @brief BuildAttachments is running. */
	StateBuilding
	/** @brief BuildAttachments ran this cycle. Cleared by OnBuildAttachmentsFinished. */
	StateBuilt
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "Queued"
	case StateReset:
		return "Reset"
	case StateBuilding:
		return "Building"
	case StateBuilt:
		return "Built"
	}
	return "Idle"
}

type flags struct {
	enabled                        bool
	createdByRequest               bool
	partOfHierarchy                bool
	rendering                      bool
	timestampQueryEnabled          bool
	pipelineStatisticsQueryEnabled bool
	hasDrawListTag                 bool
	hasPipelineViewTag             bool
}

/** @brief CPU time spent between FrameBegin and FrameEnd. */
type TimestampResult struct {
	Duration time.Duration
}

func (t TimestampResult) Add(o TimestampResult) TimestampResult {
	return TimestampResult{Duration: t.Duration + o.Duration}
}

/** @brief Work recorded by a pass during its last frame. */
type PipelineStatisticsResult struct {
	ScopeCount      uint64
	AttachmentCount uint64
}

func (r PipelineStatisticsResult) Add(o PipelineStatisticsResult) PipelineStatisticsResult {
	return PipelineStatisticsResult{
		ScopeCount:      r.ScopeCount + o.ScopeCount,
		AttachmentCount: r.AttachmentCount + o.AttachmentCount,
	}
}

/**
 * @brief The structural unit of the render graph. A pass declares slots
 * (from its template), resolves them against the slots of neighboring
 * passes and owns the attachments it creates.
 */
type Pass struct {
	system System
	handle Handle

	name      string
	path      string
	treeDepth uint32
	parent    Handle

	template *metadata.PassTemplate
	request  metadata.PassRequest
	pipeline Pipeline

	bindings                  []*Binding
	inputBindingIndices       []int
	inputOutputBindingIndices []int
	outputBindingIndices      []int

	ownedAttachments        []*Attachment
	importedAttachmentStore []*Attachment

	executeAfterPasses  []Handle
	executeBeforePasses []Handle

	state State
	flags flags

	errors          uint32
	warnings        uint32
	errorMessages   []string
	warningMessages []string

	clock      *core.Clock
	timestamp  TimestampResult
	statistics PipelineStatisticsResult

	// the variant embedding this pass, used for hook dispatch
	variant any
}

func newPass(system System, desc metadata.PassDescriptor) (*Pass, error) {
	if system == nil {
		return nil, fmt.Errorf("pass '%s': a pass system is required", desc.PassName)
	}
	if desc.PassName == "" {
		return nil, fmt.Errorf("pass name is required")
	}
	if desc.PassRequest != nil && desc.PassTemplate == nil {
		return nil, fmt.Errorf("pass '%s': a request also requires a template", desc.PassName)
	}
	p := &Pass{
		system:   system,
		handle:   InvalidHandle,
		name:     desc.PassName,
		path:     desc.PassName,
		parent:   InvalidHandle,
		template: desc.PassTemplate,
		clock:    core.NewClock(),
	}
	p.flags.enabled = true
	if desc.PassRequest != nil {
		p.request = desc.PassRequest.Clone()
		p.flags.createdByRequest = true
		p.flags.enabled = p.request.PassEnabled()
	}
	return p, nil
}

// register hands the pass to the pass system and queues its first build.
func (p *Pass) register(variant any) error {
	p.variant = variant
	h, err := p.system.RegisterPass(p)
	if err != nil {
		return err
	}
	p.handle = h
	p.QueueForBuildAttachments()
	return nil
}

// NewPass creates a pass without pass specific behavior.
func NewPass(system System, desc metadata.PassDescriptor) (*Pass, error) {
	p, err := newPass(system, desc)
	if err != nil {
		return nil, err
	}
	if err := p.register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// passData returns the request's pass data, falling back to the template's.
func (p *Pass) passData() *metadata.PassData {
	if p.flags.createdByRequest && p.request.PassData != nil {
		return p.request.PassData
	}
	if p.template != nil {
		return p.template.PassData
	}
	return nil
}

func (p *Pass) Handle() Handle    { return p.handle }
func (p *Pass) Name() string      { return p.name }
func (p *Pass) Path() string      { return p.path }
func (p *Pass) TreeDepth() uint32 { return p.treeDepth }
func (p *Pass) State() State      { return p.state }
func (p *Pass) System() System    { return p.system }
func (p *Pass) Variant() any      { return p.variant }

func (p *Pass) Template() *metadata.PassTemplate {
	return p.template
}

func (p *Pass) IsEnabled() bool {
	return p.flags.enabled
}

func (p *Pass) SetEnabled(enabled bool) {
	p.flags.enabled = enabled
}

func (p *Pass) IsCreatedByRequest() bool {
	return p.flags.createdByRequest
}

func (p *Pass) IsPartOfHierarchy() bool {
	return p.flags.partOfHierarchy
}

func (p *Pass) IsRendering() bool {
	return p.flags.rendering
}

// GetPassDescriptor returns what the pass was built from. The template is
// looked up again so a reloaded template is reported.
func (p *Pass) GetPassDescriptor() metadata.PassDescriptor {
	desc := metadata.PassDescriptor{PassName: p.name}
	if p.template != nil {
		if t, err := p.system.GetPassTemplate(p.template.Name); err == nil {
			desc.PassTemplate = t
		}
	}
	if p.flags.createdByRequest {
		req := p.request
		desc.PassRequest = &req
	}
	return desc
}

// --- Bindings ---

func (p *Pass) Bindings() []*Binding {
	return p.bindings
}

func (p *Pass) Binding(i int) *Binding {
	return p.bindings[i]
}

func (p *Pass) InputCount() int       { return len(p.inputBindingIndices) }
func (p *Pass) InputOutputCount() int { return len(p.inputOutputBindingIndices) }
func (p *Pass) OutputCount() int      { return len(p.outputBindingIndices) }

func (p *Pass) InputBinding(i int) *Binding {
	return p.bindings[p.inputBindingIndices[i]]
}

func (p *Pass) InputOutputBinding(i int) *Binding {
	return p.bindings[p.inputOutputBindingIndices[i]]
}

func (p *Pass) OutputBinding(i int) *Binding {
	return p.bindings[p.outputBindingIndices[i]]
}

// AddAttachmentBinding appends a binding and indexes it by slot type.
func (p *Pass) AddAttachmentBinding(b *Binding) {
	idx := len(p.bindings)
	switch b.SlotType {
	case metadata.SlotTypeInput:
		p.inputBindingIndices = append(p.inputBindingIndices, idx)
	case metadata.SlotTypeInputOutput:
		p.inputOutputBindingIndices = append(p.inputOutputBindingIndices, idx)
	case metadata.SlotTypeOutput:
		p.outputBindingIndices = append(p.outputBindingIndices, idx)
	}
	p.bindings = append(p.bindings, b)
}

func (p *Pass) OwnedAttachments() []*Attachment {
	return p.ownedAttachments
}

func (p *Pass) ExecuteAfterPasses() []*Pass {
	return p.resolveHandles(p.executeAfterPasses)
}

func (p *Pass) ExecuteBeforePasses() []*Pass {
	return p.resolveHandles(p.executeBeforePasses)
}

func (p *Pass) resolveHandles(handles []Handle) []*Pass {
	out := make([]*Pass, 0, len(handles))
	for _, h := range handles {
		if other := p.system.Pass(h); other != nil {
			out = append(out, other)
		}
	}
	return out
}

// --- Messages ---

func (p *Pass) LogError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	core.LogError("[%s] %s", p.path, msg)
	if !p.system.ValidationEnabled() {
		return
	}
	p.errors++
	if len(p.errorMessages) < p.system.MessageLogLimit() {
		p.errorMessages = append(p.errorMessages, msg)
	}
}

func (p *Pass) LogWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	core.LogWarn("[%s] %s", p.path, msg)
	if !p.system.ValidationEnabled() {
		return
	}
	p.warnings++
	if len(p.warningMessages) < p.system.MessageLogLimit() {
		p.warningMessages = append(p.warningMessages, msg)
	}
}

// ErrorCount counts every error, including the ones past the message log limit.
func (p *Pass) ErrorCount() uint32        { return p.errors }
func (p *Pass) WarningCount() uint32      { return p.warnings }
func (p *Pass) ErrorMessages() []string   { return p.errorMessages }
func (p *Pass) WarningMessages() []string { return p.warningMessages }

// ClearMessages drops the recorded errors and warnings.
func (p *Pass) ClearMessages() {
	p.errors, p.warnings = 0, 0
	p.errorMessages = p.errorMessages[:0]
	p.warningMessages = p.warningMessages[:0]
}

// --- Pipeline, draw list and view tags ---

func (p *Pass) RenderPipeline() Pipeline {
	return p.pipeline
}

// SetRenderPipeline assigns the pipeline to the pass and its subtree.
// Attachments sourcing from the pipeline pick it up on the next build.
func (p *Pass) SetRenderPipeline(pipeline Pipeline) {
	if p.pipeline != pipeline {
		p.pipeline = pipeline
		p.QueueForBuildAttachments()
	}
	if pp := p.AsParent(); pp != nil {
		for _, child := range pp.Children() {
			child.SetRenderPipeline(pipeline)
		}
	}
}

func (p *Pass) HasDrawListTag() bool {
	return p.flags.hasDrawListTag
}

func (p *Pass) HasPipelineViewTag() bool {
	return p.flags.hasPipelineViewTag
}

func (p *Pass) DrawListTag() string {
	if dl, ok := p.variant.(DrawListProvider); ok && p.flags.hasDrawListTag {
		return dl.DrawListTagInternal()
	}
	return ""
}

func (p *Pass) PipelineViewTag() string {
	if dl, ok := p.variant.(DrawListProvider); ok && p.flags.hasPipelineViewTag {
		return dl.PipelineViewTagInternal()
	}
	return ""
}

// --- Queries ---

func (p *Pass) SetTimestampQueryEnabled(enable bool) {
	p.flags.timestampQueryEnabled = enable
}

func (p *Pass) SetPipelineStatisticsQueryEnabled(enable bool) {
	p.flags.pipelineStatisticsQueryEnabled = enable
}

func (p *Pass) IsTimestampQueryEnabled() bool {
	return p.flags.timestampQueryEnabled
}

func (p *Pass) IsPipelineStatisticsQueryEnabled() bool {
	return p.flags.pipelineStatisticsQueryEnabled
}

// GetTimestampResult is zero for disabled passes and passes without
// timestamp queries.
func (p *Pass) GetTimestampResult() TimestampResult {
	if !p.IsEnabled() || !p.IsTimestampQueryEnabled() {
		return TimestampResult{}
	}
	if r, ok := p.variant.(TimestampReporter); ok {
		return r.TimestampResultInternal()
	}
	return p.timestamp
}

func (p *Pass) GetPipelineStatisticsResult() PipelineStatisticsResult {
	if !p.IsEnabled() || !p.IsPipelineStatisticsQueryEnabled() {
		return PipelineStatisticsResult{}
	}
	if r, ok := p.variant.(StatisticsReporter); ok {
		return r.PipelineStatisticsResultInternal()
	}
	return p.statistics
}
