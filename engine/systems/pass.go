package systems

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/passgraph/engine/containers"
	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/renderer/pass"
)

/** @brief The configuration for the pass system. */
type PassSystemConfig struct {
	/** @brief The maximum number of passes that can be registered with the system. */
	MaxPassCount uint32 `toml:"max_pass_count"`
	/** @brief Initial capacity of the build and removal queues. They grow when full. */
	QueueCapacity int `toml:"queue_capacity"`
	/** @brief When false passes do not record their errors and warnings. */
	ValidationEnabled bool `toml:"validation_enabled"`
	/** @brief Maximum number of messages a pass keeps for each severity. */
	MessageLogLimit int `toml:"message_log_limit"`
	/** @brief Number of workers parsing library files in LoadLibrary. */
	LoaderWorkers int `toml:"loader_workers"`
}

func DefaultPassSystemConfig() PassSystemConfig {
	return PassSystemConfig{
		MaxPassCount:      1024,
		QueueCapacity:     64,
		ValidationEnabled: true,
		MessageLogLimit:   16,
		LoaderWorkers:     4,
	}
}

/**
 * @brief Owns every pass, the template library and the pass classes. Passes
 * reach the system through the pass.System interface.
 */
type PassSystem struct {
	passes *core.IdentifierPool[pass.Pass]
	roots  []pass.Handle

	templates map[string]*metadata.PassTemplate
	classes   map[string]PassCreator

	buildQueue   *containers.RingQueue[*pass.Pass]
	removalQueue *containers.RingQueue[*pass.Pass]
	isBuilding   bool

	assetLoader pass.AssetLoader
	pipeline    pass.Pipeline

	validationEnabled bool
	messageLogLimit   int
	loaderWorkers     int
}

func NewPassSystem(config PassSystemConfig, loader pass.AssetLoader) (*PassSystem, error) {
	if config.MaxPassCount == 0 {
		err := fmt.Errorf("func NewPassSystem - config.MaxPassCount must be > 0")
		return nil, err
	}
	if config.QueueCapacity <= 0 {
		err := fmt.Errorf("func NewPassSystem - config.QueueCapacity must be > 0")
		return nil, err
	}
	if config.MessageLogLimit < 1 {
		err := fmt.Errorf("func NewPassSystem - config.MessageLogLimit must be > 0")
		return nil, err
	}
	ps := &PassSystem{
		passes:            core.NewIdentifierPool[pass.Pass](config.MaxPassCount),
		templates:         make(map[string]*metadata.PassTemplate),
		classes:           make(map[string]PassCreator),
		buildQueue:        containers.NewGrowableRingQueue[*pass.Pass](config.QueueCapacity),
		removalQueue:      containers.NewGrowableRingQueue[*pass.Pass](config.QueueCapacity),
		assetLoader:       loader,
		validationEnabled: config.ValidationEnabled,
		messageLogLimit:   config.MessageLogLimit,
		loaderWorkers:     max(config.LoaderWorkers, 1),
	}
	ps.registerBuiltinClasses()
	return ps, nil
}

// --- pass.System ---

func (ps *PassSystem) Pass(h pass.Handle) *pass.Pass {
	if !h.IsValid() {
		return nil
	}
	return ps.passes.Get(uint32(h))
}

func (ps *PassSystem) RegisterPass(p *pass.Pass) (pass.Handle, error) {
	id, err := ps.passes.Acquire(p)
	if err != nil {
		return pass.InvalidHandle, err
	}
	return pass.Handle(id), nil
}

func (ps *PassSystem) UnregisterPass(p *pass.Pass) {
	if !ps.isRegistered(p) {
		return
	}
	if err := ps.passes.Release(uint32(p.Handle())); err != nil {
		core.LogError("failed to unregister pass %s: %s", p.Path(), err)
	}
}

func (ps *PassSystem) QueueForBuildAttachments(p *pass.Pass) {
	if err := ps.buildQueue.Enqueue(p); err != nil {
		core.LogError("failed to queue pass %s for build: %s", p.Path(), err)
	}
}

func (ps *PassSystem) QueueForRemoval(p *pass.Pass) {
	if err := ps.removalQueue.Enqueue(p); err != nil {
		core.LogError("failed to queue pass %s for removal: %s", p.Path(), err)
	}
}

func (ps *PassSystem) IsBuilding() bool              { return ps.isBuilding }
func (ps *PassSystem) AssetLoader() pass.AssetLoader { return ps.assetLoader }
func (ps *PassSystem) ValidationEnabled() bool       { return ps.validationEnabled }
func (ps *PassSystem) MessageLogLimit() int          { return ps.messageLogLimit }

// --- Registry ---

func (ps *PassSystem) PassCount() uint32 {
	return ps.passes.Count()
}

// FindPassByPath returns the registered pass with the given path.
func (ps *PassSystem) FindPassByPath(path string) (*pass.Pass, error) {
	var found *pass.Pass
	ps.passes.Each(func(_ uint32, p *pass.Pass) {
		if found == nil && p.Path() == path {
			found = p
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: '%s'", core.ErrPassNotFound, path)
	}
	return found, nil
}

func (ps *PassSystem) isRegistered(p *pass.Pass) bool {
	return p != nil && ps.Pass(p.Handle()) == p
}

// --- Roots ---

// AddRootPass makes the pass the root of a hierarchy and queues its build.
func (ps *PassSystem) AddRootPass(p *pass.Pass) error {
	if !ps.isRegistered(p) {
		return fmt.Errorf("%w: '%s' is not registered", core.ErrPassNotFound, p.Name())
	}
	if slices.Contains(ps.roots, p.Handle()) {
		return nil
	}
	if p.Parent() != nil {
		p.RemoveFromParent()
	}
	p.SetAsRoot()
	if ps.pipeline != nil {
		p.SetRenderPipeline(ps.pipeline)
	}
	ps.roots = append(ps.roots, p.Handle())
	p.QueueForBuildAttachments()
	return nil
}

func (ps *PassSystem) RootPasses() []*pass.Pass {
	roots := make([]*pass.Pass, 0, len(ps.roots))
	for _, h := range ps.roots {
		if p := ps.Pass(h); p != nil {
			roots = append(roots, p)
		}
	}
	return roots
}

// SetPipeline assigns the render pipeline to every hierarchy.
func (ps *PassSystem) SetPipeline(pipeline pass.Pipeline) {
	ps.pipeline = pipeline
	for _, root := range ps.RootPasses() {
		root.SetRenderPipeline(pipeline)
	}
}

func (ps *PassSystem) Pipeline() pass.Pipeline {
	return ps.pipeline
}

// --- Queues ---

// ProcessQueuedChanges removes the passes queued for removal, then resets and
// builds the queued passes top-down. It returns the number of passes built.
func (ps *PassSystem) ProcessQueuedChanges() int {
	ps.removePasses()
	return ps.buildPasses()
}

func (ps *PassSystem) removePasses() {
	for !ps.removalQueue.IsEmpty() {
		p, _ := ps.removalQueue.Dequeue()
		ps.removePass(p)
	}
}

// removePass detaches the pass and unregisters its whole subtree.
func (ps *PassSystem) removePass(p *pass.Pass) {
	if !ps.isRegistered(p) {
		return
	}
	if p.Parent() != nil {
		p.RemoveFromParent()
	}
	if i := slices.Index(ps.roots, p.Handle()); i >= 0 {
		ps.roots = slices.Delete(ps.roots, i, i+1)
	}
	if pp := p.AsParent(); pp != nil {
		for _, child := range pp.Children() {
			ps.removePass(child)
		}
	}
	core.LogDebug("removing pass %s", p.Path())
	ps.UnregisterPass(p)
}

func (ps *PassSystem) buildPasses() int {
	queued := ps.buildQueue.Drain()
	if len(queued) == 0 {
		return 0
	}

	// Only live passes of a hierarchy are built, each once.
	buildList := make([]*pass.Pass, 0, len(queued))
	for _, p := range queued {
		if !ps.isRegistered(p) || slices.Contains(buildList, p) {
			continue
		}
		if !p.IsPartOfHierarchy() {
			p.CancelBuild()
			continue
		}
		buildList = append(buildList, p)
	}
	slices.SortStableFunc(buildList, func(a, b *pass.Pass) int {
		return int(a.TreeDepth()) - int(b.TreeDepth())
	})

	ps.isBuilding = true
	for _, p := range buildList {
		p.Reset()
	}
	for _, p := range buildList {
		p.BuildAttachments()
	}
	for _, p := range buildList {
		p.OnBuildAttachmentsFinished()
	}
	ps.isBuilding = false

	if len(buildList) > 0 && ps.validationEnabled {
		results := ps.Validate()
		results.PrintValidationIfError()
	}
	return len(buildList)
}

// --- Frame ---

func (ps *PassSystem) FrameBegin(params pass.FramePrepareParams) {
	for _, root := range ps.RootPasses() {
		root.FrameBegin(params)
	}
}

func (ps *PassSystem) FrameEnd() {
	for _, root := range ps.RootPasses() {
		root.FrameEnd()
	}
}

// Validate walks every hierarchy depth-first.
func (ps *PassSystem) Validate() *pass.ValidationResults {
	results := &pass.ValidationResults{}
	for _, root := range ps.RootPasses() {
		root.Validate(results)
	}
	return results
}

func (ps *PassSystem) DebugString() string {
	var sb strings.Builder
	for _, root := range ps.RootPasses() {
		sb.WriteString(root.DebugString())
	}
	return sb.String()
}

func (ps *PassSystem) DebugPrint() {
	core.LogInfo("%s", ps.DebugString())
}

func (ps *PassSystem) Shutdown() error {
	for _, root := range ps.RootPasses() {
		ps.removePass(root)
	}
	// passes created but never attached to a hierarchy
	var orphans []*pass.Pass
	ps.passes.Each(func(_ uint32, p *pass.Pass) {
		orphans = append(orphans, p)
	})
	for _, p := range orphans {
		ps.removePass(p)
	}
	ps.buildQueue.Drain()
	ps.removalQueue.Drain()
	if count := ps.passes.Count(); count > 0 {
		return fmt.Errorf("pass system shutdown: %d passes still registered", count)
	}
	return nil
}
