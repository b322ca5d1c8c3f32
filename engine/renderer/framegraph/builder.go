package framegraph

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

type ScopeKind uint8

const (
	ScopeKindRaster ScopeKind = iota
	ScopeKindCompute
	ScopeKindCopy
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeKindCompute:
		return "Compute"
	case ScopeKindCopy:
		return "Copy"
	}
	return "Raster"
}

/** @brief One attachment used by a scope. */
type ScopeAttachment struct {
	ID       string
	SlotName string
	Usage    metadata.ScopeAttachmentUsage
	Access   metadata.ScopeAttachmentAccess
	/** @brief Disambiguates repeated uses of the same attachment inside one scope. */
	UsageIndex uint8
}

/**
 * @brief The unit of work a pass contributes to a frame, together with the
 * attachments it touches and its ordering constraints.
 */
type Scope struct {
	/** @brief Path of the pass producing the scope. */
	ID            string
	Kind          ScopeKind
	ExecuteAfter  []string
	ExecuteBefore []string
	Attachments   []ScopeAttachment
	/** @brief Free-form details (shader, draw list, copy type). */
	Details string
}

func (s *Scope) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]", s.ID, s.Kind)
	if s.Details != "" {
		fmt.Fprintf(&sb, " %s", s.Details)
	}
	for _, a := range s.Attachments {
		fmt.Fprintf(&sb, "\n   %s -> %s (%s, %s", a.SlotName, a.ID, a.Usage, a.Access)
		if a.UsageIndex > 0 {
			fmt.Fprintf(&sb, ", use %d", a.UsageIndex)
		}
		sb.WriteString(")")
	}
	return sb.String()
}

/** @brief Collects the per-frame binding plan. */
type Builder struct {
	database *AttachmentDatabase
	scopes   []Scope
	lookup   map[string]int
}

func NewBuilder() *Builder {
	return &Builder{
		database: NewAttachmentDatabase(),
		lookup:   make(map[string]int),
	}
}

func (b *Builder) AttachmentDatabase() *AttachmentDatabase {
	return b.database
}

// AddScope records a scope. A scope id can only be recorded once per frame.
func (b *Builder) AddScope(scope Scope) error {
	if _, ok := b.lookup[scope.ID]; ok {
		return fmt.Errorf("scope '%s' already recorded this frame", scope.ID)
	}
	b.lookup[scope.ID] = len(b.scopes)
	b.scopes = append(b.scopes, scope)
	return nil
}

// Scopes returns the recorded scopes in submission order.
func (b *Builder) Scopes() []Scope {
	return b.scopes
}

func (b *Builder) Scope(id string) (*Scope, bool) {
	i, ok := b.lookup[id]
	if !ok {
		return nil, false
	}
	return &b.scopes[i], true
}

// Reset clears scopes and attachments at the end of a frame.
func (b *Builder) Reset() {
	b.scopes = b.scopes[:0]
	clear(b.lookup)
	b.database.Reset()
}
