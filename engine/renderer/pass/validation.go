package pass

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/** @brief Passes collected by a validation walk, grouped by problem. */
type ValidationResults struct {
	PassesWithErrors              []*Pass
	PassesWithWarnings            []*Pass
	PassesWithMissingInputs       []*Pass
	PassesWithMissingInputOutputs []*Pass
	/** @brief Informational only. Unconnected outputs are allowed. */
	PassesWithMissingOutputs []*Pass
	/** @brief Set when validation is turned off in the pass system. */
	ValidationDisabled bool
}

// IsValid is false when a pass has errors or a required (Input or
// InputOutput) binding without attachment.
func (r *ValidationResults) IsValid() bool {
	if r.ValidationDisabled {
		return true
	}
	return len(r.PassesWithErrors) == 0 &&
		len(r.PassesWithMissingInputs) == 0 &&
		len(r.PassesWithMissingInputOutputs) == 0
}

// Validate adds the pass, and its subtree, to the results.
func (p *Pass) Validate(results *ValidationResults) {
	if !p.system.ValidationEnabled() {
		results.ValidationDisabled = true
		return
	}
	if p.missingAttachment(p.inputBindingIndices) {
		results.PassesWithMissingInputs = append(results.PassesWithMissingInputs, p)
	}
	if p.missingAttachment(p.inputOutputBindingIndices) {
		results.PassesWithMissingInputOutputs = append(results.PassesWithMissingInputOutputs, p)
	}
	if p.missingAttachment(p.outputBindingIndices) {
		results.PassesWithMissingOutputs = append(results.PassesWithMissingOutputs, p)
	}
	if p.errors > 0 {
		results.PassesWithErrors = append(results.PassesWithErrors, p)
	}
	if p.warnings > 0 {
		results.PassesWithWarnings = append(results.PassesWithWarnings, p)
	}
	if pp := p.AsParent(); pp != nil {
		for _, child := range pp.Children() {
			child.Validate(results)
		}
	}
}

func (p *Pass) missingAttachment(indices []int) bool {
	for _, idx := range indices {
		if p.bindings[idx].Attachment == nil {
			return true
		}
	}
	return false
}

// ValidationReport renders the failures of the results. Empty when valid.
func (r *ValidationResults) ValidationReport() string {
	if r.IsValid() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n--- PASS VALIDATION FAILURE ---\n--Critical Errors--\n")

	fmt.Fprintf(&sb, "\nThere are %d passes with errors:\n", len(r.PassesWithErrors))
	for _, p := range r.PassesWithErrors {
		sb.WriteString(p.messagesString(p.errorMessages))
	}
	fmt.Fprintf(&sb, "\nThere are %d passes with missing Inputs:\n", len(r.PassesWithMissingInputs))
	for _, p := range r.PassesWithMissingInputs {
		sb.WriteString(p.bindingsWithoutAttachmentsString(metadata.SlotMaskInput))
	}
	fmt.Fprintf(&sb, "\nThere are %d passes with missing Inputs/Outputs:\n", len(r.PassesWithMissingInputOutputs))
	for _, p := range r.PassesWithMissingInputOutputs {
		sb.WriteString(p.bindingsWithoutAttachmentsString(metadata.SlotMaskInputOutput))
	}

	sb.WriteString("\n--Non-Critical Errors/Warnings--\n")
	fmt.Fprintf(&sb, "\nThere are %d passes with warnings:\n", len(r.PassesWithWarnings))
	for _, p := range r.PassesWithWarnings {
		sb.WriteString(p.messagesString(p.warningMessages))
	}
	return sb.String()
}

func (r *ValidationResults) PrintValidationIfError() {
	if report := r.ValidationReport(); report != "" {
		core.LogError("%s", report)
	}
}
