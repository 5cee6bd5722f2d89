// Package format accumulates style rules for the external Writer. Rules are
// recorded, never applied to the in-memory dataset: static rules resolve to
// fixed coordinates, conditional rules are re-evaluated against final cell
// values at write time.
package format

import (
	"log"
	"strings"
)

// ============================================================================
// FORMATTING & CONDITIONAL-FORMATTING STORE
// ============================================================================
// Nothing here can fail: invalid or incomplete rules are logged and dropped,
// not raised, because formatting is cosmetic relative to the data transform.
// ============================================================================

// Style is the visual treatment a rule applies.
type Style struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	TextColor string `json:"text_color,omitempty"` // hex, e.g. "#B45309"
	BgColor   string `json:"bg_color,omitempty"`
	Align     string `json:"align,omitempty"` // left|center|right
	Border    bool   `json:"border,omitempty"`
}

// isZero reports whether the style changes nothing.
func (s Style) isZero() bool {
	return !s.Bold && !s.Italic && s.TextColor == "" && s.BgColor == "" && s.Align == "" && !s.Border
}

// StaticRule styles a fixed target: one cell, a row, a column, or an
// explicit A1 cell list.
type StaticRule struct {
	Column string   `json:"column,omitempty"`
	Row    *int     `json:"row,omitempty"`
	Cell   string   `json:"cell,omitempty"`
	Cells  []string `json:"cells,omitempty"`
	Style  Style    `json:"style"`
}

// Predicate names the conditional tests the Writer evaluates.
type Predicate string

const (
	PredicateDuplicates   Predicate = "duplicates"
	PredicateGreaterThan  Predicate = "greater_than"
	PredicateLessThan     Predicate = "less_than"
	PredicateBetween      Predicate = "between"
	PredicateContainsText Predicate = "contains_text"
	PredicateTextEquals   Predicate = "text_equals"
	PredicateRegexMatch   Predicate = "regex_match"
)

// knownPredicates gates what the store accepts.
var knownPredicates = map[Predicate]bool{
	PredicateDuplicates:   true,
	PredicateGreaterThan:  true,
	PredicateLessThan:     true,
	PredicateBetween:      true,
	PredicateContainsText: true,
	PredicateTextEquals:   true,
	PredicateRegexMatch:   true,
}

// ConditionalRule styles every cell of a column matching a predicate.
type ConditionalRule struct {
	Column    string    `json:"column"`
	Predicate Predicate `json:"predicate"`
	Text      string    `json:"text,omitempty"`      // contains_text / text_equals / regex_match
	Threshold float64   `json:"threshold,omitempty"` // greater_than / less_than
	Lower     float64   `json:"lower,omitempty"`     // between
	Upper     float64   `json:"upper,omitempty"`     // between
	Style     Style     `json:"style"`
}

// Store holds the two independent rule lists for one request.
type Store struct {
	static      []StaticRule
	conditional []ConditionalRule
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// AddStatic records a static rule. Rules with no target or an empty style
// are dropped with a log line.
func (s *Store) AddStatic(r StaticRule) {
	if r.Style.isZero() {
		log.Printf("🎨 format: dropping static rule with empty style")
		return
	}
	if r.Column == "" && r.Row == nil && r.Cell == "" && len(r.Cells) == 0 {
		log.Printf("🎨 format: dropping static rule with no target")
		return
	}
	s.static = append(s.static, r)
}

// AddConditional records a conditional rule. Unknown predicates and rules
// missing their required operand are dropped with a log line.
func (s *Store) AddConditional(r ConditionalRule) {
	r.Predicate = Predicate(strings.ToLower(strings.TrimSpace(string(r.Predicate))))
	if !knownPredicates[r.Predicate] {
		log.Printf("🎨 format: dropping conditional rule with unknown predicate %q", r.Predicate)
		return
	}
	if r.Column == "" {
		log.Printf("🎨 format: dropping conditional %s rule with no column", r.Predicate)
		return
	}
	switch r.Predicate {
	case PredicateContainsText, PredicateTextEquals, PredicateRegexMatch:
		if r.Text == "" {
			log.Printf("🎨 format: dropping %s rule with no text", r.Predicate)
			return
		}
	}
	if r.Style.isZero() {
		// A highlight with no style means nothing to render — default to
		// an amber fill so the Writer always has something to paint.
		r.Style = Style{BgColor: DefaultHighlight}
	}
	s.conditional = append(s.conditional, r)
}

// DefaultHighlight is the fill used when no color could be inferred.
const DefaultHighlight = "#FBBF24"

// Static returns the recorded static rules in insertion order.
func (s *Store) Static() []StaticRule {
	return append([]StaticRule(nil), s.static...)
}

// Conditional returns the recorded conditional rules in insertion order.
func (s *Store) Conditional() []ConditionalRule {
	return append([]ConditionalRule(nil), s.conditional...)
}

// Len returns the total rule count.
func (s *Store) Len() int { return len(s.static) + len(s.conditional) }
