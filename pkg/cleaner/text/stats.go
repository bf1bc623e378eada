package text

import (
	"fmt"
	"strings"
	"time"
)

// Stats captures metrics about what the cleaner did.
type Stats struct {
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`

	// TextNodes counts the non-empty text nodes that made it into the output.
	TextNodes int `json:"text_nodes"`

	ElementsRemoved       map[string]int `json:"elements_removed"` // tag -> count
	SelectorMatches       map[string]int `json:"selector_matches"` // selector -> count
	HiddenElementRemovals int            `json:"hidden_element_removals"`

	// Parsed is false when the input contained no markup and the parser was skipped.
	Parsed bool `json:"parsed"`

	ParseDuration time.Duration `json:"parse_duration_ms"`
	TotalDuration time.Duration `json:"total_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		SelectorMatches: make(map[string]int),
	}
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// RecordSelectorMatch records that a selector matched elements.
func (s *Stats) RecordSelectorMatch(selector string, count int) {
	s.SelectorMatches[selector] += count
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// Add accumulates other into s. Used to report totals for a whole table.
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.InputBytes += other.InputBytes
	s.OutputBytes += other.OutputBytes
	s.TextNodes += other.TextNodes
	s.HiddenElementRemovals += other.HiddenElementRemovals
	for tag, n := range other.ElementsRemoved {
		s.ElementsRemoved[tag] += n
	}
	for sel, n := range other.SelectorMatches {
		s.SelectorMatches[sel] += n
	}
	s.ParseDuration += other.ParseDuration
	s.TotalDuration += other.TotalDuration
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Size: %d -> %d bytes\n", s.InputBytes, s.OutputBytes)
	fmt.Fprintf(&sb, "Text nodes: %d, elements removed: %d\n", s.TextNodes, s.TotalElementsRemoved())
	if s.HiddenElementRemovals > 0 {
		fmt.Fprintf(&sb, "Hidden element removals: %d\n", s.HiddenElementRemovals)
	}
	fmt.Fprintf(&sb, "Timing: parse=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond))
	return sb.String()
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Phase   string `json:"phase"`   // "parse", "transform", "output"
	Message string `json:"message"` // Human-readable description
	Context string `json:"context"` // Element or selector that caused issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the extracted text. On parse errors it holds the input with
	// whitespace collapsed.
	Content string `json:"content"`

	Stats    *Stats    `json:"stats"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
