// Package cleaner provides interfaces and implementations for turning HTML
// cells into plain text.
package cleaner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/detag/pkg/cleaner/text"
)

// Cleaner transforms an HTML fragment into plain text.
// Implementations must be deterministic and safe for concurrent use.
type Cleaner interface {
	// Clean transforms the input HTML into plain text.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}

// StatsCleaner is implemented by cleaners that report what each call did.
type StatsCleaner interface {
	Cleaner
	CleanWithStats(html string) *text.Result
}

// Names of the built-in cleaners accepted by New.
const (
	NameText      = "text"
	NameStrict    = "strict"
	NameSanitize  = "sanitize"
	NameHTML2Text = "html2text"
	NameNoop      = "noop"
)

var factories = map[string]func(cfg *text.Config) Cleaner{
	NameText: func(cfg *text.Config) Cleaner {
		return text.New(cfg)
	},
	NameStrict: func(cfg *text.Config) Cleaner {
		return text.New(text.PresetStrict().Merge(cfg))
	},
	NameSanitize:  func(*text.Config) Cleaner { return NewSanitize() },
	NameHTML2Text: func(*text.Config) Cleaner { return NewHTML2Text() },
	NameNoop:      func(*text.Config) Cleaner { return NewNoop() },
}

// New returns the built-in cleaner registered under name. cfg tunes the
// text-based cleaners and may be nil; the others ignore it.
//
// Names joined with ChainSeparator build a Chain, e.g. "sanitize,text".
func New(name string, cfg *text.Config) (Cleaner, error) {
	if strings.Contains(name, ChainSeparator) {
		return newChain(name, func(part string) (Cleaner, error) {
			return New(part, cfg)
		})
	}
	if name == "" {
		name = NameText
	}
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown cleaner: %s (use %s)", name, strings.Join(Names(), ", "))
	}
	return factory(cfg), nil
}

// Names returns the registered cleaner names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// collapse trims s and squeezes internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
