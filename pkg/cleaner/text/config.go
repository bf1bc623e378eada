// Package text converts HTML fragments into plain natural-language text.
// It parses the markup, drops non-content elements and joins the remaining
// text nodes, decoding entities along the way.
package text

// Config defines all configuration options for the text cleaner.
type Config struct {
	// === Removal Options ===

	// StripScripts removes <script> and <template> elements with their contents.
	StripScripts bool `json:"strip_scripts" yaml:"strip_scripts"`

	// StripStyles removes <style> elements with their contents.
	StripStyles bool `json:"strip_styles" yaml:"strip_styles"`

	// StripNoscript removes <noscript> fallback content.
	StripNoscript bool `json:"strip_noscript" yaml:"strip_noscript"`

	// StripHiddenElements removes elements with the hidden attribute,
	// aria-hidden="true", display:none or visibility:hidden.
	StripHiddenElements bool `json:"strip_hidden_elements" yaml:"strip_hidden_elements"`

	// RemoveSelectors is a list of CSS selectors to always remove.
	RemoveSelectors []string `json:"remove_selectors" yaml:"remove_selectors"`

	// KeepSelectors is a list of CSS selectors exempt from removal.
	KeepSelectors []string `json:"keep_selectors" yaml:"keep_selectors"`

	// === Output ===

	// Separator is placed between adjacent text nodes.
	Separator string `json:"separator" yaml:"separator"`

	// CollapseWhitespace turns every whitespace run inside a text node into one space.
	CollapseWhitespace bool `json:"collapse_whitespace" yaml:"collapse_whitespace"`

	// NormalizeUnicode applies Unicode NFC to the output.
	NormalizeUnicode bool `json:"normalize_unicode" yaml:"normalize_unicode"`
}

// DefaultConfig returns the configuration used by the conversion service:
// every visible and hidden text node is kept, joined by single spaces.
func DefaultConfig() *Config {
	return &Config{
		StripScripts:       true,
		StripStyles:        true,
		Separator:          " ",
		CollapseWhitespace: true,
		NormalizeUnicode:   true,
	}
}

// PresetStrict drops hidden and noscript content as well, for markup copied
// from full product pages rather than description editors.
func PresetStrict() *Config {
	cfg := DefaultConfig()
	cfg.StripNoscript = true
	cfg.StripHiddenElements = true
	cfg.RemoveSelectors = []string{
		"[class*='cookie']",
		"[class*='consent']",
		".share-buttons",
		".social-share",
	}
	return cfg
}

// Merge merges another config into this one.
// Enabled flags in other win, a non-empty separator replaces this one and
// selectors are appended without duplicates.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	if other.StripScripts {
		merged.StripScripts = true
	}
	if other.StripStyles {
		merged.StripStyles = true
	}
	if other.StripNoscript {
		merged.StripNoscript = true
	}
	if other.StripHiddenElements {
		merged.StripHiddenElements = true
	}
	if other.CollapseWhitespace {
		merged.CollapseWhitespace = true
	}
	if other.NormalizeUnicode {
		merged.NormalizeUnicode = true
	}
	if other.Separator != "" {
		merged.Separator = other.Separator
	}

	merged.RemoveSelectors = appendUnique(merged.RemoveSelectors, other.RemoveSelectors)
	merged.KeepSelectors = appendUnique(merged.KeepSelectors, other.KeepSelectors)

	return &merged
}

func appendUnique(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]bool, len(dst))
	out := make([]string, 0, len(dst)+len(src))
	for _, s := range dst {
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range src {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}
