package cleaner

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// SanitizeCleaner strips every tag with bluemonday's strict policy.
// bluemonday re-escapes text, so entities are decoded afterwards.
type SanitizeCleaner struct {
	policy *bluemonday.Policy
}

// NewSanitize creates a cleaner backed by bluemonday.StripTagsPolicy.
func NewSanitize() *SanitizeCleaner {
	policy := bluemonday.StripTagsPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return &SanitizeCleaner{policy: policy}
}

// Clean removes all markup and returns whitespace-collapsed text.
func (c *SanitizeCleaner) Clean(content string) (string, error) {
	return collapse(html.UnescapeString(c.policy.Sanitize(content))), nil
}

// Name returns the cleaner type.
func (c *SanitizeCleaner) Name() string {
	return "sanitize"
}
