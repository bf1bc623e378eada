package cleaner

import (
	"github.com/k3a/html2text"
)

// HTML2TextCleaner converts HTML with k3a/html2text, which keeps link
// targets and line structure before whitespace is collapsed.
type HTML2TextCleaner struct{}

// NewHTML2Text creates a new html2text cleaner.
func NewHTML2Text() *HTML2TextCleaner {
	return &HTML2TextCleaner{}
}

// Clean converts content to text.
func (c *HTML2TextCleaner) Clean(content string) (string, error) {
	return collapse(html2text.HTML2Text(content)), nil
}

// Name returns the cleaner type.
func (c *HTML2TextCleaner) Name() string {
	return "html2text"
}
