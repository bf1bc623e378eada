package text

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// Cleaner extracts plain text from HTML fragments.
// It implements the cleaner.Cleaner interface and is safe for concurrent use.
type Cleaner struct {
	config *Config
}

// New creates a new Cleaner with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Cleaner{config: config}
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "text"
}

// Config returns the active configuration.
func (c *Cleaner) Config() *Config {
	return c.config
}

// Clean converts an HTML fragment into plain text.
// It never fails: unparsable input degrades to a tag-stripped copy.
func (c *Cleaner) Clean(html string) (string, error) {
	return c.CleanWithStats(html).Content, nil
}

// CleanWithStats performs cleaning and returns detailed stats.
func (c *Cleaner) CleanWithStats(html string) *Result {
	startTime := time.Now()
	result := &Result{Stats: NewStats()}
	result.Stats.InputBytes = len(html)
	defer func() {
		result.Stats.OutputBytes = len(result.Content)
		result.Stats.TotalDuration = time.Since(startTime)
	}()

	if strings.TrimSpace(html) == "" {
		return result
	}

	// Plain text needs no parser; the output is identical either way.
	if !strings.ContainsAny(html, "<&") {
		result.Content = c.finish([]string{html}, result)
		return result
	}

	parseStart := time.Now()
	root, err := nethtml.ParseWithOptions(strings.NewReader(html), nethtml.ParseOptionEnableScripting(false))
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		result.AddWarning("parse", "HTML parse failed, stripping tags by pattern", err.Error())
		result.Content = c.finish([]string{stripTags(html)}, result)
		return result
	}
	result.Stats.Parsed = true

	doc := goquery.NewDocumentFromNode(root)
	c.transform(doc, result)
	result.Content = c.finish(c.collect(doc), result)
	return result
}

// transform removes hidden and selector-matched elements before text collection.
func (c *Cleaner) transform(doc *goquery.Document, result *Result) {
	for _, selector := range c.config.RemoveSelectors {
		selection := doc.Find(selector)
		if selection.Length() == 0 {
			continue
		}
		result.Stats.RecordSelectorMatch(selector, selection.Length())
		selection.Each(func(_ int, s *goquery.Selection) {
			if !c.shouldKeep(s) {
				result.Stats.RecordRemoval(goquery.NodeName(s))
				s.Remove()
			}
		})
	}

	if c.config.StripHiddenElements {
		c.removeHiddenElements(doc, result)
	}
}

// shouldKeep checks if an element matches any keep selectors.
func (c *Cleaner) shouldKeep(s *goquery.Selection) bool {
	for _, selector := range c.config.KeepSelectors {
		if s.Is(selector) {
			return true
		}
	}
	return false
}

// removeHiddenElements removes elements a browser would not render.
func (c *Cleaner) removeHiddenElements(doc *goquery.Document, result *Result) {
	remove := func(_ int, s *goquery.Selection) {
		if c.shouldKeep(s) {
			return
		}
		result.Stats.HiddenElementRemovals++
		result.Stats.RecordRemoval(goquery.NodeName(s))
		s.Remove()
	}

	doc.Find("[hidden]").Each(remove)
	doc.Find("[aria-hidden='true']").Each(remove)
	doc.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style := strings.ToLower(strings.ReplaceAll(s.AttrOr("style", ""), " ", ""))
		return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
	}).Each(remove)
}

// finish joins the collected text parts and applies whitespace and Unicode
// normalisation.
func (c *Cleaner) finish(parts []string, result *Result) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if c.config.CollapseWhitespace {
			p = collapseWhitespace(p)
		} else {
			p = strings.TrimSpace(p)
		}
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	result.Stats.TextNodes = len(kept)

	out := strings.Join(kept, c.config.Separator)
	if c.config.NormalizeUnicode {
		out = normalize(out)
	}
	return out
}
