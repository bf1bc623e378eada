package text

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		c := New(nil)
		if c.config == nil {
			t.Fatal("expected non-nil config")
		}
		if !c.config.StripScripts {
			t.Error("expected StripScripts to be true by default")
		}
		if c.config.Separator != " " {
			t.Errorf("expected single space separator, got %q", c.config.Separator)
		}
	})

	t.Run("custom config is used", func(t *testing.T) {
		c := New(&Config{Separator: "|"})
		if c.config.Separator != "|" {
			t.Errorf("expected custom separator, got %q", c.config.Separator)
		}
	})
}

func TestName(t *testing.T) {
	if got := New(nil).Name(); got != "text" {
		t.Errorf("Name() = %q, want %q", got, "text")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		config *Config
		want   string
	}{
		{
			name: "nested inline tags",
			html: `<p>Hello <b>World</b></p>`,
			want: "Hello World",
		},
		{
			name: "entity decoding",
			html: `<div>A &amp; B</div>`,
			want: "A & B",
		},
		{
			name: "numeric entities",
			html: `<span>&#8369;1,299 &ndash; sale</span>`,
			want: "₱1,299 – sale",
		},
		{
			name: "block elements are separated",
			html: `<ul><li>One</li><li>Two</li></ul><p>Three</p>`,
			want: "One Two Three",
		},
		{
			name: "adjacent text nodes get a separator",
			html: `foo<b>bar</b>`,
			want: "foo bar",
		},
		{
			name: "whitespace runs collapse",
			html: "<p>  lots\n\tof   \r\n space&nbsp;&nbsp;here </p>",
			want: "lots of space here",
		},
		{
			name: "scripts and styles are dropped",
			html: `<style>p{color:red}</style><p>Shown</p><script>alert(1)</script>`,
			want: "Shown",
		},
		{
			name: "comments are dropped",
			html: `<p>Before<!-- hidden note -->After</p>`,
			want: "Before After",
		},
		{
			name: "plain text passes through",
			html: "  already   plain text ",
			want: "already plain text",
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
		{
			name: "markup without text",
			html: `<div><br/><img src="x.png"></div>`,
			want: "",
		},
		{
			name:   "custom separator",
			html:   `<p>a</p><p>b</p>`,
			config: &Config{Separator: "\n", CollapseWhitespace: true},
			want:   "a\nb",
		},
		{
			name:   "hidden elements removed when configured",
			html:   `<div hidden>secret</div><p style="display: none">gone</p><p>Visible</p>`,
			config: PresetStrict(),
			want:   "Visible",
		},
		{
			name: "hidden elements kept by default",
			html: `<div hidden>secret</div><p>Visible</p>`,
			want: "secret Visible",
		},
		{
			name:   "remove selectors honour keep selectors",
			html:   `<div class="promo">Ad</div><div class="promo keep">Kept</div><p>Body</p>`,
			config: &Config{Separator: " ", CollapseWhitespace: true, RemoveSelectors: []string{".promo"}, KeepSelectors: []string{".keep"}},
			want:   "Kept Body",
		},
		{
			name:   "noscript kept unless stripped",
			html:   `<noscript>Enable JS</noscript><p>Body</p>`,
			config: PresetStrict(),
			want:   "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.config).Clean(tt.html)
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		`<p>Hello <b>World</b></p>`,
		`<div>A &amp; B</div>`,
		`<table><tr><td>Price</td><td>$19.99</td></tr></table>`,
		"<h1>Title</h1>\n<p>First   paragraph.</p><p>Second &quot;quoted&quot;.</p>",
		`plain`,
	}

	c := New(nil)
	for _, in := range inputs {
		once, _ := c.Clean(in)
		twice, _ := c.Clean(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClean_Deterministic(t *testing.T) {
	c := New(nil)
	in := `<div><p>Same</p><p>input</p></div>`
	first, _ := c.Clean(in)
	for i := 0; i < 5; i++ {
		if got, _ := c.Clean(in); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestClean_NormalizesUnicode(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9 under NFC.
	got, _ := New(nil).Clean("<p>Caf\u0065\u0301</p>")
	if got != "Caf\u00e9" {
		t.Errorf("expected NFC output, got %q", got)
	}
}

func TestCleanWithStats(t *testing.T) {
	c := New(PresetStrict())
	html := `<div hidden>x</div><p>Hello <b>World</b></p>`
	result := c.CleanWithStats(html)

	if result.Content != "Hello World" {
		t.Errorf("Content = %q", result.Content)
	}
	if result.Stats.InputBytes != len(html) {
		t.Errorf("InputBytes = %d, want %d", result.Stats.InputBytes, len(html))
	}
	if result.Stats.OutputBytes != len("Hello World") {
		t.Errorf("OutputBytes = %d", result.Stats.OutputBytes)
	}
	if result.Stats.TextNodes != 2 {
		t.Errorf("TextNodes = %d, want 2", result.Stats.TextNodes)
	}
	if result.Stats.HiddenElementRemovals != 1 {
		t.Errorf("HiddenElementRemovals = %d, want 1", result.Stats.HiddenElementRemovals)
	}
	if !result.Stats.Parsed {
		t.Error("expected Parsed to be true")
	}
	if result.HasWarnings() {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestCleanWithStats_PlainTextSkipsParser(t *testing.T) {
	result := New(nil).CleanWithStats("no markup here")
	if result.Stats.Parsed {
		t.Error("expected parser to be skipped for plain text")
	}
	if result.Content != "no markup here" {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestStripTags(t *testing.T) {
	got := collapseWhitespace(stripTags(`<p>a &lt; b</p><br>c`))
	if got != "a < b c" {
		t.Errorf("stripTags() = %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Error("tags should be removed")
	}
}
