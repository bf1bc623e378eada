package cleaner

import (
	"fmt"
	"strings"
)

// ChainSeparator joins cleaner names in a chain such as "sanitize,text".
const ChainSeparator = ","

// Chain runs cleaners in order, each receiving the previous output.
type Chain []Cleaner

// NewChain returns a Chain of the given cleaners.
func NewChain(cleaners ...Cleaner) Chain {
	return Chain(cleaners)
}

// Clean feeds html through every cleaner. The first error stops the chain.
func (c Chain) Clean(html string) (string, error) {
	for _, cl := range c {
		var err error
		if html, err = cl.Clean(html); err != nil {
			return "", fmt.Errorf("%s: %w", cl.Name(), err)
		}
	}
	return html, nil
}

// Name returns the member names in the form New accepts.
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, cl := range c {
		names[i] = cl.Name()
	}
	return strings.Join(names, ChainSeparator)
}

func newChain(list string, build func(string) (Cleaner, error)) (Chain, error) {
	parts := strings.Split(list, ChainSeparator)
	members := make([]Cleaner, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty cleaner name in %q", list)
		}
		cl, err := build(part)
		if err != nil {
			return nil, err
		}
		members = append(members, cl)
	}
	return NewChain(members...), nil
}
