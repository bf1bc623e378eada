package convert

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Differences returns a word-level diff of a against b with no context:
// removed words are prefixed with "-", added words with "+", all joined by
// single spaces. Identical inputs yield "".
func Differences(a, b string) string {
	wa, wb := strings.Fields(a), strings.Fields(b)
	m := difflib.NewMatcher(wa, wb)

	var out []string
	for _, group := range m.GetGroupedOpCodes(0) {
		for _, op := range group {
			if op.Tag == 'r' || op.Tag == 'd' {
				for _, w := range wa[op.I1:op.I2] {
					out = append(out, "-"+w)
				}
			}
			if op.Tag == 'r' || op.Tag == 'i' {
				for _, w := range wb[op.J1:op.J2] {
					out = append(out, "+"+w)
				}
			}
		}
	}
	return strings.Join(out, " ")
}
