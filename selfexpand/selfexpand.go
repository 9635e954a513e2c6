// Package selfexpand implements pass 7: rewriting the SELF_<op>_<field>
// and SELF_<field> patterns inside a method body into qualified calls on
// the defining type. It runs before paste-up, over each method's raw body
// lines, and does not validate that the named field actually exists on
// the defining type; the macro expander later leaves a T.f(...) call whose
// field T does not have unchanged (spec.md §4.7).
package selfexpand

import (
	"regexp"
	"strings"

	"github.com/podefr/flatjs/types"
)

var (
	reCall = regexp.MustCompile(`SELF_(set|add|sub|or|compareExchange|loadWhenEqual|loadWhenNotEqual|expectUpdate)_(\w+)\(`)
	reBare = regexp.MustCompile(`SELF_(?:ref_|notify_)?(\w+)\b(\()?`)
)

// ExpandAll rewrites every method body of every registered definition in
// place.
func ExpandAll(ctx *types.Context) {
	for _, d := range ctx.Order {
		for _, m := range d.Methods {
			for i, line := range m.Body {
				m.Body[i] = expandLine(d.Name, line)
			}
		}
	}
}

func expandLine(typeName, line string) string {
	line = replaceWithBoundary(line, reCall, func(groups []string) string {
		return typeName + "." + groups[1] + "_" + groups[2] + "(self, "
	})
	return replaceWithBoundary(line, reBare, func(groups []string) string {
		field, hasCall := groups[1], groups[2] == "("
		if hasCall {
			// A bare SELF_<field>( that reCall didn't already consume is
			// not one of the known mutating ops; leave it untouched so a
			// later, more specific pass (or the macro expander) can
			// decide what to do with it.
			return groups[0]
		}
		return typeName + "." + field + "(self)"
	})
}

// replaceWithBoundary applies re's captures across text like
// ReplaceAllStringFunc, except it rejects any match whose preceding byte
// is itself a word character. Go's RE2 engine has no lookbehind, and
// neither reCall nor reBare has a usable left boundary otherwise: the
// character before "SELF_" and "S" itself are both word characters, so
// "\b" never fires there, and "outerSELF_set_count(" would otherwise have
// its tail rewritten out from under the unrelated identifier "outer...".
func replaceWithBoundary(text string, re *regexp.Regexp, replace func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if start < last || (start > 0 && isWordByte(text[start-1])) {
			continue
		}

		groups := make([]string, len(loc)/2)
		for i := range groups {
			gs, ge := loc[2*i], loc[2*i+1]
			if gs >= 0 {
				groups[i] = text[gs:ge]
			}
		}

		b.WriteString(text[last:start])
		b.WriteString(replace(groups))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
