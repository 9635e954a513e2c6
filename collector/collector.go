// Package collector implements pass 1 of the translation pipeline: the
// lexical collector. It scans each file's source line by line, pulling
// "shared class"/"shared struct" definitions (and their method/accessor
// bodies) out of the stream, and retains every other line verbatim so the
// paste-up emitter can splice generated code back at the right spot.
//
// Scanning is deliberately line-oriented, not a full lexer: spec.md §1
// scopes full host-language lexical analysis out of the core, and a
// richer alternative lives, unintegrated, in package tokenizer.
package collector

import (
	"regexp"
	"strings"

	"github.com/podefr/flatjs/types"
)

var (
	reOpener = regexp.MustCompile(`^\s*shared\s+(struct|class)\s+(\w+)\s*(?:extends\s+(\w+))?\s*\{\s*$`)
	reMethod = regexp.MustCompile(`^\s*method\s+\w+\(\s*(self.*)\)\s*\{\s*$`)
	reGet    = regexp.MustCompile(`^\s*get\(\s*(self.*)\)\s*\{\s*$`)
	reSet    = regexp.MustCompile(`^\s*set\(\s*(self.*)\)\s*\{\s*$`)
	reCopy   = regexp.MustCompile(`^\s*copy\(\s*(self.*)\)\s*\{\s*$`)
	reMethodName = regexp.MustCompile(`^\s*method\s+(\w+)\(`)
	reCloseEnd   = regexp.MustCompile(`^\s*\}\s*end\s*$`)
	reScalarProp = regexp.MustCompile(`^\s*(\w+)\s*:\s*(atomic|synchronic)?\s*(\w+)\s*;?\s*$`)
	reArrayProp  = regexp.MustCompile(`^\s*(\w+)\s*:\s*array\(\s*(\w+)\s*\)\s*;?\s*$`)
)

// Collect scans the lines of one file and returns the retained (non-
// annotated) line stream together with the definitions pulled out of it,
// in source order. name becomes the unit's Name and each definition's File,
// which diagnostics report.
func Collect(name string, source string) (*types.FileUnit, error) {
	unit := &types.FileUnit{Name: name}
	lines := strings.Split(source, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]
		m := reOpener.FindStringSubmatch(line)
		if m == nil {
			unit.Lines = append(unit.Lines, line)
			i++
			continue
		}

		kind := types.KindStruct
		if m[1] == "class" {
			kind = types.KindClass
		}
		def := &types.Defn{
			File:        name,
			Line:        i + 1,
			Name:        m[2],
			Kind:        kind,
			BaseName:    m[3],
			OriginIndex: len(unit.Lines),
		}

		next, err := collectBody(name, lines, i+1, def)
		if err != nil {
			return nil, err
		}
		unit.Defns = append(unit.Defns, def)
		i = next
	}

	return unit, nil
}

// collectBody consumes lines[start:] until a "} end" line, populating def
// with properties and methods. It returns the index of the line following
// the terminator.
//
// A method body has no mid-definition closing brace of its own: ordinary
// host code inside a method body may contain braces freely. A method ends
// only when the next method/get/set/copy opener is seen (which flushes it)
// or when "} end" terminates the whole definition.
func collectBody(file string, lines []string, start int, def *types.Defn) (int, error) {
	var current *types.Method

	flush := func() {
		if current != nil {
			def.Methods = append(def.Methods, current)
			switch current.Kind {
			case types.MethodGet:
				def.HasGetMethod = true
			case types.MethodSet:
				def.HasSetMethod = true
			}
			current = nil
		}
	}

	for i := start; i < len(lines); i++ {
		lineNo := i + 1
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if reCloseEnd.MatchString(line) {
			flush()
			return i + 1, nil
		}

		if m := reMethod.FindStringSubmatch(line); m != nil {
			flush()
			nameM := reMethodName.FindStringSubmatch(line)
			name := ""
			if nameM != nil {
				name = nameM[1]
			}
			current = &types.Method{Line: lineNo, Kind: types.MethodVirtual, Name: name, Body: []string{m[1] + ") {"}}
			continue
		}
		if m := reGet.FindStringSubmatch(line); m != nil {
			flush()
			current = &types.Method{Line: lineNo, Kind: types.MethodGet, Body: []string{m[1] + ") {"}}
			continue
		}
		if m := reSet.FindStringSubmatch(line); m != nil {
			flush()
			current = &types.Method{Line: lineNo, Kind: types.MethodSet, Body: []string{m[1] + ") {"}}
			continue
		}
		if m := reCopy.FindStringSubmatch(line); m != nil {
			flush()
			current = &types.Method{Line: lineNo, Kind: types.MethodCopy, Body: []string{m[1] + ") {"}}
			continue
		}

		if current != nil {
			current.Body = append(current.Body, line)
			continue
		}

		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		if m := reArrayProp.FindStringSubmatch(line); m != nil {
			def.Properties = append(def.Properties, &types.Property{
				Line: lineNo, Name: m[1], IsArray: true, TypeName: m[2],
			})
			continue
		}
		if m := reScalarProp.FindStringSubmatch(line); m != nil {
			q := types.QualifierNone
			switch m[2] {
			case "atomic":
				q = types.QualifierAtomic
			case "synchronic":
				q = types.QualifierSynchronic
			}
			def.Properties = append(def.Properties, &types.Property{
				Line: lineNo, Name: m[1], Qualifier: q, TypeName: m[3],
			})
			continue
		}

		return 0, types.SyntaxError(file, lineNo, "unrecognized line inside definition %q: %q", def.Name, trimmed)
	}

	return 0, types.SyntaxError(file, def.Line, "unterminated definition %q: reached end of file before \"} end\"", def.Name)
}
