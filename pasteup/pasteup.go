// Package pasteup implements pass 8: splicing each file's emitted records
// (constants, method implementations, virtual dispatchers, constructor
// helpers) back into its retained non-annotated line stream at the
// definition's recorded origin.
//
// The text this pass produces is plain scripting-language source; the
// macro expander (package macro) runs over it next, so the T.f(self)
// accessor calls that self-accessor expansion left in method bodies, and
// the patterns written directly by the programmer elsewhere in the file,
// are expanded in that one later pass.
package pasteup

import (
	"fmt"
	"strings"

	"github.com/podefr/flatjs/types"
)

// Emit produces the pasted-up source text for one file: retained lines
// interleaved with each definition's emitted code at its origin index.
func Emit(unit *types.FileUnit) string {
	var b strings.Builder

	byOrigin := make(map[int][]*types.Defn)
	for _, d := range unit.Defns {
		byOrigin[d.OriginIndex] = append(byOrigin[d.OriginIndex], d)
	}

	writeDefnsAt := func(origin int) {
		for _, d := range byOrigin[origin] {
			b.WriteString(emitDefn(d))
		}
	}

	for i, line := range unit.Lines {
		writeDefnsAt(i)
		b.WriteString(line)
		b.WriteString("\n")
	}
	// Definitions whose origin is at (or past) the end of the retained
	// stream — e.g. a type declared as the very last thing in the file.
	writeDefnsAt(len(unit.Lines))

	return b.String()
}

func emitDefn(d *types.Defn) string {
	var b strings.Builder

	fmt.Fprintf(&b, "var %s = {\n", d.Name)
	fmt.Fprintf(&b, "  NAME: %q,\n", d.Name)
	fmt.Fprintf(&b, "  SIZE: %d,\n", d.Size)
	fmt.Fprintf(&b, "  ALIGN: %d,\n", d.Align)
	if d.IsClass() {
		fmt.Fprintf(&b, "  CLSID: %d,\n", d.ClassID)
	}

	for _, m := range d.Methods {
		emitMethod(&b, m)
	}

	if d.IsClass() {
		for _, name := range d.VTableOrder {
			emitDispatcher(&b, d, d.VTable[name])
		}
		emitInitInstance(&b, d)
	}

	b.WriteString("};\n")

	if d.IsClass() {
		fmt.Fprintf(&b, "Parlang._idToType[%d] = %s;\n", d.ClassID, d.Name)
	}

	return b.String()
}

func emitMethod(b *strings.Builder, m *types.Method) {
	key := methodKey(m)
	fmt.Fprintf(b, "  %s: function(%s\n", key, m.Body[0])
	body := trimTrailingBlank(m.Body[1:])
	if len(body) == 0 {
		b.WriteString("  },\n")
		return
	}
	// The last body line is the method's own closing brace, which the
	// collector keeps as an ordinary body line.
	for _, line := range body[:len(body)-1] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(body[len(body)-1])
	b.WriteString(",\n")
}

func methodKey(m *types.Method) string {
	switch m.Kind {
	case types.MethodGet:
		return "_get_impl"
	case types.MethodSet:
		return "_set_impl"
	case types.MethodCopy:
		return "_copy_impl"
	default:
		if m.Name == "init" {
			return "init"
		}
		return m.Name + "_impl"
	}
}

func emitDispatcher(b *strings.Builder, d *types.Defn, entry *types.VTableEntry) {
	fmt.Fprintf(b, "  %s: function(self) {\n", entry.MethodName)
	b.WriteString("    switch (_mem_int32[self >> 2]) {\n")
	for _, impl := range entry.ImplOrder {
		for _, id := range entry.Impls[impl] {
			fmt.Fprintf(b, "      case %d:\n", id)
		}
		fmt.Fprintf(b, "        return %s.apply(null, arguments);\n", impl)
	}
	b.WriteString("      default:\n")
	if entry.HasDefault {
		fmt.Fprintf(b, "        return %s.apply(null, arguments);\n", entry.Default)
	} else {
		fmt.Fprintf(b, "        throw new Error(%q);\n", "unknown class id for virtual method "+entry.MethodName)
	}
	b.WriteString("    }\n")
	b.WriteString("  },\n")
}

func emitInitInstance(b *strings.Builder, d *types.Defn) {
	fmt.Fprintf(b, "  initInstance: function(self) {\n")
	fmt.Fprintf(b, "    _mem_int32[self >> 2] = %d;\n", d.ClassID)
	b.WriteString("    return self;\n")
	b.WriteString("  },\n")
}

// trimTrailingBlank drops trailing blank lines from a method body slice,
// per spec.md §4.8 ("remainder with trailing blank lines trimmed").
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}
