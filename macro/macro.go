// Package macro implements pass 9: the global macro expander. It rewrites
// field accessors (T.f(...), T.f.set(...), T.f.ref(...)), array accessors
// (T.Array.get(...), T.Array.set(...), T.Array.ref(...), with an optional
// _<field> suffix for arrays of structs), and allocator expressions
// (new T, new T.Array(n)) into inline indexed reads/writes of the flat
// buffer and calls to the external allocator.
//
// The three pattern families run as three sequential passes over the whole
// text — accessors, then array accessors, then allocators — and every
// captured argument or count expression is itself run back through the
// full expander before being spliced into the emitted form, so nested
// field accesses expand correctly (spec.md §4.9, "Composition").
//
// Arity mismatches are the one non-fatal failure mode in this pipeline
// (spec.md §7): the expander records a Diagnostic and leaves the matched
// text unchanged, advancing past the matched prefix.
package macro

import (
	"fmt"
	"math/bits"
	"regexp"
	"strings"

	"github.com/podefr/flatjs/types"
)

var (
	reDotPair    = regexp.MustCompile(`[A-Za-z_]\w*\.[A-Za-z_]\w*`)
	reDotPairCap = regexp.MustCompile(`^([A-Za-z_]\w*)\.([A-Za-z_]\w*)`)
	reArraySuf   = regexp.MustCompile(`^\.(get|set|ref)(?:_(\w+))?\(`)
	reNew        = regexp.MustCompile(`\bnew\s+([A-Za-z_]\w*)`)
)

// expander carries the read-only translation context and the mutable
// diagnostic log for one Expand call.
type expander struct {
	ctx   *types.Context
	diags []*types.Diagnostic
}

// Expand runs the macro expander over one file's pasted-up text.
func Expand(ctx *types.Context, text string) (string, []*types.Diagnostic) {
	e := &expander{ctx: ctx}
	out := e.expand(text)
	return out, e.diags
}

func (e *expander) expand(text string) string {
	text = e.expandAccessors(text)
	text = e.expandArrayAccessors(text)
	text = e.expandAllocators(text)
	return text
}

func (e *expander) warn(format string, args ...any) {
	e.diags = append(e.diags, &types.Diagnostic{Category: types.CategorySyntax, Message: fmt.Sprintf(format, args...)})
}

// --- accessor macro: T.f(...), T.f.set(...), T.f.ref(...) ---

func (e *expander) expandAccessors(text string) string {
	var b strings.Builder
	cur := 0
	for cur < len(text) {
		rel := reDotPair.FindStringIndex(text[cur:])
		if rel == nil {
			b.WriteString(text[cur:])
			break
		}
		start, end := cur+rel[0], cur+rel[1]
		b.WriteString(text[cur:start])

		sub := reDotPairCap.FindStringSubmatch(text[start:end])
		typeName, fieldName := sub[1], sub[2]

		if fieldName == "Array" {
			// Array accessors are a separate pass; leave untouched here.
			b.WriteString(text[start:end])
			cur = end
			continue
		}

		def, known := e.ctx.KnownTypes[typeName]
		if !known {
			b.WriteString(text[start:end])
			cur = end
			continue
		}

		rest := text[end:]
		switch {
		case strings.HasPrefix(rest, ".set("):
			written, next, matched := e.emitAccessorCall(text, end+len(".set"), def, fieldName, true, false)
			if !matched {
				b.WriteString(text[start:end])
				cur = end
				continue
			}
			b.WriteString(written)
			cur = next
		case strings.HasPrefix(rest, ".ref("):
			written, next, matched := e.emitAccessorCall(text, end+len(".ref"), def, fieldName, false, true)
			if !matched {
				b.WriteString(text[start:end])
				cur = end
				continue
			}
			b.WriteString(written)
			cur = next
		case strings.HasPrefix(rest, "("):
			written, next, matched := e.emitAccessorCall(text, end, def, fieldName, false, false)
			if !matched {
				b.WriteString(text[start:end])
				cur = end
				continue
			}
			b.WriteString(written)
			cur = next
		default:
			b.WriteString(text[start:end])
			cur = end
		}
	}
	return b.String()
}

// emitAccessorCall parses the argument list opening at text[openParen] and
// emits either a ref expression, a load, or a store, depending on isSet/isRef.
func (e *expander) emitAccessorCall(text string, openParen int, def *types.Defn, fieldName string, isSet, isRef bool) (string, int, bool) {
	field := def.Field(fieldName)
	if field == nil {
		// Field doesn't exist on this type: not a macro occurrence at all.
		return "", 0, false
	}

	wantArgs := 1
	if isSet {
		wantArgs = 2
	}
	args, after, ok := splitArgs(text, openParen)
	if !ok || len(args) != wantArgs {
		e.warn("accessor %s.%s expects %d argument(s), got malformed or mismatched arguments", def.Name, fieldName, wantArgs)
		return "", 0, false
	}

	obj := e.expand(args[0])
	ref := fmt.Sprintf("(%s+%d)", obj, field.Offset)

	if isRef {
		return ref, after, true
	}
	if isSet {
		rhs := e.expand(args[1])
		out, err := e.loadFromRef(ref, field.Type, true, rhs, def, fieldName)
		if err != nil {
			e.warn("%s", err)
			return "", 0, false
		}
		return out, after, true
	}
	out, err := e.loadFromRef(ref, field.Type, false, "", def, fieldName)
	if err != nil {
		e.warn("%s", err)
		return "", 0, false
	}
	return out, after, true
}

// loadFromRef implements spec.md §4.9's loadFromRef routine: a primitive
// or class (pointer) field reads/writes a typed view at ref>>log2(size); a
// struct field delegates to its _get_impl/_set_impl accessor method.
func (e *expander) loadFromRef(ref string, t types.TypeRef, isSet bool, rhs string, owner *types.Defn, fieldName string) (string, error) {
	if t.IsStruct() {
		if isSet {
			if !t.User.HasSetMethod {
				return "", fmt.Errorf("struct %q has no set accessor, required to assign field %q of %q", t.User.Name, fieldName, owner.Name)
			}
			return fmt.Sprintf("(%s._set_impl(%s, %s))", t.User.Name, ref, rhs), nil
		}
		if !t.User.HasGetMethod {
			return "", fmt.Errorf("struct %q has no get accessor, required to read field %q of %q", t.User.Name, fieldName, owner.Name)
		}
		return fmt.Sprintf("(%s._get_impl(%s))", t.User.Name, ref), nil
	}

	view, shift, err := viewAndShift(t)
	if err != nil {
		return "", err
	}
	if isSet {
		return fmt.Sprintf("(%s[%s >> %d] = %s)", view, ref, shift, rhs), nil
	}
	return fmt.Sprintf("(%s[%s >> %d])", view, ref, shift), nil
}

// viewAndShift resolves the typed-view symbol and the log2 shift for a
// primitive or class-pointer field.
func viewAndShift(t types.TypeRef) (string, int, error) {
	if t.IsClass() {
		s, err := log2(4)
		return "_mem_int32", s, err
	}
	if t.Prim == nil {
		return "", 0, fmt.Errorf("internal: field type is neither primitive, class, nor struct")
	}
	s, err := log2(t.Prim.Size)
	return t.Prim.MemSymbol(), s, err
}

// log2 resolves spec.md §9(a): throws for x <= 0, otherwise returns the
// floor log base 2 of x. The original helper this is modeled on is noted
// as referencing a variable before initialization on its error path; this
// implementation has no such bug.
func log2(x int) (int, error) {
	if x <= 0 {
		return 0, fmt.Errorf("log2: argument must be positive, got %d", x)
	}
	return bits.Len(uint(x)) - 1, nil
}

// --- array accessor macro: T.Array.get(...), .set(...), .ref(...), with
// an optional _<field> suffix when T is a struct. ---

func (e *expander) expandArrayAccessors(text string) string {
	var b strings.Builder
	cur := 0
	for cur < len(text) {
		rel := reDotPair.FindStringIndex(text[cur:])
		if rel == nil {
			b.WriteString(text[cur:])
			break
		}
		start, end := cur+rel[0], cur+rel[1]
		b.WriteString(text[cur:start])

		sub := reDotPairCap.FindStringSubmatch(text[start:end])
		typeName, second := sub[1], sub[2]
		if second != "Array" {
			b.WriteString(text[start:end])
			cur = end
			continue
		}

		target := e.ctx.Lookup(typeName)
		if !target.IsBound() {
			b.WriteString(text[start:end])
			cur = end
			continue
		}

		sufM := reArraySuf.FindStringSubmatchIndex(text[end:])
		if sufM == nil {
			b.WriteString(text[start:end])
			cur = end
			continue
		}
		op := text[end+sufM[2] : end+sufM[3]]
		field := ""
		if sufM[4] != -1 {
			field = text[end+sufM[4] : end+sufM[5]]
		}
		openParen := end + sufM[1] - 1 // position of '(' ending the suffix match

		written, next, matched := e.emitArrayAccessorCall(text, openParen, target, field, op)
		if !matched {
			b.WriteString(text[start:end])
			cur = end
			continue
		}
		b.WriteString(written)
		cur = next
	}
	return b.String()
}

// emitArrayAccessorCall operates on a resolved types.TypeRef rather than
// requiring a *types.Defn, so arrays of primitives (e.g. int32.Array) are
// expanded just like arrays of a declared class or struct (spec.md §8
// scenario 6).
func (e *expander) emitArrayAccessorCall(text string, openParen int, elemType types.TypeRef, fieldName, op string) (string, int, bool) {
	wantArgs := 2
	if op == "set" {
		wantArgs = 3
	}
	args, after, ok := splitArgs(text, openParen)
	if !ok || len(args) != wantArgs {
		e.warn("array accessor %s.Array.%s expects %d argument(s), got malformed or mismatched arguments", elemType.Name(), op, wantArgs)
		return "", 0, false
	}

	arr := e.expand(args[0])
	idx := e.expand(args[1])
	stride := elemType.Size()
	if elemType.IsClass() {
		stride = elemType.User.Size
	}
	ref := fmt.Sprintf("(%s+%d*%s)", arr, stride, idx)

	target := elemType

	if fieldName != "" {
		if !elemType.IsStruct() {
			e.warn("array accessor %s.Array.%s_%s requires %s to be a struct", elemType.Name(), op, fieldName, elemType.Name())
			return "", 0, false
		}
		fe := elemType.User.Field(fieldName)
		if fe == nil {
			e.warn("array accessor %s.Array.%s_%s: %q has no field %q", elemType.Name(), op, fieldName, elemType.Name(), fieldName)
			return "", 0, false
		}
		ref = fmt.Sprintf("(%s+%d)", ref, fe.Offset)
		target = fe.Type
	}

	switch op {
	case "ref":
		return ref, after, true
	case "set":
		rhs := e.expand(args[2])
		out, err := e.loadFromRef(ref, target, true, rhs, elemType.User, "Array."+fieldName)
		if err != nil {
			e.warn("%s", err)
			return "", 0, false
		}
		return out, after, true
	default: // "get"
		out, err := e.loadFromRef(ref, target, false, "", elemType.User, "Array."+fieldName)
		if err != nil {
			e.warn("%s", err)
			return "", 0, false
		}
		return out, after, true
	}
}

// --- allocator macro: new T, new T.Array(n) ---

func (e *expander) expandAllocators(text string) string {
	var b strings.Builder
	cur := 0
	for cur < len(text) {
		loc := reNew.FindStringSubmatchIndex(text[cur:])
		if loc == nil {
			b.WriteString(text[cur:])
			break
		}
		matchStart, matchEnd := cur+loc[0], cur+loc[1]
		nameStart, nameEnd := cur+loc[2], cur+loc[3]
		b.WriteString(text[cur:matchStart])
		typeName := text[nameStart:nameEnd]

		target := e.ctx.Lookup(typeName)
		if !target.IsBound() {
			b.WriteString(text[matchStart:matchEnd])
			cur = matchEnd
			continue
		}

		rest := text[matchEnd:]
		if strings.HasPrefix(rest, ".Array(") {
			openParen := matchEnd + len(".Array") // index of '('
			args, after, ok := splitArgs(text, openParen)
			if !ok || len(args) != 1 {
				e.warn("new %s.Array(...) expects exactly 1 argument", typeName)
				b.WriteString(text[matchStart:openParen])
				cur = openParen
				continue
			}
			count := e.expand(args[0])
			size, align := target.Size(), target.Align()
			if target.IsClass() {
				size, align = target.User.Size, target.User.Align
			}
			b.WriteString(fmt.Sprintf("(Parlang.alloc(%d * %s, %d))", size, count, align))
			cur = after
			continue
		}

		if !target.IsClass() && !target.IsStruct() {
			// Bare "new T" constructs an instance via initInstance, which
			// only classes and structs have; a primitive has nothing to
			// construct outside of an array of it.
			b.WriteString(text[matchStart:matchEnd])
			cur = matchEnd
			continue
		}
		b.WriteString(fmt.Sprintf("(%s.initInstance(Parlang.alloc(%d, %d)))", target.Name(), target.User.Size, target.User.Align))
		cur = matchEnd
	}
	return b.String()
}
