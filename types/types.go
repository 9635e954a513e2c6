// Package types holds the data model shared by every pass of the
// translator: primitives, declared properties and methods, the tagged
// class/struct definition record, field maps, virtual-table entries, and
// the translation context threaded through the pipeline by pointer.
//
// Nothing in this package performs I/O or touches source text; it is pure
// data plus the small helpers (TypeRef.Size, TypeRef.Align, ...) that every
// later pass needs and would otherwise duplicate.
package types

// Qualifier is the access qualifier written after a scalar property's type.
type Qualifier int

const (
	QualifierNone Qualifier = iota
	QualifierAtomic
	QualifierSynchronic
)

func (q Qualifier) String() string {
	switch q {
	case QualifierAtomic:
		return "atomic"
	case QualifierSynchronic:
		return "synchronic"
	default:
		return ""
	}
}

// Kind discriminates a Defn between class and struct.
type Kind int

const (
	KindClass Kind = iota
	KindStruct
)

func (k Kind) String() string {
	if k == KindClass {
		return "class"
	}
	return "struct"
}

// Primitive is an immutable descriptor for one of the dialect's scalar
// types. The zero value is never used; primitives are looked up from
// Context.Primitives, which is seeded once per translation.
type Primitive struct {
	Name   string
	Size   int
	Align  int
	Atomic bool
}

// MemSymbol is the typed-view array this primitive is read and written
// through in emitted code, e.g. "_mem_int32".
func (p *Primitive) MemSymbol() string {
	return "_mem_" + p.Name
}

// TypeRef is a resolved reference to either a primitive or a user-defined
// type. Exactly one of Prim/User is non-nil once resolution has run; before
// that, a Property's TypeRef is the zero value and TypeName carries the
// as-written name.
type TypeRef struct {
	Prim *Primitive
	User *Defn
}

func (t TypeRef) IsBound() bool      { return t.Prim != nil || t.User != nil }
func (t TypeRef) IsPrimitive() bool  { return t.Prim != nil }
func (t TypeRef) IsClass() bool      { return t.User != nil && t.User.Kind == KindClass }
func (t TypeRef) IsStruct() bool     { return t.User != nil && t.User.Kind == KindStruct }

func (t TypeRef) Name() string {
	if t.Prim != nil {
		return t.Prim.Name
	}
	if t.User != nil {
		return t.User.Name
	}
	return ""
}

// Size returns the byte size of the referenced type. Classes are always
// referenced through a 4-byte pointer slot, never inlined by value.
func (t TypeRef) Size() int {
	switch {
	case t.Prim != nil:
		return t.Prim.Size
	case t.User != nil && t.User.Kind == KindClass:
		return 4
	case t.User != nil:
		return t.User.Size
	default:
		return 0
	}
}

// Align returns the alignment of the referenced type, under the same
// class-is-a-pointer rule as Size.
func (t TypeRef) Align() int {
	switch {
	case t.Prim != nil:
		return t.Prim.Align
	case t.User != nil && t.User.Kind == KindClass:
		return 4
	case t.User != nil:
		return t.User.Align
	default:
		return 0
	}
}

// Property is one declared field of a class or struct.
type Property struct {
	Line      int
	Name      string
	Qualifier Qualifier
	IsArray   bool
	TypeName  string // as written in source, before resolution
	Type      TypeRef
}

// MethodKind distinguishes the four shapes a method body can take.
type MethodKind int

const (
	MethodVirtual MethodKind = iota
	MethodGet
	MethodSet
	MethodCopy
)

func (k MethodKind) String() string {
	switch k {
	case MethodGet:
		return "get"
	case MethodSet:
		return "set"
	case MethodCopy:
		return "copy"
	default:
		return "virtual"
	}
}

// Method is one declared method body. Body[0] holds the parameter-list
// fragment starting with the self parameter; Name is empty for the
// accessor kinds (get/set/copy), which have no user-chosen name.
type Method struct {
	Line int
	Kind MethodKind
	Name string
	Body []string
}

// ImplSymbol is the textual "Class.method_impl" name used as a vtable key
// and as the emitted function identifier.
func (m *Method) ImplSymbol(owner *Defn) string {
	switch m.Kind {
	case MethodGet:
		return owner.Name + "._get_impl"
	case MethodSet:
		return owner.Name + "._set_impl"
	case MethodCopy:
		return owner.Name + "._copy_impl"
	default:
		return owner.Name + "." + m.Name + "_impl"
	}
}

// FieldMapEntry is one entry of a layout's field map: either a leaf slot
// (primitive or class pointer) or an aggregated struct field, plus the
// composite "p_x" entries biased into the owning layout for each leaf of
// an embedded struct field.
type FieldMapEntry struct {
	Name   string
	Expand bool
	Offset int
	Type   TypeRef
}

// VTableEntry is the dispatch table for one virtual method name, built by
// the vtable pass and consumed by the paste-up emitter.
type VTableEntry struct {
	MethodName string
	// Impls maps an implementation symbol to the class identifiers that
	// must dispatch to it.
	Impls map[string][]uint32
	// ImplOrder preserves first-seen order of implementation symbols, for
	// deterministic emission.
	ImplOrder []string
	Default   string
	HasDefault bool
}

// Defn is a user-declared type: a class or a struct. Class-only and
// struct-only fields are left zero on the other kind, following the flat
// "common fields plus optional arms" shape used throughout this codebase
// for tagged records (see Property/Method above).
type Defn struct {
	File string
	Line int
	Name string
	Kind Kind

	Properties []*Property
	Methods    []*Method

	// OriginIndex is the insertion point into the defining file's
	// retained (non-annotated) line stream.
	OriginIndex int

	// Populated by the layout pass.
	LaidOut bool
	Size    int
	Align   int
	// FieldMap is keyed by field name (including composite "p_x" names).
	FieldMap map[string]*FieldMapEntry
	// FieldOrder preserves first-insertion order for deterministic
	// iteration (Go map iteration order is not stable).
	FieldOrder []string

	// Transient, used only during cycle detection (resolve.CheckCycles).
	Live    bool
	Checked bool

	// Class-only.
	BaseName   string
	BaseRef    *Defn
	DottedName string
	ClassID    uint32
	HasClassID bool
	Subclasses []*Defn
	VTable     map[string]*VTableEntry
	VTableOrder []string

	// Struct-only.
	HasGetMethod bool
	HasSetMethod bool
}

func (d *Defn) IsClass() bool  { return d.Kind == KindClass }
func (d *Defn) IsStruct() bool { return d.Kind == KindStruct }

// Field looks up a field map entry by name, returning nil if absent.
func (d *Defn) Field(name string) *FieldMapEntry {
	if d.FieldMap == nil {
		return nil
	}
	return d.FieldMap[name]
}

// AddField appends a new field map entry, preserving insertion order.
func (d *Defn) AddField(name string, e *FieldMapEntry) {
	if d.FieldMap == nil {
		d.FieldMap = make(map[string]*FieldMapEntry)
	}
	if _, exists := d.FieldMap[name]; !exists {
		d.FieldOrder = append(d.FieldOrder, name)
	}
	d.FieldMap[name] = e
}

// FileUnit is one input's retained, non-annotated line stream together
// with the definitions the collector pulled out of it, in source order.
type FileUnit struct {
	Name  string
	Lines []string
	Defns []*Defn
}

// Context is the single mutable object threaded by pointer through every
// pass. It replaces any package-level global state: the type registry, the
// class-identifier registry, and the per-file retained streams all live
// here, written only during their designated pass and read-only afterward.
type Context struct {
	Primitives map[string]*Primitive
	KnownTypes map[string]*Defn
	// Order is KnownTypes in first-declared order, used by passes that
	// must iterate deterministically.
	Order []*Defn
	Files []*FileUnit
	// UsedClassIDs detects collisions: class identifier -> dotted name of
	// the class that first claimed it.
	UsedClassIDs map[uint32]string
}

// NewContext builds a fresh context seeded with the eight dialect
// primitives. Never share a Context across translations.
func NewContext() *Context {
	ctx := &Context{
		Primitives:   make(map[string]*Primitive),
		KnownTypes:   make(map[string]*Defn),
		UsedClassIDs: make(map[uint32]string),
	}
	for _, p := range []*Primitive{
		{Name: "int8", Size: 1, Align: 1, Atomic: true},
		{Name: "uint8", Size: 1, Align: 1, Atomic: true},
		{Name: "int16", Size: 2, Align: 2, Atomic: true},
		{Name: "uint16", Size: 2, Align: 2, Atomic: true},
		{Name: "int32", Size: 4, Align: 4, Atomic: true},
		{Name: "uint32", Size: 4, Align: 4, Atomic: true},
		{Name: "float32", Size: 4, Align: 4, Atomic: false},
		{Name: "float64", Size: 8, Align: 8, Atomic: false},
	} {
		ctx.Primitives[p.Name] = p
	}
	return ctx
}

// Register adds a definition to the type registry, returning false if the
// name is already taken (the caller turns that into an identity
// Diagnostic).
func (c *Context) Register(d *Defn) bool {
	if _, exists := c.KnownTypes[d.Name]; exists {
		return false
	}
	c.KnownTypes[d.Name] = d
	c.Order = append(c.Order, d)
	return true
}

// Lookup resolves a name to either a primitive or a user type.
func (c *Context) Lookup(name string) TypeRef {
	if p, ok := c.Primitives[name]; ok {
		return TypeRef{Prim: p}
	}
	if d, ok := c.KnownTypes[name]; ok {
		return TypeRef{User: d}
	}
	return TypeRef{}
}
