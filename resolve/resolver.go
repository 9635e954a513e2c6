package resolve

import "github.com/podefr/flatjs/types"

// Resolve binds every class's base reference and every property's
// declared type, in registry order. Binding a class appends it to its
// base's Subclasses list, which the vtable pass later walks.
func Resolve(ctx *types.Context) error {
	for _, d := range ctx.Order {
		if d.IsClass() && d.BaseName != "" {
			base, ok := ctx.KnownTypes[d.BaseName]
			if !ok {
				return types.ReferenceError(d.File, d.Line, "class %q extends unknown base %q", d.Name, d.BaseName)
			}
			if !base.IsClass() {
				return types.ReferenceError(d.File, d.Line, "class %q extends %q, which is not a class", d.Name, d.BaseName)
			}
			d.BaseRef = base
			base.Subclasses = append(base.Subclasses, d)
		}

		for _, p := range d.Properties {
			ref := ctx.Lookup(p.TypeName)
			if !ref.IsBound() {
				return types.ReferenceError(d.File, p.Line, "property %q of %q references unknown type %q", p.Name, d.Name, p.TypeName)
			}
			if p.Qualifier != types.QualifierNone {
				if !ref.IsPrimitive() || !ref.Prim.Atomic {
					return types.ReferenceError(d.File, p.Line, "property %q of %q is qualified %s but %q is not an atomic integer primitive", p.Name, d.Name, p.Qualifier, p.TypeName)
				}
			}
			p.Type = ref
		}
	}
	return nil
}
