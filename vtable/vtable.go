// Package vtable implements pass 6: building, for each class, a virtual
// dispatch table per method name visible through inheritance, mapping
// every subclass's class identifier to the nearest implementation.
package vtable

import "github.com/podefr/flatjs/types"

// BuildAll builds the vtable for every class in the context. Classes must
// already have a base reference, a field layout, and a class identifier
// (passes resolve and layout must have run first).
func BuildAll(ctx *types.Context) error {
	for _, d := range ctx.Order {
		if d.IsClass() {
			if err := build(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// visibleMethod names a virtual method visible on a class together with
// whether its declaration is inherited from a base.
type visibleMethod struct {
	name      string
	inherited bool
}

func build(d *types.Defn) error {
	d.VTable = make(map[string]*types.VTableEntry)

	for _, vm := range visibleMethods(d) {
		entry := &types.VTableEntry{MethodName: vm.name, Impls: make(map[string][]uint32)}

		for _, s := range inclusiveSubclasses(d) {
			implOwner := findImplementation(s, vm.name, d.BaseRef)
			if implOwner == nil {
				continue
			}
			impl := implSymbolFor(implOwner, vm.name)
			if _, ok := entry.Impls[impl]; !ok {
				entry.ImplOrder = append(entry.ImplOrder, impl)
			}
			entry.Impls[impl] = append(entry.Impls[impl], s.ClassID)
		}

		if vm.inherited && d.BaseRef != nil {
			if implOwner := findImplementation(d.BaseRef, vm.name, nil); implOwner != nil {
				entry.Default = implSymbolFor(implOwner, vm.name)
				entry.HasDefault = true
			}
		}

		d.VTable[vm.name] = entry
		d.VTableOrder = append(d.VTableOrder, vm.name)
	}
	return nil
}

// visibleMethods walks d's own methods then its base's methods (and so on
// up the chain), collecting each distinct virtual method name once,
// skipping "init" (never virtual) and non-virtual method kinds.
func visibleMethods(d *types.Defn) []visibleMethod {
	seen := make(map[string]bool)
	var out []visibleMethod

	for cur, inherited := d, false; cur != nil; cur, inherited = cur.BaseRef, true {
		for _, m := range cur.Methods {
			if m.Kind != types.MethodVirtual || m.Name == "" || m.Name == "init" {
				continue
			}
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			out = append(out, visibleMethod{name: m.Name, inherited: inherited})
		}
	}
	return out
}

// inclusiveSubclasses returns d and every transitive subclass of d, in a
// deterministic pre-order (self first, then each direct subclass's own
// inclusive subclass set, in declaration order).
func inclusiveSubclasses(d *types.Defn) []*types.Defn {
	out := []*types.Defn{d}
	for _, sub := range d.Subclasses {
		out = append(out, inclusiveSubclasses(sub)...)
	}
	return out
}

// findImplementation searches from start upward through BaseRef links for
// the nearest declaration of a virtual method named name, stopping before
// (not including) stop. A nil stop means search all the way to the root.
func findImplementation(start *types.Defn, name string, stop *types.Defn) *types.Defn {
	for cur := start; cur != nil && cur != stop; cur = cur.BaseRef {
		for _, m := range cur.Methods {
			if m.Kind == types.MethodVirtual && m.Name == name {
				return cur
			}
		}
	}
	return nil
}

func implSymbolFor(owner *types.Defn, name string) string {
	return owner.Name + "." + name + "_impl"
}
