package resolve

import "github.com/podefr/flatjs/types"

// CheckCycles runs the two depth-first traversals spec.md §4.4 describes:
// struct-by-value recursion (following non-array struct fields) and class
// inheritance recursion (following BaseRef). Both use the same gray/black
// (Live/Checked) marker scheme, reset before each traversal.
func CheckCycles(ctx *types.Context) error {
	for _, d := range ctx.Order {
		d.Live, d.Checked = false, false
	}
	for _, d := range ctx.Order {
		if d.IsStruct() && !d.Checked {
			if err := walkStruct(d); err != nil {
				return err
			}
		}
	}

	for _, d := range ctx.Order {
		d.Live, d.Checked = false, false
	}
	for _, d := range ctx.Order {
		if d.IsClass() && !d.Checked {
			if err := walkClass(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkStruct(d *types.Defn) error {
	if d.Checked {
		return nil
	}
	if d.Live {
		return types.RecursionError(d.File, d.Line, "struct %q contains itself by value", d.Name)
	}
	d.Live = true
	for _, p := range d.Properties {
		if p.IsArray || !p.Type.IsStruct() {
			continue
		}
		if err := walkStruct(p.Type.User); err != nil {
			return err
		}
	}
	d.Live = false
	d.Checked = true
	return nil
}

func walkClass(d *types.Defn) error {
	if d.Checked {
		return nil
	}
	if d.Live {
		return types.RecursionError(d.File, d.Line, "class %q inherits from itself", d.Name)
	}
	d.Live = true
	if d.BaseRef != nil {
		if err := walkClass(d.BaseRef); err != nil {
			return err
		}
	}
	d.Live = false
	d.Checked = true
	return nil
}
