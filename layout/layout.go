// Package layout implements pass 5: computing size, alignment, and a
// per-field byte offset map for every declared type, inlining embedded
// struct fields into the owning layout, and assigning each class its
// 28-bit CLSID.
//
// Struct fields are laid out first (recursively, memoized via
// Defn.LaidOut) so an owning layout can both reserve a slot for the
// struct itself and fold in composite "p_x" entries for each of its
// leaves, per spec.md §4.5.
package layout

import "github.com/podefr/flatjs/types"

// reservedClassHeader is the byte size of the class-identifier slot every
// instance carries at offset 0.
const reservedClassHeader = 4

// LayoutAll computes layouts for every registered type in declaration
// order, then assigns class identifiers. Classes lay out their base first
// (recursively) so derived classes start from a shallow copy of the
// base's field map.
func LayoutAll(ctx *types.Context) error {
	for _, d := range ctx.Order {
		if err := layoutDefn(d); err != nil {
			return err
		}
	}
	for _, d := range ctx.Order {
		if d.IsClass() {
			assignDottedName(d)
		}
	}
	for _, d := range ctx.Order {
		if d.IsClass() {
			if err := assignClassID(ctx, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func layoutDefn(d *types.Defn) error {
	if d.LaidOut {
		return nil
	}

	if d.IsClass() {
		size, align := reservedClassHeader, reservedClassHeader
		if d.BaseRef != nil {
			if err := layoutDefn(d.BaseRef); err != nil {
				return err
			}
			size, align = d.BaseRef.Size, d.BaseRef.Align
			for _, name := range d.BaseRef.FieldOrder {
				entry := *d.BaseRef.FieldMap[name]
				d.AddField(name, &entry)
			}
		}
		var err error
		size, align, err = placeProperties(d, size, align)
		if err != nil {
			return err
		}
		d.Size, d.Align = size, align
		d.LaidOut = true
		return nil
	}

	// Struct.
	size, align, err := placeProperties(d, 0, 0)
	if err != nil {
		return err
	}
	if align > 0 && size%align != 0 {
		size += align - size%align
	}
	d.Size, d.Align = size, align
	d.LaidOut = true
	return nil
}

// placeProperties lays out d's own declared properties starting from the
// given size/align, returning the updated size/align.
func placeProperties(d *types.Defn, size, align int) (int, int, error) {
	for _, p := range d.Properties {
		switch {
		case p.IsArray:
			size = alignUp(size, 4)
			d.AddField(p.Name, &types.FieldMapEntry{
				Name: p.Name, Expand: true, Offset: size,
				Type: types.TypeRef{Prim: int32Primitive},
			})
			size += 4
			align = max(align, 4)

		case p.Type.IsPrimitive():
			psize := p.Type.Prim.Size
			size = alignUp(size, psize)
			d.AddField(p.Name, &types.FieldMapEntry{
				Name: p.Name, Expand: true, Offset: size, Type: p.Type,
			})
			size += psize
			align = max(align, psize)

		case p.Type.IsClass():
			size = alignUp(size, 4)
			d.AddField(p.Name, &types.FieldMapEntry{
				Name: p.Name, Expand: true, Offset: size, Type: p.Type,
			})
			size += 4
			align = max(align, 4)

		case p.Type.IsStruct():
			sub := p.Type.User
			if err := layoutDefn(sub); err != nil {
				return 0, 0, err
			}
			size = alignUp(size, sub.Align)
			offset := size
			d.AddField(p.Name, &types.FieldMapEntry{
				Name: p.Name, Expand: false, Offset: offset, Type: p.Type,
			})
			for _, leafName := range sub.FieldOrder {
				leaf := sub.FieldMap[leafName]
				composite := p.Name + "_" + leafName
				d.AddField(composite, &types.FieldMapEntry{
					Name: composite, Expand: leaf.Expand, Offset: offset + leaf.Offset, Type: leaf.Type,
				})
			}
			size += sub.Size
			align = max(align, sub.Align)

		default:
			return 0, 0, types.InternalError("property %q of %q has an unbound type", p.Name, d.Name)
		}
	}
	return size, align, nil
}

func alignUp(offset, alignment int) int {
	if alignment <= 1 {
		return offset
	}
	if r := offset % alignment; r != 0 {
		return offset + (alignment - r)
	}
	return offset
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// int32Primitive is the descriptor used for array and class-pointer slots,
// which are always stored as a 4-byte offset into the flat buffer.
var int32Primitive = &types.Primitive{Name: "int32", Size: 4, Align: 4, Atomic: true}

func assignDottedName(d *types.Defn) {
	if d.DottedName != "" {
		return
	}
	if d.BaseRef == nil {
		d.DottedName = d.Name
		return
	}
	assignDottedName(d.BaseRef)
	d.DottedName = d.BaseRef.DottedName + ">" + d.Name
}

// assignClassID computes the 28-bit class identifier per spec.md §4.5's
// rolling hash over the dotted class name, then checks it against every
// previously assigned identifier in this compilation.
func assignClassID(ctx *types.Context, d *types.Defn) error {
	if d.HasClassID {
		return nil
	}
	id, err := classIDHash(d.DottedName)
	if err != nil {
		return err
	}
	if owner, exists := ctx.UsedClassIDs[id]; exists && owner != d.DottedName {
		return types.IdentityError("class identifier collision: %q and %q both hash to %d", owner, d.DottedName, id)
	}
	ctx.UsedClassIDs[id] = d.DottedName
	d.ClassID = id
	d.HasClassID = true
	return nil
}

const classIDMask = 0x01FFFFFF // low 25 bits, rotated into a 28-bit result

// classIDHash implements spec.md §4.5's hash exactly:
//
//	id ← len(name)
//	for each char c in name:
//	  v ← code(c) where A..Z→0..25, a..z→26..51, 0..9→52..61, '_'→62, '>'→63
//	  id ← (((id & 0x01FFFFFF) << 3) | (id >>> 25)) ^ v
func classIDHash(name string) (uint32, error) {
	id := uint32(len(name))
	for _, c := range name {
		v, err := classIDCharCode(c)
		if err != nil {
			return 0, err
		}
		id = (((id & classIDMask) << 3) | (id >> 25)) ^ v
	}
	return id & 0x0FFFFFFF, nil
}

func classIDCharCode(c rune) (uint32, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint32(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint32(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint32(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	case c == '>':
		return 63, nil
	default:
		return 0, types.InternalError("dotted class name contains a character outside the CLSID alphabet: %q", c)
	}
}
