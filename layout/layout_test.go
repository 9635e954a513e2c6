package layout

import (
	"testing"

	"github.com/podefr/flatjs/types"
)

func newPrim(ctx *types.Context, name string) types.TypeRef {
	return types.TypeRef{Prim: ctx.Primitives[name]}
}

func TestLayoutAllTwoFieldClass(t *testing.T) {
	ctx := types.NewContext()
	point := &types.Defn{Name: "Point", Kind: types.KindClass}
	point.Properties = []*types.Property{
		{Name: "x", TypeName: "int32"},
		{Name: "y", TypeName: "int32"},
	}
	ctx.Register(point)
	point.Properties[0].Type = newPrim(ctx, "int32")
	point.Properties[1].Type = newPrim(ctx, "int32")

	if err := LayoutAll(ctx); err != nil {
		t.Fatalf("LayoutAll: %v", err)
	}

	if point.Size != 12 {
		t.Errorf("Size = %d, want 12 (4-byte CLSID header + 2*4-byte fields)", point.Size)
	}
	if point.Align != 4 {
		t.Errorf("Align = %d, want 4", point.Align)
	}
	if got := point.Field("x").Offset; got != 4 {
		t.Errorf("x offset = %d, want 4", got)
	}
	if got := point.Field("y").Offset; got != 8 {
		t.Errorf("y offset = %d, want 8", got)
	}
}

func TestLayoutAllStructEmbeddingWithPadding(t *testing.T) {
	ctx := types.NewContext()
	inner := &types.Defn{Name: "Inner", Kind: types.KindStruct}
	inner.Properties = []*types.Property{
		{Name: "a", TypeName: "uint8"},
		{Name: "b", TypeName: "int32"},
	}
	ctx.Register(inner)
	inner.Properties[0].Type = newPrim(ctx, "uint8")
	inner.Properties[1].Type = newPrim(ctx, "int32")

	outer := &types.Defn{Name: "Outer", Kind: types.KindStruct}
	outer.Properties = []*types.Property{
		{Name: "inner", TypeName: "Inner"},
	}
	ctx.Register(outer)
	outer.Properties[0].Type = types.TypeRef{User: inner}

	if err := LayoutAll(ctx); err != nil {
		t.Fatalf("LayoutAll: %v", err)
	}

	if inner.Size != 8 {
		t.Errorf("Inner.Size = %d, want 8 (1 byte + 3 padding + 4-byte field)", inner.Size)
	}
	if got := inner.Field("b").Offset; got != 4 {
		t.Errorf("Inner.b offset = %d, want 4", got)
	}

	composite := outer.Field("inner_b")
	if composite == nil {
		t.Fatalf("Outer has no composite field inner_b")
	}
	if composite.Offset != 4 {
		t.Errorf("Outer.inner_b offset = %d, want 4", composite.Offset)
	}
}

func TestLayoutAllClassInheritsBaseFields(t *testing.T) {
	ctx := types.NewContext()
	base := &types.Defn{Name: "Base", Kind: types.KindClass}
	base.Properties = []*types.Property{{Name: "a", TypeName: "int32"}}
	ctx.Register(base)
	base.Properties[0].Type = newPrim(ctx, "int32")

	sub := &types.Defn{Name: "Sub", Kind: types.KindClass, BaseName: "Base", BaseRef: base}
	sub.Properties = []*types.Property{{Name: "b", TypeName: "int32"}}
	ctx.Register(sub)
	sub.Properties[0].Type = newPrim(ctx, "int32")

	if err := LayoutAll(ctx); err != nil {
		t.Fatalf("LayoutAll: %v", err)
	}

	if sub.Field("a") == nil {
		t.Fatalf("Sub did not inherit field a from Base")
	}
	if got := sub.Field("b").Offset; got != 8 {
		t.Errorf("Sub.b offset = %d, want 8 (after 4-byte header + inherited 4-byte a)", got)
	}
	if sub.ClassID == base.ClassID {
		t.Errorf("Sub and Base must not share a class identifier")
	}
}

func TestClassIDHashDeterministic(t *testing.T) {
	id1, err := classIDHash("Shape")
	if err != nil {
		t.Fatalf("classIDHash: %v", err)
	}
	id2, err := classIDHash("Shape")
	if err != nil {
		t.Fatalf("classIDHash: %v", err)
	}
	if id1 != id2 {
		t.Errorf("classIDHash not deterministic: %d != %d", id1, id2)
	}
	if id1 != id1&0x0FFFFFFF {
		t.Errorf("classIDHash(%q) = %d exceeds 28 bits", "Shape", id1)
	}

	id3, err := classIDHash("Shape>Circle")
	if err != nil {
		t.Fatalf("classIDHash: %v", err)
	}
	if id3 == id1 {
		t.Errorf("dotted names %q and %q must not collide here", "Shape", "Shape>Circle")
	}
}

func TestClassIDCharCodeRejectsOutsideAlphabet(t *testing.T) {
	if _, err := classIDCharCode('!'); err == nil {
		t.Errorf("expected an error for a character outside the CLSID alphabet")
	}
}
