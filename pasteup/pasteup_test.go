package pasteup

import (
	"strings"
	"testing"

	"github.com/podefr/flatjs/types"
)

func TestEmitSplicesAtOrigin(t *testing.T) {
	unit := &types.FileUnit{
		Name: "shapes.js",
		Lines: []string{
			"// header comment",
			"",
			"doSomethingElse();",
		},
	}
	d := &types.Defn{
		Name: "Point", Kind: types.KindClass, Size: 12, Align: 4, ClassID: 7, HasClassID: true,
		OriginIndex: 1,
	}
	unit.Defns = []*types.Defn{d}

	out := Emit(unit)
	lines := strings.Split(out, "\n")

	if lines[0] != "// header comment" {
		t.Fatalf("retained first line changed: %q", lines[0])
	}
	if !strings.Contains(out, "var Point = {") {
		t.Errorf("emitted definition missing from output:\n%s", out)
	}
	if idx := strings.Index(out, "var Point"); idx >= strings.Index(out, "doSomethingElse()") {
		t.Errorf("definition must be spliced in before its origin line, not after")
	}
}

func TestEmitDispatcherHasDefaultAndCases(t *testing.T) {
	d := &types.Defn{Name: "Shape", Kind: types.KindClass, ClassID: 1, HasClassID: true}
	entry := &types.VTableEntry{
		MethodName: "area",
		Impls:      map[string][]uint32{"Circle.area_impl": {2}},
		ImplOrder:  []string{"Circle.area_impl"},
		Default:    "Shape.area_impl",
		HasDefault: true,
	}

	var b strings.Builder
	emitDispatcher(&b, d, entry)
	out := b.String()

	if !strings.Contains(out, "case 2:") {
		t.Errorf("missing case for recorded class id:\n%s", out)
	}
	if !strings.Contains(out, "Circle.area_impl.apply(null, arguments)") {
		t.Errorf("missing forwarding call to the recorded implementation:\n%s", out)
	}
	if !strings.Contains(out, "default:\n        return Shape.area_impl.apply(null, arguments);") {
		t.Errorf("missing default forwarding to the inherited implementation:\n%s", out)
	}
}

func TestEmitDefnRegistersClassID(t *testing.T) {
	d := &types.Defn{Name: "Shape", Kind: types.KindClass, ClassID: 9, HasClassID: true}
	out := emitDefn(d)
	want := "Parlang._idToType[9] = Shape;"
	if !strings.Contains(out, want) {
		t.Errorf("emitDefn output missing registration line %q:\n%s", want, out)
	}
}

func TestMethodKeyNaming(t *testing.T) {
	tests := []struct {
		m    *types.Method
		want string
	}{
		{&types.Method{Kind: types.MethodGet}, "_get_impl"},
		{&types.Method{Kind: types.MethodSet}, "_set_impl"},
		{&types.Method{Kind: types.MethodCopy}, "_copy_impl"},
		{&types.Method{Kind: types.MethodVirtual, Name: "init"}, "init"},
		{&types.Method{Kind: types.MethodVirtual, Name: "draw"}, "draw_impl"},
	}
	for _, tt := range tests {
		if got := methodKey(tt.m); got != tt.want {
			t.Errorf("methodKey(%+v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}
