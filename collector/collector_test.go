package collector

import (
	"testing"

	"github.com/podefr/flatjs/types"
)

func TestCollectClassWithMethodAndBrace(t *testing.T) {
	source := `// leading comment
shared class Counter {
  count: atomic int32;

  method increment(self) {
    if (self > 0) {
      SELF_add_count(1);
    }
  }
} end
doSomethingAfter();
`
	unit, err := Collect("counter.js", source)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(unit.Defns) != 1 {
		t.Fatalf("got %d definitions, want 1", len(unit.Defns))
	}
	d := unit.Defns[0]
	if d.Name != "Counter" || d.Kind != types.KindClass {
		t.Errorf("definition = %+v, want class Counter", d)
	}
	if len(d.Properties) != 1 || d.Properties[0].Name != "count" || d.Properties[0].Qualifier != types.QualifierAtomic {
		t.Errorf("Properties = %+v, want one atomic field count", d.Properties)
	}
	if len(d.Methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(d.Methods))
	}
	m := d.Methods[0]
	if m.Name != "increment" {
		t.Errorf("method name = %q, want increment", m.Name)
	}
	// The method body must retain the if-block's own closing brace as an
	// ordinary body line, not treat it as ending the method early.
	found := false
	for _, line := range m.Body {
		if line == "    }" {
			found = true
		}
	}
	if !found {
		t.Errorf("method body lost the if-block's closing brace: %+v", m.Body)
	}

	foundTrailing := false
	for _, line := range unit.Lines {
		if line == "doSomethingAfter();" {
			foundTrailing = true
		}
	}
	if !foundTrailing {
		t.Errorf("retained stream lost the line after the definition: %+v", unit.Lines)
	}
}

func TestCollectArrayProperty(t *testing.T) {
	source := `shared struct Vec {
  items: array(int32);
} end
`
	unit, err := Collect("vec.js", source)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	d := unit.Defns[0]
	if len(d.Properties) != 1 || !d.Properties[0].IsArray || d.Properties[0].TypeName != "int32" {
		t.Errorf("Properties = %+v, want one int32 array field", d.Properties)
	}
}

func TestCollectUnterminatedDefinitionIsSyntaxError(t *testing.T) {
	source := "shared class Broken {\n  x: int32;\n"
	_, err := Collect("broken.js", source)
	if err == nil {
		t.Fatalf("expected a syntax error for an unterminated definition")
	}
	diag, ok := types.AsDiagnostic(err)
	if !ok || diag.Category != types.CategorySyntax {
		t.Errorf("error = %v, want a syntax Diagnostic", err)
	}
}

func TestCollectGetSetMethodsSetFlags(t *testing.T) {
	source := `shared struct Vec2 {
  x: int32;
  y: int32;

  get(self) {
    return self;
  }

  set(self, v) {
  }
} end
`
	unit, err := Collect("vec2.js", source)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	d := unit.Defns[0]
	if !d.HasGetMethod || !d.HasSetMethod {
		t.Errorf("HasGetMethod=%v HasSetMethod=%v, want both true", d.HasGetMethod, d.HasSetMethod)
	}
}
