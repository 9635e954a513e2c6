package types

import (
	"errors"
	"testing"
)

func TestDiagnosticErrorFormat(t *testing.T) {
	withLoc := &Diagnostic{Category: CategorySyntax, File: "a.flat", Line: 7, Message: "bad opener"}
	if got, want := withLoc.Error(), "a.flat:7: bad opener"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noLoc := &Diagnostic{Category: CategoryIdentity, Message: "duplicate type name"}
	if got, want := noLoc.Error(), "duplicate type name"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConstructorsSetCategoryAndLocation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCat  Category
		wantFile string
		wantLine int
	}{
		{"syntax", SyntaxError("x.flat", 3, "unterminated %q", "Node"), CategorySyntax, "x.flat", 3},
		{"reference", ReferenceError("x.flat", 4, "unknown base %q", "Ghost"), CategoryReference, "x.flat", 4},
		{"recursion", RecursionError("x.flat", 5, "cycle at %q", "Loop"), CategoryRecursion, "x.flat", 5},
		{"identity", IdentityError("duplicate %q", "Point"), CategoryIdentity, "", 0},
		{"internal", InternalError("missing impl for %q", "area"), CategoryInternal, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag, ok := AsDiagnostic(tt.err)
			if !ok {
				t.Fatalf("AsDiagnostic failed to unwrap a *Diagnostic from %v", tt.err)
			}
			if diag.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", diag.Category, tt.wantCat)
			}
			if diag.File != tt.wantFile || diag.Line != tt.wantLine {
				t.Errorf("File/Line = %q/%d, want %q/%d", diag.File, diag.Line, tt.wantFile, tt.wantLine)
			}
		})
	}
}

func TestAsDiagnosticRejectsPlainErrors(t *testing.T) {
	if _, ok := AsDiagnostic(nil); ok {
		t.Errorf("AsDiagnostic(nil) should fail")
	}
	if _, ok := AsDiagnostic(errors.New("plain")); ok {
		t.Errorf("AsDiagnostic on a plain error should fail")
	}
}
