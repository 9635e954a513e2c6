// Package resolve implements passes 2–4: merging per-file definitions into
// a global type registry, binding each property's declared type name and
// each class's base name, and checking for struct/class recursion.
//
// Grounded in the teacher's registry-then-validate shape
// (analyzer/validator/validator.go: parse everything, then validate
// against the accumulated registry) but single-threaded throughout, per
// spec.md §5.
package resolve

import "github.com/podefr/flatjs/types"

// BuildRegistry merges every file's definitions into ctx.KnownTypes,
// preserving first-declared order in ctx.Order. A duplicate type name
// (whether within one file or across files) is an identity error.
func BuildRegistry(ctx *types.Context, files []*types.FileUnit) error {
	ctx.Files = files
	for _, f := range files {
		for _, d := range f.Defns {
			if !ctx.Register(d) {
				return types.IdentityError("duplicate type name %q (first declared elsewhere, redeclared at %s:%d)", d.Name, d.File, d.Line)
			}
		}
	}
	return nil
}
