// Package translate wires together every pass of the pipeline and exposes
// the one entry point the command-line driver calls: Translate.
//
// Grounded in analyzer/validator/validator.go's AnalyzeDir/ValidateTemplates
// shape (parse every input, build a registry, then run validation passes
// over it), but the nine passes here run strictly in order against one
// shared *types.Context, single-threaded throughout (spec.md §5) — this
// package deliberately does not reach for golang.org/x/sync, unlike the
// teacher's own validator, because the translation passes mutate shared
// registry state no earlier pass has finished writing.
package translate

import (
	"github.com/podefr/flatjs/collector"
	"github.com/podefr/flatjs/layout"
	"github.com/podefr/flatjs/macro"
	"github.com/podefr/flatjs/pasteup"
	"github.com/podefr/flatjs/resolve"
	"github.com/podefr/flatjs/selfexpand"
	"github.com/podefr/flatjs/types"
	"github.com/podefr/flatjs/vtable"
)

// Input is one source file handed to the translator.
type Input struct {
	Name   string
	Source string
}

// Output is one translated file, keyed the same as its Input by position.
type Output struct {
	Name string
	Text string
}

// Result is the outcome of a full translation run: the translated text of
// every input file, plus any non-fatal diagnostics the macro expander
// collected along the way.
type Result struct {
	Outputs     []Output
	Diagnostics []*types.Diagnostic
}

// Translate runs the full nine-pass pipeline over inputs and returns the
// translated text of each one, in the same order. A fatal error from any
// of passes 1–7 aborts the whole run; arity mismatches in the macro
// expander (pass 9) are collected as non-fatal diagnostics instead.
func Translate(inputs []Input) (Result, error) {
	ctx := types.NewContext()

	units := make([]*types.FileUnit, 0, len(inputs))
	for _, in := range inputs {
		unit, err := collector.Collect(in.Name, in.Source)
		if err != nil {
			return Result{}, err
		}
		units = append(units, unit)
	}

	if err := resolve.BuildRegistry(ctx, units); err != nil {
		return Result{}, err
	}
	if err := resolve.Resolve(ctx); err != nil {
		return Result{}, err
	}
	if err := resolve.CheckCycles(ctx); err != nil {
		return Result{}, err
	}
	if err := layout.LayoutAll(ctx); err != nil {
		return Result{}, err
	}
	if err := vtable.BuildAll(ctx); err != nil {
		return Result{}, err
	}
	selfexpand.ExpandAll(ctx)

	result := Result{Outputs: make([]Output, 0, len(units))}
	for _, unit := range units {
		pasted := pasteup.Emit(unit)
		expanded, diags := macro.Expand(ctx, pasted)
		result.Diagnostics = append(result.Diagnostics, diags...)
		result.Outputs = append(result.Outputs, Output{Name: unit.Name, Text: expanded})
	}

	return result, nil
}
