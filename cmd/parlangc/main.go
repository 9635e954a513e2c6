// Command parlangc is the command-line driver for the translator: argument
// parsing and file I/O, kept out of the core per spec.md §1 so package
// translate stays usable as a library over in-memory sources.
//
// Grounded in saferwall-pe/cmd/pedumper.go's cobra shape (one root command,
// flags bound with Flags().BoolVarP, a single RunE returning the error
// that main prints before exiting nonzero) rather than the teacher's own
// cmd/main.go, which hand-rolls subcommands with the stdlib flag package —
// cobra is the richer idiomatic-CLI library the wider example pack favors.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podefr/flatjs/translate"
)

// dialectExt is the inner extension identifying the annotated dialect in
// the required ".<hostlang>.<ext>" input naming convention (spec.md §6).
const dialectExt = ".flat"

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "parlangc [files...]",
		Short:         "Translate annotated shared-memory source into plain scripting-language source",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, verbose)
		},
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "report the input/output path of every file translated")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(paths []string, verbose bool) error {
	inputs := make([]translate.Input, 0, len(paths))
	outPaths := make([]string, 0, len(paths))

	for _, p := range paths {
		outPath, err := stripDialectExt(p)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		inputs = append(inputs, translate.Input{Name: p, Source: string(src)})
		outPaths = append(outPaths, outPath)
	}

	result, err := translate.Translate(inputs)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Error())
	}

	for i, out := range result.Outputs {
		if verbose {
			fmt.Fprintf(os.Stderr, "%s -> %s\n", paths[i], outPaths[i])
		}
		if err := os.WriteFile(outPaths[i], []byte(out.Text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// stripDialectExt validates the ".<hostlang>.<ext>" naming convention and
// returns the output path (the input with the outer extension stripped).
func stripDialectExt(path string) (string, error) {
	if !strings.HasSuffix(path, dialectExt) {
		return "", fmt.Errorf("%s: input file name must end with %q", path, dialectExt)
	}
	trimmed := strings.TrimSuffix(path, dialectExt)
	if !strings.Contains(trimmed, ".") {
		return "", fmt.Errorf("%s: input file name must have a host-language extension before %q", path, dialectExt)
	}
	return trimmed, nil
}
