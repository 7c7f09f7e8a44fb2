// Package driver wires the aslc CLI: lexing, parsing, semantic
// analysis, and code generation invoked as cobra subcommands.
package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"aslc/pkg/asl/ast"
	"aslc/pkg/asl/codegen"
	"aslc/pkg/asl/config"
	"aslc/pkg/asl/decor"
	"aslc/pkg/asl/diag"
	"aslc/pkg/asl/parser"
	"aslc/pkg/asl/sema"
	"aslc/pkg/asl/symbols"
	"aslc/pkg/asl/types"
)

var configPath string

// Execute builds and runs the aslc root command.
func Execute() error {
	root := &cobra.Command{
		Use:   "aslc",
		Short: "aslc compiles ASL source to three-address code",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to .aslc.yaml (default: alongside the input file)")
	root.AddCommand(newCheckCmd(), newBuildCmd())
	return root.Execute()
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.asl>",
		Short: "run SymbolPass and TypeCheckPass, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, errs, err := analyze(args[0])
			if err != nil {
				return err
			}
			if errs.HasErrors() {
				fmt.Fprint(cmd.OutOrStdout(), errs.String())
				os.Exit(1)
			}
			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "build <file.asl>",
		Short: "run the full pipeline and emit the three-address program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, syms, dec, errs, prog, cfg, err := compile(args[0])
			if err != nil {
				return err
			}
			if errs.HasErrors() {
				fmt.Fprint(cmd.OutOrStdout(), errs.String())
				os.Exit(1)
			}

			cg := codegen.NewCodePass(reg, syms, dec, cfg)
			out := cg.Run(prog)

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), out.String())
				return nil
			}
			return errors.Wrapf(os.WriteFile(outPath, []byte(out.String()), 0o644), "build: writing %s", outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the program to this file instead of stdout")
	return cmd
}

// analyze runs Lex->Parse->SymbolPass->TypeCheckPass, used by `check`.
func analyze(path string) (*types.Registry, *symbols.Table, *diag.Sink, error) {
	reg, syms, _, errs, _, _, err := compile(path)
	return reg, syms, errs, err
}

func compile(path string) (*types.Registry, *symbols.Table, *decor.Table, *diag.Sink, *ast.Program, *config.Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, errors.Wrapf(err, "reading %s", path)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, err
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		return nil, nil, nil, nil, nil, nil, errors.Wrapf(err, "parsing %s", path)
	}

	reg := types.NewRegistry()
	syms := symbols.NewTable()
	dec := decor.New()
	errs := &diag.Sink{}

	sema.NewSymbolPass(reg, syms, dec, errs).Run(prog)
	sema.NewTypeCheckPass(reg, syms, dec, errs).Run(prog)

	return reg, syms, dec, errs, prog, cfg, nil
}

func loadConfig(sourcePath string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(filepath.Dir(sourcePath), ".aslc.yaml")
	}
	return config.Load(path)
}
