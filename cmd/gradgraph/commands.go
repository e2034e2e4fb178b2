package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/born-ml/gradgraph/internal/ops"
)

type runOptions struct {
	file    string
	metrics bool
	plain   bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gradgraph",
		Short:        "Evaluate expressions and their derivatives step by step",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newWatchCmd(), newOpsCmd(), newVersionCmd())
	return root
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "run.yaml", "run file")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print run metrics in Prometheus text format")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable styled output")
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a file once and print every step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			reg := prometheus.NewRegistry()

			s, err := loadSession(opts.file, cmd.ErrOrStderr(), reg)
			if err != nil {
				return err
			}

			newPrinter(out, styled(out, opts.plain)).runAll(s)

			if opts.metrics {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the available operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := ops.NewRegistry()
			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("SYMBOL", "FIXITY", "ARITY", "SCALAR")
			for _, symbol := range r.Symbols() {
				op := r.MustGet(symbol)
				arity := fmt.Sprint(op.Arity)
				if op.Arity == ops.Variadic {
					arity = "n"
				}
				scalar := "yes"
				if op.ScalarUnsafe {
					scalar = "no"
				}
				t.Row(symbol, op.Fixity.String(), arity, scalar)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gradgraph %s\n", version)
		},
	}
}

// styled reports whether output to w should carry terminal styling.
func styled(w io.Writer, plain bool) bool {
	if plain {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
