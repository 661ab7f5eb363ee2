package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/pipeline"
	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// renderCommand creates the render command, which renders a saved layout.
func (c *CLI) renderCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a saved layout to SVG, PNG or PDF",
		Long: `Render a layout written by 'waterfall layout'.

PNG and PDF output require rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], lf)
		},
	}

	cmd.Flags().StringVarP(&lf.formats, "format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&lf.output, "output", "o", "", "output base path (default: input without .layout.json)")
	cmd.Flags().BoolVar(&lf.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&lf.gap, "gap", 0, "space between rendered items")
	cmd.Flags().BoolVar(&lf.labels, "labels", false, "write item ids into the rendering")
	cmd.Flags().BoolVar(&lf.interactive, "interactive", false, "highlight the hovered item's column in SVG output")
	cmd.Flags().BoolVar(&lf.stats, "stats", false, "print per-column statistics")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, lf layoutFlags) error {
	ctx := cmd.Context()
	snap, err := snapshot.Import(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	opts := pipeline.Options{
		Formats:     parseFormats(lf.formats),
		Gap:         lf.gap,
		Labels:      lf.labels,
		Interactive: lf.interactive,
		Logger:      c.Logger,
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	base := lf.output
	if base == "" {
		base = strings.TrimSuffix(strings.TrimSuffix(input, ".json"), ".layout")
	}
	paths, err := writeArtifacts(base, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(snap.Items), snap.Columns, 0, hit)
	if lf.stats {
		printNewline()
		fmt.Fprintln(out, snapshotTable(snap))
	}
	return nil
}
