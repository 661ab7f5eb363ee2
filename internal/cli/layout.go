package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/pipeline"
	"github.com/matzehuels/waterfall/pkg/render"
	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// layoutFlags are the command-line layout and render settings.
type layoutFlags struct {
	width       string
	batchSize   int
	minColumns  int
	formats     string
	output      string
	noCache     bool
	refresh     bool
	gap         float64
	labels      bool
	interactive bool
	stats       bool
	resume      string
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		lf layoutFlags
		ff feedFlags
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out a feed of items and render the result",
		Long: `Lay out a feed of items in masonry columns.

Items come from a manifest (-m items.toml) or are generated. They are placed
the way an infinite-scroll page receives them: an initial page, then one
batch per load request. The finished layout is written as <output>.layout.json
and rendered in every requested format.

With --resume, the items are appended below a layout written by an earlier
run instead; nothing already placed moves.

Results are cached by content hash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, lf, ff)
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVarP(&lf.width, "width", "w", "", `container width, e.g. 820 or "820px" (default: config or 820)`)
	cmd.Flags().IntVarP(&lf.batchSize, "batch-size", "b", 0, "items per load (default: config)")
	cmd.Flags().IntVar(&lf.minColumns, "min-columns", 0, "lower bound on the column count")
	cmd.Flags().StringVarP(&lf.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&lf.output, "output", "o", "waterfall", "output base path")
	cmd.Flags().BoolVar(&lf.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&lf.refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().Float64Var(&lf.gap, "gap", 0, "space between rendered items")
	cmd.Flags().BoolVar(&lf.labels, "labels", false, "write item ids into the rendering")
	cmd.Flags().BoolVar(&lf.interactive, "interactive", false, "highlight the hovered item's column in SVG output")
	cmd.Flags().BoolVar(&lf.stats, "stats", false, "print per-column statistics")
	cmd.Flags().StringVar(&lf.resume, "resume", "", "continue the layout in this .layout.json file")

	return cmd
}

// pipelineOptions merges flags over the config file.
func (c *CLI) pipelineOptions(lf layoutFlags) (pipeline.Options, error) {
	opts := pipeline.Options{
		Width:       float64(c.config.Layout.Width),
		BatchSize:   c.config.Layout.BatchSize,
		MinColumns:  c.config.Layout.MinColumns,
		Container:   c.config.Layout.Container,
		Formats:     parseFormats(lf.formats),
		Refresh:     lf.refresh,
		Gap:         lf.gap,
		Labels:      lf.labels,
		Interactive: lf.interactive,
		Logger:      c.Logger,
	}
	if lf.width != "" {
		w, err := masonry.ParseWidth(lf.width)
		if err != nil {
			return opts, err
		}
		opts.Width = w
	}
	if lf.batchSize != 0 {
		opts.BatchSize = lf.batchSize
	}
	if lf.minColumns != 0 {
		opts.MinColumns = lf.minColumns
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (c *CLI) runLayout(cmd *cobra.Command, lf layoutFlags, ff feedFlags) error {
	ctx := cmd.Context()
	opts, err := c.pipelineOptions(lf)
	if err != nil {
		return err
	}
	src, err := ff.source(cmd, c.config.Feed)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var prev *snapshot.Snapshot
	if lf.resume != "" {
		if prev, err = snapshot.Import(lf.resume); err != nil {
			return fmt.Errorf("read %s: %w", lf.resume, err)
		}
	}

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Laying out items...")
	spinner.Start()
	var result *pipeline.Result
	if prev != nil {
		result, err = runner.Continue(ctx, prev, src, opts)
	} else {
		result, err = runner.Execute(ctx, src, opts)
	}
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d items", result.Stats.ItemCount))

	paths, err := writeOutputs(lf.output, result.Snapshot, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.ItemCount, result.Stats.Columns, result.Stats.Batches, result.CacheInfo.LayoutHit)
	if lf.stats {
		printNewline()
		fmt.Fprintln(out, snapshotTable(result.Snapshot))
	}
	printNewline()
	printNextStep("Render again", "waterfall render "+lf.output+".layout.json")
	return nil
}

// writeOutputs writes the snapshot and every artifact next to base. The
// json artifact is the snapshot itself and is not written twice.
func writeOutputs(base string, snap *snapshot.Snapshot, artifacts map[string][]byte) ([]string, error) {
	layoutPath := base + ".layout.json"
	if err := snapshot.Export(snap, layoutPath); err != nil {
		return nil, fmt.Errorf("write %s: %w", layoutPath, err)
	}
	delete(artifacts, render.FormatJSON)
	paths, err := writeArtifacts(base, artifacts)
	if err != nil {
		return nil, err
	}
	return append([]string{layoutPath}, paths...), nil
}

// writeArtifacts writes each artifact to base.<format> in format order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	formats := slices.Sorted(maps.Keys(artifacts))
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := base + "." + f
		if err := os.WriteFile(p, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// snapshotTable renders the column statistics of a snapshot.
func snapshotTable(s *snapshot.Snapshot) string {
	counts := make([]int, s.Columns)
	for _, it := range s.Items {
		if it.Column >= 0 && it.Column < s.Columns {
			counts[it.Column]++
		}
	}
	return columnTable(s.Heights, s.ItemWidth, counts)
}
