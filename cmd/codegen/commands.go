package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go-codegen-pipeline/internal/app"
	"go-codegen-pipeline/internal/codegen"
	"go-codegen-pipeline/internal/events"
	"go-codegen-pipeline/internal/logging"
	"go-codegen-pipeline/internal/model"
	"go-codegen-pipeline/internal/source"
	"go-codegen-pipeline/pkg/utils"
)

var (
	flagColumn       string
	flagKind         string
	flagFormat       string
	flagOut          string
	flagPreviewCount int
	flagPreviewOut   string
	flagLimit        int
	flagPollInterval string

	genFlags generationFlags
)

// generationFlags mirror model.GenerationConfig; only flags set on the
// command line override the configured defaults.
type generationFlags struct {
	family, mode   string
	prefix, suffix string
	fg, bg         string
	width, height  float64
	stretch        bool
}

func (g *generationFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.family, "family", "", "code family: matrix or linear")
	fs.StringVar(&g.mode, "mode", "", "data mode: raw-text or numeric-with-affixes")
	fs.StringVar(&g.prefix, "prefix", "", "prefix added in numeric-with-affixes mode")
	fs.StringVar(&g.suffix, "suffix", "", "suffix added in numeric-with-affixes mode")
	fs.StringVar(&g.fg, "fg", "", "foreground colour (name or #rrggbb)")
	fs.StringVar(&g.bg, "bg", "", "background colour (name or #rrggbb)")
	fs.Float64Var(&g.width, "width", 0, "output width in cm for the selected family")
	fs.Float64Var(&g.height, "height", 0, "output height in cm for the selected family")
	fs.BoolVar(&g.stretch, "stretch", false, "stretch to the box instead of keeping the aspect ratio")
}

func (g *generationFlags) apply(fs *pflag.FlagSet, base model.GenerationConfig) model.GenerationConfig {
	c := base
	if fs.Changed("family") {
		c.Family = model.CodeFamily(g.family)
	}
	if fs.Changed("mode") {
		c.Mode = model.DataMode(g.mode)
	}
	if fs.Changed("prefix") {
		c.Prefix = g.prefix
	}
	if fs.Changed("suffix") {
		c.Suffix = g.suffix
	}
	if fs.Changed("fg") {
		c.Foreground = g.fg
	}
	if fs.Changed("bg") {
		c.Background = g.bg
	}

	size := &c.Matrix
	if c.Family == model.FamilyLinear {
		size = &c.Linear
	}
	if fs.Changed("width") {
		size.WidthCm = g.width
	}
	if fs.Changed("height") {
		size.HeightCm = g.height
	}
	if fs.Changed("stretch") {
		size.KeepRatio = !g.stretch
	}
	return c
}

func init() {
	previewCmd.Flags().StringVar(&flagColumn, "column", "", "column holding the values")
	previewCmd.Flags().IntVar(&flagPreviewCount, "n", 5, "number of values to list")
	previewCmd.Flags().StringVar(&flagPreviewOut, "out", "preview.png", "where to write the preview image")
	genFlags.register(previewCmd.Flags())

	generateCmd.Flags().StringVar(&flagColumn, "column", "", "column holding the values")
	generateCmd.Flags().StringVar(&flagKind, "kind", string(model.OutputLooseImages), "output kind: loose-images, paginated-document or archive")
	generateCmd.Flags().StringVar(&flagFormat, "format", string(model.FormatRaster), "image format for loose images: png or svg")
	generateCmd.Flags().StringVar(&flagOut, "out", "", "output directory (loose images) or file (document, archive)")
	generateCmd.Flags().StringVar(&flagPollInterval, "poll-interval", "", "how often progress is drained, e.g. 100ms")
	genFlags.register(generateCmd.Flags())
	_ = generateCmd.MarkFlagRequired("column")
	_ = generateCmd.MarkFlagRequired("out")

	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "number of runs to show")
}

var columnsCmd = &cobra.Command{
	Use:   "columns <source>",
	Short: "list the columns of a CSV, XLSX or JSON source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := source.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range table.Columns() {
			fmt.Fprintln(out, c)
		}
		fmt.Fprintf(out, "(%d rows)\n", table.Len())
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview [source]",
	Short: "show the first valid values and render one of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doPreview,
}

func doPreview(cmd *cobra.Command, args []string) error {
	gen := genFlags.apply(cmd.Flags(), cfg.Generation).WithDefaults()
	if err := codegen.ValidateDimensions(gen); err != nil {
		return err
	}
	if err := codegen.ValidateStyle(gen); err != nil {
		return err
	}

	var values []string
	if len(args) == 1 {
		table, err := source.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		raw, err := table.Values(flagColumn)
		if err != nil {
			return err
		}
		values = codegen.PreviewValues(raw, gen, flagPreviewCount)
	}

	out := cmd.OutOrStdout()
	for i, v := range values {
		fmt.Fprintf(out, "%d. %s\n", i+1, v)
	}
	sample := codegen.SampleValue(gen.Family)
	if len(values) > 0 {
		sample = values[0]
	}

	engine := codegen.NewEngine(codegen.WithLinearBackends(codegen.LinearBackendsByName(cfg.Render.LinearBackends)...))
	img, err := engine.Render(sample, gen)
	if err != nil {
		return err
	}
	f, err := os.Create(flagPreviewOut)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Fprintf(out, "preview of %q written to %s (%dx%d px)\n", sample, flagPreviewOut, b.Dx(), b.Dy())
	return nil
}

var generateCmd = &cobra.Command{
	Use:   "generate <source>",
	Short: "generate codes for every valid value of a column",
	Args:  cobra.ExactArgs(1),
	RunE:  doGenerate,
}

func doGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := newApp()
	defer a.Close()

	raw, err := a.Column(ctx, args[0], flagColumn)
	if err != nil {
		return err
	}
	req, err := a.Prepare(app.Batch{
		Raw:         raw,
		Config:      genFlags.apply(cmd.Flags(), cfg.Generation),
		Kind:        model.OutputKind(flagKind),
		Format:      model.ImageFormat(flagFormat),
		Destination: flagOut,
	})
	if err != nil {
		return err
	}

	id, err := a.Start(ctx, req)
	if err != nil {
		return err
	}
	ctx = logging.ContextAttrs(ctx, slog.String("job_id", id))
	logger.InfoContext(ctx, "run started",
		slog.Int("total", len(req.Items)),
		slog.Int("rejected", req.TotalRejected),
	)

	// SIGINT cancels the run between items; the loop below still drains
	// events until the terminal one arrives.
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			if a.Runner.Cancel() {
				logger.InfoContext(ctx, "cancellation requested")
			}
		case <-stopWatch:
		}
	}()

	out := cmd.OutOrStdout()
	interval := utils.ParseDuration(flagPollInterval, cfg.Server.PollInterval)
	last, err := events.UntilTerminal(context.WithoutCancel(ctx), a.Events, interval, func(e model.Event) {
		a.Tracker.Apply(e)
		if e.Type == model.EventProgress {
			fmt.Fprintf(out, "[%d/%d] %s\n", e.Index, e.Total, e.Item)
		}
	})
	if err != nil {
		return err
	}
	return reportTerminal(out, last)
}

func reportTerminal(out io.Writer, e model.Event) error {
	switch e.Type {
	case model.EventSucceeded:
		fmt.Fprintf(out, "done: %s\n", e.Destination)
		return nil
	case model.EventCancelled:
		fmt.Fprintf(out, "cancelled after %d items\n", e.Processed)
		return errors.New("run cancelled")
	default:
		return fmt.Errorf("run failed: %s", e.Detail)
	}
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "list recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := newApp()
		defer a.Close()
		if a.Jobs == nil {
			return errors.New("job store unavailable")
		}
		runs, err := a.Jobs.List(cmd.Context(), flagLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		return printRuns(cmd.OutOrStdout(), runs)
	},
}

func printRuns(out io.Writer, runs []model.JobRun) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tKIND\tPROCESSED\tENTRIES\tREJECTED\tDESTINATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.OutputKind,
			r.TotalProcessed, r.TotalEntries, r.TotalRejected, r.Destination)
	}
	return tw.Flush()
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "print aggregated run metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := newApp()
		defer a.Close()
		if a.Metrics == nil {
			return errors.New("metrics store unavailable")
		}
		snap, err := a.Metrics.HealthSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("read metrics: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}
