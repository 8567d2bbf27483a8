package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/piwi3910/rectbin/internal/config"
	"github.com/piwi3910/rectbin/internal/engine"
	"github.com/piwi3910/rectbin/internal/export"
	"github.com/piwi3910/rectbin/internal/gcode"
	"github.com/piwi3910/rectbin/internal/importer"
	"github.com/piwi3910/rectbin/internal/model"
	"github.com/piwi3910/rectbin/internal/project"
)

var errNoItems = errors.New("no items to pack")

// loadItems imports every file by extension. Row-level problems are logged
// and skipped; a file that cannot be read at all is an error.
func loadItems(paths []string, logger *zap.Logger) ([]model.ItemSpec, error) {
	var specs []model.ItemSpec
	for _, path := range paths {
		var result importer.ImportResult
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".csv", ".txt", ".tsv":
			result = importer.ImportCSV(path)
		case ".xlsx", ".xlsm":
			result = importer.ImportExcel(path)
		case ".dxf":
			result = importer.ImportDXF(path)
		default:
			return nil, fmt.Errorf("%s: unsupported file type %q", path, ext)
		}

		for _, w := range result.Warnings {
			logger.Warn("import warning", zap.String("file", path), zap.String("detail", w))
		}
		for _, e := range result.Errors {
			logger.Error("import error", zap.String("file", path), zap.String("detail", e))
		}
		if len(result.Items) == 0 && len(result.Errors) > 0 {
			return nil, fmt.Errorf("%s: %s", path, result.Errors[0])
		}

		logger.Info("items imported", zap.String("file", path), zap.Int("lines", len(result.Items)))
		specs = append(specs, result.Items...)
	}
	return specs, nil
}

func runPack(cfg config.Config, logger *zap.Logger, opts packOptions, out io.Writer) error {
	specs, err := loadItems(opts.Items, logger)
	if err != nil {
		return err
	}
	if opts.JobFile != "" {
		job, err := project.LoadJob(opts.JobFile)
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		specs = append(specs, job.Items...)
	}
	if len(specs) == 0 {
		return errNoItems
	}

	opt := cfg.Optimizer()
	opt.Logger = logger
	result, err := opt.Optimize(model.ExpandItems(specs))
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	printResult(out, result, opts.MinOffcut)

	written, err := writeOutputs(cfg.OutputDir, result, opts)
	for _, p := range written {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	if err != nil {
		return err
	}

	if opts.GCode && len(result.Bins) > 0 {
		paths, err := writeGCode(cfg, logger, result, opts)
		for _, p := range paths {
			fmt.Fprintf(out, "wrote %s\n", p)
		}
		if err != nil {
			return err
		}
	}

	if opts.SaveJob != "" {
		path := jobPath(opts.SaveJob)
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := project.SaveJob(path, newJob(name, cfg, specs, result)); err != nil {
			return fmt.Errorf("save job: %w", err)
		}
		fmt.Fprintf(out, "saved job %s\n", path)
	}
	return nil
}

// writeOutputs writes every requested export into dir and returns the
// paths written so far.
func writeOutputs(dir string, result model.PackResult, opts packOptions) ([]string, error) {
	if !opts.PDF && !opts.Labels && !opts.XLSX && !opts.DXF && !opts.PNG {
		return nil, nil
	}
	if len(result.Bins) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	files := []struct {
		enabled bool
		name    string
		write   func(string, model.PackResult) error
	}{
		{opts.PDF, "layout.pdf", export.ExportPDF},
		{opts.Labels && result.PlacedCount() > 0, "labels.pdf", export.ExportLabels},
		{opts.XLSX, "placements.xlsx", export.ExportExcel},
		{opts.DXF, "layout.dxf", export.ExportDXF},
	}
	for _, f := range files {
		if !f.enabled {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := f.write(path, result); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}

	if opts.PNG {
		paths, err := export.ExportPNGs(dir, result, opts.PNGScale)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// writeGCode writes one program per bin. Pairs of items too close together
// for the tool and programs that cut outside their bin are logged.
func writeGCode(cfg config.Config, logger *zap.Logger, result model.PackResult, opts packOptions) ([]string, error) {
	settings := opts.gcodeSettings(cfg.GCode)
	for _, w := range gcode.FormatConflictWarnings(gcode.CheckClearance(result, settings.ToolDiameter)) {
		logger.Warn("tool clearance", zap.String("detail", w))
	}

	gen := gcode.New(settings)
	for _, bin := range result.Bins {
		if err := gcode.CheckProgram(gen.GenerateBin(bin), bin.Config, settings.ToolDiameter); err != nil {
			logger.Warn("toolpath check", zap.Int("bin", bin.Index+1), zap.Error(err))
		}
	}

	paths, err := gen.WriteFiles(cfg.OutputDir, result)
	if err != nil {
		return paths, fmt.Errorf("write gcode: %w", err)
	}
	logger.Info("gcode written",
		zap.Int("programs", len(paths)),
		zap.Float64("tool_diameter", settings.ToolDiameter),
		zap.Int("passes", settings.Passes()),
	)
	return paths, nil
}

// jobPath maps a bare job name to a file in the default job directory.
// Anything that looks like a path is used as given.
func jobPath(name string) string {
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') ||
		strings.EqualFold(filepath.Ext(name), project.JobExt) {
		return name
	}
	return filepath.Join(project.DefaultJobDir(), name+project.JobExt)
}

func printResult(out io.Writer, result model.PackResult, minOffcut int) {
	fmt.Fprintf(out, "bins: %d  placed: %d  unplaced: %d  usage: %.1f%%\n",
		len(result.Bins), result.PlacedCount(), len(result.Unplaced), result.TotalUsage()*100)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BIN\tITEMS\tUSED\tUSAGE\tLARGEST OFFCUT")
	for _, b := range result.Bins {
		offcuts := model.DetectOffcuts(b, minOffcut)
		largest := "-"
		if len(offcuts) > 0 {
			largest = fmt.Sprintf("%dx%d@(%d,%d)", offcuts[0].Width, offcuts[0].Height, offcuts[0].X, offcuts[0].Y)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f%%\t%s\n", b.Index+1, len(b.Used), b.UsedArea(), b.Usage()*100, largest)
	}
	tw.Flush()

	for _, r := range result.Unplaced {
		fmt.Fprintf(out, "unplaced: %s %dx%d\n", r.Label, r.Width, r.Height)
	}
}

func runCompare(cfg config.Config, logger *zap.Logger, paths []string, out io.Writer) error {
	specs, err := loadItems(paths, logger)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return errNoItems
	}

	scenarios := engine.BuildDefaultScenarios(cfg.Bin, cfg.Strategy)
	results := engine.CompareScenarios(scenarios, model.ExpandItems(specs), logger)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tBINS\tPLACED\tUNPLACED\tWASTE")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\t\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\n", r.Scenario.Name, r.BinsUsed, r.Placed, r.UnplacedCount, r.WastePercent)
	}
	tw.Flush()

	if best, ok := engine.BestComparison(results); ok {
		fmt.Fprintf(out, "best: %s\n", best.Scenario.Name)
	}
	return nil
}

func runJobs(dir string, out io.Writer) error {
	if dir == "" {
		dir = project.DefaultJobDir()
	}
	paths, err := project.ListJobs(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(out, "no jobs in %s\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNAME\tITEMS\tBIN\tBINS USED")
	for _, p := range paths {
		job, err := project.LoadJob(p)
		if err != nil {
			fmt.Fprintf(tw, "%s\tinvalid: %v\t\t\t\n", filepath.Base(p), err)
			continue
		}
		binsUsed := "-"
		if job.Result != nil {
			binsUsed = fmt.Sprintf("%d", len(job.Result.Bins))
		}
		items := 0
		for _, s := range job.Items {
			items += s.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%dx%d\t%s\n", filepath.Base(p), job.Name, items, job.Bin.Width, job.Bin.Height, binsUsed)
	}
	return tw.Flush()
}
