// rectbin packs rectangular items, optionally with a window cut-out, into
// fixed-size bins and exports the layouts.
//
// Build:
//
//	go build -o rectbin ./cmd/rectbin
//
// Examples:
//
//	rectbin pack items.csv --width 2440 --height 1220 --pdf --xlsx
//	rectbin pack panels.dxf --gcode --tool-diameter 6 --cut-depth 18
//	rectbin compare items.xlsx --config rectbin.yaml
//	rectbin jobs
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/piwi3910/rectbin/internal/config"
	"github.com/piwi3910/rectbin/internal/gcode"
	"github.com/piwi3910/rectbin/internal/logging"
	"github.com/piwi3910/rectbin/internal/model"
)

func main() {
	kingpinApp := kingpin.New("rectbin", "2D rectangle bin packing with windowed items")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	outputDir := kingpinApp.Flag("output-dir", "Directory for exported files").String()
	width := kingpinApp.Flag("width", "Bin width").Default("-1").Int()
	height := kingpinApp.Flag("height", "Bin height").Default("-1").Int()
	leftBorder := kingpinApp.Flag("left-border", "Unusable strip along the left edge").Default("-1").Int()
	bottomBorder := kingpinApp.Flag("bottom-border", "Unusable strip along the bottom edge").Default("-1").Int()
	heuristic := kingpinApp.Flag("heuristic", "Placement heuristic (BottomLeft, BestAreaFit, BestLongSideFit, BestShortSideFit)").String()
	strategy := kingpinApp.Flag("strategy", "Bin fill strategy (greedy, sequential, genetic)").String()
	maxBins := kingpinApp.Flag("max-bins", "Maximum number of bins, 0 for no limit").Default("-1").Int()
	var rotationSet bool
	rotation := kingpinApp.Flag("rotation", "Allow 90 degree rotation (--no-rotation to disable)").IsSetByUser(&rotationSet).Bool()

	packCmd := kingpinApp.Command("pack", "Pack items from CSV, XLSX or DXF files")
	packItems := packCmd.Arg("items", "Item files (.csv, .xlsx, .dxf)").ExistingFiles()
	pack := packOptions{}
	packCmd.Flag("job", "Take items from a saved job file").StringVar(&pack.JobFile)
	packCmd.Flag("pdf", "Write a PDF layout report").BoolVar(&pack.PDF)
	packCmd.Flag("labels", "Write a PDF of QR-coded item labels").BoolVar(&pack.Labels)
	packCmd.Flag("xlsx", "Write an Excel placement list").BoolVar(&pack.XLSX)
	packCmd.Flag("dxf", "Write a DXF drawing of all bins").BoolVar(&pack.DXF)
	packCmd.Flag("png", "Write one PNG preview per bin").BoolVar(&pack.PNG)
	packCmd.Flag("png-scale", "PNG pixels per unit").Default("0.5").Float64Var(&pack.PNGScale)
	packCmd.Flag("min-offcut", "Minimum side of a reported offcut").Default("50").IntVar(&pack.MinOffcut)
	packCmd.Flag("gcode", "Write one GCode program per bin").BoolVar(&pack.GCode)
	packCmd.Flag("tool-diameter", "GCode tool diameter").Float64Var(&pack.ToolDiameter)
	packCmd.Flag("cut-depth", "GCode total cut depth").Float64Var(&pack.CutDepth)
	packCmd.Flag("pass-depth", "GCode depth per pass").Float64Var(&pack.PassDepth)
	packCmd.Flag("save-job", "Save items, settings and result as a job (name or path)").StringVar(&pack.SaveJob)

	compareCmd := kingpinApp.Command("compare", "Compare every heuristic with and without rotation")
	compareItems := compareCmd.Arg("items", "Item files (.csv, .xlsx, .dxf)").Required().ExistingFiles()

	jobsCmd := kingpinApp.Command("jobs", "List saved jobs")
	jobsDir := jobsCmd.Flag("dir", "Job directory").String()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		Heuristic:  heuristic,
		Strategy:   strategy,
		LogLevel:   logLevel,
		OutputDir:  outputDir,
	}
	for _, f := range []struct {
		value *int
		dst   **int
	}{
		{width, &overrides.Width},
		{height, &overrides.Height},
		{leftBorder, &overrides.LeftBorder},
		{bottomBorder, &overrides.BottomBorder},
		{maxBins, &overrides.MaxBins},
	} {
		if *f.value >= 0 {
			*f.dst = f.value
		}
	}
	if rotationSet {
		overrides.AllowRotation = rotation
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Debug("configuration loaded",
		zap.Int("width", cfg.Bin.Width),
		zap.Int("height", cfg.Bin.Height),
		zap.Bool("rotation", cfg.Bin.AllowRotation),
		zap.String("heuristic", cfg.Bin.Heuristic),
		zap.String("strategy", string(cfg.Strategy)),
	)

	switch command {
	case packCmd.FullCommand():
		pack.Items = *packItems
		err = runPack(cfg, logger, pack, os.Stdout)
	case compareCmd.FullCommand():
		err = runCompare(cfg, logger, *compareItems, os.Stdout)
	case jobsCmd.FullCommand():
		err = runJobs(*jobsDir, os.Stdout)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// packOptions holds the pack command's inputs and requested outputs.
type packOptions struct {
	Items     []string
	JobFile   string
	PDF       bool
	Labels    bool
	XLSX      bool
	DXF       bool
	PNG       bool
	PNGScale  float64
	MinOffcut int
	SaveJob   string

	GCode        bool
	ToolDiameter float64 // Zero keeps the configured value
	CutDepth     float64
	PassDepth    float64
}

// gcodeSettings applies the pack flags over the configured GCode settings.
func (o packOptions) gcodeSettings(base gcode.Settings) gcode.Settings {
	for _, f := range []struct {
		value float64
		dst   *float64
	}{
		{o.ToolDiameter, &base.ToolDiameter},
		{o.CutDepth, &base.CutDepth},
		{o.PassDepth, &base.PassDepth},
	} {
		if f.value > 0 {
			*f.dst = f.value
		}
	}
	return base
}

// newJob records a finished run so it can be reloaded later.
func newJob(name string, cfg config.Config, items []model.ItemSpec, result model.PackResult) model.Job {
	job := model.NewJob()
	job.Name = name
	job.Items = items
	job.Bin = cfg.Bin
	job.Strategy = cfg.Strategy
	job.MaxBins = cfg.MaxBins
	job.Result = &result
	return job
}
