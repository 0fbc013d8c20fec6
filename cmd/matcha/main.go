// Command matcha finds the start and end of every track in a collection,
// stores the labelled tracks together with CRT hits and match candidates as
// bundles, and optionally catalogues the run and renders per-track plots.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/matcha/internal/bundle"
	"github.com/banshee-data/matcha/internal/config"
	"github.com/banshee-data/matcha/internal/db"
	"github.com/banshee-data/matcha/internal/diagnostics"
	"github.com/banshee-data/matcha/internal/endpoint"
	"github.com/banshee-data/matcha/internal/fsutil"
	"github.com/banshee-data/matcha/internal/matching"
	"github.com/banshee-data/matcha/internal/monitoring"
	"github.com/banshee-data/matcha/internal/timeutil"
	"github.com/banshee-data/matcha/internal/version"
)

// Options holds the command-line configuration.
type Options struct {
	TracksPath  string
	CRTHitsPath string
	MatchesPath string
	ConfigPath  string
	ShowVersion bool

	Tuning *config.TuningConfig
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Invalid arguments: %v", err)
	}
	if opts.ShowVersion {
		fmt.Println(version.String())
		return
	}
	if opts.TracksPath == "" {
		log.Fatal("-in is required")
	}

	clock := timeutil.RealClock{}
	started := clock.Now()
	summary, err := run(context.Background(), opts)
	if err != nil {
		log.Fatalf("matcha failed: %v", err)
	}
	log.Printf("Processed %d tracks (%d with endpoints) into %s in %v, run %s",
		summary.Tracks, summary.Labelled, summary.Write.Dir, clock.Since(started), summary.RunID)
}

// parseFlags parses args. Tuning values come from -config when given, and
// any tuning flag set explicitly overrides the file.
func parseFlags(args []string) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("matcha", flag.ContinueOnError)

	fs.StringVar(&opts.TracksPath, "in", "", "Tracks input (.json or .bundle)")
	fs.StringVar(&opts.CRTHitsPath, "crthits", "", "CRT hits input (.json or .bundle)")
	fs.StringVar(&opts.MatchesPath, "matches", "", "Match candidates input (.json or .bundle); derived from CRT hits when omitted")
	fs.StringVar(&opts.ConfigPath, "config", "", "Tuning config file (.json or .yaml)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Print version and exit")

	outDir := fs.String("out", "", "Output directory for bundles (default \".\")")
	radius := fs.Float64("radius", endpoint.DefaultRadius, "Density neighbourhood radius")
	minRefine := fs.Int("min-refine", endpoint.DefaultMinRefineNeighbours, "Neighbours needed before a candidate is refined")
	workers := fs.Int("workers", 1, "Tracks processed in parallel")
	catalogue := fs.String("catalogue", "", "SQLite catalogue to record the run in")
	plots := fs.String("plots", "", "Directory for per-track PNG and HTML diagnostics")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Tuning = config.EmptyTuningConfig()
	if opts.ConfigPath != "" {
		cfg, err := config.LoadTuningConfig(opts.ConfigPath)
		if err != nil {
			return opts, err
		}
		opts.Tuning = cfg
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			opts.Tuning.OutputDir = outDir
		case "radius":
			opts.Tuning.Radius = radius
		case "min-refine":
			opts.Tuning.MinRefineNeighbours = minRefine
		case "workers":
			opts.Tuning.Workers = workers
		case "catalogue":
			opts.Tuning.CataloguePath = catalogue
		case "plots":
			opts.Tuning.PlotDir = plots
		}
	})
	if err := opts.Tuning.Validate(); err != nil {
		return opts, fmt.Errorf("invalid flags: %w", err)
	}
	return opts, nil
}

// Summary describes a completed run.
type Summary struct {
	RunID    string
	Tracks   int
	Labelled int
	Write    bundle.WriteResult
	Plots    []string
}

// run loads the inputs, labels every track with two or more points, writes
// the bundles and then the optional catalogue rows and plots. A track whose
// points cannot define an axis is left unset with a warning.
func run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	tuning := opts.Tuning
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}

	tracks, err := loadTracks(opts.TracksPath)
	if err != nil {
		return summary, err
	}
	summary.Tracks = len(tracks)

	var hits []matching.CRTHit
	if opts.CRTHitsPath != "" {
		if hits, err = loadCRTHits(opts.CRTHitsPath); err != nil {
			return summary, err
		}
	}

	finder, err := endpoint.NewFinder(tuning.EndpointConfig())
	if err != nil {
		return summary, err
	}

	labelled := make([]*matching.Track, 0, len(tracks))
	clouds := make([]endpoint.PointCloud, 0, len(tracks))
	for _, t := range tracks {
		if t.Len() < 2 {
			monitoring.Warnf("track %d has %d points, leaving its endpoints unset", t.ID, t.Len())
			continue
		}
		c, err := t.Cloud()
		if err != nil {
			return summary, err
		}
		labelled = append(labelled, t)
		clouds = append(clouds, c)
	}

	found, errs, err := finder.FindEach(ctx, clouds, tuning.GetWorkers())
	if err != nil {
		return summary, err
	}
	kept := labelled[:0]
	keptClouds := clouds[:0]
	results := found[:0]
	for i, t := range labelled {
		switch {
		case errors.Is(errs[i], endpoint.ErrDegenerateInput):
			monitoring.Warnf("track %d: %v, leaving its endpoints unset", t.ID, errs[i])
			continue
		case errs[i] != nil:
			return summary, fmt.Errorf("track %d: %w", t.ID, errs[i])
		}
		t.ApplyEndpoints(found[i].Pair)
		kept = append(kept, t)
		keptClouds = append(keptClouds, clouds[i])
		results = append(results, found[i])
	}
	labelled, clouds = kept, keptClouds
	summary.Labelled = len(labelled)

	var mcs []matching.MatchCandidate
	if opts.MatchesPath != "" {
		mcs, err = loadMatches(opts.MatchesPath)
	} else {
		mcs, err = matching.BestMatches(tracks, hits)
	}
	if err != nil {
		return summary, err
	}

	writer := bundle.NewWriter()
	summary.RunID = writer.RunID
	summary.Write, err = writer.WriteAll(tuning.GetOutputDir(), tracks, hits, mcs)
	if errors.Is(err, bundle.ErrEmptyCollection) {
		monitoring.Warnf("no match candidates to save: %v", err)
	} else if err != nil {
		return summary, err
	}

	if path := tuning.GetCataloguePath(); path != "" {
		if err := recordRun(path, opts.TracksPath, tuning, summary, labelled, results); err != nil {
			return summary, err
		}
	}

	if dir := tuning.GetPlotDir(); dir != "" {
		if summary.Plots, err = writePlots(fsutil.OSFileSystem{}, dir, labelled, clouds, results); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func recordRun(path, source string, tuning *config.TuningConfig, summary Summary, tracks []*matching.Track, results []endpoint.Result) error {
	catalogue, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer catalogue.Close()

	if _, err := catalogue.RecordRun(db.Run{
		ID:                  summary.RunID,
		Radius:              tuning.GetRadius(),
		MinRefineNeighbours: tuning.GetMinRefineNeighbours(),
		Source:              source,
		OutputDir:           summary.Write.Dir,
		TrackCount:          summary.Tracks,
	}); err != nil {
		return err
	}

	eps := make([]db.TrackEndpoint, len(tracks))
	for i, t := range tracks {
		eps[i] = db.NewTrackEndpoint(summary.RunID, t.ID, t.Len(), results[i])
	}
	return catalogue.RecordEndpoints(eps)
}

func writePlots(fsys fsutil.FileSystem, dir string, tracks []*matching.Track, clouds []endpoint.PointCloud, results []endpoint.Result) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}
	var files []string
	for i, t := range tracks {
		png, err := diagnostics.PlotDepositionProfile(dir, t.ID, clouds[i], results[i])
		if err != nil {
			return files, err
		}
		files = append(files, png)

		htmlPath := filepath.Join(dir, fmt.Sprintf("track_%06d.html", t.ID))
		var buf bytes.Buffer
		if err := diagnostics.RenderTrackHTML(&buf, t.ID, clouds[i], results[i].Pair); err != nil {
			return files, fmt.Errorf("failed to render %s: %w", htmlPath, err)
		}
		if err := fsys.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
			return files, err
		}
		files = append(files, htmlPath)
	}
	return files, nil
}
