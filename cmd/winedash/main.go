package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spektr-org/winedash/charts"
	"github.com/spektr-org/winedash/config"
	"github.com/spektr-org/winedash/dataset"
	"github.com/spektr-org/winedash/helpers"
	"github.com/spektr-org/winedash/layout"
	"github.com/spektr-org/winedash/render"
	"github.com/spektr-org/winedash/schema"
	"github.com/spektr-org/winedash/server"
	"github.com/spektr-org/winedash/snapshot"
)

// ============================================================================
// WINEDASH CLI — Interactive wine dataset dashboard
// ============================================================================

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// ── Flags ─────────────────────────────────────────────────────────────
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	filePath := flag.String("file", "", "Serve a CSV file instead of the configured dataset source")
	label := flag.String("label", cfg.DatasetLabel, "Category column of the CSV (inferred when empty)")
	discover := flag.Bool("discover", false, "Print the detected dataset schema and exit")
	format := flag.String("format", "json", "Schema output format: json, pretty")
	outFile := flag.String("out", "", "Write -discover output to file instead of stdout")
	exportDir := flag.String("export", "", "Write the default charts as PNG + CSV into DIR and exit")
	snapshotFile := flag.String("snapshot", "", "Save a full-page PNG of the dashboard to FILE and exit (needs Chrome)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Winedash — Interactive wine dataset dashboard

Usage:
  winedash                                   serve the embedded wine dataset on :8050
  winedash --addr :9000
  winedash --file wines.csv --label cultivar
  winedash --discover --format pretty
  winedash --export ./charts
  winedash --snapshot dashboard.png

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment (.env is read when present):
  HTTP_ADDR             Listen address (default :8050)
  DATASET_SOURCE        embedded | csv | postgres (default embedded)
  DATASET_PATH          CSV path when DATASET_SOURCE=csv
  DATASET_LABEL         Category column for CSV sources
  POSTGRES_*            HOST, PORT, USER, PASSWORD, DB, SSLMODE, TABLE
  HISTOGRAM_BINS        Histogram bin count (default 50)
  CHART_HEIGHT          Chart height in pixels (default 400)
  SESSION_TTL_MINUTES   Idle session lifetime (default 30)
  CHROME_BIN            Browser used by --snapshot
  LOG_DEBUG             Verbose request logging

Examples:
  # Explore a different labelled dataset
  winedash --file iris.csv --label species

  # Chart images for a report
  winedash --export ./out
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("winedash %s\n", version)
		os.Exit(0)
	}

	if *filePath != "" {
		cfg.DatasetSource = config.SourceCSV
		cfg.DatasetPath = *filePath
	}
	cfg.DatasetLabel = *label

	logger := helpers.NewLogger(cfg.LogDebug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Schema ────────────────────────────────────────────────────────────
	raw, sch, err := resolveSchema(cfg)
	if err != nil {
		fatalf("Schema: %v", err)
	}
	log.Printf("🔍 Schema: %s (label %q, %d features, %d skipped)",
		sch.Name, sch.Label.Key, len(sch.Features), len(sch.SkippedColumns))

	// ── Discover mode ─────────────────────────────────────────────────────
	if *discover {
		writer := os.Stdout
		if *outFile != "" {
			f, err := os.Create(*outFile)
			if err != nil {
				fatalf("Failed to create output file: %v", err)
			}
			defer f.Close()
			writer = f
		}
		writeJSON(writer, sch, *format)
		if *outFile != "" {
			log.Printf("📄 Schema written to %s", *outFile)
		}
		return
	}

	// ── Dataset ───────────────────────────────────────────────────────────
	ds, err := loadDataset(ctx, cfg, raw, *sch, logger)
	if err != nil {
		fatalf("Dataset: %v", err)
	}
	log.Printf("🍷 Loaded %d samples from %s (%d categories)", ds.Len(), ds.Source, len(ds.Categories))

	dash, err := server.NewDashboard(ds, layout.DefaultProfile(),
		charts.WithBins(cfg.HistogramBins),
		charts.WithHeight(cfg.ChartHeight),
	)
	if err != nil {
		fatalf("Dashboard: %v", err)
	}

	// ── Export mode ───────────────────────────────────────────────────────
	if *exportDir != "" {
		n, err := exportCharts(dash, *exportDir)
		if err != nil {
			fatalf("Export: %v", err)
		}
		log.Printf("📊 Wrote %d charts to %s", n, *exportDir)
		return
	}

	srv := server.New(dash, dash.NewStore(cfg.SessionTTL), logger)

	// ── Snapshot mode ─────────────────────────────────────────────────────
	if *snapshotFile != "" {
		if err := takeSnapshot(ctx, srv, cfg, *snapshotFile); err != nil {
			fatalf("Snapshot: %v", err)
		}
		log.Printf("📸 Dashboard saved to %s", *snapshotFile)
		return
	}

	// ── Serve ─────────────────────────────────────────────────────────────
	log.Printf("🚀 Winedash %s on %s", version, *addr)
	if err := srv.Run(ctx, *addr); err != nil {
		fatalf("Server: %v", err)
	}
}

// ============================================================================
// DATASET
// ============================================================================

// resolveSchema returns the raw CSV (nil for Postgres) and the schema it
// should be read with.
func resolveSchema(cfg *config.Config) ([]byte, *schema.Config, error) {
	switch cfg.DatasetSource {
	case config.SourceEmbedded:
		sch := dataset.WineSchema()
		return dataset.EmbeddedCSV(), &sch, nil

	case config.SourceCSV:
		if cfg.DatasetPath == "" {
			return nil, nil, errors.New("DATASET_PATH (or --file) is required for csv sources")
		}
		data, err := os.ReadFile(cfg.DatasetPath)
		if err != nil {
			return nil, nil, err
		}
		opts := schema.DefaultDiscoverOptions()
		opts.Label = cfg.DatasetLabel
		opts.Name = filepath.Base(cfg.DatasetPath)
		sch, err := schema.DiscoverFromCSV(data, opts)
		if err != nil {
			return nil, nil, err
		}
		return data, sch, nil

	case config.SourcePostgres:
		sch := dataset.WineSchema()
		return nil, &sch, nil
	}
	return nil, nil, fmt.Errorf("unknown DATASET_SOURCE %q", cfg.DatasetSource)
}

func loadDataset(ctx context.Context, cfg *config.Config, raw []byte, sch schema.Config, logger *helpers.Logger) (*dataset.Dataset, error) {
	switch cfg.DatasetSource {
	case config.SourceEmbedded:
		return dataset.Load()
	case config.SourceCSV:
		return dataset.LoadCSV(filepath.Base(cfg.DatasetPath), raw, sch)
	case config.SourcePostgres:
		retry := helpers.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
		return dataset.LoadPostgres(ctx, cfg.DSN(), cfg.PostgresTable, sch, retry)
	}
	return nil, fmt.Errorf("unknown DATASET_SOURCE %q", cfg.DatasetSource)
}

// ============================================================================
// EXPORT & SNAPSHOT
// ============================================================================

func exportCharts(dash *server.Dashboard, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	specs, err := dash.DefaultSpecs()
	if err != nil {
		return 0, err
	}
	for _, target := range dash.Page.ChartTargets() {
		spec := specs[target]
		if err := writeFile(filepath.Join(dir, target+".png"), func(f *os.File) error {
			return render.Render(f, spec, render.FormatPNG)
		}); err != nil {
			return 0, err
		}
		if err := writeFile(filepath.Join(dir, target+".csv"), func(f *os.File) error {
			return charts.WriteCSV(f, spec)
		}); err != nil {
			return 0, err
		}
	}
	return len(specs), nil
}

func takeSnapshot(ctx context.Context, srv *server.Server, cfg *config.Config, path string) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	srvCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(srvCtx, ln) }()
	defer func() {
		cancel()
		<-done
	}()

	png, err := snapshot.Capture(ctx, snapshot.Options{
		URL:       "http://" + ln.Addr().String() + "/",
		ChromeBin: cfg.ChromeBin,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0o644)
}

// ============================================================================
// OUTPUT
// ============================================================================

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(w *os.File, v interface{}, format string) {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
