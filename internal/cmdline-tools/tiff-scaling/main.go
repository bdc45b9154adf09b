// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Reads the pixel scaling of SEM/EDS micrographs and writes it back as ImageJ tags, optionally with
// cropped and scalebar variants. Works on a single file or a directory, locally or on S3:
//
//	tiff-scaling -path ./scans -scalebar -crop
//	tiff-scaling -path s3://bucket/run12/ -outdir calibrated
//	tiff-scaling -path ./scans/a.tif -set 2.5 -unit nm
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fibtoolbox/tiffscale/core/batch"
	"github.com/fibtoolbox/tiffscale/core/config"
	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/scaling"
	"github.com/getsentry/sentry-go"
)

var t0 = time.Now()

type cmdFlags struct {
	path        string
	outDir      string
	scalebar    bool
	crop        bool
	set         float64
	unit        string
	verbose     bool
	configPath  string
	workers     int
	compression string
	metrics     string
	summary     bool
	skip        bool
}

func main() {
	fmt.Printf("Started: %v\n", t0.String())

	var f cmdFlags
	flag.StringVar(&f.path, "path", "", "TIFF file or directory to process, local or s3://bucket/path")
	flag.StringVar(&f.outDir, "outdir", "", "Name of the output directory, created next to the input directory")
	flag.BoolVar(&f.scalebar, "scalebar", false, "Also write a copy with a scalebar drawn on it")
	flag.BoolVar(&f.crop, "crop", false, "Also write a copy cropped to the image content, without the instrument info strip")
	flag.Float64Var(&f.set, "set", 0, "Instead of reading the scaling, set it to this many units per pixel")
	flag.StringVar(&f.unit, "unit", "nm", "Unit for -set")
	flag.BoolVar(&f.verbose, "verbose", false, "Debug logging")
	flag.StringVar(&f.configPath, "config", "", "Optional JSON config file")
	flag.IntVar(&f.workers, "workers", 0, "Files processed in parallel, 0 means one less than the CPU count")
	flag.StringVar(&f.compression, "compression", "", "Output compression: deflate or none")
	flag.StringVar(&f.metrics, "metrics", "", "Write prometheus metrics to this file when done")
	flag.BoolVar(&f.summary, "summary", false, "Write a JSON summary into the output directory")
	flag.BoolVar(&f.skip, "skip-existing", false, "Don't reprocess files that already have an output")

	flag.Parse()

	if len(f.path) <= 0 {
		log.Fatalf("Parameter: path was empty")
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	setFlags := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { setFlags[fl.Name] = true })
	applyFlags(&cfg, f, setFlags)

	err = cfg.Validate()
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	// Log lines go to stderr, per-file results and the summary stay on stdout
	iLog := logger.NewStdErrLogger(cfg.Level())
	var theLog logger.ILogger = iLog

	if len(cfg.SentryDSN) > 0 {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.EnvironmentName,
		})
		if err != nil {
			log.Fatalf("Sentry init failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)

		theLog = &logger.SentryLogger{Next: iLog}
	}

	failed, err := run(f, cfg, theLog)
	if err != nil {
		theLog.Errorf("%v", err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}

	fmt.Printf("Finished in %v\n", time.Since(t0).Round(time.Millisecond))
	if failed > 0 {
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}

// Flags given on the command line win over config file and env vars
func applyFlags(cfg *config.Config, f cmdFlags, setFlags map[string]bool) {
	if setFlags["outdir"] {
		cfg.OutputDirName = f.outDir
	}
	if setFlags["scalebar"] {
		cfg.WriteScalebar = f.scalebar
	}
	if setFlags["crop"] {
		cfg.WriteCropped = f.crop
	}
	if setFlags["workers"] {
		cfg.Workers = int32(f.workers)
	}
	if setFlags["compression"] {
		cfg.Compression = f.compression
	}
	if setFlags["metrics"] {
		cfg.MetricsFile = f.metrics
	}
	if setFlags["skip-existing"] {
		cfg.SkipExisting = f.skip
	}
	if f.verbose {
		cfg.LogLevel = logger.LogDebug.String()
	}
}

// Returns the number of files that failed
func run(f cmdFlags, cfg config.Config, iLog logger.ILogger) (int, error) {
	t, err := openTarget(f.path, cfg.AWSRegion)
	if err != nil {
		return 0, err
	}

	p, err := batch.NewProcessor(t.fs, t.root, cfg, nil, iLog)
	if err != nil {
		return 0, err
	}

	names := t.names
	if len(names) <= 0 {
		names, err = p.ListTIFFs(t.dir)
		if err != nil {
			return 0, err
		}
	}
	iLog.Infof("Found %v TIFF files in %v", len(names), f.path)

	fn := p.ProcessFile
	if f.set > 0 {
		record, err := scaling.Manual(f.set, f.unit)
		if err != nil {
			return 0, err
		}
		fn = func(dir string, name string) batch.FileResult {
			return p.SetScaling(dir, name, record)
		}
	}

	results := p.Run(t.dir, names, fn)

	failed := 0
	for _, r := range results {
		printResult(r)
		if r.Outcome == batch.OutcomeFailed {
			failed++
		}
	}

	summary := batch.Summarise(results)
	for _, line := range summary.Lines() {
		fmt.Println(line)
	}

	if f.summary {
		summaryPath, err := p.WriteSummary(t.dir, summary)
		if err != nil {
			iLog.Errorf("Failed to write summary: %v", err)
		} else {
			iLog.Infof("Summary written to %v", summaryPath)
		}
	}

	if len(cfg.MetricsFile) > 0 {
		err = p.Metrics().WriteToTextfile(cfg.MetricsFile)
		if err != nil {
			iLog.Errorf("Failed to write metrics: %v", err)
		}
	}

	return failed, nil
}

func printResult(r batch.FileResult) {
	switch r.Outcome {
	case batch.OutcomeFailed:
		fmt.Printf("%v: FAILED: %v\n", r.Name, r.Error)
	case batch.OutcomeSkipped:
		fmt.Printf("%v: skipped\n", r.Name)
	default:
		area, areaUnit := r.Scaling.PixelArea(4)
		fmt.Printf("%v: %v, pixel area %v %v\n", r.Name, r.Scaling, area, areaUnit)
	}

	for _, w := range r.Warnings {
		fmt.Printf("  WARNING: %v\n", w)
	}
}
