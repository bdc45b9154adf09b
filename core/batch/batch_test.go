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

package batch

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fibtoolbox/tiffscale/core/awsutil"
	"github.com/fibtoolbox/tiffscale/core/config"
	"github.com/fibtoolbox/tiffscale/core/fileaccess"
	"github.com/fibtoolbox/tiffscale/core/imageedit"
	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/scaling"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/google/go-cmp/cmp"
)

func grayTIFF(w int, h int, upd tiffmeta.Update) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for c := range img.Pix {
		img.Pix[c] = 40
	}

	data, err := tiffmeta.EncodeImage(img, tiffmeta.CompressionNone, upd)
	if err != nil {
		panic(err)
	}
	return data
}

// SEM image, 2.5 nm/px, with an info strip below contentHeight
func feiTIFF(w int, h int, contentHeight int) []byte {
	block := fmt.Sprintf("[Scan]\r\nPixelWidth=2.5e-009\r\nPixelHeight=2.5e-009\r\n[Image]\r\nResolutionX=%v\r\nResolutionY=%v\r\n", w, contentHeight)
	return grayTIFF(w, h, tiffmeta.Update{Strings: map[tiffmeta.Tag]string{tiffmeta.TagFEIHelios: block}})
}

func plainTIFF(w int, h int) []byte {
	return grayTIFF(w, h, tiffmeta.Update{})
}

func printOutput(fs fileaccess.FileAccess, root string, outPath string) {
	data, err := fs.ReadObject(root, outPath)
	if err != nil {
		fmt.Println(outPath, err)
		return
	}

	img, err := tiffmeta.DecodeImage(data)
	if err != nil {
		fmt.Println(outPath, err)
		return
	}

	rec, err := scaling.DefaultChain().ResolveFile(data, &logger.NullLogger{})
	fmt.Printf("%v|%v|%v|%v\n", outPath, img.Bounds().Size(), rec, err)
}

func Example_processLocalDirectory() {
	root, err := os.MkdirTemp("", "tiffscale-batch")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(root)

	fs := &fileaccess.FSAccess{}
	fs.WriteObject(root, "scans/a.tif", feiTIFF(200, 160, 150))
	fs.WriteObject(root, "scans/b.TIF", plainTIFF(64, 48))
	fs.WriteObject(root, "scans/notes.txt", []byte("not an image"))
	fs.WriteObject(root, "scans/sub/c.tif", plainTIFF(8, 8))

	log := &logger.NullLogger{}
	cfg := config.Defaults()
	cfg.WriteCropped = true
	cfg.WriteScalebar = true
	cfg.Workers = 2

	fonts, err := imageedit.LoadFonts(fs, nil, log)
	fmt.Println(err)

	p, err := NewProcessor(fs, root, cfg, fonts, log)
	fmt.Println(err)

	names, err := p.ListTIFFs("scans")
	fmt.Println(names, err)

	results := p.Run("scans", names, p.ProcessFile)
	for _, r := range results {
		fmt.Printf("%v|%v|%v|%v|%v\n", r.Name, r.Outcome, r.Outputs, r.Warnings, r.Error)
	}

	printOutput(fs, root, "scaled_scans/a.tif")
	printOutput(fs, root, "cut_scans/a.tif")
	printOutput(fs, root, "nsb_scans/a.tif")
	printOutput(fs, root, "scaled_scans/b.TIF")

	fmt.Println(strings.Join(Summarise(results).Lines(), "\n"))

	// Running again with SkipExisting leaves everything alone
	cfg.SkipExisting = true
	p, _ = NewProcessor(fs, root, cfg, fonts, log)
	for _, r := range p.Run("scans", names, p.ProcessFile) {
		fmt.Printf("%v|%v|%v\n", r.Name, r.Outcome, r.Outputs)
	}

	// Output:
	// <nil>
	// <nil>
	// [a.tif b.TIF] <nil>
	// a.tif|scaled|[scaled_scans/a.tif cut_scans/a.tif nsb_scans/a.tif]|[]|
	// b.TIF|uncalibrated|[scaled_scans/b.TIF]|[no scalebar drawn, image is not calibrated]|
	// scaled_scans/a.tif|(200,160)|2.5 x 2.5 nm/px (F.A. FIB Toolbox)|<nil>
	// cut_scans/a.tif|(200,150)|2.5 x 2.5 nm/px (F.A. FIB Toolbox)|<nil>
	// nsb_scans/a.tif|(200,150)|2.5 x 2.5 nm/px (F.A. FIB Toolbox)|<nil>
	// scaled_scans/b.TIF|(64,48)|1 x 1 px/px (-)|<nil>
	// 2 files
	//   scaled: 1
	//   uncalibrated: 1
	//   from FEI-SEM: 1
	//   warnings: 1
	// a.tif|skipped|[]
	// b.TIF|skipped|[]
}

func Example_setScalingOnS3() {
	m := awsutil.NewMemS3()
	m.Put("bucket", "in/x.tif", plainTIFF(32, 24))
	fs := fileaccess.MakeS3Access(m)
	log := &logger.NullLogger{}

	rec, err := scaling.Manual(0.5, "um")
	fmt.Println(rec, err)

	cfg := config.Defaults()
	p, err := NewProcessor(fs, "bucket", cfg, nil, log)
	fmt.Println(err)

	r := p.SetScaling("in", "x.tif", rec)
	fmt.Printf("%v|%v|%v|%v\n", r.Outcome, r.Outputs, r.Warnings, r.Error)
	printOutput(fs, "bucket", "in/scaled_x.tif")

	cfg.OutputDirName = "calibrated"
	p, _ = NewProcessor(fs, "bucket", cfg, nil, log)
	r = p.SetScaling("in", "x.tif", rec)
	fmt.Printf("%v|%v\n", r.Outcome, r.Outputs)

	r = p.SetScaling("in", "missing.tif", rec)
	fmt.Printf("%v|%v\n", r.Outcome, strings.HasPrefix(r.Error, "failed to read in/missing.tif"))

	fmt.Println(m.Keys("bucket"))

	// Output:
	// 0.5 x 0.5 µm/px (none) <nil>
	// <nil>
	// scaled|[in/scaled_x.tif]|[]|
	// in/scaled_x.tif|(32,24)|0.5 x 0.5 µm/px (F.A. FIB Toolbox)|<nil>
	// scaled|[in/calibrated/x.tif]
	// failed|true
	// [in/calibrated/x.tif in/scaled_x.tif in/x.tif]
}

func Example_processS3() {
	m := awsutil.NewMemS3()
	m.Put("bucket", "runs/7/img1.tif", feiTIFF(40, 30, 30))
	m.Put("bucket", "runs/7/img2.tiff", []byte("this is not really a TIFF file at all"))
	m.Put("bucket", "runs/7/readme.md", []byte("hi"))
	m.PageSize = 1

	fs := fileaccess.MakeS3Access(m)
	p, err := NewProcessor(fs, "bucket", config.Defaults(), nil, &logger.NullLogger{})
	fmt.Println(err)

	names, err := p.ListTIFFs("runs/7/")
	fmt.Println(names, err)

	for _, r := range p.Run("runs/7/", names, p.ProcessFile) {
		fmt.Printf("%v|%v|%v|%v\n", r.Name, r.Outcome, r.Outputs, r.Error)
	}

	fmt.Println(m.Keys("bucket"))

	// Output:
	// <nil>
	// [img1.tif img2.tiff] <nil>
	// img1.tif|scaled|[runs/scaled_7/img1.tif]|
	// img2.tiff|failed|[]|failed to read tags of runs/7/img2.tiff: not a valid TIFF file
	// [runs/7/img1.tif runs/7/img2.tiff runs/7/readme.md runs/scaled_7/img1.tif]
}

func Example_outputDirs() {
	cfg := config.Defaults()
	p, _ := NewProcessor(&fileaccess.FSAccess{}, "/data", cfg, nil, &logger.NullLogger{})

	fmt.Println(p.OutputDirsFor("scans"))
	fmt.Println(p.OutputDirsFor("a/b/scans/"))
	fmt.Println(p.OutputDirsFor(""))

	for _, f := range []string{"a/scans/x.tif", "a/scaled_scans/x.tif", "a/cut_scans/x.tif", "a/nsb_scans/x.tif", "scaled_x.tif", "x.tif", "a/scans/scaled_x.tif"} {
		fmt.Printf("%v: %v\n", f, p.IsOutputPath(f))
	}

	cfg.OutputDirName = "done"
	p, _ = NewProcessor(&fileaccess.FSAccess{}, "/data", cfg, nil, &logger.NullLogger{})
	fmt.Println(p.OutputDirsFor("a/scans"))
	fmt.Println(p.IsOutputPath("a/done/x.tif"))

	// Output:
	// {scaled_scans cut_scans nsb_scans}
	// {a/b/scaled_scans a/b/cut_scans a/b/nsb_scans}
	// {scaled_root cut_root nsb_root}
	// a/scans/x.tif: false
	// a/scaled_scans/x.tif: true
	// a/cut_scans/x.tif: true
	// a/nsb_scans/x.tif: true
	// scaled_x.tif: true
	// x.tif: false
	// a/scans/scaled_x.tif: true
	// {a/done a/cut_scans a/nsb_scans}
	// true
}

func Example_isTIFFName() {
	for _, n := range []string{"a.tif", "a.TIF", "b.tiff", "c.TiFf", "d.png", "tif", "e.tif.bak"} {
		fmt.Printf("%v:%v ", n, IsTIFFName(n))
	}
	fmt.Println()

	// Output:
	// a.tif:true a.TIF:true b.tiff:true c.TiFf:true d.png:false tif:false e.tif.bak:false
}

func TestRunIsolatesPanics(t *testing.T) {
	log := &logger.MemLogger{}
	p, err := NewProcessor(&fileaccess.FSAccess{}, t.TempDir(), config.Defaults(), nil, log)
	if err != nil {
		t.Fatal(err)
	}

	names := []string{"1", "2", "3", "4", "5"}
	results := p.Run("dir", names, func(dir string, name string) FileResult {
		if name == "3" {
			panic("bad file")
		}
		return FileResult{Name: name, Outcome: OutcomeScaled}
	})

	want := []FileResult{
		{Name: "1", Outcome: OutcomeScaled},
		{Name: "2", Outcome: OutcomeScaled},
		{Name: "3", Outcome: OutcomeFailed, Error: "panic: bad file"},
		{Name: "4", Outcome: OutcomeScaled},
		{Name: "5", Outcome: OutcomeScaled},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if !log.Contains("Processing dir/3 panicked: bad file") {
		t.Errorf("panic not logged: %v", log.Lines())
	}
}

func TestListMissingDir(t *testing.T) {
	p, err := NewProcessor(&fileaccess.FSAccess{}, t.TempDir(), config.Defaults(), nil, &logger.NullLogger{})
	if err != nil {
		t.Fatal(err)
	}

	names, err := p.ListTIFFs("nothing-here")
	if err != nil || len(names) != 0 {
		t.Errorf("got %v, %v", names, err)
	}
}

func TestNewProcessorRejectsBadConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Compression = "jpeg"
	_, err := NewProcessor(&fileaccess.FSAccess{}, "", cfg, nil, &logger.NullLogger{})
	if err == nil || err.Error() != "unknown compression: jpeg" {
		t.Errorf("got %v", err)
	}
}

func TestMetricsTextfile(t *testing.T) {
	root := t.TempDir()
	fs := &fileaccess.FSAccess{}
	fs.WriteObject(root, "in/a.tif", feiTIFF(40, 30, 30))
	fs.WriteObject(root, "in/b.tif", plainTIFF(10, 10))

	cfg := config.Defaults()
	cfg.Compression = "none"
	p, err := NewProcessor(fs, root, cfg, nil, &logger.NullLogger{})
	if err != nil {
		t.Fatal(err)
	}

	p.Run("in", []string{"a.tif", "b.tif", "c.tif"}, p.ProcessFile)

	metricsPath := filepath.Join(root, "metrics.prom")
	err = p.Metrics().WriteToTextfile(metricsPath)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range []string{
		`tiffscale_files_total{outcome="scaled"} 1`,
		`tiffscale_files_total{outcome="uncalibrated"} 1`,
		`tiffscale_files_total{outcome="failed"} 1`,
		`tiffscale_scaling_source_total{editor="FEI-SEM"} 1`,
		`tiffscale_file_duration_seconds_count 3`,
	} {
		if !strings.Contains(string(data), line) {
			t.Errorf("metrics missing %q:\n%v", line, string(data))
		}
	}
}

func TestWriteSummary(t *testing.T) {
	root := t.TempDir()
	fs := &fileaccess.FSAccess{}
	p, err := NewProcessor(fs, root, config.Defaults(), nil, &logger.NullLogger{})
	if err != nil {
		t.Fatal(err)
	}

	results := []FileResult{
		{Name: "a.tif", Outcome: OutcomeScaled, Scaling: scaling.Record{X: 2, Y: 2, Unit: "nm", Editor: scaling.EditorFEI}},
		{Name: "b.tif", Outcome: OutcomeFailed, Scaling: scaling.EmptyRecord(), Error: "broken"},
	}

	summaryPath, err := p.WriteSummary("scans", Summarise(results))
	if err != nil {
		t.Fatal(err)
	}
	if summaryPath != "scaled_scans/"+SummaryFileName {
		t.Errorf("summary path %v", summaryPath)
	}

	var read Summary
	err = fs.ReadJSON(root, summaryPath, &read, false)
	if err != nil {
		t.Fatal(err)
	}

	want := Summary{
		Total:     2,
		ByOutcome: map[Outcome]int{OutcomeScaled: 1, OutcomeFailed: 1},
		ByEditor:  map[string]int{scaling.EditorFEI: 1},
		Files:     results,
	}
	if diff := cmp.Diff(want, read); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// 16 bit SEM images are stretched to 8 bit before the scalebar goes on
func TestScalebarOnGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 200, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 200; x++ {
			img.SetGray16(x, y, color.Gray16{Y: 1000})
		}
	}
	img.SetGray16(3, 3, color.Gray16{Y: 4000})

	block := "[Scan]\r\nPixelWidth=2.5e-009\r\nPixelHeight=2.5e-009\r\n[Image]\r\nResolutionX=200\r\nResolutionY=150\r\n"
	data, err := tiffmeta.EncodeImage(img, tiffmeta.CompressionDeflate, tiffmeta.Update{Strings: map[tiffmeta.Tag]string{tiffmeta.TagFEIHelios: block}})
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	fs := &fileaccess.FSAccess{}
	fs.WriteObject(root, "sem/deep.tif", data)

	cfg := config.Defaults()
	cfg.WriteScalebar = true
	p, err := NewProcessor(fs, root, cfg, nil, &logger.NullLogger{})
	if err != nil {
		t.Fatal(err)
	}

	result := p.ProcessFile("sem", "deep.tif")
	if result.Outcome != OutcomeScaled || len(result.Warnings) != 0 {
		t.Fatalf("got %+v", result)
	}
	if diff := cmp.Diff([]string{"scaled_sem/deep.tif", "nsb_sem/deep.tif"}, result.Outputs); diff != "" {
		t.Errorf("Outputs mismatch (-want +got):\n%s", diff)
	}

	for _, out := range result.Outputs {
		written, err := fs.ReadObject(root, out)
		if err != nil {
			t.Fatal(err)
		}
		tags, err := tiffmeta.Read(written)
		if err != nil {
			t.Fatal(err)
		}
		if unit, ok := tags.Short(tiffmeta.TagResolutionUnit); !ok || unit != tiffmeta.ResolutionUnitNone {
			t.Errorf("%v: ResolutionUnit %v %v", out, unit, ok)
		}
	}

	// Scaled copy keeps the 16 bit pixels
	scaled, _ := fs.ReadObject(root, "scaled_sem/deep.tif")
	scaledImg, err := tiffmeta.DecodeImage(scaled)
	if err != nil {
		t.Fatal(err)
	}
	if g, ok := scaledImg.(*image.Gray16); !ok || g.Gray16At(3, 3).Y != 4000 {
		t.Errorf("scaled copy is %T", scaledImg)
	}

	withBar, _ := fs.ReadObject(root, "nsb_sem/deep.tif")
	barImg, err := tiffmeta.DecodeImage(withBar)
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := barImg.(*image.Gray)
	if !ok {
		t.Fatalf("scalebar image is %T, expected 8 bit grey", barImg)
	}
	if gray.Bounds().Dx() != 200 || gray.Bounds().Dy() != 150 {
		t.Errorf("scalebar image bounds %v, info strip not cropped", gray.Bounds())
	}

	// 1000 of a 4000 maximum
	if v := gray.GrayAt(0, 0).Y; v != 63 {
		t.Errorf("background stretched to %v", v)
	}
	if v := gray.GrayAt(3, 3).Y; v != 255 {
		t.Errorf("brightest pixel stretched to %v", v)
	}

	bar, _, err := imageedit.Layout(200, 150, result.Scaling)
	if err != nil {
		t.Fatal(err)
	}
	for x := bar.Bar.Min.X; x < bar.Bar.Max.X; x++ {
		if v := gray.GrayAt(x, bar.Bar.Min.Y).Y; v != 255 {
			t.Fatalf("bar pixel %v,%v is %v", x, bar.Bar.Min.Y, v)
		}
	}
}
