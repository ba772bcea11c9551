package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
	"github.com/ironsheep/answer-sheet-roi/internal/pipeline"
)

// newFlags registers the config flags and parses args.
func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("sheet-roi", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags %v: %v", args, err)
	}
	return fs
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.Input.Dir != "top_halves" || cfg.Output.Dir != "results" || cfg.Output.CSV != "boxes.csv" {
		t.Errorf("unexpected paths: %+v %+v", cfg.Input, cfg.Output)
	}
	if !cfg.Output.CRLF {
		t.Error("CRLF should default to true")
	}
	if cfg.Template.Confidence != 0.25 || cfg.Template.Marker != "2023" {
		t.Errorf("unexpected marker settings: %v %q", cfg.Template.Confidence, cfg.Template.Marker)
	}
	if len(cfg.Template.Regions) != 2 || cfg.Template.Regions[0].Name != "roll" || cfg.Template.Regions[1].OffsetX != 290 {
		t.Errorf("unexpected regions: %+v", cfg.Template.Regions)
	}
	if cfg.Debug {
		t.Error("debug should default to false")
	}
	if cfg.File != "" {
		t.Errorf("no config file expected, got %q", cfg.File)
	}
}

func TestLoad_DefaultsMatchPipeline(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tmpl, err := cfg.PipelineTemplate()
	if err != nil {
		t.Fatalf("PipelineTemplate failed: %v", err)
	}
	want := pipeline.DefaultTemplate()
	if tmpl.ReferenceBox != want.ReferenceBox || tmpl.HeightPad != want.HeightPad {
		t.Errorf("reference: got %v+%d, want %v+%d", tmpl.ReferenceBox, tmpl.HeightPad, want.ReferenceBox, want.HeightPad)
	}
	for i, r := range want.Regions {
		if tmpl.Regions[i] != r {
			t.Errorf("region %d: got %+v, want %+v", i, tmpl.Regions[i], r)
		}
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SHEET_ROI_OUTPUT_CSV", "coords.csv")
	t.Setenv("SHEET_ROI_TEMPLATE_CONFIDENCE", "0.5")
	t.Setenv("SHEET_ROI_OCR_LEVEL", "word")
	t.Setenv("SHEET_ROI_LOG_LEVEL", "debug")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.CSV != "coords.csv" {
		t.Errorf("output.csv: got %q", cfg.Output.CSV)
	}
	if cfg.Template.Confidence != 0.5 {
		t.Errorf("template.confidence: got %v", cfg.Template.Confidence)
	}
	if cfg.OCR.Level != "word" {
		t.Errorf("ocr.level: got %q", cfg.OCR.Level)
	}
	if !cfg.Debug {
		t.Error("SHEET_ROI_LOG_LEVEL=debug should enable debug")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, "layout.yaml", `
input:
  dir: scans
output:
  crlf: false
template:
  marker: "2024"
  color: "#ff0000"
  apply_scale: true
  regions:
    - name: roll
      offset_x: -90
      offset_y: 125
      width: 200
`)

	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.File != path {
		t.Errorf("File: got %q, want %q", cfg.File, path)
	}
	if cfg.Input.Dir != "scans" || cfg.Output.CRLF {
		t.Errorf("file values not applied: %+v %+v", cfg.Input, cfg.Output)
	}
	if cfg.Output.CSV != "boxes.csv" {
		t.Errorf("unset keys should keep defaults, got %q", cfg.Output.CSV)
	}
	if len(cfg.Template.Regions) != 1 || cfg.Template.Regions[0].Width != 200 {
		t.Errorf("regions: got %+v", cfg.Template.Regions)
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		t.Fatalf("PipelineOptions failed: %v", err)
	}
	if opts.Template.Marker != "2024" || !opts.Template.ApplyScale {
		t.Errorf("template: got %+v", opts.Template)
	}
	if opts.Template.Regions[0].Offset != geometry.Pt(-90, 125) {
		t.Errorf("offset: got %v", opts.Template.Regions[0].Offset)
	}
	if opts.Style.Color != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("color: got %v", opts.Style.Color)
	}
}

func TestLoad_ConfigFileMissing(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !strings.Contains(err.Error(), "absent.yaml") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "c.json", `{"input": {"dir": "from-file"}, "template": {"marker": "from-file"}}`)
	t.Setenv("SHEET_ROI_INPUT_DIR", "from-env")

	cfg, err := Load(newFlags(t, "--config", path, "--marker", "from-flag"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Input.Dir != "from-env" {
		t.Errorf("env should beat file: got %q", cfg.Input.Dir)
	}
	if cfg.Template.Marker != "from-flag" {
		t.Errorf("flag should beat file: got %q", cfg.Template.Marker)
	}
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load(newFlags(t,
		"--input", "in", "--output", "out", "--csv", "out.csv",
		"--confidence", "0.4", "--lang", "deu", "--tessdata", "/opt/tessdata",
		"--level", "block", "--preprocess", "threshold", "--debug",
	))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	ocrOpts := cfg.OCROptions()
	if ocrOpts.Language != "deu" || ocrOpts.TessdataPrefix != "/opt/tessdata" || ocrOpts.Level != "block" {
		t.Errorf("ocr options: got %+v", ocrOpts)
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		t.Fatalf("PipelineOptions failed: %v", err)
	}
	if opts.InputDir != "in" || opts.OutputDir != "out" || opts.CSVPath != "out.csv" {
		t.Errorf("paths: got %q %q %q", opts.InputDir, opts.OutputDir, opts.CSVPath)
	}
	if opts.Template.Confidence != 0.4 || opts.Preprocess != "threshold" {
		t.Errorf("got confidence %v preprocess %q", opts.Template.Confidence, opts.Preprocess)
	}
	if !cfg.Debug {
		t.Error("--debug not applied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty input", func(c *Config) { c.Input.Dir = "" }, "input.dir"},
		{"no extensions", func(c *Config) { c.Input.Extensions = nil }, "input.extensions"},
		{"empty csv", func(c *Config) { c.Output.CSV = "" }, "output.csv"},
		{"jpeg quality", func(c *Config) { c.Output.JPEGQuality = 0 }, "jpeg_quality"},
		{"level", func(c *Config) { c.OCR.Level = "symbol" }, "ocr.level"},
		{"preprocess", func(c *Config) { c.OCR.Preprocess = "blur" }, "ocr.preprocess"},
		{"color", func(c *Config) { c.Template.Color = "not-a-color" }, "template.color"},
		{"short hex color", func(c *Config) { c.Template.Color = "#12345" }, "template.color"},
		{"thickness", func(c *Config) { c.Template.Thickness = 0 }, "thickness"},
		{"reference box", func(c *Config) { c.Template.ReferenceBox = []int{1, 2, 3} }, "reference_box"},
		{"confidence", func(c *Config) { c.Template.Confidence = 2 }, "confidence"},
		{"no regions", func(c *Config) { c.Template.Regions = nil }, "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(nil)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should mention %q", err.Error(), tt.errMsg)
			}
		})
	}
}
