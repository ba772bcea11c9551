package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/answer-sheet-roi/internal/imaging"
	"github.com/ironsheep/answer-sheet-roi/internal/ocr"
)

// Defaults for Options.
const (
	DefaultInputDir  = "top_halves"
	DefaultOutputDir = "results"
	DefaultCSVPath   = "boxes.csv"
)

// Options configures a batch run.
type Options struct {
	InputDir    string
	Extensions  []string
	OutputDir   string
	CSVPath     string
	CRLF        bool
	JPEGQuality int

	// Preprocess is an imaging.Preprocess mode applied to the OCR input only.
	Preprocess string

	Template Template
	Style    Style
}

// DefaultOptions returns options for the built-in template.
func DefaultOptions() Options {
	return Options{
		InputDir:    DefaultInputDir,
		Extensions:  DefaultExtensions,
		OutputDir:   DefaultOutputDir,
		CSVPath:     DefaultCSVPath,
		CRLF:        true,
		JPEGQuality: imaging.DefaultJPEGQuality,
		Preprocess:  imaging.PreprocessNone,
		Template:    DefaultTemplate(),
		Style:       DefaultStyle(),
	}
}

// SkippedImage records an image that was left out of the run.
type SkippedImage struct {
	File   string    `json:"file"`
	Code   ErrorCode `json:"code"`
	Reason string    `json:"reason"`
}

// Summary describes a completed run.
type Summary struct {
	RunID           string         `json:"run_id"`
	InputDir        string         `json:"input_dir"`
	OutputDir       string         `json:"output_dir"`
	CSVPath         string         `json:"csv_path"`
	ImagesFound     int            `json:"images_found"`
	ImagesProcessed int            `json:"images_processed"`
	ImagesMatched   int            `json:"images_matched"`
	Rows            int            `json:"rows"`
	Skipped         []SkippedImage `json:"skipped"`
	ElapsedMS       int64          `json:"elapsed_ms"`
}

// ImageResult is the outcome of processing one image.
type ImageResult struct {
	Filename string
	Image    *image.NRGBA
	Matches  []Match
	Rows     []ResultRow
}

// Pipeline runs batches against one OCR engine. The engine is owned by the
// caller, who closes it after the last run.
type Pipeline struct {
	opts   Options
	engine ocr.Engine
	logger *log.Logger
	debug  bool
}

// New creates a pipeline. A nil logger discards output.
func New(opts Options, engine ocr.Engine, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Style.Color == nil {
		opts.Style = DefaultStyle()
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &Pipeline{opts: opts, engine: engine, logger: logger}
}

// SetDebug enables per-detection log lines.
func (p *Pipeline) SetDebug(debug bool) {
	p.debug = debug
}

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run processes every image in the input directory and writes the annotated
// images and the coordinate file.
//
// A *ProcessingError with a fatal code, or the context's error, aborts the
// run; in that case the coordinate file is not written. Images that fail to
// decode or recognize are skipped and listed in the Summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:     uuid.New().String(),
		InputDir:  p.opts.InputDir,
		OutputDir: p.opts.OutputDir,
		CSVPath:   p.opts.CSVPath,
		Skipped:   []SkippedImage{},
	}

	if err := os.MkdirAll(p.opts.OutputDir, 0755); err != nil {
		return summary, newError(CodeOutputWrite, p.opts.OutputDir, err)
	}

	files, err := ListImages(p.opts.InputDir, p.opts.Extensions)
	if err != nil {
		return summary, err
	}
	summary.ImagesFound = len(files)
	p.logger.Printf("run=%s images=%d input=%s engine=%s", summary.RunID, len(files), p.opts.InputDir, p.engine.Name())

	rows := make([]ResultRow, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := p.ProcessFile(ctx, filepath.Join(p.opts.InputDir, name))
		if err != nil {
			var pe *ProcessingError
			if errors.As(err, &pe) && !pe.Fatal() {
				p.logger.Printf("run=%s file=%s skipped code=%s err=%v", summary.RunID, name, pe.Code, pe.Cause)
				summary.Skipped = append(summary.Skipped, SkippedImage{File: name, Code: pe.Code, Reason: fmt.Sprint(pe.Cause)})
				continue
			}
			return summary, err
		}

		outPath := filepath.Join(p.opts.OutputDir, name)
		if err := imaging.Save(res.Image, outPath, p.opts.JPEGQuality); err != nil {
			return summary, newError(CodeOutputWrite, outPath, err)
		}

		summary.ImagesProcessed++
		if len(res.Matches) > 0 {
			summary.ImagesMatched++
		}
		rows = append(rows, res.Rows...)
		p.logger.Printf("run=%s file=%s matches=%d", summary.RunID, name, len(res.Matches))
	}

	if err := WriteCoordinateFile(p.opts.CSVPath, rows, p.opts.CRLF); err != nil {
		return summary, err
	}

	summary.Rows = len(rows)
	summary.ElapsedMS = time.Since(start).Milliseconds()
	p.logger.Printf("run=%s processed=%d skipped=%d rows=%d elapsed=%dms",
		summary.RunID, summary.ImagesProcessed, len(summary.Skipped), summary.Rows, summary.ElapsedMS)

	return summary, nil
}

// ProcessFile decodes, recognizes and annotates one image without saving it.
// The returned rows carry the file's base name.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*ImageResult, error) {
	name := filepath.Base(path)

	img, err := imaging.Open(path)
	if err != nil {
		return nil, newError(CodeDecode, name, err)
	}

	ocrInput, err := imaging.Preprocess(img, p.opts.Preprocess)
	if err != nil {
		return nil, newError(CodeOCR, name, err)
	}

	detections, err := p.engine.Detect(ctx, ocrInput)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError(CodeOCR, name, err)
	}

	if p.debug {
		for _, d := range detections {
			p.logger.Printf("file=%s detection text=%q confidence=%.3f quad=%v", name, d.Text, d.Confidence, d.Quad)
		}
	}

	matches := p.opts.Template.MatchDetections(img, detections, p.opts.Style)

	rows := make([]ResultRow, 0, len(matches))
	for _, m := range matches {
		if p.debug {
			p.logger.Printf("file=%s marker=%q angle=%.3f scale_w=%.3f scale_h=%.3f",
				name, m.Detection.Text, m.Angle, m.ScaleW, m.ScaleH)
		}
		rows = append(rows, NewResultRow(name, m))
	}

	return &ImageResult{Filename: name, Image: img, Matches: matches, Rows: rows}, nil
}
