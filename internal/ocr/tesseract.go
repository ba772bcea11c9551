package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Iterator levels accepted in Options.Level.
const (
	LevelWord     = "word"
	LevelTextLine = "textline"
	LevelPara     = "para"
	LevelBlock    = "block"
)

// Defaults for Options.
const (
	DefaultLanguage    = "eng"
	DefaultLevel       = LevelTextLine
	DefaultPageSegMode = int(gosseract.PSM_AUTO)
)

// Options configures a Tesseract engine.
type Options struct {
	// Language is the Tesseract language code (e.g., "eng").
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty uses the system default.
	TessdataPrefix string

	// Level is the iterator level boxes are reported at: word, textline,
	// para or block.
	Level string

	// PageSegMode is the Tesseract page segmentation mode (0-13).
	PageSegMode int
}

// Tesseract is an Engine backed by a single reusable gosseract client.
//
// A gosseract client is not safe for concurrent use, so Detect serializes
// calls. Construct one engine per batch and Close it when the batch ends.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	level  gosseract.PageIteratorLevel
}

// NewTesseract creates and configures a Tesseract client.
//
// # Errors
//
//   - Returns error for an unknown iterator level
//   - Returns error if the tessdata prefix, language or page segmentation
//     mode is rejected by Tesseract, or if Tesseract cannot load the language
func NewTesseract(opts Options) (*Tesseract, error) {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Level == "" {
		opts.Level = DefaultLevel
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.PageSegMode < 0 || opts.PageSegMode > int(gosseract.PSM_RAW_LINE) {
		return nil, fmt.Errorf("invalid page segmentation mode: %d", opts.PageSegMode)
	}

	client := gosseract.NewClient()

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	// gosseract initializes Tesseract lazily; recognize a blank image so a
	// missing language fails here rather than on the first real image.
	if err := probe(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize tesseract with language %q: %w", opts.Language, err)
	}

	return &Tesseract{client: client, level: level}, nil
}

func probe(client *gosseract.Client) error {
	blank := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, blank); err != nil {
		return err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return err
	}
	_, err := client.Text()
	return err
}

// Name implements Engine.
func (t *Tesseract) Name() string { return "tesseract" }

// Detect implements Engine. The image is handed to Tesseract as an in-memory
// PNG; boxes are reported at the configured iterator level.
func (t *Tesseract) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil, fmt.Errorf("tesseract engine is closed")
	}

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(t.level)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return FromBoundingBoxes(boxes), nil
}

// Close implements Engine. Calling Close more than once is harmless.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// Version returns the Tesseract library version used by this engine.
func (t *Tesseract) Version() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return ""
	}
	return t.client.Version()
}

// FromBoundingBoxes converts gosseract boxes to Detections. Tesseract reports
// confidence as a percentage; it is scaled to [0,1]. Boxes without text are
// dropped.
func FromBoundingBoxes(boxes []gosseract.BoundingBox) []Detection {
	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		detections = append(detections, Detection{
			Quad:       QuadFromRect(box.Box),
			Text:       text,
			Confidence: box.Confidence / 100.0,
		})
	}
	return detections
}

// ParseLevel maps an iterator level name to its gosseract constant.
func ParseLevel(level string) (gosseract.PageIteratorLevel, error) {
	switch strings.ToLower(level) {
	case LevelWord:
		return gosseract.RIL_WORD, nil
	case LevelTextLine:
		return gosseract.RIL_TEXTLINE, nil
	case LevelPara:
		return gosseract.RIL_PARA, nil
	case LevelBlock:
		return gosseract.RIL_BLOCK, nil
	default:
		return 0, fmt.Errorf("unknown OCR level: %s", level)
	}
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}

// GetInfo reports whether a Tesseract engine can be constructed with opts.
func GetInfo(opts Options) Info {
	engine, err := NewTesseract(opts)
	if err != nil {
		return Info{
			Available: false,
			Error:     err.Error(),
			Backend:   "gosseract",
		}
	}
	defer engine.Close()

	return Info{
		Available: true,
		Version:   engine.Version(),
		Backend:   "gosseract",
	}
}
