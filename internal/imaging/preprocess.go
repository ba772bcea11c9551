package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Preprocessing modes accepted by Preprocess.
const (
	PreprocessNone      = "none"
	PreprocessGrayscale = "grayscale"
	PreprocessContrast  = "contrast"
	PreprocessThreshold = "threshold"
)

const (
	contrastChange = 0.4
	thresholdLevel = 140
)

// PreprocessModes lists every mode Preprocess understands.
var PreprocessModes = []string{PreprocessNone, PreprocessGrayscale, PreprocessContrast, PreprocessThreshold}

// Preprocess returns a copy of img prepared for text recognition. The
// geometry is never changed, so boxes found on the result apply to img.
//
//   - none: img is returned as is
//   - grayscale: luminance only
//   - contrast: grayscale followed by a contrast stretch
//   - threshold: grayscale binarized at a fixed level
func Preprocess(img image.Image, mode string) (image.Image, error) {
	switch mode {
	case "", PreprocessNone:
		return img, nil
	case PreprocessGrayscale:
		return effect.Grayscale(img), nil
	case PreprocessContrast:
		return adjust.Contrast(effect.Grayscale(img), contrastChange), nil
	case PreprocessThreshold:
		return segment.Threshold(img, thresholdLevel), nil
	default:
		return nil, fmt.Errorf("unknown preprocess mode: %s", mode)
	}
}
