package pipeline

import (
	"os"
	"sort"

	"github.com/ironsheep/answer-sheet-roi/internal/imaging"
	"github.com/maruel/natural"
)

// DefaultExtensions are the raster formats picked up from the input directory.
var DefaultExtensions = []string{".jpg", ".png", ".jpeg"}

// ListImages returns the names of files in dir whose extension is in exts
// (case-insensitive), in natural order: "img2.jpg" sorts before "img10.jpg".
// Subdirectories are ignored.
func ListImages(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newError(CodeInputNotFound, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !imaging.HasExtension(e.Name(), exts) {
			continue
		}
		names = append(names, e.Name())
	}

	SortNatural(names)
	return names, nil
}

// SortNatural sorts names so embedded numbers compare numerically.
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return natural.Less(names[i], names[j])
	})
}
