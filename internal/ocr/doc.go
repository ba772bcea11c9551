// Package ocr defines the text-detection collaborator used by the batch
// pipeline and provides a Tesseract-backed implementation.
//
// # Contract
//
// An Engine accepts a decoded image and returns Detections: a quadrilateral in
// pixel coordinates (TL, TR, BR, BL), the recognized text, and a confidence in
// [0,1]. Any engine honoring that contract can be substituted; the pipeline
// tests use an in-memory fake.
//
// Tesseract boxes are always axis-aligned, so its detections carry a zero
// rotation angle. Skew correction of the projected regions needs an engine
// that returns rotated quads.
//
// # Lifecycle
//
// Engines are constructed once, reused for every image in a batch, and
// released with Close. Nothing in this package holds a process-wide engine.
//
// # Prerequisites
//
// The Tesseract engine wraps gosseract/v2 and needs the Tesseract library and
// language data installed on the system:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-default tessdata directory can be supplied through
// Options.TessdataPrefix.
//
// # Iterator Levels
//
// Tesseract reports boxes at several granularities. "textline" (the default)
// groups a printed line such as "Examination 2023" into one detection, which
// is the closest match to phrase-level detectors; "word" splits it.
package ocr
