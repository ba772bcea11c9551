// Package pipeline implements the batch run that turns a directory of scanned
// answer sheets into annotated images and a coordinate file.
//
// # Flow
//
// For each image, in natural filename order:
//
//  1. Decode the file and optionally preprocess a copy for OCR
//  2. Run the OCR engine and keep detections whose confidence exceeds the
//     template threshold and whose text contains the marker
//  3. Derive rotation angle and scale factors from each marker quad
//  4. Project every template region from the marker's top-left corner and
//     draw it onto the image
//  5. Save the annotated image under the output directory
//
// When every image is done the accumulated rows are written, space
// delimited, to the coordinate file.
//
// # Failures
//
// Errors are *ProcessingError values. A missing input directory and any
// failure to write output abort the run. An image that cannot be decoded or
// recognized is logged, recorded in the Summary and skipped.
//
// # Ordering
//
// Images are processed one at a time. Rows appear in the coordinate file in
// the same natural order the images were processed in.
package pipeline
