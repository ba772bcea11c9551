// Package imaging provides the image-side collaborators of the batch pipeline:
// decoding and encoding files, drawing annotation boxes, and preparing images
// for OCR.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward, matching package geometry.
//
// # Drawing
//
// DrawRegion and DrawLine mutate the destination buffer in place. Neither
// validates coordinates: geometry that falls partly or wholly outside the
// image is clipped by the rasterizer and never reported as an error.
//
// # File Formats
//
// Open decodes PNG, JPEG and GIF files. Save picks the encoder from the
// destination filename's extension, so an annotated image keeps the format of
// its source. JPEG output uses quality 95 unless told otherwise.
//
// # Snapshots
//
// CropQuad cuts the bounding rectangle of a region out of an image and
// returns it as base64 PNG, for clients that want to look at a region
// without fetching the whole annotated file.
//
// # Preprocessing
//
// Preprocess returns a new image tuned for text recognition (grayscale,
// contrast stretch or binary threshold). It never touches the image that
// annotations are drawn on, and never moves pixels, so OCR coordinates stay
// valid on the source image.
package imaging
