// Package geometry implements the 2D transforms used to place regions of
// interest relative to a detected marker.
//
// # Coordinate System
//
// Coordinates are integer pixels with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Angles are in degrees.
//
// # Corner Order
//
// Rectangles are represented as four corners in a fixed traversal order:
// top-left, top-right, bottom-right, bottom-left. Every function in this
// package that returns corners preserves that order, including after rotation.
//
// # Integer Coercion
//
// Fractional results are truncated toward zero, never rounded. Coordinates
// written by earlier runs can only be reproduced bit-for-bit under this rule.
package geometry
