// Package domain contains the core entities of the CCD calibration pipeline.
//
// This package represents the innermost layer of the architecture. It depends
// only on the pixel grid type and contains no infrastructure concerns.
//
// # Entities
//
//   - [Frame]: one raw exposure (pixel grid plus header metadata)
//   - [MasterFrame]: an averaged correction frame (bias, dark, or flat)
//   - [CalibratedImage]: the final product for one science exposure
//
// Entities are immutable after construction; every pipeline stage owns its
// intermediate grids exclusively and hands results on by return value.
package domain
