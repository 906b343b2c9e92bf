// Package ports defines the interfaces that connect the calibration core to
// infrastructure adapters.
//
// Ports are the boundaries between the pipeline and the outside world. The
// core (internal/calib) depends only on these interfaces; adapters
// (internal/adapters) implement them against the file system.
//
// # Port Interfaces
//
//   - [FrameSource]: enumerates and reads raw frames from a directory
//   - [FrameCursor]: streams the frames of one directory in deterministic order
//   - [ImageStore]: persists master frames and calibrated images
//
// This separation lets the pipeline logic be tested with in-memory sources
// and stores, without touching disk.
package ports
