// Package placement computes collision-free destination paths.
//
// CleanFilename removes numbering left behind by earlier runs, UniquePath
// probes "name (N).ext" candidates against the live filesystem, and Allocator
// layers per-run reservations on top so a whole batch of planned moves stays
// collision-free even before any file is renamed.
package placement
