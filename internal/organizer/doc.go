// Package organizer moves scanned files into their category folders.
//
// It creates the category and Duplicates folders it needs, allocates a
// collision-free destination for every file and performs a single rename per
// file. Each entry ends in exactly one Action (moved, would move, skipped or
// failed); per-file failures are recorded and never stop the remaining files.
// Files are never deleted or overwritten, and a dry run touches nothing.
package organizer
