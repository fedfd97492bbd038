// Package workflow runs the scan, duplicate detection and organize stages
// for one folder.
//
// A Runner owns the stage components built from configuration, tags every
// run with a fresh run id, and holds a per-folder lock in the state directory
// while files are being moved so two desktidy processes never organize the
// same folder at once. When the digest cache is enabled the Runner keeps it in
// step with the moves it performs.
package workflow
