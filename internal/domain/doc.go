// Package domain holds the value types shared by the desktidy pipeline stages.
//
// Every stage produces immutable snapshots of these types for the next one:
// the scanner emits FileEntry values, the duplicate detector emits
// DuplicateGroup values, and the organizer emits one Action per entry inside an
// OrganizationSummary. Nothing in this package touches the filesystem.
package domain
