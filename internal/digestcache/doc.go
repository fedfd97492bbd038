// Package digestcache persists content digests between desktidy runs.
//
// Entries are keyed by absolute path and only trusted while the file's size
// and modification time are unchanged, so a stale row costs a re-hash and
// never a wrong duplicate verdict. The database lives outside the organized
// folder and can be deleted at any time.
package digestcache
