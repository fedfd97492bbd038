// Package dedupe finds byte-identical files among scanned entries.
//
// Detection is staged by cost: entries are first partitioned by exact size,
// and only partitions with two or more members are hashed. Each candidate is
// streamed once through two independent digests (xxhash64 and SHA-256) and
// files are reported identical only when both digests agree. Hashing may run
// on a bounded worker pool; results are ordered by path before grouping so the
// output does not depend on completion order.
//
// Unreadable files are recorded as detection failures and excluded from
// comparison; they never abort the pass.
package dedupe
