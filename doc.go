// Package s3fifo provides a bounded in-memory key/value cache with the
// S3-FIFO eviction policy.
// Note: Doc based on "FIFO queues are all you need for cache eviction"
// (Yang et al., SOSP 2023).
// * There are SMALL, MAIN and GHOST FIFO queues. New items enter SMALL.
// * SMALL (~10% of capacity) filters one-time accesses: when it overflows,
// its head is promoted to MAIN if it was hit at least once while queued,
// and dropped to GHOST otherwise ("quick demotion").
// * MAIN (~90% of capacity) evicts with CLOCK-like reinsertion: a head with
// a non-zero frequency gets its counter decremented and another lap at the
// tail instead of being evicted.
// * GHOST remembers keys (no values) recently dropped from the cache. A put
// of a remembered key is admitted straight into MAIN, bypassing SMALL.
// * Hits never relink queue nodes; they only bump a per-entry saturating
// 2-bit frequency counter. That keeps the read path allocation-free and,
// under the Locked wrapper, shareable between readers.
//
// The primary goal is to protect MAIN from pollution by scan-like and
// one-shot workloads while keeping every queue operation scan-free, unlike
// LRU's relink-on-every-access.
//
// Cache itself is not synchronized. Wrap it in Locked for a single
// read/write mutex, or in Sharded to partition the keyspace across
// independently locked instances.
package s3fifo
