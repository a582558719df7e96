// Package cache decorates a store.Store with debounced per-pillar aggregates.
//
// Three counters are cached per (collection, pillar): files EXISTING at the pillar,
// files MISSING there, and files whose checksum is in ERROR. The first read of a
// counter fetches it from the wrapped store; later reads are served from memory.
//
// Mutations flowing through the decorator never drop a cached value. They mark the
// affected counters dirty, and a dirty counter is refetched on the next read only
// once the refresh period has passed since the first mark that has not yet been
// refreshed. Bursts of ingestion therefore cost at most one refetch per counter per
// period, at the price of counters lagging the store by up to that period.
//
// Concurrent refreshes of one counter share a single fetch through singleflight.
package cache
