// Package store defines the Integrity Store: the persistence contract over per-(file,
// pillar, collection) existence and checksum state.
//
// Two backends implement Store. The memory package backs unit tests and small
// deployments; the gormstore package persists to MySQL (or SQLite) through GORM.
// Both are exercised by the shared behaviour suite in storetest, so callers cannot
// tell them apart.
//
// # Collections and pillars
//
// Every operation names its collection explicitly. A collection has a fixed pillar set;
// naming a pillar outside that set fails with ErrUnknownPillar. Mutations on an unknown
// collection fail with ErrCollectionNotFound, while queries on one return empty results.
//
// # Lazy iteration
//
// Queries that may return a large share of a collection (all file ids, missing files,
// missing checksums, inconsistent checksums) return a FileIDIterator instead of a slice.
// The iterator is forward-only and must be closed, although exhausting it closes it too:
//
//	it, err := s.FindMissingFiles(ctx, "books")
//	if err != nil {
//	    return err
//	}
//	defer it.Close()
//	for it.Next() {
//	    fmt.Println(it.FileID())
//	}
//	return it.Err()
package store
