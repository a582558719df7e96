package memory

import (
	"context"
	"fmt"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"
)

func (s *Store) SetAllFileStatesToUnknown(_ context.Context, collectionID string) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	c.mutate(func(_ string, m map[string]*model.FileInfo) {
		for _, fi := range m {
			fi.FileState = model.FileStateUnknown
		}
	})
	return nil
}

func (s *Store) SetOldUnknownFilesToMissing(_ context.Context, collectionID string, cutoff time.Time) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	c.mutate(func(_ string, m map[string]*model.FileInfo) {
		for _, fi := range m {
			if fi.FileState == model.FileStateUnknown && fi.LastFileCheck.Before(cutoff) {
				fi.FileState = model.FileStateMissing
			}
		}
	})
	return nil
}

// qualifies reports whether a record takes part in a checksum comparison.
func qualifies(fi *model.FileInfo, cutoff time.Time) bool {
	if fi.FileState == model.FileStateMissing || fi.Checksum == nil {
		return false
	}
	return cutoff.IsZero() || !fi.LastChecksumCheck.Before(cutoff)
}

func distinctChecksums(m map[string]*model.FileInfo, cutoff time.Time) int {
	seen := make(map[string]struct{}, len(m))
	for _, fi := range m {
		if qualifies(fi, cutoff) {
			seen[*fi.Checksum] = struct{}{}
		}
	}
	return len(seen)
}

func (s *Store) FindFilesWithInconsistentChecksums(_ context.Context, collectionID string, cutoff time.Time) (store.FileIDIterator, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return store.NewSliceIterator(nil), nil
	}
	return store.NewSliceIterator(c.collect(func(m map[string]*model.FileInfo) bool {
		return distinctChecksums(m, cutoff) > 1
	})), nil
}

func (s *Store) SetFilesWithConsistentChecksumsToValid(_ context.Context, collectionID string, cutoff time.Time) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	c.mutate(func(_ string, m map[string]*model.FileInfo) {
		if distinctChecksums(m, cutoff) != 1 {
			return
		}
		for _, fi := range m {
			if qualifies(fi, cutoff) {
				fi.ChecksumState = model.ChecksumStateValid
			}
		}
	})
	return nil
}

func (s *Store) FindMissingChecksums(_ context.Context, collectionID string) (store.FileIDIterator, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return store.NewSliceIterator(nil), nil
	}
	return store.NewSliceIterator(c.collect(func(m map[string]*model.FileInfo) bool {
		for _, fi := range m {
			if fi.FileState == model.FileStateExisting && fi.Checksum == nil {
				return true
			}
		}
		return false
	})), nil
}

func existingCopies(m map[string]*model.FileInfo) int {
	n := 0
	for _, fi := range m {
		if fi.FileState == model.FileStateExisting {
			n++
		}
	}
	return n
}

func (s *Store) FindMissingFiles(_ context.Context, collectionID string) (store.FileIDIterator, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return store.NewSliceIterator(nil), nil
	}
	required := len(c.pillars)
	return store.NewSliceIterator(c.collect(func(m map[string]*model.FileInfo) bool {
		return existingCopies(m) < required
	})), nil
}

func (s *Store) FindFilesWithMissingCopies(_ context.Context, collectionID string, requiredPillarCount int, minSize, maxSize int64) (store.FileIDIterator, error) {
	if requiredPillarCount < 1 || minSize < 0 || (maxSize > 0 && minSize > maxSize) {
		return nil, fmt.Errorf("%w: required %d, size range [%d, %d]", store.ErrInvalidArgument, requiredPillarCount, minSize, maxSize)
	}
	c := s.lookup(collectionID)
	if c == nil {
		return store.NewSliceIterator(nil), nil
	}
	return store.NewSliceIterator(c.collect(func(m map[string]*model.FileInfo) bool {
		if existingCopies(m) >= requiredPillarCount {
			return false
		}
		var size int64
		for _, fi := range m {
			if fi.FileSize > size {
				size = fi.FileSize
			}
		}
		return size >= minSize && (maxSize <= 0 || size <= maxSize)
	})), nil
}
