package cache

import (
	"context"
	"time"

	"integrity-service/core/model"
)

// Mutations delegate first and mark only after the wrapped store accepted the change.

func (s *Store) RemoveCollection(ctx context.Context, collectionID string) error {
	err := s.Store.RemoveCollection(ctx, collectionID)
	s.drop(collectionID)
	return err
}

func (s *Store) UpdateFileIDs(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) error {
	if err := s.Store.UpdateFileIDs(ctx, collectionID, pillarID, items); err != nil {
		return err
	}
	s.mark(collectionID, []Kind{KindFiles, KindMissing}, []string{pillarID})
	return nil
}

func (s *Store) UpdateChecksumData(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error {
	if err := s.Store.UpdateChecksumData(ctx, collectionID, pillarID, items); err != nil {
		return err
	}
	s.mark(collectionID, []Kind{KindChecksumErrors}, []string{pillarID})
	return nil
}

func (s *Store) SetFileMissing(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	if err := s.Store.SetFileMissing(ctx, collectionID, fileID, pillarIDs); err != nil {
		return err
	}
	s.mark(collectionID, allKinds, pillarIDs)
	return nil
}

func (s *Store) SetChecksumError(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	if err := s.Store.SetChecksumError(ctx, collectionID, fileID, pillarIDs); err != nil {
		return err
	}
	s.mark(collectionID, []Kind{KindChecksumErrors}, pillarIDs)
	return nil
}

func (s *Store) SetChecksumValid(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	if err := s.Store.SetChecksumValid(ctx, collectionID, fileID, pillarIDs); err != nil {
		return err
	}
	s.mark(collectionID, []Kind{KindChecksumErrors}, pillarIDs)
	return nil
}

func (s *Store) RemoveFileID(ctx context.Context, collectionID, fileID string) error {
	if err := s.Store.RemoveFileID(ctx, collectionID, fileID); err != nil {
		return err
	}
	s.markCollection(collectionID, allKinds...)
	return nil
}

func (s *Store) SetAllFileStatesToUnknown(ctx context.Context, collectionID string) error {
	if err := s.Store.SetAllFileStatesToUnknown(ctx, collectionID); err != nil {
		return err
	}
	s.markCollection(collectionID, KindFiles, KindMissing)
	return nil
}

func (s *Store) SetOldUnknownFilesToMissing(ctx context.Context, collectionID string, cutoff time.Time) error {
	if err := s.Store.SetOldUnknownFilesToMissing(ctx, collectionID, cutoff); err != nil {
		return err
	}
	s.markCollection(collectionID, KindMissing)
	return nil
}

func (s *Store) SetFilesWithConsistentChecksumsToValid(ctx context.Context, collectionID string, cutoff time.Time) error {
	if err := s.Store.SetFilesWithConsistentChecksumsToValid(ctx, collectionID, cutoff); err != nil {
		return err
	}
	s.markCollection(collectionID, KindChecksumErrors)
	return nil
}
