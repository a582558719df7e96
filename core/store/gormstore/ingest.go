package gormstore

import (
	"context"
	"fmt"

	"integrity-service/core/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var keyColumns = []clause.Column{{Name: "collection_id"}, {Name: "file_id"}, {Name: "pillar_id"}}

// upsert writes rows in one transaction, updating only columns on conflict.
func (s *Store) upsert(ctx context.Context, rows []fileInfoRow, columns []string) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   keyColumns,
			DoUpdates: clause.AssignmentColumns(columns),
		}).CreateInBatches(&rows, s.batchSize).Error
	})
}

// dedupe keeps the last row per file id, preserving first-seen order.
func dedupe(rows []fileInfoRow) []fileInfoRow {
	index := make(map[string]int, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if i, ok := index[r.FileID]; ok {
			out[i] = r
			continue
		}
		index[r.FileID] = len(out)
		out = append(out, r)
	}
	return out
}

func (s *Store) UpdateFileIDs(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) error {
	if err := s.mustCollection(ctx, collectionID, pillarID); err != nil {
		return err
	}
	now := s.clock()
	rows := make([]fileInfoRow, 0, len(items))
	for _, item := range items {
		if item.FileID == "" {
			s.log.Warn("Skipping file listing entry without file id",
				zap.String("collection", collectionID), zap.String("pillar", pillarID))
			continue
		}
		rows = append(rows, fileInfoRow{
			CollectionID:      collectionID,
			FileID:            item.FileID,
			PillarID:          pillarID,
			FileSize:          item.FileSize,
			LastFileCheck:     now,
			LastChecksumCheck: model.Epoch,
			FileState:         model.FileStateExisting.Code(),
			ChecksumState:     model.ChecksumStateUnknown.Code(),
		})
	}
	if err := s.upsert(ctx, dedupe(rows), []string{"file_size", "last_file_check", "file_state"}); err != nil {
		return fmt.Errorf("failed to update file ids for %s/%s: %w", collectionID, pillarID, err)
	}
	s.log.Debug("File ids updated", zap.String("collection", collectionID),
		zap.String("pillar", pillarID), zap.Int("count", len(rows)))
	return nil
}

func (s *Store) UpdateChecksumData(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error {
	if err := s.mustCollection(ctx, collectionID, pillarID); err != nil {
		return err
	}
	now := s.clock()
	rows := make([]fileInfoRow, 0, len(items))
	for _, item := range items {
		if item.FileID == "" {
			s.log.Warn("Skipping checksum entry without file id",
				zap.String("collection", collectionID), zap.String("pillar", pillarID))
			continue
		}
		calculated := now
		if !item.CalculatedAt.IsZero() {
			calculated = item.CalculatedAt.UTC()
		}
		var sum *string
		if item.Checksum != "" {
			v := item.Checksum
			sum = &v
		}
		spec := item.Spec.Normalized()
		rows = append(rows, fileInfoRow{
			CollectionID:      collectionID,
			FileID:            item.FileID,
			PillarID:          pillarID,
			LastFileCheck:     model.Epoch,
			Checksum:          sum,
			ChecksumAlgorithm: spec.Algorithm,
			ChecksumSalt:      spec.Salt,
			LastChecksumCheck: calculated,
			FileState:         model.FileStateUnknown.Code(),
			ChecksumState:     model.ChecksumStateUnknown.Code(),
		})
	}
	columns := []string{"checksum", "checksum_algorithm", "checksum_salt", "last_checksum_check", "checksum_state"}
	if err := s.upsert(ctx, dedupe(rows), columns); err != nil {
		return fmt.Errorf("failed to update checksums for %s/%s: %w", collectionID, pillarID, err)
	}
	s.log.Debug("Checksums updated", zap.String("collection", collectionID),
		zap.String("pillar", pillarID), zap.Int("count", len(rows)))
	return nil
}

// transition updates the existing rows of fileID at pillarIDs.
func (s *Store) transition(ctx context.Context, collectionID, fileID string, pillarIDs []string,
	scope func(*gorm.DB) *gorm.DB, updates map[string]any) error {
	if err := s.mustCollection(ctx, collectionID, pillarIDs...); err != nil {
		return err
	}
	if len(pillarIDs) == 0 {
		return nil
	}
	q := s.db.WithContext(ctx).Model(&fileInfoRow{}).
		Where("collection_id = ? AND file_id = ? AND pillar_id IN ?", collectionID, fileID, pillarIDs)
	if scope != nil {
		q = scope(q)
	}
	return q.Updates(updates).Error
}

func (s *Store) SetFileMissing(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	err := s.transition(ctx, collectionID, fileID, pillarIDs, nil, map[string]any{
		"file_state":     model.FileStateMissing.Code(),
		"checksum_state": model.ChecksumStateUnknown.Code(),
	})
	if err != nil {
		return fmt.Errorf("failed to set %s missing: %w", fileID, err)
	}
	return nil
}

func (s *Store) SetChecksumError(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	err := s.transition(ctx, collectionID, fileID, pillarIDs, nil, map[string]any{
		"checksum_state": model.ChecksumStateError.Code(),
	})
	if err != nil {
		return fmt.Errorf("failed to set checksum error for %s: %w", fileID, err)
	}
	return nil
}

func (s *Store) SetChecksumValid(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	notMissing := func(q *gorm.DB) *gorm.DB { return q.Where("file_state <> ?", model.FileStateMissing.Code()) }
	err := s.transition(ctx, collectionID, fileID, pillarIDs, notMissing, map[string]any{
		"checksum_state": model.ChecksumStateValid.Code(),
	})
	if err != nil {
		return fmt.Errorf("failed to set checksum valid for %s: %w", fileID, err)
	}
	return nil
}

func (s *Store) RemoveFileID(ctx context.Context, collectionID, fileID string) error {
	if err := s.mustCollection(ctx, collectionID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("collection_id = ? AND file_id = ?", collectionID, fileID).
		Delete(&fileInfoRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", fileID, err)
	}
	return nil
}

func (s *Store) RecordStatistics(ctx context.Context, stats model.CollectionStatistics) error {
	if err := s.mustCollection(ctx, stats.CollectionID); err != nil {
		return err
	}
	row := statisticsRow{
		CollectionID:          stats.CollectionID,
		RecordedAt:            stats.RecordedAt.UTC(),
		FileCount:             stats.FileCount,
		MissingFiles:          stats.MissingFiles,
		MissingChecksums:      stats.MissingChecksums,
		InconsistentChecksums: stats.InconsistentChecksums,
		Pillars:               stats.Pillars,
	}
	if row.RecordedAt.IsZero() {
		row.RecordedAt = s.clock()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record statistics for %s: %w", stats.CollectionID, err)
	}
	return nil
}
