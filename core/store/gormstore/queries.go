package gormstore

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	existing     = model.FileStateExisting.Code()
	missing      = model.FileStateMissing.Code()
	unknownState = model.FileStateUnknown.Code()
)

// iterate runs a single-column query and hands the open rows to a FileIDIterator.
func (s *Store) iterate(ctx context.Context, query string, args ...any) (store.FileIDIterator, error) {
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	return &rowsIterator{rows: rows}, nil
}

func (s *Store) GetFileInfosForFile(ctx context.Context, collectionID, fileID string) ([]model.FileInfo, error) {
	var rows []fileInfoRow
	err := s.db.WithContext(ctx).
		Where("collection_id = ? AND file_id = ?", collectionID, fileID).
		Order("pillar_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load file infos for %s: %w", fileID, err)
	}
	out := make([]model.FileInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) GetAllFileIDs(ctx context.Context, collectionID string) (store.FileIDIterator, error) {
	it, err := s.iterate(ctx,
		"SELECT DISTINCT file_id FROM file_info WHERE collection_id = ? ORDER BY file_id", collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file ids of %s: %w", collectionID, err)
	}
	return it, nil
}

func (s *Store) GetNumberOfFilesInCollection(ctx context.Context, collectionID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&fileInfoRow{}).
		Where("collection_id = ?", collectionID).
		Distinct("file_id").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count files of %s: %w", collectionID, err)
	}
	return n, nil
}

// pillarScope selects the rows of one pillar, validating the pillar for known collections.
func (s *Store) pillarScope(ctx context.Context, collectionID, pillarID string) (*gorm.DB, bool, error) {
	set, ok, err := s.collection(ctx, collectionID)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := checkPillars(collectionID, set, []string{pillarID}); err != nil {
		return nil, false, err
	}
	q := s.db.WithContext(ctx).Model(&fileInfoRow{}).
		Where("collection_id = ? AND pillar_id = ?", collectionID, pillarID)
	return q, true, nil
}

func (s *Store) pillarPage(ctx context.Context, collectionID, pillarID string, offset, limit int, cond string, arg any) ([]string, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", store.ErrInvalidArgument, offset, limit)
	}
	q, ok, err := s.pillarScope(ctx, collectionID, pillarID)
	if err != nil || !ok {
		return []string{}, err
	}
	if limit == 0 {
		limit = math.MaxInt32
	}
	ids := []string{}
	err = q.Where(cond, arg).Order("file_id").Offset(offset).Limit(limit).Pluck("file_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page %s/%s: %w", collectionID, pillarID, err)
	}
	return ids, nil
}

func (s *Store) pillarCount(ctx context.Context, collectionID, pillarID string, cond string, arg any) (int64, error) {
	q, ok, err := s.pillarScope(ctx, collectionID, pillarID)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	if err := q.Where(cond, arg).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s/%s: %w", collectionID, pillarID, err)
	}
	return n, nil
}

func (s *Store) GetFilesOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return s.pillarPage(ctx, collectionID, pillarID, offset, limit, "file_state = ?", existing)
}

func (s *Store) GetMissingFilesOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return s.pillarPage(ctx, collectionID, pillarID, offset, limit, "file_state = ?", missing)
}

func (s *Store) GetFilesWithChecksumErrorsOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return s.pillarPage(ctx, collectionID, pillarID, offset, limit, "checksum_state = ?", model.ChecksumStateError.Code())
}

func (s *Store) GetNumberOfExistingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	return s.pillarCount(ctx, collectionID, pillarID, "file_state = ?", existing)
}

func (s *Store) GetNumberOfMissingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	return s.pillarCount(ctx, collectionID, pillarID, "file_state = ?", missing)
}

func (s *Store) GetNumberOfChecksumErrorsForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	return s.pillarCount(ctx, collectionID, pillarID, "checksum_state = ?", model.ChecksumStateError.Code())
}

func (s *Store) SetAllFileStatesToUnknown(ctx context.Context, collectionID string) error {
	if err := s.mustCollection(ctx, collectionID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&fileInfoRow{}).
		Where("collection_id = ?", collectionID).
		Update("file_state", unknownState).Error
	if err != nil {
		return fmt.Errorf("failed to mark files of %s unknown: %w", collectionID, err)
	}
	return nil
}

func (s *Store) SetOldUnknownFilesToMissing(ctx context.Context, collectionID string, cutoff time.Time) error {
	if err := s.mustCollection(ctx, collectionID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&fileInfoRow{}).
		Where("collection_id = ? AND file_state = ? AND last_file_check < ?", collectionID, unknownState, cutoff.UTC()).
		Update("file_state", missing)
	if res.Error != nil {
		return fmt.Errorf("failed to sweep unknown files of %s: %w", collectionID, res.Error)
	}
	s.log.Debug("Unknown files swept", zap.String("collection", collectionID),
		zap.Time("cutoff", cutoff), zap.Int64("missing", res.RowsAffected))
	return nil
}

// comparedRows returns the WHERE clause selecting rows that take part in checksum
// comparison, with its arguments.
func comparedRows(collectionID string, cutoff time.Time) (string, []any) {
	var b strings.Builder
	b.WriteString("collection_id = ? AND file_state <> ? AND checksum IS NOT NULL")
	args := []any{collectionID, missing}
	if !cutoff.IsZero() {
		b.WriteString(" AND last_checksum_check >= ?")
		args = append(args, cutoff.UTC())
	}
	return b.String(), args
}

func (s *Store) FindFilesWithInconsistentChecksums(ctx context.Context, collectionID string, cutoff time.Time) (store.FileIDIterator, error) {
	where, args := comparedRows(collectionID, cutoff)
	it, err := s.iterate(ctx, "SELECT file_id FROM file_info WHERE "+where+
		" GROUP BY file_id HAVING COUNT(DISTINCT checksum) > 1 ORDER BY file_id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find inconsistent checksums in %s: %w", collectionID, err)
	}
	return it, nil
}

func (s *Store) SetFilesWithConsistentChecksumsToValid(ctx context.Context, collectionID string, cutoff time.Time) error {
	if err := s.mustCollection(ctx, collectionID); err != nil {
		return err
	}
	where, args := comparedRows(collectionID, cutoff)
	// MySQL refuses a subquery on the table being updated unless it is materialised
	// through a derived table.
	query := "UPDATE file_info SET checksum_state = ? WHERE " + where +
		" AND file_id IN (SELECT file_id FROM (SELECT file_id FROM file_info WHERE " + where +
		" GROUP BY file_id HAVING COUNT(DISTINCT checksum) = 1) AS consistent)"
	all := make([]any, 0, 1+2*len(args))
	all = append(all, model.ChecksumStateValid.Code())
	all = append(all, args...)
	all = append(all, args...)
	res := s.db.WithContext(ctx).Exec(query, all...)
	if res.Error != nil {
		return fmt.Errorf("failed to validate consistent checksums in %s: %w", collectionID, res.Error)
	}
	return nil
}

func (s *Store) FindMissingChecksums(ctx context.Context, collectionID string) (store.FileIDIterator, error) {
	it, err := s.iterate(ctx, "SELECT DISTINCT file_id FROM file_info"+
		" WHERE collection_id = ? AND file_state = ? AND checksum IS NULL ORDER BY file_id",
		collectionID, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to find missing checksums in %s: %w", collectionID, err)
	}
	return it, nil
}

const copiesQuery = "SELECT file_id FROM file_info WHERE collection_id = ? GROUP BY file_id" +
	" HAVING SUM(CASE WHEN file_state = ? THEN 1 ELSE 0 END) < ?"

func (s *Store) FindMissingFiles(ctx context.Context, collectionID string) (store.FileIDIterator, error) {
	set, ok, err := s.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return store.NewSliceIterator(nil), nil
	}
	it, err := s.iterate(ctx, copiesQuery+" ORDER BY file_id", collectionID, existing, len(set))
	if err != nil {
		return nil, fmt.Errorf("failed to find missing files in %s: %w", collectionID, err)
	}
	return it, nil
}

func (s *Store) FindFilesWithMissingCopies(ctx context.Context, collectionID string, requiredPillarCount int, minSize, maxSize int64) (store.FileIDIterator, error) {
	if requiredPillarCount < 1 || minSize < 0 || (maxSize > 0 && minSize > maxSize) {
		return nil, fmt.Errorf("%w: required %d, size range [%d, %d]", store.ErrInvalidArgument, requiredPillarCount, minSize, maxSize)
	}
	query := copiesQuery + " AND MAX(file_size) >= ?"
	args := []any{collectionID, existing, requiredPillarCount, minSize}
	if maxSize > 0 {
		query += " AND MAX(file_size) <= ?"
		args = append(args, maxSize)
	}
	it, err := s.iterate(ctx, query+" ORDER BY file_id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find files with missing copies in %s: %w", collectionID, err)
	}
	return it, nil
}

func (s *Store) LatestStatistics(ctx context.Context, collectionID string) (*model.CollectionStatistics, error) {
	var rows []statisticsRow
	err := s.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("recorded_at DESC, id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load statistics of %s: %w", collectionID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &model.CollectionStatistics{
		CollectionID:          r.CollectionID,
		RecordedAt:            r.RecordedAt.UTC(),
		FileCount:             r.FileCount,
		MissingFiles:          r.MissingFiles,
		MissingChecksums:      r.MissingChecksums,
		InconsistentChecksums: r.InconsistentChecksums,
		Pillars:               r.Pillars,
	}, nil
}
