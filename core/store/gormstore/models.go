package gormstore

import (
	"time"

	"integrity-service/core/model"
)

// fileInfoRow is one row of file_info, keyed by (collection_id, file_id, pillar_id).
type fileInfoRow struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	CollectionID      string    `gorm:"size:191;not null;uniqueIndex:ux_file_info_key,priority:1;index:ix_file_info_pillar,priority:1"`
	FileID            string    `gorm:"size:255;not null;uniqueIndex:ux_file_info_key,priority:2"`
	PillarID          string    `gorm:"size:100;not null;uniqueIndex:ux_file_info_key,priority:3;index:ix_file_info_pillar,priority:2"`
	FileSize          int64     `gorm:"not null;default:0"`
	LastFileCheck     time.Time `gorm:"not null"`
	Checksum          *string   `gorm:"size:256"`
	ChecksumAlgorithm string    `gorm:"size:32;not null;default:''"`
	ChecksumSalt      string    `gorm:"size:255;not null;default:''"`
	LastChecksumCheck time.Time `gorm:"not null"`
	FileState         int       `gorm:"not null;index:ix_file_info_pillar,priority:3"`
	ChecksumState     int       `gorm:"not null"`
}

func (fileInfoRow) TableName() string { return "file_info" }

func (r fileInfoRow) toModel() model.FileInfo {
	fs, err := model.ParseFileState(r.FileState)
	if err != nil {
		fs = model.FileStateUnknown
	}
	cs, err := model.ParseChecksumState(r.ChecksumState)
	if err != nil {
		cs = model.ChecksumStateUnknown
	}
	return model.FileInfo{
		FileID:            r.FileID,
		PillarID:          r.PillarID,
		CollectionID:      r.CollectionID,
		FileSize:          r.FileSize,
		LastFileCheck:     r.LastFileCheck.UTC(),
		Checksum:          r.Checksum,
		ChecksumSpec:      model.ChecksumSpec{Algorithm: r.ChecksumAlgorithm, Salt: r.ChecksumSalt},
		LastChecksumCheck: r.LastChecksumCheck.UTC(),
		FileState:         fs,
		ChecksumState:     cs,
	}
}

// fileStateRow and checksumStateRow are lookup tables documenting the stored codes.
type fileStateRow struct {
	Code int    `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"size:16;not null;uniqueIndex"`
}

func (fileStateRow) TableName() string { return "file_states" }

type checksumStateRow struct {
	Code int    `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"size:16;not null;uniqueIndex"`
}

func (checksumStateRow) TableName() string { return "checksum_states" }

type collectionRow struct {
	ID        string `gorm:"primaryKey;size:191"`
	CreatedAt time.Time
}

func (collectionRow) TableName() string { return "collections" }

type collectionPillarRow struct {
	CollectionID string `gorm:"primaryKey;size:191"`
	PillarID     string `gorm:"primaryKey;size:100"`
}

func (collectionPillarRow) TableName() string { return "collection_pillars" }

type statisticsRow struct {
	ID                    uint64    `gorm:"primaryKey;autoIncrement"`
	CollectionID          string    `gorm:"size:191;not null;index:ix_statistics_recorded,priority:1"`
	RecordedAt            time.Time `gorm:"not null;index:ix_statistics_recorded,priority:2"`
	FileCount             int64
	MissingFiles          int64
	MissingChecksums      int64
	InconsistentChecksums int64
	Pillars               []model.PillarCollectionMetrics `gorm:"serializer:json;type:text"`
}

func (statisticsRow) TableName() string { return "collection_statistics" }

// Tables lists every table the store owns with its expected columns.
func Tables() map[string][]string {
	return map[string][]string{
		"file_info": {"id", "collection_id", "file_id", "pillar_id", "file_size", "last_file_check",
			"checksum", "checksum_algorithm", "checksum_salt", "last_checksum_check", "file_state", "checksum_state"},
		"file_states":           {"code", "name"},
		"checksum_states":       {"code", "name"},
		"collections":           {"id", "created_at"},
		"collection_pillars":    {"collection_id", "pillar_id"},
		"collection_statistics": {"id", "collection_id", "recorded_at", "file_count", "missing_files", "missing_checksums", "inconsistent_checksums", "pillars"},
	}
}
