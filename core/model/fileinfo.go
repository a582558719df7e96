package model

import (
	"strings"
	"time"
)

// Epoch marks a timestamp that was never set.
var Epoch = time.Unix(0, 0).UTC()

// ChecksumSpec identifies the algorithm (and optional salt) a checksum was computed with.
type ChecksumSpec struct {
	// Algorithm is the digest name, e.g. "MD5" or "SHA256".
	Algorithm string `json:"algorithm"`
	// Salt is the hex-encoded HMAC key. Empty for plain digests.
	Salt string `json:"salt,omitempty"`
}

// Normalized returns the spec with an upper-case algorithm name and lower-case salt.
func (s ChecksumSpec) Normalized() ChecksumSpec {
	return ChecksumSpec{
		Algorithm: strings.ToUpper(strings.TrimSpace(s.Algorithm)),
		Salt:      strings.ToLower(strings.TrimSpace(s.Salt)),
	}
}

// FileInfo is the persisted knowledge about one file at one pillar in one collection.
type FileInfo struct {
	FileID            string        `json:"file_id"`
	PillarID          string        `json:"pillar_id"`
	CollectionID      string        `json:"collection_id"`
	FileSize          int64         `json:"file_size"`
	LastFileCheck     time.Time     `json:"last_file_check"`
	Checksum          *string       `json:"checksum"`
	ChecksumSpec      ChecksumSpec  `json:"checksum_spec"`
	LastChecksumCheck time.Time     `json:"last_checksum_check"`
	FileState         FileState     `json:"file_state"`
	ChecksumState     ChecksumState `json:"checksum_state"`
}

// HasChecksum reports whether a checksum has been recorded.
func (f FileInfo) HasChecksum() bool {
	return f.Checksum != nil && *f.Checksum != ""
}

// FileIDsItem is one entry of a pillar's file listing.
type FileIDsItem struct {
	FileID       string    `json:"file_id"`
	FileSize     int64     `json:"file_size"`
	LastModified time.Time `json:"last_modified"`
}

// ChecksumDataItem is one entry of a pillar's checksum report.
type ChecksumDataItem struct {
	FileID string `json:"file_id"`
	// Checksum is the hex-encoded digest. Empty means the pillar reported no checksum.
	Checksum     string       `json:"checksum"`
	Spec         ChecksumSpec `json:"checksum_spec"`
	CalculatedAt time.Time    `json:"calculated_at"`
}

// CollectionConfig is a collection and the fixed set of pillars replicating it.
type CollectionConfig struct {
	ID        string   `json:"id"`
	PillarIDs []string `json:"pillar_ids"`
}

// HasPillar reports whether pillarID belongs to the collection.
func (c CollectionConfig) HasPillar(pillarID string) bool {
	for _, p := range c.PillarIDs {
		if p == pillarID {
			return true
		}
	}
	return false
}

// PillarCollectionMetrics are the aggregate counts for one pillar in one collection.
type PillarCollectionMetrics struct {
	CollectionID   string `json:"collection_id"`
	PillarID       string `json:"pillar_id"`
	Files          int64  `json:"files"`
	MissingFiles   int64  `json:"missing_files"`
	ChecksumErrors int64  `json:"checksum_errors"`
}

// CollectionStatistics is a snapshot of a collection's state taken after an audit.
type CollectionStatistics struct {
	CollectionID          string                    `json:"collection_id"`
	RecordedAt            time.Time                 `json:"recorded_at"`
	FileCount             int64                     `json:"file_count"`
	MissingFiles          int64                     `json:"missing_files"`
	MissingChecksums      int64                     `json:"missing_checksums"`
	InconsistentChecksums int64                     `json:"inconsistent_checksums"`
	Pillars               []PillarCollectionMetrics `json:"pillars"`
}
