package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"integrity-service/core/model"
)

// Integrity configures the integrity model.
type Integrity struct {
	// Backend selects the store: "database" (GORM) or "memory".
	Backend string `mapstructure:"backend" default:"database"`
	// Collections declares the collections and their pillars, e.g. "books=p1,p2;maps=p3".
	Collections string `mapstructure:"collections" default:""`
	// Pillars declares the pillar models, e.g. "p1=full:books/;p2=checksum:manifests/p2.md5".
	Pillars string `mapstructure:"pillars" default:""`
	// ChecksumAlgorithm is the default checksum algorithm of the pillars.
	ChecksumAlgorithm string `mapstructure:"checksum_algorithm" default:"MD5"`
	// ChecksumSalt is the hex-encoded HMAC salt. Empty for plain digests.
	ChecksumSalt string `mapstructure:"checksum_salt" default:""`
	// RefreshPeriodSeconds is how long a dirty cached count may be served before refetching.
	RefreshPeriodSeconds int `mapstructure:"refresh_period_seconds" default:"5"`
	// ChecksumMaxAgeHours excludes older checksums from comparison. Zero disables it.
	ChecksumMaxAgeHours int `mapstructure:"checksum_max_age_hours" default:"0"`
	// MaxListedIssues caps the file ids listed per issue kind.
	MaxListedIssues int `mapstructure:"max_listed_issues" default:"1000"`
	// MaxVoteFiles caps the files examined by one checksum vote.
	MaxVoteFiles int `mapstructure:"max_vote_files" default:"10000"`
	// CollectConcurrency bounds how many pillars are collected at once.
	CollectConcurrency int `mapstructure:"collect_concurrency" default:"4"`
	// ReportPrefix is the object prefix audit reports are uploaded under.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports/"`
}

// ParseCollections parses the Collections declaration.
func (c Integrity) ParseCollections() ([]model.CollectionConfig, error) {
	var out []model.CollectionConfig
	seen := make(map[string]bool)
	for _, part := range strings.Split(c.Collections, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, rest, ok := strings.Cut(part, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid collection declaration %q: expected id=pillar,pillar", part)
		}
		if seen[id] {
			return nil, fmt.Errorf("collection %s declared twice", id)
		}
		seen[id] = true

		var pillars []string
		for _, p := range strings.Split(rest, ",") {
			if p = strings.TrimSpace(p); p != "" {
				pillars = append(pillars, p)
			}
		}
		if len(pillars) == 0 {
			return nil, fmt.Errorf("collection %s has no pillars", id)
		}
		out = append(out, model.CollectionConfig{ID: id, PillarIDs: pillars})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ChecksumSpec returns the configured default checksum spec.
func (c Integrity) ChecksumSpec() model.ChecksumSpec {
	return model.ChecksumSpec{Algorithm: c.ChecksumAlgorithm, Salt: c.ChecksumSalt}.Normalized()
}

// RefreshPeriod returns RefreshPeriodSeconds as a duration.
func (c Integrity) RefreshPeriod() time.Duration {
	return time.Duration(c.RefreshPeriodSeconds) * time.Second
}

// ChecksumMaxAge returns ChecksumMaxAgeHours as a duration.
func (c Integrity) ChecksumMaxAge() time.Duration {
	return time.Duration(c.ChecksumMaxAgeHours) * time.Hour
}
