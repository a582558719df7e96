package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"integrity-service/core/storage"
	"integrity-service/feature/pillar"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// placeholder marks an empty pillar prefix. Full pillars skip it when listing.
const placeholder = ".keep"

// StorageReport is the result of a storage check.
type StorageReport struct {
	Bucket       string   `json:"bucket"`
	BucketExists bool     `json:"bucket_exists"`
	Matched      bool     `json:"matched"`
	Missing      []string `json:"missing"` // ids of pillars whose location holds nothing
}

func prefixOf(location string) string {
	location = strings.TrimPrefix(location, "/")
	if location != "" && !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return location
}

// CheckStorage verifies the bucket exists and every pillar location holds something:
// at least one object under a full pillar prefix, the manifest of a checksum pillar.
func CheckStorage(ctx context.Context, client storage.Client, bucket string, defs []pillar.Definition) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket, Missing: []string{}}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		for _, def := range defs {
			report.Missing = append(report.Missing, def.ID)
		}
		return report, nil
	}

	for _, def := range defs {
		found, err := locationExists(ctx, client, bucket, def)
		if err != nil {
			return nil, err
		}
		if !found {
			report.Missing = append(report.Missing, def.ID)
		}
	}
	report.Matched = len(report.Missing) == 0
	return report, nil
}

func locationExists(ctx context.Context, client storage.Client, bucket string, def pillar.Definition) (bool, error) {
	if def.Kind == pillar.KindChecksum {
		_, err := client.StatObject(ctx, bucket, strings.TrimPrefix(def.Location, "/"), minio.StatObjectOptions{})
		if err == nil {
			return true, nil
		}
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat manifest of %s: %w", def.ID, err)
	}

	opts := minio.ListObjectsOptions{
		Prefix:    prefixOf(def.Location),
		Recursive: true,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return false, fmt.Errorf("failed to list %s: %w", def.ID, obj.Err)
		}
		return true, nil
	}
	return false, nil
}

// FixStorage creates the bucket if needed and a placeholder under every missing full
// pillar prefix. Missing manifests cannot be created and are returned unfixed.
func FixStorage(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, report *StorageReport, defs []pillar.Definition) ([]string, error) {
	if !report.BucketExists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		logger.Info("Created missing bucket", zap.String("bucket", bucket))
	}

	missing := make(map[string]bool, len(report.Missing))
	for _, id := range report.Missing {
		missing[id] = true
	}

	unfixed := []string{}
	for _, def := range defs {
		if !missing[def.ID] {
			continue
		}
		if def.Kind == pillar.KindChecksum {
			logger.Warn("Checksum manifest missing", zap.String("pillar", def.ID), zap.String("object", def.Location))
			unfixed = append(unfixed, def.ID)
			continue
		}
		name := prefixOf(def.Location) + placeholder
		if _, err := client.PutObject(ctx, bucket, name, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
			logger.Error("Failed to create pillar prefix", zap.String("pillar", def.ID), zap.Error(err))
			return nil, err
		}
		logger.Info("Created missing pillar prefix", zap.String("pillar", def.ID), zap.String("object", name))
	}
	return unfixed, nil
}
