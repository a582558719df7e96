package pillar

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/storage"

	"github.com/minio/minio-go/v7"
)

// FullPillar serves files stored as objects under a bucket prefix.
type FullPillar struct {
	id     string
	client storage.Client
	bucket string
	prefix string
	spec   model.ChecksumSpec
	now    func() time.Time
}

// NewFullPillar creates a pillar over the objects below prefix in bucket.
func NewFullPillar(id string, client storage.Client, bucket, prefix string, spec model.ChecksumSpec) *FullPillar {
	if spec.Algorithm == "" {
		spec = DefaultSpec
	}
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &FullPillar{id: id, client: client, bucket: bucket, prefix: prefix, spec: spec.Normalized(), now: time.Now}
}

func (p *FullPillar) ID() string { return p.id }

func (p *FullPillar) HasActualFile() bool { return true }

func (p *FullPillar) DefaultSpec() model.ChecksumSpec { return p.spec }

func (p *FullPillar) objectName(fileID string) string {
	return p.prefix + fileID
}

func (p *FullPillar) ListFiles(ctx context.Context) ([]model.FileIDsItem, error) {
	var items []model.FileIDsItem
	for obj := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Prefix: p.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list pillar %s: %w", p.id, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		fileID := strings.TrimPrefix(obj.Key, p.prefix)
		if fileID == "" || path.Base(fileID) == ".keep" {
			continue
		}
		items = append(items, model.FileIDsItem{FileID: fileID, FileSize: obj.Size, LastModified: obj.LastModified.UTC()})
	}
	return items, nil
}

func (p *FullPillar) Checksums(ctx context.Context, spec model.ChecksumSpec) ([]model.ChecksumDataItem, error) {
	files, err := p.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ChecksumDataItem, 0, len(files))
	for _, f := range files {
		item, err := p.ComputeChecksum(ctx, f.FileID, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (p *FullPillar) ComputeChecksum(ctx context.Context, fileID string, spec model.ChecksumSpec) (model.ChecksumDataItem, error) {
	if spec.Algorithm == "" {
		spec = p.spec
	}
	r, err := p.FetchFile(ctx, fileID)
	if err != nil {
		return model.ChecksumDataItem{}, err
	}
	defer r.Close()
	sum, err := Digest(r, spec)
	if err != nil {
		return model.ChecksumDataItem{}, fmt.Errorf("failed to checksum %s at %s: %w", fileID, p.id, err)
	}
	return model.ChecksumDataItem{FileID: fileID, Checksum: sum, Spec: spec.Normalized(), CalculatedAt: p.now().UTC()}, nil
}

// FetchFile stats the object first, since GetObject reports a missing key only on read.
func (p *FullPillar) FetchFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	name := p.objectName(fileID)
	if _, err := p.client.StatObject(ctx, p.bucket, name, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s at %s", ErrFileNotFound, fileID, p.id)
		}
		return nil, fmt.Errorf("failed to stat %s at %s: %w", fileID, p.id, err)
	}
	r, err := p.client.GetObject(ctx, p.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s at %s: %w", fileID, p.id, err)
	}
	return r, nil
}

var _ Model = (*FullPillar)(nil)
