package pillar

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/storage"

	"github.com/minio/minio-go/v7"
)

// ManifestEntry is one line of a checksum manifest.
type ManifestEntry struct {
	FileID   string
	Checksum string
}

// ParseManifest reads md5sum-formatted lines: a hex digest, whitespace, then the file id
// (optionally prefixed by "*" for binary mode). Blank lines and "#" comments are ignored.
// A later line for the same file id replaces the earlier one.
func ParseManifest(r io.Reader) ([]ManifestEntry, error) {
	byID := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		sep := strings.IndexAny(text, " \t")
		if sep <= 0 {
			return nil, fmt.Errorf("manifest line %d: missing file id", line)
		}
		sum := strings.ToLower(text[:sep])
		if _, err := hex.DecodeString(sum); err != nil {
			return nil, fmt.Errorf("manifest line %d: invalid checksum %q", line, text[:sep])
		}
		fileID := strings.TrimPrefix(strings.TrimLeft(text[sep:], " \t"), "*")
		if fileID == "" {
			return nil, fmt.Errorf("manifest line %d: missing file id", line)
		}
		byID[fileID] = sum
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	entries := make([]ManifestEntry, 0, len(byID))
	for id, sum := range byID {
		entries = append(entries, ManifestEntry{FileID: id, Checksum: sum})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FileID < entries[j].FileID })
	return entries, nil
}

// ChecksumPillar reports checksums from a manifest object without holding any files.
// The manifest is read again on every request, so an updated manifest is picked up by
// the next collection cycle.
type ChecksumPillar struct {
	id     string
	client storage.Client
	bucket string
	object string
	spec   model.ChecksumSpec
	now    func() time.Time
}

// NewChecksumPillar creates a pillar over the manifest stored at object in bucket.
// spec is the spec the manifest checksums were computed with.
func NewChecksumPillar(id string, client storage.Client, bucket, object string, spec model.ChecksumSpec) *ChecksumPillar {
	if spec.Algorithm == "" {
		spec = DefaultSpec
	}
	return &ChecksumPillar{
		id:     id,
		client: client,
		bucket: bucket,
		object: strings.TrimPrefix(object, "/"),
		spec:   spec.Normalized(),
		now:    time.Now,
	}
}

func (p *ChecksumPillar) ID() string { return p.id }

func (p *ChecksumPillar) HasActualFile() bool { return false }

func (p *ChecksumPillar) DefaultSpec() model.ChecksumSpec { return p.spec }

func (p *ChecksumPillar) load(ctx context.Context) ([]ManifestEntry, time.Time, error) {
	info, err := p.client.StatObject(ctx, p.bucket, p.object, minio.StatObjectOptions{})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to stat manifest of %s: %w", p.id, err)
	}
	r, err := p.client.GetObject(ctx, p.bucket, p.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to fetch manifest of %s: %w", p.id, err)
	}
	defer r.Close()
	entries, err := ParseManifest(r)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("pillar %s: %w", p.id, err)
	}
	modified := info.LastModified.UTC()
	if info.LastModified.IsZero() {
		modified = p.now().UTC()
	}
	return entries, modified, nil
}

func (p *ChecksumPillar) supports(spec model.ChecksumSpec) error {
	if spec.Algorithm == "" || spec.Normalized() == p.spec {
		return nil
	}
	return fmt.Errorf("%w: pillar %s only reports %s", ErrUnsupported, p.id, p.spec.Algorithm)
}

// ListFiles returns the manifest ids. A checksum pillar knows no sizes, so FileSize is 0.
func (p *ChecksumPillar) ListFiles(ctx context.Context) ([]model.FileIDsItem, error) {
	entries, modified, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.FileIDsItem, len(entries))
	for i, e := range entries {
		items[i] = model.FileIDsItem{FileID: e.FileID, LastModified: modified}
	}
	return items, nil
}

// Checksums reports every manifest checksum, stamped with the manifest modification time.
func (p *ChecksumPillar) Checksums(ctx context.Context, spec model.ChecksumSpec) ([]model.ChecksumDataItem, error) {
	if err := p.supports(spec); err != nil {
		return nil, err
	}
	entries, modified, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.ChecksumDataItem, len(entries))
	for i, e := range entries {
		items[i] = model.ChecksumDataItem{FileID: e.FileID, Checksum: e.Checksum, Spec: p.spec, CalculatedAt: modified}
	}
	return items, nil
}

func (p *ChecksumPillar) ComputeChecksum(ctx context.Context, fileID string, spec model.ChecksumSpec) (model.ChecksumDataItem, error) {
	if err := p.supports(spec); err != nil {
		return model.ChecksumDataItem{}, err
	}
	entries, modified, err := p.load(ctx)
	if err != nil {
		return model.ChecksumDataItem{}, err
	}
	i := sort.Search(len(entries), func(i int) bool { return entries[i].FileID >= fileID })
	if i == len(entries) || entries[i].FileID != fileID {
		return model.ChecksumDataItem{}, fmt.Errorf("%w: %s at %s", ErrFileNotFound, fileID, p.id)
	}
	return model.ChecksumDataItem{FileID: fileID, Checksum: entries[i].Checksum, Spec: p.spec, CalculatedAt: modified}, nil
}

func (p *ChecksumPillar) FetchFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("%w: pillar %s holds no file content for %s", ErrUnsupported, p.id, fileID)
}

var _ Model = (*ChecksumPillar)(nil)
