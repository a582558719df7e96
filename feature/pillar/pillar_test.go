package pillar

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	md5Hello = "5d41402abc4b2a76b9719d911017c592"
	md5World = "7d793037a0760186574b0282f2f435e7"
)

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

func TestDigest(t *testing.T) {
	sum, err := Digest(strings.NewReader("hello"), model.ChecksumSpec{Algorithm: "md5"})
	require.NoError(t, err)
	assert.Equal(t, md5Hello, sum)

	sum, err = Digest(strings.NewReader("hello"), model.ChecksumSpec{Algorithm: "SHA256"})
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)

	salted, err := Digest(strings.NewReader("hello"), model.ChecksumSpec{Algorithm: "MD5", Salt: "ab01"})
	require.NoError(t, err)
	assert.Len(t, salted, 32)
	assert.NotEqual(t, md5Hello, salted)

	_, err = Digest(strings.NewReader("hello"), model.ChecksumSpec{Algorithm: "CRC32"})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Digest(strings.NewReader("hello"), model.ChecksumSpec{Algorithm: "MD5", Salt: "zz"})
	assert.Error(t, err)
}

func TestFullPillar_ListFiles(t *testing.T) {
	client := new(mocks.Client)
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client.On("ListObjects", mock.Anything, "bucket", minio.ListObjectsOptions{Prefix: "books/", Recursive: true}).Return([]minio.ObjectInfo{
		{Key: "books/"},
		{Key: "books/.keep"},
		{Key: "books/a.txt", Size: 5, LastModified: modified},
		{Key: "books/sub/b.txt", Size: 7, LastModified: modified},
	})

	p := NewFullPillar("p1", client, "bucket", "/books", model.ChecksumSpec{})
	items, err := p.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.FileIDsItem{
		{FileID: "a.txt", FileSize: 5, LastModified: modified},
		{FileID: "sub/b.txt", FileSize: 7, LastModified: modified},
	}, items)
	assert.True(t, p.HasActualFile())
	assert.Equal(t, DefaultSpec, p.DefaultSpec())
}

func TestFullPillar_ListFilesError(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return([]minio.ObjectInfo{
		{Err: errors.New("access denied")},
	})

	_, err := NewFullPillar("p1", client, "bucket", "", model.ChecksumSpec{}).ListFiles(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestFullPillar_Checksums(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return([]minio.ObjectInfo{
		{Key: "f/a", Size: 5},
		{Key: "f/b", Size: 5},
	})
	for name, content := range map[string]string{"f/a": "hello", "f/b": "world"} {
		client.On("StatObject", mock.Anything, "bucket", name, mock.Anything).Return(minio.ObjectInfo{Key: name}, nil)
		client.On("GetObject", mock.Anything, "bucket", name, mock.Anything).Return(body(content), nil)
	}

	sums, err := NewFullPillar("p1", client, "bucket", "f", model.ChecksumSpec{}).Checksums(context.Background(), model.ChecksumSpec{})
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "a", sums[0].FileID)
	assert.Equal(t, md5Hello, sums[0].Checksum)
	assert.Equal(t, md5World, sums[1].Checksum)
	assert.Equal(t, "MD5", sums[1].Spec.Algorithm)
	client.AssertExpectations(t)
}

func TestFullPillar_FetchMissingFile(t *testing.T) {
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "bucket", "gone", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := NewFullPillar("p1", client, "bucket", "", model.ChecksumSpec{}).FetchFile(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrFileNotFound)
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestParseManifest(t *testing.T) {
	entries, err := ParseManifest(strings.NewReader(`
# generated nightly
5D41402ABC4B2A76B9719D911017C592  docs/a.txt
7d793037a0760186574b0282f2f435e7 *bin/b
5d41402abc4b2a76b9719d911017c592	docs/with space.txt
7d793037a0760186574b0282f2f435e7  docs/a.txt
`))
	require.NoError(t, err)
	assert.Equal(t, []ManifestEntry{
		{FileID: "bin/b", Checksum: md5World},
		{FileID: "docs/a.txt", Checksum: md5World},
		{FileID: "docs/with space.txt", Checksum: md5Hello},
	}, entries)
}

func TestParseManifest_Invalid(t *testing.T) {
	for name, input := range map[string]string{
		"no file id":  "5d41402abc4b2a76b9719d911017c592\n",
		"not hex":     "xyz  a.txt\n",
		"only marker": "5d41402abc4b2a76b9719d911017c592  *\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func manifestClient(manifest string, modified time.Time) *mocks.Client {
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "bucket", "m/p2.md5", mock.Anything).Return(minio.ObjectInfo{LastModified: modified}, nil)
	client.On("GetObject", mock.Anything, "bucket", "m/p2.md5", mock.Anything).Return(body(manifest), nil).Once()
	return client
}

func TestChecksumPillar(t *testing.T) {
	modified := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	manifest := md5Hello + "  a\n" + md5World + "  b\n"
	ctx := context.Background()

	t.Run("reports manifest checksums", func(t *testing.T) {
		p := NewChecksumPillar("p2", manifestClient(manifest, modified), "bucket", "/m/p2.md5", model.ChecksumSpec{})
		sums, err := p.Checksums(ctx, model.ChecksumSpec{})
		require.NoError(t, err)
		assert.Equal(t, []model.ChecksumDataItem{
			{FileID: "a", Checksum: md5Hello, Spec: DefaultSpec, CalculatedAt: modified},
			{FileID: "b", Checksum: md5World, Spec: DefaultSpec, CalculatedAt: modified},
		}, sums)
		assert.False(t, p.HasActualFile())
	})

	t.Run("lists manifest ids", func(t *testing.T) {
		p := NewChecksumPillar("p2", manifestClient(manifest, modified), "bucket", "m/p2.md5", model.ChecksumSpec{})
		items, err := p.ListFiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.FileIDsItem{{FileID: "a", LastModified: modified}, {FileID: "b", LastModified: modified}}, items)
	})

	t.Run("computes a single checksum", func(t *testing.T) {
		p := NewChecksumPillar("p2", manifestClient(manifest, modified), "bucket", "m/p2.md5", model.ChecksumSpec{})
		item, err := p.ComputeChecksum(ctx, "b", model.ChecksumSpec{Algorithm: "md5"})
		require.NoError(t, err)
		assert.Equal(t, md5World, item.Checksum)
	})

	t.Run("unknown file", func(t *testing.T) {
		p := NewChecksumPillar("p2", manifestClient(manifest, modified), "bucket", "m/p2.md5", model.ChecksumSpec{})
		_, err := p.ComputeChecksum(ctx, "zzz", model.ChecksumSpec{})
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("rejects content and other specs", func(t *testing.T) {
		p := NewChecksumPillar("p2", new(mocks.Client), "bucket", "m/p2.md5", model.ChecksumSpec{})
		_, err := p.FetchFile(ctx, "a")
		assert.ErrorIs(t, err, ErrUnsupported)
		_, err = p.Checksums(ctx, model.ChecksumSpec{Algorithm: "SHA256"})
		assert.ErrorIs(t, err, ErrUnsupported)
		_, err = p.ComputeChecksum(ctx, "a", model.ChecksumSpec{Algorithm: "MD5", Salt: "00"})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestParseDefinitions(t *testing.T) {
	defs, err := ParseDefinitions(" p2 = checksum:manifests/p2.md5 ; p1=FULL:books/;")
	require.NoError(t, err)
	assert.Equal(t, []Definition{
		{ID: "p1", Kind: KindFull, Location: "books/"},
		{ID: "p2", Kind: KindChecksum, Location: "manifests/p2.md5"},
	}, defs)

	models := Build(defs, new(mocks.Client), "bucket", model.ChecksumSpec{})
	require.Len(t, models, 2)
	assert.True(t, models[0].HasActualFile())
	assert.False(t, models[1].HasActualFile())

	defs, err = ParseDefinitions("")
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestParseDefinitions_Invalid(t *testing.T) {
	for _, raw := range []string{
		"p1",
		"=full:x",
		"p1=tape:x",
		"p1=checksum:",
		"p1=full:a;p1=full:b",
	} {
		_, err := ParseDefinitions(raw)
		assert.Error(t, err, raw)
	}
}
