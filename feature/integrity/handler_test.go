package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"integrity-service/core/model"
	"integrity-service/core/reconcile"
	"integrity-service/core/storage/mocks"
	"integrity-service/core/store"
	"integrity-service/feature/pillar"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, opts ...Option) (*fiber.App, *fixture) {
	f := setupService(t, opts...)
	app := fiber.New()
	h := NewHandler(f.svc)
	h.now = f.clock.Now
	h.RegisterRoutes(app)
	return app, f
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHandleCollections(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := do(t, app, "POST", "/integrity/collections", `{"id":"c2","pillar_ids":["p3"]}`)
	assert.Equal(t, 201, status)

	status, body := do(t, app, "POST", "/integrity/collections", `{"id":"c2","pillar_ids":["p3"]}`)
	assert.Equal(t, 409, status)
	assert.Contains(t, string(body), "already exists")

	status, _ = do(t, app, "POST", "/integrity/collections", `{"id":`)
	assert.Equal(t, 400, status)

	status, body = do(t, app, "GET", "/integrity/collections", "")
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), `"c2"`)

	status, body = do(t, app, "GET", "/integrity/collections/c1/pillars", "")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `["p1","p2"]`, string(body))

	status, _ = do(t, app, "DELETE", "/integrity/collections/c2", "")
	assert.Equal(t, 204, status)
	status, _ = do(t, app, "DELETE", "/integrity/collections/c2", "")
	assert.Equal(t, 404, status)
}

func TestHandleIngestAndIssues(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := do(t, app, "POST", "/integrity/collections/c1/pillars/p1/listing",
		`{"items":[{"file_id":"a","file_size":5},{"file_id":"b","file_size":7}]}`)
	require.Equal(t, 202, status)
	assert.JSONEq(t, `{"items":2}`, string(body))

	status, _ = do(t, app, "POST", "/integrity/collections/c1/pillars/p2/listing", `{"items":[{"file_id":"a","file_size":5}]}`)
	require.Equal(t, 202, status)

	status, _ = do(t, app, "POST", "/integrity/collections/c1/pillars/p2/checksums",
		`{"items":[{"file_id":"a","checksum":"ab","checksum_spec":{"algorithm":"MD5"}}]}`)
	require.Equal(t, 202, status)

	status, _ = do(t, app, "POST", "/integrity/collections/c1/pillars/p9/listing", `{"items":[{"file_id":"a"}]}`)
	assert.Equal(t, 400, status)
	status, _ = do(t, app, "POST", "/integrity/collections/nope/pillars/p1/listing", `{"items":[{"file_id":"a"}]}`)
	assert.Equal(t, 404, status)

	var list reconcile.IssueList
	status, body = do(t, app, "GET", "/integrity/collections/c1/issues/missing-files", "")
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, reconcile.IssueList{Count: 1, FileIDs: []string{"b"}}, list)

	status, body = do(t, app, "GET", "/integrity/collections/c1/issues/missing-checksums", "")
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, []string{"a", "b"}, list.FileIDs)

	status, body = do(t, app, "GET", "/integrity/collections/c1/issues/missing-copies?min_size=6", "")
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, []string{"b"}, list.FileIDs)
	status, _ = do(t, app, "GET", "/integrity/collections/c1/issues/missing-copies?min_size=x", "")
	assert.Equal(t, 400, status)
	status, _ = do(t, app, "GET", "/integrity/collections/c1/issues/missing-copies?min_size=9&max_size=3", "")
	assert.Equal(t, 400, status)

	status, body = do(t, app, "GET", "/integrity/collections/c1/issues/inconsistent-checksums?max_age_hours=2", "")
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Zero(t, list.Count)
	status, _ = do(t, app, "GET", "/integrity/collections/c1/issues/inconsistent-checksums?cutoff=yesterday", "")
	assert.Equal(t, 400, status)

	status, body = do(t, app, "GET", "/integrity/collections/c1/files?limit=1", "")
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, reconcile.IssueList{Count: 2, FileIDs: []string{"a"}, Truncated: true}, list)

	status, body = do(t, app, "GET", "/integrity/collections/c1/pillars/p1/metrics", "")
	require.Equal(t, 200, status)
	assert.JSONEq(t, `{"collection_id":"c1","pillar_id":"p1","files":2,"missing_files":0,"checksum_errors":0}`, string(body))

	status, body = do(t, app, "GET", "/integrity/collections/c1/pillars/p1/files?offset=1", "")
	require.Equal(t, 200, status)
	assert.JSONEq(t, `["b"]`, string(body))
	status, _ = do(t, app, "GET", "/integrity/collections/c1/pillars/p1/files?state=lost", "")
	assert.Equal(t, 400, status)

	status, body = do(t, app, "GET", "/integrity/metrics", "")
	require.Equal(t, 200, status)
	assert.Contains(t, string(body), `"pillar_id":"p2"`)
}

func TestHandleFiles(t *testing.T) {
	app, f := setupTestApp(t)
	f.list(t, "p1", "a")

	status, _ := do(t, app, "GET", "/integrity/collections/c1/file", "")
	assert.Equal(t, 400, status)

	status, body := do(t, app, "GET", "/integrity/collections/c1/file?file_id=a", "")
	require.Equal(t, 200, status)
	assert.Contains(t, string(body), `"pillar_id":"p1"`)

	status, _ = do(t, app, "DELETE", "/integrity/collections/c1/file", "")
	assert.Equal(t, 400, status)
	status, _ = do(t, app, "DELETE", "/integrity/collections/c1/file?file_id=a", "")
	assert.Equal(t, 204, status)
	status, _ = do(t, app, "DELETE", "/integrity/collections/nope/file?file_id=a", "")
	assert.Equal(t, 404, status)
}

func TestHandleSweep(t *testing.T) {
	app, f := setupTestApp(t)
	f.list(t, "p1", "a")
	f.list(t, "p2", "a")
	f.clock.Advance(1)

	status, body := do(t, app, "POST", "/integrity/collections/c1/sweep", "")
	require.Equal(t, 200, status)
	var begun ConcludeRequest
	require.NoError(t, json.Unmarshal(body, &begun))
	assert.Equal(t, f.clock.Now(), begun.Cutoff)

	f.list(t, "p1", "a")

	status, _ = do(t, app, "POST", "/integrity/collections/c1/sweep/conclude", `{}`)
	assert.Equal(t, 400, status)

	status, body = do(t, app, "POST", "/integrity/collections/c1/sweep/conclude", string(body))
	require.Equal(t, 200, status)
	var res reconcile.SweepResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, []reconcile.PillarSweep{{PillarID: "p1"}, {PillarID: "p2", Missing: 1}}, res.Pillars)

	status, _ = do(t, app, "POST", "/integrity/collections/nope/sweep", "")
	assert.Equal(t, 404, status)
}

func TestHandleAuditAndStatistics(t *testing.T) {
	client := new(mocks.Client)
	app, f := setupTestApp(t, WithStorage(client, "bucket", "reports/"))
	f.list(t, "p1", "a")

	status, _ := do(t, app, "GET", "/integrity/collections/c1/statistics", "")
	assert.Equal(t, 404, status)

	client.On("PutObject", mock.Anything, "bucket", "reports/c1/20260102T030405Z.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	req := httptest.NewRequest("POST", "/integrity/collections/c1/audit?export=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "reports/c1/20260102T030405Z.json", resp.Header.Get("X-Report-Object"))

	var report reconcile.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, int64(1), report.MissingFiles.Count)

	status, body := do(t, app, "GET", "/integrity/collections/c1/statistics", "")
	require.Equal(t, 200, status)
	assert.Contains(t, string(body), `"missing_files":1`)
	client.AssertExpectations(t)
}

func TestHandleReconcileAndVote(t *testing.T) {
	app, f := setupTestApp(t)
	f.list(t, "p1", "a")
	f.list(t, "p2", "a")
	f.checksum(t, "p1", "a", "aa")
	f.checksum(t, "p2", "a", "bb")

	status, body := do(t, app, "POST", "/integrity/collections/c1/reconcile", "")
	require.Equal(t, 200, status)
	var res reconcile.ChecksumResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, int64(1), res.InconsistentCount)

	status, body = do(t, app, "POST", "/integrity/collections/c1/votes?dry_run=true&confirm=true", "")
	require.Equal(t, 200, status)
	var vote VoteResponse
	require.NoError(t, json.Unmarshal(body, &vote))
	require.NotNil(t, vote.Plan)
	assert.Zero(t, vote.Executed)
}

func TestHandleNotConfigured(t *testing.T) {
	app, _ := setupTestApp(t)

	for _, target := range []string{"/integrity/schema", "/integrity/storage"} {
		status, _ := do(t, app, "GET", target, "")
		assert.Equal(t, 503, status, target)
	}
	status, _ := do(t, app, "POST", "/integrity/collections/c1/collect", "")
	assert.Equal(t, 503, status)
}

func TestHandleStorageCheck(t *testing.T) {
	client := new(mocks.Client)
	defs := []pillar.Definition{{ID: "p1", Kind: pillar.KindFull, Location: "p1"}}
	app, _ := setupTestApp(t, WithStorage(client, "bucket", "reports/"), WithPillars(defs, nil, 1))

	client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return([]minio.ObjectInfo{{Key: "p1/a"}})

	status, body := do(t, app, "GET", "/integrity/storage", "")
	require.Equal(t, 200, status)
	var res map[string]any
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "checked", res["status"])
}

func TestHandleCollectFailedPillar(t *testing.T) {
	models := []pillar.Model{&stubModel{id: "p1"}, &stubModel{id: "p2", err: errors.New("offline")}}
	app, _ := setupTestApp(t, WithPillars(nil, models, 2))

	status, body := do(t, app, "POST", "/integrity/collections/c1/collect", "")
	assert.Equal(t, 502, status)
	assert.Contains(t, string(body), "offline")
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		store.ErrCollectionNotFound: 404,
		pillar.ErrFileNotFound:      404,
		store.ErrCollectionExists:   409,
		store.ErrConfigMismatch:     409,
		store.ErrUnknownPillar:      400,
		store.ErrInvalidArgument:    400,
		pillar.ErrUnsupported:       400,
		ErrNotConfigured:            503,
		errors.New("boom"):          500,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusOf(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

// stubModel is a pillar holding a single file.
type stubModel struct {
	id  string
	err error
}

func (s *stubModel) ID() string                      { return s.id }
func (s *stubModel) HasActualFile() bool             { return false }
func (s *stubModel) DefaultSpec() model.ChecksumSpec { return pillar.DefaultSpec }

func (s *stubModel) ListFiles(context.Context) ([]model.FileIDsItem, error) {
	return []model.FileIDsItem{{FileID: "a", FileSize: 1}}, s.err
}

func (s *stubModel) Checksums(context.Context, model.ChecksumSpec) ([]model.ChecksumDataItem, error) {
	return []model.ChecksumDataItem{{FileID: "a", Checksum: "aa", Spec: pillar.DefaultSpec}}, s.err
}

func (s *stubModel) ComputeChecksum(context.Context, string, model.ChecksumSpec) (model.ChecksumDataItem, error) {
	return model.ChecksumDataItem{}, pillar.ErrUnsupported
}

func (s *stubModel) FetchFile(context.Context, string) (io.ReadCloser, error) {
	return nil, pillar.ErrUnsupported
}

func TestHandleIngestKeepsRouteIDs(t *testing.T) {
	app, f := setupTestApp(t)

	status, _ := do(t, app, "POST", "/integrity/collections/c1/pillars/p1/listing",
		`{"items":[{"file_id":"a","file_size":5},{"file_id":"b","file_size":7}]}`)
	require.Equal(t, 202, status)

	// A later request with other route values must not rewrite the stored ids.
	status, _ = do(t, app, "GET", "/integrity/collections/zz/pillars/qq/files", "")
	require.Equal(t, 200, status)
	status, _ = do(t, app, "GET", "/integrity/collections/c2/pillars/p2/metrics", "")
	require.Equal(t, 200, status)

	infos, err := f.svc.GetFileInfos(f.ctx, "c1", "a")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "c1", infos[0].CollectionID)
	assert.Equal(t, "p1", infos[0].PillarID)

	m, err := f.svc.GetPillarCollectionMetrics(f.ctx, "c1", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.Files)
}
