package integrity

import (
	"errors"
	"strconv"
	"time"

	"integrity-service/core/logger"
	"integrity-service/core/model"
	"integrity-service/core/reconcile"
	"integrity-service/core/store"
	"integrity-service/feature/integrity/checks"
	"integrity-service/feature/pillar"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the integrity model.
type Handler struct {
	service *Service
	now     func() time.Time
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.SchemaReport{}
	return &Handler{service: service, now: time.Now}
}

// ListingRequest is the body of a file listing report.
type ListingRequest struct {
	Items []model.FileIDsItem `json:"items"`
}

// ChecksumRequest is the body of a checksum report.
type ChecksumRequest struct {
	Items []model.ChecksumDataItem `json:"items"`
}

// ConcludeRequest is the body of a sweep conclusion.
type ConcludeRequest struct {
	Cutoff time.Time `json:"cutoff"`
}

// VoteResponse is the result of a checksum vote.
type VoteResponse struct {
	Plan     *reconcile.VotePlan `json:"plan"`
	Executed int                 `json:"executed"`
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/metrics", h.HandleAllMetrics)

	group.Get("/collections", h.HandleListCollections)
	group.Post("/collections", h.HandleAddCollection)

	col := group.Group("/collections/:collection")
	col.Delete("/", h.HandleRemoveCollection)
	col.Get("/pillars", h.HandleListPillars)
	col.Get("/files", h.HandleListFiles)
	col.Get("/file", h.HandleGetFileInfos)
	col.Delete("/file", h.HandleRemoveFile)
	col.Get("/statistics", h.HandleStatistics)

	col.Post("/pillars/:pillar/listing", h.HandleIngestListing)
	col.Post("/pillars/:pillar/checksums", h.HandleIngestChecksums)
	col.Get("/pillars/:pillar/metrics", h.HandlePillarMetrics)
	col.Get("/pillars/:pillar/files", h.HandlePillarFiles)

	col.Get("/issues/missing-files", h.HandleMissingFiles)
	col.Get("/issues/missing-checksums", h.HandleMissingChecksums)
	col.Get("/issues/inconsistent-checksums", h.HandleInconsistentChecksums)
	col.Get("/issues/missing-copies", h.HandleMissingCopies)

	col.Post("/sweep", h.HandleBeginSweep)
	col.Post("/sweep/conclude", h.HandleConcludeSweep)
	col.Post("/reconcile", h.HandleReconcile)
	col.Post("/audit", h.HandleAudit)
	col.Post("/votes", h.HandleVote)
	col.Post("/collect", h.HandleCollect)
}

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrCollectionNotFound), errors.Is(err, pillar.ErrFileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrCollectionExists), errors.Is(err, store.ErrConfigMismatch):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrUnknownPillar), errors.Is(err, store.ErrInvalidArgument), errors.Is(err, pillar.ErrUnsupported):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err), zap.Int("status", status))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// param returns a copy of a route parameter. Fiber reuses the request buffer the
// parameter points into, and the ids outlive the request in the store and cache.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func queryInt64(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// cutoff reads the checksum staleness boundary from ?cutoff (RFC 3339) or
// ?max_age_hours. Neither yields the zero time, meaning the configured default.
func (h *Handler) cutoff(c *fiber.Ctx) (time.Time, error) {
	if raw := c.Query("cutoff"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		return t.UTC(), err
	}
	hours, err := queryInt64(c, "max_age_hours")
	if err != nil || hours <= 0 {
		return time.Time{}, err
	}
	return h.now().UTC().Add(-time.Duration(hours) * time.Hour), nil
}

// HandleListCollections lists the collections.
// @Summary List Collections
// @Description Returns every registered collection with its pillars.
// @Tags collections
// @Produce json
// @Success 200 {array} model.CollectionConfig
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/collections [get]
func (h *Handler) HandleListCollections(c *fiber.Ctx) error {
	cols, err := h.service.Collections(c.Context())
	if err != nil {
		return h.fail(c, "Failed to list collections", err)
	}
	return c.JSON(cols)
}

// HandleAddCollection registers a collection.
// @Summary Add Collection
// @Description Registers a collection with its fixed set of pillars.
// @Tags collections
// @Accept json
// @Produce json
// @Param collection body model.CollectionConfig true "Collection"
// @Success 201 {object} model.CollectionConfig
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 409 {object} map[string]string "Collection Exists"
// @Router /integrity/collections [post]
func (h *Handler) HandleAddCollection(c *fiber.Ctx) error {
	var cfg model.CollectionConfig
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.service.AddCollection(c.Context(), cfg); err != nil {
		return h.fail(c, "Failed to add collection", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// HandleRemoveCollection deletes a collection.
// @Summary Remove Collection
// @Description Deletes a collection with all its records and statistics.
// @Tags collections
// @Param collection path string true "Collection ID"
// @Success 204
// @Failure 404 {object} map[string]string "Collection Not Found"
// @Router /integrity/collections/{collection} [delete]
func (h *Handler) HandleRemoveCollection(c *fiber.Ctx) error {
	if err := h.service.RemoveCollection(c.Context(), param(c, "collection")); err != nil {
		return h.fail(c, "Failed to remove collection", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListPillars lists the pillars of a collection.
// @Summary List Pillars
// @Tags collections
// @Produce json
// @Param collection path string true "Collection ID"
// @Success 200 {array} string
// @Failure 404 {object} map[string]string "Collection Not Found"
// @Router /integrity/collections/{collection}/pillars [get]
func (h *Handler) HandleListPillars(c *fiber.Ctx) error {
	pillars, err := h.service.Pillars(c.Context(), param(c, "collection"))
	if err != nil {
		return h.fail(c, "Failed to list pillars", err)
	}
	return c.JSON(pillars)
}

// HandleListFiles lists the file ids of a collection.
// @Summary List Files
// @Description Returns the exact file count and the first file ids in ascending order.
// @Tags files
// @Produce json
// @Param collection path string true "Collection ID"
// @Param limit query int false "Maximum ids listed"
// @Success 200 {object} reconcile.IssueList
// @Router /integrity/collections/{collection}/files [get]
func (h *Handler) HandleListFiles(c *fiber.Ctx) error {
	res, err := h.service.GetAllFileIDs(c.Context(), param(c, "collection"), c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, "Failed to list files", err)
	}
	return c.JSON(res)
}

// HandleGetFileInfos returns the records of one file.
// @Summary Get File Infos
// @Description Returns the record of the file at every pillar that reported it.
// @Tags files
// @Produce json
// @Param collection path string true "Collection ID"
// @Param file_id query string true "File ID"
// @Success 200 {array} model.FileInfo
// @Failure 400 {object} map[string]string "Missing file_id"
// @Router /integrity/collections/{collection}/file [get]
func (h *Handler) HandleGetFileInfos(c *fiber.Ctx) error {
	fileID := c.Query("file_id")
	if fileID == "" {
		return badRequest(c, "file_id is required")
	}
	infos, err := h.service.GetFileInfos(c.Context(), param(c, "collection"), fileID)
	if err != nil {
		return h.fail(c, "Failed to get file infos", err)
	}
	return c.JSON(infos)
}

// HandleRemoveFile deletes every record of one file.
// @Summary Remove File
// @Tags files
// @Param collection path string true "Collection ID"
// @Param file_id query string true "File ID"
// @Success 204
// @Failure 400 {object} map[string]string "Missing file_id"
// @Failure 404 {object} map[string]string "Collection Not Found"
// @Router /integrity/collections/{collection}/file [delete]
func (h *Handler) HandleRemoveFile(c *fiber.Ctx) error {
	if err := h.service.RemoveFile(c.Context(), param(c, "collection"), c.Query("file_id")); err != nil {
		return h.fail(c, "Failed to remove file", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleStatistics returns the latest recorded statistics.
// @Summary Latest Statistics
// @Tags reconciliation
// @Produce json
// @Param collection path string true "Collection ID"
// @Success 200 {object} model.CollectionStatistics
// @Failure 404 {object} map[string]string "No Statistics"
// @Router /integrity/collections/{collection}/statistics [get]
func (h *Handler) HandleStatistics(c *fiber.Ctx) error {
	stats, err := h.service.LatestStatistics(c.Context(), param(c, "collection"))
	if err != nil {
		return h.fail(c, "Failed to read statistics", err)
	}
	if stats == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no statistics recorded"})
	}
	return c.JSON(stats)
}

// HandleIngestListing records a pillar's file listing.
// @Summary Ingest File Listing
// @Description Marks every listed file EXISTING at the pillar.
// @Tags ingestion
// @Accept json
// @Produce json
// @Param collection path string true "Collection ID"
// @Param pillar path string true "Pillar ID"
// @Param listing body ListingRequest true "File listing"
// @Success 202 {object} map[string]int "Accepted items"
// @Failure 400 {object} map[string]string "Unknown Pillar"
// @Failure 404 {object} map[string]string "Collection Not Found"
// @Router /integrity/collections/{collection}/pillars/{pillar}/listing [post]
func (h *Handler) HandleIngestListing(c *fiber.Ctx) error {
	var req ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.service.IngestFileListing(c.Context(), param(c, "collection"), param(c, "pillar"), req.Items); err != nil {
		return h.fail(c, "Failed to ingest listing", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"items": len(req.Items)})
}

// HandleIngestChecksums records a pillar's checksum report.
// @Summary Ingest Checksums
// @Description Records the reported checksums and resets their state to UNKNOWN.
// @Tags ingestion
// @Accept json
// @Produce json
// @Param collection path string true "Collection ID"
// @Param pillar path string true "Pillar ID"
// @Param checksums body ChecksumRequest true "Checksum report"
// @Success 202 {object} map[string]int "Accepted items"
// @Failure 400 {object} map[string]string "Unknown Pillar"
// @Failure 404 {object} map[string]string "Collection Not Found"
// @Router /integrity/collections/{collection}/pillars/{pillar}/checksums [post]
func (h *Handler) HandleIngestChecksums(c *fiber.Ctx) error {
	var req ChecksumRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.service.IngestChecksums(c.Context(), param(c, "collection"), param(c, "pillar"), req.Items); err != nil {
		return h.fail(c, "Failed to ingest checksums", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"items": len(req.Items)})
}

// HandlePillarMetrics returns the counters of one pillar.
// @Summary Pillar Metrics
// @Description Returns the file, missing file and checksum error counts. Counts may lag mutations by the cache refresh period.
// @Tags metrics
// @Produce json
// @Param collection path string true "Collection ID"
// @Param pillar path string true "Pillar ID"
// @Success 200 {object} model.PillarCollectionMetrics
// @Failure 400 {object} map[string]string "Unknown Pillar"
// @Router /integrity/collections/{collection}/pillars/{pillar}/metrics [get]
func (h *Handler) HandlePillarMetrics(c *fiber.Ctx) error {
	m, err := h.service.GetPillarCollectionMetrics(c.Context(), param(c, "collection"), param(c, "pillar"))
	if err != nil {
		return h.fail(c, "Failed to read pillar metrics", err)
	}
	return c.JSON(m)
}

// HandleAllMetrics returns the counters of every pillar.
// @Summary All Pillar Metrics
// @Tags metrics
// @Produce json
// @Success 200 {array} model.PillarCollectionMetrics
// @Router /integrity/metrics [get]
func (h *Handler) HandleAllMetrics(c *fiber.Ctx) error {
	all, err := h.service.AllMetrics(c.Context())
	if err != nil {
		return h.fail(c, "Failed to read metrics", err)
	}
	if all == nil {
		all = []model.PillarCollectionMetrics{}
	}
	return c.JSON(all)
}

// HandlePillarFiles pages through the files of one pillar.
// @Summary Pillar Files
// @Tags files
// @Produce json
// @Param collection path string true "Collection ID"
// @Param pillar path string true "Pillar ID"
// @Param state query string false "existing, missing or checksum_error"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string "Invalid Request"
// @Router /integrity/collections/{collection}/pillars/{pillar}/files [get]
func (h *Handler) HandlePillarFiles(c *fiber.Ctx) error {
	ids, err := h.service.PillarFiles(c.Context(), param(c, "collection"), param(c, "pillar"),
		PillarState(c.Query("state")), c.QueryInt("offset"), c.QueryInt("limit", 100))
	if err != nil {
		return h.fail(c, "Failed to page pillar files", err)
	}
	return c.JSON(ids)
}

// HandleMissingFiles lists files not present at every pillar.
// @Summary Missing Files
// @Tags issues
// @Produce json
// @Param collection path string true "Collection ID"
// @Param limit query int false "Maximum ids listed"
// @Success 200 {object} reconcile.IssueList
// @Router /integrity/collections/{collection}/issues/missing-files [get]
func (h *Handler) HandleMissingFiles(c *fiber.Ctx) error {
	res, err := h.service.FindMissingFiles(c.Context(), param(c, "collection"), c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, "Failed to find missing files", err)
	}
	return c.JSON(res)
}

// HandleMissingChecksums lists files present somewhere without a checksum there.
// @Summary Missing Checksums
// @Tags issues
// @Produce json
// @Param collection path string true "Collection ID"
// @Param limit query int false "Maximum ids listed"
// @Success 200 {object} reconcile.IssueList
// @Router /integrity/collections/{collection}/issues/missing-checksums [get]
func (h *Handler) HandleMissingChecksums(c *fiber.Ctx) error {
	res, err := h.service.FindMissingChecksums(c.Context(), param(c, "collection"), c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, "Failed to find missing checksums", err)
	}
	return c.JSON(res)
}

// HandleInconsistentChecksums lists files whose pillars disagree on the checksum.
// @Summary Inconsistent Checksums
// @Tags issues
// @Produce json
// @Param collection path string true "Collection ID"
// @Param cutoff query string false "Ignore checksums older than this RFC 3339 time"
// @Param max_age_hours query int false "Ignore checksums older than this many hours"
// @Param limit query int false "Maximum ids listed"
// @Success 200 {object} reconcile.IssueList
// @Failure 400 {object} map[string]string "Invalid Cutoff"
// @Router /integrity/collections/{collection}/issues/inconsistent-checksums [get]
func (h *Handler) HandleInconsistentChecksums(c *fiber.Ctx) error {
	cutoff, err := h.cutoff(c)
	if err != nil {
		return badRequest(c, "invalid cutoff")
	}
	res, err := h.service.FindFilesWithInconsistentChecksums(c.Context(), param(c, "collection"), cutoff, c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, "Failed to find inconsistent checksums", err)
	}
	return c.JSON(res)
}

// HandleMissingCopies lists files with too few copies.
// @Summary Files With Missing Copies
// @Description Lists files EXISTING at fewer than the required number of pillars whose size lies in the range.
// @Tags issues
// @Produce json
// @Param collection path string true "Collection ID"
// @Param required query int false "Required copies (default: every pillar)"
// @Param min_size query int false "Minimum size in bytes"
// @Param max_size query int false "Maximum size in bytes (0: unbounded)"
// @Param limit query int false "Maximum ids listed"
// @Success 200 {object} reconcile.IssueList
// @Failure 400 {object} map[string]string "Invalid Range"
// @Router /integrity/collections/{collection}/issues/missing-copies [get]
func (h *Handler) HandleMissingCopies(c *fiber.Ctx) error {
	minSize, err := queryInt64(c, "min_size")
	if err != nil {
		return badRequest(c, "invalid min_size")
	}
	maxSize, err := queryInt64(c, "max_size")
	if err != nil {
		return badRequest(c, "invalid max_size")
	}
	res, err := h.service.FindFilesWithMissingCopies(c.Context(), param(c, "collection"),
		c.QueryInt("required"), minSize, maxSize, c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, "Failed to find files with missing copies", err)
	}
	return c.JSON(res)
}

// HandleBeginSweep starts a full listing sweep.
// @Summary Begin Listing Sweep
// @Description Marks every record UNKNOWN. Pass the returned cutoff to the conclude call once every pillar has listed.
// @Tags reconciliation
// @Produce json
// @Param collection path string true "Collection ID"
// @Success 200 {object} ConcludeRequest
// @Failure 404 {object} map[string]string "Collection Not Found"
// @Router /integrity/collections/{collection}/sweep [post]
func (h *Handler) HandleBeginSweep(c *fiber.Ctx) error {
	cutoff, err := h.service.BeginFullListingSweep(c.Context(), param(c, "collection"))
	if err != nil {
		return h.fail(c, "Failed to begin sweep", err)
	}
	return c.JSON(ConcludeRequest{Cutoff: cutoff})
}

// HandleConcludeSweep condemns the records not listed since the sweep began.
// @Summary Conclude Listing Sweep
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param collection path string true "Collection ID"
// @Param sweep body ConcludeRequest true "Sweep cutoff"
// @Success 200 {object} reconcile.SweepResult
// @Failure 400 {object} map[string]string "Missing Cutoff"
// @Router /integrity/collections/{collection}/sweep/conclude [post]
func (h *Handler) HandleConcludeSweep(c *fiber.Ctx) error {
	var req ConcludeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.service.ConcludeSweep(c.Context(), param(c, "collection"), req.Cutoff)
	if err != nil {
		return h.fail(c, "Failed to conclude sweep", err)
	}
	return c.JSON(res)
}

// HandleReconcile compares the checksums reported by the pillars.
// @Summary Reconcile Checksums
// @Description Marks agreeing checksums VALID and lists disagreeing files without changing them.
// @Tags reconciliation
// @Produce json
// @Param collection path string true "Collection ID"
// @Param cutoff query string false "Ignore checksums older than this RFC 3339 time"
// @Param max_age_hours query int false "Ignore checksums older than this many hours"
// @Success 200 {object} reconcile.ChecksumResult
// @Router /integrity/collections/{collection}/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	cutoff, err := h.cutoff(c)
	if err != nil {
		return badRequest(c, "invalid cutoff")
	}
	res, err := h.service.ReconcileChecksums(c.Context(), param(c, "collection"), cutoff)
	if err != nil {
		return h.fail(c, "Failed to reconcile checksums", err)
	}
	return c.JSON(res)
}

// HandleAudit produces the integrity report of a collection.
// @Summary Audit Collection
// @Description Reports missing files, missing and inconsistent checksums and per-pillar counters, and records a statistics snapshot.
// @Tags reconciliation
// @Produce json
// @Param collection path string true "Collection ID"
// @Param export query boolean false "Upload the report to storage"
// @Success 200 {object} reconcile.Report
// @Router /integrity/collections/{collection}/audit [post]
func (h *Handler) HandleAudit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	cutoff, err := h.cutoff(c)
	if err != nil {
		return badRequest(c, "invalid cutoff")
	}
	report, err := h.service.Audit(c.Context(), param(c, "collection"), cutoff)
	if err != nil {
		return h.fail(c, "Audit failed", err)
	}
	if c.QueryBool("export") {
		name, err := h.service.ExportReport(c.Context(), report)
		if err != nil {
			return h.fail(c, "Report export failed", err)
		}
		c.Set("X-Report-Object", name)
	}
	l.Info("Audit completed", zap.String("collection", report.CollectionID), zap.Bool("healthy", report.Healthy()))
	return c.JSON(report)
}

// HandleVote plans a checksum vote on inconsistent files.
// @Summary Checksum Vote
// @Description Votes on every inconsistent file. Actions are only applied with confirm=true and without dry_run.
// @Tags reconciliation
// @Produce json
// @Param collection path string true "Collection ID"
// @Param confirm query boolean false "Apply the planned actions"
// @Param dry_run query boolean false "Plan only"
// @Success 200 {object} VoteResponse
// @Router /integrity/collections/{collection}/votes [post]
func (h *Handler) HandleVote(c *fiber.Ctx) error {
	cutoff, err := h.cutoff(c)
	if err != nil {
		return badRequest(c, "invalid cutoff")
	}
	opts := reconcile.ApplyOptions{Confirmed: c.QueryBool("confirm"), DryRun: c.QueryBool("dry_run")}
	plan, executed, err := h.service.Vote(c.Context(), param(c, "collection"), cutoff, opts)
	if err != nil {
		return h.fail(c, "Checksum vote failed", err)
	}
	return c.JSON(VoteResponse{Plan: plan, Executed: executed})
}

// HandleCollect runs a collection cycle over the configured pillars.
// @Summary Collect Pillars
// @Description Sweeps the collection with fresh listings and checksums from every pillar, then reconciles checksums.
// @Tags reconciliation
// @Produce json
// @Param collection path string true "Collection ID"
// @Success 200 {object} pillar.CycleResult
// @Failure 502 {object} pillar.CycleResult "Pillar Collection Failed"
// @Failure 503 {object} map[string]string "Pillars Not Configured"
// @Router /integrity/collections/{collection}/collect [post]
func (h *Handler) HandleCollect(c *fiber.Ctx) error {
	res, err := h.service.Collect(c.Context(), param(c, "collection"))
	if err != nil {
		if res != nil && res.Sweep == nil && len(res.Pillars) > 0 {
			logger.WithRayID(h.service.logger, c).Warn("Collection cycle incomplete", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(res)
		}
		return h.fail(c, "Collection cycle failed", err)
	}
	return c.JSON(res)
}

// HandleSchemaCheck checks the store schema.
// @Summary Check Store Schema
// @Description Checks that every table of the store exists with its expected columns.
// @Tags health
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 503 {object} map[string]string "Database Not Configured"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema()
	if err != nil {
		return h.fail(c, "Schema check failed", err)
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the pillar locations.
// @Summary Check Storage
// @Description Checks the bucket and every pillar location. Optionally creates the bucket and empty pillar prefixes.
// @Tags health
// @Produce json
// @Param fix query boolean false "Create what is missing"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 503 {object} map[string]string "Storage Not Configured"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	fix := c.QueryBool("fix")
	report, unfixed, err := h.service.CheckStorage(c.Context(), fix)
	if err != nil {
		return h.fail(c, "Storage check failed", err)
	}
	if fix && !report.Matched {
		return c.JSON(fiber.Map{"status": "fixed", "report": report, "unfixed": unfixed})
	}
	return c.JSON(fiber.Map{"status": "checked", "report": report})
}
