package metadata

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/internal/telemetry"
)

// DefaultMaxFileSize bounds uploads when ServiceConfig leaves it unset.
const DefaultMaxFileSize int64 = 32 << 20

// Metrics observes Service calls. Implementations must accept a nil receiver.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
	RecordStats(s *Stats)
}

// ServiceConfig configures the checks Service applies before delegating.
type ServiceConfig struct {
	// MaxFileSize rejects larger uploads. Default: DefaultMaxFileSize.
	MaxFileSize int64

	// Badges and Categories are the catalog of known values. Draft metadata
	// naming anything else is stored with a warning.
	Badges     []string
	Categories []string
}

// Service is the caller-facing facade over a MetadataStore.
//
// Every call is validated, traced and counted before it reaches the engine.
// Service itself satisfies MetadataStore, so it can be handed to anything
// that expects an engine.
//
// Usage:
//
//	engine, err := gormstore.New(ctx, &gormstore.Config{})
//	svc, err := metadata.NewService(engine, metadata.ServiceConfig{}, nil)
//	rev, err := svc.PublishVersion(ctx, "snake")
type Service struct {
	store      MetadataStore
	config     ServiceConfig
	metrics    Metrics
	badges     map[string]struct{}
	categories map[string]struct{}
}

// NewService wraps store. metrics may be nil.
func NewService(store MetadataStore, config ServiceConfig, metrics Metrics) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cannot create metadata service without a store")
	}
	if config.MaxFileSize == 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	if config.MaxFileSize < 0 {
		return nil, fmt.Errorf("invalid max file size %d", config.MaxFileSize)
	}

	s := &Service{
		store:      store,
		config:     config,
		metrics:    metrics,
		badges:     make(map[string]struct{}, len(config.Badges)),
		categories: make(map[string]struct{}, len(config.Categories)),
	}
	for _, b := range config.Badges {
		s.badges[b] = struct{}{}
	}
	for _, c := range config.Categories {
		s.categories[c] = struct{}{}
	}
	return s, nil
}

// Store returns the wrapped engine.
func (s *Service) Store() MetadataStore {
	return s.store
}

// begin opens the span and log context of one call. The returned function
// must be called exactly once with the call's result.
func (s *Service) begin(ctx context.Context, op, slug string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	if slug != "" {
		attrs = append(attrs, telemetry.Slug(slug))
	}
	ctx, span := telemetry.StartMetadataSpan(ctx, op, attrs...)

	lc := logger.FromContext(ctx).Clone()
	if lc == nil {
		lc = logger.NewLogContext(op)
	} else {
		lc.Operation = op
	}
	if slug != "" {
		lc.Slug = slug
	}
	lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	return ctx, func(err error) {
		if err != nil {
			telemetry.RecordError(ctx, err)
			logger.DebugCtx(ctx, "Metadata call failed", logger.Elapsed(start), logger.Err(err))
		} else {
			logger.DebugCtx(ctx, "Metadata call", logger.Elapsed(start))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, time.Since(start), err)
		}
	}
}

// ============================================================================
// Catalog
// ============================================================================

// GetBadges returns the configured badge slugs.
func (s *Service) GetBadges() []string {
	return slices.Clone(s.config.Badges)
}

// GetCategories returns the configured category names.
func (s *Service) GetCategories() []string {
	return slices.Clone(s.config.Categories)
}

// unknownCatalogEntries returns the badges and categories of md that are not
// in the catalog. An empty catalog knows everything.
func (s *Service) unknownCatalogEntries(md AppMetadata) (badges, categories []string) {
	if len(s.badges) > 0 {
		for _, b := range md.Badges {
			if _, ok := s.badges[b]; !ok {
				badges = append(badges, b)
			}
		}
	}
	if len(s.categories) > 0 {
		for _, c := range md.Categories {
			if _, ok := s.categories[c]; !ok {
				categories = append(categories, c)
			}
		}
	}
	return badges, categories
}

// ============================================================================
// ProjectRepository
// ============================================================================

func (s *Service) InsertProject(ctx context.Context, project NewProject, ts *ProjectTimestamps) (err error) {
	ctx, done := s.begin(ctx, "InsertProject", project.Slug)
	defer func() { done(err) }()

	if err = ValidateSlug(project.Slug); err != nil {
		return err
	}
	if err = s.store.InsertProject(ctx, project, ts); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Project stored")
	return nil
}

func (s *Service) UpdateProject(ctx context.Context, slug string, changes ProjectChanges) (err error) {
	ctx, done := s.begin(ctx, "UpdateProject", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if ignored := len(changes) - len(changes.Allowed()); ignored > 0 {
		logger.DebugCtx(ctx, "Ignoring non-updatable project fields", "ignored", ignored)
	}
	return s.store.UpdateProject(ctx, slug, changes)
}

func (s *Service) DeleteProject(ctx context.Context, slug string) (err error) {
	ctx, done := s.begin(ctx, "DeleteProject", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if err = s.store.DeleteProject(ctx, slug); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Project deleted")
	return nil
}

func (s *Service) GetProject(ctx context.Context, slug string, sel RevisionSelector) (p *ProjectDetails, err error) {
	ctx, done := s.begin(ctx, "GetProject", slug, telemetry.Selector(sel.String()))
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, slug, sel)
}

func (s *Service) GetProjectSummaries(ctx context.Context, q ProjectQuery) (out []ProjectSummary, err error) {
	ctx, done := s.begin(ctx, "GetProjectSummaries", "")
	defer func() { done(err) }()

	if err = ValidateQuery(q); err != nil {
		return nil, err
	}
	return s.store.GetProjectSummaries(ctx, q)
}

// ============================================================================
// VersionManager
// ============================================================================

func (s *Service) PublishVersion(ctx context.Context, slug string) (rev int, err error) {
	ctx, done := s.begin(ctx, "PublishVersion", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return 0, err
	}
	rev, err = s.store.PublishVersion(ctx, slug)
	if err != nil {
		return 0, err
	}
	telemetry.SetAttributes(ctx, telemetry.Revision(rev))
	logger.InfoCtx(ctx, "Version published", logger.Revision(rev))
	return rev, nil
}

func (s *Service) UpdateDraftMetadata(ctx context.Context, slug string, md AppMetadata) (err error) {
	ctx, done := s.begin(ctx, "UpdateDraftMetadata", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if badges, categories := s.unknownCatalogEntries(md); len(badges) > 0 || len(categories) > 0 {
		logger.WarnCtx(ctx, "Draft metadata references unknown catalog entries",
			"badges", strings.Join(badges, ","), "categories", strings.Join(categories, ","))
	}
	return s.store.UpdateDraftMetadata(ctx, slug, md)
}

// ============================================================================
// FileCatalog
// ============================================================================

// WriteDraftFileMetadata validates the upload, settles its mimetype with
// DetectMimeType and records it in the draft.
func (s *Service) WriteDraftFileMetadata(ctx context.Context, slug string, pathParts []string, file UploadedFile, sha256 string) (err error) {
	fp, perr := ParseFilePath(pathParts)
	ctx, done := s.begin(ctx, "WriteDraftFileMetadata", slug,
		telemetry.Path(fp.FullPath()), telemetry.Size(file.Size))
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if perr != nil {
		return perr
	}
	if err = ValidateUpload(file, s.config.MaxFileSize); err != nil {
		return err
	}
	if err = ValidateSHA256(sha256); err != nil {
		return err
	}

	file.Mimetype = DetectMimeType(path.Base(fp.FullPath()), file.Mimetype)
	telemetry.SetAttributes(ctx, telemetry.Mimetype(file.Mimetype))

	return s.store.WriteDraftFileMetadata(ctx, slug, pathParts, file, sha256)
}

func (s *Service) DeleteDraftFile(ctx context.Context, slug string, filePath string) (err error) {
	ctx, done := s.begin(ctx, "DeleteDraftFile", slug, telemetry.Path(filePath))
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if _, err = ParsePathString(filePath); err != nil {
		return err
	}
	return s.store.DeleteDraftFile(ctx, slug, filePath)
}

func (s *Service) GetFileMetadata(ctx context.Context, slug string, sel RevisionSelector, filePath string) (f *FileMetadata, err error) {
	ctx, done := s.begin(ctx, "GetFileMetadata", slug, telemetry.Selector(sel.String()), telemetry.Path(filePath))
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return nil, err
	}
	if _, err = ParsePathString(filePath); err != nil {
		return nil, err
	}
	return s.store.GetFileMetadata(ctx, slug, sel, filePath)
}

// ============================================================================
// BadgeRegistry
// ============================================================================

func (s *Service) RegisterBadge(ctx context.Context, id string, mac *string) (err error) {
	ctx, done := s.begin(ctx, "RegisterBadge", "", telemetry.BadgeID(id))
	defer func() { done(err) }()

	if err = ValidateBadgeID(id); err != nil {
		return err
	}
	if mac != nil && strings.TrimSpace(*mac) == "" {
		mac = nil
	}
	return s.store.RegisterBadge(ctx, id, mac)
}

func (s *Service) GetRegisteredBadge(ctx context.Context, id string) (b *RegisteredBadge, err error) {
	ctx, done := s.begin(ctx, "GetRegisteredBadge", "", telemetry.BadgeID(id))
	defer func() { done(err) }()

	if err = ValidateBadgeID(id); err != nil {
		return nil, err
	}
	return s.store.GetRegisteredBadge(ctx, id)
}

func (s *Service) ReportEvent(ctx context.Context, report EventReport) (err error) {
	ctx, done := s.begin(ctx, "ReportEvent", report.ProjectSlug,
		telemetry.BadgeID(report.BadgeID), telemetry.EventType(string(report.EventType)), telemetry.Revision(report.Revision))
	defer func() { done(err) }()

	if err = ValidateSlug(report.ProjectSlug); err != nil {
		return err
	}
	if err = ValidateBadgeID(report.BadgeID); err != nil {
		return err
	}
	if report.Revision < 0 {
		return fmt.Errorf("%w: negative revision %d", ErrInvalidInput, report.Revision)
	}
	if _, err = ParseEventType(string(report.EventType)); err != nil {
		return err
	}
	return s.store.ReportEvent(ctx, report)
}

// ============================================================================
// TokenVault
// ============================================================================

func (s *Service) CreateProjectAPIToken(ctx context.Context, slug, keyHash string) (err error) {
	ctx, done := s.begin(ctx, "CreateProjectAPIToken", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if keyHash == "" {
		return fmt.Errorf("%w: token hash is required", ErrInvalidInput)
	}
	if err = s.store.CreateProjectAPIToken(ctx, slug, keyHash); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Project API token replaced")
	return nil
}

func (s *Service) GetProjectAPITokenHash(ctx context.Context, slug string) (hash string, found bool, err error) {
	ctx, done := s.begin(ctx, "GetProjectAPITokenHash", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return "", false, err
	}
	return s.store.GetProjectAPITokenHash(ctx, slug)
}

func (s *Service) GetProjectAPITokenMetadata(ctx context.Context, slug string) (m *APITokenMetadata, err error) {
	ctx, done := s.begin(ctx, "GetProjectAPITokenMetadata", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return nil, err
	}
	return s.store.GetProjectAPITokenMetadata(ctx, slug)
}

func (s *Service) RevokeProjectAPIToken(ctx context.Context, slug string) (err error) {
	ctx, done := s.begin(ctx, "RevokeProjectAPIToken", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if err = s.store.RevokeProjectAPIToken(ctx, slug); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Project API token revoked")
	return nil
}

func (s *Service) MarkProjectAPITokenUsed(ctx context.Context, slug string, at time.Time) (err error) {
	ctx, done := s.begin(ctx, "MarkProjectAPITokenUsed", slug)
	defer func() { done(err) }()

	if err = ValidateSlug(slug); err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now()
	}
	return s.store.MarkProjectAPITokenUsed(ctx, slug, at.UTC())
}

// ============================================================================
// StatsAggregator
// ============================================================================

func (s *Service) GetStats(ctx context.Context) (stats *Stats, err error) {
	ctx, done := s.begin(ctx, "GetStats", "")
	defer func() { done(err) }()

	stats, err = s.store.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordStats(stats)
	}
	return stats, nil
}

func (s *Service) RefreshReports(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, "RefreshReports", "")
	defer func() { done(err) }()

	return s.store.RefreshReports(ctx)
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *Service) Healthcheck(ctx context.Context) error {
	return s.store.Healthcheck(ctx)
}

// Close closes the wrapped engine.
func (s *Service) Close() error {
	return s.store.Close()
}

var _ MetadataStore = (*Service)(nil)
