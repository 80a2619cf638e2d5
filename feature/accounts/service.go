package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"account-audit/core/reconcile"
	"account-audit/core/storage"
	"account-audit/feature/accounts/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrStorageDisabled is returned by report operations when no storage client is configured.
var ErrStorageDisabled = errors.New("report storage is not configured")

// ErrReportNotFound is returned for a key outside the report prefix.
var ErrReportNotFound = errors.New("report not found")

// Publisher configures where reports are published.
type Publisher struct {
	Client storage.Client
	Bucket string
	Region string
	Prefix string
}

// Service runs account audits.
type Service struct {
	spec      *reconcile.Spec
	archiver  string
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new accounts service. archiver labels the canonical
// store in reports; a zero cacheTTL reloads the stores on every audit.
func NewService(loader reconcile.Loader, cacheTTL time.Duration, archiver string, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		spec:      &reconcile.Spec{Loader: loader, CacheTTL: cacheTTL},
		archiver:  archiver,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Audit reconciles every store and returns the filtered report.
func (s *Service) Audit(ctx context.Context, verbose bool) (*models.AuditReport, error) {
	snap, results, summary, err := reconcile.Run(ctx, s.spec)
	if err != nil {
		return nil, err
	}
	filtered := reconcile.Filter(results, verbose)
	if filtered == nil {
		filtered = []reconcile.Comparison{}
	}
	return s.report(snap, filtered, summary, verbose), nil
}

// Lookup reconciles a single account. Every classification is reported.
func (s *Service) Lookup(ctx context.Context, id string) (*models.AuditReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	results, summary := reconcile.ReconcileOne(id, snap.Canonical, snap.Secondary)
	if results == nil {
		results = []reconcile.Comparison{}
	}
	return s.report(snap, results, summary, true), nil
}

// Invalidate drops the cached snapshot so the next audit reloads the stores.
func (s *Service) Invalidate() {
	reconcile.InvalidateSnapshot(s.spec)
}

func (s *Service) snapshot(ctx context.Context) (*reconcile.Snapshot, error) {
	if s.spec.CacheTTL > 0 {
		return reconcile.GetOrBuildSnapshot(ctx, s.spec)
	}
	return reconcile.BuildSnapshot(ctx, s.spec)
}

func (s *Service) report(snap *reconcile.Snapshot, comparisons []reconcile.Comparison, summary reconcile.Summary, verbose bool) *models.AuditReport {
	nodes := snap.Sources
	if nodes == nil {
		nodes = []reconcile.SourceStat{}
	}
	return &models.AuditReport{
		GeneratedAt:      s.now().UTC(),
		Archiver:         s.archiver,
		ArchiverAccounts: len(snap.Canonical),
		Nodes:            nodes,
		NodesLoaded:      snap.LoadedSources(),
		Verbose:          verbose,
		Summary:          summary,
		Comparisons:      comparisons,
	}
}

// Publish uploads report to the configured bucket and returns its object key.
// The bucket is created if missing.
func (s *Service) Publish(ctx context.Context, report *models.AuditReport) (string, error) {
	if s.publisher.Client == nil {
		return "", ErrStorageDisabled
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.publisher.Client, s.publisher.Bucket, s.publisher.Region); err != nil {
		return "", err
	}

	key := path.Join(s.publisher.Prefix, models.ReportName(report.GeneratedAt))
	_, err = s.publisher.Client.PutObject(ctx, s.publisher.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	s.logger.Info("Report published",
		zap.String("bucket", s.publisher.Bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return key, nil
}

// Reports lists the published reports.
func (s *Service) Reports(ctx context.Context) ([]storage.Object, error) {
	if s.publisher.Client == nil {
		return nil, ErrStorageDisabled
	}
	objects, err := storage.List(ctx, s.publisher.Client, s.publisher.Bucket, s.publisher.Prefix)
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	return objects, nil
}

// FetchReport downloads and decodes a published report. Only keys under the
// report prefix are served.
func (s *Service) FetchReport(ctx context.Context, key string) (*models.AuditReport, error) {
	if s.publisher.Client == nil {
		return nil, ErrStorageDisabled
	}
	if !s.isReportKey(key) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, key)
	}
	obj, err := s.publisher.Client.GetObject(ctx, s.publisher.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", key, err)
	}

	var report models.AuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return &report, nil
}

func (s *Service) isReportKey(key string) bool {
	if key == "" || path.Clean(key) != key {
		return false
	}
	prefix := s.publisher.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(key, prefix) && key != prefix
}
