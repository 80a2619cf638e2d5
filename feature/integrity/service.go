package integrity

import (
	"context"
	"errors"

	"account-audit/core/database"
	"account-audit/core/storage"
	"account-audit/feature/accounts/models"
	"account-audit/feature/accounts/source"
	"account-audit/feature/integrity/checks"

	"go.uber.org/zap"
)

// ErrStorageDisabled is returned by storage checks when no client is configured.
var ErrStorageDisabled = errors.New("report storage is not configured")

// Store roles.
const (
	RoleArchiver = "archiver"
	RoleNode     = "node"
)

// Options locates the stores to inspect.
type Options struct {
	Archiver       database.Config
	ArchiverTable  string
	NodesFolder    string
	NodeDBFile     string
	NodeTable      string
	TimeoutSeconds int
}

// StoreReport is the schema check of one store.
type StoreReport struct {
	Role  string              `json:"role"`
	Name  string              `json:"name"`
	Path  string              `json:"path"`
	Table *checks.TableReport `json:"table,omitempty"`
	Error string              `json:"error,omitempty"`
}

// Matched reports whether the store was readable and its table complete.
func (r StoreReport) Matched() bool {
	return r.Error == "" && r.Table != nil && r.Table.Matched()
}

// StoresReport aggregates the schema checks of every store.
type StoresReport struct {
	Matched bool          `json:"matched"`
	Stores  []StoreReport `json:"stores"`
}

// Service handles integrity checks.
type Service struct {
	opts   Options
	client storage.Client
	bucket string
	prefix string
	region string
	logger *zap.Logger
}

// NewService creates a new integrity service. client may be nil when report
// storage is not configured.
func NewService(opts Options, client storage.Client, bucket, prefix, region string, logger *zap.Logger) *Service {
	return &Service{
		opts:   opts,
		client: client,
		bucket: bucket,
		prefix: prefix,
		region: region,
		logger: logger,
	}
}

// CheckStores verifies the schema of the archiver and of every discovered node store.
// Unreachable stores are reported, not returned as errors; only a failed
// discovery is.
func (s *Service) CheckStores(ctx context.Context) (*StoresReport, error) {
	report := &StoresReport{Matched: true}

	archiver := s.checkStore(ctx, RoleArchiver, RoleArchiver, s.opts.Archiver, &models.ArchiverAccount{}, s.opts.ArchiverTable)
	report.add(archiver)

	stores, err := source.Discover(s.opts.NodesFolder, s.opts.NodeDBFile)
	if err != nil {
		return nil, err
	}
	for _, st := range stores {
		cfg := database.SQLite(st.Path, s.opts.TimeoutSeconds)
		report.add(s.checkStore(ctx, RoleNode, st.Name, cfg, &models.NodeAccountEntry{}, s.opts.NodeTable))
	}
	return report, nil
}

func (r *StoresReport) add(store StoreReport) {
	r.Stores = append(r.Stores, store)
	if !store.Matched() {
		r.Matched = false
	}
}

func (s *Service) checkStore(ctx context.Context, role, name string, cfg database.Config, model any, table string) StoreReport {
	report := StoreReport{Role: role, Name: name, Path: cfg.Name}
	log := s.logger.With(zap.String("store", name), zap.String("path", cfg.Name))

	db, err := database.ConnectContext(ctx, cfg)
	if err != nil {
		log.Warn("Store unreachable", zap.Error(err))
		report.Error = err.Error()
		return report
	}
	defer database.Close(db)

	tbl, err := checks.CheckTable(db.WithContext(ctx), model, table)
	if err != nil {
		log.Warn("Schema check failed", zap.Error(err))
		report.Error = err.Error()
		return report
	}
	if !tbl.Matched() {
		log.Warn("Schema mismatch",
			zap.String("table", table),
			zap.Strings("missing", tbl.MissingColumns))
	}
	report.Table = &tbl
	return report
}

// CheckStorage checks the report bucket and optionally creates what is missing.
func (s *Service) CheckStorage(ctx context.Context, fix bool) (*checks.BucketReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	report, err := checks.CheckReportStorage(ctx, s.client, s.bucket, s.prefix)
	if err != nil {
		return nil, err
	}
	if fix && !report.Ready() {
		if err := checks.FixReportStorage(ctx, s.client, s.region, report, s.logger); err != nil {
			return report, err
		}
	}
	return report, nil
}
