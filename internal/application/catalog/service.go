// Package catalog is the application façade over the structure catalog,
// the similarity index and the metadata store.  HTTP handlers, the CLI and
// the gRPC health service all go through Service.
package catalog

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/cyclome/internal/domain/metadata"
	"github.com/turtacn/cyclome/internal/domain/similarity"
	"github.com/turtacn/cyclome/internal/domain/structure"
	"github.com/turtacn/cyclome/internal/infrastructure/database/redis"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cyclome/pkg/errors"
)

// Service defines the catalog operations exposed to the interface layer.
type Service interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	SequenceSearch(ctx context.Context, query string, limit int) ([]structure.SequenceHit, error)
	Similarity(ctx context.Context, id, threshold string) (*similarity.Result, error)
	SimilarityBatch(ctx context.Context, ids []string, threshold string) (*similarity.BatchResult, error)
	SimilarityHealth(ctx context.Context) *SimilarityStatus

	Stats(ctx context.Context) *Stats
	All(ctx context.Context) []string
	SequenceIndex(ctx context.Context) []structure.SequenceHit
	BaseSequences(ctx context.Context, ids []string) []structure.SequenceHit
	Base(ctx context.Context, pdb string) (*structure.BaseAggregate, error)
	OpenChain(ctx context.Context, pdb, chain string) (*StructureFile, error)
	OpenFile(ctx context.Context, id string) (*StructureFile, error)
	Metadata(ctx context.Context, id string) (metadata.Record, error)

	Ready() bool
}

// Source enumerates and opens structure files.  localfs.Source and
// minio.Source implement it.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Describe() string
}

// RowLoader reads a dataset as decoded JSON rows.
type RowLoader func() ([]map[string]interface{}, error)

// Stats is the /stats response.
type Stats struct {
	Source        string `json:"source"`
	BaseCount     int    `json:"pdb_count"`
	ChainCount    int    `json:"chain_count"`
	SequenceCount int    `json:"sequence_count"`
	Skipped       int    `json:"skipped_files"`
}

// SimilarityStatus is the similarity health report.
type SimilarityStatus struct {
	OK      bool   `json:"ok"`
	Indexed int    `json:"indexed,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Path    string `json:"simPath"`
}

// StructureFile is an opened structure file.  Callers must close Body.
type StructureFile struct {
	ID   string
	Name string
	Body io.ReadCloser
}

const cachePurgeTimeout = 5 * time.Second

// Config carries the limits and names the service applies.
type Config struct {
	Extension      string
	SimilarityPath string

	SearchDefaultLimit   int
	SearchMaxLimit       int
	SequenceDefaultLimit int
	SequenceMaxLimit     int
	SequenceMinLength    int
	MaxSequenceBatch     int

	MaxBatchIDs       int
	MaxBatchNeighbors int

	CacheTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.Extension == "" {
		c.Extension = ".pdb"
	}
	if c.SearchDefaultLimit <= 0 {
		c.SearchDefaultLimit = 20
	}
	if c.SearchMaxLimit <= 0 {
		c.SearchMaxLimit = 200
	}
	if c.SequenceDefaultLimit <= 0 {
		c.SequenceDefaultLimit = 5
	}
	if c.SequenceMaxLimit <= 0 {
		c.SequenceMaxLimit = 50
	}
	if c.SequenceMinLength < structure.MinSequenceQuery {
		c.SequenceMinLength = structure.MinSequenceQuery
	}
	if c.MaxSequenceBatch <= 0 {
		c.MaxSequenceBatch = 500
	}
	if c.MaxBatchIDs <= 0 {
		c.MaxBatchIDs = 500
	}
}

// Dependencies are the collaborators of the service.  Only Source is
// required.
type Dependencies struct {
	Source     Source
	Metadata   RowLoader
	Similarity RowLoader
	Cache      redis.Cache
	Metrics    *prometheus.AppMetrics
	Logger     logging.Logger
}

type serviceImpl struct {
	cfg     Config
	source  Source
	cache   redis.Cache
	metrics *prometheus.AppMetrics
	logger  logging.Logger

	catalog *structure.Catalog
	meta    *metadata.Store
	metaErr error

	simLoader RowLoader
	simOnce   sync.Once
	simIndex  *similarity.Index
	simErr    error
}

// NewService loads the metadata dataset and builds the identifier index
// before returning.  Neither a missing metadata file nor an unreadable source
// is fatal: both are logged once and the service answers from what it has.
// The similarity dataset is loaded on first use.
func NewService(ctx context.Context, cfg Config, deps Dependencies) Service {
	cfg.applyDefaults()
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	s := &serviceImpl{
		cfg:       cfg,
		source:    deps.Source,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		logger:    log.Named("catalog"),
		simLoader: deps.Similarity,
		catalog:   structure.Empty(),
	}
	s.loadMetadata(deps.Metadata)
	s.buildCatalog(ctx)
	return s
}

func (s *serviceImpl) loadMetadata(load RowLoader) {
	if load == nil {
		s.metaErr = errors.New(errors.ErrCodeMetadataUnavailable, "metadata unavailable").
			WithDetail("no metadata dataset configured")
		return
	}
	rows, err := load()
	prometheus.RecordDatasetLoad(s.metrics, "metadata", len(rows), err)
	if err != nil {
		s.metaErr = errors.Wrap(err, errors.ErrCodeMetadataUnavailable, "metadata unavailable")
		s.logger.Warn("metadata dataset not loaded, sequences disabled", logging.Err(err))
		return
	}
	s.meta = metadata.NewStore(rows)
	s.logger.Info("metadata dataset loaded",
		logging.Int("rows", s.meta.Len()),
		logging.Int("sequences", s.meta.SequenceCount()))
}

func (s *serviceImpl) buildCatalog(ctx context.Context) {
	if s.source == nil {
		s.logger.Error("no structure source configured, catalog is empty")
		return
	}
	start := time.Now()
	names, err := s.source.List(ctx)
	if err != nil {
		prometheus.RecordError(s.metrics, "catalog", errors.GetCode(err).String())
		prometheus.SetHealth(s.metrics, "catalog", false)
		s.logger.Error("structure source unreadable, catalog is empty",
			logging.String("source", s.source.Describe()), logging.Err(err))
		return
	}

	opts := structure.BuildOptions{Extension: s.cfg.Extension}
	if s.meta != nil {
		opts.Sequences = s.meta
	}
	s.catalog = structure.Build(names, opts)

	st := s.catalog.Stats()
	elapsed := time.Since(start)
	prometheus.RecordCatalogBuild(s.metrics, s.source.Describe(),
		st.BaseCount, st.ChainCount, st.Sequences, s.catalog.Skipped(), elapsed)
	prometheus.SetHealth(s.metrics, "catalog", true)
	s.logger.Info("catalog built",
		logging.String("source", s.source.Describe()),
		logging.Int("bases", st.BaseCount),
		logging.Int("chains", st.ChainCount),
		logging.Int("sequences", st.Sequences),
		logging.Int("skipped", s.catalog.Skipped()),
		logging.Duration("elapsed", elapsed))
}

// similarityIndex builds the index on first call.  The outcome, failure
// included, is kept for the life of the process.
func (s *serviceImpl) similarityIndex() (*similarity.Index, error) {
	s.simOnce.Do(func() {
		if s.simLoader == nil {
			s.simErr = errors.New(errors.ErrCodeSimilarityUnavailable, "similarity data failed to load").
				WithDetail("no similarity dataset configured")
			s.logger.Warn("similarity dataset not configured")
			return
		}
		start := time.Now()
		rows, err := s.simLoader()
		prometheus.RecordDatasetLoad(s.metrics, "similarity", len(rows), err)
		if err != nil {
			s.simErr = errors.Wrap(err, errors.ErrCodeSimilarityUnavailable, "similarity data failed to load").
				WithDetail(err.Error())
			s.logger.Error("similarity dataset failed to load",
				logging.String("path", s.cfg.SimilarityPath), logging.Err(err))
			return
		}
		s.simIndex = similarity.NewIndex(rows)
		s.logger.Info("similarity index built",
			logging.Int("aliases", s.simIndex.Len()),
			logging.Int("rows", s.simIndex.Rows()),
			logging.Duration("elapsed", time.Since(start)))
		s.purgeSimilarityCache()
	})
	return s.simIndex, s.simErr
}

// purgeSimilarityCache drops responses cached from an earlier dataset.  The
// "sim" prefix covers both single ("sim:") and batch ("simbatch:") keys.
func (s *serviceImpl) purgeSimilarityCache() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cachePurgeTimeout)
	defer cancel()
	n, err := s.cache.DeleteByPrefix(ctx, "sim")
	if err != nil {
		s.logger.Warn("stale similarity responses not purged", logging.Err(err))
		return
	}
	s.logger.Info("similarity cache purged", logging.Int64("keys", n))
}

// clamp resolves a requested limit: non-positive means the default, and
// anything above max is cut to max.
func clamp(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}

// ─────────────────────────────────────────────────────────────────────────────
// Identifier and sequence queries
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	out := s.catalog.Search(query, clamp(limit, s.cfg.SearchDefaultLimit, s.cfg.SearchMaxLimit))
	prometheus.RecordQuery(s.metrics, "search", time.Since(start), len(out))
	return out, nil
}

func (s *serviceImpl) SequenceSearch(ctx context.Context, query string, limit int) ([]structure.SequenceHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	out := s.catalog.ScanSequences(query, s.cfg.SequenceMinLength,
		clamp(limit, s.cfg.SequenceDefaultLimit, s.cfg.SequenceMaxLimit))
	prometheus.RecordQuery(s.metrics, "sequence_search", time.Since(start), len(out))
	return out, nil
}

func (s *serviceImpl) Stats(_ context.Context) *Stats {
	st := s.catalog.Stats()
	desc := ""
	if s.source != nil {
		desc = s.source.Describe()
	}
	return &Stats{
		Source:        desc,
		BaseCount:     st.BaseCount,
		ChainCount:    st.ChainCount,
		SequenceCount: st.Sequences,
		Skipped:       s.catalog.Skipped(),
	}
}

func (s *serviceImpl) All(_ context.Context) []string {
	return s.catalog.ChainIDs()
}

func (s *serviceImpl) SequenceIndex(_ context.Context) []structure.SequenceHit {
	return s.catalog.SequenceIndex()
}

func (s *serviceImpl) BaseSequences(_ context.Context, ids []string) []structure.SequenceHit {
	return s.catalog.BaseSequences(ids, s.cfg.MaxSequenceBatch)
}

func (s *serviceImpl) Base(_ context.Context, pdb string) (*structure.BaseAggregate, error) {
	key := strings.ToLower(strings.TrimSpace(pdb))
	if !structure.ValidBaseKey(key) {
		return nil, errors.New(errors.ErrCodeStructureIDInvalid, "invalid pdb id").WithDetail(pdb)
	}
	agg, ok := s.catalog.Base(key)
	if !ok {
		return nil, errors.New(errors.ErrCodeStructureNotFound, "structure not found").WithDetail(key)
	}
	return agg, nil
}

func (s *serviceImpl) OpenChain(ctx context.Context, pdb, chain string) (*StructureFile, error) {
	p := strings.ToLower(strings.TrimSpace(pdb))
	c := strings.ToLower(strings.TrimSpace(chain))
	if !structure.ValidBaseKey(p) || !structure.ValidBaseKey(c) {
		return nil, errors.New(errors.ErrCodeStructureIDInvalid, "invalid pdb or chain")
	}
	return s.open(ctx, p+"_"+c)
}

func (s *serviceImpl) OpenFile(ctx context.Context, id string) (*StructureFile, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if !structure.ValidFileKey(key) {
		return nil, errors.New(errors.ErrCodeStructureIDInvalid, "invalid id").WithDetail(id)
	}
	return s.open(ctx, key)
}

func (s *serviceImpl) open(ctx context.Context, key string) (*StructureFile, error) {
	rec, ok := s.catalog.Chain(key)
	if !ok {
		return nil, errors.New(errors.ErrCodeChainNotFound, "chain not found").WithDetail(key)
	}
	if s.source == nil {
		return nil, errors.New(errors.ErrCodeStructureFileMissing, "file missing on server").WithDetail(rec.SourceFile)
	}
	body, err := s.source.Open(ctx, rec.SourceFile)
	if err != nil {
		if !errors.IsCode(err, errors.ErrCodeStructureFileMissing) {
			s.logger.Warn("structure file open failed",
				logging.String("file", rec.SourceFile), logging.Err(err))
		}
		return nil, err
	}
	return &StructureFile{ID: rec.CanonicalID, Name: rec.SourceFile, Body: body}, nil
}

func (s *serviceImpl) Metadata(_ context.Context, id string) (metadata.Record, error) {
	if s.metaErr != nil {
		return nil, s.metaErr
	}
	rec, ok := s.meta.Lookup(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeMetadataNotFound, "metadata not found").WithDetail(id)
	}
	return rec, nil
}

func (s *serviceImpl) Ready() bool {
	return s.catalog.Stats().ChainCount > 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Similarity
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Similarity(ctx context.Context, id, threshold string) (*similarity.Result, error) {
	ix, err := s.similarityIndex()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.neighbors(ctx, ix, id, threshold)
	s.recordLookup("single", err)
	if err != nil {
		return nil, err
	}
	prometheus.RecordQuery(s.metrics, "similarity", time.Since(start), res.Count)
	return res, nil
}

// neighbors answers a single lookup, through the cache when one is
// configured.  Invalid input bypasses the cache so it never reaches redis.
func (s *serviceImpl) neighbors(ctx context.Context, ix *similarity.Index, id, threshold string) (*similarity.Result, error) {
	norm := similarity.NormalizeID(id)
	th := strings.TrimSpace(threshold)
	if s.cache == nil || norm == "" || !similarity.ValidThreshold(th) {
		return ix.Neighbors(id, threshold)
	}

	var (
		res    similarity.Result
		loaded bool
	)
	err := s.cache.GetOrSet(ctx, "sim:"+th+":"+norm, &res, s.cfg.CacheTTL, func(context.Context) (interface{}, error) {
		loaded = true
		return ix.Neighbors(norm, th)
	})
	prometheus.RecordCacheAccess(s.metrics, "similarity", !loaded)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *serviceImpl) SimilarityBatch(ctx context.Context, ids []string, threshold string) (*similarity.BatchResult, error) {
	ix, err := s.similarityIndex()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	opts := similarity.BatchOptions{MaxIDs: s.cfg.MaxBatchIDs, MaxNeighbors: s.cfg.MaxBatchNeighbors}
	valid := similarity.NormalizeBatch(ids)
	th := strings.TrimSpace(threshold)

	var res *similarity.BatchResult
	if s.cache == nil || len(valid) == 0 || len(valid) > opts.MaxIDs || !similarity.ValidThreshold(th) {
		res, err = ix.Batch(ids, threshold, opts)
	} else {
		var (
			cached similarity.BatchResult
			loaded bool
		)
		key := "simbatch:" + th + ":" + redis.HashKey(valid...)
		err = s.cache.GetOrSet(ctx, key, &cached, s.cfg.CacheTTL, func(context.Context) (interface{}, error) {
			loaded = true
			return ix.Batch(valid, th, opts)
		})
		prometheus.RecordCacheAccess(s.metrics, "similarity_batch", !loaded)
		if err == nil {
			res = &cached
		}
	}
	if err != nil {
		s.recordLookup("batch", err)
		return nil, err
	}

	for _, item := range res.Items {
		if item.Error != "" {
			prometheus.RecordSimilarityLookup(s.metrics, "batch", item.Code)
		} else {
			prometheus.RecordSimilarityLookup(s.metrics, "batch", "ok")
		}
	}
	if res.Truncated {
		prometheus.RecordSimilarityTruncated(s.metrics)
		s.logger.Warn("similarity batch truncated by neighbor budget",
			logging.Int("ids", res.Count), logging.Int("budget", opts.MaxNeighbors))
	}
	prometheus.RecordQuery(s.metrics, "similarity_batch", time.Since(start), res.Count)
	return res, nil
}

func (s *serviceImpl) recordLookup(mode string, err error) {
	if err != nil {
		prometheus.RecordSimilarityLookup(s.metrics, mode, errors.GetCode(err).String())
		return
	}
	prometheus.RecordSimilarityLookup(s.metrics, mode, "ok")
}

func (s *serviceImpl) SimilarityHealth(_ context.Context) *SimilarityStatus {
	ix, err := s.similarityIndex()
	if err != nil {
		st := &SimilarityStatus{OK: false, Message: "similarity data failed to load", Path: s.cfg.SimilarityPath}
		var detail string
		if ae, ok := err.(*errors.AppError); ok {
			detail = ae.Detail
		}
		if detail == "" {
			detail = err.Error()
		}
		st.Detail = detail
		return st
	}
	return &SimilarityStatus{OK: true, Indexed: ix.Len(), Path: s.cfg.SimilarityPath}
}

//Personal.AI order the ending
