package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"lora/adapters/stats/correction"
	"lora/adapters/stats/hypotest"
	"lora/domain/analysis"
	"lora/domain/core"
	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/internal"
	enrich "lora/internal/enrichment"
	apperrors "lora/internal/errors"
	"lora/internal/upset"
	"lora/ports"
)

// DefaultCacheTTL is how long the latest report of a session is kept.
const DefaultCacheTTL = 10 * time.Minute

// Observer receives one call per served request; the API layer records
// metrics through it.
type Observer interface {
	ObserveRun(summary analysis.Summary, elapsed time.Duration, cached bool)
}

// EnrichmentService runs the full lipid ORA pipeline: enrichment, significance
// filtering, term to lipid mapping and intersections. The latest report of
// each session is cached together with a fingerprint of its inputs.
type EnrichmentService struct {
	cache    ports.SessionCache
	ttl      time.Duration
	observer Observer
	logger   *internal.Logger
	now      func() time.Time
}

// EnrichmentRequest defines the inputs of one analysis invocation
type EnrichmentRequest struct {
	Session   core.SessionKey
	Query     []lipid.Record
	Reference []lipid.Record
	Params    enrichment.Params
	// Submitted is the number of raw names sent to the normalizer, used for
	// the match summary; zero means len(Query).
	Submitted int
}

// EnrichmentResult wraps a report with whether it came from the cache
type EnrichmentResult struct {
	Report *analysis.Report `json:"report"`
	Cached bool             `json:"cached"`
}

// NewEnrichmentService creates the service. A nil cache disables caching and
// a non-positive ttl falls back to DefaultCacheTTL.
func NewEnrichmentService(cache ports.SessionCache, ttl time.Duration, logger *internal.Logger) *EnrichmentService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &EnrichmentService{
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("enrichment"),
		now:    time.Now,
	}
}

// SetObserver installs the metrics hook.
func (s *EnrichmentService) SetObserver(o Observer) {
	s.observer = o
}

func latestKey(session core.SessionKey) string {
	return session.String() + ":latest"
}

// Fingerprint identifies an invocation by its normalized parameters and its
// input tables.
func Fingerprint(req EnrichmentRequest) (core.Fingerprint, error) {
	params, err := json.Marshal(req.Params.Normalize())
	if err != nil {
		return "", fmt.Errorf("fingerprint params: %w", err)
	}
	query, err := json.Marshal(req.Query)
	if err != nil {
		return "", fmt.Errorf("fingerprint query: %w", err)
	}
	reference, err := json.Marshal(req.Reference)
	if err != nil {
		return "", fmt.Errorf("fingerprint reference: %w", err)
	}
	return core.ComputeFingerprint(string(params), string(query), string(reference), fmt.Sprint(req.Submitted)), nil
}

// Run serves the request from the session cache when the same inputs were
// analyzed last, and otherwise analyzes and replaces the cached report.
// Configuration errors are returned unmodified.
func (s *EnrichmentService) Run(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error) {
	start := s.now()
	if _, err := core.ParseSessionKey(req.Session.String()); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	fingerprint, err := Fingerprint(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fingerprint request")
	}

	if cached := s.lookup(ctx, req.Session); cached != nil && cached.Fingerprint == fingerprint {
		s.logger.Debug("session %s: serving cached report %s", req.Session, cached.RunID)
		s.observe(cached.Summary, start, true)
		return &EnrichmentResult{Report: cached, Cached: true}, nil
	}

	report, err := s.Analyze(req)
	if err != nil {
		return nil, err
	}
	report.Fingerprint = fingerprint
	s.store(ctx, report)
	s.observe(report.Summary, start, false)
	return &EnrichmentResult{Report: report}, nil
}

// Latest returns the cached report of a session.
func (s *EnrichmentService) Latest(ctx context.Context, session core.SessionKey) (*analysis.Report, error) {
	if s.cache == nil {
		return nil, apperrors.WithCode(apperrors.CodeNotFound, core.ErrReportNotFound)
	}
	data, err := s.cache.Get(ctx, latestKey(session))
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, apperrors.WithCode(apperrors.CodeNotFound, fmt.Errorf("%w for session %s", core.ErrReportNotFound, session))
	}
	if err != nil {
		return nil, err
	}
	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode cached report")
	}
	return &report, nil
}

// Forget drops the cached report of a session.
func (s *EnrichmentService) Forget(ctx context.Context, session core.SessionKey) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, latestKey(session))
}

func (s *EnrichmentService) lookup(ctx context.Context, session core.SessionKey) *analysis.Report {
	report, err := s.Latest(ctx, session)
	if err != nil {
		if !core.IsNotFoundError(err) {
			s.logger.Warn("session %s: cache lookup failed, recomputing: %v", session, err)
		}
		return nil
	}
	return report
}

func (s *EnrichmentService) store(ctx context.Context, report *analysis.Report) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("session %s: cannot encode report: %v", report.Session, err)
		return
	}
	if err := s.cache.Set(ctx, latestKey(report.Session), data, s.ttl); err != nil {
		s.logger.Warn("session %s: cache store failed: %v", report.Session, err)
	}
}

func (s *EnrichmentService) observe(summary analysis.Summary, start time.Time, cached bool) {
	if s.observer != nil {
		s.observer.ObserveRun(summary, s.now().Sub(start), cached)
	}
}

// Analyze runs the pipeline without touching the cache.
func (s *EnrichmentService) Analyze(req EnrichmentRequest) (*analysis.Report, error) {
	params := req.Params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	test, err := hypotest.New(params)
	if err != nil {
		return nil, err
	}
	corrector, err := correction.New(params.Correction, params.Alpha)
	if err != nil {
		return nil, err
	}

	matched, match := lipid.MatchQueryToReference(req.Query, req.Reference, req.Submitted)

	composer := enrich.NewComposer(test, corrector, params.FilterCount, s.logger)
	terms := composer.Compose(params.Selection, matched, req.Reference)
	significant := enrich.FilterSignificant(terms, s.logger)

	table := upset.NewMapper(matched).Incidence(significant)
	limit := enrich.MaxCorrected(significant)
	result := upset.NewEngine(s.logger).Intersect(table, limit)

	report := &analysis.Report{
		RunID:       core.NewRunID(),
		Session:     req.Session,
		GeneratedAt: s.now().UTC(),
		Params:      params,
		Match:       &match,
		Terms:       terms,
		Rows:        enrich.FormatTable(terms, params.SignificantOnly, s.logger),
		Significant: significant,
		Incidence:   table,
		Upset:       result,
	}
	report.Summary = Summarize(report)

	s.logger.Info("session %s run %s: %d terms, %d significant, %d intersections",
		req.Session, report.RunID, report.Summary.Tested, report.Summary.Significant, report.Summary.Intersections)
	return report, nil
}

// Summarize condenses a report. Undefined statistics are reported as zero.
func Summarize(report *analysis.Report) analysis.Summary {
	summary := analysis.Summary{
		Tested:        len(report.Terms),
		Significant:   len(report.Significant),
		Intersections: len(report.Upset.Sets),
	}

	groups := make(map[string]struct{})
	for _, t := range report.Significant {
		groups[t.Group] = struct{}{}
	}
	summary.Groups = len(groups)

	pvalues := make(stats.Float64Data, len(report.Terms))
	for i, t := range report.Terms {
		pvalues[i] = t.PValue
	}
	if median, err := stats.Median(pvalues); err == nil {
		summary.MedianPValue = median
	}

	if limit := enrich.MaxCorrected(report.Significant); !math.IsNaN(limit) {
		summary.Limit = limit
	}

	counts := make(stats.Float64Data, len(report.Incidence.Terms))
	for j := range report.Incidence.Terms {
		counts[j] = float64(len(report.Incidence.Column(j)))
	}
	if total, err := stats.Sum(counts); err == nil {
		summary.Memberships = int(total)
	}

	if report.Upset.VIL != nil {
		summary.VILSize = report.Upset.VIL.Cardinality
	}
	return summary
}
