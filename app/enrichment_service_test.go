package app

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lora/domain/analysis"
	"lora/domain/core"
	"lora/domain/enrichment"
	"lora/domain/lipid"
	apperrors "lora/internal/errors"
	"lora/internal/session"
)

func record(name, category, class string) lipid.Record {
	return lipid.NewRecord(map[string]string{
		lipid.ColumnOriginalName:   name,
		lipid.ColumnNormalizedName: name,
		lipid.ColumnCategory:       category,
		lipid.ColumnClass:          class,
		lipid.ColumnLevel:          "SPECIES",
	})
}

func repeat(n int, prefix, category, class string) []lipid.Record {
	out := make([]lipid.Record, n)
	for i := range out {
		out[i] = record(prefix+" "+strconv.Itoa(i), category, class)
	}
	return out
}

// enrichedRequest has every query lipid in GP/PC, which makes up 6 of 46
// reference lipids: both the category and the class term are significant and
// share all six lipids.
func enrichedRequest(s core.SessionKey) EnrichmentRequest {
	params := enrichment.DefaultParams()
	params.Selection = enrichment.Selection{Levels: []string{"Category", "Class"}}
	return EnrichmentRequest{
		Session:   s,
		Query:     repeat(6, "PC", "Glycerophospholipids [GP]", "Glycerophosphocholines [GP01]"),
		Reference: append(repeat(6, "PC", "Glycerophospholipids [GP]", "Glycerophosphocholines [GP01]"), repeat(40, "CE", "Sterol Lipids [ST]", "Sterol esters [ST01]")...),
		Params:    params,
	}
}

type recordingObserver struct {
	calls  int
	cached []bool
}

func (o *recordingObserver) ObserveRun(_ analysis.Summary, _ time.Duration, cached bool) {
	o.calls++
	o.cached = append(o.cached, cached)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) {
	return nil, apperrors.CacheError("get", errors.New("down"))
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return apperrors.CacheError("set", errors.New("down"))
}
func (failingCache) Delete(context.Context, string) error { return nil }

func newService() *EnrichmentService {
	return NewEnrichmentService(session.NewMemoryCache(nil), time.Minute, nil)
}

func TestRunPipeline(t *testing.T) {
	svc := newService()
	res, err := svc.Run(context.Background(), enrichedRequest("s1"))
	require.NoError(t, err)
	require.False(t, res.Cached)

	report := res.Report
	assert.Equal(t, core.SessionKey("s1"), report.Session)
	assert.NotEmpty(t, report.Fingerprint)
	require.Len(t, report.Terms, 2)
	assert.Len(t, report.Significant, 2)
	assert.Len(t, report.Rows, 2)

	for _, term := range report.Terms {
		assert.Equal(t, "6/6", term.NoQuery())
		assert.Equal(t, "6/46", term.NoReference())
		assert.True(t, term.Significant)
	}

	assert.Equal(t, 2, report.Summary.Tested)
	assert.Equal(t, 2, report.Summary.Significant)
	assert.Equal(t, 2, report.Summary.Groups)
	assert.Equal(t, 1, report.Summary.Intersections)
	assert.Equal(t, 6, report.Summary.VILSize)
	assert.Equal(t, 12, report.Summary.Memberships)
	assert.Greater(t, report.Summary.Limit, 0.0)

	require.NotNil(t, report.Match)
	assert.Equal(t, 6, report.Match.Matched)
	assert.InDelta(t, 100.0, report.Match.PercentMatched, 1e-9)

	require.NotNil(t, report.Upset.VIL)
	assert.Equal(t, 2, report.Upset.VIL.Size())
	assert.Len(t, report.Incidence.Lipids, 6)
}

func TestRunServesIdenticalRequestFromCache(t *testing.T) {
	svc := newService()
	observer := &recordingObserver{}
	svc.SetObserver(observer)
	ctx := context.Background()

	first, err := svc.Run(ctx, enrichedRequest("s1"))
	require.NoError(t, err)
	second, err := svc.Run(ctx, enrichedRequest("s1"))
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Report.RunID, second.Report.RunID)
	assert.Equal(t, first.Report.Summary, second.Report.Summary)
	assert.Equal(t, []bool{false, true}, observer.cached)
}

func TestRunReplacesReportOnNewInputs(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.Run(ctx, enrichedRequest("s1"))
	require.NoError(t, err)

	changed := enrichedRequest("s1")
	changed.Params.Alpha = 0.01
	second, err := svc.Run(ctx, changed)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.NotEqual(t, first.Report.RunID, second.Report.RunID)

	latest, err := svc.Latest(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, second.Report.RunID, latest.RunID)
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.Run(ctx, enrichedRequest("alpha"))
	require.NoError(t, err)
	b, err := svc.Run(ctx, enrichedRequest("beta"))
	require.NoError(t, err)
	assert.False(t, b.Cached, "another session's report is never reused")

	latestA, err := svc.Latest(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, a.Report.RunID, latestA.RunID)

	require.NoError(t, svc.Forget(ctx, "alpha"))
	_, err = svc.Latest(ctx, "alpha")
	assert.True(t, core.IsNotFoundError(err))
	_, err = svc.Latest(ctx, "beta")
	assert.NoError(t, err)
}

func TestLatestMiss(t *testing.T) {
	_, err := newService().Latest(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrReportNotFound)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestRunRejectsInvalidParamsUnmodified(t *testing.T) {
	req := enrichedRequest("s1")
	req.Params.Correction = "sidak"

	_, err := newService().Run(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownCorrectionMethod)
	assert.False(t, apperrors.IsAppError(err))
}

func TestRunRejectsBadSession(t *testing.T) {
	_, err := newService().Run(context.Background(), enrichedRequest("a:b"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestRunSurvivesCacheFailure(t *testing.T) {
	svc := NewEnrichmentService(failingCache{}, time.Minute, nil)
	res, err := svc.Run(context.Background(), enrichedRequest("s1"))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Len(t, res.Report.Terms, 2)
}

func TestRunWithoutCache(t *testing.T) {
	svc := NewEnrichmentService(nil, 0, nil)
	_, err := svc.Run(context.Background(), enrichedRequest("s1"))
	require.NoError(t, err)

	_, err = svc.Latest(context.Background(), "s1")
	assert.True(t, core.IsNotFoundError(err))
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	svc := newService()
	a, err := svc.Analyze(enrichedRequest("s1"))
	require.NoError(t, err)
	b, err := svc.Analyze(enrichedRequest("s1"))
	require.NoError(t, err)

	assert.Equal(t, a.Terms, b.Terms)
	assert.Equal(t, a.Upset.Sets, b.Upset.Sets)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestAnalyzeWithSingleTermIsInsufficient(t *testing.T) {
	req := enrichedRequest("s1")
	req.Params.Selection = enrichment.Selection{Levels: []string{"Category"}}

	report, err := newService().Analyze(req)
	require.NoError(t, err)
	assert.True(t, report.Upset.Insufficient)
	assert.Nil(t, report.Upset.VIL)
	assert.Equal(t, 0, report.Summary.VILSize)
}

func TestFingerprintIgnoresAliases(t *testing.T) {
	a := enrichedRequest("s1")
	b := enrichedRequest("s1")
	b.Params.Selection.Levels = []string{"Lipid Maps Category", "Lipid Maps Main Class"}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	b.Query = b.Query[:5]
	fc, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestSummarizeEmptyReport(t *testing.T) {
	s := Summarize(&analysis.Report{})
	assert.Equal(t, analysis.Summary{}, s)
}
