package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lora/adapters/excel"
	"lora/app"
	"lora/domain/core"
	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/internal"
	apperrors "lora/internal/errors"
	"lora/ports"
)

// Handler serves the session scoped enrichment endpoints.
type Handler struct {
	service    *app.EnrichmentService
	normalizer ports.LipidNormalizer
	reader     *excel.DataReader
	defaults   enrichment.Params
	workbook   ports.ReportRenderer
	summary    ports.ReportRenderer
	logger     *internal.Logger
}

// HandlerConfig collects the handler dependencies. Normalizer may be nil when
// no parser is installed.
type HandlerConfig struct {
	Service    *app.EnrichmentService
	Normalizer ports.LipidNormalizer
	Defaults   enrichment.Params
	Workbook   ports.ReportRenderer
	Summary    ports.ReportRenderer
	Logger     *internal.Logger
}

// NewHandler creates the handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		service:    cfg.Service,
		normalizer: cfg.Normalizer,
		reader:     excel.NewDataReader(logger),
		defaults:   cfg.Defaults,
		workbook:   cfg.Workbook,
		summary:    cfg.Summary,
		logger:     logger.With("api"),
	}
}

// normalizeRequest is the body of the normalize endpoint.
type normalizeRequest struct {
	Names   []string `json:"names"`
	Grammar string   `json:"grammar"`
}

// enrichmentRequest is the JSON body of the enrichment endpoint. Rows are
// parser output rows keyed by column header; omitted params fall back to the
// server defaults field by field.
type enrichmentRequest struct {
	Query     []map[string]string `json:"query"`
	Reference []map[string]string `json:"reference"`
	Params    json.RawMessage     `json:"params"`
	Submitted int                 `json:"submitted"`
}

func (h *Handler) session(c *gin.Context) (core.SessionKey, bool) {
	key, err := core.ParseSessionKey(c.Param("session"))
	if err != nil {
		h.fail(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return "", false
	}
	return key, true
}

// CreateSession issues a fresh session key.
func (h *Handler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"session": core.NewSessionKey()})
}

// Normalize turns raw names into lipid records through the parser.
func (h *Handler) Normalize(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	if h.normalizer == nil {
		h.fail(c, fmt.Errorf("%w: no parser configured", core.ErrNormalizerUnavailable))
		return
	}

	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	grammar := req.Grammar
	if grammar == "" {
		grammar = ports.GrammarLipid
	}

	records, err := h.normalizer.Normalize(c.Request.Context(), req.Names, grammar)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submitted":     len(req.Names),
		"records":       records,
		"within_params": lipid.AvailableParams(records),
	})
}

// Enrich runs the pipeline. It accepts a JSON body or a multipart form with
// "query" and "reference" table files and an optional "params" JSON field.
func (h *Handler) Enrich(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var (
		req app.EnrichmentRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.bindMultipart(c)
	} else {
		req, err = h.bindJSON(c)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	req.Session = session

	if len(req.Query) == 0 || len(req.Reference) == 0 {
		h.fail(c, fmt.Errorf("%w: query and reference tables are required", core.ErrEmptyInput))
		return
	}

	result, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) params(raw []byte) (enrichment.Params, error) {
	params := h.defaults
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return params, nil
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, apperrors.InvalidInput("invalid params: " + err.Error())
	}
	return params, nil
}

func toRecords(rows []map[string]string) []lipid.Record {
	records := make([]lipid.Record, len(rows))
	for i, row := range rows {
		records[i] = lipid.NewRecord(row)
	}
	return records
}

func (h *Handler) bindJSON(c *gin.Context) (app.EnrichmentRequest, error) {
	var body enrichmentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return app.EnrichmentRequest{}, apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	params, err := h.params(body.Params)
	if err != nil {
		return app.EnrichmentRequest{}, err
	}
	return app.EnrichmentRequest{
		Query:     toRecords(body.Query),
		Reference: toRecords(body.Reference),
		Params:    params,
		Submitted: body.Submitted,
	}, nil
}

func (h *Handler) bindMultipart(c *gin.Context) (app.EnrichmentRequest, error) {
	query, err := h.formTable(c, "query")
	if err != nil {
		return app.EnrichmentRequest{}, err
	}
	reference, err := h.formTable(c, "reference")
	if err != nil {
		return app.EnrichmentRequest{}, err
	}
	params, err := h.params([]byte(c.PostForm("params")))
	if err != nil {
		return app.EnrichmentRequest{}, err
	}
	return app.EnrichmentRequest{Query: query, Reference: reference, Params: params}, nil
}

func (h *Handler) formTable(c *gin.Context, field string) ([]lipid.Record, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("%w: %s table", core.ErrEmptyInput, field)
		}
		return nil, apperrors.InvalidInput("invalid " + field + " upload: " + err.Error())
	}
	return h.readUpload(header)
}

func (h *Handler) readUpload(header *multipart.FileHeader) ([]lipid.Record, error) {
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.InvalidInput("cannot open upload " + header.Filename)
	}
	defer f.Close()

	table, err := h.reader.Read(f, excel.DetectFormat(header.Filename))
	if err != nil {
		return nil, err
	}
	return table.Records()
}

// Latest returns the cached report of the session.
func (h *Handler) Latest(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	report, err := h.service.Latest(c.Request.Context(), session)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Workbook downloads the cached report as xlsx.
func (h *Handler) Workbook(c *gin.Context) {
	h.render(c, h.workbook, true)
}

// Summary shows the cached report as an HTML page.
func (h *Handler) Summary(c *gin.Context) {
	h.render(c, h.summary, false)
}

func (h *Handler) render(c *gin.Context, renderer ports.ReportRenderer, attachment bool) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	report, err := h.service.Latest(c.Request.Context(), session)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, report); err != nil {
		h.fail(c, apperrors.Wrap(err, "failed to render report"))
		return
	}
	if attachment {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lora-%s%s"`, report.RunID, renderer.Extension()))
	}
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}
