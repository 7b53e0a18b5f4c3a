package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wakti/wakti-nlp/internal/cache"
	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/fetch"
	"github.com/wakti/wakti-nlp/internal/ingestion"
	"github.com/wakti/wakti-nlp/internal/metrics"
	"github.com/wakti/wakti-nlp/internal/rendering"
	"github.com/wakti/wakti-nlp/internal/results"
	"github.com/wakti/wakti-nlp/internal/schemas"
	"github.com/wakti/wakti-nlp/internal/types"
)

// cacheHeader reports whether a response was served from the cache.
const cacheHeader = "X-Cache"

// Output formats for classification.
const (
	formatJSON     = "json"
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

type classifyResponse struct {
	types.ClassifyResult
	Columns []string `json:"columns"`
}

func newClassifyResponse(result types.ClassifyResult) classifyResponse {
	return classifyResponse{ClassifyResult: result, Columns: results.Columns(result.Kind)}
}

type classifyURLResponse struct {
	classifyResponse
	Metadata *ingestion.Metadata `json:"metadata"`
}

type batchClassifyResponse struct {
	Results []classifyResponse `json:"results"`
}

type analyzeResponse struct {
	types.AnalyzedRequest
	NextWizardFeature *types.DetectedFeature `json:"next_wizard_feature,omitempty"`
	NonWizardFeatures []types.DetectedFeature `json:"non_wizard_features"`
}

type summaryResponse struct {
	BusinessType string `json:"business_type"`
	Summary      string `json:"summary"`
}

// cached returns the cached value for key or computes and stores it.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Server, key string, compute func() T) (T, bool) {
	var value T
	hit, err := s.cache.Get(ctx, key, &value)
	switch {
	case err != nil:
		s.metrics.ObserveCacheLookup(metrics.CacheError)
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	case hit:
		s.metrics.ObserveCacheLookup(metrics.CacheHit)
		return value, true
	default:
		s.metrics.ObserveCacheLookup(metrics.CacheMiss)
	}

	value = compute()
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, false
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(cacheHeader, "HIT")
		return
	}
	w.Header().Set(cacheHeader, "MISS")
}

// handleClassify classifies a list of snippets. ?format=html|markdown
// renders the table instead of returning JSON.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatHTML && format != formatMarkdown {
		s.writeError(w, &ErrValidation{Field: "format", Message: "must be json, html or markdown"})
		return
	}

	var req classifyRequest
	if _, err := s.decodeRequest(w, r, schemas.ClassifyRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	input, err := json.Marshal(req.Snippets)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, hit := cached(r.Context(), s, cache.Key("classify", input), func() types.ClassifyResult {
		return results.Classify(req.Snippets)
	})
	s.metrics.ObserveClassification(result)
	setCacheHeader(w, hit)

	s.writeClassifyResult(w, format, result)
}

func (s *Server) writeClassifyResult(w http.ResponseWriter, format string, result types.ClassifyResult) {
	switch format {
	case formatHTML:
		html, err := rendering.HTMLTable(result)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.textResponse(w, "text/html; charset=utf-8", html)
	case formatMarkdown:
		s.textResponse(w, "text/markdown; charset=utf-8", rendering.MarkdownTable(result))
	default:
		s.jsonResponse(w, http.StatusOK, newClassifyResponse(result))
	}
}

// handleClassifyBatch classifies several independent snippet lists in
// parallel. Results keep the order of the batches.
func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req batchClassifyRequest
	if _, err := s.decodeRequest(w, r, schemas.BatchClassifyRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]classifyResponse, len(req.Batches))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, batch := range req.Batches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = newClassifyResponse(results.Classify(batch))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.writeError(w, err)
		return
	}

	for _, res := range out {
		s.metrics.ObserveClassification(res.ClassifyResult)
	}
	s.jsonResponse(w, http.StatusOK, batchClassifyResponse{Results: out})
}

// handleClassifyURL fetches a search results page or API response and classifies it.
func (s *Server) handleClassifyURL(w http.ResponseWriter, r *http.Request) {
	var req classifyURLRequest
	if _, err := s.decodeRequest(w, r, schemas.ClassifyURLRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	opts := &ingestion.Options{
		Fetcher:    s.fetcher,
		UseBrowser: s.cfg.Fetch.UseBrowser,
		Logger:     s.logger,
	}
	if req.Engine != "" {
		opts.Engine = fetch.ParseEngine(req.Engine)
	}

	snippets, meta, err := ingestion.FromURL(r.Context(), req.URL, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := results.Classify(snippets)
	s.metrics.ObserveClassification(result)
	s.jsonResponse(w, http.StatusOK, classifyURLResponse{
		classifyResponse: newClassifyResponse(result),
		Metadata:         meta,
	})
}

// handleDetectIntent returns the single best intent for a prompt.
func (s *Server) handleDetectIntent(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if _, err := s.decodeRequest(w, r, schemas.PromptRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	detected, hit := cached(r.Context(), s, cache.Key("intent", []byte(req.Prompt)), func() types.DetectedIntent {
		return s.detector.Detect(req.Prompt)
	})
	s.metrics.ObserveIntents(detected)
	setCacheHeader(w, hit)

	s.jsonResponse(w, http.StatusOK, detected)
}

// handleDetectIntents returns every intent scoring at least 0.3.
func (s *Server) handleDetectIntents(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if _, err := s.decodeRequest(w, r, schemas.PromptRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	detected, hit := cached(r.Context(), s, cache.Key("intents", []byte(req.Prompt)), func() []types.DetectedIntent {
		return s.detector.DetectMultiple(req.Prompt)
	})
	s.metrics.ObserveIntents(detected...)
	setCacheHeader(w, hit)

	s.jsonResponse(w, http.StatusOK, map[string]any{"intents": detected})
}

func (s *Server) analyze(ctx context.Context, prompt string) (types.AnalyzedRequest, bool) {
	return cached(ctx, s, cache.Key("analyze", []byte(prompt)), func() types.AnalyzedRequest {
		return s.analyzer.Analyze(prompt)
	})
}

// handleAnalyze breaks a website request into ordered features.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if _, err := s.decodeRequest(w, r, schemas.PromptRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	analyzed, hit := s.analyze(r.Context(), req.Prompt)
	s.metrics.ObserveAnalysis(analyzed)
	setCacheHeader(w, hit)

	resp := analyzeResponse{
		AnalyzedRequest:   analyzed,
		NonWizardFeatures: features.NonWizardFeatures(analyzed),
	}
	if next, _, ok := features.NextWizardFeature(analyzed, nil); ok {
		resp.NextWizardFeature = &next
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSummary returns the human-readable feature list for a request.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if _, err := s.decodeRequest(w, r, schemas.PromptRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	analyzed, hit := s.analyze(r.Context(), req.Prompt)
	setCacheHeader(w, hit)

	s.jsonResponse(w, http.StatusOK, summaryResponse{
		BusinessType: analyzed.BusinessType,
		Summary:      features.Summary(analyzed),
	})
}
