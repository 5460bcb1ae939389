package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/ai"
	"github.com/assesskit/assessrec/internal/catalog"
	"github.com/assesskit/assessrec/internal/index"
	"github.com/assesskit/assessrec/internal/recommend"
)

type stubSearcher struct {
	results []index.Result
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]index.Result, error) {
	return s.results, nil
}

type stubProvider struct {
	response string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(_ context.Context, _ string) (string, error) {
	return s.response, nil
}

type stubInfo struct{ count int }

func (s *stubInfo) Count() int { return s.count }

func testServer(t *testing.T, searcher recommend.Searcher, providerResponse string) *Server {
	t.Helper()

	chain, err := ai.NewChain([]ai.Provider{&stubProvider{response: providerResponse}}, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("building chain: %v", err)
	}

	rec := recommend.New(
		recommend.NewResolver(zap.NewNop()),
		recommend.NewRetriever(searcher, zap.NewNop()),
		chain,
		zap.NewNop(),
	)

	return New(rec, &stubInfo{count: 3}, Config{Model: "gemini-2.5-flash"}, zap.NewNop())
}

func rankedSearcher() *stubSearcher {
	return &stubSearcher{results: []index.Result{
		{Assessment: catalog.Assessment{Name: "A", URL: "https://example.com/a", TestTypes: []string{"K"}}, Distance: 0.1},
		{Assessment: catalog.Assessment{Name: "B", URL: "https://example.com/b", TestTypes: []string{"P"}}, Distance: 0.2},
	}}
}

func doRecommend(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestRecommendEndpointSuccess(t *testing.T) {
	s := testServer(t, rankedSearcher(), `{"selected": [2]}`)

	recorder := doRecommend(t, s, `{"query": "java developer with collaboration skills"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Success         bool                 `json:"success"`
		Recommendations []catalog.Assessment `json:"recommendations"`
		Count           int                  `json:"count"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.Count != 1 || len(resp.Recommendations) != 1 {
		t.Fatalf("expected count to match recommendations, got count=%d len=%d", resp.Count, len(resp.Recommendations))
	}
	if resp.Recommendations[0].Name != "B" {
		t.Fatalf("unexpected selection: %q", resp.Recommendations[0].Name)
	}
	if strings.Contains(recorder.Body.String(), "score") {
		t.Fatalf("similarity score leaked to the boundary: %s", recorder.Body.String())
	}
}

func TestRecommendEndpointValidatesQuery(t *testing.T) {
	s := testServer(t, rankedSearcher(), `{"selected": [1]}`)

	cases := []struct {
		name string
		body string
	}{
		{name: "empty query", body: `{"query": ""}`},
		{name: "whitespace query", body: `{"query": "    "}`},
		{name: "too short", body: `{"query": "java"}`},
		{name: "malformed body", body: `{"query": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doRecommend(t, s, tc.body)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", recorder.Code)
			}
		})
	}
}

func TestRecommendEndpointClampsMaxResults(t *testing.T) {
	s := testServer(t, rankedSearcher(), "")

	recorder := doRecommend(t, s, `{"query": "java developer", "max_results": 99}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var resp recommendResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count > maxResultsCeiling {
		t.Fatalf("expected at most %d results, got %d", maxResultsCeiling, resp.Count)
	}

	recorder = doRecommend(t, s, `{"query": "java developer", "max_results": -2}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for clamped-up max_results, got %d", recorder.Code)
	}
}

func TestRecommendEndpointEmptyCandidates(t *testing.T) {
	s := testServer(t, &stubSearcher{}, `{"selected": [1]}`)

	recorder := doRecommend(t, s, `{"query": "completely unknown role"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var resp recommendResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Count != 0 {
		t.Fatalf("expected successful empty response, got %+v", resp)
	}
	if resp.Recommendations == nil {
		t.Fatal("expected empty array, not null")
	}
}

func TestRecommendEndpointServiceUnavailable(t *testing.T) {
	s := New(nil, nil, Config{}, zap.NewNop())

	recorder := doRecommend(t, s, `{"query": "java developer"}`)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, rankedSearcher(), "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var resp struct {
		Status  string `json:"status"`
		Model   string `json:"model"`
		Indexed int    `json:"assessments_indexed"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "healthy" || resp.Model != "gemini-2.5-flash" || resp.Indexed != 3 {
		t.Fatalf("unexpected health payload: %+v", resp)
	}
}
