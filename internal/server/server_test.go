package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/iwvelando/budget-optimizer/internal/cache"
	"github.com/iwvelando/budget-optimizer/internal/catalog"
	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
	"github.com/iwvelando/budget-optimizer/pkg/output"
	"github.com/iwvelando/budget-optimizer/pkg/testutil"
	"go.uber.org/zap"
)

func testPlanPath() string {
	return filepath.Join("..", "..", "test", "test_config.yaml")
}

func newTestHandler(t *testing.T, mutate func(cfg *Config)) http.Handler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RateLimit.RequestsPerMinute = -1
	if mutate != nil {
		mutate(cfg)
	}
	return NewHandler(zap.NewNop(), cfg, cache.NewMemoryCache(0))
}

func planJSON(t *testing.T, conf *config.Configuration) []byte {
	t.Helper()
	data, err := json.Marshal(conf)
	if err != nil {
		t.Fatalf("failed to encode plan: %v", err)
	}
	return data
}

func samplePlan() *config.Configuration {
	return &config.Configuration{
		TotalBudget:       100000,
		Step:              1000,
		ContentLiftPer10k: 0.05,
		Property:          "https://example-resort.com",
		Channels:          catalog.Defaults(),
	}
}

func uploadRequest(t *testing.T, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "plan.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleUploadSuccess(t *testing.T) {
	handler := newTestHandler(t, nil)

	data, err := os.ReadFile(testPlanPath())
	if err != nil {
		t.Fatalf("failed to read test plan: %v", err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, data))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp optimizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(resp.Rows))
	}
	if resp.Termination != optimization.TerminationBudgetExhausted {
		t.Fatalf("expected budget exhausted, got %s", resp.Termination)
	}
	// The 12,500 metasearch seed leaves less than one step unspent.
	if !testutil.AlmostEqual(resp.Totals.Spend, 249500, 1e-6) {
		t.Fatalf("expected 249500 to be spent, got %v", resp.Totals.Spend)
	}
	if !strings.HasPrefix(resp.CSV, "Channel,Spend,Revenue,ROAS\n") {
		t.Fatalf("unexpected CSV %q", resp.CSV)
	}
	if !strings.Contains(resp.Summary, "https://example-resort.com") {
		t.Fatalf("expected property in summary, got %q", resp.Summary)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
	if resp.Cached {
		t.Fatal("first run should not be cached")
	}
}

func TestHandleOptimizeCachesResults(t *testing.T) {
	handler := newTestHandler(t, nil)
	body := planJSON(t, samplePlan())

	var responses [2]optimizeResponse
	for i := range responses {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader(body)))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d: %s", i, rr.Code, rr.Body.String())
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &responses[i]); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}

	if responses[0].Cached || !responses[1].Cached {
		t.Fatalf("expected miss then hit, got %v and %v", responses[0].Cached, responses[1].Cached)
	}
	if responses[0].CSV != responses[1].CSV {
		t.Fatal("cached response differs from the fresh one")
	}
	if responses[0].Totals.Spend > 100000 {
		t.Fatalf("spend %v exceeds budget", responses[0].Totals.Spend)
	}
}

func TestHandleOptimizeWithoutCache(t *testing.T) {
	cfg := DefaultConfig()
	handler := NewHandler(nil, cfg, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader(planJSON(t, samplePlan()))))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleOptimizeErrors(t *testing.T) {
	invalid := samplePlan()
	invalid.Objective = "profit"

	tests := []struct {
		name   string
		body   []byte
		status int
		want   string
	}{
		{"Malformed JSON", []byte("{"), http.StatusBadRequest, "failed to decode plan"},
		{"Unknown objective", planJSON(t, invalid), http.StatusBadRequest, "objective"},
	}

	handler := newTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader(tt.body)))
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rr.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(resp["error"], tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, resp["error"])
			}
		})
	}
}

func TestHandleOptimizeMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/optimize", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleUploadTooLarge(t *testing.T) {
	handler := newTestHandler(t, func(cfg *Config) {
		cfg.SetUploadSizeBytes(128)
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, bytes.Repeat([]byte("a"), 1024)))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleUploadMissingFile(t *testing.T) {
	handler := newTestHandler(t, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("note", "no file"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleUploadInvalidYAML(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, []byte("channels: [")))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleExportAndImport(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/export", bytes.NewReader(planJSON(t, samplePlan()))))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "budget_allocation.csv") {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	if got := rr.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("unexpected Content-Type %q", got)
	}
	exported := rr.Body.String()
	if !strings.Contains(exported, "\n\nTOTAL,") {
		t.Fatalf("expected blank line before TOTAL, got %q", exported)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(exported)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var alloc output.Allocation
	if err := json.Unmarshal(rr.Body.Bytes(), &alloc); err != nil {
		t.Fatalf("failed to decode allocation: %v", err)
	}
	if len(alloc.Rows) != 9 {
		t.Fatalf("expected 9 imported rows, got %d", len(alloc.Rows))
	}
	if !testutil.AlmostEqual(testutil.SumSpend(alloc.Rows), alloc.Totals.Spend, 9) {
		t.Fatalf("imported rows %v do not add up to total %v", testutil.SumSpend(alloc.Rows), alloc.Totals.Spend)
	}
}

func TestHandleImportInvalid(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("not,a,budget\n")))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleDefaultChannels(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/channels/defaults", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string][]config.Channel
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp["channels"]) != 9 {
		t.Fatalf("expected 9 channels, got %d", len(resp["channels"]))
	}
}

func TestHandleAddChannel(t *testing.T) {
	handler := newTestHandler(t, nil)

	body, _ := json.Marshal(addChannelRequest{Name: "Google Hotel Ads", Channels: catalog.Defaults()})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/channels", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp addChannelResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Channel.ID, "google_hotel_ads_") {
		t.Fatalf("unexpected id %q", resp.Channel.ID)
	}
	if len(resp.Channels) != 10 || resp.Channels[9].ID != resp.Channel.ID {
		t.Fatalf("expected new channel appended, got %d channels", len(resp.Channels))
	}

	body, _ = json.Marshal(addChannelRequest{Name: " "})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/channels", bytes.NewReader(body)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty name, got %d", rr.Code)
	}
}

func TestHandleUpdateChannel(t *testing.T) {
	handler := newTestHandler(t, nil)
	off := false

	replacement := catalog.Template("renamed", "Metasearch (Trivago)")
	replacement.MaxSpend = config.SpendLimit(0)

	tests := []struct {
		name   string
		id     string
		req    updateChannelRequest
		status int
		check  func(t *testing.T, resp addChannelResponse)
	}{
		{
			name:   "Disable channel",
			id:     "content",
			req:    updateChannelRequest{Channels: catalog.Defaults(), Enabled: &off},
			status: http.StatusOK,
			check: func(t *testing.T, resp addChannelResponse) {
				if resp.Channel.ID != "content" || resp.Channel.IsEnabled() {
					t.Fatalf("expected content disabled, got %+v", resp.Channel)
				}
				if len(resp.Channels) != 9 || !resp.Channels[0].IsEnabled() {
					t.Fatalf("expected other channels untouched, got %+v", resp.Channels)
				}
			},
		},
		{
			name:   "Replace calibration keeps id",
			id:     "metasearch",
			req:    updateChannelRequest{Channels: catalog.Defaults(), Channel: &replacement},
			status: http.StatusOK,
			check: func(t *testing.T, resp addChannelResponse) {
				if resp.Channel.ID != "metasearch" || resp.Channel.Name != "Metasearch (Trivago)" {
					t.Fatalf("unexpected channel %+v", resp.Channel)
				}
				if resp.Channel.MaxSpend == nil || *resp.Channel.MaxSpend != 0 {
					t.Fatalf("expected explicit zero max spend to survive, got %v", resp.Channel.MaxSpend)
				}
				if resp.Channels[2].ID != "metasearch" {
					t.Fatalf("expected order to be kept, got %s", resp.Channels[2].ID)
				}
			},
		},
		{
			name:   "Unknown channel",
			id:     "missing",
			req:    updateChannelRequest{Channels: catalog.Defaults(), Enabled: &off},
			status: http.StatusNotFound,
		},
		{
			name:   "No changes",
			id:     "content",
			req:    updateChannelRequest{Channels: catalog.Defaults()},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/channels/"+tt.id, bytes.NewReader(body)))
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.check == nil {
				return
			}
			var resp addChannelResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			tt.check(t, resp)
		})
	}
}

func TestHandleRemoveChannel(t *testing.T) {
	handler := newTestHandler(t, nil)

	body, _ := json.Marshal(channelListRequest{Channels: catalog.Defaults()})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/channels/paid_social", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string][]config.Channel
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp["channels"]) != 8 {
		t.Fatalf("expected 8 channels, got %d", len(resp["channels"]))
	}
	for _, ch := range resp["channels"] {
		if ch.ID == "paid_social" {
			t.Fatal("expected paid_social to be removed")
		}
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/channels/missing", bytes.NewReader(body)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown channel, got %d", rr.Code)
	}
}

func TestHandleVersionAndHealth(t *testing.T) {
	handler := newTestHandler(t, func(cfg *Config) {
		cfg.Version = "1.2.3"
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	var version map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &version); err != nil {
		t.Fatalf("failed to decode version: %v", err)
	}
	if version["version"] != "1.2.3" {
		t.Fatalf("unexpected version %v", version)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ok") {
		t.Fatalf("unexpected health response %d %s", rr.Code, rr.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader(planJSON(t, samplePlan()))))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	for _, name := range []string{"budget_optimizer_runs_total", "budget_optimizer_cache_lookups_total"} {
		if !strings.Contains(rr.Body.String(), name) {
			t.Errorf("expected metric %s in output", name)
		}
	}
}

func TestRateLimit(t *testing.T) {
	handler := newTestHandler(t, func(cfg *Config) {
		cfg.RateLimit.RequestsPerMinute = 2
	})

	var last int
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", last)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health endpoint should not be rate limited, got %d", rr.Code)
	}
}
