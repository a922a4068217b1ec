package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/vineinventory-viewer/api/middleware"
	"github.com/angelmondragon/vineinventory-viewer/internal/inventory"
	"github.com/angelmondragon/vineinventory-viewer/internal/pagecache"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	"github.com/angelmondragon/vineinventory-viewer/pkg/auth"
	"github.com/angelmondragon/vineinventory-viewer/pkg/config"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/metrics"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubInventory struct{}

func (stubInventory) Snapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error) {
	return &types.Snapshot{
		Rows:   []types.SnapshotRow{{ID: 1, Name: "Barolo", Qty: 3, Type: "Rosso"}},
		Facets: types.NewFacets(),
		Meta:   types.SnapshotMeta{TotalRows: 1, LastUpdate: "2024-01-01T00:00:00Z"},
	}, nil
}

func (stubInventory) UpdateField(ctx context.Context, input inventory.FieldUpdate) error {
	return nil
}

func (stubInventory) Movements(ctx context.Context, telegramID int64, businessName, wineName string) ([]types.Movement, error) {
	return []types.Movement{}, nil
}

var testJWT = config.JWTConfig{Secret: "router-secret", ExpirationMinutes: 60}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Env: "test"},
		JWT:      testJWT,
		Services: config.ServicesConfig{ViewerURL: "https://viewer.test"},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	cache := pagecache.NewMemory(pagecache.MemoryOptions{TTL: time.Hour})
	viewerSvc, err := viewer.NewService(viewer.ServiceParams{
		Source:    stubInventory{},
		Cache:     cache,
		Renderer:  viewer.NewRendererFromString("<html><head></head><body></body></html>"),
		Logger:    logg,
		ViewerURL: cfg.Services.ViewerURL,
	})
	if err != nil {
		t.Fatalf("viewer service: %v", err)
	}
	t.Cleanup(viewerSvc.Wait)

	reg := prometheus.NewRegistry()
	handler := NewRouter(Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          stubPinger{},
		Tokens:      auth.NewValidator(cfg.JWT),
		Inventory:   stubInventory{},
		Viewer:      viewerSvc,
		RateLimiter: middleware.NewRateLimiter(100, 100, logg),
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouterHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if resp := get(t, srv.URL+path); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.StatusCode)
		}
	}
}

func TestRouterSnapshotRequiresToken(t *testing.T) {
	srv := newTestServer(t)
	if resp := get(t, srv.URL+"/api/inventory/snapshot"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}

	token, err := auth.MintViewerToken(testJWT, time.Now(), auth.ViewerIdentity{TelegramID: 42, BusinessName: "Enoteca"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	resp := get(t, srv.URL+"/api/inventory/snapshot?token="+token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	var snapshot types.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.Meta.TotalRows != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestRouterGenerateThenView(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/generate", "application/json", bytes.NewBufferString(`{"telegram_id":42,"business_name":"Enoteca"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	var result viewer.GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(result.ViewerURL, "https://viewer.test/?view_id=") {
		t.Fatalf("unexpected viewer url %q", result.ViewerURL)
	}

	page := get(t, srv.URL+"/?view_id="+result.ViewID)
	if page.StatusCode != http.StatusOK {
		t.Fatalf("expected cached page, got %d", page.StatusCode)
	}
	body, _ := io.ReadAll(page.Body)
	if !strings.Contains(string(body), "window.EMBEDDED_INVENTORY_DATA") {
		t.Fatalf("expected embedded data in page, got %s", body)
	}

	if alias := get(t, srv.URL+"/view/"+result.ViewID); alias.StatusCode != http.StatusOK {
		t.Fatalf("expected alias route to serve page, got %d", alias.StatusCode)
	}
	if missing := get(t, srv.URL+"/view/unknown"); missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown view, got %d", missing.StatusCode)
	}
}

func TestRouterServesMetrics(t *testing.T) {
	srv := newTestServer(t)
	get(t, srv.URL+"/health/live")

	resp := get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "viewer_http_requests_total") {
		t.Fatal("expected http metrics in exposition")
	}
}
