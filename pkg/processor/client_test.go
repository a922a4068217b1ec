package processor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/retry"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, attempts int) *Client {
	t.Helper()
	client, err := NewClient("https://processor.test/",
		WithHTTPClient(&http.Client{Transport: rt}),
		WithRetryPolicy(retry.Policy{Attempts: attempts, Delay: time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchSnapshotSuccess(t *testing.T) {
	const expectedURL = "https://processor.test/api/viewer/data?business_name=Enoteca&telegram_id=42"
	var capturedURL string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"rows":[{"id":1,"name":"Barolo","qty":3,"type":"Rosso"}],"facets":{"type":{"Rosso":1}},"meta":{"total_rows":1,"last_update":"2024-01-01T00:00:00Z"}}`), nil
	}, 3)

	snapshot, err := client.FetchSnapshot(context.Background(), 42, "Enoteca")
	if err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if len(snapshot.Rows) != 1 || snapshot.Rows[0].Name != "Barolo" {
		t.Fatalf("unexpected rows %+v", snapshot.Rows)
	}
	if snapshot.Facets.Type["Rosso"] != 1 {
		t.Fatalf("unexpected type facet %+v", snapshot.Facets.Type)
	}
	if snapshot.Facets.Supplier == nil || snapshot.Facets.Vintage == nil || snapshot.Facets.Winery == nil {
		t.Fatal("missing facet maps should be allocated")
	}
}

func TestFetchSnapshotRetriesWhileNotReady(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return jsonResponse(http.StatusNotFound, `{"detail":"not ready"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"rows":[],"facets":{},"meta":{"total_rows":0}}`), nil
	}, 5)

	if _, err := client.FetchSnapshot(context.Background(), 42, ""); err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestFetchSnapshotGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusNotFound, `{}`), nil
	}, 5)

	_, err := client.FetchSnapshot(context.Background(), 42, "")
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 5 {
		t.Fatalf("expected 5 calls, got %d", calls)
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestFetchSnapshotRetriesTransportErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return jsonResponse(http.StatusOK, `{"rows":[]}`), nil
	}, 2)

	if _, err := client.FetchSnapshot(context.Background(), 42, ""); err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestFetchSnapshotDoesNotRetryServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusInternalServerError, `boom`), nil
	}, 5)

	_, err := client.FetchSnapshot(context.Background(), 42, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected empty base url to fail")
	}
}
