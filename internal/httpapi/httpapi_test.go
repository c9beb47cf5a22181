package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sesoko-server/internal/config"
)

type fakeConn bool

func (f fakeConn) IsConnected() bool { return bool(f) }

func newTestServer(t *testing.T, mqtt ConnectionChecker) *httptest.Server {
	t.Helper()

	srv := NewServer(config.Config{HTTPAddr: ":0", FetchTimeout: time.Second}, NewMux(mqtt))
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(ts.Close)
	return ts
}

func mustGetJSON[T any](t *testing.T, client *http.Client, url string, out *T) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name     string
		mqtt     ConnectionChecker
		wantMQTT string
	}{
		{name: "mqtt disabled", mqtt: nil, wantMQTT: "disabled"},
		{name: "mqtt connected", mqtt: fakeConn(true), wantMQTT: "connected"},
		{name: "mqtt down", mqtt: fakeConn(false), wantMQTT: "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.mqtt)

			var body map[string]string
			resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d; want 200", resp.StatusCode)
			}
			if body["status"] != "ok" {
				t.Errorf("status field = %q; want ok", body["status"])
			}
			if body["mqtt"] != tt.wantMQTT {
				t.Errorf("mqtt field = %q; want %q", body["mqtt"], tt.wantMQTT)
			}
		})
	}
}

func TestHealthz_methodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := ts.Client().Post(ts.URL+"/healthz", "text/plain", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d; want 405", resp.StatusCode)
	}
}

func TestRequestLogger_requestID(t *testing.T) {
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusTeapot)
		}
		if id := rec.Header().Get(requestIDHeader); len(id) != 36 {
			t.Errorf("%s = %q; want a uuid", requestIDHeader, id)
		}
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if id := rec.Header().Get(requestIDHeader); id != "abc-123" {
			t.Errorf("%s = %q; want abc-123", requestIDHeader, id)
		}
	})
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusNotFound)
	if _, err := sr.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if sr.status != http.StatusNotFound {
		t.Errorf("status = %d; want 404", sr.status)
	}
	if sr.bytes != 5 {
		t.Errorf("bytes = %d; want 5", sr.bytes)
	}
}
