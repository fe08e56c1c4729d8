package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	h := SessionAuth(testResolver, log)(WithRequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/listings?x=1", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("status = %v; want 201", fields["status"])
	}
	if fields["size"] != int64(5) {
		t.Errorf("size = %v; want 5", fields["size"])
	}
	if fields["uri"] != "/listings?x=1" {
		t.Errorf("uri = %v", fields["uri"])
	}
	if fields["user_id"] != "u1" {
		t.Errorf("user_id = %v; want u1", fields["user_id"])
	}
}

func TestWithRequestLogging_ServerError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if n := logs.FilterMessage("request failed").Len(); n != 1 {
		t.Errorf("expected 1 error log, got %d", n)
	}
}

func TestWithRequestLogging_SessionChange(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	h := SessionAuth(testResolver, log)(WithRequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.FromContext(r.Context()).Set(models.Identity{UserID: "u7"})
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/signin", nil))

	entries := logs.FilterMessage("session changed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 session log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["user_id"]; got != "u7" {
		t.Errorf("user_id = %v; want u7", got)
	}
}

func TestWithRequestLogging_KeepsFlusher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	flushed := false
	h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("wrapped writer does not implement http.Flusher")
		}
		_, _ = w.Write([]byte("chunk"))
		f.Flush()
		flushed = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !flushed || !rec.Flushed {
		t.Errorf("flush did not reach the underlying writer")
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusOK) {
		t.Errorf("status = %v; want 200", got)
	}
}
