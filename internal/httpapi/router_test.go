package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/rachadinha/internal/auth"
	"github.com/mmynk/rachadinha/internal/metrics"
	"github.com/mmynk/rachadinha/internal/middleware"
	"github.com/mmynk/rachadinha/internal/models"
)

type fakeSummarizer struct {
	gotUser string
}

func (f *fakeSummarizer) Summary(ctx context.Context, sessionID, participantID string) (string, error) {
	f.gotUser = middleware.GetUserID(ctx)
	switch sessionID {
	case "s1":
		return "Rachadinha: Bar do Zé\nparticipant=" + participantID + "\n", nil
	case "other":
		return "", connect.NewError(connect.CodePermissionDenied, errors.New("not yours"))
	default:
		return "", connect.NewError(connect.CodeNotFound, errors.New("no session"))
	}
}

func setup(t *testing.T) (*httptest.Server, *fakeSummarizer, string) {
	t.Helper()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("ana@example.com", "Ana", "hash")
	token, err := jwtManager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	summarizer := &fakeSummarizer{}
	r := New(summarizer, jwtManager, metrics.New())
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, summarizer, token
}

func get(t *testing.T, url, token string) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealthAndMetrics(t *testing.T) {
	server, _, _ := setup(t)

	if code, body := get(t, server.URL+"/healthz", ""); code != http.StatusOK || body != "ok\n" {
		t.Errorf("/healthz = %d %q", code, body)
	}
	if code, body := get(t, server.URL+"/metrics", ""); code != http.StatusOK || !strings.Contains(body, "go_goroutines") {
		t.Errorf("/metrics = %d, body missing go collector", code)
	}
}

func TestShare(t *testing.T) {
	server, summarizer, token := setup(t)

	code, body := get(t, server.URL+"/share/s1?participant=p1", token)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !strings.Contains(body, "participant=p1") {
		t.Errorf("body = %q", body)
	}
	if summarizer.gotUser == "" {
		t.Error("expected user in context")
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/share/s1", "", http.StatusUnauthorized},
		{"not owner", "/share/other", token, http.StatusForbidden},
		{"missing", "/share/nope", token, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := get(t, server.URL+tt.path, tt.token); code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestMount(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	r := New(&fakeSummarizer{}, jwtManager, nil)
	r.Mount("/rachadinha.v1.SessionService/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rachadinha.v1.SessionService/GetSession", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want mounted handler", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without registry = %d, want 404", rec.Code)
	}
}
