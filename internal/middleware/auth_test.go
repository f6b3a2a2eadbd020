package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/rachadinha/internal/auth"
	"github.com/mmynk/rachadinha/internal/models"
)

func TestAuthenticate(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("ana@example.com", "Ana", "hash")
	token, err := jwtManager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid bearer", "Bearer " + token, nil},
		{"missing", "", auth.ErrMissingToken},
		{"wrong scheme", "Basic " + token, auth.ErrInvalidToken},
		{"no token", "Bearer", auth.ErrInvalidToken},
		{"garbage", "Bearer abc.def.ghi", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Authenticate(jwtManager, tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && claims.UserID != user.ID {
				t.Errorf("UserID = %q, want %q", claims.UserID, user.ID)
			}
		})
	}
}

func TestRequireAuthHTTP(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("ana@example.com", "Ana", "hash")
	token, _ := jwtManager.Generate(user)

	var gotUserID string
	handler := RequireAuthHTTP(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/share/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200", rec.Code)
	}
	if gotUserID != user.ID {
		t.Errorf("user in context = %q, want %q", gotUserID, user.ID)
	}
}

func TestRequireAuthGuest(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateGuest("session-1", "participant-1")
	if err != nil {
		t.Fatalf("GenerateGuest failed: %v", err)
	}

	var gotGuest Guest
	var gotUserID string
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		gotGuest, _ = GetGuest(ctx)
		gotUserID = GetUserID(ctx)
		return nil, nil
	}

	req := connect.NewRequest(&struct{}{})
	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := RequireAuth(jwtManager)(next)(context.Background(), req); err != nil {
		t.Fatalf("guest rejected: %v", err)
	}
	if gotGuest.SessionID != "session-1" || gotGuest.ParticipantID != "participant-1" {
		t.Errorf("guest in context = %+v", gotGuest)
	}
	if gotUserID != "" {
		t.Errorf("guest got user ID %q", gotUserID)
	}

	_, err = RequireAuth(jwtManager)(next)(context.Background(), connect.NewRequest(&struct{}{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("no token: code = %v, want unauthenticated", connect.CodeOf(err))
	}
}
