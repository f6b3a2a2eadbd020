// Package client holds helpers for programs calling the Rachadinha server.
package client

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/rachadinha/internal/debounce"
	"github.com/mmynk/rachadinha/pkg/api"
)

// BearerToken attaches a JWT to every outgoing request.
func BearerToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}))
}

// NewSessionClient returns a SessionService client for baseURL authenticated with token.
func NewSessionClient(baseURL, token string) api.SessionServiceClient {
	return api.NewSessionServiceClient(http.DefaultClient, baseURL, BearerToken(token))
}

// ServiceChargeEditor sends service charge edits to the server at most once
// per quiet period, skipping values equal to the last one committed.
type ServiceChargeEditor struct {
	client    api.SessionServiceClient
	sessionID string
	onUpdate  func(*api.SessionResponse)

	mu        sync.Mutex
	committed float64

	debouncer *debounce.Debouncer[float64]
}

// NewServiceChargeEditor starts an editor for sessionID whose stored percentage is current.
// onUpdate receives the fresh snapshot after each commit; onError receives
// failures of background commits. Both may be nil.
func NewServiceChargeEditor(c api.SessionServiceClient, sessionID string, current float64, delay time.Duration, onUpdate func(*api.SessionResponse), onError func(error)) *ServiceChargeEditor {
	e := &ServiceChargeEditor{
		client:    c,
		sessionID: sessionID,
		onUpdate:  onUpdate,
		committed: current,
	}
	e.debouncer = debounce.New(delay, e.commit, onError)
	return e
}

// Set records a new percentage. Invalid values are rejected immediately.
func (e *ServiceChargeEditor) Set(percent float64) error {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
		return fmt.Errorf("invalid service charge percent %v", percent)
	}
	e.debouncer.Push(percent)
	return nil
}

// Committed returns the last percentage stored on the server.
func (e *ServiceChargeEditor) Committed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed
}

// Flush sends a pending edit now.
func (e *ServiceChargeEditor) Flush(ctx context.Context) error {
	return e.debouncer.Flush(ctx)
}

// Close sends a pending edit and stops the editor.
func (e *ServiceChargeEditor) Close(ctx context.Context) error {
	return e.debouncer.Close(ctx)
}

func (e *ServiceChargeEditor) commit(ctx context.Context, percent float64) error {
	if percent == e.Committed() {
		return nil
	}

	resp, err := e.client.UpdateServiceCharge(ctx, connect.NewRequest(&api.UpdateServiceChargeRequest{
		SessionID: e.sessionID,
		Percent:   percent,
	}))
	if err != nil {
		return fmt.Errorf("failed to update service charge: %w", err)
	}

	e.mu.Lock()
	e.committed = percent
	e.mu.Unlock()
	if e.onUpdate != nil {
		e.onUpdate(resp.Msg)
	}
	return nil
}
