package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/rachadinha/internal/auth"
	"github.com/mmynk/rachadinha/internal/metrics"
	"github.com/mmynk/rachadinha/internal/middleware"
	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/internal/storage/sqlite"
	"github.com/mmynk/rachadinha/pkg/api"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var testJWT = auth.NewJWTManager("test-secret", time.Hour)

type testServer struct {
	client  api.SessionServiceClient
	store   *sqlite.SQLiteStore
	dbPath  string
	metrics *metrics.Metrics
}

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	svc := NewSessionService(store, testJWT, Defaults{FlatFee: 1, ServiceChargePercent: 10}, m)
	interceptor := middleware.RequireAuth(testJWT, api.SessionServiceJoinSessionProcedure)
	path, handler := api.NewSessionServiceHandler(svc, connect.WithInterceptors(interceptor))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		client:  api.NewSessionServiceClient(http.DefaultClient, server.URL),
		store:   store,
		dbPath:  dbPath,
		metrics: m,
	}
}

// as builds a request authenticated as the user with ID user.
func as[T any](user string, msg *T) *connect.Request[T] {
	if user == "" {
		return connect.NewRequest(msg)
	}
	token, err := testJWT.Generate(&models.User{ID: user, Email: user + "@example.com"})
	if err != nil {
		panic(err)
	}
	return withToken(token, msg)
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T", err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}

func assertMoney(t *testing.T, field string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func participantIDs(s *api.Session) map[string]string {
	ids := make(map[string]string, len(s.Participants))
	for _, p := range s.Participants {
		ids[p.Name] = p.ID
	}
	return ids
}

func createSession(t *testing.T, ts *testServer, names ...string) *api.SessionResponse {
	t.Helper()
	resp, err := ts.client.CreateSession(context.Background(), as("alice", &api.CreateSessionRequest{
		Name:         "Bar do Zé",
		Participants: names,
	}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return resp.Msg
}

func TestCreateSession_Defaults(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.client.CreateSession(context.Background(), as("alice", &api.CreateSessionRequest{
		Participants: []string{"Carla", " ", "Ana", "Carla"},
		TableNumber:  " 12 ",
	}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	s := resp.Msg.Session
	if s.Name != "Nova Rachadinha" {
		t.Errorf("Name = %q, want default", s.Name)
	}
	if s.ServiceChargePercent != 10 {
		t.Errorf("ServiceChargePercent = %v, want 10", s.ServiceChargePercent)
	}
	if s.TableNumber != "12" {
		t.Errorf("TableNumber = %q, want 12", s.TableNumber)
	}
	if len(s.Participants) != 2 || s.Participants[0].Name != "Ana" || s.Participants[1].Name != "Carla" {
		t.Errorf("Participants = %+v, want [Ana Carla]", s.Participants)
	}

	// Nothing consumed yet: everyone owes only the flat fee
	assertMoney(t, "TotalBill", resp.Msg.Breakdown.TotalBill, 2)
	if resp.Msg.Collection.PendingCount != 2 {
		t.Errorf("PendingCount = %d, want 2", resp.Msg.Collection.PendingCount)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	negative := -5.0
	_, err := ts.client.CreateSession(ctx, as("alice", &api.CreateSessionRequest{ServiceChargePercent: &negative}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = ts.client.CreateSession(ctx, as("", &api.CreateSessionRequest{Name: "anon"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	zero := 0.0
	resp, err := ts.client.CreateSession(ctx, as("alice", &api.CreateSessionRequest{ServiceChargePercent: &zero}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if resp.Msg.Session.ServiceChargePercent != 0 {
		t.Errorf("explicit zero percent replaced by %v", resp.Msg.Session.ServiceChargePercent)
	}
}

func TestSessionLifecycle_EndToEnd(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	created := createSession(t, ts, "A", "B", "C")
	sessionID := created.Session.ID
	ids := participantIDs(created.Session)

	items := []api.AddItemRequest{
		{Name: "Pizza", Price: 45, MemberIDs: []string{ids["A"], ids["B"]}},
		{Name: "Soda", Price: 12, MemberIDs: []string{ids["A"], ids["B"], ids["C"]}},
		{Name: "Dessert", Price: 20, MemberIDs: []string{ids["C"]}},
	}
	var resp *connect.Response[api.SessionResponse]
	for i := range items {
		items[i].SessionID = sessionID
		var err error
		resp, err = ts.client.AddItem(ctx, as("alice", &items[i]))
		if err != nil {
			t.Fatalf("AddItem %s failed: %v", items[i].Name, err)
		}
	}

	b := resp.Msg.Breakdown
	assertMoney(t, "TotalConsumed", b.TotalConsumed, 77)
	assertMoney(t, "TotalServiceCharge", b.TotalServiceCharge, 7.7)
	assertMoney(t, "TotalFlatFee", b.TotalFlatFee, 3)
	assertMoney(t, "TotalBill", b.TotalBill, 87.7)

	totals := map[string]float64{}
	for _, p := range b.Participants {
		totals[p.Name] = math.Round(p.Total*100) / 100
	}
	assertMoney(t, "A total", totals["A"], 30.15)
	assertMoney(t, "B total", totals["B"], 30.15)
	assertMoney(t, "C total", totals["C"], 27.4)

	t.Run("mark paid updates collection", func(t *testing.T) {
		resp, err := ts.client.SetParticipantPaid(ctx, as("alice", &api.SetParticipantPaidRequest{
			SessionID: sessionID, ParticipantID: ids["C"], Paid: true,
		}))
		if err != nil {
			t.Fatalf("SetParticipantPaid failed: %v", err)
		}
		c := resp.Msg.Collection
		if c.PaidCount != 1 || c.PendingCount != 2 {
			t.Errorf("collection = %+v, want 1 paid 2 pending", c)
		}
		assertMoney(t, "Outstanding", math.Round(c.Outstanding*100)/100, 60.3)
	})

	t.Run("service charge change recomputes", func(t *testing.T) {
		resp, err := ts.client.UpdateServiceCharge(ctx, as("alice", &api.UpdateServiceChargeRequest{
			SessionID: sessionID, Percent: 0,
		}))
		if err != nil {
			t.Fatalf("UpdateServiceCharge failed: %v", err)
		}
		assertMoney(t, "TotalBill", resp.Msg.Breakdown.TotalBill, 80)
	})

	t.Run("toggle member twice restores item", func(t *testing.T) {
		dessert := resp.Msg.Session.Items[2]
		first, err := ts.client.ToggleItemMember(ctx, as("alice", &api.ToggleItemMemberRequest{
			SessionID: sessionID, ItemID: dessert.ID, ParticipantID: ids["A"],
		}))
		if err != nil {
			t.Fatalf("ToggleItemMember failed: %v", err)
		}
		if got := first.Msg.Session.Items[2].MemberIDs; len(got) != 2 {
			t.Errorf("MemberIDs after add = %v, want 2 members", got)
		}

		second, err := ts.client.ToggleItemMember(ctx, as("alice", &api.ToggleItemMemberRequest{
			SessionID: sessionID, ItemID: dessert.ID, ParticipantID: ids["A"],
		}))
		if err != nil {
			t.Fatalf("ToggleItemMember failed: %v", err)
		}
		if got := second.Msg.Session.Items[2].MemberIDs; len(got) != 1 || got[0] != ids["C"] {
			t.Errorf("MemberIDs after remove = %v, want [C]", got)
		}
	})

	t.Run("removing participant redistributes shared items", func(t *testing.T) {
		resp, err := ts.client.RemoveParticipant(ctx, as("alice", &api.RemoveParticipantRequest{
			SessionID: sessionID, ParticipantID: ids["B"],
		}))
		if err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}
		if len(resp.Msg.Session.Participants) != 2 {
			t.Fatalf("expected 2 participants, got %d", len(resp.Msg.Session.Participants))
		}
		for _, p := range resp.Msg.Breakdown.Participants {
			if p.Name == "A" {
				// Pizza alone (45) + half the soda (6)
				assertMoney(t, "A subtotal", p.Subtotal, 51)
			}
		}
	})

	t.Run("summary", func(t *testing.T) {
		resp, err := ts.client.GetSummary(ctx, as("alice", &api.GetSummaryRequest{SessionID: sessionID, ParticipantID: ids["C"]}))
		if err != nil {
			t.Fatalf("GetSummary failed: %v", err)
		}
		for _, want := range []string{"Bar do Zé", "C", "Total"} {
			if !strings.Contains(resp.Msg.Text, want) {
				t.Errorf("summary missing %q:\n%s", want, resp.Msg.Text)
			}
		}

		whole, err := ts.client.GetSummary(ctx, as("alice", &api.GetSummaryRequest{SessionID: sessionID}))
		if err != nil {
			t.Fatalf("GetSummary (session) failed: %v", err)
		}
		if !strings.Contains(whole.Msg.Text, "(pago)") {
			t.Errorf("session summary missing paid marker:\n%s", whole.Msg.Text)
		}

		_, err = ts.client.GetSummary(ctx, as("alice", &api.GetSummaryRequest{SessionID: sessionID, ParticipantID: "missing"}))
		assertCode(t, err, connect.CodeNotFound)
	})

	if got := testutil.ToFloat64(ts.metrics.Breakdowns); got == 0 {
		t.Error("expected breakdowns to be counted")
	}
}

func TestItemValidation(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	created := createSession(t, ts, "Ana")
	sessionID := created.Session.ID

	tests := []struct {
		name string
		req  *api.AddItemRequest
		want connect.Code
	}{
		{"blank name", &api.AddItemRequest{SessionID: sessionID, Name: "  ", Price: 10}, connect.CodeInvalidArgument},
		{"negative price", &api.AddItemRequest{SessionID: sessionID, Name: "Chopp", Price: -1}, connect.CodeInvalidArgument},
		{"unknown member", &api.AddItemRequest{SessionID: sessionID, Name: "Chopp", Price: 10, MemberIDs: []string{"ghost"}}, connect.CodeNotFound},
		{"unknown session", &api.AddItemRequest{SessionID: "missing", Name: "Chopp", Price: 10}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.client.AddItem(ctx, as("alice", tt.req))
			assertCode(t, err, tt.want)
		})
	}

	t.Run("item without members costs nothing", func(t *testing.T) {
		resp, err := ts.client.AddItem(ctx, as("alice", &api.AddItemRequest{SessionID: sessionID, Name: "Couvert", Price: 15}))
		if err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		assertMoney(t, "TotalConsumed", resp.Msg.Breakdown.TotalConsumed, 0)
		if members := resp.Msg.Session.Items[0].MemberIDs; members == nil || len(members) != 0 {
			t.Errorf("MemberIDs = %#v, want empty list", members)
		}
	})

	t.Run("update and remove item", func(t *testing.T) {
		got, err := ts.client.GetSession(ctx, as("alice", &api.GetSessionRequest{SessionID: sessionID}))
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		itemID := got.Msg.Session.Items[0].ID

		updated, err := ts.client.UpdateItem(ctx, as("alice", &api.UpdateItemRequest{SessionID: sessionID, ItemID: itemID, Name: "Couvert artístico", Price: 20}))
		if err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if it := updated.Msg.Session.Items[0]; it.Name != "Couvert artístico" || it.Price != 20 {
			t.Errorf("item = %+v", it)
		}

		_, err = ts.client.UpdateItem(ctx, as("alice", &api.UpdateItemRequest{SessionID: sessionID, ItemID: itemID, Name: "X", Price: -2}))
		assertCode(t, err, connect.CodeInvalidArgument)

		removed, err := ts.client.RemoveItem(ctx, as("alice", &api.RemoveItemRequest{SessionID: sessionID, ItemID: itemID}))
		if err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		if len(removed.Msg.Session.Items) != 0 {
			t.Errorf("expected no items, got %d", len(removed.Msg.Session.Items))
		}

		_, err = ts.client.RemoveItem(ctx, as("alice", &api.RemoveItemRequest{SessionID: sessionID, ItemID: itemID}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestParticipants(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	sessionID := createSession(t, ts).Session.ID

	_, err := ts.client.AddParticipant(ctx, as("alice", &api.AddParticipantRequest{SessionID: sessionID, Name: "   "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = ts.client.BulkAddParticipants(ctx, as("alice", &api.BulkAddParticipantsRequest{SessionID: sessionID, Names: []string{"", " "}}))
	assertCode(t, err, connect.CodeInvalidArgument)

	resp, err := ts.client.AddParticipant(ctx, as("alice", &api.AddParticipantRequest{SessionID: sessionID, Name: " Zeca "}))
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if resp.Msg.Session.Participants[0].Name != "Zeca" {
		t.Errorf("name not trimmed: %q", resp.Msg.Session.Participants[0].Name)
	}

	resp, err = ts.client.BulkAddParticipants(ctx, as("alice", &api.BulkAddParticipantsRequest{SessionID: sessionID, Names: []string{"Bia", "Ana"}}))
	if err != nil {
		t.Fatalf("BulkAddParticipants failed: %v", err)
	}
	var names []string
	for _, p := range resp.Msg.Session.Participants {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "Ana,Bia,Zeca" {
		t.Errorf("participants = %v, want sorted by name", names)
	}

	_, err = ts.client.RemoveParticipant(ctx, as("alice", &api.RemoveParticipantRequest{SessionID: sessionID, ParticipantID: "ghost"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestOwnership(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	sessionID := createSession(t, ts, "Ana").Session.ID

	_, err := ts.client.GetSession(ctx, as("mallory", &api.GetSessionRequest{SessionID: sessionID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = ts.client.DeleteSession(ctx, as("mallory", &api.DeleteSessionRequest{SessionID: sessionID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = ts.client.GetSession(ctx, as("alice", &api.GetSessionRequest{SessionID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = ts.client.GetSession(ctx, as("alice", &api.GetSessionRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListArchiveDelete(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	first := createSession(t, ts, "Ana").Session.ID
	second := createSession(t, ts, "Bia").Session.ID

	if _, err := ts.client.ArchiveSession(ctx, as("alice", &api.ArchiveSessionRequest{SessionID: first, Archived: true})); err != nil {
		t.Fatalf("ArchiveSession failed: %v", err)
	}

	active, err := ts.client.ListSessions(ctx, as("alice", &api.ListSessionsRequest{}))
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(active.Msg.Sessions) != 1 || active.Msg.Sessions[0].ID != second {
		t.Errorf("active sessions = %+v, want only %s", active.Msg.Sessions, second)
	}

	all, err := ts.client.ListSessions(ctx, as("alice", &api.ListSessionsRequest{IncludeArchived: true}))
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(all.Msg.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(all.Msg.Sessions))
	}

	others, err := ts.client.ListSessions(ctx, as("bob", &api.ListSessionsRequest{IncludeArchived: true}))
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(others.Msg.Sessions) != 0 {
		t.Errorf("bob sees %d sessions, want 0", len(others.Msg.Sessions))
	}

	if _, err := ts.client.DeleteSession(ctx, as("alice", &api.DeleteSessionRequest{SessionID: first})); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	_, err = ts.client.GetSession(ctx, as("alice", &api.GetSessionRequest{SessionID: first}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestTableNumberAndServiceChargeValidation(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	sessionID := createSession(t, ts, "Ana").Session.ID

	resp, err := ts.client.UpdateTableNumber(ctx, as("alice", &api.UpdateTableNumberRequest{SessionID: sessionID, TableNumber: " 7B "}))
	if err != nil {
		t.Fatalf("UpdateTableNumber failed: %v", err)
	}
	if resp.Msg.Session.TableNumber != "7B" {
		t.Errorf("TableNumber = %q, want 7B", resp.Msg.Session.TableNumber)
	}

	_, err = ts.client.UpdateServiceCharge(ctx, as("alice", &api.UpdateServiceChargeRequest{SessionID: sessionID, Percent: -1}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestAppSettings(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	admin := models.NewUser("root@example.com", "Root", "hash")
	admin.IsAdmin = true
	if err := ts.store.CreateUser(ctx, admin); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	regular := models.NewUser("alice@example.com", "Alice", "hash")
	if err := ts.store.CreateUser(ctx, regular); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	settings, err := ts.client.GetAppSettings(ctx, as("alice", &api.GetAppSettingsRequest{}))
	if err != nil {
		t.Fatalf("GetAppSettings failed: %v", err)
	}
	if settings.Msg.FlatFee != 1 || !settings.Msg.IsDefault {
		t.Errorf("settings = %+v, want default flat fee 1", settings.Msg)
	}

	t.Run("only admins change the flat fee", func(t *testing.T) {
		_, err := ts.client.UpdateFlatFee(ctx, as(regular.ID, &api.UpdateFlatFeeRequest{FlatFee: 5}))
		assertCode(t, err, connect.CodePermissionDenied)

		_, err = ts.client.UpdateFlatFee(ctx, as("unregistered", &api.UpdateFlatFeeRequest{FlatFee: 5}))
		assertCode(t, err, connect.CodeUnauthenticated)

		settings, err := ts.client.GetAppSettings(ctx, as(regular.ID, &api.GetAppSettingsRequest{}))
		if err != nil {
			t.Fatalf("GetAppSettings failed: %v", err)
		}
		if !settings.Msg.IsDefault {
			t.Errorf("denied update changed settings: %+v", settings.Msg)
		}
	})

	_, err = ts.client.UpdateFlatFee(ctx, as(admin.ID, &api.UpdateFlatFeeRequest{FlatFee: -1}))
	assertCode(t, err, connect.CodeInvalidArgument)

	if _, err := ts.client.UpdateFlatFee(ctx, as(admin.ID, &api.UpdateFlatFeeRequest{FlatFee: 0})); err != nil {
		t.Fatalf("UpdateFlatFee failed: %v", err)
	}

	// A stored zero overrides the configured default
	created := createSession(t, ts, "Ana", "Bia")
	assertMoney(t, "TotalFlatFee", created.Breakdown.TotalFlatFee, 0)

	settings, err = ts.client.GetAppSettings(ctx, as("alice", &api.GetAppSettingsRequest{}))
	if err != nil {
		t.Fatalf("GetAppSettings failed: %v", err)
	}
	if settings.Msg.FlatFee != 0 || settings.Msg.IsDefault {
		t.Errorf("settings = %+v, want stored flat fee 0", settings.Msg)
	}
}

func TestCreateSession_FailureLeavesNothing(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	db, err := sql.Open("sqlite", ts.dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `
		CREATE TRIGGER reject_zeca BEFORE INSERT ON participants
		WHEN NEW.name = 'Zeca'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	if err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}

	_, err = ts.client.CreateSession(ctx, as("alice", &api.CreateSessionRequest{
		Name:         "Bar do Zé",
		Participants: []string{"Ana", "Zeca"},
	}))
	assertCode(t, err, connect.CodeInternal)

	list, err := ts.client.ListSessions(ctx, as("alice", &api.ListSessionsRequest{IncludeArchived: true}))
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list.Msg.Sessions) != 0 {
		t.Errorf("failed create left %d sessions behind", len(list.Msg.Sessions))
	}
}

func TestJoinSession(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	created := createSession(t, ts, "Ana", "Bia")
	sessionID := created.Session.ID
	code := created.Session.InviteCode
	if code == "" {
		t.Fatal("owner did not receive an invite code")
	}
	ids := participantIDs(created.Session)
	if _, err := ts.client.AddItem(ctx, as("alice", &api.AddItemRequest{
		SessionID: sessionID, Name: "Chopp", Price: 30, MemberIDs: []string{ids["Ana"], ids["Bia"]},
	})); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	t.Run("rejects bad requests", func(t *testing.T) {
		_, err := ts.client.JoinSession(ctx, connect.NewRequest(&api.JoinSessionRequest{SessionID: sessionID, InviteCode: "wrong", Name: "Caio"}))
		assertCode(t, err, connect.CodePermissionDenied)

		_, err = ts.client.JoinSession(ctx, connect.NewRequest(&api.JoinSessionRequest{SessionID: sessionID, InviteCode: code, Name: "  "}))
		assertCode(t, err, connect.CodeInvalidArgument)

		_, err = ts.client.JoinSession(ctx, connect.NewRequest(&api.JoinSessionRequest{SessionID: "missing", InviteCode: code, Name: "Caio"}))
		assertCode(t, err, connect.CodeNotFound)
	})

	joined, err := ts.client.JoinSession(ctx, connect.NewRequest(&api.JoinSessionRequest{
		SessionID: sessionID, InviteCode: code, Name: " Caio ",
	}))
	if err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}
	guestID := joined.Msg.ParticipantID
	guestToken := joined.Msg.Token
	if guestID == "" || guestToken == "" {
		t.Fatalf("JoinSession response = %+v, want participant and token", joined.Msg)
	}
	if names := participantIDs(joined.Msg.Session.Session); names["Caio"] != guestID {
		t.Errorf("joined participant missing from snapshot: %v", names)
	}
	if joined.Msg.Session.Session.InviteCode != "" {
		t.Error("invite code leaked to guest")
	}

	t.Run("guest reads the session", func(t *testing.T) {
		resp, err := ts.client.GetSession(ctx, withToken(guestToken, &api.GetSessionRequest{SessionID: sessionID}))
		if err != nil {
			t.Fatalf("GetSession as guest failed: %v", err)
		}
		if len(resp.Msg.Session.Participants) != 3 {
			t.Errorf("participants = %d, want 3", len(resp.Msg.Session.Participants))
		}
		if resp.Msg.Session.InviteCode != "" {
			t.Error("invite code leaked to guest")
		}
	})

	t.Run("guest reads only their own summary", func(t *testing.T) {
		own, err := ts.client.GetSummary(ctx, withToken(guestToken, &api.GetSummaryRequest{SessionID: sessionID}))
		if err != nil {
			t.Fatalf("GetSummary as guest failed: %v", err)
		}
		if !strings.Contains(own.Msg.Text, "Caio") {
			t.Errorf("guest summary is not their own:\n%s", own.Msg.Text)
		}

		_, err = ts.client.GetSummary(ctx, withToken(guestToken, &api.GetSummaryRequest{SessionID: sessionID, ParticipantID: ids["Ana"]}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("guest cannot modify or read other sessions", func(t *testing.T) {
		_, err := ts.client.AddItem(ctx, withToken(guestToken, &api.AddItemRequest{SessionID: sessionID, Name: "Picanha", Price: 80}))
		assertCode(t, err, connect.CodePermissionDenied)

		_, err = ts.client.ListSessions(ctx, withToken(guestToken, &api.ListSessionsRequest{}))
		assertCode(t, err, connect.CodePermissionDenied)

		other := createSession(t, ts, "Zeca").Session.ID
		_, err = ts.client.GetSession(ctx, withToken(guestToken, &api.GetSessionRequest{SessionID: other}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("removed guest loses access", func(t *testing.T) {
		if _, err := ts.client.RemoveParticipant(ctx, as("alice", &api.RemoveParticipantRequest{SessionID: sessionID, ParticipantID: guestID})); err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}
		_, err := ts.client.GetSession(ctx, withToken(guestToken, &api.GetSessionRequest{SessionID: sessionID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("archived session refuses joins", func(t *testing.T) {
		if _, err := ts.client.ArchiveSession(ctx, as("alice", &api.ArchiveSessionRequest{SessionID: sessionID, Archived: true})); err != nil {
			t.Fatalf("ArchiveSession failed: %v", err)
		}
		_, err := ts.client.JoinSession(ctx, connect.NewRequest(&api.JoinSessionRequest{SessionID: sessionID, InviteCode: code, Name: "Duda"}))
		assertCode(t, err, connect.CodeFailedPrecondition)
	})
}
