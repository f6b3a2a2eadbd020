package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SessionServiceName is the fully-qualified name of the SessionService service.
const SessionServiceName = "rachadinha.v1.SessionService"

// Procedure names of SessionService.
const (
	SessionServiceCreateSessionProcedure       = "/rachadinha.v1.SessionService/CreateSession"
	SessionServiceGetSessionProcedure          = "/rachadinha.v1.SessionService/GetSession"
	SessionServiceJoinSessionProcedure         = "/rachadinha.v1.SessionService/JoinSession"
	SessionServiceListSessionsProcedure        = "/rachadinha.v1.SessionService/ListSessions"
	SessionServiceDeleteSessionProcedure       = "/rachadinha.v1.SessionService/DeleteSession"
	SessionServiceArchiveSessionProcedure      = "/rachadinha.v1.SessionService/ArchiveSession"
	SessionServiceUpdateServiceChargeProcedure = "/rachadinha.v1.SessionService/UpdateServiceCharge"
	SessionServiceUpdateTableNumberProcedure   = "/rachadinha.v1.SessionService/UpdateTableNumber"
	SessionServiceAddParticipantProcedure      = "/rachadinha.v1.SessionService/AddParticipant"
	SessionServiceBulkAddParticipantsProcedure = "/rachadinha.v1.SessionService/BulkAddParticipants"
	SessionServiceRemoveParticipantProcedure   = "/rachadinha.v1.SessionService/RemoveParticipant"
	SessionServiceSetParticipantPaidProcedure  = "/rachadinha.v1.SessionService/SetParticipantPaid"
	SessionServiceAddItemProcedure             = "/rachadinha.v1.SessionService/AddItem"
	SessionServiceUpdateItemProcedure          = "/rachadinha.v1.SessionService/UpdateItem"
	SessionServiceRemoveItemProcedure          = "/rachadinha.v1.SessionService/RemoveItem"
	SessionServiceToggleItemMemberProcedure    = "/rachadinha.v1.SessionService/ToggleItemMember"
	SessionServiceGetSummaryProcedure          = "/rachadinha.v1.SessionService/GetSummary"
	SessionServiceGetAppSettingsProcedure      = "/rachadinha.v1.SessionService/GetAppSettings"
	SessionServiceUpdateFlatFeeProcedure       = "/rachadinha.v1.SessionService/UpdateFlatFee"
)

// SessionServiceHandler is implemented by the server side of SessionService.
type SessionServiceHandler interface {
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[SessionResponse], error)
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error)
	JoinSession(context.Context, *connect.Request[JoinSessionRequest]) (*connect.Response[JoinSessionResponse], error)
	ListSessions(context.Context, *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error)
	DeleteSession(context.Context, *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error)
	ArchiveSession(context.Context, *connect.Request[ArchiveSessionRequest]) (*connect.Response[SessionResponse], error)
	UpdateServiceCharge(context.Context, *connect.Request[UpdateServiceChargeRequest]) (*connect.Response[SessionResponse], error)
	UpdateTableNumber(context.Context, *connect.Request[UpdateTableNumberRequest]) (*connect.Response[SessionResponse], error)
	AddParticipant(context.Context, *connect.Request[AddParticipantRequest]) (*connect.Response[SessionResponse], error)
	BulkAddParticipants(context.Context, *connect.Request[BulkAddParticipantsRequest]) (*connect.Response[SessionResponse], error)
	RemoveParticipant(context.Context, *connect.Request[RemoveParticipantRequest]) (*connect.Response[SessionResponse], error)
	SetParticipantPaid(context.Context, *connect.Request[SetParticipantPaidRequest]) (*connect.Response[SessionResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[SessionResponse], error)
	UpdateItem(context.Context, *connect.Request[UpdateItemRequest]) (*connect.Response[SessionResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[SessionResponse], error)
	ToggleItemMember(context.Context, *connect.Request[ToggleItemMemberRequest]) (*connect.Response[SessionResponse], error)
	GetSummary(context.Context, *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error)
	GetAppSettings(context.Context, *connect.Request[GetAppSettingsRequest]) (*connect.Response[AppSettings], error)
	UpdateFlatFee(context.Context, *connect.Request[UpdateFlatFeeRequest]) (*connect.Response[AppSettings], error)
}

// NewSessionServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	routes := map[string]http.Handler{
		SessionServiceCreateSessionProcedure:       connect.NewUnaryHandler(SessionServiceCreateSessionProcedure, svc.CreateSession, opt),
		SessionServiceGetSessionProcedure:          connect.NewUnaryHandler(SessionServiceGetSessionProcedure, svc.GetSession, opt),
		SessionServiceJoinSessionProcedure:         connect.NewUnaryHandler(SessionServiceJoinSessionProcedure, svc.JoinSession, opt),
		SessionServiceListSessionsProcedure:        connect.NewUnaryHandler(SessionServiceListSessionsProcedure, svc.ListSessions, opt),
		SessionServiceDeleteSessionProcedure:       connect.NewUnaryHandler(SessionServiceDeleteSessionProcedure, svc.DeleteSession, opt),
		SessionServiceArchiveSessionProcedure:      connect.NewUnaryHandler(SessionServiceArchiveSessionProcedure, svc.ArchiveSession, opt),
		SessionServiceUpdateServiceChargeProcedure: connect.NewUnaryHandler(SessionServiceUpdateServiceChargeProcedure, svc.UpdateServiceCharge, opt),
		SessionServiceUpdateTableNumberProcedure:   connect.NewUnaryHandler(SessionServiceUpdateTableNumberProcedure, svc.UpdateTableNumber, opt),
		SessionServiceAddParticipantProcedure:      connect.NewUnaryHandler(SessionServiceAddParticipantProcedure, svc.AddParticipant, opt),
		SessionServiceBulkAddParticipantsProcedure: connect.NewUnaryHandler(SessionServiceBulkAddParticipantsProcedure, svc.BulkAddParticipants, opt),
		SessionServiceRemoveParticipantProcedure:   connect.NewUnaryHandler(SessionServiceRemoveParticipantProcedure, svc.RemoveParticipant, opt),
		SessionServiceSetParticipantPaidProcedure:  connect.NewUnaryHandler(SessionServiceSetParticipantPaidProcedure, svc.SetParticipantPaid, opt),
		SessionServiceAddItemProcedure:             connect.NewUnaryHandler(SessionServiceAddItemProcedure, svc.AddItem, opt),
		SessionServiceUpdateItemProcedure:          connect.NewUnaryHandler(SessionServiceUpdateItemProcedure, svc.UpdateItem, opt),
		SessionServiceRemoveItemProcedure:          connect.NewUnaryHandler(SessionServiceRemoveItemProcedure, svc.RemoveItem, opt),
		SessionServiceToggleItemMemberProcedure:    connect.NewUnaryHandler(SessionServiceToggleItemMemberProcedure, svc.ToggleItemMember, opt),
		SessionServiceGetSummaryProcedure:          connect.NewUnaryHandler(SessionServiceGetSummaryProcedure, svc.GetSummary, opt),
		SessionServiceGetAppSettingsProcedure:      connect.NewUnaryHandler(SessionServiceGetAppSettingsProcedure, svc.GetAppSettings, opt),
		SessionServiceUpdateFlatFeeProcedure:       connect.NewUnaryHandler(SessionServiceUpdateFlatFeeProcedure, svc.UpdateFlatFee, opt),
	}
	return "/" + SessionServiceName + "/", dispatch(routes)
}

// dispatch routes by exact procedure path.
func dispatch(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// SessionServiceClient is a client for SessionService.
type SessionServiceClient interface {
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[SessionResponse], error)
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error)
	JoinSession(context.Context, *connect.Request[JoinSessionRequest]) (*connect.Response[JoinSessionResponse], error)
	ListSessions(context.Context, *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error)
	DeleteSession(context.Context, *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error)
	ArchiveSession(context.Context, *connect.Request[ArchiveSessionRequest]) (*connect.Response[SessionResponse], error)
	UpdateServiceCharge(context.Context, *connect.Request[UpdateServiceChargeRequest]) (*connect.Response[SessionResponse], error)
	UpdateTableNumber(context.Context, *connect.Request[UpdateTableNumberRequest]) (*connect.Response[SessionResponse], error)
	AddParticipant(context.Context, *connect.Request[AddParticipantRequest]) (*connect.Response[SessionResponse], error)
	BulkAddParticipants(context.Context, *connect.Request[BulkAddParticipantsRequest]) (*connect.Response[SessionResponse], error)
	RemoveParticipant(context.Context, *connect.Request[RemoveParticipantRequest]) (*connect.Response[SessionResponse], error)
	SetParticipantPaid(context.Context, *connect.Request[SetParticipantPaidRequest]) (*connect.Response[SessionResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[SessionResponse], error)
	UpdateItem(context.Context, *connect.Request[UpdateItemRequest]) (*connect.Response[SessionResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[SessionResponse], error)
	ToggleItemMember(context.Context, *connect.Request[ToggleItemMemberRequest]) (*connect.Response[SessionResponse], error)
	GetSummary(context.Context, *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error)
	GetAppSettings(context.Context, *connect.Request[GetAppSettingsRequest]) (*connect.Response[AppSettings], error)
	UpdateFlatFee(context.Context, *connect.Request[UpdateFlatFeeRequest]) (*connect.Response[AppSettings], error)
}

// NewSessionServiceClient constructs a client for SessionService. baseURL is
// the server root, e.g. http://localhost:8080.
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &sessionServiceClient{
		createSession:       connect.NewClient[CreateSessionRequest, SessionResponse](httpClient, baseURL+SessionServiceCreateSessionProcedure, opt),
		getSession:          connect.NewClient[GetSessionRequest, SessionResponse](httpClient, baseURL+SessionServiceGetSessionProcedure, opt),
		joinSession:         connect.NewClient[JoinSessionRequest, JoinSessionResponse](httpClient, baseURL+SessionServiceJoinSessionProcedure, opt),
		listSessions:        connect.NewClient[ListSessionsRequest, ListSessionsResponse](httpClient, baseURL+SessionServiceListSessionsProcedure, opt),
		deleteSession:       connect.NewClient[DeleteSessionRequest, DeleteSessionResponse](httpClient, baseURL+SessionServiceDeleteSessionProcedure, opt),
		archiveSession:      connect.NewClient[ArchiveSessionRequest, SessionResponse](httpClient, baseURL+SessionServiceArchiveSessionProcedure, opt),
		updateServiceCharge: connect.NewClient[UpdateServiceChargeRequest, SessionResponse](httpClient, baseURL+SessionServiceUpdateServiceChargeProcedure, opt),
		updateTableNumber:   connect.NewClient[UpdateTableNumberRequest, SessionResponse](httpClient, baseURL+SessionServiceUpdateTableNumberProcedure, opt),
		addParticipant:      connect.NewClient[AddParticipantRequest, SessionResponse](httpClient, baseURL+SessionServiceAddParticipantProcedure, opt),
		bulkAddParticipants: connect.NewClient[BulkAddParticipantsRequest, SessionResponse](httpClient, baseURL+SessionServiceBulkAddParticipantsProcedure, opt),
		removeParticipant:   connect.NewClient[RemoveParticipantRequest, SessionResponse](httpClient, baseURL+SessionServiceRemoveParticipantProcedure, opt),
		setParticipantPaid:  connect.NewClient[SetParticipantPaidRequest, SessionResponse](httpClient, baseURL+SessionServiceSetParticipantPaidProcedure, opt),
		addItem:             connect.NewClient[AddItemRequest, SessionResponse](httpClient, baseURL+SessionServiceAddItemProcedure, opt),
		updateItem:          connect.NewClient[UpdateItemRequest, SessionResponse](httpClient, baseURL+SessionServiceUpdateItemProcedure, opt),
		removeItem:          connect.NewClient[RemoveItemRequest, SessionResponse](httpClient, baseURL+SessionServiceRemoveItemProcedure, opt),
		toggleItemMember:    connect.NewClient[ToggleItemMemberRequest, SessionResponse](httpClient, baseURL+SessionServiceToggleItemMemberProcedure, opt),
		getSummary:          connect.NewClient[GetSummaryRequest, GetSummaryResponse](httpClient, baseURL+SessionServiceGetSummaryProcedure, opt),
		getAppSettings:      connect.NewClient[GetAppSettingsRequest, AppSettings](httpClient, baseURL+SessionServiceGetAppSettingsProcedure, opt),
		updateFlatFee:       connect.NewClient[UpdateFlatFeeRequest, AppSettings](httpClient, baseURL+SessionServiceUpdateFlatFeeProcedure, opt),
	}
}

type sessionServiceClient struct {
	createSession       *connect.Client[CreateSessionRequest, SessionResponse]
	getSession          *connect.Client[GetSessionRequest, SessionResponse]
	joinSession         *connect.Client[JoinSessionRequest, JoinSessionResponse]
	listSessions        *connect.Client[ListSessionsRequest, ListSessionsResponse]
	deleteSession       *connect.Client[DeleteSessionRequest, DeleteSessionResponse]
	archiveSession      *connect.Client[ArchiveSessionRequest, SessionResponse]
	updateServiceCharge *connect.Client[UpdateServiceChargeRequest, SessionResponse]
	updateTableNumber   *connect.Client[UpdateTableNumberRequest, SessionResponse]
	addParticipant      *connect.Client[AddParticipantRequest, SessionResponse]
	bulkAddParticipants *connect.Client[BulkAddParticipantsRequest, SessionResponse]
	removeParticipant   *connect.Client[RemoveParticipantRequest, SessionResponse]
	setParticipantPaid  *connect.Client[SetParticipantPaidRequest, SessionResponse]
	addItem             *connect.Client[AddItemRequest, SessionResponse]
	updateItem          *connect.Client[UpdateItemRequest, SessionResponse]
	removeItem          *connect.Client[RemoveItemRequest, SessionResponse]
	toggleItemMember    *connect.Client[ToggleItemMemberRequest, SessionResponse]
	getSummary          *connect.Client[GetSummaryRequest, GetSummaryResponse]
	getAppSettings      *connect.Client[GetAppSettingsRequest, AppSettings]
	updateFlatFee       *connect.Client[UpdateFlatFeeRequest, AppSettings]
}

func (c *sessionServiceClient) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) JoinSession(ctx context.Context, req *connect.Request[JoinSessionRequest]) (*connect.Response[JoinSessionResponse], error) {
	return c.joinSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) ListSessions(ctx context.Context, req *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error) {
	return c.listSessions.CallUnary(ctx, req)
}

func (c *sessionServiceClient) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	return c.deleteSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) ArchiveSession(ctx context.Context, req *connect.Request[ArchiveSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.archiveSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateServiceCharge(ctx context.Context, req *connect.Request[UpdateServiceChargeRequest]) (*connect.Response[SessionResponse], error) {
	return c.updateServiceCharge.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateTableNumber(ctx context.Context, req *connect.Request[UpdateTableNumberRequest]) (*connect.Response[SessionResponse], error) {
	return c.updateTableNumber.CallUnary(ctx, req)
}

func (c *sessionServiceClient) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[SessionResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *sessionServiceClient) BulkAddParticipants(ctx context.Context, req *connect.Request[BulkAddParticipantsRequest]) (*connect.Response[SessionResponse], error) {
	return c.bulkAddParticipants.CallUnary(ctx, req)
}

func (c *sessionServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[RemoveParticipantRequest]) (*connect.Response[SessionResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SetParticipantPaid(ctx context.Context, req *connect.Request[SetParticipantPaidRequest]) (*connect.Response[SessionResponse], error) {
	return c.setParticipantPaid.CallUnary(ctx, req)
}

func (c *sessionServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[SessionResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateItem(ctx context.Context, req *connect.Request[UpdateItemRequest]) (*connect.Response[SessionResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[SessionResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) ToggleItemMember(ctx context.Context, req *connect.Request[ToggleItemMemberRequest]) (*connect.Response[SessionResponse], error) {
	return c.toggleItemMember.CallUnary(ctx, req)
}

func (c *sessionServiceClient) GetSummary(ctx context.Context, req *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *sessionServiceClient) GetAppSettings(ctx context.Context, req *connect.Request[GetAppSettingsRequest]) (*connect.Response[AppSettings], error) {
	return c.getAppSettings.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateFlatFee(ctx context.Context, req *connect.Request[UpdateFlatFeeRequest]) (*connect.Response[AppSettings], error) {
	return c.updateFlatFee.CallUnary(ctx, req)
}
