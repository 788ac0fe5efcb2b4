package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/archive"
	"stock-backend/internal/auth"
	"stock-backend/internal/config"
	"stock-backend/internal/handlers"
	"stock-backend/internal/health"
	"stock-backend/internal/logging"
	"stock-backend/internal/middleware"
	"stock-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog[T, C, U any] struct {
	created *C
}

func (f *fakeCatalog[T, C, U]) Create(_ context.Context, req *C) (*T, error) {
	f.created = req
	return new(T), nil
}
func (f *fakeCatalog[T, C, U]) Get(_ context.Context, id int) (*T, error) {
	if id != 1 {
		return nil, apperrors.ErrNotFoundWithID("Row", id)
	}
	return new(T), nil
}
func (f *fakeCatalog[T, C, U]) List(context.Context) ([]*T, error) { return []*T{}, nil }
func (f *fakeCatalog[T, C, U]) Update(_ context.Context, id int, _ *U) (*T, error) {
	return f.Get(context.Background(), id)
}
func (f *fakeCatalog[T, C, U]) Delete(_ context.Context, id int) error {
	_, err := f.Get(context.Background(), id)
	return err
}

type fakeProducts struct {
	fakeCatalog[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
}

func (f *fakeProducts) GetByName(_ context.Context, name string) (*models.Product, error) {
	if name != "Rice" {
		return nil, apperrors.ErrNotFound("Product")
	}
	return &models.Product{ID: 1, Name: name}, nil
}

type fakeIncoming struct {
	created *models.CreateIncomingInvoiceRequest
	patched *models.IncomingInvoicePatch
}

func (f *fakeIncoming) Create(_ context.Context, req *models.CreateIncomingInvoiceRequest) (*models.IncomingInvoice, error) {
	f.created = req
	return &models.IncomingInvoice{ID: 1, Number: "inv001"}, nil
}
func (f *fakeIncoming) Update(_ context.Context, id int, patch *models.IncomingInvoicePatch) (*models.IncomingInvoice, error) {
	f.patched = patch
	return &models.IncomingInvoice{ID: id}, nil
}
func (f *fakeIncoming) Delete(context.Context, int) error { return nil }
func (f *fakeIncoming) Get(_ context.Context, id int) (*models.IncomingInvoice, error) {
	return nil, apperrors.ErrNotFoundWithID("Incoming invoice", id)
}
func (f *fakeIncoming) List(context.Context) ([]*models.IncomingInvoice, error) {
	return []*models.IncomingInvoice{}, nil
}
func (f *fakeIncoming) NextNumber(context.Context) (string, error) { return "inv004", nil }
func (f *fakeIncoming) ProductsByDateAndStorage(_ context.Context, day string) ([]*models.ProductWithStorage, error) {
	if day == "" {
		return nil, apperrors.ErrValidation("date query parameter is required")
	}
	return []*models.ProductWithStorage{}, nil
}

type fakeOutgoing struct{}

func (fakeOutgoing) Create(context.Context, *models.CreateOutgoingInvoiceRequest) (*models.OutgoingInvoice, error) {
	return nil, apperrors.ErrInsufficientStock("Rice", "1", "2")
}
func (fakeOutgoing) Update(_ context.Context, id int, _ *models.OutgoingInvoicePatch) (*models.OutgoingInvoice, error) {
	return &models.OutgoingInvoice{ID: id}, nil
}
func (fakeOutgoing) Delete(context.Context, int) error { return nil }
func (fakeOutgoing) Get(context.Context, int) (*models.OutgoingInvoice, error) {
	return &models.OutgoingInvoice{ID: 1}, nil
}
func (fakeOutgoing) List(context.Context) ([]*models.OutgoingInvoice, error) {
	return []*models.OutgoingInvoice{}, nil
}
func (fakeOutgoing) NextNumber(context.Context) (string, error) { return "out001", nil }

type fakeDocs struct{}

func (fakeDocs) PDF(_ context.Context, kind models.InvoiceKind, id int) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "inv001.pdf", nil
}
func (fakeDocs) Archive(_ context.Context, kind models.InvoiceKind, _ int) (*archive.Object, error) {
	return &archive.Object{Key: string(kind) + "/inv001.pdf"}, nil
}

type fakeAccounts struct{}

func (fakeAccounts) Register(context.Context, *models.RegisterRequest) (*models.TokenResponse, error) {
	return &models.TokenResponse{AccessToken: "a"}, nil
}
func (fakeAccounts) Login(context.Context, *models.LoginRequest) (*models.TokenResponse, error) {
	return nil, apperrors.ErrUnauthorized("invalid username or password")
}
func (fakeAccounts) Refresh(context.Context, string) (*models.TokenResponse, error) {
	return &models.TokenResponse{AccessToken: "b"}, nil
}
func (fakeAccounts) Me(_ context.Context, id int) (*models.User, error) {
	return &models.User{ID: id, Username: "alice"}, nil
}

type fakeHealth struct{}

func (fakeHealth) CheckReady(context.Context) health.HealthStatus {
	return health.HealthStatus{Status: health.StatusUnhealthy}
}
func (fakeHealth) CheckDetailed(context.Context, int) health.DetailedStatus {
	return health.DetailedStatus{}
}

type testServer struct {
	router   http.Handler
	incoming *fakeIncoming
	token    string
}

func newTestServer(t *testing.T, mode Mode) *testServer {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "router-secret"
	jm := auth.NewJWTManager(cfg)
	token, err := jm.GenerateAccessToken(&models.User{ID: 9, Username: "alice"})
	require.NoError(t, err)

	incoming := &fakeIncoming{}
	hs := Handlers{
		Auth:          handlers.NewAuthHandler(fakeAccounts{}),
		Organizations: handlers.NewCatalogHandler[models.Organization, models.OrganizationRequest, models.OrganizationRequest](&fakeCatalog[models.Organization, models.OrganizationRequest, models.OrganizationRequest]{}),
		Storages:      handlers.NewCatalogHandler[models.Storage, models.StorageRequest, models.StorageRequest](&fakeCatalog[models.Storage, models.StorageRequest, models.StorageRequest]{}),
		Employees:     handlers.NewCatalogHandler[models.Employee, models.EmployeeRequest, models.EmployeeRequest](&fakeCatalog[models.Employee, models.EmployeeRequest, models.EmployeeRequest]{}),
		Suppliers:     handlers.NewCatalogHandler[models.Supplier, models.SupplierRequest, models.SupplierRequest](&fakeCatalog[models.Supplier, models.SupplierRequest, models.SupplierRequest]{}),
		Customers:     handlers.NewCatalogHandler[models.Customer, models.CustomerRequest, models.CustomerRequest](&fakeCatalog[models.Customer, models.CustomerRequest, models.CustomerRequest]{}),
		Contracts:     handlers.NewCatalogHandler[models.Contract, models.ContractRequest, models.ContractRequest](&fakeCatalog[models.Contract, models.ContractRequest, models.ContractRequest]{}),
		Operations:    handlers.NewCatalogHandler[models.Operation, models.OperationRequest, models.OperationRequest](&fakeCatalog[models.Operation, models.OperationRequest, models.OperationRequest]{}),
		Products:      handlers.NewProductHandler(&fakeProducts{}),
		Incoming:      handlers.NewIncomingInvoiceHandler(incoming),
		Outgoing:      handlers.NewOutgoingInvoiceHandler(fakeOutgoing{}),
		IncomingDocs:  handlers.NewInvoiceDocumentHandler(fakeDocs{}, models.InvoiceIncoming),
		OutgoingDocs:  handlers.NewInvoiceDocumentHandler(fakeDocs{}, models.InvoiceOutgoing),
		Health:        handlers.NewHealthHandler(fakeHealth{}, nil),
	}
	return &testServer{
		router:   NewRouter(hs, middleware.NewAuthMiddleware(jm), mode, logging.Nop()),
		incoming: incoming,
		token:    token,
	}
}

func (s *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

const validIncoming = `{
	"date": "2024-01-10",
	"counter_agent_id": 1,
	"operation_type": "purchase",
	"organization_id": 1,
	"storage_id": 2,
	"responsible_person_id": 3,
	"items": [{"product_name": "Rice", "quantity": "2", "unit_price": 100, "unit_of_measure": "kg"}]
}`

func TestAccessModes(t *testing.T) {
	cases := []struct {
		mode   Mode
		method string
		path   string
		body   string
		status int
	}{
		{ModeStrict, http.MethodPost, "/api/customers", `{"name":"Acme"}`, http.StatusUnauthorized},
		{ModeLegacy, http.MethodPost, "/api/customers", `{"name":"Acme"}`, http.StatusCreated},
		{ModeStrict, http.MethodDelete, "/api/outgoing-invoices/1", "", http.StatusUnauthorized},
		{ModeLegacy, http.MethodDelete, "/api/outgoing-invoices/1", "", http.StatusNoContent},
		{ModeLegacy, http.MethodPost, "/api/incoming-invoices", validIncoming, http.StatusUnauthorized},
		{ModeLegacy, http.MethodDelete, "/api/incoming-invoices/1", "", http.StatusUnauthorized},
		{ModeLegacy, http.MethodPost, "/api/incoming-invoices/1/archive", "", http.StatusUnauthorized},
		{ModeStrict, http.MethodGet, "/api/incoming-invoices", "", http.StatusOK},
		{ModeStrict, http.MethodGet, "/api/products/by-name/Rice", "", http.StatusOK},
		{ModeLegacy, http.MethodGet, "/api/user/me", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode)+" "+tc.method+" "+tc.path, func(t *testing.T) {
			rec := newTestServer(t, tc.mode).do(tc.method, tc.path, tc.body, false)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestIncomingCreate(t *testing.T) {
	s := newTestServer(t, ModeStrict)

	rec := s.do(http.MethodPost, "/api/incoming-invoices", validIncoming, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"number":"inv001"`)
	require.NotNil(t, s.incoming.created)
	assert.Equal(t, models.RawNumber("2"), s.incoming.created.Items[0].Quantity)
	assert.Equal(t, models.RawNumber("100"), s.incoming.created.Items[0].UnitPrice)
}

func TestIncomingCreateValidation(t *testing.T) {
	s := newTestServer(t, ModeStrict)

	rec := s.do(http.MethodPost, "/api/incoming-invoices", `{"operation_type": "purchase", "items": [{"quantity": 1}]}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := errorBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "date")
	assert.Contains(t, details, "storage_id")
	assert.Contains(t, details, "items[0].product_name")
	assert.Nil(t, s.incoming.created)

	rec = s.do(http.MethodPost, "/api/incoming-invoices", `{not json`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncomingPatchValidatesItems(t *testing.T) {
	s := newTestServer(t, ModeStrict)

	rec := s.do(http.MethodPatch, "/api/incoming-invoices/3", `{"items": [{"product_name": "Rice", "quantity": 1, "unit_price": 1}]}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec)["details"], "items[0].unit_of_measure")

	rec = s.do(http.MethodPatch, "/api/incoming-invoices/3", `{"comment": null}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.incoming.patched.Comment.Null)
	assert.False(t, s.incoming.patched.Items.Set)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, ModeStrict)

	rec := s.do(http.MethodGet, "/api/incoming-invoices/77", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RESOURCE_NOT_FOUND", errorBody(t, rec)["code"])

	rec = s.do(http.MethodPost, "/api/outgoing-invoices", `{"date":"2024-01-01","customer_id":1,"organization_id":1,"storage_id":1,"responsible_person_id":1,"items":[]}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := errorBody(t, rec)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "Not enough stock for product Rice. Available: 1, Requested: 2", body["message"])

	rec = s.do(http.MethodGet, "/api/products/by-name/Salt", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/user/login", `{"username":"a","password":"b"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPeekAndDocuments(t *testing.T) {
	s := newTestServer(t, ModeStrict)

	rec := s.do(http.MethodGet, "/api/incoming-invoices/next-invoice-number", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"next_invoice_number":"inv004"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/incoming-invoices/by-date-and-storage", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/incoming-invoices/1/pdf", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inv001.pdf")

	rec = s.do(http.MethodPost, "/api/outgoing-invoices/1/archive", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "outgoing/inv001.pdf")
}

func TestMeAndHealth(t *testing.T) {
	s := newTestServer(t, ModeStrict)

	rec := s.do(http.MethodGet, "/api/user/me", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":9`)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", false).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/health/ready", "", false).Code)
	assert.NotEmpty(t, s.do(http.MethodGet, "/api/products/1", "", false).Header().Get(middleware.RequestIDHeader))
}

func TestParseModeAndUnknownOperations(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode("LEGACY")
	require.NoError(t, err)
	assert.Equal(t, ModeLegacy, m)

	_, err = ParseMode("open")
	assert.Error(t, err)

	assert.True(t, ModeLegacy.Protected("something.new"))
	assert.False(t, ModeLegacy.Protected("outgoing.create"))
	assert.True(t, ModeStrict.Protected("outgoing.create"))
}
