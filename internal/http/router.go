package http

import (
	"net/http"

	"stock-backend/internal/handlers"
	"stock-backend/internal/logging"
	"stock-backend/internal/middleware"
	"stock-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	OrganizationHandler = handlers.CatalogHandler[models.Organization, models.OrganizationRequest, models.OrganizationRequest]
	StorageHandler      = handlers.CatalogHandler[models.Storage, models.StorageRequest, models.StorageRequest]
	EmployeeHandler     = handlers.CatalogHandler[models.Employee, models.EmployeeRequest, models.EmployeeRequest]
	SupplierHandler     = handlers.CatalogHandler[models.Supplier, models.SupplierRequest, models.SupplierRequest]
	CustomerHandler     = handlers.CatalogHandler[models.Customer, models.CustomerRequest, models.CustomerRequest]
	ContractHandler     = handlers.CatalogHandler[models.Contract, models.ContractRequest, models.ContractRequest]
	OperationHandler    = handlers.CatalogHandler[models.Operation, models.OperationRequest, models.OperationRequest]
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth          *handlers.AuthHandler
	Organizations *OrganizationHandler
	Storages      *StorageHandler
	Employees     *EmployeeHandler
	Suppliers     *SupplierHandler
	Customers     *CustomerHandler
	Contracts     *ContractHandler
	Operations    *OperationHandler
	Products      *handlers.ProductHandler
	Incoming      *handlers.IncomingInvoiceHandler
	Outgoing      *handlers.OutgoingInvoiceHandler
	IncomingDocs  *handlers.InvoiceDocumentHandler
	OutgoingDocs  *handlers.InvoiceDocumentHandler
	Health        *handlers.HealthHandler
	StockFeed     http.HandlerFunc
}

// routes registers handlers and wraps the ones the access mode protects
type routes struct {
	r    *mux.Router
	mode Mode
	auth *middleware.AuthMiddleware
}

func (rt routes) handle(method, path, op string, h http.HandlerFunc) {
	var handler http.Handler = h
	if rt.mode.Protected(op) {
		handler = rt.auth.Authenticate(handler)
	}
	rt.r.Handle(path, handler).Methods(method).Name(op)
}

type crudHandler interface {
	List(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func (rt routes) catalog(resource string, h crudHandler) {
	base := "/api/" + resource
	rt.handle(http.MethodGet, base, resource+".list", h.List)
	rt.handle(http.MethodPost, base, resource+".create", h.Create)
	rt.handle(http.MethodGet, base+"/{id:[0-9]+}", resource+".get", h.Get)
	rt.handle(http.MethodPut, base+"/{id:[0-9]+}", resource+".update", h.Update)
	rt.handle(http.MethodDelete, base+"/{id:[0-9]+}", resource+".delete", h.Delete)
}

func NewRouter(hs Handlers, authMiddleware *middleware.AuthMiddleware, mode Mode, logger *logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(
		middleware.RequestLogger(logger),
		middleware.PanicRecovery(logger),
		middleware.MetricsMiddleware,
	)

	rt := routes{r: r, mode: mode, auth: authMiddleware}

	// Users
	rt.handle(http.MethodPost, "/api/user/register", "user.register", hs.Auth.Register)
	rt.handle(http.MethodPost, "/api/user/login", "user.login", hs.Auth.Login)
	rt.handle(http.MethodPost, "/api/user/refresh", "user.refresh", hs.Auth.Refresh)
	rt.handle(http.MethodGet, "/api/user/me", "user.me", hs.Auth.Me)

	// Master data
	rt.catalog("organizations", hs.Organizations)
	rt.catalog("storages", hs.Storages)
	rt.catalog("employees", hs.Employees)
	rt.catalog("suppliers", hs.Suppliers)
	rt.catalog("customers", hs.Customers)
	rt.catalog("contracts", hs.Contracts)
	rt.catalog("operations", hs.Operations)

	// Products
	rt.handle(http.MethodGet, "/api/products/by-name/{name}", "products.by_name", hs.Products.GetByName)
	rt.catalog("products", hs.Products)

	// Incoming invoices
	rt.handle(http.MethodGet, "/api/incoming-invoices/next-invoice-number", "incoming.next_number", hs.Incoming.NextNumber)
	rt.handle(http.MethodGet, "/api/incoming-invoices/by-date-and-storage", "incoming.by_date", hs.Incoming.ProductsByDateAndStorage)
	rt.handle(http.MethodGet, "/api/incoming-invoices", "incoming.list", hs.Incoming.List)
	rt.handle(http.MethodPost, "/api/incoming-invoices", "incoming.create", hs.Incoming.Create)
	rt.handle(http.MethodGet, "/api/incoming-invoices/{id:[0-9]+}", "incoming.get", hs.Incoming.Get)
	rt.handle(http.MethodPatch, "/api/incoming-invoices/{id:[0-9]+}", "incoming.update", hs.Incoming.Patch)
	rt.handle(http.MethodDelete, "/api/incoming-invoices/{id:[0-9]+}", "incoming.delete", hs.Incoming.Delete)
	rt.handle(http.MethodGet, "/api/incoming-invoices/{id:[0-9]+}/pdf", "incoming.pdf", hs.IncomingDocs.PDF)
	rt.handle(http.MethodPost, "/api/incoming-invoices/{id:[0-9]+}/archive", "incoming.archive", hs.IncomingDocs.Archive)

	// Outgoing invoices
	rt.handle(http.MethodGet, "/api/outgoing-invoices/next-invoice-number", "outgoing.next_number", hs.Outgoing.NextNumber)
	rt.handle(http.MethodGet, "/api/outgoing-invoices", "outgoing.list", hs.Outgoing.List)
	rt.handle(http.MethodPost, "/api/outgoing-invoices", "outgoing.create", hs.Outgoing.Create)
	rt.handle(http.MethodGet, "/api/outgoing-invoices/{id:[0-9]+}", "outgoing.get", hs.Outgoing.Get)
	rt.handle(http.MethodPatch, "/api/outgoing-invoices/{id:[0-9]+}", "outgoing.update", hs.Outgoing.Patch)
	rt.handle(http.MethodDelete, "/api/outgoing-invoices/{id:[0-9]+}", "outgoing.delete", hs.Outgoing.Delete)
	rt.handle(http.MethodGet, "/api/outgoing-invoices/{id:[0-9]+}/pdf", "outgoing.pdf", hs.OutgoingDocs.PDF)
	rt.handle(http.MethodPost, "/api/outgoing-invoices/{id:[0-9]+}/archive", "outgoing.archive", hs.OutgoingDocs.Archive)

	// Stock feed, health and metrics
	if hs.StockFeed != nil {
		r.HandleFunc("/ws/stock", hs.StockFeed).Methods(http.MethodGet)
	}
	r.HandleFunc("/health", hs.Health.BasicHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", hs.Health.ReadinessHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/detailed", hs.Health.DetailedHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
