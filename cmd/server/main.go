package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-backend/internal/archive"
	"stock-backend/internal/auth"
	"stock-backend/internal/cache"
	"stock-backend/internal/config"
	"stock-backend/internal/database"
	"stock-backend/internal/db"
	"stock-backend/internal/handlers"
	"stock-backend/internal/health"
	h "stock-backend/internal/http"
	"stock-backend/internal/logging"
	"stock-backend/internal/middleware"
	"stock-backend/internal/models"
	"stock-backend/internal/monitoring"
	"stock-backend/internal/numbering"
	"stock-backend/internal/repositories"
	"stock-backend/internal/services"
	"stock-backend/internal/stock"
	"stock-backend/internal/timeutil"
	"stock-backend/migrations"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.Log.ServiceName,
		Environment: cfg.Log.Environment,
		Version:     version,
	})

	if err := timeutil.SetLocation(cfg.Server.Timezone); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	migrator := database.NewMigratorWithFS(pool, migrations.FS, logger)
	if err := migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Redis is optional; without it every cached read goes to the database
	if err := cache.Init(cache.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
	}
	defer cache.Close()

	policy, err := stock.ParsePolicy(cfg.Invoice.IncomingPolicy)
	if err != nil {
		return err
	}
	mode, err := h.ParseMode(cfg.Auth.Mode)
	if err != nil {
		return err
	}

	hub := monitoring.NewHub(logger)
	go hub.Run(ctx)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	uow := repositories.NewUnitOfWork(pool)
	numbers := numbering.NewAllocator(cfg.Invoice.IncomingPrefix, cfg.Invoice.OutgoingPrefix)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	userService := services.NewUserService(userRepo, jwtManager)
	productService := services.NewProductService(productRepo)
	incomingService := services.NewIncomingInvoiceService(uow, invoiceRepo, numbers, policy, hub, logger)
	outgoingService := services.NewOutgoingInvoiceService(uow, invoiceRepo, numbers, hub, logger)

	var archiver services.Archiver
	if cfg.Archive.Enabled {
		s3Archive, err := archive.NewS3Archive(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("invoice archive: %w", err)
		}
		archiver = s3Archive
		logger.Info("invoice archive enabled", "bucket", cfg.Archive.Bucket)
	}
	documentService := services.NewInvoiceDocumentService(invoiceRepo, archiver, logger)

	// Handlers
	hs := h.Handlers{
		Auth: handlers.NewAuthHandler(userService),
		Organizations: handlers.NewCatalogHandler[models.Organization, models.OrganizationRequest, models.OrganizationRequest](
			services.NewOrganizationService(repositories.NewOrganizationRepository(pool))),
		Storages: handlers.NewCatalogHandler[models.Storage, models.StorageRequest, models.StorageRequest](
			services.NewStorageService(repositories.NewStorageRepository(pool))),
		Employees: handlers.NewCatalogHandler[models.Employee, models.EmployeeRequest, models.EmployeeRequest](
			services.NewEmployeeService(repositories.NewEmployeeRepository(pool))),
		Suppliers: handlers.NewCatalogHandler[models.Supplier, models.SupplierRequest, models.SupplierRequest](
			services.NewSupplierService(repositories.NewSupplierRepository(pool))),
		Customers: handlers.NewCatalogHandler[models.Customer, models.CustomerRequest, models.CustomerRequest](
			services.NewCustomerService(repositories.NewCustomerRepository(pool))),
		Contracts: handlers.NewCatalogHandler[models.Contract, models.ContractRequest, models.ContractRequest](
			services.NewContractService(repositories.NewContractRepository(pool))),
		Operations: handlers.NewCatalogHandler[models.Operation, models.OperationRequest, models.OperationRequest](
			services.NewOperationService(repositories.NewOperationRepository(pool))),
		Products:     handlers.NewProductHandler(productService),
		Incoming:     handlers.NewIncomingInvoiceHandler(incomingService),
		Outgoing:     handlers.NewOutgoingInvoiceHandler(outgoingService),
		IncomingDocs: handlers.NewInvoiceDocumentHandler(documentService, models.InvoiceIncoming),
		OutgoingDocs: handlers.NewInvoiceDocumentHandler(documentService, models.InvoiceOutgoing),
		Health:       handlers.NewHealthHandler(health.NewHealthChecker(pool, version), hub.ClientCount),
		StockFeed:    hub.ServeWS,
	}

	router := h.NewRouter(hs, middleware.NewAuthMiddleware(jwtManager), mode, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.NewCORS(cfg)(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", srv.Addr, "auth_mode", string(mode), "incoming_policy", string(policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
