package services

import (
	"context"
	"strings"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/ledger"
	"stock-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Repository is the CRUD surface every master-data repository offers
type Repository[T any] interface {
	Create(ctx context.Context, m *T) error
	Get(ctx context.Context, id int) (*T, error)
	List(ctx context.Context) ([]*T, error)
	Update(ctx context.Context, m *T) error
	Delete(ctx context.Context, id int) error
}

// CatalogService serves one master-data table. build turns a validated request
// into a row; it may still reject values the struct tags cannot express.
type CatalogService[T any, Req any] struct {
	Repo  Repository[T]
	build func(req *Req, id int) (*T, error)
}

func (s *CatalogService[T, Req]) Create(ctx context.Context, req *Req) (*T, error) {
	m, err := s.build(req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService[T, Req]) Get(ctx context.Context, id int) (*T, error) {
	return s.Repo.Get(ctx, id)
}

func (s *CatalogService[T, Req]) List(ctx context.Context) ([]*T, error) {
	return s.Repo.List(ctx)
}

// Update replaces every writable field of row id
func (s *CatalogService[T, Req]) Update(ctx context.Context, id int, req *Req) (*T, error) {
	m, err := s.build(req, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService[T, Req]) Delete(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}

type (
	OrganizationService = CatalogService[models.Organization, models.OrganizationRequest]
	StorageService      = CatalogService[models.Storage, models.StorageRequest]
	EmployeeService     = CatalogService[models.Employee, models.EmployeeRequest]
	SupplierService     = CatalogService[models.Supplier, models.SupplierRequest]
	CustomerService     = CatalogService[models.Customer, models.CustomerRequest]
	ContractService     = CatalogService[models.Contract, models.ContractRequest]
	OperationService    = CatalogService[models.Operation, models.OperationRequest]
)

func NewOrganizationService(repo Repository[models.Organization]) *OrganizationService {
	return &OrganizationService{Repo: repo, build: func(r *models.OrganizationRequest, id int) (*models.Organization, error) {
		return &models.Organization{ID: id, Name: strings.TrimSpace(r.Name)}, nil
	}}
}

func NewStorageService(repo Repository[models.Storage]) *StorageService {
	return &StorageService{Repo: repo, build: func(r *models.StorageRequest, id int) (*models.Storage, error) {
		s := &models.Storage{ID: id, Name: strings.TrimSpace(r.Name), Location: r.Location}
		if !r.Capacity.IsEmpty() {
			capacity, err := decimal.NewFromString(r.Capacity.String())
			if err != nil || capacity.IsNegative() {
				return nil, apperrors.ErrValidationWithFields("invalid storage",
					map[string]string{"capacity": "capacity must be a non-negative number"})
			}
			s.Capacity = decimal.NewNullDecimal(ledger.RoundMoney(capacity))
		}
		return s, nil
	}}
}

func NewEmployeeService(repo Repository[models.Employee]) *EmployeeService {
	return &EmployeeService{Repo: repo, build: func(r *models.EmployeeRequest, id int) (*models.Employee, error) {
		return &models.Employee{ID: id, FirstName: r.FirstName, LastName: r.LastName, Position: r.Position}, nil
	}}
}

func NewSupplierService(repo Repository[models.Supplier]) *SupplierService {
	return &SupplierService{Repo: repo, build: func(r *models.SupplierRequest, id int) (*models.Supplier, error) {
		return &models.Supplier{ID: id, Name: strings.TrimSpace(r.Name), ContactInfo: r.ContactInfo, Address: r.Address}, nil
	}}
}

func NewCustomerService(repo Repository[models.Customer]) *CustomerService {
	return &CustomerService{Repo: repo, build: func(r *models.CustomerRequest, id int) (*models.Customer, error) {
		return &models.Customer{ID: id, Name: strings.TrimSpace(r.Name), ContactInfo: r.ContactInfo, Address: r.Address}, nil
	}}
}

func NewContractService(repo Repository[models.Contract]) *ContractService {
	return &ContractService{Repo: repo, build: func(r *models.ContractRequest, id int) (*models.Contract, error) {
		return &models.Contract{ID: id, ContractNumber: strings.TrimSpace(r.ContractNumber)}, nil
	}}
}

func NewOperationService(repo Repository[models.Operation]) *OperationService {
	return &OperationService{Repo: repo, build: func(r *models.OperationRequest, id int) (*models.Operation, error) {
		return &models.Operation{ID: id, OperationType: strings.TrimSpace(r.OperationType)}, nil
	}}
}
