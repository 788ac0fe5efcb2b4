package services

import (
	"context"
	"strings"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/cache"
	"stock-backend/internal/ledger"
	"stock-backend/internal/models"
	"stock-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// ProductStore is the product persistence used outside invoice transactions
type ProductStore interface {
	Repository[models.Product]
	GetByName(ctx context.Context, name string) (*models.Product, error)
}

// ProductService manages the product catalog. Stock can be seeded on create;
// afterwards only invoices move it.
type ProductService struct {
	Repo ProductStore
}

func NewProductService(repo ProductStore) *ProductService {
	return &ProductService{Repo: repo}
}

func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	fields := map[string]string{}
	price := parseOptionalMoney(fields, "unit_price", req.UnitPrice)

	initial := decimal.Zero
	if !req.CurrentStock.IsEmpty() {
		qty, err := ledger.ParseQuantity(req.CurrentStock.String())
		if err != nil || qty.IsNegative() {
			fields["current_stock"] = "current_stock must be a non-negative number"
		} else {
			initial = qty
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.ErrValidationWithFields("invalid product", fields)
	}

	date := timeutil.Now()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.Time
	}

	p := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		UnitPrice:     price,
		CurrentStock:  initial,
		UnitOfMeasure: req.UnitOfMeasure,
		Date:          date,
		StorageID:     req.StorageID,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	invalidateProductViews(ctx)
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ProductService) GetByName(ctx context.Context, name string) (*models.Product, error) {
	return s.Repo.GetByName(ctx, name)
}

func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	return cachedList(ctx, cache.ProductsListKey, s.Repo.List)
}

// Update rewrites the descriptive fields; the stored stock is returned untouched
func (s *ProductService) Update(ctx context.Context, id int, req *models.UpdateProductRequest) (*models.Product, error) {
	fields := map[string]string{}
	price := parseOptionalMoney(fields, "unit_price", req.UnitPrice)
	if len(fields) > 0 {
		return nil, apperrors.ErrValidationWithFields("invalid product", fields)
	}

	p := &models.Product{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		UnitPrice:     price,
		UnitOfMeasure: req.UnitOfMeasure,
		StorageID:     req.StorageID,
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	invalidateProductViews(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateProductViews(ctx)
	return nil
}

func parseOptionalMoney(fields map[string]string, field string, raw models.RawNumber) decimal.Decimal {
	if raw.IsEmpty() {
		return decimal.Zero
	}
	v, err := ledger.ParseMoney(field, raw.String())
	if err != nil || v.IsNegative() {
		fields[field] = field + " must be a non-negative number"
		return decimal.Zero
	}
	return v
}

// invalidateProductViews drops product lists and both invoice lists, which show product names
func invalidateProductViews(ctx context.Context) {
	cache.InvalidateProductCaches(ctx)
	cache.InvalidateKeys(ctx, cache.IncomingListKey, cache.OutgoingListKey)
}
