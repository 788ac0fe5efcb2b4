package handlers

import (
	"context"
	"net/http"

	"stock-backend/internal/models"
	"stock-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type Products interface {
	Catalog[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
	GetByName(ctx context.Context, name string) (*models.Product, error)
}

// ProductHandler adds lookup by name to the catalog endpoints
type ProductHandler struct {
	*CatalogHandler[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
	Products Products
}

func NewProductHandler(s Products) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler[models.Product, models.CreateProductRequest, models.UpdateProductRequest](s),
		Products:       s,
	}
}

func (h *ProductHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}
