package handlers

import (
	"context"
	"net/http"

	"stock-backend/pkg/utils"
)

// Catalog is the CRUD service behind one resource; C and U are the create and update bodies
type Catalog[T, C, U any] interface {
	Create(ctx context.Context, req *C) (*T, error)
	Get(ctx context.Context, id int) (*T, error)
	List(ctx context.Context) ([]*T, error)
	Update(ctx context.Context, id int, req *U) (*T, error)
	Delete(ctx context.Context, id int) error
}

// CatalogHandler serves list/create on the collection and get/update/delete on /{id}
type CatalogHandler[T, C, U any] struct {
	Service Catalog[T, C, U]
}

func NewCatalogHandler[T, C, U any](s Catalog[T, C, U]) *CatalogHandler[T, C, U] {
	return &CatalogHandler[T, C, U]{Service: s}
}

func (h *CatalogHandler[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *CatalogHandler[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	req := new(C)
	if err := decode(r, req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := new(U)
	if err := decode(r, req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.NoContent(w)
}
