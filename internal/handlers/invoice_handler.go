package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"stock-backend/internal/archive"
	"stock-backend/internal/models"
	"stock-backend/pkg/utils"
)

type IncomingInvoices interface {
	Create(ctx context.Context, req *models.CreateIncomingInvoiceRequest) (*models.IncomingInvoice, error)
	Update(ctx context.Context, id int, patch *models.IncomingInvoicePatch) (*models.IncomingInvoice, error)
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*models.IncomingInvoice, error)
	List(ctx context.Context) ([]*models.IncomingInvoice, error)
	NextNumber(ctx context.Context) (string, error)
	ProductsByDateAndStorage(ctx context.Context, day string) ([]*models.ProductWithStorage, error)
}

type OutgoingInvoices interface {
	Create(ctx context.Context, req *models.CreateOutgoingInvoiceRequest) (*models.OutgoingInvoice, error)
	Update(ctx context.Context, id int, patch *models.OutgoingInvoicePatch) (*models.OutgoingInvoice, error)
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*models.OutgoingInvoice, error)
	List(ctx context.Context) ([]*models.OutgoingInvoice, error)
	NextNumber(ctx context.Context) (string, error)
}

type InvoiceDocuments interface {
	PDF(ctx context.Context, kind models.InvoiceKind, id int) ([]byte, string, error)
	Archive(ctx context.Context, kind models.InvoiceKind, id int) (*archive.Object, error)
}

type IncomingInvoiceHandler struct {
	Service IncomingInvoices
}

func NewIncomingInvoiceHandler(s IncomingInvoices) *IncomingInvoiceHandler {
	return &IncomingInvoiceHandler{Service: s}
}

func (h *IncomingInvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoices)
}

func (h *IncomingInvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIncomingInvoiceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, inv)
}

func (h *IncomingInvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

// Patch updates only the fields present in the body; "items" replaces the whole item set
func (h *IncomingInvoiceHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch models.IncomingInvoicePatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateItems(patch.Items); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Service.Update(r.Context(), id, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

func (h *IncomingInvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *IncomingInvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	next, err := h.Service.NextNumber(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.NextNumberResponse{NextInvoiceNumber: next})
}

// ProductsByDateAndStorage answers ?date=YYYY-MM-DD
func (h *IncomingInvoiceHandler) ProductsByDateAndStorage(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ProductsByDateAndStorage(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

type OutgoingInvoiceHandler struct {
	Service OutgoingInvoices
}

func NewOutgoingInvoiceHandler(s OutgoingInvoices) *OutgoingInvoiceHandler {
	return &OutgoingInvoiceHandler{Service: s}
}

func (h *OutgoingInvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoices)
}

func (h *OutgoingInvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOutgoingInvoiceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, inv)
}

func (h *OutgoingInvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

func (h *OutgoingInvoiceHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch models.OutgoingInvoicePatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateItems(patch.Items); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Service.Update(r.Context(), id, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

func (h *OutgoingInvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *OutgoingInvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	next, err := h.Service.NextNumber(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.NextNumberResponse{NextInvoiceNumber: next})
}

// InvoiceDocumentHandler serves /{id}/pdf and /{id}/archive for one invoice kind
type InvoiceDocumentHandler struct {
	Service InvoiceDocuments
	Kind    models.InvoiceKind
}

func NewInvoiceDocumentHandler(s InvoiceDocuments, kind models.InvoiceKind) *InvoiceDocumentHandler {
	return &InvoiceDocumentHandler{Service: s, Kind: kind}
}

func (h *InvoiceDocumentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, filename, err := h.Service.PDF(r.Context(), h.Kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *InvoiceDocumentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	obj, err := h.Service.Archive(r.Context(), h.Kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, obj)
}

// validateItems runs struct validation on a replacement item list
func validateItems(items models.Optional[[]models.InvoiceItemInput]) error {
	if !items.Set || items.Null {
		return nil
	}
	for i := range items.Value {
		if err := validateStruct(&items.Value[i], fmt.Sprintf("items[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}
