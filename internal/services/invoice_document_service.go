package services

import (
	"context"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/archive"
	"stock-backend/internal/documents"
	"stock-backend/internal/logging"
	"stock-backend/internal/models"
	"stock-backend/internal/store"
)

// Archiver stores rendered documents
type Archiver interface {
	Put(ctx context.Context, kind, filename, contentType string, data []byte) (*archive.Object, error)
}

// InvoiceDocumentService renders invoices to PDF and copies them to the archive
type InvoiceDocumentService struct {
	Reader   store.InvoiceReader
	Archiver Archiver
	logger   *logging.Logger
}

// NewInvoiceDocumentService accepts a nil archiver; Archive then reports the service as unavailable
func NewInvoiceDocumentService(reader store.InvoiceReader, archiver Archiver, logger *logging.Logger) *InvoiceDocumentService {
	return &InvoiceDocumentService{Reader: reader, Archiver: archiver, logger: logger.WithComponent("invoice_documents")}
}

// PDF renders one invoice and returns the bytes with a download filename
func (s *InvoiceDocumentService) PDF(ctx context.Context, kind models.InvoiceKind, id int) ([]byte, string, error) {
	doc, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, "", err
	}
	data, err := documents.Render(doc)
	if err != nil {
		return nil, "", err
	}
	return data, doc.Filename(), nil
}

// Archive renders the invoice and uploads it
func (s *InvoiceDocumentService) Archive(ctx context.Context, kind models.InvoiceKind, id int) (*archive.Object, error) {
	if s.Archiver == nil {
		return nil, apperrors.ErrServiceUnavailable("invoice archive")
	}
	data, filename, err := s.PDF(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	obj, err := s.Archiver.Put(ctx, string(kind), filename, "application/pdf", data)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("invoice archive failed", "invoice_type", string(kind), "invoice_id", id, "error", err)
		return nil, apperrors.ErrServiceUnavailable("invoice archive").Wrap(err)
	}
	logging.FromContext(ctx, s.logger).Info("invoice archived", "invoice_type", string(kind), "invoice_id", id, "key", obj.Key)
	return obj, nil
}

func (s *InvoiceDocumentService) load(ctx context.Context, kind models.InvoiceKind, id int) (*documents.Invoice, error) {
	switch kind {
	case models.InvoiceIncoming:
		inv, err := s.Reader.GetIncomingInvoice(ctx, id)
		if err != nil {
			return nil, err
		}
		return documents.FromIncoming(inv), nil
	case models.InvoiceOutgoing:
		inv, err := s.Reader.GetOutgoingInvoice(ctx, id)
		if err != nil {
			return nil, err
		}
		return documents.FromOutgoing(inv), nil
	}
	return nil, apperrors.ErrValidation("unknown invoice type " + string(kind))
}
