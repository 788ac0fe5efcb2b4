package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/cache"
	"stock-backend/internal/ledger"
	"stock-backend/internal/logging"
	"stock-backend/internal/metrics"
	"stock-backend/internal/models"
	"stock-backend/internal/monitoring"
	"stock-backend/internal/numbering"
	"stock-backend/internal/stock"
	"stock-backend/internal/timeutil"
)

// StockPublisher receives committed stock changes
type StockPublisher interface {
	Publish(events ...monitoring.StockEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(...monitoring.StockEvent) {}

// parsedItem is an item payload after ledger parsing and computation
type parsedItem struct {
	input models.InvoiceItemInput
	line  ledger.Line
}

// parseItems runs every payload line through the ledger before any write happens.
// Discounts are only honoured when withDiscount is set.
func parseItems(items []models.InvoiceItemInput, withDiscount bool) ([]parsedItem, error) {
	out := make([]parsedItem, 0, len(items))
	for i, in := range items {
		line, err := parseItem(in, withDiscount)
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				return nil, appErr.WithDetail("item_index", fmt.Sprint(i))
			}
			return nil, err
		}
		out = append(out, parsedItem{input: in, line: line})
	}
	return out, nil
}

func parseItem(in models.InvoiceItemInput, withDiscount bool) (ledger.Line, error) {
	if in.ProductName == "" {
		return ledger.Line{}, apperrors.ErrValidationWithFields("invalid invoice line",
			map[string]string{"product_name": "product_name is required"})
	}
	if in.Quantity.IsEmpty() {
		return ledger.Line{}, apperrors.ErrValidationWithFields("invalid invoice line",
			map[string]string{"quantity": "quantity is required"})
	}
	if in.UnitPrice.IsEmpty() {
		return ledger.Line{}, apperrors.ErrValidationWithFields("invalid invoice line",
			map[string]string{"unit_price": "unit_price is required"})
	}

	qty, err := ledger.ParseQuantity(in.Quantity.String())
	if err != nil {
		return ledger.Line{}, err
	}
	price, err := ledger.ParseMoney("unit_price", in.UnitPrice.String())
	if err != nil {
		return ledger.Line{}, err
	}
	input := ledger.Input{
		Quantity:      qty,
		UnitPrice:     price,
		VATPercentage: ledger.ParseVAT(in.VATPercentage.String()),
	}
	if withDiscount && !in.Discount.IsEmpty() {
		if input.Discount, err = ledger.ParseMoney("discount", in.Discount.String()); err != nil {
			return ledger.Line{}, err
		}
	}
	if err := ledger.Validate(input); err != nil {
		return ledger.Line{}, err
	}
	return ledger.Compute(input), nil
}

func itemNames(items []parsedItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.input.ProductName
	}
	return names
}

// recordRejection counts stock-related refusals
func recordRejection(err error) {
	switch {
	case apperrors.HasCode(err, apperrors.CodeInsufficientStock):
		metrics.RecordRejection("insufficient_stock")
	case apperrors.HasCode(err, apperrors.CodeUnknownProduct):
		metrics.RecordRejection("unknown_product")
	}
}

// invoiceEvents runs the post-commit side effects shared by both coordinators
type invoiceEvents struct {
	kind      models.InvoiceKind
	publisher StockPublisher
	logger    *logging.Logger
	listKey   string
	warmList  func(ctx context.Context) ([]byte, error)
}

func (e invoiceEvents) committed(ctx context.Context, op string, invoiceID int, changes []stock.Change) {
	cache.InvalidateInvoiceCaches(ctx, string(e.kind))
	if e.warmList != nil {
		cache.PreWarmKey(e.listKey, e.warmList, cache.DefaultListTTL)
	}
	metrics.RecordInvoice(string(e.kind), op)

	if len(changes) > 0 {
		now := time.Now().UTC()
		events := make([]monitoring.StockEvent, 0, len(changes))
		for _, c := range changes {
			events = append(events, monitoring.StockEvent{
				ProductID:    c.ProductID,
				ProductName:  c.Name,
				Delta:        c.Delta,
				CurrentStock: c.CurrentStock,
				Created:      c.Created,
				InvoiceType:  string(e.kind),
				InvoiceID:    invoiceID,
				Operation:    op,
				Timestamp:    now,
			})
		}
		e.publisher.Publish(events...)
	}

	logging.FromContext(ctx, e.logger).Info("invoice committed",
		"invoice_type", string(e.kind),
		"op", op,
		"invoice_id", invoiceID,
		"products_touched", len(changes),
	)
}

func (e invoiceEvents) failed(ctx context.Context, op string, invoiceID int, err error) {
	recordRejection(err)
	l := logging.FromContext(ctx, e.logger)
	if _, ok := apperrors.AsAppError(err); ok {
		l.Info("invoice rejected", "invoice_type", string(e.kind), "op", op, "invoice_id", invoiceID, "reason", err.Error())
		return
	}
	l.Error("invoice operation failed", "invoice_type", string(e.kind), "op", op, "invoice_id", invoiceID, "error", err)
}

// peekNumber serves the next-number endpoints through a short-lived cache
func peekNumber(ctx context.Context, alloc *numbering.Allocator, r numbering.Reader, kind models.InvoiceKind) (string, error) {
	key := cache.NextNumberKey(string(kind))
	if data, ok := cache.GetCached(ctx, key); ok {
		var cached models.NextNumberResponse
		if json.Unmarshal(data, &cached) == nil && cached.NextInvoiceNumber != "" {
			return cached.NextInvoiceNumber, nil
		}
	}

	next, err := alloc.Peek(ctx, r, kind)
	if err != nil {
		return "", err
	}
	if data, err := json.Marshal(models.NextNumberResponse{NextInvoiceNumber: next}); err == nil {
		cache.SetCached(ctx, key, data, cache.DefaultNextNumberTTL)
	}
	return next, nil
}

func invoiceDate(ts *models.Timestamp) (time.Time, error) {
	if ts == nil || ts.IsZero() {
		return time.Time{}, apperrors.ErrValidationWithFields("date is required", map[string]string{"date": "date is required"})
	}
	return ts.Time, nil
}

// dayBounds validates a YYYY-MM-DD query value
func dayBounds(raw string) (time.Time, time.Time, error) {
	if raw == "" {
		return time.Time{}, time.Time{}, apperrors.ErrValidationWithFields("date query parameter is required",
			map[string]string{"date": "expected YYYY-MM-DD"})
	}
	day, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.ErrValidationWithFields("invalid date format",
			map[string]string{"date": "expected YYYY-MM-DD"})
	}
	start, end := timeutil.DayRange(day)
	return start, end, nil
}

// listWarmer adapts a list loader to the cache pre-warm callback
func listWarmer[T any](load func(ctx context.Context) (T, error)) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}
}

// cachedList serves a list endpoint from Redis, loading and storing it on a miss
func cachedList[T any](ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if data, ok := cache.GetCached(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		cache.SetCached(ctx, key, data, cache.DefaultListTTL)
	}
	return v, nil
}
