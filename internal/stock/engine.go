// Package stock keeps products' current_stock in step with invoice items.
//
// An Engine is bound to one transaction. It locks every product row it reads,
// keeps the locked rows in memory for the rest of the transaction and records
// the net change per product so callers can publish them after commit.
package stock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Store is the transactional product access the engine needs.
// Lookups lock the row and return an apperrors not-found error when it is absent.
type Store interface {
	LockProductByName(ctx context.Context, name string) (*models.Product, error)
	LockProduct(ctx context.Context, id int) (*models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProductStock(ctx context.Context, p *models.Product) error
}

// IncomingLine is the stock-relevant part of an incoming invoice item
type IncomingLine struct {
	Name          string
	Description   string
	UnitOfMeasure string
	UnitPrice     decimal.Decimal
	Quantity      decimal.Decimal
}

// Placement is what an incoming invoice stamps on the products it touches
type Placement struct {
	Date      time.Time
	StorageID int
}

// Change is the net effect of one transaction on one product
type Change struct {
	ProductID    int
	Name         string
	Delta        decimal.Decimal
	CurrentStock decimal.Decimal
	Created      bool
}

type Engine struct {
	store  Store
	policy IncomingPolicy

	byID    map[int]*models.Product
	byName  map[string]int
	changes map[int]*Change
	order   []int
}

func NewEngine(store Store, policy IncomingPolicy) *Engine {
	if policy == "" {
		policy = PolicyPreserve
	}
	return &Engine{
		store:   store,
		policy:  policy,
		byID:    make(map[int]*models.Product),
		byName:  make(map[string]int),
		changes: make(map[int]*Change),
	}
}

func (e *Engine) Policy() IncomingPolicy {
	return e.policy
}

// Prelock locks the named products in sorted order so concurrent invoices
// touching the same products always acquire row locks in the same sequence.
// Names without a product row are skipped.
func (e *Engine) Prelock(ctx context.Context, names []string) error {
	uniq := make(map[string]struct{}, len(names))
	for _, n := range names {
		uniq[n] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for n := range uniq {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		if _, err := e.productByName(ctx, n); err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
			return err
		}
	}
	return nil
}

// ApplyIncoming adds one incoming line to stock, creating the product when the name is new.
// Existing products take the invoice's date and storage.
func (e *Engine) ApplyIncoming(ctx context.Context, line IncomingLine, at Placement) (*models.Product, error) {
	p, err := e.productByName(ctx, line.Name)
	switch {
	case apperrors.HasCode(err, apperrors.CodeNotFound):
		return e.createProduct(ctx, line, line.Quantity, at)
	case err != nil:
		return nil, err
	}

	p.CurrentStock = p.CurrentStock.Add(line.Quantity)
	p.Date = at.Date
	p.StorageID = at.StorageID
	if err := e.store.UpdateProductStock(ctx, p); err != nil {
		return nil, fmt.Errorf("update stock of %q: %w", p.Name, err)
	}
	e.record(p, line.Quantity, false)
	return p, nil
}

// ApplyOutgoing withdraws qty from the named product.
// Unknown names and withdrawals beyond the available stock are rejected.
func (e *Engine) ApplyOutgoing(ctx context.Context, name string, qty decimal.Decimal) (*models.Product, error) {
	p, err := e.productByName(ctx, name)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, apperrors.ErrUnknownProduct(name)
	}
	if err != nil {
		return nil, err
	}

	if p.CurrentStock.LessThan(qty) {
		return nil, apperrors.ErrInsufficientStock(p.Name, p.CurrentStock.String(), qty.String())
	}
	p.CurrentStock = p.CurrentStock.Sub(qty)
	if err := e.store.UpdateProductStock(ctx, p); err != nil {
		return nil, fmt.Errorf("update stock of %q: %w", p.Name, err)
	}
	e.record(p, qty.Neg(), false)
	return p, nil
}

// ReverseOutgoing returns qty to a product an outgoing item drew from
func (e *Engine) ReverseOutgoing(ctx context.Context, productID int, qty decimal.Decimal) (*models.Product, error) {
	p, err := e.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	p.CurrentStock = p.CurrentStock.Add(qty)
	if err := e.store.UpdateProductStock(ctx, p); err != nil {
		return nil, fmt.Errorf("update stock of %q: %w", p.Name, err)
	}
	e.record(p, qty, false)
	return p, nil
}

// ReconcileIncoming moves stock from the old item set of an incoming invoice to the new one.
//
// Under PolicyPreserve only names absent from old are applied; kept names and
// removed names leave stock untouched. Under PolicyReconcile the signed
// difference per product name is applied and a negative result is rejected.
func (e *Engine) ReconcileIncoming(ctx context.Context, old, next []IncomingLine, at Placement) error {
	if e.policy == PolicyPreserve {
		existing := make(map[string]struct{}, len(old))
		for _, l := range old {
			existing[l.Name] = struct{}{}
		}
		for _, l := range next {
			if _, ok := existing[l.Name]; ok {
				continue
			}
			if _, err := e.ApplyIncoming(ctx, l, at); err != nil {
				return err
			}
		}
		return nil
	}

	oldQty := sumByName(old)
	nextQty := sumByName(next)
	firstLine := make(map[string]IncomingLine, len(next))
	for _, l := range next {
		if _, ok := firstLine[l.Name]; !ok {
			firstLine[l.Name] = l
		}
	}

	for _, name := range unionNames(oldQty, nextQty) {
		delta := nextQty[name].Sub(oldQty[name])
		if _, inNext := nextQty[name]; inNext {
			line := firstLine[name]
			line.Quantity = delta
			if err := e.shiftIncoming(ctx, line, at); err != nil {
				return err
			}
			continue
		}
		if err := e.withdraw(ctx, name, oldQty[name]); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawIncoming removes an incoming invoice's contribution when it is deleted.
// It is a no-op under PolicyPreserve.
func (e *Engine) WithdrawIncoming(ctx context.Context, old []IncomingLine) error {
	if e.policy == PolicyPreserve {
		return nil
	}
	qty := sumByName(old)
	for _, name := range unionNames(qty, nil) {
		if err := e.withdraw(ctx, name, qty[name]); err != nil {
			return err
		}
	}
	return nil
}

// Changes lists the net stock change per product in first-touch order
func (e *Engine) Changes() []Change {
	out := make([]Change, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.changes[id])
	}
	return out
}

// shiftIncoming applies a signed delta for a name still present on the invoice
func (e *Engine) shiftIncoming(ctx context.Context, line IncomingLine, at Placement) error {
	p, err := e.productByName(ctx, line.Name)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		if line.Quantity.IsNegative() {
			return apperrors.ErrInsufficientStock(line.Name, "0", line.Quantity.Neg().String())
		}
		_, err = e.createProduct(ctx, line, line.Quantity, at)
		return err
	}
	if err != nil {
		return err
	}

	next := p.CurrentStock.Add(line.Quantity)
	if next.IsNegative() {
		return apperrors.ErrInsufficientStock(p.Name, p.CurrentStock.String(), line.Quantity.Neg().String())
	}
	p.CurrentStock = next
	p.Date = at.Date
	p.StorageID = at.StorageID
	if err := e.store.UpdateProductStock(ctx, p); err != nil {
		return fmt.Errorf("update stock of %q: %w", p.Name, err)
	}
	e.record(p, line.Quantity, false)
	return nil
}

func (e *Engine) withdraw(ctx context.Context, name string, qty decimal.Decimal) error {
	p, err := e.productByName(ctx, name)
	if err != nil {
		return err
	}
	if p.CurrentStock.LessThan(qty) {
		return apperrors.ErrInsufficientStock(p.Name, p.CurrentStock.String(), qty.String())
	}
	p.CurrentStock = p.CurrentStock.Sub(qty)
	if err := e.store.UpdateProductStock(ctx, p); err != nil {
		return fmt.Errorf("update stock of %q: %w", p.Name, err)
	}
	e.record(p, qty.Neg(), false)
	return nil
}

func (e *Engine) createProduct(ctx context.Context, line IncomingLine, qty decimal.Decimal, at Placement) (*models.Product, error) {
	p := &models.Product{
		Name:          line.Name,
		Description:   line.Description,
		UnitPrice:     line.UnitPrice,
		CurrentStock:  qty,
		UnitOfMeasure: line.UnitOfMeasure,
		Date:          at.Date,
		StorageID:     at.StorageID,
	}
	if err := e.store.InsertProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product %q: %w", line.Name, err)
	}
	e.remember(p)
	e.record(p, qty, true)
	return p, nil
}

func (e *Engine) productByName(ctx context.Context, name string) (*models.Product, error) {
	if id, ok := e.byName[name]; ok {
		return e.byID[id], nil
	}
	p, err := e.store.LockProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	e.remember(p)
	return p, nil
}

func (e *Engine) product(ctx context.Context, id int) (*models.Product, error) {
	if p, ok := e.byID[id]; ok {
		return p, nil
	}
	p, err := e.store.LockProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	e.remember(p)
	return p, nil
}

func (e *Engine) remember(p *models.Product) {
	e.byID[p.ID] = p
	e.byName[p.Name] = p.ID
}

func (e *Engine) record(p *models.Product, delta decimal.Decimal, created bool) {
	c, ok := e.changes[p.ID]
	if !ok {
		c = &Change{ProductID: p.ID, Name: p.Name}
		e.changes[p.ID] = c
		e.order = append(e.order, p.ID)
	}
	c.Delta = c.Delta.Add(delta)
	c.CurrentStock = p.CurrentStock
	c.Created = c.Created || created
}

func sumByName(lines []IncomingLine) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		out[l.Name] = out[l.Name].Add(l.Quantity)
	}
	return out
}

func unionNames(a, b map[string]decimal.Decimal) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for n := range a {
		seen[n] = struct{}{}
	}
	for n := range b {
		seen[n] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
