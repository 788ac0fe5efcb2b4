package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/models"
	"stock-backend/internal/monitoring"
	"stock-backend/internal/store"
)

// memState is the whole fake database; Do copies it before running a callback
type memState struct {
	products      map[int]models.Product
	incoming      map[int]models.IncomingInvoice
	incomingItems map[int]models.IncomingInvoiceItem
	outgoing      map[int]models.OutgoingInvoice
	outgoingItems map[int]models.OutgoingInvoiceItem
	seq           map[string]int
}

func (s memState) clone() memState {
	c := memState{
		products:      make(map[int]models.Product, len(s.products)),
		incoming:      make(map[int]models.IncomingInvoice, len(s.incoming)),
		incomingItems: make(map[int]models.IncomingInvoiceItem, len(s.incomingItems)),
		outgoing:      make(map[int]models.OutgoingInvoice, len(s.outgoing)),
		outgoingItems: make(map[int]models.OutgoingInvoiceItem, len(s.outgoingItems)),
		seq:           make(map[string]int, len(s.seq)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.incoming {
		c.incoming[k] = v
	}
	for k, v := range s.incomingItems {
		c.incomingItems[k] = v
	}
	for k, v := range s.outgoing {
		c.outgoing[k] = v
	}
	for k, v := range s.outgoingItems {
		c.outgoingItems[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

type memStore struct {
	state   memState
	commits int
	locks   []string
}

func newMemStore() *memStore {
	return &memStore{state: memState{}.clone()}
}

var (
	_ store.UnitOfWork    = (*memStore)(nil)
	_ store.InvoiceReader = (*memStore)(nil)
	_ store.InvoiceTx     = (*memStore)(nil)
)

func (m *memStore) Do(ctx context.Context, fn func(ctx context.Context, tx store.InvoiceTx) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx, m); err != nil {
		m.state = snapshot
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) next(name string) int {
	m.state.seq[name]++
	return m.state.seq[name]
}

func (m *memStore) seedProduct(p models.Product) models.Product {
	p.ID = m.next("products")
	m.state.products[p.ID] = p
	return p
}

func (m *memStore) productByName(name string) (models.Product, bool) {
	for _, p := range m.state.products {
		if p.Name == name {
			return p, true
		}
	}
	return models.Product{}, false
}

// stock.Store

func (m *memStore) LockProductByName(_ context.Context, name string) (*models.Product, error) {
	m.locks = append(m.locks, name)
	p, ok := m.productByName(name)
	if !ok {
		return nil, apperrors.ErrNotFound("Product")
	}
	return &p, nil
}

func (m *memStore) LockProduct(_ context.Context, id int) (*models.Product, error) {
	p, ok := m.state.products[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("Product", id)
	}
	return &p, nil
}

func (m *memStore) InsertProduct(_ context.Context, p *models.Product) error {
	if _, ok := m.productByName(p.Name); ok {
		return apperrors.ErrConflict("Product already exists")
	}
	p.ID = m.next("products")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.state.products[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProductStock(_ context.Context, p *models.Product) error {
	if _, ok := m.state.products[p.ID]; !ok {
		return apperrors.ErrNotFoundWithID("Product", p.ID)
	}
	m.state.products[p.ID] = *p
	return nil
}

// numbering.Source

func (m *memStore) MaxInvoiceID(_ context.Context, kind models.InvoiceKind) (int, error) {
	maxID := 0
	if kind == models.InvoiceIncoming {
		for id := range m.state.incoming {
			maxID = max(maxID, id)
		}
	} else {
		for id := range m.state.outgoing {
			maxID = max(maxID, id)
		}
	}
	return maxID, nil
}

func (m *memStore) InvoiceNumberExists(_ context.Context, kind models.InvoiceKind, number string) (bool, error) {
	if kind == models.InvoiceIncoming {
		for _, inv := range m.state.incoming {
			if inv.Number == number {
				return true, nil
			}
		}
		return false, nil
	}
	for _, inv := range m.state.outgoing {
		if inv.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) LockInvoiceSequence(_ context.Context, kind models.InvoiceKind) error {
	m.locks = append(m.locks, "seq:"+string(kind))
	return nil
}

// incoming

func (m *memStore) InsertIncomingInvoice(_ context.Context, inv *models.IncomingInvoice) error {
	for _, other := range m.state.incoming {
		if other.Number == inv.Number {
			return apperrors.ErrConflict("Incoming invoice already exists")
		}
	}
	inv.ID = m.next("incoming")
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	row := *inv
	row.Items = nil
	m.state.incoming[inv.ID] = row
	return nil
}

func (m *memStore) LockIncomingInvoice(ctx context.Context, id int) (*models.IncomingInvoice, error) {
	return m.GetIncomingInvoice(ctx, id)
}

func (m *memStore) UpdateIncomingInvoice(_ context.Context, inv *models.IncomingInvoice) error {
	if _, ok := m.state.incoming[inv.ID]; !ok {
		return apperrors.ErrNotFoundWithID("Incoming invoice", inv.ID)
	}
	row := *inv
	row.Items = nil
	m.state.incoming[inv.ID] = row
	return nil
}

func (m *memStore) DeleteIncomingInvoice(_ context.Context, id int) error {
	if _, ok := m.state.incoming[id]; !ok {
		return apperrors.ErrNotFoundWithID("Incoming invoice", id)
	}
	delete(m.state.incoming, id)
	for itemID, it := range m.state.incomingItems {
		if it.IncomingInvoiceID == id {
			delete(m.state.incomingItems, itemID)
		}
	}
	return nil
}

func (m *memStore) InsertIncomingItem(_ context.Context, it *models.IncomingInvoiceItem) error {
	it.ID = m.next("incoming_items")
	m.state.incomingItems[it.ID] = *it
	return nil
}

func (m *memStore) UpdateIncomingItem(_ context.Context, it *models.IncomingInvoiceItem) error {
	if _, ok := m.state.incomingItems[it.ID]; !ok {
		return apperrors.ErrNotFoundWithID("Incoming invoice item", it.ID)
	}
	m.state.incomingItems[it.ID] = *it
	return nil
}

func (m *memStore) DeleteIncomingItem(_ context.Context, id int) error {
	delete(m.state.incomingItems, id)
	return nil
}

// outgoing

func (m *memStore) InsertOutgoingInvoice(_ context.Context, inv *models.OutgoingInvoice) error {
	for _, other := range m.state.outgoing {
		if other.Number == inv.Number {
			return apperrors.ErrConflict("Outgoing invoice already exists")
		}
	}
	inv.ID = m.next("outgoing")
	row := *inv
	row.Items = nil
	m.state.outgoing[inv.ID] = row
	return nil
}

func (m *memStore) LockOutgoingInvoice(ctx context.Context, id int) (*models.OutgoingInvoice, error) {
	return m.GetOutgoingInvoice(ctx, id)
}

func (m *memStore) UpdateOutgoingInvoice(_ context.Context, inv *models.OutgoingInvoice) error {
	row := *inv
	row.Items = nil
	m.state.outgoing[inv.ID] = row
	return nil
}

func (m *memStore) DeleteOutgoingInvoice(_ context.Context, id int) error {
	if _, ok := m.state.outgoing[id]; !ok {
		return apperrors.ErrNotFoundWithID("Outgoing invoice", id)
	}
	delete(m.state.outgoing, id)
	for itemID, it := range m.state.outgoingItems {
		if it.OutgoingInvoiceID == id {
			delete(m.state.outgoingItems, itemID)
		}
	}
	return nil
}

func (m *memStore) InsertOutgoingItem(_ context.Context, it *models.OutgoingInvoiceItem) error {
	if _, ok := m.state.products[it.ProductID]; !ok {
		return apperrors.ErrValidation("referenced record does not exist")
	}
	it.ID = m.next("outgoing_items")
	row := *it
	row.ProductName = ""
	m.state.outgoingItems[it.ID] = row
	return nil
}

func (m *memStore) DeleteOutgoingItems(_ context.Context, invoiceID int) error {
	for itemID, it := range m.state.outgoingItems {
		if it.OutgoingInvoiceID == invoiceID {
			delete(m.state.outgoingItems, itemID)
		}
	}
	return nil
}

// store.InvoiceReader

func (m *memStore) GetIncomingInvoice(_ context.Context, id int) (*models.IncomingInvoice, error) {
	inv, ok := m.state.incoming[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("Incoming invoice", id)
	}
	inv.Items = []models.IncomingInvoiceItem{}
	for _, itemID := range sortedKeys(m.state.incomingItems) {
		if it := m.state.incomingItems[itemID]; it.IncomingInvoiceID == id {
			inv.Items = append(inv.Items, it)
		}
	}
	return &inv, nil
}

func (m *memStore) ListIncomingInvoices(ctx context.Context) ([]*models.IncomingInvoice, error) {
	out := []*models.IncomingInvoice{}
	for _, id := range sortedKeys(m.state.incoming) {
		inv, _ := m.GetIncomingInvoice(ctx, id)
		out = append(out, inv)
	}
	return out, nil
}

func (m *memStore) GetOutgoingInvoice(_ context.Context, id int) (*models.OutgoingInvoice, error) {
	inv, ok := m.state.outgoing[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("Outgoing invoice", id)
	}
	inv.Items = []models.OutgoingInvoiceItem{}
	for _, itemID := range sortedKeys(m.state.outgoingItems) {
		if it := m.state.outgoingItems[itemID]; it.OutgoingInvoiceID == id {
			it.ProductName = m.state.products[it.ProductID].Name
			inv.Items = append(inv.Items, it)
		}
	}
	return &inv, nil
}

func (m *memStore) ListOutgoingInvoices(ctx context.Context) ([]*models.OutgoingInvoice, error) {
	out := []*models.OutgoingInvoice{}
	for _, id := range sortedKeys(m.state.outgoing) {
		inv, _ := m.GetOutgoingInvoice(ctx, id)
		out = append(out, inv)
	}
	return out, nil
}

func (m *memStore) ProductsByDate(_ context.Context, from, to time.Time) ([]*models.ProductWithStorage, error) {
	out := []*models.ProductWithStorage{}
	for _, id := range sortedKeys(m.state.products) {
		p := m.state.products[id]
		if !p.Date.Before(from) && p.Date.Before(to) {
			out = append(out, &models.ProductWithStorage{Product: p, StorageName: fmt.Sprintf("Storage %d", p.StorageID)})
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

type recordingPublisher struct {
	events []monitoring.StockEvent
}

func (p *recordingPublisher) Publish(events ...monitoring.StockEvent) {
	p.events = append(p.events, events...)
}
