package services

import (
	"context"

	"stock-backend/internal/cache"
	"stock-backend/internal/logging"
	"stock-backend/internal/models"
	"stock-backend/internal/numbering"
	"stock-backend/internal/stock"
	"stock-backend/internal/store"
)

// IncomingInvoiceService coordinates incoming invoices: receipts that add stock
// and create products on first sight of a name.
type IncomingInvoiceService struct {
	UoW     store.UnitOfWork
	Reader  store.InvoiceReader
	Numbers *numbering.Allocator
	Policy  stock.IncomingPolicy

	events invoiceEvents
}

func NewIncomingInvoiceService(uow store.UnitOfWork, reader store.InvoiceReader, numbers *numbering.Allocator,
	policy stock.IncomingPolicy, publisher StockPublisher, logger *logging.Logger) *IncomingInvoiceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &IncomingInvoiceService{
		UoW:     uow,
		Reader:  reader,
		Numbers: numbers,
		Policy:  policy,
		events: invoiceEvents{
			kind:      models.InvoiceIncoming,
			publisher: publisher,
			logger:    logger.WithComponent("incoming_invoices"),
			listKey:   cache.IncomingListKey,
			warmList:  listWarmer(reader.ListIncomingInvoices),
		},
	}
}

// Create stores the invoice and applies every item to stock in one transaction.
// A caller-supplied number is kept; otherwise the next one is allocated.
func (s *IncomingInvoiceService) Create(ctx context.Context, req *models.CreateIncomingInvoiceRequest) (*models.IncomingInvoice, error) {
	date, err := invoiceDate(req.Date)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(req.Items, false)
	if err != nil {
		return nil, err
	}

	inv := &models.IncomingInvoice{
		Number:              req.Number,
		Date:                date,
		CounterAgentID:      req.CounterAgentID,
		OperationType:       req.OperationType,
		OrganizationID:      req.OrganizationID,
		StorageID:           req.StorageID,
		ContractNumber:      req.ContractNumber,
		ResponsiblePersonID: req.ResponsiblePersonID,
		Comment:             req.Comment,
	}

	var changes []stock.Change
	err = s.UoW.Do(ctx, func(ctx context.Context, tx store.InvoiceTx) error {
		if inv.Number == "" {
			number, err := s.Numbers.Allocate(ctx, tx, models.InvoiceIncoming)
			if err != nil {
				return err
			}
			inv.Number = number
		}
		if err := tx.InsertIncomingInvoice(ctx, inv); err != nil {
			return err
		}

		engine := stock.NewEngine(tx, s.Policy)
		if err := engine.Prelock(ctx, itemNames(items)); err != nil {
			return err
		}
		at := stock.Placement{Date: inv.Date, StorageID: inv.StorageID}
		inv.Items = make([]models.IncomingInvoiceItem, 0, len(items))
		for _, it := range items {
			if _, err := engine.ApplyIncoming(ctx, incomingLine(it), at); err != nil {
				return err
			}
			row := incomingItemRow(inv.ID, it)
			if err := tx.InsertIncomingItem(ctx, &row); err != nil {
				return err
			}
			inv.Items = append(inv.Items, row)
		}
		changes = engine.Changes()
		return nil
	})
	if err != nil {
		s.events.failed(ctx, "create", 0, err)
		return nil, err
	}

	s.events.committed(ctx, "create", inv.ID, changes)
	return inv, nil
}

// Update patches the header fields present in patch. When items are present the
// item set is diffed by product name: matching rows are rewritten in place, new
// names are inserted, missing names are deleted. Stock follows the engine's policy.
func (s *IncomingInvoiceService) Update(ctx context.Context, id int, patch *models.IncomingInvoicePatch) (*models.IncomingInvoice, error) {
	var items []parsedItem
	if patch.Items.Set && !patch.Items.Null {
		var err error
		if items, err = parseItems(patch.Items.Value, false); err != nil {
			return nil, err
		}
	}

	var (
		inv     *models.IncomingInvoice
		changes []stock.Change
	)
	err := s.UoW.Do(ctx, func(ctx context.Context, tx store.InvoiceTx) error {
		var err error
		if inv, err = tx.LockIncomingInvoice(ctx, id); err != nil {
			return err
		}
		if err := patch.Apply(inv); err != nil {
			return err
		}
		if err := tx.UpdateIncomingInvoice(ctx, inv); err != nil {
			return err
		}
		if !patch.Items.Set {
			return nil
		}

		engine := stock.NewEngine(tx, s.Policy)
		old := incomingLinesFromRows(inv.Items)
		next := make([]stock.IncomingLine, len(items))
		for i, it := range items {
			next[i] = incomingLine(it)
		}
		names := itemNames(items)
		for _, l := range old {
			names = append(names, l.Name)
		}
		if err := engine.Prelock(ctx, names); err != nil {
			return err
		}
		if err := engine.ReconcileIncoming(ctx, old, next, stock.Placement{Date: inv.Date, StorageID: inv.StorageID}); err != nil {
			return err
		}

		rows, err := s.replaceItemRows(ctx, tx, inv, items)
		if err != nil {
			return err
		}
		inv.Items = rows
		changes = engine.Changes()
		return nil
	})
	if err != nil {
		s.events.failed(ctx, "update", id, err)
		return nil, err
	}

	s.events.committed(ctx, "update", inv.ID, changes)
	return inv, nil
}

// replaceItemRows rewrites the stored rows to match items, reusing rows by product name
func (s *IncomingInvoiceService) replaceItemRows(ctx context.Context, tx store.InvoiceTx, inv *models.IncomingInvoice, items []parsedItem) ([]models.IncomingInvoiceItem, error) {
	existing := make(map[string][]models.IncomingInvoiceItem)
	for _, row := range inv.Items {
		existing[row.ProductName] = append(existing[row.ProductName], row)
	}

	rows := make([]models.IncomingInvoiceItem, 0, len(items))
	for _, it := range items {
		row := incomingItemRow(inv.ID, it)
		if queue := existing[row.ProductName]; len(queue) > 0 {
			row.ID = queue[0].ID
			existing[row.ProductName] = queue[1:]
			if err := tx.UpdateIncomingItem(ctx, &row); err != nil {
				return nil, err
			}
		} else if err := tx.InsertIncomingItem(ctx, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	for _, leftover := range existing {
		for _, row := range leftover {
			if err := tx.DeleteIncomingItem(ctx, row.ID); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}

// Delete removes the invoice and its items. Stock is only withdrawn under PolicyReconcile.
func (s *IncomingInvoiceService) Delete(ctx context.Context, id int) error {
	var changes []stock.Change
	err := s.UoW.Do(ctx, func(ctx context.Context, tx store.InvoiceTx) error {
		inv, err := tx.LockIncomingInvoice(ctx, id)
		if err != nil {
			return err
		}
		engine := stock.NewEngine(tx, s.Policy)
		old := incomingLinesFromRows(inv.Items)
		if engine.Policy() == stock.PolicyReconcile {
			names := make([]string, len(old))
			for i, l := range old {
				names[i] = l.Name
			}
			if err := engine.Prelock(ctx, names); err != nil {
				return err
			}
		}
		if err := engine.WithdrawIncoming(ctx, old); err != nil {
			return err
		}
		if err := tx.DeleteIncomingInvoice(ctx, id); err != nil {
			return err
		}
		changes = engine.Changes()
		return nil
	})
	if err != nil {
		s.events.failed(ctx, "delete", id, err)
		return err
	}

	s.events.committed(ctx, "delete", id, changes)
	return nil
}

func (s *IncomingInvoiceService) Get(ctx context.Context, id int) (*models.IncomingInvoice, error) {
	return s.Reader.GetIncomingInvoice(ctx, id)
}

func (s *IncomingInvoiceService) List(ctx context.Context) ([]*models.IncomingInvoice, error) {
	return cachedList(ctx, cache.IncomingListKey, s.Reader.ListIncomingInvoices)
}

// NextNumber returns the number the next create would allocate
func (s *IncomingInvoiceService) NextNumber(ctx context.Context) (string, error) {
	return peekNumber(ctx, s.Numbers, s.Reader, models.InvoiceIncoming)
}

// ProductsByDateAndStorage lists products stamped on the given YYYY-MM-DD day with their storage
func (s *IncomingInvoiceService) ProductsByDateAndStorage(ctx context.Context, day string) ([]*models.ProductWithStorage, error) {
	from, to, err := dayBounds(day)
	if err != nil {
		return nil, err
	}
	return cachedList(ctx, cache.ProductsByDateKey(day), func(ctx context.Context) ([]*models.ProductWithStorage, error) {
		return s.Reader.ProductsByDate(ctx, from, to)
	})
}

func incomingLine(it parsedItem) stock.IncomingLine {
	return stock.IncomingLine{
		Name:          it.input.ProductName,
		Description:   it.input.ProductDescription,
		UnitOfMeasure: it.input.UnitOfMeasure,
		UnitPrice:     it.line.UnitPrice,
		Quantity:      it.line.Quantity,
	}
}

func incomingLinesFromRows(rows []models.IncomingInvoiceItem) []stock.IncomingLine {
	lines := make([]stock.IncomingLine, len(rows))
	for i, r := range rows {
		lines[i] = stock.IncomingLine{
			Name:          r.ProductName,
			Description:   r.ProductDescription,
			UnitOfMeasure: r.UnitOfMeasure,
			UnitPrice:     r.UnitPrice,
			Quantity:      r.Quantity,
		}
	}
	return lines
}

func incomingItemRow(invoiceID int, it parsedItem) models.IncomingInvoiceItem {
	return models.IncomingInvoiceItem{
		IncomingInvoiceID:  invoiceID,
		ProductName:        it.input.ProductName,
		ProductDescription: it.input.ProductDescription,
		Quantity:           it.line.Quantity,
		UnitOfMeasure:      it.input.UnitOfMeasure,
		UnitPrice:          it.line.UnitPrice,
		TotalPrice:         it.line.TotalPrice,
		VATPercentage:      it.line.VATPercentage,
		VATAmount:          it.line.VATAmount,
		AccountNumber:      it.input.AccountNumber,
	}
}
