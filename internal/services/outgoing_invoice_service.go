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

// OutgoingInvoiceService coordinates outgoing invoices: shipments that draw stock down.
// Every item is checked against the locked product row, so an invoice either ships
// in full or not at all.
type OutgoingInvoiceService struct {
	UoW     store.UnitOfWork
	Reader  store.InvoiceReader
	Numbers *numbering.Allocator

	events invoiceEvents
}

func NewOutgoingInvoiceService(uow store.UnitOfWork, reader store.InvoiceReader, numbers *numbering.Allocator,
	publisher StockPublisher, logger *logging.Logger) *OutgoingInvoiceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &OutgoingInvoiceService{
		UoW:     uow,
		Reader:  reader,
		Numbers: numbers,
		events: invoiceEvents{
			kind:      models.InvoiceOutgoing,
			publisher: publisher,
			logger:    logger.WithComponent("outgoing_invoices"),
			listKey:   cache.OutgoingListKey,
			warmList:  listWarmer(reader.ListOutgoingInvoices),
		},
	}
}

func (s *OutgoingInvoiceService) Create(ctx context.Context, req *models.CreateOutgoingInvoiceRequest) (*models.OutgoingInvoice, error) {
	date, err := invoiceDate(req.Date)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(req.Items, true)
	if err != nil {
		return nil, err
	}

	inv := &models.OutgoingInvoice{
		Number:              req.Number,
		Date:                date,
		CustomerID:          req.CustomerID,
		OrganizationID:      req.OrganizationID,
		StorageID:           req.StorageID,
		ResponsiblePersonID: req.ResponsiblePersonID,
		ContractNumber:      req.ContractNumber,
		PaymentDocument:     req.PaymentDocument,
		Comment:             req.Comment,
	}

	var changes []stock.Change
	err = s.UoW.Do(ctx, func(ctx context.Context, tx store.InvoiceTx) error {
		if inv.Number == "" {
			number, err := s.Numbers.Allocate(ctx, tx, models.InvoiceOutgoing)
			if err != nil {
				return err
			}
			inv.Number = number
		}
		if err := tx.InsertOutgoingInvoice(ctx, inv); err != nil {
			return err
		}

		engine := stock.NewEngine(tx, stock.PolicyPreserve)
		if err := engine.Prelock(ctx, itemNames(items)); err != nil {
			return err
		}
		rows, err := s.applyItems(ctx, tx, engine, inv.ID, items)
		if err != nil {
			return err
		}
		inv.Items = rows
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

// Update patches the header. When items are present every stored item is
// returned to stock, the rows are dropped and the new set is applied from scratch,
// so availability checks see the reversal.
func (s *OutgoingInvoiceService) Update(ctx context.Context, id int, patch *models.OutgoingInvoicePatch) (*models.OutgoingInvoice, error) {
	var items []parsedItem
	if patch.Items.Set && !patch.Items.Null {
		var err error
		if items, err = parseItems(patch.Items.Value, true); err != nil {
			return nil, err
		}
	}

	var (
		inv     *models.OutgoingInvoice
		changes []stock.Change
	)
	err := s.UoW.Do(ctx, func(ctx context.Context, tx store.InvoiceTx) error {
		var err error
		if inv, err = tx.LockOutgoingInvoice(ctx, id); err != nil {
			return err
		}
		if err := patch.Apply(inv); err != nil {
			return err
		}
		if err := tx.UpdateOutgoingInvoice(ctx, inv); err != nil {
			return err
		}
		if !patch.Items.Set {
			return nil
		}

		engine := stock.NewEngine(tx, stock.PolicyPreserve)
		names := itemNames(items)
		for _, row := range inv.Items {
			names = append(names, row.ProductName)
		}
		if err := engine.Prelock(ctx, names); err != nil {
			return err
		}
		if err := reverseOutgoing(ctx, engine, inv.Items); err != nil {
			return err
		}
		if err := tx.DeleteOutgoingItems(ctx, inv.ID); err != nil {
			return err
		}
		rows, err := s.applyItems(ctx, tx, engine, inv.ID, items)
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

// Delete returns every item's quantity to its product, then removes the invoice
func (s *OutgoingInvoiceService) Delete(ctx context.Context, id int) error {
	var changes []stock.Change
	err := s.UoW.Do(ctx, func(ctx context.Context, tx store.InvoiceTx) error {
		inv, err := tx.LockOutgoingInvoice(ctx, id)
		if err != nil {
			return err
		}
		engine := stock.NewEngine(tx, stock.PolicyPreserve)
		names := make([]string, len(inv.Items))
		for i, row := range inv.Items {
			names[i] = row.ProductName
		}
		if err := engine.Prelock(ctx, names); err != nil {
			return err
		}
		if err := reverseOutgoing(ctx, engine, inv.Items); err != nil {
			return err
		}
		if err := tx.DeleteOutgoingInvoice(ctx, id); err != nil {
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

func (s *OutgoingInvoiceService) Get(ctx context.Context, id int) (*models.OutgoingInvoice, error) {
	return s.Reader.GetOutgoingInvoice(ctx, id)
}

func (s *OutgoingInvoiceService) List(ctx context.Context) ([]*models.OutgoingInvoice, error) {
	return cachedList(ctx, cache.OutgoingListKey, s.Reader.ListOutgoingInvoices)
}

func (s *OutgoingInvoiceService) NextNumber(ctx context.Context) (string, error) {
	return peekNumber(ctx, s.Numbers, s.Reader, models.InvoiceOutgoing)
}

func (s *OutgoingInvoiceService) applyItems(ctx context.Context, tx store.InvoiceTx, engine *stock.Engine, invoiceID int, items []parsedItem) ([]models.OutgoingInvoiceItem, error) {
	rows := make([]models.OutgoingInvoiceItem, 0, len(items))
	for _, it := range items {
		product, err := engine.ApplyOutgoing(ctx, it.input.ProductName, it.line.Quantity)
		if err != nil {
			return nil, err
		}
		row := models.OutgoingInvoiceItem{
			OutgoingInvoiceID: invoiceID,
			ProductID:         product.ID,
			ProductName:       product.Name,
			Quantity:          it.line.Quantity,
			UnitOfMeasure:     it.input.UnitOfMeasure,
			UnitPrice:         it.line.UnitPrice,
			TotalPrice:        it.line.TotalPrice,
			VATPercentage:     it.line.VATPercentage,
			VATAmount:         it.line.VATAmount,
			Discount:          it.line.Discount,
			AccountNumber:     it.input.AccountNumber,
		}
		if err := tx.InsertOutgoingItem(ctx, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func reverseOutgoing(ctx context.Context, engine *stock.Engine, rows []models.OutgoingInvoiceItem) error {
	for _, row := range rows {
		if _, err := engine.ReverseOutgoing(ctx, row.ProductID, row.Quantity); err != nil {
			return err
		}
	}
	return nil
}
