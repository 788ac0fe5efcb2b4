package services

import (
	"context"
	"testing"
	"time"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/logging"
	"stock-backend/internal/models"
	"stock-backend/internal/numbering"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutgoing() (*OutgoingInvoiceService, *memStore, *recordingPublisher) {
	db := newMemStore()
	pub := &recordingPublisher{}
	svc := NewOutgoingInvoiceService(db, db, numbering.NewAllocator("", ""), pub, logging.Nop())
	return svc, db, pub
}

func outgoingRequest(items ...models.InvoiceItemInput) *models.CreateOutgoingInvoiceRequest {
	return &models.CreateOutgoingInvoiceRequest{
		Date:                &models.Timestamp{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		CustomerID:          1,
		OrganizationID:      1,
		StorageID:           1,
		ResponsiblePersonID: 1,
		Items:               items,
	}
}

func TestOutgoingCreateDrawsStock(t *testing.T) {
	svc, db, pub := newOutgoing()
	db.seedProduct(models.Product{Name: "Rice", CurrentStock: dec("12")})

	in := item("Rice", "10", "50")
	in.Discount = "10"
	inv, err := svc.Create(context.Background(), outgoingRequest(in))
	require.NoError(t, err)

	assert.Equal(t, "out001", inv.Number)
	require.Len(t, inv.Items, 1)
	assert.True(t, dec("450").Equal(inv.Items[0].TotalPrice))
	assert.True(t, dec("75").Equal(inv.Items[0].VATAmount))
	assert.Equal(t, "Rice", inv.Items[0].ProductName)
	assert.True(t, dec("2").Equal(stockOf(t, db, "Rice")))

	require.Len(t, pub.events, 1)
	assert.True(t, dec("-10").Equal(pub.events[0].Delta))
}

func TestOutgoingInsufficientStockIsAtomic(t *testing.T) {
	svc, db, pub := newOutgoing()
	db.seedProduct(models.Product{Name: "Rice", CurrentStock: dec("5")})
	db.seedProduct(models.Product{Name: "Salt", CurrentStock: dec("1")})

	_, err := svc.Create(context.Background(), outgoingRequest(item("Rice", "5", "1"), item("Salt", "2", "1")))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "Not enough stock for product Salt. Available: 1, Requested: 2")

	assert.True(t, dec("5").Equal(stockOf(t, db, "Rice")))
	assert.True(t, dec("1").Equal(stockOf(t, db, "Salt")))
	assert.Empty(t, db.state.outgoing)
	assert.Empty(t, db.state.outgoingItems)
	assert.Empty(t, pub.events)
}

func TestOutgoingUnknownProduct(t *testing.T) {
	svc, db, _ := newOutgoing()

	_, err := svc.Create(context.Background(), outgoingRequest(item("Ghost", "1", "1")))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnknownProduct))
	assert.Contains(t, err.Error(), "Product with name 'Ghost' not found")
	assert.Empty(t, db.state.outgoing)
}

func TestOutgoingDeleteRestoresStock(t *testing.T) {
	svc, db, _ := newOutgoing()
	ctx := context.Background()
	db.seedProduct(models.Product{Name: "X", CurrentStock: dec("7")})

	inv, err := svc.Create(ctx, outgoingRequest(item("X", "5", "1")))
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(stockOf(t, db, "X")))

	require.NoError(t, svc.Delete(ctx, inv.ID))
	assert.True(t, dec("7").Equal(stockOf(t, db, "X")))
	assert.Empty(t, db.state.outgoingItems)

	_, err = svc.Get(ctx, inv.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestOutgoingUpdateSeesReversal(t *testing.T) {
	svc, db, _ := newOutgoing()
	ctx := context.Background()
	db.seedProduct(models.Product{Name: "X", CurrentStock: dec("10")})
	db.seedProduct(models.Product{Name: "Y", CurrentStock: dec("3")})

	inv, err := svc.Create(ctx, outgoingRequest(item("X", "8", "1")))
	require.NoError(t, err)

	// 9 only fits because the 8 already drawn are returned first
	updated, err := svc.Update(ctx, inv.ID, &models.OutgoingInvoicePatch{
		PaymentDocument: models.Some("PD-1"),
		Items:           models.Some([]models.InvoiceItemInput{item("X", "9", "1"), item("Y", "3", "1")}),
	})
	require.NoError(t, err)
	assert.Equal(t, "PD-1", updated.PaymentDocument)
	require.Len(t, updated.Items, 2)
	assert.True(t, dec("1").Equal(stockOf(t, db, "X")))
	assert.True(t, stockOf(t, db, "Y").IsZero())
}

func TestOutgoingFailedUpdateKeepsPreviousState(t *testing.T) {
	svc, db, _ := newOutgoing()
	ctx := context.Background()
	db.seedProduct(models.Product{Name: "X", CurrentStock: dec("10")})

	inv, err := svc.Create(ctx, outgoingRequest(item("X", "8", "1")))
	require.NoError(t, err)

	_, err = svc.Update(ctx, inv.ID, &models.OutgoingInvoicePatch{
		Comment: models.Some("too much"),
		Items:   models.Some([]models.InvoiceItemInput{item("X", "11", "1")}),
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock))

	assert.True(t, dec("2").Equal(stockOf(t, db, "X")))
	stored, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "", stored.Comment)
	require.Len(t, stored.Items, 1)
	assert.True(t, dec("8").Equal(stored.Items[0].Quantity))
}

func TestOutgoingRoundTripKeepsLedgerFields(t *testing.T) {
	svc, db, _ := newOutgoing()
	ctx := context.Background()
	db.seedProduct(models.Product{Name: "Oil", CurrentStock: dec("100")})

	in := item("Oil", "3.333", "1.2345")
	in.Discount = "12.5"
	created, err := svc.Create(ctx, outgoingRequest(in))
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.True(t, created.Items[0].TotalPrice.Equal(fetched.Items[0].TotalPrice))
	assert.True(t, created.Items[0].VATAmount.Equal(fetched.Items[0].VATAmount))
	assert.Equal(t, "Oil", fetched.Items[0].ProductName)
}

func TestOutgoingDiscountOutOfRange(t *testing.T) {
	svc, db, _ := newOutgoing()
	db.seedProduct(models.Product{Name: "Oil", CurrentStock: dec("100")})

	in := item("Oil", "1", "1")
	in.Discount = "150"
	_, err := svc.Create(context.Background(), outgoingRequest(in))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationError))
	assert.Zero(t, db.commits)
}
