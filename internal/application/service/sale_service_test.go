package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"github.com/kevmuri/bookstore-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale(t *testing.T) {
	saleSvc, _, store := newTestServices()
	ctx := context.Background()
	userID := uuid.New()

	goBook := seedBook(store, "The Go Programming Language", 4599, 10)
	dbBook := seedBook(store, "Designing Data-Intensive Applications", 5250, 3)

	result, err := saleSvc.CreateSale(ctx, &CreateSaleInput{
		UserID:        userID,
		PaymentMethod: "card",
		Items: []SaleItemInput{
			{BookID: goBook, Quantity: 2},
			{BookID: dbBook, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// 2 * 45.99 + 52.50
	assert.Equal(t, 144.48, result.TotalAmount)
	assert.Equal(t, enum.PaymentMethodCard, result.PaymentMethod)
	assert.Equal(t, 2, result.ItemCount)

	// Stock decremented
	assert.Equal(t, 8, store.books[goBook].Quantity)
	assert.Equal(t, 2, store.books[dbBook].Quantity)

	// Payment recorded for the full amount
	payment, err := memPaymentRepo{store}.GetBySaleID(ctx, result.SaleID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, int64(14448), payment.Amount)

	// One negative movement per line, referencing the sale
	movements, err := memMovementRepo{store}.ListByBook(ctx, goBook)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].ChangeQuantity)
	assert.Equal(t, enum.MovementReasonSale, movements[0].Reason)
	assert.Equal(t, result.SaleID, movements[0].ReferenceID)
}

func TestCreateSaleCoalescesDuplicateLines(t *testing.T) {
	saleSvc, _, store := newTestServices()
	userID := uuid.New()

	bookID := seedBook(store, "Clean Code", 3000, 10)

	result, err := saleSvc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:        userID,
		PaymentMethod: "CASH",
		Items: []SaleItemInput{
			{BookID: bookID, Quantity: 2},
			{BookID: bookID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// Duplicate lines merge into one item for 5 copies
	assert.Equal(t, 1, result.ItemCount)
	assert.Equal(t, 150.0, result.TotalAmount)
	assert.Equal(t, 5, store.books[bookID].Quantity)

	items, err := memSaleRepo{store}.GetBySaleID(context.Background(), result.SaleID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCreateSaleValidation(t *testing.T) {
	saleSvc, _, store := newTestServices()
	userID := uuid.New()
	bookID := seedBook(store, "Refactoring", 4000, 5)

	tests := []struct {
		name  string
		input *CreateSaleInput
	}{
		{
			name:  "empty cart",
			input: &CreateSaleInput{UserID: userID, PaymentMethod: "CASH"},
		},
		{
			name: "unsupported payment method",
			input: &CreateSaleInput{
				UserID:        userID,
				PaymentMethod: "CHEQUE",
				Items:         []SaleItemInput{{BookID: bookID, Quantity: 1}},
			},
		},
		{
			name: "zero quantity",
			input: &CreateSaleInput{
				UserID:        userID,
				PaymentMethod: "CASH",
				Items:         []SaleItemInput{{BookID: bookID, Quantity: 0}},
			},
		},
		{
			name: "negative quantity",
			input: &CreateSaleInput{
				UserID:        userID,
				PaymentMethod: "CASH",
				Items:         []SaleItemInput{{BookID: bookID, Quantity: -1}},
			},
		},
		{
			name: "missing book id",
			input: &CreateSaleInput{
				UserID:        userID,
				PaymentMethod: "CASH",
				Items:         []SaleItemInput{{Quantity: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := saleSvc.CreateSale(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}

	// Nothing was written
	assert.Equal(t, 5, store.books[bookID].Quantity)
	assert.Empty(t, store.sales)
	assert.Empty(t, store.movements)
}

func TestCreateSalePaymentMethodNormalization(t *testing.T) {
	saleSvc, _, store := newTestServices()

	for _, raw := range []string{"cash", "Cash", " CASH ", "mobile_money", "MOBILE_MONEY"} {
		bookID := seedBook(store, "Some Title", 1000, 10)
		result, err := saleSvc.CreateSale(context.Background(), &CreateSaleInput{
			UserID:        uuid.New(),
			PaymentMethod: raw,
			Items:         []SaleItemInput{{BookID: bookID, Quantity: 1}},
		})
		require.NoError(t, err, "method %q", raw)
		assert.True(t, result.PaymentMethod == enum.PaymentMethodCash ||
			result.PaymentMethod == enum.PaymentMethodMobileMoney)
	}
}

func TestCreateSaleUnknownBook(t *testing.T) {
	saleSvc, _, store := newTestServices()
	knownID := seedBook(store, "Known Book", 2000, 5)

	_, err := saleSvc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:        uuid.New(),
		PaymentMethod: "CASH",
		Items: []SaleItemInput{
			{BookID: knownID, Quantity: 1},
			{BookID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	// The transaction rolled back: the known book keeps its stock
	assert.Equal(t, 5, store.books[knownID].Quantity)
	assert.Empty(t, store.sales)
	assert.Empty(t, store.payments)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	saleSvc, _, store := newTestServices()
	plenty := seedBook(store, "Plenty In Stock", 1500, 100)
	scarce := seedBook(store, "Nearly Gone", 1500, 2)

	_, err := saleSvc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:        uuid.New(),
		PaymentMethod: "CARD",
		Items: []SaleItemInput{
			{BookID: plenty, Quantity: 10},
			{BookID: scarce, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindBusinessRule, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "Nearly Gone")
	assert.Contains(t, err.Error(), "Available: 2")
	assert.Contains(t, err.Error(), "Requested: 3")

	// No partial decrement survives the rollback
	assert.Equal(t, 100, store.books[plenty].Quantity)
	assert.Equal(t, 2, store.books[scarce].Quantity)
	assert.Empty(t, store.sales)
	assert.Empty(t, store.movements)
}

func TestCreateSaleConcurrentOversell(t *testing.T) {
	saleSvc, _, store := newTestServices()
	bookID := seedBook(store, "Contended Title", 2500, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = saleSvc.CreateSale(context.Background(), &CreateSaleInput{
				UserID:        uuid.New(),
				PaymentMethod: "CASH",
				Items:         []SaleItemInput{{BookID: bookID, Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	// Exactly one of the two racing checkouts wins
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperror.KindBusinessRule, apperror.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, store.books[bookID].Quantity)
	assert.Len(t, store.sales, 1)
	assert.Len(t, store.movements, 1)
}

func TestGetSale(t *testing.T) {
	saleSvc, _, store := newTestServices()
	bookID := seedBook(store, "Lookup Target", 1200, 4)

	result, err := saleSvc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:        uuid.New(),
		PaymentMethod: "CARD",
		Items:         []SaleItemInput{{BookID: bookID, Quantity: 2}},
	})
	require.NoError(t, err)

	sale, err := saleSvc.GetSale(context.Background(), result.SaleID)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), sale.TotalAmount)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, int64(1200), sale.Items[0].UnitPrice)
	require.NotNil(t, sale.Payment)
	assert.Equal(t, enum.PaymentMethodCard, sale.Payment.Method)

	_, err = saleSvc.GetSale(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
