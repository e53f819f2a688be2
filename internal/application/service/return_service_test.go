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

// sellBooks commits a sale so the return tests have something to reverse.
func sellBooks(t *testing.T, saleSvc *SaleService, items []SaleItemInput) uuid.UUID {
	t.Helper()
	result, err := saleSvc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:        uuid.New(),
		PaymentMethod: "CASH",
		Items:         items,
	})
	require.NoError(t, err)
	return result.SaleID
}

func TestCreateReturn(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Returnable Title", 2000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 4}})
	require.Equal(t, 6, store.books[bookID].Quantity)

	reason := "damaged cover"
	result, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Reason: &reason,
		Items:  []ReturnItemInput{{BookID: bookID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.TotalRefunded)

	// Stock restored
	assert.Equal(t, 8, store.books[bookID].Quantity)

	ret, err := returnSvc.GetReturn(context.Background(), result.ReturnID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReturnStatusCompleted, ret.Status)
	assert.Equal(t, int64(4000), ret.TotalRefunded)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, 2, ret.Items[0].Quantity)

	// Positive movement referencing the return
	movements, err := memMovementRepo{store}.ListByBook(context.Background(), bookID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, 2, movements[1].ChangeQuantity)
	assert.Equal(t, enum.MovementReasonReturn, movements[1].Reason)
	assert.Equal(t, result.ReturnID, movements[1].ReferenceID)
}

func TestCreateReturnRefundsCapturedPrice(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Repriced Title", 2000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 1}})

	// Catalog price changes after the sale
	book := store.books[bookID]
	book.Price = 9900
	store.books[bookID] = book

	result, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Items:  []ReturnItemInput{{BookID: bookID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Refund uses the price captured at sale time, not the current price
	assert.Equal(t, 20.0, result.TotalRefunded)
}

func TestCreateReturnOverReturnAcrossMultipleReturns(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Limited Edition", 3500, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 4}})

	_, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Items:  []ReturnItemInput{{BookID: bookID, Quantity: 2}},
	})
	require.NoError(t, err)

	// 2 already returned; returning 3 more would exceed the 4 sold
	_, err = returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Items:  []ReturnItemInput{{BookID: bookID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindBusinessRule, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "Sold: 4")
	assert.Contains(t, err.Error(), "Already returned: 2")
	assert.Contains(t, err.Error(), "Requested: 3")

	// The failed return left no trace: stock reflects only the first return
	assert.Equal(t, 8, store.books[bookID].Quantity)
	assert.Len(t, store.returns, 1)
}

func TestCreateReturnSingleRequestOverSold(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Small Sale", 1000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 2}})

	_, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Items:  []ReturnItemInput{{BookID: bookID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindBusinessRule, apperror.KindOf(err))
	assert.Equal(t, 8, store.books[bookID].Quantity)
}

func TestCreateReturnBookNotInSale(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	soldBook := seedBook(store, "Was Sold", 1000, 10)
	otherBook := seedBook(store, "Never Sold", 1000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: soldBook, Quantity: 1}})

	_, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Items:  []ReturnItemInput{{BookID: otherBook, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "Never Sold")
	assert.Equal(t, 10, store.books[otherBook].Quantity)
}

func TestCreateReturnUnknownSale(t *testing.T) {
	_, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Orphan Return", 1000, 10)

	_, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: uuid.New(),
		UserID: uuid.New(),
		Items:  []ReturnItemInput{{BookID: bookID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateReturnValidation(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Validated Title", 1000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 2}})

	tests := []struct {
		name  string
		input *CreateReturnInput
	}{
		{
			name:  "missing sale id",
			input: &CreateReturnInput{UserID: uuid.New(), Items: []ReturnItemInput{{BookID: bookID, Quantity: 1}}},
		},
		{
			name:  "no items",
			input: &CreateReturnInput{SaleID: saleID, UserID: uuid.New()},
		},
		{
			name:  "zero quantity",
			input: &CreateReturnInput{SaleID: saleID, UserID: uuid.New(), Items: []ReturnItemInput{{BookID: bookID, Quantity: 0}}},
		},
		{
			name:  "missing book id",
			input: &CreateReturnInput{SaleID: saleID, UserID: uuid.New(), Items: []ReturnItemInput{{Quantity: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := returnSvc.CreateReturn(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}

	assert.Empty(t, store.returns)
}

func TestCreateReturnConcurrentOverReturn(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Raced Return", 2000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 4}})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
				SaleID: saleID,
				UserID: uuid.New(),
				Items:  []ReturnItemInput{{BookID: bookID, Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	// 3 + 3 exceeds the 4 sold, so exactly one return wins
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperror.KindBusinessRule, apperror.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 9, store.books[bookID].Quantity)
	assert.Len(t, store.returns, 1)
}

func TestCreateReturnCoalescesDuplicateLines(t *testing.T) {
	saleSvc, returnSvc, store := newTestServices()
	bookID := seedBook(store, "Split Lines", 1000, 10)
	saleID := sellBooks(t, saleSvc, []SaleItemInput{{BookID: bookID, Quantity: 4}})

	// Two lines of 2 each coalesce to 4, exactly what was sold
	result, err := returnSvc.CreateReturn(context.Background(), &CreateReturnInput{
		SaleID: saleID,
		UserID: uuid.New(),
		Items: []ReturnItemInput{
			{BookID: bookID, Quantity: 2},
			{BookID: bookID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.TotalRefunded)
	assert.Equal(t, 10, store.books[bookID].Quantity)
}
