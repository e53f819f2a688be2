package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
)

// memStore is an in-memory stand-in for the database used by the service
// tests. A single mutex plays the role of row locks: Do holds it for the
// whole transaction, so concurrent transactions serialize exactly like they
// would against locked rows, and a failed transaction restores the snapshot
// taken at its start so no partial writes survive.
type memStore struct {
	mu          sync.Mutex
	books       map[uuid.UUID]entity.Book
	sales       map[uuid.UUID]entity.Sale
	saleItems   []entity.SaleItem
	payments    []entity.Payment
	returns     map[uuid.UUID]entity.Return
	returnItems []entity.ReturnItem
	movements   []entity.StockMovement
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		books:   make(map[uuid.UUID]entity.Book),
		sales:   make(map[uuid.UUID]entity.Sale),
		returns: make(map[uuid.UUID]entity.Return),
	}
}

// lock acquires the store mutex unless the context already runs inside a
// transaction holding it.
func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memSnapshot struct {
	books       map[uuid.UUID]entity.Book
	sales       map[uuid.UUID]entity.Sale
	saleItems   []entity.SaleItem
	payments    []entity.Payment
	returns     map[uuid.UUID]entity.Return
	returnItems []entity.ReturnItem
	movements   []entity.StockMovement
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		books:       make(map[uuid.UUID]entity.Book, len(s.books)),
		sales:       make(map[uuid.UUID]entity.Sale, len(s.sales)),
		returns:     make(map[uuid.UUID]entity.Return, len(s.returns)),
		saleItems:   append([]entity.SaleItem(nil), s.saleItems...),
		payments:    append([]entity.Payment(nil), s.payments...),
		returnItems: append([]entity.ReturnItem(nil), s.returnItems...),
		movements:   append([]entity.StockMovement(nil), s.movements...),
	}
	for id, b := range s.books {
		snap.books[id] = b
	}
	for id, sl := range s.sales {
		snap.sales[id] = sl
	}
	for id, r := range s.returns {
		snap.returns[id] = r
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.books = snap.books
	s.sales = snap.sales
	s.returns = snap.returns
	s.saleItems = snap.saleItems
	s.payments = snap.payments
	s.returnItems = snap.returnItems
	s.movements = snap.movements
}

// Do implements repository.TxManager
func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// --- BookRepository ---

func (s *memStore) Create(ctx context.Context, book *entity.Book) error {
	defer s.lock(ctx)()
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	s.books[book.ID] = *book
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	defer s.lock(ctx)()
	book, ok := s.books[id]
	if !ok {
		return nil, nil
	}
	return &book, nil
}

func (s *memStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	return s.GetByID(ctx, id)
}

func (s *memStore) Update(ctx context.Context, book *entity.Book) error {
	defer s.lock(ctx)()
	s.books[book.ID] = *book
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()
	delete(s.books, id)
	return nil
}

func (s *memStore) List(ctx context.Context, params *repository.BookFilterParams) ([]entity.Book, int64, error) {
	defer s.lock(ctx)()
	var books []entity.Book
	for _, b := range s.books {
		if params.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(params.Search)) {
			continue
		}
		if params.LowStock && !b.IsLowStock() {
			continue
		}
		books = append(books, b)
	}
	return books, int64(len(books)), nil
}

func (s *memStore) GetLowStock(ctx context.Context) ([]entity.Book, error) {
	defer s.lock(ctx)()
	var books []entity.Book
	for _, b := range s.books {
		if b.IsLowStock() {
			books = append(books, b)
		}
	}
	return books, nil
}

func (s *memStore) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	defer s.lock(ctx)()
	book, ok := s.books[id]
	if !ok || book.Quantity < amount {
		return false, nil
	}
	book.Quantity -= amount
	s.books[id] = book
	return true, nil
}

func (s *memStore) AtomicIncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	defer s.lock(ctx)()
	book, ok := s.books[id]
	if !ok {
		return nil
	}
	book.Quantity += amount
	s.books[id] = book
	return nil
}

// --- SaleRepository / SaleItemRepository ---

type memSaleRepo struct{ *memStore }

func (s memSaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	defer s.lock(ctx)()
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	s.sales[sale.ID] = *sale
	return nil
}

func (s memSaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	defer s.lock(ctx)()
	sale, ok := s.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}

func (s memSaleRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	defer s.lock(ctx)()
	sale, ok := s.sales[id]
	if !ok {
		return nil, nil
	}
	for _, item := range s.saleItems {
		if item.SaleID == id {
			sale.Items = append(sale.Items, item)
		}
	}
	for i := range s.payments {
		if s.payments[i].SaleID == id {
			p := s.payments[i]
			sale.Payment = &p
			break
		}
	}
	return &sale, nil
}

func (s memSaleRepo) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	defer s.lock(ctx)()
	var sales []entity.Sale
	for _, sl := range s.sales {
		if params.UserID != nil && sl.UserID != *params.UserID {
			continue
		}
		sales = append(sales, sl)
	}
	return sales, int64(len(sales)), nil
}

func (s memSaleRepo) DailyReport(ctx context.Context, day time.Time) (*repository.DailyReport, error) {
	defer s.lock(ctx)()
	report := &repository.DailyReport{Date: day.Format("2006-01-02")}
	var sum int64
	for _, sl := range s.sales {
		report.TotalTransactions++
		sum += sl.TotalAmount
	}
	report.TotalSales = float64(sum) / 100
	if report.TotalTransactions > 0 {
		report.AverageSale = report.TotalSales / float64(report.TotalTransactions)
	}
	return report, nil
}

func (s memSaleRepo) CreateBatch(ctx context.Context, items []entity.SaleItem) error {
	defer s.lock(ctx)()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		s.memStore.saleItems = append(s.memStore.saleItems, items[i])
	}
	return nil
}

func (s memSaleRepo) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error) {
	defer s.lock(ctx)()
	var items []entity.SaleItem
	for _, item := range s.saleItems {
		if item.SaleID == saleID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s memSaleRepo) GetBySaleAndBook(ctx context.Context, saleID, bookID uuid.UUID) (*entity.SaleItem, error) {
	defer s.lock(ctx)()
	for _, item := range s.saleItems {
		if item.SaleID == saleID && item.BookID == bookID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

// --- PaymentRepository ---

type memPaymentRepo struct{ *memStore }

func (s memPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	defer s.lock(ctx)()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.memStore.payments = append(s.memStore.payments, *payment)
	return nil
}

func (s memPaymentRepo) GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Payment, error) {
	defer s.lock(ctx)()
	for _, p := range s.payments {
		if p.SaleID == saleID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

// --- StockMovementRepository ---

type memMovementRepo struct{ *memStore }

func (s memMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	defer s.lock(ctx)()
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	s.memStore.movements = append(s.memStore.movements, *movement)
	return nil
}

func (s memMovementRepo) AppendBatch(ctx context.Context, movements []entity.StockMovement) error {
	defer s.lock(ctx)()
	for i := range movements {
		if movements[i].ID == uuid.Nil {
			movements[i].ID = uuid.New()
		}
		s.memStore.movements = append(s.memStore.movements, movements[i])
	}
	return nil
}

func (s memMovementRepo) ListByBook(ctx context.Context, bookID uuid.UUID) ([]entity.StockMovement, error) {
	defer s.lock(ctx)()
	var movements []entity.StockMovement
	for _, m := range s.movements {
		if m.BookID == bookID {
			movements = append(movements, m)
		}
	}
	return movements, nil
}

func (s memMovementRepo) SumByBook(ctx context.Context, bookID uuid.UUID) (int, error) {
	defer s.lock(ctx)()
	sum := 0
	for _, m := range s.movements {
		if m.BookID == bookID {
			sum += m.ChangeQuantity
		}
	}
	return sum, nil
}

// --- ReturnRepository ---

type memReturnRepo struct{ *memStore }

func (s memReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	defer s.lock(ctx)()
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	ret.CreatedAt = time.Now()
	s.returns[ret.ID] = *ret
	return nil
}

func (s memReturnRepo) CreateItems(ctx context.Context, items []entity.ReturnItem) error {
	defer s.lock(ctx)()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		s.memStore.returnItems = append(s.memStore.returnItems, items[i])
	}
	return nil
}

func (s memReturnRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Return, error) {
	defer s.lock(ctx)()
	ret, ok := s.returns[id]
	if !ok {
		return nil, nil
	}
	return &ret, nil
}

func (s memReturnRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Return, error) {
	defer s.lock(ctx)()
	ret, ok := s.returns[id]
	if !ok {
		return nil, nil
	}
	for _, item := range s.returnItems {
		if item.ReturnID == id {
			ret.Items = append(ret.Items, item)
		}
	}
	return &ret, nil
}

func (s memReturnRepo) List(ctx context.Context, params *repository.ReturnFilterParams) ([]entity.Return, int64, error) {
	defer s.lock(ctx)()
	var returns []entity.Return
	for _, r := range s.returns {
		if params.SaleID != nil && r.SaleID != *params.SaleID {
			continue
		}
		returns = append(returns, r)
	}
	return returns, int64(len(returns)), nil
}

func (s memReturnRepo) SumReturnedQuantity(ctx context.Context, saleID, bookID uuid.UUID) (int, error) {
	defer s.lock(ctx)()
	sum := 0
	for _, item := range s.returnItems {
		ret, ok := s.returns[item.ReturnID]
		if !ok || ret.SaleID != saleID || item.BookID != bookID {
			continue
		}
		sum += item.Quantity
	}
	return sum, nil
}

// newTestServices wires sale and return services against one shared store.
func newTestServices() (*SaleService, *ReturnService, *memStore) {
	store := newMemStore()
	saleRepo := memSaleRepo{store}
	paymentRepo := memPaymentRepo{store}
	movementRepo := memMovementRepo{store}
	returnRepo := memReturnRepo{store}

	saleSvc := NewSaleService(store, saleRepo, saleRepo, store, paymentRepo, movementRepo)
	returnSvc := NewReturnService(store, returnRepo, saleRepo, saleRepo, store, movementRepo)
	return saleSvc, returnSvc, store
}

func seedBook(store *memStore, title string, priceCents int64, qty int) uuid.UUID {
	id := uuid.New()
	store.books[id] = entity.Book{
		ID:       id,
		Title:    title,
		Author:   "Test Author",
		Price:    priceCents,
		Quantity: qty,
	}
	return id
}
