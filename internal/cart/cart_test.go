package cart

import (
	"errors"
	"testing"
	"time"
)

func testItem(productID, size, category string, price int64, qty int) Item {
	return Item{
		ProductID:       productID,
		Name:            "Produk " + productID,
		Category:        category,
		Price:           price,
		DiscountedPrice: price,
		SelectedSize:    size,
		Quantity:        qty,
	}
}

func TestAddToCartMergesSameProductAndSize(t *testing.T) {
	s := New(NewMemoryStorage())

	s.AddToCart(testItem("p1", "M", "kaos", 100000, 2))
	s.AddToCart(testItem("p1", "M", "kaos", 100000, 3))

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", items[0].Quantity)
	}
}

func TestAddToCartIgnoresNonPositiveQuantity(t *testing.T) {
	s := New(NewMemoryStorage())

	s.AddToCart(testItem("p1", "M", "kaos", 100000, 0))
	s.AddToCart(testItem("p1", "M", "kaos", 100000, -2))
	if len(s.Items()) != 0 {
		t.Fatalf("expected no lines after non-positive adds, got %d", len(s.Items()))
	}

	s.AddToCart(testItem("p1", "M", "kaos", 100000, 2))
	s.AddToCart(testItem("p1", "M", "kaos", 100000, 0))

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity unchanged at 2, got %d", items[0].Quantity)
	}
}

func TestAddToCartSeparateLinesPerSize(t *testing.T) {
	s := New(NewMemoryStorage())

	s.AddToCart(testItem("p1", "M", "kaos", 100000, 1))
	s.AddToCart(testItem("p1", "L", "kaos", 100000, 1))

	if len(s.Items()) != 2 {
		t.Fatalf("expected 2 lines for two sizes, got %d", len(s.Items()))
	}
}

func TestUpdateQuantityZeroRemovesLineAndSelection(t *testing.T) {
	s := New(NewMemoryStorage())
	item := testItem("p1", "M", "kaos", 100000, 2)

	s.AddToCart(item)
	s.ToggleItemSelection(item.Key())
	s.UpdateQuantity(item.Key(), 0)

	if len(s.Items()) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(s.Items()))
	}
	if s.IsSelected(item.Key()) {
		t.Fatalf("expected selection to be cleared with the line")
	}
}

func TestRemoveFromCartClearsSelection(t *testing.T) {
	s := New(NewMemoryStorage())
	item := testItem("p1", "M", "kaos", 100000, 1)

	s.AddToCart(item)
	s.ToggleItemSelection(item.Key())
	s.RemoveFromCart(item.Key())

	if s.SelectedCount() != 0 {
		t.Fatalf("expected selected count 0, got %d", s.SelectedCount())
	}
}

func TestSelectedTotalAndCount(t *testing.T) {
	s := New(NewMemoryStorage())
	a := testItem("p1", "M", "kaos", 100000, 2)
	b := testItem("p2", "L", "kemeja", 150000, 1)
	discounted := testItem("p3", "S", "kaos", 200000, 1)
	discounted.Discount = 25
	discounted.DiscountedPrice = 150000

	s.AddToCart(a)
	s.AddToCart(b)
	s.AddToCart(discounted)
	s.ToggleItemSelection(a.Key())
	s.ToggleItemSelection(discounted.Key())

	if got := s.SelectedCount(); got != 3 {
		t.Fatalf("expected selected count 3, got %d", got)
	}
	if got := s.SelectedTotal(); got != 350000 {
		t.Fatalf("expected selected total 350000, got %d", got)
	}
}

func TestToggleCategorySelectionAllOrNothing(t *testing.T) {
	s := New(NewMemoryStorage())
	a := testItem("p1", "M", "kaos", 100000, 1)
	b := testItem("p2", "L", "kaos", 120000, 1)
	other := testItem("p3", "M", "kemeja", 150000, 1)

	s.AddToCart(a)
	s.AddToCart(b)
	s.AddToCart(other)

	s.ToggleItemSelection(a.Key())
	if !s.IsCategoryPartiallySelected("kaos") {
		t.Fatalf("expected kaos to be partially selected")
	}
	if s.IsCategorySelected("kaos") {
		t.Fatalf("expected kaos not to be fully selected")
	}

	// Partial selection toggles up to full.
	s.ToggleCategorySelection("kaos")
	if !s.IsCategorySelected("kaos") {
		t.Fatalf("expected kaos to be fully selected")
	}
	if s.IsSelected(other.Key()) {
		t.Fatalf("expected kemeja line to stay unselected")
	}

	// Full selection toggles down to none.
	s.ToggleCategorySelection("kaos")
	if s.IsCategorySelected("kaos") || s.IsCategoryPartiallySelected("kaos") {
		t.Fatalf("expected kaos selection to be cleared")
	}
}

func TestIsCategorySelectedEmptyCategory(t *testing.T) {
	s := New(NewMemoryStorage())

	if s.IsCategorySelected("kaos") {
		t.Fatalf("expected empty category not to be selected")
	}
	if s.IsCategoryPartiallySelected("kaos") {
		t.Fatalf("expected empty category not to be partially selected")
	}
}

func TestSelectAllAndDeselectAll(t *testing.T) {
	s := New(NewMemoryStorage())
	s.AddToCart(testItem("p1", "M", "kaos", 100000, 1))
	s.AddToCart(testItem("p2", "L", "kemeja", 150000, 2))

	s.SelectAllItems()
	if got := s.SelectedCount(); got != 3 {
		t.Fatalf("expected selected count 3 after select all, got %d", got)
	}

	s.DeselectAllItems()
	if got := s.SelectedCount(); got != 0 {
		t.Fatalf("expected selected count 0 after deselect all, got %d", got)
	}
}

func TestPersistenceAcrossRestores(t *testing.T) {
	storage := NewMemoryStorage()

	first := New(storage)
	first.AddToCart(testItem("p1", "M", "kaos", 100000, 2))
	first.ToggleItemSelection("p1-M")

	second := New(storage)
	items := second.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected restored cart with quantity 2, got %+v", items)
	}
	if !second.IsSelected("p1-M") {
		t.Fatalf("expected restored selection")
	}
}

func TestExpiredCartIsDiscardedAndDeleted(t *testing.T) {
	storage := NewMemoryStorage()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := New(storage, WithNow(func() time.Time { return base }))
	first.AddToCart(testItem("p1", "M", "kaos", 100000, 2))

	// Two days later the 24h envelope has lapsed.
	later := base.Add(48 * time.Hour)
	second := New(storage, WithNow(func() time.Time { return later }))
	if len(second.Items()) != 0 {
		t.Fatalf("expected expired cart to restore empty, got %d lines", len(second.Items()))
	}
	if _, err := storage.Get("butikku:cart"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected expired cart key to be deleted, got %v", err)
	}
}

func TestEmptyCartDeletesStorageKey(t *testing.T) {
	storage := NewMemoryStorage()
	s := New(storage)

	s.AddToCart(testItem("p1", "M", "kaos", 100000, 1))
	if _, err := storage.Get("butikku:cart"); err != nil {
		t.Fatalf("expected persisted cart key, got %v", err)
	}

	s.RemoveFromCart("p1-M")
	if _, err := storage.Get("butikku:cart"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected cart key to be deleted when empty, got %v", err)
	}
}

func TestSubscribersNotifiedSynchronously(t *testing.T) {
	s := New(NewMemoryStorage())

	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	s.AddToCart(testItem("p1", "M", "kaos", 100000, 1))
	s.ToggleItemSelection("p1-M")
	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}

	unsubscribe()
	s.RemoveFromCart("p1-M")
	if calls != 2 {
		t.Fatalf("expected no notification after unsubscribe, got %d", calls)
	}
}

func TestBuildSubmissionUsesSelectedLinesOnly(t *testing.T) {
	s := New(NewMemoryStorage())
	a := testItem("p1", "M", "kaos", 100000, 2)
	b := testItem("p2", "L", "kemeja", 150000, 1)

	s.AddToCart(a)
	s.AddToCart(b)
	s.ToggleItemSelection(a.Key())

	req, err := s.BuildSubmission(Contact{
		Email:          "pembeli@example.com",
		FullName:       "Budi Santoso",
		WhatsappNumber: "081234567890",
		Address:        "Jl. Merdeka 17",
		PostalCode:     "40115",
		PaymentMethod:  "transfer",
	})
	if err != nil {
		t.Fatalf("build submission: %v", err)
	}
	if len(req.Items) != 1 {
		t.Fatalf("expected 1 submitted item, got %d", len(req.Items))
	}
	if req.Items[0].ProductID != "p1" || req.Items[0].Quantity != 2 {
		t.Fatalf("unexpected submitted item %+v", req.Items[0])
	}
	if req.SubmissionKey == "" {
		t.Fatalf("expected a generated submission key")
	}

	// Building a submission must not touch the cart; only the explicit
	// post-success reset removes lines.
	if len(s.Items()) != 2 {
		t.Fatalf("expected cart still holding 2 lines, got %d", len(s.Items()))
	}

	s.RemoveSelectedItems()
	items := s.Items()
	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Fatalf("expected only the unselected line to remain, got %+v", items)
	}
}

func TestBuildSubmissionRequiresSelection(t *testing.T) {
	s := New(NewMemoryStorage())
	s.AddToCart(testItem("p1", "M", "kaos", 100000, 1))

	if _, err := s.BuildSubmission(Contact{}); err == nil {
		t.Fatalf("expected error when nothing is selected")
	}
}
