package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"butikku/backend/internal/cache"
	"butikku/backend/internal/domain"
	"butikku/backend/internal/notify"
	"butikku/backend/internal/store"
	"butikku/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopProductCache{}, notify.NewLogSender())
}

func staffContext() context.Context {
	return WithActor(context.Background(), domain.Actor{
		Username: "admin",
		Role:     "admin",
	})
}

func createTestProduct(t *testing.T, svc *Service, name string, price int64, sizes []domain.SizeEntry) domain.Product {
	t.Helper()
	product, err := svc.CreateProduct(staffContext(), domain.ProductCreateRequest{
		Name:     name,
		Category: "kaos",
		Price:    price,
		Sizes:    sizes,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func orderRequest(items ...domain.OrderItemRequest) domain.OrderCreateRequest {
	return domain.OrderCreateRequest{
		Email:          "pembeli@example.com",
		FullName:       "Budi Santoso",
		WhatsappNumber: "081234567890",
		Address:        "Jl. Merdeka 17",
		PostalCode:     "40115",
		PaymentMethod:  "transfer",
		Items:          items,
	}
}

func TestCreateOrderRequiresContactFields(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Kontak", 100000, []domain.SizeEntry{{Label: "M", Quantity: 5}})

	req := orderRequest(domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 1})
	req.Email = "  "

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected error to name the email field, got %q", err.Error())
	}
}

func TestCreateOrderRequiresItems(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateOrder(context.Background(), orderRequest())
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Qty", 100000, []domain.SizeEntry{{Label: "M", Quantity: 5}})

	_, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 0},
	))
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: "prod-does-not-exist", SelectedSize: "M", Quantity: 1},
	))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreateOrderUnknownSizeNamesProductAndSize(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Ukuran", 100000, []domain.SizeEntry{{Label: "M", Quantity: 5}})

	_, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "XXL", Quantity: 1},
	))
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Kaos Uji Ukuran") || !strings.Contains(err.Error(), "XXL") {
		t.Fatalf("expected error to name product and size, got %q", err.Error())
	}
}

func TestCreateOrderDoesNotCheckAvailability(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Stok", 100000, []domain.SizeEntry{{Label: "M", Quantity: 2}})

	order, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 50},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.IsPurchased {
		t.Fatalf("expected new order to be pending")
	}
	if order.TotalItemsSold != 50 {
		t.Fatalf("expected totalItemsSold 50, got %d", order.TotalItemsSold)
	}
}

func TestCreateOrderComputesMemberTotal(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kemeja Uji Harga", 500000, []domain.SizeEntry{{Label: "L", Quantity: 3}})

	_, err := svc.UpdatePricingParameters(staffContext(), domain.PricingParameters{
		Shipping: 20000,
		Tax:      domain.Adjustment{Value: 11, Type: domain.AdjustPercentage},
		Promo:    domain.Adjustment{Value: 50000, Type: domain.AdjustFixed},
		Member:   domain.Adjustment{Value: 10, Type: domain.AdjustPercentage},
	})
	if err != nil {
		t.Fatalf("update parameters: %v", err)
	}

	req := orderRequest(domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "L", Quantity: 1})
	req.IsMember = true
	order, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.TotalPurchased != 464000 {
		t.Fatalf("expected total 464000, got %d", order.TotalPurchased)
	}

	// The same order without membership skips the member discount.
	req = orderRequest(domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "L", Quantity: 1})
	order, err = svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.TotalPurchased != 519500 {
		t.Fatalf("expected non-member total 519500, got %d", order.TotalPurchased)
	}
}

func TestCreateOrderSnapshotsDiscountedPrice(t *testing.T) {
	svc := newTestService()
	product, err := svc.CreateProduct(staffContext(), domain.ProductCreateRequest{
		Name:     "Kaos Uji Diskon",
		Category: "kaos",
		Price:    100000,
		Discount: 25,
		Sizes:    []domain.SizeEntry{{Label: "M", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Items[0].Price != 75000 {
		t.Fatalf("expected snapshotted unit price 75000, got %d", order.Items[0].Price)
	}
}

func TestFulfillOrderDecrementsExactlyOnce(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kemeja Uji Fulfill", 150000, []domain.SizeEntry{
		{Label: "M", Quantity: 5},
		{Label: "L", Quantity: 3},
	})

	order, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	purchased := true
	fulfilled, err := svc.UpdateOrder(staffContext(), order.ID, domain.OrderPatch{IsPurchased: &purchased})
	if err != nil {
		t.Fatalf("fulfill order: %v", err)
	}
	if !fulfilled.IsPurchased {
		t.Fatalf("expected order to be purchased")
	}

	after, err := svc.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if qty := sizeQty(after, "M"); qty != 3 {
		t.Fatalf("expected size M quantity 3, got %d", qty)
	}
	if after.Stock != 6 {
		t.Fatalf("expected stock 6 after decrement, got %d", after.Stock)
	}

	// Re-sending the fulfillment patch must not decrement again.
	if _, err := svc.UpdateOrder(staffContext(), order.ID, domain.OrderPatch{IsPurchased: &purchased}); err != nil {
		t.Fatalf("second fulfill: %v", err)
	}
	after, err = svc.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if qty := sizeQty(after, "M"); qty != 3 {
		t.Fatalf("expected size M quantity unchanged at 3, got %d", qty)
	}
}

func TestFulfillOrderInsufficientStock(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Kurang", 80000, []domain.SizeEntry{{Label: "S", Quantity: 2}})

	order, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "S", Quantity: 3},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	purchased := true
	_, err = svc.UpdateOrder(staffContext(), order.ID, domain.OrderPatch{IsPurchased: &purchased})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Kaos Uji Kurang") || !strings.Contains(err.Error(), "S") {
		t.Fatalf("expected error to name product and size, got %q", err.Error())
	}

	after, err := svc.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if qty := sizeQty(after, "S"); qty != 2 {
		t.Fatalf("expected size S quantity unchanged at 2, got %d", qty)
	}

	pending, err := svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if pending.IsPurchased {
		t.Fatalf("expected order to remain pending after failed fulfillment")
	}
}

func TestFulfillOrderConflictOnSecondLineLeavesFirstProductUntouched(t *testing.T) {
	svc := newTestService()
	first := createTestProduct(t, svc, "Kaos Uji Baris Satu", 80000, []domain.SizeEntry{{Label: "M", Quantity: 5}})
	second := createTestProduct(t, svc, "Kaos Uji Baris Dua", 90000, []domain.SizeEntry{{Label: "S", Quantity: 1}})

	order, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: first.ID, SelectedSize: "M", Quantity: 2},
		domain.OrderItemRequest{ProductID: second.ID, SelectedSize: "S", Quantity: 4},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	purchased := true
	_, err = svc.UpdateOrder(staffContext(), order.ID, domain.OrderPatch{IsPurchased: &purchased})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Kaos Uji Baris Dua") {
		t.Fatalf("expected error to name the short product, got %q", err.Error())
	}

	// The satisfiable first line must not have been decremented.
	untouched, err := svc.GetProduct(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if qty := sizeQty(untouched, "M"); qty != 5 {
		t.Fatalf("expected first product size M quantity unchanged at 5, got %d", qty)
	}
	if untouched.Stock != 5 {
		t.Fatalf("expected first product stock unchanged at 5, got %d", untouched.Stock)
	}

	short, err := svc.GetProduct(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if qty := sizeQty(short, "S"); qty != 1 {
		t.Fatalf("expected second product size S quantity unchanged at 1, got %d", qty)
	}

	pending, err := svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if pending.IsPurchased {
		t.Fatalf("expected order to remain pending after failed fulfillment")
	}
}

func TestUpdateOrderPatchWithoutFulfillment(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Patch", 90000, []domain.SizeEntry{{Label: "M", Quantity: 4}})

	order, err := svc.CreateOrder(context.Background(), orderRequest(
		domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	address := "Jl. Baru 99"
	updated, err := svc.UpdateOrder(staffContext(), order.ID, domain.OrderPatch{Address: &address})
	if err != nil {
		t.Fatalf("update order: %v", err)
	}
	if updated.Address != "Jl. Baru 99" {
		t.Fatalf("expected updated address, got %q", updated.Address)
	}
	if updated.IsPurchased {
		t.Fatalf("expected order to stay pending")
	}

	after, err := svc.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if qty := sizeQty(after, "M"); qty != 4 {
		t.Fatalf("expected size M quantity unchanged at 4, got %d", qty)
	}
}

func TestCreateOrderSubmissionKeyDedupe(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Idem", 70000, []domain.SizeEntry{{Label: "M", Quantity: 5}})

	req := orderRequest(domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 1})
	req.SubmissionKey = "sub-idem-1"

	first, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected retried submission to return the same order, got %s and %s", first.ID, second.ID)
	}
}

func TestListOrdersPagination(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Halaman", 60000, []domain.SizeEntry{{Label: "M", Quantity: 100}})

	for i := 0; i < 5; i++ {
		_, err := svc.CreateOrder(context.Background(), orderRequest(
			domain.OrderItemRequest{ProductID: product.ID, SelectedSize: "M", Quantity: 1},
		))
		if err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}

	resp, err := svc.ListOrders(staffContext(), domain.OrderFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 orders on page 2, got %d", len(resp.Data))
	}
	if resp.Pagination.Total != 5 {
		t.Fatalf("expected total 5, got %d", resp.Pagination.Total)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", resp.Pagination.TotalPages)
	}
}

func TestListAllProductsIncludesInactive(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Arsip", 50000, []domain.SizeEntry{{Label: "M", Quantity: 2}})

	inactive := false
	if _, err := svc.UpdateProduct(staffContext(), product.ID, domain.ProductUpdateRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	public, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	for _, p := range public {
		if p.ID == product.ID {
			t.Fatalf("expected inactive product to be hidden from the public catalog")
		}
	}

	all, err := svc.ListAllProducts(staffContext())
	if err != nil {
		t.Fatalf("list all products: %v", err)
	}
	found := false
	for _, p := range all {
		if p.ID == product.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected inactive product in the staff catalog view")
	}

	if _, err := svc.ListAllProducts(context.Background()); err == nil {
		t.Fatalf("expected staff catalog view to require an actor")
	}
}

func TestReplaceProductSizesRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	product := createTestProduct(t, svc, "Kaos Uji Label", 50000, []domain.SizeEntry{{Label: "M", Quantity: 5}})

	_, err := svc.ReplaceProductSizes(staffContext(), product.ID, []domain.SizeEntry{
		{Label: "M", Quantity: 3},
		{Label: "M", Quantity: 2},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePricingParametersRejectsUnknownType(t *testing.T) {
	svc := newTestService()

	_, err := svc.UpdatePricingParameters(staffContext(), domain.PricingParameters{
		Shipping: 10000,
		Tax:      domain.Adjustment{Value: 11, Type: "GIFT"},
		Promo:    domain.Adjustment{Value: 0, Type: domain.AdjustFixed},
		Member:   domain.Adjustment{Value: 10, Type: domain.AdjustPercentage},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func sizeQty(p domain.Product, label string) int {
	for _, s := range p.Sizes {
		if s.Label == label {
			return s.Quantity
		}
	}
	return -1
}
