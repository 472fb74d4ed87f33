package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"butikku/backend/internal/cache"
	"butikku/backend/internal/domain"
	"butikku/backend/internal/notify"
	"butikku/backend/internal/pricing"
	"butikku/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const (
	catalogCacheKey = "catalog:v1"
	catalogCacheTTL = 2 * time.Minute
)

type Service struct {
	repo     store.Repository
	catalog  cache.ProductCache
	notifier notify.Sender
}

func New(repo store.Repository, catalog cache.ProductCache, notifier notify.Sender) *Service {
	if catalog == nil {
		catalog = cache.NoopProductCache{}
	}

	return &Service{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if cached, ok, err := s.catalog.GetCatalog(ctx, catalogCacheKey); err != nil {
		log.Printf("[service] WARN: catalog cache read failed: %v", err)
	} else if ok {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.SetCatalog(ctx, catalogCacheKey, products, catalogCacheTTL); err != nil {
		log.Printf("[service] WARN: catalog cache write failed: %v", err)
	}
	return products, nil
}

// ListAllProducts is the staff catalog view. It includes inactive products
// and bypasses the public catalog cache.
func (s *Service) ListAllProducts(ctx context.Context) ([]domain.Product, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return nil, fmt.Errorf("staff role required")
	}
	return s.repo.ListProducts(ctx, true)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.Product{}, fmt.Errorf("staff role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", store.ErrValidation)
	}
	if req.Category == "" {
		return domain.Product{}, fmt.Errorf("%w: product category is required", store.ErrValidation)
	}
	if req.Price < 1 {
		return domain.Product{}, fmt.Errorf("%w: product price must be positive", store.ErrValidation)
	}
	if req.Discount < 0 || req.Discount > 100 {
		return domain.Product{}, fmt.Errorf("%w: discount must be between 0 and 100", store.ErrValidation)
	}
	if err := validateSizes(req.Sizes); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Discount: req.Discount,
		Sizes:    req.Sizes,
		ImageURL: req.ImageURL,
		IsActive: true,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.Product{}, fmt.Errorf("staff role required")
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: product name is required", store.ErrValidation)
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, fmt.Errorf("%w: product category is required", store.ErrValidation)
		}
		updated.Category = category
	}
	if req.Price != nil {
		if *req.Price < 1 {
			return domain.Product{}, fmt.Errorf("%w: product price must be positive", store.ErrValidation)
		}
		updated.Price = *req.Price
	}
	if req.Discount != nil {
		if *req.Discount < 0 || *req.Discount > 100 {
			return domain.Product{}, fmt.Errorf("%w: discount must be between 0 and 100", store.ErrValidation)
		}
		updated.Discount = *req.Discount
	}
	if req.ImageURL != nil {
		updated.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	return *saved, nil
}

// ReplaceProductSizes is the admin-side size ledger writer. The order
// fulfillment path is the only other code allowed to mutate size quantities.
func (s *Service) ReplaceProductSizes(ctx context.Context, id string, sizes []domain.SizeEntry) (domain.Product, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.Product{}, fmt.Errorf("staff role required")
	}
	if err := validateSizes(sizes); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.repo.ReplaceProductSizes(ctx, id, sizes)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	return *updated, nil
}

func validateSizes(sizes []domain.SizeEntry) error {
	seen := make(map[string]bool, len(sizes))
	for _, entry := range sizes {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			return fmt.Errorf("%w: size label is required", store.ErrValidation)
		}
		if entry.Quantity < 0 {
			return fmt.Errorf("%w: size %s quantity must not be negative", store.ErrValidation, label)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate size label %s", store.ErrValidation, label)
		}
		seen[label] = true
	}
	return nil
}

// CreateOrder validates the submission, snapshots discounted unit prices, and
// computes the payable total. Stock quantities are deliberately not checked
// here; availability is enforced once, at fulfillment.
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	subtotal := int64(0)
	totalItems := 0
	for _, line := range req.Items {
		product, err := s.repo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Order{}, fmt.Errorf("%w: product %s", store.ErrNotFound, line.ProductID)
			}
			return domain.Order{}, err
		}
		if !product.IsActive {
			return domain.Order{}, fmt.Errorf("%w: product %s is no longer available", store.ErrConflict, product.Name)
		}
		if !hasSize(product.Sizes, line.SelectedSize) {
			return domain.Order{}, fmt.Errorf("%w: product %s has no size %s", store.ErrConflict, product.Name, line.SelectedSize)
		}

		unitPrice := product.DiscountedPrice
		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			SelectedSize: line.SelectedSize,
			Quantity:     line.Quantity,
			Price:        unitPrice,
		})
		subtotal += unitPrice * int64(line.Quantity)
		totalItems += line.Quantity
	}

	params, err := s.repo.GetPricingParameters(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	member := params.Member
	if !req.IsMember {
		member = domain.Adjustment{Value: 0, Type: domain.AdjustFixed}
	}
	total := pricing.ComputeTotal(subtotal, params.Shipping, params.Tax, params.Promo, member)

	order := domain.Order{
		Email:          strings.TrimSpace(req.Email),
		FullName:       strings.TrimSpace(req.FullName),
		WhatsappNumber: strings.TrimSpace(req.WhatsappNumber),
		Address:        strings.TrimSpace(req.Address),
		PostalCode:     strings.TrimSpace(req.PostalCode),
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		ReceiptImage:   req.ReceiptImage,
		SubmissionKey:  strings.TrimSpace(req.SubmissionKey),
		Items:          items,
		TotalPurchased: total,
		TotalItemsSold: totalItems,
		IsMember:       req.IsMember,
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.notifier.OrderCreated(ctx, *created); err != nil {
		log.Printf("[service] WARN: order created notification failed id=%s: %v", created.ID, err)
	}
	return *created, nil
}

func validateOrderRequest(req domain.OrderCreateRequest) error {
	required := []struct {
		value string
		field string
	}{
		{req.Email, "email"},
		{req.FullName, "fullname"},
		{req.WhatsappNumber, "whatsappNumber"},
		{req.Address, "address"},
		{req.PostalCode, "postalCode"},
		{req.PaymentMethod, "paymentMethod"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", store.ErrValidation, f.field)
		}
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", store.ErrValidation)
	}
	for _, line := range req.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			return fmt.Errorf("%w: item productId is required", store.ErrValidation)
		}
		if strings.TrimSpace(line.SelectedSize) == "" {
			return fmt.Errorf("%w: item selectedSize is required", store.ErrValidation)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: item quantity must be a positive integer", store.ErrValidation)
		}
	}
	return nil
}

func hasSize(sizes []domain.SizeEntry, label string) bool {
	for _, s := range sizes {
		if s.Label == label {
			return true
		}
	}
	return false
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) (domain.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	orders, total, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return domain.OrderListResponse{}, err
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	return domain.OrderListResponse{
		Data: orders,
		Pagination: domain.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateOrder applies a partial patch. Setting isPurchased=true routes through
// the fulfillment protocol, which decrements size ledgers exactly once per
// order. A patch that sets it on an already fulfilled order only updates the
// remaining fields.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return domain.Order{}, fmt.Errorf("%w: email is required", store.ErrValidation)
	}
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return domain.Order{}, fmt.Errorf("%w: fullname is required", store.ErrValidation)
	}

	if patch.IsPurchased != nil && *patch.IsPurchased {
		existing, err := s.repo.GetOrderByID(ctx, id)
		if err != nil {
			return domain.Order{}, err
		}
		wasPending := !existing.IsPurchased

		fulfilled, err := s.repo.FulfillOrder(ctx, id, patch)
		if err != nil {
			return domain.Order{}, err
		}
		if wasPending {
			s.invalidateCatalog(ctx)
			if err := s.notifier.OrderFulfilled(ctx, *fulfilled); err != nil {
				log.Printf("[service] WARN: order fulfilled notification failed id=%s: %v", fulfilled.ID, err)
			}
		}
		return *fulfilled, nil
	}

	updated, err := s.repo.UpdateOrderFields(ctx, id, patch)
	if err != nil {
		return domain.Order{}, err
	}
	return *updated, nil
}

func (s *Service) GetPricingParameters(ctx context.Context) (domain.PricingParameters, error) {
	params, err := s.repo.GetPricingParameters(ctx)
	if err != nil {
		return domain.PricingParameters{}, err
	}
	return *params, nil
}

func (s *Service) UpdatePricingParameters(ctx context.Context, params domain.PricingParameters) (domain.PricingParameters, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.PricingParameters{}, fmt.Errorf("staff role required")
	}
	if params.Shipping < 0 {
		return domain.PricingParameters{}, fmt.Errorf("%w: shipping must not be negative", store.ErrValidation)
	}
	for _, adj := range []struct {
		name string
		adj  domain.Adjustment
	}{
		{"tax", params.Tax},
		{"promo", params.Promo},
		{"member", params.Member},
	} {
		if adj.adj.Type != domain.AdjustPercentage && adj.adj.Type != domain.AdjustFixed {
			return domain.PricingParameters{}, fmt.Errorf("%w: %s type must be PERCENTAGE or FIXED", store.ErrValidation, adj.name)
		}
		if adj.adj.Value < 0 {
			return domain.PricingParameters{}, fmt.Errorf("%w: %s value must not be negative", store.ErrValidation, adj.name)
		}
	}

	saved, err := s.repo.UpdatePricingParameters(ctx, params)
	if err != nil {
		return domain.PricingParameters{}, err
	}
	return *saved, nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.catalog.InvalidateCatalog(ctx, catalogCacheKey); err != nil {
		log.Printf("[service] WARN: catalog cache invalidation failed: %v", err)
	}
}
