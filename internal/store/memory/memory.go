package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"butikku/backend/internal/domain"
	"butikku/backend/internal/pricing"
	"butikku/backend/internal/store"
	"butikku/backend/internal/xid"
)

type Store struct {
	mu                sync.RWMutex
	products          map[string]domain.Product
	ordersByID        map[string]*domain.Order
	ordersBySubmitKey map[string]*domain.Order
	params            domain.PricingParameters
	usersByUsername   map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD. If
// unset, hardcoded dev defaults are used with a warning printed to stdout.
// These credentials are never used in production (the backend uses
// PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	seeds := []domain.Product{
		{Name: "Kemeja Flanel Kotak", Category: "kemeja", Price: 189000, Discount: 10},
		{Name: "Kemeja Oxford Putih", Category: "kemeja", Price: 215000, Discount: 0},
		{Name: "Kaos Polos Hitam", Category: "kaos", Price: 79000, Discount: 0},
		{Name: "Kaos Grafis Senja", Category: "kaos", Price: 99000, Discount: 15},
		{Name: "Celana Chino Khaki", Category: "celana", Price: 245000, Discount: 0},
		{Name: "Celana Jeans Slim", Category: "celana", Price: 299000, Discount: 20},
		{Name: "Hoodie Fleece Abu", Category: "jaket", Price: 259000, Discount: 0},
		{Name: "Jaket Denim Klasik", Category: "jaket", Price: 329000, Discount: 5},
		{Name: "Rok Plisket Midi", Category: "rok", Price: 159000, Discount: 0},
		{Name: "Dress Linen Sage", Category: "dress", Price: 279000, Discount: 10},
	}

	products := make(map[string]domain.Product, len(seeds))
	for _, p := range seeds {
		p.ID = xid.New("prod")
		p.Sizes = []domain.SizeEntry{
			{Label: "S", Quantity: 8},
			{Label: "M", Quantity: 12},
			{Label: "L", Quantity: 10},
			{Label: "XL", Quantity: 6},
		}
		p.Stock = sumSizes(p.Sizes)
		p.DiscountedPrice = pricing.DiscountedPrice(p.Price, p.Discount)
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		products[p.ID] = p
	}

	return &Store{
		products:          products,
		ordersByID:        make(map[string]*domain.Order),
		ordersBySubmitKey: make(map[string]*domain.Order),
		params: domain.PricingParameters{
			Shipping:  envInt64Or("DEFAULT_SHIPPING_FEE", 20000),
			Tax:       domain.Adjustment{Value: 11, Type: domain.AdjustPercentage},
			Promo:     domain.Adjustment{Value: 0, Type: domain.AdjustFixed},
			Member:    domain.Adjustment{Value: 10, Type: domain.AdjustPercentage},
			UpdatedAt: now,
		},
		usersByUsername: seedUsers(),
	}
}

func sumSizes(sizes []domain.SizeEntry) int {
	total := 0
	for _, s := range sizes {
		total += s.Quantity
	}
	return total
}

func cloneProduct(p domain.Product) domain.Product {
	out := p
	out.Sizes = make([]domain.SizeEntry, len(p.Sizes))
	copy(out.Sizes, p.Sizes)
	return out
}

func cloneOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = make([]domain.OrderItem, len(o.Items))
	copy(out.Items, o.Items)
	return &out
}

func (s *Store) ListProducts(_ context.Context, includeInactive bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsActive && !includeInactive {
			continue
		}
		products = append(products, cloneProduct(p))
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	product.Stock = sumSizes(product.Sizes)
	product.DiscountedPrice = pricing.DiscountedPrice(product.Price, product.Discount)
	product.CreatedAt = now
	product.UpdatedAt = now

	s.products[product.ID] = cloneProduct(product)
	created := cloneProduct(product)
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}

	product.Sizes = existing.Sizes
	product.Stock = existing.Stock
	product.DiscountedPrice = pricing.DiscountedPrice(product.Price, product.Discount)
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	s.products[product.ID] = cloneProduct(product)
	updated := cloneProduct(product)
	return &updated, nil
}

func (s *Store) ReplaceProductSizes(_ context.Context, productID string, sizes []domain.SizeEntry) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}

	seen := make(map[string]bool, len(sizes))
	for _, entry := range sizes {
		if entry.Label == "" {
			return nil, fmt.Errorf("%w: size label is required", store.ErrValidation)
		}
		if entry.Quantity < 0 {
			return nil, fmt.Errorf("%w: size %s quantity must not be negative", store.ErrValidation, entry.Label)
		}
		if seen[entry.Label] {
			return nil, fmt.Errorf("%w: duplicate size label %s", store.ErrValidation, entry.Label)
		}
		seen[entry.Label] = true
	}

	p.Sizes = make([]domain.SizeEntry, len(sizes))
	copy(p.Sizes, sizes)
	p.Stock = sumSizes(p.Sizes)
	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p

	updated := cloneProduct(p)
	return &updated, nil
}

func (s *Store) FindOrderBySubmissionKey(_ context.Context, key string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.ordersBySubmitKey[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

// CreateOrder validates that every line references a live product and a size
// that exists on its ledger, but deliberately does not check quantities:
// availability is only enforced at fulfillment time.
func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.SubmissionKey != "" {
		if existing, ok := s.ordersBySubmitKey[order.SubmissionKey]; ok {
			return cloneOrder(existing), nil
		}
	}

	for _, item := range order.Items {
		p, ok := s.products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, item.ProductID)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: product %s is no longer available", store.ErrConflict, p.Name)
		}
		if !hasSize(p.Sizes, item.SelectedSize) {
			return nil, fmt.Errorf("%w: product %s has no size %s", store.ErrConflict, p.Name, item.SelectedSize)
		}
	}

	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = xid.New("order")
	}
	order.IsPurchased = false
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := cloneOrder(&order)
	s.ordersByID[order.ID] = stored
	if order.SubmissionKey != "" {
		s.ordersBySubmitKey[order.SubmissionKey] = stored
	}
	return cloneOrder(stored), nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Order, 0, len(s.ordersByID))
	for _, o := range s.ordersByID {
		if filter.IsPurchased != nil && o.IsPurchased != *filter.IsPurchased {
			continue
		}
		if filter.DateFrom != nil && o.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && o.CreatedAt.After(*filter.DateTo) {
			continue
		}
		if filter.Search != "" && !matchesSearch(o, filter.Search) {
			continue
		}
		matched = append(matched, *cloneOrder(o))
	}

	slices.SortFunc(matched, func(a, b domain.Order) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})

	total := len(matched)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= total {
		return []domain.Order{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matchesSearch(o *domain.Order, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(o.Email), q) ||
		strings.Contains(strings.ToLower(o.FullName), q) ||
		strings.Contains(o.WhatsappNumber, q)
}

func (s *Store) UpdateOrderFields(_ context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	applyPatch(o, patch)
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

// FulfillOrder flips an order to purchased and decrements every referenced
// size ledger in one critical section. If any line cannot be satisfied, no
// ledger is touched. Calling it on an already-purchased order applies the
// non-stock fields only.
func (s *Store) FulfillOrder(_ context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	if o.IsPurchased {
		applyPatch(o, patch)
		o.UpdatedAt = time.Now().UTC()
		return cloneOrder(o), nil
	}

	// Validate every line before mutating anything.
	updated := make(map[string]domain.Product, len(o.Items))
	for _, item := range o.Items {
		p, exists := updated[item.ProductID]
		if !exists {
			stored, ok := s.products[item.ProductID]
			if !ok {
				return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, item.ProductID)
			}
			p = cloneProduct(stored)
		}
		idx := sizeIndex(p.Sizes, item.SelectedSize)
		if idx < 0 {
			return nil, fmt.Errorf("%w: product %s has no size %s", store.ErrConflict, p.Name, item.SelectedSize)
		}
		if p.Sizes[idx].Quantity < item.Quantity {
			return nil, fmt.Errorf("%w: insufficient stock for product %s size %s", store.ErrConflict, p.Name, item.SelectedSize)
		}
		p.Sizes[idx].Quantity -= item.Quantity
		updated[item.ProductID] = p
	}

	now := time.Now().UTC()
	for pid, p := range updated {
		p.Stock = sumSizes(p.Sizes)
		p.UpdatedAt = now
		s.products[pid] = p
	}

	applyPatch(o, patch)
	o.IsPurchased = true
	o.UpdatedAt = now
	return cloneOrder(o), nil
}

func applyPatch(o *domain.Order, patch domain.OrderPatch) {
	if patch.Email != nil {
		o.Email = *patch.Email
	}
	if patch.FullName != nil {
		o.FullName = *patch.FullName
	}
	if patch.WhatsappNumber != nil {
		o.WhatsappNumber = *patch.WhatsappNumber
	}
	if patch.Address != nil {
		o.Address = *patch.Address
	}
	if patch.PostalCode != nil {
		o.PostalCode = *patch.PostalCode
	}
	if patch.PaymentMethod != nil {
		o.PaymentMethod = *patch.PaymentMethod
	}
	if patch.ReceiptImage != nil {
		o.ReceiptImage = *patch.ReceiptImage
	}
}

func hasSize(sizes []domain.SizeEntry, label string) bool {
	return sizeIndex(sizes, label) >= 0
}

func sizeIndex(sizes []domain.SizeEntry, label string) int {
	for i, s := range sizes {
		if s.Label == label {
			return i
		}
	}
	return -1
}

func (s *Store) GetPricingParameters(_ context.Context) (*domain.PricingParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := s.params
	return &params, nil
}

func (s *Store) UpdatePricingParameters(_ context.Context, params domain.PricingParameters) (*domain.PricingParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params.UpdatedAt = time.Now().UTC()
	s.params = params
	out := params
	return &out, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return fmt.Errorf("%w: username %s already exists", store.ErrConflict, user.Username)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = password
	s.usersByUsername[username] = u
	return nil
}
