// Package cart implements the client-side shopping cart state machine with
// durable local persistence. A Store instance owns its state; nothing here is
// a package-level global.
package cart

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"butikku/backend/internal/domain"
)

const (
	cartKey      = "butikku:cart"
	selectionKey = "butikku:cart:selection"

	// DefaultExpiry bounds how long a persisted cart survives between visits.
	DefaultExpiry = 24 * time.Hour
)

// Item is one cart line. Lines are keyed by product and size, so the same
// product in two sizes occupies two lines.
type Item struct {
	ProductID       string  `json:"productId"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Price           int64   `json:"price"`
	Discount        float64 `json:"discount"`
	DiscountedPrice int64   `json:"discountedPrice"`
	SelectedSize    string  `json:"selectedSize"`
	Quantity        int     `json:"quantity"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}

func (i Item) Key() string {
	return i.ProductID + "-" + i.SelectedSize
}

// UnitPrice is the price a line contributes per unit to the display subtotal.
func (i Item) UnitPrice() int64 {
	if i.Discount > 0 {
		return i.DiscountedPrice
	}
	return i.Price
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresIn int64           `json:"expiresIn"`
}

// Contact carries the buyer fields merged into a cart submission.
type Contact struct {
	Email          string
	FullName       string
	WhatsappNumber string
	Address        string
	PostalCode     string
	PaymentMethod  string
	ReceiptImage   string
	IsMember       bool
}

type Option func(*Store)

// WithExpiry overrides the persisted cart lifetime.
func WithExpiry(d time.Duration) Option {
	return func(s *Store) { s.expiresIn = d }
}

// WithNow overrides the clock. Tests use it to age a persisted cart.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	mu        sync.Mutex
	storage   Storage
	items     map[string]Item
	selected  map[string]bool
	subs      map[int]func()
	nextSubID int
	expiresIn time.Duration
	now       func() time.Time
}

// New builds a cart store backed by the given storage, restoring any
// unexpired persisted state. Expired state is discarded and its keys deleted.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		items:     make(map[string]Item),
		selected:  make(map[string]bool),
		subs:      make(map[int]func()),
		expiresIn: DefaultExpiry,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := loadInto(storage, cartKey, s.now(), &s.items); err != nil {
		log.Printf("[cart] WARN: failed to restore cart: %v", err)
	}
	if err := loadInto(storage, selectionKey, s.now(), &s.selected); err != nil {
		log.Printf("[cart] WARN: failed to restore selection: %v", err)
	}
	// Selection keys for lines that no longer exist are dropped.
	for key := range s.selected {
		if _, ok := s.items[key]; !ok {
			delete(s.selected, key)
		}
	}
	return s
}

func loadInto(storage Storage, key string, now time.Time, target any) error {
	raw, err := storage.Get(key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = storage.Delete(key)
		return err
	}
	if now.UnixMilli()-env.Timestamp > env.ExpiresIn {
		return storage.Delete(key)
	}
	return json.Unmarshal(env.Data, target)
}

// Subscribe registers a callback invoked synchronously after every mutation.
// The returned function unregisters it.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// AddToCart inserts a line or merges quantities when the same product and
// size is already present. Adds with a non-positive quantity are ignored.
func (s *Store) AddToCart(item Item) {
	if item.Quantity <= 0 {
		return
	}

	s.mu.Lock()
	key := item.Key()
	if existing, ok := s.items[key]; ok {
		existing.Quantity += item.Quantity
		s.items[key] = existing
	} else {
		s.items[key] = item
	}
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line
// and its selection.
func (s *Store) UpdateQuantity(key string, quantity int) {
	s.mu.Lock()
	item, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	if quantity <= 0 {
		delete(s.items, key)
		delete(s.selected, key)
	} else {
		item.Quantity = quantity
		s.items[key] = item
	}
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

func (s *Store) RemoveFromCart(key string) {
	s.mu.Lock()
	if _, ok := s.items[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.items, key)
	delete(s.selected, key)
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

func (s *Store) ToggleItemSelection(key string) {
	s.mu.Lock()
	if _, ok := s.items[key]; !ok {
		s.mu.Unlock()
		return
	}
	if s.selected[key] {
		delete(s.selected, key)
	} else {
		s.selected[key] = true
	}
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

// ToggleCategorySelection is all-or-nothing: if every line in the category is
// selected, all are deselected; otherwise all become selected.
func (s *Store) ToggleCategorySelection(category string) {
	s.mu.Lock()
	keys := s.categoryKeysLocked(category)
	if len(keys) == 0 {
		s.mu.Unlock()
		return
	}
	allSelected := true
	for _, key := range keys {
		if !s.selected[key] {
			allSelected = false
			break
		}
	}
	for _, key := range keys {
		if allSelected {
			delete(s.selected, key)
		} else {
			s.selected[key] = true
		}
	}
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

func (s *Store) SelectAllItems() {
	s.mu.Lock()
	for key := range s.items {
		s.selected[key] = true
	}
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

func (s *Store) DeselectAllItems() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

// RemoveSelectedItems clears the selected lines. It is the post-submission
// reset: a failed submission leaves the cart intact because nothing calls it.
func (s *Store) RemoveSelectedItems() {
	s.mu.Lock()
	for key := range s.selected {
		delete(s.items, key)
	}
	s.selected = make(map[string]bool)
	s.persistLocked()
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key() < items[j].Key()
	})
	return items
}

func (s *Store) IsSelected(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[key]
}

func (s *Store) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.selected {
		count += s.items[key].Quantity
	}
	return count
}

func (s *Store) SelectedTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int64(0)
	for key := range s.selected {
		item := s.items[key]
		total += item.UnitPrice() * int64(item.Quantity)
	}
	return total
}

// IsCategorySelected reports whether every line in the category is selected.
// An empty category is never selected.
func (s *Store) IsCategorySelected(category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.categoryKeysLocked(category)
	if len(keys) == 0 {
		return false
	}
	for _, key := range keys {
		if !s.selected[key] {
			return false
		}
	}
	return true
}

// IsCategoryPartiallySelected reports whether the category has at least one
// selected line but not all of them.
func (s *Store) IsCategoryPartiallySelected(category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.categoryKeysLocked(category)
	selected := 0
	for _, key := range keys {
		if s.selected[key] {
			selected++
		}
	}
	return selected > 0 && selected < len(keys)
}

// BuildSubmission assembles the order creation payload from the selected
// lines. It does not mutate the cart; call RemoveSelectedItems after the
// submission succeeds.
func (s *Store) BuildSubmission(contact Contact) (domain.OrderCreateRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == 0 {
		return domain.OrderCreateRequest{}, errors.New("no items selected")
	}

	keys := make([]string, 0, len(s.selected))
	for key := range s.selected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]domain.OrderItemRequest, 0, len(keys))
	for _, key := range keys {
		item := s.items[key]
		items = append(items, domain.OrderItemRequest{
			ProductID:    item.ProductID,
			SelectedSize: item.SelectedSize,
			Quantity:     item.Quantity,
		})
	}

	return domain.OrderCreateRequest{
		Email:          contact.Email,
		FullName:       contact.FullName,
		WhatsappNumber: contact.WhatsappNumber,
		Address:        contact.Address,
		PostalCode:     contact.PostalCode,
		PaymentMethod:  contact.PaymentMethod,
		ReceiptImage:   contact.ReceiptImage,
		IsMember:       contact.IsMember,
		SubmissionKey:  uuid.NewString(),
		Items:          items,
	}, nil
}

func (s *Store) categoryKeysLocked(category string) []string {
	keys := make([]string, 0, len(s.items))
	for key, item := range s.items {
		if item.Category == category {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// persistLocked writes both namespaced keys. An empty collection deletes its
// key instead of storing an empty envelope.
func (s *Store) persistLocked() {
	s.persistValueLocked(cartKey, s.items, len(s.items) == 0)
	s.persistValueLocked(selectionKey, s.selected, len(s.selected) == 0)
}

func (s *Store) persistValueLocked(key string, value any, empty bool) {
	if empty {
		if err := s.storage.Delete(key); err != nil {
			log.Printf("[cart] WARN: failed to delete %s: %v", key, err)
		}
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[cart] WARN: failed to encode %s: %v", key, err)
		return
	}
	env := envelope{
		Data:      data,
		Timestamp: s.now().UnixMilli(),
		ExpiresIn: s.expiresIn.Milliseconds(),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("[cart] WARN: failed to encode %s envelope: %v", key, err)
		return
	}
	if err := s.storage.Set(key, raw); err != nil {
		log.Printf("[cart] WARN: failed to persist %s: %v", key, err)
	}
}

func (s *Store) snapshotSubsLocked() []func() {
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
