package domain

import "time"

// AdjustmentType selects how a pricing adjustment value is interpreted.
const (
	AdjustPercentage = "PERCENTAGE"
	AdjustFixed      = "FIXED"
)

// Adjustment is one tax/promo/member pricing parameter. PERCENTAGE values are
// clamped to [0,100] at computation time; FIXED values are taken at face value.
type Adjustment struct {
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// PricingParameters is the admin-editable configuration consumed by the
// pricing engine. Shipping is always a flat amount.
type PricingParameters struct {
	Shipping  int64      `json:"shipping"`
	Tax       Adjustment `json:"tax"`
	Promo     Adjustment `json:"promo"`
	Member    Adjustment `json:"member"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// SizeEntry is one row of a product's size ledger. Labels are unique per
// product; Quantity never goes below zero.
type SizeEntry struct {
	Label    string `json:"size"`
	Quantity int    `json:"quantity"`
}

type Product struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Category        string      `json:"category"`
	Price           int64       `json:"price"`
	Discount        float64     `json:"discount"`
	DiscountedPrice int64       `json:"discountedPrice"`
	Sizes           []SizeEntry `json:"sizes"`
	Stock           int         `json:"stock"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	IsActive        bool        `json:"isActive"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type ProductCreateRequest struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    int64       `json:"price"`
	Discount float64     `json:"discount"`
	Sizes    []SizeEntry `json:"sizes"`
	ImageURL string      `json:"imageUrl"`
}

type ProductUpdateRequest struct {
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	Price    *int64   `json:"price,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
	ImageURL *string  `json:"imageUrl,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
}

// OrderItem is a persisted cart line attached to an order. Price is the
// discounted unit price snapshotted at order creation.
type OrderItem struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName,omitempty"`
	SelectedSize string `json:"selectedSize"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
}

// Order is the guest purchase aggregate. IsPurchased flips false→true at most
// once; that flip is the only event allowed to mutate a size ledger.
type Order struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	FullName       string      `json:"fullname"`
	WhatsappNumber string      `json:"whatsappNumber"`
	Address        string      `json:"address"`
	PostalCode     string      `json:"postalCode"`
	PaymentMethod  string      `json:"paymentMethod"`
	ReceiptImage   string      `json:"receiptImage,omitempty"`
	SubmissionKey  string      `json:"-"`
	Items          []OrderItem `json:"items"`
	TotalPurchased int64       `json:"totalPurchased"`
	TotalItemsSold int         `json:"totalItemsSold"`
	IsPurchased    bool        `json:"isPurchased"`
	IsMember       bool        `json:"isMember"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type OrderItemRequest struct {
	ProductID    string `json:"productId"`
	SelectedSize string `json:"selectedSize"`
	Quantity     int    `json:"quantity"`
}

type OrderCreateRequest struct {
	Email          string             `json:"email"`
	FullName       string             `json:"fullname"`
	WhatsappNumber string             `json:"whatsappNumber"`
	Address        string             `json:"address"`
	PostalCode     string             `json:"postalCode"`
	PaymentMethod  string             `json:"paymentMethod"`
	ReceiptImage   string             `json:"receiptImage"`
	IsMember       bool               `json:"isMember"`
	SubmissionKey  string             `json:"submissionKey,omitempty"`
	Items          []OrderItemRequest `json:"items"`
}

// OrderPatch carries the partial update body of PUT /orders/{id}. Nil fields
// are left untouched.
type OrderPatch struct {
	Email          *string `json:"email,omitempty"`
	FullName       *string `json:"fullname,omitempty"`
	WhatsappNumber *string `json:"whatsappNumber,omitempty"`
	Address        *string `json:"address,omitempty"`
	PostalCode     *string `json:"postalCode,omitempty"`
	PaymentMethod  *string `json:"paymentMethod,omitempty"`
	ReceiptImage   *string `json:"receiptImage,omitempty"`
	IsPurchased    *bool   `json:"isPurchased,omitempty"`
}

// OrderFilter selects orders for the paginated listing.
type OrderFilter struct {
	Page        int
	Limit       int
	IsPurchased *bool
	Search      string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type OrderListResponse struct {
	Data       []Order    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// StaffUser is the credential view returned by the admin user endpoints. It
// never carries the password hash.
type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
