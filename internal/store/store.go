package store

import (
	"context"
	"errors"

	"butikku/backend/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

type Repository interface {
	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ReplaceProductSizes(ctx context.Context, productID string, sizes []domain.SizeEntry) (*domain.Product, error)
	FindOrderBySubmissionKey(ctx context.Context, key string) (*domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error)
	UpdateOrderFields(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error)
	FulfillOrder(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error)
	GetPricingParameters(ctx context.Context) (*domain.PricingParameters, error)
	UpdatePricingParameters(ctx context.Context, params domain.PricingParameters) (*domain.PricingParameters, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
