package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"butikku/backend/internal/domain"
	"butikku/backend/internal/pricing"
	"butikku/backend/internal/store"
	"butikku/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	query := `
		SELECT id, name, category, price, discount, image_url, is_active, created_at, updated_at
		FROM products
	`
	if !includeInactive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY category, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	ids := make([]string, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sizesByProduct, err := s.loadSizes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		attachSizes(&products[i], sizesByProduct[products[i].ID])
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, price, discount, image_url, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	sizesByProduct, err := s.loadSizes(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	attachSizes(p, sizesByProduct[id])
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price, discount, image_url, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, product.ID, product.Name, product.Category, product.Price, product.Discount, nullIfEmpty(product.ImageURL), product.IsActive, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: product %s already exists", store.ErrConflict, product.ID)
		}
		return nil, err
	}

	if err := insertSizes(ctx, tx, product.ID, product.Sizes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	product.Stock = sumSizes(product.Sizes)
	product.DiscountedPrice = pricing.DiscountedPrice(product.Price, product.Discount)
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, discount = $5, image_url = $6, is_active = $7, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.Price, product.Discount, nullIfEmpty(product.ImageURL), product.IsActive)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetProductByID(ctx, product.ID)
}

func (s *Store) ReplaceProductSizes(ctx context.Context, productID string, sizes []domain.SizeEntry) (*domain.Product, error) {
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

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT true FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_sizes WHERE product_id = $1`, productID); err != nil {
		return nil, err
	}
	if err := insertSizes(ctx, tx, productID, sizes); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE products SET updated_at = now() WHERE id = $1`, productID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetProductByID(ctx, productID)
}

func (s *Store) FindOrderBySubmissionKey(ctx context.Context, key string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE submission_key = $1
	`, key)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// CreateOrder inserts a pending order after checking that every line names a
// live product and an existing size label. Quantities are not checked here.
// A duplicate submission key returns the previously created order.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range order.Items {
		var name string
		var active bool
		err := tx.QueryRowContext(ctx, `
			SELECT name, is_active FROM products WHERE id = $1
		`, item.ProductID).Scan(&name, &active)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, item.ProductID)
			}
			return nil, err
		}
		if !active {
			return nil, fmt.Errorf("%w: product %s is no longer available", store.ErrConflict, name)
		}
		var hasSize bool
		err = tx.QueryRowContext(ctx, `
			SELECT true FROM product_sizes WHERE product_id = $1 AND label = $2
		`, item.ProductID, item.SelectedSize).Scan(&hasSize)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: product %s has no size %s", store.ErrConflict, name, item.SelectedSize)
			}
			return nil, err
		}
	}

	if order.ID == "" {
		order.ID = xid.New("order")
	}
	now := time.Now().UTC()
	order.IsPurchased = false
	order.CreatedAt = now
	order.UpdatedAt = now

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, email, full_name, whatsapp_number, address, postal_code,
			payment_method, receipt_image, submission_key, items,
			total_purchased, total_items_sold, is_purchased, is_member,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, order.ID, order.Email, order.FullName, order.WhatsappNumber, order.Address,
		order.PostalCode, order.PaymentMethod, nullIfEmpty(order.ReceiptImage),
		nullIfEmpty(order.SubmissionKey), itemsJSON, order.TotalPurchased,
		order.TotalItemsSold, order.IsPurchased, order.IsMember, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) && order.SubmissionKey != "" {
			return s.FindOrderBySubmissionKey(ctx, order.SubmissionKey)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := order
	return &created, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if filter.IsPurchased != nil {
		args = append(args, *filter.IsPurchased)
		conditions = append(conditions, fmt.Sprintf("is_purchased = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(lower(email) LIKE $%d OR lower(full_name) LIKE $%d OR whatsapp_number LIKE $%d)", n, n, n))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)
	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *Store) UpdateOrderFields(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	order, err := lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(order, patch)
	if err := updateOrderRow(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// FulfillOrder marks an order purchased and decrements the referenced size
// ledgers atomically. The order row and every touched size row are locked
// before validation so a concurrent fulfillment of the last unit cannot
// oversell. Fulfilling an already-purchased order only applies the non-stock
// patch fields.
func (s *Store) FulfillOrder(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	order, err := lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !order.IsPurchased {
		for _, item := range order.Items {
			var productName string
			err := tx.QueryRowContext(ctx, `
				SELECT name FROM products WHERE id = $1 FOR UPDATE
			`, item.ProductID).Scan(&productName)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, item.ProductID)
				}
				return nil, err
			}

			var available int
			err = tx.QueryRowContext(ctx, `
				SELECT quantity FROM product_sizes
				WHERE product_id = $1 AND label = $2
				FOR UPDATE
			`, item.ProductID, item.SelectedSize).Scan(&available)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, fmt.Errorf("%w: product %s has no size %s", store.ErrConflict, productName, item.SelectedSize)
				}
				return nil, err
			}
			if available < item.Quantity {
				return nil, fmt.Errorf("%w: insufficient stock for product %s size %s", store.ErrConflict, productName, item.SelectedSize)
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE product_sizes SET quantity = quantity - $3
				WHERE product_id = $1 AND label = $2
			`, item.ProductID, item.SelectedSize, item.Quantity)
			if err != nil {
				return nil, err
			}
			_, err = tx.ExecContext(ctx, `
				UPDATE products SET updated_at = now() WHERE id = $1
			`, item.ProductID)
			if err != nil {
				return nil, err
			}
		}
		order.IsPurchased = true
	}

	applyPatch(order, patch)
	if err := updateOrderRow(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Store) GetPricingParameters(ctx context.Context) (*domain.PricingParameters, error) {
	var params domain.PricingParameters
	err := s.db.QueryRowContext(ctx, `
		SELECT shipping, tax_value, tax_type, promo_value, promo_type, member_value, member_type, updated_at
		FROM pricing_parameters
		WHERE id = 1
	`).Scan(&params.Shipping, &params.Tax.Value, &params.Tax.Type,
		&params.Promo.Value, &params.Promo.Type,
		&params.Member.Value, &params.Member.Type, &params.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	params.UpdatedAt = params.UpdatedAt.UTC()
	return &params, nil
}

func (s *Store) UpdatePricingParameters(ctx context.Context, params domain.PricingParameters) (*domain.PricingParameters, error) {
	params.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_parameters (id, shipping, tax_value, tax_type, promo_value, promo_type, member_value, member_type, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			shipping = EXCLUDED.shipping,
			tax_value = EXCLUDED.tax_value,
			tax_type = EXCLUDED.tax_type,
			promo_value = EXCLUDED.promo_value,
			promo_type = EXCLUDED.promo_type,
			member_value = EXCLUDED.member_value,
			member_type = EXCLUDED.member_type,
			updated_at = EXCLUDED.updated_at
	`, params.Shipping, params.Tax.Value, params.Tax.Type,
		params.Promo.Value, params.Promo.Type,
		params.Member.Value, params.Member.Type, params.UpdatedAt)
	if err != nil {
		return nil, err
	}
	out := params
	return &out, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return fmt.Errorf("%w: username and password are required", store.ErrValidation)
	}
	if user.Role == "" {
		user.Role = "staff"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s already exists", store.ErrConflict, user.Username)
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: username and password are required", store.ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const orderColumns = `
	id, email, full_name, whatsapp_number, address, postal_code,
	payment_method, receipt_image, submission_key, items,
	total_purchased, total_items_sold, is_purchased, is_member,
	created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var receiptImage, submissionKey sql.NullString
	var itemsRaw []byte
	err := row.Scan(&order.ID, &order.Email, &order.FullName, &order.WhatsappNumber,
		&order.Address, &order.PostalCode, &order.PaymentMethod, &receiptImage,
		&submissionKey, &itemsRaw, &order.TotalPurchased, &order.TotalItemsSold,
		&order.IsPurchased, &order.IsMember, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if receiptImage.Valid {
		order.ReceiptImage = receiptImage.String
	}
	if submissionKey.Valid {
		order.SubmissionKey = submissionKey.String
	}
	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &order.Items); err != nil {
			return nil, err
		}
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return &order, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var imageURL sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Discount,
		&imageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	p.DiscountedPrice = pricing.DiscountedPrice(p.Price, p.Discount)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (s *Store) loadSizes(ctx context.Context, productIDs []string) (map[string][]domain.SizeEntry, error) {
	result := make(map[string][]domain.SizeEntry, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, label, quantity
		FROM product_sizes
		WHERE product_id = ANY($1)
		ORDER BY product_id, position
	`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var entry domain.SizeEntry
		if err := rows.Scan(&productID, &entry.Label, &entry.Quantity); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func attachSizes(p *domain.Product, sizes []domain.SizeEntry) {
	if sizes == nil {
		sizes = []domain.SizeEntry{}
	}
	p.Sizes = sizes
	p.Stock = sumSizes(sizes)
}

func insertSizes(ctx context.Context, tx *sql.Tx, productID string, sizes []domain.SizeEntry) error {
	for i, entry := range sizes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_sizes (product_id, label, quantity, position)
			VALUES ($1,$2,$3,$4)
		`, productID, entry.Label, entry.Quantity, i)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate size label %s", store.ErrValidation, entry.Label)
			}
			return err
		}
	}
	return nil
}

func lockOrder(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func updateOrderRow(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET email = $2, full_name = $3, whatsapp_number = $4, address = $5,
			postal_code = $6, payment_method = $7, receipt_image = $8,
			is_purchased = $9, updated_at = $10
		WHERE id = $1
	`, order.ID, order.Email, order.FullName, order.WhatsappNumber, order.Address,
		order.PostalCode, order.PaymentMethod, nullIfEmpty(order.ReceiptImage),
		order.IsPurchased, order.UpdatedAt)
	return err
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

func sumSizes(sizes []domain.SizeEntry) int {
	total := 0
	for _, s := range sizes {
		total += s.Quantity
	}
	return total
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
