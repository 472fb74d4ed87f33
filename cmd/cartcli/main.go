// Command cartcli is a small client harness around the cart store. It keeps
// the cart in a local LevelDB file and talks to the storefront backend for
// catalog lookups and order submission.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"butikku/backend/internal/cart"
	"butikku/backend/internal/config"
	"butikku/backend/internal/domain"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	storage, err := cart.NewLevelDB(cfg.CartDBPath)
	if err != nil {
		log.Fatalf("open cart db %s: %v", cfg.CartDBPath, err)
	}
	defer storage.Close()

	store := cart.New(storage)
	client := &apiClient{baseURL: strings.TrimRight(cfg.APIBaseURL, "/"), http: &http.Client{Timeout: 10 * time.Second}}

	if err := run(os.Args[1], os.Args[2:], store, client); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(command string, args []string, store *cart.Store, client *apiClient) error {
	switch command {
	case "add":
		return cmdAdd(args, store, client)
	case "list":
		return cmdList(store)
	case "qty":
		return cmdQty(args, store)
	case "remove":
		return cmdRemove(args, store)
	case "toggle":
		return cmdToggle(args, store)
	case "select-all":
		store.SelectAllItems()
		return cmdList(store)
	case "deselect-all":
		store.DeselectAllItems()
		return cmdList(store)
	case "submit":
		return cmdSubmit(args, store, client)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdAdd(args []string, store *cart.Store, client *apiClient) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	productID := fs.String("product", "", "product id")
	size := fs.String("size", "", "size label")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" || *size == "" || *qty < 1 {
		return fmt.Errorf("add requires -product, -size and a positive -qty")
	}

	product, err := client.findProduct(*productID)
	if err != nil {
		return err
	}

	store.AddToCart(cart.Item{
		ProductID:       product.ID,
		Name:            product.Name,
		Category:        product.Category,
		Price:           product.Price,
		Discount:        product.Discount,
		DiscountedPrice: product.DiscountedPrice,
		SelectedSize:    *size,
		Quantity:        *qty,
		ImageURL:        product.ImageURL,
	})
	return cmdList(store)
}

func cmdList(store *cart.Store) error {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, item := range items {
		marker := " "
		if store.IsSelected(item.Key()) {
			marker = "*"
		}
		fmt.Printf("%s %-40s size %-4s x%-3d @ %d\n", marker, item.Name, item.SelectedSize, item.Quantity, item.UnitPrice())
	}
	fmt.Printf("selected: %d items, subtotal %d\n", store.SelectedCount(), store.SelectedTotal())
	return nil
}

func cmdQty(args []string, store *cart.Store) error {
	fs := flag.NewFlagSet("qty", flag.ExitOnError)
	key := fs.String("key", "", "cart line key (productId-size)")
	qty := fs.Int("qty", 0, "new quantity (0 removes the line)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("qty requires -key")
	}
	store.UpdateQuantity(*key, *qty)
	return cmdList(store)
}

func cmdRemove(args []string, store *cart.Store) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	key := fs.String("key", "", "cart line key (productId-size)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("remove requires -key")
	}
	store.RemoveFromCart(*key)
	return cmdList(store)
}

func cmdToggle(args []string, store *cart.Store) error {
	fs := flag.NewFlagSet("toggle", flag.ExitOnError)
	key := fs.String("key", "", "cart line key (productId-size)")
	category := fs.String("category", "", "toggle a whole category instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch {
	case *category != "":
		store.ToggleCategorySelection(*category)
	case *key != "":
		store.ToggleItemSelection(*key)
	default:
		return fmt.Errorf("toggle requires -key or -category")
	}
	return cmdList(store)
}

func cmdSubmit(args []string, store *cart.Store, client *apiClient) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	email := fs.String("email", "", "buyer email")
	fullname := fs.String("fullname", "", "buyer full name")
	whatsapp := fs.String("whatsapp", "", "buyer whatsapp number")
	address := fs.String("address", "", "shipping address")
	postal := fs.String("postal", "", "postal code")
	payment := fs.String("payment", "transfer", "payment method")
	member := fs.Bool("member", false, "apply member pricing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := store.BuildSubmission(cart.Contact{
		Email:          *email,
		FullName:       *fullname,
		WhatsappNumber: *whatsapp,
		Address:        *address,
		PostalCode:     *postal,
		PaymentMethod:  *payment,
		IsMember:       *member,
	})
	if err != nil {
		return err
	}

	order, err := client.submitOrder(req)
	if err != nil {
		return err
	}

	store.RemoveSelectedItems()
	fmt.Printf("order %s created, total %d\n", order.ID, order.TotalPurchased)
	return nil
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) findProduct(id string) (domain.Product, error) {
	resp, err := c.http.Get(c.baseURL + "/api/v1/products")
	if err != nil {
		return domain.Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Product{}, fmt.Errorf("catalog request failed: %s", resp.Status)
	}

	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Product{}, fmt.Errorf("decode catalog: %w", err)
	}
	for _, p := range body.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %s not found in catalog", id)
}

func (c *apiClient) submitOrder(req domain.OrderCreateRequest) (domain.Order, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.Order{}, err
	}

	resp, err := c.http.Post(c.baseURL+"/api/v1/orders", "application/json", bytes.NewReader(payload))
	if err != nil {
		return domain.Order{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Order{}, fmt.Errorf("order rejected: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return domain.Order{}, fmt.Errorf("decode order: %w", err)
	}
	return order, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cartcli <command> [flags]

commands:
  add          -product <id> -size <label> [-qty n]
  list
  qty          -key <productId-size> -qty <n>
  remove       -key <productId-size>
  toggle       -key <productId-size> | -category <name>
  select-all
  deselect-all
  submit       -email ... -fullname ... -whatsapp ... -address ... -postal ... [-payment m] [-member]

environment: CART_DB_PATH (cart file), API_BASE_URL (backend address)`)
}
