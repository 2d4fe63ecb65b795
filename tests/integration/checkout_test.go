//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`)

func TestCheckout_EmptyCart(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/checkout", nil, asOwner("it-checkout-empty"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if e := decodeJSON[errorResponse](t, resp); e.Error != "cart is empty" {
		t.Errorf("error: got %q", e.Error)
	}
}

func TestCheckout_Success(t *testing.T) {
	owner := "it-checkout-ok"
	mug := findProduct(t, "Ceramic Mug")
	fillCart(t, owner, mug.ID, 2)

	o := checkout(t, owner)

	if o.Total != "25.00" {
		t.Errorf("total: got %q, want 25.00", o.Total)
	}
	if !orderNumberPattern.MatchString(o.Number) {
		t.Errorf("order number %q does not match pattern", o.Number)
	}
	if o.ShippingAddress != "1 Main St, Springfield, 12345" {
		t.Errorf("shipping address: got %q", o.ShippingAddress)
	}
	if o.PaymentMethod != "cash" || o.PaymentStatus != "pending" || o.Status != "pending" {
		t.Errorf("payment defaults: got %s/%s/%s", o.PaymentMethod, o.PaymentStatus, o.Status)
	}
	if len(o.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(o.Lines))
	}
	if o.Lines[0].UnitPrice != "12.50" || o.Lines[0].Subtotal != "25.00" {
		t.Errorf("line money: got %s/%s", o.Lines[0].UnitPrice, o.Lines[0].Subtotal)
	}
	if o.Lines[0].Name != "Ceramic Mug" {
		t.Errorf("snapshot name: got %q", o.Lines[0].Name)
	}

	// The cart is emptied by a successful checkout.
	resp := do(t, http.MethodGet, "/api/cart", nil, asOwner(owner))
	defer resp.Body.Close()
	if c := decodeJSON[cartResponse](t, resp); len(c.Lines) != 0 {
		t.Errorf("cart not cleared: %d lines remain", len(c.Lines))
	}
}

func TestCheckout_CardIsPreauthorized(t *testing.T) {
	owner := "it-checkout-card"
	mug := findProduct(t, "Ceramic Mug")
	fillCart(t, owner, mug.ID, 1)

	resp := do(t, http.MethodPost, "/api/checkout", map[string]any{
		"street": "1 Main St", "city": "Springfield", "postalCode": "12345",
		"paymentMethod": "card",
	}, asOwner(owner))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, resp)
	if o.PaymentStatus != "paid" || o.Status != "processing" {
		t.Errorf("card order: got %s/%s, want paid/processing", o.PaymentStatus, o.Status)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	owner := "it-checkout-stock"
	kettle := findProduct(t, "Copper Pour-Over Kettle") // seeded with 8

	fillCart(t, owner, kettle.ID, 9)

	resp := do(t, http.MethodPost, "/api/checkout", map[string]any{
		"street": "1 Main St", "city": "Springfield", "postalCode": "12345",
	}, asOwner(owner))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	e := decodeJSON[errorResponse](t, resp)
	if !strings.Contains(e.Error, "not enough stock for Copper Pour-Over Kettle") {
		t.Errorf("error: got %q", e.Error)
	}

	// The failed attempt rolled back: the cart survives and the stock still
	// covers a valid purchase.
	resp2 := do(t, http.MethodGet, "/api/cart", nil, asOwner(owner))
	if c := decodeJSON[cartResponse](t, resp2); len(c.Lines) != 1 {
		t.Errorf("cart must survive a failed checkout, got %d lines", len(c.Lines))
	}
	resp2.Body.Close()

	fillCart(t, owner+"-retry", kettle.ID, 8)
	checkout(t, owner+"-retry")
}

func TestCheckout_ConcurrentLastUnit(t *testing.T) {
	trivet := findProduct(t, "Cast Iron Trivet") // seeded with exactly 1

	owners := []string{"it-race-a", "it-race-b"}
	for _, o := range owners {
		fillCart(t, o, trivet.ID, 1)
	}

	codes := make([]int, len(owners))
	var wg sync.WaitGroup
	for i, o := range owners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := do(t, http.MethodPost, "/api/checkout", map[string]any{
				"street": "1 Main St", "city": "Springfield", "postalCode": "12345",
			}, asOwner(o))
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}()
	}
	wg.Wait()

	var created, conflicts int
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	if created != 1 || conflicts != 1 {
		t.Fatalf("last unit race: got %d created / %d conflict, want 1/1 (codes %v)",
			created, conflicts, codes)
	}
}

func TestOrder_SurvivesProductDeletion(t *testing.T) {
	owner := "it-snapshot"
	board := findProduct(t, "Walnut Serving Board")
	fillCart(t, owner, board.ID, 1)
	o := checkout(t, owner)

	// The catalog has no delete endpoint; remove the product directly. The
	// order lines must survive via ON DELETE SET NULL plus their snapshot.
	execSQL(t, fmt.Sprintf("DELETE FROM products WHERE id = '%s'", board.ID))

	// Put the product back afterwards so the rest of the suite sees the full
	// seeded catalog.
	t.Cleanup(func() {
		execSQL(t, fmt.Sprintf(
			"INSERT INTO products (id, name, description, price, image_url, category) VALUES ('%s', '%s', '%s', %s, '%s', '%s')",
			board.ID, board.Name, board.Description, board.Price, board.ImageURL, board.Category))
		execSQL(t, fmt.Sprintf(
			"INSERT INTO inventory (product_id, quantity) VALUES ('%s', 14)", board.ID))
	})

	resp := do(t, http.MethodGet, "/api/products/"+board.ID, nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("product still served after deletion: %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, "/api/orders/"+o.ID, nil, asOwner(owner))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("order after product deletion: expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}

	line := got.Lines[0]
	if line.ProductID != nil {
		t.Errorf("product reference: got %q, want null", *line.ProductID)
	}
	if line.Name != "Walnut Serving Board" {
		t.Errorf("snapshot name: got %q", line.Name)
	}
	if line.Description == "" || line.ImageURL == "" {
		t.Errorf("snapshot incomplete: description %q, imageUrl %q", line.Description, line.ImageURL)
	}
	if line.UnitPrice != "39.00" || line.Subtotal != "39.00" {
		t.Errorf("snapshot money: got %s/%s, want 39.00/39.00", line.UnitPrice, line.Subtotal)
	}
	if got.Total != o.Total {
		t.Errorf("total changed after product deletion: %s -> %s", o.Total, got.Total)
	}
}

func TestOrders_OwnershipAndHistory(t *testing.T) {
	owner := "it-orders-owner"
	mug := findProduct(t, "Ceramic Mug")
	fillCart(t, owner, mug.ID, 1)
	o := checkout(t, owner)

	resp := do(t, http.MethodGet, "/api/orders/"+o.ID, nil, asOwner(owner))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, "/api/orders/"+o.ID, nil, asOwner("it-orders-other"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign get: expected 403, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, "/api/orders", nil, asOwner(owner))
	defer resp.Body.Close()
	list := decodeJSON[[]orderResponse](t, resp)
	if len(list) == 0 || list[0].ID != o.ID {
		t.Errorf("history: newest order %s not first in %d results", o.ID, len(list))
	}
}
