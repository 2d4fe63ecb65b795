//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestAdmin_NoKey(t *testing.T) {
	resp := do(t, http.MethodGet, "/api/admin/orders", nil, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_InvalidKey(t *testing.T) {
	resp := do(t, http.MethodGet, "/api/admin/orders", nil,
		map[string]string{"X-API-Key": "wrong-key"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_ListAndGetOrders(t *testing.T) {
	owner := "it-admin-list"
	mug := findProduct(t, "Ceramic Mug")
	fillCart(t, owner, mug.ID, 1)
	o := checkout(t, owner)

	resp := do(t, http.MethodGet, "/api/admin/orders", nil, asAdmin())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	list := decodeJSON[[]orderResponse](t, resp)
	resp.Body.Close()
	if len(list) == 0 {
		t.Fatal("admin list returned no orders")
	}

	resp = do(t, http.MethodGet, "/api/admin/orders/"+o.ID, nil, asAdmin())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	got := decodeJSON[orderResponse](t, resp)
	if got.Number != o.Number {
		t.Errorf("number: got %q, want %q", got.Number, o.Number)
	}
}

func TestAdmin_StatusTransitions(t *testing.T) {
	owner := "it-admin-status"
	mug := findProduct(t, "Ceramic Mug")
	fillCart(t, owner, mug.ID, 1)
	o := checkout(t, owner)

	setStatus := func(status string) orderResponse {
		t.Helper()
		resp := do(t, http.MethodPut, "/api/admin/orders/"+o.ID+"/status",
			map[string]any{"status": status}, asAdmin())
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("set status %q: expected 200, got %d", status, resp.StatusCode)
		}
		return decodeJSON[orderResponse](t, resp)
	}

	if got := setStatus("shipped"); got.Status != "shipped" || got.DeliveredAt != nil {
		t.Errorf("shipped: got status %q deliveredAt %v", got.Status, got.DeliveredAt)
	}

	delivered := setStatus("delivered")
	if delivered.DeliveredAt == nil {
		t.Fatal("delivered must stamp deliveredAt")
	}

	// A repeated delivered transition keeps the original timestamp.
	again := setStatus("delivered")
	if again.DeliveredAt == nil || !again.DeliveredAt.Equal(*delivered.DeliveredAt) {
		t.Errorf("deliveredAt changed on repeat: %v vs %v", again.DeliveredAt, delivered.DeliveredAt)
	}

	resp := do(t, http.MethodPut, "/api/admin/orders/"+o.ID+"/status",
		map[string]any{"status": "vanished"}, asAdmin())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status: expected 422, got %d", resp.StatusCode)
	}
}

func TestAdmin_SetStock(t *testing.T) {
	candles := findProduct(t, "Beeswax Candle Set")

	resp := do(t, http.MethodPut, "/api/admin/inventory/"+candles.ID,
		map[string]any{"quantity": 77}, asAdmin())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[map[string]any](t, resp)
	if body["quantity"] != float64(77) {
		t.Errorf("quantity: got %v, want 77", body["quantity"])
	}

	resp2 := do(t, http.MethodPut, "/api/admin/inventory/"+candles.ID,
		map[string]any{"quantity": -5}, asAdmin())
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative stock: expected 400, got %d", resp2.StatusCode)
	}
}
