package cli

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopsync/internal/eshop"
	"github.com/five82/shopsync/internal/shoptest"
)

type basketResponse struct {
	Status string       `json:"status"`
	Data   basketOutput `json:"data"`
	Error  *CLIError    `json:"error"`
}

type ordersResponse struct {
	Status string       `json:"status"`
	Data   ordersOutput `json:"data"`
}

func runJSON[T any](t *testing.T, flags []string, args ...string) (T, error) {
	t.Helper()
	var resp T
	out, err := execute(t, append(append(flags, "--format", "json"), args...)...)
	if out != "" {
		require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	}
	return resp, err
}

func TestBasketLifecycle(t *testing.T) {
	backend := shoptest.New(t)
	backend.SeedProduct(shoptest.Product{ID: "p1", Name: "Mug", Price: 10})
	flags := writeConfig(t, backend.URL())

	resp, err := runJSON[basketResponse](t, flags, "basket")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	id := resp.Data.ID
	require.NotEmpty(t, id)
	assert.Empty(t, resp.Data.Items)

	resp, err = runJSON[basketResponse](t, flags, "add", "p1", "--quantity", "2")
	require.NoError(t, err)
	assert.Equal(t, id, resp.Data.ID, "basket id survives across commands")
	require.Len(t, resp.Data.Items, 1)
	item := resp.Data.Items[0]
	assert.Equal(t, 2, item.Quantity)
	assert.InDelta(t, 20.0, resp.Data.SubTotal, 0.001)

	resp, err = runJSON[basketResponse](t, flags, "quantity", item.ID, "--inc")
	require.NoError(t, err)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 3, resp.Data.Items[0].Quantity)

	resp, err = runJSON[basketResponse](t, flags, "remove", item.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, 0, resp.Data.TotalItems)

	assert.Equal(t, 1, backend.Calls("InitiateBasket"))
}

func TestQuantityDecreaseBelowOneIsRefused(t *testing.T) {
	backend := shoptest.New(t)
	backend.SeedProduct(shoptest.Product{ID: "p1", Name: "Mug", Price: 10})
	flags := writeConfig(t, backend.URL())

	resp, err := runJSON[basketResponse](t, flags, "add", "p1")
	require.NoError(t, err)
	require.Len(t, resp.Data.Items, 1)

	_, err = runJSON[basketResponse](t, flags, "quantity", resp.Data.Items[0].ID, "--dec")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, 0, backend.Calls("UpdateBasketItemQuantity"))
}

func TestQuantityRequiresOneDirection(t *testing.T) {
	_, err := execute(t, "quantity", "i1", "--inc", "--dec")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRemoveUnknownItem(t *testing.T) {
	backend := shoptest.New(t)
	flags := writeConfig(t, backend.URL())

	resp, err := runJSON[basketResponse](t, flags, "remove", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUsage, resp.Error.Code)
}

func TestBasketTransportFailure(t *testing.T) {
	backend := shoptest.New(t)
	backend.Fail("InitiateBasket", http.StatusServiceUnavailable)
	flags := writeConfig(t, backend.URL())

	resp, err := runJSON[basketResponse](t, flags, "basket")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTransport, resp.Error.Code)
}

func TestBasketText(t *testing.T) {
	backend := shoptest.New(t)
	backend.SeedProduct(shoptest.Product{ID: "p1", Name: "Mug", Price: 10})
	flags := writeConfig(t, backend.URL())

	out, err := execute(t, append(flags, "add", "p1", "--quantity", "3")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "Subtotal: 30.00")
}

func seedOrders(backend *shoptest.Server) {
	backend.SeedOrders(
		eshop.Order{ID: "o1", UserName: "alice", Status: "Paid", SubTotal: 20, Created: "2024-03-01T10:00:00Z"},
		eshop.Order{ID: "o2", UserName: "alice", Status: "Shipped", SubTotal: 5, Created: "2024-03-05T10:00:00Z"},
		eshop.Order{ID: "o3", UserName: "bob", Status: "Paid", SubTotal: 9, Created: "2024-03-04T10:00:00Z"},
	)
	backend.SeedOrderItems("o1",
		eshop.OrderItem{ID: "oi1", OrderID: "o1", ProductID: "p1", ProductName: "Mug", ProductPrice: 10, Quantity: 2},
	)
}

func TestOrdersForBuyer(t *testing.T) {
	backend := shoptest.New(t)
	seedOrders(backend)
	flags := writeConfig(t, backend.URL())

	resp, err := runJSON[ordersResponse](t, flags, "orders")
	require.NoError(t, err)
	require.Len(t, resp.Data.Orders, 2)
	assert.Equal(t, "o2", resp.Data.Orders[0].ID, "newest first")
	assert.Equal(t, "o1", resp.Data.Orders[1].ID)
	assert.Empty(t, resp.Data.Orders[1].Items)
	assert.Equal(t, "all", resp.Data.Period)
}

func TestOrdersStatusFilterAndItems(t *testing.T) {
	backend := shoptest.New(t)
	seedOrders(backend)
	flags := writeConfig(t, backend.URL())

	resp, err := runJSON[ordersResponse](t, flags, "orders", "--status", "Paid", "--items")
	require.NoError(t, err)
	require.Len(t, resp.Data.Orders, 1)
	o := resp.Data.Orders[0]
	assert.Equal(t, "o1", o.ID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, 1, backend.Calls("ListOrderItems"))
}

func TestOrdersInvalidPeriod(t *testing.T) {
	backend := shoptest.New(t)
	flags := writeConfig(t, backend.URL())

	_, err := execute(t, append(flags, "orders", "--period", "fortnight")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, 0, backend.Calls("BuyerOrders"))
}
