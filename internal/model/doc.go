// Package model defines the domain entities kept in sync with the eShop
// backend: the basket singleton, basket line items, orders and order line
// items.
//
// Stored attributes are plain exported fields filled from eshop DTOs by the
// synchronization controllers. Derived values (effective price, subtotals,
// totals, picture data URIs) are methods recomputed on every call, so they can
// never go stale relative to their inputs.
//
// Entity-scoped intents such as BasketItem.IncreaseQuantity only describe a
// change. They never touch state or the network; the basket controller issues
// the command and applies the change once the backend acknowledges it.
package model
