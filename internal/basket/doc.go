// Package basket synchronizes the shopping basket and its line items with
// the eShop backend.
//
// A Controller owns one basket. It restores the persisted document at
// construction, hydrates on Get, refreshes on a timer, and applies mutations
// only after the backend acknowledges the corresponding command:
//
//	Get:        [InitiateBasket] → GetBasket → GetBasketItems → apply → persist
//	RemoveItem: RemoveBasketItem → subtract totals, drop item → persist
//	AddItem:    AddBasketItem → Get
//
// Refresh and mutation cycles of one controller never interleave. After
// Dispose the timer is stopped and results of calls still in flight are
// discarded.
package basket
