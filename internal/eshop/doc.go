// Package eshop provides the protocol client for the eShop command/query API.
//
// # Overview
//
// The backend is reached exclusively through three request shapes:
//
//   - Query: read a single aggregate, reply {"payload": ...}
//   - Command: perform a state change, any 2xx reply is an acknowledgment
//   - Paged: read one page of a collection, reply {"records": [...], "total": N, ...}
//
// Every request is a typed DTO implementing Request. The DTO's RequestName
// selects the reply route, following the ServiceStack convention used by the
// backend:
//
//	POST /json/reply/GetBasket
//	{"basketId":"8a0c..."}
//
// # Client Usage
//
//	client, err := eshop.NewClient("http://127.0.0.1:5000", 10*time.Second)
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	var basket eshop.Basket
//	if err := client.Query(ctx, eshop.GetBasket{BasketID: id}, &basket); err != nil {
//		return err
//	}
//
//	var items []eshop.BasketItemIndex
//	page, err := client.Paged(ctx, eshop.GetBasketItems{BasketID: id}, &items)
//
// # Error Handling
//
// Failures fall into two categories, both returned to the caller unchanged:
//
//   - *TransportError: connection refused, timeout, 5xx status, undecodable reply
//   - *RejectedError: 4xx status; Code and Message come from the ServiceStack
//     responseStatus object when the reply carries one
//
// Use errors.As, or the IsTransport and IsRejected helpers.
//
// # Design Rationale
//
// The client is intentionally minimal:
//   - No retries (a single failure surfaces to the caller)
//   - No idempotency keys
//   - No caching (the synchronization controllers own local state)
//
// The Dispatcher interface lets controllers be tested against in-memory fakes
// or the shoptest backend.
package eshop
