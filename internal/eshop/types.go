package eshop

import (
	"encoding/json"
	"time"
)

const eshopTimestampLayout = "2006-01-02 15:04:05"

// QueryResponse mirrors the envelope of every query reply.
type QueryResponse struct {
	Payload json.RawMessage `json:"payload"`
}

// PagedResponse mirrors the envelope of every paged reply.
type PagedResponse struct {
	Records   json.RawMessage `json:"records"`
	Total     int             `json:"total"`
	PageIndex int             `json:"pageIndex"`
	PageSize  int             `json:"pageSize"`
	ElapsedMs int64           `json:"elapsedMs"`
}

// PageInfo returns the page metadata of the response.
func (p PagedResponse) PageInfo() PageInfo {
	return PageInfo{
		Total:     p.Total,
		PageIndex: p.PageIndex,
		PageSize:  p.PageSize,
		Elapsed:   time.Duration(p.ElapsedMs) * time.Millisecond,
	}
}

// PageInfo describes one page of a collection read.
type PageInfo struct {
	Total     int
	PageIndex int
	PageSize  int
	Elapsed   time.Duration
}

// ResponseStatus is the error detail attached to rejected requests.
type ResponseStatus struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// Paging is embedded by paged requests.
type Paging struct {
	PageIndex int `json:"pageIndex,omitempty"`
	PageSize  int `json:"pageSize,omitempty"`
}

// Basket mirrors the basket aggregate payload.
type Basket struct {
	ID            string  `json:"id"`
	CustomerID    string  `json:"customerId"`
	CustomerName  string  `json:"customerName"`
	TotalItems    int     `json:"totalItems"`
	TotalQuantity int     `json:"totalQuantity"`
	SubTotal      float64 `json:"subTotal"`
}

// BasketItemIndex mirrors one basket line item record.
type BasketItemIndex struct {
	ID                        string  `json:"id"`
	BasketID                  string  `json:"basketId"`
	ProductID                 string  `json:"productId"`
	ProductPictureContents    string  `json:"productPictureContents"`
	ProductPictureContentType string  `json:"productPictureContentType"`
	ProductName               string  `json:"productName"`
	ProductDescription        string  `json:"productDescription"`
	ProductPrice              float64 `json:"productPrice"`
	Price                     float64 `json:"price"`
	Quantity                  int     `json:"quantity"`
}

// Order mirrors one buyer order record.
type Order struct {
	ID                string  `json:"id"`
	UserName          string  `json:"userName"`
	Status            string  `json:"status"`
	StatusDescription string  `json:"statusDescription"`
	ShippingAddress   string  `json:"shippingAddress"`
	BillingAddress    string  `json:"billingAddress"`
	PaymentMethod     string  `json:"paymentMethod"`
	SubTotal          float64 `json:"subTotal"`
	AdditionalFees    float64 `json:"additionalFees"`
	AdditionalTaxes   float64 `json:"additionalTaxes"`
	Created           string  `json:"created"`
	Updated           string  `json:"updated"`
}

// ParsedCreated returns the parsed Created timestamp.
func (o Order) ParsedCreated() time.Time {
	return parseTime(o.Created)
}

// ParsedUpdated returns the parsed Updated timestamp.
func (o Order) ParsedUpdated() time.Time {
	return parseTime(o.Updated)
}

// OrderItem mirrors one order line item record.
type OrderItem struct {
	ID                        string  `json:"id"`
	OrderID                   string  `json:"orderId"`
	ProductID                 string  `json:"productId"`
	ProductName               string  `json:"productName"`
	ProductDescription        string  `json:"productDescription"`
	ProductPictureContents    string  `json:"productPictureContents"`
	ProductPictureContentType string  `json:"productPictureContentType"`
	ProductPrice              float64 `json:"productPrice"`
	Price                     float64 `json:"price"`
	Quantity                  int     `json:"quantity"`
	AdditionalFees            float64 `json:"additionalFees"`
	AdditionalTaxes           float64 `json:"additionalTaxes"`
}

// GetBasket reads the basket aggregate.
type GetBasket struct {
	BasketID string `json:"basketId"`
}

func (GetBasket) RequestName() string { return "GetBasket" }

// GetBasketItems pages the basket's line items.
type GetBasketItems struct {
	BasketID string `json:"basketId"`
	Paging
}

func (GetBasketItems) RequestName() string { return "GetBasketItems" }

// InitiateBasket creates a basket under a client-chosen id.
type InitiateBasket struct {
	BasketID string `json:"basketId"`
}

func (InitiateBasket) RequestName() string { return "InitiateBasket" }

// AddBasketItem puts a product into the basket.
type AddBasketItem struct {
	BasketID  string `json:"basketId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (AddBasketItem) RequestName() string { return "AddBasketItem" }

// RemoveBasketItem drops a product from the basket.
type RemoveBasketItem struct {
	BasketID  string `json:"basketId"`
	ProductID string `json:"productId"`
}

func (RemoveBasketItem) RequestName() string { return "RemoveBasketItem" }

// UpdateBasketItemQuantity sets the quantity of a product in the basket.
type UpdateBasketItemQuantity struct {
	BasketID  string `json:"basketId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (UpdateBasketItemQuantity) RequestName() string { return "UpdateBasketItemQuantity" }

// BuyerOrders pages the orders of one buyer, optionally filtered by status and
// a created-at window.
type BuyerOrders struct {
	UserName    string `json:"userName"`
	OrderStatus string `json:"orderStatus,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Paging
}

func (BuyerOrders) RequestName() string { return "BuyerOrders" }

// ListOrderItems pages the line items of one order.
type ListOrderItems struct {
	OrderID string `json:"orderId"`
	Paging
}

func (ListOrderItems) RequestName() string { return "ListOrderItems" }

// FormatTime renders t the way request filters expect it.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(eshopTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
