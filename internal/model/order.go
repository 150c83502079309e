package model

import (
	"time"

	"github.com/five82/shopsync/internal/eshop"
)

// Order is one placed order. Items is the line item snapshot captured at
// placement time; it is loaded once and never re-synchronized.
type Order struct {
	OrderID           string
	UserName          string
	Status            string
	StatusDescription string
	ShippingAddress   string
	BillingAddress    string
	PaymentMethod     string
	ItemsSubTotal     float64
	AdditionalFees    float64
	AdditionalTaxes   float64
	Created           time.Time
	Updated           time.Time

	Items       []OrderItem
	ItemsLoaded bool
}

// ID implements cache.Entity.
func (o Order) ID() string { return o.OrderID }

// SubTotal is the sum of the captured line subtotals, falling back to the
// server figure until the items are loaded.
func (o Order) SubTotal() float64 {
	if !o.ItemsLoaded {
		return o.ItemsSubTotal
	}
	var sum float64
	for _, item := range o.Items {
		sum += item.SubTotal()
	}
	return sum
}

// Total folds the fees and taxes captured at order time into SubTotal.
func (o Order) Total() float64 {
	return o.SubTotal() + o.AdditionalFees + o.AdditionalTaxes
}

// ItemCount returns the number of captured line items.
func (o Order) ItemCount() int {
	return len(o.Items)
}

// WithItems returns a copy of o owning a private copy of items.
func (o Order) WithItems(items []OrderItem) Order {
	o.Items = append([]OrderItem(nil), items...)
	o.ItemsLoaded = true
	return o
}

// OrderFromDTO converts a wire record.
func OrderFromDTO(dto eshop.Order) Order {
	return Order{
		OrderID:           dto.ID,
		UserName:          dto.UserName,
		Status:            dto.Status,
		StatusDescription: dto.StatusDescription,
		ShippingAddress:   dto.ShippingAddress,
		BillingAddress:    dto.BillingAddress,
		PaymentMethod:     dto.PaymentMethod,
		ItemsSubTotal:     dto.SubTotal,
		AdditionalFees:    dto.AdditionalFees,
		AdditionalTaxes:   dto.AdditionalTaxes,
		Created:           dto.ParsedCreated(),
		Updated:           dto.ParsedUpdated(),
	}
}

// OrderItem is one captured order line item.
type OrderItem struct {
	ItemID                    string
	OrderID                   string
	ProductID                 string
	ProductName               string
	ProductDescription        string
	ProductPictureContents    string
	ProductPictureContentType string
	ProductPrice              float64
	Price                     float64
	Quantity                  int
	AdditionalFees            float64
	AdditionalTaxes           float64
}

// ID implements cache.Entity.
func (i OrderItem) ID() string { return i.ItemID }

// ItemPrice is the price paid per unit, the catalog price when none was set.
func (i OrderItem) ItemPrice() float64 {
	if i.Price != 0 {
		return i.Price
	}
	return i.ProductPrice
}

// SubTotal is ItemPrice times Quantity.
func (i OrderItem) SubTotal() float64 {
	return i.ItemPrice() * float64(i.Quantity)
}

// Total adds the line's fees and taxes to SubTotal.
func (i OrderItem) Total() float64 {
	return i.SubTotal() + i.AdditionalFees + i.AdditionalTaxes
}

// ProductPicture returns the product picture as a data URI.
func (i OrderItem) ProductPicture() string {
	return pictureURI(i.ProductPictureContentType, i.ProductPictureContents)
}

// OrderItemFromDTO converts a wire record.
func OrderItemFromDTO(dto eshop.OrderItem) OrderItem {
	return OrderItem{
		ItemID:                    dto.ID,
		OrderID:                   dto.OrderID,
		ProductID:                 dto.ProductID,
		ProductName:               dto.ProductName,
		ProductDescription:        dto.ProductDescription,
		ProductPictureContents:    dto.ProductPictureContents,
		ProductPictureContentType: dto.ProductPictureContentType,
		ProductPrice:              dto.ProductPrice,
		Price:                     dto.Price,
		Quantity:                  dto.Quantity,
		AdditionalFees:            dto.AdditionalFees,
		AdditionalTaxes:           dto.AdditionalTaxes,
	}
}
