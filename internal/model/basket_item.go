package model

import (
	"errors"

	"github.com/five82/shopsync/internal/eshop"
)

// ErrMinimumQuantity is returned when a decrease would drop below one unit.
// Removing the item is a separate intent.
var ErrMinimumQuantity = errors.New("quantity cannot go below 1")

// BasketItem is one basket line item.
type BasketItem struct {
	ItemID                    string
	BasketID                  string
	ProductID                 string
	ProductPictureContents    string
	ProductPictureContentType string
	ProductName               string
	ProductDescription        string
	ProductPrice              float64
	Price                     float64 // override; zero means catalog price
	Quantity                  int
}

// ID implements cache.Entity.
func (i BasketItem) ID() string { return i.ItemID }

// EffectivePrice is the override price when set, the catalog price otherwise.
func (i BasketItem) EffectivePrice() float64 {
	if i.Price != 0 {
		return i.Price
	}
	return i.ProductPrice
}

// SubTotal is EffectivePrice times Quantity.
func (i BasketItem) SubTotal() float64 {
	return i.EffectivePrice() * float64(i.Quantity)
}

// ProductPicture returns the product picture as a data URI, or "" when the
// item carries no picture.
func (i BasketItem) ProductPicture() string {
	return pictureURI(i.ProductPictureContentType, i.ProductPictureContents)
}

// WithQuantity returns a copy of i holding quantity.
func (i BasketItem) WithQuantity(quantity int) BasketItem {
	i.Quantity = quantity
	return i
}

// QuantityChange is the intent to set an item's quantity. It is applied by
// basket.Controller.ChangeQuantity after the backend acknowledges it.
type QuantityChange struct {
	ItemID    string
	ProductID string
	Quantity  int
}

// IncreaseQuantity describes adding one unit.
func (i BasketItem) IncreaseQuantity() QuantityChange {
	return QuantityChange{ItemID: i.ItemID, ProductID: i.ProductID, Quantity: i.Quantity + 1}
}

// DecreaseQuantity describes removing one unit.
func (i BasketItem) DecreaseQuantity() (QuantityChange, error) {
	if i.Quantity <= 1 {
		return QuantityChange{}, ErrMinimumQuantity
	}
	return QuantityChange{ItemID: i.ItemID, ProductID: i.ProductID, Quantity: i.Quantity - 1}, nil
}

// BasketItemFromDTO converts a wire record.
func BasketItemFromDTO(dto eshop.BasketItemIndex) BasketItem {
	return BasketItem{
		ItemID:                    dto.ID,
		BasketID:                  dto.BasketID,
		ProductID:                 dto.ProductID,
		ProductPictureContents:    dto.ProductPictureContents,
		ProductPictureContentType: dto.ProductPictureContentType,
		ProductName:               dto.ProductName,
		ProductDescription:        dto.ProductDescription,
		ProductPrice:              dto.ProductPrice,
		Price:                     dto.Price,
		Quantity:                  dto.Quantity,
	}
}

func pictureURI(contentType, contents string) string {
	if contents == "" {
		return ""
	}
	return "data:" + contentType + ";base64," + contents
}
