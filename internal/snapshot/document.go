package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
)

// BasketKey is the fixed storage key of the basket document.
const BasketKey = "basket.eShop"

// Document is the canonical persisted form of the basket controller's
// singleton state. Derived values and cached line items are never persisted.
type Document struct {
	BasketID   string `json:"basketId,omitempty"`
	TotalItems int    `json:"totalItems"`
}

// PersistenceError reports an unreadable, unwritable or malformed snapshot.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Marshal encodes d in its canonical form.
func (d Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Parse decodes a document. Empty input yields the zero document.
func Parse(raw []byte) (Document, error) {
	var d Document
	if len(raw) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return Document{}, err
	}
	if d.TotalItems < 0 {
		return Document{}, fmt.Errorf("totalItems %d is negative", d.TotalItems)
	}
	return d, nil
}

// Load reads the document stored under key. A missing key yields the zero
// document and no error. An unreadable or malformed value yields the zero
// document together with a *PersistenceError, which callers log and otherwise
// ignore: a corrupt snapshot must not block startup.
func Load(ctx context.Context, s Storage, key string) (Document, error) {
	if s == nil {
		return Document{}, nil
	}
	raw, ok, err := s.GetItem(ctx, key)
	if err != nil {
		return Document{}, &PersistenceError{Key: key, Err: err}
	}
	if !ok {
		return Document{}, nil
	}
	d, err := Parse(raw)
	if err != nil {
		return Document{}, &PersistenceError{Key: key, Err: fmt.Errorf("parse: %w", err)}
	}
	return d, nil
}

// Save writes d under key.
func Save(ctx context.Context, s Storage, key string, d Document) error {
	if s == nil {
		return nil
	}
	raw, err := d.Marshal()
	if err != nil {
		return &PersistenceError{Key: key, Err: err}
	}
	if err := s.SetItem(ctx, key, raw); err != nil {
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}
