package shoptest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/five82/shopsync/internal/eshop"
)

type bodyKey struct{}

func withBody(ctx context.Context, raw json.RawMessage) context.Context {
	return context.WithValue(ctx, bodyKey{}, raw)
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	raw, _ := r.Context().Value(bodyKey{}).(json.RawMessage)
	if err := json.Unmarshal(raw, dest); err != nil {
		reject(w, http.StatusBadRequest, "SerializationException", err.Error())
		return false
	}
	return true
}

func reject(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, struct {
		ResponseStatus eshop.ResponseStatus `json:"responseStatus"`
	}{eshop.ResponseStatus{ErrorCode: code, Message: message}})
}

func writeQuery(w http.ResponseWriter, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		reject(w, http.StatusInternalServerError, "Encode", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eshop.QueryResponse{Payload: raw})
}

func writePaged[T any](w http.ResponseWriter, all []T, paging eshop.Paging) {
	page := all
	if paging.PageSize > 0 {
		start := paging.PageIndex * paging.PageSize
		switch {
		case start >= len(all):
			page = nil
		case start+paging.PageSize < len(all):
			page = all[start : start+paging.PageSize]
		default:
			page = all[start:]
		}
	}
	if page == nil {
		page = []T{}
	}
	raw, err := json.Marshal(page)
	if err != nil {
		reject(w, http.StatusInternalServerError, "Encode", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eshop.PagedResponse{
		Records:   raw,
		Total:     len(all),
		PageIndex: paging.PageIndex,
		PageSize:  paging.PageSize,
		ElapsedMs: 1,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
