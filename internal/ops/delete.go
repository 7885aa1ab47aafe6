package ops

import (
	"context"

	"github.com/cusc/copywriter/internal/snapshot"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID    string
	Type  string
	Title string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	Title   string `json:"title"`
}

// Delete removes a snapshot.
func Delete(store *snapshot.Store, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Type, input.Title)
	if err != nil {
		return nil, err
	}
	item, err := resolve(store, addr)
	if err != nil {
		return nil, err
	}
	if err := store.Delete(item.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: item.ID, Title: item.Title}, nil
}

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Removed int `json:"removed"`
}

// Clear removes every snapshot, including the persisted copy.
func Clear(ctx context.Context, store *snapshot.Store) *ClearOutput {
	n := store.Len()
	store.Clear(ctx)
	return &ClearOutput{Removed: n}
}
