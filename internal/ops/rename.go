package ops

import (
	"strings"

	"github.com/cusc/copywriter/internal/snapshot"
)

// RenameInput contains parameters for the Rename operation.
type RenameInput struct {
	ID       string
	Type     string
	Title    string
	NewTitle string
}

// Rename changes a snapshot's title. The payload and createdAt are kept.
func Rename(store *snapshot.Store, input RenameInput) (*snapshot.Item, error) {
	addr, err := ValidateAddress(input.ID, input.Type, input.Title)
	if err != nil {
		return nil, err
	}
	item, err := resolve(store, addr)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.NewTitle)
	updated, err := store.Update(item.ID, snapshot.Patch{Title: &title})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
