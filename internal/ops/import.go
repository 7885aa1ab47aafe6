package ops

import (
	"fmt"
	"io"

	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/snapshot"
)

// MaxImportBytes bounds the size of a backup file read by Import.
const MaxImportBytes = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Path     string `json:"path,omitempty"`
	Imported int    `json:"imported"`
	Replaced int    `json:"replaced"`
}

// Import replaces all snapshots with the valid entries of a backup file.
// Invalid entries are skipped; a file that isn't a JSON array changes nothing.
func Import(store *snapshot.Store, cfg *config.Config, baseDir string, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg, ExportsDir(baseDir)); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) || errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	out, err := ImportReader(store, file)
	if err != nil {
		return nil, err
	}
	out.Path = input.Path
	return out, nil
}

// ImportReader is Import over an already-open backup stream.
func ImportReader(store *snapshot.Store, r io.Reader) (*ImportOutput, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}

	previous := store.Len()
	n, err := store.Import(data)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Imported: n, Replaced: previous}, nil
}
