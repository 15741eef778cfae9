// internal/modelstore/store.go
package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/andresuchdata/stocksense/internal/domain"
)

// Store persists one trained model per product as a JSON blob on disk.
// Writes go through a temp file and an atomic rename, so a forecast running
// concurrently with a retrain never observes a partially written model.
// Retraining overwrites; models are not versioned.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create model dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(productID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("product_%d.json", productID))
}

// Exists reports whether a persisted model is present for the product.
func (s *Store) Exists(productID int) bool {
	_, err := os.Stat(s.path(productID))
	return err == nil
}

// Save writes the model blob via write-then-rename.
func (s *Store) Save(model *domain.TrainedModel) error {
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode model for product %d: %w", model.ProductID, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("product_%d_*.tmp", model.ProductID))
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close model file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(model.ProductID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace model file: %w", err)
	}
	return nil
}

// Load reads the persisted model for a product. A missing file maps to
// domain.ErrModelNotFound; a corrupt one to a domain.ModelLoadError.
func (s *Store) Load(productID int) (*domain.TrainedModel, error) {
	payload, err := os.ReadFile(s.path(productID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrModelNotFound
		}
		return nil, &domain.ModelLoadError{ProductID: productID, Err: err}
	}

	var model domain.TrainedModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, &domain.ModelLoadError{ProductID: productID, Err: err}
	}
	return &model, nil
}

// Delete removes a persisted model. Missing files are not an error.
func (s *Store) Delete(productID int) error {
	err := os.Remove(s.path(productID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
