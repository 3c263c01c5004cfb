package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
)

// JSONShowStorage guarda instantáneas del catálogo en un fichero JSON.
type JSONShowStorage struct {
	filePath string
	mu       sync.Mutex
}

func NewJSONShowStorage(filePath string) *JSONShowStorage {
	return &JSONShowStorage{filePath: filePath}
}

// SaveAll sobrescribe el fichero con shows.
func (s *JSONShowStorage) SaveAll(ctx context.Context, shows []*showDomain.TvShow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shows == nil {
		shows = []*showDomain.TvShow{}
	}
	data, err := json.MarshalIndent(shows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o644)
}

// Save añade una serie a la instantánea. Si el fichero no existe, lo crea.
func (s *JSONShowStorage) Save(ctx context.Context, show *showDomain.TvShow) error {
	shows, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	return s.SaveAll(ctx, append(shows, show))
}

// GetAll lee la instantánea; un fichero ausente o vacío es una lista vacía.
func (s *JSONShowStorage) GetAll(ctx context.Context) ([]*showDomain.TvShow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*showDomain.TvShow{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []*showDomain.TvShow{}, nil
	}

	var shows []*showDomain.TvShow
	if err := json.Unmarshal(data, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}
