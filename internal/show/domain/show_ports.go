package domain

import (
	"context"
	"errors"
	"fmt"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

var (
	ErrShowNotFound      = errors.New("show not found")
	ErrShowAlreadyExists = errors.New("show already exists")
	ErrInvalidShow       = errors.New("invalid show")
	ErrShowNotUnique     = errors.New("more than one show matches")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidShow, msg)
}

// --- Repositorio de series ---

// ShowRepository persiste el agregado. Una especificación nil equivale a
// todas las series.
type ShowRepository interface {
	Create(ctx context.Context, s *TvShow, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*TvShow, error)
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
	FindAll(ctx context.Context, s spec.Specification[TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) ([]*TvShow, error)
	// FindOne devuelve ErrShowNotFound si no hay resultado y ErrShowNotUnique si hay varios.
	FindOne(ctx context.Context, s spec.Specification[TvShow]) (*TvShow, error)
	Count(ctx context.Context, s spec.Specification[TvShow]) (int64, error)
}

// ShowAnalyticsRepository guarda el histórico de eventos de series.
type ShowAnalyticsRepository interface {
	LogBatch(ctx context.Context, shows []*TvShow, eventType string) error
	CountMatching(ctx context.Context, s spec.Specification[TvShow], eventType string) (int64, error)
}

// ---------- Helpers comunes ----------

func ShowCacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("show:id:%s", id.String())
}

// SingleResult aplica la regla de FindOne a una lista ya filtrada; las
// filas repetidas por joins sin distinct cuentan una vez.
func SingleResult(shows []*TvShow) (*TvShow, error) {
	if len(shows) == 0 {
		return nil, ErrShowNotFound
	}
	first := shows[0]
	for _, s := range shows[1:] {
		if s.ID != first.ID {
			return nil, ErrShowNotUnique
		}
	}
	return first, nil
}
