package application

import (
	"context"
	"errors"
	"time"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaspec/internal/shared/domain/events"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	sharedCache "github.com/davicafu/hexaspec/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/hexaspec/internal/shared/infra/utils"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const aggregateType = "show"

// ShowService define los casos de uso del catálogo.
// Incorpora repositorio, caché y logger.
type ShowService struct {
	repo     showDomain.ShowRepository
	cache    sharedCache.Cache
	cacheTTL time.Duration
	log      *zap.Logger

	retries    int
	retryDelay time.Duration
}

func NewShowService(repo showDomain.ShowRepository, cache sharedCache.Cache, cacheTTL time.Duration, log *zap.Logger) *ShowService {
	return &ShowService{
		repo:       repo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		log:        log,
		retries:    3,
		retryDelay: 100 * time.Millisecond,
	}
}

// ------------------ Escritura ------------------

// CreateShow valida la serie, completa IDs y fecha, reutiliza el género si
// ya existe uno con el mismo nombre y guarda el evento de outbox.
func (s *ShowService) CreateShow(ctx context.Context, show *showDomain.TvShow) (*showDomain.TvShow, error) {
	if err := show.Validate(); err != nil {
		return nil, err
	}

	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}
	if show.CreatedAt.IsZero() {
		show.CreatedAt = time.Now().UTC()
	}
	assignRatingIDs(show.StarRatings)

	if show.Genre != nil {
		genre, err := s.resolveGenre(ctx, show.Genre)
		if err != nil {
			s.log.Error("Failed to resolve genre", zap.String("genre", show.Genre.Name), zap.Error(err))
			return nil, err
		}
		show.Genre = genre
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, show.ID.String(), showDomain.ShowCreated, showDomain.NewShowCreated(show))
	if err := s.repo.Create(ctx, show, evt); err != nil {
		s.log.Error("Failed to create show", zap.String("show_id", show.ID.String()), zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, showDomain.ShowCacheKeyByID(show.ID), show, s.cacheTTL, s.log)
	return show, nil
}

// resolveGenre devuelve el género guardado con ese nombre o prepara uno nuevo.
func (s *ShowService) resolveGenre(ctx context.Context, g *showDomain.Genre) (*showDomain.Genre, error) {
	found, err := s.repo.FindAll(ctx, showDomain.HasGenreName(&g.Name), sharedQuery.OffsetPagination{Limit: 1}, nil)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 && found[0].Genre != nil {
		return found[0].Genre, nil
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	assignRatingIDs(g.StarRatings)
	return g, nil
}

func assignRatingIDs(ratings []showDomain.StarRating) {
	for i := range ratings {
		if ratings[i].ID == uuid.Nil {
			ratings[i].ID = uuid.New()
		}
	}
}

// ImportShows crea varias series; las que ya existen se ignoran.
func (s *ShowService) ImportShows(ctx context.Context, shows []*showDomain.TvShow) (int, error) {
	created := 0
	for _, show := range shows {
		_, err := s.CreateShow(ctx, show)
		switch {
		case err == nil:
			created++
		case errors.Is(err, showDomain.ErrShowAlreadyExists):
			s.log.Info("Show already imported", zap.String("show_id", show.ID.String()))
		default:
			return created, err
		}
	}
	return created, nil
}

// DeleteShow elimina la serie, crea el evento y limpia la caché.
func (s *ShowService) DeleteShow(ctx context.Context, id uuid.UUID) error {
	show, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	payload := sharedEvents.ShowDeleted{ID: show.ID, Name: show.Name}
	evt := sharedDomain.NewOutboxEvent(aggregateType, id.String(), showDomain.ShowDeleted, payload)
	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(s.cache, showDomain.ShowCacheKeyByID(id), s.log)
	return nil
}

// ------------------ Lectura ------------------

// GetShow obtiene una serie usando cache-aside con reintentos.
func (s *ShowService) GetShow(ctx context.Context, id uuid.UUID) (*showDomain.TvShow, error) {
	show, err := sharedCache.ReadThrough(ctx, s.cache, showDomain.ShowCacheKeyByID(id), s.cacheTTL, s.log,
		func(ctx context.Context) (*showDomain.TvShow, error) {
			var found *showDomain.TvShow
			err := sharedUtils.Retry(ctx, s.retries, s.retryDelay, func() error {
				var errRetry error
				found, errRetry = s.repo.GetByID(ctx, id)
				return errRetry
			}, showDomain.ErrShowNotFound)
			return found, err
		})

	if err != nil {
		if errors.Is(err, showDomain.ErrShowNotFound) {
			s.log.Warn("Show not found", zap.String("show_id", id.String()))
		} else {
			s.log.Error("Failed to fetch show", zap.String("show_id", id.String()), zap.Error(err))
		}
		return nil, err
	}
	return show, nil
}

// FindShows es un pass-through al repositorio para especificaciones libres.
func (s *ShowService) FindShows(ctx context.Context, sp spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) ([]*showDomain.TvShow, error) {
	return s.repo.FindAll(ctx, sp, page, sort)
}

// FindShow devuelve la única serie que cumple sp.
func (s *ShowService) FindShow(ctx context.Context, sp spec.Specification[showDomain.TvShow]) (*showDomain.TvShow, error) {
	return s.repo.FindOne(ctx, sp)
}

// SearchShows combina los filtros con OR; sin filtros devuelve todo.
func (s *ShowService) SearchShows(ctx context.Context, queries showDomain.ShowQueries, page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) ([]*showDomain.TvShow, error) {
	return s.repo.FindAll(ctx, queries.ToSpecification(), page, sort)
}

func (s *ShowService) CountShows(ctx context.Context, queries showDomain.ShowQueries) (int64, error) {
	return s.repo.Count(ctx, queries.ToSpecification())
}
