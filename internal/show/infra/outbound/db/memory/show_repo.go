package memory

import (
	"context"
	"fmt"
	"sync"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/memcrit"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/mapping"
	"github.com/google/uuid"
)

// ShowRepoMemory guarda series y outbox en memoria. Evalúa las
// especificaciones con la misma semántica que el backend SQL.
type ShowRepoMemory struct {
	mu     sync.RWMutex
	shows  []*showDomain.TvShow
	outbox []sharedDomain.OutboxEvent
	eval   *memcrit.Evaluator
}

func NewShowRepoMemory() (*ShowRepoMemory, error) {
	eval, err := memcrit.NewEvaluator(mapping.Model(), mapping.ShowEntity)
	if err != nil {
		return nil, err
	}
	return &ShowRepoMemory{eval: eval}, nil
}

// ------------------ CRUD + Outbox ------------------

func (r *ShowRepoMemory) Create(ctx context.Context, s *showDomain.TvShow, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(s.ID) >= 0 {
		return showDomain.ErrShowAlreadyExists
	}
	r.shows = append(r.shows, clone(s))
	r.outbox = append(r.outbox, evt)
	return nil
}

func (r *ShowRepoMemory) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return showDomain.ErrShowNotFound
	}
	r.shows = append(r.shows[:i], r.shows[i+1:]...)
	r.outbox = append(r.outbox, evt)
	return nil
}

func (r *ShowRepoMemory) indexOf(id uuid.UUID) int {
	for i, s := range r.shows {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// ------------------ Lectura ------------------

func (r *ShowRepoMemory) GetByID(ctx context.Context, id uuid.UUID) (*showDomain.TvShow, error) {
	return r.FindOne(ctx, spec.Equal(showDomain.ShowID, id))
}

func (r *ShowRepoMemory) FindAll(ctx context.Context, s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) ([]*showDomain.TvShow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := memcrit.Options{Limit: page.Limit, Offset: page.Offset}
	for _, o := range sortOrDefault(sort) {
		opts.Sort = append(opts.Sort, memcrit.Sort{Field: o.Field, Desc: o.Desc})
	}
	found, err := memcrit.Select(r.eval, r.shows, filter(s), opts)
	if err != nil {
		return nil, fmt.Errorf("find shows: %w", err)
	}
	out := make([]*showDomain.TvShow, len(found))
	for i, f := range found {
		out[i] = clone(f)
	}
	return out, nil
}

func (r *ShowRepoMemory) FindOne(ctx context.Context, s spec.Specification[showDomain.TvShow]) (*showDomain.TvShow, error) {
	shows, err := r.FindAll(ctx, s, sharedQuery.OffsetPagination{}, nil)
	if err != nil {
		return nil, err
	}
	return showDomain.SingleResult(shows)
}

func (r *ShowRepoMemory) Count(ctx context.Context, s spec.Specification[showDomain.TvShow]) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, err := memcrit.Count(r.eval, r.shows, filter(s))
	if err != nil {
		return 0, fmt.Errorf("count shows: %w", err)
	}
	return int64(n), nil
}

// ------------------ Outbox ------------------

func (r *ShowRepoMemory) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pending []sharedDomain.OutboxEvent
	for _, evt := range r.outbox {
		if len(pending) == limit {
			break
		}
		if !evt.Processed {
			pending = append(pending, evt)
		}
	}
	return pending, nil
}

func (r *ShowRepoMemory) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.outbox {
		if r.outbox[i].ID == id {
			r.outbox[i].Processed = true
			return nil
		}
	}
	return fmt.Errorf("outbox event not found: %s", id)
}

// ------------------ Instantáneas ------------------

// Restore sustituye el catálogo sin generar eventos.
func (r *ShowRepoMemory) Restore(shows []*showDomain.TvShow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows = make([]*showDomain.TvShow, 0, len(shows))
	for _, s := range shows {
		r.shows = append(r.shows, clone(s))
	}
}

// Snapshot devuelve una copia del catálogo en orden de inserción.
func (r *ShowRepoMemory) Snapshot() []*showDomain.TvShow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*showDomain.TvShow, len(r.shows))
	for i, s := range r.shows {
		out[i] = clone(s)
	}
	return out
}

// Outbox devuelve una copia de todos los eventos guardados.
func (r *ShowRepoMemory) Outbox() []sharedDomain.OutboxEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]sharedDomain.OutboxEvent(nil), r.outbox...)
}

// ------------------ Helpers ------------------

// filter evita pasar una interfaz no nil que envuelve un nil.
func filter(s spec.Specification[showDomain.TvShow]) spec.Filter {
	if s == nil {
		return nil
	}
	return s
}

func sortOrDefault(sort []sharedQuery.Sort) []sharedQuery.Sort {
	if len(sort) == 0 {
		return []sharedQuery.Sort{{Field: "createdAt"}}
	}
	return sort
}

func clone(s *showDomain.TvShow) *showDomain.TvShow {
	c := *s
	if s.Genre != nil {
		g := *s.Genre
		g.StarRatings = append([]showDomain.StarRating(nil), s.Genre.StarRatings...)
		c.Genre = &g
	}
	if s.ReleaseDate != nil {
		d := *s.ReleaseDate
		c.ReleaseDate = &d
	}
	c.StarRatings = append([]showDomain.StarRating(nil), s.StarRatings...)
	return &c
}

// Verificaciones en tiempo de compilación.
var (
	_ showDomain.ShowRepository     = (*ShowRepoMemory)(nil)
	_ sharedDomain.OutboxRepository = (*ShowRepoMemory)(nil)
)
