package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/memcrit"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/db/memory"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/mapping"
	"github.com/google/uuid"
)

var ErrUnavailable = errors.New("repository unavailable")

// FlakyShowRepo falla las primeras Failures lecturas por ID.
type FlakyShowRepo struct {
	*memory.ShowRepoMemory

	mu       sync.Mutex
	Failures int
	Calls    int
}

func NewFlakyShowRepo(failures int) *FlakyShowRepo {
	repo, err := memory.NewShowRepoMemory()
	if err != nil {
		panic(err)
	}
	return &FlakyShowRepo{ShowRepoMemory: repo, Failures: failures}
}

func (r *FlakyShowRepo) GetByID(ctx context.Context, id uuid.UUID) (*showDomain.TvShow, error) {
	r.mu.Lock()
	r.Calls++
	fail := r.Calls <= r.Failures
	r.mu.Unlock()

	if fail {
		return nil, ErrUnavailable
	}
	return r.ShowRepoMemory.GetByID(ctx, id)
}

// ------------------ Analytics ------------------

type loggedShow struct {
	show      *showDomain.TvShow
	eventType string
}

// FakeAnalyticsRepo guarda el histórico en memoria y lo filtra con el
// evaluador de especificaciones.
type FakeAnalyticsRepo struct {
	mu   sync.Mutex
	log  []loggedShow
	eval *memcrit.Evaluator
	Err  error
}

var _ showDomain.ShowAnalyticsRepository = (*FakeAnalyticsRepo)(nil)

func NewFakeAnalyticsRepo() *FakeAnalyticsRepo {
	eval, err := memcrit.NewEvaluator(mapping.Model(), mapping.ShowEntity)
	if err != nil {
		panic(err)
	}
	return &FakeAnalyticsRepo{eval: eval}
}

func (r *FakeAnalyticsRepo) LogBatch(ctx context.Context, shows []*showDomain.TvShow, eventType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, s := range shows {
		r.log = append(r.log, loggedShow{show: s, eventType: eventType})
	}
	return nil
}

func (r *FakeAnalyticsRepo) CountMatching(ctx context.Context, s spec.Specification[showDomain.TvShow], eventType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shows []*showDomain.TvShow
	for _, l := range r.log {
		if l.eventType == eventType {
			shows = append(shows, l.show)
		}
	}
	var f spec.Filter
	if s != nil {
		f = s
	}
	n, err := memcrit.Count(r.eval, shows, f)
	return int64(n), err
}

// Logged devuelve los nombres registrados para eventType.
func (r *FakeAnalyticsRepo) Logged(eventType string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.log {
		if l.eventType == eventType {
			out = append(out, l.show.Name)
		}
	}
	return out
}
