package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/davicafu/hexaspec/internal/config"
	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	sharedCache "github.com/davicafu/hexaspec/internal/shared/infra/platform/cache"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/mongocrit"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"
	sharedMongo "github.com/davicafu/hexaspec/internal/shared/infra/platform/db/mongodb"
	sharedSQL "github.com/davicafu/hexaspec/internal/shared/infra/platform/db/sqldb"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	"github.com/davicafu/hexaspec/internal/show/application"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/analytics/clickhouse"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/db/memory"
	showMongo "github.com/davicafu/hexaspec/internal/show/infra/outbound/db/mongodb"
	showSQL "github.com/davicafu/hexaspec/internal/show/infra/outbound/db/sqldb"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/filesystem"
)

// explainer muestra la consulta nativa que ejecutaría el backend.
type explainer func(s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) (string, error)

// App agrupa los adapters construidos a partir de la configuración.
type App struct {
	Config    *config.Config
	Repo      showDomain.ShowRepository
	Outbox    sharedDomain.OutboxRepository
	Analytics showDomain.ShowAnalyticsRepository // nil sin ClickHouse
	Cache     sharedCache.Cache                  // nil salvo withCache
	Service   *application.ShowService

	explain explainer
	closers []func() error
	log     *zap.Logger
}

// NewApp abre el backend configurado, crea el esquema y monta el servicio.
// Con withCache se conecta a Redis o, si no responde, usa caché en memoria.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger, withCache bool) (*App, error) {
	app := &App{Config: cfg, log: log}

	var err error
	switch cfg.Backend {
	case config.BackendSQLite, config.BackendPostgres:
		err = app.openSQL(ctx)
	case config.BackendMongo:
		err = app.openMongo(ctx)
	case config.BackendMemory:
		err = app.openMemory(ctx)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		app.Close()
		return nil, err
	}

	if withCache {
		app.Cache = app.openCache(ctx)
	}
	app.Analytics = app.openAnalytics(ctx)
	app.Service = application.NewShowService(app.Repo, app.Cache, cfg.CacheTTL, log)
	return app, nil
}

// ---------------- Backends ----------------

func (a *App) openSQL(ctx context.Context) error {
	d, err := sqlcrit.DialectByName(a.Config.Backend)
	if err != nil {
		return err
	}
	var db *sql.DB
	if d.Name == sqlcrit.Postgres.Name {
		db, err = sharedSQL.OpenPostgres(a.Config.PostgresURL)
	} else {
		db, err = sharedSQL.OpenSQLite(a.Config.SQLitePath)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", d.Name, err)
	}
	a.closers = append(a.closers, db.Close)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", d.Name, err)
	}

	repo, err := showSQL.NewShowRepoSQL(db, d)
	if err != nil {
		return err
	}
	if err := repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	a.Repo = repo
	a.Outbox = sharedSQL.NewOutboxRepo(db, d)
	a.explain = func(s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) (string, error) {
		opts := sqlcrit.Options{Columns: []string{"id", "name"}, Limit: page.Limit, Offset: page.Offset}
		for _, o := range sort {
			opts.Sort = append(opts.Sort, sqlcrit.Sort{Field: o.Field, Desc: o.Desc})
		}
		stmt, err := repo.Compiler().Select(asFilter(s), opts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s\nargs: %v", stmt.SQL, stmt.Args), nil
	}
	return nil
}

func (a *App) openMongo(ctx context.Context) error {
	client, err := sharedMongo.Connect(ctx, a.Config.MongoURI)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })

	repo, err := showMongo.NewShowRepoMongoDB(ctx, client, a.Config.MongoDB)
	if err != nil {
		return err
	}
	if err := repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("init indexes: %w", err)
	}

	a.Repo = repo
	a.Outbox = sharedMongo.NewOutboxRepoMongoDB(client.Database(a.Config.MongoDB))
	a.explain = func(s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) (string, error) {
		filter, err := repo.Translator().Filter(asFilter(s))
		if err != nil {
			return "", err
		}
		sorts := make([]mongocrit.Sort, 0, len(sort))
		for _, o := range sort {
			sorts = append(sorts, mongocrit.Sort{Field: o.Field, Desc: o.Desc})
		}
		order, err := repo.Translator().Sort(sorts)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, part := range []struct {
			label string
			doc   bson.D
		}{{"filter", filter}, {"sort", order}} {
			raw, err := bson.MarshalExtJSONWithRegistry(sharedMongo.Registry(), part.doc, false, false)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s: %s\n", part.label, raw)
		}
		fmt.Fprintf(&b, "skip: %d limit: %d", page.Offset, page.Limit)
		return b.String(), nil
	}
	return nil
}

// openMemory restaura la instantánea JSON, si existe, y la guarda al cerrar.
func (a *App) openMemory(ctx context.Context) error {
	repo, err := memory.NewShowRepoMemory()
	if err != nil {
		return err
	}
	if path := a.Config.MemorySnapshot; path != "" {
		storage := filesystem.NewJSONShowStorage(path)
		shows, err := storage.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		repo.Restore(shows)
		a.closers = append(a.closers, func() error {
			return storage.SaveAll(context.Background(), repo.Snapshot())
		})
	}

	a.Repo = repo
	a.Outbox = repo
	a.explain = func(spec.Specification[showDomain.TvShow], sharedQuery.OffsetPagination, []sharedQuery.Sort) (string, error) {
		return "", errors.New("memory backend evaluates specifications in process")
	}
	return nil
}

// ---------------- Infra opcional ----------------

func (a *App) openCache(ctx context.Context) sharedCache.Cache {
	ttl := a.Config.CacheTTL
	if a.Config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
		err := rdb.Ping(ctx).Err()
		if err == nil {
			a.log.Info("Redis connected, cache enabled", zap.String("addr", a.Config.RedisAddr))
			a.closers = append(a.closers, rdb.Close)
			return sharedCache.NewRedisCache(rdb, ttl)
		}
		a.log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		_ = rdb.Close()
	}
	mem := sharedCache.NewInMemoryCache(ttl, 3*ttl)
	a.closers = append(a.closers, func() error { mem.Stop(); return nil })
	return mem
}

func (a *App) openAnalytics(ctx context.Context) showDomain.ShowAnalyticsRepository {
	if a.Config.ClickHouseAddr == "" {
		return nil
	}
	repo, err := clickhouse.NewShowAnalyticsRepo(a.Config.ClickHouseAddr, a.Config.ClickHouseDB)
	if err == nil {
		err = repo.InitSchema(ctx)
	}
	if err != nil {
		a.log.Warn("ClickHouse unavailable, analytics disabled", zap.Error(err))
		return nil
	}
	a.closers = append(a.closers, repo.Close)
	return repo
}

// Explain devuelve la consulta nativa de s.
func (a *App) Explain(s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) (string, error) {
	return a.explain(s, page, sort)
}

// Close libera recursos en orden inverso de apertura.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func asFilter(s spec.Specification[showDomain.TvShow]) spec.Filter {
	if s == nil {
		return nil
	}
	return s
}
