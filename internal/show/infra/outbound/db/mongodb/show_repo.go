package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/mongocrit"
	sharedMongo "github.com/davicafu/hexaspec/internal/shared/infra/platform/db/mongodb"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/mapping"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ShowRepoMongoDB implementa ShowRepository con el género, las
// valoraciones y el precio embebidos en el documento.
type ShowRepoMongoDB struct {
	client     *mongo.Client
	showsColl  *mongo.Collection
	outboxColl *mongo.Collection
	translator *mongocrit.Translator
}

// NewShowRepoMongoDB espera un cliente creado con el registro de UUID de
// sharedMongo.Connect.
func NewShowRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*ShowRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	tr, err := mongocrit.NewTranslator(mapping.Model(), mapping.ShowEntity)
	if err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	return &ShowRepoMongoDB{
		client:     client,
		showsColl:  db.Collection(mapping.ShowsCollection),
		outboxColl: db.Collection(sharedMongo.OutboxCollection),
		translator: tr,
	}, nil
}

// Translator expone el traductor para mostrar el filtro generado.
func (r *ShowRepoMongoDB) Translator() *mongocrit.Translator { return r.translator }

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoShow struct {
	ID                 uuid.UUID     `bson:"_id"`
	Genre              *mongoGenre   `bson:"genre,omitempty"`
	Name               string        `bson:"name"`
	Synopsis           string        `bson:"synopsis"`
	AvailableOnNetflix bool          `bson:"availableOnNetflix"`
	ReleaseDate        *string       `bson:"releaseDate"`
	StarRatings        []mongoRating `bson:"starRatings"`
	Price              mongoPrice    `bson:"price"`
	CreatedAt          time.Time     `bson:"createdAt"`
}

type mongoGenre struct {
	ID          uuid.UUID     `bson:"_id"`
	Name        string        `bson:"name"`
	StarRatings []mongoRating `bson:"starRatings"`
}

type mongoRating struct {
	ID    uuid.UUID `bson:"_id"`
	Stars int       `bson:"stars"`
}

type mongoPrice struct {
	Amount   float64 `bson:"amount"`
	Currency string  `bson:"currency"`
}

// --- CRUD Transaccional ---

func (r *ShowRepoMongoDB) Create(ctx context.Context, s *showDomain.TvShow, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// La transacción asegura que ambas inserciones (serie y evento) sean atómicas.
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.showsColl.InsertOne(sessCtx, toMongoShow(s)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, showDomain.ErrShowAlreadyExists
			}
			return nil, err
		}
		return nil, sharedMongo.InsertOutbox(sessCtx, r.outboxColl, evt)
	})
	return err
}

func (r *ShowRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.showsColl.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, showDomain.ErrShowNotFound
		}
		return nil, sharedMongo.InsertOutbox(sessCtx, r.outboxColl, evt)
	})
	return err
}

// --- Lectura ---

func (r *ShowRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*showDomain.TvShow, error) {
	var ms mongoShow
	err := r.showsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&ms)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, showDomain.ErrShowNotFound
		}
		return nil, err
	}
	return fromMongoShow(&ms), nil
}

// FindAll devuelve cada documento una vez: en MongoDB los joins no
// multiplican resultados.
func (r *ShowRepoMongoDB) FindAll(ctx context.Context, s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) ([]*showDomain.TvShow, error) {
	filter, err := r.translator.Filter(asFilter(s))
	if err != nil {
		return nil, err
	}

	sorts := make([]mongocrit.Sort, 0, len(sort)+1)
	for _, o := range sort {
		sorts = append(sorts, mongocrit.Sort{Field: o.Field, Desc: o.Desc})
	}
	if len(sorts) == 0 {
		sorts = append(sorts, mongocrit.Sort{Field: "createdAt"}, mongocrit.Sort{Field: "id"})
	}
	order, err := r.translator.Sort(sorts)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(order)
	if page.Offset > 0 {
		opts.SetSkip(int64(page.Offset))
	}
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}

	cursor, err := r.showsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find shows: %w", err)
	}
	defer cursor.Close(ctx)

	var shows []*showDomain.TvShow
	for cursor.Next(ctx) {
		var ms mongoShow
		if err := cursor.Decode(&ms); err != nil {
			return nil, err
		}
		shows = append(shows, fromMongoShow(&ms))
	}
	return shows, cursor.Err()
}

func (r *ShowRepoMongoDB) FindOne(ctx context.Context, s spec.Specification[showDomain.TvShow]) (*showDomain.TvShow, error) {
	shows, err := r.FindAll(ctx, s, sharedQuery.OffsetPagination{Limit: 2}, nil)
	if err != nil {
		return nil, err
	}
	return showDomain.SingleResult(shows)
}

func (r *ShowRepoMongoDB) Count(ctx context.Context, s spec.Specification[showDomain.TvShow]) (int64, error) {
	filter, err := r.translator.Filter(asFilter(s))
	if err != nil {
		return 0, err
	}
	n, err := r.showsColl.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count shows: %w", err)
	}
	return n, nil
}

// InitSchema crea los índices de búsqueda habituales.
func (r *ShowRepoMongoDB) InitSchema(ctx context.Context) error {
	_, err := r.showsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "genre.name", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	_, err = r.outboxColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "processed", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

// --- Helpers de Mapeo y Conversión ---

func asFilter(s spec.Specification[showDomain.TvShow]) spec.Filter {
	if s == nil {
		return nil
	}
	return s
}

func toMongoRatings(rs []showDomain.StarRating) []mongoRating {
	out := make([]mongoRating, len(rs))
	for i, sr := range rs {
		out[i] = mongoRating{ID: sr.ID, Stars: sr.Stars}
	}
	return out
}

func fromMongoRatings(rs []mongoRating) []showDomain.StarRating {
	if len(rs) == 0 {
		return nil
	}
	out := make([]showDomain.StarRating, len(rs))
	for i, sr := range rs {
		out[i] = showDomain.StarRating{ID: sr.ID, Stars: sr.Stars}
	}
	return out
}

func toMongoShow(s *showDomain.TvShow) *mongoShow {
	ms := &mongoShow{
		ID: s.ID, Name: s.Name, Synopsis: s.Synopsis, AvailableOnNetflix: s.AvailableOnNetflix,
		ReleaseDate: s.ReleaseDate, StarRatings: toMongoRatings(s.StarRatings),
		Price: mongoPrice{Amount: s.Price.Amount, Currency: s.Price.Currency}, CreatedAt: s.CreatedAt,
	}
	if s.Genre != nil {
		ms.Genre = &mongoGenre{ID: s.Genre.ID, Name: s.Genre.Name, StarRatings: toMongoRatings(s.Genre.StarRatings)}
	}
	return ms
}

func fromMongoShow(ms *mongoShow) *showDomain.TvShow {
	s := &showDomain.TvShow{
		ID: ms.ID, Name: ms.Name, Synopsis: ms.Synopsis, AvailableOnNetflix: ms.AvailableOnNetflix,
		ReleaseDate: ms.ReleaseDate, StarRatings: fromMongoRatings(ms.StarRatings),
		Price: showDomain.Price{Amount: ms.Price.Amount, Currency: ms.Price.Currency}, CreatedAt: ms.CreatedAt.UTC(),
	}
	if ms.Genre != nil {
		s.Genre = &showDomain.Genre{ID: ms.Genre.ID, Name: ms.Genre.Name, StarRatings: fromMongoRatings(ms.Genre.StarRatings)}
	}
	return s
}

// Verificación en tiempo de compilación.
var _ showDomain.ShowRepository = (*ShowRepoMongoDB)(nil)
