package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"blog-hand/config"
	"blog-hand/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore speichert den Artikel-Snapshot in einer MongoDB-Collection.
type MongoStore struct {
	client   *mongo.Client
	articles *mongo.Collection
	logger   *zap.Logger
}

// NewMongoStore verbindet sich mit MongoDB und legt die Indizes an.
func NewMongoStore(cfg *config.Config, log *zap.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	s := &MongoStore{
		client:   client,
		articles: client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
		logger:   log,
	}
	s.createIndexes(ctx)
	log.Info("Successfully connected to archive collection.", zap.String("collection", cfg.MongoCollection))
	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "categories.slug", Value: 1}}},
		{Keys: bson.D{{Key: "tags.slug", Value: 1}}},
	}
	if _, err := s.articles.Indexes().CreateMany(ctx, indexes); err != nil {
		s.logger.Warn("Indizes konnten nicht angelegt werden", zap.Error(err))
	}
}

// ReplaceAll ersetzt alle Dokumente per Upsert und entfernt veraltete.
func (s *MongoStore) ReplaceAll(ctx context.Context, articles []*models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(articles))
	for _, a := range articles {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": a.ID}).
			SetReplacement(a).
			SetUpsert(true))
	}
	if _, err := s.articles.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return 0, fmt.Errorf("upsert archived articles: %w", err)
	}
	res, err := s.articles.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": articleIDs(articles)}})
	if err != nil {
		return 0, fmt.Errorf("delete stale articles: %w", err)
	}
	s.logger.Debug("Archiv aktualisiert", zap.Int("articles", len(articles)), zap.Int64("deleted", res.DeletedCount))
	return len(articles), nil
}

// List liest Artikel passend zum Filter, neueste zuerst.
func (s *MongoStore) List(ctx context.Context, f Filter) ([]*models.Article, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cursor, err := s.articles.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list archived articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []*models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode archived articles: %w", err)
	}
	return articles, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	return s.articles.CountDocuments(ctx, bson.M{})
}

// Close trennt die Verbindung.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongoFilter übersetzt einen Filter in ein bson-Dokument.
func mongoFilter(f Filter) bson.M {
	var clauses []bson.M
	if f.ID != "" {
		clauses = append(clauses, bson.M{"_id": f.ID})
	}
	if f.Slug != "" {
		clauses = append(clauses, bson.M{"slug": f.Slug})
	}
	if f.Category != "" {
		clauses = append(clauses, termFilter("categories", f.Category))
	}
	if f.Tag != "" {
		clauses = append(clauses, termFilter("tags", f.Tag))
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

func termFilter(field, value string) bson.M {
	return bson.M{"$or": []bson.M{
		{field + ".slug": value},
		{field + ".title": bson.M{"$regex": "^" + regexp.QuoteMeta(value) + "$", "$options": "i"}},
	}}
}
