package storage

import (
	"context"
	"fmt"

	"blog-hand/config"
	"blog-hand/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// termCondition sucht in einer jsonb-Spalte ([]Term) nach Slug oder Titel.
const termCondition = `EXISTS (SELECT 1 FROM jsonb_array_elements(%s) AS t WHERE t->>'slug' = ? OR lower(t->>'title') = lower(?))`

// PostgresStore speichert den Artikel-Snapshot in der Tabelle archived_articles.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostgresStore verbindet sich mit der Datenbank und migriert die Tabelle.
func NewPostgresStore(cfg *config.Config, log *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect archive database: %w", err)
	}
	log.Info("Successfully connected to archive database.")

	if err := db.AutoMigrate(&models.Article{}); err != nil {
		return nil, fmt.Errorf("migrate archived_articles: %w", err)
	}
	return &PostgresStore{db: db, logger: log}, nil
}

// ReplaceAll schreibt alle Artikel per Upsert und löscht nicht mehr vorhandene in einer Transaktion.
func (s *PostgresStore) ReplaceAll(ctx context.Context, articles []*models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(articles, 100).Error; err != nil {
			return err
		}
		return tx.Where("id NOT IN ?", articleIDs(articles)).Delete(&models.Article{}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("replace archived articles: %w", err)
	}
	s.logger.Debug("Archiv aktualisiert", zap.Int("articles", len(articles)))
	return len(articles), nil
}

// List liest Artikel passend zum Filter, neueste zuerst.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*models.Article, error) {
	query := s.db.WithContext(ctx).Model(&models.Article{})
	if f.ID != "" {
		query = query.Where("id = ?", f.ID)
	}
	if f.Slug != "" {
		query = query.Where("slug = ?", f.Slug)
	}
	if f.Category != "" {
		query = query.Where(fmt.Sprintf(termCondition, "categories"), f.Category, f.Category)
	}
	if f.Tag != "" {
		query = query.Where(fmt.Sprintf(termCondition, "tags"), f.Tag, f.Tag)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var articles []*models.Article
	if err := query.Order("published_at DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list archived articles: %w", err)
	}
	return articles, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).Count(&count).Error
	return count, err
}
