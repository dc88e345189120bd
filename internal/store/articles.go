package store

import (
	"context"
	"fmt"

	"github.com/flatfly/flatfly-api/models"
)

func (s *Store) ListArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *Store) ArticleByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &article, nil
}
