package services

import (
	"context"
	"fmt"
	"strings"

	"quill/models"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const searchPredicate = `(LOWER(posts.title) LIKE LOWER(@pattern) ESCAPE '\'
 OR LOWER(posts.content) LIKE LOWER(@pattern) ESCAPE '\'
 OR EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id
  WHERE post_tags.post_id = posts.id AND LOWER(tags.name) LIKE LOWER(@pattern) ESCAPE '\'))`

type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// containsPattern builds a LIKE pattern matching query as a literal substring.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// Search finds published posts whose title, content or a tag name contains
// query, case-insensitively. An empty query matches nothing. Out-of-range
// pages fall back to the first.
func (s *SearchService) Search(ctx context.Context, query string, page, size int) (Page[models.Post], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return newPage([]models.Post{}, 1, size, 0), nil
	}

	matches := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Model(&models.Post{}).
			Scopes(published).
			Where(searchPredicate, map[string]interface{}{"pattern": containsPattern(query)})
	}

	var total int64
	if err := matches().Count(&total).Error; err != nil {
		return Page[models.Post]{}, fmt.Errorf("failed to count search results: %w", err)
	}
	page = ResolvePage(page, total, size, FirstPage)

	var posts []models.Post
	err := matches().
		Scopes(withDetails, newestFirst).
		Offset(offset(page, size)).Limit(size).
		Find(&posts).Error
	if err != nil {
		return Page[models.Post]{}, fmt.Errorf("failed to search posts: %w", err)
	}
	return newPage(posts, page, size, total), nil
}
