package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"quill/models"
	"quill/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostService struct {
	db      *gorm.DB
	metrics *observability.Metrics
}

func NewPostService(db *gorm.DB, metrics *observability.Metrics) *PostService {
	return &PostService{db: db, metrics: metrics}
}

// SlugFilter narrows FindBySlug. Zero fields do not filter.
type SlugFilter struct {
	AuthorUsername string
	Status         models.PostStatus
}

// withDetails is the only read path: author, tags, likes and comments (with
// their authors) come back in a fixed number of queries.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC").Order("comments.id ASC")
		}).
		Preload("Comments.User")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id DESC")
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", models.StatusPublished)
}

// PublishedFeed returns every published post, newest first.
func (s *PostService) PublishedFeed(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Scopes(withDetails, published, newestFirst).Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return posts, nil
}

// FeedPage pages the published feed. Pages past the end clamp to the last.
func (s *PostService) FeedPage(ctx context.Context, page, size int) (Page[models.Post], error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(published).Count(&total).Error; err != nil {
		return Page[models.Post]{}, fmt.Errorf("failed to count feed: %w", err)
	}
	page = ResolvePage(page, total, size, LastPage)

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(withDetails, published, newestFirst).
		Offset(offset(page, size)).Limit(size).
		Find(&posts).Error
	if err != nil {
		return Page[models.Post]{}, fmt.Errorf("failed to load feed: %w", err)
	}
	return newPage(posts, page, size, total), nil
}

// ByAuthor returns all of a user's posts regardless of status. Hiding drafts
// from other viewers is the caller's job.
func (s *PostService) ByAuthor(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(withDetails, newestFirst).
		Where("posts.user_id = ?", userID).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load posts for user %d: %w", userID, err)
	}
	return posts, nil
}

func (s *PostService) FindBySlug(ctx context.Context, slug string, filter SlugFilter) (*models.Post, error) {
	q := s.db.WithContext(ctx).Scopes(withDetails).Where("posts.slug = ?", slug)
	if filter.AuthorUsername != "" {
		q = q.Where("posts.user_id IN (?)",
			s.db.Model(&models.User{}).Select("id").Where("username = ?", filter.AuthorUsername))
	}
	if filter.Status != "" {
		q = q.Where("posts.status = ?", filter.Status)
	}

	var post models.Post
	if err := q.First(&post).Error; err != nil {
		return nil, notFound(err, "post "+slug)
	}
	return &post, nil
}

// RecentlyViewed loads the published posts among slugs, newest first.
func (s *PostService) RecentlyViewed(ctx context.Context, slugs []string) ([]models.Post, error) {
	if len(slugs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(withDetails, published, newestFirst).
		Where("posts.slug IN ?", slugs).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recently viewed posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Create(ctx context.Context, author *models.User, req *models.CreatePostRequest) (*models.Post, error) {
	if author == nil {
		return nil, ErrPermissionDenied
	}
	verr := validatePost(req)
	if !verr.Empty() {
		return nil, verr
	}

	status := req.Status
	if status == "" {
		status = models.StatusDrafted
	}
	tags := NormalizeTags(req.TagsInput)

	var post *models.Post
	var err error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		post = &models.Post{
			Title:   strings.TrimSpace(req.Title),
			Content: req.Content,
			Status:  status,
			UserID:  author.ID,
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			slug, err := UniqueSlug(tx, post.Title, 0)
			if err != nil {
				return err
			}
			post.Slug = slug
			if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
				return err
			}
			return SetPostTags(tx, post, tags)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		slog.Warn("slug collision on insert, retrying", "slug", post.Slug, "attempt", attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.PostCreated(ctx, string(post.Status))
	return s.byID(ctx, post.ID)
}

// Update edits title, content, status and tags. The slug never changes.
func (s *PostService) Update(ctx context.Context, actor *models.User, post *models.Post, req *models.UpdatePostRequest) (*models.Post, error) {
	if !CanModify(actor, post.UserID) {
		return nil, ErrPermissionDenied
	}
	verr := validatePost(req)
	if !verr.Empty() {
		return nil, verr
	}

	status := req.Status
	if status == "" {
		status = post.Status
	}
	tags := NormalizeTags(req.TagsInput)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{ID: post.ID}).
			Select("title", "content", "status").
			Updates(models.Post{Title: strings.TrimSpace(req.Title), Content: req.Content, Status: status}).Error
		if err != nil {
			return err
		}
		return SetPostTags(tx, &models.Post{ID: post.ID}, tags)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update post %s: %w", post.Slug, err)
	}

	return s.byID(ctx, post.ID)
}

func (s *PostService) byID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Scopes(withDetails).First(&post, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("post %d", id))
	}
	return &post, nil
}

func validatePost(req *models.CreatePostRequest) *ValidationError {
	verr := &ValidationError{}
	if strings.TrimSpace(req.Title) == "" {
		verr.Add("title", "This field is required.")
	}
	if strings.TrimSpace(req.Content) == "" {
		verr.Add("content", "This field is required.")
	}
	if req.Status != "" && !req.Status.Valid() {
		verr.Add("status", "Select a valid choice.")
	}
	for _, name := range NormalizeTags(req.TagsInput) {
		if utf8.RuneCountInString(name) > maxTagLength {
			verr.Add("tags_input", fmt.Sprintf("Ensure each tag has at most %d characters.", maxTagLength))
			break
		}
	}
	return verr
}
