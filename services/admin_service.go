package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"quill/models"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

const (
	defaultAdminPageSize = 25
	maxAdminPageSize     = 100
)

// AdminQuery is a back-office list request: a free-text search, exact
// filters by name and a page.
type AdminQuery struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

func (q AdminQuery) filter(name string) string {
	return strings.TrimSpace(q.Filters[name])
}

func (q AdminQuery) size() int {
	switch {
	case q.PageSize < 1:
		return defaultAdminPageSize
	case q.PageSize > maxAdminPageSize:
		return maxAdminPageSize
	}
	return q.PageSize
}

// ContactRow is a contact message as listed in the back office.
type ContactRow struct {
	models.ContactMessage
	ShortMessage string `json:"short_message"`
}

// AdminService serves the staff list endpoints. Predicates are composed with
// squirrel and handed to gorm as a single WHERE clause.
type AdminService struct {
	db       *gorm.DB
	contacts *ContactService
}

func NewAdminService(db *gorm.DB, contacts *ContactService) *AdminService {
	return &AdminService{db: db, contacts: contacts}
}

func searchAny(term string, columns ...string) sq.Sqlizer {
	pattern := strings.ToLower(containsPattern(term))
	or := sq.Or{}
	for _, col := range columns {
		or = append(or, sq.Expr("LOWER("+col+") LIKE ? ESCAPE '\\'", pattern))
	}
	return or
}

func boolFilter(column, raw string) (sq.Sqlizer, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, NewValidationError(column, "Select a valid choice.")
	}
	return sq.Eq{column: v}, nil
}

func idFilter(column, raw string) (sq.Sqlizer, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, NewValidationError(column, "Enter a whole number.")
	}
	return sq.Eq{column: uint(v)}, nil
}

// where applies the conjunction to db; an empty conjunction applies nothing.
func where(db *gorm.DB, preds sq.And) (*gorm.DB, error) {
	if len(preds) == 0 {
		return db, nil
	}
	sql, args, err := preds.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build filter: %w", err)
	}
	return db.Where(sql, args...), nil
}

func adminList[T any](ctx context.Context, db *gorm.DB, q AdminQuery, preds sq.And, order string, preload ...string) (Page[T], error) {
	size := q.size()
	base := func() (*gorm.DB, error) {
		return where(db.WithContext(ctx).Model(new(T)), preds)
	}

	counter, err := base()
	if err != nil {
		return Page[T]{}, err
	}
	var total int64
	if err := counter.Count(&total).Error; err != nil {
		return Page[T]{}, fmt.Errorf("failed to count rows: %w", err)
	}
	page := ResolvePage(q.Page, total, size, LastPage)

	finder, err := base()
	if err != nil {
		return Page[T]{}, err
	}
	for _, assoc := range preload {
		finder = finder.Preload(assoc)
	}
	var items []T
	if err := finder.Order(order).Offset(offset(page, size)).Limit(size).Find(&items).Error; err != nil {
		return Page[T]{}, fmt.Errorf("failed to list rows: %w", err)
	}
	return newPage(items, page, size, total), nil
}

// Posts filters on status, author username and tag name and searches title,
// content and author username.
func (s *AdminService) Posts(ctx context.Context, q AdminQuery) (Page[models.Post], error) {
	preds := sq.And{}
	if status := q.filter("status"); status != "" {
		if !models.PostStatus(status).Valid() {
			return Page[models.Post]{}, NewValidationError("status", "Select a valid choice.")
		}
		preds = append(preds, sq.Eq{"posts.status": status})
	}
	if author := q.filter("author"); author != "" {
		preds = append(preds, sq.Expr("posts.user_id IN (SELECT id FROM users WHERE username = ?)", author))
	}
	if tag := q.filter("tag"); tag != "" {
		preds = append(preds, sq.Expr(
			"EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id WHERE post_tags.post_id = posts.id AND tags.name = ?)", tag))
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := strings.ToLower(containsPattern(term))
		preds = append(preds, sq.Or{
			searchAny(term, "posts.title", "posts.content"),
			sq.Expr("posts.user_id IN (SELECT id FROM users WHERE LOWER(username) LIKE ? ESCAPE '\\')", pattern),
		})
	}
	return adminList[models.Post](ctx, s.db, q, preds, "posts.created_at DESC, posts.id DESC", "User", "Tags")
}

// Users filters on is_staff and is_active and searches username, names and
// email.
func (s *AdminService) Users(ctx context.Context, q AdminQuery) (Page[models.User], error) {
	preds := sq.And{}
	for _, name := range []string{"is_staff", "is_active"} {
		if raw := q.filter(name); raw != "" {
			pred, err := boolFilter(name, raw)
			if err != nil {
				return Page[models.User]{}, err
			}
			preds = append(preds, pred)
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		preds = append(preds, searchAny(term, "username", "first_name", "last_name", "email"))
	}
	return adminList[models.User](ctx, s.db, q, preds, "username ASC")
}

// Comments filters on user and post ids and searches content.
func (s *AdminService) Comments(ctx context.Context, q AdminQuery) (Page[models.Comment], error) {
	preds := sq.And{}
	for _, f := range []struct{ param, column string }{{"user", "user_id"}, {"post", "post_id"}} {
		if raw := q.filter(f.param); raw != "" {
			pred, err := idFilter(f.column, raw)
			if err != nil {
				return Page[models.Comment]{}, err
			}
			preds = append(preds, pred)
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		preds = append(preds, searchAny(term, "content"))
	}
	return adminList[models.Comment](ctx, s.db, q, preds, "created_at DESC, id DESC", "User")
}

// Likes filters on user id and searches the liking user's username.
func (s *AdminService) Likes(ctx context.Context, q AdminQuery) (Page[models.Like], error) {
	preds := sq.And{}
	if raw := q.filter("user"); raw != "" {
		pred, err := idFilter("user_id", raw)
		if err != nil {
			return Page[models.Like]{}, err
		}
		preds = append(preds, pred)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := strings.ToLower(containsPattern(term))
		preds = append(preds, sq.Expr("user_id IN (SELECT id FROM users WHERE LOWER(username) LIKE ? ESCAPE '\\')", pattern))
	}
	return adminList[models.Like](ctx, s.db, q, preds, "created_at DESC, id DESC", "User")
}

// Contacts searches name, email and message, newest first.
func (s *AdminService) Contacts(ctx context.Context, q AdminQuery) (Page[ContactRow], error) {
	preds := sq.And{}
	if term := strings.TrimSpace(q.Search); term != "" {
		preds = append(preds, searchAny(term, "name", "email", "message"))
	}
	page, err := adminList[models.ContactMessage](ctx, s.db, q, preds, "created_at DESC, id DESC")
	if err != nil {
		return Page[ContactRow]{}, err
	}
	return MapPage(page, func(m models.ContactMessage) ContactRow {
		return ContactRow{ContactMessage: m, ShortMessage: m.ShortMessage()}
	}), nil
}

func (s *AdminService) DeleteContact(ctx context.Context, id uint) error {
	return s.contacts.Delete(ctx, id)
}
