package services

import (
	"time"

	"quill/models"
)

// AuthorView is the public face of a user; it never carries the email.
type AuthorView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Profile     string `json:"profile"`
}

type CommentView struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	Author    AuthorView `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
}

// PostView renders a post for one viewer. The viewer is always passed in;
// nothing about the requester is kept on the service.
type PostView struct {
	ID            uint          `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Slug          string        `json:"slug"`
	Status        string        `json:"status"`
	Path          string        `json:"path"`
	Author        AuthorView    `json:"author"`
	Tags          []string      `json:"tags"`
	LikeCount     int           `json:"like_count"`
	CommentCount  int           `json:"comment_count"`
	WordCount     int           `json:"word_count"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	CanEdit       bool          `json:"can_edit"`
	Comments      []CommentView `json:"comments,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func NewAuthorView(u *models.User) AuthorView {
	return AuthorView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		Avatar:      u.Avatar,
		Profile:     ProfilePath(u.Username),
	}
}

func NewCommentView(c *models.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		Author:    NewAuthorView(&c.User),
		CreatedAt: c.CreatedAt,
	}
}

// NewPostView summarises post for viewer, who may be nil.
func NewPostView(post *models.Post, viewer *models.User) PostView {
	v := PostView{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		Slug:         post.Slug,
		Status:       string(post.Status),
		Path:         post.Path(),
		Author:       NewAuthorView(&post.User),
		Tags:         post.TagNames(),
		LikeCount:    len(post.Likes),
		CommentCount: len(post.Comments),
		WordCount:    post.WordCount(),
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
	if viewer != nil {
		v.CanEdit = CanModify(viewer, post.UserID)
		for _, like := range post.Likes {
			if like.UserID == viewer.ID {
				v.LikedByViewer = true
				break
			}
		}
	}
	return v
}

// NewPostDetail is NewPostView plus the comment thread, oldest first.
func NewPostDetail(post *models.Post, viewer *models.User) PostView {
	v := NewPostView(post, viewer)
	v.Comments = make([]CommentView, 0, len(post.Comments))
	for i := range post.Comments {
		v.Comments = append(v.Comments, NewCommentView(&post.Comments[i]))
	}
	return v
}

func NewPostViews(posts []models.Post, viewer *models.User) []PostView {
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, NewPostView(&posts[i], viewer))
	}
	return views
}

func ProfilePath(username string) string {
	return "/account/@" + username + "/"
}
