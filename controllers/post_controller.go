package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"quill/config"
	"quill/middleware"
	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
)

type PostController struct {
	cfg      *config.Config
	posts    *services.PostService
	likes    *services.LikeService
	search   *services.SearchService
	sessions *services.SessionService
}

func NewPostController(cfg *config.Config, posts *services.PostService, likes *services.LikeService, search *services.SearchService, sessions *services.SessionService) *PostController {
	return &PostController{
		cfg:      cfg,
		posts:    posts,
		likes:    likes,
		search:   search,
		sessions: sessions,
	}
}

func postForm(p *models.Post) gin.H {
	return gin.H{
		"title":      p.Title,
		"content":    p.Content,
		"status":     p.Status,
		"tags_input": services.TagsInput(p),
	}
}

// Feed godoc
// @Summary Published posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} Response
// @Router / [get]
func (pc *PostController) Feed(c *gin.Context) {
	page, err := pc.posts.FeedPage(c.Request.Context(), services.ParsePage(c.Query("page")), pc.cfg.FeedPageSize)
	if err != nil {
		fail(c, err, nil)
		return
	}

	viewer := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, Response{Data: services.MapPage(page, func(p models.Post) services.PostView {
		return services.NewPostView(&p, viewer)
	})})
}

// Search godoc
// @Summary Search published posts
// @Tags posts
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page number"
// @Success 200 {object} Response
// @Router /search/ [get]
func (pc *PostController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	page, err := pc.search.Search(c.Request.Context(), query, services.ParsePage(c.Query("page")), pc.cfg.SearchPageSize)
	if err != nil {
		fail(c, err, nil)
		return
	}

	viewer := middleware.CurrentUser(c)
	resp := Response{
		Data: services.MapPage(page, func(p models.Post) services.PostView {
			return services.NewPostView(&p, viewer)
		}),
		Form: gin.H{"q": query},
	}
	if query != "" && page.Total == 0 {
		resp.Message = fmt.Sprintf("No posts found for '%s'.", query)
		resp.Level = LevelInfo
	}
	c.JSON(http.StatusOK, resp)
}

// NewForm godoc
// @Summary Empty post form
// @Tags posts
// @Produce json
// @Success 200 {object} Response
// @Router /new/ [get]
func (pc *PostController) NewForm(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Form: postForm(&models.Post{Status: models.StatusDrafted})})
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param post body models.CreatePostRequest true "Post"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /new/ [post]
func (pc *PostController) Create(c *gin.Context) {
	var req models.CreatePostRequest
	if !bind(c, &req, "Invalid form!", nil) {
		return
	}

	post, err := pc.posts.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		fail(c, err, req)
		return
	}

	slog.Info("post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	redirectTo(c, http.StatusCreated, post.Path(), Response{
		Data:    services.NewPostView(post, middleware.CurrentUser(c)),
		Message: "Your post was created successfully.",
		Level:   LevelSuccess,
	})
}

// Detail godoc
// @Summary Post with comments
// @Tags posts
// @Produce json
// @Param handle path string true "@username"
// @Param slug path string true "Post slug"
// @Success 200 {object} Response
// @Success 302 {object} Response
// @Failure 404 {object} Response
// @Router /{handle}/{slug}/ [get]
func (pc *PostController) Detail(c *gin.Context) {
	post, ok := pc.lookup(c, "")
	if !ok {
		return
	}

	viewer := middleware.CurrentUser(c)
	if viewer == nil {
		middleware.RedirectToLogin(c, "You need to be logged in to view this post.")
		return
	}
	if post.Status == models.StatusDrafted && !services.CanModify(viewer, post.UserID) {
		redirectTo(c, http.StatusFound, services.ProfilePath(viewer.Username), Response{
			Message: "You do not have permission to view this draft.",
			Level:   LevelError,
		})
		return
	}

	ctx := c.Request.Context()
	var recent []services.PostView
	if session := middleware.CurrentSession(c); session != nil {
		if err := pc.sessions.RememberView(ctx, session, post.Slug); err != nil {
			slog.Warn("failed to remember viewed post", "slug", post.Slug, "error", err)
		}
		posts, err := pc.posts.RecentlyViewed(ctx, session.RecentSlugs())
		if err != nil {
			fail(c, err, nil)
			return
		}
		recent = services.NewPostViews(posts, viewer)
	}
	if recent == nil {
		recent = []services.PostView{}
	}

	c.JSON(http.StatusOK, Response{
		Data: gin.H{
			"post":            services.NewPostDetail(post, viewer),
			"recently_viewed": recent,
		},
		Form: gin.H{"content": ""},
	})
}

// Like godoc
// @Summary Toggle the current user's like
// @Tags posts
// @Produce json
// @Param handle path string true "@username"
// @Param slug path string true "Post slug"
// @Success 200 {object} services.LikeState
// @Failure 404 {object} Response
// @Router /{handle}/{slug}/like/ [post]
func (pc *PostController) Like(c *gin.Context) {
	post, ok := pc.lookup(c, models.StatusPublished)
	if !ok {
		return
	}

	state, err := pc.likes.Toggle(c.Request.Context(), post, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, state)
}

// EditForm godoc
// @Summary Current values of a post
// @Tags posts
// @Produce json
// @Param handle path string true "@username"
// @Param slug path string true "Post slug"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Router /{handle}/{slug}/edit/ [get]
func (pc *PostController) EditForm(c *gin.Context) {
	post, ok := pc.editable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{Data: services.NewPostView(post, middleware.CurrentUser(c)), Form: postForm(post)})
}

// Edit godoc
// @Summary Update a post
// @Tags posts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param handle path string true "@username"
// @Param slug path string true "Post slug"
// @Param post body models.UpdatePostRequest true "Post"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /{handle}/{slug}/edit/ [post]
func (pc *PostController) Edit(c *gin.Context) {
	post, ok := pc.editable(c)
	if !ok {
		return
	}

	var req models.UpdatePostRequest
	if !bind(c, &req, "Invalid form!", nil) {
		return
	}

	updated, err := pc.posts.Update(c.Request.Context(), middleware.CurrentUser(c), post, &req)
	if err != nil {
		fail(c, err, req)
		return
	}
	redirectTo(c, http.StatusOK, updated.Path(), Response{
		Data:    services.NewPostView(updated, middleware.CurrentUser(c)),
		Message: "Your post was updated successfully.",
		Level:   LevelSuccess,
	})
}

// lookup resolves /@username/slug/, optionally requiring a status.
func (pc *PostController) lookup(c *gin.Context, status models.PostStatus) (*models.Post, bool) {
	username, ok := handle(c, "handle")
	if !ok {
		return nil, false
	}
	post, err := pc.posts.FindBySlug(c.Request.Context(), c.Param("slug"), services.SlugFilter{
		AuthorUsername: username,
		Status:         status,
	})
	if err != nil {
		fail(c, err, nil)
		return nil, false
	}
	return post, true
}

func (pc *PostController) editable(c *gin.Context) (*models.Post, bool) {
	post, ok := pc.lookup(c, "")
	if !ok {
		return nil, false
	}
	if !services.CanModify(middleware.CurrentUser(c), post.UserID) {
		c.JSON(http.StatusForbidden, Response{Message: "You do not have permission to edit this post.", Level: LevelError})
		return nil, false
	}
	return post, true
}
