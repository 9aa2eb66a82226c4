package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quill/middleware"
	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const msgProfileForbidden = "sorry! you don't have permission for this!!!"

type UserController struct {
	userService *services.UserService
	postService *services.PostService
	avatars     *services.AvatarStore
}

func NewUserController(db *gorm.DB, posts *services.PostService, avatars *services.AvatarStore) *UserController {
	return &UserController{
		userService: services.NewUserService(db),
		postService: posts,
		avatars:     avatars,
	}
}

// ProfileView is a user's public profile. Email is only shown to viewers
// allowed to edit it.
type ProfileView struct {
	services.AuthorView
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	Bio        string              `json:"bio"`
	Email      string              `json:"email,omitempty"`
	DateJoined time.Time           `json:"date_joined"`
	CanEdit    bool                `json:"can_edit"`
	Posts      []services.PostView `json:"posts"`
}

func profileForm(u *models.User) gin.H {
	return gin.H{"username": u.Username, "email": u.Email, "bio": u.Bio, "avatar": u.Avatar}
}

// Profile godoc
// @Summary User profile with posts
// @Tags account
// @Produce json
// @Param handle path string true "@username"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /account/{handle}/ [get]
func (uc *UserController) Profile(c *gin.Context) {
	username, ok := handle(c, "handle")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := uc.userService.GetByUsername(ctx, username)
	if err != nil {
		fail(c, err, nil)
		return
	}

	posts, err := uc.postService.ByAuthor(ctx, user.ID)
	if err != nil {
		fail(c, err, nil)
		return
	}

	viewer := middleware.CurrentUser(c)
	canEdit := services.CanModify(viewer, user.ID)
	visible := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if canEdit || p.IsPublished() {
			visible = append(visible, p)
		}
	}

	profile := ProfileView{
		AuthorView: services.NewAuthorView(user),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Bio:        user.Bio,
		DateJoined: user.CreatedAt,
		CanEdit:    canEdit,
		Posts:      services.NewPostViews(visible, viewer),
	}
	if canEdit {
		profile.Email = user.Email
	}
	c.JSON(http.StatusOK, Response{Data: profile})
}

// EditForm godoc
// @Summary Profile edit form
// @Tags account
// @Produce json
// @Param handle path string true "@username"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Router /account/{handle}/edit/ [get]
func (uc *UserController) EditForm(c *gin.Context) {
	target, ok := uc.editable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{Form: profileForm(target)})
}

// Edit godoc
// @Summary Update a profile
// @Tags account
// @Accept multipart/form-data,json
// @Produce json
// @Param handle path string true "@username"
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param bio formData string false "Bio"
// @Param avatar formData file false "Profile image"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /account/{handle}/edit/ [post]
func (uc *UserController) Edit(c *gin.Context) {
	target, ok := uc.editable(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !bind(c, &req, "Please correct the errors below.", nil) {
		return
	}

	var avatar string
	if fh, err := c.FormFile("avatar"); err == nil {
		avatar, err = uc.avatars.Save(fh)
		if err != nil {
			fail(c, err, req)
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		fail(c, services.NewValidationError("avatar", "The submitted file is invalid."), req)
		return
	}

	updated, err := uc.userService.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), target, &req, avatar)
	if err != nil {
		uc.discard(avatar)
		fail(c, err, req)
		return
	}
	if avatar != "" && target.Avatar != "" && target.Avatar != avatar {
		uc.discard(target.Avatar)
	}

	redirectTo(c, http.StatusOK, services.ProfilePath(updated.Username), Response{
		Data:    profileForm(updated),
		Message: "Your profile updated successfully!",
		Level:   LevelSuccess,
	})
}

// editable loads the profile named in the path and checks the current user
// may change it.
func (uc *UserController) editable(c *gin.Context) (*models.User, bool) {
	username, ok := handle(c, "handle")
	if !ok {
		return nil, false
	}
	target, err := uc.userService.GetByUsername(c.Request.Context(), username)
	if err != nil {
		fail(c, err, nil)
		return nil, false
	}
	if !services.CanModify(middleware.CurrentUser(c), target.ID) {
		c.JSON(http.StatusForbidden, Response{Message: msgProfileForbidden, Level: LevelError})
		return nil, false
	}
	return target, true
}

func (uc *UserController) discard(avatar string) {
	if avatar == "" {
		return
	}
	if err := uc.avatars.Remove(avatar); err != nil {
		slog.Warn("failed to remove avatar", "avatar", avatar, "error", err)
	}
}
