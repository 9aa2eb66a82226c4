package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"quill/config"
	"quill/middleware"
	"quill/models"
	"quill/services"
	"quill/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthController struct {
	cfg         *config.Config
	userService *services.UserService
	sessions    *services.SessionService
}

func NewAuthController(db *gorm.DB, cfg *config.Config, sessions *services.SessionService) *AuthController {
	return &AuthController{
		cfg:         cfg,
		userService: services.NewUserService(db),
		sessions:    sessions,
	}
}

func signupForm(req *models.CreateUserRequest) gin.H {
	return gin.H{
		"username":   req.Username,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
	}
}

// SignupForm godoc
// @Summary Registration form
// @Tags account
// @Produce json
// @Success 200 {object} Response
// @Router /account/signup/ [get]
func (ac *AuthController) SignupForm(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirectTo(c, http.StatusOK, "/", Response{Message: "You are already logged in.", Level: LevelInfo})
		return
	}
	c.JSON(http.StatusOK, Response{Form: signupForm(&models.CreateUserRequest{})})
}

// Signup godoc
// @Summary Register and log in
// @Tags account
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param user body models.CreateUserRequest true "New account"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /account/signup/ [post]
func (ac *AuthController) Signup(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirectTo(c, http.StatusOK, "/", Response{Message: "You are already logged in.", Level: LevelInfo})
		return
	}

	var req models.CreateUserRequest
	echo := func() interface{} { return signupForm(&req) }
	if !bind(c, &req, "Registration failed. Please correct the errors below.", echo) {
		return
	}

	user, err := ac.userService.Register(c.Request.Context(), &req, ac.cfg.DefaultPermissions)
	if err != nil {
		fail(c, err, signupForm(&req))
		return
	}

	token, ok := ac.startSession(c, user)
	if !ok {
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusCreated, Response{
		Data:     gin.H{"user": user, "token": token},
		Message:  fmt.Sprintf("Registration successful, %s! You are now logged in.", user.Username),
		Level:    LevelSuccess,
		Redirect: "/",
	})
}

// LoginForm godoc
// @Summary Login form
// @Tags account
// @Produce json
// @Param next query string false "Where to go after login"
// @Success 200 {object} Response
// @Router /account/login/ [get]
func (ac *AuthController) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Form: gin.H{"username": "", "next": c.Query("next")}})
}

// Login godoc
// @Summary Log in
// @Tags account
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Param next query string false "Where to go after login"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /account/login/ [post]
func (ac *AuthController) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirectTo(c, http.StatusOK, "/", Response{Message: "You are already logged in.", Level: LevelInfo})
		return
	}

	var req models.LoginRequest
	echo := func() interface{} { return gin.H{"username": req.Username, "next": req.Next} }
	if !bind(c, &req, "Invalid username or password.", echo) {
		return
	}
	next := req.Next
	if next == "" {
		next = c.Query("next")
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err, gin.H{"username": req.Username, "next": next})
		return
	}

	token, ok := ac.startSession(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, Response{
		Data:     gin.H{"user": user, "token": token},
		Message:  fmt.Sprintf("Welcome back, %s!", user.DisplayName()),
		Level:    LevelSuccess,
		Redirect: utils.SafeNext(next, "/"),
	})
}

// Logout godoc
// @Summary Log out
// @Tags account
// @Produce json
// @Success 200 {object} Response
// @Router /account/logout/ [post]
func (ac *AuthController) Logout(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if session == nil {
		redirectTo(c, http.StatusOK, "/", Response{Message: "You are not currently logged in.", Level: LevelInfo})
		return
	}

	if err := ac.sessions.Delete(c.Request.Context(), session.ID); err != nil {
		fail(c, err, nil)
		return
	}
	ac.clearCookie(c)
	redirectTo(c, http.StatusOK, "/", Response{Message: "You have been successfully logged out.", Level: LevelSuccess})
}

func (ac *AuthController) startSession(c *gin.Context, user *models.User) (string, bool) {
	_, token, err := ac.sessions.Create(c.Request.Context(), user)
	if err != nil {
		fail(c, err, nil)
		return "", false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cfg.SessionCookie, token, int(ac.sessions.TTL().Seconds()), "/", "", ac.cfg.CookieSecure, true)
	return token, true
}

func (ac *AuthController) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cfg.SessionCookie, "", -1, "/", "", ac.cfg.CookieSecure, true)
}
