package controllers

import (
	"net/http"
	"strconv"

	"quill/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func adminQuery(c *gin.Context, filters ...string) services.AdminQuery {
	q := services.AdminQuery{
		Search:  c.Query("search"),
		Page:    services.ParsePage(c.Query("page")),
		Filters: make(map[string]string, len(filters)),
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		q.PageSize = size
	}
	for _, name := range filters {
		if v, ok := c.GetQuery(name); ok {
			q.Filters[name] = v
		}
	}
	return q
}

// Posts godoc
// @Summary List posts
// @Tags admin
// @Produce json
// @Param search query string false "Title, content or author"
// @Param status query string false "drafted, published or archived"
// @Param author query string false "Author username"
// @Param tag query string false "Tag name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} Response
// @Router /admin/posts [get]
func (ac *AdminController) Posts(c *gin.Context) {
	page, err := ac.admin.Posts(c.Request.Context(), adminQuery(c, "status", "author", "tag"))
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Response{Data: page})
}

// Users godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param search query string false "Username, names or email"
// @Param is_staff query bool false "Staff flag"
// @Param is_active query bool false "Active flag"
// @Success 200 {object} Response
// @Router /admin/users [get]
func (ac *AdminController) Users(c *gin.Context) {
	page, err := ac.admin.Users(c.Request.Context(), adminQuery(c, "is_staff", "is_active"))
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Response{Data: page})
}

// Comments godoc
// @Summary List comments
// @Tags admin
// @Produce json
// @Param search query string false "Content"
// @Param user query int false "User id"
// @Param post query int false "Post id"
// @Success 200 {object} Response
// @Router /admin/comments [get]
func (ac *AdminController) Comments(c *gin.Context) {
	page, err := ac.admin.Comments(c.Request.Context(), adminQuery(c, "user", "post"))
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Response{Data: page})
}

// Likes godoc
// @Summary List likes
// @Tags admin
// @Produce json
// @Param search query string false "Username"
// @Param user query int false "User id"
// @Success 200 {object} Response
// @Router /admin/likes [get]
func (ac *AdminController) Likes(c *gin.Context) {
	page, err := ac.admin.Likes(c.Request.Context(), adminQuery(c, "user"))
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Response{Data: page})
}

// Contacts godoc
// @Summary List contact messages
// @Tags admin
// @Produce json
// @Param search query string false "Name, email or message"
// @Success 200 {object} Response
// @Router /admin/contacts [get]
func (ac *AdminController) Contacts(c *gin.Context) {
	page, err := ac.admin.Contacts(c.Request.Context(), adminQuery(c))
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Response{Data: page})
}

// DeleteContact godoc
// @Summary Delete a contact message
// @Tags admin
// @Produce json
// @Param id path int true "Message id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /admin/contacts/{id} [delete]
func (ac *AdminController) DeleteContact(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "Invalid message ID", Level: LevelError})
		return
	}

	if err := ac.admin.DeleteContact(c.Request.Context(), uint(id)); err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Response{Message: "Contact message deleted.", Level: LevelSuccess})
}
