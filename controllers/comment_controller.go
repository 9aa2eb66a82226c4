package controllers

import (
	"net/http"

	"quill/middleware"
	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

// Add godoc
// @Summary Comment on a published post
// @Tags comments
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param slug path string true "Post slug"
// @Param comment body models.CreateCommentRequest true "Comment"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /posts/{slug}/comment/add/ [post]
func (cc *CommentController) Add(c *gin.Context) {
	var req models.CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		fields := fieldErrors(err)
		c.JSON(http.StatusBadRequest, Response{
			Message: "Error! Please retry: " + summarize(fields),
			Level:   LevelError,
			Errors:  fields,
			Form:    req,
		})
		return
	}

	comment, post, err := cc.comments.Create(c.Request.Context(), middleware.CurrentUser(c), c.Param("slug"), &req)
	if verr, ok := services.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, Response{
			Message:  "Error! Please retry: " + summarize(verr.Fields),
			Level:    LevelError,
			Errors:   verr.Fields,
			Form:     req,
			Redirect: post.Path(),
		})
		return
	}
	if err != nil {
		fail(c, err, req)
		return
	}

	redirectTo(c, http.StatusCreated, post.Path(), Response{
		Data:    services.NewCommentView(comment),
		Message: "Your comment was added successfully.",
		Level:   LevelSuccess,
	})
}
