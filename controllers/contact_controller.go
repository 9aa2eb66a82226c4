package controllers

import (
	"net/http"

	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
)

const msgContactInvalid = "There was an error in your form. Please check it."

type ContactController struct {
	contacts *services.ContactService
}

func NewContactController(contacts *services.ContactService) *ContactController {
	return &ContactController{contacts: contacts}
}

// Form godoc
// @Summary Empty contact form
// @Tags contact
// @Produce json
// @Success 200 {object} Response
// @Router /contact/ [get]
func (cc *ContactController) Form(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Form: models.CreateContactRequest{}})
}

// Submit godoc
// @Summary Send a contact message
// @Tags contact
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param message body models.CreateContactRequest true "Message"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /contact/ [post]
func (cc *ContactController) Submit(c *gin.Context) {
	var req models.CreateContactRequest
	if !bind(c, &req, msgContactInvalid, nil) {
		return
	}

	msg, err := cc.contacts.Create(c.Request.Context(), &req)
	if verr, ok := services.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, Response{Message: msgContactInvalid, Level: LevelError, Errors: verr.Fields, Form: req})
		return
	}
	if err != nil {
		fail(c, err, req)
		return
	}

	redirectTo(c, http.StatusCreated, "/contact/", Response{
		Data:    gin.H{"id": msg.ID, "created_at": msg.CreatedAt},
		Message: "Your message successfully sent. Thank you!",
		Level:   LevelSuccess,
		Form:    models.CreateContactRequest{},
	})
}
