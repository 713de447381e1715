package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"CanteenFeedback/internal/feedback"
	"CanteenFeedback/internal/models"
)

// /api/feedback 요청 바디 (폼 필드와 동일)
type FeedbackRequest struct {
	Name      string `form:"name" json:"name" example:"Jane Doe"`
	Phone     string `form:"phone" json:"phone" example:"9876543210"`
	Food      string `form:"food" json:"food" example:"Pasta"`
	VisitDate string `form:"visit_date" json:"visit_date" example:"2024-05-10"`
	Review    string `form:"review" json:"review" example:"Excellent food, loved it!"`
}

// Record converts the request. An empty or malformed date becomes the zero
// time, which validation reports.
func (r FeedbackRequest) Record() models.FeedbackRecord {
	visit, err := time.ParseInLocation(models.DateLayout, r.VisitDate, time.Local)
	if err != nil {
		visit = time.Time{}
	}
	return models.FeedbackRecord{
		Name:      r.Name,
		Phone:     r.Phone,
		Food:      r.Food,
		VisitDate: visit,
		Review:    r.Review,
	}
}

type formPage struct {
	Form         FeedbackRequest
	Errors       []string
	Confirmation *feedback.Confirmation
	Today        string
	MinDate      string
}

func (h *Handler) newFormPage(form FeedbackRequest) formPage {
	return formPage{
		Form:    form,
		Today:   h.service.Today().Format(models.DateLayout),
		MinDate: feedback.MinVisitDate.Format(models.DateLayout),
	}
}

func (h *Handler) ShowForm(c *gin.Context) {
	page := h.newFormPage(FeedbackRequest{VisitDate: h.service.Today().Format(models.DateLayout)})
	c.HTML(http.StatusOK, "form.html", page)
}

// SubmitForm handles the HTML form and re-renders it with the outcome.
func (h *Handler) SubmitForm(c *gin.Context) {
	var form FeedbackRequest
	if err := c.ShouldBind(&form); err != nil {
		page := h.newFormPage(form)
		page.Errors = []string{"Invalid request"}
		c.HTML(http.StatusBadRequest, "form.html", page)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	conf, err := h.service.Submit(ctx, form.Record())
	if err != nil {
		page := h.newFormPage(form)
		var verr *feedback.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				page.Errors = append(page.Errors, v.Message)
			}
			c.HTML(http.StatusBadRequest, "form.html", page)
			return
		}
		h.log.Errorf("SubmitForm(): %v", err)
		page.Errors = []string{submitFailedMessage}
		c.HTML(http.StatusInternalServerError, "form.html", page)
		return
	}

	page := h.newFormPage(FeedbackRequest{VisitDate: h.service.Today().Format(models.DateLayout)})
	page.Confirmation = conf
	c.HTML(http.StatusOK, "form.html", page)
}

// SubmitFeedback godoc
// @Summary      Submit canteen feedback
// @Description  Validates the submission, classifies the review and appends it to positive_reviews or negative_reviews.
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        request body handler.FeedbackRequest true "Feedback"
// @Success      201 {object} feedback.Confirmation
// @Failure      400 {object} handler.ErrorResponse
// @Failure      422 {object} handler.ValidationErrorResponse
// @Failure      429 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/feedback [post]
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	conf, err := h.service.Submit(ctx, req.Record())
	if err != nil {
		var verr *feedback.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
				Error:      "validation failed",
				Violations: verr.Violations,
			})
			return
		}
		h.log.Errorf("SubmitFeedback(): %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: submitFailedMessage})
		return
	}
	c.JSON(http.StatusCreated, conf)
}
