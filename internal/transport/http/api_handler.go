package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"social-style-service/internal/app"
	"social-style-service/internal/domain"
)

const qrSize = 256

// APIHandler serves the REST surface of the quiz.
type APIHandler struct {
	service   *app.StyleService
	publicURL string
}

func NewAPIHandler(service *app.StyleService, publicURL string) *APIHandler {
	return &APIHandler{service: service, publicURL: strings.TrimRight(publicURL, "/")}
}

type submitRequest struct {
	Name    string           `json:"name" binding:"required"`
	Answers domain.AnswerSet `json:"answers" binding:"required"`
}

type submitResponse struct {
	ID             string                `json:"id"`
	Classification domain.Classification `json:"classification"`
}

type submissionResponse struct {
	Submission     domain.Submission     `json:"submission"`
	Classification domain.Classification `json:"classification"`
}

type styleResponse struct {
	Style   domain.Style       `json:"style"`
	Visible bool               `json:"visible"`
	View    domain.SessionView `json:"view"`
}

func (h *APIHandler) Questionnaire(c *gin.Context) {
	q, err := h.service.Questionnaire(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *APIHandler) CreateSession(c *gin.Context) {
	session, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *APIHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *APIHandler) UpdateFlags(c *gin.Context) {
	var patch domain.FlagPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no flags given"})
		return
	}
	if err := h.service.UpdateFlags(c.Request.Context(), c.Param("code"), patch); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, result, err := h.service.Submit(c.Request.Context(), app.SubmitInput{
		SessionCode: c.Param("code"),
		Name:        req.Name,
		Answers:     req.Answers,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submitResponse{ID: sub.ID, Classification: result})
}

func (h *APIHandler) GetSubmission(c *gin.Context) {
	sub, result, err := h.service.Submission(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissionResponse{Submission: sub, Classification: result})
}

func (h *APIHandler) View(c *gin.Context) {
	view, err := h.service.Snapshot(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// StyleView serves the participants of one style together with that style's visibility flag.
func (h *APIHandler) StyleView(c *gin.Context) {
	style, err := domain.ParseStyle(c.Param("style"))
	if err != nil {
		writeError(c, err)
		return
	}
	view, err := h.service.Snapshot(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, styleResponse{Style: style, Visible: view.Visible(style), View: view.ForStyle(style)})
}

// QRCode renders a PNG that links to the session's join page.
func (h *APIHandler) QRCode(c *gin.Context) {
	ctx := c.Request.Context()
	code := app.CanonicalCode(c.Param("code"))
	if err := h.service.Join(ctx, code); err != nil {
		writeError(c, err)
		return
	}
	png, err := qrcode.Encode(h.JoinURL(code), qrcode.Medium, qrSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// JoinURL is the link participants open to take the quiz for code.
func (h *APIHandler) JoinURL(code string) string {
	return h.publicURL + "/session/" + code
}

// writeError maps domain errors to HTTP statuses; anything else is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSubmissionNotFound),
		errors.Is(err, domain.ErrQuestionnaireNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSubmission),
		errors.Is(err, domain.ErrIncompleteAnswers),
		errors.Is(err, domain.ErrUnknownStyle):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCodeExhausted):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
