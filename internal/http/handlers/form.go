package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/formflow-backend/internal/http/response"
	"github.com/yungbote/formflow-backend/internal/observability"
	"github.com/yungbote/formflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"github.com/yungbote/formflow-backend/internal/services"
)

type FormHandler struct {
	log     *logger.Logger
	forms   services.FormService
	metrics *observability.Metrics
}

func NewFormHandler(log *logger.Logger, forms services.FormService, metrics *observability.Metrics) *FormHandler {
	return &FormHandler{log: log.With("handler", "FormHandler"), forms: forms, metrics: metrics}
}

// GET /api/forms
func (h *FormHandler) ListMyForms(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized.")
		return
	}
	forms, err := h.forms.ListForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"forms": forms})
}

// GET /api/forms/:id
func (h *FormHandler) GetForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_form_id", "Invalid form id.")
		return
	}
	form, err := h.forms.GetForm(c.Request.Context(), formID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"form": form})
}

type submitResponseRequest struct {
	Answers map[string]string `json:"answers"`
}

// POST /api/forms/:id/responses
func (h *FormHandler) SubmitResponse(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_form_id", "Invalid form id.")
		return
	}
	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", "Answers must map question ids to strings.")
		return
	}

	responseID, err := h.forms.SubmitResponse(c.Request.Context(), formID, req.Answers)
	if err != nil {
		var serr *services.SubmitError
		if errors.As(err, &serr) {
			h.metrics.IncResponse("persistence_failure")
			response.SetOutcome(c, "persistence_failure")
			body := response.ErrorBody{Error: "Insert failed.", Code: "persistence_failure"}
			if serr.ResponseID != nil {
				body.ResponseID = serr.ResponseID.String()
			}
			_ = c.Error(err)
			response.RespondErrorBody(c, http.StatusInternalServerError, body)
			return
		}
		h.metrics.IncResponse("error")
		response.RespondAPIError(c, err)
		return
	}
	h.metrics.IncResponse("success")
	response.SetOutcome(c, "success")
	response.RespondOK(c, gin.H{"responseId": responseID.String()})
}
