package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/formflow-backend/internal/http/response"
	"github.com/yungbote/formflow-backend/internal/modules/formgen"
	"github.com/yungbote/formflow-backend/internal/observability"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

const maxPromptBody = 256 << 10

type FormGenerator interface {
	Run(ctx context.Context, req formgen.Request) (formgen.Result, *formgen.Failure)
}

type GenerateHandler struct {
	log      *logger.Logger
	pipeline FormGenerator
	metrics  *observability.Metrics
}

func NewGenerateHandler(log *logger.Logger, pipeline FormGenerator, metrics *observability.Metrics) *GenerateHandler {
	return &GenerateHandler{log: log.With("handler", "GenerateHandler"), pipeline: pipeline, metrics: metrics}
}

// GenerateForm handles POST /api/generate-form. A body that is not JSON or
// has a non-string prompt is treated as an empty prompt.
func (h *GenerateHandler) GenerateForm(c *gin.Context) {
	start := time.Now()
	prompt, err := readPrompt(c.Writer, c.Request)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.metrics.ObserveGeneration(string(formgen.KindInvalidRequest), time.Since(start), 0)
		response.SetOutcome(c, string(formgen.KindInvalidRequest))
		response.RespondError(c, http.StatusRequestEntityTooLarge, string(formgen.KindInvalidRequest), formgen.MsgPromptTooLong)
		return
	}
	req := formgen.Request{
		Prompt:        prompt,
		Authorization: c.GetHeader("Authorization"),
	}

	res, fail := h.pipeline.Run(c.Request.Context(), req)
	if fail != nil {
		h.metrics.ObserveGeneration(string(fail.Kind), time.Since(start), 0)
		response.SetOutcome(c, string(fail.Kind))
		body := response.ErrorBody{
			Error:   fail.Message,
			Code:    string(fail.Kind),
			Details: fail.Details,
		}
		if fail.FormID != nil {
			body.FormID = fail.FormID.String()
		}
		response.RespondErrorBody(c, fail.Status, body)
		return
	}

	h.metrics.ObserveGeneration("success", time.Since(start), res.QuestionCount)
	response.SetOutcome(c, "success")
	response.RespondOK(c, gin.H{"formId": res.FormID.String()})
}

// readPrompt decodes {"prompt": "..."} leniently. Only an oversize body is
// reported as an error; anything else unreadable yields "".
func readPrompt(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPromptBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", err
		}
		return "", nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil
	}
	prompt, _ := payload["prompt"].(string)
	return prompt, nil
}
