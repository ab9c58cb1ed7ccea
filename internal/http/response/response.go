package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/formflow-backend/internal/platform/apierr"
)

// ErrorBody is the failure envelope. FormID is present only when a form row
// was committed before the failure.
type ErrorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Details    any    `json:"details,omitempty"`
	FormID     string `json:"formId,omitempty"`
	ResponseID string `json:"responseId,omitempty"`
}

// OutcomeKey names a request's outcome (a failure kind or "success") for the
// access log.
const OutcomeKey = "formflow.outcome"

func SetOutcome(c *gin.Context, outcome string) { c.Set(OutcomeKey, outcome) }

func RespondError(c *gin.Context, status int, code string, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.JSON(status, ErrorBody{Error: message, Code: code})
}

func RespondErrorBody(c *gin.Context, status int, body ErrorBody) {
	if body.Error == "" {
		body.Error = http.StatusText(status)
	}
	c.JSON(status, body)
}

// RespondAPIError maps any error through apierr. 5xx messages are not echoed.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	_ = c.Error(err)
	msg := http.StatusText(ae.Status)
	if ae.Status < 500 && ae.Err != nil {
		msg = ae.Err.Error()
	}
	RespondError(c, ae.Status, ae.Code, msg)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
