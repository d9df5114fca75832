package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"datadog_lighthouse/internal/apperrors"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	statusAccepted = "accepted"

	errNotProvisioning = "device is not accepting credentials"
	errSaveCredentials = "failed to save credentials"
)

// ProvisionRequest is the credential submission, as a form or JSON.
type ProvisionRequest struct {
	// Network to join. Required, at most 32 bytes.
	NetworkID string `form:"network_id" json:"network_id" example:"home-wifi"`
	// Network secret. Empty for open networks, at most 64 bytes.
	Secret string `form:"secret" json:"secret" example:"correct-horse"`
}

var portalPage = template.Must(template.New("portal").Parse(`<!doctype html>
<html><head><meta name="viewport" content="width=device-width, initial-scale=1"><title>Lighthouse setup</title></head>
<body>
<h1>Lighthouse setup</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<form method="post" action="/provision">
<label>Network <input name="network_id" maxlength="32" required></label><br>
<label>Password <input name="secret" type="password" maxlength="64"></label><br>
<button type="submit">Save</button>
</form>
</body></html>
`))

type portalView struct {
	Message string
}

func (h *Handler) provisionForm(c *gin.Context) {
	h.renderPortal(c, http.StatusOK, "")
}

// @Summary      Submit network credentials
// @Description  Accepted only while the device is provisioning. Form submissions get the portal page back, JSON gets JSON.
// @Tags         provisioning
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      ProvisionRequest  true  "credentials"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /provision [post]
func (h *Handler) provision(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.provisionReply(c, http.StatusBadRequest, errInvalidBodyPref+err.Error())
		return
	}

	err := h.services.Provisioning.Submit(c.Request.Context(), models.Credentials{
		NetworkID: req.NetworkID,
		Secret:    req.Secret,
	})
	switch {
	case err == nil:
		if h.log != nil {
			h.log.Infow("provision_accepted", "network_id", req.NetworkID, "remote", c.ClientIP())
		}
		h.provisionReply(c, http.StatusAccepted, "")
	case apperrors.Is(err, apperrors.KindConfig):
		h.provisionReply(c, http.StatusBadRequest, errorCause(err))
	case errors.Is(err, service.ErrNotProvisioning):
		h.provisionReply(c, http.StatusConflict, errNotProvisioning)
	default:
		if h.log != nil {
			h.log.Errorw("provision_failed", "err", err)
		}
		h.provisionReply(c, http.StatusInternalServerError, errSaveCredentials)
	}
}

// provisionReply answers in the format the request came in.
func (h *Handler) provisionReply(c *gin.Context, code int, msg string) {
	if c.ContentType() == binding.MIMEPOSTForm || c.ContentType() == binding.MIMEMultipartPOSTForm {
		if code == http.StatusAccepted {
			msg = "Saved. The device is connecting."
		}
		h.renderPortal(c, code, msg)
		return
	}
	if code == http.StatusAccepted {
		c.JSON(code, gin.H{"status": statusAccepted})
		return
	}
	c.JSON(code, gin.H{"error": msg})
}

func (h *Handler) renderPortal(c *gin.Context, code int, msg string) {
	c.Status(code)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := portalPage.Execute(c.Writer, portalView{Message: msg}); err != nil && h.log != nil {
		h.log.Errorw("portal_render_failed", "err", err)
	}
}

// errorCause returns the innermost message, without the kind and op prefix.
func errorCause(err error) string {
	var e *apperrors.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
