package validatepasswordresettoken

import (
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/core/services"
	service "forgotpassword/internal/core/services/validate_password_reset_token"
	"forgotpassword/internal/http/handlers/response"
	"net/http"
)

const (
	InvalidLinkMessage = "Invalid or expired reset link."
	maxTokenLength     = 1024
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(service services.Service[service.Input, service.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Response struct {
	Valid bool `json:"valid"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(user.PasswordResetTokenParam)
	if token == "" || len(token) > maxTokenLength {
		response.RenderError(rw, InvalidLinkMessage, http.StatusUnprocessableEntity)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{Token: user.PasswordResetToken(token)})
	if err != nil {
		response.RenderInternalError(rw)
		return
	}
	if !result.IsValid {
		response.RenderError(rw, InvalidLinkMessage, http.StatusUnprocessableEntity)
		return
	}
	response.Render(rw, Response{Valid: true}, http.StatusOK)
}
