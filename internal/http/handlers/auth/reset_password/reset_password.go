package resetpassword

import (
	"encoding/json"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/core/services"
	resetpassword "forgotpassword/internal/core/services/reset_password"
	"forgotpassword/internal/http/handlers/response"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	SuccessMessage      = "Your password has been reset successfully. You can now log in."
	MismatchMessage     = "Passwords do not match."
	WeakPasswordMessage = "Password does not meet the requirements."
	InvalidLinkMessage  = "Invalid or expired reset link."
)

type Handler struct {
	service services.Service[resetpassword.Input, resetpassword.Result]
}

func New(
	service services.Service[resetpassword.Input, resetpassword.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

// Password rules are not checked here, the service reports every broken
// rule at once.
type Input struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Token, validation.Length(0, 1024)),
		validation.Field(&i.Password, validation.Length(0, 256)),
		validation.Field(&i.ConfirmPassword, validation.Length(0, 256)),
	)
}

type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type WeakPasswordResponse struct {
	Error      string      `json:"error"`
	Violations []Violation `json:"violations"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderInvalidRequest(rw)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		resetpassword.Input{
			Token:           user.PasswordResetToken(input.Token),
			NewPassword:     user.RawPassword(input.Password),
			ConfirmPassword: user.RawPassword(input.ConfirmPassword),
		},
	)
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	switch result.Outcome {
	case resetpassword.Completed:
		response.RenderMessage(rw, SuccessMessage, http.StatusOK)
	case resetpassword.Mismatch:
		response.RenderError(rw, MismatchMessage, http.StatusUnprocessableEntity)
	case resetpassword.WeakPassword:
		response.Render(rw, newWeakPasswordResponse(result.Violations), http.StatusUnprocessableEntity)
	case resetpassword.InvalidOrExpiredToken:
		response.RenderError(rw, InvalidLinkMessage, http.StatusUnprocessableEntity)
	default:
		response.RenderInternalError(rw)
	}
}

func newWeakPasswordResponse(violations []user.PasswordViolation) WeakPasswordResponse {
	res := WeakPasswordResponse{
		Error:      WeakPasswordMessage,
		Violations: make([]Violation, 0, len(violations)),
	}
	for _, v := range violations {
		res.Violations = append(res.Violations, Violation{Rule: string(v.Rule), Message: v.Message})
	}
	return res
}
