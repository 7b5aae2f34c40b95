package sendpasswordresettoken

import (
	"encoding/json"
	c "forgotpassword/internal/core/domain/common"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/services"
	service "forgotpassword/internal/core/services/send_password_reset_token"
	"forgotpassword/internal/http/handlers/response"
	"io"
	"net/http"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	TestModeTokenHeader = "x-test-password-reset-token"
	// The same message is rendered whether or not an account exists.
	Message = "If an account exists for this email, a password reset link has been sent."
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

type Handler struct {
	service    services.Service[service.Input, service.Result]
	isTestMode bool
}

func New(
	service services.Service[service.Input, service.Result],
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, isTestMode: isTestMode}
}

type Input struct {
	Email string `json:"email"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	if err := e.Decode(i); err != nil {
		return err
	}
	i.Email = strings.TrimSpace(i.Email)
	return nil
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(
			&i.Email,
			validation.Required,
			validation.Length(0, 512),
			is.Email,
			validation.Match(emailPattern),
		),
	)
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
		service.Input{Email: c.NewEmail(input.Email)},
	)
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	if h.isTestMode && result.Token != "" {
		rw.Header().Set(TestModeTokenHeader, string(result.Token))
	}
	response.RenderMessage(rw, Message, http.StatusOK)
}
