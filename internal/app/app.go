package app

import (
	"fmt"
	"forgotpassword/internal/app/deps"
	"forgotpassword/internal/app/services"
	resetpassword "forgotpassword/internal/http/handlers/auth/reset_password"
	sendpasswordresettoken "forgotpassword/internal/http/handlers/auth/send_password_reset_token"
	validatepasswordresettoken "forgotpassword/internal/http/handlers/auth/validate_password_reset_token"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func InitRouter(deps *deps.Deps, s *services.Services) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Method(
		http.MethodPost,
		"/forgot-password",
		sendpasswordresettoken.New(s.SendPasswordResetToken, deps.Config.IsTestMode),
	)
	router.Method(
		http.MethodGet,
		"/reset-password",
		validatepasswordresettoken.New(s.ValidatePasswordResetToken),
	)
	router.Method(http.MethodPost, "/reset-password", resetpassword.New(s.ResetPassword))

	return router
}

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: InitRouter(deps, s),
		Addr:    address,
	}
}
