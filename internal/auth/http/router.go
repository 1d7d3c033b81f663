package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/secure-blog/internal/auth/service"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonhttp "github.com/AlibekovAA/secure-blog/internal/common/http"
	"github.com/AlibekovAA/secure-blog/internal/common/httpmetrics"
	"github.com/AlibekovAA/secure-blog/internal/common/jwtverify"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Verify   string `json:"verify"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type welcomeResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type HandlerConfig struct {
	CookieSecure   bool
	RequestTimeout time.Duration
}

type Handler struct {
	auth   *service.AuthService
	errors *commonhttp.ErrorHandler
	config HandlerConfig
	log    *logger.Logger
}

func NewHandler(auth *service.AuthService, config HandlerConfig, log *logger.Logger) *mux.Router {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = constants.DefaultBlogRequestTimeout
	}
	h := &Handler{
		auth:   auth,
		errors: commonhttp.NewErrorHandler(log),
		config: config,
		log:    log,
	}
	requireSession := SessionMiddleware(auth, log)
	timeout := commonhttp.WithTimeout(config.RequestTimeout)

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(commonhttp.MethodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(commonhttp.NotFound)
	r.Use(httpmetrics.RouteTemplate)

	r.HandleFunc("/api/auth/signup", timeout(h.signup)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", timeout(h.login)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", timeout(h.logout)).Methods(http.MethodPost)
	r.Handle("/api/auth/logout-all", requireSession(timeout(h.logoutAll))).Methods(http.MethodPost)
	r.Handle("/api/auth/welcome", requireSession(http.HandlerFunc(h.welcome))).Methods(http.MethodGet)
	return r
}

// SessionMiddleware guards a handler with the auth service's session check.
func SessionMiddleware(auth *service.AuthService, log *logger.Logger) func(http.Handler) http.Handler {
	return jwtverify.Middleware(func(ctx context.Context, token string) (jwtverify.Identity, error) {
		session, err := auth.Authenticate(ctx, token)
		if err != nil {
			return jwtverify.Identity{}, err
		}
		return jwtverify.Identity{Username: session.Username, TokenVersion: session.TokenVersion}, nil
	}, log)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{"action": "signup_invalid_json"}).Warnf("signup failed: invalid json: %v", err)
		commonhttp.WriteDecodeError(w, r, err)
		return
	}

	result, err := h.auth.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Verify:   req.Verify,
		Email:    req.Email,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token, result.ExpiresAt)
	commonhttp.WriteJSON(w, http.StatusCreated, sessionResponse{
		Username:  result.Username,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{"action": "login_invalid_json"}).Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteDecodeError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token, result.ExpiresAt)
	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{
		Username:  result.Username,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// logout always clears the cookie, even when the denylist write fails.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := jwtverify.TokenFromRequest(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.log.WithFields(r.Context(), logger.Fields{"action": "logout_revoke_failed"}).Errorf("logout revoke failed: %v", err)
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	identity, _ := jwtverify.FromContext(r.Context())

	if err := h.auth.LogoutEverywhere(r.Context(), identity.Username); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) welcome(w http.ResponseWriter, r *http.Request) {
	identity, _ := jwtverify.FromContext(r.Context())
	commonhttp.WriteJSON(w, http.StatusOK, welcomeResponse{
		Username: identity.Username,
		Message:  "Welcome, " + identity.Username + "!",
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.CookieSecure,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.CookieSecure,
	})
}
