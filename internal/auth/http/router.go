package http

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/perplexiplay/backend/internal/auth/service"
	"github.com/perplexiplay/backend/internal/common/constants"
	commonerrors "github.com/perplexiplay/backend/internal/common/errors"
	commonhttp "github.com/perplexiplay/backend/internal/common/http"
	"github.com/perplexiplay/backend/internal/common/logger"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Handler struct {
	auth       *service.AuthService
	timeout    time.Duration
	errHandler *commonhttp.ErrorHandler
	log        *logger.Logger
}

// NewHandler serves /auth/register, /auth/login, /auth/me and /health.
func NewHandler(auth *service.AuthService, resolver identityResolver, timeout time.Duration, log *logger.Logger) *http.ServeMux {
	h := &Handler{
		auth:       auth,
		timeout:    timeout,
		errHandler: commonhttp.NewErrorHandler(log),
		log:        log,
	}

	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.notFound)
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.HandleFunc("/auth/register", post(h.register))
	mux.HandleFunc("/auth/login", post(h.login))
	mux.HandleFunc("/auth/me", get(RequireUser(resolver, log)(h.me)))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "register_invalid_json",
		}).Warnf("register failed: invalid json: %v", err)
		h.errHandler.HandleError(w, r, decodeError(err, commonerrors.ErrInvalidJSON))
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	user, err := h.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, user.Public())
}

// login takes an OAuth2 password-style form, urlencoded or multipart:
// username and password fields.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := parseLoginForm(r); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "login_invalid_form",
		}).Warnf("login failed: invalid form: %v", err)
		h.errHandler.HandleError(w, r, decodeError(err, commonerrors.ErrInvalidForm))
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	token, err := h.auth.Login(ctx, service.LoginInput{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		h.errHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, token)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.errHandler.HandleError(w, r, service.ErrUnauthenticated)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, user.Public())
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil, commonhttp.TraceIDFromContext(r.Context()))
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func parseLoginForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.ParseForm()
	}
	if err := r.ParseMultipartForm(constants.DefaultMaxRequestSize); err != nil {
		return err
	}
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
	return nil
}

func decodeError(err error, fallback commonerrors.DomainError) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return commonerrors.ErrRequestTooLarge.WithCause(err)
	}
	return fallback.WithCause(err)
}
