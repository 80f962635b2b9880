package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
)

// Credentials checks email and password pairs.
type Credentials interface {
	Register(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, email, password string) (string, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Handler struct {
	credentials Credentials
	tokens      TokenIssuer
}

func NewHandler(credentials Credentials, tokens TokenIssuer) *Handler {
	return &Handler{credentials: credentials, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signUp)
	r.Post("/signin", h.signIn)
	r.Post("/signout", h.signOut)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.credentials.Register, http.StatusCreated)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.credentials.Verify, http.StatusOK)
}

func (h *Handler) authenticate(
	w http.ResponseWriter,
	r *http.Request,
	check func(ctx context.Context, email, password string) (string, error),
	status int,
) {
	var req credentialsRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	uid, err := check(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	token, err := h.tokens.Issue(uid)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, status, sessionResponse{Token: token, UserID: uid})
}

// signOut has nothing to revoke: tokens are stateless and expire on their own.
func (h *Handler) signOut(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
