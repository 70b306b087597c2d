package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frahmantamala/performance-evaluation/internal/transport"
	"github.com/frahmantamala/performance-evaluation/pkg/logger"
)

// ServiceAPI is what the handler needs from the auth service.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*Account, AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	Register(dto RegisterDTO, actor *User) (*Account, AuthTokens, error)
	Me(userID int64) (*Account, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

type loginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         *Account `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "identifier", dto.Identifier, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         account,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Register creates a user. Anonymous callers get the default employee role;
// an admin caller may assign any role.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor, _ := UserFromContext(r.Context())

	account, tokens, err := h.Service.Register(dto, actor)
	if err != nil {
		h.Logger.Error("registration failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, loginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         account,
	})
}

// Logout is audit only: tokens are stateless, so the server just records the
// event and the client discards its pair.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	h.Logger.Info("user logged out", "user_id", claims.UserID, "username", claims.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's current profile from the store, not the possibly
// stale claims snapshot.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	account, err := h.Service.Me(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, account)
}

// AuthMiddleware validates the bearer token and attaches the actor rebuilt
// from its claims. The permission set is whatever was granted at issue time.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			h.Logger.Warn("malformed user id in token claims", "value", claims.UserID)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		actor := &User{
			ID:          userID,
			Username:    claims.Username,
			Email:       claims.Email,
			Role:        claims.Role,
			Permissions: claims.Permissions,
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), actor)))
	})
}

// OptionalAuthMiddleware attaches the actor when a valid token is present and
// lets the request through anonymously otherwise. Used on register, where an
// admin caller may set the new account's role.
func (h *Handler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		actor := &User{
			ID:          userID,
			Username:    claims.Username,
			Email:       claims.Email,
			Role:        claims.Role,
			Permissions: claims.Permissions,
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), actor)))
	})
}
