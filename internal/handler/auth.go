package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sereniteo/crm/internal/auth"
	"github.com/sereniteo/crm/internal/email"
	"github.com/sereniteo/crm/internal/middleware"
	"github.com/sereniteo/crm/internal/store"
)

// magicLinkSentBody is returned for every magic-link request, allow-listed
// or not, so callers cannot probe which addresses exist.
const magicLinkSentBody = "Si cette adresse est autorisée, un lien de connexion a été envoyé."

type AuthHandler struct {
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	emailClient    *email.Client
	admin          auth.Credentials
	allowList      auth.AllowList
	baseURL        string
	logger         *slog.Logger
}

func NewAuthHandler(
	ss *store.SessionStore,
	mls *store.MagicLinkStore,
	ec *email.Client,
	admin auth.Credentials,
	allowList auth.AllowList,
	baseURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessionStore:   ss,
		magicLinkStore: mls,
		emailClient:    ec,
		admin:          admin,
		allowList:      allowList,
		baseURL:        baseURL,
		logger:         logger,
	}
}

type sessionResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Email           string `json:"email,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles email+password authentication against the configured admin
// identity. Any mismatch gets the same generic failure.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email et mot de passe requis"})
		return
	}

	if !auth.VerifyCredentials(h.admin, req.Email, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Identifiants invalides"})
		return
	}

	h.establishSession(w, r, auth.NormalizeEmail(req.Email))
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// MagicLink handles a login-link request. Non-allow-listed addresses get the
// generic success body with no token created and no email sent; a failed
// email send is logged but never surfaced.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email requis"})
		return
	}

	emailAddr := auth.NormalizeEmail(req.Email)
	if emailAddr == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email requis"})
		return
	}

	if !h.allowList.Contains(emailAddr) {
		h.logger.Info("magic link requested for non-allow-listed address")
		writeJSON(w, http.StatusOK, map[string]string{"message": magicLinkSentBody})
		return
	}

	ml, rawToken, err := h.magicLinkStore.Create(emailAddr)
	if err != nil {
		h.logger.Error("create magic link token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erreur interne"})
		return
	}

	link := fmt.Sprintf("%s/verify?token=%s", h.baseURL, rawToken)
	if h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendMagicLink(emailAddr, link); err != nil {
			h.logger.Error("send magic link email", "email", emailAddr, "token_id", ml.ID, "error", err)
		}
	} else {
		h.logger.Info("email client not configured, magic link not sent", "token_id", ml.ID)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": magicLinkSentBody})
}

type verifyRequest struct {
	Token string `json:"token"`
}

// MagicLinkVerify exchanges a raw magic-link token for a session. Unknown,
// consumed, and expired tokens are indistinguishable to the caller.
func (h *AuthHandler) MagicLinkVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Lien invalide ou expiré"})
		return
	}

	ml, err := h.magicLinkStore.Consume(req.Token)
	if err != nil {
		h.logger.Error("consume magic link token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erreur interne"})
		return
	}
	if ml == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Lien invalide ou expiré"})
		return
	}

	h.establishSession(w, r, ml.Email)
}

// Logout destroys the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		if err := h.sessionStore.Delete(id.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Déconnecté"})
}

// Session reports the caller's authentication state. It is public: an absent
// or stale cookie simply reports isAuthenticated false.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, sessionResponse{IsAuthenticated: false})
		return
	}

	sess, err := h.sessionStore.GetByToken(cookie.Value)
	if err != nil {
		h.logger.Error("session lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erreur interne"})
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusOK, sessionResponse{IsAuthenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{IsAuthenticated: true, Email: sess.Email})
}

func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, emailAddr string) {
	sess, err := h.sessionStore.Create(emailAddr)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erreur interne"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusOK, sessionResponse{IsAuthenticated: true, Email: emailAddr})
}
