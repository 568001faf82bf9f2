package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/golinks/internal/auth"
	"github.com/serroba/golinks/internal/config"
	"github.com/serroba/golinks/internal/linkdir"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "golinks_session"

const stateCookieName = "oauthstate"

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// userInfo is the subset of an OAuth userinfo response we consume.
type userInfo struct {
	Email string `json:"email"`
}

// AuthHandler runs the login flow: it sends the browser to the identity
// provider, turns the callback payload into claims for the verifier, and
// issues the signed session cookie for verified users.
type AuthHandler struct {
	providers     map[string]auth.Provider
	verifier      *auth.Verifier
	oauthConfigs  map[string]*oauth2.Config
	userInfoURLs  map[string]string
	codec         *auth.Codec
	jwtSecret     []byte
	sessionMaxAge time.Duration
	logger        *zap.Logger
}

// NewAuthHandler creates an auth handler for the assembled providers.
func NewAuthHandler(
	cfg *config.Config,
	providers []auth.Provider,
	verifier *auth.Verifier,
	codec *auth.Codec,
	logger *zap.Logger,
) *AuthHandler {
	h := &AuthHandler{
		providers:     make(map[string]auth.Provider, len(providers)),
		verifier:      verifier,
		oauthConfigs:  make(map[string]*oauth2.Config),
		userInfoURLs:  make(map[string]string),
		codec:         codec,
		jwtSecret:     []byte(cfg.SessionSecret),
		sessionMaxAge: cfg.SessionMaxAge,
		logger:        logger,
	}

	for _, p := range providers {
		h.providers[p.Name()] = p

		switch p.Name() {
		case "google":
			h.oauthConfigs["google"] = &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.GoogleCallbackURL,
				Scopes: []string{
					"https://www.googleapis.com/auth/userinfo.email",
				},
				Endpoint: google.Endpoint,
			}
			h.userInfoURLs["google"] = googleUserInfoURL
		case "oidc":
			h.oauthConfigs["oidc"] = &oauth2.Config{
				ClientID:     cfg.OIDCClientID,
				ClientSecret: cfg.OIDCClientSecret,
				RedirectURL:  cfg.OIDCCallbackURL,
				Scopes:       []string{"openid", "email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  cfg.OIDCAuthURL,
					TokenURL: cfg.OIDCTokenURL,
				},
			}
			h.userInfoURLs["oidc"] = cfg.OIDCUserInfoURL
		}
	}

	return h
}

// RegisterRoutes mounts the login flow on the router. These endpoints set
// cookies and issue browser redirects, so they bypass the typed API layer.
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Get("/auth/{provider}", h.Login)
	router.Get("/auth/{provider}/callback", h.Callback)
	router.Get("/auth/logout", h.Logout)
}

// Login starts authentication with the named provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")

	provider, ok := h.providers[name]
	if !ok {
		http.NotFound(w, r)

		return
	}

	// The test provider has no external hop; complete immediately.
	if oauthConfig, ok := h.oauthConfigs[name]; ok {
		state := h.setStateCookie(w)
		http.Redirect(w, r, oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)

		return
	}

	h.completeLogin(w, r, provider, nil)
}

// Callback finishes authentication with the named provider.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")

	provider, ok := h.providers[name]
	if !ok {
		http.NotFound(w, r)

		return
	}

	oauthConfig, ok := h.oauthConfigs[name]
	if !ok {
		h.completeLogin(w, r, provider, nil)

		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || r.FormValue("state") != stateCookie.Value {
		h.logger.Warn("oauth state mismatch", zap.String("provider", name))
		http.Error(w, "invalid oauth state", http.StatusBadRequest)

		return
	}

	token, err := oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("oauth code exchange failed", zap.String("provider", name), zap.Error(err))
		http.Error(w, "code exchange failed", http.StatusInternalServerError)

		return
	}

	payload, err := h.fetchProfile(r, name, oauthConfig, token)
	if err != nil {
		h.logger.Error("fetching user info failed", zap.String("provider", name), zap.Error(err))
		http.Error(w, "failed getting user info", http.StatusInternalServerError)

		return
	}

	h.completeLogin(w, r, provider, payload)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// fetchProfile retrieves the userinfo document and shapes it into the
// provider's payload type.
func (h *AuthHandler) fetchProfile(
	r *http.Request, name string, oauthConfig *oauth2.Config, token *oauth2.Token,
) (any, error) {
	client := oauthConfig.Client(r.Context(), token)

	resp, err := client.Get(h.userInfoURLs[name])
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	switch name {
	case "google":
		return &auth.GoogleProfile{
			Emails: []auth.GoogleEmail{{Value: info.Email, Type: "account"}},
		}, nil
	case "oidc":
		return &auth.OIDCProfile{Claims: auth.OIDCClaims{Email: info.Email}}, nil
	default:
		return nil, nil
	}
}

func (h *AuthHandler) completeLogin(
	w http.ResponseWriter, r *http.Request, provider auth.Provider, payload any,
) {
	claims, err := provider.ExtractClaims(payload)
	if err != nil {
		h.logger.Error("claim extraction failed",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
		http.Error(w, "authentication misconfigured", http.StatusInternalServerError)

		return
	}

	user, err := h.verifier.Verify(r.Context(), claims)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthorized) {
			http.Error(w, "Access denied", http.StatusForbidden)

			return
		}

		h.logger.Error("verification failed",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
		http.Error(w, "verification failed", http.StatusInternalServerError)

		return
	}

	if err := h.issueSession(w, user); err != nil {
		h.logger.Error("failed to sign session token", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)

		return
	}

	h.logger.Info("login successful", zap.String("user", user.ID))
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, user *linkdir.User) error {
	expires := time.Now().Add(h.sessionMaxAge)
	claims := &jwt.RegisteredClaims{
		Subject:   h.codec.Serialize(user),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (h *AuthHandler) setStateCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return state
}
