package auth

// OIDCClaims is the inner claim set of an OpenID Connect userinfo payload.
type OIDCClaims struct {
	Email string `json:"email"`
}

// OIDCProfile is the nested profile payload delivered by an OpenID
// Connect provider.
type OIDCProfile struct {
	Claims OIDCClaims `json:"_json"`
}

// OIDCProvider extracts the single email claim from an OpenID Connect
// profile.
type OIDCProvider struct{}

// NewOIDCProvider creates the OpenID Connect identity provider.
func NewOIDCProvider() *OIDCProvider {
	return &OIDCProvider{}
}

func (*OIDCProvider) Name() string { return "oidc" }

func (*OIDCProvider) ExtractClaims(payload any) ([]string, error) {
	profile, ok := payload.(*OIDCProfile)
	if !ok || profile == nil || profile.Claims.Email == "" {
		return nil, nil
	}

	return []string{profile.Claims.Email}, nil
}
