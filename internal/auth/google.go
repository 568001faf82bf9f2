package auth

// GoogleEmail is one entry of the OAuth userinfo email list.
type GoogleEmail struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// GoogleProfile is the email-list payload shape delivered by the Google
// OAuth userinfo endpoint.
type GoogleProfile struct {
	Emails []GoogleEmail `json:"emails"`
}

// GoogleProvider extracts every email entry from a Google profile,
// preserving provider order.
type GoogleProvider struct{}

// NewGoogleProvider creates the Google identity provider.
func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{}
}

func (*GoogleProvider) Name() string { return "google" }

func (*GoogleProvider) ExtractClaims(payload any) ([]string, error) {
	profile, ok := payload.(*GoogleProfile)
	if !ok || profile == nil {
		return nil, nil
	}

	ids := make([]string, 0, len(profile.Emails))

	for _, email := range profile.Emails {
		if email.Value != "" {
			ids = append(ids, email.Value)
		}
	}

	return ids, nil
}
