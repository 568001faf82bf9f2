package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/golinks/internal/ratelimit"
)

// RegisterRoutes registers all link directory routes with per-endpoint
// rate limit configuration. Mutating endpoints get stricter limits than
// the redirect path, which serves every shortcut navigation.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/info/{link}",
		Summary:     "Link info",
		Description: "Returns the target, owner, and access count of a link.",
		Tags:        []string{"Links"},
	}, h.Info)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/create/{link}",
		Summary:     "Create link",
		Description: "Registers a new link owned by the authenticated user.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: 24 * time.Hour, Max: 1000},
				},
			},
		},
	}, h.Create)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/target/{link}",
		Summary:     "Update link target",
		Description: "Replaces the redirect target of a link the caller owns.",
		Tags:        []string{"Links"},
	}, h.UpdateTarget)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/owner/{link}",
		Summary:     "Transfer link ownership",
		Description: "Transfers a link the caller owns to another user.",
		Tags:        []string{"Links"},
	}, h.ChangeOwner)

	huma.Register(api, huma.Operation{
		Method:      http.MethodDelete,
		Path:        "/api/delete/{link}",
		Summary:     "Delete link",
		Description: "Removes a link the caller owns.",
		Tags:        []string{"Links"},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/suggest",
		Summary:     "Suggest an available link",
		Description: "Returns a randomly generated slug that is not yet taken.",
		Tags:        []string{"Links"},
	}, h.Suggest)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/user/{user}",
		Summary:     "List a user's links",
		Description: "Lists every link owned by the given user.",
		Tags:        []string{"Links"},
	}, h.UserLinks)

	// Registered last; static routes above take precedence.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{link}",
		Summary:     "Resolve link",
		Description: "Redirects to the link target, counting the access.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, h.Redirect)
}
