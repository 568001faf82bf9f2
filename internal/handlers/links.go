package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/golinks/internal/analytics"
	"github.com/serroba/golinks/internal/auth"
	"github.com/serroba/golinks/internal/linkdir"
	"github.com/serroba/golinks/internal/messaging"
	"go.uber.org/zap"
)

// suggestAttempts bounds the collision retries when generating a slug.
const suggestAttempts = 10

// LinkHandler exposes the link directory operations over HTTP.
type LinkHandler struct {
	directory           *linkdir.Directory
	repo                linkdir.Repository
	baseURL             string
	generateLink        func() string
	publishLinkCreated  messaging.Publish[analytics.LinkCreatedEvent]
	publishLinkAccessed messaging.Publish[analytics.LinkAccessedEvent]
	logger              *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	directory *linkdir.Directory,
	repo linkdir.Repository,
	baseURL string,
	generateLink func() string,
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishLinkAccessed messaging.Publish[analytics.LinkAccessedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		directory:           directory,
		repo:                repo,
		baseURL:             baseURL,
		generateLink:        generateLink,
		publishLinkCreated:  publishLinkCreated,
		publishLinkAccessed: publishLinkAccessed,
		logger:              logger,
	}
}

// Redirect resolves a link and issues a 302 to its target, counting the
// access. An unknown link redirects to the homepage with the attempted
// path as a query parameter so the UI can offer to create it.
func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.directory.ResolveAndCount(ctx, req.Link)
	if err != nil {
		if errors.Is(err, linkdir.ErrNotFound) {
			resp := &RedirectResponse{Status: http.StatusFound}
			resp.Headers.Location = "/?url=" + linkdir.NormalizeKey(req.Link).Relative()

			return resp, nil
		}

		h.logger.Error("redirect failed", zap.String("link", req.Link), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to resolve link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkAccessedEvent{
		EventID:    uuid.NewString(),
		Link:       link.Key.Relative(),
		Target:     link.Target,
		Clicks:     link.Clicks,
		AccessedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishLinkAccessed(event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("link", event.Link),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = link.Target

	return resp, nil
}

// Info returns the stored metadata for a link without counting an access.
func (h *LinkHandler) Info(ctx context.Context, req *InfoRequest) (*InfoResponse, error) {
	link, err := h.directory.Info(ctx, req.Link)
	if err != nil {
		return nil, h.apiError(err, req.Link)
	}

	resp := &InfoResponse{}
	resp.Body.Location = link.Target
	resp.Body.Owner = link.Owner
	resp.Body.Count = link.Clicks

	return resp, nil
}

// Create registers a new link owned by the verified caller.
func (h *LinkHandler) Create(ctx context.Context, req *CreateLinkRequest) (*MessageResponse, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := h.directory.Create(ctx, req.Link, req.Body.Target, user.ID)
	if err != nil {
		return nil, h.apiError(err, req.Link)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		EventID:   uuid.NewString(),
		Link:      linkdir.NormalizeKey(req.Link).Relative(),
		Target:    req.Body.Target,
		Owner:     user.ID,
		CreatedAt: time.Now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishLinkCreated(event); err != nil {
		h.logger.Error("failed to publish created event",
			zap.String("link", event.Link),
			zap.Error(err),
		)
	}

	return messageResponse(msg), nil
}

// UpdateTarget replaces the redirect target of a link the caller owns.
func (h *LinkHandler) UpdateTarget(ctx context.Context, req *UpdateTargetRequest) (*MessageResponse, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := h.directory.UpdateTarget(ctx, req.Link, req.Body.Target, user.ID)
	if err != nil {
		return nil, h.apiError(err, req.Link)
	}

	return messageResponse(msg), nil
}

// ChangeOwner transfers a link the caller owns to another user.
func (h *LinkHandler) ChangeOwner(ctx context.Context, req *ChangeOwnerRequest) (*MessageResponse, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := h.directory.ChangeOwner(ctx, req.Link, req.Body.Owner, user.ID)
	if err != nil {
		return nil, h.apiError(err, req.Link)
	}

	return messageResponse(msg), nil
}

// Delete removes a link the caller owns.
func (h *LinkHandler) Delete(ctx context.Context, req *DeleteLinkRequest) (*MessageResponse, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := h.directory.Delete(ctx, req.Link, user.ID)
	if err != nil {
		return nil, h.apiError(err, req.Link)
	}

	return messageResponse(msg), nil
}

// Suggest returns a randomly generated slug that is not yet taken.
func (h *LinkHandler) Suggest(ctx context.Context, _ *struct{}) (*SuggestResponse, error) {
	for range suggestAttempts {
		candidate := h.generateLink()

		_, err := h.repo.Get(ctx, linkdir.NormalizeKey(candidate))
		if errors.Is(err, linkdir.ErrNotFound) {
			resp := &SuggestResponse{}
			resp.Body.Link = candidate

			return resp, nil
		}

		if err != nil {
			h.logger.Error("suggest lookup failed", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to suggest a link")
		}
	}

	return nil, huma.Error500InternalServerError("failed to find an available link")
}

// UserLinks lists every link owned by the given user.
func (h *LinkHandler) UserLinks(ctx context.Context, req *UserLinksRequest) (*UserLinksResponse, error) {
	links, err := h.directory.ListByOwner(ctx, req.User)
	if err != nil {
		h.logger.Error("user links lookup failed", zap.String("user", req.User), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list links")
	}

	resp := &UserLinksResponse{}
	resp.Body.Links = make([]LinkSummary, 0, len(links))

	for _, link := range links {
		resp.Body.Links = append(resp.Body.Links, LinkSummary{
			Link:     link.Key.Relative(),
			Location: link.Target,
			Count:    link.Clicks,
		})
	}

	return resp, nil
}

// apiError maps directory error kinds to HTTP statuses. The error text of
// recoverable kinds is the user-facing sentence built by the directory.
func (h *LinkHandler) apiError(err error, link string) error {
	switch {
	case errors.Is(err, linkdir.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, linkdir.ErrExists):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, linkdir.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case linkdir.IsInvalidTarget(err):
		return huma.Error400BadRequest(err.Error())
	default:
		h.logger.Error("link operation failed", zap.String("link", link), zap.Error(err))

		return huma.Error500InternalServerError("server error")
	}
}

func requireUser(ctx context.Context) (*linkdir.User, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	return user, nil
}

func messageResponse(msg string) *MessageResponse {
	resp := &MessageResponse{}
	resp.Body.Message = msg

	return resp
}
