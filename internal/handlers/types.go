package handlers

// RedirectRequest is the request for resolving a link.
type RedirectRequest struct {
	Link string `doc:"The link slug" example:"foo" path:"link"`
}

// RedirectResponse is a redirect to the link target, or to the homepage
// with the unknown link as a query parameter.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The redirect destination" header:"Location"`
	}
}

// InfoRequest is the request for reading link metadata.
type InfoRequest struct {
	Link string `doc:"The link slug" example:"foo" path:"link"`
}

// InfoResponse is the stored metadata for a link.
type InfoResponse struct {
	Body struct {
		Location string `doc:"The redirect target"          example:"https://example.com/" json:"location"`
		Owner    string `doc:"The owning user"              example:"mbland@acm.org"       json:"owner"`
		Count    int64  `doc:"Number of times resolved"     example:"27"                   json:"count"`
	}
}

// CreateLinkRequest is the request body for registering a new link.
type CreateLinkRequest struct {
	Link string `doc:"The link slug" example:"foo" path:"link"`
	Body struct {
		Target string `doc:"The redirect target" example:"https://example.com/" json:"target"`
	}
}

// UpdateTargetRequest is the request body for replacing a link's target.
type UpdateTargetRequest struct {
	Link string `doc:"The link slug" example:"foo" path:"link"`
	Body struct {
		Target string `doc:"The new redirect target" example:"https://example.com/" json:"target"`
	}
}

// ChangeOwnerRequest is the request body for transferring a link.
type ChangeOwnerRequest struct {
	Link string `doc:"The link slug" example:"foo" path:"link"`
	Body struct {
		Owner string `doc:"The new owner" example:"mbland@acm.org" json:"owner"`
	}
}

// DeleteLinkRequest is the request for removing a link.
type DeleteLinkRequest struct {
	Link string `doc:"The link slug" example:"foo" path:"link"`
}

// MessageResponse carries the human-readable outcome of a mutation.
type MessageResponse struct {
	Body struct {
		Message string `doc:"Human-readable outcome" json:"message"`
	}
}

// SuggestResponse carries a randomly generated available slug.
type SuggestResponse struct {
	Body struct {
		Link string `doc:"An available link slug" example:"V1StGXR8" json:"link"`
	}
}

// UserLinksRequest is the request for listing a user's links.
type UserLinksRequest struct {
	User string `doc:"The owning user" example:"mbland@acm.org" path:"user"`
}

// LinkSummary is one entry of a user's link listing.
type LinkSummary struct {
	Link     string `doc:"The link path"        example:"/foo"                 json:"link"`
	Location string `doc:"The redirect target"  example:"https://example.com/" json:"location"`
	Count    int64  `doc:"Times resolved"       example:"27"                   json:"count"`
}

// UserLinksResponse lists every link owned by a user.
type UserLinksResponse struct {
	Body struct {
		Links []LinkSummary `json:"links"`
	}
}
