package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortloop/shortloop/internal/analytics"
	"github.com/shortloop/shortloop/internal/link"
	"github.com/shortloop/shortloop/internal/messaging"
	"go.uber.org/zap"
)

// LinkHandler handles link creation, redirects, deletion, and listings.
type LinkHandler struct {
	service      *link.Service
	stats        analytics.Store
	baseURL      string
	publishClick messaging.Publish[analytics.ClickEvent]
	logger       *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	service *link.Service,
	stats analytics.Store,
	baseURL string,
	publishClick messaging.Publish[analytics.ClickEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:      service,
		stats:        stats,
		baseURL:      baseURL,
		publishClick: publishClick,
		logger:       logger,
	}
}

func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	meta := RequestMetaFromContext(ctx)

	created, err := h.service.CreateLink(ctx, link.CreateParams{
		LongURL:    req.Body.LongURL,
		CustomCode: link.Code(req.Body.CustomShortCode),
		ExpiresAt:  req.Body.ExpiresAt,
		OwnerID:    meta.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, link.ErrDuplicateCode):
			return nil, huma.Error409Conflict("short code already exists")
		case errors.Is(err, link.ErrInvalidExpiration):
			return nil, huma.Error400BadRequest("expiration date must be in the future")
		case errors.Is(err, link.ErrUnavailable):
			return nil, huma.Error503ServiceUnavailable("service temporarily unavailable")
		default:
			h.logger.Error("failed to create link", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create link")
		}
	}

	shortURL := fmt.Sprintf("%s/%s", h.baseURL, created.Code)

	resp := &ShortenResponse{}
	resp.Headers.Location = shortURL
	resp.Body.ShortCode = string(created.Code)
	resp.Body.ShortURL = shortURL
	resp.Body.LongURL = created.LongURL
	resp.Body.ExpiresAt = created.ExpiresAt

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, err := h.service.Resolve(ctx, link.Code(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, link.ErrExpired):
			return nil, huma.Error410Gone("short link expired")
		case errors.Is(err, link.ErrNotFound):
			return nil, huma.Error404NotFound("short link not found")
		default:
			return nil, huma.Error503ServiceUnavailable("service temporarily unavailable")
		}
	}

	// The redirect has already succeeded; a failed enqueue is logged, never
	// surfaced.
	meta := RequestMetaFromContext(ctx)

	referrer := meta.Referrer
	if referrer == "" {
		referrer = analytics.DirectReferrer
	}

	event := &analytics.ClickEvent{
		ShortCode: req.Code,
		Timestamp: time.Now().UTC(),
		Referrer:  referrer,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishClick(event); err != nil {
		h.logger.Error("failed to publish click event",
			zap.String("code", req.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = longURL

	return resp, nil
}

func (h *LinkHandler) Delete(ctx context.Context, req *DeleteLinkRequest) (*struct{}, error) {
	meta := RequestMetaFromContext(ctx)
	if meta.UserID == "" && !meta.Admin {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	// Admins bypass the ownership check by omitting the requester.
	requester := meta.UserID
	if meta.Admin {
		requester = ""
	}

	err := h.service.DeleteLink(ctx, link.Code(req.Code), requester)
	if err != nil {
		switch {
		case errors.Is(err, link.ErrNotFound):
			return nil, huma.Error404NotFound("short link not found")
		case errors.Is(err, link.ErrForbidden):
			return nil, huma.Error403Forbidden("you can only delete your own links")
		default:
			return nil, huma.Error503ServiceUnavailable("service temporarily unavailable")
		}
	}

	return &struct{}{}, nil
}

func (h *LinkHandler) MyLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	meta := RequestMetaFromContext(ctx)
	if meta.UserID == "" {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	links, err := h.service.UserLinks(ctx, meta.UserID)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("service temporarily unavailable")
	}

	return h.listResponse(ctx, links), nil
}

func (h *LinkHandler) AdminLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	meta := RequestMetaFromContext(ctx)
	if !meta.Admin {
		return nil, huma.Error403Forbidden("admin access required")
	}

	links, err := h.service.AllLinks(ctx)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("service temporarily unavailable")
	}

	return h.listResponse(ctx, links), nil
}

func (h *LinkHandler) listResponse(ctx context.Context, links []*link.Link) *ListLinksResponse {
	resp := &ListLinksResponse{}
	resp.Body.Links = make([]LinkWithStats, 0, len(links))

	for _, l := range links {
		item := LinkWithStats{
			ShortCode: string(l.Code),
			LongURL:   l.LongURL,
			ExpiresAt: l.ExpiresAt,
			CreatedAt: l.CreatedAt,
		}

		stats, err := h.stats.Aggregate(ctx, string(l.Code))
		if err != nil {
			h.logger.Warn("failed to aggregate stats for listing",
				zap.String("code", string(l.Code)),
				zap.Error(err),
			)
		} else {
			item.Stats = stats
		}

		resp.Body.Links = append(resp.Body.Links, item)
	}

	return resp
}
