package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
)

const BackendListings = "listings"

type ListingsGateway struct {
	c *Client
}

func NewListingsGateway(c *Client) *ListingsGateway {
	return &ListingsGateway{c: c}
}

func listingPath(id string) string {
	return "/listings/" + url.PathEscape(id)
}

func (g *ListingsGateway) List(ctx context.Context, limit, offset int) ([]entity.ListingPreview, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page []entity.ListingPreview
	err := g.c.do(ctx, request{method: http.MethodGet, route: "/listings", path: "/listings", query: q}, &page)
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = []entity.ListingPreview{}
	}
	return page, nil
}

func (g *ListingsGateway) Count(ctx context.Context) (int64, error) {
	var resp entity.CountResponse
	err := g.c.do(ctx, request{method: http.MethodGet, route: "/listings/count", path: "/listings/count"}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (g *ListingsGateway) Get(ctx context.Context, id string) (*entity.ListingDetail, error) {
	var detail entity.ListingDetail
	err := g.c.do(ctx, request{method: http.MethodGet, route: "/listings/{id}", path: listingPath(id)}, &detail)
	if err != nil {
		return nil, err
	}
	if detail.Reviews == nil {
		detail.Reviews = entity.Reviews{}
	}
	return &detail, nil
}

func (g *ListingsGateway) AddReview(ctx context.Context, id string, review entity.AddReviewRequest) (*entity.StatusResponse, error) {
	var resp entity.StatusResponse
	path := listingPath(id) + "/reviews"
	err := g.c.do(ctx, request{method: http.MethodPost, route: "/listings/{id}/reviews", path: path, body: review}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Administrative endpoints. The listings service enforces admin rights.

func (g *ListingsGateway) Create(ctx context.Context, in entity.ListingInput) (string, error) {
	var resp entity.CreatedResponse
	err := g.c.do(ctx, request{method: http.MethodPost, route: "/listings", path: "/listings", body: in}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (g *ListingsGateway) Update(ctx context.Context, id string, in entity.ListingInput) (*entity.StatusResponse, error) {
	var resp entity.StatusResponse
	err := g.c.do(ctx, request{method: http.MethodPut, route: "/listings/{id}", path: listingPath(id), body: in}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *ListingsGateway) Delete(ctx context.Context, id string) (*entity.StatusResponse, error) {
	var resp entity.StatusResponse
	err := g.c.do(ctx, request{method: http.MethodDelete, route: "/listings/{id}", path: listingPath(id)}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *ListingsGateway) ListReviews(ctx context.Context, id string) (*entity.ListingReviews, error) {
	var resp entity.ListingReviews
	path := listingPath(id) + "/reviews"
	err := g.c.do(ctx, request{method: http.MethodGet, route: "/listings/{id}/reviews", path: path}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Reviews == nil {
		resp.Reviews = []entity.Review{}
	}
	return &resp, nil
}

func (g *ListingsGateway) DeleteReview(ctx context.Context, id, reviewID string) (*entity.StatusResponse, error) {
	var resp entity.StatusResponse
	path := listingPath(id) + "/reviews/" + url.PathEscape(reviewID)
	err := g.c.do(ctx, request{method: http.MethodDelete, route: "/listings/{id}/reviews/{reviewId}", path: path}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
