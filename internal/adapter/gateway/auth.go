package gateway

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
)

const BackendAuth = "auth"

type AuthGateway struct {
	c *Client
}

func NewAuthGateway(c *Client) *AuthGateway {
	return &AuthGateway{c: c}
}

func (g *AuthGateway) Login(ctx context.Context, req entity.LoginRequest) (*entity.AuthResponse, error) {
	var resp entity.AuthResponse
	err := g.c.do(ctx, request{method: http.MethodPost, route: "/login/", path: "/login/", body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *AuthGateway) Register(ctx context.Context, req entity.RegisterRequest) (*entity.AuthResponse, error) {
	var resp entity.AuthResponse
	err := g.c.do(ctx, request{method: http.MethodPost, route: "/register/", path: "/register/", body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *AuthGateway) Logout(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := g.c.do(ctx, request{method: http.MethodPost, route: "/logout/", path: "/logout/"}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (g *AuthGateway) Profile(ctx context.Context) (*entity.User, error) {
	var user entity.User
	err := g.c.do(ctx, request{method: http.MethodGet, route: "/profile/", path: "/profile/"}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *AuthGateway) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.ProfileResponse, error) {
	var resp entity.ProfileResponse
	err := g.c.do(ctx, request{method: http.MethodPut, route: "/profile/update/", path: "/profile/update/", body: update}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify asks the auth service whether the stored token is still valid.
// A 401 is an answer, not a failure: it yields Valid == false.
func (g *AuthGateway) Verify(ctx context.Context) (*entity.TokenVerification, error) {
	var resp entity.TokenVerification
	err := g.c.do(ctx, request{method: http.MethodPost, route: "/verify/", path: "/verify/"}, &resp)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status == http.StatusUnauthorized {
			return &entity.TokenVerification{Valid: false, Error: apiErr.Message()}, nil
		}
		return nil, err
	}
	return &resp, nil
}
