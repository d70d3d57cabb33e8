package api

import (
	"context"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
)

// Login exchanges credentials for an access token. The call itself does not
// require an authorization header; a configured token, if any, is ignored by
// the backend for this path.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Token, error) {
	var token models.Token
	err := c.PostJSON(ctx, "/auth/login", models.LoginRequest{Email: email, Password: password}, &token)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "login response carried no access token")
	}
	return &token, nil
}
