package bilibili

import (
	"context"
	"errors"
)

// Account is the logged-in user as reported by the nav endpoint.
type Account struct {
	LoggedIn bool   `json:"isLogin"`
	MID      int64  `json:"mid"`
	Name     string `json:"uname"`
	VIP      int    `json:"vipStatus"`
}

// Nav reports who the configured cookies belong to.
func (c *Client) Nav(ctx context.Context) (Account, error) {
	var acct Account
	err := c.getJSON(ctx, "/x/web-interface/nav", nil, &acct)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == -101 {
		// -101: not logged in; the payload is still meaningful.
		return Account{}, nil
	}
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}
