// Package kakao wraps the two kakao open API calls the booking
// platform depends on: resolving a kakao access token to account
// info during social signin, and invalidating the session on logout.
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors mapped from the kakao API "msg" responses.
var (
	// ErrInvalidToken means the access token does not exist on kakao's side.
	ErrInvalidToken = errors.New("kakao access token does not exist")
	// ErrTokenExpired means the access token exists but has expired.
	ErrTokenExpired = errors.New("kakao access token expired")
)

// UserInfo is the subset of the /v2/user/me response the platform uses.
type UserInfo struct {
	ID           int64
	Nickname     string
	Email        string
	ThumbnailURL string
}

// Client calls the kakao open API.  BaseURL is configurable so tests
// can point it at a local stub server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client against the given base URL (typically
// https://kapi.kakao.com) with a bounded request timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// rawUserInfo mirrors the wire shape of /v2/user/me.
type rawUserInfo struct {
	ID      int64  `json:"id"`
	Msg     string `json:"msg"`
	Account struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname          string `json:"nickname"`
			ThumbnailImageURL string `json:"thumbnail_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// GetUserInfo resolves an access token into the kakao account it
// belongs to.  Token problems are reported as ErrInvalidToken or
// ErrTokenExpired; other failures bubble up wrapped.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	var raw rawUserInfo
	if err := c.get(ctx, "/v2/user/me", accessToken, &raw); err != nil {
		return UserInfo{}, err
	}
	switch raw.Msg {
	case "this access token does not exist":
		return UserInfo{}, ErrInvalidToken
	case "this access token is already expired":
		return UserInfo{}, ErrTokenExpired
	}
	return UserInfo{
		ID:           raw.ID,
		Nickname:     raw.Account.Profile.Nickname,
		Email:        raw.Account.Email,
		ThumbnailURL: raw.Account.Profile.ThumbnailImageURL,
	}, nil
}

// Logout invalidates the kakao session for the given access token.
// Failures are returned but callers normally only log them; local
// session teardown does not depend on kakao being reachable.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var raw struct {
		ID  int64  `json:"id"`
		Msg string `json:"msg"`
	}
	return c.get(ctx, "/v1/user/logout", accessToken, &raw)
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("kakao: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("kakao: call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("kakao: decode %s response: %w", path, err)
	}
	return nil
}
