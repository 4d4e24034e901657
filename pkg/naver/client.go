// Package naver talks to Naver Login: the OAuth2 authorize/token endpoints
// and the nid/me profile API.
package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultProfileURL = "https://openapi.naver.com/v1/nid/me"
	DefaultAuthURL    = "https://nid.naver.com/oauth2.0/authorize"
	DefaultTokenURL   = "https://nid.naver.com/oauth2.0/token"

	successCode = "00"
)

var (
	// ErrTokenRejected means Naver did not accept the access token.
	ErrTokenRejected = errors.New("naver rejected the access token")
	// ErrUnavailable covers transport failures and unexpected responses.
	ErrUnavailable = errors.New("naver profile API unavailable")
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	ProfileURL   string
	AuthURL      string
	TokenURL     string
}

// Profile is the "response" object of nid/me.
type Profile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image"`

	Raw map[string]interface{} `json:"-"`
}

// DisplayName prefers the real name and falls back to the nickname.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Nickname
}

type profileEnvelope struct {
	ResultCode string          `json:"resultcode"`
	Message    string          `json:"message"`
	Response   json.RawMessage `json:"response"`
}

type Client struct {
	oauth      *oauth2.Config
	profileURL string
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = DefaultProfileURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: cfg.ProfileURL,
		httpClient: httpClient,
	}
}

// AuthCodeURL is where the browser is sent to start Naver Login.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code, state string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, code, oauth2.SetAuthURLParam("state", state))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", fmt.Errorf("%w: %s", ErrTokenRejected, re.ErrorCode)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if tok.AccessToken == "" {
		return "", ErrTokenRejected
	}
	return tok.AccessToken, nil
}

// FetchProfile calls nid/me with accessToken as bearer.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, ErrTokenRejected
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var env profileEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrUnavailable, err)
	}
	if env.ResultCode != successCode {
		return nil, fmt.Errorf("%w: resultcode %s (%s)", ErrTokenRejected, env.ResultCode, env.Message)
	}

	var profile Profile
	if err := json.Unmarshal(env.Response, &profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrUnavailable, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", ErrUnavailable)
	}
	_ = json.Unmarshal(env.Response, &profile.Raw)
	return &profile, nil
}
