// Package discord implements ports.IdentityProvider against the Discord
// OAuth2 API.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hexapod/packs-go/internal/domain"
	"github.com/hexapod/packs-go/internal/ports"
)

const (
	defaultAuthURL  = "https://discord.com/oauth2/authorize"
	defaultTokenURL = "https://discord.com/api/v10/oauth2/token"
	defaultUserURL  = "https://discord.com/api/v10/users/@me"

	avatarCDN = "https://cdn.discordapp.com"
)

// Config holds the Discord application credentials. The endpoint URLs are
// overridable for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL  string
	TokenURL string
	UserURL  string
}

// Provider exchanges authorization codes and fetches profiles via Discord.
type Provider struct {
	httpClient *http.Client
	config     Config
}

func NewProvider(httpClient *http.Client, config Config) *Provider {
	if config.AuthURL == "" {
		config.AuthURL = defaultAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.UserURL == "" {
		config.UserURL = defaultUserURL
	}
	return &Provider{httpClient: httpClient, config: config}
}

// LoginURL builds the authorization redirect with the identify and email
// scopes.
func (p *Provider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"identify email"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
}

// Exchange trades the authorization code for a bearer token, then fetches
// the user's profile with it.
func (p *Provider) Exchange(ctx context.Context, code string) (domain.Identity, string, error) {
	token, err := p.exchangeToken(ctx, code)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("exchange token: %w", err)
	}

	identity, err := p.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("fetch profile: %w", err)
	}

	return identity, token.AccessToken, nil
}

func (p *Provider) exchangeToken(ctx context.Context, code string) (*tokenResponse, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {p.config.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}
	return &token, nil
}

// FetchIdentity loads the profile behind an access token.
func (p *Provider) FetchIdentity(ctx context.Context, credential string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserURL, nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("user request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("read user response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, fmt.Errorf("user endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return domain.Identity{}, fmt.Errorf("parse user response: %w", err)
	}
	if user.ID == "" {
		return domain.Identity{}, fmt.Errorf("empty id in user response")
	}

	return domain.Identity{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: displayName(user),
		AvatarURL:   avatarURL(user),
	}, nil
}

func displayName(user userResponse) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// avatarURL derives the CDN avatar address. Users without a custom avatar
// fall back to a default embed avatar indexed by their discriminator.
func avatarURL(user userResponse) string {
	if user.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", avatarCDN, user.ID, user.Avatar)
	}
	index := 0
	if n, err := strconv.Atoi(user.Discriminator); err == nil {
		index = n % 5
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", avatarCDN, index)
}

// compile-time interface check
var _ ports.IdentityProvider = (*Provider)(nil)
