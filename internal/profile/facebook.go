// Package profile fetches public profile data from the Facebook Graph API
// using the access token stored on an account.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// PublicProfilePermission is the permission a token must carry before the
// profile is read.
const PublicProfilePermission = "public_profile"

// PublicProfileFields are the default public profile fields of the Graph API user node.
var PublicProfileFields = []string{
	"id", "first_name", "last_name", "middle_name", "name", "name_format", "picture", "short_name",
}

const maxResponseBytes = 1 << 20

type GraphClient struct {
	baseURL string
	version string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

type GraphConfig struct {
	BaseURL string
	Version string
	Timeout time.Duration
	// HTTPClient is the transport used under the oauth2 wrapper. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func NewGraphClient(cfg GraphConfig, logger *zap.Logger) *GraphClient {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	return &GraphClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		version: strings.Trim(cfg.Version, "/"),
		timeout: cfg.Timeout,
		http:    base,
		logger:  logger,
	}
}

type permission struct {
	Permission string `json:"permission"`
	Status     string `json:"status"`
}

type permissionsResponse struct {
	Data []permission `json:"data"`
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FetchProfile confirms the token was granted public_profile and then reads the
// caller's public profile fields. A missing permission wraps
// models.ErrPermissionNotGranted; every other failure wraps models.ErrProfileUpstream.
func (g *GraphClient) FetchProfile(ctx context.Context, accessToken string) (models.PublicProfile, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, g.http),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)

	granted, err := g.grantedPermissions(ctx, client)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(granted, PublicProfilePermission) {
		return nil, errors.Wrapf(models.ErrPermissionNotGranted, "permission %q not granted", PublicProfilePermission)
	}

	var profile models.PublicProfile
	query := url.Values{"fields": {strings.Join(PublicProfileFields, ",")}}
	if err := g.get(ctx, client, "me", query, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (g *GraphClient) grantedPermissions(ctx context.Context, client *http.Client) ([]string, error) {
	var resp permissionsResponse
	if err := g.get(ctx, client, "me/permissions", nil, &resp); err != nil {
		return nil, err
	}
	return lo.FilterMap(resp.Data, func(p permission, _ int) (string, bool) {
		return p.Permission, p.Status == "granted"
	}), nil
}

func (g *GraphClient) endpoint(path string, query url.Values) string {
	parts := []string{g.baseURL}
	if g.version != "" {
		parts = append(parts, g.version)
	}
	parts = append(parts, path)
	u := strings.Join(parts, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (g *GraphClient) get(ctx context.Context, client *http.Client, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint(path, query), nil)
	if err != nil {
		return errors.Wrapf(models.ErrProfileUpstream, "failed to build request for %s: %v", path, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(models.ErrProfileUpstream, "request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(models.ErrProfileUpstream, "failed to read %s response: %v", path, err)
	}

	if resp.StatusCode/100 != 2 {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		var graphErr graphErrorResponse
		if json.Unmarshal(body, &graphErr) == nil && graphErr.Error.Message != "" {
			msg = fmt.Sprintf("%s (%s, code %d)", graphErr.Error.Message, graphErr.Error.Type, graphErr.Error.Code)
		}
		g.logger.Warn("graph api returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", msg),
		)
		return errors.Wrapf(models.ErrProfileUpstream, "%s: %s", path, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(models.ErrProfileUpstream, "failed to decode %s response: %v", path, err)
	}
	return nil
}
