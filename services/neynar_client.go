package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// CastURLLookup finds the hash of the cast published at a URL.
// found is false when the upstream has no such cast.
type CastURLLookup interface {
	CastByURL(ctx context.Context, castURL string) (hash string, found bool, err error)
}

// NeynarClient queries the Neynar REST API
type NeynarClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	metrics *shared.HTTPMetrics
	logger  *logrus.Entry
}

// NewNeynarClient creates a client for cfg. metrics may be nil.
func NewNeynarClient(cfg config.UpstreamConfig, factory *shared.HTTPClientFactory, metrics *shared.HTTPMetrics) *NeynarClient {
	return &NeynarClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  factory.CreateOptimizedHTTPClient(cfg.Timeout),
		metrics: metrics,
		logger:  logrus.WithField("component", "NeynarClient"),
	}
}

// CastByURL implements CastURLLookup. A non-success status is logged and
// reported as not found; only transport and read failures are errors.
func (c *NeynarClient) CastByURL(ctx context.Context, castURL string) (string, bool, error) {
	query := url.Values{}
	query.Set("identifier", castURL)
	query.Set("type", "url")
	endpoint := c.baseURL + "/v2/farcaster/cast?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, shared.NewUpstreamError(CodeNeynarFailed, "failed to build Neynar request", "NeynarClient", "CastByURL", err)
	}
	request.Header.Set("accept", "application/json")
	request.Header.Set("api_key", c.apiKey)
	request.Header.Set("User-Agent", userAgent)

	response, err := shared.ExecuteHTTPRequest(c.client, request, c.metrics)
	if err != nil {
		return "", false, shared.NewUpstreamError(CodeNeynarFailed, "Neynar request failed", "NeynarClient", "CastByURL", err)
	}

	body, err := shared.ReadResponseBody(response)
	if err != nil {
		return "", false, shared.NewUpstreamError(CodeNeynarFailed, "failed to read Neynar response", "NeynarClient", "CastByURL", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status_code": response.StatusCode,
			"status":      http.StatusText(response.StatusCode),
			"cast_url":    castURL,
		}).Warn("Failed to fetch cast from Neynar")
		return "", false, nil
	}

	hash := gjson.GetBytes(body, "cast.hash")
	if hash.Type != gjson.String || hash.String() == "" {
		return "", false, nil
	}
	return hash.String(), true, nil
}
