package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// UsernameLookup maps a Farcaster username to its FID
type UsernameLookup interface {
	FidByUsername(ctx context.Context, username string) (fid uint64, found bool, err error)
}

// WarpcastClient queries the public Warpcast API
type WarpcastClient struct {
	baseURL string
	client  *http.Client
	metrics *shared.HTTPMetrics
	logger  *logrus.Entry
}

// NewWarpcastClient creates a client for cfg. metrics may be nil.
func NewWarpcastClient(cfg config.UpstreamConfig, factory *shared.HTTPClientFactory, metrics *shared.HTTPMetrics) *WarpcastClient {
	return &WarpcastClient{
		baseURL: cfg.BaseURL,
		client:  factory.CreateOptimizedHTTPClient(cfg.Timeout),
		metrics: metrics,
		logger:  logrus.WithField("component", "WarpcastClient"),
	}
}

// FidByUsername implements UsernameLookup
func (c *WarpcastClient) FidByUsername(ctx context.Context, username string) (uint64, bool, error) {
	endpoint := c.baseURL + "/v2/user-by-username?username=" + url.QueryEscape(username)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false, shared.NewUpstreamError(CodeWarpcastFailed, "failed to build Warpcast request", "WarpcastClient", "FidByUsername", err)
	}
	request.Header.Set("accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := shared.ExecuteHTTPRequest(c.client, request, c.metrics)
	if err != nil {
		return 0, false, shared.NewUpstreamError(CodeWarpcastFailed, "Warpcast request failed", "WarpcastClient", "FidByUsername", err)
	}

	body, err := shared.ReadResponseBody(response)
	if err != nil {
		return 0, false, shared.NewUpstreamError(CodeWarpcastFailed, "failed to read Warpcast response", "WarpcastClient", "FidByUsername", err)
	}

	switch {
	case response.StatusCode == http.StatusNotFound:
		return 0, false, nil
	case response.StatusCode < 200 || response.StatusCode >= 300:
		return 0, false, shared.NewUpstreamError(CodeWarpcastFailed,
			fmt.Sprintf("Warpcast returned status %d", response.StatusCode),
			"WarpcastClient", "FidByUsername", nil)
	}

	fid := gjson.GetBytes(body, "result.user.fid")
	if fid.Type != gjson.Number || fid.Num < 0 || fid.Num != math.Trunc(fid.Num) {
		c.logger.WithField("username", username).Debug("Warpcast response carried no fid")
		return 0, false, nil
	}
	return fid.Uint(), true, nil
}
