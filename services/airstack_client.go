package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
)

// GraphQLExecutor runs a GraphQL document and decodes its data object into out.
// found is false when the upstream answered with null data and no errors.
type GraphQLExecutor interface {
	Execute(ctx context.Context, document string, variables map[string]interface{}, out interface{}) (found bool, err error)
}

// AirstackClient posts GraphQL documents to the Airstack API with bearer auth
type AirstackClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	metrics  *shared.HTTPMetrics
	logger   *logrus.Entry
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// NewAirstackClient creates a client for cfg. metrics may be nil.
func NewAirstackClient(cfg config.UpstreamConfig, factory *shared.HTTPClientFactory, metrics *shared.HTTPMetrics) *AirstackClient {
	return &AirstackClient{
		endpoint: cfg.BaseURL,
		apiKey:   cfg.APIKey,
		client:   factory.CreateOptimizedHTTPClient(cfg.Timeout),
		metrics:  metrics,
		logger:   logrus.WithField("component", "AirstackClient"),
	}
}

// Execute implements GraphQLExecutor
func (c *AirstackClient) Execute(ctx context.Context, document string, variables map[string]interface{}, out interface{}) (bool, error) {
	payload, err := json.Marshal(graphQLRequest{Query: document, Variables: variables})
	if err != nil {
		return false, shared.NewUpstreamError(CodeGraphQLFailed, "failed to encode GraphQL request", "AirstackClient", "Execute", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, shared.NewUpstreamError(CodeGraphQLFailed, "failed to build GraphQL request", "AirstackClient", "Execute", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("User-Agent", userAgent)

	response, err := shared.ExecuteHTTPRequest(c.client, request, c.metrics)
	if err != nil {
		return false, shared.NewUpstreamError(CodeGraphQLFailed, "GraphQL request failed", "AirstackClient", "Execute", err)
	}

	body, err := shared.ReadResponseBody(response)
	if err != nil {
		return false, shared.NewUpstreamError(CodeGraphQLFailed, "failed to read GraphQL response", "AirstackClient", "Execute", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return false, shared.NewUpstreamError(CodeGraphQLFailed,
			fmt.Sprintf("GraphQL endpoint returned status %d", response.StatusCode),
			"AirstackClient", "Execute", nil).WithDetails(map[string]interface{}{"status_code": response.StatusCode})
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, shared.NewUpstreamError(CodeGraphQLFailed, "failed to decode GraphQL response", "AirstackClient", "Execute", err)
	}

	hasData := len(envelope.Data) > 0 && !bytes.Equal(bytes.TrimSpace(envelope.Data), []byte("null"))

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		if !hasData {
			return false, shared.NewUpstreamError(CodeGraphQLFailed, "GraphQL query returned errors", "AirstackClient", "Execute",
				errors.New(strings.Join(messages, "; "))).WithDetails(map[string]interface{}{"errors": messages})
		}
		c.logger.WithField("errors", messages).Warn("GraphQL query returned partial data with errors")
	}

	if !hasData {
		return false, nil
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return false, shared.NewUpstreamError(CodeGraphQLFailed, "GraphQL data does not match the expected shape", "AirstackClient", "Execute", err)
	}
	return true, nil
}
