package jira

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Client reports builds and deployments, each through its own API endpoint.
type Client struct {
	builds      *API
	deployments *API
	logger      *zap.Logger
}

// NewClientWithLogger creates a Client with a custom logger. Both endpoints
// share the transport and the JSON codec.
func NewClientWithLogger(transport Doer, buildsEndpoint, deploymentsEndpoint string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	builds, err := NewAPI(transport, JSONCodec{}, buildsEndpoint, logger.With(zap.String("api", "builds")))
	if err != nil {
		return nil, fmt.Errorf("builds api: %w", err)
	}
	deployments, err := NewAPI(transport, JSONCodec{}, deploymentsEndpoint, logger.With(zap.String("api", "deployments")))
	if err != nil {
		return nil, fmt.Errorf("deployments api: %w", err)
	}

	return &Client{
		builds:      builds,
		deployments: deployments,
		logger:      logger,
	}, nil
}

// SubmitBuilds sends payload to the builds endpoint of the tenant cloudID.
func (c *Client) SubmitBuilds(ctx context.Context, cloudID, accessToken, siteURL string, payload *BuildPayload) (*BuildResponse, error) {
	c.logger.Info("Submitting builds",
		zap.String("site_url", siteURL),
		zap.Int("builds_count", buildsCount(payload)))

	resp, err := Submit[BuildResponse](ctx, c.builds, cloudID, accessToken, siteURL, payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Successfully submitted builds",
		zap.String("site_url", siteURL),
		zap.Int("accepted", len(resp.AcceptedBuilds)),
		zap.Int("rejected", len(resp.RejectedBuilds)),
		zap.Strings("unknown_issue_keys", resp.UnknownIssueKeys))

	return resp, nil
}

// SubmitDeployments sends payload to the deployments endpoint of the tenant cloudID.
func (c *Client) SubmitDeployments(ctx context.Context, cloudID, accessToken, siteURL string, payload *DeploymentPayload) (*DeploymentResponse, error) {
	c.logger.Info("Submitting deployments",
		zap.String("site_url", siteURL),
		zap.Int("deployments_count", deploymentsCount(payload)))

	resp, err := Submit[DeploymentResponse](ctx, c.deployments, cloudID, accessToken, siteURL, payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Successfully submitted deployments",
		zap.String("site_url", siteURL),
		zap.Int("accepted", len(resp.AcceptedDeployments)),
		zap.Int("rejected", len(resp.RejectedDeployments)),
		zap.Strings("unknown_issue_keys", resp.UnknownIssueKeys))

	return resp, nil
}

func buildsCount(p *BuildPayload) int {
	if p == nil {
		return 0
	}
	return len(p.Builds)
}

func deploymentsCount(p *DeploymentPayload) int {
	if p == nil {
		return 0
	}
	return len(p.Deployments)
}
