package jira

import "context"

// UpdateClient defines the interface for Jira CI/CD API operations
type UpdateClient interface {
	// SubmitBuilds reports build information for a tenant
	SubmitBuilds(ctx context.Context, cloudID, accessToken, siteURL string, payload *BuildPayload) (*BuildResponse, error)

	// SubmitDeployments reports deployment information for a tenant
	SubmitDeployments(ctx context.Context, cloudID, accessToken, siteURL string, payload *DeploymentPayload) (*DeploymentResponse, error)
}

var (
	_ UpdateClient = (*Client)(nil)
	_ Updater      = (*API)(nil)
)
