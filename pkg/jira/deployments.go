package jira

// DefaultDeploymentsEndpoint is the Jira Cloud deployments bulk endpoint.
const DefaultDeploymentsEndpoint = "https://api.atlassian.com/jira/deployments/0.1/cloud/%s/bulk"

// Deployment states accepted by Jira.
const (
	DeploymentStatePending    = "pending"
	DeploymentStateInProgress = "in_progress"
	DeploymentStateSuccessful = "successful"
	DeploymentStateFailed     = "failed"
	DeploymentStateRolledBack = "rolled_back"
	DeploymentStateCancelled  = "cancelled"
	DeploymentStateUnknown    = "unknown"
)

// Environment types accepted by Jira.
const (
	EnvironmentUnmapped    = "unmapped"
	EnvironmentDevelopment = "development"
	EnvironmentTesting     = "testing"
	EnvironmentStaging     = "staging"
	EnvironmentProduction  = "production"
)

// Association types.
const (
	AssociationIssueKeys       = "issueKeys"
	AssociationIssueIDOrKeys   = "issueIdOrKeys"
	AssociationServiceIDOrKeys = "serviceIdOrKeys"
)

// DeploymentPayload is the body posted to the deployments endpoint.
type DeploymentPayload struct {
	Properties       map[string]string `json:"properties,omitempty"`
	ProviderMetadata *ProviderMetadata `json:"providerMetadata,omitempty"`
	Deployments      []Deployment      `json:"deployments"`
}

type Deployment struct {
	SchemaVersion            string        `json:"schemaVersion,omitempty"`
	DeploymentSequenceNumber int64         `json:"deploymentSequenceNumber"`
	UpdateSequenceNumber     int64         `json:"updateSequenceNumber"`
	Associations             []Association `json:"associations"`
	DisplayName              string        `json:"displayName"`
	URL                      string        `json:"url"`
	Description              string        `json:"description"`
	LastUpdated              Timestamp     `json:"lastUpdated"`
	Label                    string        `json:"label,omitempty"`
	State                    string        `json:"state"`
	Pipeline                 Pipeline      `json:"pipeline"`
	Environment              Environment   `json:"environment"`
}

// Association links a deployment to issues or services.
type Association struct {
	AssociationType string   `json:"associationType"`
	Values          []string `json:"values"`
}

type Pipeline struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

type Environment struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// DeploymentKey identifies a deployment within Jira.
type DeploymentKey struct {
	PipelineID               string `json:"pipelineId"`
	EnvironmentID            string `json:"environmentId"`
	DeploymentSequenceNumber int64  `json:"deploymentSequenceNumber"`
}

type RejectedDeployment struct {
	Key    DeploymentKey `json:"key"`
	Errors []APIError    `json:"errors"`
}

// DeploymentResponse is the reply of the deployments endpoint.
type DeploymentResponse struct {
	AcceptedDeployments []DeploymentKey      `json:"acceptedDeployments"`
	RejectedDeployments []RejectedDeployment `json:"rejectedDeployments"`
	UnknownIssueKeys    []string             `json:"unknownIssueKeys"`
	UnknownAssociations []Association        `json:"unknownAssociations"`
}
