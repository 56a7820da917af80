package jira

// DefaultBuildsEndpoint is the Jira Cloud builds bulk endpoint.
const DefaultBuildsEndpoint = "https://api.atlassian.com/jira/builds/0.1/cloud/%s/bulk"

// Build states accepted by Jira.
const (
	BuildStatePending    = "pending"
	BuildStateInProgress = "in_progress"
	BuildStateSuccessful = "successful"
	BuildStateFailed     = "failed"
	BuildStateCancelled  = "cancelled"
	BuildStateUnknown    = "unknown"
)

// BuildPayload is the body posted to the builds endpoint.
type BuildPayload struct {
	Properties       map[string]string `json:"properties,omitempty"`
	ProviderMetadata *ProviderMetadata `json:"providerMetadata,omitempty"`
	Builds           []Build           `json:"builds"`
}

// Build is one run of a pipeline.
type Build struct {
	SchemaVersion        string           `json:"schemaVersion,omitempty"`
	PipelineID           string           `json:"pipelineId"`
	BuildNumber          int64            `json:"buildNumber"`
	UpdateSequenceNumber int64            `json:"updateSequenceNumber"`
	DisplayName          string           `json:"displayName"`
	Description          string           `json:"description,omitempty"`
	Label                string           `json:"label,omitempty"`
	URL                  string           `json:"url"`
	State                string           `json:"state"`
	LastUpdated          Timestamp        `json:"lastUpdated"`
	IssueKeys            []string         `json:"issueKeys"`
	TestInfo             *TestInfo        `json:"testInfo,omitempty"`
	References           []BuildReference `json:"references,omitempty"`
}

// TestInfo summarises the tests executed by a build.
type TestInfo struct {
	TotalNumber   int `json:"totalNumber"`
	NumberPassed  int `json:"numberPassed"`
	NumberFailed  int `json:"numberFailed"`
	NumberSkipped int `json:"numberSkipped,omitempty"`
}

// BuildReference ties a build to the commit and branch it ran against.
type BuildReference struct {
	Commit *Commit `json:"commit,omitempty"`
	Ref    *Ref    `json:"ref,omitempty"`
}

type Commit struct {
	ID            string `json:"id"`
	RepositoryURI string `json:"repositoryUri"`
}

type Ref struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// BuildKey identifies a build within Jira.
type BuildKey struct {
	PipelineID  string `json:"pipelineId"`
	BuildNumber int64  `json:"buildNumber"`
}

type RejectedBuild struct {
	Key    BuildKey   `json:"key"`
	Errors []APIError `json:"errors"`
}

// BuildResponse is the reply of the builds endpoint.
type BuildResponse struct {
	AcceptedBuilds   []BuildKey      `json:"acceptedBuilds"`
	RejectedBuilds   []RejectedBuild `json:"rejectedBuilds"`
	UnknownIssueKeys []string        `json:"unknownIssueKeys"`
}
