// Package submission records the outcome of every update sent to a Jira site.
package submission

import (
	"time"

	"github.com/google/uuid"
)

// Kinds of update.
const (
	KindBuilds      = "builds"
	KindDeployments = "deployments"
)

// Outcomes of a site submission.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Record is one submission of one payload to one site.
type Record struct {
	ID               uuid.UUID
	Kind             string
	SiteURL          string
	CloudID          string
	Outcome          string
	ErrorKind        string
	StatusCode       int
	Message          string
	Accepted         int
	Rejected         int
	UnknownIssueKeys []string
	CreatedAt        time.Time
}

// NewRecord creates a record with a fresh id stamped at the current time.
func NewRecord(kind, siteURL, cloudID string) Record {
	return Record{
		ID:        uuid.New(),
		Kind:      kind,
		SiteURL:   siteURL,
		CloudID:   cloudID,
		CreatedAt: time.Now().UTC(),
	}
}

// Failed reports whether the submission did not reach a successful response.
func (r Record) Failed() bool {
	return r.Outcome != OutcomeSuccess
}
