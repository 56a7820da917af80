package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/natserract/jiraci/pkg/jira"
	"github.com/natserract/jiraci/pkg/submission"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrNoSites is returned when a submission has no target site.
var ErrNoSites = errors.New("no sites to submit to")

var siteSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "jiraci",
		Name:      "site_submissions_total",
		Help:      "Per-site submissions by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// Site is a Jira tenant together with the token used for it.
type Site struct {
	URL         string
	CloudID     string
	AccessToken string
}

// SiteResult is the outcome for a single site. Err is nil on success.
type SiteResult struct {
	Site   Site
	Record submission.Record
	Err    error
}

// SubmitMetrics tracks the outcome of one fan-out
type SubmitMetrics struct {
	SitesSucceeded int
	SitesFailed    int
	ItemsAccepted  int
	ItemsRejected  int
	mu             sync.Mutex
}

// AddSuccess records a site that answered with a usable response
func (m *SubmitMetrics) AddSuccess(accepted, rejected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SitesSucceeded++
	m.ItemsAccepted += accepted
	m.ItemsRejected += rejected
}

// AddFailure records a site whose update failed
func (m *SubmitMetrics) AddFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SitesFailed++
}

// Total returns the number of sites processed
func (m *SubmitMetrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SitesSucceeded + m.SitesFailed
}

// SubmitService sends one payload to many Jira sites and records each outcome.
type SubmitService struct {
	client         jira.UpdateClient
	store          submission.Store
	maxConcurrency int
	logger         *zap.Logger
}

// NewSubmitService creates a new submit service. A nil store disables recording.
func NewSubmitService(client jira.UpdateClient, store submission.Store, maxConcurrency int, logger *zap.Logger) *SubmitService {
	if store == nil {
		store = submission.NopStore{}
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitService{
		client:         client,
		store:          store,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// SubmitBuilds sends payload to every site. Results are in site order; the
// returned error joins the failures of individual sites.
func (s *SubmitService) SubmitBuilds(ctx context.Context, sites []Site, payload *jira.BuildPayload) ([]SiteResult, *SubmitMetrics, error) {
	return s.fanOut(ctx, submission.KindBuilds, sites, func(ctx context.Context, site Site, rec *submission.Record) error {
		resp, err := s.client.SubmitBuilds(ctx, site.CloudID, site.AccessToken, site.URL, payload)
		if err != nil {
			return err
		}

		rec.Accepted = len(resp.AcceptedBuilds)
		rec.Rejected = len(resp.RejectedBuilds)
		rec.UnknownIssueKeys = resp.UnknownIssueKeys
		for _, rejected := range resp.RejectedBuilds {
			s.logger.Warn("Build rejected",
				zap.String("site_url", site.URL),
				zap.String("pipeline_id", rejected.Key.PipelineID),
				zap.Int64("build_number", rejected.Key.BuildNumber),
				zap.Strings("errors", errorMessages(rejected.Errors)))
		}
		return nil
	})
}

// SubmitDeployments sends payload to every site. See SubmitBuilds.
func (s *SubmitService) SubmitDeployments(ctx context.Context, sites []Site, payload *jira.DeploymentPayload) ([]SiteResult, *SubmitMetrics, error) {
	return s.fanOut(ctx, submission.KindDeployments, sites, func(ctx context.Context, site Site, rec *submission.Record) error {
		resp, err := s.client.SubmitDeployments(ctx, site.CloudID, site.AccessToken, site.URL, payload)
		if err != nil {
			return err
		}

		rec.Accepted = len(resp.AcceptedDeployments)
		rec.Rejected = len(resp.RejectedDeployments)
		rec.UnknownIssueKeys = resp.UnknownIssueKeys
		for _, rejected := range resp.RejectedDeployments {
			s.logger.Warn("Deployment rejected",
				zap.String("site_url", site.URL),
				zap.String("pipeline_id", rejected.Key.PipelineID),
				zap.String("environment_id", rejected.Key.EnvironmentID),
				zap.Strings("errors", errorMessages(rejected.Errors)))
		}
		return nil
	})
}

type submitFunc func(ctx context.Context, site Site, rec *submission.Record) error

func (s *SubmitService) fanOut(ctx context.Context, kind string, sites []Site, submit submitFunc) ([]SiteResult, *SubmitMetrics, error) {
	metrics := &SubmitMetrics{}
	if len(sites) == 0 {
		return nil, metrics, ErrNoSites
	}

	startTime := time.Now()
	s.logger.Info("Starting submission",
		zap.String("kind", kind),
		zap.Int("sites", len(sites)))

	results := make([]SiteResult, len(sites))
	p := pool.New().WithMaxGoroutines(s.maxConcurrency).WithErrors()

	for idx, site := range sites {
		p.Go(func() error {
			rec := submission.NewRecord(kind, site.URL, site.CloudID)

			err := submit(ctx, site, &rec)
			if err != nil {
				rec.Outcome = submission.OutcomeFailed
				rec.Message = err.Error()
				var se *jira.SubmitError
				if errors.As(err, &se) {
					rec.ErrorKind = se.Kind.String()
					rec.StatusCode = se.StatusCode
				}
				metrics.AddFailure()
			} else {
				rec.Outcome = submission.OutcomeSuccess
				metrics.AddSuccess(rec.Accepted, rec.Rejected)
			}
			siteSubmissionsTotal.WithLabelValues(kind, rec.Outcome).Inc()

			// History is best effort; a store failure never fails the site
			if saveErr := s.store.SaveRecord(ctx, rec); saveErr != nil {
				s.logger.Warn("Failed to record submission",
					zap.String("site_url", site.URL),
					zap.String("submission_id", rec.ID.String()),
					zap.Error(saveErr))
			}

			results[idx] = SiteResult{Site: site, Record: rec, Err: err}
			if err != nil {
				return fmt.Errorf("%s: %w", site.URL, err)
			}
			return nil
		})
	}

	err := p.Wait()

	s.logger.Info("Completed submission",
		zap.String("kind", kind),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("sites_succeeded", metrics.SitesSucceeded),
		zap.Int("sites_failed", metrics.SitesFailed),
		zap.Int("items_accepted", metrics.ItemsAccepted),
		zap.Int("items_rejected", metrics.ItemsRejected))

	return results, metrics, err
}

func errorMessages(errs []jira.APIError) []string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return messages
}
