// Package jira provides a client for reporting CI/CD activity to Jira Cloud.
//
// Jira Cloud exposes two bulk endpoints for CI/CD providers:
//   - Builds: pipeline runs with their state, test summary and linked issue keys
//   - Deployments: releases into an environment, associated with issues or services
//
// Both accept a JSON document posted to a per-tenant URL and answer with a JSON
// summary of accepted and rejected items. API wraps a single endpoint; Client
// bundles the builds and deployments endpoints.
package jira

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	httpclient "github.com/natserract/jiraci/pkg/http"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	// maxLoggedErrorBody caps how much of a non-2xx body is logged.
	maxLoggedErrorBody = 64 << 10
)

// Doer executes an HTTP request. *http.Client and *httpclient.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Updater submits a payload for a tenant and decodes the reply into out.
type Updater interface {
	PostUpdate(ctx context.Context, cloudID, accessToken, siteURL string, payload, out any) error
}

// API posts update payloads to one Jira endpoint. It holds no per-call state
// and is safe for concurrent use.
type API struct {
	transport Doer
	codec     Codec
	endpoint  string
	logger    *zap.Logger
}

// NewAPI creates an API for endpoint, a URL template with a single %s slot that
// receives the cloud id. A nil codec defaults to JSONCodec and a nil logger to a no-op.
func NewAPI(transport Doer, codec Codec, endpoint string, logger *zap.Logger) (*API, error) {
	if transport == nil {
		return nil, fmt.Errorf("jira: transport is required")
	}
	if err := httpclient.ValidateTemplate(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		transport: transport,
		codec:     codec,
		endpoint:  endpoint,
		logger:    logger,
	}, nil
}

// PostUpdate serializes payload, posts it to the endpoint resolved for cloudID
// and decodes a successful response into out. siteURL only labels diagnostics.
// Exactly one request is sent. Every failure is logged and returned as a
// *SubmitError matching ErrUpdateFailed.
func (a *API) PostUpdate(ctx context.Context, cloudID, accessToken, siteURL string, payload, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := a.codec.Marshal(payload)
	if err != nil {
		return a.fail(&SubmitError{
			Kind:    KindSerialization,
			SiteURL: siteURL,
			Message: fmt.Sprintf("Unable to create the request payload for %s : %v", siteURL, err),
			Err:     err,
		})
	}

	req, err := a.newRequest(ctx, cloudID, accessToken, body)
	if err != nil {
		return a.fail(&SubmitError{
			Kind:    KindTransport,
			SiteURL: siteURL,
			Message: fmt.Sprintf("Unable to build the request for %s: %v", siteURL, err),
			Err:     err,
		})
	}

	a.logger.Debug("Submitting update",
		zap.String("site_url", siteURL),
		zap.String("cloud_id", cloudID),
		zap.Int("payload_bytes", len(body)))

	resp, err := a.transport.Do(req)
	if err != nil {
		return a.fail(&SubmitError{
			Kind:    KindTransport,
			SiteURL: siteURL,
			Message: fmt.Sprintf("Server exception when submitting to %s: %v", siteURL, err),
			Err:     err,
		})
	}
	if resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logErrorBody(siteURL, resp)
		return a.fail(&SubmitError{
			Kind:       KindErrorResponse,
			SiteURL:    siteURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Error response code %d when submitting to %s", resp.StatusCode, siteURL),
		})
	}

	var data []byte
	if resp.Body != nil {
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return a.fail(&SubmitError{
				Kind:       KindTransport,
				SiteURL:    siteURL,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("Server exception when submitting to %s: %v", siteURL, err),
				Err:        err,
			})
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return a.fail(&SubmitError{
			Kind:       KindEmptyBody,
			SiteURL:    siteURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Empty response body when submitting to %s", siteURL),
		})
	}

	if err := a.codec.Unmarshal(data, out); err != nil {
		return a.fail(&SubmitError{
			Kind:       KindDeserialization,
			SiteURL:    siteURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Invalid JSON when submitting to %s: %v", siteURL, err),
			Err:        err,
		})
	}

	updatesTotal.WithLabelValues(outcomeSuccess).Inc()
	a.logger.Debug("Update accepted",
		zap.String("site_url", siteURL),
		zap.Int("status_code", resp.StatusCode))

	return nil
}

func (a *API) newRequest(ctx context.Context, cloudID, accessToken string, body []byte) (*http.Request, error) {
	url, err := httpclient.ExpandTemplate(a.endpoint, cloudID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// logErrorBody records the body of a non-2xx response, cut to maxLoggedErrorBody
// bytes. A body that cannot be read is reported as unavailable and does not
// change the classification.
func (a *API) logErrorBody(siteURL string, resp *http.Response) {
	if resp.Body == nil {
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedErrorBody+1))
	if err != nil {
		a.logger.Error(fmt.Sprintf("Error response body when submitting to %s: body unavailable", siteURL),
			zap.String("site_url", siteURL),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("site_url", siteURL),
		zap.Int("status_code", resp.StatusCode),
	}
	if len(data) > maxLoggedErrorBody {
		data = data[:maxLoggedErrorBody]
		fields = append(fields, zap.Bool("truncated", true), zap.Int("logged_bytes", maxLoggedErrorBody))
	}

	a.logger.Error(fmt.Sprintf("Error response body when submitting to %s: %s", siteURL, string(data)), fields...)
}

func (a *API) fail(se *SubmitError) error {
	updatesTotal.WithLabelValues(se.Kind.String()).Inc()

	fields := []zap.Field{
		zap.String("site_url", se.SiteURL),
		zap.String("kind", se.Kind.String()),
	}
	if se.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", se.StatusCode))
	}
	a.logger.Error(se.Message, fields...)

	return se
}

// Submit posts payload through u and decodes the response as a T. The returned
// value is non-nil whenever err is nil.
func Submit[T any](ctx context.Context, u Updater, cloudID, accessToken, siteURL string, payload any) (*T, error) {
	var out T
	if err := u.PostUpdate(ctx, cloudID, accessToken, siteURL, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
