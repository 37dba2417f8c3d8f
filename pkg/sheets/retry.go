package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/angelmondragon/roster-sheets/pkg/logger"
	"github.com/angelmondragon/roster-sheets/pkg/metrics"
	"google.golang.org/api/googleapi"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second

	reasonRateLimit   = "rate_limit"
	reasonServerError = "server_error"
)

// RetryPolicy controls how transient spreadsheet failures are retried.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	return p
}

// Backoff returns BaseDelay × 2^attempt for a zero-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

type sleepFunc func(ctx context.Context, d time.Duration) error

// Retrier owns the retry policy for every spreadsheet request.
type Retrier struct {
	policy  RetryPolicy
	logg    *logger.Logger
	metrics *metrics.SheetsMetrics
	sleep   sleepFunc
}

// NewRetrier builds a retrier; logger and metrics may be nil.
func NewRetrier(policy RetryPolicy, logg *logger.Logger, m *metrics.SheetsMetrics) *Retrier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Retrier{
		policy:  policy.normalized(),
		logg:    logg,
		metrics: m,
		sleep:   sleepContext,
	}
}

// Policy returns the normalized policy in effect.
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExecuteWithRetry runs call, retrying rate-limit (429) and server (5xx) errors
// with exponential backoff up to the policy's retry budget. Any other error is
// returned on the first attempt. The error returned after the budget is spent
// is the last one call produced, unwrapped.
func ExecuteWithRetry[T any](ctx context.Context, r *Retrier, op string, call func(context.Context) (T, error)) (T, error) {
	if r == nil {
		r = NewRetrier(RetryPolicy{}, nil, nil)
	}
	started := time.Now()

	for attempt := 0; ; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			r.metrics.ObserveRequest(op, metrics.OutcomeSuccess, time.Since(started))
			return resp, nil
		}

		reason, transient := transientReason(err)
		if !transient {
			r.metrics.ObserveRequest(op, metrics.OutcomeFailure, time.Since(started))
			r.logg.Error(r.logg.WithField(ctx, "op", op), "sheets request failed", err)
			var zero T
			return zero, err
		}
		if attempt >= r.policy.MaxRetries {
			r.metrics.ObserveRequest(op, metrics.OutcomeFailure, time.Since(started))
			r.logg.Error(r.logg.WithField(ctx, "op", op), "sheets request retries exhausted", err)
			var zero T
			return zero, err
		}

		wait := r.policy.Backoff(attempt)
		r.metrics.IncRetry(op, reason)
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
			"op":      op,
			"attempt": attempt + 1,
			"reason":  reason,
			"wait":    wait.String(),
		}), "transient sheets error, backing off")

		if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
			r.metrics.ObserveRequest(op, metrics.OutcomeFailure, time.Since(started))
			var zero T
			return zero, sleepErr
		}
	}
}

func transientReason(err error) (string, bool) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr == nil {
		return "", false
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return reasonRateLimit, true
	case apiErr.Code >= 500 && apiErr.Code <= 599:
		return reasonServerError, true
	}
	return "", false
}

// IsTransient reports whether err would be retried.
func IsTransient(err error) bool {
	_, ok := transientReason(err)
	return ok
}

// Classify wraps a spreadsheet failure in the matching typed error so callers
// can branch on a code instead of an HTTP status.
func Classify(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, action)
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return pkgerrors.Wrap(pkgerrors.CodeForbidden, err, action)
		case apiErr.Code == http.StatusNotFound:
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, action)
		case apiErr.Code == http.StatusBadRequest:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%s: request rejected", action))
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

type retryingValues struct {
	inner   Values
	retrier *Retrier
}

// WithRetry routes every Values call through ExecuteWithRetry.
func WithRetry(inner Values, r *Retrier) Values {
	return &retryingValues{inner: inner, retrier: r}
}

func (v *retryingValues) Get(ctx context.Context, spreadsheetID, rng string) (*gsheets.ValueRange, error) {
	return ExecuteWithRetry(ctx, v.retrier, "values.get", func(ctx context.Context) (*gsheets.ValueRange, error) {
		return v.inner.Get(ctx, spreadsheetID, rng)
	})
}

func (v *retryingValues) Append(ctx context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.AppendValuesResponse, error) {
	return ExecuteWithRetry(ctx, v.retrier, "values.append", func(ctx context.Context) (*gsheets.AppendValuesResponse, error) {
		return v.inner.Append(ctx, spreadsheetID, rng, rows)
	})
}

func (v *retryingValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.UpdateValuesResponse, error) {
	return ExecuteWithRetry(ctx, v.retrier, "values.update", func(ctx context.Context) (*gsheets.UpdateValuesResponse, error) {
		return v.inner.Update(ctx, spreadsheetID, rng, rows)
	})
}

func (v *retryingValues) Clear(ctx context.Context, spreadsheetID, rng string) (*gsheets.ClearValuesResponse, error) {
	return ExecuteWithRetry(ctx, v.retrier, "values.clear", func(ctx context.Context) (*gsheets.ClearValuesResponse, error) {
		return v.inner.Clear(ctx, spreadsheetID, rng)
	})
}
