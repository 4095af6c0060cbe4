// Package httpsource fetches MetaNetX release files over HTTP, such as from
// the public download site or a bucket's web endpoint.
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

const (
	defaultTimeout  = 10 * time.Minute
	defaultRetries  = 3
	defaultInterval = time.Second
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithRetries sets how many times a failed request is retried and the first
// backoff interval.
func WithRetries(n int, initial time.Duration) Option {
	return func(f *Fetcher) {
		f.retries = n
		f.interval = initial
	}
}

// Fetcher resolves file names against a base URL.
type Fetcher struct {
	base     *url.URL
	client   *http.Client
	retries  int
	interval time.Duration
	logger   logging.Logger
}

// NewFetcher returns a Fetcher for baseURL.  timeout bounds one whole
// download; zero selects a default sized for the largest release files.
func NewFetcher(baseURL string, timeout time.Duration, logger logging.Logger, opts ...Option) (*Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, pkgerrors.InvalidParam("invalid source base url").WithDetail(baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	f := &Fetcher{
		base:     u,
		client:   &http.Client{Timeout: timeout},
		retries:  defaultRetries,
		interval: defaultInterval,
		logger:   logging.OrDefault(logger).Named("httpsource"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// URL returns the absolute location of name.
func (f *Fetcher) URL(name string) string {
	return f.base.ResolveReference(&url.URL{Path: strings.TrimLeft(name, "/")}).String()
}

// Fetch downloads name.  Server errors and transport failures are retried
// with exponential backoff; 404 maps to snapshot.ErrObjectNotFound and other
// client errors fail at once.
func (f *Fetcher) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	target := f.URL(name)
	var body io.ReadCloser

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			body = resp.Body
			return nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return backoff.Permanent(fmt.Errorf("%s: %w", target, snapshot.ErrObjectNotFound))
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return fmt.Errorf("%s: %s", target, resp.Status)
		default:
			resp.Body.Close()
			return backoff.Permanent(fmt.Errorf("%s: %s", target, resp.Status))
		}
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.interval
	var policy backoff.BackOff = backoff.WithContext(backoff.WithMaxRetries(eb, uint64(f.retries)), ctx)

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("source download failed, retrying",
			logging.Source(name), logging.Err(err), logging.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	f.logger.Debug("source download started", logging.Source(name), logging.String("url", target))
	return body, nil
}

//Personal.AI order the ending
