package mdb

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Identifying headers attached to every request.
const (
	HeaderUserID       = "X-userId"
	HeaderTransaction  = "X-transactionId"
	HeaderSourceSystem = "X-Source-System"
	HeaderBatch        = "X-Batch-Identifier"
)

const defaultBatchID = "default-batch-id"

// Config holds the externally supplied configuration of a client: where the
// service lives and who is calling it.
type Config struct {
	// BaseURL is the root of the mdb service, e.g. "http://localhost:22338".
	// The API method paths are resolved under {BaseURL}/api.
	BaseURL string

	// UserID identifies the calling user, sent as X-userId.
	UserID string

	// CorrelationID is sent as X-transactionId on every request. A fresh
	// UUID is generated when left empty.
	CorrelationID string

	// SourceSystem is sent as X-Source-System when set.
	SourceSystem string

	// BatchID is sent as X-Batch-Identifier. Default: "default-batch-id".
	BatchID string

	// Timeout for individual requests. Default: 30 seconds.
	Timeout time.Duration

	// TLSVerify controls certificate verification. Set to false only for
	// development against self-signed endpoints.
	TLSVerify *bool

	// ForceHost rewrites the host of every followed link, for environments
	// where the service hands out links with an internal hostname. ForceScheme
	// applies alongside it and defaults to "http".
	ForceHost   string
	ForceScheme string

	// Logger is optional; a null logger is used when absent.
	Logger hclog.Logger
}

// DefaultConfig returns a Config with the documented defaults applied.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify: &tlsVerify,
		Timeout:   30 * time.Second,
		BatchID:   defaultBatchID,
	}
}

// Validate checks that the configuration is complete enough to build a
// client.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.UserID, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https scheme, got: %s", parsed.Scheme)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got: %v", c.Timeout)
	}
	return nil
}

// NewHTTPClient creates the underlying HTTP client for this configuration.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}

// headers builds the identifying headers sent with every request.
func (c *Config) headers() http.Header {
	h := http.Header{}
	h.Set(HeaderUserID, c.UserID)
	h.Set(HeaderTransaction, c.CorrelationID)
	h.Set(HeaderBatch, c.BatchID)
	if c.SourceSystem != "" {
		h.Set(HeaderSourceSystem, c.SourceSystem)
	}
	return h
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.BatchID == "" {
		c.BatchID = defaults.BatchID
	}
	if c.CorrelationID == "" {
		c.CorrelationID = uuid.NewString()
	}
	if c.ForceHost != "" && c.ForceScheme == "" {
		c.ForceScheme = "http"
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}
