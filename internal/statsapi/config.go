package statsapi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tinytelemetry/statshaus/internal/model"
)

// ErrConfigMissing is returned when required credentials are not configured.
// It is a startup error: no polling may begin until it is resolved.
var ErrConfigMissing = errors.New("statsapi: username and/or password not configured")

// Config holds everything the client needs to reach the stats endpoint.
// It is built once at startup and passed by value.
type Config struct {
	Endpoint string
	Username string
	Password string
	Timeout  time.Duration
}

// Validate checks credentials and endpoint. Missing credentials wrap
// ErrConfigMissing and name the absent keys.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(c.Password) == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing: %s)", ErrConfigMissing, strings.Join(missing, ", "))
	}

	u, err := url.Parse(strings.TrimSpace(c.Endpoint))
	if err != nil {
		return fmt.Errorf("statsapi: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("statsapi: endpoint must use http:// or https:// (got %q)", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("statsapi: endpoint missing host")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Endpoint) == "" {
		c.Endpoint = model.DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = model.DefaultHTTPTimeout
	}
	return c
}
