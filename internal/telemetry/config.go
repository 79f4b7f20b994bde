package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	envEndpoint    = "LOXTERM_OTEL_ENDPOINT"
	envInsecure    = "LOXTERM_OTEL_INSECURE"
	envService     = "LOXTERM_OTEL_SERVICE"
	envDialTimeout = "LOXTERM_OTEL_DIAL_TIMEOUT"
	envHeaders     = "LOXTERM_OTEL_HEADERS"

	defaultServiceName = "loxterm"
)

type Config struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
	DialTimeout time.Duration
	Headers     map[string]string
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv builds a Config from getenv. Malformed values are ignored
// and leave the defaults in place.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Config{ServiceName: defaultServiceName}
	if getenv == nil {
		return cfg
	}

	cfg.Endpoint = strings.TrimSpace(getenv(envEndpoint))
	if v := strings.TrimSpace(getenv(envInsecure)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Insecure = b
		}
	}
	if v := strings.TrimSpace(getenv(envService)); v != "" {
		cfg.ServiceName = v
	}
	if v := strings.TrimSpace(getenv(envDialTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DialTimeout = d
		}
	}
	if headers, err := ParseHeaders(getenv(envHeaders)); err == nil {
		cfg.Headers = headers
	}
	return cfg
}

// ParseHeaders parses "k=v, k2=v2". A blank input yields nil.
func ParseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q", part)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}
