package gateway

import (
	"net/http"
	"time"
)

type clientSettings struct {
	httpClient  *http.Client
	timeout     time.Duration
	metrics     *Metrics
	temperature float64
	maxTokens   int
}

type Option func(*clientSettings)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *clientSettings) { s.httpClient = c }
}

// WithTimeout bounds every call. Zero, the default, waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(s *clientSettings) { s.timeout = d }
}

func WithMetrics(m *Metrics) Option {
	return func(s *clientSettings) { s.metrics = m }
}

// WithTemperature only affects ChatDrafter.
func WithTemperature(temp float64) Option {
	return func(s *clientSettings) { s.temperature = temp }
}

// WithMaxTokens only affects ChatDrafter.
func WithMaxTokens(tokens int) Option {
	return func(s *clientSettings) { s.maxTokens = tokens }
}

func applyOptions(opts []Option) clientSettings {
	settings := clientSettings{
		temperature: 0.7,
		maxTokens:   4096,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.httpClient == nil {
		settings.httpClient = &http.Client{}
	}
	if settings.timeout > 0 {
		c := *settings.httpClient
		c.Timeout = settings.timeout
		settings.httpClient = &c
	}
	return settings
}
