package cmd

import (
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/heywrite/config"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/session"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// newBackend builds the backend client and the drafter selected by config.
// reg may be nil.
func newBackend(cfg *config.AppConfig, reg prometheus.Registerer) (*gateway.HTTPClient, gateway.Drafter, error) {
	opts := []gateway.Option{
		gateway.WithTimeout(cfg.Backend.Timeout),
		gateway.WithMetrics(gateway.NewMetrics(reg)),
	}
	backend := gateway.NewHTTPClient(cfg.Backend.BaseURL, opts...)

	if cfg.Drafter.Mode != config.DrafterDirect {
		return backend, backend, nil
	}

	drafter, err := gateway.NewChatDrafter(cfg.Drafter.BaseURL, cfg.Drafter.APIKey, cfg.Drafter.Model,
		append(opts, gateway.WithTemperature(cfg.Drafter.Temperature))...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Drafting directly against chat completions", zap.String("model", drafter.GetModel()))
	return backend, drafter, nil
}

func newSession(cfg *config.AppConfig, reg prometheus.Registerer, reporter session.Reporter) (*session.Session, error) {
	tone, err := gateway.ParseTone(cfg.Defaults.Tone)
	if err != nil {
		return nil, err
	}
	language, err := gateway.ParseLanguage(cfg.Defaults.Language)
	if err != nil {
		return nil, err
	}
	overflow, err := corpus.ParseOverflowPolicy(cfg.Corpus.Overflow)
	if err != nil {
		return nil, err
	}

	backend, drafter, err := newBackend(cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("error creating backend client: %w", err)
	}

	return session.NewBuilder().
		WithDrafter(drafter).
		WithIngestor(backend).
		WithReporter(reporter).
		WithTone(tone).
		WithLanguage(language).
		WithMaxDocuments(cfg.Corpus.MaxDocuments).
		WithOverflow(overflow).
		WithMaxHistoryTurns(cfg.Conversation.MaxHistoryTurns).
		Build()
}
