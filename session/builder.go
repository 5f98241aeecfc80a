package session

import (
	"errors"

	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/google/uuid"
)

type Builder struct {
	config Config
}

func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Tone:         gateway.ToneFormal,
			Language:     gateway.LanguageEnglish,
			MaxDocuments: corpus.DefaultMaxDocuments,
			Overflow:     corpus.DropNewest,
		},
	}
}

// WithGateway uses g for both drafting and ingestion.
func (b *Builder) WithGateway(g gateway.Gateway) *Builder {
	b.config.Drafter = g
	b.config.Ingestor = g
	return b
}

func (b *Builder) WithDrafter(d gateway.Drafter) *Builder {
	b.config.Drafter = d
	return b
}

func (b *Builder) WithIngestor(i gateway.Ingestor) *Builder {
	b.config.Ingestor = i
	return b
}

func (b *Builder) WithReporter(r Reporter) *Builder {
	b.config.Reporter = r
	return b
}

func (b *Builder) WithTone(tone gateway.Tone) *Builder {
	b.config.Tone = tone
	return b
}

func (b *Builder) WithLanguage(language gateway.Language) *Builder {
	b.config.Language = language
	return b
}

func (b *Builder) WithMaxDocuments(max int) *Builder {
	b.config.MaxDocuments = max
	return b
}

func (b *Builder) WithOverflow(policy corpus.OverflowPolicy) *Builder {
	b.config.Overflow = policy
	return b
}

func (b *Builder) WithMaxHistoryTurns(turns int) *Builder {
	b.config.MaxHistoryTurns = turns
	return b
}

func (b *Builder) Build() (*Session, error) {
	cfg := b.config
	if cfg.Drafter == nil {
		return nil, errors.New("session: drafter is required")
	}
	if cfg.Ingestor == nil {
		return nil, errors.New("session: ingestor is required")
	}
	if !cfg.Tone.Valid() {
		return nil, errors.New("session: unsupported tone " + string(cfg.Tone))
	}
	if !cfg.Language.Valid() {
		return nil, errors.New("session: unsupported language " + string(cfg.Language))
	}
	if cfg.Reporter == nil {
		cfg.Reporter = &NoOpReporter{}
	}

	s := &Session{
		id:       uuid.NewString(),
		config:   cfg,
		gate:     lifecycle.NewController(),
		corpus:   corpus.NewManager(cfg.Ingestor, cfg.MaxDocuments, cfg.Overflow),
		tone:     cfg.Tone,
		language: cfg.Language,
	}
	s.gate.OnChange(func(from, to lifecycle.State) {
		s.report(NewStateChange(from, to))
	})
	return s, nil
}
