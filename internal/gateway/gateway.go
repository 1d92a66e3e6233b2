// Package gateway wires the lexicon, store, channel and scheduler together
// and runs them until a shutdown signal arrives.
package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/larkspurlane/starterbot/internal/channel"
	"github.com/larkspurlane/starterbot/internal/config"
	"github.com/larkspurlane/starterbot/internal/daily"
	"github.com/larkspurlane/starterbot/internal/lexicon"
	"github.com/larkspurlane/starterbot/internal/store"
)

// Options allow tests to inject fakes and a signal channel.
type Options struct {
	BotFactory channel.BotFactory
	SignalChan chan os.Signal
}

type Gateway struct {
	cfg        *config.Config
	store      *store.Store
	lex        lexicon.Lexicon
	channel    *channel.TelegramChannel
	scheduler  *daily.Scheduler
	signalChan chan os.Signal
}

// New creates a Gateway with default options
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing. Any
// startup failure here is fatal: a bot with no lexicon, unreadable state or
// a bad timezone must not run.
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg}

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	weights := lexicon.DefaultWeights()
	if cfg.WeightsPath != "" {
		weights, err = lexicon.LoadWeights(cfg.WeightsPath)
		if err != nil {
			return nil, err
		}
	}

	g.lex, err = lexicon.Build(cfg.LexiconPath, weights)
	if err != nil {
		return nil, err
	}
	if len(g.lex) == 0 {
		return nil, fmt.Errorf("lexicon %s has no usable words", cfg.LexiconPath)
	}
	log.Printf("[gateway] lexicon loaded: %d words", len(g.lex))

	g.store = store.New(cfg.StatePath)
	if err := g.store.Load(); err != nil {
		return nil, err
	}

	svc := daily.NewService(g.store, g.lex, tz)

	factory := opts.BotFactory
	if factory == nil {
		g.channel, err = channel.NewTelegramChannel(cfg.Telegram, svc)
	} else {
		g.channel, err = channel.NewTelegramChannelWithFactory(cfg.Telegram, svc, factory)
	}
	if err != nil {
		return nil, fmt.Errorf("init telegram channel: %w", err)
	}

	g.scheduler = daily.NewScheduler(g.store, g.lex, tz, g.channel)
	g.scheduler.SetAlpha(cfg.SampleAlpha)

	g.signalChan = opts.SignalChan

	return g, nil
}

// Run starts the channel and the daily scheduler, then blocks until
// SIGINT/SIGTERM.
func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := g.channel.Start(ctx); err != nil {
		return fmt.Errorf("start channel: %w", err)
	}

	g.scheduler.Start(ctx)

	log.Printf("[gateway] running")

	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

func (g *Gateway) Shutdown() error {
	g.scheduler.Stop()
	g.channel.Stop()
	return nil
}
