package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/config"
	dbRedis "github.com/kailas-cloud/indexwatch/internal/db/redis"
	logpkg "github.com/kailas-cloud/indexwatch/internal/logger"
	"github.com/kailas-cloud/indexwatch/internal/metrics"
	historyrepo "github.com/kailas-cloud/indexwatch/internal/repository/history"
	"github.com/kailas-cloud/indexwatch/internal/repository/index"
	"github.com/kailas-cloud/indexwatch/internal/transport/shell"
	"github.com/kailas-cloud/indexwatch/internal/transport/solr"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	"github.com/kailas-cloud/indexwatch/internal/usecase/documents"
	healthuc "github.com/kailas-cloud/indexwatch/internal/usecase/health"
	"github.com/kailas-cloud/indexwatch/internal/usecase/playback"
	"github.com/kailas-cloud/indexwatch/internal/usecase/retention"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	env        string
	configPath string
	coreURL    string
	logLevel   string
}

// app is the composition root of one command invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer

	index     *index.Repo
	docs      *documents.Service
	poller    *convergence.Service
	playback  *playback.Service
	retention *retention.Service
	health    *healthuc.Service

	history *historyrepo.Repo // nil when no history store is configured
	store   *dbRedis.Store
}

func loadConfig(opts *globalOptions) (config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.Load(opts.env)
}

func newApp(ctx context.Context, opts *globalOptions, out io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.coreURL != "" {
		cfg.Solr.CoreURL = opts.coreURL
	}
	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}

	logger, err := logpkg.NewLogger(opts.env, logpkg.Options{Level: level})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register solr metrics explicitly (no init())
	metrics.RegisterSolrMetrics()

	tr := solr.NewClient(&solr.Config{
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
	})
	repo := index.New(tr, cfg.CoreURL(), cfg.Solr.UniqueKey)
	docs := documents.New(repo, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		index:    repo,
		docs:     docs,
		poller:   convergence.New(repo, cfg.Poll.Domain(), logger),
		playback: playback.New(repo, cfg.Playback.Domain(), logger),
	}

	var processor retention.Processor
	if len(cfg.Retention.Command) > 0 {
		processor = shell.NewProcessor(cfg.Retention.Command,
			time.Duration(cfg.Retention.SettleSec)*time.Second, logger)
	}
	a.retention = retention.New(docs, processor, cfg.Solr.UniqueKey, logger)

	// Pass a nil interface, not a typed nil pointer, when history is disabled.
	var historyPinger healthuc.Pinger
	if len(cfg.History.Addrs) > 0 {
		if err := a.openHistory(ctx); err != nil {
			return nil, err
		}
		a.poller.WithRecorder(a.history)
		historyPinger = a.store
	}
	a.health = healthuc.New(repo, historyPinger)

	logger.Debug("app wired",
		zap.String("core", cfg.CoreURL()),
		zap.Duration("poll_interval", a.poller.Config().Interval),
		zap.Int("poll_attempts", a.poller.Config().MaxAttempts),
		zap.Bool("history", a.history != nil),
	)
	return a, nil
}

func (a *app) openHistory(ctx context.Context) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.History.Addrs,
		Username: a.cfg.History.Username,
		Password: a.cfg.History.Password,
		DB:       a.cfg.History.DB,
	})
	if err != nil {
		return err
	}
	timeout := time.Duration(a.cfg.History.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return err
	}
	a.store = store
	a.history = historyrepo.New(store, a.cfg.HistoryTTL())
	a.logger.Info("connected to history store", zap.Strings("addrs", a.cfg.History.Addrs))
	return nil
}

// Close releases the history connection and flushes the logger.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// printJSON writes v to stdout as indented JSON.
func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
