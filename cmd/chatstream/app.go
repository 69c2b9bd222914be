package main

import (
	"fmt"

	"github.com/fwojciec/chatstream"
	chathttp "github.com/fwojciec/chatstream/http"
	"github.com/fwojciec/chatstream/inmem"
	"github.com/fwojciec/chatstream/logger"
	"github.com/fwojciec/chatstream/stream"
	"go.uber.org/zap"
)

// app holds the wired dependencies shared by every command.
type app struct {
	logger *zap.Logger
	flush  func()
	client *chathttp.Client
	store  *inmem.Store
	sender *chatstream.Sender
}

type appOptions struct {
	logLevel string
	logFile  string
	console  bool
	strict   bool
}

func newApp(cfg config, opts appOptions) (*app, error) {
	log, flush, err := logger.New(logger.Options{Level: opts.logLevel, Path: opts.logFile, Console: opts.console})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	log = log.With(zap.String("server", cfg.Server))

	tokens := chatstream.StaticToken(cfg.Token)
	client := chathttp.New(
		chathttp.WithBaseURL(cfg.Server),
		chathttp.WithTokenSource(tokens),
		chathttp.WithLogger(log),
	)

	streamOpts := []stream.Option{stream.WithLogger(log)}
	if opts.strict {
		streamOpts = append(streamOpts, stream.WithStrictCompletion())
	}
	streamer := stream.New(client, client.StreamURL(), streamOpts...)

	store := inmem.NewStore()
	sender := chatstream.NewSender(store, streamer, tokens, chatstream.WithSenderLogger(log))
	return &app{
		logger: log,
		flush:  flush,
		client: client,
		store:  store,
		sender: sender,
	}, nil
}

func (a *app) close() {
	if a.flush != nil {
		a.flush()
	}
}
