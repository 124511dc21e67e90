package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Mention is one successful transaction that logged a watched program.
type Mention struct {
	Signature solana.Signature
	Slot      uint64
	Program   solana.PublicKey
}

type WatcherConfig struct {
	Endpoint   string
	Programs   []solana.PublicKey
	Commitment rpc.CommitmentType
	// ReconnectDelay doubles after every failed connection, up to MaxReconnectDelay.
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// Watcher subscribes to the logs of every configured program over one
// websocket and hands each new signature to a callback.
type Watcher struct {
	cfg    WatcherConfig
	dedupe Deduper
	log    *logrus.Logger
}

func NewWatcher(cfg WatcherConfig, dedupe Deduper, log *logrus.Logger) *Watcher {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = 30 * time.Second
	}
	if dedupe == nil {
		dedupe = NewMemoryDeduper(10 * time.Minute)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{cfg: cfg, dedupe: dedupe, log: log}
}

// Run blocks until ctx is done, reconnecting when the stream drops.
// An error from handle is logged and does not stop the stream.
func (w *Watcher) Run(ctx context.Context, handle func(context.Context, Mention) error) error {
	if len(w.cfg.Programs) == 0 {
		return errors.New("watcher: no programs to subscribe to")
	}
	delay := w.cfg.ReconnectDelay
	for {
		started := time.Now()
		err := w.stream(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > w.cfg.MaxReconnectDelay {
			delay = w.cfg.ReconnectDelay
		}
		w.log.WithError(err).WithField("retry_in", delay).Warn("log stream closed")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		delay *= 2
		if delay > w.cfg.MaxReconnectDelay {
			delay = w.cfg.MaxReconnectDelay
		}
	}
}

// logSubscription is the part of *ws.LogSubscription the watcher reads.
type logSubscription interface {
	Recv(ctx context.Context) (*ws.LogResult, error)
	Unsubscribe()
}

func (w *Watcher) stream(ctx context.Context, handle func(context.Context, Mention) error) error {
	client, err := ws.Connect(ctx, w.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	defer client.Close()

	return w.consume(ctx, func(program solana.PublicKey) (logSubscription, error) {
		return client.LogsSubscribeMentions(program, w.cfg.Commitment)
	}, handle)
}

// consume opens one subscription per program and drains them until one
// fails or ctx is done. Receivers already started are stopped before a
// subscribe error is returned.
func (w *Watcher) consume(
	ctx context.Context,
	subscribe func(solana.PublicKey) (logSubscription, error),
	handle func(context.Context, Mention) error,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mentions := make(chan Mention, 256)
	g, gctx := errgroup.WithContext(ctx)
	for _, program := range w.cfg.Programs {
		sub, err := subscribe(program)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("logsSubscribe(%s): %w", program, err)
		}
		g.Go(func() error {
			defer sub.Unsubscribe()
			for {
				got, err := sub.Recv(gctx)
				if err != nil {
					return fmt.Errorf("recv %s: %w", program, err)
				}
				if got == nil || got.Value.Err != nil {
					continue
				}
				select {
				case mentions <- Mention{Signature: got.Value.Signature, Slot: got.Context.Slot, Program: program}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}
	w.log.WithField("programs", len(w.cfg.Programs)).Info("subscribed to program logs")

	g.Go(func() error { return w.drain(gctx, mentions, handle) })
	return g.Wait()
}

// drain hands every unseen mention to handle until ctx is done.
func (w *Watcher) drain(ctx context.Context, mentions <-chan Mention, handle func(context.Context, Mention) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-mentions:
			seen, err := w.dedupe.Seen(ctx, m.Signature)
			if err != nil {
				w.log.WithError(err).Warn("dedupe lookup failed")
			}
			if seen {
				continue
			}
			if err := handle(ctx, m); err != nil {
				w.log.WithError(err).WithField("signature", m.Signature).Warn("handle mention")
			}
		}
	}
}
