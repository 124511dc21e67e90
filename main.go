package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/franco-bianco/dexevents-go/config"
	"github.com/franco-bianco/dexevents-go/ingest"
	"github.com/franco-bianco/dexevents-go/sink"
	"github.com/franco-bianco/dexevents-go/sink/clickhouse"
	"github.com/franco-bianco/dexevents-go/sink/kafka"
	"github.com/franco-bianco/dexevents-go/sink/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dexevents",
		Short:        "Decode PumpSwap and Raydium events from Solana transactions",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(),
		newParseCmd(),
		newBlockCmd(),
		newWatchCmd(),
		newAccountCmd(),
		newDecodeCmd(),
	)
	return root
}

// app is the per-command runtime built from configuration.
type app struct {
	cfg      config.Config
	log      *logrus.Logger
	closeLog func() error
}

func setup(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, closeLog: closeLog}, nil
}

func (a *app) Close() {
	_ = a.closeLog()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (a *app) commitment() rpc.CommitmentType {
	return rpc.CommitmentType(a.cfg.Commitment)
}

func (a *app) fetcher() (*ingest.Fetcher, error) {
	if a.cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required (--rpc, DEXEVENTS_RPC or SOLANA_RPC_URL)")
	}
	return ingest.NewFetcher(rpc.New(a.cfg.RPCURL), ingest.Options{
		Commitment: a.commitment(),
		Timeout:    a.cfg.RPCTimeout,
		MaxRetries: a.cfg.MaxRetries,
		Backoff:    a.cfg.RetryBackoff,
		Workers:    a.cfg.Workers,
		Log:        a.log,
	}), nil
}

func (a *app) openSink(ctx context.Context) (sink.Sink, error) {
	switch a.cfg.Sink {
	case config.SinkJSONL:
		return sink.NewJSONL(a.cfg.Out), nil
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.SinkClickHouse:
		store, err := clickhouse.NewStore(ctx, a.cfg.ClickHouseDSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.SinkKafka:
		return kafka.NewProducer(ctx, kafka.Options{Brokers: a.cfg.KafkaBrokers, Topic: a.cfg.KafkaTopic})
	default:
		return sink.NewStdout(os.Stdout), nil
	}
}

func (a *app) deduper() ingest.Deduper {
	if a.cfg.RedisAddr == "" {
		return ingest.NewMemoryDeduper(a.cfg.DedupeTTL)
	}
	rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	return ingest.NewRedisDeduper(rdb, a.cfg.DedupeTTL)
}
