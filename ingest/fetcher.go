package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/franco-bianco/dexevents-go/dexevents"
)

var (
	// ErrNotFound is returned when the node has no such transaction, block or account.
	ErrNotFound = errors.New("not found")
	// ErrParse wraps failures to build or run the transaction parser.
	ErrParse = errors.New("parse transaction")
)

type Options struct {
	Commitment rpc.CommitmentType
	// Timeout bounds each RPC attempt.
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	// Workers caps the transactions of a block parsed concurrently.
	Workers  int
	Registry *dexevents.Registry
	Log      *logrus.Logger
}

// TxResult is one parsed transaction.
type TxResult struct {
	Signature solana.Signature         `json:"signature"`
	Slot      uint64                   `json:"slot"`
	BlockTime int64                    `json:"blockTime"`
	Events    []dexevents.ParsedEvent  `json:"-"`
	Transfers []dexevents.TransferData `json:"transfers,omitempty"`
}

// Fetcher pulls transactions, blocks and accounts over JSON-RPC and runs
// them through the dexevents parser. It is safe for concurrent use.
type Fetcher struct {
	client *rpc.Client
	opts   Options
}

func NewFetcher(client *rpc.Client, opts Options) *Fetcher {
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Registry == nil {
		opts.Registry = dexevents.DefaultRegistry()
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Fetcher{client: client, opts: opts}
}

func (f *Fetcher) call(ctx context.Context, fn func(context.Context) error) error {
	return withRetry(ctx, f.opts.MaxRetries, f.opts.Backoff, func(ctx context.Context) error {
		if f.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

// Tx fetches and parses one transaction.
func (f *Fetcher) Tx(ctx context.Context, sig solana.Signature) (*TxResult, error) {
	var tx *rpc.GetTransactionResult
	err := f.call(ctx, func(ctx context.Context) error {
		var err error
		tx, err = f.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Commitment:                     f.opts.Commitment,
			MaxSupportedTransactionVersion: pointer.ToUint64(0),
		})
		if errors.Is(err, rpc.ErrNotFound) || (err == nil && tx == nil) {
			return fmt.Errorf("transaction %s: %w", sig, ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getTransaction(%s): %w", sig, err)
	}

	parser, err := dexevents.NewTransactionParser(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var blockTime int64
	if tx.BlockTime != nil {
		blockTime = int64(*tx.BlockTime)
	}
	return f.parse(parser, sig, tx.Slot, blockTime)
}

func (f *Fetcher) parse(parser *dexevents.Parser, sig solana.Signature, slot uint64, blockTime int64) (*TxResult, error) {
	parser.Registry = f.opts.Registry
	parser.Log = f.opts.Log

	events, err := parser.ParseTransaction()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParse, sig, err)
	}
	return &TxResult{
		Signature: sig,
		Slot:      slot,
		BlockTime: blockTime,
		Events:    events,
		Transfers: parser.Transfers(),
	}, nil
}

// Block fetches a block and parses its successful transactions with up to
// Workers goroutines. Only transactions that produced events are returned,
// in block order.
func (f *Fetcher) Block(ctx context.Context, slot uint64) ([]*TxResult, error) {
	var blk *rpc.GetBlockResult
	err := f.call(ctx, func(ctx context.Context) error {
		var err error
		blk, err = f.client.GetBlockWithOpts(ctx, slot, &rpc.GetBlockOpts{
			Commitment:                     f.opts.Commitment,
			TransactionDetails:             rpc.TransactionDetailsFull,
			Rewards:                        pointer.ToBool(false),
			MaxSupportedTransactionVersion: pointer.ToUint64(0),
		})
		if errors.Is(err, rpc.ErrNotFound) || (err == nil && blk == nil) {
			return fmt.Errorf("block %d: %w", slot, ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getBlock(%d): %w", slot, err)
	}

	var blockTime int64
	if blk.BlockTime != nil {
		blockTime = int64(*blk.BlockTime)
	}

	results := make([]*TxResult, len(blk.Transactions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)
	for i := range blk.Transactions {
		txw := blk.Transactions[i]
		if txw.Meta == nil || txw.Meta.Err != nil {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			tx, err := txw.GetTransaction()
			if err != nil || tx == nil || len(tx.Signatures) == 0 {
				f.opts.Log.WithFields(logrus.Fields{"slot": slot, "index": i}).Debug("undecodable block transaction")
				return nil
			}
			parser, err := dexevents.NewTransactionParserFromTransaction(tx, txw.Meta)
			if err != nil {
				return nil
			}
			parser.SetBlock(slot, blockTime)
			res, err := f.parse(parser, tx.Signatures[0], slot, blockTime)
			if err != nil {
				f.opts.Log.WithError(err).WithField("slot", slot).Warn("skipping transaction")
				return nil
			}
			if len(res.Events) > 0 {
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// Account fetches an account and decodes it when its owner and
// discriminator are known.
func (f *Fetcher) Account(ctx context.Context, key solana.PublicKey) (dexevents.UnifiedEvent, error) {
	var res *rpc.GetAccountInfoResult
	err := f.call(ctx, func(ctx context.Context) error {
		var err error
		res, err = f.client.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
			Commitment: f.opts.Commitment,
			Encoding:   solana.EncodingBase64,
		})
		if errors.Is(err, rpc.ErrNotFound) || (err == nil && (res == nil || res.Value == nil)) {
			return fmt.Errorf("account %s: %w", key, ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo(%s): %w", key, err)
	}

	acc := res.Value
	snap := dexevents.AccountSnapshot{
		Pubkey:     key,
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
		Executable: acc.Executable,
	}
	if acc.RentEpoch != nil {
		snap.RentEpoch = acc.RentEpoch.Uint64()
	}
	if acc.Data != nil {
		snap.Data = acc.Data.GetBinary()
	}
	return f.opts.Registry.DecodeAccount(snap)
}
