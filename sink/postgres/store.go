package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/franco-bianco/dexevents-go/dexevents"
	"github.com/franco-bianco/dexevents-go/sink"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for decoded events. Rows are keyed by
// (signature, outer_index, inner_index), so replaying a block is idempotent.
type Store struct {
	pool *pgxpool.Pool
}

var _ sink.Sink = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the events table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Write upserts records in one batch.
func (s *Store) Write(ctx context.Context, records []sink.Record) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		var (
			liquidity, direction, trader, inputMint, outputMint, tokenMint, strategy *string
			amountIn, amountOut                                                      *string
			price                                                                    *float64
		)
		if rec.Liquidity != "" {
			liquidity = &rec.Liquidity
		}
		if t := rec.Trade; t != nil {
			direction = ptr(string(t.Direction))
			trader = ptr(t.User.String())
			inputMint = ptr(t.InputMint.String())
			outputMint = ptr(t.OutputMint.String())
			tokenMint = ptr(t.TokenMint.String())
			amountIn = ptr(strconv.FormatUint(t.AmountIn, 10))
			amountOut = ptr(strconv.FormatUint(t.AmountOut, 10))
			price = t.Price
			strategy = ptr(string(rec.Strategy))
		}
		batch.Queue(`
			INSERT INTO dex_events (
				signature, outer_index, inner_index, slot, block_time, received_at,
				program, protocol, event_type, fields, liquidity,
				direction, trader, input_mint, output_mint, token_mint,
				amount_in, amount_out, price, strategy, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::jsonb,$11,$12,$13,$14,$15,$16,$17::numeric,$18::numeric,$19,$20,now(),now())
			ON CONFLICT (signature, outer_index, inner_index)
			DO UPDATE SET
				slot = EXCLUDED.slot,
				block_time = EXCLUDED.block_time,
				fields = EXCLUDED.fields,
				liquidity = EXCLUDED.liquidity,
				direction = EXCLUDED.direction,
				trader = EXCLUDED.trader,
				input_mint = EXCLUDED.input_mint,
				output_mint = EXCLUDED.output_mint,
				token_mint = EXCLUDED.token_mint,
				amount_in = EXCLUDED.amount_in,
				amount_out = EXCLUDED.amount_out,
				price = EXCLUDED.price,
				strategy = EXCLUDED.strategy,
				updated_at = now()
		`,
			rec.Signature,
			rec.OuterIndex,
			rec.InnerIndex,
			int64(rec.Slot),
			rec.BlockTime,
			rec.ReceivedAt,
			rec.Program,
			string(rec.Protocol),
			string(rec.EventType),
			string(fields),
			liquidity,
			direction,
			trader,
			inputMint,
			outputMint,
			tokenMint,
			amountIn,
			amountOut,
			price,
			strategy,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert event: %w", err)
		}
	}
	return nil
}

// EventsBySignature returns the stored records of one transaction in
// execution order. Trade details are read back from their columns.
func (s *Store) EventsBySignature(ctx context.Context, signature string) ([]sink.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT signature, outer_index, inner_index, slot, block_time, received_at,
			program, protocol, event_type, fields, COALESCE(liquidity, ''),
			direction, amount_in::text, amount_out::text, COALESCE(strategy, '')
		FROM dex_events
		WHERE signature = $1
		ORDER BY outer_index, inner_index
	`, signature)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []sink.Record
	for rows.Next() {
		var (
			rec                 sink.Record
			slot                int64
			protocol, eventType string
			fields              []byte
			direction           *string
			amountIn, amountOut *string
			strategy            string
		)
		if err := rows.Scan(
			&rec.Signature, &rec.OuterIndex, &rec.InnerIndex, &slot, &rec.BlockTime, &rec.ReceivedAt,
			&rec.Program, &protocol, &eventType, &fields, &rec.Liquidity,
			&direction, &amountIn, &amountOut, &strategy,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Slot = uint64(slot)
		rec.Protocol = dexevents.Protocol(protocol)
		rec.EventType = dexevents.EventType(eventType)
		rec.Strategy = dexevents.Strategy(strategy)
		if err := json.Unmarshal(fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		if direction != nil {
			trade := &dexevents.TradeFact{Direction: dexevents.TradeDirection(*direction), Platform: rec.Protocol}
			if amountIn != nil {
				trade.AmountIn, _ = strconv.ParseUint(*amountIn, 10, 64)
			}
			if amountOut != nil {
				trade.AmountOut, _ = strconv.ParseUint(*amountOut, 10, 64)
			}
			rec.Trade = trade
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func ptr[T any](v T) *T {
	return &v
}
