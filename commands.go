package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/franco-bianco/dexevents-go/dexevents"
	"github.com/franco-bianco/dexevents-go/ingest"
	"github.com/franco-bianco/dexevents-go/sink"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <signature>...",
		Short: "Fetch transactions and write their decoded events to the sink",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			f, err := a.fetcher()
			if err != nil {
				return err
			}
			out, err := a.openSink(ctx)
			if err != nil {
				return err
			}
			defer out.Close()

			for _, arg := range args {
				sig, err := solana.SignatureFromBase58(arg)
				if err != nil {
					return fmt.Errorf("invalid signature %q: %w", arg, err)
				}
				res, err := f.Tx(ctx, sig)
				if err != nil {
					return err
				}
				if err := out.Write(ctx, sink.NewRecords(res.Events)); err != nil {
					return fmt.Errorf("write events: %w", err)
				}
				a.log.WithFields(logrus.Fields{"signature": sig, "events": len(res.Events)}).Info("parsed transaction")
			}
			return nil
		},
	}
}

func newBlockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block <slot>",
		Short: "Decode every supported transaction of a slot range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid slot %q: %w", args[0], err)
			}
			to, _ := cmd.Flags().GetUint64("to")
			if to < from {
				to = from
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			f, err := a.fetcher()
			if err != nil {
				return err
			}
			out, err := a.openSink(ctx)
			if err != nil {
				return err
			}
			defer out.Close()

			for slot := from; slot <= to; slot++ {
				results, err := f.Block(ctx, slot)
				if errors.Is(err, ingest.ErrNotFound) {
					a.log.WithField("slot", slot).Info("slot skipped")
					continue
				}
				if err != nil {
					return err
				}
				var records []sink.Record
				for _, res := range results {
					records = append(records, sink.NewRecords(res.Events)...)
				}
				if err := out.Write(ctx, records); err != nil {
					return fmt.Errorf("write slot %d: %w", slot, err)
				}
				a.log.WithFields(logrus.Fields{
					"slot":         slot,
					"transactions": len(results),
					"events":       len(records),
				}).Info("processed block")
			}
			return nil
		},
	}
	cmd.Flags().Uint64("to", 0, "last slot to process (inclusive)")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream transactions of the supported programs and decode them live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			f, err := a.fetcher()
			if err != nil {
				return err
			}
			out, err := a.openSink(ctx)
			if err != nil {
				return err
			}
			defer out.Close()

			var programs []solana.PublicKey
			for _, t := range dexevents.DefaultRegistry().Tables() {
				programs = append(programs, t.Program)
			}

			w := ingest.NewWatcher(ingest.WatcherConfig{
				Endpoint:   a.cfg.WebsocketURL(),
				Programs:   programs,
				Commitment: a.commitment(),
			}, a.deduper(), a.log)

			a.log.WithField("ws", a.cfg.WebsocketURL()).Info("watch start")
			return w.Run(ctx, func(ctx context.Context, m ingest.Mention) error {
				res, err := f.Tx(ctx, m.Signature)
				if err != nil {
					return err
				}
				return out.Write(ctx, sink.NewRecords(res.Events))
			})
		},
	}
}

// decodedView is the JSON shape printed for a single decoded record.
type decodedView struct {
	EventType dexevents.EventType    `json:"eventType"`
	Protocol  dexevents.Protocol     `json:"protocol"`
	Fields    map[string]interface{} `json:"fields"`
}

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

func printDecoded(w io.Writer, ev dexevents.UnifiedEvent, dump bool) error {
	if dump {
		dumper.Fdump(w, ev)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(decodedView{
		EventType: ev.EventType(),
		Protocol:  ev.Protocol(),
		Fields:    dexevents.FieldMap(ev),
	})
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account <pubkey>",
		Short: "Fetch and decode a PumpSwap or Raydium state account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid pubkey %q: %w", args[0], err)
			}
			dump, _ := cmd.Flags().GetBool("dump")

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			f, err := a.fetcher()
			if err != nil {
				return err
			}
			ev, err := f.Account(ctx, key)
			if err != nil {
				return err
			}
			return printDecoded(cmd.OutOrStdout(), ev, dump)
		},
	}
	cmd.Flags().Bool("dump", false, "print the Go value instead of JSON")
	return cmd
}

var programAliases = map[string]solana.PublicKey{
	"pumpswap":       dexevents.PUMPSWAP_PROGRAM_ID,
	"raydium-cpmm":   dexevents.RAYDIUM_CPMM_PROGRAM_ID,
	"raydium-amm-v4": dexevents.RAYDIUM_AMM_V4_PROGRAM_ID,
}

func resolveProgram(s string) (solana.PublicKey, error) {
	if pk, ok := programAliases[strings.ToLower(s)]; ok {
		return pk, nil
	}
	return solana.PublicKeyFromBase58(s)
}

func decodePayload(s, encoding string) ([]byte, error) {
	switch encoding {
	case "base58":
		return base58.Decode(s)
	case "base64":
		return base64.StdEncoding.DecodeString(s)
	case "hex":
		return hex.DecodeString(strings.TrimPrefix(s, "0x"))
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

// decodeOne runs a single payload through the registry.
func decodeOne(reg *dexevents.Registry, program solana.PublicKey, category string, data []byte, accounts []solana.PublicKey) (dexevents.UnifiedEvent, error) {
	switch category {
	case "log", "event":
		return reg.DecodeLog(program, data)
	case "instruction", "ix":
		return reg.DecodeInstruction(program, data, accounts)
	case "account":
		return reg.DecodeAccount(dexevents.AccountSnapshot{Owner: program, Data: data})
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <payload>",
		Short: "Decode one raw log, instruction or account payload offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programFlag, _ := cmd.Flags().GetString("program")
			category, _ := cmd.Flags().GetString("category")
			encoding, _ := cmd.Flags().GetString("encoding")
			accountArgs, _ := cmd.Flags().GetStringSlice("accounts")
			dump, _ := cmd.Flags().GetBool("dump")

			program, err := resolveProgram(programFlag)
			if err != nil {
				return fmt.Errorf("invalid program %q: %w", programFlag, err)
			}
			data, err := decodePayload(args[0], encoding)
			if err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
			accounts := make([]solana.PublicKey, 0, len(accountArgs))
			for _, s := range accountArgs {
				pk, err := solana.PublicKeyFromBase58(s)
				if err != nil {
					return fmt.Errorf("invalid account %q: %w", s, err)
				}
				accounts = append(accounts, pk)
			}

			ev, err := decodeOne(dexevents.DefaultRegistry(), program, strings.ToLower(category), data, accounts)
			if err != nil {
				return err
			}
			return printDecoded(cmd.OutOrStdout(), ev, dump)
		},
	}
	cmd.Flags().String("program", "pumpswap", "program: pumpswap, raydium-cpmm, raydium-amm-v4 or a program id")
	cmd.Flags().String("category", "log", "payload kind: log, instruction or account")
	cmd.Flags().String("encoding", "base58", "payload encoding: base58, base64 or hex")
	cmd.Flags().StringSlice("accounts", nil, "instruction account keys in order")
	cmd.Flags().Bool("dump", false, "print the Go value instead of JSON")
	return cmd
}
