package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/franco-bianco/dexevents-go/dexevents"
	"github.com/franco-bianco/dexevents-go/ingest"
	"github.com/franco-bianco/dexevents-go/sink"
)

type txFetcher interface {
	Tx(ctx context.Context, sig solana.Signature) (*ingest.TxResult, error)
}

type parseReq struct {
	Signature string `json:"signature"`
}

type parseResp struct {
	Signature string                   `json:"signature"`
	Slot      uint64                   `json:"slot"`
	BlockTime int64                    `json:"blockTime"`
	Events    []sink.Record            `json:"events"`
	Trades    []dexevents.Resolution   `json:"trades"`
	Transfers []dexevents.TransferData `json:"transfers,omitempty"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSONMaybePretty(w http.ResponseWriter, status int, v interface{}, pretty bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const indexHTML = `
<!doctype html>
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>dexevents</title>
<div style="font: 16px system-ui; max-width: 900px; margin: 40px auto; line-height:1.5;">
  <h1 style="margin:0 0 16px;">PumpSwap / Raydium event decoder</h1>
  <form action="/parse" method="get">
    <label>Signature<br>
      <input name="signature" style="width: 100%; padding: 8px;" placeholder="Paste a transaction signature" autofocus>
    </label>
    <div style="margin: 12px 0;">
      <label><input type="checkbox" name="pretty" value="1" checked> pretty</label>
    </div>
    <button type="submit" style="padding: 8px 14px;">Parse</button>
  </form>
  <p style="margin-top: 24px; color:#666;">This form issues a GET to <code>/parse?signature=...&pretty=1</code>.</p>
</div>
`

func newHandler(f txFetcher, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	// POST with a JSON body or GET with ?signature=...&pretty=1
	mux.HandleFunc("/parse", func(w http.ResponseWriter, r *http.Request) {
		pretty := r.URL.Query().Get("pretty") == "1" || r.URL.Query().Get("pretty") == "true"

		var sigStr string
		switch r.Method {
		case http.MethodPost:
			var req parseReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "invalid JSON body"}, pretty)
				return
			}
			sigStr = req.Signature
		case http.MethodGet:
			sigStr = r.URL.Query().Get("signature")
		default:
			writeJSONMaybePretty(w, http.StatusMethodNotAllowed, apiError{Error: "method_not_allowed"}, pretty)
			return
		}

		if sigStr == "" {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "signature is required"}, pretty)
			return
		}
		sig, err := solana.SignatureFromBase58(sigStr)
		if err != nil {
			writeJSONMaybePretty(w, http.StatusBadRequest, apiError{Error: "bad_request", Details: "invalid signature (base58)"}, pretty)
			return
		}

		res, err := f.Tx(r.Context(), sig)
		if err != nil {
			status, code := classifyError(err)
			log.WithError(err).WithField("signature", sigStr).Debug("parse request failed")
			writeJSONMaybePretty(w, status, apiError{Error: code, Details: err.Error()}, pretty)
			return
		}

		resp := parseResp{
			Signature: sigStr,
			Slot:      res.Slot,
			BlockTime: res.BlockTime,
			Events:    sink.NewRecords(res.Events),
			Trades:    []dexevents.Resolution{},
			Transfers: res.Transfers,
		}
		for _, ev := range res.Events {
			if ev.Trade != nil {
				resp.Trades = append(resp.Trades, *ev.Trade)
			}
		}
		writeJSONMaybePretty(w, http.StatusOK, resp, pretty)
	})

	return mux
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ingest.ErrParse):
		return http.StatusUnprocessableEntity, "parse_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, "rpc_timeout"
	default:
		return http.StatusBadGateway, "rpc_error"
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP decoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.fetcher()
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.cfg.Addr,
				Handler:           newHandler(f, a.log),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			ctx, stop := signalContext()
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.WithFields(logrus.Fields{
					"addr":        a.cfg.Addr,
					"rpc_timeout": a.cfg.RPCTimeout,
				}).Info("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
