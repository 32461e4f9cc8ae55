package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/replay"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", os.Getenv("VISHING_DB"), "path to the call ledger")
	callID := flag.String("call", "", "call to export (default: most recent)")
	outPath := flag.String("out", "", "output script path (default: stdout)")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/calls.db [--call id] [--out call.yaml]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	w := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := run(w, st, *callID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *outPath != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *outPath)
	}
}

// #endregion main

// #region export

var errNoCalls = errors.New("ledger has no finished calls")

// run writes the chosen call as a replay script.
func run(w io.Writer, st *store.Store, callID string) error {
	var (
		call logging.CallSummary
		err  error
	)
	if callID == "" {
		calls, err := st.ListCalls(1)
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			return errNoCalls
		}
		call = calls[0]
	} else if call, err = st.GetCall(callID); err != nil {
		return err
	}

	rows, err := st.ListTurns(call.CallID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("call %s has no turns to replay", call.CallID)
	}
	turns := make([]logging.TurnRecord, len(rows))
	for i, r := range rows {
		turns[i] = r.Record
	}

	data, err := replay.FromLedger(call, turns).Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// #endregion export
