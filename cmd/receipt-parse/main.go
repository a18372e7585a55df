// Command receipt-parse runs the receipt parser over OCR text files and
// prints the structured results as JSON, one entry per input in order.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/receipt-tracker/internal/parsing"
)

const stdinSource = "-"

// result is the outcome for one input
type result struct {
	Source  string                 `json:"source"`
	Receipt *parsing.ParsedReceipt `json:"receipt,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// fixedClock pins the date used when a receipt has none
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func main() {
	flags := ff.NewFlagSet("receipt-parse")
	var (
		workers = flags.IntLong("workers", runtime.NumCPU(), "Number of files parsed at once")
		now     = flags.StringLong("now", "", "Date (YYYY-MM-DD) used for receipts without one (default today)")
		indent  = flags.BoolLong("pretty", "Indent the JSON output")
	)

	if err := ff.Parse(flags, os.Args[1:], ff.WithEnvVarPrefix("RECEIPT_PARSE")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	parser := parsing.NewParser()
	if *now != "" {
		d, err := time.ParseInLocation("2006-01-02", *now, time.Local)
		if err != nil {
			slog.Error("Invalid --now date", "value", *now, "error", err)
			os.Exit(1)
		}
		parser = parsing.NewParserWithClock(fixedClock{now: d})
	}

	sources := flags.GetArgs()
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	results, err := parseAll(context.Background(), parser, sources, readSource, *workers)
	if err != nil {
		slog.Error("Failed to parse receipts", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(results); err != nil {
		slog.Error("Failed to write results", "error", err)
		os.Exit(1)
	}

	for _, r := range results {
		if r.Error != "" {
			os.Exit(2)
		}
	}
}

func readSource(source string) ([]byte, error) {
	if source == stdinSource {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(source)
}

// parseAll parses every source with at most workers running at once.
// Results keep the order of sources. An unreadable source aborts the run;
// text that fails to parse is reported in its result.
func parseAll(ctx context.Context, parser *parsing.Parser, sources []string, read func(string) ([]byte, error), workers int) ([]result, error) {
	results := make([]result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := read(source)
			if err != nil {
				return fmt.Errorf("reading %s: %w", source, err)
			}

			results[i] = result{Source: source}
			parsed, err := parser.Parse(string(data))
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Receipt = parsed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
