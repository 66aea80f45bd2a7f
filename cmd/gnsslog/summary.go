package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gnsslog/internal/config"
	"gnsslog/internal/parser"
	"gnsslog/internal/recording"
	"gnsslog/internal/report"
)

type fileSummary struct {
	Path   string
	ID     string
	Result parser.Result
	Report report.Report
}

func parserFor(cfg config.Config) *parser.Parser {
	return parser.New(parser.Options{
		ExcerptLimit:  cfg.Parser.ExcerptLimit,
		NMEALookahead: cfg.Parser.NMEALookahead,
	})
}

// summarizeFiles parses every path concurrently. The result keeps argument
// order; the first open failure cancels the rest.
func summarizeFiles(ctx context.Context, p *parser.Parser, excerptChars int, paths []string) ([]fileSummary, error) {
	cleaned := make([]string, len(paths))
	for i, path := range paths {
		cleaned[i] = strings.TrimSpace(path)
		if cleaned[i] == "" {
			return nil, fmt.Errorf("path %d is empty", i+1)
		}
	}

	out := make([]fileSummary, len(cleaned))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range cleaned {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := recording.Open(path)
			if err != nil {
				return err
			}
			defer rec.Close()

			res := p.ParseBytes(rec.Bytes())
			out[i] = fileSummary{
				Path:   path,
				ID:     uuid.NewString(),
				Result: res,
				Report: report.Build(res, excerptChars),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func printSummary(w io.Writer, s fileSummary) {
	r := s.Report
	fmt.Fprintf(w, "path: %s\n", s.Path)
	fmt.Fprintf(w, "bytes: %d (skipped %d, truncated %d, checksum_mismatch %d)\n",
		r.Stats.Bytes, r.Stats.SkippedBytes, r.Stats.Truncated, r.Stats.ChecksumMismatch)
	fmt.Fprintf(w, "epochs: %d\n", r.Epochs)
	if r.Epochs > 0 {
		fmt.Fprintf(w, "time: %s .. %s\n", r.FirstTime, r.LastTime)
	}
	fmt.Fprintf(w, "duration: %.1fs\n", r.DurationSec)
	fmt.Fprintf(w, "fix_valid_ratio: %.2f\n", r.FixValidRatio)
	fmt.Fprintf(w, "mean_top3_cn0: %.1f\n", r.MeanTop3CN0)
	fmt.Fprintf(w, "messages:\n")
	for _, m := range r.Messages {
		fmt.Fprintf(w, "  %s: %d\n", m.Label, m.Count)
	}
	fmt.Fprintf(w, "spoof_events: %d\n", len(r.SpoofEvents))
	for _, ev := range r.SpoofEvents {
		fmt.Fprintf(w, "  %s .. %s epochs=%d peak=%d\n", ev.Start, ev.End, ev.Epochs, ev.Peak)
	}
}

func runSummary(ctx context.Context, w io.Writer, cfg config.Config, paths []string, publishResults bool) error {
	summaries, err := summarizeFiles(ctx, parserFor(cfg), cfg.Report.ExcerptChars, paths)
	if err != nil {
		return err
	}
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printSummary(w, s)
	}
	if !publishResults {
		return nil
	}

	sinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer sinks.Close()
	if len(sinks) == 0 {
		log.Printf("publish requested but no sink is enabled")
		return nil
	}
	for _, s := range summaries {
		if err := sinks.Publish(ctx, s.ID, s.Result); err != nil {
			return fmt.Errorf("publish %s: %w", s.Path, err)
		}
		log.Printf("published %s as %s", s.Path, s.ID)
	}
	return nil
}
