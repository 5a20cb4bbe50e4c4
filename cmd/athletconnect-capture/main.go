package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/claude/athletconnect/internal/capture"
	"github.com/claude/athletconnect/internal/history"
	"github.com/claude/athletconnect/internal/scoring"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	backendURL := flag.String("backend", scoring.DefaultBackendURL, "scoring backend URL")
	testName := flag.String("test", capture.DefaultExercise, "fitness test to record ("+strings.Join(capture.Exercises(), ", ")+")")
	athleteID := flag.String("athlete", "", "athlete id stored with each result")
	timeout := flag.Duration("timeout", 10*time.Second, "scoring backend request timeout")
	stateDir := flag.String("state-dir", "", "history directory (default ~/.athletconnect-capture)")
	showHistory := flag.Int("history", 0, "print the last N recorded results and exit (-1 for all)")
	noHistory := flag.Bool("no-history", false, "do not record results locally")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("athletconnect-capture", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".athletconnect-capture")
	}

	var hist *history.DB
	if !*noHistory || *showHistory != 0 {
		var err error
		hist, err = history.Open(dir)
		if err != nil {
			log.Error("failed to open history database", "error", err)
			os.Exit(1)
		}
		defer hist.Close()
	}

	if *showHistory != 0 {
		if err := printHistory(hist, *showHistory); err != nil {
			log.Error("failed to read history", "error", err)
			os.Exit(1)
		}
		return
	}
	if *noHistory {
		hist = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := scoring.NewClient(*backendURL, *timeout)
	if h, err := client.Health(ctx); err != nil {
		fmt.Printf("Scoring backend unreachable (%v); results will be estimated.\n", err)
	} else if !h.Healthy() {
		fmt.Printf("Scoring backend reports %q; results may be estimated.\n", h.Status)
	}

	p := &printer{results: make(chan capture.Snapshot, 1)}
	ctl := capture.NewController(*testName, client, log, capture.WithListener(p.observe))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ctl.Run(gctx)
		return nil
	})
	g.Go(func() error {
		defer ctl.Close()
		return runSession(gctx, ctl, readLines(os.Stdin), p.results, hist, *athleteID)
	})
	if err := g.Wait(); err != nil {
		log.Error("capture failed", "error", err)
		os.Exit(1)
	}
}

// runSession walks the operator through start, stop and optional retakes.
func runSession(ctx context.Context, ctl *capture.Controller, lines <-chan string, results <-chan capture.Snapshot, hist *history.DB, athleteID string) error {
	for {
		snap := ctl.Snapshot()
		fmt.Printf("\n%s (%s). Press Enter to start.\n", snap.TestName, snap.ExerciseType)
		if _, ok := readLine(ctx, lines); !ok {
			return nil
		}
		if !ctl.Start() {
			fmt.Println("Session is busy, try again.")
			continue
		}

		fmt.Println("Press Enter to stop recording.")
		for {
			if _, ok := readLine(ctx, lines); !ok {
				return nil
			}
			if ctl.Stop() {
				break
			}
			fmt.Println("Not recording yet, wait for the countdown.")
		}

		var done capture.Snapshot
		select {
		case <-ctx.Done():
			return nil
		case done = <-results:
		}
		printResult(done)

		if hist != nil && done.Result != nil {
			entry := history.Entry{
				Test:           done.TestName,
				ExerciseType:   done.ExerciseType,
				AthleteID:      athleteID,
				Score:          done.Result.Score,
				Unit:           done.Result.Unit,
				Percentile:     done.Result.Percentile,
				Fallback:       done.Fallback,
				ElapsedSeconds: done.ElapsedRecordingSeconds,
			}
			if done.SessionID != nil {
				entry.SessionID = *done.SessionID
			}
			if _, err := hist.Record(entry); err != nil {
				return fmt.Errorf("recording result: %w", err)
			}
		}

		fmt.Println("Type r and press Enter to retake, or just Enter to quit.")
		line, ok := readLine(ctx, lines)
		if !ok || !strings.EqualFold(strings.TrimSpace(line), "r") {
			return nil
		}
		ctl.Retake()
	}
}

// printer renders session progress and hands the first results snapshot of
// each attempt to results.
type printer struct {
	results chan capture.Snapshot

	mu   sync.Mutex
	last capture.Snapshot
}

func (p *printer) observe(s capture.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.last
	p.last = s

	switch s.Stage {
	case capture.StageCountdown:
		if prev.Stage != capture.StageCountdown || prev.CountdownRemaining != s.CountdownRemaining {
			fmt.Printf("  %d...\n", s.CountdownRemaining)
		}
	case capture.StageRecording:
		if prev.Stage != capture.StageRecording {
			fmt.Println("  GO! Recording.")
		} else if prev.ElapsedRecordingSeconds != s.ElapsedRecordingSeconds {
			fmt.Printf("\r  %s", capture.FormatElapsed(s.ElapsedRecordingSeconds))
		}
		if s.Busy && !prev.Busy && prev.Stage == capture.StageRecording {
			fmt.Println("\n  Analyzing...")
		}
	case capture.StageResults:
		if prev.Stage != capture.StageResults {
			select {
			case p.results <- s:
			default:
			}
		}
	}
}

func printResult(s capture.Snapshot) {
	fmt.Println()
	fmt.Println("=== Result ===")
	fmt.Printf("  Test:        %s\n", s.TestName)
	fmt.Printf("  Duration:    %s\n", capture.FormatElapsed(s.ElapsedRecordingSeconds))
	fmt.Printf("  Score:       %g %s\n", s.Result.Score, s.Result.Unit)
	fmt.Printf("  Percentile:  %g\n", s.Result.Percentile)
	if s.Fallback {
		fmt.Println("  (estimated: scoring backend unavailable)")
	}
	fmt.Println()
}

func printHistory(hist *history.DB, limit int) error {
	entries, err := hist.List(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No results recorded yet.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRECORDED\tTEST\tATHLETE\tSCORE\tPERCENTILE\tDURATION\tESTIMATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g %s\t%g\t%s\t%t\n",
			e.ID, e.RecordedAt.Local().Format(time.DateTime), e.Test, e.AthleteID,
			e.Score, e.Unit, e.Percentile, capture.FormatElapsed(e.ElapsedSeconds), e.Fallback)
	}
	return w.Flush()
}

// readLines forwards stdin lines until EOF.
func readLines(f *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

func readLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}
