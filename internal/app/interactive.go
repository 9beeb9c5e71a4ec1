package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/pkg/metrics"
)

const delimiterWidth = 60

type line struct {
	text string
	err  error
}

// lines reads in on its own goroutine so a prompt can be abandoned when ctx
// is cancelled.
func lines(ctx context.Context, in io.Reader) <-chan line {
	ch := make(chan line)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- line{text: sc.Text()}:
			case <-ctx.Done():
				return
			}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case ch <- line{err: err}:
		case <-ctx.Done():
		}
	}()
	return ch
}

// Interactive prompts for the five durations, printing the balance total as
// soon as the three holds are in, then the sub-scores, the composite and the
// report between delimiter lines. Malformed input, end
// of input, cancellation and any pipeline failure abort the session.
func (r *Runner) Interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.interactive(ctx, in, out)
	if err != nil {
		r.record(metrics.StatusError)
		fmt.Fprintf(out, "\nAssessment aborted: %v\n", err)
		return err
	}
	r.record(metrics.StatusScored)
	return nil
}

func (r *Runner) interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	readCtx, stop := context.WithCancel(ctx)
	defer stop()
	input := lines(readCtx, in)

	fmt.Fprintln(out, "--- SPPB assessment ---")
	fmt.Fprintln(out, "Enter the measured time of each test in seconds.")

	measurements := make([]model.Measurement, len(model.BatteryOrder))
	for i, test := range model.BatteryOrder {
		if i == 0 {
			fmt.Fprintln(out, "\nBalance tests")
		}
		if test == model.GaitSpeed {
			fmt.Fprintln(out, "\nGait and chair tests")
		}
		fmt.Fprintf(out, "  %s (seconds): ", test.Title())

		var l line
		var ok bool
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case l, ok = <-input:
		}
		if !ok || errors.Is(l.err, io.EOF) {
			return ErrCancelled
		}
		if l.err != nil {
			return fmt.Errorf("read input: %w", l.err)
		}
		m, err := model.ParseSeconds(test, l.text)
		if err != nil {
			return err
		}
		measurements[i] = m

		if test == model.Tandem {
			balance, err := r.aggregator.BalanceTotal(ctx, measurements[0], measurements[1], measurements[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  Balance total: %d\n", balance)
		}
	}

	c, err := model.NewCase(measurements[0].Seconds, measurements[1].Seconds, measurements[2].Seconds,
		measurements[3].Seconds, measurements[4].Seconds)
	if err != nil {
		return err
	}
	outcome, err := r.assess(ctx, c)
	if err != nil {
		return err
	}

	fs := outcome.Facts
	fmt.Fprintln(out, "\nScores")
	for _, step := range []struct {
		test  model.TestID
		score int
	}{
		{model.SideBySide, fs.Scores.Side},
		{model.SemiTandem, fs.Scores.Semi},
		{model.Tandem, fs.Scores.Tandem},
		{model.GaitSpeed, fs.Scores.Gait},
		{model.ChairRise, fs.Scores.Chair},
	} {
		fmt.Fprintf(out, "  %s: %d\n", step.test.Title(), step.score)
	}
	fmt.Fprintf(out, "  SPPB total score: %d\n", fs.Composite)

	if outcome.GenerationErr != nil {
		return outcome.GenerationErr
	}

	bar := strings.Repeat("=", delimiterWidth)
	fmt.Fprintf(out, "\n%s\n%s\n%s\n", bar, outcome.Report, bar)
	return nil
}
