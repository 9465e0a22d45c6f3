package categorize

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/rules"
)

// Progress receives one Add(1) per categorized transaction.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

// Categorizer resolves batches of transactions against a RuleSet.
type Categorizer struct {
	rules    *rules.RuleSet
	workers  int
	progress Progress
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithWorkers sets the number of concurrent workers. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(c *Categorizer) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithProgress reports progress to p.
func WithProgress(p Progress) Option {
	return func(c *Categorizer) { c.progress = p }
}

// New creates a Categorizer. The RuleSet is shared read-only by all workers.
func New(rs *rules.RuleSet, opts ...Option) *Categorizer {
	c := &Categorizer{rules: rs, workers: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categorize resolves every transaction and returns the matches in input
// order. It stops early when ctx is cancelled.
func (c *Categorizer) Categorize(ctx context.Context, txns []model.Transaction) ([]model.Match, error) {
	out := make([]model.Match, len(txns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range txns {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Resolve(txns[i].Description, c.rules)
			if c.progress != nil {
				if err := c.progress.Add(1); err != nil {
					slog.Warn("Failed to update progress", "error", err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logSummary(out)
	return out, nil
}

func (c *Categorizer) logSummary(matches []model.Match) {
	uncategorized := 0
	for _, m := range matches {
		if m.IsUncategorized() {
			uncategorized++
		}
	}
	slog.Info("Categorized transactions",
		"total", len(matches),
		"matched", len(matches)-uncategorized,
		"uncategorized", uncategorized,
		"workers", c.workers)
}
