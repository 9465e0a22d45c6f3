package categorize

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/rules"
)

type countingProgress struct {
	n atomic.Int64
}

func (p *countingProgress) Add(n int) error {
	p.n.Add(int64(n))
	return nil
}

func testRules() *rules.RuleSet {
	return rules.Compile(rules.Raw{
		{Name: "Food", Subcategories: []rules.RawSubcategory{
			{Name: "Groceries", Terms: []string{"whole foods", "trader joe's"}},
			{Name: "Coffee", Terms: []string{"starbucks"}},
		}},
		{Name: "Transport", Subcategories: []rules.RawSubcategory{
			{Name: "Rideshare", Terms: []string{"uber", "lyft"}},
		}},
	})
}

func txns(descs ...string) []model.Transaction {
	out := make([]model.Transaction, len(descs))
	for i, d := range descs {
		out[i] = model.Transaction{Description: d}
	}
	return out
}

func TestCategorize_Sequential(t *testing.T) {
	c := New(testRules())
	got, err := c.Categorize(context.Background(), txns(
		"WHOLEFOODS MKT #532",
		"UBER *TRIP",
		"ACME CONSULTING",
		"STARBUCKS STORE 1234",
	))
	require.NoError(t, err)
	assert.Equal(t, []model.Match{
		match("Food", "Groceries"),
		match("Transport", "Rideshare"),
		model.Uncategorized(),
		match("Food", "Coffee"),
	}, got)
}

func TestCategorize_WorkersKeepOrder(t *testing.T) {
	var descs []string
	var want []model.Match
	for i := range 200 {
		switch i % 3 {
		case 0:
			descs = append(descs, fmt.Sprintf("TRADER JOE'S #%d", i))
			want = append(want, match("Food", "Groceries"))
		case 1:
			descs = append(descs, fmt.Sprintf("LYFT RIDE %d", i))
			want = append(want, match("Transport", "Rideshare"))
		default:
			descs = append(descs, fmt.Sprintf("CHECK %d", i))
			want = append(want, model.Uncategorized())
		}
	}

	progress := &countingProgress{}
	c := New(testRules(), WithWorkers(8), WithProgress(progress))
	got, err := c.Categorize(context.Background(), txns(descs...))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(200), progress.n.Load())
}

func TestCategorize_MatchesResolve(t *testing.T) {
	rs := testRules()
	in := txns("UBER EATS", "whole foods", "", "Lyft")
	got, err := New(rs, WithWorkers(3)).Categorize(context.Background(), in)
	require.NoError(t, err)
	for i, txn := range in {
		assert.Equal(t, Resolve(txn.Description, rs), got[i])
	}
}

func TestCategorize_Empty(t *testing.T) {
	got, err := New(testRules()).Categorize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCategorize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testRules(), WithWorkers(2)).Categorize(ctx, txns("UBER", "LYFT"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithWorkers_Minimum(t *testing.T) {
	c := New(testRules(), WithWorkers(0))
	assert.Equal(t, 1, c.workers)

	c = New(testRules(), WithWorkers(-3))
	assert.Equal(t, 1, c.workers)
}
