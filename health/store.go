package health

import (
	"context"
	"fmt"
)

// Sizer is anything that reports an entry count, such as memo.Memoizer or
// any memo.Store.
type Sizer interface {
	Len() int
}

// StoreCheckerConfig configures a StoreChecker.
type StoreCheckerConfig struct {
	// Name identifies the checked store. Default: "store"
	Name string

	// Store is the cache being checked. Required.
	Store Sizer

	// Budget is the entry count the store should stay within. Zero or
	// negative reports the size without judging it.
	Budget int

	// WarnRatio is the fraction of Budget at which the store is degraded.
	// Default: 0.8
	WarnRatio float64
}

// StoreChecker reports a cache's size against its budget: degraded from
// WarnRatio of the budget, unhealthy once the budget is exceeded.
type StoreChecker struct {
	config StoreCheckerConfig
}

// NewStoreChecker creates a store health checker.
func NewStoreChecker(config StoreCheckerConfig) *StoreChecker {
	if config.Name == "" {
		config.Name = "store"
	}
	if config.WarnRatio <= 0 || config.WarnRatio > 1 {
		config.WarnRatio = 0.8
	}
	return &StoreChecker{config: config}
}

// Name returns the configured name.
func (c *StoreChecker) Name() string {
	return c.config.Name
}

// Check reads the store size and compares it with the budget.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	n := c.config.Store.Len()
	details := map[string]any{"entries": n}

	budget := c.config.Budget
	if budget <= 0 {
		return Healthy(fmt.Sprintf("%d entries, no budget", n)).WithDetails(details)
	}

	usage := float64(n) / float64(budget)
	details["budget"] = budget
	details["usage_percent"] = usage * 100

	switch {
	case n > budget:
		return Unhealthy(fmt.Sprintf("%d entries exceed budget of %d", n, budget), ErrOverBudget).WithDetails(details)
	case usage >= c.config.WarnRatio:
		return Degraded(fmt.Sprintf("store at %.1f%% of budget", usage*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("store at %.1f%% of budget", usage*100)).WithDetails(details)
	}
}

var _ Checker = (*StoreChecker)(nil)
