package pipeline

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pim/internal/core"
	"pim/internal/output"
	"pim/internal/source"
)

// Runner ties together the source aggregator, the job expander and the output
// router: read every document, expand groups into per-job buckets, write them.
type Runner struct {
	Logger     log.Logger
	Aggregator *source.Aggregator
	Router     *output.Router
}

// NewRunner creates a runner that logs to l.
func NewRunner(l log.Logger, agg *source.Aggregator, router *output.Router) *Runner {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &Runner{
		Logger:     l,
		Aggregator: agg,
		Router:     router,
	}
}

// Run converts the documents selected by src and writes them to dest. No
// destination is written unless every document parses.
func (r *Runner) Run(ctx context.Context, src source.Selector, dest output.Destination) error {
	level.Info(r.Logger).Log("msg", "reading source", "source", src, "destination", dest, "kind", dest.Kind)

	groups, err := r.Aggregator.Aggregate(ctx, src)
	if err != nil {
		return err
	}

	buckets := Expand(r.Logger, groups)
	level.Info(r.Logger).Log("msg", "expanded groups", "groups", len(groups), "jobs", buckets.Len())

	return r.Router.Write(ctx, dest, buckets)
}

// Expand groups the records of groups by job, logging a warning for every
// group that declares no jobs.
func Expand(l log.Logger, groups []core.Group) *core.Buckets {
	buckets := core.NewBuckets()
	for i, g := range groups {
		if buckets.Add(g) == 0 {
			level.Warn(l).Log("msg", "group declares no jobs, skipping", "group", i+1, "targets", len(g.Targets))
		}
	}
	return buckets
}
