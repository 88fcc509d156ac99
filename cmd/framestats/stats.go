package main

import (
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/getsentry/framestats/internal/aggregate"
	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/export"
	"github.com/getsentry/framestats/internal/sample"
	"github.com/getsentry/framestats/internal/source"
)

type statsFlags struct {
	reducer  string
	sort     string
	columns  []string
	function string
	first    int
	last     int
	table    bool
}

func (e *environment) newStatsCmd() *cobra.Command {
	var f statsFlags
	cmd := &cobra.Command{
		Use:   "stats SESSION",
		Short: "Aggregate function statistics across the frames of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runStats(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.reducer, "reducer", "", "sum, average, min, max or median")
	cmd.Flags().StringVar(&f.sort, "sort", "", "column to rank functions by")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "columns to report, FunctionName first, out of "+strings.Join(column.Names(column.All), ","))
	cmd.Flags().StringVar(&f.function, "function", "", "only aggregate this function path and its callees")
	cmd.Flags().IntVar(&f.first, "first", -1, "first frame, the session's first frame when negative")
	cmd.Flags().IntVar(&f.last, "last", -1, "last frame, the session's last frame when negative")
	cmd.Flags().BoolVar(&f.table, "table", false, "print an aligned table instead of JSON")
	return cmd
}

func (e *environment) statsOptions(f statsFlags) (aggregate.Options, error) {
	opts, err := e.config.AggregateOptions()
	if err != nil {
		return opts, err
	}
	if f.reducer != "" {
		if opts.Reducer, err = aggregate.ParseReducer(f.reducer); err != nil {
			return opts, err
		}
	}
	if f.sort != "" {
		if opts.SortBy, err = column.Parse(f.sort); err != nil {
			return opts, err
		}
	}
	if len(f.columns) > 0 {
		if opts.Columns, err = column.ParseList(f.columns); err != nil {
			return opts, err
		}
	}
	opts.FunctionPath = f.function
	return opts, nil
}

func (e *environment) runStats(cmd *cobra.Command, key string, f statsFlags) error {
	opts, err := e.statsOptions(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	bucket, err := e.openBucket(ctx)
	if err != nil {
		return err
	}
	defer bucket.Close()

	session, err := source.LoadSession(ctx, bucket, key)
	if err != nil {
		return err
	}
	first, last := f.first, f.last
	if first < 0 {
		first = session.FirstFrameIndex()
	}
	if last < 0 {
		last = session.LastFrameIndex()
	}

	s := sentry.StartSpan(ctx, "aggregate")
	stats, err := aggregate.Aggregate(session, sample.NewAllocator(e.config.Pools), first, last, opts)
	s.Finish()
	if err != nil {
		return err
	}

	s = sentry.StartSpan(ctx, "export")
	defer s.Finish()
	if f.table {
		return export.Table(cmd.OutOrStdout(), opts.Columns, stats)
	}
	return export.Statistics(cmd.OutOrStdout(), stats)
}
