package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/getsentry/framestats/internal/config"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/logutil"
	"github.com/getsentry/framestats/internal/storageutil"
)

var release string

type environment struct {
	config     config.Config
	configPath string
	bucketURL  string
}

func newRootCmd() *cobra.Command {
	e := &environment{}
	rootCmd := &cobra.Command{
		Use:           "framestats",
		Short:         "framestats exports profiler frames and aggregates function statistics",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
	}
	if usage, err := config.Usage(); err == nil {
		rootCmd.Long = rootCmd.Short + "\n\n" + usage
	}
	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&e.bucketURL, "session-bucket", "", "URL of the bucket holding sessions (file:///path, mem://)")

	rootCmd.AddCommand(e.newExportCmd())
	rootCmd.AddCommand(e.newStatsCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func (e *environment) setup() error {
	var err error
	e.config, err = config.Load(e.configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errorutil.ErrInvalidOptions, err)
	}
	if e.bucketURL != "" {
		e.config.SessionBucket = e.bucketURL
	}

	level, err := logutil.ParseLevel(e.config.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", errorutil.ErrInvalidOptions, err)
	}
	logutil.ConfigureLogger(level)

	if e.config.SentryDSN == "" {
		return nil
	}
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              e.config.SentryDSN,
		EnableTracing:    true,
		Environment:      e.config.Environment,
		Release:          release,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return fmt.Errorf("can't initialize sentry: %w", err)
	}
	return nil
}

func (e *environment) openBucket(ctx context.Context) (*blob.Bucket, error) {
	if e.config.SessionBucket == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return fileblob.OpenBucket(wd, nil)
	}
	bucket, err := blob.OpenBucket(ctx, e.config.SessionBucket)
	if err != nil {
		return nil, fmt.Errorf("%w: opening bucket %q: %v", errorutil.ErrInvalidOptions, e.config.SessionBucket, err)
	}
	return bucket, nil
}

// reportable tells apart failures worth sending to Sentry from bad input.
func reportable(err error) bool {
	for _, target := range []error{
		errorutil.ErrInvalidOptions,
		errorutil.ErrInvalidRange,
		errorutil.ErrFileExists,
		storageutil.ErrObjectNotFound,
	} {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err == nil {
		sentry.Flush(5 * time.Second)
		return
	}
	if reportable(err) {
		sentry.CaptureException(err)
	}
	sentry.Flush(5 * time.Second)
	log.Error().Err(err).Msg("command failed")
	os.Exit(1)
}
