package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/getsentry/framestats/internal/capture"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/export"
	"github.com/getsentry/framestats/internal/sample"
	"github.com/getsentry/framestats/internal/source"
)

type exportFlags struct {
	frame    int
	function string
	format   string
	out      string
	force    bool
	bucket   bool
}

func (e *environment) newExportCmd() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export SESSION",
		Short: "Export the frames of a recorded session as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runExport(cmd, args[0], f)
		},
	}
	cmd.Flags().IntVar(&f.frame, "frame", -1, "export only this frame")
	cmd.Flags().StringVar(&f.function, "function", "", "export only this function path and its callees")
	cmd.Flags().StringVar(&f.format, "format", "", "json or csv, guessed from --out when omitted")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file, or object key with --bucket")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite an existing output file")
	cmd.Flags().BoolVar(&f.bucket, "bucket", false, "write the export to the session bucket")
	return cmd
}

func (e *environment) exportFormat(cmd *cobra.Command, f exportFlags) (sample.Format, string, error) {
	out := e.config.OutputPath
	if f.out != "" {
		out = f.out
	}
	var format sample.Format
	var err error
	switch {
	case cmd.Flags().Changed("format"):
		format, err = export.ParseFormat(f.format)
	case f.out != "":
		format = export.FormatFromPath(out)
	default:
		format, err = e.config.ExportFormat()
	}
	if err != nil {
		return "", "", err
	}
	return format, export.ReplaceExtension(out, format), nil
}

func (e *environment) runExport(cmd *cobra.Command, key string, f exportFlags) error {
	format, out, err := e.exportFormat(cmd, f)
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

	opts := []capture.Option{capture.WithFormat(format)}
	if f.function != "" {
		opts = append(opts, capture.WithFunctionPath(f.function))
	}
	alloc := sample.NewAllocator(e.config.Pools)

	s := sentry.StartSpan(ctx, "capture")
	var cs *sample.CaptureSet
	if f.frame >= 0 {
		cs, err = capture.CurrentFrame(session, alloc, f.frame, opts...)
	} else {
		cs, err = capture.All(session, alloc, opts...)
	}
	s.Finish()
	if err != nil {
		return err
	}
	defer cs.Release()
	log.Debug().Interface("pools", alloc.Stats()).Msg("pool usage")

	s = sentry.StartSpan(ctx, "export")
	defer s.Finish()
	data, err := export.Encode(cs)
	if err != nil {
		return err
	}

	if f.bucket {
		objectKey := f.out
		if objectKey == "" {
			objectKey = uuid.New().String() + "." + string(format)
		}
		if e.config.Compress && !strings.HasSuffix(objectKey, ".lz4") {
			objectKey += ".lz4"
		}
		if err := export.WriteBucket(s.Context(), bucket, objectKey, data, e.config.Compress); err != nil {
			return err
		}
		out = objectKey
	} else if err := export.WriteFile(out, data, f.force); err != nil {
		if errors.Is(err, errorutil.ErrFileExists) {
			return fmt.Errorf("%w, use --force to replace it", err)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
