// Command dataflow runs a dataflow task described by a YAML task file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/dataflow/bootstrap"
	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/codec"
	"github.com/kbukum/dataflow/executor"
	"github.com/kbukum/dataflow/observability"
	"github.com/kbukum/dataflow/pipeline"
	"github.com/kbukum/dataflow/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dataflow",
		Short: "dataflow - run one task of a dataflow job",
		Long: `dataflow pulls records from a pipeline source and routes them to the
task's output channels.

The channel set decides the topology: direct channels are committed once the
input is exhausted, a sorted channel receives partitioned key/value pairs and
an unordered channel receives broadcast pairs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(versionCmd())
	return root
}

// ─── run ──────────────────────────────────────────────────────────────────────

func runCmd() *cobra.Command {
	var attemptID string

	cmd := &cobra.Command{
		Use:   "run <task.yml>",
		Short: "Run a task and print its report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := runTask(cmd.Context(), args[0], attemptID, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if rep.Error != nil {
				return fmt.Errorf("task %s failed: %s", rep.TaskID, rep.Error.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&attemptID, "attempt", "", "attempt ID (default: generated)")
	return cmd
}

// ─── validate ─────────────────────────────────────────────────────────────────

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <task.yml>",
		Short: "Validate a task file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := loadTaskFile(args[0])
			if err != nil {
				return err
			}
			tf.ApplyDefaults()
			if err := tf.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s: %d channel(s), codec %s\n",
				tf.Task.TaskID, len(tf.Channels), tf.Task.Codec)
			return nil
		},
	}
}

// ─── version ──────────────────────────────────────────────────────────────────

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dataflow", version.Get().String())
		},
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// runTask executes the task file at path. The report is written to stdout
// whenever the executor ran, including when the task failed; the returned
// error covers setup and shutdown problems only.
func runTask(ctx context.Context, path, attemptID string, stdout, stderr io.Writer, opts ...bootstrap.Option) (executor.Report, error) {
	var rep executor.Report

	tf, err := loadTaskFile(path)
	if err != nil {
		return rep, err
	}
	opts = append([]bootstrap.Option{bootstrap.WithSummaryOutput(stderr)}, opts...)
	app, err := bootstrap.NewApp(tf, opts...)
	if err != nil {
		return rep, err
	}
	log := app.Logger

	if attemptID == "" {
		attemptID = uuid.NewString()
	}
	att := attempt{taskID: tf.Task.TaskID, attemptID: attemptID}

	c, err := codec.ByName(tf.Task.Codec)
	if err != nil {
		return rep, err
	}

	bindings, err := newBindings(tf.Channels, log)
	if err != nil {
		return rep, err
	}
	for _, b := range bindings {
		if err := app.RegisterComponent(b.comp); err != nil {
			return rep, err
		}
	}

	var tel *observability.Telemetry
	if tf.Telemetry.Enabled() {
		svc := observability.Service{Name: tf.Name, Version: tf.Version, Environment: tf.Environment}
		app.OnStart(func(ctx context.Context) error {
			var err error
			tel, err = observability.Start(ctx, tf.Telemetry, svc, log)
			return err
		})
		app.OnStop(func(ctx context.Context) error { return tel.Shutdown(ctx) })
	}

	var channels []channel.Channel
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*TaskFile]) error {
		for _, b := range bindings {
			ch, target, err := b.channel(c, att, log)
			if err != nil {
				return err
			}
			channels = append(channels, ch)
			a.Summary.TrackChannel(ch.Name(), b.cfg.Backend, channel.KindOf(ch).String(), target)
		}
		return nil
	})

	err = app.RunTask(ctx, func(ctx context.Context) error {
		handle, err := openSource(tf.Source)
		if err != nil {
			return err
		}
		task, err := executor.New(tf.Task, handle, channels,
			executor.WithLogger(log),
			executor.WithMetrics(tel.TaskMetrics()),
			executor.WithAttemptID(att.attemptID),
		)
		if err != nil {
			_ = pipeline.Close(handle)
			return err
		}

		rep = task.Run(ctx).Report()
		return writeReport(stdout, rep)
	})
	return rep, err
}

func writeReport(w io.Writer, rep executor.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
