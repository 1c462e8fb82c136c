package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/logger"
)

// DefaultGracefulTimeout bounds the stop hooks and component shutdown.
const DefaultGracefulTimeout = 15 * time.Second

// App hosts one task run: it owns the channel backends, the lifecycle hooks
// and the startup summary. C is the task file type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	summaryOut      io.Writer
	gracefulTimeout time.Duration

	onStart   []Hook
	configure []func(ctx context.Context, app *App[C]) error
	onStop    []Hook
}

// NewApp defaults and validates cfg and builds the logger it describes
// unless WithLogger supplies one.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := appOptions{summaryOut: os.Stderr, gracefulTimeout: DefaultGracefulTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.New(&base.Logging, base.Name)
		logger.SetGlobal(o.logger)
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(o.logger),
		Logger:          o.logger,
		Summary:         NewSummary(base.Name, base.Version),
		summaryOut:      o.summaryOut,
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// RegisterComponent adds a backend. Backends start in registration order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck fails when any component reports other than healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	bad := a.Components.Unhealthy(ctx)
	if len(bad) == 0 {
		return nil
	}
	parts := make([]string, len(bad))
	for i, h := range bad {
		parts[i] = h.Name + "=" + string(h.Status)
		if h.Message != "" {
			parts[i] += "(" + h.Message + ")"
		}
	}
	return fmt.Errorf("unhealthy components: [%s]", strings.Join(parts, " "))
}

// RunTask brings the process up, runs task and tears everything down. SIGINT
// and SIGTERM cancel the context task receives. When both the task and the
// shutdown fail, the task error is returned.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.shutdown(); stopErr != nil {
			a.Logger.Warn("shutdown after failed startup", logger.ErrorFields("stop", stopErr))
		}
		return err
	}

	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("task interrupted by signal")
	}
	stop()

	if stopErr := a.shutdown(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup starts the components, then runs the OnStart hooks and the
// configure callbacks, and prints the summary.
func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting task process", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart: %w", err)
	}
	for _, fn := range a.configure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.summaryOut, a.Components)
	return nil
}

// shutdown runs the OnStop hooks and stops the components within the
// graceful timeout. Both run even when the other fails.
func (a *App[C]) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hookErr := runHooks(ctx, a.onStop)
	if hookErr != nil {
		hookErr = fmt.Errorf("onStop: %w", hookErr)
	}
	err := errors.Join(hookErr, a.Components.StopAll(ctx))
	if err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
	} else {
		a.Logger.Debug("task process stopped")
	}
	return err
}
