// Package scheduler runs jobs on cron schedules with seconds precision.
//
// Jobs never overlap: a tick that fires while the previous run of the same
// job is still going is skipped. Panics inside a job are logged and
// recovered.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/aendu/latin-events/internal/logger"
)

// Runner runs jobs on cron schedules with a seconds field.
type Runner struct {
	cron    *cron.Cron
	log     *logger.Logger
	baseCtx context.Context
}

// New creates a stopped Runner. Jobs receive baseCtx.
func New(baseCtx context.Context, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	cl := cronLogger{log: log}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		baseCtx: baseCtx,
	}
}

// Validate reports whether spec is a valid six-field schedule.
func Validate(spec string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Add registers job under spec.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() { job(r.baseCtx) })
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return id, nil
}

// Entries lists the registered jobs with their next activation.
func (r *Runner) Entries() []cron.Entry {
	return r.cron.Entries()
}

// Start runs the scheduler in its own goroutine.
func (r *Runner) Start() {
	r.log.Info("scheduler started", logger.Fields{"jobs": len(r.cron.Entries())})
	r.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info("scheduler stopped", nil)
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(kv []interface{}) logger.Fields {
	if len(kv) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 < len(kv) {
			fields[key] = kv[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}
