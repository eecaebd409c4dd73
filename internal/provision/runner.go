package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/camprov/internal/logging"
	"github.com/muurk/camprov/internal/templates"
)

// Runner executes the provisioning policy against one camera.
type Runner struct {
	Context     *RunContext
	Templates   *templates.Store
	Policy      []Step
	Reconnector *Reconnector
	Observer    Observer
}

// NewRunner creates a runner with the default policy and retry budget
func NewRunner(rc *RunContext, store *templates.Store, observer Observer) *Runner {
	if observer == nil {
		observer = NopObserver{}
	}

	reconnector := NewReconnector(rc.Session)
	reconnector.Observer = observer

	return &Runner{
		Context:     rc,
		Templates:   store,
		Policy:      DefaultPolicy(),
		Reconnector: reconnector,
		Observer:    observer,
	}
}

// Run establishes a session, then executes each step in order, reconnecting
// after every step flagged CausesSessionLoss. Step failures are recorded and
// the run continues; only failing to (re-)establish the session stops it,
// in which case the partial report is returned with the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	target := r.Context.Target
	report := &Report{
		Address:   target.Address,
		DeviceID:  target.DeviceID,
		StartedAt: time.Now(),
	}
	defer func() { report.FinishedAt = time.Now() }()

	if err := r.reconnect(ctx, report); err != nil {
		return report, err
	}

	for _, step := range r.Policy {
		outcome := r.execute(ctx, step)
		report.Steps = append(report.Steps, outcome)

		logging.LogStep(target.Address, step.Name, outcome.Succeeded(), outcome.Result.StatusCode, outcome.Err)
		r.Observer.StepFinished(target.Address, outcome)

		if ctx.Err() != nil {
			return report, fmt.Errorf("provisioning %s interrupted: %w", target.Address, ctx.Err())
		}

		if step.CausesSessionLoss {
			if err := r.reconnect(ctx, report); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

func (r *Runner) reconnect(ctx context.Context, report *Report) error {
	before := r.Reconnector.TotalAttempts()
	_, err := r.Reconnector.Reconnect(ctx)
	report.LoginAttempts += r.Reconnector.TotalAttempts() - before
	if err != nil {
		report.Aborted = true
		return err
	}
	report.Reconnects++
	return nil
}

// execute runs a single step. It never returns an error: failures are
// recorded on the outcome.
func (r *Runner) execute(ctx context.Context, step Step) StepOutcome {
	start := time.Now()
	outcome := StepOutcome{Step: step}

	session := r.Context.Session

	if step.EndsSession {
		outcome.Result = session.Logout(ctx)
		outcome.Err = outcome.Result.Failure()
		outcome.Duration = time.Since(start)
		return outcome
	}

	tmpl, err := r.Templates.Get(step.Template)
	if err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return outcome
	}

	if step.Shape != nil {
		if err := step.Shape(&tmpl, r.Context.Target); err != nil {
			outcome.Err = fmt.Errorf("%s: failed to build request: %w", step.Name, err)
			outcome.Duration = time.Since(start)
			return outcome
		}
	}

	outcome.Result = session.Do(ctx, tmpl)
	outcome.Err = outcome.Result.Failure()
	outcome.Duration = time.Since(start)
	return outcome
}
