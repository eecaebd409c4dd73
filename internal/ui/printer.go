package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/muurk/camprov/internal/camera"
	"github.com/muurk/camprov/internal/provision"
)

// Printer writes line-oriented run progress for the operator. It implements
// provision.Observer, so a run's events are rendered as they happen.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

var _ provision.Observer = (*Printer)(nil)

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, width: GetTerminalWidth()}
}

// SetWidth overrides the detected terminal width for boxes
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Println writes one line
func (p *Printer) Println(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, content)
}

// Diagnostic prints a plain message, used for input errors
func (p *Printer) Diagnostic(format string, args ...any) {
	p.Println(fmt.Sprintf(format, args...))
}

// Warning prints a warning line
func (p *Printer) Warning(format string, args ...any) {
	p.Println(ReconnectStyle.Render(WarningMarker + " " + fmt.Sprintf(format, args...)))
}

// PrintHeader prints the run banner
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// ReconnectAttempt prints "Connecting, attempt: N"
func (p *Printer) ReconnectAttempt(address string, attempt int) {
	p.Println(p.prefix(address) + ReconnectStyle.Render(fmt.Sprintf("Connecting, attempt: %d", attempt)))
}

// LoginFinished prints the login status line
func (p *Printer) LoginFinished(address string, result camera.Result) {
	if result.Succeeded {
		p.Println(p.prefix(address) + StepCompleteStyle.Render("Login: OK"))
		return
	}
	p.Println(p.prefix(address) + StepFailedStyle.Render("Login: FAILED") + note(result.Failure()))
}

// StepFinished prints a ✓ or ✗ line for the step
func (p *Printer) StepFinished(address string, outcome provision.StepOutcome) {
	label := outcome.Step.Label
	if label == "" {
		label = outcome.Step.Name
	}

	if outcome.Succeeded() {
		p.Println(p.prefix(address) + StepCompleteStyle.Render(SuccessMarker+" "+label+": OK"))
		return
	}

	err := outcome.Err
	if err == nil {
		err = outcome.Result.Failure()
	}
	p.Println(p.prefix(address) + StepFailedStyle.Render(FailureMarker+" "+label+": FAILED") + note(err))
}

// SessionLost prints the host-unavailable line
func (p *Printer) SessionLost(err *provision.SessionLostError) {
	p.Println(StepFailedStyle.Render(fmt.Sprintf("Host: %s unavailable", err.Address)))
}

// PrintSummary prints the end-of-run result box. runErr is the error
// returned by Runner.Run, if any.
func (p *Printer) PrintSummary(report *provision.Report, runErr error) {
	p.Println(Summary(report, runErr).SetWidth(p.width).Render())
}

// Summary builds the result box for a finished run
func Summary(report *provision.Report, runErr error) *Result {
	var result *Result
	switch {
	case runErr != nil:
		result = NewFailureResult(report.Address+" not provisioned", runErr, hintItems(runErr))
	case report.Clean():
		result = NewSuccessResult(report.Address + " provisioned")
	default:
		result = NewWarningResult(report.Address + " provisioned with errors")
	}

	result.AddDetail("Device ID", report.DeviceID)
	result.AddDetail("Steps OK", fmt.Sprintf("%d/%d", len(report.Steps)-len(report.Failed()), len(report.Steps)))
	if failed := report.FailedNames(); len(failed) > 0 {
		result.AddDetail("Failed steps", strings.Join(failed, ", "))
	}
	result.AddDetail("Sessions", fmt.Sprintf("%d (%d login attempts)", report.Reconnects, report.LoginAttempts))
	if !report.FinishedAt.IsZero() {
		result.AddDetail("Duration", report.Duration().Round(time.Millisecond).String())
	}
	return result
}

func (p *Printer) prefix(address string) string {
	return AddressStyle.Render(address+":") + " "
}

func note(err error) string {
	if err == nil {
		return ""
	}
	return " " + StepNoteStyle.Render("("+camera.ShortMessage(err)+")")
}

// hintItems extracts the bullet points of a troubleshooting hint
func hintItems(err error) []string {
	var items []string
	for _, line := range strings.Split(camera.TroubleshootingHint(err), "\n") {
		if item, ok := strings.CutPrefix(strings.TrimSpace(line), "• "); ok {
			items = append(items, item)
		}
	}
	return items
}
