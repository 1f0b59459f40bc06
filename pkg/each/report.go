package each

import (
	"fmt"
	"strings"
	"time"
)

// Result is the outcome of running the command in a single package.
type Result struct {
	Package    string
	Dir        string
	ExitStatus int
	// Error is empty if the command succeeded
	Error    string
	Duration time.Duration
	// Skipped is set for packages that weren't run because of a dry run, fail-fast or cancellation.
	Skipped bool
}

// Failed reports whether the command failed in this package.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Report collects the results of a run.
type Report struct {
	ID      string
	Started time.Time
	Command []string
	Results []Result
}

// Failed returns the results of all failed packages.
func (r *Report) Failed() []Result {
	failed := []Result{}
	for _, result := range r.Results {
		if result.Failed() {
			failed = append(failed, result)
		}
	}

	return failed
}

// Skipped counts the packages that weren't run.
func (r *Report) Skipped() int {
	count := 0
	for _, result := range r.Results {
		if result.Skipped {
			count++
		}
	}

	return count
}

// Summary returns a one-line description of the run.
func (r *Report) Summary() string {
	failed := r.Failed()
	skipped := r.Skipped()
	ok := len(r.Results) - len(failed) - skipped

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d packages: %d ok, %d failed", len(r.Results), ok, len(failed))
	if skipped > 0 {
		fmt.Fprintf(&sb, ", %d skipped", skipped)
	}

	if len(failed) > 0 {
		names := make([]string, len(failed))
		for idx, result := range failed {
			names[idx] = fmt.Sprintf("%s (exit status %d)", result.Package, result.ExitStatus)
		}
		sb.WriteString(" [" + strings.Join(names, ", ") + "]")
	}

	return sb.String()
}
