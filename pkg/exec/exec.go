// Package exec runs the external commands declared under [command.*].
//
// Commands flagged ensure_first run strictly sequentially, since later
// commands may depend on them. Every remaining command then runs
// concurrently as an independent task; one task's failure neither
// cancels nor blocks its siblings, and results are joined and tallied
// afterward.
package exec

import (
	"os"
	osexec "os/exec"
	"regexp"
	"sort"
	"sync"

	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
)

// Mode selects which commands a run includes.
type Mode int

const (
	// ModeRegular runs every command not marked flag.
	ModeRegular Mode = iota
	// ModeAll runs everything, flagged or not.
	ModeAll
	// ModeFlagged runs only commands marked flag.
	ModeFlagged
)

// Job is one extracted external command with its run string fully
// substituted.
type Job struct {
	Name        string
	Run         string
	Sudo        bool
	EnsureFirst bool
	Flag        bool
	Required    []string
}

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Substitute expands $name and ${name} references from the [vars]
// table, falling back to the environment. Unresolvable references are
// left as ${name} so the failure is visible in the executed command.
func Substitute(text string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		if v, ok := vars[name]; ok {
			return v
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// Extract pulls one named command out of the config.
func Extract(cfg *config.Config, name string) (Job, error) {
	cmd, ok := cfg.Command[name]
	if !ok {
		return Job{}, errors.Newf(errors.ErrNotFound, "no such command %q", name)
	}
	return Job{
		Name:        name,
		Run:         Substitute(cmd.Run, cfg.Vars),
		Sudo:        cmd.Sudo,
		EnsureFirst: cmd.EnsureFirst,
		Flag:        cmd.Flag,
		Required:    cmd.Required,
	}, nil
}

// ExtractAll pulls every declared command, sorted by name so runs are
// deterministic.
func ExtractAll(cfg *config.Config) []Job {
	names := make([]string, 0, len(cfg.Command))
	for name := range cfg.Command {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		job, err := Extract(cfg, name)
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Runner executes external command jobs.
type Runner struct {
	DryRun bool

	// test seams
	execute  func(Job) error
	lookPath func(string) (string, error)
}

// NewRunner returns a Runner that executes jobs through `sh -c` (or
// `sudo sh -c` for sudo jobs) with inherited stdio.
func NewRunner(dryRun bool) *Runner {
	return &Runner{
		DryRun:   dryRun,
		execute:  executeShell,
		lookPath: osexec.LookPath,
	}
}

func executeShell(job Job) error {
	bin := "sh"
	args := []string{"-c", job.Run}
	if job.Sudo {
		bin = "sudo"
		args = []string{"sh", "-c", job.Run}
	}

	cmd := osexec.Command(bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrExecFailed, "command %q failed", job.Name)
	}
	return nil
}

// binsPresent checks that every binary the job requires is on $PATH.
func (r *Runner) binsPresent(job Job) bool {
	logger := logging.GetLogger("exec")
	present := true
	for _, bin := range job.Required {
		if _, err := r.lookPath(bin); err != nil {
			logger.Warn().Str("command", job.Name).Str("binary", bin).Msg("Required binary not found in $PATH")
			present = false
		}
	}
	return present
}

func (r *Runner) included(job Job, mode Mode) bool {
	switch mode {
	case ModeRegular:
		return !job.Flag
	case ModeFlagged:
		return job.Flag
	default:
		return true
	}
}

// RunAll executes every eligible command: the ensure_first phase
// sequentially, then the rest concurrently. It returns the number of
// commands that completed successfully.
func (r *Runner) RunAll(cfg *config.Config, mode Mode) int {
	logger := logging.GetLogger("exec")

	var first, rest []Job
	for _, job := range ExtractAll(cfg) {
		if !r.included(job, mode) || !r.binsPresent(job) {
			continue
		}
		if job.EnsureFirst {
			first = append(first, job)
		} else {
			rest = append(rest, job)
		}
	}

	successes := 0
	failures := 0

	for _, job := range first {
		if err := r.runOne(job); err != nil {
			logger.Error().Err(err).Str("command", job.Name).Msg("Command failed")
			failures++
		} else {
			successes++
		}
	}

	// remaining commands are independent; run them concurrently and
	// join the results
	results := make([]error, len(rest))
	var wg sync.WaitGroup
	for i, job := range rest {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			results[i] = r.runOne(job)
		}(i, job)
	}
	wg.Wait()

	for i, err := range results {
		if err != nil {
			logger.Error().Err(err).Str("command", rest[i].Name).Msg("Command failed")
			failures++
		} else {
			successes++
		}
	}

	if failures > 0 {
		logger.Warn().Int("failed", failures).Msg("Some external commands failed")
	}
	return successes
}

// RunOne executes a single named command.
func (r *Runner) RunOne(cfg *config.Config, name string) error {
	job, err := Extract(cfg, name)
	if err != nil {
		return err
	}
	if !r.binsPresent(job) {
		return errors.Newf(errors.ErrExecFailed, "command %q needs binaries missing from $PATH", name)
	}
	return r.runOne(job)
}

func (r *Runner) runOne(job Job) error {
	logger := logging.GetLogger("exec")
	if r.DryRun {
		logger.Info().Str("command", job.Name).Str("run", job.Run).Msg("Would execute")
		return nil
	}
	logger.Info().Str("command", job.Name).Msg("Executing")
	return r.execute(job)
}
