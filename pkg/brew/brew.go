// Package brew keeps the Homebrew package set described by the [brew]
// table in sync with the machine.
package brew

import (
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
)

// runnerFunc is the test seam for invoking the brew binary.
type runnerFunc func(args ...string) ([]byte, error)

func runBrew(args ...string) ([]byte, error) {
	cmd := exec.Command("brew", args...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

// Client talks to Homebrew.
type Client struct {
	run runnerFunc
}

// NewClient returns a Client backed by the brew binary on $PATH.
func NewClient() *Client {
	return &Client{run: runBrew}
}

func newClientWithRunner(run runnerFunc) *Client {
	return &Client{run: run}
}

// Installed reports whether the brew binary is available at all.
func Installed() bool {
	_, err := exec.LookPath("brew")
	return err == nil
}

// State is everything currently installed, as brew reports it.
type State struct {
	Formulae []string
	Casks    []string
	Taps     []string
}

func splitLines(out []byte) []string {
	var items []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// List queries brew for the installed formulae, casks and taps.
func (c *Client) List() (State, error) {
	var st State

	out, err := c.run("list", "--formula", "--quiet", "--full-name", "-1")
	if err != nil {
		return st, errors.Wrap(err, errors.ErrBrewFailed, "could not list formulae")
	}
	st.Formulae = splitLines(out)

	out, err = c.run("list", "--cask", "--quiet", "--full-name", "-1")
	if err != nil {
		return st, errors.Wrap(err, errors.ErrBrewFailed, "could not list casks")
	}
	st.Casks = splitLines(out)

	out, err = c.run("tap")
	if err != nil {
		return st, errors.Wrap(err, errors.ErrBrewFailed, "could not list taps")
	}
	st.Taps = splitLines(out)

	return st, nil
}

// names installed with a tap prefix still satisfy a bare declaration
func contains(installed []string, want string) bool {
	for _, have := range installed {
		if have == want || strings.HasSuffix(have, "/"+want) {
			return true
		}
	}
	return false
}

// Diff lists the declared packages the machine is missing.
type Diff struct {
	Formulae []string
	Casks    []string
	Taps     []string
}

// Empty reports whether nothing is missing.
func (d Diff) Empty() bool {
	return len(d.Formulae) == 0 && len(d.Casks) == 0 && len(d.Taps) == 0
}

// Compare diffs the declared [brew] table against the installed state.
func Compare(declared *config.Brew, installed State) Diff {
	var d Diff
	if declared == nil {
		return d
	}
	for _, tap := range declared.Taps {
		if !contains(installed.Taps, tap) {
			d.Taps = append(d.Taps, tap)
		}
	}
	for _, formula := range declared.Formulae {
		if !contains(installed.Formulae, formula) {
			d.Formulae = append(d.Formulae, formula)
		}
	}
	for _, cask := range declared.Casks {
		if !contains(installed.Casks, cask) {
			d.Casks = append(d.Casks, cask)
		}
	}
	return d
}

// Install brings the machine up to the declared [brew] table, tapping
// and installing whatever Compare found missing. Failures on one
// package do not stop the rest.
func (c *Client) Install(declared *config.Brew, dryRun bool) error {
	logger := logging.GetLogger("brew")

	installed, err := c.List()
	if err != nil {
		return err
	}
	diff := Compare(declared, installed)
	if diff.Empty() {
		logger.Info().Msg("All declared packages already installed")
		return nil
	}

	noDeps := declared != nil && declared.NoDeps

	failed := 0
	step := func(desc string, args ...string) {
		if dryRun {
			logger.Info().Str("action", desc).Msg("Would run brew")
			return
		}
		logger.Info().Str("action", desc).Msg("Running brew")
		if _, err := c.run(args...); err != nil {
			logger.Error().Err(err).Str("action", desc).Msg("brew failed")
			failed++
		}
	}

	for _, tap := range diff.Taps {
		step("tap "+tap, "tap", tap)
	}
	for _, formula := range diff.Formulae {
		args := []string{"install", "--formula"}
		if noDeps {
			args = append(args, "--ignore-dependencies")
		}
		step("install "+formula, append(args, formula)...)
	}
	for _, cask := range diff.Casks {
		step("install --cask "+cask, "install", "--cask", cask)
	}

	if failed > 0 {
		return errors.Newf(errors.ErrBrewFailed, "%d brew operations failed", failed)
	}
	return nil
}

// Backup rewrites the [brew] table in the config at path so it mirrors
// what is installed right now. The rest of the document is untouched.
func (c *Client) Backup(path string, noDeps bool) error {
	installed, err := c.List()
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	doc := stripBrewTable(string(cfg.Raw()))
	doc = strings.TrimRight(doc, "\n")
	if doc != "" {
		doc += "\n\n"
	}
	doc += renderBrewTable(installed, noDeps)

	if err := config.Save(path, []byte(doc)); err != nil {
		return err
	}
	logger := logging.GetLogger("brew")
	logger.Info().
		Int("formulae", len(installed.Formulae)).
		Int("casks", len(installed.Casks)).
		Int("taps", len(installed.Taps)).
		Msg("Brew state backed up to config")
	return nil
}

// stripBrewTable removes the [brew] table, header through the line
// before the next table header.
func stripBrewTable(doc string) string {
	lines := strings.Split(doc, "\n")
	var kept []string
	inBrew := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inBrew = trimmed == "[brew]"
		}
		if !inBrew {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func renderBrewTable(st State, noDeps bool) string {
	var b strings.Builder
	b.WriteString("[brew]\n")
	if noDeps {
		b.WriteString("no_deps = true\n")
	}
	writeList := func(key string, items []string) {
		sorted := append([]string(nil), items...)
		sort.Strings(sorted)
		b.WriteString(key + " = [\n")
		for _, item := range sorted {
			b.WriteString("    \"" + item + "\",\n")
		}
		b.WriteString("]\n")
	}
	writeList("taps", st.Taps)
	writeList("formulae", st.Formulae)
	writeList("casks", st.Casks)
	return b.String()
}
