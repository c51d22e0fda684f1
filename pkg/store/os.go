package store

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/prefs"
)

// runnerFunc executes an external command and returns its stdout.
type runnerFunc func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// OS is the live preference store, backed by the macOS defaults tool.
// Reads go through `defaults export` and the plist codec; writes use
// typed flags for scalars and plist XML fragments for containers.
type OS struct {
	run runnerFunc
}

// NewOS returns the defaults-backed store.
func NewOS() *OS {
	return &OS{run: execRunner}
}

// newOSWithRunner is the test seam for command execution.
func newOSWithRunner(run runnerFunc) *OS {
	return &OS{run: run}
}

// Read implements Store. A domain that defaults cannot export is
// reported as absent, not as an error; apply treats missing domains as
// a validation concern, not a read failure.
func (s *OS) Read(domain, key string) (prefs.Value, bool, error) {
	out, err := s.run("defaults", "export", domain, "-")
	if err != nil {
		return prefs.Value{}, false, nil
	}
	dict, err := decodePlist(out)
	if err != nil {
		return prefs.Value{}, false, err
	}
	value, ok := dict[key]
	return value, ok, nil
}

// Write implements Store.
func (s *OS) Write(domain, key string, value prefs.Value) error {
	args, err := writeArgs(domain, key, value)
	if err != nil {
		return err
	}
	if _, err := s.run("defaults", args...); err != nil {
		return errors.Wrapf(err, errors.ErrPrefIO, "defaults write %s %s failed", domain, key)
	}
	return nil
}

func writeArgs(domain, key string, value prefs.Value) ([]string, error) {
	args := []string{"write", domain, key}
	switch value.Kind() {
	case prefs.KindString:
		return append(args, "-string", value.Str()), nil
	case prefs.KindInteger:
		return append(args, "-int", strconv.FormatInt(value.Int(), 10)), nil
	case prefs.KindFloat:
		return append(args, "-float", strconv.FormatFloat(value.Float64(), 'g', -1, 64)), nil
	case prefs.KindBoolean:
		return append(args, "-bool", strconv.FormatBool(value.Bool())), nil
	case prefs.KindArray, prefs.KindDictionary:
		fragment, err := encodeFragment(value)
		if err != nil {
			return nil, err
		}
		return append(args, fragment), nil
	default:
		return nil, errors.Newf(errors.ErrValueShape, "cannot write value of kind %v", value.Kind())
	}
}

// Delete implements Store.
func (s *OS) Delete(domain, key string) error {
	if _, err := s.run("defaults", "delete", domain, key); err != nil {
		return errors.Wrapf(err, errors.ErrPrefIO, "defaults delete %s %s failed", domain, key)
	}
	return nil
}

// ListDomains implements Store. NSGlobalDomain is not part of the
// enumeration defaults prints; callers special-case it.
func (s *OS) ListDomains() ([]string, error) {
	logger := logging.GetLogger("store.os")
	out, err := s.run("defaults", "domains")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPrefIO, "defaults domains failed")
	}
	raw := strings.Split(string(out), ",")
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	logger.Debug().Int("count", len(names)).Msg("Enumerated preference domains")
	return names, nil
}

var _ Store = (*OS)(nil)
var _ Store = (*Memory)(nil)

// Address renders a store address for log output.
func Address(domain, key string) string {
	return fmt.Sprintf("%s | %s", domain, key)
}
