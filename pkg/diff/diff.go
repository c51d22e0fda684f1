// Package diff compares desired configuration values against the live
// preference store.
package diff

import (
	"github.com/machlit/cutler/pkg/domains"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/logging"
	"github.com/machlit/cutler/pkg/prefs"
	"github.com/machlit/cutler/pkg/store"
)

// Job is one computed change: an effective key whose live value differs
// from (or lacks) the desired value.
type Job struct {
	Domain  string
	Key     string
	Desired prefs.Value
	// Current is the live value at diff time, nil when the key was
	// absent.
	Current *prefs.Value
}

// Options controls a diff run.
type Options struct {
	// SkipDomainCheck disables the existence check for effective
	// domains. Resolution still consults the live enumeration.
	SkipDomainCheck bool
}

// Compute resolves every configured entry, reads its live value and
// returns a Job for each entry that is absent or differs. Entries are
// processed in document order and the job list preserves it.
//
// When the domain check is enabled, an effective domain that is neither
// NSGlobalDomain nor present in the live enumeration fails the whole
// run before any mutation can happen.
func Compute(set []domains.DomainSettings, st store.Store, opts Options) ([]Job, error) {
	logger := logging.GetLogger("diff")

	lookup, err := liveLookup(st, opts)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, domain := range set {
		for _, setting := range domain.Settings {
			effDomain, effKey := domains.Resolve(domain.Name, setting.Key, lookup)

			if !opts.SkipDomainCheck && effDomain != domains.GlobalDomain && !lookup(effDomain) {
				return nil, errors.Newf(errors.ErrDomainUnknown,
					"domain %q was not found; cannot write to it (bypass with --no-dom-check)", effDomain)
			}

			current, ok, err := st.Read(effDomain, effKey)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrPrefIO, "could not read %s", store.Address(effDomain, effKey))
			}

			if ok && current.Equal(setting.Value) {
				logger.Debug().
					Str("domain", effDomain).
					Str("key", effKey).
					Msg("Skipping unchanged setting")
				continue
			}

			job := Job{Domain: effDomain, Key: effKey, Desired: setting.Value}
			if ok {
				job.Current = &current
			}
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// Entry is the read-only classification of one configured setting.
type Entry struct {
	Key     string
	Desired prefs.Value
	Current *prefs.Value
	InSync  bool
}

// DomainReport groups entries under their effective domain, in
// document order.
type DomainReport struct {
	Name    string
	Entries []Entry
	InSync  bool
}

// Classify performs the same resolution and comparison as Compute but
// produces a drift report instead of jobs and never fails on unknown
// domains: an unknown domain simply reads as all-absent.
func Classify(set []domains.DomainSettings, st store.Store) ([]DomainReport, error) {
	lookup, err := liveLookup(st, Options{SkipDomainCheck: true})
	if err != nil {
		return nil, err
	}

	var reports []DomainReport
	index := make(map[string]int)

	for _, domain := range set {
		for _, setting := range domain.Settings {
			effDomain, effKey := domains.Resolve(domain.Name, setting.Key, lookup)

			current, ok, err := st.Read(effDomain, effKey)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrPrefIO, "could not read %s", store.Address(effDomain, effKey))
			}

			entry := Entry{Key: effKey, Desired: setting.Value}
			if ok {
				entry.Current = &current
				entry.InSync = current.Equal(setting.Value)
			}

			pos, seen := index[effDomain]
			if !seen {
				pos = len(reports)
				index[effDomain] = pos
				reports = append(reports, DomainReport{Name: effDomain, InSync: true})
			}
			reports[pos].Entries = append(reports[pos].Entries, entry)
			if !entry.InSync {
				reports[pos].InSync = false
			}
		}
	}
	return reports, nil
}

// liveLookup builds the domain membership test from the store's
// enumeration. Enumeration failure is fatal only when the existence
// check is active; otherwise resolution falls back to pure shorthand
// expansion.
func liveLookup(st store.Store, opts Options) (domains.DomainLookup, error) {
	names, err := st.ListDomains()
	if err != nil {
		if !opts.SkipDomainCheck {
			return nil, errors.Wrap(err, errors.ErrPrefIO, "could not enumerate preference domains")
		}
		return func(string) bool { return false }, nil
	}
	members := make(map[string]bool, len(names))
	for _, name := range names {
		members[name] = true
	}
	return func(name string) bool { return members[name] }, nil
}
