package domains

import "strings"

// GlobalDomain is the name of the global preference domain. It is never
// shorthand-expanded and never needs to appear in the live domain list.
const GlobalDomain = "NSGlobalDomain"

// shorthandPrefix is prepended to configured domain names that are
// neither global nor literal system domains.
const shorthandPrefix = "com.apple."

// DomainLookup reports whether a name exists in the live domain
// enumeration. A nil lookup means no enumeration is available and the
// shorthand rule applies unconditionally.
type DomainLookup func(name string) bool

// Resolve maps a configured domain/key pair to the effective store
// domain/key pair. It is pure: the live-domain membership test is
// injected, never performed here.
//
//	Resolve("NSGlobalDomain", "Foo", nil)     -> ("NSGlobalDomain", "Foo")
//	Resolve("NSGlobalDomain.bar", "Baz", nil) -> ("NSGlobalDomain", "bar.Baz")
//	Resolve("finder", "ShowPathbar", nil)     -> ("com.apple.finder", "ShowPathbar")
//
// A configured name that already matches an entry in the live domain
// enumeration is used literally; the membership test runs before the
// shorthand expansion so a literal system domain is never mangled into
// com.apple.<literal>.
func Resolve(domain, key string, lookup DomainLookup) (string, string) {
	if domain == GlobalDomain {
		return GlobalDomain, key
	}
	if suffix, ok := strings.CutPrefix(domain, GlobalDomain+"."); ok {
		return GlobalDomain, suffix + "." + key
	}
	if lookup != nil && lookup(domain) {
		return domain, key
	}
	return shorthandPrefix + domain, key
}
