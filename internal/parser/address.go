package parser

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Address header formats, tried in priority order:
//
//	"Display Name" <addr>
//	<addr>
//	addr (Display Name)
//	addr
var (
	angleAddrRe   = regexp.MustCompile(`^(.*?)\s*<([^<>]+)>$`)
	commentAddrRe = regexp.MustCompile(`^([^\s(]+@[^\s(]+?)\s*\(([^)]*)\)$`)
	bareAddrRe    = regexp.MustCompile(`^[^\s<>]+@[^\s<>]+$`)
)

// ParseAddress extracts an email address and optional display name from a
// raw address header. Malformed input is tolerated: if no format matches but
// the string contains "@", the whole string is taken as the address; if
// nothing matches, both results are empty and a warning is logged. Header
// parsing failures are common and must not fail a sync.
func ParseAddress(raw string) (email, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	if m := angleAddrRe.FindStringSubmatch(raw); m != nil {
		name = strings.TrimSpace(m[1])
		name = strings.Trim(name, `"`)
		return strings.TrimSpace(m[2]), name
	}

	if m := commentAddrRe.FindStringSubmatch(raw); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}

	if bareAddrRe.MatchString(raw) {
		return raw, ""
	}

	if strings.Contains(raw, "@") {
		return raw, ""
	}

	logrus.Warnf("unparseable address header %q", raw)
	return "", ""
}
