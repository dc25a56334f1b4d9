package auth

import (
	"errors"
	"strings"
)

// IdentityRef is a syntactically validated reference to a directory identity,
// as typed by an operator in the role assignment console. Construct one with
// ParseIdentityRef; the zero value is invalid.
type IdentityRef string

// ErrInvalidIdentityRef reports a malformed identity reference. Callers
// surface this distinctly from generic assignment failures.
var ErrInvalidIdentityRef = errors.New("invalid identity format")

const maxIdentityRefLen = 128

// ParseIdentityRef validates the textual form of an identity reference.
// References are the opaque user IDs issued by the identity provider:
// non-empty, bounded length, and limited to a conservative character set.
func ParseIdentityRef(s string) (IdentityRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxIdentityRefLen {
		return "", ErrInvalidIdentityRef
	}
	for _, r := range s {
		if !isIdentityRefRune(r) {
			return "", ErrInvalidIdentityRef
		}
	}
	return IdentityRef(s), nil
}

func isIdentityRefRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_' || r == '@':
		return true
	default:
		return false
	}
}

func (ref IdentityRef) String() string { return string(ref) }
