// Package claim contains the role-claim reconciliation domain logic: the
// classification of directory rejection messages into operator-facing claim
// errors.
package claim

import "strings"

// User-facing claim error messages. The directory signals rejections as text;
// classification maps the small set of known reasons onto these. Substring
// matching is a compatibility shim for directories without structured error
// kinds and is isolated here so the coupling to server wording has a single
// home.
const (
	// MsgDirectorCapacity is shown when the director seat limit is reached.
	MsgDirectorCapacity = "Access denied: The Director role is limited to two accounts only. Please log in as Management or Reception if you are not a Director."
	// MsgWrongPasscode is shown when the supplied passcode does not match.
	MsgWrongPasscode = "Access denied: Incorrect passcode. Please try again."
	// MsgPasscodeRequired is shown when a passcode-gated role was claimed
	// without one.
	MsgPasscodeRequired = "Access denied: A passcode is required for this role."
	// MsgGeneric is the fallback for unclassified failures.
	MsgGeneric = "Access denied. Please try again."
)

// Kind categorizes a classified claim rejection.
type Kind string

const (
	KindCapacity        Kind = "capacity"
	KindWrongPasscode   Kind = "wrong_passcode"
	KindMissingPasscode Kind = "missing_passcode"
	KindAccessDeniedRaw Kind = "access_denied"
	KindUnclassified    Kind = "unclassified"
)

// Classify maps a raw directory failure message to a user-facing claim error.
// Matching is case-insensitive and deterministic. A message that already reads
// as an access denial passes through verbatim so directory-specific detail is
// not lost.
func Classify(raw string) (Kind, string) {
	msg := strings.ToLower(raw)

	switch {
	case strings.Contains(msg, "director") && strings.Contains(msg, "maximum"):
		return KindCapacity, MsgDirectorCapacity
	case strings.Contains(msg, "incorrect passcode"):
		return KindWrongPasscode, MsgWrongPasscode
	case strings.Contains(msg, "passcode is required"):
		return KindMissingPasscode, MsgPasscodeRequired
	case strings.Contains(msg, "access denied"):
		return KindAccessDeniedRaw, raw
	default:
		return KindUnclassified, MsgGeneric
	}
}
