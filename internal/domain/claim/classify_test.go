package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_DirectorCapacity(t *testing.T) {
	kind, msg := Classify("Access denied: Director role maximum reached")
	assert.Equal(t, KindCapacity, kind)
	assert.Equal(t, MsgDirectorCapacity, msg)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	kind, msg := Classify("DIRECTOR seats at MAXIMUM")
	assert.Equal(t, KindCapacity, kind)
	assert.Equal(t, MsgDirectorCapacity, msg)

	kind, msg = Classify("Incorrect Passcode")
	assert.Equal(t, KindWrongPasscode, kind)
	assert.Equal(t, MsgWrongPasscode, msg)
}

func TestClassify_WrongPasscode(t *testing.T) {
	kind, msg := Classify("access denied: incorrect passcode provided")
	assert.Equal(t, KindWrongPasscode, kind)
	assert.Equal(t, MsgWrongPasscode, msg)
}

func TestClassify_MissingPasscode(t *testing.T) {
	kind, msg := Classify("Access denied: A passcode is required for role management")
	assert.Equal(t, KindMissingPasscode, kind)
	assert.Equal(t, MsgPasscodeRequired, msg)
}

func TestClassify_AccessDeniedPassthrough(t *testing.T) {
	raw := "Access denied: identity is suspended"
	kind, msg := Classify(raw)
	assert.Equal(t, KindAccessDeniedRaw, kind)
	assert.Equal(t, raw, msg)
}

func TestClassify_UnrelatedFallsBack(t *testing.T) {
	kind, msg := Classify("network timeout")
	assert.Equal(t, KindUnclassified, kind)
	assert.Equal(t, MsgGeneric, msg)
}

func TestClassify_EmptyFallsBack(t *testing.T) {
	kind, msg := Classify("")
	assert.Equal(t, KindUnclassified, kind)
	assert.Equal(t, MsgGeneric, msg)
}

func TestClassify_Deterministic(t *testing.T) {
	for range 3 {
		kind, msg := Classify("Director count at maximum")
		assert.Equal(t, KindCapacity, kind)
		assert.Equal(t, MsgDirectorCapacity, msg)
	}
}
