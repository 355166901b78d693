package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_BreakerInadequateForcesFail(t *testing.T) {
	// GIVEN cable and thermal both adequate
	// WHEN the breaker is undersized
	v := Classify(StatusInadequate, StatusAdequate, StatusAdequate)

	// THEN the verdict is FAIL with only the breaker cause
	assert.Equal(t, VerdictFail, v.Status)
	assert.Equal(t, []Cause{CauseBreakerUndersized}, v.Causes)
}

func TestClassify_Precedence(t *testing.T) {
	I, X, A := StatusIndeterminate, StatusInadequate, StatusAdequate
	tests := []struct {
		name                    string
		breaker, cable, thermal Status
		want                    VerdictStatus
		causes                  []Cause
	}{
		{"all adequate", A, A, A, VerdictPass, nil},
		{"breaker beats missing inputs", X, I, I, VerdictFail, []Cause{CauseBreakerUndersized}},
		{"cable fails", A, X, A, VerdictFail, []Cause{CauseCableUndersized}},
		{"thermal fails", A, A, X, VerdictFail, []Cause{CauseThermalWithstandExceeded}},
		{"both fail", A, X, X, VerdictFail, []Cause{CauseCableUndersized, CauseThermalWithstandExceeded}},
		{"fail beats indeterminate breaker", I, X, A, VerdictFail, []Cause{CauseCableUndersized}},
		{"breaker missing", I, A, A, VerdictNeedMore, []Cause{CauseBreakerInputMissing}},
		{"cable and thermal missing", A, I, I, VerdictNeedMore, []Cause{CauseCableInputMissing, CauseThermalInputMissing}},
		{"all missing", I, I, I, VerdictNeedMore, []Cause{CauseBreakerInputMissing, CauseCableInputMissing, CauseThermalInputMissing}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Classify(tc.breaker, tc.cable, tc.thermal)
			assert.Equal(t, tc.want, v.Status)
			assert.Equal(t, tc.causes, v.Causes)
		})
	}
}
