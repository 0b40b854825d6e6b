package domain

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), pow10(TokenDecimals))
}

func TestOfferedActions(t *testing.T) {
	tests := []struct {
		name     string
		approved *big.Int
		expected []Action
	}{
		{name: "nil allowance", approved: nil, expected: []Action{ActionApprove, ActionExit}},
		{name: "zero allowance", approved: big.NewInt(0), expected: []Action{ActionApprove, ActionExit}},
		{name: "exactly threshold", approved: tokens(100), expected: []Action{ActionApprove, ActionExit}},
		{name: "one wei above threshold", approved: new(big.Int).Add(tokens(100), big.NewInt(1)), expected: []Action{ActionStake, ActionExit}},
		{name: "200 tokens", approved: tokens(200), expected: []Action{ActionStake, ActionExit}},
		{name: "full approval", approved: ApprovalAmount(), expected: []Action{ActionStake, ActionExit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OfferedActions(tt.approved))
		})
	}
}

func TestApprovalConstants(t *testing.T) {
	assert.Equal(t, "100000000000000000000", ApprovalThreshold().String())
	assert.Equal(t, "1000000000000000000000000000", ApprovalAmount().String())

	// callers must not be able to mutate the shared values
	ApprovalThreshold().SetInt64(1)
	assert.Equal(t, "100000000000000000000", ApprovalThreshold().String())
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{ActionApprove, ActionStake, ActionExit} {
		parsed, ok := ParseAction(a.String())
		assert.True(t, ok)
		assert.Equal(t, a, parsed)
	}

	_, ok := ParseAction("withdraw")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Action(42).String())
}

func TestActionJSON(t *testing.T) {
	data, err := json.Marshal([]Action{ActionStake, ActionExit})
	assert.NoError(t, err)
	assert.JSONEq(t, `["stake","exit"]`, string(data))

	var back []Action
	assert.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Action{ActionStake, ActionExit}, back)

	assert.Error(t, json.Unmarshal([]byte(`["harvest"]`), &back))
}
