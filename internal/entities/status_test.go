package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Encode(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		want   string
	}{
		{"pending простой", Status{Outcome: OutcomePending}, "pending"},
		{"forwarded простой", Status{Outcome: OutcomeForwarded, Role: "registrar"}, "forwarded"},
		{"approved простой", Status{Outcome: OutcomeApproved, Role: "registrar"}, "approved"},
		{"rejected простой", Status{Outcome: OutcomeRejected, Role: "asst_store"}, "rejected"},
		{"pending документный без суффикса", Status{Outcome: OutcomePending, Suffixed: true}, "pending"},
		{"forwarded документный", Status{Outcome: OutcomeForwarded, Role: "principal", Suffixed: true}, "forwarded_to_principal"},
		{"approved документный", Status{Outcome: OutcomeApproved, Role: "principal", Suffixed: true}, "approved_by_principal"},
		{"rejected документный", Status{Outcome: OutcomeRejected, Role: "registrar", Suffixed: true}, "rejected_by_registrar"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.status.Encode())
		})
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("forwarded_to_registrar")
	require.NoError(t, err)
	assert.Equal(t, OutcomeForwarded, status.Outcome)
	assert.Equal(t, Role("registrar"), status.Role)
	assert.True(t, status.Suffixed)

	status, err = ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApproved, status.Outcome)
	assert.False(t, status.Suffixed)

	_, err = ParseStatus("unknown_status")
	assert.Error(t, err)

	// Суффикс без роли — не статус.
	_, err = ParseStatus("approved_by_")
	assert.Error(t, err)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, Status{Outcome: OutcomePending}.IsTerminal())
	assert.False(t, Status{Outcome: OutcomeForwarded, Role: "registrar"}.IsTerminal())
	assert.True(t, Status{Outcome: OutcomeApproved, Role: "registrar"}.IsTerminal())
	assert.True(t, Status{Outcome: OutcomeRejected, Role: "plumber", Suffixed: true}.IsTerminal())
}

func TestStatus_JSONRoundTrip(t *testing.T) {
	original := Status{Outcome: OutcomeApproved, Role: "principal", Suffixed: true}

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"approved_by_principal"`, string(raw))

	var decoded Status
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)
}

func TestRequest_Clone_Independent(t *testing.T) {
	qty := 3
	original := &Request{
		ID:           "r1",
		Quantity:     &qty,
		ApprovalFlow: []Role{"librarian", "registrar"},
		History:      []HistoryEntry{{Action: ActionCreated, Role: "librarian"}},
	}

	cp := original.Clone()
	cp.ApprovalFlow[0] = "plumber"
	cp.History[0].Action = ActionRejected
	*cp.Quantity = 99

	assert.Equal(t, Role("librarian"), original.ApprovalFlow[0])
	assert.Equal(t, ActionCreated, original.History[0].Action)
	assert.Equal(t, 3, *original.Quantity)
}
