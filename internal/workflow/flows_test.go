package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-system/internal/entities"
)

func TestPolicyFor_AllTypes(t *testing.T) {
	cases := []struct {
		reqType    entities.RequestType
		roles      []entities.Role
		collection string
	}{
		{entities.TypeWorkshop, []entities.Role{"workshop_instructor", "asst_store", "registrar"}, "equipmentRequests"},
		{entities.TypeLab, []entities.Role{"lab_assistant", "asst_store", "registrar"}, "equipmentRequests"},
		{entities.TypeLibraryStock, []entities.Role{"librarian", "asst_store", "registrar"}, "equipmentRequests"},
		{entities.TypePlumbingStock, []entities.Role{"plumber", "technician", "registrar"}, "maintenanceRequests"},
		{entities.TypeElectrical, []entities.Role{"electrician", "technician", "registrar"}, "maintenanceRequests"},
		{entities.TypeDocument, []entities.Role{"clerk", "registrar", "principal"}, "documentRequests"},
	}

	for _, tc := range cases {
		t.Run(string(tc.reqType), func(t *testing.T) {
			policy, err := PolicyFor(tc.reqType)
			require.NoError(t, err)
			assert.Equal(t, tc.roles, policy.Roles)
			assert.Equal(t, tc.collection, policy.Collection)
		})
	}

	_, err := PolicyFor("unknown")
	assert.Error(t, err)
}

func TestPolicyFor_DocumentIsPerUser(t *testing.T) {
	policy, err := PolicyFor(entities.TypeDocument)
	require.NoError(t, err)
	assert.True(t, policy.PerUser)
	assert.True(t, policy.Suffixed)
}

func TestRequestPath(t *testing.T) {
	req := &entities.Request{ID: "abc", InstituteID: 7, Type: entities.TypeLab}
	path, err := RequestPath(req)
	require.NoError(t, err)
	assert.Equal(t, "institutes/7/equipmentRequests/abc", path)

	// Документные заявки адресуются через владельца.
	doc := &entities.Request{ID: "d1", InstituteID: 7, Type: entities.TypeDocument, CreatedBy: "42"}
	path, err = RequestPath(doc)
	require.NoError(t, err)
	assert.Equal(t, "institutes/7/documentRequests/42/d1", path)

	// Без владельца путь документной заявки не построить.
	doc.CreatedBy = ""
	_, err = RequestPath(doc)
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	req := &entities.Request{
		Status:              entities.Status{Outcome: entities.OutcomePending},
		CurrentApproverRole: "asst_store",
	}
	assert.True(t, CanTransition(req, "asst_store"))
	assert.False(t, CanTransition(req, "registrar"))

	req.Status = entities.Status{Outcome: entities.OutcomeApproved, Role: "registrar"}
	assert.False(t, CanTransition(req, "asst_store"))
}
