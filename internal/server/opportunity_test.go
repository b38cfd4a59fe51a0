package server

import (
	"net/http"
	"testing"

	"ngolib/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostOpportunityAccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/postOpportunity", `{"title":"x","location":"y"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Unauthorized", body["error"])
	assert.NotContains(t, body, "message")

	_, cookies := env.login(t, "ana@example.com", types.RoleUser)
	rec = env.do(http.MethodPost, "/api/postOpportunity", `{"title":"x","location":"y"}`, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "Only NGOs can post opportunities", body["error"])
	assert.NotContains(t, body, "message")

	// other guarded routes keep {"message": ...}
	rec = env.do(http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rec)["message"])

	rec = env.do(http.MethodGet, "/api/profile/ngo-contact", "", cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NGO access required", decodeBody(t, rec)["message"])
}

func TestPostOpportunity(t *testing.T) {
	env := newTestEnv(t)
	owner, cookies := env.login(t, "ngo@example.com", types.RoleNGO)

	rec := env.do(http.MethodPost, "/api/postOpportunity", `{"title":"x","location":"y"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NGO contact information not found", decodeBody(t, rec)["error"])

	ngo := env.store.addNGO(owner.ID, "Helping Hands", true)
	env.store.tags = []*types.Tag{{ID: 1, Tag: "climate"}, {ID: 2, Tag: "education"}}

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{
			name:   "missing title",
			body:   `{"description":"Missing title","location":"Antwerp","start":"2025-06-01","end":"2025-06-10"}`,
			status: http.StatusBadRequest,
			error:  "Missing required fields",
		},
		{
			name:   "bad date",
			body:   `{"title":"x","location":"Antwerp","start":"June first"}`,
			status: http.StatusBadRequest,
			error:  "Invalid start date",
		},
		{
			name:   "end before start",
			body:   `{"title":"x","location":"Antwerp","start":"2025-06-10","end":"2025-06-01"}`,
			status: http.StatusBadRequest,
			error:  "End date is before start date",
		},
		{
			name:   "unknown tag",
			body:   `{"title":"x","location":"Antwerp","tags":["sports"]}`,
			status: http.StatusBadRequest,
			error:  "Unknown tags: sports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/postOpportunity", tt.body, cookies)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.error, decodeBody(t, rec)["error"])
		})
	}

	rec = env.do(http.MethodPost, "/api/postOpportunity",
		`{"title":"Test Opportunity","description":"A chance to help our NGO!","location":"Brussels, Belgium","start":"2025-06-01","end":"2025-06-30","tags":["education","education"]}`,
		cookies)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Opportunity posted successfully", body["message"])
	assert.EqualValues(t, 1, body["opportunityId"])

	require.Len(t, env.store.opps, 1)
	opp := env.store.opps[0]
	assert.Equal(t, ngo.ID, opp.NGOID)
	assert.Equal(t, ngo.ContactEmail, opp.ContactEmail)
	assert.Equal(t, ngo.PhoneNr, opp.ContactPhone)
	require.NotNil(t, opp.Start)
	assert.Equal(t, "2025-06-01", opp.Start.Format("2006-01-02"))

	assert.Equal(t, []*types.TagPair{{EntityID: 1, TagID: 2}}, env.store.oppPairs)
}
