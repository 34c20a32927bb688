package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    JobStatus
		wantErr bool
	}{
		{"open", JobOpen, false},
		{"reserved", JobReserved, false},
		{"closed", JobClosed, false},
		{"accepted", JobReserved, false},
		{"completed", JobClosed, false},
		{"", "", true},
		{"OPEN", "", true},
		{"in_progress", "", true},
	}
	for _, tt := range tests {
		got, err := ParseJobStatus(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestJobStatusUnmarshalAliases(t *testing.T) {
	var j Job
	err := json.Unmarshal([]byte(`{"id":"j1","title":"t","status":"accepted"}`), &j)
	require.NoError(t, err)
	require.Equal(t, JobReserved, j.Status)

	err = json.Unmarshal([]byte(`{"id":"j1","title":"t","status":"completed"}`), &j)
	require.NoError(t, err)
	require.Equal(t, JobClosed, j.Status)
}

func TestJobStatusUnmarshalUnknownFails(t *testing.T) {
	var j Job
	err := json.Unmarshal([]byte(`{"id":"j1","status":"archived"}`), &j)
	require.Error(t, err)
}

func TestOfferStatusUnmarshal(t *testing.T) {
	var o Offer
	err := json.Unmarshal([]byte(`{"id":"o1","jobId":"j1","status":"pending"}`), &o)
	require.NoError(t, err)
	require.Equal(t, OfferPending, o.Status)

	err = json.Unmarshal([]byte(`{"id":"o1","status":"withdrawn"}`), &o)
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("client")
	require.NoError(t, err)
	require.Equal(t, RoleClient, r)

	r, err = ParseRole("labour")
	require.NoError(t, err)
	require.Equal(t, RoleLabour, r)

	_, err = ParseRole("admin")
	require.Error(t, err)
}

func TestRoleUnmarshalUnknownFails(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":"u1","name":"n","role":"moderator"}`), &u)
	require.Error(t, err)
}
