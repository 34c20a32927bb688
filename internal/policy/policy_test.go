package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/michaelberns/wtt/internal/session"
	"github.com/michaelberns/wtt/models"
)

var (
	client = session.Session{UserID: "u-client", Name: "Ann", Role: models.RoleClient}
	labour = session.Session{UserID: "u-labour", Name: "Bob", Role: models.RoleLabour}
	anon   = session.Session{}
)

func TestCreatorOnlyPredicates(t *testing.T) {
	job := models.Job{ID: "j1", CreatedBy: "u-client", Status: models.JobOpen}

	require.True(t, IsCreator(client, job))
	require.True(t, CanEditJob(client, job))
	require.True(t, CanDeleteJob(client, job))
	require.True(t, CanManageOffers(client, job))

	require.False(t, IsCreator(labour, job))
	require.False(t, CanEditJob(labour, job))
	require.False(t, CanDeleteJob(labour, job))
	require.False(t, CanManageOffers(labour, job))

	require.False(t, IsCreator(anon, job))
	require.False(t, CanEditJob(anon, job))
}

func TestRolePredicates(t *testing.T) {
	require.True(t, CanPostJob(client))
	require.False(t, CanPostJob(labour))
	require.False(t, CanPostJob(anon))

	require.True(t, CanCreateOffer(labour))
	require.False(t, CanCreateOffer(client))
	require.False(t, CanCreateOffer(anon))
}

func TestCanRequestClose(t *testing.T) {
	job := models.Job{ID: "j1", CreatedBy: "u-client", AcceptedBy: "u-labour", Status: models.JobReserved}

	require.True(t, CanRequestClose(labour, job))
	require.False(t, CanRequestClose(client, job))
	require.False(t, CanRequestClose(anon, job))

	// Без принятого исполнителя запрашивать завершение некому
	open := models.Job{ID: "j2", CreatedBy: "u-client", Status: models.JobOpen}
	require.False(t, CanRequestClose(labour, open))
}
