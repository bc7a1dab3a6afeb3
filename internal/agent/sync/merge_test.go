package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fieldreport/internal/agent/api"
	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
)

func localReport(key int64, remoteID string, state models.SyncState) *models.Report {
	return &models.Report{
		LocalKey:     key,
		RemoteID:     remoteID,
		SyncState:    state,
		Municipality: "Oaxaca de Juarez",
		NeedType:     models.NeedTypeWater,
	}
}

func serverReport(id string) api.ServerReport {
	return api.ServerReport{
		ID:        id,
		Municipio: "Oaxaca de Juarez",
		NeedType:  string(models.NeedTypeWater),
	}
}

func TestMergeReports_PendingFirstThenServerPage(t *testing.T) {
	local := []*models.Report{
		localReport(2, "", models.SyncStatePending),
		localReport(1, "", models.SyncStatePending),
	}
	page := &api.ReportPage{
		Items: []api.ServerReport{serverReport("a"), serverReport("b")},
		Total: 2,
	}

	merged := MergeReports(local, page)

	require.Len(t, merged.Items, 4)
	assert.Equal(t, int64(2), merged.Items[0].LocalKey)
	assert.Equal(t, int64(1), merged.Items[1].LocalKey)
	assert.Equal(t, "a", merged.Items[2].RemoteID)
	assert.Equal(t, "b", merged.Items[3].RemoteID)
	assert.Equal(t, 4, merged.Total)
}

func TestMergeReports_SuppressesServerCopyOfKnownRecord(t *testing.T) {
	// a record synced from this device also appears in the server page;
	// the local copy wins and the server copy is dropped
	local := []*models.Report{
		localReport(3, "", models.SyncStatePending),
		localReport(1, "srv-1", models.SyncStateSynced),
	}
	page := &api.ReportPage{
		Items: []api.ServerReport{serverReport("srv-1"), serverReport("srv-9")},
		Total: 2,
	}

	merged := MergeReports(local, page)

	require.Len(t, merged.Items, 3)
	assert.Equal(t, int64(3), merged.Items[0].LocalKey)
	assert.Equal(t, int64(1), merged.Items[1].LocalKey)
	assert.Equal(t, "srv-9", merged.Items[2].RemoteID)
	assert.Equal(t, 3, merged.Total, "server total already covers the synced record")
}

func TestMergeReports_SyncedRecordShownExactlyOnce(t *testing.T) {
	local := []*models.Report{localReport(1, "srv-1", models.SyncStateSynced)}
	page := &api.ReportPage{Items: []api.ServerReport{serverReport("srv-1")}, Total: 1}

	merged := MergeReports(local, page)

	require.Len(t, merged.Items, 1)
	assert.Equal(t, int64(1), merged.Items[0].LocalKey, "the local copy is the one displayed")
	assert.Equal(t, "srv-1", merged.Items[0].RemoteID)
	assert.Equal(t, models.SyncStateSynced, merged.Items[0].SyncState)
	assert.Equal(t, 1, merged.Total)
}

func TestMergeReports_RejectedRecordsRemainVisible(t *testing.T) {
	local := []*models.Report{
		localReport(2, "", models.SyncStatePending),
		localReport(1, "", models.SyncStateRejected),
	}
	page := &api.ReportPage{Total: 0}

	merged := MergeReports(local, page)

	require.Len(t, merged.Items, 2)
	assert.Equal(t, int64(2), merged.Items[0].LocalKey)
	assert.Equal(t, int64(1), merged.Items[1].LocalKey)
	assert.Equal(t, models.SyncStateRejected, merged.Items[1].SyncState)
	assert.Equal(t, 2, merged.Total)
}

func TestMergeReports_EmptyBothSides(t *testing.T) {
	merged := MergeReports(nil, &api.ReportPage{})
	assert.Empty(t, merged.Items)
	assert.Equal(t, 0, merged.Total)
}

func TestMergePeople_DedupAndTotals(t *testing.T) {
	local := []*models.Person{
		{LocalKey: 5, SyncState: models.SyncStatePending, Name: "Maria Lopez"},
		{LocalKey: 4, RemoteID: "p-1", SyncState: models.SyncStateSynced, Name: "Juan Perez"},
	}
	page := &api.PersonPage{
		Items: []api.ServerPerson{
			{ID: "p-1", Name: "Juan Perez"},
			{ID: "p-2", Name: "Ana Cruz"},
		},
		Total: 2,
	}

	merged := MergePeople(local, page)

	require.Len(t, merged.Items, 3)
	assert.Equal(t, "Maria Lopez", merged.Items[0].Name)
	assert.Equal(t, "Juan Perez", merged.Items[1].Name)
	assert.Equal(t, int64(4), merged.Items[1].LocalKey, "local copy of the synced contact wins")
	assert.Equal(t, "p-2", merged.Items[2].RemoteID)
	assert.Equal(t, 3, merged.Total)
}
