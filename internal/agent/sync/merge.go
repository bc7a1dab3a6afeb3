package sync

import (
	"github.com/dmitrijs2005/fieldreport/internal/agent/api"
	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
)

// MergedReports is a single display list combining local records with one
// page of server-confirmed records, without double counting.
type MergedReports struct {
	Items []*models.Report
	Total int
}

// MergedPeople is the person-record analog of MergedReports.
type MergedPeople struct {
	Items []*models.Person
	Total int
}

// MergeReports prepends local records (newest capture first, as returned by
// the store) ahead of the server page and suppresses server records whose id
// is already known locally; the local copy wins for display, so synced and
// rejected captures stay visible with their local state. The total equals
// the server total plus local records the server total cannot reflect.
func MergeReports(local []*models.Report, page *api.ReportPage) MergedReports {
	server := make([]*models.Report, 0, len(page.Items))
	for _, it := range page.Items {
		server = append(server, it.ToModel())
	}
	items, total := mergeRecords(local, server, page.Total,
		func(r *models.Report) string { return r.RemoteID })
	return MergedReports{Items: items, Total: total}
}

// MergePeople applies the same reconciliation to person records.
func MergePeople(local []*models.Person, page *api.PersonPage) MergedPeople {
	server := make([]*models.Person, 0, len(page.Items))
	for _, it := range page.Items {
		server = append(server, it.ToModel())
	}
	items, total := mergeRecords(local, server, page.Total,
		func(p *models.Person) string { return p.RemoteID })
	return MergedPeople{Items: items, Total: total}
}

func mergeRecords[T any](local, server []T, serverTotal int, remoteID func(T) string) ([]T, int) {
	known := make(map[string]struct{}, len(local))
	for _, l := range local {
		if id := remoteID(l); id != "" {
			known[id] = struct{}{}
		}
	}

	out := make([]T, 0, len(local)+len(server))
	notReflected := 0
	for _, l := range local {
		out = append(out, l)
		if remoteID(l) == "" {
			notReflected++
		}
	}

	for _, s := range server {
		if _, ok := known[remoteID(s)]; ok {
			continue
		}
		out = append(out, s)
	}

	return out, serverTotal + notReflected
}
