// Package services implements the agent's capture and display flows on top of
// the local repositories and the server client. Capture is local-first: a
// record is durably stored before any network attempt, and submission is left
// to the sync engine.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fieldreport/internal/agent/api"
	"github.com/dmitrijs2005/fieldreport/internal/agent/connectivity"
	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
	"github.com/dmitrijs2005/fieldreport/internal/agent/repositories/reports"
	"github.com/dmitrijs2005/fieldreport/internal/agent/sync"
	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

// SyncTrigger requests a sync pass without blocking.
type SyncTrigger interface {
	TriggerSync()
}

// ReportService owns the report capture, listing and deletion flows.
type ReportService struct {
	repo     reports.Repository
	api      *api.Client
	conn     connectivity.Port
	trigger  SyncTrigger
	pageSize int
	log      logging.Logger
}

func NewReportService(repo reports.Repository, client *api.Client, conn connectivity.Port, trigger SyncTrigger, pageSize int, log logging.Logger) *ReportService {
	return &ReportService{
		repo:     repo,
		api:      client,
		conn:     conn,
		trigger:  trigger,
		pageSize: pageSize,
		log:      log.With("module", "reports"),
	}
}

// Capture validates and durably stores a new report, then nudges the sync
// engine if the server looks reachable. The returned record carries the
// store-assigned local key.
func (s *ReportService) Capture(ctx context.Context, r *models.Report) (*models.Report, error) {
	if err := validateReport(r); err != nil {
		return nil, err
	}

	r.SyncState = models.SyncStatePending
	r.RemoteID = ""
	r.IdempotencyKey = uuid.NewString()
	if r.CapturedAt.IsZero() {
		r.CapturedAt = time.Now()
	}

	// the repository already wraps failures in ErrStorage
	key, err := s.repo.Add(ctx, r)
	if err != nil {
		return nil, err
	}
	r.LocalKey = key

	s.log.Info(ctx, "report captured", "local_key", key, "need_type", r.NeedType)

	if s.conn.Online() {
		s.trigger.TriggerSync()
	}
	return r, nil
}

// ListMerged returns the combined display list: local pending records first,
// then the first server page with locally known records suppressed. Offline,
// or when the server page cannot be fetched, it degrades to the local store.
func (s *ReportService) ListMerged(ctx context.Context) (sync.MergedReports, error) {
	local, err := s.repo.ListAll(ctx)
	if err != nil {
		return sync.MergedReports{}, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	if !s.conn.Online() {
		return sync.MergedReports{Items: local, Total: len(local)}, nil
	}

	page, err := s.api.ListReports(ctx, 1, s.pageSize)
	if err != nil {
		s.log.Warn(ctx, "server listing unavailable, showing local records", "error", err)
		return sync.MergedReports{Items: local, Total: len(local)}, nil
	}

	return sync.MergeReports(local, page), nil
}

// Delete removes a record locally, and from the server as well when the
// record was already confirmed. A synced record cannot be deleted offline:
// the server copy would survive and reappear on the next listing.
func (s *ReportService) Delete(ctx context.Context, localKey int64) error {
	rec, err := s.find(ctx, localKey)
	if err != nil {
		return err
	}

	if rec.Synced() {
		if !s.conn.Online() {
			return fmt.Errorf("%w: synced report can only be deleted while online", common.ErrUnavailable)
		}
		if err := s.api.DeleteReport(ctx, rec.RemoteID); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, localKey)
}

// SetStatus updates the triage status of a synced report on the server.
func (s *ReportService) SetStatus(ctx context.Context, localKey int64, status string) error {
	rec, err := s.find(ctx, localKey)
	if err != nil {
		return err
	}
	if !rec.Synced() {
		return fmt.Errorf("%w: report is not synced yet", common.ErrorNotFound)
	}
	if !s.conn.Online() {
		return fmt.Errorf("%w: status can only be changed while online", common.ErrUnavailable)
	}
	return s.api.UpdateReportStatus(ctx, rec.RemoteID, status)
}

func (s *ReportService) find(ctx context.Context, localKey int64) (*models.Report, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	for _, r := range all {
		if r.LocalKey == localKey {
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

// SyncSource exposes the report queue to the sync engine.
func (s *ReportService) SyncSource() sync.Source {
	return &reportSource{repo: s.repo, api: s.api}
}

type reportSource struct {
	repo reports.Repository
	api  *api.Client
}

func (s *reportSource) Name() string { return "reports" }

func (s *reportSource) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *reportSource) ListPending(ctx context.Context) ([]sync.Pending, error) {
	recs, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]sync.Pending, 0, len(recs))
	for _, rec := range recs {
		out = append(out, sync.Pending{
			LocalKey: rec.LocalKey,
			Submit: func(ctx context.Context) (string, error) {
				return s.api.CreateReport(ctx, rec)
			},
		})
	}
	return out, nil
}

func (s *reportSource) MarkSynced(ctx context.Context, localKey int64, remoteID string) error {
	return s.repo.MarkSynced(ctx, localKey, remoteID)
}

func (s *reportSource) MarkRejected(ctx context.Context, localKey int64, reason string) error {
	return s.repo.MarkRejected(ctx, localKey, reason)
}

func validateReport(r *models.Report) error {
	switch {
	case r.Municipality == "":
		return fmt.Errorf("municipality is required")
	case r.Community == "":
		return fmt.Errorf("community is required")
	case r.NeedType == "":
		return fmt.Errorf("need type is required")
	case r.Description == "":
		return fmt.Errorf("description is required")
	}
	return nil
}
