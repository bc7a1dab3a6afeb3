package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fieldreport/internal/agent/api"
	"github.com/dmitrijs2005/fieldreport/internal/agent/connectivity"
	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
	"github.com/dmitrijs2005/fieldreport/internal/agent/repositories/people"
	"github.com/dmitrijs2005/fieldreport/internal/agent/sync"
	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

// PersonService mirrors ReportService for community contacts.
type PersonService struct {
	repo     people.Repository
	api      *api.Client
	conn     connectivity.Port
	trigger  SyncTrigger
	pageSize int
	log      logging.Logger
}

func NewPersonService(repo people.Repository, client *api.Client, conn connectivity.Port, trigger SyncTrigger, pageSize int, log logging.Logger) *PersonService {
	return &PersonService{
		repo:     repo,
		api:      client,
		conn:     conn,
		trigger:  trigger,
		pageSize: pageSize,
		log:      log.With("module", "people"),
	}
}

// Capture durably stores a new person record and nudges the sync engine if
// the server looks reachable.
func (s *PersonService) Capture(ctx context.Context, p *models.Person) (*models.Person, error) {
	if err := validatePerson(p); err != nil {
		return nil, err
	}

	p.SyncState = models.SyncStatePending
	p.RemoteID = ""
	p.IdempotencyKey = uuid.NewString()
	if p.CapturedAt.IsZero() {
		p.CapturedAt = time.Now()
	}

	// the repository already wraps failures in ErrStorage
	key, err := s.repo.Add(ctx, p)
	if err != nil {
		return nil, err
	}
	p.LocalKey = key

	s.log.Info(ctx, "person captured", "local_key", key)

	if s.conn.Online() {
		s.trigger.TriggerSync()
	}
	return p, nil
}

// ListMerged returns local pending contacts followed by the first server
// page, degrading to the local store when offline.
func (s *PersonService) ListMerged(ctx context.Context) (sync.MergedPeople, error) {
	local, err := s.repo.ListAll(ctx)
	if err != nil {
		return sync.MergedPeople{}, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	if !s.conn.Online() {
		return sync.MergedPeople{Items: local, Total: len(local)}, nil
	}

	page, err := s.api.ListPeople(ctx, 1, s.pageSize)
	if err != nil {
		s.log.Warn(ctx, "server listing unavailable, showing local records", "error", err)
		return sync.MergedPeople{Items: local, Total: len(local)}, nil
	}

	return sync.MergePeople(local, page), nil
}

// Delete removes a contact locally, and from the server when already synced.
func (s *PersonService) Delete(ctx context.Context, localKey int64) error {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	var rec *models.Person
	for _, p := range all {
		if p.LocalKey == localKey {
			rec = p
			break
		}
	}
	if rec == nil {
		return common.ErrorNotFound
	}

	if rec.Synced() {
		if !s.conn.Online() {
			return fmt.Errorf("%w: synced record can only be deleted while online", common.ErrUnavailable)
		}
		if err := s.api.DeletePerson(ctx, rec.RemoteID); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, localKey)
}

// SyncSource exposes the person queue to the sync engine.
func (s *PersonService) SyncSource() sync.Source {
	return &personSource{repo: s.repo, api: s.api}
}

type personSource struct {
	repo people.Repository
	api  *api.Client
}

func (s *personSource) Name() string { return "people" }

func (s *personSource) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *personSource) ListPending(ctx context.Context) ([]sync.Pending, error) {
	recs, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]sync.Pending, 0, len(recs))
	for _, rec := range recs {
		out = append(out, sync.Pending{
			LocalKey: rec.LocalKey,
			Submit: func(ctx context.Context) (string, error) {
				return s.api.CreatePerson(ctx, rec)
			},
		})
	}
	return out, nil
}

func (s *personSource) MarkSynced(ctx context.Context, localKey int64, remoteID string) error {
	return s.repo.MarkSynced(ctx, localKey, remoteID)
}

func (s *personSource) MarkRejected(ctx context.Context, localKey int64, reason string) error {
	return s.repo.MarkRejected(ctx, localKey, reason)
}

func validatePerson(p *models.Person) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("name is required")
	case p.Role == "":
		return fmt.Errorf("role is required")
	}
	return nil
}
