package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"tzu-threatmodel/internal/dto"
)

var (
	ErrUpdateFailed   = errors.New("batch update failed")
	ErrSaveInProgress = errors.New("save already in progress")
)

// Backend сохраняет пакет: UpdateBatch одним запросом (всё или ничего),
// DeleteThreat по разу на каждую отложенную угрозу.
type Backend interface {
	UpdateBatch(ctx context.Context, systemID string, updates []dto.ThreatUpdate) error
	DeleteThreat(ctx context.Context, threatID string) error
}

type DeletionFailure struct {
	ThreatID string
	Err      error
}

type SaveResult struct {
	// при ошибке обновления удаления не выполнялись
	UpdateErr error
	Updated   int
	Deleted   []string
	Failures  []DeletionFailure
}

// PartialDeletionError: обновление прошло, часть удалений нет.
type PartialDeletionError struct {
	Failures []DeletionFailure
}

func (e *PartialDeletionError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.ThreatID, f.Err))
	}
	return fmt.Sprintf("update saved but %d deletion(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialDeletionError) ThreatIDs() []string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.ThreatID)
	}
	return ids
}

// CommitSave применяет результат к очереди удалений. После ошибки обновления
// ничего не меняется; удалённые id уходят из очереди, неудачные остаются
// (в активный набор не возвращаются). Ошибка перечисляет все неудачи.
func (a *Aggregate) CommitSave(res SaveResult) error {
	if res.UpdateErr != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, res.UpdateErr)
	}

	a.mu.Lock()
	for _, id := range res.Deleted {
		if _, ok := a.pendingSet[id]; !ok {
			continue
		}
		delete(a.pendingSet, id)
		for i, pid := range a.pending {
			if pid == id {
				a.pending = append(a.pending[:i], a.pending[i+1:]...)
				break
			}
		}
	}
	a.mu.Unlock()

	if len(res.Failures) > 0 {
		return &PartialDeletionError{Failures: res.Failures}
	}
	return nil
}

// Save: сначала пакетное обновление, и только после успеха по одному удалению
// на каждый id. Ошибки собираются, повторов нет.
func (a *Aggregate) Save(ctx context.Context, b Backend) (SaveResult, error) {
	a.mu.Lock()
	if a.saving {
		a.mu.Unlock()
		return SaveResult{}, ErrSaveInProgress
	}
	a.saving = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.saving = false
		a.mu.Unlock()
	}()

	batch := a.BuildSaveBatch()

	var res SaveResult
	if err := b.UpdateBatch(ctx, a.systemID, batch.Updates); err != nil {
		slog.Warn("batch update failed", "system_id", a.systemID, "err", err)
		res.UpdateErr = err
		return res, a.CommitSave(res)
	}
	res.Updated = len(batch.Updates)

	for _, id := range batch.Deletions {
		if err := b.DeleteThreat(ctx, id); err != nil {
			slog.Warn("threat deletion failed", "system_id", a.systemID, "threat_id", id, "err", err)
			res.Failures = append(res.Failures, DeletionFailure{ThreatID: id, Err: err})
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}

	slog.Info("saved threat aggregate",
		"system_id", a.systemID,
		"updated", res.Updated,
		"deleted", len(res.Deleted),
		"failed_deletions", len(res.Failures),
	)
	return res, a.CommitSave(res)
}

// Report: результат в формате API.
func (r SaveResult) Report() dto.SaveReport {
	rep := dto.SaveReport{
		Updated:         r.Updated,
		Deleted:         append([]string{}, r.Deleted...),
		FailedDeletions: []dto.DeletionFailure{},
	}
	for _, f := range r.Failures {
		rep.FailedDeletions = append(rep.FailedDeletions, dto.DeletionFailure{ThreatID: f.ThreatID, Error: f.Err.Error()})
	}
	return rep
}
