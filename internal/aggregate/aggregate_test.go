package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/risk"
)

type call struct {
	kind string
	id   string
}

type fakeBackend struct {
	mu        sync.Mutex
	calls     []call
	updateErr error
	deleteErr map[string]error
	updates   []dto.ThreatUpdate
	block     chan struct{}
}

func (f *fakeBackend) UpdateBatch(_ context.Context, systemID string, updates []dto.ThreatUpdate) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"update", systemID})
	f.updates = updates
	return f.updateErr
}

func (f *fakeBackend) DeleteThreat(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"delete", id})
	return f.deleteErr[id]
}

func residual(v float64) *float64 { return &v }

func threat(id string, f risk.Factors) dto.Threat {
	return dto.Threat{
		ID:          id,
		Title:       "threat " + id,
		Type:        "Spoofing",
		Remediation: dto.Remediation{Description: "fix " + id},
		Risk:        dto.Risk{Factors: f},
	}
}

func loaded(t *testing.T, ids ...string) *Aggregate {
	t.Helper()
	a := New("sys-1")
	threats := make([]dto.Threat, 0, len(ids))
	for _, id := range ids {
		threats = append(threats, threat(id, risk.Uniform(4)))
	}
	a.Load(threats)
	return a
}

func TestLoad_SeedsResidual(t *testing.T) {
	a := New("sys-1")
	persisted := threat("a", risk.Uniform(8))
	persisted.Risk.ResidualRisk = residual(2.5)
	persisted.Remediation.Status = true

	a.Load([]dto.Threat{persisted, threat("b", risk.Uniform(6))})

	ea, err := a.Threat("a")
	require.NoError(t, err)
	assert.Equal(t, 2.5, ea.Risk().ResidualRisk())
	assert.Equal(t, 2.5, ea.Risk().CurrentRisk())

	eb, err := a.Threat("b")
	require.NoError(t, err)
	assert.Equal(t, 6.0, eb.Risk().ResidualRisk())

	require.NoError(t, eb.Risk().SetFactor(risk.Motive, 0))
	assert.Equal(t, 6.0, eb.Risk().ResidualRisk(), "seeding happens once per load")
}

func TestAddThreat(t *testing.T) {
	a := loaded(t, "a")

	e, err := a.AddThreat(dto.Threat{Title: "new", Risk: dto.Risk{Factors: risk.DefaultFactors()}})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID())
	assert.Equal(t, 5.0, e.Risk().InherentRisk())
	assert.Equal(t, 5.0, e.Risk().ResidualRisk())
	assert.False(t, e.Risk().Remediated())

	_, err = a.AddThreat(threat("a", nil))
	assert.ErrorIs(t, err, ErrDuplicateThreat)

	assert.Len(t, a.Threats(), 2)
}

func TestMarkDeleted_Idempotent(t *testing.T) {
	a := loaded(t, "a", "b", "c")

	require.NoError(t, a.MarkDeleted("b"))
	require.NoError(t, a.MarkDeleted("b"))

	assert.Equal(t, []string{"b"}, a.PendingDeletions())
	ids := []string{}
	for _, e := range a.Threats() {
		ids = append(ids, e.ID())
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	_, err := a.Threat("b")
	assert.ErrorIs(t, err, ErrThreatNotFound)
	assert.ErrorIs(t, a.MarkDeleted("zzz"), ErrThreatNotFound)
}

func TestBuildSaveBatch_ReflectsMemory(t *testing.T) {
	a := loaded(t, "a", "b")
	e, _ := a.Threat("a")
	require.NoError(t, e.Risk().SetFactor(risk.SkillLevel, "9"))
	e.Risk().SetResidualRisk(1.25)
	e.Risk().SetRemediationStatus(true)
	title := "renamed"
	e.SetDetails(&title, nil, nil)
	e.SetRemediationDescription("mfa")
	e.SetControlTags([]string{"V2.1.1 (ASVS)"})
	require.NoError(t, a.MarkDeleted("b"))

	batch := a.BuildSaveBatch()

	require.Len(t, batch.Updates, 1)
	u := batch.Updates[0]
	assert.Equal(t, "a", u.ThreatID)
	assert.Equal(t, "renamed", u.Title)
	assert.Equal(t, "Spoofing", u.Type)
	assert.Equal(t, dto.Remediation{Description: "mfa", Status: true, ControlTags: []string{"V2.1.1 (ASVS)"}}, u.Remediation)
	assert.Equal(t, 1.3, u.ResidualRisk)
	assert.Equal(t, "9", u.Factors[risk.SkillLevel])
	assert.Len(t, u.Factors, 16)
	assert.Equal(t, []string{"b"}, batch.Deletions)
}

func TestSave_UpdateThenDeletes(t *testing.T) {
	a := loaded(t, "a", "b", "c")
	require.NoError(t, a.MarkDeleted("b"))
	require.NoError(t, a.MarkDeleted("c"))
	be := &fakeBackend{}

	res, err := a.Save(context.Background(), be)

	require.NoError(t, err)
	assert.Equal(t, []call{{"update", "sys-1"}, {"delete", "b"}, {"delete", "c"}}, be.calls)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, []string{"b", "c"}, res.Deleted)
	assert.Empty(t, a.PendingDeletions())
}

func TestSave_UpdateFailureSkipsDeletions(t *testing.T) {
	a := loaded(t, "a", "b")
	require.NoError(t, a.MarkDeleted("b"))
	be := &fakeBackend{updateErr: errors.New("503 service unavailable")}

	res, err := a.Save(context.Background(), be)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpdateFailed)
	assert.ErrorIs(t, err, be.updateErr)
	assert.Equal(t, []call{{"update", "sys-1"}}, be.calls)
	assert.Equal(t, be.updateErr, res.UpdateErr)
	assert.Equal(t, []string{"b"}, a.PendingDeletions())
}

func TestSave_PartialDeletionFailure(t *testing.T) {
	a := loaded(t, "a", "b", "c", "d")
	for _, id := range []string{"b", "c", "d"} {
		require.NoError(t, a.MarkDeleted(id))
	}
	be := &fakeBackend{deleteErr: map[string]error{"c": errors.New("404 threat not found")}}

	res, err := a.Save(context.Background(), be)

	var partial *PartialDeletionError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"c"}, partial.ThreatIDs())
	assert.Contains(t, err.Error(), "c: 404 threat not found")
	assert.Equal(t, []string{"c"}, a.PendingDeletions())
	assert.Equal(t, []string{"b", "d"}, res.Deleted)

	_, err = a.Threat("c")
	assert.ErrorIs(t, err, ErrThreatNotFound, "failed deletions are not restored")

	rep := res.Report()
	assert.Equal(t, []dto.DeletionFailure{{ThreatID: "c", Error: "404 threat not found"}}, rep.FailedDeletions)
}

func TestSave_RetryAfterPartialFailure(t *testing.T) {
	a := loaded(t, "a", "b")
	require.NoError(t, a.MarkDeleted("b"))
	be := &fakeBackend{deleteErr: map[string]error{"b": errors.New("timeout")}}

	_, err := a.Save(context.Background(), be)
	require.Error(t, err)

	be.deleteErr = nil
	_, err = a.Save(context.Background(), be)
	require.NoError(t, err)
	assert.Empty(t, a.PendingDeletions())
}

func TestSave_RejectsConcurrentSave(t *testing.T) {
	a := loaded(t, "a")
	be := &fakeBackend{block: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := a.Save(context.Background(), be)
		done <- err
	}()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.saving
	}, time.Second, time.Millisecond)

	_, err := a.Save(context.Background(), &fakeBackend{})
	assert.ErrorIs(t, err, ErrSaveInProgress)

	close(be.block)
	require.NoError(t, <-done)
}

func TestCommitSave_KeepsDeletionsMarkedDuringSave(t *testing.T) {
	a := loaded(t, "a", "b", "c")
	require.NoError(t, a.MarkDeleted("a"))
	batch := a.BuildSaveBatch()
	require.NoError(t, a.MarkDeleted("b"))

	err := a.CommitSave(SaveResult{Updated: len(batch.Updates), Deleted: batch.Deletions})

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.PendingDeletions())
}
