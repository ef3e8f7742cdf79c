package aggregate

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"tzu-threatmodel/internal/dto"
)

var (
	ErrThreatNotFound  = errors.New("threat not found")
	ErrDuplicateThreat = errors.New("threat already present")
)

// SaveBatch: всё, что уходит за одно сохранение: записи активных угроз и id на удаление.
type SaveBatch struct {
	Updates   []dto.ThreatUpdate
	Deletions []string
}

// Aggregate: редактируемый набор угроз одной системы.
// Безопасен для конкурентного доступа; второе параллельное Save получает ErrSaveInProgress.
type Aggregate struct {
	systemID string

	mu         sync.Mutex
	order      []string
	threats    map[string]*Entry
	pending    []string
	pendingSet map[string]struct{}
	saving     bool
}

func New(systemID string) *Aggregate {
	return &Aggregate{
		systemID:   systemID,
		threats:    map[string]*Entry{},
		pendingSet: map[string]struct{}{},
	}
}

func (a *Aggregate) SystemID() string { return a.systemID }

// Load заменяет набор и сбрасывает отложенные удаления.
// Остаточный риск задаётся один раз: сохранённый или текущий собственный.
func (a *Aggregate) Load(threats []dto.Threat) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.order = make([]string, 0, len(threats))
	a.threats = make(map[string]*Entry, len(threats))
	a.pending = nil
	a.pendingSet = map[string]struct{}{}

	for _, t := range threats {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, dup := a.threats[t.ID]; dup {
			continue
		}
		a.threats[t.ID] = newEntry(t)
		a.order = append(a.order, t.ID)
	}
}

// AddThreat добавляет угрозу; id генерируется, если его нет.
func (a *Aggregate) AddThreat(t dto.Threat) (*Entry, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.threats[t.ID]; dup {
		return nil, errors.Wrapf(ErrDuplicateThreat, "%s", t.ID)
	}
	if _, deleted := a.pendingSet[t.ID]; deleted {
		return nil, errors.Wrapf(ErrDuplicateThreat, "%s is pending deletion", t.ID)
	}

	e := newEntry(t)
	a.threats[t.ID] = e
	a.order = append(a.order, t.ID)
	return e, nil
}

func (a *Aggregate) Threat(id string) (*Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.threats[id]
	if !ok {
		return nil, errors.Wrapf(ErrThreatNotFound, "%s", id)
	}
	return e, nil
}

// Threats: активные угрозы в порядке загрузки/создания.
func (a *Aggregate) Threats() []*Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*Entry, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.threats[id])
	}
	return out
}

// MarkDeleted убирает угрозу из набора и ставит id в очередь на удаление.
// Повторная пометка ничего не делает.
func (a *Aggregate) MarkDeleted(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, already := a.pendingSet[id]; already {
		return nil
	}
	if _, ok := a.threats[id]; !ok {
		return errors.Wrapf(ErrThreatNotFound, "%s", id)
	}

	delete(a.threats, id)
	for i, oid := range a.order {
		if oid == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.pendingSet[id] = struct{}{}
	a.pending = append(a.pending, id)
	return nil
}

// PendingDeletions: id на удаление в порядке пометки.
func (a *Aggregate) PendingDeletions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.pending...)
}

// BuildSaveBatch собирает запрос только из состояния в памяти.
func (a *Aggregate) BuildSaveBatch() SaveBatch {
	a.mu.Lock()
	entries := make([]*Entry, 0, len(a.order))
	for _, id := range a.order {
		entries = append(entries, a.threats[id])
	}
	deletions := append([]string{}, a.pending...)
	a.mu.Unlock()

	updates := make([]dto.ThreatUpdate, 0, len(entries))
	for _, e := range entries {
		updates = append(updates, e.update())
	}
	return SaveBatch{Updates: updates, Deletions: deletions}
}
