package aggregate

import (
	"sync"

	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/risk"
)

// Entry: одна угроза агрегата, описание плюс состояние риска.
type Entry struct {
	id string

	mu          sync.Mutex
	title       string
	threatType  string
	description string
	remediation string
	controlTags []string

	risk *risk.State
}

func newEntry(t dto.Threat) *Entry {
	return &Entry{
		id:          t.ID,
		title:       t.Title,
		threatType:  t.Type,
		description: t.Description,
		remediation: t.Remediation.Description,
		controlTags: append([]string(nil), t.Remediation.ControlTags...),
		risk:        t.State(),
	}
}

func (e *Entry) ID() string { return e.id }

// Risk: факторы, остаточный риск и статус меры меняются через него.
func (e *Entry) Risk() *risk.State { return e.risk }

// SetDetails: nil-аргументы не трогаются.
func (e *Entry) SetDetails(title, threatType, description *string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if title != nil {
		e.title = *title
	}
	if threatType != nil {
		e.threatType = *threatType
	}
	if description != nil {
		e.description = *description
	}
}

func (e *Entry) SetRemediationDescription(description string) {
	e.mu.Lock()
	e.remediation = description
	e.mu.Unlock()
}

func (e *Entry) SetControlTags(tags []string) {
	e.mu.Lock()
	e.controlTags = append([]string(nil), tags...)
	e.mu.Unlock()
}

// View: угроза с рассчитанной оценкой.
func (e *Entry) View() dto.Threat {
	snap := e.risk.Snapshot()
	residual := snap.Residual
	assessment := dto.NewAssessment(snap)

	e.mu.Lock()
	defer e.mu.Unlock()
	return dto.Threat{
		ID:          e.id,
		Title:       e.title,
		Type:        e.threatType,
		Description: e.description,
		Remediation: dto.Remediation{
			Description: e.remediation,
			Status:      snap.Remediated,
			ControlTags: append([]string(nil), e.controlTags...),
		},
		Risk:       dto.Risk{Factors: snap.Factors, ResidualRisk: &residual},
		Assessment: &assessment,
	}
}

func (e *Entry) update() dto.ThreatUpdate {
	snap := e.risk.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()
	return dto.ThreatUpdate{
		ThreatID:    e.id,
		Title:       e.title,
		Type:        e.threatType,
		Description: e.description,
		Remediation: dto.Remediation{
			Description: e.remediation,
			Status:      snap.Remediated,
			ControlTags: append([]string(nil), e.controlTags...),
		},
		ResidualRisk: snap.Residual,
		Factors:      snap.Factors,
	}
}
