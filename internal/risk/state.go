package risk

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrInvalidFactorName: ключ не из шестнадцати факторов (ошибка вызывающего кода).
var ErrInvalidFactorName = errors.New("invalid factor name")

// State: изменяемое состояние риска угрозы: сырые факторы, кэш собственного
// риска, статус меры и ручной остаточный риск. Безопасно для конкурентного доступа.
type State struct {
	mu         sync.Mutex
	factors    Factors
	score      Score
	residual   float64
	remediated bool
}

// NewState: при residual == nil остаточный берётся из собственного риска.
func NewState(factors Factors, remediated bool, residual *float64) *State {
	s := &State{
		factors:    factors.Clone(),
		remediated: remediated,
	}
	s.score = Compute(s.factors)
	if residual != nil {
		s.residual = ClampResidual(*residual)
	} else {
		s.residual = s.score.Inherent
	}
	return s
}

// SetFactor сохраняет сырое значение и пересчитывает собственный риск.
// Другого способа изменить собственный риск нет.
func (s *State) SetFactor(name string, value any) error {
	if !IsFactor(name) {
		return errors.Wrapf(ErrInvalidFactorName, "%q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.factors[name] = value
	s.score = Compute(s.factors)
	return nil
}

// SetFactors: при любом неизвестном имени ничего не применяется.
func (s *State) SetFactors(values map[string]any) error {
	for name := range values {
		if !IsFactor(name) {
			return errors.Wrapf(ErrInvalidFactorName, "%q", name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, v := range values {
		s.factors[name] = v
	}
	s.score = Compute(s.factors)
	return nil
}

// SetResidualRisk: значение ограничивается [0, 9] и округляется.
func (s *State) SetResidualRisk(v float64) {
	s.mu.Lock()
	s.residual = ClampResidual(v)
	s.mu.Unlock()
}

// SetRemediationStatus: остаточный риск не трогается.
func (s *State) SetRemediationStatus(applied bool) {
	s.mu.Lock()
	s.remediated = applied
	s.mu.Unlock()
}

func (s *State) Remediated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remediated
}

func (s *State) InherentRisk() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score.Inherent
}

func (s *State) ResidualRisk() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.residual
}

// CurrentRisk: остаточный при применённой мере, иначе собственный.
func (s *State) CurrentRisk() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *State) current() float64 {
	if s.remediated {
		return Round(s.residual)
	}
	return Round(s.score.Inherent)
}

// Factors: копия сырых значений.
func (s *State) Factors() Factors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factors.Clone()
}

// Snapshot: согласованный срез State только для чтения.
type Snapshot struct {
	Factors    Factors
	Score      Score
	Residual   float64
	Current    float64
	Remediated bool
}

// под одной блокировкой
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Factors:    s.factors.Clone(),
		Score:      s.score,
		Residual:   s.residual,
		Current:    s.current(),
		Remediated: s.remediated,
	}
}
