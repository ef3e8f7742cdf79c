package dto

import (
	"encoding/json"

	"github.com/pkg/errors"

	"tzu-threatmodel/internal/risk"
)

// ErrInvalidPayload: тело запроса не той формы.
var ErrInvalidPayload = errors.New("invalid payload")

type Remediation struct {
	Description string   `json:"description"`
	Status      bool     `json:"status"`
	ControlTags []string `json:"control_tags,omitempty"`
}

// Risk: шестнадцать факторов плоско рядом с остаточным риском (nullable).
type Risk struct {
	Factors      risk.Factors
	ResidualRisk *float64
}

func (r Risk) MarshalJSON() ([]byte, error) {
	m := flattenFactors(r.Factors)
	m["residual_risk"] = r.ResidualRisk
	return json.Marshal(m)
}

func (r *Risk) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Factors = risk.Factors{}
	r.ResidualRisk = nil
	for k, v := range raw {
		if risk.IsFactor(k) {
			r.Factors[k] = v
		}
	}
	if v, ok := raw["residual_risk"]; ok && v != nil {
		n, ok := risk.ParseNumeric(v)
		if !ok {
			return errors.Wrap(ErrInvalidPayload, "residual_risk must be a number")
		}
		r.ResidualRisk = &n
	}
	return nil
}

// Assessment: значения, рассчитанные из состояния риска.
type Assessment struct {
	Likelihood       float64       `json:"likelihood"`
	Impact           float64       `json:"impact"`
	InherentRisk     float64       `json:"inherent_risk"`
	ResidualRisk     float64       `json:"residual_risk"`
	CurrentRisk      float64       `json:"current_risk"`
	InherentSeverity risk.Severity `json:"inherent_severity"`
	CurrentSeverity  risk.Severity `json:"current_severity"`
	CurrentColor     risk.Color    `json:"current_color"`
	Vector           string        `json:"vector"`
}

func NewAssessment(snap risk.Snapshot) Assessment {
	return Assessment{
		Likelihood:       snap.Score.Likelihood,
		Impact:           snap.Score.Impact,
		InherentRisk:     risk.Round(snap.Score.Inherent),
		ResidualRisk:     risk.Round(snap.Residual),
		CurrentRisk:      snap.Current,
		InherentSeverity: risk.Classify(snap.Score.Inherent),
		CurrentSeverity:  risk.Classify(snap.Current),
		CurrentColor:     risk.ColorFor(snap.Current),
		Vector:           risk.FormatVector(snap.Factors),
	}
}

type Threat struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Remediation Remediation `json:"remediation"`
	Risk        Risk        `json:"risk"`
	Assessment  *Assessment `json:"assessment,omitempty"`
}

// State: состояние риска угрозы; без сохранённого остаточного берётся собственный.
func (t Threat) State() *risk.State {
	return risk.NewState(t.Risk.Factors, t.Remediation.Status, t.Risk.ResidualRisk)
}

// CreateThreatRequest: тело POST /information_systems/:id/threats.
type CreateThreatRequest struct {
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Risk        risk.Factors `json:"risk,omitempty"`
	Remediation *Remediation `json:"remediation,omitempty"`
}

type ResidualRiskRequest struct {
	ResidualRisk *float64 `json:"residual_risk" validate:"required"`
}

func flattenFactors(f risk.Factors) map[string]any {
	m := make(map[string]any, 17)
	for _, name := range risk.FactorNames() {
		v, ok := f[name]
		if !ok || v == nil {
			v = 0
		}
		m[name] = v
	}
	return m
}
