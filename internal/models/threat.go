package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tzu-threatmodel/internal/risk"
)

// Угроза конкретной информационной системы (STRIDE)
type Threat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	InformationSystemID uuid.UUID `gorm:"type:uuid;index;not null"`
	InformationSystem   InformationSystem

	Title       string `gorm:"size:255"`
	Type        string `gorm:"size:64"` // категория STRIDE
	Description string `gorm:"type:text"`

	RiskID uuid.UUID `gorm:"type:uuid"`
	Risk   Risk

	RemediationID uuid.UUID `gorm:"type:uuid"`
	Remediation   Remediation
}

func (t *Threat) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Оценка по OWASP Risk Rating: 16 факторов по шкале 0-9 + остаточный риск
type Risk struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// агент угрозы
	SkillLevel  float64
	Motive      float64
	Opportunity float64
	Size        float64

	// уязвимость
	EaseOfDiscovery    float64
	EaseOfExploit      float64
	Awareness          float64
	IntrusionDetection float64

	// технический ущерб
	LossOfConfidentiality float64
	LossOfIntegrity       float64
	LossOfAvailability    float64
	LossOfAccountability  float64

	// бизнес-ущерб
	FinancialDamage  float64
	ReputationDamage float64
	NonCompliance    float64
	PrivacyViolation float64

	// задаётся вручную, NULL: ещё не выбирали
	ResidualRisk *float64
}

func (r *Risk) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Risk) field(name string) *float64 {
	switch name {
	case risk.SkillLevel:
		return &r.SkillLevel
	case risk.Motive:
		return &r.Motive
	case risk.Opportunity:
		return &r.Opportunity
	case risk.Size:
		return &r.Size
	case risk.EaseOfDiscovery:
		return &r.EaseOfDiscovery
	case risk.EaseOfExploit:
		return &r.EaseOfExploit
	case risk.Awareness:
		return &r.Awareness
	case risk.IntrusionDetection:
		return &r.IntrusionDetection
	case risk.LossOfConfidentiality:
		return &r.LossOfConfidentiality
	case risk.LossOfIntegrity:
		return &r.LossOfIntegrity
	case risk.LossOfAvailability:
		return &r.LossOfAvailability
	case risk.LossOfAccountability:
		return &r.LossOfAccountability
	case risk.FinancialDamage:
		return &r.FinancialDamage
	case risk.ReputationDamage:
		return &r.ReputationDamage
	case risk.NonCompliance:
		return &r.NonCompliance
	case risk.PrivacyViolation:
		return &r.PrivacyViolation
	}
	return nil
}

// SetFactors приводит и сохраняет известные факторы; прочие ключи игнорируются.
func (r *Risk) SetFactors(f risk.Factors) {
	for name, v := range f {
		if p := r.field(name); p != nil {
			*p = risk.ToNumeric(v)
		}
	}
}

func (r *Risk) Factors() risk.Factors {
	f := make(risk.Factors, 16)
	for _, name := range risk.FactorNames() {
		f[name] = *r.field(name)
	}
	return f
}

type Remediation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Description string    `gorm:"type:text"`
	Status      bool      `gorm:"not null;default:false"`

	ControlTags datatypes.JSONSlice[string] // теги контролей ASVS / NIST / ISO и т.п.
}

func (m *Remediation) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.ControlTags == nil {
		m.ControlTags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// State строит состояние риска угрозы; остаточный риск берётся из БД,
// а если он не задан, то равен собственному.
func (t *Threat) State() *risk.State {
	return risk.NewState(t.Risk.Factors(), t.Remediation.Status, t.Risk.ResidualRisk)
}
