package risk

// Факторы вероятности: сначала агент угрозы, потом уязвимость.
const (
	SkillLevel         = "skill_level"
	Motive             = "motive"
	Opportunity        = "opportunity"
	Size               = "size"
	EaseOfDiscovery    = "ease_of_discovery"
	EaseOfExploit      = "ease_of_exploit"
	Awareness          = "awareness"
	IntrusionDetection = "intrusion_detection"
)

// Факторы влияния: сначала техническое, потом бизнес.
const (
	LossOfConfidentiality = "loss_of_confidentiality"
	LossOfIntegrity       = "loss_of_integrity"
	LossOfAvailability    = "loss_of_availability"
	LossOfAccountability  = "loss_of_accountability"
	FinancialDamage       = "financial_damage"
	ReputationDamage      = "reputation_damage"
	NonCompliance         = "non_compliance"
	PrivacyViolation      = "privacy_violation"
)

// Шкала всех факторов и остаточного риска.
const (
	MinFactor = 0
	MaxFactor = 9
)

var likelihoodFactors = [...]string{
	SkillLevel, Motive, Opportunity, Size,
	EaseOfDiscovery, EaseOfExploit, Awareness, IntrusionDetection,
}

var impactFactors = [...]string{
	LossOfConfidentiality, LossOfIntegrity, LossOfAvailability, LossOfAccountability,
	FinancialDamage, ReputationDamage, NonCompliance, PrivacyViolation,
}

var knownFactors = func() map[string]struct{} {
	m := make(map[string]struct{}, len(likelihoodFactors)+len(impactFactors))
	for _, n := range likelihoodFactors {
		m[n] = struct{}{}
	}
	for _, n := range impactFactors {
		m[n] = struct{}{}
	}
	return m
}()

func LikelihoodFactors() []string {
	return append([]string(nil), likelihoodFactors[:]...)
}

func ImpactFactors() []string {
	return append([]string(nil), impactFactors[:]...)
}

// FactorNames: все шестнадцать имён, сначала вероятность.
func FactorNames() []string {
	names := make([]string, 0, len(likelihoodFactors)+len(impactFactors))
	names = append(names, likelihoodFactors[:]...)
	return append(names, impactFactors[:]...)
}

func IsFactor(name string) bool {
	_, ok := knownFactors[name]
	return ok
}

// Factors: сырые значения по имени фактора (числа, строки, nil).
// Приводятся к числу только при расчёте.
type Factors map[string]any

// Clone: копия только с известными ключами.
func (f Factors) Clone() Factors {
	out := make(Factors, len(knownFactors))
	for k, v := range f {
		if IsFactor(k) {
			out[k] = v
		}
	}
	return out
}

// Numeric: все факторы через ToNumeric; отсутствующие = 0.
func (f Factors) Numeric() map[string]float64 {
	out := make(map[string]float64, len(knownFactors))
	for _, name := range FactorNames() {
		out[name] = ToNumeric(f[name])
	}
	return out
}

func Uniform(v float64) Factors {
	f := make(Factors, len(knownFactors))
	for _, name := range FactorNames() {
		f[name] = v
	}
	return f
}

// DefaultFactors: шаблон для угроз, созданных вручную.
func DefaultFactors() Factors {
	return Uniform(5)
}
