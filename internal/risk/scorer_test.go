package risk

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioA() Factors {
	return Factors{
		SkillLevel: 3, Motive: 4, Opportunity: 7, Size: 5,
		EaseOfDiscovery: 6, EaseOfExploit: 5, Awareness: 3, IntrusionDetection: 2,
		LossOfConfidentiality: 7, LossOfIntegrity: 5, LossOfAvailability: 3, LossOfAccountability: 4,
		FinancialDamage: 5, ReputationDamage: 6, NonCompliance: 4, PrivacyViolation: 5,
	}
}

func baseFactors() Factors {
	return Factors{
		SkillLevel: 5, Motive: 6, Opportunity: 7, Size: 5,
		EaseOfDiscovery: 6, EaseOfExploit: 7, Awareness: 4, IntrusionDetection: 3,
		LossOfConfidentiality: 8, LossOfIntegrity: 7, LossOfAvailability: 6, LossOfAccountability: 5,
		FinancialDamage: 7, ReputationDamage: 6, NonCompliance: 4, PrivacyViolation: 5,
	}
}

func TestCompute_ScenarioA(t *testing.T) {
	s := Compute(scenarioA())

	assert.Equal(t, 4.375, s.Likelihood)
	assert.Equal(t, 4.875, s.Impact)
	assert.Equal(t, 4.6, s.Inherent)
	assert.Equal(t, Medium, s.Severity())
}

func TestInherentRisk_MonotonicInImpactFactor(t *testing.T) {
	f := baseFactors()
	before := InherentRisk(f)
	f[FinancialDamage] = 2
	after := InherentRisk(f)

	assert.Equal(t, 5.7, before)
	assert.Equal(t, 5.4, after)
	assert.Less(t, after, before)
}

func TestInherentRisk_EmptyAndNil(t *testing.T) {
	assert.Equal(t, 0.0, InherentRisk(nil))
	assert.Equal(t, 0.0, InherentRisk(Factors{}))
}

func TestInherentRisk_StringEncodingEquivalence(t *testing.T) {
	base := scenarioA()
	want := InherentRisk(base)

	for _, name := range FactorNames() {
		t.Run(name, func(t *testing.T) {
			f := base.Clone()
			f[name] = strconv.FormatFloat(ToNumeric(f[name]), 'f', -1, 64)
			assert.Equal(t, want, InherentRisk(f))
		})
	}

	all := Factors{}
	for k, v := range base {
		all[k] = strconv.Itoa(v.(int))
	}
	assert.Equal(t, want, InherentRisk(all))
}

func TestToNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"int", 7, 7},
		{"float", 7.5, 7.5},
		{"string", "7", 7},
		{"decimal string", " 2.5 ", 2.5},
		{"json number", json.Number("4"), 4},
		{"empty string", "", 0},
		{"garbage", "high", 0},
		{"trailing garbage", "7abc", 0},
		{"bool", true, 0},
		{"nan", math.NaN(), 0},
		{"inf string", "Inf", 0},
		{"slice", []int{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNumeric(tt.in))
		})
	}
}

func TestInherentRisk_UnparseableCountsAsZero(t *testing.T) {
	f := Uniform(8)
	f[SkillLevel] = "n/a"
	f[PrivacyViolation] = nil
	delete(f, Motive)

	// likelihood (6*8)/8 = 6, impact (7*8)/8 = 7
	assert.Equal(t, 6.5, InherentRisk(f))
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{4.625, 4.6},
		{4.65, 4.7},
		{0.15, 0.2},
		{0.05, 0.1},
		{5.6875, 5.7},
		{9, 9},
		{-0.04, 0},
		{3.04999, 3.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in), "Round(%v)", tt.in)
	}
}

func TestFormat_OneDecimal(t *testing.T) {
	assert.Equal(t, "4.6", Format(4.625))
	assert.Equal(t, "5.0", Format(5))
	assert.Equal(t, "0.0", Format(0))
}

func TestClampResidual(t *testing.T) {
	assert.Equal(t, 9.0, ClampResidual(12))
	assert.Equal(t, 0.0, ClampResidual(-3))
	assert.Equal(t, 0.0, ClampResidual(math.NaN()))
	assert.Equal(t, 9.0, ClampResidual(math.Inf(1)))
	assert.Equal(t, 2.6, ClampResidual(2.55))
}

func TestFactorNames(t *testing.T) {
	names := FactorNames()
	require.Len(t, names, 16)
	assert.Equal(t, likelihoodFactors[:], names[:8])
	assert.Equal(t, impactFactors[:], names[8:])
	assert.Len(t, LikelihoodFactors(), 8)
	assert.Len(t, ImpactFactors(), 8)

	assert.True(t, IsFactor(Awareness))
	assert.False(t, IsFactor("residual_risk"))
}

func TestFactors_CloneDropsUnknownKeys(t *testing.T) {
	f := Factors{Motive: 3, "threat_id": "x"}
	c := f.Clone()

	assert.Equal(t, Factors{Motive: 3}, c)
	c[Motive] = 9
	assert.Equal(t, 3, f[Motive])
}
