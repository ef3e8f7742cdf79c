package dto

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tzu-threatmodel/internal/risk"
)

func TestThreatUpdate_MarshalFlat(t *testing.T) {
	u := ThreatUpdate{
		ThreatID:     "t-1",
		Title:        "SQL injection",
		Type:         "Tampering",
		Description:  "login form",
		Remediation:  Remediation{Description: "prepared statements", Status: true},
		ResidualRisk: 2.5,
		Factors:      risk.Factors{risk.SkillLevel: "7", risk.Motive: 4},
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "t-1", m["threat_id"])
	assert.Equal(t, "SQL injection", m["title"])
	assert.Equal(t, 2.5, m["residual_risk"])
	assert.Equal(t, "7", m["skill_level"])
	assert.Equal(t, 4.0, m["motive"])
	assert.Equal(t, 0.0, m["privacy_violation"])
	assert.Equal(t, map[string]any{"description": "prepared statements", "status": true}, m["remediation"])
	assert.Len(t, m, 16+6)
}

func TestThreatUpdate_UnmarshalRoundTrip(t *testing.T) {
	in := ThreatUpdate{
		ThreatID:     "t-2",
		Title:        "XSS",
		Remediation:  Remediation{Description: "escape", Status: false},
		ResidualRisk: 4,
		Factors:      risk.Uniform(3),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out ThreatUpdate
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "t-2", out.ThreatID)
	assert.Equal(t, "XSS", out.Title)
	assert.Equal(t, 4.0, out.ResidualRisk)
	assert.Equal(t, 3.0, risk.InherentRisk(out.Factors))
}

func TestParseBatchItem_MissingThreatID(t *testing.T) {
	_, _, err := ParseBatchItem(map[string]any{"title": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
}

func TestParsePatch(t *testing.T) {
	p, err := ParsePatch(map[string]any{
		"title":         "new",
		"skill_level":   6.0,
		"unknown":       1.0,
		"residual_risk": "3.5",
		"remediation":   map[string]any{"status": true, "control_tags": []any{"ASVS-V2.1 (ASVS)"}},
	})
	require.NoError(t, err)

	require.NotNil(t, p.Title)
	assert.Equal(t, "new", *p.Title)
	assert.Nil(t, p.Type)
	assert.Equal(t, risk.Factors{risk.SkillLevel: 6.0}, p.Factors)
	require.NotNil(t, p.ResidualRisk)
	assert.Equal(t, 3.5, *p.ResidualRisk)
	require.NotNil(t, p.Remediation)
	assert.True(t, *p.Remediation.Status)
	assert.Nil(t, p.Remediation.Description)
	assert.Equal(t, []string{"ASVS-V2.1 (ASVS)"}, p.Remediation.ControlTags)
}

func TestParsePatch_NullResidualClears(t *testing.T) {
	p, err := ParsePatch(map[string]any{"residual_risk": nil})
	require.NoError(t, err)
	assert.True(t, p.ClearResidual)
	assert.Nil(t, p.ResidualRisk)
}

func TestParsePatch_Invalid(t *testing.T) {
	for name, raw := range map[string]map[string]any{
		"title not string":   {"title": 3.0},
		"remediation scalar": {"remediation": "done"},
		"status not bool":    {"remediation": map[string]any{"status": "yes"}},
		"residual garbage":   {"residual_risk": "high"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePatch(raw)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestRisk_JSON(t *testing.T) {
	var r Risk
	require.NoError(t, json.Unmarshal([]byte(`{"skill_level":"7","motive":2,"residual_risk":null,"id":"x"}`), &r))

	assert.Nil(t, r.ResidualRisk)
	assert.Equal(t, risk.Factors{risk.SkillLevel: "7", risk.Motive: 2.0}, r.Factors)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Nil(t, m["residual_risk"])
	assert.Len(t, m, 17)
}

func TestNewAssessment(t *testing.T) {
	th := Threat{
		Risk:        Risk{Factors: risk.Uniform(7)},
		Remediation: Remediation{Status: true},
	}
	st := th.State()
	st.SetResidualRisk(2)

	a := NewAssessment(st.Snapshot())

	assert.Equal(t, 7.0, a.InherentRisk)
	assert.Equal(t, risk.High, a.InherentSeverity)
	assert.Equal(t, 2.0, a.CurrentRisk)
	assert.Equal(t, risk.Low, a.CurrentSeverity)
	assert.Equal(t, "green", a.CurrentColor.Scheme)
}
