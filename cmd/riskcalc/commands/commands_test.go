package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tzu-threatmodel/internal/risk"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScore_Vector(t *testing.T) {
	out, err := run(t, "score", "--json",
		"--vector", "SL:3/M:4/O:7/S:5/ED:6/EE:5/A:3/ID:2/LC:7/LI:5/LAV:3/LAC:4/FD:5/RD:6/NC:4/PV:5")
	require.NoError(t, err)

	var got struct {
		Likelihood float64       `json:"likelihood"`
		Impact     float64       `json:"impact"`
		Inherent   float64       `json:"inherent_risk"`
		Severity   risk.Severity `json:"severity"`
		Color      string        `json:"color"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4.375, got.Likelihood)
	assert.Equal(t, 4.875, got.Impact)
	assert.Equal(t, 4.6, got.Inherent)
	assert.Equal(t, risk.Medium, got.Severity)
	assert.Equal(t, "#dd6b20", got.Color)
}

func TestScore_AssignmentsOverrideVector(t *testing.T) {
	out, err := run(t, "score", "--vector", "SL:0/M:0/O:0/S:0/ED:0/EE:0/A:0/ID:0/LC:0/LI:0/LAV:0/LAC:0/FD:0/RD:0/NC:0/PV:0",
		"skill_level=8")
	require.NoError(t, err)
	assert.Contains(t, out, "SL:8/M:0")
	assert.Contains(t, out, "LOW")
}

func TestScore_UnknownFactor(t *testing.T) {
	_, err := run(t, "score", "bogus=1")
	assert.ErrorIs(t, err, risk.ErrInvalidFactorName)

	_, err = run(t, "score", "skill_level")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "skill_level=3", "motive=12", "size=abc")
	assert.ErrorIs(t, err, errInvalidFactors)
	assert.Contains(t, out, "motive must be a number between 0 and 9")
	assert.Contains(t, out, "size must be a number between 0 and 9")

	out, err = run(t, "validate", "skill_level=3")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestClassify(t *testing.T) {
	for in, want := range map[string]string{"2.99": "LOW", "3": "MEDIUM", "6.0": "HIGH"} {
		out, err := run(t, "classify", in)
		require.NoError(t, err)
		assert.Contains(t, out, want, in)
	}

	_, err := run(t, "classify", "high")
	assert.Error(t, err)
}
