package stride

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"spoofing", Spoofing, true},
		{"INFORMATION DISCLOSURE", InformationDisclosure, true},
		{"  Tampering ", Tampering, true},
		{"Threat: Denial of Service (network)", DenialOfService, true},
		{"elevation of privilege", ElevationOfPrivilege, true},
		{"invalid", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeOrDefault(t *testing.T) {
	assert.Equal(t, Repudiation, NormalizeOrDefault("repudiation"))
	assert.Equal(t, Spoofing, NormalizeOrDefault("something else"))
	assert.Len(t, Categories(), 6)
}
