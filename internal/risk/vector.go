package risk

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidVector = errors.New("invalid OWASP risk rating vector")

// сокращения вектора в каноническом порядке
var vectorKeys = [...]struct {
	abbr string
	name string
}{
	{"SL", SkillLevel},
	{"M", Motive},
	{"O", Opportunity},
	{"S", Size},
	{"ED", EaseOfDiscovery},
	{"EE", EaseOfExploit},
	{"A", Awareness},
	{"ID", IntrusionDetection},
	{"LC", LossOfConfidentiality},
	{"LI", LossOfIntegrity},
	{"LAV", LossOfAvailability},
	{"LAC", LossOfAccountability},
	{"FD", FinancialDamage},
	{"RD", ReputationDamage},
	{"NC", NonCompliance},
	{"PV", PrivacyViolation},
}

// FormatVector: запись OWASP RR, например
// SL:5/M:4/O:7/S:6/ED:7/EE:5/A:6/ID:8/LC:2/LI:3/LAV:5/LAC:7/FD:1/RD:2/NC:2/PV:3.
func FormatVector(f Factors) string {
	parts := make([]string, 0, len(vectorKeys))
	for _, k := range vectorKeys {
		v := strconv.FormatFloat(ToNumeric(f[k.name]), 'f', -1, 64)
		parts = append(parts, k.abbr+":"+v)
	}
	return strings.Join(parts, "/")
}

// ParseVector: компоненты в любом порядке, пропущенные остаются пустыми;
// значения: числа в [0, 9].
func ParseVector(s string) (Factors, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrInvalidVector, "empty vector")
	}

	byAbbr := make(map[string]string, len(vectorKeys))
	for _, k := range vectorKeys {
		byAbbr[k.abbr] = k.name
	}

	f := make(Factors, len(vectorKeys))
	for _, part := range strings.Split(s, "/") {
		abbr, raw, ok := strings.Cut(part, ":")
		if !ok {
			return nil, errors.Wrapf(ErrInvalidVector, "component %q is not KEY:VALUE", part)
		}
		name, known := byAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
		if !known {
			return nil, errors.Wrapf(ErrInvalidVector, "unknown component %q", abbr)
		}
		if _, dup := f[name]; dup {
			return nil, errors.Wrapf(ErrInvalidVector, "duplicate component %q", abbr)
		}
		n, ok := parseNumericString(raw)
		if !ok || n < MinFactor || n > MaxFactor {
			return nil, errors.Wrapf(ErrInvalidVector, "component %q value %q out of range", abbr, raw)
		}
		f[name] = n
	}
	return f, nil
}
