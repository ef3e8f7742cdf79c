package risk

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// поправка на двоичное представление перед округлением вверх: 0.15 -> 0.2, а не 0.1
const roundingEpsilon = 1e-9

type Score struct {
	Likelihood float64 `json:"likelihood"`
	Impact     float64 `json:"impact"`
	Inherent   float64 `json:"inherent_risk"`
}

// Severity: уровень собственного риска.
func (s Score) Severity() Severity {
	return Classify(s.Inherent)
}

// ToNumeric приводит сырое значение к числу. nil, нечисловые, пустые и
// нераспознанные строки, Inf/NaN: 0. Число и его строка дают одно значение.
func ToNumeric(v any) float64 {
	n, ok := ParseNumeric(v)
	if !ok {
		return 0
	}
	return n
}

// ParseNumeric: ToNumeric плюс признак, что это было конечное число.
func ParseNumeric(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int8:
		n = float64(t)
	case int16:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint:
		n = float64(t)
	case uint8:
		n = float64(t)
	case uint16:
		n = float64(t)
	case uint32:
		n = float64(t)
	case uint64:
		n = float64(t)
	case json.Number:
		return parseNumericString(string(t))
	case string:
		return parseNumericString(t)
	case *float64:
		if t == nil {
			return 0, false
		}
		n = *t
	case *int:
		if t == nil {
			return 0, false
		}
		n = float64(*t)
	case *string:
		if t == nil {
			return 0, false
		}
		return parseNumericString(*t)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Likelihood: среднее восьми факторов вероятности.
func Likelihood(f Factors) float64 {
	return mean(f, likelihoodFactors[:])
}

// Impact: среднее восьми факторов влияния.
func Impact(f Factors) float64 {
	return mean(f, impactFactors[:])
}

// InherentRisk = (вероятность + влияние) / 2, один знак. Пустой набор: 0.
func InherentRisk(f Factors) float64 {
	return Compute(f).Inherent
}

// Compute: вероятность и влияние без округления, собственный риск округлён.
func Compute(f Factors) Score {
	l := Likelihood(f)
	i := Impact(f)
	return Score{
		Likelihood: l,
		Impact:     i,
		Inherent:   Round((l + i) / 2),
	}
}

func mean(f Factors, names []string) float64 {
	var sum float64
	for _, name := range names {
		sum += ToNumeric(f[name])
	}
	return sum / float64(len(names))
}

// Round: округление вверх до одного знака. Через него проходит каждое
// значение риска, которое показывается, кэшируется или сохраняется.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r := math.Floor(v*10+0.5+roundingEpsilon) / 10
	if r == 0 {
		// -0 -> 0
		return 0
	}
	return r
}

// Format: ровно один знак после точки.
func Format(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', 1, 64)
}

// ClampResidual: ручной остаточный риск в [0, 9], округлён; NaN = 0.
func ClampResidual(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Round(math.Max(MinFactor, math.Min(MaxFactor, v)))
}
