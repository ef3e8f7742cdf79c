package risk

import (
	"math"
	"strings"
)

type Severity string

const (
	Low    Severity = "LOW"
	Medium Severity = "MEDIUM"
	High   Severity = "HIGH"
)

// Границы уровней; значение на границе относится к верхнему уровню.
const (
	mediumThreshold = 3.0
	highThreshold   = 6.0
)

// Classify: меньше 3 LOW, меньше 6 MEDIUM, иначе HIGH. Отчёт использует её же.
func Classify(score float64) Severity {
	switch {
	case math.IsNaN(score), score < mediumThreshold:
		return Low
	case score < highThreshold:
		return Medium
	default:
		return High
	}
}

// ParseSeverity: имя уровня в любом регистре.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case Low:
		return Low, true
	case Medium:
		return Medium, true
	case High:
		return High, true
	}
	return "", false
}

// Color: цвет уровня для отображения.
type Color struct {
	Scheme string `json:"scheme"`
	CSS    string `json:"css"`
}

var severityColors = map[Severity]Color{
	Low:    {Scheme: "green", CSS: "#38a169"},
	Medium: {Scheme: "yellow", CSS: "#dd6b20"},
	High:   {Scheme: "red", CSS: "#e53e3e"},
}

func (s Severity) Color() Color {
	return severityColors[s]
}

// ColorFor: цвет значения через Classify.
func ColorFor(score float64) Color {
	return Classify(score).Color()
}

// Labels: локализованные подписи уровней; пустые заменяются именем уровня.
type Labels struct {
	Low    string
	Medium string
	High   string
}

func Label(score float64, l Labels) string {
	sev := Classify(score)
	var s string
	switch sev {
	case Low:
		s = l.Low
	case Medium:
		s = l.Medium
	case High:
		s = l.High
	}
	if s == "" {
		return string(sev)
	}
	return s
}
