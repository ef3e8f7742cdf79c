package database

import (
	"context"
	"strings"

	"tzu-threatmodel/internal/models"
	"tzu-threatmodel/internal/risk"

	"github.com/pkg/errors"
)

// ReportFilter: фильтры отчёта; пустые поля не применяются.
// Standards: угроза должна иметь тег "(<STD>)" для каждого стандарта.
type ReportFilter struct {
	SystemID     string
	InherentRisk risk.Severity
	CurrentRisk  risk.Severity
	Standards    []string
	Skip         int
	Limit        int
}

// Report выбирает угрозы (с системой) и фильтрует их по уровню риска.
// Уровень считается через risk.Classify, поэтому границы совпадают с клиентом.
func (r *ThreatRepository) Report(ctx context.Context, f ReportFilter) ([]models.Threat, error) {
	q := withThreatAssociations(r.db.WithContext(ctx)).
		Preload("InformationSystem").
		Order("created_at asc")

	if f.SystemID != "" {
		sid, err := ParseID(f.SystemID)
		if err != nil {
			return nil, err
		}
		q = q.Where("information_system_id = ?", sid)
	}

	var threats []models.Threat
	if err := q.Find(&threats).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load report")
	}

	matched := make([]models.Threat, 0, len(threats))
	for _, t := range threats {
		st := t.State()
		if f.InherentRisk != "" && risk.Classify(st.InherentRisk()) != f.InherentRisk {
			continue
		}
		if f.CurrentRisk != "" && risk.Classify(st.CurrentRisk()) != f.CurrentRisk {
			continue
		}
		if !hasStandards(t.Remediation.ControlTags, f.Standards) {
			continue
		}
		matched = append(matched, t)
	}

	return page(matched, f.Skip, f.Limit), nil
}

// hasStandards: теги вида "V5.3.4 (ASVS)"; регистр не важен.
func hasStandards(tags []string, standards []string) bool {
	for _, std := range standards {
		suffix := "(" + strings.ToUpper(strings.TrimSpace(std)) + ")"
		found := false
		for _, tag := range tags {
			if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(tag)), suffix) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func page(threats []models.Threat, skip, limit int) []models.Threat {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(threats) {
		return []models.Threat{}
	}
	threats = threats[skip:]
	if limit > 0 && limit < len(threats) {
		threats = threats[:limit]
	}
	return threats
}
