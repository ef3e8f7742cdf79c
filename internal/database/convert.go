package database

import (
	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/models"
)

// ThreatDTO переводит модель угрозы в ответ API с рассчитанной оценкой.
func ThreatDTO(t *models.Threat) dto.Threat {
	assessment := dto.NewAssessment(t.State().Snapshot())

	tags := []string(t.Remediation.ControlTags)
	if tags == nil {
		tags = []string{}
	}

	return dto.Threat{
		ID:          t.ID.String(),
		Title:       t.Title,
		Type:        t.Type,
		Description: t.Description,
		Remediation: dto.Remediation{
			Description: t.Remediation.Description,
			Status:      t.Remediation.Status,
			ControlTags: tags,
		},
		Risk: dto.Risk{
			Factors:      t.Risk.Factors(),
			ResidualRisk: t.Risk.ResidualRisk,
		},
		Assessment: &assessment,
	}
}

func ThreatDTOs(threats []models.Threat) []dto.Threat {
	out := make([]dto.Threat, 0, len(threats))
	for i := range threats {
		out = append(out, ThreatDTO(&threats[i]))
	}
	return out
}

// SystemDTO переводит систему; угрозы включаются, если были загружены.
func SystemDTO(s *models.InformationSystem) dto.InformationSystem {
	return dto.InformationSystem{
		ID:          s.ID.String(),
		Title:       s.Title,
		Description: s.Description,
		Diagram:     s.Diagram,
		CreatedAt:   s.CreatedAt,
		Threats:     ThreatDTOs(s.Threats),
	}
}

func ReportRowDTO(t *models.Threat) dto.ReportRow {
	return dto.ReportRow{
		Threat:                 ThreatDTO(t),
		InformationSystemID:    t.InformationSystemID.String(),
		InformationSystemTitle: t.InformationSystem.Title,
	}
}
