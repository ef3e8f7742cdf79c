package database

import (
	"context"

	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/models"
	"tzu-threatmodel/internal/risk"
	"tzu-threatmodel/internal/stride"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid id")
	ErrNoThreatsUpdated = errors.New("no threats were updated")
)

const defaultRemediation = "No remediation defined"

// ThreatRepository: хранилище систем, угроз, рисков и мер.
// Реализует aggregate.Backend для сохранения рабочих сессий.
type ThreatRepository struct {
	db *gorm.DB
}

func NewThreatRepository(db *gorm.DB) *ThreatRepository {
	return &ThreatRepository{db: db}
}

// ParseID проверяет формат UUID.
func ParseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return u, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrapf(err, "failed to load %s", what)
}

func withThreatAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Risk").Preload("Remediation")
}

// ====== СИСТЕМЫ ======

func (r *ThreatRepository) ListSystems(ctx context.Context, skip, limit int) ([]models.InformationSystem, error) {
	var systems []models.InformationSystem
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Offset(skip).
		Limit(limit).
		Find(&systems).Error
	return systems, errors.Wrap(err, "failed to list information systems")
}

func (r *ThreatRepository) CreateSystem(ctx context.Context, title, description string) (*models.InformationSystem, error) {
	sys := models.InformationSystem{Title: title, Description: description}
	if err := r.db.WithContext(ctx).Create(&sys).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create information system")
	}
	return &sys, nil
}

func (r *ThreatRepository) GetSystem(ctx context.Context, id string) (*models.InformationSystem, error) {
	uid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var sys models.InformationSystem
	err = r.db.WithContext(ctx).
		Preload("Threats", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Threats.Risk").
		Preload("Threats.Remediation").
		First(&sys, "id = ?", uid).Error
	if err != nil {
		return nil, notFound(err, "information system")
	}
	return &sys, nil
}

// ====== УГРОЗЫ ======

func (r *ThreatRepository) ListThreats(ctx context.Context, systemID string) ([]models.Threat, error) {
	uid, err := ParseID(systemID)
	if err != nil {
		return nil, err
	}
	var threats []models.Threat
	err = withThreatAssociations(r.db.WithContext(ctx)).
		Where("information_system_id = ?", uid).
		Order("created_at asc").
		Find(&threats).Error
	return threats, errors.Wrap(err, "failed to list threats")
}

func (r *ThreatRepository) GetThreat(ctx context.Context, id string) (*models.Threat, error) {
	return r.getThreat(r.db.WithContext(ctx), id)
}

func (r *ThreatRepository) getThreat(db *gorm.DB, id string) (*models.Threat, error) {
	uid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var t models.Threat
	if err := withThreatAssociations(db).First(&t, "id = ?", uid).Error; err != nil {
		return nil, notFound(err, "threat")
	}
	return &t, nil
}

// CreateThreat создаёт угрозу с риском (по умолчанию все факторы = 5) и мерой.
func (r *ThreatRepository) CreateThreat(ctx context.Context, systemID string, req dto.CreateThreatRequest) (*models.Threat, error) {
	sid, err := ParseID(systemID)
	if err != nil {
		return nil, err
	}

	factors := req.Risk
	if factors == nil {
		factors = risk.DefaultFactors()
	}
	var rk models.Risk
	rk.SetFactors(factors)

	rem := models.Remediation{Description: defaultRemediation}
	if req.Remediation != nil {
		if req.Remediation.Description != "" {
			rem.Description = req.Remediation.Description
		}
		rem.ControlTags = datatypes.JSONSlice[string](req.Remediation.ControlTags)
	}

	title := req.Title
	if title == "" {
		title = "New Threat"
	}

	var created models.Threat
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.InformationSystem{}).Where("id = ?", sid).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.Wrap(ErrNotFound, "information system")
		}
		if err := tx.Create(&rk).Error; err != nil {
			return err
		}
		if err := tx.Create(&rem).Error; err != nil {
			return err
		}

		created = models.Threat{
			InformationSystemID: sid,
			Title:               title,
			Type:                string(stride.NormalizeOrDefault(req.Type)),
			Description:         req.Description,
			RiskID:              rk.ID,
			RemediationID:       rem.ID,
		}
		return tx.Omit(clause.Associations).Create(&created).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to create threat")
	}

	created.Risk = rk
	created.Remediation = rem
	return &created, nil
}

// DeleteThreat удаляет угрозу вместе с её риском и мерой.
func (r *ThreatRepository) DeleteThreat(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := r.getThreat(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Threat{}, "id = ?", t.ID).Error; err != nil {
			return errors.Wrap(err, "failed to delete threat")
		}
		if err := tx.Delete(&models.Risk{}, "id = ?", t.RiskID).Error; err != nil {
			return errors.Wrap(err, "failed to delete risk")
		}
		if err := tx.Delete(&models.Remediation{}, "id = ?", t.RemediationID).Error; err != nil {
			return errors.Wrap(err, "failed to delete remediation")
		}
		return nil
	})
}

// PatchThreat частично обновляет угрозу, её риск и меру.
func (r *ThreatRepository) PatchThreat(ctx context.Context, id string, p dto.ThreatPatch) (*models.Threat, error) {
	var out *models.Threat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := r.getThreat(tx, id)
		if err != nil {
			return err
		}
		if err := applyPatch(tx, t, p); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// SetResidualRisk сохраняет остаточный риск (ограничен 0..9, один знак).
func (r *ThreatRepository) SetResidualRisk(ctx context.Context, id string, value float64) (*models.Threat, error) {
	return r.PatchThreat(ctx, id, dto.ThreatPatch{ResidualRisk: &value})
}

// BatchItem: одна запись пакетного обновления.
type BatchItem struct {
	ThreatID string
	Patch    dto.ThreatPatch
}

// ApplyBatch применяет пакет в одной транзакции: либо всё, либо ничего.
// Угрозы не из этой системы пропускаются.
func (r *ThreatRepository) ApplyBatch(ctx context.Context, systemID string, items []BatchItem) ([]models.Threat, error) {
	sid, err := ParseID(systemID)
	if err != nil {
		return nil, err
	}

	var updated []models.Threat
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var threats []models.Threat
		if err := withThreatAssociations(tx).Where("information_system_id = ?", sid).Find(&threats).Error; err != nil {
			return errors.Wrap(err, "failed to load threats")
		}
		byID := make(map[string]*models.Threat, len(threats))
		for i := range threats {
			byID[threats[i].ID.String()] = &threats[i]
		}

		for _, item := range items {
			t, ok := byID[item.ThreatID]
			if !ok {
				continue
			}
			if err := applyPatch(tx, t, item.Patch); err != nil {
				return err
			}
			updated = append(updated, *t)
		}

		if len(items) > 0 && len(updated) == 0 {
			return ErrNoThreatsUpdated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateBatch: реализация aggregate.Backend.
func (r *ThreatRepository) UpdateBatch(ctx context.Context, systemID string, updates []dto.ThreatUpdate) error {
	items := make([]BatchItem, 0, len(updates))
	for _, u := range updates {
		items = append(items, BatchItem{ThreatID: u.ThreatID, Patch: u.Patch()})
	}
	_, err := r.ApplyBatch(ctx, systemID, items)
	return err
}

func applyPatch(tx *gorm.DB, t *models.Threat, p dto.ThreatPatch) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Type != nil {
		// неизвестную категорию не сохраняем, оставляем прежнюю
		if c, ok := stride.Normalize(*p.Type); ok {
			t.Type = string(c)
		}
	}
	if p.Description != nil {
		t.Description = *p.Description
	}

	if rp := p.Remediation; rp != nil {
		if rp.Description != nil {
			t.Remediation.Description = *rp.Description
		}
		if rp.Status != nil {
			t.Remediation.Status = *rp.Status
		}
		if rp.ControlTags != nil {
			t.Remediation.ControlTags = datatypes.JSONSlice[string](rp.ControlTags)
		}
		if err := tx.Save(&t.Remediation).Error; err != nil {
			return errors.Wrap(err, "failed to save remediation")
		}
	}

	riskChanged := len(p.Factors) > 0 || p.ResidualRisk != nil || p.ClearResidual
	t.Risk.SetFactors(p.Factors)
	switch {
	case p.ClearResidual:
		t.Risk.ResidualRisk = nil
	case p.ResidualRisk != nil:
		v := risk.ClampResidual(*p.ResidualRisk)
		t.Risk.ResidualRisk = &v
	}
	if riskChanged {
		if err := tx.Save(&t.Risk).Error; err != nil {
			return errors.Wrap(err, "failed to save risk")
		}
	}

	return errors.Wrap(tx.Omit(clause.Associations).Save(t).Error, "failed to save threat")
}
