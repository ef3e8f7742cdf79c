package dto

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"tzu-threatmodel/internal/risk"
)

// ThreatUpdate: элемент пакетного обновления, полная запись угрозы
// с факторами на верхнем уровне объекта.
type ThreatUpdate struct {
	ThreatID     string
	Title        string
	Type         string
	Description  string
	Remediation  Remediation
	ResidualRisk float64
	Factors      risk.Factors
}

func (u ThreatUpdate) MarshalJSON() ([]byte, error) {
	m := flattenFactors(u.Factors)
	m["threat_id"] = u.ThreatID
	m["title"] = u.Title
	m["type"] = u.Type
	m["description"] = u.Description
	m["remediation"] = u.Remediation
	m["residual_risk"] = u.ResidualRisk
	return json.Marshal(m)
}

func (u *ThreatUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, patch, err := ParseBatchItem(raw)
	if err != nil {
		return err
	}
	*u = ThreatUpdate{ThreatID: id, Factors: patch.Factors}
	if patch.Title != nil {
		u.Title = *patch.Title
	}
	if patch.Type != nil {
		u.Type = *patch.Type
	}
	if patch.Description != nil {
		u.Description = *patch.Description
	}
	if r := patch.Remediation; r != nil {
		if r.Description != nil {
			u.Remediation.Description = *r.Description
		}
		if r.Status != nil {
			u.Remediation.Status = *r.Status
		}
		u.Remediation.ControlTags = r.ControlTags
	}
	if patch.ResidualRisk != nil {
		u.ResidualRisk = *patch.ResidualRisk
	}
	return nil
}

// Patch: полная запись как патч, задающий все поля.
func (u ThreatUpdate) Patch() ThreatPatch {
	title, typ, desc := u.Title, u.Type, u.Description
	remDesc, remStatus := u.Remediation.Description, u.Remediation.Status
	residual := u.ResidualRisk
	return ThreatPatch{
		Title:       &title,
		Type:        &typ,
		Description: &desc,
		Remediation: &RemediationPatch{
			Description: &remDesc,
			Status:      &remStatus,
			ControlTags: u.Remediation.ControlTags,
		},
		Factors:      flattenFactors(u.Factors),
		ResidualRisk: &residual,
	}
}

type RemediationPatch struct {
	Description *string
	Status      *bool
	// nil: теги не меняются
	ControlTags []string
}

// ThreatPatch: частичное обновление. nil-поля не меняются,
// в Factors только присланные ключи.
type ThreatPatch struct {
	Title         *string
	Type          *string
	Description   *string
	Remediation   *RemediationPatch
	Factors       risk.Factors
	ResidualRisk  *float64
	ClearResidual bool
}

// ParsePatch разбирает частичное обновление из JSON-объекта.
func ParsePatch(raw map[string]any) (ThreatPatch, error) {
	var p ThreatPatch
	var err error

	if p.Title, err = optionalString(raw, "title"); err != nil {
		return p, err
	}
	if p.Type, err = optionalString(raw, "type"); err != nil {
		return p, err
	}
	if p.Description, err = optionalString(raw, "description"); err != nil {
		return p, err
	}

	if v, ok := raw["remediation"]; ok && v != nil {
		obj, ok := v.(map[string]any)
		if !ok {
			return p, errors.Wrap(ErrInvalidPayload, "remediation must be an object")
		}
		rp := &RemediationPatch{}
		if rp.Description, err = optionalString(obj, "description"); err != nil {
			return p, err
		}
		if s, ok := obj["status"]; ok && s != nil {
			b, ok := s.(bool)
			if !ok {
				return p, errors.Wrap(ErrInvalidPayload, "remediation.status must be a boolean")
			}
			rp.Status = &b
		}
		if tags, ok := obj["control_tags"]; ok && tags != nil {
			list, ok := tags.([]any)
			if !ok {
				return p, errors.Wrap(ErrInvalidPayload, "remediation.control_tags must be a list")
			}
			rp.ControlTags = make([]string, 0, len(list))
			for _, t := range list {
				rp.ControlTags = append(rp.ControlTags, fmt.Sprint(t))
			}
		}
		p.Remediation = rp
	}

	p.Factors = risk.Factors{}
	for k, v := range raw {
		if risk.IsFactor(k) {
			p.Factors[k] = v
		}
	}

	if v, ok := raw["residual_risk"]; ok {
		if v == nil {
			p.ClearResidual = true
		} else {
			n, ok := risk.ParseNumeric(v)
			if !ok {
				return p, errors.Wrap(ErrInvalidPayload, "residual_risk must be a number")
			}
			p.ResidualRisk = &n
		}
	}
	return p, nil
}

// ParseBatchItem: элемент пакета, threat_id обязателен.
func ParseBatchItem(raw map[string]any) (string, ThreatPatch, error) {
	v, ok := raw["threat_id"]
	if !ok || v == nil {
		return "", ThreatPatch{}, errors.Wrap(ErrInvalidPayload, "each object must have the 'threat_id' key")
	}
	id := fmt.Sprint(v)
	p, err := ParsePatch(raw)
	return id, p, err
}

func optionalString(raw map[string]any, key string) (*string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPayload, "%s must be a string", key)
	}
	return &s, nil
}
