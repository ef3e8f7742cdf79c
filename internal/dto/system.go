package dto

import "time"

type InformationSystem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Diagram     string    `json:"diagram_ref"`
	CreatedAt   time.Time `json:"datetime"`
	Threats     []Threat  `json:"threats"`
}

type CreateInformationSystemRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

// ReportRow: угроза вместе с её системой.
type ReportRow struct {
	Threat
	InformationSystemID    string `json:"information_system_id"`
	InformationSystemTitle string `json:"information_system_title"`
}

type DeletionFailure struct {
	ThreatID string `json:"threat_id"`
	Error    string `json:"error"`
}

type SaveReport struct {
	Updated         int               `json:"updated"`
	Deleted         []string          `json:"deleted"`
	FailedDeletions []DeletionFailure `json:"failed_deletions"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WorkspaceView: состояние редактирования системы в рабочей сессии.
type WorkspaceView struct {
	SystemID         string   `json:"system_id"`
	Threats          []Threat `json:"threats"`
	PendingDeletions []string `json:"pending_deletions"`
}

type RemediationRequest struct {
	Status      *bool     `json:"status"`
	Description *string   `json:"description"`
	ControlTags *[]string `json:"control_tags"`
}

type DetailsRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}
