package dto

import (
	"encoding/json"
	"time"

	"github.com/hugh/go-grc/internal/api/validation"
	"github.com/hugh/go-grc/internal/database/models"
)

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

func (r CreateOrganizationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validation.RequireText(errors, "name", r.Name, 200)
	return errors
}

func (r *CreateOrganizationRequest) Sanitize() {
	r.Description = cleanText(r.Description)
}

type AddMemberRequest struct {
	Email string            `json:"email"`
	Role  models.MemberRole `json:"role"`
}

func (r AddMemberRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	checkEnum(errors, "role", r.Role)
	return errors
}

type CreateRiskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    models.RiskCategory `json:"category"`
	Likelihood  models.Level        `json:"likelihood"`
	Impact      models.Level        `json:"impact"`
	OwnerID     string              `json:"owner_id,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

func (r CreateRiskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validation.RequireText(errors, "title", r.Title, 200)
	checkEnum(errors, "category", r.Category)
	checkEnum(errors, "likelihood", r.Likelihood)
	checkEnum(errors, "impact", r.Impact)
	if r.OwnerID != "" && !validation.IsValidUUID(r.OwnerID) {
		errors["owner_id"] = "Invalid owner ID"
	}
	return errors
}

func (r *CreateRiskRequest) Sanitize() {
	r.Description = cleanText(r.Description)
}

type UpdateRiskRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Likelihood  *models.Level      `json:"likelihood,omitempty"`
	Impact      *models.Level      `json:"impact,omitempty"`
	Status      *models.RiskStatus `json:"status,omitempty"`
}

func (r UpdateRiskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title != nil {
		validation.RequireText(errors, "title", *r.Title, 200)
	}
	if r.Likelihood != nil {
		checkEnum(errors, "likelihood", *r.Likelihood)
	}
	if r.Impact != nil {
		checkEnum(errors, "impact", *r.Impact)
	}
	if r.Status != nil {
		checkEnum(errors, "status", *r.Status)
	}
	return errors
}

func (r *UpdateRiskRequest) Sanitize() {
	if r.Description != nil {
		d := cleanText(*r.Description)
		r.Description = &d
	}
}

type CreateControlRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Type        models.ControlType      `json:"type"`
	Frequency   models.ControlFrequency `json:"frequency"`
	OwnerID     string                  `json:"owner_id,omitempty"`
	NextTestDue *time.Time              `json:"next_test_due,omitempty"`
}

func (r CreateControlRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validation.RequireText(errors, "title", r.Title, 200)
	checkEnum(errors, "type", r.Type)
	checkEnum(errors, "frequency", r.Frequency)
	if r.OwnerID != "" && !validation.IsValidUUID(r.OwnerID) {
		errors["owner_id"] = "Invalid owner ID"
	}
	return errors
}

func (r *CreateControlRequest) Sanitize() {
	r.Description = cleanText(r.Description)
}

type RecordControlTestRequest struct {
	Effectiveness models.Effectiveness `json:"effectiveness"`
	NextTestDue   *time.Time           `json:"next_test_due,omitempty"`
}

func (r RecordControlTestRequest) Validate() map[string]string {
	errors := make(map[string]string)
	checkEnum(errors, "effectiveness", r.Effectiveness)
	return errors
}

type LinkControlRequest struct {
	ControlID       string                 `json:"control_id"`
	MitigationLevel models.MitigationLevel `json:"mitigation_level"`
}

func (r LinkControlRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidUUID(r.ControlID) {
		errors["control_id"] = "Invalid control ID"
	}
	checkEnum(errors, "mitigation_level", r.MitigationLevel)
	return errors
}

type CreateFrameworkRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Version     string                 `json:"version,omitempty"`
	Status      models.FrameworkStatus `json:"status,omitempty"`
}

func (r CreateFrameworkRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validation.RequireText(errors, "name", r.Name, 200)
	if r.Status != "" {
		checkEnum(errors, "status", r.Status)
	}
	return errors
}

func (r *CreateFrameworkRequest) Sanitize() {
	r.Description = cleanText(r.Description)
}

type CreateRequirementRequest struct {
	RequirementID string                     `json:"requirement_id"`
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	Category      string                     `json:"category,omitempty"`
	Priority      models.RequirementPriority `json:"priority"`
	OwnerID       string                     `json:"owner_id,omitempty"`
	DueDate       *time.Time                 `json:"due_date,omitempty"`
}

func (r CreateRequirementRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.IsValidRequirementRef(r.RequirementID) {
		errors["requirement_id"] = "Invalid requirement reference"
	}
	validation.RequireText(errors, "title", r.Title, 200)
	checkEnum(errors, "priority", r.Priority)
	if r.OwnerID != "" && !validation.IsValidUUID(r.OwnerID) {
		errors["owner_id"] = "Invalid owner ID"
	}
	return errors
}

func (r *CreateRequirementRequest) Sanitize() {
	r.Description = cleanText(r.Description)
}

type UpdateRequirementStatusRequest struct {
	Status   models.RequirementStatus `json:"status"`
	Evidence *string                  `json:"evidence,omitempty"`
}

func (r UpdateRequirementStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)
	checkEnum(errors, "status", r.Status)
	return errors
}

func (r *UpdateRequirementStatusRequest) Sanitize() {
	if r.Evidence != nil {
		e := cleanText(*r.Evidence)
		r.Evidence = &e
	}
}

type CreateIntegrationRequest struct {
	Name          string                 `json:"name"`
	Type          models.IntegrationType `json:"type"`
	Endpoint      string                 `json:"endpoint,omitempty"`
	SyncFrequency models.SyncFrequency   `json:"sync_frequency"`
	Config        json.RawMessage        `json:"config,omitempty"`
}

func (r CreateIntegrationRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validation.RequireText(errors, "name", r.Name, 200)
	checkEnum(errors, "type", r.Type)
	checkEnum(errors, "sync_frequency", r.SyncFrequency)
	if r.Endpoint != "" && !validation.IsValidEndpoint(r.Endpoint) {
		errors["endpoint"] = "Endpoint must be an http:// or https:// URL"
	}
	if len(r.Config) > 0 && !validation.IsValidJSONObject(r.Config) {
		errors["config"] = "Config must be a JSON object"
	}
	return errors
}

type SetIntegrationStatusRequest struct {
	Status models.IntegrationStatus `json:"status"`
}

func (r SetIntegrationStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)
	checkEnum(errors, "status", r.Status)
	return errors
}
