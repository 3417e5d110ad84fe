package grc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/database/models"
)

type RiskStats struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type ControlStats struct {
	Total              int `json:"total"`
	Effective          int `json:"effective"`
	PartiallyEffective int `json:"partially_effective"`
	Ineffective        int `json:"ineffective"`
	NotTested          int `json:"not_tested"`
}

type ComplianceStats struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	InProgress   int `json:"in_progress"`
}

type DashboardStats struct {
	Risks      RiskStats       `json:"risks"`
	Controls   ControlStats    `json:"controls"`
	Compliance ComplianceStats `json:"compliance"`
}

// RiskMatrix counts risks by likelihood (outer key) then impact.
type RiskMatrix map[models.Level]map[models.Level]int

func SummarizeRisks(risks []models.Risk) RiskStats {
	stats := RiskStats{Total: len(risks)}
	for _, r := range risks {
		switch ScoreBand(r.RiskScore) {
		case BandHigh:
			stats.High++
		case BandMedium:
			stats.Medium++
		default:
			stats.Low++
		}
	}
	return stats
}

func SummarizeControls(controls []models.Control) ControlStats {
	stats := ControlStats{Total: len(controls)}
	for _, c := range controls {
		switch c.Effectiveness {
		case models.EffectivenessEffective:
			stats.Effective++
		case models.EffectivenessPartiallyEffective:
			stats.PartiallyEffective++
		case models.EffectivenessIneffective:
			stats.Ineffective++
		case models.EffectivenessNotTested:
			stats.NotTested++
		}
	}
	return stats
}

// AddRequirements folds one framework's requirements into the totals.
func (c *ComplianceStats) AddRequirements(reqs []models.ComplianceRequirement) {
	c.Total += len(reqs)
	for _, r := range reqs {
		switch r.Status {
		case models.RequirementCompliant:
			c.Compliant++
		case models.RequirementNonCompliant:
			c.NonCompliant++
		case models.RequirementInProgress:
			c.InProgress++
		}
	}
}

func NewRiskMatrix() RiskMatrix {
	m := make(RiskMatrix, len(models.Levels))
	for _, l := range models.Levels {
		row := make(map[models.Level]int, len(models.Levels))
		for _, i := range models.Levels {
			row[i] = 0
		}
		m[l] = row
	}
	return m
}

func BuildRiskMatrix(risks []models.Risk) RiskMatrix {
	m := NewRiskMatrix()
	for _, r := range risks {
		row, ok := m[r.Likelihood]
		if !ok {
			continue
		}
		if _, ok := row[r.Impact]; ok {
			row[r.Impact]++
		}
	}
	return m
}

func (m RiskMatrix) Total() int {
	total := 0
	for _, row := range m {
		for _, n := range row {
			total += n
		}
	}
	return total
}

func (s *Service) GetDashboardStats(ctx context.Context, caller Caller, orgID uuid.UUID) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	var risks []models.Risk
	if err := db.Select("risk_score").Where("organization_id = ?", orgID).Find(&risks).Error; err != nil {
		return nil, fmt.Errorf("loading risks: %w", err)
	}

	var controls []models.Control
	if err := db.Select("effectiveness").Where("organization_id = ?", orgID).Find(&controls).Error; err != nil {
		return nil, fmt.Errorf("loading controls: %w", err)
	}

	var frameworks []models.ComplianceFramework
	if err := db.Select("id").Where("organization_id = ?", orgID).Find(&frameworks).Error; err != nil {
		return nil, fmt.Errorf("loading frameworks: %w", err)
	}

	stats := &DashboardStats{
		Risks:    SummarizeRisks(risks),
		Controls: SummarizeControls(controls),
	}
	for _, fw := range frameworks {
		var reqs []models.ComplianceRequirement
		if err := db.Select("status").Where("framework_id = ?", fw.ID).Find(&reqs).Error; err != nil {
			return nil, fmt.Errorf("loading requirements for framework %s: %w", fw.ID, err)
		}
		stats.Compliance.AddRequirements(reqs)
	}

	return stats, nil
}

func (s *Service) GetRiskMatrix(ctx context.Context, caller Caller, orgID uuid.UUID) (RiskMatrix, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	var risks []models.Risk
	if err := db.Select("likelihood", "impact").Where("organization_id = ?", orgID).Find(&risks).Error; err != nil {
		return nil, fmt.Errorf("loading risks: %w", err)
	}
	return BuildRiskMatrix(risks), nil
}
