package entitlements

import (
	"context"
	"sort"
	"strings"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
)

type Plan string

const (
	PlanBasic  Plan = models.PlanBasic
	PlanPro    Plan = models.PlanPro
	PlanCustom Plan = models.PlanCustom
)

// PlanTable maps provider price ids to plans.
type PlanTable map[string]Plan

// NewPlanTable accepts the price id -> label map from configuration.
// Labels other than basic and pro are kept as custom.
func NewPlanTable(priceToLabel map[string]string) PlanTable {
	t := make(PlanTable, len(priceToLabel))
	for priceID, label := range priceToLabel {
		t[priceID] = normalizePlan(label)
	}
	return t
}

// Label resolves a price id; unknown ids are custom.
func (t PlanTable) Label(priceID string) Plan {
	if p, ok := t[strings.TrimSpace(priceID)]; ok {
		return p
	}
	return PlanCustom
}

type PlanOffer struct {
	Plan    Plan   `json:"plan"`
	PriceID string `json:"priceId"`
}

// Offers lists the configured prices, basic before pro, then by price id.
func (t PlanTable) Offers() []PlanOffer {
	out := make([]PlanOffer, 0, len(t))
	for priceID, plan := range t {
		out = append(out, PlanOffer{Plan: plan, PriceID: priceID})
	}
	sort.Slice(out, func(i, j int) bool {
		if planRank(out[i].Plan) != planRank(out[j].Plan) {
			return planRank(out[i].Plan) < planRank(out[j].Plan)
		}
		return out[i].PriceID < out[j].PriceID
	})
	return out
}

func normalizePlan(plan string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(plan))) {
	case PlanBasic:
		return PlanBasic
	case PlanPro:
		return PlanPro
	default:
		return PlanCustom
	}
}

func planRank(p Plan) int {
	switch p {
	case PlanBasic:
		return 0
	case PlanPro:
		return 1
	default:
		return 2
	}
}

// Service answers entitlement reads.
type Service struct {
	repo repository.EntitlementRepository
}

func NewService(repo repository.EntitlementRepository) *Service {
	return &Service{repo: repo}
}

// GetCurrent returns the target's active entitlement with the latest
// createdAt, or nil. Only the user themself may read it.
func (s *Service) GetCurrent(ctx context.Context, requesterID, targetUserID string) (*models.Entitlement, error) {
	if requesterID == "" {
		return nil, apperr.Unauthorized("login required")
	}
	if strings.TrimSpace(targetUserID) == "" {
		return nil, apperr.Validation("User ID is required")
	}
	if requesterID != targetUserID {
		return nil, apperr.Forbidden("Forbidden")
	}

	rows, err := s.repo.ListActiveByUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	return Latest(rows), nil
}

// Latest picks the row with the greatest CreatedAt. Ties keep the first seen.
func Latest(rows []models.Entitlement) *models.Entitlement {
	var best *models.Entitlement
	for i := range rows {
		if best == nil || rows[i].CreatedAt.After(best.CreatedAt) {
			best = &rows[i]
		}
	}
	return best
}
