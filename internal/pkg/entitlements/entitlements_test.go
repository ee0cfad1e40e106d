package entitlements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository/repotest"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
)

func TestPlanTable(t *testing.T) {
	t.Parallel()

	table := NewPlanTable(map[string]string{"price_b": "Basic", "price_p": "pro", "price_x": "enterprise"})
	assert.Equal(t, PlanBasic, table.Label("price_b"))
	assert.Equal(t, PlanPro, table.Label(" price_p "))
	assert.Equal(t, PlanCustom, table.Label("price_x"))
	assert.Equal(t, PlanCustom, table.Label("unknown"))

	assert.Equal(t, []PlanOffer{
		{Plan: PlanBasic, PriceID: "price_b"},
		{Plan: PlanPro, PriceID: "price_p"},
		{Plan: PlanCustom, PriceID: "price_x"},
	}, table.Offers())
}

func TestGetCurrentAccessRules(t *testing.T) {
	t.Parallel()
	svc := NewService(repotest.NewRepositories(t).Entitlement)
	ctx := context.Background()

	pairs := [][2]string{{"u1", "u2"}, {"u2", "u1"}, {"admin", "u1"}}
	for _, p := range pairs {
		_, err := svc.GetCurrent(ctx, p[0], p[1])
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), p)
	}

	_, err := svc.GetCurrent(ctx, "u1", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.GetCurrent(ctx, "", "u1")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestGetCurrentPicksLatestActive(t *testing.T) {
	t.Parallel()
	repos := repotest.NewRepositories(t)
	svc := NewService(repos.Entitlement)
	ctx := context.Background()

	none, err := svc.GetCurrent(ctx, "u1", "u1")
	require.NoError(t, err)
	assert.Nil(t, none)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range []models.Entitlement{
		{UserID: "u1", PlanType: "basic", Status: "active", CreatedAt: base},
		{UserID: "u1", PlanType: "pro", Status: "active", CreatedAt: base.Add(24 * time.Hour)},
		{UserID: "u1", PlanType: "custom", Status: "canceled", CreatedAt: base.Add(48 * time.Hour)},
	} {
		e := e
		require.NoError(t, repos.Entitlement.Create(ctx, &e))
	}

	got, err := svc.GetCurrent(ctx, "u1", "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pro", got.PlanType)
}

func TestLatest(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Latest(nil))

	base := time.Now()
	rows := []models.Entitlement{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
		{ID: "c", CreatedAt: base.Add(-time.Minute)},
	}
	assert.Equal(t, "b", Latest(rows).ID)
}
