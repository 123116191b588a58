package repository

import (
	"context"
	"testing"
	"time"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogGorm_ListFilters(t *testing.T) {
	gdb := newTestDB(t)
	r := NewAuditLogGormRepository(gdb)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seed := []model.AuditLog{
		{ActorUserID: 1, Action: model.AuditActionAwardPoints, ResourceType: model.AuditResourceSponsorship, ResourceID: 10, CreatedAt: base},
		{ActorUserID: 1, Action: model.AuditActionApproveSponsorship, ResourceType: model.AuditResourceSponsorship, ResourceID: 10, CreatedAt: base.Add(time.Hour)},
		{ActorUserID: 2, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: 5, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, l := range seed {
		require.NoError(t, r.Create(ctx, l))
	}

	actor := int64(1)
	action := model.AuditActionAwardPoints
	rt := model.AuditResourceSponsorship
	from := base.Add(time.Hour)
	to := base.Add(2 * time.Hour)

	cases := []struct {
		name    string
		filter  repo.AuditLogFilter
		actions []model.AuditAction
	}{
		{"all newest first", repo.AuditLogFilter{}, []model.AuditAction{model.AuditActionUpdateOrderStatus, model.AuditActionApproveSponsorship, model.AuditActionAwardPoints}},
		{"by actor", repo.AuditLogFilter{ActorUserID: &actor}, []model.AuditAction{model.AuditActionApproveSponsorship, model.AuditActionAwardPoints}},
		{"by action and resource", repo.AuditLogFilter{Action: &action, ResourceType: &rt}, []model.AuditAction{model.AuditActionAwardPoints}},
		{"to is exclusive", repo.AuditLogFilter{From: &from, To: &to}, []model.AuditAction{model.AuditActionApproveSponsorship}},
		{"paging", repo.AuditLogFilter{Limit: 1, Offset: 1}, []model.AuditAction{model.AuditActionApproveSponsorship}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs, err := r.List(ctx, tc.filter)
			require.NoError(t, err)

			got := make([]model.AuditAction, 0, len(logs))
			for _, l := range logs {
				got = append(got, l.Action)
			}
			assert.Equal(t, tc.actions, got)
		})
	}
}
