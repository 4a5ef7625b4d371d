package audit

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/petmoji/internal/domain/audit"
	"github.com/bryanwahyu/petmoji/internal/infra/db/memory"
)

func TestList(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAuditRepository(0)
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &domain.Record{
			ID:        domain.RecordID(fmt.Sprintf("r%d", i)),
			Status:    domain.StatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	svc := NewService(repo)

	page, err := svc.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Data, 2)
	assert.Equal(t, domain.RecordID("r2"), page.Data[0].ID)

	page, err = svc.List(ctx, 5, 2)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
