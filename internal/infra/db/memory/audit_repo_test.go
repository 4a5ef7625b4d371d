package memory

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/petmoji/internal/domain/audit"
)

func TestAuditRepositoryPaginate(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, &domain.Record{
			ID:        domain.RecordID(fmt.Sprintf("r%d", i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	first, err := repo.Paginate(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, domain.RecordID("r4"), first[0].ID)
	assert.Equal(t, domain.RecordID("r3"), first[1].ID)

	last, err := repo.Paginate(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, domain.RecordID("r0"), last[0].ID)

	none, err := repo.Paginate(ctx, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuditRepositoryGetCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(0)
	rec := &domain.Record{ID: "a", Emoji: "😴"}
	require.NoError(t, repo.Save(ctx, rec))
	rec.Emoji = "changed"

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "😴", got.Emoji)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAuditRepositoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(3)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, &domain.Record{
			ID:        domain.RecordID(fmt.Sprintf("r%d", i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	assert.Equal(t, 3, repo.Len())

	// replacing a kept record does not count as a new insert
	require.NoError(t, repo.Save(ctx, &domain.Record{ID: "r3", Emoji: "😴", CreatedAt: base.Add(3 * time.Minute)}))
	assert.Equal(t, 3, repo.Len())

	list, err := repo.Paginate(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.RecordID("r4"), list[0].ID)
	assert.Equal(t, domain.RecordID("r3"), list[1].ID)
	assert.Equal(t, "😴", list[1].Emoji)
	assert.Equal(t, domain.RecordID("r2"), list[2].ID)

	_, err = repo.Get(ctx, "r1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
