package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/petmoji/internal/domain/audit"
)

// DefaultMaxRecords bounds the in-memory audit log when no capacity is given.
const DefaultMaxRecords = 10000

// AuditRepository keeps the most recent audit records in process memory. It
// is the default when no database is configured. Once full, each insert
// evicts the oldest record.
type AuditRepository struct {
	mu         sync.RWMutex
	records    map[domain.RecordID]*domain.Record
	order      []domain.RecordID // insertion order, oldest first
	maxRecords int
}

// NewAuditRepository keeps at most maxRecords records; zero or less means DefaultMaxRecords.
func NewAuditRepository(maxRecords int) *AuditRepository {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &AuditRepository{
		records:    make(map[domain.RecordID]*domain.Record),
		maxRecords: maxRecords,
	}
}

// Save inserts or replaces a record
func (r *AuditRepository) Save(ctx context.Context, rec *domain.Record) error {
	cp := *rec
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		r.order = append(r.order, rec.ID)
	}
	r.records[rec.ID] = &cp
	for len(r.order) > r.maxRecords {
		delete(r.records, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

// Len reports how many records are held.
func (r *AuditRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Paginate returns records ordered by created_at desc, id desc
func (r *AuditRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	r.mu.RLock()
	all := make([]*domain.Record, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Get returns sql.ErrNoRows when the id is unknown, like the SQL repositories
func (r *AuditRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}
