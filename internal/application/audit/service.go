package audit

import (
	"context"

	domain "github.com/bryanwahyu/petmoji/internal/domain/audit"
)

// Service exposes the audit log to operators.
type Service struct {
	Repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{Repo: repo}
}

// List returns one page of analysis records, newest first
func (s *Service) List(ctx context.Context, page, pageSize int) (domain.Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	data, err := s.Repo.Paginate(ctx, page, pageSize)
	if err != nil {
		return domain.Page{}, err
	}
	if data == nil {
		data = []*domain.Record{}
	}
	return domain.Page{Data: data, Page: page, PageSize: pageSize}, nil
}

func (s *Service) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	return s.Repo.Get(ctx, id)
}
