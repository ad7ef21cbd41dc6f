package blogservice

import (
	"context"

	"github.com/sushihentaime/blogcms/internal/common"
)

func (m *BlogModel) insertVisit(ctx context.Context, page string) error {
	_, err := m.db.ExecContext(ctx, `INSERT INTO visits (page) VALUES ($1)`, page)
	return err
}

func (m *BlogModel) countVisitsByPage(ctx context.Context) ([]VisitStat, error) {
	query := `
		SELECT page, COUNT(*) AS total
		FROM visits
		GROUP BY page
		ORDER BY total DESC, page ASC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []VisitStat{}
	for rows.Next() {
		var s VisitStat
		if err := rows.Scan(&s.Page, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// RecordVisit stores one page view.
func (s *BlogService) RecordVisit(ctx context.Context, page string) error {
	v := common.NewValidator()
	validatePage(v, page)
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.insertVisit(ctx, page)
}

// GetVisitStats returns view counts per page, most visited first.
func (s *BlogService) GetVisitStats(ctx context.Context) ([]VisitStat, error) {
	return s.m.countVisitsByPage(ctx)
}
