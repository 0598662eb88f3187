package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Konovalexx/hh-parser-2/internal/model"
)

// querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Reports runs the read-only report queries.
type Reports struct {
	q querier
}

// NewReports wraps q, typically a read-only pool.
func NewReports(q querier) *Reports {
	return &Reports{q: q}
}

// CompanyVacancyCounts lists employers with their vacancy count, largest
// first. Employers without vacancies are left out.
func (r *Reports) CompanyVacancyCounts(ctx context.Context) ([]model.CompanyCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.employer, COUNT(v.vacancy_id)::int AS vacancies_count
		FROM company c
		JOIN vacancy v ON v.company_id = c.company_id
		GROUP BY c.company_id, c.employer
		ORDER BY vacancies_count DESC, c.employer`)
	if err != nil {
		return nil, fmt.Errorf("company counts query: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.CompanyCount])
	if err != nil {
		return nil, fmt.Errorf("company counts scan: %w", err)
	}
	return out, nil
}

// AllVacancies lists every vacancy with its employer, highest salary_from first.
func (r *Reports) AllVacancies(ctx context.Context) ([]model.VacancyListing, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.employer, v.name_vacancy, v.salary_from, v.salary_to, COALESCE(v.url, '')
		FROM vacancy v
		JOIN company c ON c.company_id = v.company_id
		ORDER BY v.salary_from DESC, v.vacancy_id`)
	if err != nil {
		return nil, fmt.Errorf("all vacancies query: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.VacancyListing])
	if err != nil {
		return nil, fmt.Errorf("all vacancies scan: %w", err)
	}
	return out, nil
}

// AverageSalary is the mean salary_from over all vacancies, 0 when there are none.
func (r *Reports) AverageSalary(ctx context.Context) (float64, error) {
	var avg float64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(AVG(salary_from), 0)::float8 FROM vacancy`,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average salary: %w", err)
	}
	return avg, nil
}

// VacanciesAboveAverage returns the vacancies whose salary_from is strictly
// greater than AverageSalary.
func (r *Reports) VacanciesAboveAverage(ctx context.Context) ([]model.VacancyBrief, error) {
	return r.briefs(ctx, "above average", `
		SELECT name_vacancy, salary_from, salary_to, COALESCE(url, '')
		FROM vacancy
		WHERE salary_from > (SELECT AVG(salary_from) FROM vacancy)
		ORDER BY salary_from DESC, vacancy_id`)
}

// VacanciesByKeyword returns the vacancies whose title contains keyword.
// Matching is case-sensitive and keyword is taken literally.
func (r *Reports) VacanciesByKeyword(ctx context.Context, keyword string) ([]model.VacancyBrief, error) {
	return r.briefs(ctx, "keyword", `
		SELECT name_vacancy, salary_from, salary_to, COALESCE(url, '')
		FROM vacancy
		WHERE strpos(name_vacancy, $1) > 0
		ORDER BY vacancy_id`, keyword)
}

func (r *Reports) briefs(ctx context.Context, name, sql string, args ...any) ([]model.VacancyBrief, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", name, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.VacancyBrief])
	if err != nil {
		return nil, fmt.Errorf("%s scan: %w", name, err)
	}
	return out, nil
}
