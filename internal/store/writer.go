// Package store persists scraped companies and vacancies in PostgreSQL and
// serves the read-only reports over them.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Konovalexx/hh-parser-2/internal/config"
	"github.com/Konovalexx/hh-parser-2/internal/db"
	"github.com/Konovalexx/hh-parser-2/internal/model"
)

const insertCompanySQL = `
	INSERT INTO company (employer)
	VALUES ($1)
	RETURNING company_id`

const insertVacancySQL = `
	INSERT INTO vacancy (company_id, name_vacancy, publish_date, url, salary_from, salary_to)
	VALUES ($1, $2, $3, $4, $5, $6)`

// EmptySalaryPolicy decides what happens to a vacancy whose salary object is
// present but carries neither bound.
type EmptySalaryPolicy uint8

const (
	// EmptySalaryZero stores the vacancy with (0, 0), like a missing salary.
	EmptySalaryZero EmptySalaryPolicy = iota
	// EmptySalarySkip leaves the vacancy out.
	EmptySalarySkip
)

// ParseEmptySalaryPolicy maps a config value onto a policy.
func ParseEmptySalaryPolicy(s string) (EmptySalaryPolicy, error) {
	switch s {
	case config.EmptySalaryZero, "":
		return EmptySalaryZero, nil
	case config.EmptySalarySkip:
		return EmptySalarySkip, nil
	}
	return 0, fmt.Errorf("unknown empty salary policy %q", s)
}

// SaveResult reports what one Save call wrote.
type SaveResult struct {
	CompanyID int
	Inserted  int
	Skipped   int
}

// Writer stores one company and its vacancies per call.
type Writer struct {
	target config.Postgres
	policy EmptySalaryPolicy
}

// NewWriter returns a Writer for the database described by target.
func NewWriter(target config.Postgres, policy EmptySalaryPolicy) *Writer {
	return &Writer{target: target, policy: policy}
}

// Save opens its own connection, inserts the company and then every vacancy
// in input order inside a single transaction, and closes the connection. On
// any error nothing of this company is committed.
func (w *Writer) Save(ctx context.Context, company string, vacancies []model.Vacancy) (SaveResult, error) {
	conn, err := db.Connect(ctx, w.target)
	if err != nil {
		return SaveResult{}, err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	var res SaveResult
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		var err error
		res, err = saveCompany(ctx, tx, company, vacancies, w.policy)
		return err
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("save %q: %w", company, err)
	}
	return res, nil
}

// txRunner is the part of pgx.Tx saveCompany needs.
type txRunner interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func saveCompany(
	ctx context.Context,
	tx txRunner,
	company string,
	vacancies []model.Vacancy,
	policy EmptySalaryPolicy,
) (SaveResult, error) {
	var res SaveResult
	if err := tx.QueryRow(ctx, insertCompanySQL, company).Scan(&res.CompanyID); err != nil {
		return SaveResult{}, fmt.Errorf("insert company: %w", err)
	}

	batch := &pgx.Batch{}
	for _, v := range vacancies {
		from, to, shape := model.NormalizeSalary(v.Salary)
		if shape == model.SalaryEmpty && policy == EmptySalarySkip {
			res.Skipped++
			continue
		}
		batch.Queue(insertVacancySQL,
			res.CompanyID, v.Name, publishDate(v.PublishedAt), v.AlternateURL, from, to,
		)
	}

	if batch.Len() == 0 {
		return res, nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return SaveResult{}, fmt.Errorf("insert vacancies: %w", err)
	}
	res.Inserted = batch.Len()
	return res, nil
}

func publishDate(raw string) pgtype.Date {
	ts, ok := model.PublishDate(raw)
	return pgtype.Date{Time: ts, Valid: ok}
}
