// Package report defines the five read-only reports and the interactive menu
// that runs them.
package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Konovalexx/hh-parser-2/internal/model"
)

// Reporter is implemented by store.Reports.
type Reporter interface {
	CompanyVacancyCounts(ctx context.Context) ([]model.CompanyCount, error)
	AllVacancies(ctx context.Context) ([]model.VacancyListing, error)
	AverageSalary(ctx context.Context) (float64, error)
	VacanciesAboveAverage(ctx context.Context) ([]model.VacancyBrief, error)
	VacanciesByKeyword(ctx context.Context, keyword string) ([]model.VacancyBrief, error)
}

// Kind names a report. The set is closed.
type Kind int

const (
	KindCompanyCounts Kind = iota + 1
	KindAllVacancies
	KindAverageSalary
	KindAboveAverage
	KindKeywordSearch
)

// Kinds lists every report in menu order.
var Kinds = []Kind{KindCompanyCounts, KindAllVacancies, KindAverageSalary, KindAboveAverage, KindKeywordSearch}

// ParseKind maps menu input "1".."5" onto a Kind. Only the exact digits are
// accepted, so "01" and "+1" are rejected.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if s == strconv.Itoa(int(k)) {
			return k, true
		}
	}
	return 0, false
}

// Title is the one-line description shown in the menu.
func (k Kind) Title() string {
	if c, ok := commands[k]; ok {
		return c.title
	}
	return fmt.Sprintf("report %d", int(k))
}

// NeedsKeyword reports whether Run expects a search keyword for k.
func (k Kind) NeedsKeyword() bool {
	return commands[k].needsKeyword
}

// Result is either a Table or a Scalar.
type Result interface {
	isResult()
}

// Table is a report made of rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Scalar is a report made of a single number.
type Scalar struct {
	Label string
	Value float64
}

func (Table) isResult()  {}
func (Scalar) isResult() {}

type command struct {
	title        string
	needsKeyword bool
	run          func(ctx context.Context, r Reporter, keyword string) (Result, error)
}

var commands = map[Kind]command{
	KindCompanyCounts: {
		title: "Employers and the number of vacancies each has",
		run: func(ctx context.Context, r Reporter, _ string) (Result, error) {
			rows, err := r.CompanyVacancyCounts(ctx)
			if err != nil {
				return nil, err
			}
			t := Table{Header: []string{"employer", "vacancies"}}
			for _, c := range rows {
				t.Rows = append(t.Rows, []string{c.Employer, strconv.Itoa(c.Vacancies)})
			}
			return t, nil
		},
	},
	KindAllVacancies: {
		title: "All vacancies with employer, title, salary and link",
		run: func(ctx context.Context, r Reporter, _ string) (Result, error) {
			rows, err := r.AllVacancies(ctx)
			if err != nil {
				return nil, err
			}
			t := Table{Header: []string{"employer", "title", "salary_from", "salary_to", "url"}}
			for _, v := range rows {
				t.Rows = append(t.Rows, []string{
					v.Employer, v.Title, strconv.Itoa(v.SalaryFrom), strconv.Itoa(v.SalaryTo), v.URL,
				})
			}
			return t, nil
		},
	},
	KindAverageSalary: {
		title: "Average salary across all vacancies",
		run: func(ctx context.Context, r Reporter, _ string) (Result, error) {
			avg, err := r.AverageSalary(ctx)
			if err != nil {
				return nil, err
			}
			return Scalar{Label: "average salary_from", Value: avg}, nil
		},
	},
	KindAboveAverage: {
		title: "Vacancies paying more than the average salary",
		run: func(ctx context.Context, r Reporter, _ string) (Result, error) {
			rows, err := r.VacanciesAboveAverage(ctx)
			if err != nil {
				return nil, err
			}
			return briefTable(rows), nil
		},
	},
	KindKeywordSearch: {
		title:        "Vacancies whose title contains a given word",
		needsKeyword: true,
		run: func(ctx context.Context, r Reporter, keyword string) (Result, error) {
			rows, err := r.VacanciesByKeyword(ctx, keyword)
			if err != nil {
				return nil, err
			}
			return briefTable(rows), nil
		},
	},
}

func briefTable(rows []model.VacancyBrief) Table {
	t := Table{Header: []string{"title", "salary_from", "salary_to", "url"}}
	for _, v := range rows {
		t.Rows = append(t.Rows, []string{v.Title, strconv.Itoa(v.SalaryFrom), strconv.Itoa(v.SalaryTo), v.URL})
	}
	return t
}

// Run executes report k. keyword is ignored unless k.NeedsKeyword().
func Run(ctx context.Context, r Reporter, k Kind, keyword string) (Result, error) {
	c, ok := commands[k]
	if !ok {
		return nil, fmt.Errorf("unknown report %d", int(k))
	}
	res, err := c.run(ctx, r, keyword)
	if err != nil {
		return nil, fmt.Errorf("report %d: %w", int(k), err)
	}
	return res, nil
}
