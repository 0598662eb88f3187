package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Konovalexx/hh-parser-2/internal/events"
	"github.com/Konovalexx/hh-parser-2/internal/logging"
	"github.com/Konovalexx/hh-parser-2/internal/model"
	"github.com/Konovalexx/hh-parser-2/internal/store"
)

// vacancySource is the part of HHFetcher the worker uses.
type vacancySource interface {
	FindEmployer(ctx context.Context, name string) (string, error)
	FetchVacancies(ctx context.Context, employerID string) ([]model.Vacancy, error)
}

type companySaver interface {
	Save(ctx context.Context, company string, vacancies []model.Vacancy) (store.SaveResult, error)
}

type notifier interface {
	CompanySaved(ctx context.Context, ev events.CompanySaved) error
}

// Worker runs the resolve → fetch → save pipeline for a list of company
// names, one company at a time. Operator messages go to out; diagnostics go
// to the logger.
type Worker struct {
	source   vacancySource
	saver    companySaver
	notifier notifier
	out      io.Writer
	log      *logging.Logger
}

// NewWorker constructs a Worker. notifier may be nil.
func NewWorker(source vacancySource, saver companySaver, notifier notifier, out io.Writer, log *logging.Logger) *Worker {
	return &Worker{
		source:   source,
		saver:    saver,
		notifier: notifier,
		out:      out,
		log:      log.With("component", "worker"),
	}
}

// RunSummary counts what happened to each company of a run.
type RunSummary struct {
	RunID     string
	Saved     int
	NotFound  int
	Empty     int
	APIErrors int
	Vacancies int
	Skipped   int
}

type outcome int

const (
	outcomeSaved outcome = iota
	outcomeNotFound
	outcomeEmpty
	outcomeAPIError
)

// Run processes companies in order. API errors and missing employers are
// reported and the run moves on; transport and database errors stop it.
func (w *Worker) Run(ctx context.Context, companies []string) (RunSummary, error) {
	sum := RunSummary{RunID: uuid.NewString()}
	log := w.log.With("runId", sum.RunID)
	log.Info("scrape run started", "companies", len(companies))

	for _, name := range companies {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, oc, err := w.scrapeCompany(ctx, log, sum.RunID, name)
		if err != nil {
			log.Error("scrape run aborted", "company", name, "err", err)
			return sum, fmt.Errorf("company %q: %w", name, err)
		}

		switch oc {
		case outcomeSaved:
			sum.Saved++
			sum.Vacancies += res.Inserted
			sum.Skipped += res.Skipped
		case outcomeNotFound:
			sum.NotFound++
		case outcomeEmpty:
			sum.Empty++
		case outcomeAPIError:
			sum.APIErrors++
		}
	}

	log.Info("scrape run complete",
		"saved", sum.Saved, "notFound", sum.NotFound, "empty", sum.Empty,
		"apiErrors", sum.APIErrors, "vacancies", sum.Vacancies, "skipped", sum.Skipped)
	return sum, nil
}

func (w *Worker) scrapeCompany(ctx context.Context, log *logging.Logger, runID, name string) (store.SaveResult, outcome, error) {
	log = log.With("company", name)

	employerID, err := w.source.FindEmployer(ctx, name)
	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			w.printf("Error %d: %s\n", apiErr.Status, apiErr.Body)
			w.printf("%s not found.\n", name)
			log.Warn("employer search failed", "status", apiErr.Status)
			return store.SaveResult{}, outcomeAPIError, nil
		case errors.Is(err, ErrEmployerNotFound):
			w.printf("%s not found.\n", name)
			log.Info("no exact employer match")
			return store.SaveResult{}, outcomeNotFound, nil
		default:
			return store.SaveResult{}, 0, fmt.Errorf("resolve employer: %w", err)
		}
	}
	w.printf("Company ID: %s\n", employerID)
	log = log.With("employerId", employerID)

	vacancies, err := w.source.FetchVacancies(ctx, employerID)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return store.SaveResult{}, 0, fmt.Errorf("fetch vacancies: %w", err)
		}
		w.printf("Error %d: %s\n", apiErr.Status, apiErr.Body)
		w.printf("No vacancies found for %s.\n", name)
		log.Warn("vacancy fetch failed, partial pages discarded", "status", apiErr.Status, "err", err)
		return store.SaveResult{}, outcomeAPIError, nil
	}
	if len(vacancies) == 0 {
		w.printf("No vacancies found for %s.\n", name)
		log.Info("employer has no open vacancies")
		return store.SaveResult{}, outcomeEmpty, nil
	}
	log.Debug("vacancies fetched", "count", len(vacancies))

	res, err := w.saver.Save(ctx, name, vacancies)
	if err != nil {
		return store.SaveResult{}, 0, err
	}
	w.printf("Data for %s saved successfully.\n", name)
	log.Info("company saved", "companyId", res.CompanyID, "inserted", res.Inserted, "skipped", res.Skipped)

	if w.notifier != nil {
		ev := events.CompanySaved{
			RunID:      runID,
			Company:    name,
			EmployerID: employerID,
			CompanyID:  res.CompanyID,
			Vacancies:  res.Inserted,
		}
		if err := w.notifier.CompanySaved(ctx, ev); err != nil {
			log.Warn("company saved event not published", "err", err)
		}
	}

	return res, outcomeSaved, nil
}

func (w *Worker) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}
