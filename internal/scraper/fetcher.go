package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Konovalexx/hh-parser-2/internal/config"
	"github.com/Konovalexx/hh-parser-2/internal/model"
)

const (
	employersPath  = "/employers"
	vacanciesPath  = "/vacancies"
	errorBodyLimit = 4096
)

// ErrEmployerNotFound is returned when the employer search has no item whose
// name equals the query exactly.
var ErrEmployerNotFound = errors.New("employer not found")

// APIError is a non-2xx answer from hh.ru.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hh %s returned %d: %s", e.Endpoint, e.Status, e.Body)
}

// HHFetcher talks to the public hh.ru API. It never retries; each call maps
// to exactly one request per page.
type HHFetcher struct {
	baseURL   string
	userAgent string
	perPage   int
	maxPages  int
	client    *http.Client
}

// NewHHFetcher builds a fetcher from cfg. A nil client gets one with the
// configured timeout. Page size and page count are clamped to the API limits.
func NewHHFetcher(cfg config.HH, client *http.Client) *HHFetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}

	perPage := cfg.PerPage
	if perPage <= 0 || perPage > config.MaxPerPage {
		perPage = config.MaxPerPage
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 || maxPages > config.MaxPages {
		maxPages = config.MaxPages
	}

	return &HHFetcher{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		perPage:   perPage,
		maxPages:  maxPages,
		client:    client,
	}
}

type employersResponse struct {
	Items []model.Employer `json:"items"`
}

type vacanciesResponse struct {
	Items []model.Vacancy `json:"items"`
}

// FindEmployer returns the id of the first employer named exactly name, in
// the order the API lists them.
func (f *HHFetcher) FindEmployer(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("text", name)

	var resp employersResponse
	if err := f.getJSON(ctx, employersPath, params, &resp); err != nil {
		return "", err
	}

	for _, e := range resp.Items {
		if e.Name == name {
			return e.ID, nil
		}
	}
	return "", ErrEmployerNotFound
}

// FetchVacancies collects the employer's vacancies page by page until a page
// comes back empty or the page cap is reached. Any API error discards what
// was collected so far.
func (f *HHFetcher) FetchVacancies(ctx context.Context, employerID string) ([]model.Vacancy, error) {
	var all []model.Vacancy

	for page := 0; page < f.maxPages; page++ {
		params := url.Values{}
		params.Set("employer_id", employerID)
		params.Set("per_page", strconv.Itoa(f.perPage))
		params.Set("page", strconv.Itoa(page))

		var resp vacanciesResponse
		if err := f.getJSON(ctx, vacanciesPath, params, &resp); err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(resp.Items) == 0 {
			break
		}
		all = append(all, resp.Items...)
	}

	return all, nil
}

func (f *HHFetcher) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := f.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("http GET %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &APIError{
			Endpoint: path,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
