// Package model defines the hh.ru payload shapes and the report rows shared
// by the scraper, the store and the report surfaces.
package model

// Employer is one candidate returned by the employer search endpoint.
type Employer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Vacancy is a raw listing from the vacancy search endpoint. Only the fields
// persisted by the store are decoded.
type Vacancy struct {
	Name         string                `json:"name"`
	PublishedAt  string                `json:"published_at"`
	AlternateURL string                `json:"alternate_url"`
	Salary       Optional[SalaryRange] `json:"salary"`
}

// SalaryRange is the salary sub-record; either bound may be missing or null.
type SalaryRange struct {
	From Optional[int] `json:"from"`
	To   Optional[int] `json:"to"`
}

// CompanyCount is a row of the vacancies-per-employer report.
type CompanyCount struct {
	Employer  string `json:"employer"`
	Vacancies int    `json:"vacancies"`
}

// VacancyListing is a vacancy joined with its employer name.
type VacancyListing struct {
	Employer   string `json:"employer"`
	Title      string `json:"title"`
	SalaryFrom int    `json:"salaryFrom"`
	SalaryTo   int    `json:"salaryTo"`
	URL        string `json:"url"`
}

// VacancyBrief is a vacancy without its employer.
type VacancyBrief struct {
	Title      string `json:"title"`
	SalaryFrom int    `json:"salaryFrom"`
	SalaryTo   int    `json:"salaryTo"`
	URL        string `json:"url"`
}
