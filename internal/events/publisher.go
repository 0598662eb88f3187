// Package events announces committed companies on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel carries one message per company committed by a scrape run.
const Channel = "hh:company_saved"

const typeCompanySaved = "EVENT_COMPANY_SAVED"

// CompanySaved is the payload published after a company transaction commits.
type CompanySaved struct {
	Type       string    `json:"type"`
	RunID      string    `json:"runId"`
	Company    string    `json:"company"`
	EmployerID string    `json:"employerId"`
	CompanyID  int       `json:"companyId"`
	Vacancies  int       `json:"vacancies"`
	SavedAt    time.Time `json:"savedAt"`
}

// Publisher publishes events to Redis. A Publisher with a nil client drops
// every event, so callers need not check whether Redis is configured.
type Publisher struct {
	rdb *redis.Client
	now func() time.Time
}

// NewPublisher wraps rdb, which may be nil.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb, now: time.Now}
}

// CompanySaved publishes ev on Channel, filling Type and SavedAt.
func (p *Publisher) CompanySaved(ctx context.Context, ev CompanySaved) error {
	if p == nil || p.rdb == nil {
		return nil
	}

	payload, err := p.payload(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", typeCompanySaved, err)
	}
	return nil
}

// payload fills Type and a missing SavedAt and encodes ev.
func (p *Publisher) payload(ev CompanySaved) ([]byte, error) {
	ev.Type = typeCompanySaved
	if ev.SavedAt.IsZero() {
		ev.SavedAt = p.now().UTC()
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typeCompanySaved, err)
	}
	return b, nil
}
