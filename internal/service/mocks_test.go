package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/followup"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

// Mock repositories

type MockJobRepo struct {
	jobs map[int]*model.Job
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int) (*model.Job, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, appErrors.NewNotFound("job", id)
}

func (m *MockJobRepo) ListOpen(ctx context.Context, afterID, limit int) ([]model.Job, error) {
	ids := []int{}
	for id, j := range m.jobs {
		if id > afterID && j.Status == model.JobStatusOpen {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := []model.Job{}
	for _, id := range ids {
		out = append(out, *m.jobs[id])
	}
	return out, nil
}

type MockCustomerRepo struct {
	customers map[int]*model.Customer
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, id int) (*model.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, appErrors.NewNotFound("customer", id)
}

type MockQuoteRepo struct {
	byJob map[int]*model.Quote
}

func (m *MockQuoteRepo) LatestForJob(ctx context.Context, jobID int) (*model.Quote, error) {
	return m.byJob[jobID], nil
}

type MockCallRepo struct {
	calls     map[int]*model.Call
	updateErr error
	updated   []model.Outcome
}

func (m *MockCallRepo) GetByID(ctx context.Context, id int) (*model.Call, error) {
	if c, ok := m.calls[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, appErrors.NewNotFound("call", id)
}

func (m *MockCallRepo) LatestForJob(ctx context.Context, jobID int) (*model.Call, error) {
	var latest *model.Call
	for _, c := range m.calls {
		if c.JobID == jobID && (latest == nil || c.CreatedAt.After(latest.CreatedAt)) {
			latest = c
		}
	}
	return latest, nil
}

func (m *MockCallRepo) UpdateOutcome(ctx context.Context, callID int, outcome model.Outcome) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, outcome)
	return nil
}

type MockInvoiceRepo struct {
	invoices map[int]*model.Invoice
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id int) (*model.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, appErrors.NewNotFound("invoice", id)
}

func (m *MockInvoiceRepo) LatestOpenForJob(ctx context.Context, jobID int) (*model.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.JobID == jobID && inv.IsOpen() {
			return inv, nil
		}
	}
	return nil, nil
}

type statusUpdate struct {
	ID        int
	Status    string
	LastError string
	SentAt    *time.Time
}

type MockMessageRepo struct {
	mu        sync.Mutex
	messages  []model.Message
	// committed holds rows written by another process that the list
	// methods have not observed yet.
	committed []model.Message
	updates   []statusUpdate
	nextID    int
}

func (m *MockMessageRepo) CreateUnlessSent(ctx context.Context, msg *model.Message, since, until time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := followup.MatchParams{Channel: msg.Channel, Window: followup.Window{Start: since, End: until}}
	if msg.JobID != nil {
		p.JobID = *msg.JobID
	}
	if msg.QuoteID != nil {
		p.QuoteID = *msg.QuoteID
	}
	if msg.InvoiceID != nil {
		p.InvoiceID = *msg.InvoiceID
	}
	all := append(append([]model.Message{}, m.messages...), m.committed...)
	if followup.FindMatchingMessage(all, p) != nil {
		return false, nil
	}
	m.nextID++
	msg.ID = 100 + m.nextID
	m.messages = append(m.messages, *msg)
	return true, nil
}

func (m *MockMessageRepo) GetByID(ctx context.Context, id int) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.messages {
		if m.messages[i].ID == id {
			copied := m.messages[i]
			return &copied, nil
		}
	}
	return nil, appErrors.NewNotFound("message", id)
}

func (m *MockMessageRepo) ListForJobSince(ctx context.Context, jobID int, since time.Time) ([]model.Message, error) {
	return m.filter(func(msg model.Message) bool {
		return msg.JobID != nil && *msg.JobID == jobID && !msg.CreatedAt.Before(since)
	}), nil
}

func (m *MockMessageRepo) ListForInvoiceSince(ctx context.Context, invoiceID int, since time.Time) ([]model.Message, error) {
	return m.filter(func(msg model.Message) bool {
		return msg.InvoiceID != nil && *msg.InvoiceID == invoiceID && !msg.CreatedAt.Before(since)
	}), nil
}

func (m *MockMessageRepo) filter(keep func(model.Message) bool) []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Message{}
	for _, msg := range m.messages {
		if keep(msg) {
			out = append(out, msg)
		}
	}
	return out
}

func (m *MockMessageRepo) UpdateStatus(ctx context.Context, id int, status, lastError string, sentAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, statusUpdate{ID: id, Status: status, LastError: lastError, SentAt: sentAt})
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].Status = status
			m.messages[i].LastError = lastError
		}
	}
	return nil
}

type MockQueue struct {
	mu        sync.Mutex
	published []any
	err       error
}

func (q *MockQueue) Publish(topic string, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, payload)
	return nil
}

func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

type MockSchema struct {
	err         error
	verified    int
	invalidated []string
}

func (m *MockSchema) VerifyCallOutcomeColumns(ctx context.Context) error {
	m.verified++
	return m.err
}

func (m *MockSchema) Invalidate(table string) {
	m.invalidated = append(m.invalidated, table)
}

type MockSender struct {
	err  error
	sent []string
}

func (s *MockSender) Send(ctx context.Context, channel model.Channel, to, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, string(channel)+":"+to)
	return nil
}

var errBroker = errors.New("broker unavailable")

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
