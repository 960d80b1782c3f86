package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"medrx_backend/internal/model"
	"medrx_backend/internal/push"
)

// =============================================================================
// IN-MEMORY DEVICE TOKEN STORE
// =============================================================================

type memTokenStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]model.DeviceToken

	listErr   error
	deleteErr error
	deleted   []string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{rows: make(map[string]model.DeviceToken)}
}

func (m *memTokenStore) Upsert(ctx context.Context, patientID int64, token string, deviceType *model.DeviceType) (*model.DeviceToken, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if row, ok := m.rows[token]; ok {
		row.PatientID = patientID
		row.DeviceType = deviceType
		row.UpdatedAt = now
		m.rows[token] = row
		return &row, false, nil
	}
	m.nextID++
	row := model.DeviceToken{
		ID:         m.nextID,
		PatientID:  patientID,
		Token:      token,
		DeviceType: deviceType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.rows[token] = row
	return &row, true, nil
}

func (m *memTokenStore) ListByPatient(ctx context.Context, patientID int64) ([]model.DeviceToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.DeviceToken{}
	for _, row := range m.rows {
		if row.PatientID == patientID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memTokenStore) Delete(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, token)
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.rows[token]; !ok {
		return false, nil
	}
	delete(m.rows, token)
	return true, nil
}

func (m *memTokenStore) has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[token]
	return ok
}

func (m *memTokenStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memTokenStore) seed(patientID int64, tokens ...string) {
	for _, tok := range tokens {
		_, _, _ = m.Upsert(context.Background(), patientID, tok, nil)
	}
}

// =============================================================================
// SCRIPTED PUSH PROVIDER
// =============================================================================

// scriptedProvider answers per token; tokens without a script succeed.
type scriptedProvider struct {
	mu      sync.Mutex
	results map[string]error
	panics  map[string]bool
	sent    []push.Message
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		results: make(map[string]error),
		panics:  make(map[string]bool),
	}
}

func (p *scriptedProvider) fail(token string, kind push.Kind) {
	p.results[token] = &push.DeliveryError{Kind: kind, Provider: "test", Err: errors.New("scripted failure")}
}

func (p *scriptedProvider) Send(ctx context.Context, msg push.Message) error {
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	err := p.results[msg.Token]
	shouldPanic := p.panics[msg.Token]
	p.mu.Unlock()

	if shouldPanic {
		panic("provider exploded")
	}
	return err
}

func (p *scriptedProvider) messages() []push.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]push.Message(nil), p.sent...)
}

// =============================================================================
// PRESCRIPTION REPOSITORY
// =============================================================================

type mockPrescriptionRepository struct {
	createFn  func(ctx context.Context, p *model.Prescription) error
	getByIDFn func(ctx context.Context, id int64) (*model.Prescription, error)

	createCalls int
}

func (m *mockPrescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	p.ID = int64(m.createCalls)
	p.CreatedAt = time.Now()
	return nil
}

func (m *mockPrescriptionRepository) List(ctx context.Context) ([]model.Prescription, error) {
	return []model.Prescription{}, nil
}

func (m *mockPrescriptionRepository) ListByPatient(ctx context.Context, patientID int64) ([]model.Prescription, error) {
	return []model.Prescription{}, nil
}

func (m *mockPrescriptionRepository) GetByID(ctx context.Context, id int64) (*model.Prescription, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPrescriptionNotFound
}

// notifierFunc adapts a function to PrescriptionNotifier.
type notifierFunc func(ctx context.Context, p *model.Prescription) bool

func (f notifierFunc) Dispatch(ctx context.Context, p *model.Prescription) bool {
	return f(ctx, p)
}
