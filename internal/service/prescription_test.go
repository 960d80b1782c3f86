package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrx_backend/internal/model"
	"medrx_backend/internal/push"
	"medrx_backend/internal/queue"
)

// =============================================================================
// CREATE WORKFLOW
// =============================================================================

func TestPrescriptionService_Create_NotifiesPatient(t *testing.T) {
	repo := &mockPrescriptionRepository{}
	var got *model.Prescription
	svc := NewPrescriptionService(repo, notifierFunc(func(ctx context.Context, p *model.Prescription) bool {
		got = p
		return true
	}), zerolog.Nop())

	p, err := svc.Create(context.Background(), model.CreatePrescriptionRequest{
		PatientID: 42,
		Diagnosis: strPtr("  Gripe "),
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, int64(42), got.PatientID)
	assert.Equal(t, "Gripe", *p.Diagnosis)
	assert.Nil(t, p.Notes)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPrescriptionService_Create_MissingPatient(t *testing.T) {
	repo := &mockPrescriptionRepository{}
	called := false
	svc := NewPrescriptionService(repo, notifierFunc(func(ctx context.Context, p *model.Prescription) bool {
		called = true
		return true
	}), zerolog.Nop())

	_, err := svc.Create(context.Background(), model.CreatePrescriptionRequest{})

	assert.ErrorIs(t, err, model.ErrPatientIDRequired)
	assert.Equal(t, 0, repo.createCalls)
	assert.False(t, called)
}

func TestPrescriptionService_Create_StorageFailure(t *testing.T) {
	dbErr := errors.New("insert failed")
	repo := &mockPrescriptionRepository{
		createFn: func(ctx context.Context, p *model.Prescription) error { return dbErr },
	}
	called := false
	svc := NewPrescriptionService(repo, notifierFunc(func(ctx context.Context, p *model.Prescription) bool {
		called = true
		return true
	}), zerolog.Nop())

	p, err := svc.Create(context.Background(), model.CreatePrescriptionRequest{PatientID: 42})

	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, p)
	assert.False(t, called, "no notification for an unsaved prescription")
}

func TestPrescriptionService_Create_UnknownPatient(t *testing.T) {
	repo := &mockPrescriptionRepository{
		createFn: func(ctx context.Context, p *model.Prescription) error { return model.ErrPatientNotFound },
	}
	svc := NewPrescriptionService(repo, nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), model.CreatePrescriptionRequest{PatientID: 999})

	assert.ErrorIs(t, err, model.ErrPatientNotFound)
}

func TestPrescriptionService_Create_NotifierOutcomeDoesNotMatter(t *testing.T) {
	tests := []struct {
		name     string
		notifier PrescriptionNotifier
	}{
		{
			name:     "dispatch reports failure",
			notifier: notifierFunc(func(ctx context.Context, p *model.Prescription) bool { return false }),
		},
		{
			name:     "dispatch panics",
			notifier: notifierFunc(func(ctx context.Context, p *model.Prescription) bool { panic("boom") }),
		},
		{
			name: "dispatch mutates its argument",
			notifier: notifierFunc(func(ctx context.Context, p *model.Prescription) bool {
				p.PatientID = -1
				p.Diagnosis = nil
				return true
			}),
		},
		{
			name:     "no notifier",
			notifier: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPrescriptionService(&mockPrescriptionRepository{}, tt.notifier, zerolog.Nop())

			p, err := svc.Create(context.Background(), model.CreatePrescriptionRequest{
				PatientID: 42,
				Diagnosis: strPtr("Gripe"),
			})

			require.NoError(t, err)
			assert.Equal(t, int64(1), p.ID)
			assert.Equal(t, int64(42), p.PatientID)
			require.NotNil(t, p.Diagnosis)
			assert.Equal(t, "Gripe", *p.Diagnosis)
		})
	}
}

// End to end through the real dispatcher: patient 42 has tokA (valid) and tokB (dead).
func TestPrescriptionService_Create_PrunesDeadTokenInline(t *testing.T) {
	store := newMemTokenStore()
	store.seed(42, "tokA", "tokB")
	provider := newScriptedProvider()
	provider.fail("tokB", push.KindPermanentInvalidToken)

	repo := &mockPrescriptionRepository{
		createFn: func(ctx context.Context, p *model.Prescription) error {
			p.ID = 9
			p.CreatedAt = time.Now()
			return nil
		},
	}
	svc := NewPrescriptionService(repo, newTestDispatcher(store, provider), zerolog.Nop())

	p, err := svc.Create(context.Background(), model.CreatePrescriptionRequest{PatientID: 42, Diagnosis: strPtr("Gripe")})

	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Len(t, provider.messages(), 2)
	assert.True(t, store.has("tokA"))
	assert.False(t, store.has("tokB"))
}

func TestPrescriptionService_Create_ClientGoneStillPrunes(t *testing.T) {
	store := newMemTokenStore()
	store.seed(42, "tokA", "tokB")
	provider := newScriptedProvider()
	provider.fail("tokB", push.KindPermanentInvalidToken)
	svc := NewPrescriptionService(&mockPrescriptionRepository{}, newTestDispatcher(store, provider), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, model.CreatePrescriptionRequest{PatientID: 42})

	require.NoError(t, err)
	assert.Len(t, provider.messages(), 2)
	assert.True(t, store.has("tokA"))
	assert.False(t, store.has("tokB"))
}

// =============================================================================
// NOTIFIERS
// =============================================================================

func TestDetachedNotifier_RunsInBackground(t *testing.T) {
	done := make(chan int64, 1)
	release := make(chan struct{})
	inner := notifierFunc(func(ctx context.Context, p *model.Prescription) bool {
		<-release
		assert.NoError(t, ctx.Err(), "background dispatch must outlive the request context")
		done <- p.ID
		return true
	})
	n := NewDetachedNotifier(inner, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, n.Dispatch(ctx, &model.Prescription{ID: 5, PatientID: 42}))
	cancel()
	close(release)

	select {
	case id := <-done:
		assert.Equal(t, int64(5), id)
	case <-time.After(2 * time.Second):
		t.Fatal("background dispatch did not run")
	}
}

func TestDetachedNotifier_RecoversPanic(t *testing.T) {
	finished := make(chan struct{})
	inner := notifierFunc(func(ctx context.Context, p *model.Prescription) bool {
		defer close(finished)
		panic("boom")
	})
	n := NewDetachedNotifier(inner, zerolog.Nop())

	assert.True(t, n.Dispatch(context.Background(), &model.Prescription{ID: 5}))
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("background dispatch did not run")
	}
}

type fakePublisher struct {
	err    error
	events []queue.PrescriptionEvent
	stream string
}

func (f *fakePublisher) Publish(ctx context.Context, stream string, event queue.PrescriptionEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.stream = stream
	f.events = append(f.events, event)
	return "1-0", nil
}

func TestQueuedNotifier_Dispatch(t *testing.T) {
	pub := &fakePublisher{}
	n := NewQueuedNotifier(pub, zerolog.Nop())

	ok := n.Dispatch(context.Background(), &model.Prescription{ID: 9, PatientID: 42})

	assert.True(t, ok)
	assert.Equal(t, queue.StreamPrescriptions, pub.stream)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.EventPrescriptionCreated, pub.events[0].Type)
	assert.Equal(t, int64(9), pub.events[0].PrescriptionID)
	assert.Equal(t, int64(42), pub.events[0].PatientID)
}

func TestQueuedNotifier_PublishFailure(t *testing.T) {
	n := NewQueuedNotifier(&fakePublisher{err: errors.New("redis down")}, zerolog.Nop())

	assert.False(t, n.Dispatch(context.Background(), &model.Prescription{ID: 9, PatientID: 42}))
}
