package scheduling

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/clinic-api/config"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
	"github.com/careflow/clinic-api/pkg/logger"
)

type slotKey struct {
	date      string
	specialty int64
	position  int
}

// fakeAppointmentRepo enforces the same uniqueness the database index does,
// so allocator races are observable without a running postgres.
type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[slotKey]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{rows: make(map[slotKey]*model.Appointment)}
}

func keyFor(date time.Time, specialtyID *int64, position int) slotKey {
	var specialty int64
	if specialtyID != nil {
		specialty = *specialtyID
	}
	return slotKey{date: date.Format("2006-01-02"), specialty: specialty, position: position}
}

func (f *fakeAppointmentRepo) CountForDay(_ context.Context, date time.Time, specialtyID *int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for k := range f.rows {
		if k.date != date.Format("2006-01-02") {
			continue
		}
		if specialtyID == nil || k.specialty == *specialtyID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAppointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyFor(appointment.Date, appointment.SpecialtyID, appointment.QueuePosition)
	if _, taken := f.rows[k]; taken {
		return repository.ErrPositionTaken
	}
	f.nextID++
	appointment.ID = f.nextID
	f.rows[k] = appointment
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id int64) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID int64) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.rows {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListBySpecialty(_ context.Context, specialtyID int64) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.rows {
		if a.SpecialtyID != nil && *a.SpecialtyID == specialtyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAppointmentRepo) UpdateTreatmentStatus(_ context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id {
			a.TreatmentStatus = status
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func newTestService(t *testing.T, repo *fakeAppointmentRepo, outbox *fakeOutboxRepo, opening, closing string) Service {
	t.Helper()
	svc, err := NewService(repo, outbox, config.SchedulingConfig{
		OpeningTime: opening,
		ClosingTime: closing,
		SlotLength:  30 * time.Minute,
	}, logger.NewLogger(nil))
	require.NoError(t, err)
	return svc
}

func bookRequest(date string, specialtyID *int64) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		PatientID:        1,
		PatientName:      "Ada Bell",
		PatientBirthdate: "1990-04-12",
		PatientPhone:     "555-0101",
		Reason:           "checkup",
		SpecialtyID:      specialtyID,
		Date:             date,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestBookAssignsSequentialPositionsAndTimes(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "07:00", "17:00")
	specialty := int64Ptr(3)

	first, err := svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.NoError(t, err)
	assert.Equal(t, 1, first.QueuePosition)
	assert.Equal(t, "07:00", first.SlotTime)

	second, err := svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.NoError(t, err)
	assert.Equal(t, 2, second.QueuePosition)
	assert.Equal(t, "07:30", second.SlotTime)

	third, err := svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.NoError(t, err)
	assert.Equal(t, 3, third.QueuePosition)
	assert.Equal(t, "08:00", third.SlotTime)

	assert.Equal(t, model.AppointmentStatusUnpaid, third.Status)
	assert.Equal(t, model.TreatmentStatusScheduled, third.TreatmentStatus)
}

func TestBookScopesPositionsPerDayAndSpecialty(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "08:00", "17:00")

	a, err := svc.Book(context.Background(), bookRequest("2024-06-01", int64Ptr(3)))
	require.NoError(t, err)
	assert.Equal(t, 1, a.QueuePosition)

	// Different specialty, same day: its own queue.
	b, err := svc.Book(context.Background(), bookRequest("2024-06-01", int64Ptr(4)))
	require.NoError(t, err)
	assert.Equal(t, 1, b.QueuePosition)

	// Same specialty, different day: its own queue.
	c, err := svc.Book(context.Background(), bookRequest("2024-06-02", int64Ptr(3)))
	require.NoError(t, err)
	assert.Equal(t, 1, c.QueuePosition)
}

func TestBookWithoutSpecialtyCountsWholeDay(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "08:00", "17:00")

	_, err := svc.Book(context.Background(), bookRequest("2024-06-01", int64Ptr(3)))
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), bookRequest("2024-06-01", int64Ptr(4)))
	require.NoError(t, err)

	general, err := svc.Book(context.Background(), bookRequest("2024-06-01", nil))
	require.NoError(t, err)
	assert.Equal(t, 3, general.QueuePosition)
	assert.Equal(t, "09:00", general.SlotTime)
}

func TestBookRejectsSlotPastClosing(t *testing.T) {
	repo := newFakeAppointmentRepo()
	// Two slots fit between 08:00 and 09:00.
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "08:00", "09:00")
	specialty := int64Ptr(1)

	_, err := svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestBookRejectsMalformedDate(t *testing.T) {
	svc := newTestService(t, newFakeAppointmentRepo(), &fakeOutboxRepo{}, "08:00", "17:00")

	_, err := svc.Book(context.Background(), bookRequest("01-06-2024", int64Ptr(1)))
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeBadRequest, appErr.Code)
}

func TestBookEmitsCreatedEvent(t *testing.T) {
	repo := newFakeAppointmentRepo()
	outbox := &fakeOutboxRepo{}
	svc := newTestService(t, repo, outbox, "08:00", "17:00")

	_, err := svc.Book(context.Background(), bookRequest("2024-06-01", int64Ptr(2)))
	require.NoError(t, err)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentCreated, outbox.events[0].EventType)
}

func TestConcurrentBookingsGetUniquePositions(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "08:00", "17:00")
	specialty := int64Ptr(5)

	const workers = 8
	results := make(chan *model.Appointment, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
			if err != nil {
				errs <- err
				return
			}
			results <- a
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	// With bounded retries a heavily contended booking may give up with a
	// conflict, but every accepted booking must hold a distinct position.
	seen := make(map[int]bool)
	for a := range results {
		assert.False(t, seen[a.QueuePosition], "position %d assigned twice", a.QueuePosition)
		seen[a.QueuePosition] = true
	}
	for err := range errs {
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	}
	require.NotEmpty(t, seen)
}

func TestNextSlotPreviewsWithoutBooking(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "08:00", "17:00")
	specialty := int64Ptr(3)

	_, err := svc.Book(context.Background(), bookRequest("2024-06-01", specialty))
	require.NoError(t, err)

	slot, err := svc.NextSlot(context.Background(), "2024-06-01", specialty)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.QueuePosition)
	assert.Equal(t, "08:30", slot.SlotTime)

	// Previewing twice books nothing.
	slot2, err := svc.NextSlot(context.Background(), "2024-06-01", specialty)
	require.NoError(t, err)
	assert.Equal(t, slot.QueuePosition, slot2.QueuePosition)
}

func TestUpdateStatusValidatesValues(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(t, repo, &fakeOutboxRepo{}, "08:00", "17:00")

	a, err := svc.Book(context.Background(), bookRequest("2024-06-01", int64Ptr(1)))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), a.ID, model.AppointmentStatusPaid))
	require.NoError(t, svc.UpdateTreatmentStatus(context.Background(), a.ID, model.TreatmentStatusDone))

	err = svc.UpdateStatus(context.Background(), a.ID, "Settled")
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeBadRequest, appErr.Code)

	err = svc.UpdateStatus(context.Background(), 9999, model.AppointmentStatusPaid)
	require.Error(t, err)
	appErr, _ = apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"08:00", 8 * time.Hour, true},
		{"17:30", 17*time.Hour + 30*time.Minute, true},
		{"8am", 0, false},
		{"25:00", 0, false},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", formatClock(8*time.Hour))
	assert.Equal(t, "13:30", formatClock(13*time.Hour+30*time.Minute))
	assert.Equal(t, fmt.Sprintf("%02d:%02d", 9, 0), formatClock(9*time.Hour))
}
