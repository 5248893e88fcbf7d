package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/careflow/clinic-api/config"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
	"github.com/careflow/clinic-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// maxAllocationRetries bounds how often a booking recounts after losing the
// race for a queue position to a concurrent insert.
const maxAllocationRetries = 3

// Service allocates queue positions and derived slot times for appointments.
// Positions are dense per (date, specialty) and the clock time is pure
// arithmetic over the position, so two appointments can never disagree about
// the calendar.
type Service interface {
	Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error)
	NextSlot(ctx context.Context, date string, specialtyID *int64) (*model.Slot, error)
	Get(ctx context.Context, id int64) (*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error)
	ListBySpecialty(ctx context.Context, specialtyID int64) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateTreatmentStatus(ctx context.Context, id int64, status string) error
}

type service struct {
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	opening      time.Duration
	closing      time.Duration
	slotLength   time.Duration
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	outbox repository.OutboxRepository,
	cfg config.SchedulingConfig,
	logger *logger.Logger,
) (Service, error) {
	opening, err := parseClock(cfg.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("invalid opening time: %w", err)
	}
	closing, err := parseClock(cfg.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("invalid closing time: %w", err)
	}
	if closing <= opening {
		return nil, fmt.Errorf("closing time %s is not after opening time %s", cfg.ClosingTime, cfg.OpeningTime)
	}
	slotLength := cfg.SlotLength
	if slotLength <= 0 {
		slotLength = 30 * time.Minute
	}

	return &service{
		appointments: appointments,
		outbox:       outbox,
		opening:      opening,
		closing:      closing,
		slotLength:   slotLength,
		logger:       logger,
	}, nil
}

// parseClock turns an "HH:MM" time of day into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// slotFor derives the clock time for a queue position. A slot whose end
// would run past closing time means the day is full.
func (s *service) slotFor(position int) (string, error) {
	start := s.opening + time.Duration(position-1)*s.slotLength
	if start+s.slotLength > s.closing {
		return "", apperrors.Conflict("the day is fully booked")
	}
	return formatClock(start), nil
}

// NextSlot previews the position and time the next booking for this day and
// specialty would receive. It takes no lock, so a concurrent booking can
// still claim the slot first.
func (s *service) NextSlot(ctx context.Context, date string, specialtyID *int64) (*model.Slot, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, apperrors.BadRequest("date must be formatted as YYYY-MM-DD", err)
	}

	count, err := s.appointments.CountForDay(ctx, day, specialtyID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	position := count + 1
	slotTime, err := s.slotFor(position)
	if err != nil {
		return nil, err
	}
	return &model.Slot{QueuePosition: position, SlotTime: slotTime}, nil
}

func (s *service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("date must be formatted as YYYY-MM-DD", err)
	}
	birthdate, err := time.Parse(dateLayout, req.PatientBirthdate)
	if err != nil {
		return nil, apperrors.BadRequest("patient_birthdate must be formatted as YYYY-MM-DD", err)
	}

	for attempt := 0; attempt < maxAllocationRetries; attempt++ {
		count, err := s.appointments.CountForDay(ctx, day, req.SpecialtyID)
		if err != nil {
			return nil, apperrors.Storage(err)
		}
		position := count + 1
		slotTime, err := s.slotFor(position)
		if err != nil {
			return nil, err
		}

		appointment := &model.Appointment{
			PatientID:        req.PatientID,
			PatientName:      req.PatientName,
			PatientBirthdate: birthdate,
			PatientPhone:     req.PatientPhone,
			Reason:           req.Reason,
			SpecialtyID:      req.SpecialtyID,
			Date:             day,
			QueuePosition:    position,
			SlotTime:         slotTime,
			Status:           model.AppointmentStatusUnpaid,
			TreatmentStatus:  model.TreatmentStatusScheduled,
		}

		if err := s.appointments.Create(ctx, appointment); err != nil {
			if errors.Is(err, repository.ErrPositionTaken) {
				// Someone else booked this position between the count and
				// the insert. Recount and try the next one.
				s.logger.Debug("queue position taken, retrying", "date", req.Date, "position", position)
				continue
			}
			return nil, apperrors.Storage(err)
		}

		s.emitCreated(ctx, appointment)
		return appointment, nil
	}

	return nil, apperrors.Conflict("could not allocate a queue position, please retry")
}

// emitCreated records an appointment.created event for the outbox worker.
// The booking itself already succeeded, so an outbox failure is only logged.
func (s *service) emitCreated(ctx context.Context, appointment *model.Appointment) {
	payload, err := json.Marshal(appointment)
	if err != nil {
		s.logger.Error(err, "failed to encode appointment event", "appointment_id", appointment.ID)
		return
	}
	event := &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record outbox event", "appointment_id", appointment.ID)
	}
}

func (s *service) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, apperrors.Storage(err)
	}
	return appointment, nil
}

func (s *service) ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return appointments, nil
}

func (s *service) ListBySpecialty(ctx context.Context, specialtyID int64) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListBySpecialty(ctx, specialtyID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return appointments, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if status != model.AppointmentStatusUnpaid && status != model.AppointmentStatusPaid {
		return apperrors.BadRequest(fmt.Sprintf("unknown status %q", status), nil)
	}
	return s.mapUpdateErr(s.appointments.UpdateStatus(ctx, id, status))
}

func (s *service) UpdateTreatmentStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case model.TreatmentStatusScheduled, model.TreatmentStatusInProgress, model.TreatmentStatusDone:
	default:
		return apperrors.BadRequest(fmt.Sprintf("unknown treatment status %q", status), nil)
	}
	return s.mapUpdateErr(s.appointments.UpdateTreatmentStatus(ctx, id, status))
}

func (s *service) mapUpdateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("appointment")
	}
	return apperrors.Storage(err)
}
