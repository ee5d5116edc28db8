package scheduling

import (
	"context"
	"fmt"

	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/scheduling"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	appointmentSequenceKey    = "appt"
	unavailabilitySequenceKey = "unav"
)

// SchedulingService manages appointments and branch unavailability
type SchedulingService struct {
	appointmentRepo    scheduling.AppointmentRepository
	unavailabilityRepo scheduling.UnavailabilityRepository
	customerRepo       customer.CustomerRepository
	sequences          shared.SequenceGenerator
	publisher          shared.EventPublisher
	logger             *zap.Logger
}

// NewSchedulingService creates a new SchedulingService
func NewSchedulingService(
	appointmentRepo scheduling.AppointmentRepository,
	unavailabilityRepo scheduling.UnavailabilityRepository,
	customerRepo customer.CustomerRepository,
	sequences shared.SequenceGenerator,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SchedulingService {
	return &SchedulingService{
		appointmentRepo:    appointmentRepo,
		unavailabilityRepo: unavailabilityRepo,
		customerRepo:       customerRepo,
		sequences:          sequences,
		publisher:          publisher,
		logger:             logger,
	}
}

// ListAppointments returns appointments filtered by status, branch and date
func (s *SchedulingService) ListAppointments(ctx context.Context, scope shared.Scope, q ListAppointmentsQuery) ([]AppointmentResponse, error) {
	branchID, err := scope.Resolve(q.BranchID)
	if err != nil {
		return nil, err
	}
	filter := scheduling.AppointmentFilter{
		BranchID: branchID,
		Status:   scheduling.AppointmentStatus(q.Status),
	}
	if q.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown appointment status %q", q.Status))
	}
	if q.Date != "" {
		d, err := parseDate(q.Date)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "date must be YYYY-MM-DD")
		}
		filter.Date = &d
	}

	appts, err := s.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]AppointmentResponse, len(appts))
	for i := range appts {
		out[i] = ToAppointmentResponse(&appts[i])
	}
	return out, nil
}

// ListApproved is ListAppointments limited to Approved
func (s *SchedulingService) ListApproved(ctx context.Context, scope shared.Scope, branchID string) ([]AppointmentResponse, error) {
	return s.ListAppointments(ctx, scope, ListAppointmentsQuery{Status: string(scheduling.AppointmentApproved), BranchID: branchID})
}

// ListPending is ListAppointments limited to Pending
func (s *SchedulingService) ListPending(ctx context.Context, scope shared.Scope, branchID string) ([]AppointmentResponse, error) {
	return s.ListAppointments(ctx, scope, ListAppointmentsQuery{Status: string(scheduling.AppointmentPending), BranchID: branchID})
}

// CreateAppointment books a pending appointment. A slot inside an
// unavailability of the branch is refused.
func (s *SchedulingService) CreateAppointment(ctx context.Context, scope shared.Scope, req CreateAppointmentRequest) (*AppointmentResponse, error) {
	branchID, err := scope.Resolve(req.BranchID)
	if err != nil {
		return nil, err
	}
	if branchID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "branch_id is required")
	}
	date, err := parseDate(req.DateForInquiry)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "date_for_inquiry must be YYYY-MM-DD")
	}
	slot, err := scheduling.NewTimeRange(req.TimeStart, req.TimeEnd)
	if err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.FindByCustID(ctx, req.CustID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Customer "+req.CustID+" does not exist")
		}
		return nil, err
	}

	blocks, err := s.unavailabilityRepo.FindByBranchAndDate(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		if blocks[i].Blocks(date, slot) {
			return nil, shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("Branch is unavailable on %s (%s)", req.DateForInquiry, blocks[i].Type))
		}
	}

	seq, err := s.sequences.Next(ctx, appointmentSequenceKey)
	if err != nil {
		return nil, fmt.Errorf("allocate appointment id: %w", err)
	}
	a, err := scheduling.NewAppointment(branchID, scheduling.FormatAppointmentID(seq), req.CustID, date, slot)
	if err != nil {
		return nil, err
	}
	if err := s.appointmentRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a)

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", a.AppointmentID),
		zap.String("branch_id", branchID),
		zap.String("date", req.DateForInquiry))

	resp := ToAppointmentResponse(a)
	return &resp, nil
}

// UpdateAppointmentStatus approves or cancels an appointment
func (s *SchedulingService) UpdateAppointmentStatus(ctx context.Context, scope shared.Scope, appointmentID string, req UpdateAppointmentStatusRequest) (*AppointmentResponse, error) {
	a, err := s.appointmentRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(a.BranchID) {
		return nil, shared.ErrForbidden
	}
	if err := a.ChangeStatus(scheduling.AppointmentStatus(req.Status), req.Reason); err != nil {
		return nil, err
	}
	if err := s.appointmentRepo.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a)

	resp := ToAppointmentResponse(a)
	return &resp, nil
}

// ListUnavailability returns the unavailability records of a branch, or all of them
func (s *SchedulingService) ListUnavailability(ctx context.Context, scope shared.Scope, branchID string) ([]UnavailabilityResponse, error) {
	branchID, err := scope.Resolve(branchID)
	if err != nil {
		return nil, err
	}
	list, err := s.unavailabilityRepo.FindAll(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]UnavailabilityResponse, len(list))
	for i := range list {
		out[i] = ToUnavailabilityResponse(&list[i])
	}
	return out, nil
}

// CreateUnavailability stores the record and cancels the approved
// appointments it blocks
func (s *SchedulingService) CreateUnavailability(ctx context.Context, scope shared.Scope, req CreateUnavailabilityRequest) (*CreateUnavailabilityResponse, error) {
	branchID, err := scope.Resolve(req.BranchID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.DateUnavailable)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "date_unavailable must be YYYY-MM-DD")
	}

	kind := scheduling.UnavailabilityType(req.Type)
	var slot *scheduling.TimeRange
	if kind == scheduling.PartialDay {
		if req.TimeStart == "" || req.TimeEnd == "" {
			return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Partial day unavailability needs a start and end time")
		}
		r, err := scheduling.NewTimeRange(req.TimeStart, req.TimeEnd)
		if err != nil {
			return nil, err
		}
		slot = &r
	}

	seq, err := s.sequences.Next(ctx, unavailabilitySequenceKey)
	if err != nil {
		return nil, fmt.Errorf("allocate unavailability id: %w", err)
	}
	u, err := scheduling.NewUnavailability(branchID, scheduling.FormatUnavailabilityID(seq), date, kind, slot, req.Note)
	if err != nil {
		return nil, err
	}
	if err := s.unavailabilityRepo.Save(ctx, u); err != nil {
		return nil, err
	}

	cancelled, err := s.CancelAffected(ctx, u)
	if err != nil {
		s.logger.Error("Cancelling affected appointments failed",
			zap.String("unavailability_id", u.UnavailabilityID),
			zap.Error(err))
	}
	u.RecordCancelled(len(cancelled))
	s.publish(ctx, u)

	s.logger.Info("Unavailability created",
		zap.String("unavailability_id", u.UnavailabilityID),
		zap.String("branch_id", branchID),
		zap.String("type", string(kind)),
		zap.Int("cancelled", len(cancelled)))

	return &CreateUnavailabilityResponse{
		Unavailability: ToUnavailabilityResponse(u),
		CancelledCount: len(cancelled),
		Cancelled:      toAppointmentResponses(cancelled),
	}, nil
}

// CancelAffected cancels the approved appointments that u blocks and
// returns the ones that were saved. A save failure stops the sweep.
func (s *SchedulingService) CancelAffected(ctx context.Context, u *scheduling.Unavailability) ([]*scheduling.Appointment, error) {
	day := u.DateUnavailable
	appts, err := s.appointmentRepo.FindAll(ctx, scheduling.AppointmentFilter{
		BranchID: u.BranchID,
		Status:   scheduling.AppointmentApproved,
		Date:     &day,
	})
	if err != nil {
		return nil, err
	}
	ptrs := make([]*scheduling.Appointment, len(appts))
	for i := range appts {
		ptrs[i] = &appts[i]
	}

	affected := u.CancelAffected(ptrs)
	saved := make([]*scheduling.Appointment, 0, len(affected))
	for _, a := range affected {
		if err := s.appointmentRepo.SaveWithLock(ctx, a); err != nil {
			return saved, fmt.Errorf("cancel appointment %s: %w", a.AppointmentID, err)
		}
		s.publish(ctx, a)
		saved = append(saved, a)
	}
	return saved, nil
}

// DeleteUnavailability removes an unavailability record. Appointments it
// cancelled stay cancelled.
func (s *SchedulingService) DeleteUnavailability(ctx context.Context, scope shared.Scope, unavailabilityID string) error {
	u, err := s.unavailabilityRepo.FindByID(ctx, unavailabilityID)
	if err != nil {
		return err
	}
	if !scope.Allows(u.BranchID) {
		return shared.ErrForbidden
	}
	if err := s.unavailabilityRepo.Delete(ctx, unavailabilityID); err != nil {
		return err
	}
	u.MarkDeleted()
	s.publish(ctx, u)
	return nil
}

func (s *SchedulingService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.publisher, agg); err != nil {
		s.logger.Warn("Failed to publish scheduling events", zap.Error(err))
	}
}
