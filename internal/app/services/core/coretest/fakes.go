// Package coretest provides in-memory implementations of the core contracts for package tests.
package coretest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/app/services/shared/rbac"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

func Int64Ptr(v int64) *int64 { return &v }

// AccessControl is the production role policy.
func AccessControl() contracts.AccessControl {
	accessControl, err := rbac.NewAccessControl(zap.NewNop())
	if err != nil {
		panic(err)
	}
	return accessControl
}

func StringPtr(v string) *string { return &v }

// AppointmentStore mirrors the guarded UPDATE semantics of the postgres repository.
type AppointmentStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Appointment

	// BeforeMarkAuthorized runs before the authorized guard is evaluated, outside the lock.
	BeforeMarkAuthorized func(appointmentID int64)
	// BeforeMarkPaymentCompleted runs before the capture guard is evaluated, outside the lock.
	BeforeMarkPaymentCompleted func(appointmentID int64)
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{rows: map[int64]models.Appointment{}}
}

// Put stores a copy of the appointment, assigning an id when it has none.
func (s *AppointmentStore) Put(appointment models.Appointment) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if appointment.ID == 0 {
		s.nextID++
		appointment.ID = s.nextID
	} else if appointment.ID > s.nextID {
		s.nextID = appointment.ID
	}
	s.rows[appointment.ID] = appointment
	return appointment
}

func (s *AppointmentStore) Snapshot(appointmentID int64) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[appointmentID]
}

func (s *AppointmentStore) update(appointmentID int64, guard func(models.Appointment) bool, mutate func(*models.Appointment)) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[appointmentID]
	if !ok || !guard(row) {
		return nil, nil
	}
	mutate(&row)
	row.UpdatedAt = time.Now()
	s.rows[appointmentID] = row
	updated := row
	return &updated, nil
}

func (s *AppointmentStore) Create(_ context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	created := *appointment
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	created.ID = 0
	created = s.Put(created)
	return &created, nil
}

func (s *AppointmentStore) FindByID(_ context.Context, appointmentID int64) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[appointmentID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *AppointmentStore) AssignDoctor(_ context.Context, appointmentID, doctorID int64) (*models.Appointment, error) {
	return s.update(appointmentID,
		func(a models.Appointment) bool { return a.DoctorID == nil },
		func(a *models.Appointment) { a.DoctorID = Int64Ptr(doctorID) },
	)
}

func (s *AppointmentStore) MarkIncludedInPlan(_ context.Context, appointmentID int64) (*models.Appointment, error) {
	return s.update(appointmentID,
		func(a models.Appointment) bool {
			return a.PaymentStatus == models.PaymentStatusPending && !a.Status.IsTerminal()
		},
		func(a *models.Appointment) {
			a.PaymentStatus = models.PaymentStatusIncludedInPlan
			a.PaymentAmount = 0
		},
	)
}

func (s *AppointmentStore) MarkAuthorized(_ context.Context, appointmentID int64, authorizationID string, amount int64) (*models.Appointment, error) {
	if s.BeforeMarkAuthorized != nil {
		s.BeforeMarkAuthorized(appointmentID)
	}
	return s.update(appointmentID,
		func(a models.Appointment) bool {
			return a.PaymentStatus == models.PaymentStatusPending && !a.Status.IsTerminal()
		},
		func(a *models.Appointment) {
			a.PaymentStatus = models.PaymentStatusAuthorized
			a.PaymentAuthorizationID = StringPtr(authorizationID)
			a.PaymentAmount = amount
		},
	)
}

func (s *AppointmentStore) MarkPaymentCompleted(_ context.Context, appointmentID int64, authorizationID string) (*models.Appointment, error) {
	if s.BeforeMarkPaymentCompleted != nil {
		s.BeforeMarkPaymentCompleted(appointmentID)
	}
	return s.update(appointmentID,
		func(a models.Appointment) bool {
			return a.PaymentStatus == models.PaymentStatusAuthorized &&
				a.AuthorizationID() == authorizationID &&
				(a.Status == models.AppointmentStatusConfirmed ||
					a.Status == models.AppointmentStatusInProgress ||
					a.Status == models.AppointmentStatusCompleted)
		},
		func(a *models.Appointment) {
			a.PaymentStatus = models.PaymentStatusCompleted
			a.Status = models.AppointmentStatusCompleted
		},
	)
}

func (s *AppointmentStore) MarkPaymentCancelled(_ context.Context, appointmentID int64, authorizationID string) (*models.Appointment, error) {
	return s.update(appointmentID,
		func(a models.Appointment) bool {
			return a.PaymentStatus == models.PaymentStatusAuthorized && a.AuthorizationID() == authorizationID
		},
		func(a *models.Appointment) {
			a.PaymentStatus = models.PaymentStatusCancelled
			a.Status = models.AppointmentStatusCancelled
		},
	)
}

func (s *AppointmentStore) TransitionStatus(_ context.Context, appointmentID int64, from, to models.AppointmentStatus, allowedPayment []models.PaymentStatus) (*models.Appointment, error) {
	return s.update(appointmentID,
		func(a models.Appointment) bool {
			if a.Status != from {
				return false
			}
			for _, status := range allowedPayment {
				if a.PaymentStatus == status {
					return true
				}
			}
			return false
		},
		func(a *models.Appointment) { a.Status = to },
	)
}

func (s *AppointmentStore) SetVideoRoomURL(_ context.Context, appointmentID int64, url string) error {
	_, err := s.update(appointmentID,
		func(models.Appointment) bool { return true },
		func(a *models.Appointment) { a.VideoRoomURL = StringPtr(url) },
	)
	return err
}

func (s *AppointmentStore) Touch(_ context.Context, appointmentID int64) error {
	_, err := s.update(appointmentID,
		func(models.Appointment) bool { return true },
		func(*models.Appointment) {},
	)
	return err
}

// FindStale orders by UpdatedAt then ID like the postgres query.
func (s *AppointmentStore) FindStale(_ context.Context, cutoff time.Time, limit int) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stale := make([]models.Appointment, 0)
	for _, row := range s.rows {
		open := row.Status == models.AppointmentStatusScheduled || row.Status == models.AppointmentStatusConfirmed
		if open && row.EndsAt().Before(cutoff) {
			stale = append(stale, row)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		if !stale[i].UpdatedAt.Equal(stale[j].UpdatedAt) {
			return stale[i].UpdatedAt.Before(stale[j].UpdatedAt)
		}
		return stale[i].ID < stale[j].ID
	})
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

func (s *AppointmentStore) FindActiveEmergencies(_ context.Context) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := make([]models.Appointment, 0)
	for id := int64(1); id <= s.nextID; id++ {
		row, ok := s.rows[id]
		if ok && row.IsEmergency && !row.Status.IsTerminal() {
			active = append(active, row)
		}
	}
	return active, nil
}

// QuotaStore mirrors the transactional marker-then-decrement behaviour of the postgres repository.
type QuotaStore struct {
	mu      sync.Mutex
	entries map[int64]models.QuotaEntry
	usages  map[int64]int64
}

func NewQuotaStore() *QuotaStore {
	return &QuotaStore{entries: map[int64]models.QuotaEntry{}, usages: map[int64]int64{}}
}

func (s *QuotaStore) SetEntry(entry models.QuotaEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.PatientID] = entry
}

func (s *QuotaStore) Remaining(patientID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[patientID].Remaining
}

func (s *QuotaStore) UsageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.usages)
}

func (s *QuotaStore) FindByPatientID(_ context.Context, patientID int64) (*models.QuotaEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[patientID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *QuotaStore) ExistsUsage(_ context.Context, appointmentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.usages[appointmentID]
	return ok, nil
}

func (s *QuotaStore) ConsumeOnce(_ context.Context, patientID, appointmentID int64, decrementCounter bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usages[appointmentID]; ok {
		return false, nil
	}
	if decrementCounter {
		entry, ok := s.entries[patientID]
		if !ok || entry.Remaining <= 0 || now.After(entry.CycleEnd) {
			return false, exceptions.ErrQuotaExhausted(nil, patientID)
		}
		entry.Remaining--
		s.entries[patientID] = entry
	}
	s.usages[appointmentID] = patientID
	return true, nil
}

func (s *QuotaStore) Upsert(_ context.Context, entry *models.QuotaEntry) (*models.QuotaEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *entry
	saved.UpdatedAt = time.Now()
	s.entries[entry.PatientID] = saved
	return &saved, nil
}

// QuotaTracker implements the quota usecase over a QuotaStore and PlanStore.
type QuotaTracker struct {
	Store *QuotaStore
	Plans *PlanStore
	Now   func() time.Time
}

func (q *QuotaTracker) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

func (q *QuotaTracker) HasRemainingQuota(ctx context.Context, patientID int64) (*models.QuotaStatus, error) {
	entry, err := q.Store.FindByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &models.QuotaStatus{PatientID: patientID, PlanName: "none"}, nil
	}
	plan, err := q.Plans.GetPlan(ctx, entry.PlanName)
	if err != nil {
		return nil, err
	}
	now := q.now()
	return &models.QuotaStatus{
		PatientID: patientID,
		PlanName:  plan.Name,
		Unlimited: plan.EmergencyQuota.Unlimited && !now.After(entry.CycleEnd),
		Remaining: entry.EffectiveRemaining(now),
	}, nil
}

func (q *QuotaTracker) DecrementOnce(ctx context.Context, patientID, appointmentID int64) (bool, error) {
	status, err := q.HasRemainingQuota(ctx, patientID)
	if err != nil {
		return false, err
	}
	return q.Store.ConsumeOnce(ctx, patientID, appointmentID, !status.Unlimited, q.now())
}

func (q *QuotaTracker) HasConsumedQuota(ctx context.Context, appointmentID int64) (bool, error) {
	return q.Store.ExistsUsage(ctx, appointmentID)
}

func (q *QuotaTracker) ResetCycle(ctx context.Context, patientID int64, planName string, cycleStart, cycleEnd time.Time) (*models.QuotaEntry, error) {
	plan, err := q.Plans.GetPlan(ctx, planName)
	if err != nil {
		return nil, err
	}
	return q.Store.Upsert(ctx, &models.QuotaEntry{
		PatientID:  patientID,
		PlanName:   plan.Name,
		Remaining:  plan.EmergencyQuota.Count,
		CycleStart: cycleStart,
		CycleEnd:   cycleEnd,
	})
}

func (q *QuotaTracker) PlanForPatient(ctx context.Context, patientID int64) (*models.Plan, error) {
	entry, err := q.Store.FindByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return models.NonePlan(), nil
	}
	return q.Plans.GetPlan(ctx, entry.PlanName)
}

// EarningsRecorder records earnings computations.
type EarningsRecorder struct {
	mu    sync.Mutex
	Err   error
	Calls []int64
}

func (e *EarningsRecorder) ComputeEarnings(_ context.Context, appointmentID int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, appointmentID)
	return 0, e.Err
}

func (e *EarningsRecorder) MonthlyReport(_ context.Context, doctorID int64, from, to time.Time) (*models.EarningsReport, error) {
	return &models.EarningsReport{DoctorID: doctorID, From: from, To: to}, e.Err
}

func (e *EarningsRecorder) ExportMonthlyReport(_ context.Context, doctorID int64, month string) (*models.ExportedReport, error) {
	return &models.ExportedReport{ObjectName: month, Report: models.EarningsReport{DoctorID: doctorID}}, e.Err
}

// PlanStore serves both as plan repository and plan catalog.
type PlanStore struct {
	Plans map[string]*models.Plan
}

func NewPlanStore(plans ...*models.Plan) *PlanStore {
	store := &PlanStore{Plans: map[string]*models.Plan{}}
	for _, plan := range plans {
		store.Plans[plan.Name] = plan
	}
	return store
}

func (s *PlanStore) FindByName(_ context.Context, name string) (*models.Plan, error) {
	return s.Plans[name], nil
}

func (s *PlanStore) GetPlan(_ context.Context, name string) (*models.Plan, error) {
	plan, ok := s.Plans[name]
	if !ok {
		return nil, exceptions.ErrPlanNotFound(nil, name)
	}
	return plan, nil
}

type BillingStore struct {
	Profiles map[int64]*models.BillingProfile
	Fees     map[int64]*models.DoctorFee
}

func NewBillingStore() *BillingStore {
	return &BillingStore{Profiles: map[int64]*models.BillingProfile{}, Fees: map[int64]*models.DoctorFee{}}
}

func (s *BillingStore) FindBillingProfileByPatientID(_ context.Context, patientID int64) (*models.BillingProfile, error) {
	return s.Profiles[patientID], nil
}

func (s *BillingStore) FindDoctorFeeByDoctorID(_ context.Context, doctorID int64) (*models.DoctorFee, error) {
	return s.Fees[doctorID], nil
}

type EarningsStore struct {
	mu      sync.Mutex
	nextID  int64
	lines   map[int64]models.EarningsLine
	Inserts int
}

func NewEarningsStore() *EarningsStore {
	return &EarningsStore{lines: map[int64]models.EarningsLine{}}
}

func (s *EarningsStore) Put(line models.EarningsLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	line.ID = s.nextID
	s.lines[line.AppointmentID] = line
}

func (s *EarningsStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *EarningsStore) CreateIfAbsent(_ context.Context, line *models.EarningsLine) (*models.EarningsLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.lines[line.AppointmentID]; ok {
		return &existing, nil
	}
	s.nextID++
	created := *line
	created.ID = s.nextID
	created.CreatedAt = time.Now()
	s.lines[line.AppointmentID] = created
	s.Inserts++
	return &created, nil
}

func (s *EarningsStore) FindByAppointmentID(_ context.Context, appointmentID int64) (*models.EarningsLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[appointmentID]
	if !ok {
		return nil, nil
	}
	return &line, nil
}

func (s *EarningsStore) FindByDoctorAndRange(_ context.Context, doctorID int64, from, to time.Time) ([]models.EarningsLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]models.EarningsLine, 0)
	for _, line := range s.lines {
		if line.DoctorID == doctorID && !line.CreatedAt.Before(from) && line.CreatedAt.Before(to) {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Gateway is a scripted payment gateway. Errors set on it are returned once per call until cleared.
type Gateway struct {
	mu sync.Mutex

	AuthorizeErr error
	CaptureErr   error
	CancelErr    error

	AuthorizeRequests []requests.GatewayAuthorization
	Captured          []string
	Cancelled         []string

	issued int
}

func (g *Gateway) CreateAuthorization(_ context.Context, request *requests.GatewayAuthorization) (*responses.GatewayAuthorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.AuthorizeRequests = append(g.AuthorizeRequests, *request)
	if g.AuthorizeErr != nil {
		return nil, g.AuthorizeErr
	}
	g.issued++
	id := fmt.Sprintf("auth_%d", g.issued)
	return &responses.GatewayAuthorization{ID: id, ClientSecret: id + "_secret", Status: "authorized"}, nil
}

func (g *Gateway) Capture(_ context.Context, authorizationID string) (*responses.GatewayAuthorizationStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CaptureErr != nil {
		return nil, g.CaptureErr
	}
	g.Captured = append(g.Captured, authorizationID)
	return &responses.GatewayAuthorizationStatus{ID: authorizationID, Status: "captured"}, nil
}

func (g *Gateway) Cancel(_ context.Context, authorizationID string) (*responses.GatewayAuthorizationStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CancelErr != nil {
		return nil, g.CancelErr
	}
	g.Cancelled = append(g.Cancelled, authorizationID)
	return &responses.GatewayAuthorizationStatus{ID: authorizationID, Status: "cancelled"}, nil
}

func (g *Gateway) AuthorizeCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.AuthorizeRequests)
}

type Publisher struct {
	mu     sync.Mutex
	Err    error
	Events []models.SettlementEvent
}

func (p *Publisher) Publish(_ context.Context, event models.SettlementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.Events))
	for _, event := range p.Events {
		types = append(types, event.Type)
	}
	return types
}

type VideoRooms struct {
	Err   error
	Names []string
}

func (v *VideoRooms) CreateRoom(_ context.Context, name string) (string, error) {
	v.Names = append(v.Names, name)
	if v.Err != nil {
		return "", v.Err
	}
	return "https://video.example.test/" + name, nil
}

type ObjectStorage struct {
	Objects map[string][]byte
	PutErr  error
}

func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{Objects: map[string][]byte{}}
}

func (s *ObjectStorage) PutObject(_ context.Context, bucketName, objectName string, data []byte, _ string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.Objects[bucketName+"/"+objectName] = data
	return nil
}

func (s *ObjectStorage) GetObjectUrlWithExpiryTime(_ context.Context, bucketName, objectName string, _ time.Duration) (string, error) {
	return "https://storage.example.test/" + bucketName + "/" + objectName + "?signed", nil
}
