package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	recordsRepo "fieldservice/database/repository/records"
	"fieldservice/models"
)

var errStoreDown = errors.New("dial tcp: connection refused")

// memStore is an in-memory RecordStore for service tests.
type memStore struct {
	mu        sync.Mutex
	services  map[string]*models.ServiceRecord
	blackouts map[string]models.BlackoutWindow
	nextID    int
	fail      error
	writes    int
}

func newMemStore() *memStore {
	return &memStore{
		services:  make(map[string]*models.ServiceRecord),
		blackouts: make(map[string]models.BlackoutWindow),
	}
}

func (m *memStore) addService(id string, at *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[id] = &models.ServiceRecord{ID: id, AppointmentAt: at}
}

func (m *memStore) addBlackout(start, end time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("blk%d", m.nextID)
	m.blackouts[id] = models.BlackoutWindow{ID: id, Start: start, End: end}
	return id
}

func (m *memStore) ListAppointments(_ context.Context, from, to time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []models.Appointment
	for id, svc := range m.services {
		if svc.AppointmentAt == nil {
			continue
		}
		at := *svc.AppointmentAt
		if !at.Before(from) && at.Before(to) {
			out = append(out, models.Appointment{ServiceID: id, At: at})
		}
	}
	return out, nil
}

func (m *memStore) GetService(_ context.Context, id string) (*models.ServiceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	svc, ok := m.services[id]
	if !ok {
		return nil, recordsRepo.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

func (m *memStore) SetAppointment(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	svc, ok := m.services[id]
	if !ok {
		return recordsRepo.ErrNotFound
	}
	m.writes++
	svc.AppointmentAt = &at
	return nil
}

func (m *memStore) ListBlackouts(_ context.Context, f models.BlackoutFilter) ([]models.BlackoutWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []models.BlackoutWindow
	for _, b := range m.blackouts {
		if !f.OverlapsFrom.IsZero() && !b.End.After(f.OverlapsFrom) {
			continue
		}
		if !f.OverlapsTo.IsZero() && !b.Start.Before(f.OverlapsTo) {
			continue
		}
		if !f.EndedBefore.IsZero() && b.End.After(f.EndedBefore) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out, nil
}

func (m *memStore) CreateBlackout(_ context.Context, w models.BlackoutWindow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	m.nextID++
	m.writes++
	w.ID = fmt.Sprintf("blk%d", m.nextID)
	m.blackouts[w.ID] = w
	return w.ID, nil
}

func (m *memStore) DeleteBlackout(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.blackouts[id]; !ok {
		return recordsRepo.ErrNotFound
	}
	m.writes++
	delete(m.blackouts, id)
	return nil
}

func (m *memStore) Ping(context.Context) error { return m.fail }

// testPolicy is a 30-minute grid: 08:00-12:00 (close inclusive) and 13:00-17:00 (close exclusive).
func testPolicy() Policy {
	return Policy{
		Name:     "test",
		Interval: 30,
		Windows: []Window{
			{Open: models.NewTimeSlot(8, 0), Close: models.NewTimeSlot(12, 0), CloseInclusive: true},
			{Open: models.NewTimeSlot(13, 0), Close: models.NewTimeSlot(17, 0)},
		},
		Weekend: DefaultWeekend,
	}
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustDate(s string) models.CalendarDate {
	d, err := models.ParseCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func slot(label string) models.TimeSlot {
	s, err := models.ParseTimeSlot(label)
	if err != nil {
		panic(err)
	}
	return s
}

func newTestService(store *memStore, now time.Time, lead time.Duration) *DefaultSchedulingService {
	policies, err := NewPolicySet("test", testPolicy(), DiagnosticPolicy(), VisitPolicy())
	if err != nil {
		panic(err)
	}
	return &DefaultSchedulingService{
		Store:    store,
		Clock:    FixedClock(time.UTC, now),
		Policies: policies,
		LeadTime: lead,
		Locker:   NewLocalLocker(),
	}
}
