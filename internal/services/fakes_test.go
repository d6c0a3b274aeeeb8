package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"eventflow/internal/models"
	"eventflow/internal/repositories"
)

// memStore is an in-memory AttendeeStore with the same write semantics as the
// SQL repository: conditional updates report how many rows they touched and
// leave already-transitioned records alone.
type memStore struct {
	mu        sync.Mutex
	attendees map[string]*models.Attendee
	order     []string
}

func newMemStore(attendees ...*models.Attendee) *memStore {
	s := &memStore{attendees: make(map[string]*models.Attendee)}
	for _, a := range attendees {
		cp := *a
		s.attendees[a.ID] = &cp
		s.order = append(s.order, a.ID)
	}
	return s
}

func (s *memStore) GetByID(id string) (*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok {
		return nil, models.ErrAttendeeNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) GetByEmail(email string) ([]*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := models.NormalizeEmail(email)
	var out []*models.Attendee
	for _, id := range s.order {
		a := s.attendees[id]
		if models.NormalizeEmail(a.Email) == normalized {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) CheckInByEmail(email string, activeTypes []string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := models.NormalizeEmail(email)
	active := make(map[string]bool, len(activeTypes))
	for _, t := range activeTypes {
		active[t] = true
	}
	var affected int64
	for _, a := range s.attendees {
		if models.NormalizeEmail(a.Email) == normalized && active[a.TicketType] && !a.CheckedIn {
			a.CheckedIn = true
			stamp := at
			a.CheckInTime = &stamp
			affected++
		}
	}
	return affected, nil
}

func (s *memStore) SetCheckedIn(id string, checkedIn bool, at *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok {
		return models.ErrAttendeeNotFound
	}
	a.CheckedIn = checkedIn
	a.CheckInTime = at
	return nil
}

func (s *memStore) ClaimSwag(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok || !a.CheckedIn || a.SwagReceived {
		return false, nil
	}
	a.SwagReceived = true
	return true, nil
}

func (s *memStore) SetSwagReceived(id string, received bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok {
		return models.ErrAttendeeNotFound
	}
	a.SwagReceived = received
	return nil
}

func (s *memStore) Update(a *models.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.attendees[a.ID]
	if !ok {
		return models.ErrAttendeeNotFound
	}
	cp := *a
	cp.CheckedIn = existing.CheckedIn
	cp.CheckInTime = existing.CheckInTime
	cp.SwagReceived = existing.SwagReceived
	s.attendees[a.ID] = &cp
	return nil
}

func (s *memStore) UpsertMany(attendees []*models.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range attendees {
		cp := *a
		if existing, ok := s.attendees[a.ID]; ok {
			cp.CheckedIn = existing.CheckedIn
			cp.CheckInTime = existing.CheckInTime
			cp.SwagReceived = existing.SwagReceived
		} else {
			s.order = append(s.order, a.ID)
		}
		s.attendees[a.ID] = &cp
	}
	return nil
}

func (s *memStore) Search(filters repositories.AttendeeSearchFilters) ([]*models.Attendee, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Attendee
	q := strings.ToLower(filters.Query)
	for _, id := range s.order {
		a := s.attendees[id]
		if q != "" && !strings.Contains(strings.ToLower(a.Email+" "+a.FirstName+" "+a.LastName), q) {
			continue
		}
		if filters.TicketType != "" && a.TicketType != filters.TicketType {
			continue
		}
		if filters.CheckedIn != nil && a.CheckedIn != *filters.CheckedIn {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (s *memStore) DistinctTicketTypes() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, a := range s.attendees {
		if !seen[a.TicketType] {
			seen[a.TicketType] = true
			out = append(out, a.TicketType)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) Stats() (*models.AttendanceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byType := make(map[string]*models.TypeStats)
	stats := &models.AttendanceStats{}
	for _, a := range s.attendees {
		ts, ok := byType[a.TicketType]
		if !ok {
			ts = &models.TypeStats{TicketType: a.TicketType}
			byType[a.TicketType] = ts
		}
		ts.Total++
		stats.Total++
		if a.CheckedIn {
			ts.CheckedIn++
			stats.CheckedIn++
		}
		if a.SwagReceived {
			ts.SwagClaimed++
			stats.SwagClaimed++
		}
	}
	var names []string
	for name := range byType {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats.ByType = append(stats.ByType, *byType[name])
	}
	return stats, nil
}

// staticPolicy is a PolicyProvider pinned to a fixed type set.
type staticPolicy struct {
	types []string
}

func (p *staticPolicy) ActiveTicketTypes() (*models.TicketPolicy, error) {
	return &models.TicketPolicy{ActiveTypes: p.types, Configured: true}, nil
}

// captureNotifier records every published event.
type captureNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *captureNotifier) Publish(ev ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *captureNotifier) published() []ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ChangeEvent(nil), n.events...)
}

// MockAttendeeStore is a mock implementation of AttendeeStore for error paths.
type MockAttendeeStore struct {
	mock.Mock
}

func (m *MockAttendeeStore) GetByID(id string) (*models.Attendee, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendee), args.Error(1)
}

func (m *MockAttendeeStore) GetByEmail(email string) ([]*models.Attendee, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendee), args.Error(1)
}

func (m *MockAttendeeStore) CheckInByEmail(email string, activeTypes []string, at time.Time) (int64, error) {
	args := m.Called(email, activeTypes, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttendeeStore) SetCheckedIn(id string, checkedIn bool, at *time.Time) error {
	args := m.Called(id, checkedIn, at)
	return args.Error(0)
}

func (m *MockAttendeeStore) ClaimSwag(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttendeeStore) SetSwagReceived(id string, received bool) error {
	args := m.Called(id, received)
	return args.Error(0)
}

func (m *MockAttendeeStore) Update(a *models.Attendee) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockAttendeeStore) UpsertMany(attendees []*models.Attendee) error {
	args := m.Called(attendees)
	return args.Error(0)
}

func (m *MockAttendeeStore) Search(filters repositories.AttendeeSearchFilters) ([]*models.Attendee, int, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Attendee), args.Int(1), args.Error(2)
}

func (m *MockAttendeeStore) DistinctTicketTypes() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAttendeeStore) Stats() (*models.AttendanceStats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttendanceStats), args.Error(1)
}
