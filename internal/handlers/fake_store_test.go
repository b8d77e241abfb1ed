package handlers

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory Store used by the handler tests.
type memStore struct {
	mu       sync.Mutex
	services []models.Service
	bookings []models.Booking
	users    map[string]*models.User
	doctors  []models.Doctor
	down     bool
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*models.User)}
}

func (s *memStore) err() error {
	if s.down {
		return errStoreDown
	}
	return nil
}

func (s *memStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err()
}

func (s *memStore) ListServices(context.Context) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}
	out := make([]models.Service, len(s.services))
	for i, svc := range s.services {
		out[i] = svc
		if svc.Slots != nil {
			out[i].Slots = append([]string(nil), svc.Slots...)
		}
	}
	return out, nil
}

func (s *memStore) filterBookings(keep func(models.Booking) bool) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) BookingsByDate(_ context.Context, date string) ([]models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool { return b.Date == date })
}

func (s *memStore) BookingsByPatient(_ context.Context, patient string) ([]models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool { return b.Patient == patient })
}

func (s *memStore) InsertBookingIfAbsent(_ context.Context, booking models.Booking) (models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return models.Booking{}, false, err
	}
	for _, b := range s.bookings {
		if b.Key() == booking.Key() {
			return b, false, nil
		}
	}
	booking.ID = primitive.NewObjectID()
	s.bookings = append(s.bookings, booking)
	return booking, true, nil
}

func (s *memStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpsertUser(_ context.Context, email string, fields bson.M) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return store.UpsertResult{}, err
	}

	var res store.UpsertResult
	u, ok := s.users[email]
	if ok {
		res.MatchedCount = 1
	} else {
		u = &models.User{ID: primitive.NewObjectID(), Email: email}
		s.users[email] = u
		res.UpsertedCount = 1
		res.UpsertedID = u.ID
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "password":
			u.Password = v.(string)
		case "role":
			u.Role = v.(string)
		}
	}
	if ok && len(fields) > 0 {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (s *memStore) SetRole(_ context.Context, email, role string) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return store.UpsertResult{}, err
	}
	u, ok := s.users[email]
	if !ok {
		return store.UpsertResult{}, nil
	}
	res := store.UpsertResult{MatchedCount: 1}
	if u.Role != role {
		u.Role = role
		res.ModifiedCount = 1
	}
	return res, nil
}

func (s *memStore) InsertDoctor(_ context.Context, doctor models.Doctor) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return primitive.NilObjectID, err
	}
	doctor.ID = primitive.NewObjectID()
	s.doctors = append(s.doctors, doctor)
	return doctor.ID, nil
}

func (s *memStore) ListDoctors(context.Context) ([]models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}
	return append([]models.Doctor{}, s.doctors...), nil
}

func (s *memStore) DeleteDoctor(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return 0, err
	}
	for i, d := range s.doctors {
		if d.ID == id {
			s.doctors = append(s.doctors[:i], s.doctors[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Booking
}

func (n *recordingNotifier) BookingConfirmed(b models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, b)
}
