package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/queue"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

type mockFlightStore struct{ mock.Mock }

func (m *mockFlightStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Flight, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*model.Flight)
	return f, args.Error(1)
}

func (m *mockFlightStore) DecrementSeats(ctx context.Context, id primitive.ObjectID, qty int, fareClass string) error {
	return m.Called(ctx, id, qty, fareClass).Error(0)
}

func (m *mockFlightStore) IncrementSeats(ctx context.Context, id primitive.ObjectID, qty int, fareClass string) error {
	return m.Called(ctx, id, qty, fareClass).Error(0)
}

type mockBookingStore struct{ mock.Mock }

func (m *mockBookingStore) Insert(ctx context.Context, b *model.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Booking, error) {
	args := m.Called(ctx, id, set)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) Delete(ctx context.Context, id primitive.ObjectID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) Search(ctx context.Context, filter repository.BookingFilter, page utils.PageRequest) ([]model.Booking, int64, error) {
	args := m.Called(ctx, filter, page)
	items, _ := args.Get(0).([]model.Booking)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingStore) Stats(ctx context.Context) (*repository.BookingStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repository.BookingStats)
	return s, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockPromoStore struct{ mock.Mock }

func (m *mockPromoStore) Redeem(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*model.PromoCode)
	return p, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type mockTicketStore struct{ mock.Mock }

func (m *mockTicketStore) Insert(ctx context.Context, t *model.Ticket) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTicketStore) InsertMany(ctx context.Context, tickets []model.Ticket) (int, error) {
	args := m.Called(ctx, tickets)
	return args.Int(0), args.Error(1)
}

func (m *mockTicketStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockTicketStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Ticket, error) {
	args := m.Called(ctx, id, set)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockTicketStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTicketStore) SeatTaken(ctx context.Context, flightID primitive.ObjectID, seatNumber string, exclude primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, flightID, seatNumber, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *mockTicketStore) TakenSeats(ctx context.Context, flightID primitive.ObjectID) (map[string]bool, error) {
	args := m.Called(ctx, flightID)
	seats, _ := args.Get(0).(map[string]bool)
	return seats, args.Error(1)
}

func (m *mockTicketStore) CountActive(ctx context.Context, flightID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketStore) BookedSeats(ctx context.Context, flightID primitive.ObjectID) ([]repository.BookedSeat, error) {
	args := m.Called(ctx, flightID)
	seats, _ := args.Get(0).([]repository.BookedSeat)
	return seats, args.Error(1)
}

func (m *mockTicketStore) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]model.Ticket, error) {
	args := m.Called(ctx, bookingID)
	tickets, _ := args.Get(0).([]model.Ticket)
	return tickets, args.Error(1)
}

func (m *mockTicketStore) StatusCounts(ctx context.Context, flightID primitive.ObjectID) (map[string]int64, error) {
	args := m.Called(ctx, flightID)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}
