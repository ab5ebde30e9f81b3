package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
)

func newTicketFixture() (*TicketService, *mockTicketStore, *mockBookingStore, *mockFlightStore) {
	tickets := &mockTicketStore{}
	bookings := &mockBookingStore{}
	flights := &mockFlightStore{}
	svc := NewTicketService(tickets, bookings, flights)
	return svc, tickets, bookings, flights
}

func passenger(name string) model.Passenger {
	return model.Passenger{
		FullName:       name,
		DateOfBirth:    time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Nationality:    "VN",
		PassportNumber: "C1234567",
	}
}

func ticketFixtureFlight(seats int, departure time.Time) *model.Flight {
	return &model.Flight{
		ID:             primitive.NewObjectID(),
		FlightNumber:   "VN456",
		DepartureTime:  departure,
		Price:          150,
		AvailableSeats: seats,
	}
}

func expectPreconditions(bookings *mockBookingStore, flights *mockFlightStore, bookingID primitive.ObjectID, flight *model.Flight) {
	bookings.On("GetByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID}, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
}

func TestCreateTicketSeatAlreadyBooked(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("SeatTaken", mock.Anything, flight.ID, "12A", primitive.NilObjectID).Return(true, nil)

	_, err := svc.Create(context.Background(), bookingID, flight.ID, TicketInput{
		SeatNumber: "12A",
		Passenger:  passenger("Alice Tran"),
		Price:      150,
	})
	assert.ErrorIs(t, err, ErrSeatBooked)
}

func TestCreateTicketCapacityFull(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(3, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("SeatTaken", mock.Anything, flight.ID, "12A", primitive.NilObjectID).Return(false, nil)
	tickets.On("CountActive", mock.Anything, flight.ID).Return(int64(3), nil)

	_, err := svc.Create(context.Background(), bookingID, flight.ID, TicketInput{
		SeatNumber: "12A",
		Passenger:  passenger("Alice Tran"),
		Price:      150,
	})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
}

func TestCreateTicketRejectsNonPositivePrice(t *testing.T) {
	svc, _, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)

	_, err := svc.Create(context.Background(), bookingID, flight.ID, TicketInput{
		SeatNumber: "12A",
		Passenger:  passenger("Alice Tran"),
		Price:      0,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateTicketDefaultsToUnused(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("SeatTaken", mock.Anything, flight.ID, "12A", primitive.NilObjectID).Return(false, nil)
	tickets.On("CountActive", mock.Anything, flight.ID).Return(int64(0), nil)
	tickets.On("Insert", mock.Anything, mock.AnythingOfType("*model.Ticket")).Return(nil)

	ticket, err := svc.Create(context.Background(), bookingID, flight.ID, TicketInput{
		SeatNumber: "12A",
		Passenger:  passenger("Alice Tran"),
		Price:      150,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusUnused, ticket.Status)
}

func TestCreateBatchDuplicateSeatInBatch(t *testing.T) {
	svc, _, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)

	_, err := svc.CreateBatch(context.Background(), bookingID, flight.ID, []TicketInput{
		{SeatNumber: "12A", Passenger: passenger("Alice Tran"), Price: 150},
		{SeatNumber: "12A", Passenger: passenger("Bob Le"), Price: 150},
	})
	var domErr *Error
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, "DUPLICATE_SEAT_IN_BATCH", domErr.Code)
}

func TestCreateBatchSeatHeldOnFlight(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("TakenSeats", mock.Anything, flight.ID).Return(map[string]bool{"14C": true}, nil)

	_, err := svc.CreateBatch(context.Background(), bookingID, flight.ID, []TicketInput{
		{SeatNumber: "12A", Passenger: passenger("Alice Tran"), Price: 150},
		{SeatNumber: "14C", Passenger: passenger("Bob Le"), Price: 150},
	})
	assert.ErrorIs(t, err, ErrSeatBooked)
}

func TestCreateBatchCapacityCheckedBeforePrices(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(2, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("TakenSeats", mock.Anything, flight.ID).Return(map[string]bool{}, nil)
	tickets.On("CountActive", mock.Anything, flight.ID).Return(int64(1), nil)

	// Both the capacity overflow and the zero price are present; the
	// capacity error wins because it is checked first.
	_, err := svc.CreateBatch(context.Background(), bookingID, flight.ID, []TicketInput{
		{SeatNumber: "12A", Passenger: passenger("Alice Tran"), Price: 150},
		{SeatNumber: "12B", Passenger: passenger("Bob Le"), Price: 0},
	})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
}

func TestCreateBatchInsertsNothingOnBadPrice(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("TakenSeats", mock.Anything, flight.ID).Return(map[string]bool{}, nil)
	tickets.On("CountActive", mock.Anything, flight.ID).Return(int64(0), nil)

	_, err := svc.CreateBatch(context.Background(), bookingID, flight.ID, []TicketInput{
		{SeatNumber: "12A", Passenger: passenger("Alice Tran"), Price: 150},
		{SeatNumber: "12B", Passenger: passenger("Bob Le"), Price: -1},
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	tickets.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
}

func TestCreateBatchSuccess(t *testing.T) {
	svc, tickets, bookings, flights := newTicketFixture()
	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(10, time.Now().Add(72*time.Hour))
	expectPreconditions(bookings, flights, bookingID, flight)
	tickets.On("TakenSeats", mock.Anything, flight.ID).Return(map[string]bool{}, nil)
	tickets.On("CountActive", mock.Anything, flight.ID).Return(int64(0), nil)
	tickets.On("InsertMany", mock.Anything, mock.AnythingOfType("[]model.Ticket")).Return(2, nil)

	out, err := svc.CreateBatch(context.Background(), bookingID, flight.ID, []TicketInput{
		{SeatNumber: "12A", Passenger: passenger("Alice Tran"), Price: 150},
		{SeatNumber: "12B", Passenger: passenger("Bob Le"), Price: 150},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, model.TicketStatusUnused, out[0].Status)
}

// Cancellation cutoff.  The clock is injected so the window boundaries
// are exact.

func TestCancelOutsideWindowAllowed(t *testing.T) {
	svc, tickets, _, flights := newTicketFixture()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	flight := ticketFixtureFlight(10, now.Add(25*time.Hour))
	ticketID := primitive.NewObjectID()
	tk := &model.Ticket{ID: ticketID, FlightID: flight.ID, SeatNumber: "1A", Status: model.TicketStatusUnused}
	tickets.On("GetByID", mock.Anything, ticketID).Return(tk, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	tickets.On("Update", mock.Anything, ticketID, bson.M{"status": model.TicketStatusCancelled}).
		Return(&model.Ticket{ID: ticketID, Status: model.TicketStatusCancelled}, nil)

	updated, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{Status: model.TicketStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusCancelled, updated.Status)
}

func TestCancelInsideWindowRejected(t *testing.T) {
	svc, tickets, _, flights := newTicketFixture()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	flight := ticketFixtureFlight(10, now.Add(10*time.Hour))
	ticketID := primitive.NewObjectID()
	tk := &model.Ticket{ID: ticketID, FlightID: flight.ID, SeatNumber: "1A", Status: model.TicketStatusUnused}
	tickets.On("GetByID", mock.Anything, ticketID).Return(tk, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	_, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{Status: model.TicketStatusCancelled})
	var domErr *Error
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, "CANCEL_WINDOW_CLOSED", domErr.Code)
}

func TestCancelExactlyAtCutoffRejected(t *testing.T) {
	svc, tickets, _, flights := newTicketFixture()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Exactly 24h out is not strictly greater than the cutoff.
	flight := ticketFixtureFlight(10, now.Add(24*time.Hour))
	ticketID := primitive.NewObjectID()
	tk := &model.Ticket{ID: ticketID, FlightID: flight.ID, SeatNumber: "1A", Status: model.TicketStatusUnused}
	tickets.On("GetByID", mock.Anything, ticketID).Return(tk, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	_, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{Status: model.TicketStatusCancelled})
	var domErr *Error
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, "CANCEL_WINDOW_CLOSED", domErr.Code)
}

func TestCancelUsedTicketRejected(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:     ticketID,
		Status: model.TicketStatusUsed,
	}, nil)

	_, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{Status: model.TicketStatusCancelled})
	assert.ErrorIs(t, err, ErrTicketUsed)
}

func TestMarkUsedFromUnused(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:     ticketID,
		Status: model.TicketStatusUnused,
	}, nil)
	tickets.On("Update", mock.Anything, ticketID, bson.M{"status": model.TicketStatusUsed}).
		Return(&model.Ticket{ID: ticketID, Status: model.TicketStatusUsed}, nil)

	updated, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{Status: model.TicketStatusUsed})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusUsed, updated.Status)
}

func TestCancelledTicketCannotRevive(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:     ticketID,
		Status: model.TicketStatusCancelled,
	}, nil)

	_, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{Status: model.TicketStatusUnused})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSeatReassignmentToTakenSeat(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:         ticketID,
		FlightID:   flightID,
		SeatNumber: "1A",
		Status:     model.TicketStatusUnused,
	}, nil)
	tickets.On("SeatTaken", mock.Anything, flightID, "2B", ticketID).Return(true, nil)

	_, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{SeatNumber: "2B"})
	assert.ErrorIs(t, err, ErrSeatBooked)
}

func TestSeatReassignmentToFreedSeat(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:         ticketID,
		FlightID:   flightID,
		SeatNumber: "1A",
		Status:     model.TicketStatusUnused,
	}, nil)
	// The previous holder's ticket is cancelled, so the seat query
	// (which excludes cancelled tickets) reports it free.
	tickets.On("SeatTaken", mock.Anything, flightID, "2B", ticketID).Return(false, nil)
	tickets.On("Update", mock.Anything, ticketID, bson.M{"seatNumber": "2B"}).
		Return(&model.Ticket{ID: ticketID, SeatNumber: "2B"}, nil)

	updated, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{SeatNumber: "2B"})
	require.NoError(t, err)
	assert.Equal(t, "2B", updated.SeatNumber)
}

func TestUpdateRejectedFieldWritesNothing(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:         ticketID,
		FlightID:   flightID,
		SeatNumber: "1A",
		Status:     model.TicketStatusUnused,
	}, nil)

	// The seat change is valid on its own, but the patch also carries a
	// negative price.  The whole patch must be rejected with no write.
	bad := -5.0
	_, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{
		SeatNumber: "2B",
		Price:      &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	tickets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSeatAndPriceSingleWrite(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:         ticketID,
		FlightID:   flightID,
		SeatNumber: "1A",
		Status:     model.TicketStatusUnused,
	}, nil)
	tickets.On("SeatTaken", mock.Anything, flightID, "2B", ticketID).Return(false, nil)
	// Both fields land in one write.
	tickets.On("Update", mock.Anything, ticketID, bson.M{"seatNumber": "2B", "price": 180.0}).
		Return(&model.Ticket{ID: ticketID, SeatNumber: "2B", Price: 180}, nil)

	price := 180.0
	updated, err := svc.Update(context.Background(), ticketID, UpdateTicketParams{
		SeatNumber: "2B",
		Price:      &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "2B", updated.SeatNumber)
	tickets.AssertExpectations(t)
}

func TestAvailableSeatsDerived(t *testing.T) {
	svc, tickets, _, flights := newTicketFixture()
	flight := ticketFixtureFlight(180, time.Now().Add(72*time.Hour))
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	tickets.On("CountActive", mock.Anything, flight.ID).Return(int64(42), nil)

	avail, err := svc.AvailableSeats(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(138), avail.AvailableSeats)
	assert.Equal(t, int64(42), avail.ActiveTickets)
	assert.Equal(t, 180, avail.Capacity)
}

func TestCanCancelReportsHours(t *testing.T) {
	svc, tickets, _, flights := newTicketFixture()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	flight := ticketFixtureFlight(10, now.Add(30*time.Hour))
	ticketID := primitive.NewObjectID()
	tickets.On("GetByID", mock.Anything, ticketID).Return(&model.Ticket{
		ID:       ticketID,
		FlightID: flight.ID,
		Status:   model.TicketStatusUnused,
	}, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	check, err := svc.CanCancel(context.Background(), ticketID)
	require.NoError(t, err)
	assert.True(t, check.CanCancel)
	assert.InDelta(t, 30.0, check.HoursUntilDeparture, 0.01)
}

func TestDeleteUnknownTicket(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()
	ticketID := primitive.NewObjectID()
	tickets.On("Delete", mock.Anything, ticketID).Return(repository.ErrNotFound)

	err := svc.Delete(context.Background(), ticketID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

// seatInventory is an in-memory TicketStore whose seat and capacity
// queries observe earlier inserts, so concurrent callers genuinely
// race for the remaining seats.
type seatInventory struct {
	mu    sync.Mutex
	seats map[string]bool
}

func newSeatInventory() *seatInventory {
	return &seatInventory{seats: make(map[string]bool)}
}

func (s *seatInventory) Insert(_ context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[t.SeatNumber] = true
	return nil
}

func (s *seatInventory) InsertMany(_ context.Context, tickets []model.Ticket) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tickets {
		s.seats[t.SeatNumber] = true
	}
	return len(tickets), nil
}

func (s *seatInventory) SeatTaken(_ context.Context, _ primitive.ObjectID, seat string, _ primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[seat], nil
}

func (s *seatInventory) TakenSeats(context.Context, primitive.ObjectID) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.seats))
	for seat := range s.seats {
		out[seat] = true
	}
	return out, nil
}

func (s *seatInventory) CountActive(context.Context, primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.seats)), nil
}

func (s *seatInventory) GetByID(context.Context, primitive.ObjectID) (*model.Ticket, error) {
	return nil, repository.ErrNotFound
}

func (s *seatInventory) Update(context.Context, primitive.ObjectID, bson.M) (*model.Ticket, error) {
	return nil, repository.ErrNotFound
}

func (s *seatInventory) Delete(context.Context, primitive.ObjectID) error {
	return repository.ErrNotFound
}

func (s *seatInventory) BookedSeats(context.Context, primitive.ObjectID) ([]repository.BookedSeat, error) {
	return nil, nil
}

func (s *seatInventory) ListByBooking(context.Context, primitive.ObjectID) ([]model.Ticket, error) {
	return nil, nil
}

func (s *seatInventory) StatusCounts(context.Context, primitive.ObjectID) (map[string]int64, error) {
	return nil, nil
}

func TestLastSeatHasOneWinner(t *testing.T) {
	inv := newSeatInventory()
	bookings := &mockBookingStore{}
	flights := &mockFlightStore{}
	svc := NewTicketService(inv, bookings, flights)

	bookingID := primitive.NewObjectID()
	flight := ticketFixtureFlight(1, time.Now().Add(72*time.Hour))
	bookings.On("GetByID", mock.Anything, bookingID).Return(&model.Booking{ID: bookingID}, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), bookingID, flight.ID, TicketInput{
				SeatNumber: fmt.Sprintf("1%c", 'A'+i),
				Passenger:  passenger("Alice Tran"),
				Price:      150,
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrInsufficientSeats):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, callers-1, lost)
}
