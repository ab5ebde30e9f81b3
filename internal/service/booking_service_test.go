package service

import (
	"context"
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

func newBookingFixture() (*BookingService, *mockFlightStore, *mockBookingStore, *mockUserStore, *mockPromoStore, *mockPublisher) {
	flights := &mockFlightStore{}
	bookings := &mockBookingStore{}
	users := &mockUserStore{}
	promos := &mockPromoStore{}
	pub := &mockPublisher{}
	svc := NewBookingService(flights, bookings, users, promos, pub)
	return svc, flights, bookings, users, promos, pub
}

func testFlight(seats int) *model.Flight {
	return &model.Flight{
		ID:             primitive.NewObjectID(),
		FlightNumber:   "VN123",
		DepartureTime:  time.Now().Add(72 * time.Hour),
		Price:          100,
		AvailableSeats: seats,
	}
}

func TestCreateBookingRejectsZeroQuantity(t *testing.T) {
	svc, _, _, _, _, _ := newBookingFixture()

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:   primitive.NewObjectID(),
		FlightID: primitive.NewObjectID(),
		Quantity: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCreateBookingUnknownUser(t *testing.T) {
	svc, _, _, users, _, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	users.On("Exists", mock.Anything, uid).Return(false, nil)

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:   uid,
		FlightID: primitive.NewObjectID(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateBookingInsufficientSeats(t *testing.T) {
	svc, flights, _, users, _, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(2)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:   uid,
		FlightID: flight.ID,
		Quantity: 3,
	})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
}

func TestCreateBookingUnknownFareClass(t *testing.T) {
	svc, flights, _, users, _, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(10)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:    uid,
		FlightID:  flight.ID,
		Quantity:  1,
		FareClass: "business",
	})
	assert.ErrorIs(t, err, ErrFareUnavailable)
}

func TestCreateBookingFareClassLimitsSeats(t *testing.T) {
	svc, flights, _, users, _, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(100)
	flight.FareOptions = []model.FareOption{{Class: "business", Price: 300, AvailableSeats: 2}}
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)

	// Flat counter has room but the business cabin does not.
	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:    uid,
		FlightID:  flight.ID,
		Quantity:  3,
		FareClass: "business",
	})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
}

func TestCreateBookingSuccess(t *testing.T) {
	svc, flights, bookings, users, _, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(10)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	bookings.On("Insert", mock.Anything, mock.AnythingOfType("*model.Booking")).Return(nil)
	flights.On("DecrementSeats", mock.Anything, flight.ID, 2, "").Return(nil)

	b, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:   uid,
		FlightID: flight.ID,
		Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, model.PaymentStatusPending, b.PaymentStatus)
	assert.Equal(t, 200.0, b.TotalPrice)
	flights.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestCreateBookingSeatRaceCompensates(t *testing.T) {
	svc, flights, bookings, users, _, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(5)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	bookings.On("Insert", mock.Anything, mock.AnythingOfType("*model.Booking")).Return(nil)
	// Another booking consumed the seats between the read and the
	// guarded decrement.
	flights.On("DecrementSeats", mock.Anything, flight.ID, 2, "").Return(repository.ErrSeatConflict)
	bookings.On("Delete", mock.Anything, mock.AnythingOfType("primitive.ObjectID")).Return(&model.Booking{}, nil)

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:   uid,
		FlightID: flight.ID,
		Quantity: 2,
	})
	assert.ErrorIs(t, err, ErrSeatRace)
	// The compensating delete must have removed the inserted booking.
	bookings.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("primitive.ObjectID"))
}

func TestCreateBookingPromoDiscount(t *testing.T) {
	svc, flights, bookings, users, promos, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(10)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	promos.On("Redeem", mock.Anything, "SUMMER20").Return(&model.PromoCode{
		Code:            "SUMMER20",
		DiscountPercent: 20,
	}, nil)
	bookings.On("Insert", mock.Anything, mock.AnythingOfType("*model.Booking")).Return(nil)
	flights.On("DecrementSeats", mock.Anything, flight.ID, 1, "").Return(nil)

	b, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:    uid,
		FlightID:  flight.ID,
		Quantity:  1,
		PromoCode: "summer20", // normalized to upper case before redeem
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, b.TotalPrice)
	assert.Equal(t, "SUMMER20", b.PromoCode)
}

func TestCreateBookingExhaustedPromo(t *testing.T) {
	svc, flights, _, users, promos, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(10)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	promos.On("Redeem", mock.Anything, "GONE").Return(nil, repository.ErrConflict)

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:    uid,
		FlightID:  flight.ID,
		Quantity:  1,
		PromoCode: "GONE",
	})
	assert.ErrorIs(t, err, ErrPromoUnusable)
}

func TestCreateBookingUnknownPromo(t *testing.T) {
	svc, flights, _, users, promos, _ := newBookingFixture()
	uid := primitive.NewObjectID()
	flight := testFlight(10)
	users.On("Exists", mock.Anything, uid).Return(true, nil)
	flights.On("GetByID", mock.Anything, flight.ID).Return(flight, nil)
	// A code that was never created surfaces as not-found, not as an
	// exhausted code.
	promos.On("Redeem", mock.Anything, "NOSUCH").Return(nil, repository.ErrNotFound)

	_, err := svc.Create(context.Background(), CreateBookingParams{
		UserID:    uid,
		FlightID:  flight.ID,
		Quantity:  1,
		PromoCode: "NOSUCH",
	})
	assert.ErrorIs(t, err, ErrPromoNotFound)
}

func TestUpdateBookingConfirmRequiresPayment(t *testing.T) {
	svc, _, bookings, _, _, _ := newBookingFixture()
	id := primitive.NewObjectID()
	bookings.On("GetByID", mock.Anything, id).Return(&model.Booking{
		ID:            id,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}, nil)

	_, err := svc.Update(context.Background(), id, UpdateBookingParams{
		Status: model.BookingStatusConfirmed,
	})
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestUpdateBookingConfirmWithPaymentInSameCall(t *testing.T) {
	svc, flights, bookings, _, _, pub := newBookingFixture()
	id := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	pending := &model.Booking{
		ID:            id,
		FlightID:      flightID,
		Quantity:      1,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	confirmed := &model.Booking{
		ID:            id,
		FlightID:      flightID,
		Quantity:      1,
		Status:        model.BookingStatusConfirmed,
		PaymentStatus: model.PaymentStatusSuccess,
	}
	bookings.On("GetByID", mock.Anything, id).Return(pending, nil)
	bookings.On("Update", mock.Anything, id, bson.M{
		"status":        model.BookingStatusConfirmed,
		"paymentStatus": model.PaymentStatusSuccess,
	}).Return(confirmed, nil)
	flights.On("GetByID", mock.Anything, flightID).Return(testFlight(10), nil)
	pub.On("PublishBookingConfirmed", mock.Anything, mock.AnythingOfType("queue.BookingConfirmedEvent")).Return(nil)

	b, err := svc.Update(context.Background(), id, UpdateBookingParams{
		Status:        model.BookingStatusConfirmed,
		PaymentStatus: model.PaymentStatusSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, b.Status)
	pub.AssertExpectations(t)
}

func TestUpdateBookingCancelRestoresSeats(t *testing.T) {
	svc, flights, bookings, _, _, _ := newBookingFixture()
	id := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	pending := &model.Booking{
		ID:            id,
		FlightID:      flightID,
		Quantity:      3,
		FareClass:     "economy",
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	cancelled := &model.Booking{ID: id, FlightID: flightID, Quantity: 3, Status: model.BookingStatusCancelled}
	bookings.On("GetByID", mock.Anything, id).Return(pending, nil)
	bookings.On("Update", mock.Anything, id, bson.M{"status": model.BookingStatusCancelled}).Return(cancelled, nil)
	flights.On("IncrementSeats", mock.Anything, flightID, 3, "economy").Return(nil)

	_, err := svc.Update(context.Background(), id, UpdateBookingParams{
		Status: model.BookingStatusCancelled,
	})
	require.NoError(t, err)
	flights.AssertExpectations(t)
}

func TestUpdateBookingTerminalIsImmutable(t *testing.T) {
	svc, _, bookings, _, _, _ := newBookingFixture()
	id := primitive.NewObjectID()
	bookings.On("GetByID", mock.Anything, id).Return(&model.Booking{
		ID:     id,
		Status: model.BookingStatusCancelled,
	}, nil)

	_, err := svc.Update(context.Background(), id, UpdateBookingParams{
		Status: model.BookingStatusPending,
	})
	assert.ErrorIs(t, err, ErrBookingTerminal)
}

func TestDeleteBookingRestoresSeats(t *testing.T) {
	svc, flights, bookings, _, _, _ := newBookingFixture()
	id := primitive.NewObjectID()
	flightID := primitive.NewObjectID()
	pending := &model.Booking{
		ID:            id,
		FlightID:      flightID,
		Quantity:      2,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	bookings.On("GetByID", mock.Anything, id).Return(pending, nil)
	bookings.On("Delete", mock.Anything, id).Return(pending, nil)
	flights.On("IncrementSeats", mock.Anything, flightID, 2, "").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	flights.AssertExpectations(t)
}

func TestDeleteBookingRefusesPaid(t *testing.T) {
	svc, _, bookings, _, _, _ := newBookingFixture()
	id := primitive.NewObjectID()
	bookings.On("GetByID", mock.Anything, id).Return(&model.Booking{
		ID:            id,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusSuccess,
	}, nil)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrBookingPaid)
}

func TestDomainErrorsCarryStableCodes(t *testing.T) {
	assert.Equal(t, "SEAT_INVENTORY_CONFLICT", ErrSeatRace.Code)
	assert.Equal(t, 409, ErrSeatRace.Status)
	assert.Equal(t, "PAYMENT_REQUIRED", ErrPaymentRequired.Code)
	assert.Equal(t, "INSUFFICIENT_SEATS", ErrInsufficientSeats.Code)
}
