package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/queue"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// FlightStore is the slice of the flight repository the services rely
// on.  Seat mutations are guarded conditional writes.
type FlightStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Flight, error)
	DecrementSeats(ctx context.Context, id primitive.ObjectID, qty int, fareClass string) error
	IncrementSeats(ctx context.Context, id primitive.ObjectID, qty int, fareClass string) error
}

// BookingStore is the booking persistence surface used by the booking
// service.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Booking, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*model.Booking, error)
	Search(ctx context.Context, filter repository.BookingFilter, page utils.PageRequest) ([]model.Booking, int64, error)
	Stats(ctx context.Context) (*repository.BookingStats, error)
}

// UserStore checks account existence for booking preconditions.
type UserStore interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// PromoStore redeems promo codes with a guarded usage-limit update.
type PromoStore interface {
	Redeem(ctx context.Context, code string) (*model.PromoCode, error)
}

// EventPublisher pushes domain events to the message broker.  Publish
// failures are logged and ignored; events are best effort.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// BookingService owns the booking half of the seat inventory rules: a
// booking's creation debits the flight's availableSeats through one
// guarded decrement, and every path out of a pending booking restores
// exactly that quantity.
type BookingService struct {
	flights   FlightStore
	bookings  BookingStore
	users     UserStore
	promos    PromoStore
	publisher EventPublisher // may be nil
}

// NewBookingService constructs a BookingService.  The publisher may be
// nil when no broker is configured.
func NewBookingService(flights FlightStore, bookings BookingStore, users UserStore, promos PromoStore, publisher EventPublisher) *BookingService {
	if flights == nil || bookings == nil || users == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{
		flights:   flights,
		bookings:  bookings,
		users:     users,
		promos:    promos,
		publisher: publisher,
	}
}

// CreateBookingParams are the inputs of Create.
type CreateBookingParams struct {
	UserID    primitive.ObjectID
	FlightID  primitive.ObjectID
	Quantity  int
	FareClass string
	PromoCode string
}

// Create inserts a pending booking and debits the flight's seat
// counter.  The decrement re-checks availability at write time; when
// it matches no document the freshly inserted booking is deleted again
// and ErrSeatRace is returned, so a lost race never leaves an orphan
// booking or a wrong counter.
func (s *BookingService) Create(ctx context.Context, p CreateBookingParams) (*model.Booking, error) {
	if p.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	ok, err := s.users.Exists(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	flight, err := s.flights.GetByID(ctx, p.FlightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}

	price := flight.Price
	available := flight.AvailableSeats
	if p.FareClass != "" {
		fare := flight.FareByClass(p.FareClass)
		if fare == nil {
			return nil, ErrFareUnavailable
		}
		price = fare.Price
		if fare.AvailableSeats < available {
			available = fare.AvailableSeats
		}
	}
	if available < p.Quantity {
		return nil, ErrInsufficientSeats
	}

	total := price * float64(p.Quantity)
	promoCode := ""
	if p.PromoCode != "" {
		if s.promos == nil {
			return nil, ErrPromoNotFound
		}
		code := strings.ToUpper(strings.TrimSpace(p.PromoCode))
		promo, err := s.promos.Redeem(ctx, code)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPromoUnusable
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromoNotFound
		}
		if err != nil {
			return nil, err
		}
		total = promo.Discount(total)
		promoCode = promo.Code
	}

	booking := &model.Booking{
		UserID:        p.UserID,
		FlightID:      p.FlightID,
		Quantity:      p.Quantity,
		FareClass:     p.FareClass,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		TotalPrice:    total,
		PromoCode:     promoCode,
		BookingTime:   time.Now().UTC(),
	}
	if err := s.bookings.Insert(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.flights.DecrementSeats(ctx, p.FlightID, p.Quantity, p.FareClass); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			// Compensate: remove the booking we just inserted.
			if _, delErr := s.bookings.Delete(ctx, booking.ID); delErr != nil {
				log.Printf("booking %s: compensating delete failed: %v", booking.ID.Hex(), delErr)
			}
			return nil, ErrSeatRace
		}
		return nil, err
	}
	return booking, nil
}

// UpdateBookingParams are the optional fields of Update.  Empty
// strings leave a field unchanged.
type UpdateBookingParams struct {
	Status        string
	PaymentStatus string
}

// Update applies status and payment-status transitions to a pending
// booking.  Confirmed and Cancelled bookings are immutable.  The
// Confirmed transition requires a successful payment; the Cancelled
// transition does not, so an unpaid pending booking can always be
// cancelled.  Cancelling restores the booked quantity to the flight.
func (s *BookingService) Update(ctx context.Context, id primitive.ObjectID, p UpdateBookingParams) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if booking.Terminal() {
		return nil, ErrBookingTerminal
	}

	set := bson.M{}
	if p.PaymentStatus != "" {
		switch p.PaymentStatus {
		case model.PaymentStatusPending, model.PaymentStatusSuccess, model.PaymentStatusFailed:
			set["paymentStatus"] = p.PaymentStatus
		default:
			return nil, ErrInvalidStatus
		}
	}
	if p.Status != "" {
		switch p.Status {
		case model.BookingStatusPending:
			// no-op transition, nothing to validate
		case model.BookingStatusConfirmed:
			effective := booking.PaymentStatus
			if p.PaymentStatus != "" {
				effective = p.PaymentStatus
			}
			if effective != model.PaymentStatusSuccess {
				return nil, ErrPaymentRequired
			}
		case model.BookingStatusCancelled:
			// cancelling an unpaid booking is always allowed
		default:
			return nil, ErrInvalidStatus
		}
		set["status"] = p.Status
	}
	if len(set) == 0 {
		return booking, nil
	}

	updated, err := s.bookings.Update(ctx, id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Status == model.BookingStatusCancelled {
		// Mirror of the create-time decrement.
		if err := s.flights.IncrementSeats(ctx, booking.FlightID, booking.Quantity, booking.FareClass); err != nil {
			log.Printf("booking %s: seat restore failed: %v", id.Hex(), err)
		}
	}
	if p.Status == model.BookingStatusConfirmed {
		s.publishConfirmed(ctx, updated)
	}
	return updated, nil
}

// Delete removes a pending, unpaid booking and restores its quantity
// to the flight's seat counter.
func (s *BookingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	if booking.Terminal() {
		return ErrBookingTerminal
	}
	if booking.PaymentStatus == model.PaymentStatusSuccess {
		return ErrBookingPaid
	}

	deleted, err := s.bookings.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	if err := s.flights.IncrementSeats(ctx, deleted.FlightID, deleted.Quantity, deleted.FareClass); err != nil {
		log.Printf("booking %s: seat restore failed: %v", id.Hex(), err)
	}
	return nil
}

// Get loads one booking.
func (s *BookingService) Get(ctx context.Context, id primitive.ObjectID) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Search returns bookings matching the filter plus the pagination
// envelope.
func (s *BookingService) Search(ctx context.Context, filter repository.BookingFilter, page utils.PageRequest) ([]model.Booking, utils.Pagination, error) {
	items, total, err := s.bookings.Search(ctx, filter, page)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return items, utils.NewPagination(page, total), nil
}

// Stats returns counts grouped by status/payment status and the summed
// revenue of successfully paid bookings.
func (s *BookingService) Stats(ctx context.Context) (*repository.BookingStats, error) {
	return s.bookings.Stats(ctx)
}

func (s *BookingService) publishConfirmed(ctx context.Context, b *model.Booking) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID.Hex(),
		UserID:      b.UserID.Hex(),
		FlightID:    b.FlightID.Hex(),
		Quantity:    b.Quantity,
		FareClass:   b.FareClass,
		TotalPrice:  b.TotalPrice,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if flight, err := s.flights.GetByID(ctx, b.FlightID); err == nil {
		ev.FlightNumber = flight.FlightNumber
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking %s: publish confirmed event failed: %v", b.ID.Hex(), err)
	}
}
