package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
)

// cancelCutoff is the business deadline for ticket cancellation,
// measured backwards from the flight's departure time.
const cancelCutoff = 24 * time.Hour

// TicketStore is the ticket persistence surface used by the service.
type TicketStore interface {
	Insert(ctx context.Context, t *model.Ticket) error
	InsertMany(ctx context.Context, tickets []model.Ticket) (int, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Ticket, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Ticket, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SeatTaken(ctx context.Context, flightID primitive.ObjectID, seatNumber string, exclude primitive.ObjectID) (bool, error)
	TakenSeats(ctx context.Context, flightID primitive.ObjectID) (map[string]bool, error)
	CountActive(ctx context.Context, flightID primitive.ObjectID) (int64, error)
	BookedSeats(ctx context.Context, flightID primitive.ObjectID) ([]repository.BookedSeat, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]model.Ticket, error)
	StatusCounts(ctx context.Context, flightID primitive.ObjectID) (map[string]int64, error)
}

// BookingLookup is the narrow booking read used by ticket issuance.
type BookingLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Booking, error)
}

// flightLocks hands out one mutex per flight id so ticket issuance and
// seat reassignment for a given flight run one at a time.  The store
// cannot express "insert unless a matching seat exists" as a single
// guarded write, so the uniqueness and capacity checks are serialized
// here instead.  The map is never evicted: each entry is one mutex,
// and the set of flights a process sees between restarts stays far
// below the point where eviction would matter.
type flightLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFlightLocks() *flightLocks {
	return &flightLocks{locks: make(map[string]*sync.Mutex)}
}

func (fl *flightLocks) get(id primitive.ObjectID) *sync.Mutex {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key := id.Hex()
	if m, ok := fl.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	fl.locks[key] = m
	return m
}

// TicketService owns the ticket half of the seat inventory rules: no
// two non-cancelled tickets on a flight share a seat number, and the
// number of non-cancelled tickets never exceeds the flight's seat
// capacity.
type TicketService struct {
	tickets  TicketStore
	bookings BookingLookup
	flights  FlightStore
	locks    *flightLocks
	now      func() time.Time
}

// NewTicketService constructs a TicketService.
func NewTicketService(tickets TicketStore, bookings BookingLookup, flights FlightStore) *TicketService {
	if tickets == nil || bookings == nil || flights == nil {
		panic("nil store passed to NewTicketService")
	}
	return &TicketService{
		tickets:  tickets,
		bookings: bookings,
		flights:  flights,
		locks:    newFlightLocks(),
		now:      time.Now,
	}
}

// TicketInput is one requested seat assignment.
type TicketInput struct {
	SeatNumber string
	FareClass  string
	Passenger  model.Passenger
	Price      float64
	Status     string
}

// Create issues a single ticket against an existing booking and
// flight.  The flight's issuance lock is held across the uniqueness
// and capacity checks and the insert.
func (s *TicketService) Create(ctx context.Context, bookingID, flightID primitive.ObjectID, in TicketInput) (*model.Ticket, error) {
	lock := s.locks.get(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := s.preconditions(ctx, bookingID, flightID)
	if err != nil {
		return nil, err
	}
	if in.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	status, err := normalizeTicketStatus(in.Status)
	if err != nil {
		return nil, err
	}

	taken, err := s.tickets.SeatTaken(ctx, flightID, in.SeatNumber, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSeatBooked
	}

	active, err := s.tickets.CountActive(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if active+1 > int64(flight.AvailableSeats) {
		return nil, ErrInsufficientSeats
	}

	ticket := &model.Ticket{
		BookingID:  bookingID,
		FlightID:   flightID,
		SeatNumber: in.SeatNumber,
		FareClass:  in.FareClass,
		Passenger:  in.Passenger,
		Price:      in.Price,
		Status:     status,
	}
	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// CreateBatch issues several tickets as one unit.  Every check runs
// before any insert, in a fixed order: booking exists, flight exists,
// no duplicate seat inside the batch, no seat already held on the
// flight, capacity, positive prices.  The whole batch is inserted only
// after all checks pass.
func (s *TicketService) CreateBatch(ctx context.Context, bookingID, flightID primitive.ObjectID, inputs []TicketInput) ([]model.Ticket, error) {
	if len(inputs) == 0 {
		return nil, ErrInvalidQuantity
	}

	lock := s.locks.get(flightID)
	lock.Lock()
	defer lock.Unlock()

	flight, err := s.preconditions(ctx, bookingID, flightID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.SeatNumber] {
			return nil, DuplicateSeatError(in.SeatNumber)
		}
		seen[in.SeatNumber] = true
	}

	held, err := s.tickets.TakenSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if held[in.SeatNumber] {
			return nil, ErrSeatBooked
		}
	}

	active, err := s.tickets.CountActive(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if active+int64(len(inputs)) > int64(flight.AvailableSeats) {
		return nil, ErrInsufficientSeats
	}

	for _, in := range inputs {
		if in.Price <= 0 {
			return nil, ErrInvalidPrice
		}
	}

	tickets := make([]model.Ticket, 0, len(inputs))
	for _, in := range inputs {
		status, err := normalizeTicketStatus(in.Status)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, model.Ticket{
			BookingID:  bookingID,
			FlightID:   flightID,
			SeatNumber: in.SeatNumber,
			FareClass:  in.FareClass,
			Passenger:  in.Passenger,
			Price:      in.Price,
			Status:     status,
		})
	}
	if _, err := s.tickets.InsertMany(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateTicketParams are the optional fields of Update.  Nil/empty
// values leave a field unchanged.
type UpdateTicketParams struct {
	SeatNumber string
	Status     string
	Price      *float64
	Passenger  *model.Passenger
}

// Update applies seat reassignment, price correction and status
// transitions, re-validating each.  Status follows an explicit
// transition table: unused→used, unused→cancelled (subject to the
// 24-hour cutoff); used and cancelled are terminal.  Every field of
// the patch is validated before anything is written, so a rejected
// patch leaves the ticket untouched; the single write carrying all
// fields happens under the flight lock when a seat changes.
func (s *TicketService) Update(ctx context.Context, id primitive.ObjectID, p UpdateTicketParams) (*model.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}

	set := bson.M{}

	if p.Status != "" && p.Status != ticket.Status {
		if err := s.checkTransition(ctx, ticket, p.Status); err != nil {
			return nil, err
		}
		set["status"] = p.Status
	}

	if p.Price != nil {
		if *p.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		set["price"] = *p.Price
	}
	if p.Passenger != nil {
		set["passenger"] = *p.Passenger
	}

	if p.SeatNumber != "" && p.SeatNumber != ticket.SeatNumber {
		set["seatNumber"] = p.SeatNumber
		// Hold the flight lock across the uniqueness check and the
		// write so a concurrent reassignment cannot pass the same
		// check and land on the same seat.
		lock := s.locks.get(ticket.FlightID)
		lock.Lock()
		defer lock.Unlock()
		taken, err := s.tickets.SeatTaken(ctx, ticket.FlightID, p.SeatNumber, ticket.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSeatBooked
		}
	}

	if len(set) == 0 {
		return ticket, nil
	}
	updated, err := s.tickets.Update(ctx, id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TicketService) checkTransition(ctx context.Context, ticket *model.Ticket, target string) error {
	switch target {
	case model.TicketStatusUsed:
		if ticket.Status != model.TicketStatusUnused {
			return ErrInvalidTransition
		}
		return nil
	case model.TicketStatusCancelled:
		if ticket.Status == model.TicketStatusUsed {
			return ErrTicketUsed
		}
		check, err := s.cancelCheck(ctx, ticket)
		if err != nil {
			return err
		}
		if !check.CanCancel {
			return CancelWindowError(check.HoursUntilDeparture)
		}
		return nil
	case model.TicketStatusUnused:
		return ErrInvalidTransition
	default:
		return ErrInvalidStatus
	}
}

// CancelCheck is the result of the cancellation state query.
type CancelCheck struct {
	CanCancel           bool    `json:"canCancel"`
	HoursUntilDeparture float64 `json:"hoursUntilDeparture"`
}

// CanCancel re-derives the 24-hour cutoff from the flight's departure
// time and the wall clock.  It is the single authoritative cutoff rule
// and is evaluated again at the point of cancellation.
func (s *TicketService) CanCancel(ctx context.Context, id primitive.ObjectID) (CancelCheck, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return CancelCheck{}, ErrTicketNotFound
	}
	if err != nil {
		return CancelCheck{}, err
	}
	return s.cancelCheck(ctx, ticket)
}

func (s *TicketService) cancelCheck(ctx context.Context, ticket *model.Ticket) (CancelCheck, error) {
	flight, err := s.flights.GetByID(ctx, ticket.FlightID)
	if errors.Is(err, repository.ErrNotFound) {
		return CancelCheck{}, ErrFlightNotFound
	}
	if err != nil {
		return CancelCheck{}, err
	}
	hours := flight.DepartureTime.Sub(s.now()).Hours()
	return CancelCheck{
		CanCancel:           hours > cancelCutoff.Hours(),
		HoursUntilDeparture: hours,
	}, nil
}

// SeatAvailability is the derived seat count for a flight.
type SeatAvailability struct {
	FlightID       string `json:"flightId"`
	Capacity       int    `json:"capacity"`
	ActiveTickets  int64  `json:"activeTickets"`
	AvailableSeats int64  `json:"availableSeats"`
}

// AvailableSeats returns the flight's capacity minus its non-cancelled
// ticket count.  This is a derived read, not a stored counter.
func (s *TicketService) AvailableSeats(ctx context.Context, flightID primitive.ObjectID) (SeatAvailability, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		return SeatAvailability{}, ErrFlightNotFound
	}
	if err != nil {
		return SeatAvailability{}, err
	}
	active, err := s.tickets.CountActive(ctx, flightID)
	if err != nil {
		return SeatAvailability{}, err
	}
	return SeatAvailability{
		FlightID:       flightID.Hex(),
		Capacity:       flight.AvailableSeats,
		ActiveTickets:  active,
		AvailableSeats: int64(flight.AvailableSeats) - active,
	}, nil
}

// BookedSeats returns the seat-map projection of non-cancelled tickets.
func (s *TicketService) BookedSeats(ctx context.Context, flightID primitive.ObjectID) ([]repository.BookedSeat, error) {
	return s.tickets.BookedSeats(ctx, flightID)
}

// Get loads one ticket.
func (s *TicketService) Get(ctx context.Context, id primitive.ObjectID) (*model.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListByBooking returns every ticket issued against a booking.
func (s *TicketService) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]model.Ticket, error) {
	return s.tickets.ListByBooking(ctx, bookingID)
}

// Stats groups a flight's tickets by status.
func (s *TicketService) Stats(ctx context.Context, flightID primitive.ObjectID) (map[string]int64, error) {
	return s.tickets.StatusCounts(ctx, flightID)
}

// Delete hard-deletes a ticket.  This is an administrative removal,
// not a cancellation; it performs no cutoff check.
func (s *TicketService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.tickets.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTicketNotFound
	}
	return err
}

func (s *TicketService) preconditions(ctx context.Context, bookingID, flightID primitive.ObjectID) (*model.Flight, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func normalizeTicketStatus(status string) (string, error) {
	switch status {
	case "":
		return model.TicketStatusUnused, nil
	case model.TicketStatusUnused, model.TicketStatusUsed, model.TicketStatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}
