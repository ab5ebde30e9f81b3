package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// FlightHandler covers the public catalogue endpoints and the admin
// schedule management endpoints.
type FlightHandler struct {
	Flights  *repository.FlightRepo
	Bookings *repository.BookingRepo
	Aircraft *repository.AircraftRepo
}

func NewFlightHandler(f *repository.FlightRepo, b *repository.BookingRepo, a *repository.AircraftRepo) *FlightHandler {
	return &FlightHandler{Flights: f, Bookings: b, Aircraft: a}
}

type flightReq struct {
	FlightNumber   string             `json:"flightNumber"`
	AirlineID      string             `json:"airlineId"`
	AircraftID     string             `json:"aircraftId"`
	DepartureID    string             `json:"departureAirportId"`
	ArrivalID      string             `json:"arrivalAirportId"`
	DepartureTime  time.Time          `json:"departureTime"`
	ArrivalTime    time.Time          `json:"arrivalTime"`
	Price          float64            `json:"price"`
	AvailableSeats int                `json:"availableSeats"`
	FareOptions    []model.FareOption `json:"fareOptions"`
}

func (req *flightReq) validate() string {
	switch {
	case req.FlightNumber == "":
		return "flightNumber required"
	case req.Price <= 0:
		return "price must be positive"
	case req.AvailableSeats <= 0:
		return "availableSeats must be positive"
	case !req.ArrivalTime.After(req.DepartureTime):
		return "arrivalTime must be after departureTime"
	}
	for _, fo := range req.FareOptions {
		if fo.Class == "" || fo.Price <= 0 || fo.AvailableSeats < 0 {
			return "invalid fare option"
		}
	}
	return ""
}

// Create schedules a flight.  The caller's aircraft must exist and be
// large enough for the advertised seat count.
func (h *FlightHandler) Create(c echo.Context) error {
	var req flightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	airlineID, err1 := primitive.ObjectIDFromHex(req.AirlineID)
	aircraftID, err2 := primitive.ObjectIDFromHex(req.AircraftID)
	depID, err3 := primitive.ObjectIDFromHex(req.DepartureID)
	arrID, err4 := primitive.ObjectIDFromHex(req.ArrivalID)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference id"})
	}
	if depID == arrID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure and arrival must differ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	aircraft, err := h.Aircraft.GetByID(ctx, aircraftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if req.AvailableSeats > aircraft.Capacity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "availableSeats exceeds aircraft capacity"})
	}

	f := &model.Flight{
		FlightNumber:   req.FlightNumber,
		AirlineID:      airlineID,
		AircraftID:     aircraftID,
		DepartureID:    depID,
		ArrivalID:      arrID,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Duration:       int(req.ArrivalTime.Sub(req.DepartureTime).Minutes()),
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
		FareOptions:    req.FareOptions,
	}
	if err := h.Flights.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create flight failed"})
	}
	return c.JSON(http.StatusCreated, f)
}

// Get returns one flight by id.
func (h *FlightHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Flights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, f)
}

// Search filters the schedule by route, airline, date window, price
// cap and minimum remaining seats.  Results come back paginated.
func (h *FlightHandler) Search(c echo.Context) error {
	var filter repository.FlightFilter
	var err error
	if filter.AirlineID, err = queryID(c, "airlineId"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid airlineId"})
	}
	if filter.DepartureID, err = queryID(c, "departureAirportId"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departureAirportId"})
	}
	if filter.ArrivalID, err = queryID(c, "arrivalAirportId"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrivalAirportId"})
	}
	if s := c.QueryParam("dateFrom"); s != "" {
		if filter.DateFrom, err = time.Parse(time.RFC3339, s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dateFrom"})
		}
	}
	if s := c.QueryParam("dateTo"); s != "" {
		if filter.DateTo, err = time.Parse(time.RFC3339, s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dateTo"})
		}
	}
	if s := c.QueryParam("maxPrice"); s != "" {
		if filter.MaxPrice, err = strconv.ParseFloat(s, 64); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid maxPrice"})
		}
	}
	if s := c.QueryParam("minSeats"); s != "" {
		if filter.MinSeats, err = strconv.Atoi(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid minSeats"})
		}
	}
	page := bindPage(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	flights, total, err := h.Flights.Search(ctx, filter, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      flights,
		"pagination": utils.NewPagination(page, total),
	})
}

type flightUpdateReq struct {
	DepartureTime  *time.Time          `json:"departureTime"`
	ArrivalTime    *time.Time          `json:"arrivalTime"`
	Price          *float64            `json:"price"`
	AvailableSeats *int                `json:"availableSeats"`
	FareOptions    *[]model.FareOption `json:"fareOptions"`
}

// Update patches mutable schedule fields.  Seat counters set here
// bypass the booking flow, so only admins reach this endpoint.
func (h *FlightHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req flightUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	set := bson.M{}
	if req.DepartureTime != nil {
		set["departureTime"] = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		set["arrivalTime"] = *req.ArrivalTime
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
		}
		set["price"] = *req.Price
	}
	if req.AvailableSeats != nil {
		if *req.AvailableSeats < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "availableSeats must not be negative"})
		}
		set["availableSeats"] = *req.AvailableSeats
	}
	if req.FareOptions != nil {
		set["fareOptions"] = *req.FareOptions
	}
	if len(set) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Flights.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, f)
}

// Delete removes a flight, refusing while non-cancelled bookings still
// reference it.
func (h *FlightHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Bookings.CountActiveByFlight(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if active > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "flight has active bookings"})
	}
	if err := h.Flights.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
