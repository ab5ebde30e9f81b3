package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// FleetHandler manages the reference data flights hang off: airlines,
// airports and aircraft.
type FleetHandler struct {
	Airlines *repository.AirlineRepo
	Airports *repository.AirportRepo
	Aircraft *repository.AircraftRepo
}

func NewFleetHandler(al *repository.AirlineRepo, ap *repository.AirportRepo, ac *repository.AircraftRepo) *FleetHandler {
	return &FleetHandler{Airlines: al, Airports: ap, Aircraft: ac}
}

// ----- airlines -----

type airlineReq struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Country string `json:"country"`
	LogoURL string `json:"logoUrl"`
}

func (h *FleetHandler) CreateAirline(c echo.Context) error {
	var req airlineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Name == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/code required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := &model.Airline{Name: req.Name, Code: req.Code, Country: req.Country, LogoURL: req.LogoURL}
	if err := h.Airlines.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "airline code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create airline failed"})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *FleetHandler) GetAirline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Airlines.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airline not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *FleetHandler) ListAirlines(c echo.Context) error {
	page := bindPage(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	airlines, total, err := h.Airlines.List(ctx, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      airlines,
		"pagination": utils.NewPagination(page, total),
	})
}

func (h *FleetHandler) UpdateAirline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req airlineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Code != "" {
		set["code"] = strings.ToUpper(strings.TrimSpace(req.Code))
	}
	if req.Country != "" {
		set["country"] = req.Country
	}
	if req.LogoURL != "" {
		set["logoUrl"] = req.LogoURL
	}
	if len(set) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Airlines.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airline not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *FleetHandler) DeleteAirline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Airlines.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airline not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- airports -----

type airportReq struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (h *FleetHandler) CreateAirport(c echo.Context) error {
	var req airportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Name == "" || req.Code == "" || req.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/code/city required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := &model.Airport{Name: req.Name, Code: req.Code, City: req.City, Country: req.Country}
	if err := h.Airports.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "airport code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create airport failed"})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *FleetHandler) GetAirport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Airports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airport not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, a)
}

// SearchAirports matches the term against code, name, city and
// country.
func (h *FleetHandler) SearchAirports(c echo.Context) error {
	term := c.QueryParam("q")
	page := bindPage(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	airports, total, err := h.Airports.Search(ctx, term, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      airports,
		"pagination": utils.NewPagination(page, total),
	})
}

func (h *FleetHandler) UpdateAirport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req airportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Code != "" {
		set["code"] = strings.ToUpper(strings.TrimSpace(req.Code))
	}
	if req.City != "" {
		set["city"] = req.City
	}
	if req.Country != "" {
		set["country"] = req.Country
	}
	if len(set) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Airports.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airport not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *FleetHandler) DeleteAirport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Airports.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "airport not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- aircraft -----

type aircraftReq struct {
	AirlineID    string                    `json:"airlineId"`
	Model        string                    `json:"model"`
	Registration string                    `json:"registration"`
	Capacity     int                       `json:"capacity"`
	ClassSeats   []model.SeatClassCapacity `json:"classSeats"`
}

func (h *FleetHandler) CreateAircraft(c echo.Context) error {
	var req aircraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	airlineID, err := getObjectID(req.AirlineID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid airlineId"})
	}
	if req.Model == "" || req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "model and positive capacity required"})
	}
	classTotal := 0
	for _, cs := range req.ClassSeats {
		if cs.Class == "" || cs.Capacity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class seats"})
		}
		classTotal += cs.Capacity
	}
	if classTotal > req.Capacity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class seats exceed capacity"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Airlines.GetByID(ctx, airlineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "airline not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	a := &model.Aircraft{
		AirlineID:    airlineID,
		Model:        req.Model,
		Registration: req.Registration,
		Capacity:     req.Capacity,
		ClassSeats:   req.ClassSeats,
	}
	if err := h.Aircraft.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create aircraft failed"})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *FleetHandler) GetAircraft(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Aircraft.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *FleetHandler) ListAircraft(c echo.Context) error {
	airlineID, err := queryID(c, "airlineId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid airlineId"})
	}
	page := bindPage(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	aircraft, total, err := h.Aircraft.List(ctx, airlineID, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      aircraft,
		"pagination": utils.NewPagination(page, total),
	})
}

func (h *FleetHandler) UpdateAircraft(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req aircraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	set := bson.M{}
	if req.Model != "" {
		set["model"] = req.Model
	}
	if req.Registration != "" {
		set["registration"] = req.Registration
	}
	if req.Capacity > 0 {
		set["capacity"] = req.Capacity
	}
	if req.ClassSeats != nil {
		set["classSeats"] = req.ClassSeats
	}
	if len(set) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Aircraft.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *FleetHandler) DeleteAircraft(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Aircraft.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
