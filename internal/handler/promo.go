package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// PromoHandler manages discount codes.  Redemption itself happens
// inside booking creation; this handler only covers admin CRUD and the
// read-only validity check customers use before checkout.
type PromoHandler struct {
	Promos *repository.PromoRepo
}

func NewPromoHandler(p *repository.PromoRepo) *PromoHandler {
	return &PromoHandler{Promos: p}
}

type promoReq struct {
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DiscountPercent float64   `json:"discountPercent"`
	MaxUses         int       `json:"maxUses"`
	ValidFrom       time.Time `json:"validFrom"`
	ValidTo         time.Time `json:"validTo"`
	IsActive        *bool     `json:"isActive"`
}

func (h *PromoHandler) Create(c echo.Context) error {
	var req promoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	if req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discountPercent must be in (0, 100]"})
	}
	if !req.ValidTo.After(req.ValidFrom) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validTo must be after validFrom"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &model.PromoCode{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		MaxUses:         req.MaxUses,
		ValidFrom:       req.ValidFrom,
		ValidTo:         req.ValidTo,
		IsActive:        active,
	}
	if err := h.Promos.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create promo failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PromoHandler) List(c echo.Context) error {
	page := bindPage(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	promos, total, err := h.Promos.List(ctx, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      promos,
		"pagination": utils.NewPagination(page, total),
	})
}

func (h *PromoHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req promoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	set := bson.M{}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.DiscountPercent != 0 {
		if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "discountPercent must be in (0, 100]"})
		}
		set["discountPercent"] = req.DiscountPercent
	}
	if req.MaxUses != 0 {
		set["maxUses"] = req.MaxUses
	}
	if !req.ValidFrom.IsZero() {
		set["validFrom"] = req.ValidFrom
	}
	if !req.ValidTo.IsZero() {
		set["validTo"] = req.ValidTo
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if len(set) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Promos.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "promo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PromoHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Promos.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "promo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Validate is the pre-checkout check: is the code usable right now,
// and what would an order total come down to.  It does not consume a
// use.
func (h *PromoHandler) Validate(c echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "promo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := echo.Map{
		"code":            p.Code,
		"usable":          p.Usable(time.Now()),
		"discountPercent": p.DiscountPercent,
	}
	if s := c.QueryParam("total"); s != "" {
		total, err := strconv.ParseFloat(s, 64)
		if err != nil || total < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid total"})
		}
		resp["discountedTotal"] = p.Discount(total)
	}
	return c.JSON(http.StatusOK, resp)
}
