package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/service"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// getUserID extracts the authenticated user's ObjectID from the
// context.  JWTAuth stores the sub claim under "user_id" as the hex
// string that was embedded at token issue time.
func getUserID(c echo.Context) (primitive.ObjectID, error) {
	v := c.Get("user_id")
	s, ok := v.(string)
	if !ok || s == "" {
		return primitive.NilObjectID, errors.New("missing user_id in context")
	}
	return primitive.ObjectIDFromHex(s)
}

// isAdmin checks the role claim the JWT middleware stored.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// getObjectID parses a body field as an ObjectID.
func getObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// pathID parses the named path parameter as a Mongo ObjectID.
func pathID(c echo.Context, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param(name))
}

// queryID parses an optional query parameter as an ObjectID; an absent
// parameter yields the zero ObjectID (meaning "no constraint").
func queryID(c echo.Context, name string) (primitive.ObjectID, error) {
	s := c.QueryParam(name)
	if s == "" {
		return primitive.NilObjectID, nil
	}
	return primitive.ObjectIDFromHex(s)
}

// bindPage reads page/limit query parameters and normalizes them.
func bindPage(c echo.Context) utils.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return utils.NormalizePage(page, limit)
}

// fail maps a service error to its transport response.  Domain errors
// carry their own status and stable code; anything else is a 500.
func fail(c echo.Context, err error) error {
	var domErr *service.Error
	if errors.As(err, &domErr) {
		return c.JSON(domErr.Status, echo.Map{"error": domErr.Message, "code": domErr.Code})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
