package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/domain/geo"
)

// pathID reads a 32-hex path parameter, answering 400 itself when malformed.
func pathID(c echo.Context, name string) (string, bool, error) {
	v := strings.ToLower(strings.TrimSpace(c.Param(name)))
	if !reHex32.MatchString(v) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
	}
	return v, true, nil
}

// queryPoint reads ?lat=&lng=; both must be present and in range.
func queryPoint(c echo.Context) (*geo.Point, error) {
	rawLat, rawLng := c.QueryParam("lat"), c.QueryParam("lng")
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lng, errLng := strconv.ParseFloat(rawLng, 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "lat and lng must be valid coordinates")
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}
