package routes

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestBookingRoutesRegistered(t *testing.T) {
	e := echo.New()
	RegisterBookingRoutes(e, nil, nil, nil)

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		http.MethodPost + " /api/bookings",
		http.MethodPost + " /api/bookings/bulk",
		http.MethodPost + " /api/bookings/check-availability",
		http.MethodGet + " /api/bookings/my",
		http.MethodGet + " /api/bookings/user",
		http.MethodGet + " /api/bookings/:id",
		http.MethodGet + " /api/bookings/:id/qr",
		http.MethodPut + " /api/bookings/:id/status",
		http.MethodPatch + " /api/bookings/:id/status",
		http.MethodPost + " /api/bookings/:id/cancel",
		http.MethodPost + " /api/bookings/:id/reschedule",
		http.MethodGet + " /api/bookings/provider/:id",
		http.MethodGet + " /api/bookings/dashboard",
		http.MethodGet + " /api/bookings/analytics/stats",
		http.MethodGet + " /api/bookings/search",
		http.MethodGet + " /api/bookings/export/csv",
		http.MethodGet + " /api/provider/bookings",
		http.MethodGet + " /api/admin/bookings/export",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s is not registered", route)
		}
	}
}
