package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/availability"
)

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.DB.ListServices(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve services", err))
		return
	}
	c.JSON(http.StatusOK, services)
}

// AvailableSlots lists every service with the slots still free on ?date=.
// Without a date the configured default date is used.
func (h *Handler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.opts.DefaultDate
	}

	ctx := c.Request.Context()
	services, err := h.DB.ListServices(ctx)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve services", err))
		return
	}
	bookings, err := h.DB.BookingsByDate(ctx, date)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve bookings", err))
		return
	}

	c.JSON(http.StatusOK, availability.ForDate(date, services, bookings))
}
