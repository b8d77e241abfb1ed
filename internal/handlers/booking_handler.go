package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

type CreateBookingRequest struct {
	Treatment   string `json:"treatment" binding:"required,notblank"`
	Date        string `json:"date" binding:"required,notblank"`
	Patient     string `json:"patient" binding:"required,email"`
	Slot        string `json:"slot" binding:"required,notblank"`
	PatientName string `json:"patientName" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=32"`
}

// CreateBooking stores a booking unless the patient already holds one for the
// same treatment on the same date, in which case the existing booking is
// returned with success=false.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	booking := models.Booking{
		Treatment:   req.Treatment,
		Date:        req.Date,
		Patient:     req.Patient,
		PatientName: req.PatientName,
		Slot:        req.Slot,
		Phone:       req.Phone,
	}

	stored, inserted, err := h.DB.InsertBookingIfAbsent(c.Request.Context(), booking)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to create booking", err))
		return
	}
	if !inserted {
		c.JSON(http.StatusOK, gin.H{"success": false, "booking": stored})
		return
	}

	h.NotificationSvc.BookingConfirmed(stored)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  gin.H{"insertedId": stored.ID},
	})
}

// ListPatientBookings returns the bookings of ?patient=, which must be the
// caller's own email.
func (h *Handler) ListPatientBookings(c *gin.Context) {
	email, _ := middleware.Email(c)
	patient := c.Query("patient")
	if patient == "" || patient != email {
		h.fail(c, apperror.Forbidden(errors.New("patient does not match token")))
		return
	}

	bookings, err := h.DB.BookingsByPatient(c.Request.Context(), patient)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve bookings", err))
		return
	}
	c.JSON(http.StatusOK, bookings)
}
