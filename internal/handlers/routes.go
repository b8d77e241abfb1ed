package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint on r. Routes that need a bearer token
// are wrapped with auth.
func (h *Handler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	registerValidators()

	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)

	r.GET("/service", h.ListServices)
	r.GET("/availabe", h.AvailableSlots)
	r.GET("/available", h.AvailableSlots)

	r.POST("/booking", h.CreateBooking)
	r.GET("/booking", auth, h.ListPatientBookings)

	r.GET("/users", auth, h.ListUsers)
	r.PUT("/user/:email", h.UpsertUser)
	r.PUT("/user/admin/:email", auth, h.MakeAdmin)
	r.GET("/admin/:email", auth, h.CheckAdmin)

	r.POST("/doctor", h.CreateDoctor)
	r.GET("/doctor", auth, h.ListDoctors)
	r.DELETE("/doctor/:id", auth, h.DeleteDoctor)
}
