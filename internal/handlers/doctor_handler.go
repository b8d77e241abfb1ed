package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty" binding:"required,notblank,max=100"`
	Image     string `json:"img" binding:"omitempty,url"`
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	id, err := h.DB.InsertDoctor(c.Request.Context(), models.Doctor{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
		Image:     req.Image,
	})
	if err != nil {
		h.fail(c, apperror.Internal("Failed to create doctor", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": id})
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.DB.ListDoctors(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve doctors", err))
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.fail(c, apperror.BadRequest("Invalid doctor ID", err))
		return
	}

	deleted, err := h.DB.DeleteDoctor(c.Request.Context(), id)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to delete doctor", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}
