package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

type emailURI struct {
	Email string `uri:"email" binding:"required,email"`
}

// UpsertUserRequest lists the profile fields a caller may set on itself.
// Role is absent on purpose: it is only changed through MakeAdmin.
type UpsertUserRequest struct {
	Name     string `json:"name" binding:"max=100"`
	Phone    string `json:"phone" binding:"max=32"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.DB.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve users", err))
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpsertUser creates or updates the user keyed by :email and hands back a
// fresh token for that email. Once a password is stored, a request that
// supplies a password must supply the matching one.
func (h *Handler) UpsertUser(c *gin.Context) {
	var uri emailURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.fail(c, bindError(err))
		return
	}

	var req UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, bindError(err))
		return
	}

	fields := bson.M{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.Password != "" {
		existing, err := h.DB.FindUserByEmail(c.Request.Context(), uri.Email)
		if err != nil {
			h.fail(c, apperror.Internal("Failed to retrieve user", err))
			return
		}
		if existing != nil && existing.Password != "" && !utils.CheckPasswordHash(req.Password, existing.Password) {
			h.fail(c, apperror.Forbidden(errors.New("password mismatch")))
			return
		}
		hashed, err := utils.HashPassword(req.Password, h.opts.BcryptCost)
		if err != nil {
			h.fail(c, apperror.Internal("Failed to hash password", err))
			return
		}
		fields["password"] = hashed
	}

	result, err := h.DB.UpsertUser(c.Request.Context(), uri.Email, fields)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to save user", err))
		return
	}

	token, err := h.Tokens.Issue(uri.Email)
	if err != nil {
		h.fail(c, apperror.Internal("Could not generate token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result, "token": token})
}

// MakeAdmin promotes :email to admin. Only a caller whose own stored user
// record is an admin may do so.
func (h *Handler) MakeAdmin(c *gin.Context) {
	var uri emailURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.fail(c, bindError(err))
		return
	}

	requester, _ := middleware.Email(c)
	account, err := h.DB.FindUserByEmail(c.Request.Context(), requester)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve requester", err))
		return
	}
	if !account.IsAdmin() {
		h.fail(c, apperror.Forbidden(errors.New("requester is not an admin")))
		return
	}

	result, err := h.DB.SetRole(c.Request.Context(), uri.Email, models.RoleAdmin)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to update role", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}

// CheckAdmin reports whether :email belongs to an admin. Unknown emails are not admins.
func (h *Handler) CheckAdmin(c *gin.Context) {
	var uri emailURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.fail(c, bindError(err))
		return
	}

	user, err := h.DB.FindUserByEmail(c.Request.Context(), uri.Email)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to retrieve user", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": user.IsAdmin()})
}
