package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

// Store is the document layer the handlers need. *store.Mongo implements it.
type Store interface {
	Ping(ctx context.Context) error

	ListServices(ctx context.Context) ([]models.Service, error)

	BookingsByDate(ctx context.Context, date string) ([]models.Booking, error)
	BookingsByPatient(ctx context.Context, patient string) ([]models.Booking, error)
	InsertBookingIfAbsent(ctx context.Context, booking models.Booking) (models.Booking, bool, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, email string, fields bson.M) (store.UpsertResult, error)
	SetRole(ctx context.Context, email, role string) (store.UpsertResult, error)

	InsertDoctor(ctx context.Context, doctor models.Doctor) (primitive.ObjectID, error)
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	DeleteDoctor(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type TokenIssuer interface {
	Issue(email string) (string, error)
}

type Notifier interface {
	BookingConfirmed(booking models.Booking)
}

type Options struct {
	// DefaultDate is used by the availability endpoint when no date is given.
	DefaultDate string
	BcryptCost  int
}

type Handler struct {
	DB              Store
	Tokens          TokenIssuer
	NotificationSvc Notifier
	opts            Options
}

func NewHandler(db Store, tokens TokenIssuer, notificationSvc Notifier, opts Options) *Handler {
	return &Handler{
		DB:              db,
		Tokens:          tokens,
		NotificationSvc: notificationSvc,
		opts:            opts,
	}
}

// fail writes err as a {"message": ...} response. Internal causes are logged
// and never sent to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		log.Error().
			Err(appErr.Err).
			Str("request_id", c.GetString(middleware.ContextRequestID)).
			Str("route", c.FullPath()).
			Msg(appErr.Message)
	}
	middleware.Abort(c, appErr)
}
