package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const textbeltURL = "https://textbelt.com/text"

// NotificationService sends booking confirmations by SMS through Textbelt.
// With an empty API key it only logs.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewNotificationService(apiKey string) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// BookingConfirmed notifies the patient of a new booking. The SMS is sent in a
// goroutine so it never delays the API response.
func (s *NotificationService) BookingConfirmed(b models.Booking) {
	if b.Phone == "" {
		log.Debug().Str("patient", b.Patient).Msg("booking confirmation not sent: no phone number")
		return
	}
	if s.apiKey == "" {
		log.Debug().Str("patient", b.Patient).Msg("booking confirmation not sent: TEXTBELT_API_KEY unset")
		return
	}

	go func() {
		if err := s.send(context.Background(), b.Phone, ConfirmationMessage(b)); err != nil {
			log.Warn().Err(err).Str("patient", b.Patient).Msg("booking confirmation SMS failed")
			return
		}
		log.Info().Str("patient", b.Patient).Msg("booking confirmation SMS sent")
	}()
}

func ConfirmationMessage(b models.Booking) string {
	name := b.PatientName
	if name == "" {
		name = b.Patient
	}
	return fmt.Sprintf("Hello %s, your %s appointment on %s at %s is confirmed.", name, b.Treatment, b.Date, b.Slot)
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt: %s", result.Error)
	}
	return nil
}
