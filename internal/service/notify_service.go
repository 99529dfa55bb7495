package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"parkspot/internal/db"
)

// NotifyService delivers booking confirmations over email (SendGrid) and
// SMS (Twilio). Sends run asynchronously; a delivery failure is logged and
// never surfaced to the booking caller.
type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

func (s *NotifyService) BookingCreated(b *db.Booking) {
	s.send(b, "confirmed")
}

func (s *NotifyService) BookingCancelled(b *db.Booking) {
	if b.ContactEmail == "" && b.ContactPhone == "" {
		logrus.WithField("booking_id", b.ID).Debug("booking cancelled, no contact details for notice")
		return
	}
	s.send(b, "cancelled")
}

func (s *NotifyService) send(b *db.Booking, status string) {
	name, email, phone := b.ContactName, b.ContactEmail, b.ContactPhone
	startFmt := b.StartTime.Format("02 Jan 2006 15:04 MST")
	endFmt := b.EndTime.Format("02 Jan 2006 15:04 MST")

	closing := "Present the QR code from the app at the gate.\n"
	if status == "cancelled" {
		closing = "Any payment will be refunded to the original method.\n"
	}

	if email != "" {
		subject := fmt.Sprintf("Your parking booking is %s - %s", status, b.ID)
		body := fmt.Sprintf(
			"Hello %s,\n\nYour parking booking is %s.\n\n"+
				"Booking ID: %s\n"+
				"Vehicle: %s\n"+
				"From: %s\n"+
				"To: %s\n"+
				"Amount: %.2f\n\n"+
				"%s",
			name, status, b.ID, b.VehicleNumber, startFmt, endFmt, b.TotalAmount, closing,
		)
		go func() {
			if err := sendEmailWithSendGrid(email, name, subject, body); err != nil {
				logrus.WithFields(logrus.Fields{
					"booking_id": b.ID,
					"error":      err,
				}).Error("booking email delivery failed")
			}
		}()
	}

	if phone != "" {
		msg := fmt.Sprintf("Parking booking %s is %s. Check-in: %s. Details in your email.",
			b.ID, status, b.StartTime.Format("02/01 15:04"))
		go func() {
			if err := sendSMS(phone, msg); err != nil {
				logrus.WithFields(logrus.Fields{
					"booking_id": b.ID,
					"error":      err,
				}).Error("booking sms delivery failed")
			}
		}()
	}
}

func sendEmailWithSendGrid(toEmail, toName, subject, plainTextContent string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if apiKey == "" || fromEmail == "" {
		return fmt.Errorf("sendgrid is not configured")
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "ParkSpot"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, "")

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func sendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")
	if accountSid == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("twilio is not configured")
	}
	if !strings.HasPrefix(toNumber, "+") {
		logrus.WithField("to", toNumber).Warn("destination number is not E.164, sms may fail")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}
