package utils

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/meditrack/hospital-api/config"
	"github.com/meditrack/hospital-api/models"
)

func SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.EmailUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.EmailUser,
		config.AppConfig.EmailPass,
	)

	return d.DialAndSend(m)
}

// NotifyCancellation emails a patient whose appointment was cancelled by a
// schedule change. Fired after the commit transaction; a delivery failure is
// logged, never rolled into the transaction.
func NotifyCancellation(appointment *models.Appointment) {
	if appointment.Patient.Email == "" {
		return
	}
	subject := "Your appointment has been cancelled"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We are sorry to inform you that your appointment with Dr. %s on %s at %s
		had to be cancelled due to a schedule change.</p>
		<p>Please contact the hospital to rebook at a new time.</p>
		<p>Best regards,</p>
		<p>Your Care Team</p>
	`, appointment.Patient.Name, appointment.Doctor.Name,
		appointment.Date.Format("2006-01-02"), appointment.StartTime)

	if err := SendEmail(appointment.Patient.Email, subject, body); err != nil {
		GetLogger().Warn("failed to send cancellation notice",
			zap.Uint("appointment_id", appointment.ID), zap.Error(err))
	}
}
