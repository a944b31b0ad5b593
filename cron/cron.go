package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/meditrack/hospital-api/config"
	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/models"
	"github.com/meditrack/hospital-api/redis"
	"github.com/meditrack/hospital-api/scheduler"
	"github.com/meditrack/hospital-api/utils"
)

// StartCronJobs initializes the scheduler jobs: the nightly slot-horizon
// top-up and the appointment reminder scan.
func StartCronJobs() {
	c := cron.New()

	if _, err := c.AddFunc("30 2 * * *", topUpSlotHorizons); err != nil {
		log.Fatalf("Failed to add horizon top-up job: %v", err)
	}
	if _, err := c.AddFunc("*/5 * * * *", sendAppointmentReminders); err != nil {
		log.Fatalf("Failed to add reminder job: %v", err)
	}

	c.Start()
	log.Println("Cron job scheduler started")
}

// topUpSlotHorizons extends every doctor's slot horizon as the calendar
// advances. The Redis lock keeps multiple instances from running the batch on
// the same night.
func topUpSlotHorizons() {
	ctx := context.Background()
	lockKey := "cron:slot-topup:" + time.Now().UTC().Format("2006-01-02")
	ok, err := redis.Client.SetNX(ctx, lockKey, 1, 12*time.Hour).Result()
	if err != nil {
		utils.GetLogger().Error("horizon top-up: redis lock failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	svc := scheduler.NewService(db.DB, redis.Client, utils.GetLogger())
	svc.TopUpHorizons(ctx, config.AppConfig.SlotHorizonWeeks)
}

// sendAppointmentReminders checks for appointments starting in the next hour
// and emails the patients.
func sendAppointmentReminders() {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startWindow := now.Add(55 * time.Minute).Format("15:04:05")
	endWindow := now.Add(65 * time.Minute).Format("15:04:05")

	var appointments []models.Appointment
	err := db.DB.Preload("Patient").Preload("Doctor").
		Where("status = ? AND date = ? AND start_time BETWEEN ? AND ?",
			models.StatusConfirmed, today, startWindow, endWindow).
		Find(&appointments).Error
	if err != nil {
		utils.GetLogger().Error("reminder scan failed", zap.Error(err))
		return
	}

	for i := range appointments {
		appointment := &appointments[i]
		if err := sendReminderEmail(appointment); err != nil {
			utils.GetLogger().Warn("failed to send reminder",
				zap.Uint("appointment_id", appointment.ID), zap.Error(err))
			continue
		}
		utils.GetLogger().Info("sent reminder",
			zap.Uint("appointment_id", appointment.ID),
			zap.String("patient_email", appointment.Patient.Email))
	}
}

// sendReminderEmail constructs and sends the reminder email
func sendReminderEmail(appointment *models.Appointment) error {
	subject := "Reminder: Upcoming Appointment"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
		</ul>
		<p>Please arrive on time. If you need to reschedule or cancel, contact us as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Care Team</p>
	`, appointment.Patient.Name, appointment.Doctor.Name,
		appointment.Date.Format("2006-01-02"),
		appointment.StartTime,
		appointment.EndTime)

	return utils.SendEmail(appointment.Patient.Email, subject, body)
}
