package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catering-backend/internal/events"
	"catering-backend/internal/logging"
	"catering-backend/internal/mailer"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/sms"
	"catering-backend/internal/timeutil"
)

// NotificationService sends staff mail and customer SMS for order events.
type NotificationService struct {
	Orders   *repositories.OrderRepository
	Bills    *repositories.BillRepository
	Mailer   mailer.Mailer
	SMS      sms.SMSProvider
	Bus      events.Publisher
	StaffTo  []string
	Business string
}

// sessionsOn lists the sessions of orders held on day.
func sessionsOn(orders []*models.Order, day string) []models.UpcomingEvent {
	var out []models.UpcomingEvent
	for _, o := range orders {
		for _, key := range sortedByDate(o.MealTypeAmounts) {
			sess := o.MealTypeAmounts[key]
			if sess.Date != day {
				continue
			}
			out = append(out, models.UpcomingEvent{
				OrderID:      o.ID,
				OrderNumber:  o.OrderNumber,
				CustomerName: o.CustomerName,
				SessionKey:   key,
				Date:         sess.Date,
				Time:         sess.Time,
				Venue:        o.Venue,
				Guests:       sess.Guests,
				Amount:       sess.Amount,
			})
		}
	}
	return out
}

func reminderBody(day string, sessions []models.UpcomingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sessions scheduled for %s:\n\n", displayDate(day))
	for _, s := range sessions {
		fmt.Fprintf(&b, "- %s %s (%s): %s, %d guests", s.OrderNumber, s.SessionKey, s.CustomerName, s.Venue, s.Guests)
		if s.Time != "" {
			fmt.Fprintf(&b, " at %s", s.Time)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SendSessionReminders notifies staff and customers about sessions held
// the day after now. It returns the number of sessions covered.
func (s *NotificationService) SendSessionReminders(ctx context.Context, now time.Time) (int, error) {
	log := logging.For("Notifications")
	day := now.In(timeutil.IST).AddDate(0, 0, 1).Format(timeutil.DateLayout)

	open, err := s.Orders.ListOpen(ctx)
	if err != nil {
		return 0, err
	}
	sessions := sessionsOn(open, day)
	if len(sessions) == 0 {
		log.Debugf("no sessions on %s", day)
		return 0, nil
	}

	if len(s.StaffTo) > 0 {
		msg := &mailer.Message{
			To:      s.StaffTo,
			Subject: fmt.Sprintf("%s: %d session(s) tomorrow", s.Business, len(sessions)),
			Body:    reminderBody(day, sessions),
		}
		if err := s.Mailer.Send(ctx, msg); err != nil {
			log.WithError(err).Warn("staff reminder mail failed")
		}
	}

	phones := map[int]string{}
	for _, o := range open {
		phones[o.ID] = o.CustomerPhone
	}
	notified := map[int]bool{}
	for _, sess := range sessions {
		if notified[sess.OrderID] || phones[sess.OrderID] == "" {
			continue
		}
		notified[sess.OrderID] = true
		text := fmt.Sprintf("%s: reminder for your event (%s) on %s at %s. Order %s.",
			s.Business, sess.SessionKey, displayDate(day), sess.Venue, sess.OrderNumber)
		if err := s.SMS.SendSMS(ctx, phones[sess.OrderID], text); err != nil {
			log.WithError(err).Warnf("reminder SMS for %s failed", sess.OrderNumber)
		}
	}

	publish(s.Bus, events.SessionReminder, "Sessions tomorrow",
		fmt.Sprintf("%d session(s) on %s", len(sessions), day),
		map[string]any{"date": day, "sessions": sessions})
	log.Infof("sent reminders for %d session(s) on %s", len(sessions), day)
	return len(sessions), nil
}

// NotifyOrderSubmitted mails staff about an order placed through the portal.
func (s *NotificationService) NotifyOrderSubmitted(ctx context.Context, o *models.Order) {
	if len(s.StaffTo) == 0 {
		return
	}
	var dates []string
	for _, key := range sortedByDate(o.MealTypeAmounts) {
		sess := o.MealTypeAmounts[key]
		dates = append(dates, fmt.Sprintf("%s on %s (%d guests)", key, displayDate(sess.Date), sess.Guests))
	}
	msg := &mailer.Message{
		To:      s.StaffTo,
		Subject: fmt.Sprintf("New customer order %s", o.OrderNumber),
		Body: fmt.Sprintf("%s (%s) submitted %s.\nEvent: %s\nVenue: %s\nSessions:\n  %s\nEstimated total: %.2f\n",
			o.CustomerName, o.CustomerPhone, o.OrderNumber, o.EventName, o.Venue,
			strings.Join(dates, "\n  "), o.TotalAmount),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		logging.For("Notifications").WithError(err).Warnf("order mail for %s failed", o.OrderNumber)
	}
}

// defaultMinDue is the smallest balance that triggers a payment reminder.
const defaultMinDue = 1000

func dueMessage(business, tmpl string, d models.CustomerDue) string {
	if tmpl == "" {
		return fmt.Sprintf("Dear %s, your pending balance with %s is Rs.%.2f. Please clear the dues at your earliest. Thank you!",
			d.Name, business, d.Due)
	}
	r := strings.NewReplacer("{name}", d.Name, "{due}", fmt.Sprintf("%.2f", d.Due))
	return r.Replace(tmpl)
}

// SendPaymentReminders texts every customer owing at least req.MinDue. A
// custom message may use {name} and {due}.
func (s *NotificationService) SendPaymentReminders(ctx context.Context, req *models.PaymentReminderRequest) (*models.ReminderResult, error) {
	if req.MinDue < 0 {
		return nil, invalid("min_due cannot be negative")
	}
	minDue := req.MinDue
	if minDue == 0 {
		minDue = defaultMinDue
	}

	dues, err := s.Bills.CustomersWithDues(ctx, minDue)
	if err != nil {
		return nil, err
	}

	log := logging.For("Notifications")
	result := &models.ReminderResult{Total: len(dues)}
	for _, d := range dues {
		if d.Phone == "" {
			result.Failed++
			continue
		}
		if err := s.SMS.SendSMS(ctx, d.Phone, dueMessage(s.Business, req.Message, d)); err != nil {
			log.WithError(err).Warnf("payment reminder to customer %d failed", d.CustomerID)
			result.Failed++
			continue
		}
		result.Sent++
	}
	log.Infof("payment reminders: %d sent, %d failed", result.Sent, result.Failed)
	return result, nil
}
