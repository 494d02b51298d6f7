package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"nestbay-backend/internal/config"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(cfg config.SendGridConfig) EmailService {
	return &sendGridEmailService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (s *sendGridEmailService) send(ctx context.Context, to, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendGridEmailService) SendBookingPending(ctx context.Context, hostEmail, guestName, unitName string) error {
	subject := fmt.Sprintf("New Booking Request: %s", unitName)
	plainText := fmt.Sprintf("%s wants to book %s. Confirm or decline the request in your dashboard.", guestName, unitName)
	htmlContent := fmt.Sprintf("<p><strong>%s</strong> wants to book <strong>%s</strong>.</p><p>Confirm or decline the request in your dashboard.</p>", guestName, unitName)
	return s.send(ctx, hostEmail, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendBookingConfirmed(ctx context.Context, guestEmail, unitName, startDate, endDate string) error {
	subject := fmt.Sprintf("Booking Confirmed: %s", unitName)
	plainText := fmt.Sprintf("Your stay at %s from %s to %s is confirmed.", unitName, startDate, endDate)
	htmlContent := fmt.Sprintf("<p>Your stay at <strong>%s</strong> from %s to %s is confirmed.</p>", unitName, startDate, endDate)
	return s.send(ctx, guestEmail, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendBookingCancelled(ctx context.Context, email, unitName string, refundCents int64) error {
	subject := fmt.Sprintf("Booking Cancelled: %s", unitName)
	plainText := fmt.Sprintf("Your booking at %s was cancelled. Refund credited to your wallet: %s.", unitName, formatCents(refundCents))
	htmlContent := fmt.Sprintf("<p>Your booking at <strong>%s</strong> was cancelled.</p><p>Refund credited to your wallet: %s.</p>", unitName, formatCents(refundCents))
	return s.send(ctx, email, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendWithdrawalRequested(ctx context.Context, email string, amountCents int64) error {
	subject := "Withdrawal Requested"
	plainText := fmt.Sprintf("We received your withdrawal request for %s. The payout is on its way.", formatCents(amountCents))
	htmlContent := fmt.Sprintf("<p>We received your withdrawal request for <strong>%s</strong>.</p><p>The payout is on its way.</p>", formatCents(amountCents))
	return s.send(ctx, email, subject, plainText, htmlContent)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
