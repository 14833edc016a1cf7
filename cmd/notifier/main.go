package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/config"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/queue"
)

var eventTemplates = map[string]struct {
	File    string
	Subject string
}{
	domain.EventPatrolStarted:  {"./templates/patrol_started_email.html", "Tanod Patrol - Patrol Started"},
	domain.EventPatrolEnded:    {"./templates/patrol_ended_email.html", "Tanod Patrol - Patrol Ended"},
	domain.EventPatrolOverdue:  {"./templates/patrol_overdue_email.html", "Tanod Patrol - Patrol Overdue"},
	domain.EventAccountCreated: {"./templates/tanod_account_email.html", "Tanod Patrol - Your Account"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("failed to connect to the mail server", slog.String("error", err.Error()))
		return
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open a rabbitmq channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	if err := queue.DeclareQueue(ch); err != nil {
		logger.Error("failed to declare the patrol events queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		queue.PatrolEventsQueue,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to consume messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("received event", slog.String("message", string(msg.Body)))

				event := domain.EventMessage{}
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					logger.Error("failed to decode event", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tpl, ok := eventTemplates[event.Type]
				if !ok {
					logger.Error("unsupported event type", slog.String("type", event.Type))
					_ = msg.Nack(false, false)
					continue
				}

				email := mail.NewMsg()
				if err := email.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("failed to set sender", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := email.To(event.To); err != nil {
					logger.Error("failed to set recipient", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, err := template.ParseFiles(tpl.File)
				if err != nil {
					logger.Error("failed to parse email template", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := email.SetBodyHTMLTemplate(tmpl, event.Data); err != nil {
					logger.Error("failed to render email body", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				email.Subject(tpl.Subject)

				if err := client.DialAndSend(email); err != nil {
					logger.Error("failed to send email", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue, the broker retries the send
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("waiting for events... (CTRL+C to exit)")
	<-sigChan

	slog.Info("shutting down notifier...")
	cancel()
	wg.Wait()
	slog.Info("notifier stopped")
}
