package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CodeMailer delivers a send-code job. The production implementation is
// the SMTP sender in internal/email.
type CodeMailer interface {
	SendCode(ev SendCodeEvent) error
}

// StartConsumer connects to RabbitMQ, declares both auth queues (durable)
// and starts consuming. It runs a reconnect loop with exponential backoff
// and keeps running indefinitely; processing errors are logged and the
// offending message rejected so the worker keeps operating.
func StartConsumer(url string, mailer CodeMailer) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("auth-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, mailer); err != nil {
			log.Printf("auth-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, mailer CodeMailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("auth-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{SendCodeQueue, SendSMSQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	codes, err := ch.Consume(SendCodeQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", SendCodeQueue, err)
	}
	sms, err := ch.Consume(SendSMSQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", SendSMSQueue, err)
	}

	for {
		select {
		case d, open := <-codes:
			if !open {
				return errors.New("deliveries channel closed")
			}
			if err := handleSendCode(d.Body, mailer); err != nil {
				log.Printf("auth-consumer: send code failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		case d, open := <-sms:
			if !open {
				return errors.New("deliveries channel closed")
			}
			if err := handleSendSMS(d.Body); err != nil {
				log.Printf("auth-consumer: send sms failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleSendCode(body []byte, mailer CodeMailer) error {
	var ev SendCodeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := mailer.SendCode(ev); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// handleSendSMS logs the dispatch; the SMS gateway is an external system
// fed from these logs in non-production environments.
func handleSendSMS(body []byte) error {
	var ev SendSMSEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	log.Printf("auth-consumer: sms code dispatch | phone=%s | code=%s", ev.Phone, ev.Code)
	return nil
}
