package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartSignupConsumer connects to RabbitMQ, declares the user.registered
// queue (durable), and starts consuming messages. Each event is appended to
// logs/signup.log in a single-line format. The function runs a reconnect
// loop with exponential backoff: it keeps running and logs processing
// errors, rejecting malformed messages, so the server continues operating.
// An empty URL disables the consumer.
func StartSignupConsumer(url string) {
	if url == "" {
		return
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("signup-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("signup-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(UserRegisteredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		var ev UserRegisteredEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("signup-consumer: malformed message rejected: %v", err)
			_ = d.Reject(false)
			continue
		}
		if err := appendSignupLog(ev); err != nil {
			log.Printf("signup-consumer: write log failed: %v", err)
			_ = d.Reject(true) // requeue, the log file may become writable again
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

// appendSignupLog appends one line per registration to logs/signup.log,
// creating the directory on first use.
func appendSignupLog(ev UserRegisteredEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "signup.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("%s user=%s username=%q email=%q\n",
		ev.RegisteredAt, ev.UserID, ev.Username, ev.Email)
	_, err = f.WriteString(line)
	return err
}
