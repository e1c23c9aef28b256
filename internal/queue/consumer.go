package queue

// consumer.go contains the background consumer that listens to the
// parking.booked and parking.released queues and appends structured
// lines to logs/parking.log.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartParkingConsumer connects to RabbitMQ, declares both parking
// queues (durable), and starts consuming messages. Each message is
// appended to logs/parking.log in a single-line, human-friendly
// format. The function runs a reconnect loop; it keeps running and
// logs any processing errors while rejecting the offending message so
// the server continues operating.
func StartParkingConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("parking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("parking-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("parking-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{BookedQueueName, ReleasedQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	booked, err := ch.Consume(BookedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", BookedQueueName, err)
	}
	released, err := ch.Consume(ReleasedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", ReleasedQueueName, err)
	}

	for {
		select {
		case d, ok := <-booked:
			if !ok {
				return errors.New("booked deliveries channel closed")
			}
			ackOrNack(d, handleBooked(d.Body))
		case d, ok := <-released:
			if !ok {
				return errors.New("released deliveries channel closed")
			}
			ackOrNack(d, handleReleased(d.Body))
		}
	}
}

func ackOrNack(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("parking-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleBooked(body []byte) error {
	var ev SpotBookedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Spot booked | reservation_id=%d | user_id=%d | lot_id=%d | lot=\"%s\" | spot=%d\n",
		ev.EntryTime, ev.ReservationID, ev.UserID, ev.LotID, ev.LotName, ev.SpotNumber)
	return appendLog(line)
}

func handleReleased(body []byte) error {
	var ev SpotReleasedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Spot released | reservation_id=%d | user_id=%d | spot_id=%d | entry=%s | cost=%.2f\n",
		ev.ExitTime, ev.ReservationID, ev.UserID, ev.SpotID, ev.EntryTime, ev.TotalCost)
	return appendLog(line)
}

func appendLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "parking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
