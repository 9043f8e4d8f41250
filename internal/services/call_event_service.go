package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// CallEventService publishes call-lifecycle records to Kafka for the
// external history consumer. It implements matching.EventRecorder.
// Publishing is best effort: a broker hiccup must never disturb a live
// matchmaking flow, so failures are logged and dropped.
type CallEventService struct {
	producer sarama.SyncProducer
	topic    string
}

type callEvent struct {
	Event     string `json:"event"`
	UserID    string `json:"user_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Score     int    `json:"score,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewCallEventProducer builds the underlying Kafka producer.
func NewCallEventProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "dating-service"

	return sarama.NewSyncProducer(brokers, config)
}

func NewCallEventService(producer sarama.SyncProducer, topic string) *CallEventService {
	return &CallEventService{producer: producer, topic: topic}
}

func (s *CallEventService) RecordMatch(userID, partnerID string, score int) {
	s.publish(callEvent{Event: "match.made", UserID: userID, PartnerID: partnerID, Score: score})
}

func (s *CallEventService) RecordTimeout(userID string) {
	s.publish(callEvent{Event: "match.timeout", UserID: userID})
}

func (s *CallEventService) RecordCallEnd(userID, partnerID, reason string) {
	s.publish(callEvent{Event: "call.ended", UserID: userID, PartnerID: partnerID, Reason: reason})
}

func (s *CallEventService) publish(ev callEvent) {
	ev.Timestamp = time.Now().Unix()
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal call event", "event", ev.Event, "error", err)
		return
	}
	// Key by user so one user's history lands on one partition.
	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(ev.UserID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		slog.Error("Failed to publish call event", "event", ev.Event, "userID", ev.UserID, "error", err)
	}
}
