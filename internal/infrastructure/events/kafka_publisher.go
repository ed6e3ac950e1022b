// Package events publica los cambios de stock confirmados hacia Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/pkg/config"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

// EventTypeStockChanged valor del header event-type.
const EventTypeStockChanged = "StockChanged"

// StockChangedEvent cuerpo JSON de cada mensaje.
type StockChangedEvent struct {
	EntryID    string    `json:"entry_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	HubID      string    `json:"hub_id"`
	SKUID      string    `json:"sku_id"`
	Delta      int64     `json:"delta"`
	Quantity   int64     `json:"quantity"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaPublisher implementa inventory.StockObserver publicando un mensaje por cambio.
// La clave es hubID:skuID para que los cambios de un par conserven el orden en su partición.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// Publisher observer de stock con un productor que cerrar al apagar.
type Publisher interface {
	inventory.StockObserver
	Close() error
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
)

// NewKafkaPublisher crea el productor síncrono con acks de todas las réplicas.
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka: crear productor: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.StockTopic, log), nil
}

// NewKafkaPublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{producer: producer, topic: topic, log: log.Named("kafka")}
}

// StockChanged publica los cambios en un solo lote.
func (p *KafkaPublisher) StockChanged(ctx context.Context, changes []inventory.StockChange) error {
	if len(changes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(changes))
	for _, c := range changes {
		msg, err := p.message(c)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("kafka: publicar %d cambios: %w", len(msgs), err)
	}
	p.log.Debug().Str("topic", p.topic).Int("messages", len(msgs)).Msg("cambios de stock publicados")
	return nil
}

func (p *KafkaPublisher) message(c inventory.StockChange) (*sarama.ProducerMessage, error) {
	body, err := json.Marshal(StockChangedEvent{
		EntryID:    c.EntryID,
		ActorID:    c.ActorID,
		HubID:      c.HubID,
		SKUID:      c.SKUID,
		Delta:      c.Delta,
		Quantity:   c.Quantity,
		Note:       c.Note,
		OccurredAt: c.At.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("kafka: serializar evento: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(PartitionKey(c.HubID, c.SKUID)),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(EventTypeStockChanged)},
			{Key: []byte("event-id"), Value: []byte(c.EntryID)},
			{Key: []byte("timestamp"), Value: []byte(c.At.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// PartitionKey clave de partición de un par (hub, sku).
func PartitionKey(hubID, skuID string) string {
	return hubID + ":" + skuID
}

// Close cierra el productor.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher se usa cuando no hay brokers configurados o el productor no pudo arrancar.
type NopPublisher struct{}

// StockChanged no hace nada.
func (NopPublisher) StockChanged(context.Context, []inventory.StockChange) error { return nil }

// Close no hace nada.
func (NopPublisher) Close() error { return nil }
