package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const bridgeChannel = "realtime:events"

type bridgeMessage struct {
	Topic string `json:"topic"`
	Event Event  `json:"event"`
}

// RedisBridge relays hub events through a redis pub/sub channel so that
// every process behind the same redis sees every event. Redis pub/sub is
// itself at-most-once, which matches the hub's delivery contract.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
}

// AttachRedisBridge wires the hub to redis and starts the receive loop.
// The loop ends when ctx is cancelled.
func AttachRedisBridge(ctx context.Context, hub *Hub, client *redis.Client) *RedisBridge {
	b := &RedisBridge{client: client, hub: hub}
	hub.SetBridge(b.publish)

	go b.receive(ctx)

	log.Println("Realtime bridge attached to redis")
	return b
}

func (b *RedisBridge) publish(topic string, event Event) {
	payload, err := json.Marshal(bridgeMessage{Topic: topic, Event: event})
	if err != nil {
		log.Printf("Bridge marshal error: %v", err)
		return
	}
	if err := b.client.Publish(context.Background(), bridgeChannel, payload).Err(); err != nil {
		log.Printf("Bridge publish error: %v", err)
	}
}

func (b *RedisBridge) receive(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var bm bridgeMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				log.Printf("Bridge decode error: %v", err)
				continue
			}
			b.hub.Deliver(bm.Topic, bm.Event)
		}
	}
}
