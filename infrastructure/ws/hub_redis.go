package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const notifyChannelPrefix = "notifications:"

// RedisHub fans notifications out across servers. Each server holds its own
// local connections; a notification for a parent connected elsewhere is
// published to Redis and delivered by whichever server holds the socket.
type RedisHub struct {
	clients map[string]*Client
	mu      sync.RWMutex

	redisClient *redis.Client
	pubsub      *redis.PubSub
	serverID    string

	register   chan *Client
	unregister chan *Client
}

type fanoutMessage struct {
	FromServerID string `json:"fromServerId"`
	ToUserID     string `json:"toUserId"`
	Payload      []byte `json:"payload"`
}

func NewRedisHub(redisClient *redis.Client, serverID string) *RedisHub {
	hub := &RedisHub{
		clients:     make(map[string]*Client),
		redisClient: redisClient,
		serverID:    serverID,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}

	hub.pubsub = redisClient.PSubscribe(context.Background(), notifyChannelPrefix+"*")

	return hub
}

func (h *RedisHub) Run() {
	go h.subscribeRedis()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = client
			h.mu.Unlock()
			log.Printf("[%s] %s connected", h.serverID, client.UserId)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.UserId]; ok {
				delete(h.clients, client.UserId)
				close(client.send)
				log.Printf("[%s] %s disconnected", h.serverID, client.UserId)
			}
			h.mu.Unlock()
		}
	}
}

func (h *RedisHub) subscribeRedis() {
	ch := h.pubsub.Channel()

	log.Printf("[%s] Redis notification subscriber started", h.serverID)

	for msg := range ch {
		var fanout fanoutMessage
		if err := json.Unmarshal([]byte(msg.Payload), &fanout); err != nil {
			log.Printf("Error unmarshaling fanout message: %v", err)
			continue
		}

		// Skip our own publishes.
		if fanout.FromServerID == h.serverID {
			continue
		}

		h.mu.RLock()
		client, existsLocally := h.clients[fanout.ToUserID]
		h.mu.RUnlock()
		if !existsLocally {
			continue
		}

		select {
		case client.send <- fanout.Payload:
		default:
			log.Printf("[%s] Failed to send to local client %s", h.serverID, fanout.ToUserID)
		}
	}
}

// SendToUser delivers locally when the socket is here, otherwise publishes to
// Redis for whichever server holds it.
func (h *RedisHub) SendToUser(userId string, message []byte) {
	h.mu.RLock()
	client, existsLocally := h.clients[userId]
	h.mu.RUnlock()

	if existsLocally {
		select {
		case client.send <- message:
		default:
			log.Printf("[%s] Failed to send to local client %s", h.serverID, userId)
		}
		return
	}

	h.publishToRedis(userId, message)
}

func (h *RedisHub) publishToRedis(userId string, message []byte) {
	fanout := fanoutMessage{
		FromServerID: h.serverID,
		ToUserID:     userId,
		Payload:      message,
	}

	data, err := json.Marshal(fanout)
	if err != nil {
		log.Printf("Error marshaling fanout message: %v", err)
		return
	}

	if err := h.redisClient.Publish(context.Background(), notifyChannelPrefix+userId, data).Err(); err != nil {
		log.Printf("[%s] Redis publish error: %v", h.serverID, err)
	}
}

func (h *RedisHub) RegisterClient(client *Client) {
	h.register <- client
}

func (h *RedisHub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (h *RedisHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
