// Package ws delivers rendered notifications to connected parents over
// websockets. The hub is push-only: the server never acts on inbound frames.
package ws

type IHub interface {
	Run()
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
	SendToUser(userId string, message []byte)
	GetClientCount() int
}
