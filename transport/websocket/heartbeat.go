package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const idlePingInterval = 30 * time.Second

// writeWithHeartbeat is the only writer of conn. It sends queued messages and
// a ping message whenever the connection has been quiet for a while.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastWrite := time.Now()
	ping := mustMarshal(Message{Action: actionPing})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}

			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
