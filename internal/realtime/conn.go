package realtime

import (
	"errors"
	"sync"
	"time"

	"senda/relay/internal/notify"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = time.Second * 10
	maxMessageSize = 4096
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrSlowConsumer = errors.New("send buffer is full")
)

// conn is one realtime client. It implements notify.Subscriber.
// Only the writing goroutine writes to ws.
type conn struct {
	id     string
	ws     *websocket.Conn
	send   chan notify.Event
	done   chan struct{}
	logger *zap.SugaredLogger

	mu     *sync.Mutex
	leaves []func()
	once   *sync.Once
}

func newConn(id string, ws *websocket.Conn, logger *zap.SugaredLogger, sendBuffer int) *conn {
	return &conn{
		id:     id,
		ws:     ws,
		send:   make(chan notify.Event, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
		mu:     new(sync.Mutex),
		once:   new(sync.Once),
	}
}

func (c *conn) ID() string {
	return c.id
}

// Deliver never blocks. A full buffer fails the delivery
func (c *conn) Deliver(evt notify.Event) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- evt:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSlowConsumer
	}
}

// track remembers a hub registration to undo on close
func (c *conn) track(leave func()) {
	c.mu.Lock()
	c.leaves = append(c.leaves, leave)
	c.mu.Unlock()
}

func (c *conn) writing(pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case evt := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(evt); err != nil {
				c.logger.Debugf("write to %s failed: %s", c.id, err.Error())
				c.close()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// close leaves every joined session and releases the socket. Safe to call many times
func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)

		c.mu.Lock()
		leaves := c.leaves
		c.leaves = nil
		c.mu.Unlock()

		for _, leave := range leaves {
			leave()
		}
	})
}
