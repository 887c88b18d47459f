package ws

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

// TourLookup finds a visible tour; the feed refuses unknown tours.
type TourLookup interface {
	Get(id uint) (*entity.Tour, error)
}

// TourFeed fans rating aggregates out to the browsers watching a tour.
type TourFeed struct {
	clients    map[uint]map[*websocket.Conn]bool // tourID -> set of clients
	broadcast  chan services.RatingUpdate
	register   chan Subscription
	unregister chan Subscription
	done       chan struct{}
	mu         sync.Mutex
	tours      TourLookup
}

// Subscription is one connection watching one tour.
type Subscription struct {
	Conn   *websocket.Conn
	TourID uint
}

func NewTourFeed(tours TourLookup) *TourFeed {
	return &TourFeed{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		broadcast:  make(chan services.RatingUpdate, 64),
		register:   make(chan Subscription),
		unregister: make(chan Subscription),
		done:       make(chan struct{}),
		tours:      tours,
	}
}

// Run serves register/unregister/broadcast until ctx is done.
func (h *TourFeed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, conns := range h.clients {
				for conn := range conns {
					conn.Close()
				}
			}
			h.clients = make(map[uint]map[*websocket.Conn]bool)
			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()
			if h.clients[sub.TourID] == nil {
				h.clients[sub.TourID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.TourID][sub.Conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[sub.TourID][sub.Conn]; ok {
				delete(h.clients[sub.TourID], sub.Conn)
				sub.Conn.Close()
			}
			if len(h.clients[sub.TourID]) == 0 {
				delete(h.clients, sub.TourID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients[msg.TourID] {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(h.clients[msg.TourID], conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishRating queues an update without blocking the caller; updates are
// dropped when the queue is full.
func (h *TourFeed) PublishRating(u services.RatingUpdate) {
	select {
	case h.broadcast <- u:
	default:
		log.Printf("⚠️ rating feed full, dropped update for tour %d", u.TourID)
	}
}

// Subscribers reports how many connections watch a tour.
func (h *TourFeed) Subscribers(tourID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[tourID])
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /ws/tours/:id
func (h *TourFeed) HandleWebSocket(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		resp.Fail(c, utils.ErrNotFound)
		return
	}
	tour, err := h.tours.Get(uint(id))
	if err != nil {
		resp.Fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	sub := Subscription{Conn: conn, TourID: tour.ID}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.listen(sub)
}

// listen only drains the connection; subscribers never send anything useful.
func (h *TourFeed) listen(sub Subscription) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
