// websocket/progress.go
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/gorilla/websocket"
)

const (
	// Время на запись одного сообщения клиенту
	writeWait = 10 * time.Second

	// Размер буфера исходящих сообщений клиента
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Фронтенд обслуживается с другого порта
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client представляет одного подписчика прогресса
type Client struct {
	conn *websocket.Conn
	Send chan []byte
}

// Manager управляет подписчиками прогресса конвейера и рассылает им
// снимки счетчиков после каждого батча
type Manager struct {
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	Clients    map[*Client]bool
}

// NewManager создает новый менеджер подписчиков прогресса
func NewManager() *Manager {
	return &Manager{
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[*Client]bool),
	}
}

// Run запускает работу менеджера
func (manager *Manager) Run() {
	for {
		select {
		case client := <-manager.Register:
			manager.Clients[client] = true
			log.Printf("👤 Подписчик прогресса подключился (всего: %d)", len(manager.Clients))

		case client := <-manager.Unregister:
			if _, ok := manager.Clients[client]; ok {
				delete(manager.Clients, client)
				close(client.Send)
				log.Printf("👤 Подписчик прогресса отключился (всего: %d)", len(manager.Clients))
			}

		case message := <-manager.Broadcast:
			manager.broadcast(message)
		}
	}
}

// broadcast отправляет сообщение всем подключенным подписчикам
func (manager *Manager) broadcast(message []byte) {
	for client := range manager.Clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(manager.Clients, client)
		}
	}
}

// PublishProgress рассылает снимок прогресса конвейера всем подписчикам.
// Вызов не блокирует конвейер: если менеджер занят, снимок отбрасывается —
// следующий батч все равно принесет более свежие счетчики.
func (manager *Manager) PublishProgress(update models.ProgressUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		log.Printf("❌ Ошибка при кодировании снимка прогресса: %v", err)
		return
	}

	select {
	case manager.Broadcast <- message:
	default:
	}
}

// HandleConnections обрабатывает входящие websocket-подключения подписчиков
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Ошибка при установке websocket-соединения: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}

	manager.Register <- client

	go client.writePump(manager)
}

// writePump отправляет сообщения из канала Send в websocket-соединение.
// Подписчики прогресса ничего не присылают, поэтому читающего насоса нет.
func (c *Client) writePump(manager *Manager) {
	defer func() {
		manager.Unregister <- c
		c.conn.Close()
	}()

	for message := range c.Send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	// Канал закрыт менеджером
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
