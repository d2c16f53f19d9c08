package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types yang di-fan-out ke client realtime (staff dashboard, KDS,
// dan device customer di meja).
const (
	EventSessionCreated     = "session.created"
	EventOrderSubmitted     = "order.submitted"
	EventOrderStatusChanged = "order.status_changed"
	EventBillRequested      = "bill.requested"
	EventBillClosed         = "bill.closed"
	EventTableCreate        = "table.created"
	EventTableUpdate        = "table.updated"
	EventStaffNotif         = "staff.notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client websocket (staff, chef, admin, customer)
// beserta role-nya untuk broadcast.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient menambahkan connection ke hub dengan role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient melepaskan connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastSessionCreated -> sesi baru berhasil claim meja.
func BroadcastSessionCreated(session interface{}) {
	broadcast(Message{Event: EventSessionCreated, Data: session})
}

// BroadcastOrderSubmitted -> order baru masuk ke dapur.
func BroadcastOrderSubmitted(order interface{}) {
	broadcast(Message{Event: EventOrderSubmitted, Data: order})
}

// BroadcastOrderStatusChanged -> transisi status order.
func BroadcastOrderStatusChanged(order interface{}) {
	broadcast(Message{Event: EventOrderStatusChanged, Data: order})
}

// BroadcastBillRequested -> customer/staff minta tutup bill.
func BroadcastBillRequested(session interface{}) {
	broadcast(Message{Event: EventBillRequested, Data: session})
}

// BroadcastBillClosed -> bill ditutup staff, meja bebas.
func BroadcastBillClosed(session interface{}) {
	broadcast(Message{Event: EventBillClosed, Data: session})
}

// BroadcastTableCreate -> meja baru dibuat.
func BroadcastTableCreate(table interface{}) {
	broadcast(Message{Event: EventTableCreate, Data: table})
}

// BroadcastTableUpdate -> perubahan data meja.
func BroadcastTableUpdate(table interface{}) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

// BroadcastStaffNotification -> notifikasi teks untuk staff.
func BroadcastStaffNotification(message string) {
	broadcast(Message{Event: EventStaffNotif, Data: message})
}

// BroadcastMessage -> broadcast pesan umum.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
