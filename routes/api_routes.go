// routes/api_routes.go
package routes

import (
	"database/sql"

	"github.com/LilVoxy/taxi_analytics/middleware"
	"github.com/LilVoxy/taxi_analytics/websocket"
	"github.com/gorilla/mux"
)

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(router *mux.Router, db *sql.DB, wsManager *websocket.Manager) {
	// Применяем CORS middleware
	router.Use(middleware.CORSMiddleware)

	// Подписка на прогресс конвейера
	router.HandleFunc("/ws/progress", wsManager.HandleConnections)

	// API фактов поездок
	router.HandleFunc("/api/trips", GetTripsHandler(db)).Methods("GET", "OPTIONS")

	// API ранжированных выдач
	router.HandleFunc("/api/trips/ranked", GetRankedTripsHandler(db)).Methods("GET", "OPTIONS")
}
