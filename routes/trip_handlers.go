// routes/trip_handlers.go
package routes

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/ranking"
)

const (
	// Потолок выдачи сырых фактов
	tripsFetchLimit = 5000

	// Размер окна ранжированной выдачи (top-N)
	rankedResultLimit = 100

	// Метрика ранжирования по умолчанию
	defaultSortKey = "fare_per_km"
)

// ErrorResponse структура ответа API при ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetTripsHandler обрабатывает запросы на получение сырых фактов поездок
// (не более tripsFetchLimit записей, без упорядочивания)
func GetTripsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := ranking.NewTripRepository(db)

		trips, err := repo.GetTrips(tripsFetchLimit)
		if err != nil {
			log.Printf("❌ Ошибка при запросе фактов поездок: %v", err)
			http.Error(w, "Ошибка при получении фактов поездок", http.StatusInternalServerError)
			return
		}

		writeJSON(w, trips)
		log.Printf("✅ Отправлено %d фактов поездок", len(trips))
	}
}

// GetRankedTripsHandler обрабатывает запросы на ранжированную выдачу поездок.
// Параметры: sort_by — метрика ранжирования (по умолчанию fare_per_km),
// order — asc или desc (по умолчанию desc); иные значения order — Bad Request.
func GetRankedTripsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		sortBy := query.Get("sort_by")
		if sortBy == "" {
			sortBy = defaultSortKey
		}

		order := query.Get("order")
		if order == "" {
			order = "desc"
		}

		// Валидация направления — забота фасада, не движка ранжирования
		if order != "asc" && order != "desc" {
			writeJSONError(w, "Invalid order parameter. Use 'asc' or 'desc'.", http.StatusBadRequest)
			return
		}

		// Неизвестная метрика отклоняется до обращения к хранилищу
		if !ranking.RankableMetric(sortBy) {
			writeJSONError(w, "Invalid sort_by parameter.", http.StatusBadRequest)
			return
		}

		descending := order == "desc"

		// Снимок фактов заранее отфильтрован от NULL и неположительных
		// значений метрики — контракт движка ранжирования
		repo := ranking.NewTripRepository(db)
		trips, err := repo.GetTripsForRanking(sortBy)
		if err != nil {
			log.Printf("❌ Ошибка при запросе снимка для ранжирования: %v", err)
			http.Error(w, "Ошибка при получении фактов поездок", http.StatusInternalServerError)
			return
		}

		ranked, err := ranking.Rank(trips, sortBy, descending)
		if err != nil {
			log.Printf("❌ Ошибка при ранжировании поездок: %v", err)
			http.Error(w, "Ошибка при ранжировании поездок", http.StatusInternalServerError)
			return
		}

		// Усечение до окна выдачи — забота фасада
		if len(ranked) > rankedResultLimit {
			ranked = ranked[:rankedResultLimit]
		}

		writeJSON(w, ranked)
		log.Printf("✅ Отправлено %d ранжированных поездок (метрика %s, порядок %s)", len(ranked), sortBy, order)
	}
}

// writeJSON кодирует и отправляет успешный JSON-ответ
func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")

	// Пустая выдача сериализуется как [], а не null
	if trips, ok := payload.([]models.TripFact); ok && trips == nil {
		payload = []models.TripFact{}
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Ошибка при кодировании JSON: %v", err)
		http.Error(w, "Ошибка при формировании ответа", http.StatusInternalServerError)
	}
}

// writeJSONError отправляет ошибку в формате JSON
func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		log.Printf("❌ Ошибка при кодировании JSON: %v", err)
	}
}
