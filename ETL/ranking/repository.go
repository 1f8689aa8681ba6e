package ranking

import (
	"database/sql"
	"fmt"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
)

// TripRepository читает снимки фактов поездок из хранилища для ранжирования
// и выдачи через API
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository создает новый экземпляр TripRepository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{
		db: db,
	}
}

const tripColumns = `
	id, vendor_id, pickup_datetime, dropoff_datetime, passenger_count,
	trip_distance, trip_distance_km, pickup_longitude, pickup_latitude,
	dropoff_longitude, dropoff_latitude, fare_amount, tip_amount,
	trip_duration, trip_speed, fare_per_km, idle_time
`

// GetTrips возвращает до limit сырых фактов поездок без упорядочивания
func (r *TripRepository) GetTrips(limit int) ([]models.TripFact, error) {
	query := fmt.Sprintf("SELECT %s FROM trips LIMIT ?", tripColumns)

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе фактов поездок: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

// GetTripsForRanking возвращает снимок фактов для ранжирования по метрике key,
// заранее отфильтрованный от строк с NULL или неположительным значением метрики
// (предварительная фильтрация — обязанность фасада по контракту движка).
// Ключ проверяется по реестру метрик до подстановки в запрос.
func (r *TripRepository) GetTripsForRanking(key string) ([]models.TripFact, error) {
	if !RankableMetric(key) {
		return nil, fmt.Errorf("неизвестный ключ ранжирования: %q", key)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM trips WHERE %s IS NOT NULL AND %s > 0",
		tripColumns, key, key,
	)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе фактов поездок для ранжирования: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

// scanTrips сканирует строки результата в факты поездок
func scanTrips(rows *sql.Rows) ([]models.TripFact, error) {
	var trips []models.TripFact

	for rows.Next() {
		var trip models.TripFact
		var vendorID sql.NullInt64
		var passengerCount sql.NullInt64
		var tipAmount sql.NullFloat64

		err := rows.Scan(
			&trip.ID,
			&vendorID,
			&trip.PickupDatetime,
			&trip.DropoffDatetime,
			&passengerCount,
			&trip.TripDistance,
			&trip.TripDistanceKM,
			&trip.PickupLongitude,
			&trip.PickupLatitude,
			&trip.DropoffLongitude,
			&trip.DropoffLatitude,
			&trip.FareAmount,
			&tipAmount,
			&trip.TripDuration,
			&trip.TripSpeed,
			&trip.FarePerKM,
			&trip.IdleTime,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании факта поездки: %w", err)
		}

		if vendorID.Valid {
			id := int(vendorID.Int64)
			trip.VendorID = &id
		}
		if passengerCount.Valid {
			count := int(passengerCount.Int64)
			trip.PassengerCount = &count
		}
		if tipAmount.Valid {
			tip := tipAmount.Float64
			trip.TipAmount = &tip
		}

		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по фактам поездок: %w", err)
	}

	return trips, nil
}
