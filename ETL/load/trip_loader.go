package load

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
)

// TripLoader отвечает за дозапись фактов поездок в таблицу trips.
// Каждый батч загружается в собственной транзакции.
type TripLoader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewTripLoader создает новый экземпляр TripLoader
func NewTripLoader(db *sql.DB, logger *utils.ETLLogger) *TripLoader {
	return &TripLoader{
		db:     db,
		logger: logger,
	}
}

// Load дозаписывает факты одного батча.
// Идентификаторы, уже сохраненные предыдущими батчами, отбрасываются
// уникальным индексом хранилища (INSERT IGNORE) — это единственное место,
// где обнаруживаются дубликаты между батчами. Количество таких строк
// возвращается и попадает в сводку батча.
func (l *TripLoader) Load(facts []models.TripFact) (loaded, skipped int, err error) {
	if len(facts) == 0 {
		l.logger.Debug("Нет фактов поездок для загрузки")
		return 0, 0, nil
	}

	startTime := time.Now()

	tx, err := l.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	// Внешний ключ на vendors объявлен в схеме, но на записи не проверяется:
	// вендоры загружаются заранее, а при сбое их загрузки факты все равно
	// должны быть сохранены
	if _, err := tx.Exec("SET foreign_key_checks = 0"); err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("ошибка при отключении проверки внешних ключей: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT IGNORE INTO trips
		(id, vendor_id, pickup_datetime, dropoff_datetime, passenger_count,
		 trip_distance, trip_distance_km, pickup_longitude, pickup_latitude,
		 dropoff_longitude, dropoff_latitude, fare_amount, trip_duration,
		 trip_speed, fare_per_km, idle_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	errors := 0

	for _, fact := range facts {
		result, err := stmt.Exec(
			fact.ID,
			fact.VendorID,
			fact.PickupDatetime,
			fact.DropoffDatetime,
			fact.PassengerCount,
			fact.TripDistance,
			fact.TripDistanceKM,
			fact.PickupLongitude,
			fact.PickupLatitude,
			fact.DropoffLongitude,
			fact.DropoffLatitude,
			fact.FareAmount,
			fact.TripDuration,
			fact.TripSpeed,
			fact.FarePerKM,
			fact.IdleTime,
		)
		if err != nil {
			l.logger.Error("Ошибка при вставке факта поездки %s: %v", fact.ID, err)
			errors++
			continue
		}

		affected, err := result.RowsAffected()
		if err != nil {
			l.logger.Error("Ошибка при получении числа вставленных строк для поездки %s: %v", fact.ID, err)
			errors++
			continue
		}

		if affected > 0 {
			loaded++
		} else {
			// Хранилище отбросило строку: id уже сохранен предыдущим батчем
			skipped++
		}
	}

	if errors > 0 {
		tx.Rollback()
		return 0, 0, fmt.Errorf("произошло %d ошибок при загрузке фактов поездок", errors)
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	duration := time.Since(startTime)
	l.logger.Debug("Батч фактов загружен: %d вставлено, %d отброшено хранилищем. Длительность: %v",
		loaded, skipped, duration)

	return loaded, skipped, nil
}
