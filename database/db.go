// database/db.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// DBInfo настройки подключения к базе данных
type DBInfo struct {
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// InitDB устанавливает соединение с базой данных хранилища поездок
// и гарантирует наличие необходимых таблиц
func InitDB() (*sql.DB, error) {
	// Настройки для подключения к базе данных
	dbInfo := &DBInfo{
		Username: "root",
		Password: "Vjnbkmlf40782",
		Host:     "localhost",
		Port:     "3306",
		Database: "taxi_trips",
	}

	// Формируем строку подключения
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbInfo.Username,
		dbInfo.Password,
		dbInfo.Host,
		dbInfo.Port,
		dbInfo.Database,
	)

	// Устанавливаем соединение с базой данных
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("❌ Ошибка подключения к БД: %v", err)
		return nil, err
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Printf("❌ Ошибка проверки соединения с БД: %v", err)
		return nil, err
	}

	// Устанавливаем параметры пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("✅ Успешное подключение к базе данных")

	// Проверяем существование необходимых таблиц
	if err := EnsureSchema(db); err != nil {
		log.Printf("❌ Ошибка создания таблиц: %v", err)
		return nil, err
	}

	return db, nil
}

// EnsureSchema создает таблицы vendors и trips, если они не существуют.
// Таблица измерения создается первой, так как факты ссылаются на нее.
func EnsureSchema(db *sql.DB) error {
	// SQL для создания таблицы измерения вендоров
	createVendorsTable := `
	CREATE TABLE IF NOT EXISTS vendors (
		id INT PRIMARY KEY,
		fullname VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	// SQL для создания таблицы фактов поездок.
	// Уникальный индекс по id отбрасывает дубликаты между батчами,
	// внешний ключ на vendors объявляет ссылочную зависимость.
	createTripsTable := `
	CREATE TABLE IF NOT EXISTS trips (
		id VARCHAR(64) NOT NULL,
		vendor_id INT NULL,
		pickup_datetime VARCHAR(32),
		dropoff_datetime VARCHAR(32),
		passenger_count INT NULL,
		trip_distance DOUBLE,
		trip_distance_km DOUBLE,
		pickup_longitude DOUBLE,
		pickup_latitude DOUBLE,
		dropoff_longitude DOUBLE,
		dropoff_latitude DOUBLE,
		fare_amount DOUBLE,
		tip_amount DOUBLE NULL,
		trip_duration DOUBLE,
		trip_speed DOUBLE,
		fare_per_km DOUBLE,
		idle_time DOUBLE,
		UNIQUE KEY idx_trips_id (id),
		CONSTRAINT fk_trips_vendor FOREIGN KEY (vendor_id) REFERENCES vendors (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	if _, err := db.Exec(createVendorsTable); err != nil {
		return fmt.Errorf("ошибка при создании таблицы vendors: %w", err)
	}

	if _, err := db.Exec(createTripsTable); err != nil {
		return fmt.Errorf("ошибка при создании таблицы trips: %w", err)
	}

	log.Println("✅ Таблицы trips и vendors со связью созданы или уже существуют")
	return nil
}
