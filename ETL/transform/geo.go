package transform

import (
	"math"
)

// earthRadiusMiles — радиус Земли в милях
const earthRadiusMiles = 3956.0

// HaversineDistance вычисляет расстояние большого круга между двумя точками
// на поверхности Земли (координаты в десятичных градусах), в милях.
// Диапазон координат не проверяется: выход за пределы дает большое,
// но конечное расстояние, а не ошибку.
func HaversineDistance(lon1, lat1, lon2, lat2 float64) float64 {
	// Переводим градусы в радианы
	lon1 = lon1 * math.Pi / 180
	lat1 = lat1 * math.Pi / 180
	lon2 = lon2 * math.Pi / 180
	lat2 = lat2 * math.Pi / 180

	// Формула гаверсинуса
	dlon := lon2 - lon1
	dlat := lat2 - lat1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * earthRadiusMiles
}
