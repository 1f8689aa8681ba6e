package extractors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LilVoxy/taxi_analytics/ETL/models"
	"github.com/LilVoxy/taxi_analytics/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,vendor_id,pickup_datetime,dropoff_datetime,passenger_count,pickup_longitude,pickup_latitude,dropoff_longitude,dropoff_latitude,trip_duration
id1,2,2016-03-14 17:24:55,2016-03-14 17:34:55,1,-73.98,40.76,-73.96,40.77,600
id2,1,2016-06-12 00:43:35,2016-06-12 00:54:38,1,-73.98,40.73,-73.99,40.71,663
id3,,2016-01-19 11:35:24,2016-01-19 12:10:48,5,-73.97,40.76,-74.00,40.70,2124
id4,2.0,2016-04-06 19:32:31,2016-04-06 19:39:40,1,-74.01,40.71,-74.01,40.70,429
id5,7,2016-03-26 13:30:55,2016-03-26 13:38:10,1,,40.76,-73.98,40.76,435
`

// chdirTemp повторяет t.Chdir (Go 1.24) на старом тулчейне
func chdirTemp(t *testing.T) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeSampleCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0666))
	return path
}

func newExtractor(t *testing.T, path string, batchSize int) *CSVExtractor {
	t.Helper()
	chdirTemp(t) // логгер пишет файл в рабочий каталог
	return NewCSVExtractor(path, batchSize, utils.NewETLLogger(false))
}

func TestStreamBatchesSplitsByBatchSize(t *testing.T) {
	e := newExtractor(t, writeSampleCSV(t), 2)

	var batchSizes []int
	var batchNumbers []int

	total, err := e.StreamBatches(func(batchNumber int, rows []models.TripRow) error {
		batchNumbers = append(batchNumbers, batchNumber)
		batchSizes = append(batchSizes, len(rows))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []int{1, 2, 3}, batchNumbers)
	assert.Equal(t, []int{2, 2, 1}, batchSizes)
}

func TestStreamBatchesParsesRows(t *testing.T) {
	e := newExtractor(t, writeSampleCSV(t), 100)

	var rows []models.TripRow
	_, err := e.StreamBatches(func(_ int, batch []models.TripRow) error {
		rows = append(rows, batch...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	first := rows[0]
	assert.Equal(t, "id1", first.ID)
	require.NotNil(t, first.VendorID)
	assert.Equal(t, 2, *first.VendorID)
	require.NotNil(t, first.TripDuration)
	assert.Equal(t, 600.0, *first.TripDuration)
	require.NotNil(t, first.PickupLongitude)
	assert.Equal(t, -73.98, *first.PickupLongitude)
	assert.Equal(t, 2, first.Line) // строка 1 занята заголовком

	// Пустой vendor_id остается NULL
	assert.Nil(t, rows[2].VendorID)

	// Дробная запись "2.0" приводится к целому
	require.NotNil(t, rows[3].VendorID)
	assert.Equal(t, 2, *rows[3].VendorID)

	// Пропущенная координата остается NULL
	assert.Nil(t, rows[4].PickupLongitude)

	// Исходные значения сохраняются для журнала исключений
	assert.Equal(t, "id5", rows[4].Raw[0])
	assert.Equal(t, "", rows[4].Raw[5])
}

func TestExtractVendorIDs(t *testing.T) {
	e := newExtractor(t, writeSampleCSV(t), 100)

	ids, err := e.ExtractVendorIDs()

	require.NoError(t, err)
	// Уникальные непустые идентификаторы в порядке первого появления;
	// "2.0" схлопывается в уже встреченный 2
	assert.Equal(t, []int{2, 1, 7}, ids)
}

func TestExtractorMissingFile(t *testing.T) {
	e := newExtractor(t, filepath.Join(t.TempDir(), "no_such.csv"), 100)

	_, err := e.StreamBatches(func(int, []models.TripRow) error { return nil })
	assert.Error(t, err)

	_, err = e.ExtractVendorIDs()
	assert.Error(t, err)
}

func TestColumns(t *testing.T) {
	e := newExtractor(t, writeSampleCSV(t), 100)

	columns, err := e.Columns()

	require.NoError(t, err)
	assert.Equal(t, "id", columns[0])
	assert.Equal(t, "trip_duration", columns[len(columns)-1])
	assert.Len(t, columns, 10)
}
