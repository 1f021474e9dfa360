// internal/workers/overfishing/build-overfishing-chart/service.go
package buildoverfishingchart

import (
	"fmt"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/telemetry"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

// Build lays out the stock, catch and threshold series for readings in order.
func Build(readings []models.TelemetryReading) (*Chart, error) {
	if len(readings) == 0 {
		return nil, errors.NewEmptyTelemetryError()
	}

	dates := make([]string, len(readings))
	stocks := make([]float64, len(readings))
	catches := make([]float64, len(readings))
	thresholds := make([]float64, len(readings))
	indices := []int{}
	shapes := []Shape{}

	for i, r := range readings {
		threshold := r.StockVolume * models.OverfishingThresholdRatio
		dates[i] = r.Date
		stocks[i] = r.StockVolume
		catches[i] = r.CatchVolume
		thresholds[i] = models.Round2(threshold)

		if r.CatchVolume > threshold {
			indices = append(indices, i)
			shapes = append(shapes, Shape{
				Type:      "rect",
				XRef:      "x",
				YRef:      "paper",
				X0:        r.Date,
				Y0:        0,
				X1:        r.Date,
				Y1:        1,
				FillColor: highlightFill,
				Opacity:   0.3,
				Line:      Line{Width: 0},
			})
		}
	}

	return &Chart{
		Data: []Trace{
			lineTrace(SeriesStock, dates, stocks, Line{Color: colorStock, Width: 3}),
			lineTrace(SeriesCatch, dates, catches, Line{Color: colorCatch, Width: 3}),
			lineTrace(SeriesThreshold, dates, thresholds, Line{Color: colorThreshold, Width: 2, Dash: "dash"}),
		},
		Layout: Layout{
			Title:  Title{Text: ChartTitle},
			XAxis:  Axis{Title: "Date"},
			YAxis:  Axis{Title: "Volume"},
			Shapes: shapes,
		},
		OverfishingIndices: indices,
	}, nil
}

// BuildFromCSV parses date, stock_volume and catch_volume columns and builds the chart.
func BuildFromCSV(text string) (*Chart, error) {
	readings, err := telemetry.ParseCSVString(text)
	if err != nil {
		return nil, err
	}
	return Build(readings)
}

func lineTrace(name string, x []string, y []float64, line Line) Trace {
	return Trace{X: x, Y: y, Type: "scatter", Mode: "lines", Name: name, Line: line}
}

var (
	sampleStocks = []float64{
		20946, 20972, 20974, 21032, 21313, 21177, 21295, 21184, 21187, 21346, 21402, 21344,
		21323, 21441, 21418, 21489, 21544, 21529, 21793, 21907, 21754, 21823, 21807, 21942,
	}
	sampleCatches = []float64{
		3832, 3244, 2333, 5740, 5596, 6351, 6374, 4471, 5377, 6168, 5777, 3190,
		4053, 2698, 6228, 4754, 3139, 5045, 4873, 3759, 2669, 5113, 4449, 5583,
	}
)

// SampleReadings returns the monthly demonstration series for 2023-01 to 2024-12.
func SampleReadings() []models.TelemetryReading {
	out := make([]models.TelemetryReading, len(sampleStocks))
	for i := range sampleStocks {
		out[i] = models.TelemetryReading{
			Date:        sampleDate(i),
			StockVolume: sampleStocks[i],
			CatchVolume: sampleCatches[i],
		}
	}
	return out
}

func sampleDate(i int) string {
	return fmt.Sprintf("%d-%02d", 2023+i/12, i%12+1)
}
