// internal/workers/overfishing/build-overfishing-chart/models.go
package buildoverfishingchart

type Input struct {
	CSV string
}

type Output struct {
	Chart *Chart `json:"chart"`
}

// Chart is a Plotly figure: three line traces and one highlight rectangle per
// overfishing period.
type Chart struct {
	Data               []Trace `json:"data"`
	Layout             Layout  `json:"layout"`
	OverfishingIndices []int   `json:"overfishing_indices"`
}

type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width"`
	Dash  string `json:"dash,omitempty"`
}

type Trace struct {
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
	Type string    `json:"type"`
	Mode string    `json:"mode"`
	Name string    `json:"name"`
	Line Line      `json:"line"`
}

type Shape struct {
	Type      string  `json:"type"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X0        string  `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        string  `json:"x1"`
	Y1        float64 `json:"y1"`
	FillColor string  `json:"fillcolor"`
	Opacity   float64 `json:"opacity"`
	Line      Line    `json:"line"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title string `json:"title"`
}

type Layout struct {
	Title  Title   `json:"title"`
	XAxis  Axis    `json:"xaxis"`
	YAxis  Axis    `json:"yaxis"`
	Shapes []Shape `json:"shapes"`
}

const (
	ChartTitle = "Overfishing Monitoring - Stock vs Catch Analysis"

	SeriesStock     = "Stock Volume"
	SeriesCatch     = "Catch Volume"
	SeriesThreshold = "Overfishing Threshold (20%)"

	colorStock     = "#2ECC71"
	colorCatch     = "#FF6B6B"
	colorThreshold = "#F1C40F"
	highlightFill  = "rgba(255, 107, 107, 0.2)"
)
