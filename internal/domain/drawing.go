package domain

// DrawingKind is the closed set of whiteboard operations the relay accepts.
type DrawingKind string

const (
	DrawStroke   DrawingKind = "stroke"
	DrawLine     DrawingKind = "line"
	DrawRect     DrawingKind = "rect"
	DrawCircle   DrawingKind = "circle"
	DrawTriangle DrawingKind = "triangle"
	DrawArrow    DrawingKind = "arrow"
	DrawText     DrawingKind = "text"
	DrawErase    DrawingKind = "erase"
)

var drawingKinds = map[DrawingKind]struct{}{
	DrawStroke:   {},
	DrawLine:     {},
	DrawRect:     {},
	DrawCircle:   {},
	DrawTriangle: {},
	DrawArrow:    {},
	DrawText:     {},
	DrawErase:    {},
}

func (k DrawingKind) Valid() bool {
	_, ok := drawingKinds[k]
	return ok
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawingOp is one atomic whiteboard mutation. ID is assigned server-side at
// ingestion and never trusted from the client; receivers use it to discard
// duplicate deliveries. Ops are append-only and never mutated once stored.
type DrawingOp struct {
	ID          string      `json:"id"`
	Kind        DrawingKind `json:"kind"`
	Points      []Point     `json:"points"`
	Color       string      `json:"color,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Filled      bool        `json:"filled,omitempty"`
	Text        string      `json:"text,omitempty"`
}
