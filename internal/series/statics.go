package series

// Static is a fixed annotation drawn once into a plot's background. The
// concrete variants form a closed set; each carries exactly the fields its
// shape requires plus an optional renderer style hint.
type Static interface {
	staticKind() string
}

// Point marks a single position.
type Point struct {
	X, Y  float64
	Style string
}

// Circle is an outline circle around a center.
type Circle struct {
	X, Y   float64
	Radius float64
	Style  string
}

// Rectangle is an axis-aligned rectangle anchored at its lower-left corner.
type Rectangle struct {
	X, Y          float64
	Width, Height float64
	Style         string
}

// VLine is a full-height vertical line at X.
type VLine struct {
	X     float64
	Style string
}

// HLine is a full-width horizontal line at Y.
type HLine struct {
	Y     float64
	Style string
}

func (Point) staticKind() string     { return "point" }
func (Circle) staticKind() string    { return "circle" }
func (Rectangle) staticKind() string { return "rectangle" }
func (VLine) staticKind() string     { return "vline" }
func (HLine) staticKind() string     { return "hline" }
