package scene

// Vec2 is a 2D position or offset in pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Mul(o Vec2) Vec2      { return Vec2{v.X * o.X, v.Y * o.Y} }

// DistanceXTo is the horizontal distance between v and o.
func (v Vec2) DistanceXTo(o Vec2) float64 {
	if d := v.X - o.X; d > 0 {
		return d
	}
	return o.X - v.X
}

var (
	Left  = Vec2{-1, 0}
	Right = Vec2{1, 0}
)

// Rect2 is an axis-aligned rectangle: origin plus size.
type Rect2 struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
	W float64 `json:"w" yaml:"w" toml:"w"`
	H float64 `json:"h" yaml:"h" toml:"h"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect2) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}
