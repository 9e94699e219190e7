package scene

// Camera is the viewport's top-left corner in level space.
type Camera struct {
	pos Vec2
}

func (c *Camera) Position() Vec2     { return c.pos }
func (c *Camera) SetPosition(p Vec2) { c.pos = p }

// Follow centers the viewport horizontally on target, clamped so the view
// never leaves [bounds.X, bounds.X+bounds.W].
func (c *Camera) Follow(target Vec2, viewWidth float64, bounds Rect2) {
	x := target.X - viewWidth/2
	if right := bounds.X + bounds.W - viewWidth; x > right {
		x = right
	}
	if x < bounds.X {
		x = bounds.X
	}
	c.pos.X = x
}
