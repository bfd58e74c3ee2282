package notify

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Bell owns the dropdown's visibility. Opening subscribes to outside
// presses and closing unsubscribes; every change asks for a refresh.
type Bell struct {
	open       bool
	subscribed bool
	bounds     Rect
	refresh    func()
}

// NewBell creates a closed Bell. refresh may be nil.
func NewBell(refresh func()) *Bell {
	return &Bell{refresh: refresh}
}

// IsOpen reports whether the dropdown is visible.
func (b *Bell) IsOpen() bool {
	return b.open
}

// Subscribed reports whether outside presses are being watched.
func (b *Bell) Subscribed() bool {
	return b.subscribed
}

// Toggle flips visibility and returns the new state.
func (b *Bell) Toggle() bool {
	if b.open {
		b.Close()
	} else {
		b.Open()
	}
	return b.open
}

// Open shows the dropdown.
func (b *Bell) Open() {
	if b.open {
		return
	}
	b.open = true
	b.subscribed = true
	b.notify()
}

// Close hides the dropdown.
func (b *Bell) Close() {
	if !b.open {
		return
	}
	b.open = false
	b.subscribed = false
	b.notify()
}

// SetBounds records where the dropdown is drawn.
func (b *Bell) SetBounds(r Rect) {
	b.bounds = r
}

// HandlePress closes the dropdown when (x, y) falls outside its bounds.
// It returns true if the press closed it.
func (b *Bell) HandlePress(x, y int) bool {
	if !b.subscribed || b.bounds.Contains(x, y) {
		return false
	}
	b.Close()
	return true
}

func (b *Bell) notify() {
	if b.refresh != nil {
		b.refresh()
	}
}
