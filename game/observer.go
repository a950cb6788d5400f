package game

// Observer receives the notifications a rendering layer needs to keep its
// visual representation in sync with the chain. Implementations must not
// call back into the controller.
type Observer interface {
	SegmentAdded(h NodeHandle, pos Point)
	SegmentRemoved(h NodeHandle)
	Advanced(r TickResult)
}

// NopObserver ignores every notification. Embed it to implement only the
// callbacks you care about.
type NopObserver struct{}

func (NopObserver) SegmentAdded(NodeHandle, Point) {}
func (NopObserver) SegmentRemoved(NodeHandle)      {}
func (NopObserver) Advanced(TickResult)            {}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (o Observers) SegmentAdded(h NodeHandle, pos Point) {
	for _, ob := range o {
		ob.SegmentAdded(h, pos)
	}
}

func (o Observers) SegmentRemoved(h NodeHandle) {
	for _, ob := range o {
		ob.SegmentRemoved(h)
	}
}

func (o Observers) Advanced(r TickResult) {
	for _, ob := range o {
		ob.Advanced(r)
	}
}
