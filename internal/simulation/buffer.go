package simulation

import "ems-mock/internal/model"

// DefaultChartCapacity is how many samples each chart series keeps.
const DefaultChartCapacity = 100

// ChartBuffer is a bounded FIFO of chart samples. Appending past capacity
// evicts the oldest sample.
type ChartBuffer struct {
	capacity int
	points   []model.ChartPoint
}

func NewChartBuffer(capacity int) *ChartBuffer {
	if capacity <= 0 {
		capacity = DefaultChartCapacity
	}
	return &ChartBuffer{
		capacity: capacity,
		points:   make([]model.ChartPoint, 0, capacity+1),
	}
}

// Append adds p and trims the buffer back to capacity.
func (b *ChartBuffer) Append(p model.ChartPoint) {
	b.points = append(b.points, p)
	if len(b.points) > b.capacity {
		n := copy(b.points, b.points[len(b.points)-b.capacity:])
		b.points = b.points[:n]
	}
}

func (b *ChartBuffer) Len() int { return len(b.points) }

func (b *ChartBuffer) Cap() int { return b.capacity }

// Points returns a copy of the samples, oldest first. Never nil.
func (b *ChartBuffer) Points() []model.ChartPoint {
	out := make([]model.ChartPoint, len(b.points))
	copy(out, b.points)
	return out
}
