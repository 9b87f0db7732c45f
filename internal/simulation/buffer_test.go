package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ems-mock/internal/model"
)

func TestChartBuffer_EvictsOldestFirst(t *testing.T) {
	b := NewChartBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(model.ChartPoint{Timestamp: noon.Add(time.Duration(i) * time.Second), Value: float64(i)})
	}

	points := b.Points()
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []float64{2, 3, 4}, []float64{points[0].Value, points[1].Value, points[2].Value})
}

func TestChartBuffer_DefaultsCapacity(t *testing.T) {
	b := NewChartBuffer(0)
	assert.Equal(t, DefaultChartCapacity, b.Cap())
	assert.NotNil(t, b.Points())
	assert.Empty(t, b.Points())
}
