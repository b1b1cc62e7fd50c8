package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitWorkers(t *testing.T) {
	tests := []struct {
		name    string
		maxOpen int
		workers int
		want    int
	}{
		{"unlimited pool", 0, 8, 8},
		{"enough connections", 25, 4, 4},
		{"exactly two per worker", 8, 4, 4},
		{"reduced to fit", 5, 4, 2},
		{"single worker on minimal pool", 2, 1, 1},
		{"zero workers defaults to one", 10, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FitWorkers(tt.maxOpen, tt.workers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFitWorkersRejectsSingleConnectionPool(t *testing.T) {
	_, err := FitWorkers(1, 1)
	assert.Error(t, err)
}
