package sunpos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAt_NoonNearEquator(t *testing.T) {
	// Local solar noon in Singapore, roughly 13:00 SGT.
	noon := time.Date(2024, time.March, 21, 5, 0, 0, 0, time.UTC)
	sun := At(noon, 1.3521, 103.8198)

	assert.True(t, sun.AboveHorizon())
	assert.Greater(t, sun.AltitudeDeg, 60.0)
	assert.GreaterOrEqual(t, sun.AzimuthDeg, 0.0)
	assert.Less(t, sun.AzimuthDeg, 360.0)
}

func TestAt_Midnight(t *testing.T) {
	midnight := time.Date(2024, time.March, 21, 17, 0, 0, 0, time.UTC)
	sun := At(midnight, 1.3521, 103.8198)
	assert.False(t, sun.AboveHorizon())
}

func TestAt_MorningIsEastish(t *testing.T) {
	morning := time.Date(2024, time.March, 21, 1, 0, 0, 0, time.UTC) // 09:00 SGT
	sun := At(morning, 1.3521, 103.8198)
	assert.True(t, sun.AboveHorizon())
	assert.InDelta(t, 90.0, sun.AzimuthDeg, 45.0)
}
