package classifier

import (
	"FallWatch/internal/entity"
	"math"
)

// Angle returns |atan2(c-b) - atan2(a-b)| in degrees, the angle at vertex b.
// The result lies in [0, 360) and is not folded into [0, 180]: a reflex
// reading of 300° is returned as is. Coincident points read as 0° for that
// arm since atan2(0, 0) is 0.
func Angle(a, b, c entity.Point) float64 {
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	return math.Abs(rad * 180 / math.Pi)
}
