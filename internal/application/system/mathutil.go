package system

import "github.com/go-gl/mathgl/mgl64"

// moveTowards moves current toward target by at most maxDelta without overshooting.
func moveTowards(current, target, maxDelta float64) float64 {
	if absFloat(target-current) <= maxDelta {
		return target
	}
	return current + sign(target-current)*maxDelta
}

// moveTowardsVec moves current toward target by at most maxDelta along the
// straight line between them.
func moveTowardsVec(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	diff := target.Sub(current)
	dist := diff.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return current.Add(diff.Mul(maxDelta / dist))
}

// Helper functions
func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
