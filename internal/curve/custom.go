package curve

import "sort"

// evalCustom evaluates a piecewise Catmull-Rom spline through pts, which
// must be sorted by Input and anchored at (0,0) and (1,1) per the Custom
// AxisCurve invariant in spec.md §3. Virtual endpoints are reflected so the
// tangent at each real endpoint is well-defined; outside [0, 1] the curve
// extrapolates linearly from the nearest segment's tangent.
func evalCustom(pts []ControlPoint, x float64) float64 {
	if len(pts) < 2 {
		return x
	}

	sorted := make([]ControlPoint, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Input < sorted[j].Input })

	n := len(sorted)

	if x <= sorted[0].Input {
		if x == sorted[0].Input {
			return sorted[0].Output
		}
		tangent := segmentSlope(sorted, 0)
		return sorted[0].Output - tangent*(sorted[0].Input-x)
	}
	if x >= sorted[n-1].Input {
		if x == sorted[n-1].Input {
			return sorted[n-1].Output
		}
		tangent := segmentSlope(sorted, n-2)
		return sorted[n-1].Output + tangent*(x-sorted[n-1].Input)
	}

	seg := sort.Search(n, func(i int) bool { return sorted[i].Input > x }) - 1
	if seg < 0 {
		seg = 0
	}
	if seg > n-2 {
		seg = n - 2
	}

	p0 := reflectedPoint(sorted, seg-1)
	p1 := sorted[seg]
	p2 := sorted[seg+1]
	p3 := reflectedPoint(sorted, seg+2)

	span := p2.Input - p1.Input
	if span <= 0 {
		return p1.Output
	}
	t := (x - p1.Input) / span

	return catmullRom(p0.Output, p1.Output, p2.Output, p3.Output, t)
}

// reflectedPoint returns sorted[i] when i is a valid index, or a point
// reflected across the nearest real endpoint otherwise, giving Catmull-Rom
// a well-defined tangent at the curve's boundaries.
func reflectedPoint(sorted []ControlPoint, i int) ControlPoint {
	n := len(sorted)
	if i >= 0 && i < n {
		return sorted[i]
	}
	if i < 0 {
		a, b := sorted[0], sorted[1]
		return ControlPoint{Input: 2*a.Input - b.Input, Output: 2*a.Output - b.Output}
	}
	a, b := sorted[n-1], sorted[n-2]
	return ControlPoint{Input: 2*a.Input - b.Input, Output: 2*a.Output - b.Output}
}

func segmentSlope(sorted []ControlPoint, seg int) float64 {
	a, b := sorted[seg], sorted[seg+1]
	if b.Input == a.Input {
		return 0
	}
	return (b.Output - a.Output) / (b.Input - a.Input)
}

// catmullRom evaluates the uniform Catmull-Rom spline through p0..p3 at
// t in [0, 1], using the standard 0.5 tension basis.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p1) +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}
