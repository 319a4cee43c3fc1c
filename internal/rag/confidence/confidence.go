// Package confidence maps vector distances to bounded confidence scores.
//
// The formula clamp(1 - d/2, 0, 1) assumes the squared Euclidean metric
// used by the vector indexes: an exact text match embeds to distance 0
// (confidence 1), while unrelated texts typically land beyond 2 and clamp
// to 0. Distances outside [0,2] are clamped, never rejected.
package confidence

// Neutral is returned when no documents were retrieved: unknown, not unsafe.
const Neutral = 0.5

// worstDistance stands in for a missing distance during fact-checking.
const worstDistance float32 = 2.0

// FromDistance converts a single distance to a confidence in [0,1].
func FromDistance(distance float32) float64 {
	c := 1 - float64(distance)/2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// FromDistances converts a set of retrieved-document distances to a single
// generation confidence: the average distance, converted. An empty set
// yields Neutral.
func FromDistances(distances []float32) float64 {
	if len(distances) == 0 {
		return Neutral
	}
	var sum float64
	for _, d := range distances {
		sum += float64(d)
	}
	return FromDistance(float32(sum / float64(len(distances))))
}

// FromNearest converts the nearest neighbor's distance for fact-checking.
// A nil distance is treated as the worst case, yielding confidence 0.
func FromNearest(distance *float32) float64 {
	if distance == nil {
		return FromDistance(worstDistance)
	}
	return FromDistance(*distance)
}
