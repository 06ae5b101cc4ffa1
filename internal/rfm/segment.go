package rfm

// Segment is one of the seven behavioral segments
type Segment string

const (
	SegmentUltraChampions Segment = "Ultra Champions"
	SegmentChampions      Segment = "Champions"
	SegmentNew            Segment = "Nouveaux"
	SegmentOccasional     Segment = "Occasionnels"
	SegmentLoyal          Segment = "Loyaux"
	SegmentAtRisk         Segment = "À Risque"
	SegmentLost           Segment = "Perdus"
)

// Segments lists every segment in cascade order
var Segments = []Segment{
	SegmentUltraChampions,
	SegmentChampions,
	SegmentNew,
	SegmentOccasional,
	SegmentLoyal,
	SegmentAtRisk,
	SegmentLost,
}

// Classify assigns R/F/M scores to a segment through the prioritized
// cascade. The rules overlap (Nouveaux and Occasionnels would also
// match Loyaux), so evaluation order is part of the contract: first
// match wins, which makes the segments mutually exclusive by
// construction.
func Classify(r, f, m int) Segment {
	switch {
	case r == 5 && f == 5 && m == 5:
		return SegmentUltraChampions
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 4 && f == 3:
		return SegmentNew
	case r == 3 && f == 3:
		return SegmentOccasional
	case r >= 3 && f >= 3 && m >= 3:
		return SegmentLoyal
	case f >= 3 && r <= 2:
		return SegmentAtRisk
	default:
		return SegmentLost
	}
}
