package errors

import (
	"errors"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/ingest"
)

// SkipStats counts rows dropped during normalization, by reason. The
// counts are a data-quality diagnostic; they never abort a batch.
type SkipStats struct {
	MissingFamily int64 `json:"missing_family"`
	MissingAmount int64 `json:"missing_amount"`
	BadAmount     int64 `json:"bad_amount"`
	ZeroAmount    int64 `json:"zero_amount"`
	Other         int64 `json:"other"`
}

// Total sums all skip reasons
func (s SkipStats) Total() int64 {
	return s.MissingFamily + s.MissingAmount + s.BadAmount + s.ZeroAmount + s.Other
}

// Count classifies one normalization skip and returns its reason
// label (the prometheus label value).
func (s *SkipStats) Count(err error) string {
	switch {
	case errors.Is(err, ingest.ErrMissingFamily):
		s.MissingFamily++
		return "missing_family"
	case errors.Is(err, ingest.ErrMissingAmount):
		s.MissingAmount++
		return "missing_amount"
	case errors.Is(err, ingest.ErrBadAmount):
		s.BadAmount++
		return "bad_amount"
	case errors.Is(err, ingest.ErrZeroAmount):
		s.ZeroAmount++
		return "zero_amount"
	default:
		s.Other++
		return "other"
	}
}
