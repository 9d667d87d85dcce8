package usecase

import "github.com/technest/backend/internal/domain"

// CompareSpecValues decides which side wins a single category.
// A documented value always beats an absent one, whatever the direction;
// two absent values tie.
func CompareSpecValues(rawA, rawB string, direction domain.Direction) domain.Winner {
	a, okA := NormalizeSpecValue(rawA)
	b, okB := NormalizeSpecValue(rawB)

	switch {
	case !okA && !okB:
		return domain.WinnerTie
	case !okA:
		return domain.WinnerSideB
	case !okB:
		return domain.WinnerSideA
	case a == b:
		return domain.WinnerTie
	}

	aLarger := a > b
	if direction == domain.LowerIsBetter {
		aLarger = !aLarger
	}
	if aLarger {
		return domain.WinnerSideA
	}
	return domain.WinnerSideB
}
