package usecase

import (
	"sort"

	"github.com/technest/backend/internal/domain"
)

// RankDevices scores devices by the weighted sum of their attribute scores
// and returns them best first. Ties keep input order.
func RankDevices(devices []domain.Device, weights domain.RankWeights) []domain.RankedDevice {
	ranked := make([]domain.RankedDevice, 0, len(devices))
	for _, device := range devices {
		ranked = append(ranked, domain.RankedDevice{
			Score:  weightedScore(device.Scores, weights),
			Device: device,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func weightedScore(s domain.DeviceScores, w domain.RankWeights) float64 {
	return s.Camera*w.Camera +
		s.Battery*w.Battery +
		s.Performance*w.Performance +
		s.Value*w.Value
}
