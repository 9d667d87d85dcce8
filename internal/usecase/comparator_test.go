package usecase

import (
	"testing"

	"github.com/technest/backend/internal/domain"
)

func TestCompareSpecValues(t *testing.T) {
	tests := []struct {
		name      string
		a, b      string
		direction domain.Direction
		want      domain.Winner
	}{
		{"both absent", "", "N/A", domain.HigherIsBetter, domain.WinnerTie},
		{"both absent lower is better", "Unknown", "", domain.LowerIsBetter, domain.WinnerTie},
		{"A absent", "N/A", "12GB", domain.HigherIsBetter, domain.WinnerSideB},
		{"A absent lower is better", "N/A", "12GB", domain.LowerIsBetter, domain.WinnerSideB},
		{"B absent", "8GB", "", domain.HigherIsBetter, domain.WinnerSideA},
		{"B absent lower is better", "8GB", "", domain.LowerIsBetter, domain.WinnerSideA},
		{"A larger higher is better", "5000 mAh", "4500mAh", domain.HigherIsBetter, domain.WinnerSideA},
		{"A larger lower is better", "5000 mAh", "4500mAh", domain.LowerIsBetter, domain.WinnerSideB},
		{"A smaller higher is better", "4500", "5,000", domain.HigherIsBetter, domain.WinnerSideB},
		{"A smaller lower is better", "180 g", "210 g", domain.LowerIsBetter, domain.WinnerSideA},
		{"equal values", "12GB", "12 GB", domain.HigherIsBetter, domain.WinnerTie},
		{"equal values lower is better", "12GB", "12 GB", domain.LowerIsBetter, domain.WinnerTie},
		{"resolution truncation ties", "3120 x 1440", "3120x1440", domain.HigherIsBetter, domain.WinnerTie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareSpecValues(tt.a, tt.b, tt.direction)
			if got != tt.want {
				t.Errorf("CompareSpecValues(%q, %q, %s) = %s, want %s", tt.a, tt.b, tt.direction, got, tt.want)
			}
		})
	}
}

func TestCompareSpecValues_AbsentDominance(t *testing.T) {
	present := []string{"0", "1", "5000 mAh", "IP68", "99999999999999999999"}
	absent := []string{"", "N/A", "Unknown", "none"}
	directions := []domain.Direction{domain.HigherIsBetter, domain.LowerIsBetter}

	for _, x := range present {
		for _, missing := range absent {
			for _, d := range directions {
				if got := CompareSpecValues(missing, x, d); got != domain.WinnerSideB {
					t.Errorf("CompareSpecValues(%q, %q, %s) = %s, want B", missing, x, d, got)
				}
				if got := CompareSpecValues(x, missing, d); got != domain.WinnerSideA {
					t.Errorf("CompareSpecValues(%q, %q, %s) = %s, want A", x, missing, d, got)
				}
			}
		}
	}
}

func TestCompareSpecValues_TieSymmetry(t *testing.T) {
	values := []string{"0", "42", "5,000 mAh", "1440 x 3120", "IP68"}
	for _, x := range values {
		for _, d := range []domain.Direction{domain.HigherIsBetter, domain.LowerIsBetter} {
			if got := CompareSpecValues(x, x, d); got != domain.WinnerTie {
				t.Errorf("CompareSpecValues(%q, %q, %s) = %s, want Tie", x, x, d, got)
			}
		}
	}
}

func TestCompareSpecValues_DirectionInversion(t *testing.T) {
	pairs := [][2]string{{"10", "9"}, {"5000 mAh", "4000 mAh"}, {"2,048", "1,024"}}
	for _, p := range pairs {
		if got := CompareSpecValues(p[0], p[1], domain.HigherIsBetter); got != domain.WinnerSideA {
			t.Errorf("higher is better: CompareSpecValues(%q, %q) = %s, want A", p[0], p[1], got)
		}
		if got := CompareSpecValues(p[0], p[1], domain.LowerIsBetter); got != domain.WinnerSideB {
			t.Errorf("lower is better: CompareSpecValues(%q, %q) = %s, want B", p[0], p[1], got)
		}
	}
}
