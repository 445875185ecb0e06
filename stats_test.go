package audioenhance

import "testing"

func TestQualityLevelString(t *testing.T) {
	cases := []struct {
		level QualityLevel
		want  string
	}{
		{QualityExcellent, "Excellent"},
		{QualityGood, "Good"},
		{QualityFair, "Fair"},
		{QualityPoor, "Poor"},
		{QualityUnacceptable, "Unacceptable"},
		{QualityLevel(99), "Unknown(99)"},
	}

	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("QualityLevel(%d).String() = %q, want %q", int(tc.level), got, tc.want)
		}
	}
}

func TestGradeQuality(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		want   QualityLevel
	}{
		{"no units enabled", nil, QualityExcellent},
		{"high score", []float64{0.9}, QualityExcellent},
		{"excellent boundary", []float64{0.8}, QualityExcellent},
		{"good", []float64{0.7}, QualityGood},
		{"fair", []float64{0.5}, QualityFair},
		{"poor", []float64{0.3}, QualityPoor},
		{"unacceptable", []float64{0.1}, QualityUnacceptable},
		{"mean of two units", []float64{0.9, 0.3}, QualityGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gradeQuality(tc.scores...); got != tc.want {
				t.Errorf("gradeQuality(%v) = %v, want %v", tc.scores, got, tc.want)
			}
		})
	}
}
