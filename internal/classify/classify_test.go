package classify

import (
	"math"
	"testing"

	"github.com/binwatch/binwatch/internal/config"
	"github.com/binwatch/binwatch/internal/model"
)

var thresholds = config.DefaultThresholds

func TestClassify_Bands(t *testing.T) {
	cases := []struct {
		fill float64
		want model.Status
	}{
		{0, model.StatusNormal},
		{42.5, model.StatusNormal},
		{69.9, model.StatusNormal},
		{70, model.StatusWarning},
		{89.9, model.StatusWarning},
		{90, model.StatusCritical},
		{99.9, model.StatusCritical},
		{100, model.StatusOverflow},
	}
	for _, c := range cases {
		if got := Classify(c.fill, thresholds); got != c.want {
			t.Errorf("Classify(%.1f) = %q, want %q", c.fill, got, c.want)
		}
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	custom := thresholds
	custom.FillWarning = 50
	custom.FillCritical = 75

	if got := Classify(60, custom); got != model.StatusWarning {
		t.Errorf("Classify(60) with warning=50 = %q, want warning", got)
	}
	if got := Classify(80, custom); got != model.StatusCritical {
		t.Errorf("Classify(80) with critical=75 = %q, want critical", got)
	}
}

func TestTempInBand(t *testing.T) {
	if !TempInBand(22, thresholds) {
		t.Error("22°C should be inside the safe band")
	}
	if TempInBand(10, thresholds) {
		t.Error("10°C should be below the safe band")
	}
	if TempInBand(35, thresholds) {
		t.Error("35°C should be above the safe band")
	}
	// Band edges are inclusive.
	if !TempInBand(15, thresholds) || !TempInBand(30, thresholds) {
		t.Error("band edges 15°C and 30°C should be in band")
	}
}

func TestCollectionPriority(t *testing.T) {
	cases := []struct {
		fill     float64
		location string
		want     int
	}{
		{20, "Ward-2", 2},
		{75, "Ward-2", 5},
		{92, "Ward-2", 8},
		{100, "Ward-2", 10},
		{75, "ICU-Floor3", 7},  // critical location bump
		{92, "ER-Bay1", 10},    // 8 + 2
		{100, "Surgery-4", 10}, // capped at 10
	}
	for _, c := range cases {
		if got := CollectionPriority(c.fill, c.location, thresholds); got != c.want {
			t.Errorf("CollectionPriority(%.0f, %q) = %d, want %d", c.fill, c.location, got, c.want)
		}
	}
}

func TestTimeToFull(t *testing.T) {
	if got := TimeToFull(60, 10); got != 4 {
		t.Errorf("TimeToFull(60, 10) = %.2f, want 4", got)
	}
	if got := TimeToFull(50, 0); !math.IsInf(got, 1) {
		t.Errorf("TimeToFull with zero rate = %.2f, want +Inf", got)
	}
	if got := TimeToFull(50, -2); !math.IsInf(got, 1) {
		t.Errorf("TimeToFull with negative rate = %.2f, want +Inf", got)
	}
	if got := TimeToFull(100, 5); got != 0 {
		t.Errorf("TimeToFull at 100%% = %.2f, want 0", got)
	}
}
