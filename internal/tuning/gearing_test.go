package tuning

import (
	"errors"
	"math"
	"testing"

	"apexgarage/internal/model"
)

func TestTopSpeed(t *testing.T) {
	cases := []struct {
		name  string
		ratio float64
		final float64
		want  float64
	}{
		{"direct drive", 1.0, 3.5, 280.05},
		{"first gear", 3.0, 3.5, 93.35},
		{"tall final", 1.0, 2.5, 392.07},
		{"zero ratio", 0, 3.5, 0},
		{"zero final", 1.0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TopSpeed(tc.ratio, tc.final)
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("TopSpeed(%v, %v) = %.2f, want %.2f", tc.ratio, tc.final, got, tc.want)
			}
		})
	}
}

func TestTopSpeeds(t *testing.T) {
	gearbox := model.GearboxSettings{
		Manual: []float64{3.0, 2.0, 1.5, 1.0},
		Final:  3.5,
	}

	speeds := TopSpeeds(gearbox)
	if len(speeds) != 4 {
		t.Fatalf("got %d speeds, want 4", len(speeds))
	}

	// Each taller gear projects a higher top speed.
	for i := 1; i < len(speeds); i++ {
		if speeds[i] <= speeds[i-1] {
			t.Errorf("speeds[%d] = %.2f not greater than speeds[%d] = %.2f", i, speeds[i], i-1, speeds[i-1])
		}
	}
}

func TestValidateGearbox(t *testing.T) {
	cases := []struct {
		name    string
		gearbox model.GearboxSettings
		wantErr error
	}{
		{
			name:    "stock gearing passes",
			gearbox: model.GearboxSettings{},
			wantErr: nil,
		},
		{
			name: "valid custom gearing",
			gearbox: model.GearboxSettings{
				Manual: []float64{3.2, 2.1, 1.5, 1.1, 0.9},
				Final:  3.7,
			},
			wantErr: nil,
		},
		{
			name: "too many gears",
			gearbox: model.GearboxSettings{
				Manual: []float64{11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
				Final:  3.5,
			},
			wantErr: ErrTooManyGears,
		},
		{
			name: "negative ratio",
			gearbox: model.GearboxSettings{
				Manual: []float64{3.0, -2.0},
				Final:  3.5,
			},
			wantErr: ErrNonPositiveRatio,
		},
		{
			name: "ratios not descending",
			gearbox: model.GearboxSettings{
				Manual: []float64{2.0, 2.5},
				Final:  3.5,
			},
			wantErr: ErrRatiosNotDescend,
		},
		{
			name: "equal adjacent ratios rejected",
			gearbox: model.GearboxSettings{
				Manual: []float64{2.0, 2.0},
				Final:  3.5,
			},
			wantErr: ErrRatiosNotDescend,
		},
		{
			name: "zero final drive",
			gearbox: model.GearboxSettings{
				Manual: []float64{3.0, 2.0},
				Final:  0,
			},
			wantErr: ErrNonPositiveFinal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGearbox(tc.gearbox)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateGearbox() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
