package contracts

import (
	"testing"
	"time"
)

func TestEvaluationWeights_Valid(t *testing.T) {
	tests := []struct {
		name    string
		weights EvaluationWeights
		want    bool
	}{
		{
			name:    "standard split",
			weights: EvaluationWeights{Technical: 40, Price: 30, Experience: 10, Diversity: 20},
			want:    true,
		},
		{
			name:    "single weight",
			weights: EvaluationWeights{Technical: 100},
			want:    true,
		},
		{
			name:    "sum below 100",
			weights: EvaluationWeights{Technical: 40, Price: 30, Experience: 10, Diversity: 10},
			want:    false,
		},
		{
			name:    "sum above 100",
			weights: EvaluationWeights{Technical: 50, Price: 30, Experience: 20, Diversity: 20},
			want:    false,
		},
		{
			name:    "all zero",
			weights: EvaluationWeights{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.weights.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v (sum %v)", got, tt.want, tt.weights.Sum())
			}
		})
	}
}

func TestValueRange_Midpoint(t *testing.T) {
	v := ValueRange{Min: 100000, Max: 300000, Currency: "CAD"}
	if got := v.Midpoint(); got != 200000 {
		t.Errorf("Midpoint() = %v, want 200000", got)
	}
}

func TestValueRange_Overlaps(t *testing.T) {
	base := ValueRange{Min: 100000, Max: 500000}

	tests := []struct {
		name  string
		other ValueRange
		want  bool
	}{
		{"contained", ValueRange{Min: 200000, Max: 300000}, true},
		{"partial overlap", ValueRange{Min: 400000, Max: 900000}, true},
		{"touching boundary", ValueRange{Min: 500000, Max: 600000}, true},
		{"disjoint above", ValueRange{Min: 600000, Max: 700000}, false},
		{"disjoint below", ValueRange{Min: 1000, Max: 50000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestDiversityRequirement_GroupEligible(t *testing.T) {
	noList := DiversityRequirement{MinimumPercentage: 25}
	if !noList.GroupEligible("first-nations") {
		t.Error("Expected any group eligible when no list is specified")
	}

	withList := DiversityRequirement{
		MinimumPercentage: 25,
		EligibleGroups:    []string{"first-nations", "inuit", "metis"},
	}
	if !withList.GroupEligible("inuit") {
		t.Error("Expected listed group to be eligible")
	}
	if withList.GroupEligible("other") {
		t.Error("Expected unlisted group to be ineligible")
	}
}

func TestDeadlineSet_DaysUntilSubmission(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d := DeadlineSet{Submission: now.Add(10 * 24 * time.Hour)}

	if got := d.DaysUntilSubmission(now); got != 10 {
		t.Errorf("DaysUntilSubmission() = %d, want 10", got)
	}

	past := DeadlineSet{Submission: now.Add(-48 * time.Hour)}
	if got := past.DaysUntilSubmission(now); got != -2 {
		t.Errorf("DaysUntilSubmission() = %d, want -2", got)
	}
}
