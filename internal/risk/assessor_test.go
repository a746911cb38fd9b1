package risk

import "testing"

func TestAssessor_CleanContent_Low(t *testing.T) {
	a := NewAssessor()
	got := a.Assess("A great week for the team", "We shipped three features and learned a lot along the way.")
	if got.Level != LevelLow {
		t.Errorf("level = %q, want %q (score=%v flags=%v)", got.Level, LevelLow, got.Score, got.Flags)
	}
}

func TestAssessor_HighRiskKeywords_High(t *testing.T) {
	a := NewAssessor()
	got := a.Assess("Inside the scandal", "Leaked documents reveal a confidential lawsuit against a competitor over alleged fraud.")
	if got.Level != LevelHigh {
		t.Errorf("level = %q, want %q (score=%v)", got.Level, LevelHigh, got.Score)
	}
	if len(got.Flags) == 0 {
		t.Error("expected flags for high-risk keywords")
	}
}

func TestAssessor_MediumKeywords_Medium(t *testing.T) {
	a := NewAssessor()
	got := a.Assess("", "We had a layoff and the team is in a bit of a struggle right now after the pivot.")
	if got.Level != LevelMedium {
		t.Errorf("level = %q, want %q (score=%v)", got.Level, LevelMedium, got.Score)
	}
}

func TestAssessor_ClaimPatterns_Flagged(t *testing.T) {
	a := NewAssessor()
	got := a.Assess("", "Our tool is always 10x faster than every competitor on the market.")
	found := false
	for _, f := range got.Flags {
		if len(f) >= 16 && f[:16] == "unverified_claim" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unverified_claim flag, got %v", got.Flags)
	}
}
