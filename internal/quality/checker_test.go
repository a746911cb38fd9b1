package quality

import "testing"

func TestChecker_Placeholder_AutoReject(t *testing.T) {
	c := NewChecker()
	r := c.Check("linkedin", "A real title for testing", "This post still has a [PLACEHOLDER] in it.")
	if r.Passed {
		t.Errorf("expected placeholder content to fail, got passed=%v score=%v", r.Passed, r.Score)
	}
	if r.Score != 0.1 {
		t.Errorf("score = %v, want 0.1", r.Score)
	}
}

func TestChecker_ShortBody_BelowMin(t *testing.T) {
	c := NewChecker()
	r := c.Check("linkedin", "Short", "Too short.")
	if r.Metrics["length"] != 0.0 {
		t.Errorf("length score = %v, want 0.0 for below-minimum body", r.Metrics["length"])
	}
	// Length is one weighted sub-score, not a hard rule: the other five
	// keep this body at 0.46, above the 0.4 reject line and below the 0.6
	// warning line.
	if !r.Passed || !r.Warning {
		t.Errorf("passed=%v warning=%v score=%v, want under-length content to pass with a warning", r.Passed, r.Warning, r.Score)
	}
}

func TestChecker_WellFormedLinkedInPost_Passes(t *testing.T) {
	c := NewChecker()
	body := `Most engineering teams think their biggest bottleneck is code review speed.

It isn't. It's the handoff between design and implementation, where context gets lost and assumptions go unchecked.

We tracked this across a dozen teams over six months. Every team that added a lightweight async design review step cut rework by 30-40%.

The step took fifteen minutes. The payoff compounded across every sprint after.

If your team is drowning in review comments two days before a release, this is worth trying before you blame the reviewers.`
	r := c.Check("linkedin", "What actually slows engineering teams down", body)
	if !r.Passed {
		t.Errorf("expected well-formed post to pass, got score=%v issues=%v", r.Score, r.Issues)
	}
}

func TestChecker_UnknownPlatform_FallsBackToLinkedIn(t *testing.T) {
	c := NewChecker()
	title, body := "A decent title here", "Some reasonably long body text that exceeds the minimum length for a linkedin-style post by quite a large margin of characters, repeated for length padding purposes only."
	r := c.Check("mastodon", title, body)
	if r.Platform != "mastodon" {
		t.Errorf("platform label = %q, want %q", r.Platform, "mastodon")
	}
	if want := c.Check("linkedin", title, body).Score; r.Score != want {
		t.Errorf("score = %v, want %v (the linkedin profile's score)", r.Score, want)
	}
}
