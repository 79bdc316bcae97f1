package detector

import "maps"

// TextFixture is a canned answer for one exact text input.
type TextFixture struct {
	Score  float64
	Reason string
}

// CallFixture is a canned answer for one exact call transcript.
type CallFixture struct {
	IsScam          bool
	IsDeepfake      bool
	TranscriptScore float64
	VoiceScore      float64
	Reasons         []string
}

// Fixtures maps known demo inputs to canned results. Matching is by exact
// string equality only.
type Fixtures struct {
	Text map[string]TextFixture
	Call map[string]CallFixture
}

const (
	BankImpersonationText = "URGENT: Your bank account has been compromised. Click here to reset password: http://bit.ly/scam"
	GrandparentScamCall   = "Grandma, I'm in jail! Please send money now! I was in an accident."
)

// DefaultFixtures returns the demo fixtures shipped with the service.
func DefaultFixtures() Fixtures {
	return Fixtures{
		Text: map[string]TextFixture{
			BankImpersonationText: {
				Score:  0.99,
				Reason: "Known scam pattern detected (Bank Impersonation).",
			},
		},
		Call: map[string]CallFixture{
			GrandparentScamCall: {
				IsScam:          true,
				IsDeepfake:      true,
				TranscriptScore: 0.98,
				VoiceScore:      0.95,
				Reasons:         []string{"Emergency Scam Pattern (Grandparent Scam)", "Artificial Voice Detected"},
			},
		},
	}
}

func (f Fixtures) text(s string) (TextFixture, bool) {
	fx, ok := f.Text[s]
	return fx, ok
}

func (f Fixtures) call(s string) (CallFixture, bool) {
	fx, ok := f.Call[s]
	if ok {
		fx.Reasons = append([]string(nil), fx.Reasons...)
	}
	return fx, ok
}

// Clone returns a deep copy.
func (f Fixtures) Clone() Fixtures {
	out := Fixtures{Text: maps.Clone(f.Text), Call: make(map[string]CallFixture, len(f.Call))}
	for k, v := range f.Call {
		v.Reasons = append([]string(nil), v.Reasons...)
		out.Call[k] = v
	}
	return out
}
