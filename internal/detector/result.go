package detector

import "errors"

var (
	// ErrModelUnavailable means no classifier is loaded. It is fatal for the
	// request and not worth retrying.
	ErrModelUnavailable = errors.New("detector: classifier model unavailable")

	// ErrInvalidLabelSet means the classifier output has no usable spam
	// probability. This is a configuration problem, not an outage.
	ErrInvalidLabelSet = errors.New("detector: classifier output has no valid spam label")
)

const (
	// SpamThreshold is the strict lower bound for a spam/scam decision.
	SpamThreshold = 0.5

	// DeepfakeThreshold is the strict lower bound for a synthetic-voice decision.
	DeepfakeThreshold = 0.8

	DefaultSpamLabel = "spam"
)

const (
	ReasonSuspicious = "Suspicious keywords and patterns detected."
	ReasonSafe       = "Message appears safe."
	ReasonScamSpeech = "Scam content detected in speech."
	ReasonDeepfake   = "Artificial voice patterns detected (Deepfake)."
)

// TextResult is the decision for a text message.
type TextResult struct {
	IsSpam bool    `json:"is_spam"`
	Score  float64 `json:"score" example:"0.99"`
	Reason string  `json:"reason" example:"Known scam pattern detected (Bank Impersonation)."`
}

// AudioResult is the decision for a call transcript plus voice analysis.
// Reasons lists the scam reason before the deepfake reason and is never nil;
// it is serialised under "reason" for the dashboard client.
type AudioResult struct {
	IsScam          bool     `json:"is_scam"`
	IsDeepfake      bool     `json:"is_deepfake"`
	TranscriptScore float64  `json:"transcript_score" example:"0.98"`
	VoiceScore      float64  `json:"voice_score" example:"0.95"`
	Reasons         []string `json:"reason"`
}
