package detector

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// VoiceSample is what a voice scorer gets to look at.
type VoiceSample struct {
	Transcript      string
	TranscriptScore float64
	Features        map[string]any
}

// VoiceScorer estimates how likely a call voice is synthetic. Implementations
// return a value in [0,1]; higher means more likely synthetic.
type VoiceScorer interface {
	ScoreVoice(ctx context.Context, sample VoiceSample) (float64, error)
}

// Sampling ranges of the simulated scorer.
const (
	voiceHighMin = 0.7
	voiceHighMax = 0.99
	voiceLowMin  = 0.0
	voiceLowMax  = 0.3
)

// RandomVoiceScorer simulates a voice-biometric model until a real one is
// available. It ignores audio features entirely: scam-like transcripts get a
// score drawn uniformly from [0.7, 0.99], others from [0.0, 0.3].
type RandomVoiceScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ VoiceScorer = (*RandomVoiceScorer)(nil)

// NewRandomVoiceScorer returns a scorer seeded with seed, or with the current
// time when seed is 0.
func NewRandomVoiceScorer(seed uint64) *RandomVoiceScorer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomVoiceScorer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomVoiceScorer) ScoreVoice(_ context.Context, sample VoiceSample) (float64, error) {
	lo, hi := voiceLowMin, voiceLowMax
	if sample.TranscriptScore > SpamThreshold {
		lo, hi = voiceHighMin, voiceHighMax
	}

	r.mu.Lock()
	u := r.rng.Float64()
	r.mu.Unlock()

	return lo + u*(hi-lo), nil
}
