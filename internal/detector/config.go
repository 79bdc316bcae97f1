package detector

// Config holds runtime settings for the engine.
type Config struct {
	// SpamLabel is the classifier label whose probability drives decisions.
	SpamLabel string `koanf:"spam_label"`

	// Fixtures enables the canned demo responses in DefaultFixtures.
	Fixtures bool `koanf:"fixtures"`

	// FixturesRequireModel makes fixtures subject to the model-availability
	// check. When false, fixtures answer even with no classifier loaded.
	FixturesRequireModel bool `koanf:"fixtures_require_model"`

	// VoiceSeed seeds the simulated voice scorer; 0 picks a random seed.
	VoiceSeed uint64 `koanf:"voice_seed"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SpamLabel: DefaultSpamLabel,
		Fixtures:  true,
	}
}
