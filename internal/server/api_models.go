package server

// AnalyzeTextRequest is the payload for text analysis. Source "email" or
// "html" strips markup before classification.
type AnalyzeTextRequest struct {
	Text   string `json:"text" example:"URGENT: Your bank account has been compromised. Click here to reset password: http://bit.ly/scam"`
	Source string `json:"source,omitempty" example:"sms"`
}

// AnalyzeAudioRequest is the payload for call analysis.
type AnalyzeAudioRequest struct {
	Transcript    string         `json:"transcript" example:"Grandma, I'm in jail! Please send money now! I was in an accident."`
	AudioFeatures map[string]any `json:"audio_features,omitempty"`
}

// StatusResponse reports service liveness.
type StatusResponse struct {
	Status      string `json:"status" example:"active"`
	Guardian    string `json:"guardian" example:"monitoring"`
	ModelLoaded bool   `json:"model_loaded" example:"true"`
}

// ClearedResponse acknowledges an alert reset.
type ClearedResponse struct {
	Status string `json:"status" example:"cleared"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"No text provided"`
}
