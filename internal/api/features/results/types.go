// Package results ingests detection output from the analysis worker.
package results

// Ingest is the detection payload POSTed by the analysis worker.
type Ingest struct {
	Status  string        `json:"status,omitempty"`
	Labels  []LabelInput  `json:"labels"`
	Persons []PersonInput `json:"persons"`
	Faces   []FaceInput   `json:"faces"`
	Timing  *TimingInput  `json:"timing,omitempty"`
}

// LabelInput is one detection label.
type LabelInput struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// BoxInput is a normalized bounding rectangle.
type BoxInput struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PersonInput is one detected person.
type PersonInput struct {
	Confidence float64  `json:"confidence"`
	Box        BoxInput `json:"box"`
}

// AgeRangeInput is an estimated age interval.
type AgeRangeInput struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// GenderInput is a gender estimate.
type GenderInput struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// EmotionInput is one detected emotion.
type EmotionInput struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// FaceInput is one detected face.
type FaceInput struct {
	Confidence float64        `json:"confidence"`
	Box        BoxInput       `json:"box"`
	AgeRange   *AgeRangeInput `json:"ageRange,omitempty"`
	Gender     *GenderInput   `json:"gender,omitempty"`
	Emotions   []EmotionInput `json:"emotions,omitempty"`
}

// TimingInput reports how long the worker spent analyzing.
type TimingInput struct {
	DurationMS int64 `json:"durationMs"`
}

// Response is the ingest endpoint response.
type Response struct {
	Success          bool   `json:"success"`
	ImageID          string `json:"imageId"`
	ProcessingStatus string `json:"processing_status"`
}
