package common

import "github.com/glasswing-labs/imagedepot/internal/store"

// Recognition is the analysis block attached to image responses.
// Field casing matches what the frontend consumes.
type Recognition struct {
	Status        string        `json:"status"`
	Message       string        `json:"message,omitempty"`
	Labels        []LabelJSON   `json:"labels"`
	BoundingBoxes []PersonJSON  `json:"boundingBoxes"`
	FaceBoxes     []FaceBoxJSON `json:"faceBoxes"`
}

// LabelJSON is one detection label.
type LabelJSON struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"`
}

// PersonJSON is one person bounding box.
type PersonJSON struct {
	Left       float64 `json:"Left"`
	Top        float64 `json:"Top"`
	Width      float64 `json:"Width"`
	Height     float64 `json:"Height"`
	Confidence float64 `json:"confidence"`
}

// AgeRangeJSON is an estimated age interval.
type AgeRangeJSON struct {
	Low  int `json:"Low"`
	High int `json:"High"`
}

// GenderJSON is a gender estimate with confidence.
type GenderJSON struct {
	Value      string  `json:"Value"`
	Confidence float64 `json:"Confidence"`
}

// EmotionJSON is one detected emotion.
type EmotionJSON struct {
	Type       string  `json:"Type"`
	Confidence float64 `json:"Confidence"`
}

// FaceBoxJSON is one face bounding box with optional attributes.
type FaceBoxJSON struct {
	Left       float64       `json:"Left"`
	Top        float64       `json:"Top"`
	Width      float64       `json:"Width"`
	Height     float64       `json:"Height"`
	Confidence float64       `json:"confidence"`
	AgeRange   *AgeRangeJSON `json:"ageRange,omitempty"`
	Gender     *GenderJSON   `json:"gender,omitempty"`
	Emotions   []EmotionJSON `json:"emotions,omitempty"`
}

// EmptyRecognition returns a recognition block with no detections.
func EmptyRecognition(status, message string) Recognition {
	return Recognition{
		Status:        status,
		Message:       message,
		Labels:        []LabelJSON{},
		BoundingBoxes: []PersonJSON{},
		FaceBoxes:     []FaceBoxJSON{},
	}
}

// RecognitionFromDetail converts stored detection results to the wire shape.
func RecognitionFromDetail(detail *store.ImageDetail) Recognition {
	rec := EmptyRecognition(string(detail.ProcessingStatus), "")

	for _, label := range detail.Labels {
		rec.Labels = append(rec.Labels, LabelJSON{
			Name:       label.Name,
			Confidence: label.Confidence,
		})
	}

	for _, person := range detail.Persons {
		rec.BoundingBoxes = append(rec.BoundingBoxes, PersonJSON{
			Left:       person.Box.Left,
			Top:        person.Box.Top,
			Width:      person.Box.Width,
			Height:     person.Box.Height,
			Confidence: person.Confidence,
		})
	}

	for _, face := range detail.Faces {
		box := FaceBoxJSON{
			Left:       face.Box.Left,
			Top:        face.Box.Top,
			Width:      face.Box.Width,
			Height:     face.Box.Height,
			Confidence: face.Confidence,
		}
		if face.AgeLow != nil && face.AgeHigh != nil {
			box.AgeRange = &AgeRangeJSON{Low: *face.AgeLow, High: *face.AgeHigh}
		}
		if face.Gender != "" {
			box.Gender = &GenderJSON{Value: face.Gender, Confidence: face.GenderConfidence}
		}
		for _, emotion := range face.Emotions {
			box.Emotions = append(box.Emotions, EmotionJSON{
				Type:       emotion.Type,
				Confidence: emotion.Confidence,
			})
		}
		rec.FaceBoxes = append(rec.FaceBoxes, box)
	}

	return rec
}
