package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveDetectionResults stores analysis output for an image in a single
// transaction and marks the image completed. Labels, person detections,
// and face detections (with per-face emotions) either all land or none do.
func (s *MySQLStore) SaveDetectionResults(ctx context.Context, imageID string, result *DetectionResult) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if result == nil {
		return fmt.Errorf("detection result cannot be nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, label := range result.Labels {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO detection_labels (image_id, label_name, confidence) VALUES (?, ?, ?)`,
			imageID, label.Name, label.Confidence,
		)
		if err != nil {
			return fmt.Errorf("failed to insert detection label: %w", err)
		}
	}

	for _, person := range result.Persons {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO person_detections (image_id, confidence, bbox_left, bbox_top, bbox_width, bbox_height)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			imageID, person.Confidence, person.Box.Left, person.Box.Top, person.Box.Width, person.Box.Height,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person detection: %w", err)
		}
	}

	for _, face := range result.Faces {
		var gender *string
		var genderConf *float64
		if face.Gender != "" {
			gender = &face.Gender
			genderConf = &face.GenderConfidence
		}

		var primaryEmotion *string
		var emotionConf *float64
		if len(face.Emotions) > 0 {
			primaryEmotion = &face.Emotions[0].Type
			emotionConf = &face.Emotions[0].Confidence
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO face_detections
			 (image_id, confidence, bbox_left, bbox_top, bbox_width, bbox_height,
			  age_low, age_high, gender, gender_confidence, primary_emotion, emotion_confidence)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			imageID, face.Confidence, face.Box.Left, face.Box.Top, face.Box.Width, face.Box.Height,
			face.AgeLow, face.AgeHigh, gender, genderConf, primaryEmotion, emotionConf,
		)
		if err != nil {
			return fmt.Errorf("failed to insert face detection: %w", err)
		}

		faceID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get face detection id: %w", err)
		}

		for _, emotion := range face.Emotions {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO face_emotions (face_detection_id, emotion_type, confidence) VALUES (?, ?, ?)`,
				faceID, emotion.Type, emotion.Confidence,
			)
			if err != nil {
				return fmt.Errorf("failed to insert face emotion: %w", err)
			}
		}
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE images SET processing_status = ?, processed_at = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, now, now, imageID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark image completed: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("image not found: %s", imageID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListImagesWithDetections returns all images, newest upload first, with
// detection results attached.
func (s *MySQLStore) ListImagesWithDetections(ctx context.Context) ([]*ImageDetail, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM images ORDER BY upload_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var details []*ImageDetail
	for rows.Next() {
		img, err := scanImage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		details = append(details, &ImageDetail{Image: *img})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	for _, d := range details {
		if err := s.attachDetections(ctx, d); err != nil {
			return nil, err
		}
	}

	return details, nil
}

// attachDetections loads labels, person detections, and face detections
// for one image.
func (s *MySQLStore) attachDetections(ctx context.Context, d *ImageDetail) error {
	labels, err := s.getLabels(ctx, d.ID)
	if err != nil {
		return err
	}
	d.Labels = labels

	persons, err := s.getPersonDetections(ctx, d.ID)
	if err != nil {
		return err
	}
	d.Persons = persons

	faces, err := s.getFaceDetections(ctx, d.ID)
	if err != nil {
		return err
	}
	d.Faces = faces

	return nil
}

func (s *MySQLStore) getLabels(ctx context.Context, imageID string) ([]Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label_name, confidence FROM detection_labels WHERE image_id = ?`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get labels: %w", err)
	}
	defer rows.Close()

	var labels []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.Name, &l.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (s *MySQLStore) getPersonDetections(ctx context.Context, imageID string) ([]PersonDetection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT confidence, bbox_left, bbox_top, bbox_width, bbox_height
		 FROM person_detections WHERE image_id = ?`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get person detections: %w", err)
	}
	defer rows.Close()

	var persons []PersonDetection
	for rows.Next() {
		var p PersonDetection
		if err := rows.Scan(&p.Confidence, &p.Box.Left, &p.Box.Top, &p.Box.Width, &p.Box.Height); err != nil {
			return nil, fmt.Errorf("failed to scan person detection: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *MySQLStore) getFaceDetections(ctx context.Context, imageID string) ([]FaceDetection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, confidence, bbox_left, bbox_top, bbox_width, bbox_height,
		        age_low, age_high, gender, gender_confidence
		 FROM face_detections WHERE image_id = ?`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get face detections: %w", err)
	}
	defer rows.Close()

	var faces []FaceDetection
	var faceIDs []int64
	for rows.Next() {
		var f FaceDetection
		var faceID int64
		var ageLow, ageHigh sql.NullInt64
		var gender sql.NullString
		var genderConf sql.NullFloat64

		err := rows.Scan(&faceID, &f.Confidence, &f.Box.Left, &f.Box.Top, &f.Box.Width, &f.Box.Height,
			&ageLow, &ageHigh, &gender, &genderConf)
		if err != nil {
			return nil, fmt.Errorf("failed to scan face detection: %w", err)
		}

		if ageLow.Valid && ageHigh.Valid {
			low, high := int(ageLow.Int64), int(ageHigh.Int64)
			f.AgeLow = &low
			f.AgeHigh = &high
		}
		if gender.Valid {
			f.Gender = gender.String
			f.GenderConfidence = genderConf.Float64
		}

		faces = append(faces, f)
		faceIDs = append(faceIDs, faceID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get face detections: %w", err)
	}

	for i, faceID := range faceIDs {
		emotions, err := s.getFaceEmotions(ctx, faceID)
		if err != nil {
			return nil, err
		}
		faces[i].Emotions = emotions
	}

	return faces, nil
}

func (s *MySQLStore) getFaceEmotions(ctx context.Context, faceID int64) ([]Emotion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT emotion_type, confidence FROM face_emotions
		 WHERE face_detection_id = ? ORDER BY confidence DESC`, faceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get face emotions: %w", err)
	}
	defer rows.Close()

	var emotions []Emotion
	for rows.Next() {
		var e Emotion
		if err := rows.Scan(&e.Type, &e.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan face emotion: %w", err)
		}
		emotions = append(emotions, e)
	}
	return emotions, rows.Err()
}
