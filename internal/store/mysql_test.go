package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewMySQLStore()
	s.OpenDB(db)
	return s, mock
}

func imageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "s3_key", "original_name", "file_size",
		"processing_status", "upload_time", "processed_at", "updated_at",
	})
}

func TestCreateImage(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO images").
		WithArgs(sqlmock.AnyArg(), "uploads/abc.jpg", "cat.jpg", int64(1234),
			StatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	img, err := s.CreateImage(context.Background(), "uploads/abc.jpg", "cat.jpg", 1234)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.NotEmpty(t, img.ID)
	assert.Equal(t, "uploads/abc.jpg", img.S3Key)
	assert.Equal(t, StatusPending, img.ProcessingStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImage(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM images WHERE id = ?").
		WithArgs("img-1").
		WillReturnRows(imageRows().
			AddRow("img-1", "uploads/abc.jpg", "cat.jpg", int64(1234), "completed", now, now, now))

	img, err := s.GetImage(context.Background(), "img-1")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "img-1", img.ID)
	assert.Equal(t, StatusCompleted, img.ProcessingStatus)
	require.NotNil(t, img.ProcessedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImageNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM images WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(imageRows())

	img, err := s.GetImage(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, img)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImageByKey(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM images WHERE s3_key = ?").
		WithArgs("uploads/abc.jpg").
		WillReturnRows(imageRows().
			AddRow("img-1", "uploads/abc.jpg", "cat.jpg", int64(1234), "pending", now, nil, now))

	img, err := s.GetImageByKey(context.Background(), "uploads/abc.jpg")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Nil(t, img.ProcessedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProcessingStatus(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("without processed_at", func(t *testing.T) {
		mock.ExpectExec("UPDATE images SET processing_status = \\?, updated_at = \\?").
			WithArgs(StatusProcessing, sqlmock.AnyArg(), "img-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.UpdateProcessingStatus(context.Background(), "img-1", StatusProcessing, nil)
		require.NoError(t, err)
	})

	t.Run("with processed_at", func(t *testing.T) {
		now := time.Now().UTC()
		mock.ExpectExec("UPDATE images SET processing_status = \\?, processed_at = \\?").
			WithArgs(StatusFailed, &now, sqlmock.AnyArg(), "img-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.UpdateProcessingStatus(context.Background(), "img-1", StatusFailed, &now)
		require.NoError(t, err)
	})

	t.Run("missing image", func(t *testing.T) {
		mock.ExpectExec("UPDATE images SET processing_status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateProcessingStatus(context.Background(), "missing", StatusCompleted, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image not found")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProcessingStatus(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT processing_status, processed_at, upload_time FROM images").
		WithArgs("img-1").
		WillReturnRows(sqlmock.NewRows([]string{"processing_status", "processed_at", "upload_time"}).
			AddRow("completed", now, now))

	info, err := s.GetProcessingStatus(context.Background(), "img-1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, StatusCompleted, info.ProcessingStatus)
	require.NotNil(t, info.ProcessedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProcessingStatusNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT processing_status, processed_at, upload_time FROM images").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"processing_status", "processed_at", "upload_time"}))

	info, err := s.GetProcessingStatus(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestGetProcessingStatusBatch(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, processing_status, processed_at, upload_time FROM images WHERE id IN").
		WithArgs("img-1", "img-2", "img-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "processing_status", "processed_at", "upload_time"}).
			AddRow("img-1", "completed", now, now).
			AddRow("img-2", "pending", nil, now))

	statuses, err := s.GetProcessingStatusBatch(context.Background(), []string{"img-1", "img-2", "img-missing"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, StatusCompleted, statuses["img-1"].ProcessingStatus)
	require.NotNil(t, statuses["img-1"].ProcessedAt)
	assert.Equal(t, StatusPending, statuses["img-2"].ProcessingStatus)
	assert.Nil(t, statuses["img-2"].ProcessedAt)
	assert.NotContains(t, statuses, "img-missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProcessingStatusBatchEmpty(t *testing.T) {
	s, _ := newMockStore(t)

	statuses, err := s.GetProcessingStatusBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestLogProcessingEvent(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO processing_logs").
		WithArgs("img-1", "upload", "completed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.LogProcessingEvent(context.Background(), "img-1", "upload", "completed", "Uploaded", 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDetectionResults(t *testing.T) {
	s, mock := newMockStore(t)

	result := &DetectionResult{
		Labels: []Label{{Name: "Cat", Confidence: 98.5}},
		Persons: []PersonDetection{
			{Confidence: 90, Box: BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.4}},
		},
		Faces: []FaceDetection{
			{
				Confidence: 99,
				Box:        BoundingBox{Left: 0.5, Top: 0.1, Width: 0.2, Height: 0.2},
				Gender:     "Female",
				Emotions:   []Emotion{{Type: "HAPPY", Confidence: 88}},
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO detection_labels").
		WithArgs("img-1", "Cat", 98.5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO person_detections").
		WithArgs("img-1", 90.0, 0.1, 0.2, 0.3, 0.4).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO face_detections").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO face_emotions").
		WithArgs(int64(42), "HAPPY", 88.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE images SET processing_status").
		WithArgs(StatusCompleted, sqlmock.AnyArg(), sqlmock.AnyArg(), "img-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.SaveDetectionResults(context.Background(), "img-1", result)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDetectionResultsRollsBackOnMissingImage(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE images SET processing_status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.SaveDetectionResults(context.Background(), "missing", &DetectionResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDetectionResultsNil(t *testing.T) {
	s, _ := newMockStore(t)
	err := s.SaveDetectionResults(context.Background(), "img-1", nil)
	require.Error(t, err)
}

func TestListImagesWithDetections(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM images ORDER BY upload_time DESC").
		WillReturnRows(imageRows().
			AddRow("img-1", "uploads/a.jpg", "a.jpg", int64(10), "completed", now, now, now))

	mock.ExpectQuery("SELECT label_name, confidence FROM detection_labels").
		WithArgs("img-1").
		WillReturnRows(sqlmock.NewRows([]string{"label_name", "confidence"}).
			AddRow("Cat", 98.5))

	mock.ExpectQuery("SELECT confidence, bbox_left, bbox_top, bbox_width, bbox_height").
		WithArgs("img-1").
		WillReturnRows(sqlmock.NewRows([]string{"confidence", "bbox_left", "bbox_top", "bbox_width", "bbox_height"}).
			AddRow(90.0, 0.1, 0.2, 0.3, 0.4))

	mock.ExpectQuery("SELECT id, confidence, bbox_left, bbox_top, bbox_width, bbox_height").
		WithArgs("img-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "confidence", "bbox_left", "bbox_top", "bbox_width", "bbox_height",
			"age_low", "age_high", "gender", "gender_confidence",
		}).AddRow(int64(7), 99.0, 0.5, 0.1, 0.2, 0.2, 20, 30, "Female", 97.2))

	mock.ExpectQuery("SELECT emotion_type, confidence FROM face_emotions").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"emotion_type", "confidence"}).
			AddRow("HAPPY", 88.0))

	details, err := s.ListImagesWithDetections(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 1)

	d := details[0]
	assert.Equal(t, "img-1", d.ID)
	require.Len(t, d.Labels, 1)
	assert.Equal(t, "Cat", d.Labels[0].Name)
	require.Len(t, d.Persons, 1)
	require.Len(t, d.Faces, 1)
	face := d.Faces[0]
	require.NotNil(t, face.AgeLow)
	assert.Equal(t, 20, *face.AgeLow)
	assert.Equal(t, "Female", face.Gender)
	require.Len(t, face.Emotions, 1)
	assert.Equal(t, "HAPPY", face.Emotions[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationsWithoutOpenConnection(t *testing.T) {
	s := NewMySQLStore()
	ctx := context.Background()

	require.Error(t, s.Ping(ctx))
	_, err := s.CreateImage(ctx, "k", "n", 1)
	require.Error(t, err)
	_, err = s.GetImage(ctx, "id")
	require.Error(t, err)
	_, err = s.ListImagesWithDetections(ctx)
	require.Error(t, err)
	require.Error(t, s.SaveDetectionResults(ctx, "id", &DetectionResult{}))
	assert.NoError(t, s.Close())
}
