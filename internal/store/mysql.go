package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLStore implements Store using MySQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a new MySQL store instance.
func NewMySQLStore() *MySQLStore {
	return &MySQLStore{}
}

// Open opens a connection pool to the MySQL database.
func (s *MySQLStore) Open(dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open mysql database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping mysql database: %w", err)
	}

	s.db = db
	return nil
}

// OpenDB wraps an existing database connection. Used in tests.
func (s *MySQLStore) OpenDB(db *sql.DB) {
	s.db = db
}

// DB returns the underlying connection pool.
func (s *MySQLStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection pool.
func (s *MySQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies database connectivity.
func (s *MySQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Image operations ---

// CreateImage inserts a new image record with status pending.
func (s *MySQLStore) CreateImage(ctx context.Context, s3Key, originalName string, fileSize int64) (*Image, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	img := &Image{
		ID:               generateID(),
		S3Key:            s3Key,
		OriginalName:     originalName,
		FileSize:         fileSize,
		ProcessingStatus: StatusPending,
		UploadTime:       time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (id, s3_key, original_name, file_size, processing_status, upload_time, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.S3Key, img.OriginalName, img.FileSize, img.ProcessingStatus, img.UploadTime, img.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	return img, nil
}

const imageColumns = `id, s3_key, original_name, file_size, processing_status, upload_time, processed_at, updated_at`

// scanImage scans one image row from a row scanner.
func scanImage(scan func(dest ...any) error) (*Image, error) {
	img := &Image{}
	var processedAt sql.NullTime
	var status string

	err := scan(&img.ID, &img.S3Key, &img.OriginalName, &img.FileSize, &status, &img.UploadTime, &processedAt, &img.UpdatedAt)
	if err != nil {
		return nil, err
	}

	img.ProcessingStatus = Status(status)
	if processedAt.Valid {
		img.ProcessedAt = &processedAt.Time
	}
	return img, nil
}

// GetImage retrieves an image by ID.
func (s *MySQLStore) GetImage(ctx context.Context, id string) (*Image, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM images WHERE id = ?`, id)

	img, err := scanImage(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// GetImageByKey retrieves an image by its S3 key.
func (s *MySQLStore) GetImageByKey(ctx context.Context, s3Key string) (*Image, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM images WHERE s3_key = ?`, s3Key)

	img, err := scanImage(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image by key: %w", err)
	}
	return img, nil
}

// UpdateProcessingStatus sets the processing status of an image.
func (s *MySQLStore) UpdateProcessingStatus(ctx context.Context, id string, status Status, processedAt *time.Time) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var (
		result sql.Result
		err    error
	)
	if processedAt != nil {
		result, err = s.db.ExecContext(ctx,
			`UPDATE images SET processing_status = ?, processed_at = ?, updated_at = ? WHERE id = ?`,
			status, processedAt, time.Now().UTC(), id)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE images SET processing_status = ?, updated_at = ? WHERE id = ?`,
			status, time.Now().UTC(), id)
	}
	if err != nil {
		return fmt.Errorf("failed to update processing status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("image not found: %s", id)
	}

	return nil
}

// GetProcessingStatus returns the status view for an image.
func (s *MySQLStore) GetProcessingStatus(ctx context.Context, id string) (*StatusInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	info := &StatusInfo{}
	var processedAt sql.NullTime
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT processing_status, processed_at, upload_time FROM images WHERE id = ?`,
		id,
	).Scan(&status, &processedAt, &info.UploadTime)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processing status: %w", err)
	}

	info.ProcessingStatus = Status(status)
	if processedAt.Valid {
		info.ProcessedAt = &processedAt.Time
	}
	return info, nil
}

// GetProcessingStatusBatch returns status views for the given image IDs in a
// single query. IDs with no record are absent from the result map.
func (s *MySQLStore) GetProcessingStatusBatch(ctx context.Context, ids []string) (map[string]*StatusInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	statuses := make(map[string]*StatusInfo, len(ids))
	if len(ids) == 0 {
		return statuses, nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, processing_status, processed_at, upload_time FROM images WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch processing status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, status string
		info := &StatusInfo{}
		var processedAt sql.NullTime
		if err := rows.Scan(&id, &status, &processedAt, &info.UploadTime); err != nil {
			return nil, fmt.Errorf("failed to scan processing status: %w", err)
		}
		info.ProcessingStatus = Status(status)
		if processedAt.Valid {
			info.ProcessedAt = &processedAt.Time
		}
		statuses[id] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get batch processing status: %w", err)
	}

	return statuses, nil
}

// LogProcessingEvent records a processing event for monitoring.
func (s *MySQLStore) LogProcessingEvent(ctx context.Context, imageID, processType, status, message string, durationMS int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var msg *string
	if message != "" {
		msg = &message
	}
	var duration *int64
	if durationMS > 0 {
		duration = &durationMS
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processing_logs (image_id, process_type, status, message, processing_time_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		imageID, processType, status, msg, duration,
	)
	if err != nil {
		return fmt.Errorf("failed to log processing event: %w", err)
	}
	return nil
}

// Ensure MySQLStore implements the Store interface.
var _ Store = (*MySQLStore)(nil)
