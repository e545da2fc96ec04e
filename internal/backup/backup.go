package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3     S3Config
	DBPath string
}

// Manager runs on-demand encrypted backups and restores. Backups are taken
// with VACUUM INTO, so the snapshot is consistent without stopping writers.
type Manager struct {
	cfg     Config
	db      *sql.DB
	history *store.BackupStore
	client  s3Client
}

func NewManager(cfg Config, db *sql.DB, history *store.BackupStore) *Manager {
	m := &Manager{cfg: cfg, db: db, history: history}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured reports whether S3 credentials are present.
func (m *Manager) Configured() bool {
	return m.client != nil
}

// Run snapshots the database, encrypts it under the passphrase, and uploads
// it. It returns the history record for the completed backup.
func (m *Manager) Run(ctx context.Context, passphrase string) (*model.Backup, error) {
	if m.client == nil {
		return nil, fmt.Errorf("backup not configured: S3 credentials missing")
	}
	if passphrase == "" {
		return nil, fmt.Errorf("backup passphrase required")
	}

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("backup-%s.db.enc", timestamp)
	s3Key := "backups/" + filename

	record, err := m.history.Create(filename, s3Key)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("mealboard-backup-%d.db", record.ID))
	encFile := filepath.Join(tmpDir, fmt.Sprintf("mealboard-backup-%d.db.enc", record.ID))
	defer os.Remove(dbCopy)
	defer os.Remove(encFile)

	fail := func(stage string, err error) (*model.Backup, error) {
		m.history.MarkFailed(record.ID, err.Error())
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", dbCopy); err != nil {
		return fail("snapshot database", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return fail("generate salt", err)
	}
	if err := EncryptFile(dbCopy, encFile, passphrase, salt); err != nil {
		return fail("encrypt", err)
	}

	if err := m.history.MarkUploading(record.ID); err != nil {
		return fail("mark uploading", err)
	}

	encData, err := os.Open(encFile)
	if err != nil {
		return fail("open encrypted file", err)
	}
	defer encData.Close()

	stat, err := encData.Stat()
	if err != nil {
		return fail("stat encrypted file", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(s3Key),
		Body:          encData,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.history.MarkCompleted(record.ID, stat.Size()); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	return m.history.GetByID(record.ID)
}

// Restore downloads and decrypts a backup to dstPath. The running database
// is not touched; swapping the file in is the operator's call.
func (m *Manager) Restore(ctx context.Context, backupID int64, passphrase, dstPath string) error {
	if m.client == nil {
		return fmt.Errorf("backup not configured: S3 credentials missing")
	}

	record, err := m.history.GetByID(backupID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("backup %d not found", backupID)
	}

	obj, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return fmt.Errorf("read backup body: %w", err)
	}

	plaintext, err := Decrypt(data, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dstPath, plaintext, 0600); err != nil {
		return fmt.Errorf("write restored database: %w", err)
	}
	return nil
}
