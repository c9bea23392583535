package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/repository/storage"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxAttachmentSize     = 5 * 1024 * 1024 // 5MB
	MinAttachmentWidth    = 50
	MinAttachmentHeight   = 50
	AttachmentMaxWidth    = 1600
	AttachmentJPEGQuality = 85
	AttachmentURLExpiry   = 15 * time.Minute
)

var (
	ErrAttachmentTooLarge           = errors.New("file too large. Maximum size is 5MB")
	ErrAttachmentInvalidFormat      = errors.New("invalid format. Supported: JPEG, PNG")
	ErrAttachmentTooSmall           = errors.New("image too small. Minimum 50x50 pixels")
	ErrAttachmentInvalidData        = errors.New("invalid image data")
	ErrAttachmentStorageUnavailable = errors.New("attachment storage not configured")
	ErrAttachmentMissing            = errors.New("transaction has no attachment")
)

// AllowedAttachmentExtensions lists the accepted receipt file extensions
var AllowedAttachmentExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AttachmentService stores receipt images for transactions
type AttachmentService struct {
	store           storage.AttachmentStore
	transactionRepo domain.TransactionRepository
	closures        *ClosureService
	eventPublisher  websocket.EventPublisher
}

// NewAttachmentService creates a new AttachmentService. store may be nil when
// S3 is not configured.
func NewAttachmentService(store storage.AttachmentStore, transactionRepo domain.TransactionRepository, closures *ClosureService) *AttachmentService {
	return &AttachmentService{
		store:           store,
		transactionRepo: transactionRepo,
		closures:        closures,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AttachmentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// IsEnabled indicates whether uploads are supported
func (s *AttachmentService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// Validate checks the size, extension and dimensions of an upload
func (s *AttachmentService) Validate(data []byte, filename string) error {
	_, err := decodeAttachment(data, filename)
	return err
}

func decodeAttachment(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedAttachmentExtensions[ext] {
		return nil, ErrAttachmentInvalidFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrAttachmentInvalidData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinAttachmentWidth || bounds.Dy() < MinAttachmentHeight {
		return nil, ErrAttachmentTooSmall
	}
	return img, nil
}

// Upload re-encodes the image as JPEG, stores it and links it to the
// transaction. A previous attachment is removed once the new one is linked.
func (s *AttachmentService) Upload(ctx context.Context, workspaceID int32, transactionID uuid.UUID, data []byte, filename string) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, ErrAttachmentStorageUnavailable
	}

	existing, err := s.transactionRepo.GetByID(ctx, workspaceID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.closures.EnsureOpen(ctx, workspaceID, existing.Date); err != nil {
		return nil, err
	}

	img, err := decodeAttachment(data, filename)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > AttachmentMaxWidth {
		img = imaging.Resize(img, AttachmentMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: AttachmentJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	objectPath := fmt.Sprintf("%d/transactions/%s/%s.jpg", workspaceID, transactionID, uuid.New())
	path, err := s.store.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.SetAttachment(ctx, workspaceID, transactionID, path)
	if err != nil {
		_ = s.store.Delete(ctx, path)
		return nil, err
	}

	if existing.AttachmentURL != nil && *existing.AttachmentURL != path {
		if err := s.store.Delete(ctx, *existing.AttachmentURL); err != nil {
			log.Warn().Err(err).Str("path", *existing.AttachmentURL).Msg("Failed to delete replaced attachment")
		}
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, websocket.TransactionUpdated(updated))
	}
	return updated, nil
}

// URL returns a temporary download link for the transaction's attachment
func (s *AttachmentService) URL(ctx context.Context, workspaceID int32, transactionID uuid.UUID) (string, error) {
	if !s.IsEnabled() {
		return "", ErrAttachmentStorageUnavailable
	}
	tx, err := s.transactionRepo.GetByID(ctx, workspaceID, transactionID)
	if err != nil {
		return "", err
	}
	if tx.AttachmentURL == nil || *tx.AttachmentURL == "" {
		return "", ErrAttachmentMissing
	}
	return s.store.GeneratePresignedURL(ctx, *tx.AttachmentURL, AttachmentURLExpiry)
}
