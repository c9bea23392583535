package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func setupAttachmentService() (*AttachmentService, *testutil.MockAttachmentStore, *testutil.MockTransactionRepository, *testutil.MockClosureRepository) {
	store := testutil.NewMockAttachmentStore()
	txRepo := testutil.NewMockTransactionRepository()
	closureRepo := testutil.NewMockClosureRepository()
	svc := NewAttachmentService(store, txRepo, NewClosureService(closureRepo))
	return svc, store, txRepo, closureRepo
}

func TestAttachment_Validate(t *testing.T) {
	svc, _, _, _ := setupAttachmentService()

	assert.NoError(t, svc.Validate(createTestPNG(100, 100), "nota.png"))
	assert.NoError(t, svc.Validate(createTestPNG(100, 100), "NOTA.JPEG"))
	assert.ErrorIs(t, svc.Validate(createTestPNG(100, 100), "nota.webp"), ErrAttachmentInvalidFormat)
	assert.ErrorIs(t, svc.Validate(createTestPNG(40, 100), "nota.png"), ErrAttachmentTooSmall)
	assert.ErrorIs(t, svc.Validate([]byte("not an image"), "nota.png"), ErrAttachmentInvalidData)
	assert.ErrorIs(t, svc.Validate(make([]byte, MaxAttachmentSize+1), "nota.png"), ErrAttachmentTooLarge)
}

func TestAttachment_UploadResizesAndLinks(t *testing.T) {
	svc, store, txRepo, _ := setupAttachmentService()
	publisher := &testutil.MockEventPublisher{}
	svc.SetEventPublisher(publisher)
	tx := txRepo.AddTransaction(&domain.Transaction{WorkspaceID: testWorkspaceID, Date: "2024-03-05"})

	updated, err := svc.Upload(context.Background(), testWorkspaceID, tx.ID, createTestPNG(2000, 100), "nota.png")
	require.NoError(t, err)
	require.NotNil(t, updated.AttachmentURL)

	path := *updated.AttachmentURL
	assert.True(t, strings.HasPrefix(path, "1/transactions/"+tx.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	stored, ok := store.Objects[path]
	require.True(t, ok)
	decoded, err := jpeg.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, AttachmentMaxWidth, decoded.Bounds().Dx())
	assert.Equal(t, 80, decoded.Bounds().Dy())
	assert.Equal(t, []string{"transaction.updated"}, publisher.Types())
}

func TestAttachment_UploadReplacesPrevious(t *testing.T) {
	svc, store, txRepo, _ := setupAttachmentService()
	tx := txRepo.AddTransaction(&domain.Transaction{WorkspaceID: testWorkspaceID, Date: "2024-03-05"})

	first, err := svc.Upload(context.Background(), testWorkspaceID, tx.ID, createTestPNG(100, 100), "a.png")
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), testWorkspaceID, tx.ID, createTestPNG(100, 100), "b.png")
	require.NoError(t, err)

	assert.NotEqual(t, *first.AttachmentURL, *second.AttachmentURL)
	assert.Len(t, store.Objects, 1)
	_, ok := store.Objects[*second.AttachmentURL]
	assert.True(t, ok)
}

func TestAttachment_UploadErrors(t *testing.T) {
	svc, store, txRepo, closureRepo := setupAttachmentService()
	tx := txRepo.AddTransaction(&domain.Transaction{WorkspaceID: testWorkspaceID, Date: "2024-03-05"})

	_, err := svc.Upload(context.Background(), testWorkspaceID, uuid.New(), createTestPNG(100, 100), "a.png")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	store.UploadErr = assert.AnError
	_, err = svc.Upload(context.Background(), testWorkspaceID, tx.ID, createTestPNG(100, 100), "a.png")
	assert.ErrorIs(t, err, assert.AnError)
	store.UploadErr = nil

	closureRepo.Close(testWorkspaceID, 2024, 3)
	_, err = svc.Upload(context.Background(), testWorkspaceID, tx.ID, createTestPNG(100, 100), "a.png")
	assert.ErrorIs(t, err, domain.ErrPeriodLocked)
	assert.Empty(t, store.Objects)
}

func TestAttachment_Disabled(t *testing.T) {
	txRepo := testutil.NewMockTransactionRepository()
	svc := NewAttachmentService(nil, txRepo, NewClosureService(testutil.NewMockClosureRepository()))

	assert.False(t, svc.IsEnabled())
	_, err := svc.Upload(context.Background(), testWorkspaceID, uuid.New(), createTestPNG(100, 100), "a.png")
	assert.ErrorIs(t, err, ErrAttachmentStorageUnavailable)
	_, err = svc.URL(context.Background(), testWorkspaceID, uuid.New())
	assert.ErrorIs(t, err, ErrAttachmentStorageUnavailable)
}

func TestAttachment_URL(t *testing.T) {
	svc, _, txRepo, _ := setupAttachmentService()
	path := "1/transactions/x/y.jpg"
	withAttachment := txRepo.AddTransaction(&domain.Transaction{WorkspaceID: testWorkspaceID, Date: "2024-03-05", AttachmentURL: &path})
	without := txRepo.AddTransaction(&domain.Transaction{WorkspaceID: testWorkspaceID, Date: "2024-03-05"})

	url, err := svc.URL(context.Background(), testWorkspaceID, withAttachment.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/1/transactions/x/y.jpg?expires=900", url)

	_, err = svc.URL(context.Background(), testWorkspaceID, without.ID)
	assert.ErrorIs(t, err, ErrAttachmentMissing)
}
