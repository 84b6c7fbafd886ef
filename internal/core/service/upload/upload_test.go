package upload_test

import (
	"context"
	"errors"
	"media-pipeline/internal/adapters/eventbroker"
	"media-pipeline/internal/adapters/media"
	"media-pipeline/internal/adapters/repository"
	"media-pipeline/internal/adapters/storage"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/core/service/credential"
	"media-pipeline/internal/core/service/upload"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	videoBucket = "videos"
	thumbBucket = "thumbnails"
)

var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

type harness struct {
	storage    *storage.MockStorage
	assets     *repository.MockAssetRepository
	profiles   *repository.MockProfileRepository
	creds      *credential.MockCredentialManager
	publisher  *eventbroker.MockPublisher
	transcoder port.Transcoder
	thumbnails port.ThumbnailExtractor
	cfg        config.PipelineConfig
	owner      uuid.UUID
}

func newHarness() *harness {
	h := &harness{
		storage:   storage.NewMockStorage(),
		assets:    repository.NewMockAssetRepository(),
		profiles:  repository.NewMockProfileRepository(),
		creds:     credential.NewMockCredentialManager(),
		publisher: eventbroker.NewMockPublisher(),
		cfg: config.PipelineConfig{
			SettleDelay:     0,
			BackoffInitial:  time.Millisecond,
			BackoffMax:      4 * time.Millisecond,
			ProbeAttempts:   6,
			ResolveAttempts: 8,
			CommitAttempts:  3,
			ThumbnailOffset: 600 * time.Millisecond,
		},
		owner: uuid.New(),
	}
	h.creds.On("EnsureFresh", mock.Anything).Return(domain.Credential{AccessToken: "token"}, nil)
	h.profiles.On("FindUsername", mock.Anything, h.owner).Return("alice", nil)
	h.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return h
}

func (h *harness) service() port.UploadService {
	deps := upload.Dependencies{
		Storage:     h.storage,
		Assets:      h.assets,
		Profiles:    h.profiles,
		Credentials: h.creds,
		Transcoder:  h.transcoder,
		Thumbnails:  h.thumbnails,
		Publisher:   h.publisher,
	}
	storageCfg := config.StorageConfig{
		VideoBucket:     videoBucket,
		ThumbnailBucket: thumbBucket,
		SignedURLTTL:    time.Hour,
	}
	return upload.NewUploadService(deps, h.cfg, storageCfg, nil, zerolog.Nop())
}

// visible makes the bucket listing lag behind while signed urls resolve
func (h *harness) visible() {
	h.storage.On("List", mock.Anything, videoBucket, h.owner.String()).Return([]domain.StoredObject{}, nil)
	h.storage.On("SignedURL", mock.Anything, videoBucket, mock.Anything, time.Hour).
		Return("https://cdn.test/signed", nil)
}

func writeVideo(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.Write(mp4Header)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func wait(t *testing.T, svc port.UploadService, id uuid.UUID) domain.JobSnapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := svc.Wait(ctx, id)
	require.NoError(t, err)
	return snap
}

func listed(objectPath string) []domain.StoredObject {
	return []domain.StoredObject{{Name: filepath.Base(objectPath), Size: 1}}
}

func TestUploadService_Start_HappyPath(t *testing.T) {
	// Arrange
	h := newHarness()
	const size = 50 * 1024 * 1024
	source := writeVideo(t, size)

	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(size), "video/mp4", "token").Return(nil).Once()
	h.storage.On("List", mock.Anything, videoBucket, h.owner.String()).Return([]domain.StoredObject{}, nil)
	h.storage.On("SignedURL", mock.Anything, videoBucket, mock.Anything, time.Hour).Return("https://cdn.test/signed", nil).Once()
	h.assets.On("Insert", mock.Anything, mock.MatchedBy(func(p domain.CommitPayload) bool {
		return p.MediaURL == "https://cdn.test/signed" && p.Username == "alice" && *p.Caption == "sunset" && p.ThumbnailURL == nil
	})).Return(nil).Once()

	svc := h.service()

	// Act
	id, err := svc.Start(context.Background(), domain.UploadRequest{
		SourcePath: source,
		Caption:    "  sunset ",
		OwnerID:    h.owner,
	})
	require.NoError(t, err)
	updates, err := svc.Watch(context.Background(), id)
	require.NoError(t, err)

	var progress []float64
	var last domain.JobSnapshot
	for snap := range updates {
		progress = append(progress, snap.Progress)
		last = snap
	}

	// Assert
	assert.Equal(t, domain.StageCompleted, last.Stage)
	assert.Equal(t, 1.0, last.Progress)
	assert.Equal(t, "https://cdn.test/signed", last.MediaURL)
	assert.True(t, strings.HasPrefix(last.ObjectPath, h.owner.String()+"/"+last.AssetID.String()))
	assert.Empty(t, last.Actions)
	assert.NotNil(t, last.FinishedAt)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1], "progress went backwards at update %d", i)
	}
	h.storage.AssertExpectations(t)
	h.assets.AssertNumberOfCalls(t, "Insert", 1)
	h.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventTypeAssetPublished && e.JobID == id
	}))
}

func TestUploadService_Start_Validation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, owner uuid.UUID) domain.UploadRequest
		wantErr error
	}{
		{
			name: "missing owner",
			setup: func(t *testing.T, owner uuid.UUID) domain.UploadRequest {
				return domain.UploadRequest{SourcePath: writeVideo(t, 1024)}
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "missing file",
			setup: func(t *testing.T, owner uuid.UUID) domain.UploadRequest {
				return domain.UploadRequest{SourcePath: filepath.Join(t.TempDir(), "nope.mp4"), OwnerID: owner}
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "empty file",
			setup: func(t *testing.T, owner uuid.UUID) domain.UploadRequest {
				path := filepath.Join(t.TempDir(), "empty.mp4")
				require.NoError(t, os.WriteFile(path, nil, 0o600))
				return domain.UploadRequest{SourcePath: path, OwnerID: owner}
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "not a video",
			setup: func(t *testing.T, owner uuid.UUID) domain.UploadRequest {
				path := filepath.Join(t.TempDir(), "notes.txt")
				require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))
				return domain.UploadRequest{SourcePath: path, OwnerID: owner}
			},
			wantErr: domain.ErrUnsupportedMedia,
		},
		{
			name: "unknown quality",
			setup: func(t *testing.T, owner uuid.UUID) domain.UploadRequest {
				return domain.UploadRequest{SourcePath: writeVideo(t, 1024), OwnerID: owner, Quality: "720p"}
			},
			wantErr: domain.ErrInvalidQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness()
			svc := h.service()

			// Act
			id, err := svc.Start(context.Background(), tt.setup(t, h.owner))

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, uuid.Nil, id)
			assert.Empty(t, svc.List(context.Background()))
			h.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadService_CommitFailure_RetryCommit(t *testing.T) {
	// Arrange
	h := newHarness()
	h.cfg.CommitAttempts = 2
	source := writeVideo(t, 4096)

	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(4096), "video/mp4", "token").Return(nil).Once()
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Twice()
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	// Act
	pending := wait(t, svc, id)

	// Assert
	require.Equal(t, domain.StagePendingCommit, pending.Stage)
	assert.Equal(t, domain.ErrorKindCommit, pending.ErrorKind)
	assert.Equal(t, []domain.Action{domain.ActionRetryCommit, domain.ActionCancel}, pending.Actions)
	assert.Equal(t, 0.9, pending.Progress)
	require.NotNil(t, pending.Payload)
	assert.Equal(t, pending.AssetID, pending.Payload.AssetID)
	assert.Contains(t, pending.UserMessage, "the video will not be uploaded again")

	// Act
	require.NoError(t, svc.RetryCommit(context.Background(), id))
	done := wait(t, svc, id)

	// Assert
	assert.Equal(t, domain.StageCompleted, done.Stage)
	assert.Equal(t, pending.AssetID, done.AssetID)
	assert.Equal(t, pending.Payload.MediaURL, done.MediaURL)
	assert.Nil(t, done.Payload)
	h.assets.AssertNumberOfCalls(t, "Insert", 3)
	h.storage.AssertNumberOfCalls(t, "Put", 1)
	h.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventTypeAssetCommitPending
	}))
}

func TestUploadService_DuplicateRowCountsAsCommitted(t *testing.T) {
	h := newHarness()
	source := writeVideo(t, 2048)
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(2048), "video/mp4", "token").Return(nil)
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(domain.ErrAssetExists).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	snap := wait(t, svc, id)

	assert.Equal(t, domain.StageCompleted, snap.Stage)
	h.assets.AssertNumberOfCalls(t, "Insert", 1)
}

func TestUploadService_RetryCommit_NotPending(t *testing.T) {
	// Arrange
	h := newHarness()
	source := writeVideo(t, 2048)
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(2048), "video/mp4", "token").Return(nil)
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)
	before := wait(t, svc, id)

	// Act
	err = svc.RetryCommit(context.Background(), id)

	// Assert
	assert.ErrorIs(t, err, domain.ErrCommitRetryNotAllowed)
	after, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before.Stage, after.Stage)
	h.assets.AssertNumberOfCalls(t, "Insert", 1)
}

func TestUploadService_LocatorFailure_Retry(t *testing.T) {
	// Arrange
	h := newHarness()
	source := writeVideo(t, 1024)

	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "token").Return(nil)
	h.storage.On("List", mock.Anything, videoBucket, h.owner.String()).Return([]domain.StoredObject{}, nil)
	h.storage.On("SignedURL", mock.Anything, videoBucket, mock.Anything, time.Hour).Return("", errors.New("object not found")).Times(8)
	h.storage.On("PublicURL", mock.Anything, videoBucket, mock.Anything).Return("", errors.New("bucket is private")).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	// Act
	failed := wait(t, svc, id)

	// Assert
	require.Equal(t, domain.StageFailed, failed.Stage)
	assert.Equal(t, domain.ErrorKindLocator, failed.ErrorKind)
	assert.Equal(t, []domain.Action{domain.ActionRetry, domain.ActionCancel}, failed.Actions)
	assert.Equal(t, 0.75, failed.Progress)
	assert.Contains(t, failed.UserMessage, "couldn't locate the object")
	h.storage.AssertNumberOfCalls(t, "SignedURL", 8)
	h.storage.AssertNumberOfCalls(t, "List", 6)
	h.assets.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	assert.ErrorIs(t, svc.RetryCommit(context.Background(), id), domain.ErrCommitRetryNotAllowed)

	// Arrange
	h.storage.On("SignedURL", mock.Anything, videoBucket, mock.Anything, time.Hour).Return("https://cdn.test/second", nil)
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	updates, err := svc.Watch(context.Background(), id)
	require.NoError(t, err)

	// Act
	require.NoError(t, svc.Retry(context.Background(), id))
	var sawReset bool
	for snap := range updates {
		if snap.Stage == domain.StageIdle && snap.Progress == 0 && snap.Attempt == 2 {
			sawReset = true
		}
	}
	done := wait(t, svc, id)

	// Assert
	assert.True(t, sawReset, "retry did not reset progress")
	assert.Equal(t, domain.StageCompleted, done.Stage)
	assert.Equal(t, 2, done.Attempt)
	assert.NotEqual(t, failed.AssetID, done.AssetID)
	assert.Equal(t, "https://cdn.test/second", done.MediaURL)
	h.storage.AssertNumberOfCalls(t, "Put", 2)
}

func TestUploadService_ResolveFallsBackToPublicURL(t *testing.T) {
	h := newHarness()
	source := writeVideo(t, 1024)
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "token").Return(nil)
	h.storage.On("List", mock.Anything, videoBucket, h.owner.String()).Return([]domain.StoredObject{}, nil)
	h.storage.On("SignedURL", mock.Anything, videoBucket, mock.Anything, time.Hour).Return("", nil)
	h.storage.On("PublicURL", mock.Anything, videoBucket, mock.Anything).Return("https://cdn.test/public", nil).Once()
	h.assets.On("Insert", mock.Anything, mock.MatchedBy(func(p domain.CommitPayload) bool {
		return p.MediaURL == "https://cdn.test/public"
	})).Return(nil).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	snap := wait(t, svc, id)

	assert.Equal(t, domain.StageCompleted, snap.Stage)
	assert.Equal(t, "https://cdn.test/public", snap.MediaURL)
	h.storage.AssertNumberOfCalls(t, "SignedURL", 8)
}

func TestUploadService_ProbeStopsOnceListed(t *testing.T) {
	h := newHarness()
	source := writeVideo(t, 1024)
	var objectPath string
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "token").
		Run(func(args mock.Arguments) { objectPath = args.String(2) }).
		Return(nil)
	h.storage.On("List", mock.Anything, videoBucket, h.owner.String()).Return([]domain.StoredObject{}, nil).Once()
	h.storage.On("List", mock.Anything, videoBucket, h.owner.String()).
		Return(func(ctx context.Context, bucket, dir string) []domain.StoredObject {
			return listed(objectPath)
		}, nil).Once()
	h.storage.On("SignedURL", mock.Anything, videoBucket, mock.Anything, time.Hour).Return("https://cdn.test/signed", nil)
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(nil)

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	snap := wait(t, svc, id)

	assert.Equal(t, domain.StageCompleted, snap.Stage)
	h.storage.AssertNumberOfCalls(t, "List", 2)
}

func TestUploadService_TransportFailure(t *testing.T) {
	h := newHarness()
	source := writeVideo(t, 1024)
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "token").
		Return(&domain.TransportError{Op: "upload", StatusCode: 413, Err: errors.New("payload too large")})

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	snap := wait(t, svc, id)

	assert.Equal(t, domain.StageFailed, snap.Stage)
	assert.Equal(t, domain.ErrorKindTransport, snap.ErrorKind)
	assert.Contains(t, snap.UserMessage, "lower quality profile")
	h.storage.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_CancelDuringUpload(t *testing.T) {
	// Arrange
	h := newHarness()
	source := writeVideo(t, 1024)
	started := make(chan struct{})
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "token").
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.Canceled).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)
	<-started

	uploading, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, domain.StageUploading, uploading.Stage)
	assert.Equal(t, []domain.Action{domain.ActionCancel}, uploading.Actions)

	// Act
	require.NoError(t, svc.Cancel(context.Background(), id))
	snap := wait(t, svc, id)

	// Assert
	assert.Equal(t, domain.StageCancelled, snap.Stage)
	assert.Equal(t, domain.ErrorKindCancelled, snap.ErrorKind)
	assert.Empty(t, snap.Actions)
	h.assets.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	assert.ErrorIs(t, svc.Cancel(context.Background(), id), domain.ErrJobTerminal)
	assert.ErrorIs(t, svc.Retry(context.Background(), id), domain.ErrRetryNotAllowed)
}

func TestUploadService_CancelPendingCommit(t *testing.T) {
	h := newHarness()
	h.cfg.CommitAttempts = 1
	source := writeVideo(t, 1024)
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "token").Return(nil)
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)
	require.Equal(t, domain.StagePendingCommit, wait(t, svc, id).Stage)

	require.NoError(t, svc.Cancel(context.Background(), id))

	snap, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCancelled, snap.Stage)
	assert.Nil(t, snap.Payload)
	assert.ErrorIs(t, svc.RetryCommit(context.Background(), id), domain.ErrCommitRetryNotAllowed)
}

func TestUploadService_TranscodeAndThumbnail(t *testing.T) {
	// Arrange
	h := newHarness()
	source := writeVideo(t, 4096)
	transcoded := writeVideo(t, 2048)

	transcoder := media.NewMockTranscoder()
	transcoder.On("Transcode", mock.Anything, source, domain.Quality1080p).Return(transcoded, nil).Once()
	thumbnails := media.NewMockThumbnailExtractor()
	thumbnails.On("ExtractThumbnail", mock.Anything, transcoded, 600*time.Millisecond).Return([]byte{0xff, 0xd8, 0xff}, nil).Once()
	h.transcoder = transcoder
	h.thumbnails = thumbnails

	h.storage.On("Put", mock.Anything, videoBucket, mock.MatchedBy(func(p string) bool {
		return strings.HasSuffix(p, ".mp4")
	}), int64(2048), "video/mp4", "token").Return(nil).Once()
	h.storage.On("Put", mock.Anything, thumbBucket, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, h.owner.String()+"/thumb_") && strings.HasSuffix(p, ".jpg")
	}), int64(3), "image/jpeg", "token").Return(nil).Once()
	h.storage.On("PublicURL", mock.Anything, thumbBucket, mock.Anything).Return("https://cdn.test/thumb.jpg", nil).Once()
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.MatchedBy(func(p domain.CommitPayload) bool {
		return p.ThumbnailURL != nil && *p.ThumbnailURL == "https://cdn.test/thumb.jpg"
	})).Return(nil).Once()

	svc := h.service()

	// Act
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner, Quality: domain.Quality1080p})
	require.NoError(t, err)
	snap := wait(t, svc, id)

	// Assert
	assert.Equal(t, domain.StageCompleted, snap.Stage)
	require.NotNil(t, snap.ThumbnailURL)
	assert.Equal(t, "https://cdn.test/thumb.jpg", *snap.ThumbnailURL)
	_, statErr := os.Stat(transcoded)
	assert.True(t, os.IsNotExist(statErr), "transcoded temp file should be removed")
	_, statErr = os.Stat(source)
	assert.NoError(t, statErr, "source file must be left alone")
	transcoder.AssertExpectations(t)
	thumbnails.AssertExpectations(t)
	h.storage.AssertExpectations(t)
}

func TestUploadService_TranscodeAndThumbnailFailuresAreNotFatal(t *testing.T) {
	h := newHarness()
	source := writeVideo(t, 4096)

	transcoder := media.NewMockTranscoder()
	transcoder.On("Transcode", mock.Anything, source, domain.Quality4K).Return("", errors.New("ffmpeg missing"))
	thumbnails := media.NewMockThumbnailExtractor()
	thumbnails.On("ExtractThumbnail", mock.Anything, source, mock.Anything).Return(nil, errors.New("no frame"))
	h.transcoder = transcoder
	h.thumbnails = thumbnails

	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(4096), "video/mp4", "token").Return(nil).Once()
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.MatchedBy(func(p domain.CommitPayload) bool {
		return p.ThumbnailURL == nil
	})).Return(nil).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner, Quality: domain.Quality4K})
	require.NoError(t, err)

	snap := wait(t, svc, id)

	assert.Equal(t, domain.StageCompleted, snap.Stage)
	assert.Nil(t, snap.ThumbnailURL)
	h.storage.AssertNotCalled(t, "Put", mock.Anything, thumbBucket, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_UsesRefreshedTokenAndDefaultUsername(t *testing.T) {
	h := newHarness()
	h.creds = credential.NewMockCredentialManager()
	h.creds.On("EnsureFresh", mock.Anything).Return(domain.Credential{AccessToken: "fresh"}, nil).Once()
	h.profiles = repository.NewMockProfileRepository()
	h.profiles.On("FindUsername", mock.Anything, h.owner).Return("", domain.ErrProfileNotFound)
	source := writeVideo(t, 1024)

	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, int64(1024), "video/mp4", "fresh").Return(nil).Once()
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.MatchedBy(func(p domain.CommitPayload) bool {
		return p.Username == domain.DefaultUsername && p.Caption == nil
	})).Return(nil).Once()

	svc := h.service()
	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: source, OwnerID: h.owner})
	require.NoError(t, err)

	snap := wait(t, svc, id)

	assert.Equal(t, domain.StageCompleted, snap.Stage)
	h.storage.AssertExpectations(t)
	h.assets.AssertExpectations(t)
}

func TestUploadService_UnknownJob(t *testing.T) {
	svc := newHarness().service()
	id := uuid.New()

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.ErrorIs(t, svc.Cancel(context.Background(), id), domain.ErrJobNotFound)
	assert.ErrorIs(t, svc.Retry(context.Background(), id), domain.ErrJobNotFound)
	assert.ErrorIs(t, svc.RetryCommit(context.Background(), id), domain.ErrJobNotFound)
	_, err = svc.Watch(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestUploadService_PruneAndList(t *testing.T) {
	// Arrange
	h := newHarness()
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, mock.Anything, "video/mp4", "token").Return(nil)
	h.visible()
	h.assets.On("Insert", mock.Anything, mock.Anything).Return(nil)
	svc := h.service()

	first, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: writeVideo(t, 1024), OwnerID: h.owner})
	require.NoError(t, err)
	wait(t, svc, first)
	second, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: writeVideo(t, 1024), OwnerID: h.owner})
	require.NoError(t, err)
	wait(t, svc, second)

	// Act
	all := svc.List(context.Background())
	kept := svc.Prune(time.Now().Add(-time.Hour))
	pruned := svc.Prune(time.Now().Add(time.Minute))

	// Assert
	require.Len(t, all, 2)
	assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt))
	assert.Equal(t, 0, kept)
	assert.Equal(t, 2, pruned)
	assert.Empty(t, svc.List(context.Background()))
	_, err = svc.Get(context.Background(), first)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestUploadService_Shutdown(t *testing.T) {
	h := newHarness()
	started := make(chan struct{})
	h.storage.On("Put", mock.Anything, videoBucket, mock.Anything, mock.Anything, "video/mp4", "token").
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.Canceled)
	svc := h.service()

	id, err := svc.Start(context.Background(), domain.UploadRequest{SourcePath: writeVideo(t, 1024), OwnerID: h.owner})
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	snap, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCancelled, snap.Stage)
}
