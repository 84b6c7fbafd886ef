package upload

import (
	"context"
	"media-pipeline/internal/core/domain"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const watcherBuffer = 16

// job is the mutable state of one upload. Only the goroutine running the job
// writes stage and progress, every access goes through mu.
type job struct {
	mu sync.RWMutex

	id          uuid.UUID
	req         domain.UploadRequest
	contentType string
	extension   string

	stage          domain.Stage
	stageStartedAt time.Time
	progress       float64
	attempt        int
	assetID        uuid.UUID
	objectPath     string
	mediaURL       string
	thumbnailURL   *string
	payload        *domain.CommitPayload
	lastErr        error
	userMessage    string
	tempFiles      []string

	cancel context.CancelFunc
	done   chan struct{}

	watchers    map[int]chan domain.JobSnapshot
	nextWatcher int

	createdAt  time.Time
	updatedAt  time.Time
	finishedAt *time.Time

	logger zerolog.Logger
}

func newJob(req domain.UploadRequest, contentType, extension string, now time.Time, log zerolog.Logger) *job {
	id := uuid.New()
	done := make(chan struct{})
	close(done)
	return &job{
		id:             id,
		req:            req,
		contentType:    contentType,
		extension:      extension,
		stage:          domain.StageIdle,
		stageStartedAt: now,
		attempt:        1,
		assetID:        uuid.New(),
		done:           done,
		watchers:       make(map[int]chan domain.JobSnapshot),
		createdAt:      now,
		updatedAt:      now,
		logger:         log.With().Str("job_id", id.String()).Logger(),
	}
}

// snapshotLocked must be called with mu held
func (j *job) snapshotLocked() domain.JobSnapshot {
	snap := domain.JobSnapshot{
		ID:          j.id,
		Stage:       j.stage,
		Progress:    j.progress,
		Attempt:     j.attempt,
		AssetID:     j.assetID,
		ObjectPath:  j.objectPath,
		MediaURL:    j.mediaURL,
		ErrorKind:   domain.KindOf(j.lastErr),
		UserMessage: j.userMessage,
		Actions:     j.stage.Actions(),
		CreatedAt:   j.createdAt,
		UpdatedAt:   j.updatedAt,
	}
	if j.thumbnailURL != nil {
		thumb := *j.thumbnailURL
		snap.ThumbnailURL = &thumb
	}
	if j.lastErr != nil {
		snap.LastError = j.lastErr.Error()
	}
	if j.payload != nil {
		payload := *j.payload
		snap.Payload = &payload
	}
	if j.finishedAt != nil {
		finished := *j.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}

func (j *job) snapshot() domain.JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.snapshotLocked()
}

// notifyLocked pushes the current snapshot to every watcher, dropping the
// oldest queued snapshot of a slow watcher.
func (j *job) notifyLocked(now time.Time) {
	j.updatedAt = now
	snap := j.snapshotLocked()
	for _, ch := range j.watchers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	if j.stage.IsTerminal() {
		j.closeWatchersLocked()
	}
}

func (j *job) closeWatchersLocked() {
	for id, ch := range j.watchers {
		close(ch)
		delete(j.watchers, id)
	}
}

func (j *job) subscribe() (<-chan domain.JobSnapshot, func()) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ch := make(chan domain.JobSnapshot, watcherBuffer)
	ch <- j.snapshotLocked()
	if j.stage.IsTerminal() {
		close(ch)
		return ch, func() {}
	}

	id := j.nextWatcher
	j.nextWatcher++
	j.watchers[id] = ch

	return ch, func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if w, ok := j.watchers[id]; ok {
			close(w)
			delete(j.watchers, id)
		}
	}
}

// setStage moves the job and returns how long the previous stage lasted
func (j *job) setStage(stage domain.Stage, now time.Time) (domain.Stage, time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	prev, elapsed := j.stage, now.Sub(j.stageStartedAt)
	j.stage = stage
	j.stageStartedAt = now
	j.notifyLocked(now)
	return prev, elapsed
}

// advance raises progress, never lowering it within an attempt
func (j *job) advance(p float64, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if p > 1 {
		p = 1
	}
	if p <= j.progress {
		return
	}
	j.progress = p
	j.notifyLocked(now)
}

func (j *job) setObjectPath(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.objectPath = path
}

func (j *job) setMediaURL(url string, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.mediaURL = url
	j.notifyLocked(now)
}

func (j *job) setPayload(payload domain.CommitPayload) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.payload = &payload
	j.thumbnailURL = payload.ThumbnailURL
}

func (j *job) addTempFile(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tempFiles = append(j.tempFiles, path)
}

func (j *job) removeTempFiles() {
	j.mu.Lock()
	files := j.tempFiles
	j.tempFiles = nil
	j.mu.Unlock()

	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			j.logger.Warn().Err(err).Str("path", f).Msg("failed to remove temp file")
		}
	}
}
