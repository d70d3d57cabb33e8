package capture

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
)

// Phase is the lifecycle stage of one capture attempt.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhasePermissionCheck Phase = "permission-check"
	PhaseCapturing       Phase = "capturing"
	PhaseUploading       Phase = "uploading"
	PhaseRefreshing      Phase = "refreshing"
	PhaseSettled         Phase = "settled"
	PhaseAborted         Phase = "aborted"
	PhaseFailed          Phase = "failed"
)

// User-facing abort reasons. A silent abort (user cancellation) carries none.
const (
	ReasonMissingContext   = "missing context"
	ReasonPermissionNeeded = "permission needed"
)

// Every uploaded snapshot carries this annotation, matching what the backend
// expects from manual captures.
const snapshotNotes = "Manual snapshot"

// ErrBusy rejects a new attempt while another one is outside a terminal phase.
var ErrBusy = errors.New("a capture attempt is already in flight")

// Uploader submits one snapshot to the attendance-marking endpoint.
type Uploader interface {
	MarkAttendance(ctx context.Context, courseID, sessionID int64, notes string, image *Image) error
}

// Refresher re-reads the record set for a session after a successful upload.
type Refresher interface {
	Refresh(ctx context.Context, sessionID int64) error
}

// Attempt is the transient state of one capture-upload cycle.
type Attempt struct {
	ID        string
	CourseID  *int64
	SessionID *int64
	Phase     Phase

	// Reason explains an abort to the user; empty for silent cancellation.
	Reason string
	// Err is set when the attempt fails outright.
	Err error
	// RefreshErr is set when the upload succeeded but the subsequent record
	// refresh did not. The attempt still settles; the upload is not rolled back.
	RefreshErr error
}

// Workflow drives the capture state machine for one session screen instance.
// At most one attempt may be in flight at a time.
type Workflow struct {
	provider  Provider
	uploader  Uploader
	refresher Refresher
	logger    *zap.Logger

	busy atomic.Bool
}

// NewWorkflow wires a capture workflow.
func NewWorkflow(provider Provider, uploader Uploader, refresher Refresher, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		provider:  provider,
		uploader:  uploader,
		refresher: refresher,
		logger:    logger,
	}
}

// Busy reports whether an attempt is currently in flight.
func (w *Workflow) Busy() bool {
	return w.busy.Load()
}

// Run executes one attempt strictly in sequence: permission before capture,
// capture before upload, upload before refresh. The terminal state is carried
// on the returned Attempt; the only call-level error is ErrBusy.
func (w *Workflow) Run(ctx context.Context, courseID, sessionID *int64) (*Attempt, error) {
	if !w.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer w.busy.Store(false)

	attempt := &Attempt{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		SessionID: sessionID,
		Phase:     PhaseIdle,
	}

	if courseID == nil || sessionID == nil {
		attempt.Phase = PhaseAborted
		attempt.Reason = ReasonMissingContext
		return attempt, nil
	}

	attempt.Phase = PhasePermissionCheck
	granted, err := w.provider.RequestPermission(ctx)
	if err != nil || !granted {
		if err != nil {
			w.logger.Warn("camera permission request failed", zap.String("attempt", attempt.ID), zap.Error(err))
		}
		attempt.Phase = PhaseAborted
		attempt.Reason = ReasonPermissionNeeded
		return attempt, nil
	}

	attempt.Phase = PhaseCapturing
	image, err := w.provider.Capture(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			attempt.Phase = PhaseAborted
			return attempt, nil
		}
		attempt.Phase = PhaseFailed
		attempt.Err = appErrors.Wrap(err, appErrors.ErrUpload.Code, 0, appErrors.ErrUpload.Message)
		return attempt, nil
	}

	attempt.Phase = PhaseUploading
	if err := w.uploader.MarkAttendance(ctx, *courseID, *sessionID, snapshotNotes, image); err != nil {
		w.logger.Warn("snapshot upload failed",
			zap.String("attempt", attempt.ID),
			zap.Int64("course_id", *courseID),
			zap.Int64("session_id", *sessionID),
			zap.Error(err))
		attempt.Phase = PhaseFailed
		attempt.Err = appErrors.Wrap(err, appErrors.ErrUpload.Code, 0, appErrors.ErrUpload.Message)
		return attempt, nil
	}

	attempt.Phase = PhaseRefreshing
	if err := w.refresher.Refresh(ctx, *sessionID); err != nil {
		// The upload already succeeded; report the stale view without
		// rolling the attempt back to a failure.
		attempt.RefreshErr = err
	}

	attempt.Phase = PhaseSettled
	return attempt, nil
}
