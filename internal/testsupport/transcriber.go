package testsupport

import (
	"context"
	"os"
	"sync"

	"captiontrans/internal/transcription"
)

// FakeTranscriber is a scripted transcription.Transcriber. It records every
// request and whether the uploaded file existed when it was called.
type FakeTranscriber struct {
	// Result is returned on success.
	Result transcription.Result
	// Err, when set, is returned instead of Result.
	Err error
	// Hook runs before the result is returned. A non-nil error replaces Err.
	Hook func(ctx context.Context, req transcription.Request) error

	mu        sync.Mutex
	requests  []transcription.Request
	sawUpload []bool
}

// Name implements transcription.Transcriber.
func (f *FakeTranscriber) Name() string { return "fake" }

// Transcribe implements transcription.Transcriber.
func (f *FakeTranscriber) Transcribe(ctx context.Context, req transcription.Request) (transcription.Result, error) {
	_, statErr := os.Stat(req.Path)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.sawUpload = append(f.sawUpload, statErr == nil)
	f.mu.Unlock()

	if f.Hook != nil {
		if err := f.Hook(ctx, req); err != nil {
			return transcription.Result{}, err
		}
	}
	if f.Err != nil {
		return transcription.Result{}, f.Err
	}
	return f.Result, nil
}

// Requests returns the requests received so far.
func (f *FakeTranscriber) Requests() []transcription.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transcription.Request(nil), f.requests...)
}

// SawUpload reports whether the stored upload existed during call i.
func (f *FakeTranscriber) SawUpload(i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return i >= 0 && i < len(f.sawUpload) && f.sawUpload[i]
}
