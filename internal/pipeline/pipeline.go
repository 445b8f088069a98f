package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"captiontrans/internal/config"
	"captiontrans/internal/history"
	"captiontrans/internal/language"
	"captiontrans/internal/logging"
	"captiontrans/internal/services"
	"captiontrans/internal/srt"
	"captiontrans/internal/transcription"
	"captiontrans/internal/upload"
)

const (
	component = "pipeline"
	// DefaultStem names the attachment when the upload has no usable stem.
	DefaultStem     = "subtitles"
	attachmentLabel = "_en.srt"
)

// Stage marks progress through Process.
type Stage string

const (
	StageStored      Stage = "stored"
	StageTranscribed Stage = "transcribed"
)

// Input is one subtitle request.
type Input struct {
	Filename     string
	Body         io.Reader
	Translate    bool
	DirectSRT    bool
	LanguageHint string
	// AfterStore, when set, runs once Body has been stored and may fill the
	// option fields from data that follows the file on the wire.
	AfterStore func(*Input) error
	// OnStage, when set, is called as each stage completes.
	OnStage func(Stage)
}

// applyOptions copies the option fields of in onto req and rec.
func applyOptions(in *Input, req *transcription.Request, rec *history.Record) {
	req.Translate = in.Translate
	req.Format = transcription.FormatFor(in.DirectSRT)
	rec.Mode = req.Mode()
	rec.Format = string(req.Format)
}

// Output is a rendered subtitle document.
type Output struct {
	SRT            string
	AttachmentName string
	Cues           int
	Digest         string
	Size           int64
	// Language is the ISO 639-1 code the backend reported, if any.
	Language string
	Backend  string
}

// Service runs subtitle requests against one transcriber.
type Service struct {
	transcriber transcription.Transcriber
	history     *history.Store
	logger      *slog.Logger
	policy      upload.Policy
	now         func() time.Time
}

// New constructs a Service. store may be nil to disable history.
func New(cfg *config.Config, transcriber transcription.Transcriber, store *history.Store, logger *slog.Logger) *Service {
	return &Service{
		transcriber: transcriber,
		history:     store,
		logger:      logging.NewComponentLogger(logger, component),
		policy: upload.Policy{
			AllowedExtensions: upload.SupportedExtensions,
			MaxBytes:          cfg.MaxUploadBytes(),
			Dir:               cfg.UploadDir(),
		},
		now: time.Now,
	}
}

// Policy returns the upload policy applied by Process.
func (s *Service) Policy() upload.Policy {
	return s.policy
}

// Backend reports the transcriber name.
func (s *Service) Backend() string {
	if s.transcriber == nil {
		return ""
	}
	return s.transcriber.Name()
}

// AttachmentName returns the download name for subtitles built from an
// upload with the given stem.
func AttachmentName(stem string) string {
	stem = strings.TrimSpace(stem)
	if stem == "" {
		stem = DefaultStem
	}
	return stem + attachmentLabel
}

// Process runs the full request. Returned errors always carry one of the
// services markers.
func (s *Service) Process(ctx context.Context, in Input) (*Output, error) {
	logger := logging.WithContext(ctx, s.logger)
	started := s.now()
	req := transcription.Request{Filename: strings.TrimSpace(in.Filename)}
	rec := history.Record{
		Filename: req.Filename,
		Backend:  s.Backend(),
	}
	applyOptions(&in, &req, &rec)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		rec.RequestID = rid
	}

	out, err := s.process(ctx, logger, in, req, &rec)
	if err != nil {
		err = ensureMarked(err)
	}
	s.finish(ctx, logger, rec, out, err, started)
	return out, err
}

func (s *Service) process(ctx context.Context, logger *slog.Logger, in Input, req transcription.Request, rec *history.Record) (*Output, error) {
	if s.transcriber == nil {
		return nil, services.Wrap(services.ErrUnexpected, component, "process", "", errors.New("no transcriber configured"))
	}

	artifact, err := upload.Store(ctx, in.Body, in.Filename, s.policy, logger)
	if err != nil {
		return nil, err
	}
	defer artifact.Remove(logger)
	rec.SizeBytes = artifact.Size
	rec.Digest = artifact.Digest
	if in.AfterStore != nil {
		if err := in.AfterStore(&in); err != nil {
			return nil, err
		}
		applyOptions(&in, &req, rec)
	}
	notify(in.OnStage, StageStored)

	logger.Debug("upload stored",
		logging.String("filename", artifact.Filename),
		logging.Int64("size_bytes", artifact.Size),
		logging.String("digest", artifact.Digest),
		logging.String("upload_path", artifact.Path),
	)

	hint, err := language.NormalizeHint(in.LanguageHint)
	if err != nil {
		return nil, err
	}
	rec.LanguageHint = hint

	req.Path = artifact.Path
	req.Language = hint
	result, err := s.transcriber.Transcribe(ctx, req)
	if err != nil {
		return nil, err
	}
	notify(in.OnStage, StageTranscribed)

	content := result.SRT()
	if !result.Structured {
		for _, issue := range srt.Inspect(content) {
			logging.WarnWithContext(logger, "backend subtitles look unusual", "subtitle_validation",
				logging.String("issue", issue),
				logging.String(logging.FieldErrorHint, "inspect the backend output for this file"),
				logging.String(logging.FieldImpact, "subtitles returned unchanged"),
			)
		}
	}

	out := &Output{
		SRT:            content,
		AttachmentName: AttachmentName(artifact.Stem()),
		Cues:           srt.CountCues(content),
		Digest:         artifact.Digest,
		Size:           artifact.Size,
		Language:       language.ToISO2(result.Language),
		Backend:        s.Backend(),
	}
	rec.DetectedLanguage = out.Language
	rec.Cues = out.Cues
	return out, nil
}

func (s *Service) finish(ctx context.Context, logger *slog.Logger, rec history.Record, out *Output, err error, started time.Time) {
	elapsed := s.now().Sub(started)
	rec.DurationMS = elapsed.Milliseconds()

	if err != nil {
		kind := services.Classify(err)
		rec.Outcome = history.OutcomeFailure
		rec.ErrorCode = string(kind)
		attrs := []logging.Attr{
			logging.String("filename", rec.Filename),
			logging.String("mode", rec.Mode),
			logging.String(logging.FieldErrorCode, string(kind)),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		}
		if kind.HTTPStatus() >= 500 {
			logging.ErrorWithContext(logger, "subtitle request failed", "request_failed",
				append(attrs, logging.String(logging.FieldErrorHint, hintFor(kind)))...)
		} else {
			logger.Info("subtitle request rejected", logging.Args(attrs...)...)
		}
	} else {
		rec.Outcome = history.OutcomeSuccess
		logger.Info("subtitles ready",
			logging.String("filename", rec.Filename),
			logging.String("mode", rec.Mode),
			logging.String("format", rec.Format),
			logging.Int("cues", out.Cues),
			logging.Int64("size_bytes", out.Size),
			logging.String("detected_language", language.DisplayName(out.Language)),
			logging.Duration("elapsed", elapsed),
		)
	}

	if s.history == nil {
		return
	}
	// The request context may already be cancelled; the record still matters.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, recErr := s.history.Record(recordCtx, rec); recErr != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write",
			logging.Error(recErr),
			logging.String(logging.FieldErrorHint, "check state_dir permissions and disk space"),
			logging.String(logging.FieldImpact, "request missing from history"),
		)
	}
}

func hintFor(kind services.Kind) string {
	switch kind {
	case services.KindStorage:
		return "check upload.temp_dir permissions and free space"
	case services.KindCollaborator:
		return "check backend credentials and reachability with 'captiontrans status'"
	default:
		return "check logs for details"
	}
}

func ensureMarked(err error) error {
	for _, marker := range []error{
		services.ErrInvalidInput,
		services.ErrPayloadTooLarge,
		services.ErrEmptyUpload,
		services.ErrStorage,
		services.ErrCollaborator,
		services.ErrUnexpected,
	} {
		if errors.Is(err, marker) {
			return err
		}
	}
	return services.Wrap(services.ErrUnexpected, component, "process", "", err)
}

func notify(fn func(Stage), stage Stage) {
	if fn != nil {
		fn(stage)
	}
}
