package whisperapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captiontrans/internal/services"
	"captiontrans/internal/srt"
	"captiontrans/internal/transcription"
)

type capturedForm struct {
	path        string
	auth        string
	model       string
	format      string
	language    string
	hasLanguage bool
	filename    string
	partType    string
	payload     string
}

func newWhisperServer(t *testing.T, status int, body string) (*httptest.Server, *capturedForm) {
	t.Helper()
	captured := &capturedForm{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		captured.model = r.FormValue("model")
		captured.format = r.FormValue("response_format")
		_, captured.hasLanguage = r.MultipartForm.Value["language"]
		captured.language = r.FormValue("language")
		if file, header, err := r.FormFile("file"); err == nil {
			captured.filename = header.Filename
			captured.partType = header.Header.Get("Content-Type")
			data, _ := io.ReadAll(file)
			captured.payload = string(data)
			file.Close()
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func writeMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload-abc.wav")
	if err := os.WriteFile(path, []byte("RIFF fake"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

func TestTranscribeStreamsMultipartAndPassesThroughSRT(t *testing.T) {
	const body = "1\n00:00:00,000 --> 00:00:02,000\nHola\n"
	server, captured := newWhisperServer(t, http.StatusOK, body)
	client := NewClient(Config{BaseURL: server.URL + "/", APIKey: "local-key", Model: "large-v3"})

	result, err := client.Transcribe(context.Background(), transcription.Request{
		Path:     writeMedia(t),
		Filename: "clip.wav",
		Format:   transcription.FormatSRT,
		Language: "es",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Structured || result.Preformatted != body {
		t.Fatalf("expected passthrough, got %+v", result)
	}
	if captured.path != "/v1/audio/transcriptions" {
		t.Fatalf("unexpected path %q", captured.path)
	}
	if captured.auth != "Bearer local-key" {
		t.Fatalf("unexpected authorization %q", captured.auth)
	}
	if captured.model != "large-v3" || captured.format != "srt" || captured.language != "es" {
		t.Fatalf("unexpected form fields %+v", captured)
	}
	if captured.filename != "clip.wav" || captured.partType != "audio/wav" || captured.payload != "RIFF fake" {
		t.Fatalf("unexpected file part %+v", captured)
	}
}

func TestTranslateOmitsLanguageAndAuth(t *testing.T) {
	server, captured := newWhisperServer(t, http.StatusOK, "")
	client := NewClient(Config{BaseURL: server.URL})

	if _, err := client.Transcribe(context.Background(), transcription.Request{
		Path:      writeMedia(t),
		Filename:  "clip.mkv",
		Translate: true,
		Format:    transcription.FormatSRT,
		Language:  "de",
	}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if captured.path != "/v1/audio/translations" {
		t.Fatalf("unexpected path %q", captured.path)
	}
	if captured.hasLanguage {
		t.Fatalf("translation must not send a language field")
	}
	if captured.auth != "" {
		t.Fatalf("expected no authorization header, got %q", captured.auth)
	}
	if captured.partType != "video/x-matroska" {
		t.Fatalf("unexpected part type %q", captured.partType)
	}
}

func TestSegmentsAreNormalized(t *testing.T) {
	const body = `{"language":"french","duration":3.5,"segments":[
		{"start":0,"end":1.5,"text":" Bonjour "},
		{"start":2,"text":"sans fin"},
		{"end":3}
	]}`
	server, captured := newWhisperServer(t, http.StatusOK, body)
	client := NewClient(Config{BaseURL: server.URL})

	result, err := client.Transcribe(context.Background(), transcription.Request{
		Path:   writeMedia(t),
		Format: transcription.FormatSegments,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if captured.format != "verbose_json" {
		t.Fatalf("unexpected response_format %q", captured.format)
	}
	if captured.filename != "upload-abc.wav" {
		t.Fatalf("expected stored name as fallback filename, got %q", captured.filename)
	}
	want := []srt.Segment{
		{Start: 0, End: 1.5, Text: " Bonjour "},
		{Start: 2, End: 2, Text: "sans fin"},
		{Start: 0, End: 3, Text: ""},
	}
	if !result.Structured || len(result.Segments) != len(want) {
		t.Fatalf("unexpected result %+v", result)
	}
	for i := range want {
		if result.Segments[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, result.Segments[i], want[i])
		}
	}
	if result.Language != "french" || result.Duration != 3.5 {
		t.Fatalf("unexpected metadata %+v", result)
	}
}

func TestMissingSegmentsIsCollaboratorError(t *testing.T) {
	server, _ := newWhisperServer(t, http.StatusOK, `{"text":"hello"}`)
	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Transcribe(context.Background(), transcription.Request{
		Path:   writeMedia(t),
		Format: transcription.FormatSegments,
	})
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if got := services.Message(err); got != transcription.MissingSegmentsMessage {
		t.Fatalf("unexpected caller message %q", got)
	}
}

func TestEmptySegmentListIsAccepted(t *testing.T) {
	server, _ := newWhisperServer(t, http.StatusOK, `{"segments":[]}`)
	client := NewClient(Config{BaseURL: server.URL})

	result, err := client.Transcribe(context.Background(), transcription.Request{
		Path:   writeMedia(t),
		Format: transcription.FormatSegments,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.SRT() != "" {
		t.Fatalf("expected empty document, got %q", result.SRT())
	}
}

func TestNon2xxIsCollaboratorError(t *testing.T) {
	server, _ := newWhisperServer(t, http.StatusServiceUnavailable, "model loading")
	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Transcribe(context.Background(), transcription.Request{Path: writeMedia(t)})
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model loading") {
		t.Fatalf("expected body snippet in error, got %v", err)
	}
	if services.Message(err) == "model loading" {
		t.Fatalf("backend detail must not become the caller message")
	}
}

func TestUnreachableServerIsCollaboratorError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.Transcribe(context.Background(), transcription.Request{Path: writeMedia(t)})
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestMissingMediaIsStorageError(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := client.Transcribe(context.Background(), transcription.Request{
		Path: filepath.Join(t.TempDir(), "missing.wav"),
	})
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	ok := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ok.Close)
	if err := NewClient(Config{BaseURL: ok.URL}).Ping(context.Background()); err != nil {
		t.Fatalf("expected 404 to count as reachable, got %v", err)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(failing.Close)
	if err := NewClient(Config{BaseURL: failing.URL}).Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure for 502")
	}
}

func TestName(t *testing.T) {
	if got := NewClient(Config{}).Name(); got != "whisper_api" {
		t.Fatalf("unexpected name %q", got)
	}
}
