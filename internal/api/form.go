package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"captiontrans/internal/pipeline"
	"captiontrans/internal/services"
)

// Form field names accepted by POST /transcribe.
const (
	fieldFile         = "file"
	fieldTranslate    = "translate_to_english"
	fieldDirectSRT    = "direct_srt"
	fieldLanguageHint = "language_hint"
)

// maxFieldBytes bounds a single text field value.
const maxFieldBytes = 4 << 10

// transcribeForm walks a multipart body one part at a time. Text fields are
// kept in memory. The file part is handed to the pipeline unread, and
// upload.Store checks its extension before reading any of it.
type transcribeForm struct {
	reader *multipart.Reader
	values map[string]string
	maxMB  int
}

// readForm advances to the file part and returns an Input streaming it.
// Fields that follow the file are read by the Input's AfterStore hook.
func (s *Server) readForm(r *http.Request) (pipeline.Input, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return pipeline.Input{}, services.Wrap(services.ErrInvalidInput, "http", "parse form",
			"Request must be multipart/form-data with a file field.", err)
	}
	form := &transcribeForm{reader: mr, values: make(map[string]string), maxMB: s.cfg.Upload.MaxUploadMB}

	for {
		part, err := form.next()
		if err != nil {
			return pipeline.Input{}, err
		}
		if part == nil {
			return pipeline.Input{}, services.Wrap(services.ErrInvalidInput, "http", "parse form", "No file was uploaded.", nil)
		}
		if part.FormName() != fieldFile {
			if err := form.readValue(part); err != nil {
				return pipeline.Input{}, err
			}
			continue
		}

		filename := part.FileName()
		if filename == "" {
			return pipeline.Input{}, services.Wrap(services.ErrInvalidInput, "http", "parse form", "Uploaded file must include a filename.", nil)
		}
		in := pipeline.Input{Filename: filename, Body: part, AfterStore: form.finish}
		if err := form.apply(&in); err != nil {
			return pipeline.Input{}, err
		}
		return in, nil
	}
}

// next returns the following part, or nil at the end of the body.
func (f *transcribeForm) next() (*multipart.Part, error) {
	part, err := f.reader.NextPart()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, f.readError(err)
	}
	return part, nil
}

// readValue records a known text field. The first occurrence wins and other
// parts are skipped unread.
func (f *transcribeForm) readValue(part *multipart.Part) error {
	name := part.FormName()
	switch name {
	case fieldTranslate, fieldDirectSRT, fieldLanguageHint:
	default:
		return nil
	}
	if part.FileName() != "" {
		return nil
	}
	if _, seen := f.values[name]; seen {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return f.readError(err)
	}
	if len(data) > maxFieldBytes {
		return services.Wrap(services.ErrInvalidInput, "http", "parse form",
			fmt.Sprintf("Field %s is too long.", name), nil)
	}
	f.values[name] = string(data)
	return nil
}

// finish reads the parts after the file and re-applies the options.
func (f *transcribeForm) finish(in *pipeline.Input) error {
	for {
		part, err := f.next()
		if err != nil {
			return err
		}
		if part == nil {
			break
		}
		if err := f.readValue(part); err != nil {
			return err
		}
	}
	return f.apply(in)
}

func (f *transcribeForm) apply(in *pipeline.Input) error {
	translate, err := parseFormBool(fieldTranslate, f.values[fieldTranslate], true)
	if err != nil {
		return err
	}
	directSRT, err := parseFormBool(fieldDirectSRT, f.values[fieldDirectSRT], true)
	if err != nil {
		return err
	}
	in.Translate = translate
	in.DirectSRT = directSRT
	in.LanguageHint = f.values[fieldLanguageHint]
	return nil
}

func (f *transcribeForm) readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return services.Wrap(services.ErrPayloadTooLarge, "http", "parse form",
			fmt.Sprintf("File exceeds maximum upload size of %d MB.", f.maxMB), err)
	}
	return services.Wrap(services.ErrInvalidInput, "http", "parse form", "Request must be multipart/form-data with a file field.", err)
}

// parseFormBool reads an optional boolean form value. Blank means def.
func parseFormBool(field, value string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return def, nil
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, services.Wrap(services.ErrInvalidInput, "http", "parse form",
			fmt.Sprintf("Field %s must be a boolean.", field), nil)
	}
}
