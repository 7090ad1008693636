package screening

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-screener/internal/collection"
	"github.com/jonathan/resume-screener/internal/extract"
	"github.com/jonathan/resume-screener/internal/session"
)

// SuccessMessage is shown after a cycle has been analyzed and stored.
const SuccessMessage = "Resume has been analyzed and stored!"

// Stage names a step of the cycle, reported while it runs.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageAnalyzing  Stage = "analyzing"
	StageStoring    Stage = "storing"
)

// Upload is a resume file as received from the reviewer.
type Upload struct {
	Filename string `json:"filename" validate:"notblank,pdf"`
	Data     []byte `json:"data" validate:"required,min=1"`
}

// Request is the input of one cycle.
type Request struct {
	JobDescription string `json:"job_description" validate:"notblank"`
	Resume         Upload `json:"resume"`
}

// Result is the outcome of a successful cycle.
type Result struct {
	RecordID   string            `json:"record_id"`
	ResumeText string            `json:"resume_text"`
	Analysis   string            `json:"analysis"`
	Replaced   bool              `json:"replaced"`
	Messages   []session.Message `json:"messages"`
}

// ValidationError indicates a missing or unacceptable input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Screener runs cycles against a shared collection.
type Screener struct {
	collection collection.Collection
	newClient  session.ClientFactory
	timeout    time.Duration
	validate   *validator.Validate
}

// Option configures a Screener.
type Option func(*Screener)

// WithTimeout bounds each analysis request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Screener) {
		s.timeout = d
	}
}

// New creates a Screener that stores records in coll and builds model clients with newClient.
func New(coll collection.Collection, newClient session.ClientFactory, opts ...Option) *Screener {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "pdf", func(fl validator.FieldLevel) bool {
		return extract.IsPDF(fl.Field().String())
	})

	s := &Screener{
		collection: coll,
		newClient:  newClient,
		validate:   v,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("screening: register %q validation: %v", tag, err))
	}
}

// Screen extracts the resume text, analyzes it against the job description,
// stores the record under the resume filename and appends the user and
// assistant messages to the session log. Nothing is stored or logged unless
// every step succeeds. onStage may be nil.
func (s *Screener) Screen(ctx context.Context, sess *session.Session, req Request, onStage func(Stage)) (*Result, error) {
	if onStage == nil {
		onStage = func(Stage) {}
	}

	if _, err := sess.Credential(); err != nil {
		return nil, err
	}

	// The job description is kept verbatim; blank input is rejected by validation.
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	release, err := sess.Begin()
	if err != nil {
		return nil, err
	}
	defer release()

	onStage(StageExtracting)
	resumeText, err := extract.PDFText(req.Resume.Data)
	if err != nil {
		return nil, err
	}
	log.Printf("[screening] extracted %d chars from %s", len(resumeText), req.Resume.Filename)

	onStage(StageAnalyzing)
	client, err := sess.Client(ctx, s.newClient)
	if err != nil {
		return nil, err
	}

	analyzeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		analyzeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	analysis, err := Analyze(analyzeCtx, client, req.JobDescription, resumeText)
	if err != nil {
		return nil, err
	}
	log.Printf("[screening] analysis of %s took %s (%d chars)", req.Resume.Filename, time.Since(start).Round(time.Millisecond), len(analysis))

	onStage(StageStoring)
	rec := collection.Record{
		ID:       req.Resume.Filename,
		Document: resumeText,
		Metadata: collection.Metadata{
			Filename:       req.Resume.Filename,
			JobDescription: req.JobDescription,
			Analysis:       analysis,
		},
	}
	replaced, err := s.collection.Upsert(ctx, rec)
	if err != nil {
		var writeErr *collection.WriteError
		if !errors.As(err, &writeErr) {
			err = &collection.WriteError{ID: rec.ID, Cause: err}
		}
		return nil, err
	}
	if replaced {
		log.Printf("[screening] replaced existing record %s", rec.ID)
	}

	sess.Append(
		session.Message{Role: session.RoleUser, Content: resumeText},
		session.Message{Role: session.RoleAssistant, Content: analysis},
	)

	return &Result{
		RecordID:   rec.ID,
		ResumeText: resumeText,
		Analysis:   analysis,
		Replaced:   replaced,
		Messages:   sess.Messages(),
	}, nil
}

func (s *Screener) validateRequest(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}

	// Report the first failure
	fe := validationErrors[0]
	switch fe.Namespace() {
	case "Request.job_description":
		return &ValidationError{Field: "job_description", Message: "please enter a job description"}
	case "Request.resume.filename":
		if fe.Tag() == "pdf" {
			return &ValidationError{Field: "resume", Message: "only PDF files are accepted"}
		}
		return &ValidationError{Field: "resume", Message: "please upload a resume PDF"}
	case "Request.resume.data":
		return &ValidationError{Field: "resume", Message: "the uploaded file is empty"}
	default:
		return &ValidationError{Field: fe.Field(), Message: fe.Tag()}
	}
}
