package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/ratemylooks/internal/analyzer"
	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/observer"
	"github.com/anime-shed/ratemylooks/internal/repository"
	"github.com/anime-shed/ratemylooks/pkg/dataurl"
	"github.com/anime-shed/ratemylooks/pkg/models"
	"github.com/anime-shed/ratemylooks/pkg/validation"
)

// AnalysisService runs the rating pipeline for every input type
type AnalysisService interface {
	AnalyzeUpload(ctx context.Context, img *models.UploadedImage, opts models.AnalysisOptions) (*models.AnalysisResult, error)
	AnalyzeBase64(ctx context.Context, imageData string, opts models.AnalysisOptions) (*models.AnalysisResult, error)
	AnalyzeURL(ctx context.Context, imageURL string, opts models.AnalysisOptions) (*models.AnalysisResult, error)
	TestConnection(ctx context.Context) models.ConnectionResult
	Provider() string
}

// AIClient is the model-facing part of the pipeline
type AIClient interface {
	Analyze(ctx context.Context, imageDataURL string, opts models.AnalysisOptions) (*models.RawModelResponse, error)
	TestConnection(ctx context.Context) models.ConnectionResult
	Provider() string
	Model() string
}

// ResponseParser turns model text into a ParsedAnalysis
type ResponseParser interface {
	Parse(raw string) models.ParsedAnalysis
}

// Enricher derives scores and plans from a ParsedAnalysis
type Enricher interface {
	Enrich(parsed models.ParsedAnalysis) (*models.EnrichedAnalysis, error)
}

// FailedAnalysis carries the request identity of a failed analysis so callers can report it
type FailedAnalysis struct {
	AnalysisID     string
	ProcessingTime time.Duration
	Err            error
}

func (e *FailedAnalysis) Error() string {
	return fmt.Sprintf("analysis %s failed: %v", e.AnalysisID, e.Err)
}

func (e *FailedAnalysis) Unwrap() error {
	return e.Err
}

// Dependencies groups the collaborators of analysisService
type Dependencies struct {
	Validator *validation.ImageValidator
	AI        AIClient
	Parser    ResponseParser
	Enricher  Enricher
	Inspector analyzer.PhotoInspector
	Images    repository.ImageRepository
	Events    observer.Subject
}

type analysisService struct {
	deps  Dependencies
	newID func() string
	now   func() time.Time
}

// Option customizes the service
type Option func(*analysisService)

// WithIDGenerator replaces uuid generation, used by tests
func WithIDGenerator(fn func() string) Option {
	return func(s *analysisService) { s.newID = fn }
}

// WithClock replaces the time source, used by tests
func WithClock(fn func() time.Time) Option {
	return func(s *analysisService) { s.now = fn }
}

// NewAnalysisService creates the pipeline. Inspector, Images and Events are optional.
func NewAnalysisService(deps Dependencies, opts ...Option) AnalysisService {
	if deps.Validator == nil {
		deps.Validator = validation.NewImageValidator()
	}
	s := &analysisService{
		deps:  deps,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *analysisService) Provider() string {
	return s.deps.AI.Provider()
}

// TestConnection probes the provider without retry
func (s *analysisService) TestConnection(ctx context.Context) models.ConnectionResult {
	return s.deps.AI.TestConnection(ctx)
}

// AnalyzeUpload rates a multipart upload
func (s *analysisService) AnalyzeUpload(ctx context.Context, img *models.UploadedImage, opts models.AnalysisOptions) (*models.AnalysisResult, error) {
	run := s.begin(ctx, models.InputTypeUpload, "")
	return run.finish(s.rate(ctx, run, img, opts))
}

// AnalyzeBase64 rates a data URL or raw base64 payload
func (s *analysisService) AnalyzeBase64(ctx context.Context, imageData string, opts models.AnalysisOptions) (*models.AnalysisResult, error) {
	run := s.begin(ctx, models.InputTypeBase64, "")

	url, err := dataurl.FromInput(imageData)
	if err != nil {
		return run.finish(nil, err)
	}
	data, mime, err := dataurl.Decode(url)
	if err != nil {
		return run.finish(nil, err)
	}

	img := &models.UploadedImage{
		Data:        data,
		Filename:    syntheticFilename(mime),
		ContentType: mime,
		Size:        int64(len(data)),
	}
	return run.finish(s.rate(ctx, run, img, opts))
}

// AnalyzeURL downloads the image from an http(s) or azblob URL and rates it
func (s *analysisService) AnalyzeURL(ctx context.Context, imageURL string, opts models.AnalysisOptions) (*models.AnalysisResult, error) {
	run := s.begin(ctx, models.InputTypeURL, imageURL)

	if s.deps.Images == nil {
		return run.finish(nil, apperrors.NewConfigurationError(apperrors.CodeImageFetchFailed, "Remote images are not supported", nil))
	}

	img, err := s.deps.Images.FetchImage(ctx, imageURL)
	if err != nil {
		run.notify(observer.AnalysisEvent{EventType: observer.ImageFetchFailed, ErrorCode: apperrors.GetCode(err), ErrorMessage: err.Error()})
		return run.finish(nil, err)
	}
	run.notify(observer.AnalysisEvent{EventType: observer.ImageFetched, Success: true, Metadata: map[string]interface{}{"image_size": img.Size}})

	mime := img.ContentType
	if mime == "" || mime == "application/octet-stream" {
		mime = dataurl.Sniff(img.Data)
	}
	img = &models.UploadedImage{
		Data:        img.Data,
		Filename:    syntheticFilename(mime),
		ContentType: mime,
		Size:        img.Size,
	}
	return run.finish(s.rate(ctx, run, img, opts))
}

// rate is the shared pipeline: validate, encode, call the model while inspecting the photo,
// then parse and enrich
func (s *analysisService) rate(ctx context.Context, run *analysisRun, img *models.UploadedImage, opts models.AnalysisOptions) (*models.AnalysisResult, error) {
	opts = opts.Normalize()

	result, err := s.deps.Validator.Validate(img)
	if err != nil {
		return nil, err
	}

	imageURL, err := dataurl.Encode(img.Data, result.MIMEType)
	if err != nil {
		return nil, err
	}

	var (
		raw     *models.RawModelResponse
		quality *models.PhotoQuality
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.deps.Inspector != nil {
		g.Go(func() error {
			q, err := s.deps.Inspector.Inspect(img.Data)
			if err != nil {
				logger.WithError(err).WithField("analysis_id", run.id).Debug("Photo quality inspection skipped")
				return nil
			}
			quality = q
			return nil
		})
	}
	g.Go(func() error {
		resp, err := s.deps.AI.Analyze(gctx, imageURL, opts)
		raw = resp
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parsed := s.deps.Parser.Parse(raw.Text)
	enriched, err := s.deps.Enricher.Enrich(parsed)
	if err != nil {
		return nil, err
	}

	run.tokens = raw.TokensUsed
	run.parseMode = string(parsed.ParseMode)

	model := raw.Model
	if model == "" {
		model = s.deps.AI.Model()
	}
	timestamp := s.now().UTC().Format(time.RFC3339)

	return &models.AnalysisResult{
		Success:    true,
		AnalysisID: run.id,
		Data: models.AnalysisData{
			EnrichedAnalysis: *enriched,
			Metadata: models.Metadata{
				Model:          model,
				Provider:       raw.Provider,
				TokensUsed:     raw.TokensUsed,
				Attempts:       raw.Attempts,
				ProcessingTime: run.elapsed().Milliseconds(),
				ImageSize:      result.Size,
				ImageFormat:    result.Format,
				InputType:      run.inputType,
				AnalysisType:   opts.AnalysisType,
				PhotoQuality:   quality,
				Timestamp:      timestamp,
			},
		},
		Timestamp: timestamp,
	}, nil
}

// syntheticFilename gives decoded and remote images an extension matching their content
func syntheticFilename(mime string) string {
	format := dataurl.FormatFromMIME(mime)
	if format == "" {
		return ""
	}
	return "upload." + strings.ToLower(format)
}

// analysisRun tracks the identity and timing of one request
type analysisRun struct {
	svc       *analysisService
	ctx       context.Context
	id        string
	inputType string
	source    string
	start     time.Time
	tokens    int
	parseMode string
}

func (s *analysisService) begin(ctx context.Context, inputType, source string) *analysisRun {
	run := &analysisRun{
		svc:       s,
		ctx:       ctx,
		id:        s.newID(),
		inputType: inputType,
		source:    source,
		start:     s.now(),
	}
	run.notify(observer.AnalysisEvent{EventType: observer.AnalysisStarted})
	return run
}

func (r *analysisRun) elapsed() time.Duration {
	return r.svc.now().Sub(r.start)
}

func (r *analysisRun) notify(event observer.AnalysisEvent) {
	if r.svc.deps.Events == nil {
		return
	}
	event.AnalysisID = r.id
	event.InputType = r.inputType
	event.Source = r.source
	event.ProcessingTime = r.elapsed()
	r.svc.deps.Events.NotifyObservers(r.ctx, event)
}

// finish publishes the outcome and wraps failures with the request identity
func (r *analysisRun) finish(result *models.AnalysisResult, err error) (*models.AnalysisResult, error) {
	if err != nil {
		r.notify(observer.AnalysisEvent{
			EventType:    observer.AnalysisFailed,
			ErrorCode:    apperrors.GetCode(err),
			ErrorMessage: err.Error(),
		})
		logger.WithError(err).WithFields(logrus.Fields{
			"analysis_id": r.id,
			"input_type":  r.inputType,
			"error_code":  apperrors.GetCode(err),
		}).Warn("Analysis request failed")
		return nil, &FailedAnalysis{AnalysisID: r.id, ProcessingTime: r.elapsed(), Err: err}
	}

	r.notify(observer.AnalysisEvent{
		EventType:  observer.AnalysisCompleted,
		Success:    true,
		TokensUsed: r.tokens,
		ParseMode:  r.parseMode,
	})
	return result, nil
}
