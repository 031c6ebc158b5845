package services

import (
	"context"
	"fmt"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"go.uber.org/zap"
)

// Classifier infers a category and auto-description from an image.
type Classifier interface {
	Classify(ctx context.Context, file models.Upload) (*models.Classification, error)
}

// ObjectStore uploads evidence files and returns a public URL.
type ObjectStore interface {
	Put(ctx context.Context, file models.Upload) (*models.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// Pipeline and stage names as reported to the StageObserver.
const (
	PipelineSubmission = "submission"
	PipelineResolution = "resolution"

	StageClassify = "classify"
	StageUpload   = "upload"
	StagePersist  = "persist"
	StageResolve  = "resolve"
)

// SubmissionService orchestrates the classify → upload → persist chain of a
// new complaint and the upload → resolve chain of a resolution. A failed
// classification leaves nothing behind. A failed upload leaves the
// classification cost spent. A failed persist deletes the uploaded object.
type SubmissionService struct {
	classifier Classifier
	objects    ObjectStore
	complaints *ComplaintService
	observer   StageObserver
	logger     *zap.SugaredLogger
}

// NewSubmissionService wires the pipeline dependencies. observer may be nil.
func NewSubmissionService(classifier Classifier, objects ObjectStore, complaints *ComplaintService, observer StageObserver, logger *zap.SugaredLogger) *SubmissionService {
	return &SubmissionService{
		classifier: classifier,
		objects:    objects,
		complaints: complaints,
		observer:   observer,
		logger:     logger,
	}
}

// Submit classifies and stores the evidence file, then persists a complaint
// in the Under Review state. It returns the stored complaint and file URL.
func (s *SubmissionService) Submit(ctx context.Context, sub models.ComplaintSubmission, file models.Upload) (*models.Complaint, string, error) {
	if err := validateUpload(file); err != nil {
		return nil, "", err
	}

	var (
		cls       *models.Classification
		stored    *models.StoredObject
		complaint *models.Complaint
	)

	p := NewPipeline(PipelineSubmission, s.observer, s.logger,
		Stage{
			Name: StageClassify,
			Run: func(ctx context.Context) (err error) {
				cls, err = s.classifier.Classify(ctx, file)
				return err
			},
		},
		Stage{
			Name: StageUpload,
			Run: func(ctx context.Context) (err error) {
				stored, err = s.objects.Put(ctx, file)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.objects.Delete(ctx, stored.Key)
			},
		},
		Stage{
			Name: StagePersist,
			Run: func(ctx context.Context) error {
				complaint = &models.Complaint{
					UserID:               sub.UserID,
					TrainNo:              sub.TrainNo,
					PNRNo:                sub.PNRNo,
					CoachNo:              sub.CoachNo,
					SeatNo:               sub.SeatNo,
					Description:          sub.Description,
					File:                 models.StrPtr(stored.URL),
					Category:             models.StrPtr(cls.Category),
					ComplaintDescription: models.StrPtr(cls.ComplaintDescription),
					ResolutionText:       sub.ResolutionText,
					TrainName:            sub.TrainName,
					CurrentLocation:      sub.CurrentLocation,
				}
				return s.complaints.Create(ctx, complaint)
			},
		},
	)

	if err := p.Execute(ctx); err != nil {
		return nil, "", err
	}
	return complaint, stored.URL, nil
}

// ResolveWithEvidence uploads the resolution image and resolves complaint id.
// An unknown id still costs one upload; the orphaned image is deleted.
func (s *SubmissionService) ResolveWithEvidence(ctx context.Context, id, resolutionText string, file models.Upload, actor string) (*models.Complaint, error) {
	if resolutionText == "" {
		return nil, models.WrapError(models.ErrValidation, "resolve complaint", fmt.Errorf("resolution text is required"))
	}
	if err := validateUpload(file); err != nil {
		return nil, err
	}

	var (
		stored    *models.StoredObject
		complaint *models.Complaint
	)

	p := NewPipeline(PipelineResolution, s.observer, s.logger,
		Stage{
			Name: StageUpload,
			Run: func(ctx context.Context) (err error) {
				stored, err = s.objects.Put(ctx, file)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.objects.Delete(ctx, stored.Key)
			},
		},
		Stage{
			Name: StageResolve,
			Run: func(ctx context.Context) (err error) {
				complaint, err = s.complaints.Resolve(ctx, id, resolutionText, stored.URL, actor)
				return err
			},
		},
	)

	if err := p.Execute(ctx); err != nil {
		return nil, err
	}
	return complaint, nil
}

func validateUpload(file models.Upload) error {
	if file.Filename == "" && len(file.Data) == 0 {
		return models.WrapError(models.ErrValidation, "validate upload", fmt.Errorf("file is required"))
	}
	return nil
}
