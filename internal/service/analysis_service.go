package service

import (
	"context"
	"strings"
	"time"

	"pd-smartdoc/internal/domain"
	"pd-smartdoc/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisService owns CRUD over the DFMEA collection plus the risk rules the
// other two document types feed into: RPN derivation and link resolution
// against the norm and procedure stores.
type AnalysisService struct {
	analyses   *repository.AnalysisStore
	norms      *repository.NormStore
	procedures *repository.ProcedureStore
	logger     *zap.Logger
}

func NewAnalysisService(
	analyses *repository.AnalysisStore,
	norms *repository.NormStore,
	procedures *repository.ProcedureStore,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		analyses:   analyses,
		norms:      norms,
		procedures: procedures,
		logger:     logger,
	}
}

// CreateAnalysisRequest carries the client-settable fields of a new DFMEA
// entry. Control links are validated against the norm/procedure stores at
// creation time only.
type CreateAnalysisRequest struct {
	GenericFailure    string                    `json:"genericFailure"`
	FailureMode       string                    `json:"failureMode"`
	Cause             string                    `json:"cause"`
	CarPart           string                    `json:"carPart"`
	PreventionControl *domain.PreventionControl `json:"preventionControl"`
	DetectionControl  *domain.DetectionControl  `json:"detectionControl"`
	Severity          *int                      `json:"severity"`
	Occurrence        *int                      `json:"occurrence"`
	Detection         *int                      `json:"detection"`
}

func (s *AnalysisService) ListAnalyses(ctx context.Context) ([]domain.FailureAnalysis, error) {
	return s.analyses.List()
}

// GetAnalysis returns the entry with its prevention/detection links resolved.
// A dangling link is not an error; the embedded data is simply absent.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (*domain.FailureAnalysis, error) {
	entry, found, err := s.analyses.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	resolved, err := s.resolveLinks(entry)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *AnalysisService) CreateAnalysis(ctx context.Context, req CreateAnalysisRequest) (*domain.FailureAnalysis, error) {
	var missing []string
	if strings.TrimSpace(req.GenericFailure) == "" {
		missing = append(missing, "genericFailure")
	}
	if strings.TrimSpace(req.FailureMode) == "" {
		missing = append(missing, "failureMode")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	if err := s.validateLinkTargets(req.PreventionControl, req.DetectionControl); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.FailureAnalysis{
		ID:                uuid.NewString(),
		GenericFailure:    req.GenericFailure,
		FailureMode:       req.FailureMode,
		Cause:             req.Cause,
		CarPart:           req.CarPart,
		PreventionControl: stripPreventionData(req.PreventionControl),
		DetectionControl:  stripDetectionData(req.DetectionControl),
		Severity:          req.Severity,
		Occurrence:        req.Occurrence,
		Detection:         req.Detection,
		RPN:               domain.ComputeRPN(req.Severity, req.Occurrence, req.Detection),
		CreatedAt:         now,
		UpdatedAt:         now,
		Status:            domain.StatusActive,
	}

	created, err := s.analyses.Create(entry)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created failure analysis",
		zap.String("id", created.ID),
		zap.String("failure_mode", created.FailureMode),
		zap.Int("rpn", created.RPN),
	)
	return &created, nil
}

// UpdateAnalysis applies the patch and, when any rating is part of it,
// recomputes the RPN from the merged rating triple.
func (s *AnalysisService) UpdateAnalysis(ctx context.Context, id string, patch domain.FailureAnalysisPatch) (*domain.FailureAnalysis, error) {
	patch.PreventionControl = stripPreventionData(patch.PreventionControl)
	patch.DetectionControl = stripDetectionData(patch.DetectionControl)

	merged, found, err := s.analyses.Update(id, func(f *domain.FailureAnalysis) {
		patch.Apply(f)
		if patch.TouchesRatings() {
			f.RPN = domain.ComputeRPN(f.Severity, f.Occurrence, f.Detection)
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &merged, nil
}

func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id string) error {
	removed, err := s.analyses.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.logger.Info("Deleted failure analysis", zap.String("id", id))
	return nil
}

// validateLinkTargets fails with a LinkTargetError naming the offending id
// when a provided control references a record that does not exist right now.
func (s *AnalysisService) validateLinkTargets(prevention *domain.PreventionControl, detection *domain.DetectionControl) error {
	if prevention != nil && prevention.EDPSID != "" {
		_, found, err := s.norms.GetByID(prevention.EDPSID)
		if err != nil {
			return err
		}
		if !found {
			return &LinkTargetError{Kind: domain.ControlTypeEDPS, ID: prevention.EDPSID}
		}
	}
	if detection != nil && detection.DVPID != "" {
		_, found, err := s.procedures.GetByID(detection.DVPID)
		if err != nil {
			return err
		}
		if !found {
			return &LinkTargetError{Kind: domain.ControlTypeDVP, ID: detection.DVPID}
		}
	}
	return nil
}

// resolveLinks returns a copy of the entry with the referenced norm and
// procedure embedded when they still exist. The stored record is never
// mutated, so resolved data cannot leak back into the collection file.
func (s *AnalysisService) resolveLinks(entry domain.FailureAnalysis) (*domain.FailureAnalysis, error) {
	if entry.PreventionControl != nil && entry.PreventionControl.EDPSID != "" {
		control := *entry.PreventionControl
		norm, found, err := s.norms.GetByID(control.EDPSID)
		if err != nil {
			return nil, err
		}
		if found {
			control.EDPSData = &norm
		}
		entry.PreventionControl = &control
	}
	if entry.DetectionControl != nil && entry.DetectionControl.DVPID != "" {
		control := *entry.DetectionControl
		proc, found, err := s.procedures.GetByID(control.DVPID)
		if err != nil {
			return nil, err
		}
		if found {
			control.DVPData = &proc
		}
		entry.DetectionControl = &control
	}
	return &entry, nil
}

func stripPreventionData(c *domain.PreventionControl) *domain.PreventionControl {
	if c == nil || c.EDPSData == nil {
		return c
	}
	stripped := *c
	stripped.EDPSData = nil
	return &stripped
}

func stripDetectionData(c *domain.DetectionControl) *domain.DetectionControl {
	if c == nil || c.DVPData == nil {
		return c
	}
	stripped := *c
	stripped.DVPData = nil
	return &stripped
}
