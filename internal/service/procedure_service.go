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

// ProcedureService owns CRUD over the DVP test-procedure collection.
type ProcedureService struct {
	procedures *repository.ProcedureStore
	logger     *zap.Logger
}

func NewProcedureService(procedures *repository.ProcedureStore, logger *zap.Logger) *ProcedureService {
	return &ProcedureService{procedures: procedures, logger: logger}
}

// CreateProcedureRequest carries the client-settable fields of a new test
// procedure.
type CreateProcedureRequest struct {
	ProcedureID          string `json:"procedureId"`
	ProcedureType        string `json:"procedureType"`
	PerformanceObjective string `json:"performanceObjective"`
	TestName             string `json:"testName"`
	AcceptanceCriteria   string `json:"acceptanceCriteria"`
	Responsible          string `json:"responsible"`
	ParameterRange       string `json:"parameterRange"`
	CarPart              string `json:"carPart"`
}

func (s *ProcedureService) ListProcedures(ctx context.Context) ([]domain.TestProcedure, error) {
	return s.procedures.List()
}

func (s *ProcedureService) GetProcedure(ctx context.Context, id string) (*domain.TestProcedure, error) {
	proc, found, err := s.procedures.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &proc, nil
}

func (s *ProcedureService) CreateProcedure(ctx context.Context, req CreateProcedureRequest) (*domain.TestProcedure, error) {
	var missing []string
	if strings.TrimSpace(req.ProcedureID) == "" {
		missing = append(missing, "procedureId")
	}
	if strings.TrimSpace(req.TestName) == "" {
		missing = append(missing, "testName")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	procedureType := req.ProcedureType
	if procedureType == "" {
		procedureType = domain.DefaultProcedureType
	}

	now := time.Now().UTC()
	proc := domain.TestProcedure{
		ID:                   uuid.NewString(),
		ProcedureID:          req.ProcedureID,
		ProcedureType:        procedureType,
		PerformanceObjective: req.PerformanceObjective,
		TestName:             req.TestName,
		AcceptanceCriteria:   req.AcceptanceCriteria,
		Responsible:          req.Responsible,
		ParameterRange:       req.ParameterRange,
		CarPart:              req.CarPart,
		CreatedAt:            now,
		UpdatedAt:            now,
		Status:               domain.StatusActive,
	}

	created, err := s.procedures.Create(proc)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created test procedure", zap.String("id", created.ID), zap.String("procedure_id", created.ProcedureID))
	return &created, nil
}

func (s *ProcedureService) UpdateProcedure(ctx context.Context, id string, patch domain.TestProcedurePatch) (*domain.TestProcedure, error) {
	merged, found, err := s.procedures.Update(id, func(t *domain.TestProcedure) {
		patch.Apply(t)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &merged, nil
}

func (s *ProcedureService) DeleteProcedure(ctx context.Context, id string) error {
	removed, err := s.procedures.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.logger.Info("Deleted test procedure", zap.String("id", id))
	return nil
}
