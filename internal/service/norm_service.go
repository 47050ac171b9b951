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

// NormService owns CRUD over the EDPS norm collection.
type NormService struct {
	norms  *repository.NormStore
	logger *zap.Logger
}

func NewNormService(norms *repository.NormStore, logger *zap.Logger) *NormService {
	return &NormService{norms: norms, logger: logger}
}

// CreateNormRequest carries the client-settable fields of a new norm.
type CreateNormRequest struct {
	NormNumber  string   `json:"normNumber"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Target      string   `json:"target"`
	CarPart     string   `json:"carPart"`
	Images      []string `json:"images"`
}

func (s *NormService) ListNorms(ctx context.Context) ([]domain.Norm, error) {
	return s.norms.List()
}

func (s *NormService) GetNorm(ctx context.Context, id string) (*domain.Norm, error) {
	norm, found, err := s.norms.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &norm, nil
}

func (s *NormService) CreateNorm(ctx context.Context, req CreateNormRequest) (*domain.Norm, error) {
	var missing []string
	if strings.TrimSpace(req.NormNumber) == "" {
		missing = append(missing, "normNumber")
	}
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	norm := domain.Norm{
		ID:          uuid.NewString(),
		NormNumber:  req.NormNumber,
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		CarPart:     req.CarPart,
		Images:      images,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      domain.StatusActive,
	}

	created, err := s.norms.Create(norm)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created norm", zap.String("id", created.ID), zap.String("norm_number", created.NormNumber))
	return &created, nil
}

func (s *NormService) UpdateNorm(ctx context.Context, id string, patch domain.NormPatch) (*domain.Norm, error) {
	merged, found, err := s.norms.Update(id, func(n *domain.Norm) {
		patch.Apply(n)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &merged, nil
}

func (s *NormService) DeleteNorm(ctx context.Context, id string) error {
	removed, err := s.norms.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	// No cascade: failure analyses referencing this norm keep their link and
	// resolve it as absent from now on.
	s.logger.Info("Deleted norm", zap.String("id", id))
	return nil
}
