package service

import (
	"context"
	"errors"
	"testing"

	"pd-smartdoc/internal/domain"
	"pd-smartdoc/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	norms      *NormService
	procedures *ProcedureService
	analyses   *AnalysisService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	normStore := repository.NewNormStore(dir, logger)
	procStore := repository.NewProcedureStore(dir, logger)
	analysisStore := repository.NewAnalysisStore(dir, logger)
	return &fixture{
		norms:      NewNormService(normStore, logger),
		procedures: NewProcedureService(procStore, logger),
		analyses:   NewAnalysisService(analysisStore, normStore, procStore, logger),
	}
}

func ratings(s, o, d int) (*int, *int, *int) {
	return &s, &o, &d
}

func TestCreateAnalysisRequiredFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{FailureMode: "Loosening"})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"genericFailure"}, missing.Fields)

	_, err = f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"genericFailure", "failureMode"}, missing.Fields)
}

func TestCreateAnalysisUnknownLinkTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Bolt",
		FailureMode:    "Loosening",
		PreventionControl: &domain.PreventionControl{
			Type:   domain.ControlTypeEDPS,
			EDPSID: "nonexistent",
		},
	})

	var linkErr *LinkTargetError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "nonexistent", linkErr.ID)
	assert.Equal(t, domain.ControlTypeEDPS, linkErr.Kind)
	assert.Contains(t, linkErr.Error(), "nonexistent")

	// No partial record was written.
	entries, listErr := f.analyses.ListAnalyses(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestCreateAnalysisEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	norm, err := f.norms.CreateNorm(ctx, CreateNormRequest{NormNumber: "NP-001", Title: "Torque Spec"})
	require.NoError(t, err)

	s, o, d := ratings(7, 4, 3)
	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Bolt",
		FailureMode:    "Loosening",
		PreventionControl: &domain.PreventionControl{
			Type:        domain.ControlTypeEDPS,
			EDPSID:      norm.ID,
			Description: "Torque Spec",
		},
		Severity:   s,
		Occurrence: o,
		Detection:  d,
	})
	require.NoError(t, err)
	assert.Equal(t, 84, entry.RPN)
	assert.Equal(t, domain.StatusActive, entry.Status)

	got, err := f.analyses.GetAnalysis(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PreventionControl)
	require.NotNil(t, got.PreventionControl.EDPSData)
	assert.Equal(t, "NP-001", got.PreventionControl.EDPSData.NormNumber)
}

func TestUpdateAnalysisRecomputesRPN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, o, d := ratings(5, 5, 5)
	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Seal",
		FailureMode:    "Leak",
		Severity:       s,
		Occurrence:     o,
		Detection:      d,
	})
	require.NoError(t, err)
	assert.Equal(t, 125, entry.RPN)

	ten := 10
	updated, err := f.analyses.UpdateAnalysis(ctx, entry.ID, domain.FailureAnalysisPatch{Occurrence: &ten})
	require.NoError(t, err)
	assert.Equal(t, 250, updated.RPN)
	assert.Equal(t, 5, *updated.Severity)
	assert.Equal(t, 10, *updated.Occurrence)
}

func TestUpdateAnalysisWithoutRatingsKeepsRPN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, o, d := ratings(2, 3, 4)
	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Hose",
		FailureMode:    "Crack",
		Severity:       s,
		Occurrence:     o,
		Detection:      d,
	})
	require.NoError(t, err)

	cause := "UV exposure"
	updated, err := f.analyses.UpdateAnalysis(ctx, entry.ID, domain.FailureAnalysisPatch{Cause: &cause})
	require.NoError(t, err)
	assert.Equal(t, 24, updated.RPN)
	assert.Equal(t, "UV exposure", updated.Cause)
}

func TestCreateAnalysisPartialRatingsGiveZeroRPN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	five := 5
	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Clip",
		FailureMode:    "Detach",
		Severity:       &five,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, entry.RPN)
}

func TestDeletedNormLeavesDanglingLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	norm, err := f.norms.CreateNorm(ctx, CreateNormRequest{NormNumber: "NP-002", Title: "Weld Spec"})
	require.NoError(t, err)

	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Bracket",
		FailureMode:    "Fracture",
		PreventionControl: &domain.PreventionControl{
			Type:   domain.ControlTypeEDPS,
			EDPSID: norm.ID,
		},
	})
	require.NoError(t, err)

	// Deleting the referenced norm is allowed: no cascade, no FK block.
	require.NoError(t, f.norms.DeleteNorm(ctx, norm.ID))

	got, err := f.analyses.GetAnalysis(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PreventionControl)
	assert.Equal(t, norm.ID, got.PreventionControl.EDPSID)
	assert.Nil(t, got.PreventionControl.EDPSData)
}

func TestResolveLinksDoesNotPersistEmbeddedData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	proc, err := f.procedures.CreateProcedure(ctx, CreateProcedureRequest{ProcedureID: "DVP-9", TestName: "Salt Spray"})
	require.NoError(t, err)

	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Coating",
		FailureMode:    "Corrosion",
		DetectionControl: &domain.DetectionControl{
			Type:  domain.ControlTypeDVP,
			DVPID: proc.ID,
		},
	})
	require.NoError(t, err)

	resolved, err := f.analyses.GetAnalysis(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.DetectionControl.DVPData)

	// Listing reads straight from the store: no embedded data there.
	entries, err := f.analyses.ListAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].DetectionControl.DVPData)
}

func TestGetAnalysisNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.analyses.GetAnalysis(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteAnalysisTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.analyses.CreateAnalysis(ctx, CreateAnalysisRequest{
		GenericFailure: "Wire",
		FailureMode:    "Chafe",
	})
	require.NoError(t, err)

	require.NoError(t, f.analyses.DeleteAnalysis(ctx, entry.ID))
	assert.True(t, errors.Is(f.analyses.DeleteAnalysis(ctx, entry.ID), ErrNotFound))
}

func TestProcedureTypeDefault(t *testing.T) {
	f := newFixture(t)

	proc, err := f.procedures.CreateProcedure(context.Background(), CreateProcedureRequest{
		ProcedureID: "DVP-1",
		TestName:    "Vibration Sweep",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProcedureType, proc.ProcedureType)
}
