package repository

import (
	"path/filepath"

	"pd-smartdoc/internal/domain"

	"go.uber.org/zap"
)

// Collection file names predate this service; external tooling reads them, so
// they keep the original spelling.
const (
	normsFile      = "edps.json"
	proceduresFile = "dvp.json"
	analysesFile   = "dfmea.json"
)

type (
	NormStore      = Store[domain.Norm]
	ProcedureStore = Store[domain.TestProcedure]
	AnalysisStore  = Store[domain.FailureAnalysis]
)

func NewNormStore(dataDir string, logger *zap.Logger) *NormStore {
	return NewStore[domain.Norm](filepath.Join(dataDir, normsFile), logger)
}

func NewProcedureStore(dataDir string, logger *zap.Logger) *ProcedureStore {
	return NewStore[domain.TestProcedure](filepath.Join(dataDir, proceduresFile), logger)
}

func NewAnalysisStore(dataDir string, logger *zap.Logger) *AnalysisStore {
	return NewStore[domain.FailureAnalysis](filepath.Join(dataDir, analysesFile), logger)
}
