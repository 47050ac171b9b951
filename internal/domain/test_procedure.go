package domain

import "time"

// DefaultProcedureType is applied when a DVP is created without one.
const DefaultProcedureType = "FUNCIONAL"

// TestProcedure is a DVP design-validation test procedure.
// procedureId is the human code printed on the validation plan; it is not
// enforced unique.
type TestProcedure struct {
	ID                   string    `json:"id"`
	ProcedureID          string    `json:"procedureId"`
	ProcedureType        string    `json:"procedureType"`
	PerformanceObjective string    `json:"performanceObjective"`
	TestName             string    `json:"testName"`
	AcceptanceCriteria   string    `json:"acceptanceCriteria"`
	Responsible          string    `json:"responsible"`
	ParameterRange       string    `json:"parameterRange"`
	CarPart              string    `json:"carPart"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	Status               string    `json:"status"`
}

func (t TestProcedure) RecordID() string { return t.ID }

func (t TestProcedure) Stamped(at time.Time) TestProcedure {
	t.UpdatedAt = at
	return t
}

// TestProcedurePatch carries the fields a partial update may change.
type TestProcedurePatch struct {
	ProcedureID          *string `json:"procedureId"`
	ProcedureType        *string `json:"procedureType"`
	PerformanceObjective *string `json:"performanceObjective"`
	TestName             *string `json:"testName"`
	AcceptanceCriteria   *string `json:"acceptanceCriteria"`
	Responsible          *string `json:"responsible"`
	ParameterRange       *string `json:"parameterRange"`
	CarPart              *string `json:"carPart"`
	Status               *string `json:"status"`
}

func (p TestProcedurePatch) Apply(t *TestProcedure) {
	if p.ProcedureID != nil {
		t.ProcedureID = *p.ProcedureID
	}
	if p.ProcedureType != nil {
		t.ProcedureType = *p.ProcedureType
	}
	if p.PerformanceObjective != nil {
		t.PerformanceObjective = *p.PerformanceObjective
	}
	if p.TestName != nil {
		t.TestName = *p.TestName
	}
	if p.AcceptanceCriteria != nil {
		t.AcceptanceCriteria = *p.AcceptanceCriteria
	}
	if p.Responsible != nil {
		t.Responsible = *p.Responsible
	}
	if p.ParameterRange != nil {
		t.ParameterRange = *p.ParameterRange
	}
	if p.CarPart != nil {
		t.CarPart = *p.CarPart
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}
