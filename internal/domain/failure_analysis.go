package domain

import "time"

// Control type discriminators as written by the original document forms.
const (
	ControlTypeEDPS = "EDPS"
	ControlTypeDVP  = "DVP"
)

// PreventionControl links a failure to the Norm that prevents it.
// EDPSData is populated only on read (link resolution); it is never persisted.
type PreventionControl struct {
	Type        string `json:"type"`
	EDPSID      string `json:"edpsId"`
	Description string `json:"description"`
	EDPSData    *Norm  `json:"edpsData,omitempty"`
}

// DetectionControl links a failure to the TestProcedure that detects it.
// DVPData is populated only on read (link resolution); it is never persisted.
type DetectionControl struct {
	Type        string         `json:"type"`
	DVPID       string         `json:"dvpId"`
	Description string         `json:"description"`
	DVPData     *TestProcedure `json:"dvpData,omitempty"`
}

// FailureAnalysis is a DFMEA entry. The three ratings are 1-10 when present;
// a nil rating contributes zero to the RPN.
type FailureAnalysis struct {
	ID                string             `json:"id"`
	GenericFailure    string             `json:"genericFailure"`
	FailureMode       string             `json:"failureMode"`
	Cause             string             `json:"cause"`
	CarPart           string             `json:"carPart"`
	PreventionControl *PreventionControl `json:"preventionControl"`
	DetectionControl  *DetectionControl  `json:"detectionControl"`
	Severity          *int               `json:"severity"`
	Occurrence        *int               `json:"occurrence"`
	Detection         *int               `json:"detection"`
	RPN               int                `json:"rpn"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Status            string             `json:"status"`
}

func (f FailureAnalysis) RecordID() string { return f.ID }

func (f FailureAnalysis) Stamped(t time.Time) FailureAnalysis {
	f.UpdatedAt = t
	return f
}

// FailureAnalysisPatch carries the fields a partial update may change.
// Ratings can be set but not cleared back to nil through a patch.
type FailureAnalysisPatch struct {
	GenericFailure    *string            `json:"genericFailure"`
	FailureMode       *string            `json:"failureMode"`
	Cause             *string            `json:"cause"`
	CarPart           *string            `json:"carPart"`
	PreventionControl *PreventionControl `json:"preventionControl"`
	DetectionControl  *DetectionControl  `json:"detectionControl"`
	Severity          *int               `json:"severity"`
	Occurrence        *int               `json:"occurrence"`
	Detection         *int               `json:"detection"`
	Status            *string            `json:"status"`
}

func (p FailureAnalysisPatch) Apply(f *FailureAnalysis) {
	if p.GenericFailure != nil {
		f.GenericFailure = *p.GenericFailure
	}
	if p.FailureMode != nil {
		f.FailureMode = *p.FailureMode
	}
	if p.Cause != nil {
		f.Cause = *p.Cause
	}
	if p.CarPart != nil {
		f.CarPart = *p.CarPart
	}
	if p.PreventionControl != nil {
		f.PreventionControl = p.PreventionControl
	}
	if p.DetectionControl != nil {
		f.DetectionControl = p.DetectionControl
	}
	if p.Severity != nil {
		f.Severity = p.Severity
	}
	if p.Occurrence != nil {
		f.Occurrence = p.Occurrence
	}
	if p.Detection != nil {
		f.Detection = p.Detection
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
}

// TouchesRatings reports whether the patch changes any RPN input, in which
// case the caller must recompute the RPN on the merged record.
func (p FailureAnalysisPatch) TouchesRatings() bool {
	return p.Severity != nil || p.Occurrence != nil || p.Detection != nil
}
