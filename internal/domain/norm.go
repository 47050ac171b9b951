package domain

import "time"

// StatusActive is the default lifecycle status for every document type.
const StatusActive = "active"

// Norm is an EDPS engineering design-practice standard document.
// normNumber is human-meaningful but not enforced unique.
type Norm struct {
	ID          string    `json:"id"`
	NormNumber  string    `json:"normNumber"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Target      string    `json:"target"`
	CarPart     string    `json:"carPart"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Status      string    `json:"status"`
}

func (n Norm) RecordID() string { return n.ID }

func (n Norm) Stamped(t time.Time) Norm {
	n.UpdatedAt = t
	return n
}

// NormPatch carries the fields a partial update may change.
// A nil field is left untouched.
type NormPatch struct {
	NormNumber  *string   `json:"normNumber"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Target      *string   `json:"target"`
	CarPart     *string   `json:"carPart"`
	Images      *[]string `json:"images"`
	Status      *string   `json:"status"`
}

// Apply merges the patch onto n field by field.
func (p NormPatch) Apply(n *Norm) {
	if p.NormNumber != nil {
		n.NormNumber = *p.NormNumber
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Target != nil {
		n.Target = *p.Target
	}
	if p.CarPart != nil {
		n.CarPart = *p.CarPart
	}
	if p.Images != nil {
		n.Images = *p.Images
	}
	if p.Status != nil {
		n.Status = *p.Status
	}
}
