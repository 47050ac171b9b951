package domain

// ComputeRPN returns the Risk Priority Number: severity x occurrence x
// detection. A missing rating contributes zero, so the product is zero until
// all three ratings are assigned.
func ComputeRPN(severity, occurrence, detection *int) int {
	return ratingOrZero(severity) * ratingOrZero(occurrence) * ratingOrZero(detection)
}

func ratingOrZero(r *int) int {
	if r == nil {
		return 0
	}
	return *r
}
