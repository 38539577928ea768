package report

// Row is one patient's line in the tests summary report. Patients with no
// tests in the range still appear, with zero totals.
type Row struct {
	PatientID                 int64   `json:"patient_id"`
	PatientName               string  `json:"patient_name"`
	TotalTests                int     `json:"total_tests"`
	PercentageWithinThreshold float64 `json:"percentage_within_threshold"`
}
