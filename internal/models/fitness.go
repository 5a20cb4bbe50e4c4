package models

// FitnessTest describes a guided fitness test a user can capture.
// ID doubles as the capture route parameter (e.g. "pushup").
type FitnessTest struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Duration     string   `json:"duration" yaml:"duration"`
	Equipment    []string `json:"equipment" yaml:"equipment"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Icon         string   `json:"icon" yaml:"icon"`
}
