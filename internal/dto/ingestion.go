package dto

// IngestionSummary reports the outcome of a tabular ingestion batch.
type IngestionSummary struct {
	Templates []IngestedTemplate `json:"templates"`
	RowCount  int                `json:"rowCount"`
}

// IngestedTemplate summarises one produced template.
type IngestedTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sections int    `json:"sections"`
	Fields   int    `json:"fields"`
}
