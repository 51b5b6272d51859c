package dto

// UpsertTranslationRequest writes one dictionary entry.
type UpsertTranslationRequest struct {
	Key    string `json:"key" validate:"required"`
	Locale string `json:"locale" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

// BulkUpsertTranslationsRequest writes a batch of dictionary entries.
type BulkUpsertTranslationsRequest struct {
	Items []UpsertTranslationRequest `json:"items" validate:"required,min=1,dive"`
}
