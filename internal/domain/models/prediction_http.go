package models

// Requests for the prediction HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	Instrument string `query:"instrument" json:"instrument"`
	Timezone   string `query:"timezone" json:"timezone"`
	Timestamp  string `query:"timestamp" json:"timestamp"`
	N          int    `query:"n" json:"n" default:"10080" validate:"gte=1,lte=50000"`
	TF         string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type WeightsGetRequest struct {
	Instrument string `query:"instrument" json:"instrument" validate:"required"`
}

type WeightsPutRequest struct {
	Instrument string             `json:"instrument" validate:"required"`
	Weights    map[string]float64 `json:"weights" validate:"required,min=1"`
	ChangedBy  string             `json:"changed_by"`
}

type WeightsResetRequest struct {
	Instrument string `json:"instrument" validate:"required"`
	ChangedBy  string `json:"changed_by"`
}
