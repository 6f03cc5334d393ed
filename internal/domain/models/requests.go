package models

// Requests for the prediction HTTP endpoints.

type FeaturesRequest struct {
	Limit int `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=5000"`
}

type PredictRequest struct {
	Source string `query:"source" json:"source" default:"upload" validate:"max=64"`
}

type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
