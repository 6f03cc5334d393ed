package saver

import (
	"GoldCast/internal/services/features"
	"GoldCast/pkg/util"
)

// Record is the flat row layout shared by the JSON and Parquet savers.
type Record struct {
	Date          string  `json:"date" parquet:"date"`
	MA            float64 `json:"MA" parquet:"ma"`
	EMA           float64 `json:"EMA" parquet:"ema"`
	DEMA          float64 `json:"DEMA" parquet:"dema"`
	KAMA          float64 `json:"KAMA" parquet:"kama"`
	SMA           float64 `json:"SMA" parquet:"sma"`
	SAR           float64 `json:"SAR" parquet:"sar"`
	ADX           float64 `json:"ADX" parquet:"adx"`
	APO           float64 `json:"APO" parquet:"apo"`
	BOP           float64 `json:"BOP" parquet:"bop"`
	CCI           float64 `json:"CCI" parquet:"cci"`
	MACD          float64 `json:"MACD" parquet:"macd"`
	MFI           float64 `json:"MFI" parquet:"mfi"`
	MOM           float64 `json:"MOM" parquet:"mom"`
	RSI           float64 `json:"RSI" parquet:"rsi"`
	AD            float64 `json:"AD" parquet:"ad"`
	ADOSC         float64 `json:"ADOSC" parquet:"adosc"`
	OBV           float64 `json:"OBV" parquet:"obv"`
	TRANGE        float64 `json:"TRANGE" parquet:"trange"`
	ATR           float64 `json:"ATR" parquet:"atr"`
	NATR          float64 `json:"NATR" parquet:"natr"`
	CandlePattern string  `json:"CandlePattern" parquet:"candle_pattern"`
	Trigram       string  `json:"Trigram" parquet:"trigram"`
}

// Records flattens a feature table.
func Records(t *features.FeatureTable) []Record {
	out := make([]Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		m := r.Map()
		out = append(out, Record{
			Date:          util.FormatDate(r.Date),
			MA:            m["MA"],
			EMA:           m["EMA"],
			DEMA:          m["DEMA"],
			KAMA:          m["KAMA"],
			SMA:           m["SMA"],
			SAR:           m["SAR"],
			ADX:           m["ADX"],
			APO:           m["APO"],
			BOP:           m["BOP"],
			CCI:           m["CCI"],
			MACD:          m["MACD"],
			MFI:           m["MFI"],
			MOM:           m["MOM"],
			RSI:           m["RSI"],
			AD:            m["AD"],
			ADOSC:         m["ADOSC"],
			OBV:           m["OBV"],
			TRANGE:        m["TRANGE"],
			ATR:           m["ATR"],
			NATR:          m["NATR"],
			CandlePattern: string(r.CandlePattern),
			Trigram:       string(r.Trigram),
		})
	}
	return out
}
