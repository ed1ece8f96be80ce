package finnhub

// quoteResponse is the raw payload of the Finnhub /quote endpoint. Field names
// follow Finnhub's single-letter convention: c is the current price, d the
// absolute daily change, dp the percent change and pc the previous close.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// candleResponse is the raw payload of the Finnhub /stock/candle endpoint.
// Status is "ok" when data is present and "no_data" otherwise.
type candleResponse struct {
	Close     []float64 `json:"c"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Open      []float64 `json:"o"`
	Status    string    `json:"s"`
	Timestamp []int64   `json:"t"`
	Volume    []int64   `json:"v"`
}
