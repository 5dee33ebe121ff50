package types

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeROC            IndicatorType = "roc"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeADX            IndicatorType = "adx"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeOBV            IndicatorType = "obv"
)

// AllIndicatorTypes lists every indicator the pipeline can compute, in default pipeline order.
var AllIndicatorTypes = []IndicatorType{
	IndicatorTypeRSI,
	IndicatorTypeROC,
	IndicatorTypeADX,
	IndicatorTypeEMA,
	IndicatorTypeMA,
	IndicatorTypeMACD,
	IndicatorTypeATR,
	IndicatorTypeBollingerBands,
	IndicatorTypeOBV,
}
