package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingConfiguration ErrorCode = 102
	ErrCodeMissingCredentials   ErrorCode = 103
	ErrCodeConfigFileUnreadable ErrorCode = 104

	// Portfolio errors (200-299)
	ErrCodePriceUnavailable   ErrorCode = 200
	ErrCodeSingularCovariance ErrorCode = 201

	// Indicator errors (300-399)
	ErrCodeIndicatorsUnavailable ErrorCode = 300
	ErrCodeIndicatorCalculation  ErrorCode = 301
	ErrCodeInvalidPeriod         ErrorCode = 302
	ErrCodeInvalidType           ErrorCode = 303
	ErrCodeMissingParameter      ErrorCode = 304
	ErrCodeIndicatorNotFound     ErrorCode = 305
	ErrCodeIndicatorRegistered   ErrorCode = 306

	// Trading errors (500-599)
	ErrCodeInsufficientBalance  ErrorCode = 500
	ErrCodeInsufficientHoldings ErrorCode = 501
	ErrCodeRiskExceeded         ErrorCode = 502
	ErrCodeGrowthLimitExceeded  ErrorCode = 503
	ErrCodeTradingHalted        ErrorCode = 504
	ErrCodeInvalidQuantity      ErrorCode = 505
	ErrCodeInvalidPrice         ErrorCode = 506

	// Environment errors (600-699)
	ErrCodeEnvironmentConstruction ErrorCode = 600
	ErrCodeNoAssets                ErrorCode = 601
	ErrCodeSeriesLengthMismatch    ErrorCode = 602
	ErrCodeFeatureWidthMismatch    ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeUnsupportedSymbol     ErrorCode = 700
	ErrCodeMissingBarAtStep      ErrorCode = 701
	ErrCodeMarketDataFetchFailed ErrorCode = 702
	ErrCodeMarketDataParseFailed ErrorCode = 703
	ErrCodeInvalidTimespan       ErrorCode = 704
	ErrCodeInvalidProvider       ErrorCode = 705
	ErrCodeNoActiveSymbols       ErrorCode = 706

	// Step fallbacks (800-899)
	ErrCodeObservation       ErrorCode = 800
	ErrCodeRewardComputation ErrorCode = 801

	// Journal errors (900-999)
	ErrCodeJournalWriteFailed  ErrorCode = 900
	ErrCodeJournalQueryFailed  ErrorCode = 901
	ErrCodeJournalIncompatible ErrorCode = 902
)

// Category groups error codes into the families the step loop dispatches on.
type Category string

const (
	CategoryUnknown     Category = "unknown"
	CategoryConfig      Category = "config"
	CategoryPortfolio   Category = "portfolio"
	CategoryIndicator   Category = "indicator"
	CategoryTrading     Category = "trading"
	CategoryEnvironment Category = "environment"
	CategoryMarketData  Category = "market_data"
	CategoryObservation Category = "observation"
	CategoryReward      Category = "reward"
	CategoryJournal     Category = "journal"
)

// Category returns the family a code belongs to.
func (c ErrorCode) Category() Category {
	switch {
	case c >= 100 && c < 200:
		return CategoryConfig
	case c >= 200 && c < 300:
		return CategoryPortfolio
	case c >= 300 && c < 400:
		return CategoryIndicator
	case c >= 500 && c < 600:
		return CategoryTrading
	case c >= 600 && c < 700:
		return CategoryEnvironment
	case c >= 700 && c < 800:
		return CategoryMarketData
	case c == ErrCodeObservation:
		return CategoryObservation
	case c == ErrCodeRewardComputation:
		return CategoryReward
	case c >= 900 && c < 1000:
		return CategoryJournal
	default:
		return CategoryUnknown
	}
}
