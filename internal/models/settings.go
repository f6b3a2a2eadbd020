package models

// SettingFlatFee is the app_settings key of the flat per-participant fee.
const SettingFlatFee = "flat_fee"

// AppSettings holds application-wide configuration stored alongside sessions.
type AppSettings struct {
	// FlatFee is charged to every participant of every session.
	FlatFee float64

	// FlatFeeSet is false when storage has no value and FlatFee holds the configured default.
	FlatFeeSet bool
}
