// Package domain models NOAA Storm Events records and the impact summaries
// derived from them.
//
// # Data Source
//
// The NOAA Storm Events database is published as a bzip2-compressed CSV with
// one row per observed event. Only seven columns matter for the impact report:
//
//	EVTYPE      free-text event category, e.g. "TORNADO", "Flash Flood"
//	FATALITIES  deaths directly attributed to the event
//	INJURIES    injuries directly attributed to the event
//	PROPDMG     property damage magnitude
//	PROPDMGEXP  property damage exponent code
//	CROPDMG     crop damage magnitude
//	CROPDMGEXP  crop damage exponent code
//
// # Exponent Codes
//
// Damage amounts are stored as a magnitude plus a scale code. The encoding is
// inconsistent across decades of data entry:
//
//	B/b -> 10^9   M/m -> 10^6   K/k -> 10^3   H/h -> 10^2
//	"0".."9"      -> 10^digit
//	"", "+", "-", "?" and anything else -> 10^0
//
// Unrecognized codes are never an error. See [DecodeExponent].
//
// # Event Types
//
// EVTYPE is not a controlled vocabulary. "TSTM WIND" and "THUNDERSTORM WIND",
// or "Flood" and "FLOOD", are distinct groups because grouping uses exact
// string equality. Canonicalizing them would change the published rankings.
//
// # Malformed Records
//
// A row whose numeric columns do not parse is rejected with
// [ErrMalformedRecord]. Whether that skips the row or aborts the run is a
// pipeline policy, not a domain concern.
package domain
