// Package clips stores hand-picked preview clips per identifier.
//
// A clip overrides nothing automatically; it is a user's saved choice that
// clients may prefer over the analyzed offset. Durations are kept between
// MinDuration and MaxDuration seconds and every stored time is rounded to
// two decimals.
package clips
