// Package config loads chorus settings from TOML.
//
// Lookup order is the --config flag, then $CHORUS_CONFIG, then
// ~/.config/chorus/config.toml and ./chorus.toml. Unknown keys are rejected.
// After decoding, paths are expanded, CHORUS_API_TOKEN and CHORUS_API_BIND
// fill unset API settings, and Validate reports the first invalid field.
package config
