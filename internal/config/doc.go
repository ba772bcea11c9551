// Package config resolves the sheet-roi configuration.
//
// Values are layered, lowest precedence first:
//
//  1. built-in defaults matching the reference answer sheet
//  2. an optional config file (YAML, JSON or TOML), either named with
//     --config / SHEET_ROI_CONFIG or found as sheet-roi.* in the working directory
//  3. environment variables prefixed with SHEET_ROI_, with dots in the key
//     replaced by underscores (SHEET_ROI_OUTPUT_CSV for output.csv)
//  4. command-line flags registered with RegisterFlags
//
// SHEET_ROI_LOG_LEVEL=debug is accepted as an alias for debug=true.
package config
