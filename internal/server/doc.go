// Package server exposes the answer-sheet pipeline as an MCP (Model Context
// Protocol) server.
//
// # Protocol
//
// JSON-RPC 2.0 over a line-oriented stream, normally stdio:
//   - Input: one JSON-RPC request per line
//   - Output: one JSON-RPC response per line
//
// Supported MCP methods: initialize, notifications/initialized, tools/list,
// tools/call and ping.
//
// # Available Tools
//
//   - sheet_locate_markers: OCR one image and report the markers and regions found
//   - sheet_process_directory: run a full batch and return its summary
//   - sheet_project_regions: region corners for a given marker, without OCR
//   - sheet_ocr_info: OCR backend diagnostics
//
// Tool results are JSON documents wrapped in MCP text content. Tool failures
// are JSON-RPC errors with code -32000 and the Go error string as data.
//
// The OCR engine is shared by every call. Requests are handled one at a time
// in arrival order.
package server
