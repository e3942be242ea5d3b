package models

import "encoding/json"

// ScriptRequest is the payload for POST /api/v1/script.
type ScriptRequest struct {
	Target

	// Script is a JavaScript function, e.g. "() => document.title". Required.
	Script string `json:"script" binding:"required"`

	Options Options `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *ScriptRequest) Defaults() {
	r.Target.Defaults()
	r.Options.Fallback.Defaults()
}

// ScriptResponse is the response for POST /api/v1/script.
// A script that throws is reported with Success=false and a ScriptError,
// not as a failed request.
type ScriptResponse struct {
	Success     bool            `json:"success"`
	RequestID   string          `json:"request_id,omitempty"`
	Data        json.RawMessage `json:"data"`
	ScriptError string          `json:"script_error,omitempty"`
	Timing      TimingInfo      `json:"timing"`
	Error       *ErrorDetail    `json:"error,omitempty"`
}
