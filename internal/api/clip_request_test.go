package api_test

import (
	"encoding/json"
	"errors"
	"testing"

	"chorus/internal/api"
	"chorus/internal/services"
)

func TestClipRequestUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantStart float64
		wantEnd   *float64
	}{
		{name: "current", body: `{"start_time":12.5,"end_time":40}`, wantStart: 12.5, wantEnd: floatPtr(40)},
		{name: "legacy", body: `{"startTime":3,"endTime":25}`, wantStart: 3, wantEnd: floatPtr(25)},
		{name: "end omitted", body: `{"start_time":8}`, wantStart: 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req api.ClipRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if err := req.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if *req.StartTime != tc.wantStart {
				t.Fatalf("start = %v, want %v", *req.StartTime, tc.wantStart)
			}
			switch {
			case tc.wantEnd == nil && req.EndTime != nil:
				t.Fatalf("expected no end, got %v", *req.EndTime)
			case tc.wantEnd != nil && (req.EndTime == nil || *req.EndTime != *tc.wantEnd):
				t.Fatalf("end = %v, want %v", req.EndTime, *tc.wantEnd)
			}
		})
	}
}

func TestClipRequestRequiresStart(t *testing.T) {
	var req api.ClipRequest
	if err := json.Unmarshal([]byte(`{"end_time":30}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := req.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }
