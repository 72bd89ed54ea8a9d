package api_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"chorus/internal/api"
	"chorus/internal/services"
)

func TestRequestUnmarshalAcceptsLegacyNames(t *testing.T) {
	tests := []struct {
		name string
		body string
		want api.Request
	}{
		{"current", `{"identifier":"BV1","requested_duration":15}`, api.Request{Identifier: "BV1", RequestedDuration: 15}},
		{"legacy", `{"bvid":"BV2","duration":12.5}`, api.Request{Identifier: "BV2", RequestedDuration: 12.5}},
		{"current wins", `{"identifier":"BV3","bvid":"old","requested_duration":10,"duration":99}`, api.Request{Identifier: "BV3", RequestedDuration: 10}},
		{"duration omitted", `{"bvid":"BV4"}`, api.Request{Identifier: "BV4"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got api.Request
			if err := json.Unmarshal([]byte(tc.body), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRequestUnmarshalRejectsBadJSON(t *testing.T) {
	var req api.Request
	if err := json.Unmarshal([]byte(`{"bvid": 12}`), &req); err == nil {
		t.Fatal("expected type error")
	}
}

func TestRequestDefaultsAndValidate(t *testing.T) {
	req := api.Request{Identifier: "  BV1  "}.WithDefaults(20)
	if req.Identifier != "BV1" || req.RequestedDuration != 20 {
		t.Fatalf("unexpected defaults %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := []api.Request{
		{Identifier: "", RequestedDuration: 20},
		{Identifier: "BV1", RequestedDuration: -1},
		{Identifier: "BV1", RequestedDuration: math.Inf(1)},
		{Identifier: "BV1", RequestedDuration: math.NaN()},
	}
	for _, r := range bad {
		if err := r.Validate(); !errors.Is(err, services.ErrValidation) {
			t.Errorf("Validate(%+v) = %v, want validation error", r, err)
		}
	}
}
