package cmd

import (
	"errors"
	"testing"

	"github.com/epiagent/epiagent-cli/internal/bridge"
)

func TestParseCallRequest(t *testing.T) {
	req, err := parseCallRequest("incidence2", "incidence",
		`[{"type":"dataframe","records":[{"date":"2024-01-01"}]}]`,
		`{"date_index":"date","interval":7}`)
	if err != nil {
		t.Fatalf("parseCallRequest: %v", err)
	}
	if len(req.Args) != 1 || req.Args[0].Kind != bridge.KindDataFrame {
		t.Fatalf("args not decoded as dataframe: %+v", req.Args)
	}
	if req.Kwargs["interval"].Number != 7 {
		t.Fatalf("kwargs = %+v", req.Kwargs)
	}
}

func TestParseCallRequest_TrimsNames(t *testing.T) {
	req, err := parseCallRequest(" stats ", "median ", "", "")
	if err != nil {
		t.Fatalf("parseCallRequest: %v", err)
	}
	if req.Target() != "stats::median" {
		t.Fatalf("Target() = %q, want stats::median", req.Target())
	}
}

func TestParseCallRequest_Errors(t *testing.T) {
	if _, err := parseCallRequest("pkg", "f", `{"not":"array"}`, ""); err == nil {
		t.Error("expected error for non-array --args")
	}
	if _, err := parseCallRequest("pkg", "f", "", `[1]`); err == nil {
		t.Error("expected error for non-object --kwargs")
	}
	if _, err := parseCallRequest("pkg", "bad name", "", ""); !errors.Is(err, bridge.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
