package parser

import (
	"strings"
	"testing"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func basicDoc() string {
	return `{
		"name": "test-schedule",
		"dark_periods": [{"start": 60000.0, "stop": 60000.5}],
		"blocks": [
			{
				"id": "blk-1",
				"priority": 8.5,
				"min_observation_sec": 1800,
				"requested_duration_sec": 3600,
				"target": {"name": "M31", "ra_deg": 150.0, "dec_deg": -60.0},
				"visibility_periods": [{"start": 61000.0, "stop": 61000.01}]
			}
		]
	}`
}

func TestParse_Basic(t *testing.T) {
	ps, err := Parse(Input{ScheduleBytes: []byte(basicDoc())})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ps.Name != "test-schedule" {
		t.Errorf("Name = %q", ps.Name)
	}
	if len(ps.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(ps.Blocks))
	}
	b := ps.Blocks[0]
	if b.OriginalBlockID != "blk-1" {
		t.Errorf("OriginalBlockID = %q", b.OriginalBlockID)
	}
	if b.Priority != 8.5 {
		t.Errorf("Priority = %v", b.Priority)
	}
	if len(ps.DarkPeriods) != 1 {
		t.Errorf("expected 1 dark period, got %d", len(ps.DarkPeriods))
	}
}

func TestParse_IntegerID(t *testing.T) {
	doc := `{
		"name": "t",
		"blocks": [
			{"id": 42, "priority": 1, "min_observation_sec": 0, "requested_duration_sec": 100,
			 "target": {"ra_deg": 10, "dec_deg": 10},
			 "visibility_periods": [{"start": 0, "stop": 1}]}
		]
	}`
	ps, err := Parse(Input{ScheduleBytes: []byte(doc)})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ps.Blocks[0].OriginalBlockID != "42" {
		t.Errorf("OriginalBlockID = %q, want 42", ps.Blocks[0].OriginalBlockID)
	}
}

func TestParse_DuplicateIDs(t *testing.T) {
	doc := `{
		"name": "t",
		"blocks": [
			{"id": "a", "priority": 1, "min_observation_sec": 0, "requested_duration_sec": 100,
			 "target": {"ra_deg": 10, "dec_deg": 10}, "visibility_periods": [{"start": 0, "stop": 1}]},
			{"id": "a", "priority": 1, "min_observation_sec": 0, "requested_duration_sec": 100,
			 "target": {"ra_deg": 10, "dec_deg": 10}, "visibility_periods": [{"start": 0, "stop": 1}]}
		]
	}`
	_, err := Parse(Input{ScheduleBytes: []byte(doc)})
	if err == nil {
		t.Fatal("expected error for duplicate ids")
	}
	var de *domain.Error
	if !asError(err, &de) {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if de.Kind != domain.KindInvalidInput {
		t.Errorf("Kind = %v", de.Kind)
	}
	if !strings.Contains(de.Message, "duplicate") {
		t.Errorf("Message = %q", de.Message)
	}
}

func TestParse_MissingRequiredField(t *testing.T) {
	doc := `{"name": "t", "blocks": [{"id": "a", "target": {"ra_deg": 1, "dec_deg": 1}}]}`
	_, err := Parse(Input{ScheduleBytes: []byte(doc)})
	if err == nil {
		t.Fatal("expected error for missing priority")
	}
}

func TestParse_MalformedWindow(t *testing.T) {
	doc := `{
		"name": "t",
		"blocks": [
			{"id": "a", "priority": 1, "min_observation_sec": 0, "requested_duration_sec": 100,
			 "target": {"ra_deg": 10, "dec_deg": 10},
			 "visibility_periods": [{"start": 5, "stop": 1}]}
		]
	}`
	_, err := Parse(Input{ScheduleBytes: []byte(doc)})
	if err == nil {
		t.Fatal("expected error for malformed window")
	}
}

func TestParse_PossiblePeriodsOverride(t *testing.T) {
	possible := `{"blocks": {"blk-1": [{"start": 70000.0, "stop": 70001.0}]}}`
	ps, err := Parse(Input{
		ScheduleBytes:        []byte(basicDoc()),
		PossiblePeriodsBytes: []byte(possible),
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := ps.Blocks[0].VisibilityPeriods
	if len(got) != 1 || got[0].Start != 70000.0 {
		t.Errorf("expected possible-periods override, got %v", got)
	}
}

func TestParse_LeniencyForValidatorConcerns(t *testing.T) {
	// Negative priority, inverted durations: parser must NOT reject these —
	// they are Validator concerns and the block must still be storable.
	doc := `{
		"name": "t",
		"blocks": [
			{"id": "a", "priority": -5, "min_observation_sec": 100, "requested_duration_sec": 10,
			 "target": {"ra_deg": 400, "dec_deg": 10},
			 "visibility_periods": [{"start": 0, "stop": 1}]}
		]
	}`
	_, err := Parse(Input{ScheduleBytes: []byte(doc)})
	if err != nil {
		t.Fatalf("Parse should be lenient on semantic issues, got: %v", err)
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	a, err := Checksum([]byte(`{"b": 1, "a": 2.0}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Checksum([]byte(`{"a": 2, "b": 1.0}`))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("checksums should match regardless of key order/number spelling: %q != %q", a, b)
	}
}

func asError(err error, target **domain.Error) bool {
	de, ok := err.(*domain.Error)
	if ok {
		*target = de
	}
	return ok
}
