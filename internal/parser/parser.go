package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// Input bundles the raw bytes or filesystem paths for the three documents
// the parser accepts. Exactly one of Bytes/Path should be set
// per field; Path is read lazily during Parse.
type Input struct {
	ScheduleBytes []byte
	SchedulePath  string

	DarkBytes []byte
	DarkPath  string

	PossiblePeriodsBytes []byte
	PossiblePeriodsPath  string
}

func readSource(bytesVal []byte, path string) ([]byte, error) {
	if bytesVal != nil {
		return bytesVal, nil
	}
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// Parse decodes Input into a domain.ParsedSchedule, ready for
// Repository.StoreSchedule. It fails with a domain.Error of kind
// InvalidInput (carrying a field path) on any structural problem.
func Parse(in Input) (domain.ParsedSchedule, error) {
	scheduleRaw, err := readSource(in.ScheduleBytes, in.SchedulePath)
	if err != nil {
		return domain.ParsedSchedule{}, domain.NewError(domain.KindInvalidInput, "cannot read schedule document", err)
	}
	if len(scheduleRaw) == 0 {
		return domain.ParsedSchedule{}, domain.InvalidInput("schedule", "schedule document is empty")
	}

	checksum, err := Checksum(scheduleRaw)
	if err != nil {
		return domain.ParsedSchedule{}, domain.InvalidInput("schedule", "schedule document is not valid JSON: "+err.Error())
	}

	var doc scheduleDoc
	if err := json.Unmarshal(scheduleRaw, &doc); err != nil {
		return domain.ParsedSchedule{}, domain.InvalidInput("schedule", "schedule document is not valid JSON: "+err.Error())
	}
	if doc.Name == "" {
		return domain.ParsedSchedule{}, domain.InvalidInput("schedule.name", "name is required")
	}
	if len(doc.Blocks) == 0 {
		return domain.ParsedSchedule{}, domain.InvalidInput("schedule.blocks", "at least one block is required")
	}

	darkPeriods, err := parseDarkPeriods(doc, in)
	if err != nil {
		return domain.ParsedSchedule{}, err
	}

	possible, err := parsePossiblePeriods(in)
	if err != nil {
		return domain.ParsedSchedule{}, err
	}

	seen := make(map[string]struct{}, len(doc.Blocks))
	blocks := make([]domain.ParsedBlock, 0, len(doc.Blocks))
	for i, b := range doc.Blocks {
		path := fmt.Sprintf("schedule.blocks[%d]", i)
		pb, err := parseBlock(path, b, possible)
		if err != nil {
			return domain.ParsedSchedule{}, err
		}
		if _, dup := seen[pb.OriginalBlockID]; dup {
			return domain.ParsedSchedule{}, domain.InvalidInput(path+".id", fmt.Sprintf("duplicate block id %q within document", pb.OriginalBlockID))
		}
		seen[pb.OriginalBlockID] = struct{}{}
		blocks = append(blocks, pb)
	}

	return domain.ParsedSchedule{
		Name:        doc.Name,
		Checksum:    checksum,
		DarkPeriods: darkPeriods,
		Blocks:      blocks,
	}, nil
}

func parseDarkPeriods(doc scheduleDoc, in Input) ([]domain.Interval, error) {
	periods := doc.DarkPeriods
	darkRaw, err := readSource(in.DarkBytes, in.DarkPath)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, "cannot read dark-periods document", err)
	}
	if len(darkRaw) > 0 {
		var dd darkPeriodsDoc
		if err := json.Unmarshal(darkRaw, &dd); err != nil {
			return nil, domain.InvalidInput("dark_periods", "dark-periods document is not valid JSON: "+err.Error())
		}
		periods = dd.DarkPeriods
	}
	out := make([]domain.Interval, 0, len(periods))
	for i, p := range periods {
		if p.Stop < p.Start {
			return nil, domain.InvalidInput(fmt.Sprintf("dark_periods[%d]", i), "malformed time window: stop before start")
		}
		out = append(out, domain.Interval{Start: p.Start, Stop: p.Stop})
	}
	return out, nil
}

func parsePossiblePeriods(in Input) (map[string][]domain.Interval, error) {
	raw, err := readSource(in.PossiblePeriodsBytes, in.PossiblePeriodsPath)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, "cannot read possible-periods document", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var pd possiblePeriodsDoc
	if err := json.Unmarshal(raw, &pd); err != nil {
		return nil, domain.InvalidInput("possible_periods", "possible-periods document is not valid JSON: "+err.Error())
	}
	out := make(map[string][]domain.Interval, len(pd.Blocks))
	for id, periods := range pd.Blocks {
		ivs := make([]domain.Interval, 0, len(periods))
		for i, p := range periods {
			if p.Stop < p.Start {
				return nil, domain.InvalidInput(fmt.Sprintf("possible_periods.blocks[%s][%d]", id, i), "malformed time window: stop before start")
			}
			ivs = append(ivs, domain.Interval{Start: p.Start, Stop: p.Stop})
		}
		out[id] = ivs
	}
	return out, nil
}

// parseBlockID normalizes the two id tagging families (JSON string or JSON
// integer) to a string, preserved round-trip as OriginalBlockID.
func parseBlockID(path string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", domain.InvalidInput(path+".id", "id is required")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", domain.InvalidInput(path+".id", "id is required")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := n.Int64(); err == nil {
			return n.String(), nil
		}
	}
	return "", domain.InvalidInput(path+".id", "unknown id type: expected string or integer")
}

func parseBlock(path string, b blockDoc, possible map[string][]domain.Interval) (domain.ParsedBlock, error) {
	id, err := parseBlockID(path, b.ID)
	if err != nil {
		return domain.ParsedBlock{}, err
	}

	if b.Priority == nil {
		return domain.ParsedBlock{}, domain.InvalidInput(path+".priority", "priority is required")
	}
	if b.MinObservationSec == nil {
		return domain.ParsedBlock{}, domain.InvalidInput(path+".min_observation_sec", "min_observation_sec is required")
	}
	if b.RequestedDurationSec == nil {
		return domain.ParsedBlock{}, domain.InvalidInput(path+".requested_duration_sec", "requested_duration_sec is required")
	}
	if b.Target.RADeg == nil {
		return domain.ParsedBlock{}, domain.InvalidInput(path+".target.ra_deg", "ra_deg is required")
	}
	if b.Target.DecDeg == nil {
		return domain.ParsedBlock{}, domain.InvalidInput(path+".target.dec_deg", "dec_deg is required")
	}

	target := domain.Target{
		Name:     b.Target.Name,
		RADeg:    *b.Target.RADeg,
		DecDeg:   *b.Target.DecDeg,
		PMRaMas:  b.Target.PMRa,
		PMDecMas: b.Target.PMDec,
		Equinox:  b.Target.Equinox,
	}

	var cons *domain.Constraints
	if b.Constraints != nil {
		c := domain.Constraints{}
		if b.Constraints.Altitude != nil {
			c.Altitude = &domain.Range{Min: b.Constraints.Altitude.Min, Max: b.Constraints.Altitude.Max}
		}
		if b.Constraints.Azimuth != nil {
			c.Azimuth = &domain.Range{Min: b.Constraints.Azimuth.Min, Max: b.Constraints.Azimuth.Max}
		}
		if b.Constraints.FixedWindow != nil {
			w := b.Constraints.FixedWindow
			if w.Stop < w.Start {
				return domain.ParsedBlock{}, domain.InvalidInput(path+".constraints.fixed_window", "malformed time window: stop before start")
			}
			c.FixedWindow = &domain.Interval{Start: w.Start, Stop: w.Stop}
		}
		if !c.HasAny() {
			return domain.ParsedBlock{}, domain.InvalidInput(path+".constraints", "at least one constraint component is required when constraints is present")
		}
		cons = &c
	}

	var visibility []domain.Interval
	if vp, ok := possible[id]; ok {
		visibility = vp
	} else {
		visibility = make([]domain.Interval, 0, len(b.VisibilityPeriods))
		for i, p := range b.VisibilityPeriods {
			if p.Stop < p.Start {
				return domain.ParsedBlock{}, domain.InvalidInput(fmt.Sprintf("%s.visibility_periods[%d]", path, i), "malformed time window: stop before start")
			}
			visibility = append(visibility, domain.Interval{Start: p.Start, Stop: p.Stop})
		}
	}

	var assignment *domain.Interval
	if b.Assignment != nil {
		if b.Assignment.Stop < b.Assignment.Start {
			return domain.ParsedBlock{}, domain.InvalidInput(path+".assignment", "malformed time window: stop before start")
		}
		assignment = &domain.Interval{Start: b.Assignment.Start, Stop: b.Assignment.Stop}
	}

	return domain.ParsedBlock{
		OriginalBlockID:      id,
		Target:               target,
		Constraints:          cons,
		Priority:             *b.Priority,
		MinObservationSec:    *b.MinObservationSec,
		RequestedDurationSec: *b.RequestedDurationSec,
		VisibilityPeriods:    visibility,
		Assignment:           assignment,
	}, nil
}
