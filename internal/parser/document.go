// Package parser decodes raw schedule documents into the normalized
// relational model of domain.ParsedSchedule. It recognizes two families
// of block-id tagging (string or integer) and preserves them round-trip
// as OriginalBlockID; it never exposes parse-time ids outside this
// package.
package parser

import "encoding/json"

// scheduleDoc is the on-wire shape of a schedule document.
type scheduleDoc struct {
	Name        string      `json:"name"`
	Blocks      []blockDoc  `json:"blocks"`
	DarkPeriods []periodDoc `json:"dark_periods"`
}

// blockDoc is one scheduling block as it appears in the schedule document.
type blockDoc struct {
	ID                   json.RawMessage `json:"id"`
	Priority             *float64        `json:"priority"`
	Target               targetDoc       `json:"target"`
	Constraints          *constraintsDoc `json:"constraints"`
	MinObservationSec    *float64        `json:"min_observation_sec"`
	RequestedDurationSec *float64        `json:"requested_duration_sec"`
	VisibilityPeriods    []periodDoc     `json:"visibility_periods"`
	Assignment           *periodDoc      `json:"assignment"`
}

type targetDoc struct {
	Name    string   `json:"name"`
	RADeg   *float64 `json:"ra_deg"`
	DecDeg  *float64 `json:"dec_deg"`
	PMRa    float64  `json:"pm_ra_mas"`
	PMDec   float64  `json:"pm_dec_mas"`
	Equinox float64  `json:"equinox"`
}

type constraintsDoc struct {
	Altitude    *rangeDoc  `json:"altitude"`
	Azimuth     *rangeDoc  `json:"azimuth"`
	FixedWindow *periodDoc `json:"fixed_window"`
}

type rangeDoc struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type periodDoc struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
}

// darkPeriodsDoc is the on-wire shape of a standalone dark-periods document.
type darkPeriodsDoc struct {
	DarkPeriods []periodDoc `json:"dark_periods"`
}

// possiblePeriodsDoc maps original block id (string or int key) to a
// pre-computed visibility period list, overriding whatever the schedule
// document itself supplied for that block.
type possiblePeriodsDoc struct {
	Blocks map[string][]periodDoc `json:"blocks"`
}
