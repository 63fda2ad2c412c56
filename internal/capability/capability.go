// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package capability reports which optional astronomy data sources are
// available in the current environment.
//
// Each source is resolved exactly once, at probe time. Resolution failure is
// an expected per-source outcome recorded as data, never an error: the bot
// keeps working with baseline calculations and merely stops advertising the
// richer ones.
package capability

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Source is an optional data source the probe knows how to resolve.
type Source struct {
	// Name identifies the source in probe output.
	Name string
	// Description is a one-line summary of what the source provides.
	Description string
	// Resolve attempts to locate the source, returning its version ("" when
	// the source exposes none) or an error when it can't be found.
	Resolve func() (version string, err error)
}

// DefaultSources is the fixed list of sources the bot tracks, in probe order.
func DefaultSources() []Source {
	return []Source{
		{
			Name:        "swisseph",
			Description: "Professional astrological calculations",
			Resolve:     lookPath("swetest"),
		},
		{
			Name:        "lunarcal",
			Description: "Lunar calendar calculations",
			Resolve:     lookPath("ccal"),
		},
		{
			Name:        "ephemdata",
			Description: "Planetary ephemeris data files",
			Resolve:     ephemerisData,
		},
		{
			Name:        "tzdata",
			Description: "IANA time zone database",
			Resolve:     timeZoneData,
		},
		{
			Name:        "cal",
			Description: "Calendar printing utility",
			Resolve:     lookPath("cal"),
		},
	}
}

func lookPath(bin string) func() (string, error) {
	return func() (string, error) {
		if _, err := exec.LookPath(bin); err != nil {
			return "", err
		}
		// PATH lookup tells nothing about the version.
		return "", nil
	}
}

func ephemerisData() (string, error) {
	dir := os.Getenv("SE_EPHE_PATH")
	if dir == "" {
		dir = "/usr/share/swisseph"
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return "", nil
}

func timeZoneData() (string, error) {
	// Loading a named zone fails when neither the system zoneinfo database
	// nor an embedded copy is present.
	if _, err := time.LoadLocation("Europe/Amsterdam"); err != nil {
		return "", err
	}
	return "", nil
}

// Record is the probed state of a single source. It never changes after
// probe time.
type Record struct {
	Name        string
	Description string
	Available   bool
	Version     string // "Unknown" when the source exposes no version
	Err         string // resolution error message, set only when unavailable
}

// Set holds one record per tracked source, in probe order. A Set is
// immutable once returned and safe for concurrent readers.
type Set struct {
	records []Record
}

// Probe resolves the default source list. It never fails: unresolvable
// sources come back as records with Available set to false.
func Probe() Set { return ProbeSources(DefaultSources()) }

// ProbeSources resolves each given source in order. A failing source never
// blocks probing the rest.
func ProbeSources(srcs []Source) Set {
	s := Set{records: make([]Record, 0, len(srcs))}
	for _, src := range srcs {
		rec := Record{Name: src.Name, Description: src.Description}
		ver, err := src.Resolve()
		if err != nil {
			rec.Err = err.Error()
			if rec.Err == "" {
				rec.Err = "unknown resolution error"
			}
		} else {
			rec.Available = true
			rec.Version = ver
			if rec.Version == "" {
				rec.Version = "Unknown"
			}
		}
		s.records = append(s.records, rec)
	}
	return s
}

// Records returns the probed records in probe order.
func (s Set) Records() []Record {
	recs := make([]Record, len(s.records))
	copy(recs, s.records)
	return recs
}

// Lookup returns the record for the named source.
func (s Set) Lookup(name string) (Record, bool) {
	for _, r := range s.records {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}

// Available reports whether the named source resolved.
func (s Set) Available(name string) bool {
	r, ok := s.Lookup(name)
	return ok && r.Available
}

// Summary renders a per-source status report in Telegram Markdown.
func (s Set) Summary() string {
	var sb strings.Builder
	for _, r := range s.records {
		if r.Available {
			fmt.Fprintf(&sb, "• ✅ **%s**: Available\n", r.Name)
			fmt.Fprintf(&sb, "  - Version: %s\n", r.Version)
			fmt.Fprintf(&sb, "  - %s\n", r.Description)
		} else {
			fmt.Fprintf(&sb, "• ❌ **%s**: Not Available\n", r.Name)
			fmt.Fprintf(&sb, "  - Error: %s\n", r.Err)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Capabilities renders the feature-availability bullet list. The baseline
// calculations are always listed; source-specific bullets appear only for
// sources that resolved.
func (s Set) Capabilities() string {
	var sb strings.Builder
	sb.WriteString("**Available Calculations:**\n")
	sb.WriteString("• ✅ Julian Day conversions\n")
	sb.WriteString("• ✅ Basic astronomical time calculations\n")
	sb.WriteString("• ✅ Seasonal determinations\n")
	sb.WriteString("• ✅ Date arithmetic and conversions\n")
	sb.WriteString("• ✅ Time zone handling (UTC base)\n")

	if s.Available("swisseph") {
		sb.WriteString("• ✅ Professional astrological calculations (swisseph)\n")
		sb.WriteString("• ✅ Planetary positions and aspects\n")
		sb.WriteString("• ✅ House calculations\n")
	}
	if s.Available("lunarcal") {
		sb.WriteString("• ✅ Lunar calendar conversions\n")
		sb.WriteString("• ✅ Chinese lunar date calculations\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
