// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package capability_test

import (
	"errors"
	"strings"
	"testing"

	"go.astrophena.name/astrobot/internal/capability"
	"go.astrophena.name/astrobot/internal/testutil"
)

func resolved(version string) func() (string, error) {
	return func() (string, error) { return version, nil }
}

func missing(msg string) func() (string, error) {
	return func() (string, error) { return "", errors.New(msg) }
}

func TestProbeSourcesAllMissing(t *testing.T) {
	t.Parallel()

	srcs := []capability.Source{
		{Name: "swisseph", Description: "Professional astrological calculations", Resolve: missing("not on PATH")},
		{Name: "lunarcal", Description: "Lunar calendar calculations", Resolve: missing("not on PATH")},
		{Name: "tzdata", Description: "IANA time zone database", Resolve: missing("no zoneinfo")},
	}

	s := capability.ProbeSources(srcs)

	recs := s.Records()
	if len(recs) != len(srcs) {
		t.Fatalf("got %d records, want %d", len(recs), len(srcs))
	}
	for i, r := range recs {
		if r.Name != srcs[i].Name {
			t.Errorf("record %d is %q, want %q (probe order must match source order)", i, r.Name, srcs[i].Name)
		}
		if r.Available {
			t.Errorf("record %q must be unavailable", r.Name)
		}
		if r.Err == "" {
			t.Errorf("record %q must have a non-empty error", r.Name)
		}
	}
}

func TestProbeSourcesVersionDefaults(t *testing.T) {
	t.Parallel()

	s := capability.ProbeSources([]capability.Source{
		{Name: "versioned", Resolve: resolved("2.10.03")},
		{Name: "unversioned", Resolve: resolved("")},
	})

	r, ok := s.Lookup("versioned")
	if !ok || r.Version != "2.10.03" {
		t.Errorf("versioned: got %+v, want Version=2.10.03", r)
	}
	r, ok = s.Lookup("unversioned")
	if !ok || r.Version != "Unknown" {
		t.Errorf("unversioned: got %+v, want Version=Unknown", r)
	}
}

func TestLookupUnknownSource(t *testing.T) {
	t.Parallel()

	s := capability.ProbeSources(nil)
	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup of an untracked source must report false")
	}
	if s.Available("nope") {
		t.Error("Available of an untracked source must report false")
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	s := capability.ProbeSources([]capability.Source{
		{Name: "swisseph", Description: "Professional astrological calculations", Resolve: resolved("")},
		{Name: "lunarcal", Description: "Lunar calendar calculations", Resolve: missing(`exec: "ccal": executable file not found in $PATH`)},
	})

	testutil.AssertEqual(t, s.Summary(), strings.TrimSpace(`
• ✅ **swisseph**: Available
  - Version: Unknown
  - Professional astrological calculations
• ❌ **lunarcal**: Not Available
  - Error: exec: "ccal": executable file not found in $PATH
`))
}

func TestCapabilitiesBaselineAlwaysPresent(t *testing.T) {
	t.Parallel()

	baseline := []string{
		"Julian Day conversions",
		"Basic astronomical time calculations",
		"Seasonal determinations",
		"Date arithmetic and conversions",
		"Time zone handling (UTC base)",
	}

	for name, srcs := range map[string][]capability.Source{
		"nothing resolved": {
			{Name: "swisseph", Resolve: missing("nope")},
			{Name: "lunarcal", Resolve: missing("nope")},
		},
		"everything resolved": {
			{Name: "swisseph", Resolve: resolved("")},
			{Name: "lunarcal", Resolve: resolved("")},
		},
		"no sources at all": nil,
	} {
		t.Run(name, func(t *testing.T) {
			got := capability.ProbeSources(srcs).Capabilities()
			for _, b := range baseline {
				if !strings.Contains(got, b) {
					t.Errorf("capabilities text misses baseline bullet %q:\n%s", b, got)
				}
			}
		})
	}
}

func TestCapabilitiesOptionalBullets(t *testing.T) {
	t.Parallel()

	withPro := capability.ProbeSources([]capability.Source{
		{Name: "swisseph", Resolve: resolved("")},
		{Name: "lunarcal", Resolve: missing("nope")},
	}).Capabilities()
	if !strings.Contains(withPro, "Professional astrological calculations") {
		t.Errorf("professional bullet must be present when swisseph resolved:\n%s", withPro)
	}
	if strings.Contains(withPro, "Lunar calendar conversions") {
		t.Errorf("lunar bullets must be absent when lunarcal didn't resolve:\n%s", withPro)
	}

	withoutPro := capability.ProbeSources([]capability.Source{
		{Name: "swisseph", Resolve: missing("nope")},
		{Name: "lunarcal", Resolve: resolved("")},
	}).Capabilities()
	if strings.Contains(withoutPro, "Professional astrological calculations") {
		t.Errorf("professional bullet must be absent when swisseph didn't resolve:\n%s", withoutPro)
	}
	if !strings.Contains(withoutPro, "Chinese lunar date calculations") {
		t.Errorf("lunar bullets must be present when lunarcal resolved:\n%s", withoutPro)
	}
}

func TestProbeNeverFails(t *testing.T) {
	t.Parallel()

	// Whatever is or isn't installed on the machine running the tests, the
	// probe must come back with one record per tracked source.
	s := capability.Probe()
	recs := s.Records()
	if len(recs) != len(capability.DefaultSources()) {
		t.Fatalf("got %d records, want %d", len(recs), len(capability.DefaultSources()))
	}
	for _, r := range recs {
		if r.Available && r.Version == "" {
			t.Errorf("available record %q must carry a version", r.Name)
		}
		if !r.Available && r.Err == "" {
			t.Errorf("unavailable record %q must carry an error", r.Name)
		}
	}
}
