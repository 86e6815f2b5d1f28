package instrument

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Info describes a supported instrument and its market defaults.
type Info struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Timezone string `json:"timezone"`
}

type matcher struct {
	info     Info
	patterns []*regexp.Regexp
}

func compile(info Info, patterns ...string) matcher {
	m := matcher{info: info}
	for _, p := range patterns {
		m.patterns = append(m.patterns, regexp.MustCompile(p))
	}
	return m
}

// matchers are checked in declaration order; the first hit wins.
var matchers = []matcher{
	compile(Info{Code: "US100", Name: "NASDAQ-100 E-Mini Futures", Symbol: "NQ", Exchange: "CME", Timezone: "America/New_York"},
		`US100`, `NQ`, `NDX`, `NASDAQ`),
	// ES must stand alone as a token: plenty of filenames contain the
	// letters "es" (prices, candles) without meaning the S&P contract.
	compile(Info{Code: "ES", Name: "S&P 500 E-Mini Futures", Symbol: "ES", Exchange: "CME", Timezone: "America/Chicago"},
		`(^|[^A-Z0-9])ES([^A-Z0-9]|$)`, `SPX`, `SP500`, `S&P`),
	compile(Info{Code: "UK100", Name: "FTSE 100 Index", Symbol: "FTSE", Exchange: "LSE", Timezone: "Europe/London"},
		`UK100`, `FTSE\s*100`, `FTSE`),
	compile(Info{Code: "GER40", Name: "DAX Index", Symbol: "DAX", Exchange: "Xetra", Timezone: "Europe/Berlin"},
		`GER\s*40`, `DAX`),
}

var defaultInfo = Info{Code: "US100", Name: "NASDAQ-100 E-Mini Futures", Symbol: "NQ", Exchange: "CME", Timezone: "America/New_York"}

// Identify maps a filename or raw symbol to an instrument. Unrecognized
// inputs fall back to US100.
func Identify(nameOrPath string) Info {
	name := strings.ToUpper(filepath.Base(nameOrPath))
	for _, m := range matchers {
		for _, p := range m.patterns {
			if p.MatchString(name) {
				return m.info
			}
		}
	}
	return defaultInfo
}

// Lookup returns the info for a known instrument code.
func Lookup(code string) (Info, bool) {
	for _, m := range matchers {
		if m.info.Code == code {
			return m.info, true
		}
	}
	return Info{}, false
}

// Codes lists the supported instrument codes in matcher order.
func Codes() []string {
	out := make([]string, 0, len(matchers))
	for _, m := range matchers {
		out = append(out, m.info.Code)
	}
	return out
}

// IsValid reports whether code is a supported instrument.
func IsValid(code string) bool {
	_, ok := Lookup(code)
	return ok
}
