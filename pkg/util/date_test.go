package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestParseTimeInNaive(t *testing.T) {
    loc, err := time.LoadLocation("America/New_York")
    if err != nil {
        t.Fatal(err)
    }
    got, ok := ParseTimeIn("2024-10-10 13:00", loc)
    if !ok {
        t.Fatalf("expected ok")
    }
    want := time.Date(2024, 10, 10, 13, 0, 0, 0, loc)
    if !got.Equal(want) {
        t.Fatalf("got %v want %v", got, want)
    }
}

func TestParseTimeInGarbage(t *testing.T) {
    if _, ok := ParseTimeIn("not a time", time.UTC); ok {
        t.Fatalf("expected failure")
    }
}