package instrument

import "testing"

func TestIdentify(t *testing.T) {
	cases := []struct {
		in   string
		code string
		tz   string
	}{
		{"data_NQ_20251119.csv", "US100", "America/New_York"},
		{"nasdaq_data.csv", "US100", "America/New_York"},
		{"ES_prices_20251119.csv", "ES", "America/Chicago"},
		{"spx_minute.csv", "ES", "America/Chicago"},
		{"FTSE_UK100_data.csv", "UK100", "Europe/London"},
		{"dax_export.csv", "GER40", "Europe/Berlin"},
		{"mystery_prices.csv", "US100", "America/New_York"},
		{"/tmp/upload/US100_1m.csv", "US100", "America/New_York"},
	}
	for _, c := range cases {
		got := Identify(c.in)
		if got.Code != c.code || got.Timezone != c.tz {
			t.Fatalf("Identify(%q) = %s/%s, want %s/%s", c.in, got.Code, got.Timezone, c.code, c.tz)
		}
	}
}

func TestLookup(t *testing.T) {
	info, ok := Lookup("UK100")
	if !ok || info.Exchange != "LSE" {
		t.Fatalf("Lookup(UK100) = %+v, %v", info, ok)
	}
	if _, ok := Lookup("XAUUSD"); ok {
		t.Fatalf("Lookup(XAUUSD) unexpectedly succeeded")
	}
}

func TestIsValid(t *testing.T) {
	for _, code := range []string{"US100", "ES", "UK100", "GER40"} {
		if !IsValid(code) {
			t.Fatalf("%s should be valid", code)
		}
	}
	if IsValid("BTCUSD") {
		t.Fatalf("BTCUSD should not be valid")
	}
}
