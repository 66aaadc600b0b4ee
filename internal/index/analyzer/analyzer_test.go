package analyzer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Hello World", "hello world"},
		{"diacritics", "Café Açaí", "cafe acai"},
		{"punctuation", "rock-n-roll!", "rock n roll"},
		{"collapse whitespace", "a  b\t\nc", "a b c"},
		{"underscore kept", "lo_fi beats", "lo_fi beats"},
		{"digits kept", "m83 midnight", "m83 midnight"},
		{"only punctuation", "!!! ??? ...", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"Café del Mar", "Señor Coconut!", "already normal text"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "Midnight City", []string{"midnight", "city"}},
		{"drops single rune tokens", "a b cd", []string{"cd"}},
		{"diacritics fold", "Café", []string{"cafe"}},
		{"empty", "", []string{}},
		{"punctuation only", "?!.,;:", []string{}},
		{"mixed", "M83 - Midnight City (2011)", []string{"m83", "midnight", "city", "2011"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenizeAccentedMatchesPlain(t *testing.T) {
	accented := Tokenize("Café")
	plain := Tokenize("cafe")
	if !reflect.DeepEqual(accented, plain) {
		t.Errorf("accented and plain forms tokenize differently: %v vs %v", accented, plain)
	}
}
