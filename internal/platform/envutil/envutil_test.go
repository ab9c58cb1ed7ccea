package envutil

import (
	"reflect"
	"testing"
)

func TestEnvParsing(t *testing.T) {
	t.Setenv("FF_INT", " 42 ")
	t.Setenv("FF_BAD_INT", "nope")
	t.Setenv("FF_FLOAT", "0.2")
	t.Setenv("FF_BOOL", "on")
	t.Setenv("FF_CSV", "http://a, ,http://b")
	t.Setenv("FF_STR", "  value ")

	if got := Int("FF_INT", 1); got != 42 {
		t.Fatalf("Int=%d", got)
	}
	if got := Int("FF_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback=%d", got)
	}
	if got := Float("FF_FLOAT", 1); got != 0.2 {
		t.Fatalf("Float=%v", got)
	}
	if !Bool("FF_BOOL", false) {
		t.Fatalf("Bool expected true")
	}
	if Bool("FF_MISSING_BOOL", false) {
		t.Fatalf("Bool default expected false")
	}
	if got := CSV("FF_CSV", nil); !reflect.DeepEqual(got, []string{"http://a", "http://b"}) {
		t.Fatalf("CSV=%v", got)
	}
	if got := String("FF_STR", "x"); got != "value" {
		t.Fatalf("String=%q", got)
	}
	if got := String("FF_MISSING", "x"); got != "x" {
		t.Fatalf("String default=%q", got)
	}
}
