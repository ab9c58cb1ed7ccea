package formgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	types "github.com/yungbote/formflow-backend/internal/domain/form"
)

func TestSanitizeRejects(t *testing.T) {
	cases := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"string", "hello"},
		{"array", []any{map[string]any{"title": "x"}}},
		{"empty object", map[string]any{}},
		{"title only", map[string]any{"title": "x"}},
		{"empty title", map[string]any{
			"title":     "",
			"questions": []any{map[string]any{"title": "Q", "type": "text"}},
		}},
		{"whitespace title", map[string]any{
			"title":     "   ",
			"questions": []any{map[string]any{"title": "Q", "type": "text"}},
		}},
		{"no questions", map[string]any{"title": "x", "questions": []any{}}},
		{"questions not a list", map[string]any{"title": "x", "questions": "Q1"}},
		{"non-string title", map[string]any{
			"title":     42.0,
			"questions": []any{map[string]any{"title": "Q", "type": "text"}},
		}},
		{"every question untitled", map[string]any{
			"title": "x",
			"questions": []any{
				map[string]any{"title": "  ", "type": "text"},
				map[string]any{"type": "mcq"},
				"not an object",
			},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Sanitize(tc.in)
			if res.OK {
				t.Fatalf("expected rejection, got %+v", res.Form)
			}
			if diff := cmp.Diff(GeneratedForm{}, res.Form); diff != "" {
				t.Fatalf("rejected result carries a form (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSanitizeTrimsAndMapsKinds(t *testing.T) {
	in := map[string]any{
		"title": "  Onboarding  ",
		"questions": []any{
			map[string]any{"title": " Role? ", "type": "mcq"},
		},
	}
	res := Sanitize(in)
	if !res.OK {
		t.Fatalf("expected accept")
	}
	want := GeneratedForm{
		Title: "Onboarding",
		Questions: []GeneratedQuestion{
			{Title: "Role?", Kind: types.KindMultipleChoice},
		},
	}
	if diff := cmp.Diff(want, res.Form); diff != "" {
		t.Fatalf("Sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeLenientKinds(t *testing.T) {
	in := map[string]any{
		"title": "Feedback",
		"questions": []any{
			map[string]any{"title": "Rate us", "type": "rating"},
			map[string]any{"title": "No type"},
			map[string]any{"title": "Numeric type", "type": 3.0},
			map[string]any{"title": "Pick one", "type": "mcq"},
			map[string]any{"title": "Upper", "type": "MCQ"},
		},
	}
	res := Sanitize(in)
	if !res.OK {
		t.Fatalf("expected accept")
	}
	want := []GeneratedQuestion{
		{Title: "Rate us", Kind: types.KindText},
		{Title: "No type", Kind: types.KindText},
		{Title: "Numeric type", Kind: types.KindText},
		{Title: "Pick one", Kind: types.KindMultipleChoice},
		{Title: "Upper", Kind: types.KindText},
	}
	if diff := cmp.Diff(want, res.Form.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeDropsUntitledQuestionsKeepingOrder(t *testing.T) {
	in := map[string]any{
		"title": "Survey",
		"questions": []any{
			map[string]any{"title": "First", "type": "text"},
			map[string]any{"title": "   ", "type": "mcq"},
			nil,
			map[string]any{"title": 7.0, "type": "text"},
			map[string]any{"title": "Second", "type": "mcq"},
		},
		"extra": "ignored",
	}
	res := Sanitize(in)
	if !res.OK {
		t.Fatalf("expected accept")
	}
	want := []GeneratedQuestion{
		{Title: "First", Kind: types.KindText},
		{Title: "Second", Kind: types.KindMultipleChoice},
	}
	if diff := cmp.Diff(want, res.Form.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`{"title":"  Onboarding  ","questions":[{"title":" Role? ","type":"mcq"}]}`,
		`{"title":"Feedback","questions":[{"title":"Rate","type":"rating"},{"title":"","type":"text"},{"title":"Why?"}]}`,
	}
	for _, raw := range inputs {
		first, ok := DecodeAndSanitize(raw)
		if !ok {
			t.Fatalf("DecodeAndSanitize(%s): expected accept", raw)
		}
		second := Sanitize(first.AsMap())
		if !second.OK {
			t.Fatalf("re-sanitize rejected %+v", first)
		}
		if diff := cmp.Diff(first, second.Form); diff != "" {
			t.Fatalf("not idempotent (-first +second):\n%s", diff)
		}
	}
}

func TestDecodeAndSanitizeRejectsNonJSON(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"title":`, "[]", "null"} {
		if _, ok := DecodeAndSanitize(raw); ok {
			t.Fatalf("DecodeAndSanitize(%q): expected rejection", raw)
		}
	}
}

func TestFormSchemaIsStrict(t *testing.T) {
	s := FormSchema()
	if s["additionalProperties"] != false {
		t.Fatalf("root additionalProperties must be false")
	}
	if diff := cmp.Diff([]string{"title", "questions"}, s["required"]); diff != "" {
		t.Fatalf("root required mismatch:\n%s", diff)
	}
	items := s["properties"].(map[string]any)["questions"].(map[string]any)["items"].(map[string]any)
	if items["additionalProperties"] != false {
		t.Fatalf("question additionalProperties must be false")
	}
	enum := items["properties"].(map[string]any)["type"].(map[string]any)["enum"]
	if diff := cmp.Diff([]string{"text", "mcq"}, enum); diff != "" {
		t.Fatalf("type enum mismatch:\n%s", diff)
	}
}
