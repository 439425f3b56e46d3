package httpd

import (
	"testing"

	"weatherstation-go/state"
	"weatherstation-go/types"
)

func TestApplyFormSingleField(t *testing.T) {
	st := state.New()
	res := ApplyForm(st, "temp_max=35.5")
	if !res.OK() {
		t.Fatalf("errors: %+v", res.Errors)
	}
	if len(res.Applied) != 1 || res.Applied[0] != (Update{Field: "temp_max", Value: 35.5}) {
		t.Fatalf("applied = %+v", res.Applied)
	}
	lim, _ := st.Limits()
	if lim.TempMax != 35.5 {
		t.Fatalf("stored temp_max = %v", lim.TempMax)
	}
}

func TestApplyFormIdempotent(t *testing.T) {
	st := state.New()
	first := ApplyForm(st, "hum_min=40.0&hum_max=60.0")
	second := ApplyForm(st, "hum_min=40.0&hum_max=60.0")
	if !first.OK() || !second.OK() {
		t.Fatalf("first=%+v second=%+v", first, second)
	}
	if len(second.Errors) != 0 {
		t.Fatalf("repeat application rejected: %+v", second.Errors)
	}
	lim, _ := st.Limits()
	if lim.HumMin != 40.0 || lim.HumMax != 60.0 {
		t.Fatalf("stored limits: %+v", lim)
	}
}

func TestApplyFormBoundConflictKeepsPriorValue(t *testing.T) {
	st := state.New()
	res := ApplyForm(st, "press_min=1050.0")
	if res.OK() {
		t.Fatal("min == max must be rejected")
	}
	fe := res.Errors[0]
	if fe.Field != "press_min >= press_max (1050.0)" {
		t.Fatalf("field = %q", fe.Field)
	}
	if fe.Reason != "Value out of range: 1050.0" {
		t.Fatalf("reason = %q", fe.Reason)
	}
	lim, _ := st.Limits()
	if lim.PressMin != types.DefaultPressMin {
		t.Fatalf("prior value lost: %v", lim.PressMin)
	}
}

func TestApplyFormLaterPairsSeeEarlierEffects(t *testing.T) {
	st := state.New()
	// temp_max=40 applies first, so temp_min=35 is valid against it.
	res := ApplyForm(st, "temp_max=40.0&temp_min=35.0")
	if len(res.Applied) != 2 || len(res.Errors) != 0 {
		t.Fatalf("applied=%+v errors=%+v", res.Applied, res.Errors)
	}

	// Reverse order: temp_min=35 conflicts with the stored max of 30.
	st2 := state.New()
	res2 := ApplyForm(st2, "temp_min=35.0&temp_max=40.0")
	if len(res2.Applied) != 1 || res2.Applied[0].Field != "temp_max" {
		t.Fatalf("applied=%+v", res2.Applied)
	}
	if len(res2.Errors) != 1 || res2.Errors[0].Field != "temp_min >= temp_max (30.0)" {
		t.Fatalf("errors=%+v", res2.Errors)
	}
}

func TestApplyFormSanityRanges(t *testing.T) {
	st := state.New()
	cases := []struct {
		body  string
		field string
	}{
		{"temp_min=-60.0", "temp_min"},
		{"hum_max=120.0", "hum_max"},
		{"press_max=1200.0", "press_max"},
		{"temp_offset=11.0", "temp_offset"},
		{"press_offset=60.0", "press_offset"},
	}
	for _, c := range cases {
		res := ApplyForm(st, c.body)
		if res.OK() {
			t.Fatalf("%s: out-of-range value applied", c.body)
		}
		if res.Errors[0].Field != c.field {
			t.Fatalf("%s: field = %q", c.body, res.Errors[0].Field)
		}
	}
}

func TestApplyFormOffsetsHaveNoCrossConstraint(t *testing.T) {
	st := state.New()
	res := ApplyForm(st, "temp_offset=9.5&hum_offset=-9.5&press_offset=-50.0")
	if len(res.Applied) != 3 || len(res.Errors) != 0 {
		t.Fatalf("applied=%+v errors=%+v", res.Applied, res.Errors)
	}
}

func TestApplyFormMalformedPairs(t *testing.T) {
	st := state.New()
	res := ApplyForm(st, "=5.0&temp_min=&noequals&temp_max=abc")
	if res.OK() {
		t.Fatalf("applied=%+v", res.Applied)
	}
	if len(res.Errors) != 4 {
		t.Fatalf("errors = %+v, want 4 entries", res.Errors)
	}
	for _, fe := range res.Errors[:3] {
		if fe.Reason != "Empty field" {
			t.Fatalf("reason = %q", fe.Reason)
		}
	}
	if res.Errors[3].Reason != "Invalid value: abc" {
		t.Fatalf("parse reason = %q", res.Errors[3].Reason)
	}
}

func TestApplyFormDuplicateKeysProcessedIndependently(t *testing.T) {
	st := state.New()
	res := ApplyForm(st, "temp_max=35.0&temp_max=25.0")
	if len(res.Applied) != 2 {
		t.Fatalf("applied=%+v errors=%+v", res.Applied, res.Errors)
	}
	lim, _ := st.Limits()
	if lim.TempMax != 25.0 {
		t.Fatalf("last write should win: %v", lim.TempMax)
	}
}
