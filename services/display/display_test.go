package display

import (
	"testing"

	"weatherstation-go/bus"
	"weatherstation-go/state"
	"weatherstation-go/types"
)

type fakeDisplay struct {
	frames [][]string
}

func (f *fakeDisplay) Render(lines []string) error {
	f.frames = append(f.frames, lines)
	return nil
}

func TestFrameFormatting(t *testing.T) {
	st := state.New()
	if err := st.PublishSnapshot(types.Snapshot{Temp: 22.5, Hum: 45.0, Press: 1013.2}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	b := bus.NewBus(4)
	disp := &fakeDisplay{}
	s := New(st, b.NewConnection("display-test"), disp)
	s.linkUp = true
	s.frame()

	if len(disp.frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(disp.frames))
	}
	want := []string{"Temp: 22.5 C", "Hum: 45.0 %", "Press: 1013.2 hPa", "WiFi: OK"}
	got := disp.frames[0]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFrameShowsLinkDown(t *testing.T) {
	st := state.New()
	b := bus.NewBus(4)
	disp := &fakeDisplay{}
	s := New(st, b.NewConnection("display-test"), disp)
	s.frame()
	if got := disp.frames[0][3]; got != "WiFi: ---" {
		t.Fatalf("link line = %q", got)
	}
}
