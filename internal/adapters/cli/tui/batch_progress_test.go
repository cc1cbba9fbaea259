package tui

import "testing"

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		current, total int
		width          int
		want           string
	}{
		{0, 10, 10, "[          ]"},
		{5, 10, 10, "[=====>    ]"},
		{10, 10, 10, "[==========]"},
		{3, 10, 10, "[==>       ]"},
	}

	for _, tt := range tests {
		got := renderProgressBar(tt.current, tt.total, tt.width)
		if got != tt.want {
			t.Errorf("renderProgressBar(%d, %d, %d) = %q, want %q",
				tt.current, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestBatchProgress_Add(t *testing.T) {
	bp := NewBatchProgress(4)

	if got := bp.Line(); got != "0/4 [                    ] 0%" {
		t.Errorf("Line() = %q", got)
	}

	bp.Add(ItemResult{Name: "a.mp4", Success: true})
	line := bp.Add(ItemResult{Name: "b.mp4", ErrMsg: "no speech"})
	if line != "2/4 [==========>         ] 50%" {
		t.Errorf("Add() line = %q", line)
	}

	if bp.SuccessCount() != 1 {
		t.Errorf("SuccessCount() = %d, want 1", bp.SuccessCount())
	}
	failures := bp.Failures()
	if len(failures) != 1 || failures[0].Name != "b.mp4" {
		t.Errorf("Failures() = %+v", failures)
	}
}

func TestNewBatchProgress_NegativeTotal(t *testing.T) {
	if got := NewBatchProgress(-3).Line(); got != "0/0 [                    ] 0%" {
		t.Errorf("Line() = %q", got)
	}
}
