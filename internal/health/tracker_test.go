package health

import "testing"

func TestTracker_OverallIsWorstLevel(t *testing.T) {
	tr := NewTracker()
	if tr.Overall() != LevelOK {
		t.Errorf("empty tracker Overall = %s, want ok", tr.Overall())
	}

	tr.Setf("storage", LevelOK, "ready")
	tr.Setf("upstream", LevelWarn, "slow")
	if tr.Overall() != LevelWarn {
		t.Errorf("Overall = %s, want warn", tr.Overall())
	}

	tr.Setf("storage", LevelError, "gone")
	if tr.Overall() != LevelError {
		t.Errorf("Overall = %s, want error", tr.Overall())
	}
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Setf("storage", LevelOK, "ready")

	snap := tr.Snapshot()
	snap["storage"] = Status{Level: LevelError, Message: "mutated"}

	if got, _ := tr.Snapshot()["storage"]; got.Level != LevelOK {
		t.Errorf("mutating a snapshot changed tracker state")
	}
	if len(snap) != 1 {
		t.Errorf("snapshot len = %d, want 1", len(snap))
	}
}

func TestLevel_String(t *testing.T) {
	cases := map[Level]string{
		LevelOK:    "ok",
		LevelWarn:  "warn",
		LevelError: "error",
		Level(9):   "unknown",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
