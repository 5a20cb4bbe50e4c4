package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRecordAndList verifies entries round-trip and list newest first.
func TestRecordAndList(t *testing.T) {
	db := openTestDB(t)
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	first := Entry{Test: "pushup", ExerciseType: "pushup", AthleteID: "1", SessionID: "s1",
		Score: 42, Unit: "reps", Percentile: 88, ElapsedSeconds: 61, RecordedAt: at}
	second := Entry{Test: "sprint", ExerciseType: "sprint", Score: 4.87, Unit: "seconds",
		Percentile: 91, Fallback: true, ElapsedSeconds: 7, RecordedAt: at.Add(time.Minute)}

	id1, err := db.Record(first)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	id2, err := db.Record(second)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("ids not increasing: %d then %d", id1, id2)
	}

	got, err := db.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	first.ID, second.ID = id1, id2
	if diff := cmp.Diff([]Entry{second, first}, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

// TestListLimit verifies limit caps the number of entries returned.
func TestListLimit(t *testing.T) {
	db := openTestDB(t)
	for _, test := range []string{"pushup", "squat", "agility"} {
		if _, err := db.Record(Entry{Test: test, ExerciseType: test, Unit: "reps"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := db.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Test != "agility" || got[1].Test != "squat" {
		t.Errorf("List(2) = %+v, want agility then squat", got)
	}
	if got[0].RecordedAt.IsZero() {
		t.Error("RecordedAt not defaulted")
	}
}

// TestReopen verifies entries persist across Open calls on the same directory.
func TestReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Record(Entry{Test: "endurance", ExerciseType: "endurance", Unit: "seconds"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, err := db.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Test != "endurance" {
		t.Errorf("after reopen got %+v", got)
	}
}
