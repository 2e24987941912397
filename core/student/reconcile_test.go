package student

import (
	"reflect"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
)

func testRiskConfig() core.RiskConfig {
	return core.RiskConfig{
		LevelScheme:       string(ThreeTierLevels),
		GradeBands:        "default",
		MaxPeriodicMarks:  50,
		AlertThreshold:    60,
		HighRiskThreshold: 70,
		UnmatchedPolicy:   string(RejectUnmatched),
	}
}

func testRegistry(students ...Student) map[string]Student {
	reg := make(map[string]Student, len(students))
	for _, s := range students {
		reg[s.PRN] = s
	}
	return reg
}

func TestReconcile(t *testing.T) {
	now := time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC)

	t.Run("matched record merges and recomputes", func(t *testing.T) {
		reg := testRegistry(Student{PRN: "X9561", Name: "Prerna", Attendance: null.Float64From(92), CGPA: null.Float64From(8.5)})
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X9561", Attendance: null.Float64From(95), CGPA: null.Float64From(8.7)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{})

		if want := []string{"X9561"}; !reflect.DeepEqual(res.Matched, want) {
			t.Errorf("Matched = %v, want %v", res.Matched, want)
		}
		if len(res.Alerts) != 0 {
			t.Errorf("Alerts = %v, want none", res.Alerts)
		}
		got := next["X9561"]
		if got.Attendance.Float64 != 95 {
			t.Errorf("attendance = %v, want 95", got.Attendance.Float64)
		}
		if !got.HasRisk() || got.RiskScore != 0 || got.RiskLevel != RiskLow {
			t.Errorf("risk = %d/%s, want 0/Low", got.RiskScore, got.RiskLevel)
		}
		// snapshot untouched
		if reg["X9561"].Attendance.Float64 != 92 {
			t.Error("input registry was mutated")
		}
	})

	t.Run("partial record merges against existing fields", func(t *testing.T) {
		reg := testRegistry(Student{PRN: "X8788", Name: "Shravni", CGPA: null.Float64From(8.2)})
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X8788", Attendance: null.Float64From(58)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{})

		if want := []string{"X8788"}; !reflect.DeepEqual(res.Matched, want) {
			t.Errorf("Matched = %v, want %v", res.Matched, want)
		}
		if want := []string{"X8788"}; !reflect.DeepEqual(res.Alerts, want) {
			t.Errorf("Alerts = %v, want %v", res.Alerts, want)
		}
		got := next["X8788"]
		if got.RiskScore != 30 { // 30 attendance, CGPA 8.2 contributes nothing
			t.Errorf("risk score = %d, want 30", got.RiskScore)
		}
		if got.CGPA.Float64 != 8.2 {
			t.Errorf("CGPA = %v, want untouched 8.2", got.CGPA.Float64)
		}
	})

	t.Run("recompute skipped without both attendance and CGPA", func(t *testing.T) {
		reg := testRegistry(Student{PRN: "X0001", Name: "Aarav"})
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X0001", Attendance: null.Float64From(40)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{})

		got := next["X0001"]
		if got.HasRisk() {
			t.Errorf("risk recomputed with CGPA missing: %d/%s", got.RiskScore, got.RiskLevel)
		}
		// alert partition still applies: attendance is known and low
		if want := []string{"X0001"}; !reflect.DeepEqual(res.Alerts, want) {
			t.Errorf("Alerts = %v, want %v", res.Alerts, want)
		}
	})

	t.Run("unmatched PRN rejected under closed policy", func(t *testing.T) {
		reg := testRegistry()
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X9999", Attendance: null.Float64From(80)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{Unmatched: RejectUnmatched})

		if want := []string{"X9999"}; !reflect.DeepEqual(res.Unmatched, want) {
			t.Errorf("Unmatched = %v, want %v", res.Unmatched, want)
		}
		if len(next) != 0 {
			t.Errorf("registry grew under reject policy: %v", next)
		}
	})

	t.Run("unmatched PRN synthesized under open policy", func(t *testing.T) {
		reg := testRegistry()
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X9999", CGPA: null.Float64From(6.2)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{Unmatched: CreateUnmatched})

		if want := []string{"X9999"}; !reflect.DeepEqual(res.Matched, want) {
			t.Errorf("Matched = %v, want %v", res.Matched, want)
		}
		got, ok := next["X9999"]
		if !ok {
			t.Fatal("record not created")
		}
		if got.Attendance.Float64 != 75 { // documented default
			t.Errorf("attendance = %v, want default 75", got.Attendance.Float64)
		}
		if got.RiskScore != 20 { // CGPA 6.2 (below average), attendance default 75
			t.Errorf("risk score = %d, want 20", got.RiskScore)
		}
	})

	t.Run("seed source serves as merge base", func(t *testing.T) {
		seed := map[string]Student{
			"PRN2401001": {PRN: "PRN2401001", Name: "Prerna Shirsath", Division: "A", Phone: "9561434774"},
		}
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "PRN2401001", Attendance: null.Float64From(90), CGPA: null.Float64From(8.1)},
		}}

		next, res := Reconcile(testRegistry(), batch, ReconcileConfig{Seed: seed})

		if want := []string{"PRN2401001"}; !reflect.DeepEqual(res.Matched, want) {
			t.Errorf("Matched = %v, want %v", res.Matched, want)
		}
		got := next["PRN2401001"]
		if got.Name != "Prerna Shirsath" || got.Attendance.Float64 != 90 {
			t.Errorf("seed overlay wrong: %+v", got)
		}
		if !got.HasRisk() {
			t.Error("risk not recomputed on seeded insert")
		}
	})

	t.Run("records without PRN are skipped and counted", func(t *testing.T) {
		reg := testRegistry(Student{PRN: "X0001"})
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{Attendance: null.Float64From(50)},
			{PRN: "  ", CGPA: null.Float64From(5)},
			{PRN: "X0001", Attendance: null.Float64From(80)},
		}}

		_, res := Reconcile(reg, batch, ReconcileConfig{})

		if res.Skipped != 2 {
			t.Errorf("Skipped = %d, want 2", res.Skipped)
		}
		if len(res.Matched) != 1 || len(res.Unmatched) != 0 {
			t.Errorf("partition = %v / %v, want 1 matched only", res.Matched, res.Unmatched)
		}
	})

	t.Run("last write wins within a batch", func(t *testing.T) {
		reg := testRegistry(Student{PRN: "X0001", CGPA: null.Float64From(8)})
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X0001", Attendance: null.Float64From(90)},
			{PRN: "X0001", Attendance: null.Float64From(55)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{})

		if len(res.Matched) != 1 {
			t.Errorf("Matched = %v, want single entry", res.Matched)
		}
		if got := next["X0001"].Attendance.Float64; got != 55 {
			t.Errorf("attendance = %v, want later record's 55", got)
		}
		if want := []string{"X0001"}; !reflect.DeepEqual(res.Alerts, want) {
			t.Errorf("Alerts = %v, want %v", res.Alerts, want)
		}
	})

	t.Run("foreign-division record is blocked", func(t *testing.T) {
		reg := testRegistry(
			Student{PRN: "X0001", Division: "A"},
			Student{PRN: "X0002", Division: "B", Attendance: null.Float64From(80)},
		)
		batch := UploadBatch{Division: "A", ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X0001", Attendance: null.Float64From(85), CGPA: null.Float64From(7.5)},
			{PRN: "X0002", Attendance: null.Float64From(10)},
		}}

		next, res := Reconcile(reg, batch, ReconcileConfig{Division: "A"})

		if want := []string{"X0002"}; !reflect.DeepEqual(res.Blocked, want) {
			t.Errorf("Blocked = %v, want %v", res.Blocked, want)
		}
		if got := next["X0002"].Attendance.Float64; got != 80 {
			t.Errorf("blocked record was merged: attendance %v", got)
		}
	})

	t.Run("incoming values are clamped", func(t *testing.T) {
		reg := testRegistry(Student{PRN: "X0001"})
		batch := UploadBatch{ReceivedAt: now, Records: []IncomingRecord{
			{PRN: "X0001", Attendance: null.Float64From(130), CGPA: null.Float64From(-1)},
		}}

		next, _ := Reconcile(reg, batch, ReconcileConfig{})

		got := next["X0001"]
		if got.Attendance.Float64 != 100 || got.CGPA.Float64 != 0 {
			t.Errorf("clamping failed: attendance=%v cgpa=%v", got.Attendance.Float64, got.CGPA.Float64)
		}
	})
}

// Applying the same batch to its own output must be a no-op: same matched
// set, same risk fields.
func TestReconcileIdempotent(t *testing.T) {
	reg := testRegistry(
		Student{PRN: "X0001", Division: "A", CGPA: null.Float64From(8.2)},
		Student{PRN: "X0002", Division: "A"},
	)
	batch := UploadBatch{
		ReceivedAt: time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC),
		Records: []IncomingRecord{
			{PRN: "X0001", Attendance: null.Float64From(58)},
			{PRN: "X0002", Attendance: null.Float64From(91), CGPA: null.Float64From(6.4)},
			{PRN: "X0404", Attendance: null.Float64From(50)},
		},
	}

	first, res1 := Reconcile(reg, batch, ReconcileConfig{})
	second, res2 := Reconcile(first, batch, ReconcileConfig{})

	if !reflect.DeepEqual(res1.Matched, res2.Matched) {
		t.Errorf("matched sets differ: %v vs %v", res1.Matched, res2.Matched)
	}
	if !reflect.DeepEqual(res1.Unmatched, res2.Unmatched) {
		t.Errorf("unmatched sets differ: %v vs %v", res1.Unmatched, res2.Unmatched)
	}
	for prn, s1 := range first {
		s2 := second[prn]
		if s1.RiskScore != s2.RiskScore || s1.RiskLevel != s2.RiskLevel || !reflect.DeepEqual(s1.RiskReasons, s2.RiskReasons) {
			t.Errorf("%s: risk drifted on reapply: %d/%s vs %d/%s", prn, s1.RiskScore, s1.RiskLevel, s2.RiskScore, s2.RiskLevel)
		}
	}
}
