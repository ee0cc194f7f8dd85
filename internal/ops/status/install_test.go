package status

import "testing"

func TestDeriveInstall_NoLinksUsesManual(t *testing.T) {
	manual := ManualInstall{Installed: true, At: ts(3), By: "tech-1"}

	got := DeriveInstall(manual, 0, nil)
	if got.Source != SourceManual {
		t.Errorf("Source = %q, want %q", got.Source, SourceManual)
	}
	if !got.Installed || got.At == nil || !got.At.Equal(*ts(3)) || got.By != "tech-1" {
		t.Errorf("manual install not passed through: %+v", got)
	}

	// 未安装的手动状态同样直通
	got = DeriveInstall(ManualInstall{}, 0, nil)
	if got.Installed {
		t.Errorf("expected not installed for empty manual state")
	}
}

func TestDeriveInstall_LinkedSuppressesManual(t *testing.T) {
	// 有关联且trim-out均未完成：手动已安装被抑制
	manual := ManualInstall{Installed: true, At: ts(1), By: "tech-1"}
	stages := []Stage{
		{StageType: "prewire", Completed: true, CompletedAt: ts(2)},
		{StageType: "trim_out", Completed: false},
	}

	got := DeriveInstall(manual, 1, stages)
	if got.Source != SourceWireDrop {
		t.Errorf("Source = %q, want %q", got.Source, SourceWireDrop)
	}
	if got.Installed {
		t.Errorf("manual flag should be suppressed while links exist")
	}
}

func TestDeriveInstall_AnyCompletedTrimOut(t *testing.T) {
	stages := []Stage{
		{StageType: "trim_out", Completed: false},
		{StageType: "trim_out", Completed: true, CompletedAt: ts(4), CompletedBy: "tech-2"},
		{StageType: "commission", Completed: true, CompletedAt: ts(8)},
	}

	got := DeriveInstall(ManualInstall{}, 2, stages)
	if !got.Installed {
		t.Fatalf("one completed trim_out should mean installed")
	}
	if got.At == nil || !got.At.Equal(*ts(4)) || got.By != "tech-2" {
		t.Errorf("install attribution = (%v, %q), want (%v, tech-2)", got.At, got.By, ts(4))
	}
}

func TestDeriveInstall_LatestTrimOutWins(t *testing.T) {
	stages := []Stage{
		{StageType: "trim_out", Completed: true, CompletedAt: ts(2), CompletedBy: "early"},
		{StageType: "trim_out", Completed: true, CompletedAt: ts(7), CompletedBy: "late"},
		{StageType: "trim_out", Completed: true, CompletedAt: ts(5), CompletedBy: "middle"},
	}

	got := DeriveInstall(ManualInstall{}, 3, stages)
	if got.At == nil || !got.At.Equal(*ts(7)) || got.By != "late" {
		t.Errorf("latest completion should win, got (%v, %q)", got.At, got.By)
	}
}

func TestDeriveInstall_NilCompletedAtStillInstalls(t *testing.T) {
	stages := []Stage{
		{StageType: "trim_out", Completed: true, CompletedBy: "tech-3"},
	}

	got := DeriveInstall(ManualInstall{}, 1, stages)
	if !got.Installed {
		t.Fatalf("completed trim_out without timestamp should still install")
	}
	if got.At != nil {
		t.Errorf("At should stay nil, got %v", got.At)
	}
}
