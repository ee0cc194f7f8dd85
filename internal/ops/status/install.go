package status

import "time"

// 安装状态来源
const (
	SourceManual   = "manual"
	SourceWireDrop = "wire_drop"
)

// Stage 点位施工阶段快照
type Stage struct {
	StageType   string
	Completed   bool
	CompletedAt *time.Time
	CompletedBy string
}

// ManualInstall 设备自身的手动安装字段
type ManualInstall struct {
	Installed bool
	At        *time.Time
	By        string
}

// InstallState 安装状态（带权威来源标记的变体）。
//
// Source 结构化表达了权威规则：无点位关联时取设备手动字段
// （SourceManual），有关联时一律由trim-out阶段推导（SourceWireDrop），
// 手动值在关联存续期间不参与展示。
type InstallState struct {
	Source    string
	Installed bool
	At        *time.Time
	By        string
}

// DeriveInstall 推导设备安装状态。
//
// linkCount 为零：直接采用手动字段（适用于电池供电、无线等无布线
// 设备）。linkCount 大于零：扫描关联点位的trim-out阶段，任一完成即
// 视为已安装，时间与经手人取完成时间最晚的一条（latest wins）；
// 均未完成则未安装，手动值被抑制。
func DeriveInstall(manual ManualInstall, linkCount int, stages []Stage) InstallState {
	if linkCount == 0 {
		return InstallState{
			Source:    SourceManual,
			Installed: manual.Installed,
			At:        manual.At,
			By:        manual.By,
		}
	}

	state := InstallState{Source: SourceWireDrop}
	for _, stage := range stages {
		if stage.StageType != "trim_out" || !stage.Completed {
			continue
		}
		if !state.Installed {
			state.Installed = true
			state.At = stage.CompletedAt
			state.By = stage.CompletedBy
			continue
		}
		if stage.CompletedAt == nil {
			continue
		}
		if state.At == nil || stage.CompletedAt.After(*state.At) {
			state.At = stage.CompletedAt
			state.By = stage.CompletedBy
		}
	}
	return state
}
