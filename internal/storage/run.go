package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Run statuses
const (
	RunStatusRunning   = 1
	RunStatusSucceeded = 2
	RunStatusFailed    = 3
)

// Section stages, mirroring the pipeline state machine.
const (
	SectionStageParsed      = "parsed"
	SectionStageVoicesReady = "voices_ready"
	SectionStageVideoReady  = "video_ready"
	SectionStageFailed      = "failed"
)

type RunRecord struct {
	Id         int64  `gorm:"primaryKey;autoIncrement"`
	RunId      string `gorm:"index;unique"`
	ScriptPath string
	OutputPath string
	Status     int
	FailReason string
	CreateTime int64
	UpdateTime int64
}

type SectionRecord struct {
	Id            int64  `gorm:"primaryKey;autoIncrement"`
	RunId         string `gorm:"index"`
	SectionIndex  int
	SourcePath    string
	Title         string
	ContentCount  int
	Stage         string
	FailReason    string
	RenderedVideo string
	UpdateTime    int64
}

func SaveRun(run *RunRecord) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	run.UpdateTime = time.Now().Unix()
	if run.CreateTime == 0 {
		run.CreateTime = run.UpdateTime
	}

	var existing RunRecord
	result := DB.Where("run_id = ?", run.RunId).First(&existing)
	if result.Error == nil {
		run.Id = existing.Id
		return DB.Save(run).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(run).Error
	}
	return result.Error
}

func GetRun(runId string) (*RunRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var run RunRecord
	if err := DB.Where("run_id = ?", runId).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func SaveSection(section *SectionRecord) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	section.UpdateTime = time.Now().Unix()

	var existing SectionRecord
	result := DB.Where("run_id = ? AND section_index = ?", section.RunId, section.SectionIndex).First(&existing)
	if result.Error == nil {
		section.Id = existing.Id
		return DB.Save(section).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(section).Error
	}
	return result.Error
}

func GetRunSections(runId string) ([]SectionRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var sections []SectionRecord
	if err := DB.Where("run_id = ?", runId).Order("section_index asc").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// MarkStaleRuns marks all "running" runs as failed. Called on startup so a
// crashed batch does not linger as in-progress forever.
func MarkStaleRuns() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&RunRecord{}).
		Where("status = ?", RunStatusRunning).
		Updates(map[string]interface{}{
			"status":      RunStatusFailed,
			"fail_reason": "Run interrupted by process restart",
			"update_time": time.Now().Unix(),
		})
	return result.RowsAffected, result.Error
}
