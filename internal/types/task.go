package types

// Task statuses, shared by video tasks and their clips.
const (
	TaskStatusProcessing uint8 = iota + 1
	TaskStatusSuccess
	TaskStatusFailed
)

// VideoTask is the persisted record of one source video processing run. The
// transcript is stored alongside it as JSON and cascade-deleted with it.
type VideoTask struct {
	Id             uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	TaskId         string     `json:"task_id" gorm:"uniqueIndex;size:64"`
	VideoSrc       string     `json:"video_src"`
	Status         uint8      `json:"status" gorm:"index"`
	StatusMsg      string     `json:"status_msg"`
	FailReason     string     `json:"fail_reason"`
	ProcessPct     uint8      `json:"process_percent"`
	Language       string     `json:"language" gorm:"size:8"`
	Duration       float64    `json:"duration"`
	TranscriptJson string     `json:"-" gorm:"type:text"`
	Clips          []ClipTask `json:"clips" gorm:"foreignKey:VideoTaskId;references:Id;constraint:OnDelete:CASCADE"`
	CreateTime     int64      `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime     int64      `json:"update_time" gorm:"autoUpdateTime"`
}

// ClipTask is one rendered (or failed) highlight clip belonging to a video
// task. CaptionsJson stores the CaptionsResult payload; OutputUrl points at
// the uploaded media.
type ClipTask struct {
	Id           uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	VideoTaskId  uint    `json:"-" gorm:"index"`
	ClipId       string  `json:"clip_id" gorm:"uniqueIndex;size:64"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	HookText     string  `json:"hook_text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Score        float64 `json:"score"`
	TagsJson     string  `json:"-" gorm:"type:text"`
	CaptionsJson string  `json:"-" gorm:"type:text"`
	OutputPath   string  `json:"output_path"`
	OutputUrl    string  `json:"output_url"`
	SubtitleUrl  string  `json:"subtitle_url"`
	Status       uint8   `json:"status" gorm:"index"`
	FailReason   string  `json:"fail_reason"`
	CreateTime   int64   `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime   int64   `json:"update_time" gorm:"autoUpdateTime"`
}
