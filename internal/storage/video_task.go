package storage

import (
	"errors"

	"gorm.io/gorm"

	"clipforge/internal/types"
)

func SaveVideoTask(task *types.VideoTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	var existing types.VideoTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id // Preserve ID
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetVideoTask(taskId string) (*types.VideoTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.VideoTask
	if err := DB.Preload("Clips").Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetVideoTaskHistory(limit int) ([]types.VideoTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.VideoTask
	if err := DB.Preload("Clips").Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteVideoTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	var task types.VideoTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	// Clips are cascade-deleted with their video
	if err := DB.Where("video_task_id = ?", task.Id).Delete(&types.ClipTask{}).Error; err != nil {
		return err
	}
	return DB.Delete(&task).Error
}

func SaveClipTask(clip *types.ClipTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	var existing types.ClipTask
	result := DB.Where("clip_id = ?", clip.ClipId).First(&existing)

	if result.Error == nil {
		clip.Id = existing.Id
		return DB.Save(clip).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(clip).Error
	}
	return result.Error
}

func GetClipTask(clipId string) (*types.ClipTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var clip types.ClipTask
	if err := DB.Where("clip_id = ?", clipId).First(&clip).Error; err != nil {
		return nil, err
	}
	return &clip, nil
}

// MarkStaleTasks marks all "processing" tasks as "failed". Called on server
// startup to clean up zombie tasks left by a previous run.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.VideoTask{}).
		Where("status = ?", types.TaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.TaskStatusFailed,
			"fail_reason": "Task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}
