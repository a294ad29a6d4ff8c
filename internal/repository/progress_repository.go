package repository

import (
	"errors"

	"homeschool_lms_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 按存储键读写整棵进度状态树，一个键一行
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Load 返回存储键对应的状态 JSON；无记录时返回 nil, nil
func (r *ProgressRepository) Load(storageKey string) ([]byte, error) {
	var snapshot model.ProgressSnapshot
	err := r.DB.Where("storage_key = ?", storageKey).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot.State, nil
}

// Save 整体覆盖写入，已存在则更新
func (r *ProgressRepository) Save(storageKey string, state []byte) error {
	snapshot := model.ProgressSnapshot{
		StorageKey: storageKey,
		State:      datatypes.JSON(state),
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&snapshot).Error
}
