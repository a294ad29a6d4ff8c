package model

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"homeschool_lms_backend/internal/catalog"

	"gorm.io/datatypes"
)

// HistoryLimit 完成历史的最大保留条数
const HistoryLimit = 20

// LessonRecord 单节课程的学习进度。惰性创建，只重置不删除。
type LessonRecord struct {
	Completed       bool       `json:"completed"`
	Attempts        int        `json:"attempts"`
	BestScore       *float64   `json:"bestScore"`
	LastScore       *float64   `json:"lastScore"`
	LastCompletedAt *time.Time `json:"lastCompletedAt"`
	TotalTimeMs     int64      `json:"totalTimeMs"`
	// Grade 教师/家长手动评分，与 BestScore 互相独立
	Grade *float64 `json:"grade"`
}

type HistoryEntry struct {
	LessonID    string     `json:"lessonId"`
	Score       *float64   `json:"score"`
	CompletedAt *time.Time `json:"completedAt"`
}

type ScheduleItem struct {
	ID       string `json:"id"`
	LessonID string `json:"lessonId"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

type SubjectGoal struct {
	TargetPercent *float64 `json:"targetPercent"`
	Notes         string   `json:"notes"`
}

// ProgressState 进度存储的根聚合。每次变更整体序列化落库。
type ProgressState struct {
	Lessons  map[string]*LessonRecord `json:"lessons"`
	History  []HistoryEntry           `json:"history"`
	Schedule []ScheduleItem           `json:"schedule"`
	Goals    map[string]*SubjectGoal  `json:"goals"`
}

// ProgressSnapshot 按存储键保存的进度快照行，State 为整棵状态树的 JSON
type ProgressSnapshot struct {
	BaseModel
	StorageKey string         `gorm:"size:191;uniqueIndex;not null" json:"storageKey"`
	State      datatypes.JSON `gorm:"not null" json:"state"`
}

func (ProgressSnapshot) TableName() string {
	return "progress_snapshots"
}

func NewLessonRecord() *LessonRecord {
	return &LessonRecord{}
}

// DefaultProgressState 以目录为准构造初始状态：每节课一条零值记录，
// 每个学科一条空目标，历史与课表为空。
func DefaultProgressState(cat *catalog.Catalog) *ProgressState {
	state := &ProgressState{
		Lessons:  make(map[string]*LessonRecord, len(cat.Lessons)),
		History:  []HistoryEntry{},
		Schedule: []ScheduleItem{},
		Goals:    make(map[string]*SubjectGoal, len(cat.Subjects)),
	}
	for _, lesson := range cat.Lessons {
		state.Lessons[lesson.ID] = NewLessonRecord()
	}
	for _, subject := range cat.Subjects {
		state.Goals[subject.ID] = &SubjectGoal{Notes: ""}
	}
	return state
}

// MergeProgressState 反序列化持久化的状态并与默认值合并。
// 字段级防御式合并：未知课程/学科 ID 丢弃，畸形值回退默认值，
// 数值显式强转（NaN/Inf 归为 nil），布尔按真值性。任何解析失败
// 都返回原始默认状态，从不向调用方抛错。
// historyLimit 非正时使用 HistoryLimit 默认值。
func MergeProgressState(raw []byte, cat *catalog.Catalog, historyLimit int) *ProgressState {
	if historyLimit <= 0 {
		historyLimit = HistoryLimit
	}

	state := DefaultProgressState(cat)
	if len(raw) == 0 {
		return state
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return DefaultProgressState(cat)
	}

	if lessonsRaw, ok := parsed["lessons"]; ok {
		mergeLessons(state, lessonsRaw)
	}
	if historyRaw, ok := parsed["history"]; ok {
		mergeHistory(state, historyRaw, cat, historyLimit)
	}
	if scheduleRaw, ok := parsed["schedule"]; ok {
		mergeSchedule(state, scheduleRaw, cat)
	}
	if goalsRaw, ok := parsed["goals"]; ok {
		mergeGoals(state, goalsRaw)
	}
	return state
}

func mergeLessons(state *ProgressState, raw json.RawMessage) {
	var lessons map[string]any
	if err := json.Unmarshal(raw, &lessons); err != nil {
		return
	}
	for id, value := range lessons {
		target, known := state.Lessons[id]
		if !known {
			continue
		}
		obj, isObject := value.(map[string]any)
		if !isObject {
			// 旧版格式：课程状态仅为一个完成标记
			target.Completed = truthy(value)
			continue
		}
		target.Completed = truthy(obj["completed"])
		if attempts, ok := asFiniteNumber(obj["attempts"]); ok {
			target.Attempts = int(attempts)
		}
		target.BestScore = coerceScore(obj["bestScore"])
		target.LastScore = coerceScore(obj["lastScore"])
		target.LastCompletedAt = coerceTime(obj["lastCompletedAt"])
		if totalTime, ok := asFiniteNumber(obj["totalTimeMs"]); ok {
			target.TotalTimeMs = int64(totalTime)
		}
		target.Grade = coerceScore(obj["grade"])
	}
}

func mergeHistory(state *ProgressState, raw json.RawMessage, cat *catalog.Catalog, limit int) {
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return
	}
	history := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		lessonID, _ := entry["lessonId"].(string)
		if !cat.HasLesson(lessonID) {
			continue
		}
		history = append(history, HistoryEntry{
			LessonID:    lessonID,
			Score:       coerceScore(entry["score"]),
			CompletedAt: coerceTime(entry["completedAt"]),
		})
	}
	if len(history) > limit {
		history = history[:limit]
	}
	state.History = history
}

func mergeSchedule(state *ProgressState, raw json.RawMessage, cat *catalog.Catalog) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return
	}
	schedule := make([]ScheduleItem, 0, len(items))
	for _, item := range items {
		lessonID, _ := item["lessonId"].(string)
		if !cat.HasLesson(lessonID) {
			continue
		}
		schedule = append(schedule, ScheduleItem{
			ID:       stringOr(item["id"], GenerateUUID()),
			LessonID: lessonID,
			Day:      stringOr(item["day"], "monday"),
			Time:     stringOr(item["time"], "09:00"),
			Notes:    stringOr(item["notes"], ""),
		})
	}
	state.Schedule = schedule
}

func mergeGoals(state *ProgressState, raw json.RawMessage) {
	var goals map[string]any
	if err := json.Unmarshal(raw, &goals); err != nil {
		return
	}
	for subjectID, value := range goals {
		if _, known := state.Goals[subjectID]; !known {
			continue
		}
		obj, isObject := value.(map[string]any)
		if !isObject {
			continue
		}
		state.Goals[subjectID] = &SubjectGoal{
			TargetPercent: coerceScore(obj["targetPercent"]),
			Notes:         stringOr(obj["notes"], ""),
		}
	}
}

// coerceScore 数值强转：JSON 数字与数字字符串接受，NaN/Inf/其余归 nil
func coerceScore(v any) *float64 {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil
		}
		return &value
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

// asFiniteNumber 仅接受 JSON 数字字面量，不做字符串强转
func asFiniteNumber(v any) (float64, bool) {
	value, ok := v.(float64)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func coerceTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// truthy JS 式真值判断
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0 && !math.IsNaN(value)
	case string:
		return value != ""
	default:
		return true
	}
}

// Clone 深拷贝，防止调用方改写内部状态
func (r *LessonRecord) Clone() *LessonRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.BestScore = cloneFloat(r.BestScore)
	clone.LastScore = cloneFloat(r.LastScore)
	clone.Grade = cloneFloat(r.Grade)
	if r.LastCompletedAt != nil {
		t := *r.LastCompletedAt
		clone.LastCompletedAt = &t
	}
	return &clone
}

func (g *SubjectGoal) Clone() *SubjectGoal {
	if g == nil {
		return &SubjectGoal{Notes: ""}
	}
	return &SubjectGoal{TargetPercent: cloneFloat(g.TargetPercent), Notes: g.Notes}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
