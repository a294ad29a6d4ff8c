package catalog

// Category 学科下的知识分类
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Subject 学科（含分类），顺序固定
type Subject struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Categories  []Category `json:"categories"`
}

// GradeLevel 年级信息，Subjects 为空时使用默认学科集合
type GradeLevel struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	ShortLabel  string   `json:"shortLabel"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
}

type Lesson struct {
	ID               string `json:"id"`
	Subject          string `json:"subject"`
	Category         string `json:"category"`
	Grade            string `json:"grade"`
	Name             string `json:"name"`
	ShortName        string `json:"shortName"`
	Path             string `json:"path"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

// Catalog 静态课程目录。构造后不再变更，所有索引在 New 中一次建好。
type Catalog struct {
	Subjects []Subject
	Grades   []GradeLevel
	Lessons  []Lesson

	lessonByID      map[string]*Lesson
	subjectByID     map[string]*Subject
	gradeByID       map[string]*GradeLevel
	bySubject       map[string][]string
	byGrade         map[string][]string
	byCategory      map[string][]string
	byGradeSubject  map[string][]string
	byGradeCategory map[string][]string
}

func New(subjects []Subject, grades []GradeLevel, lessons []Lesson) *Catalog {
	c := &Catalog{
		Subjects:        subjects,
		Grades:          grades,
		Lessons:         lessons,
		lessonByID:      make(map[string]*Lesson, len(lessons)),
		subjectByID:     make(map[string]*Subject, len(subjects)),
		gradeByID:       make(map[string]*GradeLevel, len(grades)),
		bySubject:       make(map[string][]string),
		byGrade:         make(map[string][]string),
		byCategory:      make(map[string][]string),
		byGradeSubject:  make(map[string][]string),
		byGradeCategory: make(map[string][]string),
	}

	for i := range c.Subjects {
		c.subjectByID[c.Subjects[i].ID] = &c.Subjects[i]
	}
	for i := range c.Grades {
		g := &c.Grades[i]
		if len(g.Subjects) == 0 {
			g.Subjects = defaultGradeSubjects()
		}
		c.gradeByID[g.ID] = g
	}
	for i := range c.Lessons {
		l := &c.Lessons[i]
		c.lessonByID[l.ID] = l
		c.bySubject[l.Subject] = append(c.bySubject[l.Subject], l.ID)
		c.byGrade[l.Grade] = append(c.byGrade[l.Grade], l.ID)
		c.byCategory[l.Subject+":"+l.Category] = append(c.byCategory[l.Subject+":"+l.Category], l.ID)
		c.byGradeSubject[l.Grade+":"+l.Subject] = append(c.byGradeSubject[l.Grade+":"+l.Subject], l.ID)
		key := l.Grade + ":" + l.Subject + ":" + l.Category
		c.byGradeCategory[key] = append(c.byGradeCategory[key], l.ID)
	}
	return c
}

func defaultGradeSubjects() []string {
	return []string{"math", "english", "science"}
}

func (c *Catalog) Lesson(id string) *Lesson {
	return c.lessonByID[id]
}

func (c *Catalog) Subject(id string) *Subject {
	return c.subjectByID[id]
}

func (c *Catalog) Grade(id string) *GradeLevel {
	return c.gradeByID[id]
}

func (c *Catalog) HasLesson(id string) bool {
	return c.lessonByID[id] != nil
}

func (c *Catalog) HasSubject(id string) bool {
	return c.subjectByID[id] != nil
}

// SubjectLessons 学科下全部课程 ID；传入 gradeID 时限定年级
func (c *Catalog) SubjectLessons(subjectID, gradeID string) []string {
	if gradeID != "" {
		return c.byGradeSubject[gradeID+":"+subjectID]
	}
	return c.bySubject[subjectID]
}

func (c *Catalog) CategoryLessons(subjectID, categoryID, gradeID string) []string {
	if gradeID != "" {
		return c.byGradeCategory[gradeID+":"+subjectID+":"+categoryID]
	}
	return c.byCategory[subjectID+":"+categoryID]
}

func (c *Catalog) GradeLessons(gradeID string) []string {
	return c.byGrade[gradeID]
}

// Default 内置目录：3 个学科、K-12 年级、7 节一年级课程
func Default() *Catalog {
	subjects := []Subject{
		{
			ID:          "math",
			Label:       "Math Adventures",
			Description: "Build number sense, operations confidence, and word problems skills.",
			Categories: []Category{
				{ID: "counting", Label: "Counting & Number Sense"},
				{ID: "operations", Label: "Operations & Problem Solving"},
			},
		},
		{
			ID:          "english",
			Label:       "English Explorers",
			Description: "Grow reading fluency, vocabulary, and comprehension strategies.",
			Categories: []Category{
				{ID: "reading", Label: "Reading Comprehension"},
				{ID: "vocabulary", Label: "Vocabulary Building"},
			},
		},
		{
			ID:          "science",
			Label:       "Science Lab",
			Description: "Investigate the world through observation, experiments, and discovery.",
			Categories: []Category{
				{ID: "weather", Label: "Weather & Climate"},
				{ID: "life", Label: "Life Science"},
			},
		},
	}

	grades := []GradeLevel{
		{ID: "grade-k", Label: "Kindergarten", ShortLabel: "K", Description: "Play-based readiness with letters, sounds, and number exploration."},
		{ID: "grade-1", Label: "Grade 1", ShortLabel: "1", Description: "Strengthen foundational reading, vocabulary, and counting fluency."},
		{ID: "grade-2", Label: "Grade 2", ShortLabel: "2", Description: "Grow comprehension, multi-digit operations, and simple science investigations."},
		{ID: "grade-3", Label: "Grade 3", ShortLabel: "3", Description: "Introduce fractions, paragraph reading, and lab-style experiments."},
		{ID: "grade-4", Label: "Grade 4", ShortLabel: "4", Description: "Expand critical reading, multi-step problem solving, and earth science projects."},
		{ID: "grade-5", Label: "Grade 5", ShortLabel: "5", Description: "Prepare for middle school with advanced fluency, fractions, and inquiry labs."},
		{ID: "grade-6", Label: "Grade 6", ShortLabel: "6", Description: "Build middle school readiness across ratios, literary analysis, and ecosystems."},
		{ID: "grade-7", Label: "Grade 7", ShortLabel: "7", Description: "Connect proportional reasoning, structured writing, and life science labs."},
		{ID: "grade-8", Label: "Grade 8", ShortLabel: "8", Description: "Solidify algebra foundations, argument writing, and physical science concepts."},
		{ID: "grade-9", Label: "Grade 9", ShortLabel: "9", Description: "Launch high school pathways with algebra, literary themes, and biology studies."},
		{ID: "grade-10", Label: "Grade 10", ShortLabel: "10", Description: "Deepen geometry, world literature, and chemistry investigations."},
		{ID: "grade-11", Label: "Grade 11", ShortLabel: "11", Description: "Prepare for college-level math, American literature, and physics applications."},
		{ID: "grade-12", Label: "Grade 12", ShortLabel: "12", Description: "Capstone year with calculus readiness, rhetoric, and advanced science research."},
	}

	lessons := []Lesson{
		{ID: "math1", Subject: "math", Category: "counting", Grade: "grade-1", Name: "Lesson 1: Learning Numbers", ShortName: "Learning Numbers", Path: "lessons/lesson1.html", EstimatedMinutes: 8},
		{ID: "math2", Subject: "math", Category: "counting", Grade: "grade-1", Name: "Lesson 2: Counting Objects", ShortName: "Counting Objects", Path: "lessons/lesson2.html", EstimatedMinutes: 7},
		{ID: "math3", Subject: "math", Category: "operations", Grade: "grade-1", Name: "Lesson 3: Number to Word Matching", ShortName: "Number Word Match", Path: "lessons/lesson3.html", EstimatedMinutes: 6},
		{ID: "english1", Subject: "english", Category: "reading", Grade: "grade-1", Name: "Lesson 4: Story Sequencing", ShortName: "Story Sequencing", Path: "lessons/english1.html", EstimatedMinutes: 10},
		{ID: "english2", Subject: "english", Category: "vocabulary", Grade: "grade-1", Name: "Lesson 5: Vocabulary Builder", ShortName: "Vocabulary Builder", Path: "lessons/english2.html", EstimatedMinutes: 9},
		{ID: "science1", Subject: "science", Category: "weather", Grade: "grade-1", Name: "Lesson 6: Weather Watch", ShortName: "Weather Watch", Path: "lessons/science1.html", EstimatedMinutes: 6},
		{ID: "science2", Subject: "science", Category: "life", Grade: "grade-1", Name: "Lesson 7: Habitat Match-Up", ShortName: "Habitat Match-Up", Path: "lessons/science2.html", EstimatedMinutes: 6},
	}

	return New(subjects, grades, lessons)
}
