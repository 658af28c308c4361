// Package lessons implements IncidentLessonLearner (spec §4.25): lesson
// records carrying what-went-well, what-went-wrong, and recommendations.
package lessons

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Lesson is one post-incident retrospective record.
type Lesson struct {
	ID              string
	IncidentID      string
	WhatWentWell    []string
	WhatWentWrong   []string
	Recommendations []string
	CreatedAt       string
}

// Learner is IncidentLessonLearner's record store.
type Learner struct {
	mu      sync.Mutex
	lessons map[string]*Lesson
	clock   clock.Clock
	log     *logger.Logger
}

// New creates an empty Learner.
func New(c clock.Clock, log *logger.Logger) *Learner {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Learner{lessons: make(map[string]*Lesson), clock: c, log: log}
}

// RecordResult is record_lesson's return shape.
type RecordResult struct {
	Recorded bool
	LessonID string
	Error    string
}

// RecordLesson stores a retrospective for an incident.
func (l *Learner) RecordLesson(incidentID string, whatWentWell, whatWentWrong, recommendations []string) RecordResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if incidentID == "" {
		return RecordResult{Error: goverrors.Invalid("incident_id").Error()}
	}
	id := ids.New("les")
	l.lessons[id] = &Lesson{
		ID: id, IncidentID: incidentID, WhatWentWell: whatWentWell,
		WhatWentWrong: whatWentWrong, Recommendations: recommendations,
		CreatedAt: clock.ISO8601(l.clock.Now()),
	}
	return RecordResult{Recorded: true, LessonID: id}
}

// GetLessonResult is get_lesson's return shape.
type GetLessonResult struct {
	Retrieved bool
	Lesson    *Lesson
	Error     string
}

// GetLesson retrieves a lesson by id.
func (l *Learner) GetLesson(lessonID string) GetLessonResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	le, ok := l.lessons[lessonID]
	if !ok {
		return GetLessonResult{Error: goverrors.NotFound("lesson").Error()}
	}
	return GetLessonResult{Retrieved: true, Lesson: le}
}

// GetLessonsForIncidentResult is get_lessons_for_incident's return shape.
type GetLessonsForIncidentResult struct {
	Retrieved bool
	Lessons   []*Lesson
}

// GetLessonsForIncident returns every lesson recorded for an incident.
func (l *Learner) GetLessonsForIncident(incidentID string) GetLessonsForIncidentResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	var matched []*Lesson
	for _, le := range l.lessons {
		if le.IncidentID == incidentID {
			matched = append(matched, le)
		}
	}
	return GetLessonsForIncidentResult{Retrieved: true, Lessons: matched}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (l *Learner) GetSummary() SummaryResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{"lessons": len(l.lessons)}}
}
