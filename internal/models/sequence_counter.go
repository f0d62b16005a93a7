package models

type SequenceScope string

const (
	// ScopeSprint numbers sprints within a project.
	ScopeSprint SequenceScope = "sprint"
	// ScopeUserStory numbers user stories within a project.
	ScopeUserStory SequenceScope = "user_story"
	// ScopeTask numbers tasks within a user story.
	ScopeTask SequenceScope = "task"
)

// SequenceCounter holds the last number handed out for one scope.
type SequenceCounter struct {
	Scope   SequenceScope `gorm:"primarykey;type:varchar(20)"`
	ScopeID uint64        `gorm:"primarykey;autoIncrement:false"`
	Value   int           `gorm:"not null;default:0"`
}
