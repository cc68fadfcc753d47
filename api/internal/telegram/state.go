package telegram

import (
	"sync"

	"nutrition-analyzer/api/internal/nutrition"
)

// GoalManager keeps the goal each chat selected. It is form state, nothing
// else is remembered between messages.
type GoalManager struct {
	def nutrition.Goal
	m   sync.Map // chatID -> nutrition.Goal
}

func NewGoalManager(def nutrition.Goal) *GoalManager {
	return &GoalManager{def: def}
}

func (m *GoalManager) Get(chatID int64) nutrition.Goal {
	if v, ok := m.m.Load(chatID); ok {
		return v.(nutrition.Goal)
	}
	return m.def
}

func (m *GoalManager) Set(chatID int64, g nutrition.Goal) {
	m.m.Store(chatID, g)
}
