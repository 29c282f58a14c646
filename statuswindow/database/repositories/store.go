package repositories

import (
	"github.com/uptrace/bun"
)

// Store bundles every repository behind one value. The core packages
// (xp, quests, titles, orchestrator) each declare the narrow interface
// they consume; *Store satisfies all of them through promotion.
type Store struct {
	ThemeRepository
	SkillRepository
	JournalRepository
	QuestRepository
	TitleRepository
	UserRepository
	UserStatsRepository
}

func NewStore(db *bun.DB) *Store {
	return &Store{
		ThemeRepository:     NewThemeRepository(db),
		SkillRepository:     NewSkillRepository(db),
		JournalRepository:   NewJournalRepository(db),
		QuestRepository:     NewQuestRepository(db),
		TitleRepository:     NewTitleRepository(db),
		UserRepository:      NewUserRepository(db),
		UserStatsRepository: NewUserStatsRepository(db),
	}
}
