// Package events provides the synchronous in-process publish/subscribe
// hub that decouples the journal processing pipeline: journal entries
// trigger XP distribution, XP awards trigger level-up notifications,
// level-ups and quest completions feed title unlock checks. No producer
// ever calls a consumer directly.
package events

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Payload carries event data. All listeners observe the same map;
// mutations by one listener are visible to later listeners in the same
// emission.
type Payload map[string]any

// Listener is a callback invoked synchronously on the emitter's
// goroutine. Its return value is collected positionally by Emit.
type Listener func(Payload) any

// Event type names. Emit rejects anything outside this set.
const (
	JournalEntryCreated = "journal_entry.created"
	XPAwarded           = "xp.awarded"
	ThemeLeveledUp      = "theme.leveled_up"
	SkillLeveledUp      = "skill.leveled_up"
	TitleUnlocked       = "title.unlocked"
	TitleEquipped       = "title.equipped"
	QuestCreated        = "quest.created"
	QuestProgressUpdated = "quest.progress_updated"
	QuestCompleted      = "quest.completed"
	StatsUpdated        = "stats.updated"
)

// eventSchemas maps each recognized event type to its required payload
// keys. A payload missing keys is logged as a warning but still emitted.
var eventSchemas = map[string][]string{
	JournalEntryCreated:  {"user_id", "entry_id", "content", "entry_type"},
	XPAwarded:            {"user_id", "amount", "source", "target_type", "target_id"},
	ThemeLeveledUp:       {"user_id", "theme_id", "new_level", "theme_name"},
	SkillLeveledUp:       {"user_id", "skill_id", "new_level", "skill_name", "new_rank"},
	TitleUnlocked:        {"user_id", "title_id", "title_name", "title_rank"},
	TitleEquipped:        {"user_id", "title_id", "title_name", "is_equipped"},
	QuestCreated:         {"user_id", "quest_id", "quest_name", "quest_type"},
	QuestProgressUpdated: {"user_id", "quest_id", "progress", "target"},
	QuestCompleted:       {"user_id", "quest_id", "quest_name", "reward_xp", "reward_coins"},
	StatsUpdated:         {"user_id", "stat_name", "old_value", "new_value"},
}

// Bus is a synchronous event bus. Listener registries are guarded by a
// mutex so subscription changes are safe from concurrent goroutines;
// emission itself runs inline on the caller and provides no ordering
// across concurrent emitters.
type Bus struct {
	mu         sync.Mutex
	listeners  map[string][]Listener
	logEmits   map[string]bool
}

func NewBus() *Bus {
	logEmits := make(map[string]bool, len(eventSchemas))
	for eventType := range eventSchemas {
		logEmits[eventType] = false
	}
	return &Bus{
		listeners: make(map[string][]Listener),
		logEmits:  logEmits,
	}
}

// Subscribe registers a listener for an event type. Registering the
// same function twice is a no-op. Identity is the function's code
// pointer, so two closures built from the same literal count as the
// same listener even when they capture different variables.
func (b *Bus) Subscribe(eventType string, fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.listeners[eventType] {
		if listenerKey(existing) == listenerKey(fn) {
			return
		}
	}
	b.listeners[eventType] = append(b.listeners[eventType], fn)
}

// Unsubscribe removes a listener. Unknown event types or untracked
// listeners are ignored.
func (b *Bus) Unsubscribe(eventType string, fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.listeners[eventType]
	for i, existing := range registered {
		if listenerKey(existing) == listenerKey(fn) {
			b.listeners[eventType] = append(registered[:i:i], registered[i+1:]...)
			return
		}
	}
}

// Emit dispatches an event to all listeners in subscription order and
// returns their results positionally. A listener that fails (returns
// via panic) is logged and contributes nil without stopping the rest.
// Emitting an unrecognized event type is an error.
func (b *Bus) Emit(eventType string, payload Payload) ([]any, error) {
	required, ok := eventSchemas[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %q", eventType)
	}

	var missing []string
	for _, key := range required {
		if _, present := payload[key]; !present {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slog.Warn("Event payload missing keys",
			slog.String("type", "event"),
			slog.String("event_type", eventType),
			slog.Any("missing_keys", missing))
	}

	b.mu.Lock()
	shouldLog := b.logEmits[eventType]
	registered := make([]Listener, len(b.listeners[eventType]))
	copy(registered, b.listeners[eventType])
	b.mu.Unlock()

	if shouldLog {
		slog.Info("Event emitted",
			slog.String("type", "event"),
			slog.String("event_type", eventType),
			slog.Any("payload", payload))
	}

	results := make([]any, 0, len(registered))
	for _, fn := range registered {
		results = append(results, b.invoke(eventType, fn, payload))
	}
	return results, nil
}

func (b *Bus) invoke(eventType string, fn Listener, payload Payload) (result any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Listener failed",
				slog.String("type", "event"),
				slog.String("event_type", eventType),
				slog.Any("error", r))
			result = nil
		}
	}()
	return fn(payload)
}

// ConfigureLogging toggles emission logging for one event type.
func (b *Bus) ConfigureLogging(eventType string, shouldLog bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logEmits[eventType] = shouldLog
}

// Listeners returns a copy of the registered listeners for an event type.
func (b *Bus) Listeners(eventType string) []Listener {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.listeners[eventType]
	out := make([]Listener, len(registered))
	copy(out, registered)
	return out
}

// IsKnownType reports whether eventType belongs to the closed catalog.
func IsKnownType(eventType string) bool {
	_, ok := eventSchemas[eventType]
	return ok
}

func listenerKey(fn Listener) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
