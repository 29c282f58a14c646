package titles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/events"
)

const (
	templateCacheSize = 16
	templateCacheKey  = "title_templates"
)

// cachedTemplates is a cached template list entry.
type cachedTemplates struct {
	templates []*models.TitleTemplate
	timestamp time.Time
}

// AwarderStore extends the evaluator's read surface with title
// ownership. *repositories.Store satisfies it.
type AwarderStore interface {
	Store
	TitleTemplates(ctx context.Context) ([]*models.TitleTemplate, error)
	TitleTemplateByID(ctx context.Context, id string) (*models.TitleTemplate, error)
	TitlesByUser(ctx context.Context, userID string) ([]*models.UserTitle, error)
	CreateUserTitle(ctx context.Context, title *models.UserTitle) error
}

// Awarder checks unlock conditions and grants titles. Template
// definitions change rarely, so the full list is cached with an
// expiry instead of being reloaded on every unlock check.
type Awarder struct {
	store       AwarderStore
	evaluator   *Evaluator
	bus         *events.Bus
	cache       *lru.Cache
	cacheExpiry time.Duration
}

func NewAwarder(store AwarderStore, bus *events.Bus, cacheExpiry time.Duration) *Awarder {
	cache, _ := lru.New(templateCacheSize)
	return &Awarder{
		store:       store,
		evaluator:   NewEvaluator(store),
		bus:         bus,
		cache:       cache,
		cacheExpiry: cacheExpiry,
	}
}

// CheckUserUnlocks evaluates every unlockable template the user does
// not yet own and awards those whose conditions hold. Owned templates
// are never re-evaluated, so the call is idempotent. The user's very
// first title ever is equipped automatically; later awards are not.
func (a *Awarder) CheckUserUnlocks(ctx context.Context, userID string) ([]*models.UserTitle, error) {
	templates, err := a.templates(ctx)
	if err != nil {
		return nil, err
	}

	owned, err := a.store.TitlesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ownedByTemplate := make(map[string]bool, len(owned))
	for _, title := range owned {
		ownedByTemplate[title.TemplateID] = true
	}
	hasAnyTitle := len(owned) > 0

	var awarded []*models.UserTitle
	for _, template := range templates {
		if ownedByTemplate[template.ID] {
			continue
		}
		// Nil condition means manual-only.
		if template.UnlockCondition == nil {
			continue
		}

		met, err := a.evaluator.Evaluate(ctx, userID, template.UnlockCondition)
		if err != nil {
			slog.Warn("Title condition evaluation failed",
				slog.String("type", "title"),
				slog.String("template_id", template.ID),
				slog.String("user_id", userID),
				slog.Any("error", err))
			continue
		}
		if !met {
			continue
		}

		title, err := a.grant(ctx, userID, template, !hasAnyTitle)
		if err != nil {
			return awarded, err
		}
		hasAnyTitle = true
		awarded = append(awarded, title)
	}
	return awarded, nil
}

// AwardTitle grants a template directly, bypassing condition
// evaluation. Used for moderation and one-off awards.
func (a *Awarder) AwardTitle(ctx context.Context, userID, templateID, reason string) (*models.UserTitle, error) {
	template, err := a.store.TitleTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("title template %s not found", templateID)
	}

	owned, err := a.store.TitlesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, title := range owned {
		if title.TemplateID == templateID {
			return nil, fmt.Errorf("user %s already owns title %s", userID, templateID)
		}
	}

	slog.Info("Manually awarding title",
		slog.String("type", "title"),
		slog.String("template_id", templateID),
		slog.String("user_id", userID),
		slog.String("reason", reason))

	return a.grant(ctx, userID, template, len(owned) == 0)
}

func (a *Awarder) grant(ctx context.Context, userID string, template *models.TitleTemplate, equip bool) (*models.UserTitle, error) {
	title := &models.UserTitle{
		ID:         uuid.NewString(),
		UserID:     userID,
		TemplateID: template.ID,
		IsEquipped: equip,
		AcquiredAt: time.Now().UTC(),
		Template:   template,
	}
	if err := a.store.CreateUserTitle(ctx, title); err != nil {
		return nil, err
	}

	a.emit(events.TitleUnlocked, events.Payload{
		"user_id":    userID,
		"title_id":   template.ID,
		"title_name": template.Name,
		"title_rank": template.Rank,
	})
	return title, nil
}

func (a *Awarder) templates(ctx context.Context) ([]*models.TitleTemplate, error) {
	if cached, ok := a.cache.Get(templateCacheKey); ok {
		if c, ok := cached.(cachedTemplates); ok {
			if time.Since(c.timestamp) < a.cacheExpiry {
				return c.templates, nil
			}
		}
	}

	templates, err := a.store.TitleTemplates(ctx)
	if err != nil {
		return nil, err
	}
	a.cache.Add(templateCacheKey, cachedTemplates{
		templates: templates,
		timestamp: time.Now(),
	})
	return templates, nil
}

func (a *Awarder) emit(eventType string, payload events.Payload) {
	if _, err := a.bus.Emit(eventType, payload); err != nil {
		slog.Error("Event emission failed",
			slog.String("type", "event"),
			slog.String("event_type", eventType),
			slog.Any("error", err))
	}
}
