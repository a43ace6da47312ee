package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"
)

// templateService implements gate template management
type templateService struct {
	templateRepo interfaces.GateTemplateRepository
}

// NewTemplateService creates a new gate template service
func NewTemplateService(templateRepo interfaces.GateTemplateRepository) interfaces.TemplateService {
	return &templateService{templateRepo: templateRepo}
}

// Create stores a new template under key
func (s *templateService) Create(ctx context.Context, key string, roles []int64) error {
	key, err := normalizeTemplateName(key)
	if err != nil {
		return err
	}

	owner, err := s.templateRepo.GetByAlias(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check aliases: %w", err)
	}
	if owner != nil {
		return fmt.Errorf("%w: %q is an alias of %q", entities.ErrAliasTaken, key, owner.Key)
	}

	if err := s.templateRepo.Create(ctx, key, dedupeIDs(roles)); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// Delete removes a template together with its aliases
func (s *templateService) Delete(ctx context.Context, key string) error {
	deleted, err := s.templateRepo.Delete(ctx, strings.ToLower(strings.TrimSpace(key)))
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if !deleted {
		return entities.ErrTemplateNotFound
	}
	return nil
}

// List returns every template with its aliases
func (s *templateService) List(ctx context.Context) ([]*entities.GateTemplate, error) {
	templates, err := s.templateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// AddAlias registers an alternative name for a template.
// Aliases must not collide with any template key or any other alias.
func (s *templateService) AddAlias(ctx context.Context, key, alias string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	alias, err := normalizeTemplateName(alias)
	if err != nil {
		return err
	}

	template, err := s.templateRepo.GetByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}
	if template == nil {
		return entities.ErrTemplateNotFound
	}

	clash, err := s.templateRepo.GetByKey(ctx, alias)
	if err != nil {
		return fmt.Errorf("failed to check template keys: %w", err)
	}
	if clash != nil {
		return fmt.Errorf("%w: %q is a template key", entities.ErrAliasTaken, alias)
	}

	if err := s.templateRepo.AddAlias(ctx, key, alias); err != nil {
		return fmt.Errorf("failed to add alias: %w", err)
	}
	return nil
}

// RemoveAlias drops an alias
func (s *templateService) RemoveAlias(ctx context.Context, alias string) error {
	removed, err := s.templateRepo.RemoveAlias(ctx, strings.ToLower(strings.TrimSpace(alias)))
	if err != nil {
		return fmt.Errorf("failed to remove alias: %w", err)
	}
	if !removed {
		return entities.ErrTemplateNotFound
	}
	return nil
}

// AddRole appends a role to a template; adding a present role is a no-op
func (s *templateService) AddRole(ctx context.Context, key string, roleID int64) error {
	found, err := s.templateRepo.AddRole(ctx, strings.ToLower(strings.TrimSpace(key)), roleID)
	if err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	if !found {
		return entities.ErrTemplateNotFound
	}
	return nil
}

// RemoveRole drops a role from a template
func (s *templateService) RemoveRole(ctx context.Context, key string, roleID int64) error {
	found, err := s.templateRepo.RemoveRole(ctx, strings.ToLower(strings.TrimSpace(key)), roleID)
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	if !found {
		return entities.ErrTemplateNotFound
	}
	return nil
}

// Resolve looks a token up as a primary key first and as an alias second
func (s *templateService) Resolve(ctx context.Context, token string) (*entities.GateTemplate, error) {
	name := strings.ToLower(strings.TrimSpace(token))

	template, err := s.templateRepo.GetByKey(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if template != nil {
		return template, nil
	}

	template, err = s.templateRepo.GetByAlias(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get template by alias: %w", err)
	}
	if template == nil {
		return nil, entities.ErrTemplateNotFound
	}
	return template, nil
}

// ExpandRequirements turns a mix of role ids and template names into role ids.
// The template's roles are copied, so later template edits do not affect the result.
func (s *templateService) ExpandRequirements(ctx context.Context, tokens []string) ([]int64, error) {
	var roles []int64
	for _, token := range tokens {
		if strings.TrimSpace(token) == "" {
			continue
		}
		if id, ok := utils.ParseSnowflake(token); ok {
			roles = append(roles, id)
			continue
		}

		template, err := s.Resolve(ctx, token)
		if errors.Is(err, entities.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %q", entities.ErrUnknownRequirement, token)
		}
		if err != nil {
			return nil, err
		}
		roles = append(roles, template.Roles...)
	}
	return dedupeIDs(roles), nil
}

func normalizeTemplateName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, " ,") {
		return "", entities.ErrInvalidTemplateKey
	}
	if _, numeric := utils.ParseSnowflake(name); numeric {
		return "", entities.ErrInvalidTemplateKey
	}
	return name, nil
}

// dedupeIDs drops repeated ids while keeping first-seen order
func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
