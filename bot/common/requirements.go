package common

import (
	"context"
	"errors"
	"strconv"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"
)

// RequirementTokens splits a requirement option and replaces role names by role ids.
// Mentions, ids and template keys or aliases pass through unchanged; unknown names are
// kept so that template expansion reports them.
func RequirementTokens(ctx context.Context, platform interfaces.ChatPlatform, templates interfaces.TemplateService, guildID int64, raw string) ([]string, error) {
	tokens := utils.SplitTokens(raw)
	for idx, token := range tokens {
		if _, ok := utils.ParseSnowflake(token); ok {
			continue
		}

		_, err := templates.Resolve(ctx, token)
		if err == nil {
			continue
		}
		if !errors.Is(err, entities.ErrTemplateNotFound) {
			return nil, err
		}

		roleID, err := platform.ResolveRole(ctx, guildID, token)
		switch {
		case err == nil:
			tokens[idx] = strconv.FormatInt(roleID, 10)
		case errors.Is(err, interfaces.ErrNotFound):
		default:
			return nil, err
		}
	}
	return tokens, nil
}
