package common

import (
	"context"
	"testing"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/services"
	"github.com/skyblockz/sbz-giveaway/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementTokens(t *testing.T) {
	ctx := context.Background()

	repo := new(testhelpers.MockGateTemplateRepository)
	repo.On("GetByKey", ctx, "dungeons").Return(&entities.GateTemplate{Key: "dungeons", Roles: []int64{3}}, nil)
	repo.On("GetByKey", ctx, "booster").Return(nil, nil)
	repo.On("GetByAlias", ctx, "booster").Return(nil, nil)
	repo.On("GetByKey", ctx, "ghost").Return(nil, nil)
	repo.On("GetByAlias", ctx, "ghost").Return(nil, nil)
	templates := services.NewTemplateService(repo)

	platform := new(testhelpers.MockChatPlatform)
	platform.On("ResolveRole", ctx, int64(100), "booster").Return(int64(55), nil)
	platform.On("ResolveRole", ctx, int64(100), "ghost").Return(int64(0), interfaces.ErrNotFound)

	tokens, err := RequirementTokens(ctx, platform, templates, 100, "<@&1>, dungeons booster ghost")
	require.NoError(t, err)
	assert.Equal(t, []string{"<@&1>", "dungeons", "55", "ghost"}, tokens)

	_, err = templates.ExpandRequirements(ctx, tokens)
	assert.ErrorIs(t, err, entities.ErrUnknownRequirement)
}

func TestRequirementTokens_Ambiguous(t *testing.T) {
	ctx := context.Background()

	repo := new(testhelpers.MockGateTemplateRepository)
	repo.On("GetByKey", ctx, "staff").Return(nil, nil)
	repo.On("GetByAlias", ctx, "staff").Return(nil, nil)

	platform := new(testhelpers.MockChatPlatform)
	platform.On("ResolveRole", ctx, int64(100), "staff").Return(int64(0), interfaces.ErrAmbiguous)

	_, err := RequirementTokens(ctx, platform, services.NewTemplateService(repo), 100, "staff")
	assert.ErrorIs(t, err, interfaces.ErrAmbiguous)
}
