package gates

import (
	"context"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Feature owns the /gate command
type Feature struct {
	session   *discordgo.Session
	engine    *application.EngineContext
	scheduler *application.Scheduler
}

// NewFeature creates a new gates feature instance
func NewFeature(session *discordgo.Session, engine *application.EngineContext, scheduler *application.Scheduler) *Feature {
	return &Feature{
		session:   session,
		engine:    engine,
		scheduler: scheduler,
	}
}

// HandleCommand routes /gate subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.RequireOperator(s, i) {
		return
	}

	sub, opts := common.Options(i)
	switch sub {
	case "create":
		f.handleCreate(s, i, opts)
	case "modify":
		f.handleModify(s, i, opts)
	case "delete":
		f.handleDelete(s, i, opts)
	case "list":
		f.handleList(s, i)
	case "sweep":
		f.handleSweep(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}

func (f *Feature) inUnitOfWork(ctx context.Context, guildID int64, fn func(uow application.UnitOfWork) error) error {
	uow := f.engine.UowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit transaction")
	}
	return nil
}
