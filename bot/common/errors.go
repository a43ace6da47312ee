package common

import (
	"errors"
	"fmt"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to the operator
	LogMessage  string // Internal message for logging
	Err         error
	Context     any
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for operator mistakes (bad ids, malformed options)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for store or platform failures
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Err:         err,
	}
}

// userMessages maps domain sentinels to the text shown to operators
var userMessages = []struct {
	err     error
	message string
}{
	{entities.ErrDrawingNotFound, "That giveaway does not exist"},
	{entities.ErrAlreadyResolved, "That giveaway has already ended"},
	{entities.ErrRosterLocked, "That giveaway has already been rolled"},
	{entities.ErrNotDue, "That giveaway has not ended yet"},
	{entities.ErrInvalidWinnerCount, "The number of winners must be at least 1"},
	{entities.ErrInvalidDuration, "Invalid duration, use something like 1w2d3h4m5s"},
	{entities.ErrEmptyPrize, "The prize cannot be empty"},
	{entities.ErrGateNotFound, "That message is not gated"},
	{entities.ErrGateExists, "That message is already gated"},
	{entities.ErrEmptyRequirements, "A gate needs at least one role"},
	{entities.ErrTemplateNotFound, "That template does not exist"},
	{entities.ErrTemplateExists, "A template with that key already exists"},
	{entities.ErrAliasTaken, "That name is already used by another template"},
	{entities.ErrInvalidTemplateKey, "Template keys and aliases must be a single non-numeric word"},
	{interfaces.ErrAmbiguous, "That name matches more than one object, use a mention or an id"},
	{interfaces.ErrNotFound, "Could not find that channel, member, role or message"},
}

// UserMessage returns the operator-facing text for err, or false for unexpected errors
func UserMessage(err error) (string, bool) {
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.UserMessage != "" && botErr.Err == nil {
		return botErr.UserMessage, true
	}

	// Unknown requirement tokens carry the offending token in the message.
	if errors.Is(err, entities.ErrUnknownRequirement) {
		return fmt.Sprintf("Unknown requirement, expected a role or a template (%v)", err), true
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.message, true
		}
	}
	if botErr != nil {
		return botErr.UserMessage, false
	}
	return "Something went wrong. Please try again later.", false
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and tells the operator what went wrong
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	message, expected := UserMessage(err)

	fields := log.Fields{
		"user_id": InvokerID(i),
		"command": i.ApplicationCommandData().Name,
		"error":   err.Error(),
	}
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.Context != nil {
		fields["context"] = botErr.Context
	}
	if expected {
		log.WithFields(fields).Info("Command rejected")
	} else {
		log.WithFields(fields).Error("Unexpected error in bot command")
	}

	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}
