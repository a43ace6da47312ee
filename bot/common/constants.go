package common

// Discord color constants
const (
	ColorPrimary  = 0x5865F2 // Discord blurple
	ColorSuccess  = 0x57F287
	ColorDanger   = 0xED4245
	ColorDarkRed  = 0x992D22
	ColorGiveaway = 0x3498DB
)

// Discord limits
const (
	MaxEmbedFieldLength = 1024
	MaxListEntries      = 25
)
