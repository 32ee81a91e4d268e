package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

const (
	// DefaultSessionTitle is the placeholder a fresh session starts with. It is
	// replaced exactly once, by the first user message (or the first upload).
	DefaultSessionTitle = "New Conversation"

	// UploadTitlePrefix marks upload-derived placeholder titles. Sessions whose
	// title still carries this prefix are renamed by the next user message.
	UploadTitlePrefix = "File: "

	SessionTitleMaxRunes = 40
)

const (
	// AssistantErrorReply is the fixed terminal reply appended when the
	// assistant transport fails. Never retried.
	AssistantErrorReply = "Sorry, I couldn't reach the assistant right now. Please try again."

	UploadSuccessReply = "I've finished reading **%s**. You can ask me about it now."
	UploadFailureReply = "I couldn't read **%s**. The file was not ingested."
	UploadPendingReply = "Reading *%s*..."
)

const (
	CommandConsentPrompt = "I need your permission to write to your calendar. Please approve the request to continue."
	CommandDeniedReply   = "Okay, I won't touch your calendar. The event was not created."
	CommandFailedReply   = "I couldn't create the calendar event. Nothing was scheduled."
	CommandResolvedReply = "Done! I've added \"%s\" to your calendar."
	CommandBusyReply     = "I'm still waiting on a previous action. Please resolve it first."
)
