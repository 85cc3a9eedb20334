package constant

const (
	ChatMessageSenderUser = "user"
	ChatMessageSenderAI   = "ai"

	DefaultGreeting      = "How can I help you?"
	DefaultSequenceTitle = "No Title"

	SequenceCreatedReply = "Here's your sequence. See the Sequence panel."
	StepAddedReply       = "New step added to the sequence."
)
