package notify

import "senda/relay/internal/entities"

// Client -> server
const (
	EventJoinSession  = "join-session"
	EventJoinAsSender = "join-as-sender"
)

// Server -> client
const (
	EventSessionJoined  = "session-joined"
	EventSessionError   = "session-error"
	EventJoinedAsSender = "joined-as-sender"
	EventFilesReceived  = "files-received"
	EventSessionExpired = "session-expired"
)

type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

type SessionPayload struct {
	SessionID string `json:"sessionId"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type FilesReceivedPayload struct {
	Files     []entities.FileRecord `json:"files"`
	SessionID string                `json:"sessionId"`
}

func FilesReceived(sessionID string, files []entities.FileRecord) Event {
	return Event{
		Name: EventFilesReceived,
		Data: FilesReceivedPayload{Files: files, SessionID: sessionID},
	}
}
