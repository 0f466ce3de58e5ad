package domain

// Outbound message types.
const (
	MsgRoomCreated    = "room-created"
	MsgJoinError      = "join-error"
	MsgJoinSuccess    = "join-success"
	MsgPlayersUpdated = "players-updated"
	MsgNewQuestion    = "new-question"
	MsgAnswerResult   = "answer-result"
	MsgGameOver       = "game-over"
	MsgRoomClosed     = "room-closed"
	MsgError          = "error"
)

// Message is the envelope every outbound notification travels in.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type RoomCreated struct {
	Code string `json:"code"`
}

type JoinError struct {
	Message string `json:"message"`
}

type JoinSuccess struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PlayersUpdated struct {
	Players []PlayerState `json:"players"`
}

type NewQuestion struct {
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Question QuestionView `json:"question"`
}

type AnswerResult struct {
	IsCorrect      bool   `json:"isCorrect"`
	CorrectIndices []int  `json:"correctIndices"`
	Explanation    string `json:"explanation"`
}

type GameOver struct {
	TotalQuestions int           `json:"totalQuestions"`
	Players        []PlayerState `json:"players"`
}

type RoomClosed struct{}

type ErrorPayload struct {
	Message string `json:"message"`
}
