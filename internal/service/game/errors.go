package game

import "fmt"

// Kind 是错误的大类，决定调用方应当如何处理
type Kind int

const (
	// 身份/权限不符，直接拒绝，不会自动重试
	KindAuthorization Kind = iota + 1
	// 当前状态不满足前置条件，调用方稍后重试即可
	KindPrecondition
	// 调用方输入有误，可修正后重试
	KindInvalidInput
	// 内部不变量被破坏，属于程序错误
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindPrecondition:
		return "precondition"
	case KindInvalidInput:
		return "invalid_input"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code 是机器可读的错误码
type Code string

const (
	CodeNotNarrator          Code = "NotNarrator"
	CodeNotEligibleVoter     Code = "NotEligibleVoter"
	CodeNotYourTurn          Code = "NotYourTurn"
	CodeVotingClosed         Code = "VotingClosed"
	CodeWaitingForSubmission Code = "WaitingForSubmission"
	CodeIncompleteVote       Code = "IncompleteVote"
	CodeGameNotStarted       Code = "GameNotStarted"
	CodeNightClosed          Code = "NightClosed"
	CodeInvalidTarget        Code = "InvalidTarget"
	CodeWrongAbility         Code = "WrongAbility"
	CodeMissingAbility       Code = "MissingAbility"
	CodeNotAlive             Code = "NotAlive"
	CodeInsufficientPlayers  Code = "InsufficientPlayers"
	CodeUnknownPhase         Code = "UnknownPhase"
	CodeMissingRole          Code = "MissingRole"

	// 会话目录使用的错误码
	CodeSessionNotFound Code = "SessionNotFound"
	CodeSessionStarted  Code = "SessionStarted"
	CodeNotHost         Code = "NotHost"
	CodePlayerNotFound  Code = "PlayerNotFound"
	CodeInvalidRequest  Code = "InvalidRequest"
)

// Error 是核心与会话目录共用的错误类型，errors.Is 按 Code 匹配
type Error struct {
	Code    Code
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Errorf 复制一个哨兵错误并替换为更具体的消息
func (e *Error) Errorf(format string, args ...any) *Error {
	return &Error{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func newError(code Code, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

var (
	ErrNotNarrator      = newError(CodeNotNarrator, KindAuthorization, "only the narrator can advance the game")
	ErrNotEligibleVoter = newError(CodeNotEligibleVoter, KindAuthorization, "player is not eligible to vote")
	ErrNotYourTurn      = newError(CodeNotYourTurn, KindAuthorization, "player is not part of the active night step")

	ErrVotingClosed         = newError(CodeVotingClosed, KindPrecondition, "voting is not open")
	ErrWaitingForSubmission = newError(CodeWaitingForSubmission, KindPrecondition, "waiting for night action submissions")
	ErrIncompleteVote       = newError(CodeIncompleteVote, KindPrecondition, "not every eligible voter has voted")
	ErrGameNotStarted       = newError(CodeGameNotStarted, KindPrecondition, "game has not started yet")
	ErrNightClosed          = newError(CodeNightClosed, KindPrecondition, "no night action is being requested")

	ErrInvalidTarget       = newError(CodeInvalidTarget, KindInvalidInput, "invalid target")
	ErrWrongAbility        = newError(CodeWrongAbility, KindInvalidInput, "ability does not match the active night step")
	ErrMissingAbility      = newError(CodeMissingAbility, KindInvalidInput, "player does not hold this ability")
	ErrNotAlive            = newError(CodeNotAlive, KindInvalidInput, "player is not alive")
	ErrInsufficientPlayers = newError(CodeInsufficientPlayers, KindInvalidInput, "not enough players to start")

	ErrUnknownPhase = newError(CodeUnknownPhase, KindFatal, "game state is in an unknown phase")
	ErrMissingRole  = newError(CodeMissingRole, KindFatal, "role catalog entry missing")

	ErrSessionNotFound = newError(CodeSessionNotFound, KindInvalidInput, "session not found")
	ErrSessionStarted  = newError(CodeSessionStarted, KindPrecondition, "session has already started")
	ErrNotHost         = newError(CodeNotHost, KindAuthorization, "only the host can start the session")
	ErrPlayerNotFound  = newError(CodePlayerNotFound, KindInvalidInput, "player not found for this device")
	ErrInvalidRequest  = newError(CodeInvalidRequest, KindInvalidInput, "invalid request")
)
