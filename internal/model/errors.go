// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, job, event, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInvalidSession      = "INVALID_SESSION"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeJobNotFound         = "JOB_NOT_FOUND"
	ErrCodeEventNotFound       = "EVENT_NOT_FOUND"
	ErrCodeJobNotAvailable     = "JOB_NOT_AVAILABLE"
	ErrCodeJobNotCompletable   = "JOB_NOT_COMPLETABLE"
	ErrCodeAlreadyJoined       = "ALREADY_JOINED"
	ErrCodeEventFull           = "EVENT_FULL"
	ErrCodeRoleChangeForbidden = "ROLE_CHANGE_FORBIDDEN"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "必要なロールを持つアカウントでログインしてください。",
	}
}

// NewInvalidSessionError はIdPセッション交換失敗エラーを生成する。
// 上流のエラー詳細は呼び出し元に含めない。
func NewInvalidSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSession,
		Message:  "セッションIDが無効です。",
		Category: "auth",
		Action:   "再度ログインをやり直してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewJobNotFoundError はジョブが見つからない場合のエラーを生成する。
func NewJobNotFoundError(jobID string) *APIError {
	return &APIError{
		Code:     ErrCodeJobNotFound,
		Message:  fmt.Sprintf("指定されたジョブが見つかりません: %s", jobID),
		Category: "job",
		Action:   "ジョブIDを確認してください。",
	}
}

// NewEventNotFoundError はイベントが見つからない場合のエラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %s", eventID),
		Category: "event",
		Action:   "イベントIDを確認してください。",
	}
}

// NewJobNotAvailableError は割当不可能な状態のジョブへの割当エラーを生成する。
func NewJobNotAvailableError(status JobStatus) *APIError {
	return &APIError{
		Code:     ErrCodeJobNotAvailable,
		Message:  fmt.Sprintf("このジョブは割当できません（現在の状態: %s）。", status),
		Category: "job",
		Action:   "available状態のジョブのみ割当できます。",
	}
}

// NewJobNotCompletableError は完了不可能な状態のジョブへの完了エラーを生成する。
func NewJobNotCompletableError(status JobStatus) *APIError {
	return &APIError{
		Code:     ErrCodeJobNotCompletable,
		Message:  fmt.Sprintf("このジョブは完了できません（現在の状態: %s）。", status),
		Category: "job",
		Action:   "assignedまたはin_progress状態のジョブのみ完了できます。",
	}
}

// NewAlreadyJoinedError はイベントへの重複参加エラーを生成する。
func NewAlreadyJoinedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyJoined,
		Message:  "このイベントには既に参加しています。",
		Category: "event",
		Action:   "参加済みイベントの一覧を確認してください。",
	}
}

// NewEventFullError はイベント定員超過エラーを生成する。
func NewEventFullError() *APIError {
	return &APIError{
		Code:     ErrCodeEventFull,
		Message:  "このイベントは定員に達しています。",
		Category: "event",
		Action:   "他のイベントへの参加を検討してください。",
	}
}

// NewRoleChangeForbiddenError は管理者以外によるロール変更エラーを生成する。
func NewRoleChangeForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeRoleChangeForbidden,
		Message:  "ロールの変更は管理者のみ実行できます。",
		Category: "auth",
		Action:   "管理者に変更を依頼してください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}
