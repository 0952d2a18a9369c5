package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/auravtc/backend/internal/model"
)

// apiErrorResponse はAPIエラーレスポンスのJSON構造。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Picture          string    `json:"picture,omitempty"`
	Role             string    `json:"role"`
	TruckersMPID     string    `json:"truckers_mp_id,omitempty"`
	SteamID          string    `json:"steam_id,omitempty"`
	ExperiencePoints int       `json:"experience_points"`
	TotalDistance    float64   `json:"total_distance"`
	TotalDeliveries  int       `json:"total_deliveries"`
	JoinDate         time.Time `json:"join_date"`
	LastActive       time.Time `json:"last_active"`
	IsActive         bool      `json:"is_active"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Picture:          u.Picture,
		Role:             string(u.Role),
		TruckersMPID:     u.TruckersMPID,
		SteamID:          u.SteamID,
		ExperiencePoints: u.ExperiencePoints,
		TotalDistance:    u.TotalDistance,
		TotalDeliveries:  u.TotalDeliveries,
		JoinDate:         u.JoinDate,
		LastActive:       u.LastActive,
		IsActive:         u.IsActive,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeRoleChangeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodeJobNotFound, model.ErrCodeEventNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidSession, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	// 状態遷移違反と衝突は400として返す
	case model.ErrCodeJobNotAvailable, model.ErrCodeJobNotCompletable,
		model.ErrCodeAlreadyJoined, model.ErrCodeEventFull:
		return http.StatusBadRequest
	case model.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
