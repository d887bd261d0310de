package panel

import "errors"

// Ошибки клиента панели.
var (
	// ErrUnauthorized — логин отклонён панелью.
	ErrUnauthorized = errors.New("unauthorized: check admin username/password")

	// ErrUserNotFound — аккаунт не найден на панели.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidBaseURL — base_url не является http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base_url (expected http(s) URL)")

	// ErrUnexpectedResponse — панель вернула ответ неожиданной формы.
	ErrUnexpectedResponse = errors.New("unexpected panel response")
)
