package server

//go:generate swag init -g internal/server/swagger.go -o docs/swagger

// @title SafeEcho API
// @version 0.1
// @description Spam, scam-call and synthetic-voice detection with a caregiver alert feed.
// @contact.name SafeEcho Maintainers
// @contact.url https://github.com/raysh454/safeecho
// @BasePath /
