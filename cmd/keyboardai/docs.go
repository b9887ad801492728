package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/keyboardai/docs.go`.
//
// @title           keyboardai API
// @version         1.0
// @description     Local daemon for on-device text enhancement and reply drafting with optional remote fallback.
//
// @contact.name   keyboardai maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
