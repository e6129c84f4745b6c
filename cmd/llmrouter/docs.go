package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/llmrouter/docs.go`.
//
// @title           llmrouter API
// @version         1.0
// @description     HTTP API that routes generation and chat requests across local Ollama and LM Studio servers, with single-hop fallback.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
