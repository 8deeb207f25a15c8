package main

// General API documentation for swaggo. The -tags=swagger build serves
// internal/httpapi/swagger.json; regenerate it with
// `swag init -g cmd/textgend/docs.go --outputTypes json` after API changes.
//
// @title           textgend API
// @version         1.0
// @description     HTTP API serving a preloaded text generation model.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
