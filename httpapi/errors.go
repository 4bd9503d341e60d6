// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package httpapi

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrStoreRequired is returned when a server is created without a store.
var ErrStoreRequired = errors.New("store required")

// Error is the JSON body of a failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// NewError creates an Error with an HTTP status code.
func NewError(code int, msg string) Error {
	return Error{Code: code, Message: msg}
}

// ValidationError lists request fields that failed validation.
type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError creates a ValidationError with status 422.
func NewValidationError(errs map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errs,
	}
}

// ErrBadRequest reports an unparseable request body.
func ErrBadRequest() Error {
	return NewError(fiber.StatusBadRequest, "invalid JSON request")
}

// ErrToolNotFound reports an unknown tool name.
func ErrToolNotFound(name string) Error {
	return NewError(fiber.StatusNotFound, fmt.Sprintf("tool %q not found", name))
}

// errorHandler renders every error as JSON. Errors that are neither API nor
// fiber errors are logged and reported as 500.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var apiErr Error
		if errors.As(err, &apiErr) {
			return c.Status(apiErr.Code).JSON(apiErr)
		}
		var valErr ValidationError
		if errors.As(err, &valErr) {
			return c.Status(valErr.Status).JSON(valErr)
		}
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
		}

		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(NewError(fiber.StatusInternalServerError, err.Error()))
	}
}
