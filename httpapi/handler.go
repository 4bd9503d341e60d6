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
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/nutrirag/core"
	"github.com/poiesic/nutrirag/retrieval"
	"github.com/poiesic/nutrirag/storage"
)

// ToolRequest is the body of a tool call. The query is passed to the tool
// as is, blank or not.
type ToolRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results" validate:"gte=0,lte=100"`
}

// ToolResponse is the result of a tool call.
type ToolResponse struct {
	Tool   string `json:"tool"`
	Result string `json:"result"`
}

// CollectionResponse describes one stored collection.
type CollectionResponse struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Metadata core.Metadata `json:"metadata,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateRequest(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return out
}

func handleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

type collectionHandler struct {
	store storage.Store
}

func (h *collectionHandler) handleList(c *fiber.Ctx) error {
	infos, err := h.store.ListCollections(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]CollectionResponse, len(infos))
	for i, info := range infos {
		resp[i] = CollectionResponse{
			Name:     info.Name,
			Count:    info.Count,
			Metadata: info.Metadata,
		}
	}
	return c.JSON(resp)
}

type toolHandler struct {
	tools map[string]*retrieval.Tool
}

func (h *toolHandler) handleCall(c *fiber.Ctx) error {
	name := c.Params("name")
	tool, ok := h.tools[name]
	if !ok {
		return ErrToolNotFound(name)
	}

	var req ToolRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrBadRequest()
	}
	if errs := validateRequest(&req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	result, err := tool.Lookup(c.UserContext(), req.Query, req.MaxResults)
	if err != nil {
		return err
	}
	return c.JSON(ToolResponse{Tool: name, Result: result})
}
