/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes the studio over a local HTTP API for the
// browser frontend.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storyboardstudio/internal/domain"
	"storyboardstudio/internal/imagedata"
	applog "storyboardstudio/internal/log"
	"storyboardstudio/internal/project"
	"storyboardstudio/internal/studio"
)

// Server routes API requests into a Studio.
type Server struct {
	studio *studio.Studio
	log    *slog.Logger
}

// New builds the request router around a studio.
func New(s *studio.Studio) *Server {
	return &Server{studio: s, log: applog.WithComponent("server")}
}

// Router builds the gin engine with all API routes mounted. origins
// lists the browser origins allowed by CORS; an empty list falls back
// to the local Vite dev server.
func (s *Server) Router(origins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Content-Type"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		api.GET("/state", s.state)

		api.POST("/assets", s.uploadAsset)
		api.POST("/assets/generate", s.generateAsset)
		api.POST("/assets/:id/regenerate", s.regenerateAsset)
		api.GET("/assets/:id/download", s.downloadAsset)
		api.DELETE("/assets/:id", s.deleteAsset)

		api.POST("/products", s.uploadProduct)
		api.GET("/products/:id/download", s.downloadProduct)
		api.DELETE("/products/:id", s.deleteProduct)

		api.GET("/results/:id/download", s.downloadResult)
		api.DELETE("/results/:id", s.deleteResult)
		api.POST("/results/reorder", s.reorderResults)
		api.POST("/results/:id/continue", s.continueResult)

		api.POST("/selection/toggle-asset", s.toggleAsset)
		api.POST("/selection/product", s.selectProduct)
		api.POST("/selection/result", s.selectResult)
		api.POST("/selection/clear", s.clearSelection)

		api.POST("/generate", s.generate)

		api.GET("/project", s.exportProject)
		api.POST("/project", s.importProject)
		api.POST("/project/new", s.newProject)
	}
	return r
}

// fail maps studio sentinels to HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, studio.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, studio.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, studio.ErrEmptyPrompt),
		errors.Is(err, studio.ErrNothingToCompose),
		errors.Is(err, imagedata.ErrNotDataURL):
		status = http.StatusBadRequest
	case errors.Is(err, project.ErrImportParse),
		errors.Is(err, project.ErrImportRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, studio.ErrNotConfigured):
		status = http.StatusPreconditionFailed
	case errors.Is(err, studio.ErrGenerationFailed):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.log.Error("request failed", "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.studio.Snapshot())
}

type srcRequest struct {
	Src string `json:"src" binding:"required"`
}

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

type promptRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (s *Server) uploadAsset(c *gin.Context) {
	var req srcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := s.studio.UploadAsset(c.Request.Context(), req.Src)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) generateAsset(c *gin.Context) {
	var form domain.AssetForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := s.studio.CreateAsset(c.Request.Context(), form)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) regenerateAsset(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := s.studio.RegenerateAsset(c.Request.Context(), c.Param("id"), req.Prompt)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) deleteAsset(c *gin.Context) {
	if err := s.studio.DeleteAsset(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) downloadAsset(c *gin.Context) {
	id := c.Param("id")
	for _, a := range s.studio.Snapshot().Assets {
		if a.ID == id {
			s.download(c, "asset", id, a.Src)
			return
		}
	}
	s.fail(c, fmt.Errorf("%w: asset %s", studio.ErrNotFound, id))
}

func (s *Server) downloadProduct(c *gin.Context) {
	id := c.Param("id")
	for _, p := range s.studio.Snapshot().Products {
		if p.ID == id {
			s.download(c, "product", id, p.Src)
			return
		}
	}
	s.fail(c, fmt.Errorf("%w: product %s", studio.ErrNotFound, id))
}

func (s *Server) downloadResult(c *gin.Context) {
	id := c.Param("id")
	for _, r := range s.studio.Snapshot().Results {
		if r.ID == id {
			s.download(c, "scene", id, r.Src)
			return
		}
	}
	s.fail(c, fmt.Errorf("%w: result %s", studio.ErrNotFound, id))
}

// download decodes the entity image and serves it as an attachment
// named kind-id.ext.
func (s *Server) download(c *gin.Context, kind, id, src string) {
	img, err := imagedata.Parse(src)
	if err != nil {
		s.fail(c, err)
		return
	}
	name := fmt.Sprintf("%s-%s.%s", kind, id, img.Ext())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, img.MIME, img.Data)
}

func (s *Server) uploadProduct(c *gin.Context) {
	var req srcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := s.studio.UploadProduct(c.Request.Context(), req.Src)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.studio.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteResult(c *gin.Context) {
	if err := s.studio.DeleteResult(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) reorderResults(c *gin.Context) {
	var req struct {
		From *int `json:"from" binding:"required"`
		To   *int `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.studio.MoveResult(c.Request.Context(), *req.From, *req.To); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": s.studio.Snapshot().Results})
}

func (s *Server) continueResult(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.studio.ContinueResult(c.Request.Context(), c.Param("id"), req.Prompt)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) toggleAsset(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.studio.ToggleAsset(req.ID)
	s.selectionState(c)
}

func (s *Server) selectProduct(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.studio.SelectProduct(req.ID)
	s.selectionState(c)
}

func (s *Server) selectResult(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.studio.SelectResult(req.ID)
	s.selectionState(c)
}

func (s *Server) clearSelection(c *gin.Context) {
	s.studio.ClearSelection()
	s.selectionState(c)
}

func (s *Server) selectionState(c *gin.Context) {
	snap := s.studio.Snapshot()
	c.JSON(http.StatusOK, gin.H{"selection": snap.Selection, "mode": snap.Mode})
}

func (s *Server) generate(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.studio.GenerateScene(c.Request.Context(), req.Prompt)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) exportProject(c *gin.Context) {
	data, err := s.studio.SaveProject()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+project.FileName+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) importProject(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.studio.LoadProject(c.Request.Context(), data); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.studio.Snapshot())
}

func (s *Server) newProject(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation required"})
		return
	}
	s.studio.NewProject(c.Request.Context())
	c.JSON(http.StatusOK, s.studio.Snapshot())
}
