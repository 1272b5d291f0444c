package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/TFMV/fsview/internal/fserr"
	"github.com/TFMV/fsview/internal/settings"
	"github.com/gin-gonic/gin"
)

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

type contentRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

type renameRequest struct {
	OldPath string `json:"old_path" binding:"required"`
	NewPath string `json:"new_path" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"watches": len(s.facade.WatchedPaths()),
	})
}

// queryPath returns the required path query parameter.
func queryPath(c *gin.Context) (string, bool) {
	path := c.Query("path")
	if strings.TrimSpace(path) == "" {
		badRequest(c, "path query parameter required")
		return "", false
	}
	return path, true
}

func (s *Server) listTree(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	nodes, err := s.facade.List(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

func (s *Server) projectTree(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}

	var maxDepth *uint
	if raw := c.Query("max_depth"); raw != "" {
		d, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(c, fserr.InvalidInput("project", path, "max_depth must be a non-negative integer"))
			return
		}
		depth := uint(d)
		maxDepth = &depth
	}

	node, err := s.facade.Project(path, maxDepth)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (s *Server) listWatches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"paths": s.facade.WatchedPaths()})
}

func (s *Server) startWatch(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.WatchStart(req.Path); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stopWatch(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	if err := s.facade.WatchStop(path); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stopAllWatches(c *gin.Context) {
	if err := s.facade.WatchStopAll(); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) readFile(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	content, err := s.facade.ReadFile(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "content": content})
}

func (s *Server) writeFile(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.WriteFile(req.Path, req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fileExists(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": s.facade.FileExists(path)})
}

func (s *Server) fileInfo(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	info, err := s.facade.FileInfo(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) createFile(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.CreateFile(req.Path, req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) createDirectory(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.CreateDirectory(req.Path); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) renamePath(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.RenamePath(req.OldPath, req.NewPath); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deletePath(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	if err := s.facade.DeletePath(path); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) reveal(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.Reveal(c.Request.Context(), req.Path); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) loadSettings(c *gin.Context) {
	st, err := s.facade.LoadSettings()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) saveSettings(c *gin.Context) {
	st := settings.Default()
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.facade.SaveSettings(st); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) settingsPath(c *gin.Context) {
	path, err := s.facade.SettingsPath()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
