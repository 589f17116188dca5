package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vardhanngg/socket-v/internal/app/orch"
	"github.com/vardhanngg/socket-v/internal/core"
	"github.com/vardhanngg/socket-v/internal/domain"
)

func healthHandler(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "OK",
			"sessions":    len(o.Rooms.List()),
			"connections": o.Registry.Count(),
		})
	}
}

func listSessions(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": o.Rooms.List()})
	}
}

func getSession(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, ok := o.Rooms.Get(domain.ParseCode(c.Param("code")))
		if !ok || room.Closed() {
			c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrInvalidSession.Error()})
			return
		}
		s := room.Session()
		c.JSON(http.StatusOK, core.RoomDetails{
			RoomInfo: core.RoomInfo{
				Code:        s.Code,
				HostID:      s.HostID,
				CreatedAt:   s.CreatedAt,
				MemberCount: room.MemberCount(),
			},
			Members: room.MembersSnapshot(),
		})
	}
}
