package middleware

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	workspaceSessionKey = "workspace_id"
	WorkspaceContextKey = "WorkspaceID"
)

// InjectWorkspace кладёт в контекст id рабочей сессии редактора.
// Если в cookie его ещё нет, генерирует новый. Cookie переписывается на каждом
// запросе, чтобы MaxAge отсчитывался от последнего обращения.
func InjectWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		id, _ := sess.Get(workspaceSessionKey).(string)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		sess.Set(workspaceSessionKey, id)
		if err := sess.Save(); err != nil {
			slog.Warn("failed to save session", "err", err)
		}

		c.Set(WorkspaceContextKey, id)
		c.Next()
	}
}

// WorkspaceID достаёт id, который положил InjectWorkspace.
func WorkspaceID(c *gin.Context) string {
	return c.GetString(WorkspaceContextKey)
}
