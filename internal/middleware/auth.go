package middleware

import (
	"context"
	"net/url"
	"strings"

	"shared-daily-menu/internal/domain"
	"shared-daily-menu/internal/errors"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key the resolved actor is stored under.
const ActorKey = "actor"

type ActorResolver interface {
	ResolveActor(ctx context.Context, roomID, deviceID, displayName string) (*domain.Actor, error)
}

type Auth struct {
	Rooms ActorResolver
}

// RequireActor resolves the caller's device identity for the room in
// the route. Every authenticated call upserts the device row, so any
// holder of a device id becomes a participant without an explicit
// join; the invite token is only checked on the join endpoint.
func (m *Auth) RequireActor() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		roomID := ctx.Param("roomId")

		deviceID := strings.TrimSpace(ctx.GetHeader("x-device-id"))
		if deviceID == "" {
			ctx.Error(errors.Unauthorized("missing device info", nil))
			ctx.Abort()
			return
		}

		// Display names travel percent-encoded to survive non-ASCII
		// transport. Optional: absent names resolve to a guest
		// placeholder and never overwrite a stored name.
		displayName := ctx.GetHeader("x-display-name")
		if displayName != "" {
			if decoded, err := url.PathUnescape(displayName); err == nil {
				displayName = decoded
			}
		}

		actor, err := m.Rooms.ResolveActor(ctx.Request.Context(), roomID, deviceID, displayName)
		if err != nil {
			ctx.Error(err)
			ctx.Abort()
			return
		}

		ctx.Set(ActorKey, actor)
		ctx.Next()
	}
}

// MustActor returns the actor stashed by RequireActor.
func MustActor(ctx *gin.Context) *domain.Actor {
	v, _ := ctx.Get(ActorKey)
	return v.(*domain.Actor)
}
