package http

import (
	"whodunnit-be/internal/service/dto"
	"whodunnit-be/internal/state"

	"github.com/kataras/iris/v12"
)

func Health(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"status":   "ok",
			"sessions": len(appState.SessionSvc.ListSessions()),
			"themes":   appState.Themes.List(),
		})
	}
}

func CreateSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.CreateSessionRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}

		resp, err := appState.SessionSvc.CreateSession(req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(resp)
	}
}

func ListSessions(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"sessions": appState.SessionSvc.ListSessions(),
		})
	}
}

func JoinSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.JoinSessionRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}
		req.DeviceToken = deviceToken(ctx, req.DeviceToken)

		resp, err := appState.SessionSvc.JoinSession(ctx.Params().Get("id"), req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func Reconnect(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.ActorRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}

		resp, err := appState.SessionSvc.Reconnect(
			ctx.Params().Get("id"),
			deviceToken(ctx, req.DeviceToken),
		)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func StartSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.ActorRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}

		resp, err := appState.SessionSvc.StartSession(
			ctx.Params().Get("id"),
			deviceToken(ctx, req.DeviceToken),
		)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func ViewSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.ActorRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}

		resp, err := appState.SessionSvc.ViewSession(
			ctx.Params().Get("id"),
			deviceToken(ctx, req.DeviceToken),
			ctx.GetHeader(headerDevPlayerID),
		)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func AdvancePhase(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.ActorRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}

		resp, err := appState.SessionSvc.Advance(
			ctx.Params().Get("id"),
			deviceToken(ctx, req.DeviceToken),
		)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func Vote(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.VoteRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}
		req.DeviceToken = deviceToken(ctx, req.DeviceToken)

		resp, err := appState.SessionSvc.Vote(ctx.Params().Get("id"), req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func NightAction(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.NightActionRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}
		req.DeviceToken = deviceToken(ctx, req.DeviceToken)

		resp, err := appState.SessionSvc.NightAction(ctx.Params().Get("id"), req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

func Narration(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		resp, err := appState.SessionSvc.Narration(ctx.Params().Get("id"))
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.JSON(resp)
	}
}

// DevQuickstart 仅在开启开发工具时可用，否则表现为不存在的路由
func DevQuickstart(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		if !appState.SessionSvc.DevTools() {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": "not found",
				"code":  "NotFound",
			})
			return
		}

		var req dto.QuickstartRequest

		if err := readBody(ctx, &req); err != nil {
			writeError(ctx, err)
			return
		}

		resp, err := appState.SessionSvc.DevQuickstart(req)
		if err != nil {
			writeError(ctx, err)
			return
		}

		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(resp)
	}
}
