package http

import (
	"fmt"

	"whodunnit-be/internal/state"

	"github.com/kataras/iris/v12"
)

// NewApp 注册所有路由，测试中直接使用
func NewApp(appState *state.AppState) *iris.Application {
	app := iris.Default()

	if dir := appState.Cfg.StaticDir; dir != "" {
		app.HandleDir(
			"/",
			iris.Dir(dir),
			iris.DirOptions{
				IndexName: "index.html",
				SPA:       true,
				Compress:  true,
			},
		)
	}

	api := app.Party("/api/v1")

	api.Get("/health", Health(appState))

	sessions := api.Party("/sessions")
	{
		sessions.Post("", CreateSession(appState))
		sessions.Get("", ListSessions(appState))
		sessions.Post("/{id}/join", JoinSession(appState))
		sessions.Post("/{id}/reconnect", Reconnect(appState))
		sessions.Post("/{id}/start", StartSession(appState))
		sessions.Post("/{id}/view", ViewSession(appState))
		sessions.Post("/{id}/phase/advance", AdvancePhase(appState))
		sessions.Post("/{id}/vote", Vote(appState))
		sessions.Post("/{id}/night/action", NightAction(appState))
		sessions.Get("/{id}/narration", Narration(appState))
	}

	api.Post("/dev/quickstart", DevQuickstart(appState))

	return app
}

func RunServer(appState *state.AppState) error {
	app := NewApp(appState)

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	return app.Listen(addr)
}
