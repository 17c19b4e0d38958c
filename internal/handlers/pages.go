package handlers

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"bingohall/internal/viewmodel"
)

func homePage(data viewmodel.HomePage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		state := "Waiting for the game to start."
		if data.Running {
			state = "A game is in progress."
		}
		_, err := io.WriteString(w, `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>`+templ.EscapeString(data.Title)+`</title></head>
<body>
<h1>Welcome to `+templ.EscapeString(data.Title)+`!</h1>
<p>`+templ.EscapeString(state)+` Numbers 1 to `+strconv.Itoa(data.PoolSize)+` are drawn one at a time.</p>
<ul>
	<li><a href="/stream">/stream</a> follows the draw</li>
	<li><a href="/leaderboard">/leaderboard</a> follows the winners</li>
	<li><a href="/start">/start</a> and <a href="/stop">/stop</a> control the game</li>
	<li>POST /bingo with {"name","message"} to claim a win</li>
</ul>
</body>
</html>
`)
		return err
	})
}
