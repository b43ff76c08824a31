package controller

import (
	"github.com/benbeisheim/webchess-backend/internal/middleware"
	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/benbeisheim/webchess-backend/internal/service"
	"github.com/benbeisheim/webchess-backend/internal/views"
	"github.com/gofiber/fiber/v2"
)

// PageController serves the server-rendered board. Each browser session owns
// one game, keyed by its session ID.
type PageController struct {
	gameService *service.GameService
}

func NewPageController(gameService *service.GameService) *PageController {
	return &PageController{gameService: gameService}
}

type squareView struct {
	Coord    string
	Glyph    string
	Color    string
	Dark     bool
	LastMove bool
}

type rankView struct {
	Rank    int
	Squares []squareView
}

var files = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

func boardView(state model.GameState, message string, rejected bool) fiber.Map {
	rows := make([]rankView, 0, 8)
	for r := 0; r < 8; r++ {
		rank := rankView{Rank: 8 - r}
		for col := 0; col < 8; col++ {
			sq := model.Square{Row: r, Col: col}
			p := state.Board.At(sq)
			rank.Squares = append(rank.Squares, squareView{
				Coord:    sq.String(),
				Glyph:    p.Glyph(),
				Color:    p.Color.Name(),
				Dark:     (r+col)%2 == 1,
				LastMove: state.LastMove != nil && (state.LastMove.From == sq || state.LastMove.To == sq),
			})
		}
		rows = append(rows, rank)
	}

	winner := ""
	if state.Winner != nil {
		winner = capitalize(state.Winner.Name())
	}

	return fiber.Map{
		"Rows":     rows,
		"Files":    files,
		"Turn":     capitalize(state.Turn.Name()),
		"Winner":   winner,
		"Message":  message,
		"Rejected": rejected,
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func (pc *PageController) Index(c *fiber.Ctx) error {
	state, err := pc.gameService.SessionGame(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.Render(views.BoardTemplate, boardView(state, state.Message, false))
}

func (pc *PageController) Move(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	ctx := c.UserContext()

	// The session may be new or expired; make sure it has a game.
	if _, err := pc.gameService.SessionGame(ctx, sessionID); err != nil {
		return err
	}

	move := model.MoveRequest{From: c.FormValue("from"), To: c.FormValue("to")}
	verdict, state, err := pc.gameService.HandleMove(ctx, sessionID, move)
	if err != nil {
		return err
	}

	if !verdict.Legal {
		return c.Render(views.BoardTemplate, boardView(state, verdict.Reason, true))
	}
	return c.Render(views.BoardTemplate, boardView(state, state.Message, false))
}

func (pc *PageController) Reset(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	ctx := c.UserContext()

	if _, err := pc.gameService.SessionGame(ctx, sessionID); err != nil {
		return err
	}
	if _, err := pc.gameService.ResetGame(ctx, sessionID); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
