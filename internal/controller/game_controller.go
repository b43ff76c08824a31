package controller

import (
	"errors"

	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/benbeisheim/webchess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

type validateRequest struct {
	FEN  string `json:"fen"`
	From string `json:"from"`
	To   string `json:"to"`
	Turn string `json:"turn"`
}

type gameResponse struct {
	GameID string `json:"gameId"`
	FEN    string `json:"fen"`
	model.GameState
}

type moveResponse struct {
	model.Verdict
	State gameResponse `json:"state"`
}

func newGameResponse(gameID string, state model.GameState) gameResponse {
	return gameResponse{
		GameID:    gameID,
		FEN:       state.Board.FEN(state.Turn),
		GameState: state,
	}
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidFEN), errors.Is(err, model.ErrInvalidColor):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	gameID, state, err := gc.gameService.CreateGame(c.UserContext(), req.FEN)
	if err != nil {
		return sendError(c, err)
	}
	log.Infof("created game %s", gameID)
	return c.Status(fiber.StatusCreated).JSON(newGameResponse(gameID, state))
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	state, err := gc.gameService.GetGameState(c.UserContext(), gameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(newGameResponse(gameID, state))
}

// MakeMove answers 200 for both legal and illegal moves; the verdict says which.
func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	var move model.MoveRequest
	if err := c.BodyParser(&move); err != nil {
		return badRequest(c, "invalid request body")
	}

	verdict, state, err := gc.gameService.HandleMove(c.UserContext(), gameID, move)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(moveResponse{
		Verdict: verdict,
		State:   newGameResponse(gameID, state),
	})
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	state, err := gc.gameService.ResetGame(c.UserContext(), gameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(newGameResponse(gameID, state))
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.UserContext(), c.Params("gameId")); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Validate checks one move against a FEN position without creating a game.
func (gc *GameController) Validate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.FEN == "" {
		return badRequest(c, "fen is required")
	}

	verdict, err := gc.gameService.Validate(req.FEN, req.From, req.To, req.Turn)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(verdict)
}
