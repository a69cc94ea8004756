// Package api implements the REST API exposing the calculator engine:
// stateless evaluate/validate/format endpoints plus persistent sessions with
// variable tables and evaluation history.
package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/calctrace/calctrace/pkg/calc"
	"github.com/calctrace/calctrace/pkg/expr"
	"github.com/calctrace/calctrace/pkg/format"
	"github.com/calctrace/calctrace/pkg/store"
	"github.com/calctrace/calctrace/pkg/types"
)

// Server is the calculator API server.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server backed by the given session store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Post("/v1/evaluate", srv.evaluate)
	app.Post("/v1/validate", srv.validate)
	app.Post("/v1/format", srv.formatExpression)

	app.Post("/v1/sessions", srv.createSession)
	app.Get("/v1/sessions", srv.listSessions)
	app.Get("/v1/sessions/:id", srv.getSession)
	app.Delete("/v1/sessions/:id", srv.deleteSession)
	app.Post("/v1/sessions/:id/evaluate", srv.sessionEvaluate)
	app.Get("/v1/sessions/:id/variables", srv.getVariables)
	app.Put("/v1/sessions/:id/variables/:name", srv.putVariable)
	app.Delete("/v1/sessions/:id/variables/:name", srv.deleteVariable)
	app.Get("/v1/sessions/:id/history", srv.getHistory)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- request/response shapes ---

type evaluateRequest struct {
	Expression string             `json:"expression"`
	Variables  map[string]float64 `json:"variables"`
	Format     *calc.FormatConfig `json:"format"`
	Steps      bool               `json:"steps"`
}

type evaluateResponse struct {
	Result float64     `json:"result"`
	Text   string      `json:"text"`
	Steps  []expr.Step `json:"steps,omitempty"`
}

type sessionResponse struct {
	ID         string             `json:"id"`
	Variables  map[string]float64 `json:"variables"`
	Format     calc.FormatConfig  `json:"format"`
	CreateTime time.Time          `json:"createTime"`
	UpdateTime time.Time          `json:"updateTime"`
}

func sessionJSON(sess *store.Session) sessionResponse {
	return sessionResponse{
		ID:         sess.ID,
		Variables:  sess.Variables,
		Format:     calc.ConfigFor(sess.Policy),
		CreateTime: sess.CreateTime,
		UpdateTime: sess.UpdateTime,
	}
}

// --- error envelopes ---

func badRequest(c *fiber.Ctx, err error) error {
	payload := fiber.Map{
		"code":    400,
		"message": err.Error(),
		"status":  "INVALID_ARGUMENT",
	}
	var parseErr *types.ParseError
	var evalErr *types.EvalError
	if errors.As(err, &parseErr) {
		payload["kind"] = "ParseError"
		payload["position"] = parseErr.Pos
	} else if errors.As(err, &evalErr) {
		payload["kind"] = "EvalError"
		payload["position"] = evalErr.Pos
	}
	return c.Status(400).JSON(fiber.Map{"error": payload})
}

func notFound(c *fiber.Ctx, err error) error {
	return c.Status(404).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    404,
			"message": err.Error(),
			"status":  "NOT_FOUND",
		},
	})
}

// --- stateless handlers ---

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if strings.TrimSpace(req.Expression) == "" {
		return badRequest(c, errors.New("expression is required"))
	}

	calculator := calc.New()
	if req.Format != nil {
		policy, err := req.Format.Policy()
		if err != nil {
			return badRequest(c, err)
		}
		calculator.SetPolicy(policy)
	}
	for name, value := range req.Variables {
		calculator.SetVariable(name, value)
	}

	return s.runEvaluation(c, calculator, req.Expression, req.Steps, "")
}

func (s *Server) validate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	_, err := expr.Parse(req.Expression)
	if err != nil {
		var parseErr *types.ParseError
		resp := fiber.Map{"valid": false, "message": err.Error()}
		if errors.As(err, &parseErr) {
			resp["position"] = parseErr.Pos
		}
		return c.JSON(resp)
	}
	return c.JSON(fiber.Map{"valid": true})
}

type formatRequest struct {
	Expression string `json:"expression"`
	Notation   string `json:"notation"` // "plain" (default) or "latex"
}

func (s *Server) formatExpression(c *fiber.Ctx) error {
	var req formatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	notation := expr.Plain
	switch req.Notation {
	case "", "plain":
	case "latex":
		notation = expr.LaTeX
	default:
		return badRequest(c, errors.New("notation must be \"plain\" or \"latex\""))
	}
	node, err := expr.Parse(req.Expression)
	if err != nil {
		return badRequest(c, err)
	}
	return c.JSON(fiber.Map{"formatted": expr.Print(node, notation)})
}

// --- session handlers ---

type createSessionRequest struct {
	Variables map[string]float64 `json:"variables"`
	Format    *calc.FormatConfig `json:"format"`
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, err)
		}
	}
	policy := format.None()
	if req.Format != nil {
		p, err := req.Format.Policy()
		if err != nil {
			return badRequest(c, err)
		}
		policy = p
	}
	sess := s.store.CreateSession(req.Variables, policy)
	return c.Status(201).JSON(sessionJSON(sess))
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	sessions := s.store.ListSessions()
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionJSON(sess))
	}
	return c.JSON(fiber.Map{"sessions": out})
}

func (s *Server) getSession(c *fiber.Ctx) error {
	sess, err := s.store.GetSession(c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(sessionJSON(sess))
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	if err := s.store.DeleteSession(c.Params("id")); err != nil {
		return notFound(c, err)
	}
	return c.SendStatus(204)
}

func (s *Server) sessionEvaluate(c *fiber.Ctx) error {
	sess, err := s.store.GetSession(c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if strings.TrimSpace(req.Expression) == "" {
		return badRequest(c, errors.New("expression is required"))
	}

	vars, err := s.store.Variables(sess.ID)
	if err != nil {
		return notFound(c, err)
	}
	calculator := calc.New()
	calculator.SetPolicy(sess.Policy)
	for name, value := range vars {
		calculator.SetVariable(name, value)
	}

	return s.runEvaluation(c, calculator, req.Expression, req.Steps, sess.ID)
}

// runEvaluation evaluates and renders the shared response shape, recording
// history when a session ID is present.
func (s *Server) runEvaluation(c *fiber.Ctx, calculator *calc.Calculator, expression string, withSteps bool, sessionID string) error {
	var (
		result float64
		steps  []expr.Step
		err    error
	)
	if withSteps {
		result, steps, err = calculator.EvaluateSteps(expression)
	} else {
		result, err = calculator.Evaluate(expression)
	}

	if sessionID != "" {
		record := &store.Evaluation{Expression: expression, Steps: steps}
		if err != nil {
			record.State = store.EvaluationFailed
			record.Error = err.Error()
		} else {
			record.State = store.EvaluationSucceeded
			record.Result = result
		}
		if appendErr := s.store.AppendEvaluation(sessionID, record); appendErr != nil {
			return notFound(c, appendErr)
		}
	}

	if err != nil {
		return badRequest(c, err)
	}
	return c.JSON(evaluateResponse{Result: result, Text: expr.FormatResult(result), Steps: steps})
}

func (s *Server) getVariables(c *fiber.Ctx) error {
	vars, err := s.store.Variables(c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(fiber.Map{"variables": vars})
}

type putVariableRequest struct {
	Value float64 `json:"value"`
}

func (s *Server) putVariable(c *fiber.Ctx) error {
	var req putVariableRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	name := strings.ToLower(c.Params("name"))
	if err := s.store.SetVariable(c.Params("id"), name, req.Value); err != nil {
		return notFound(c, err)
	}
	return c.JSON(fiber.Map{"name": name, "value": req.Value})
}

func (s *Server) deleteVariable(c *fiber.Ctx) error {
	if err := s.store.DeleteVariable(c.Params("id"), strings.ToLower(c.Params("name"))); err != nil {
		return notFound(c, err)
	}
	return c.SendStatus(204)
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	history, err := s.store.History(c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(fiber.Map{"evaluations": history})
}
