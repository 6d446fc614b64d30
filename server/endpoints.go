package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dekarrin/diceroll"
	"github.com/dekarrin/diceroll/internal/version"
	"github.com/dekarrin/diceroll/render"
	"github.com/dekarrin/diceroll/server/apiresult"
	"github.com/dekarrin/diceroll/server/dao"
	"github.com/dekarrin/diceroll/server/middle"
	"github.com/dekarrin/diceroll/server/serr"
	"github.com/dekarrin/diceroll/server/token"
	"github.com/dekarrin/rezi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const APIPathPrefix = "/v1"

// EndpointFunc is a handler in terms of a single computed Result, freeing it
// from needing to write to the http.ResponseWriter itself.
type EndpointFunc func(req *http.Request) apiresult.Result

// Endpoint wraps an EndpointFunc into a standard http.HandlerFunc, adding a
// panic-to-500 guard, an anti-flood delay on auth failures, and logging of
// the final result.
func (api API) Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if panicErr := recover(); panicErr != nil {
				r := apiresult.InternalServerError("panic: %v", panicErr)
				r.WriteResponse(w)
				r.Log(req)
			}
		}()

		result := ep(req)

		if result.Status == http.StatusUnauthorized || result.Status == http.StatusForbidden || result.Status == http.StatusInternalServerError {
			time.Sleep(api.UnauthDelay)
		}

		result.WriteResponse(w)
		result.Log(req)
	}
}

// API holds the dependencies shared across every HTTP handler: the engine
// roller, the persistence layer, and the secret used to sign bearer tokens.
type API struct {
	DB          dao.Store
	Roller      *diceroll.Roller
	Secret      []byte
	UnauthDelay time.Duration
}

// Router builds the chi.Router exposing every endpoint, with auth middleware
// applied only where a handler requires it.
func (api API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/info", api.Endpoint(api.epGetInfo))
	r.Post("/tokens", api.Endpoint(api.epCreateToken))
	r.Post("/rolls", api.Endpoint(api.epCreateRoll))
	r.Get("/rolls/{id}", api.Endpoint(api.epGetRoll))

	r.Group(func(r chi.Router) {
		r.Use(middle.RequireAuth(api.DB.APIKeys(), api.Secret, api.UnauthDelay))
		r.Get("/rolls", api.Endpoint(api.epGetAllRolls))
	})

	return r
}

// POST /rolls: evaluate a dice expression and persist the result.
func (api API) epCreateRoll(req *http.Request) apiresult.Result {
	var rollReq RollRequest
	if err := parseJSON(req, &rollReq); err != nil {
		return apiresult.BadRequest(err.Error(), err.Error())
	}
	if rollReq.Expr == "" {
		return apiresult.BadRequest("expr: property is empty or missing from request", "empty expr")
	}

	adv, err := parseAdvantage(rollReq.Advantage)
	if err != nil {
		return apiresult.BadRequest(err.Error(), err.Error())
	}

	result, err := api.Roller.Roll(rollReq.Expr, diceroll.Options{
		Advantage:     adv,
		AllowComments: rollReq.AllowComments,
	})
	if err != nil {
		return rollErrorResult(err)
	}

	roll := dao.Roll{
		Expr:           rollReq.Expr,
		Result:         result.Result,
		MarkdownResult: render.MarkdownStringifier{}.VisitExpression(result.Expr),
		Comment:        result.Comment,
		Total:          result.Total,
		AST:            rezi.EncBinary(rollReq.Expr),
	}
	saved, err := api.DB.Rolls().Create(req.Context(), roll)
	if err != nil {
		return apiresult.InternalServerError("could not save roll: %s", err.Error())
	}

	return apiresult.Created(rollModel(saved, critString(result.Crit)), "roll '%s' -> %d", rollReq.Expr, saved.Total)
}

func critString(c diceroll.CritResult) string {
	if c == diceroll.CritNone {
		return ""
	}
	return c.String()
}

// GET /rolls/{id}: fetch a previously persisted roll, optionally re-rendered
// as markdown via ?format=markdown.
func (api API) epGetRoll(req *http.Request) apiresult.Result {
	idStr := chi.URLParam(req, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return apiresult.NotFound("bad roll id %q", idStr)
	}

	roll, err := api.DB.Rolls().GetByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return apiresult.NotFound()
		}
		return apiresult.InternalServerError(err.Error())
	}

	if req.URL.Query().Get("format") == "markdown" {
		roll.Result = roll.MarkdownResult
	}

	return apiresult.OK(rollModel(roll, ""), "got roll %s", id)
}

// GET /rolls: list recent rolls, paginated via ?limit=&offset=.
func (api API) epGetAllRolls(req *http.Request) apiresult.Result {
	limit := 20
	offset := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := req.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	rolls, err := api.DB.Rolls().GetAll(req.Context(), limit, offset)
	if err != nil {
		return apiresult.InternalServerError(err.Error())
	}

	resp := make([]RollModel, len(rolls))
	for i := range rolls {
		resp[i] = rollModel(rolls[i], "")
	}

	key := req.Context().Value(middle.AuthAPIKey).(dao.APIKey)
	return apiresult.OK(resp, "key '%s' listed %d rolls", key.Name, len(resp))
}

// POST /tokens: exchange an API key's name + secret for a bearer token.
func (api API) epCreateToken(req *http.Request) apiresult.Result {
	var tokReq TokenRequest
	if err := parseJSON(req, &tokReq); err != nil {
		return apiresult.BadRequest(err.Error(), err.Error())
	}
	if tokReq.Name == "" || tokReq.Secret == "" {
		return apiresult.BadRequest("name and secret are both required", "missing name or secret")
	}

	key, err := api.DB.APIKeys().GetByName(req.Context(), tokReq.Name)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return apiresult.Unauthorized(serr.ErrBadCredentials.Error(), "key '%s': not found", tokReq.Name)
		}
		return apiresult.InternalServerError(err.Error())
	}

	if err := bcrypt.CompareHashAndPassword(key.SecretHash, []byte(tokReq.Secret)); err != nil {
		return apiresult.Unauthorized(serr.ErrBadCredentials.Error(), "key '%s': bad secret", tokReq.Name)
	}

	tok, err := token.Generate(api.Secret, key)
	if err != nil {
		return apiresult.InternalServerError("could not generate token: %s", err.Error())
	}

	return apiresult.Created(TokenResponse{Token: tok}, "key '%s' issued new token", key.Name)
}

// GET /info: version and configured limits.
func (api API) epGetInfo(req *http.Request) apiresult.Result {
	var resp InfoModel
	resp.Version.Engine = version.Current
	resp.Version.Server = version.Server
	resp.Limits.MaxRolls = diceroll.DefaultMaxRolls
	resp.Limits.MaxASTOperations = diceroll.DefaultMaxASTOperations

	return apiresult.OK(resp, "got API info")
}

func rollModel(r dao.Roll, crit string) RollModel {
	return RollModel{
		URI:     fmt.Sprintf("%s/rolls/%s", APIPathPrefix, r.ID),
		ID:      r.ID.String(),
		Expr:    r.Expr,
		Result:  r.Result,
		Total:   r.Total,
		Comment: r.Comment,
		Crit:    crit,
		Created: r.Created.Format(time.RFC3339),
	}
}

func parseAdvantage(s string) (diceroll.AdvType, error) {
	switch s {
	case "", "none":
		return diceroll.NONE, nil
	case "adv":
		return diceroll.ADV, nil
	case "dis":
		return diceroll.DIS, nil
	default:
		return diceroll.NONE, fmt.Errorf("advantage: must be one of 'none', 'adv', 'dis', got %q", s)
	}
}

// rollErrorResult maps an error returned from the engine onto the HTTP status
// codes the core roll errors are documented to produce.
func rollErrorResult(err error) apiresult.Result {
	var syn diceroll.RollSyntaxError
	var val diceroll.RollValueError
	var tooMany diceroll.TooManyRolls

	switch {
	case errors.As(err, &syn):
		return apiresult.BadRequest(err.Error(), err.Error())
	case errors.As(err, &val):
		return apiresult.UnprocessableEntity(err.Error(), err.Error())
	case errors.As(err, &tooMany):
		return apiresult.PayloadTooLarge(err.Error(), err.Error())
	default:
		return apiresult.InternalServerError(err.Error())
	}
}

// parseJSON decodes req's body into v, restoring the body afterward so
// later middleware (logging) can still read it.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}
