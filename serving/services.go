package serving

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestContextKey is key type for context keys when using specific info (such as current user)
type RequestContextKey string

const (
	// USER_KEY holds the authenticated login in request contexts
	USER_KEY RequestContextKey = "user"
	// REQUEST_ID_HEADER is set on every response
	REQUEST_ID_HEADER = "X-Request-Id"
)

// UserStore checks users and finds their secrets
type UserStore interface {
	CheckUser(ctx context.Context, login, password string) (bool, error)
	FindSecretForActiveUser(ctx context.Context, login string) (string, error)
	UpsertUser(ctx context.Context, creator, login, password string) error
}

// ServiceParameters contains all parameters to use for a service
type ServiceParameters struct {
	Users     UserStore
	Workspace *Workspace
	Ctx       context.Context
	Logger    *zap.SugaredLogger
}

// ServiceHandler adds more parameters than usual handler function
type ServiceHandler func(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error

// Route is an endpoint: method, url pattern and handler.
// Secured routes expect a valid token.
type Route struct {
	Method  string
	Pattern string
	Secured bool
	Handler ServiceHandler
}

// documentRoutes are the endpoints over a workspace
var documentRoutes = []Route{
	// ADMIN PART
	{"GET", "/status/", false, checkStatusHandler},
	{"POST", "/token/", false, checkUserAndGenerateTokenHandler},
	{"POST", "/user/upsert/", true, upsertUserHandler},
	// READ OPERATIONS
	{"GET", "/elements/load/{elementId}/", true, loadElementHandler},
	{"POST", "/query/", true, queryHandler},
	{"POST", "/export/{format}/as/{filename}/", true, exportHandler},
	{"GET", "/filters/unused/", true, unusedFiltersHandler},
	{"GET", "/runs/{runId}/", true, runOutcomesHandler},
	// MUTATIONS
	{"POST", "/apply/", true, applyHandler},
	{"PUT", "/views/{viewId}/filters/{filter}/", true, attachFilterHandler},
	{"DELETE", "/views/{viewId}/filters/{filter}/", true, detachFilterHandler},
}

// InitService returns a new valid servemux to launch
func InitService(workspace *Workspace, users UserStore, initialContext context.Context, logger *zap.SugaredLogger) *http.ServeMux {
	mux := http.NewServeMux()

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	parameters := ServiceParameters{
		Users:     users,
		Workspace: workspace,
		Ctx:       initialContext,
		Logger:    logger,
	}

	for _, route := range documentRoutes {
		AddRouteToMux(mux, route, parameters)
	}

	return mux
}

// AddRouteToMux registers route with and without its trailing slash.
// Method is part of the pattern, so that the same url may serve many methods.
func AddRouteToMux(mux *http.ServeMux, route Route, parameters ServiceParameters) {
	handlerFunction := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestId := uuid.NewString()
		w.Header().Set(REQUEST_ID_HEADER, requestId)

		current := parameters
		current.Ctx = r.Context()
		if parameters.Ctx != nil {
			current.Ctx = parameters.Ctx
		}

		current.Logger = parameters.Logger.With("request", requestId)

		if route.Secured {
			if login, auth, err := validateAuthentication(current, r); err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			} else if !auth {
				http.Error(w, "should authenticate", http.StatusUnauthorized)
				return
			} else {
				current.Ctx = context.WithValue(current.Ctx, USER_KEY, login)
			}
		}

		errHandler := route.Handler(current, w, r)
		if customError, ok := errHandler.(ServiceHttpError); ok {
			current.Logger.Debugw("request failed", "url", r.URL.Path, "code", customError.HttpCode(), "error", customError.Error())
			http.Error(w, customError.Error(), customError.HttpCode())
		} else if errHandler != nil {
			current.Logger.Errorw("request failed", "url", r.URL.Path, "error", errHandler)
			http.Error(w, "Internal error: "+errHandler.Error(), http.StatusInternalServerError)
		} else {
			current.Logger.Debugw("request served", "method", route.Method, "url", r.URL.Path, "duration", time.Since(start))
		}
	}

	mux.HandleFunc(route.Method+" "+route.Pattern, handlerFunction)
	if trimmed, found := strings.CutSuffix(route.Pattern, "/"); found {
		mux.HandleFunc(route.Method+" "+trimmed, handlerFunction)
	} else {
		mux.HandleFunc(route.Method+" "+route.Pattern+"/", handlerFunction)
	}
}

// CurrentUser returns the current user if any, and a boolean to explicit if found
func (sp ServiceParameters) CurrentUser() (string, bool) {
	if sp.Ctx == nil {
		return "", false
	} else if login, ok := sp.Ctx.Value(USER_KEY).(string); ok {
		return login, true
	}

	return "", false
}
